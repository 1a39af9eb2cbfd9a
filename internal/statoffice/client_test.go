package statoffice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hradek/fiskal/internal/cache"
	"github.com/hradek/fiskal/internal/model"
)

func testConfig(baseURL string) model.FallbackConfig {
	return model.FallbackConfig{
		Enabled:           true,
		BaseURL:           baseURL,
		UserAgent:         "fiskal/0.2 (+https://github.com/hradek/fiskal)",
		Timeout:           5 * time.Second,
		RequestsPerSecond: 100,
		Burst:             10,
	}
}

func TestClient_FetchDataset_Scalar(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Path != "/rest/dataset/OBY01/metadata" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Error("expected User-Agent header")
		}
		_, _ = w.Write([]byte(`{"label":"Počet obyvatel celkem","value":10827529,"unit":"osoby","updated":2023}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil, nil)

	entry, err := client.FetchDataset(context.Background(), "OBY01")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if entry.ID != "OBY01" {
		t.Errorf("expected id OBY01, got %s", entry.ID)
	}
	if entry.Name != "Počet obyvatel celkem" {
		t.Errorf("unexpected name: %s", entry.Name)
	}
	if entry.Value != 10827529 {
		t.Errorf("expected value 10827529, got %f", entry.Value)
	}
	if entry.Unit != model.UnitPersons {
		t.Errorf("expected unit persons, got %s", entry.Unit)
	}
	if entry.Year != 2023 {
		t.Errorf("expected year 2023, got %d", entry.Year)
	}
	if len(entry.Keywords) == 0 {
		t.Error("expected keywords derived from label")
	}
}

func TestClient_FetchDataset_ListValue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"label":"Míra inflace","value":[2.5,10.7,15.1],"unit":"%","updated":2023}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil, nil)

	entry, err := client.FetchDataset(context.Background(), "INF01")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if entry.Value != 2.5 {
		t.Errorf("expected first list element 2.5, got %f", entry.Value)
	}
	if entry.Unit != model.UnitPercent {
		t.Errorf("expected unit percent, got %s", entry.Unit)
	}
}

func TestClient_FetchDataset_NotFoundNoRetry(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(&requests, 1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil, nil)

	_, err := client.FetchDataset(context.Background(), "MISSING")
	if err == nil {
		t.Fatal("expected error for 404, got nil")
	}
	if atomic.LoadInt32(&requests) != 1 {
		t.Errorf("expected no retries on 404, got %d requests", requests)
	}
}

func TestClient_FetchDataset_RetriesServerError(t *testing.T) {
	var slept []time.Duration
	origSleep := sleepFunc
	sleepFunc = func(d time.Duration) { slept = append(slept, d) }
	defer func() { sleepFunc = origSleep }()

	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		n := atomic.AddInt32(&requests, 1)
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"label":"HDP","value":7300000000000,"unit":"czk","updated":2023}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil, nil)

	entry, err := client.FetchDataset(context.Background(), "HDP01")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if entry.Value != 7300000000000 {
		t.Errorf("unexpected value %f", entry.Value)
	}
	if atomic.LoadInt32(&requests) != 3 {
		t.Errorf("expected 3 requests, got %d", requests)
	}

	expected := []time.Duration{1 * time.Second, 2 * time.Second}
	if len(slept) != len(expected) {
		t.Fatalf("expected %d backoffs, got %d", len(expected), len(slept))
	}
	for i, d := range expected {
		if slept[i] != d {
			t.Errorf("backoff %d: expected %v, got %v", i, d, slept[i])
		}
	}
}

func TestClient_FetchDataset_ExhaustsRetries(t *testing.T) {
	origSleep := sleepFunc
	sleepFunc = func(time.Duration) {}
	defer func() { sleepFunc = origSleep }()

	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil, nil)

	_, err := client.FetchDataset(context.Background(), "DOWN")
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if atomic.LoadInt32(&requests) != int32(clientMaxRetries) {
		t.Errorf("expected %d requests, got %d", clientMaxRetries, requests)
	}
}

func TestClient_FetchDataset_CacheHit(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(&requests, 1)
		_, _ = w.Write([]byte(`{"label":"Průměrná mzda","value":45854,"unit":"czk","updated":2023}`))
	}))
	defer server.Close()

	store := cache.NewMemoryCache(5*time.Minute, 10*time.Minute)
	client := NewClient(testConfig(server.URL), store, nil)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		entry, err := client.FetchDataset(ctx, "MZD01")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if entry.Value != 45854 {
			t.Errorf("unexpected value %f", entry.Value)
		}
	}

	if atomic.LoadInt32(&requests) != 1 {
		t.Errorf("expected 1 upstream request, got %d", requests)
	}
}

func TestClient_FetchDataset_RobotsDisallow(t *testing.T) {
	var datasetRequests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /rest/\n"))
			return
		}
		atomic.AddInt32(&datasetRequests, 1)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil, nil)

	_, err := client.FetchDataset(context.Background(), "BLOCKED")
	if err == nil {
		t.Fatal("expected robots.txt error, got nil")
	}
	if atomic.LoadInt32(&datasetRequests) != 0 {
		t.Errorf("expected no dataset request, got %d", datasetRequests)
	}
}

func TestClient_FetchDataset_EmptyCode(t *testing.T) {
	client := NewClient(testConfig("https://vdb.czso.cz/vdbvo2"), nil, nil)

	if _, err := client.FetchDataset(context.Background(), "  "); err == nil {
		t.Error("expected error for empty code")
	}
}

func TestParseDataset(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{"missing label", `{"value":1,"unit":"czk","updated":2023}`, true},
		{"missing value", `{"label":"x","unit":"czk","updated":2023}`, true},
		{"empty value list", `{"label":"x","value":[],"unit":"czk","updated":2023}`, true},
		{"unsupported unit", `{"label":"x","value":1,"unit":"tuny","updated":2023}`, true},
		{"invalid json", `{`, true},
		{"valid", `{"label":"x y","value":1,"unit":"czk","updated":2023}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseDataset("T01", []byte(tt.data))
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}
