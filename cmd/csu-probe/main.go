// Manual probe for the ČSÚ metadata endpoint. The costing pipeline
// never calls the statistics office at runtime; this tool exists to
// check by hand whether a dataset code would be fetchable before
// adding it to the catalog.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hradek/fiskal/internal/cache"
	"github.com/hradek/fiskal/internal/model"
	"github.com/hradek/fiskal/internal/statoffice"
)

func main() {
	fmt.Println("=== ČSÚ Dataset Probe ===")
	fmt.Println()

	codes := os.Args[1:]
	if len(codes) == 0 {
		// A couple of plausible dataset codes to try by default
		codes = []string{"HDP01", "OBY01"}
	}

	cfg := model.DefaultConfig()
	client := statoffice.NewClient(cfg.Fallback, cache.FromConfig(cfg.Cache), zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, code := range codes {
		fmt.Printf("Probing: %s\n", code)
		fmt.Println(strings.Repeat("-", 60))

		entry, err := client.FetchDataset(ctx, code)
		if err != nil {
			fmt.Printf("  ⚠️  Fetch failed: %v\n", err)
			fmt.Println()
			continue
		}

		fmt.Println("  ✓ Dataset resolved")
		fmt.Printf("     - Name: %s\n", entry.Name)
		fmt.Printf("     - Value: %g %s\n", entry.Value, entry.Unit)
		fmt.Printf("     - Year: %d\n", entry.Year)
		fmt.Printf("     - Source id: %s\n", entry.SourceID())
		fmt.Printf("     - Keywords: %s\n", strings.Join(entry.Keywords, ", "))
		fmt.Println()
	}

	fmt.Println("=== Probe Complete ===")
	fmt.Println()
	fmt.Println("Note: analysis runs resolve every value from the catalog; a code")
	fmt.Println("that probes fine still needs a catalog entry to be used.")
}
