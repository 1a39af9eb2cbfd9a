package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hradek/fiskal/internal/gaplog"
	"github.com/hradek/fiskal/internal/model"
)

var (
	gapsRun  string
	gapsJSON bool
)

// gapsCmd represents the gaps command
var gapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "Inspect unsupported claims recorded in the gap log",
	Long: `Inspect the gap log: claims the engine declined to cost, with the
reason, plus the catalog suggestions derived from fallback misses.

Without --run the command lists recorded runs; with --run it shows the
gaps and suggestions of one run.

Example:
  fiskal gaps
  fiskal gaps --run 20250114T101500Z-1a2b3c4d
  fiskal gaps --run 20250114T101500Z-1a2b3c4d --json`,
	RunE: runGaps,
}

func init() {
	rootCmd.AddCommand(gapsCmd)

	gapsCmd.Flags().StringVar(&gapsRun, "run", "", "show gaps for one run id")
	gapsCmd.Flags().BoolVar(&gapsJSON, "json", false, "emit JSON instead of text")
	gapsCmd.Flags().StringVar(&gapLogPath, "gap-log", "", "gap log path (default: ~/.fiskal/gaps.db)")
}

func runGaps(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if gapLogPath != "" {
		cfg.GapLog.Path = gapLogPath
	}

	store, err := gaplog.Open(cfg.GapLog.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if gapsRun == "" {
		return listRuns(store)
	}
	return showRun(store, gapsRun)
}

func listRuns(store *gaplog.Store) error {
	runs, err := store.Runs()
	if err != nil {
		return err
	}

	if gapsJSON {
		data, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "RUN\tSTARTED\tGAPS\n")
	fmt.Fprintf(w, "---\t-------\t----\n")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\n", r.RunID, r.StartedAt.Format(time.RFC3339), r.Gaps)
	}
	return w.Flush()
}

func showRun(store *gaplog.Store, runID string) error {
	gaps, err := store.Gaps(runID)
	if err != nil {
		return err
	}
	suggestions, err := store.Suggestions(runID)
	if err != nil {
		return err
	}

	if gapsJSON {
		payload := struct {
			RunID       string                   `json:"run_id"`
			Gaps        []model.UnsupportedClaim `json:"gaps"`
			Suggestions []model.Suggestion       `json:"suggestions"`
		}{runID, gaps, suggestions}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Run %s: %d unsupported claims\n\n", runID, len(gaps))
	for _, g := range gaps {
		fmt.Printf("✗ %s [%s] %s\n", g.ClaimID, g.Reason, g.Text)
		if g.Detail != "" {
			fmt.Printf("    %s\n", g.Detail)
		}
	}

	if len(suggestions) > 0 {
		fmt.Printf("\nCatalog suggestions:\n")
		for _, s := range suggestions {
			fmt.Printf("  - %s: %s\n", s.Action, strings.Join(s.Keywords, ", "))
		}
	}
	return nil
}
