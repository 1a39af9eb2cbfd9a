package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hradek/fiskal/internal/model"
	"github.com/hradek/fiskal/internal/pipeline"
)

var (
	outJSON     string
	outMD       string
	timeout     time.Duration
	catalogPath string
	gapLogPath  string
	proposal    string
	noFallback  bool
	noFooter    bool
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [claims.json]",
	Short: "Cost the claims of a policy proposal",
	Long: `Analyze costs a structured claims document:
- Resolve each claim's statistical inputs from the dataset catalog
- Route every claim to a costing formula and compute its cost
- Record claims the engine cannot price in the gap log
- Generate JSON and Markdown reports with full derivations

With --text, claims are first extracted from a free-text proposal by
the configured LLM provider.

Example:
  fiskal analyze claims.json
  fiskal analyze claims.json --json report.json --md report.md
  fiskal analyze --text "Přidáme každému hasiči 5000 Kč." --llm --llm-provider openai`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Engine flags
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall analysis timeout")
	analyzeCmd.Flags().StringVar(&catalogPath, "catalog", "", "extra catalog file merged over the builtin datasets")
	analyzeCmd.Flags().StringVar(&gapLogPath, "gap-log", "", "gap log path (default: ~/.fiskal/gaps.db)")
	analyzeCmd.Flags().BoolVar(&noFallback, "no-fallback", false, "disable the statistics office fallback")

	// LLM flags
	analyzeCmd.Flags().StringVar(&proposal, "text", "", "free-text proposal to extract claims from (needs --llm)")
	analyzeCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable the LLM extraction and narrative adapters")
	analyzeCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	analyzeCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if proposal == "" && len(args) != 1 {
		return fmt.Errorf("need a claims file or --text")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := analyzeConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	var report *model.AnalysisReport
	if proposal != "" {
		report, err = p.AnalyzeText(ctx, proposal)
	} else {
		report, err = p.AnalyzeFile(ctx, args[0])
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Costed %d of %d claims\n", report.Supported(), len(report.Outcomes))
		if report.LLM != nil && report.LLM.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated narrative using %s/%s\n", report.LLM.Provider, report.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	if err := p.RenderReport(report, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}

// analyzeConfig builds the engine configuration shared by analyze and
// batch from the config file and flags.
func analyzeConfig() (*model.Config, error) {
	cfg := loadConfig()
	if catalogPath != "" {
		cfg.Catalog.Path = catalogPath
	}
	if gapLogPath != "" {
		cfg.GapLog.Path = gapLogPath
	}
	if noFallback {
		cfg.Fallback.Enabled = false
	}
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter

	// The LLM adapters are strictly opt-in: a provider in the config
	// file activates only together with --llm.
	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel
		cfg.LLM.StrictSources = true // Always enforce

		// Get API key from environment
		switch llmProvider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "anthropic", "claude":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
			}
		case "ollama":
			// Ollama doesn't need an API key
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
				cfg.LLM.BaseURL = baseURL
			}
		}
	} else {
		cfg.LLM.Provider = ""
	}

	return cfg, nil
}
