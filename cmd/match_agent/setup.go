package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/group-matcher/internal/config"
	"github.com/jonathan/group-matcher/internal/db"
	"github.com/jonathan/group-matcher/internal/engine"
	"github.com/jonathan/group-matcher/internal/llm"
	"github.com/jonathan/group-matcher/internal/observability"
	"github.com/jonathan/group-matcher/internal/search"
	"github.com/jonathan/group-matcher/internal/types"
)

// phaseFlags is the flag set shared by every phase command.
type phaseFlags struct {
	configPath  string
	semesterID  string
	majorID     string
	databaseURL string
	apiKey      string
	searchURL   string
	jsonOutput  bool
	verbose     bool
}

func (f *phaseFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	cmd.Flags().StringVarP(&f.semesterID, "semester", "s", "", "Semester ID to run against (required)")
	cmd.Flags().StringVarP(&f.majorID, "major", "m", "", "Restrict the run to a single major")
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "Print the run result as JSON instead of formatted boxes")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print detailed debug information")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY.
	// Without it the engine runs on deterministic heuristics only.
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "Gemini API key (optional, defaults to GEMINI_API_KEY env var)")

	cmd.Flags().StringVar(&f.searchURL, "search-url", "", "Semantic-search base URL (optional, shortlist gate is skipped without it)")

	cmd.Flags().StringVar(&f.databaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	_ = cmd.MarkFlagRequired("semester")
}

// load merges the config file, CLI overrides, and environment into one
// validated configuration. Command-line args take priority over the file.
func (f *phaseFlags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if f.verbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", f.configPath)
		}
	}

	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = f.databaseURL
	}
	if cmd.Flags().Changed("api-key") {
		cfg.GeminiAPIKey = f.apiKey
	}
	if cmd.Flags().Changed("search-url") {
		cfg.SearchURL = f.searchURL
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = f.verbose
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}

	return cfg, nil
}

// harness bundles the wired collaborators for one phase run.
type harness struct {
	engine  *engine.Engine
	printer *observability.Printer
	logger  *zap.Logger
	closers []func()
}

func (h *harness) close() {
	for i := len(h.closers) - 1; i >= 0; i-- {
		h.closers[i]()
	}
}

// buildHarness connects the database and the optional AI collaborators.
func buildHarness(ctx context.Context, cfg *config.Config) (*harness, error) {
	logger, err := observability.NewLogger(cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	h := &harness{
		printer: observability.NewPrinter(os.Stdout),
		logger:  logger,
		closers: []func(){func() { _ = logger.Sync() }},
	}

	store, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		h.close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	h.closers = append(h.closers, store.Close)

	var opts []engine.Option
	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			h.close()
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		h.closers = append(h.closers, func() { _ = gemini.Close() })
		opts = append(opts, engine.WithRanker(llm.NewRanker(gemini, logger)))
	} else {
		logger.Info("no Gemini API key configured, running with deterministic heuristics only")
	}
	if cfg.SearchURL != "" {
		opts = append(opts, engine.WithSearcher(search.NewClient(cfg.SearchURL, 0)))
	}

	h.engine = engine.New(store, store, cfg, logger, opts...)
	return h, nil
}

// phaseFunc is one engine phase invoked by a command.
type phaseFunc func(ctx context.Context, eng *engine.Engine, semesterID, majorID string) (*types.AssignResult, error)

// runPhase wires the harness, runs one phase, and prints its result.
func runPhase(cmd *cobra.Command, flags *phaseFlags, phase phaseFunc) error {
	ctx := context.Background()

	cfg, err := flags.load(cmd)
	if err != nil {
		return err
	}

	h, err := buildHarness(ctx, cfg)
	if err != nil {
		return err
	}
	defer h.close()

	result, err := phase(ctx, h.engine, flags.semesterID, flags.majorID)
	if err != nil {
		return err
	}

	if flags.jsonOutput {
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		_, _ = fmt.Fprintln(os.Stdout, string(encoded))
		return nil
	}

	h.printer.PrintResult(result)
	return nil
}
