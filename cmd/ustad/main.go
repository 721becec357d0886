package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ustad/internal/config"
	"ustad/internal/dialogue"
	"ustad/internal/llm"
	"ustad/internal/logging"
	"ustad/internal/mcp"
	"ustad/internal/search"
	"ustad/internal/session"
)

const version = "1.0.0"

var (
	// Global flags
	verbose   bool
	workspace string
	timeout   time.Duration

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ustad",
	Short: "ustad - collaborative reasoning engine",
	Long: `ustad runs structured multi-perspective dialogues over hard problems
and keeps a sequential-thought ledger per session.

Serve it as an MCP stdio server for agent integration, or run a
one-shot dialogue with "ustad think".`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if workspace == "" {
			workspace, _ = os.Getwd()
		}
		if err := logging.Initialize(workspace); err != nil {
			logger.Warn("file logging unavailable", zap.Error(err))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// serveCmd runs the MCP stdio server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the reasoning tools over MCP stdio",
	Long: `Speaks JSON-RPC 2.0 on stdin/stdout: initialize, tools/list,
tools/call, ping. Intended to be launched by an MCP host.`,
	RunE: runServe,
}

// thinkCmd runs one dialogue and prints the result.
var thinkCmd = &cobra.Command{
	Use:   "think [problem]",
	Short: "Run one collaborative dialogue on a problem",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runThink,
}

var (
	thinkContext      string
	thinkPerspectives []string
	thinkRounds       int
	thinkComplexity   string
	thinkJSON         bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ustad %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "workspace directory (default: cwd)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "overall operation timeout")

	thinkCmd.Flags().StringVarP(&thinkContext, "context", "c", "", "background context for the problem")
	thinkCmd.Flags().StringSliceVarP(&thinkPerspectives, "perspectives", "p", nil, "explicit perspectives (comma-separated)")
	thinkCmd.Flags().IntVarP(&thinkRounds, "rounds", "r", 0, "round count override (1-4)")
	thinkCmd.Flags().StringVar(&thinkComplexity, "complexity", "", "complexity tier override (simple|research|complex|build)")
	thinkCmd.Flags().BoolVar(&thinkJSON, "json", false, "print the full result as JSON")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(thinkCmd)
	rootCmd.AddCommand(versionCmd)
}

// buildStore assembles the engine from workspace config.
func buildStore(ctx context.Context) (*session.Store, error) {
	userCfg, err := config.Load(workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	client, err := llm.NewClient(ctx, userCfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to build LLM client: %w", err)
	}

	var searcher dialogue.Searcher
	if tavily := search.NewTavilyClient(userCfg.Search); tavily.Configured() {
		searcher = tavily
	} else {
		logger.Debug("search not configured, research tier degrades to dialogue only")
	}

	orch := dialogue.NewOrchestrator(client, searcher, userCfg.Dialogue)
	return session.NewStore(orch), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	store, err := buildStore(ctx)
	if err != nil {
		return err
	}

	logger.Info("mcp server starting", zap.String("workspace", workspace))
	return mcp.NewServer(store, os.Stdin, os.Stdout).Serve(ctx)
}

func runThink(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	store, err := buildStore(ctx)
	if err != nil {
		return err
	}

	opts := dialogue.SelectOptions{RoundOverride: thinkRounds}
	if thinkComplexity != "" {
		switch tier := dialogue.Complexity(thinkComplexity); tier {
		case dialogue.ComplexitySimple, dialogue.ComplexityResearch, dialogue.ComplexityComplex, dialogue.ComplexityBuild:
			opts.ComplexityOverride = tier
		default:
			return fmt.Errorf("unknown complexity tier: %s", thinkComplexity)
		}
	}
	for _, name := range thinkPerspectives {
		p, ok := dialogue.ParsePerspective(name)
		if !ok {
			return fmt.Errorf("unknown perspective: %s", name)
		}
		opts.Perspectives = append(opts.Perspectives, p)
	}

	id := store.Create()
	start := time.Now()
	res, err := store.RunDialogue(ctx, id, args[0], thinkContext, opts)
	if err != nil {
		return err
	}

	if thinkJSON {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if res.Skipped {
		fmt.Println("Problem classified as simple; no dialogue needed.")
		return nil
	}

	fmt.Printf("Perspectives: ")
	for i, p := range res.Perspectives {
		if i > 0 {
			fmt.Print(", ")
		}
		fmt.Print(p)
	}
	fmt.Printf("\nRounds: %d  Confidence: %.2f  Elapsed: %v\n\n", res.RoundsExecuted, res.Confidence, time.Since(start).Round(time.Millisecond))
	fmt.Println(res.FinalText)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
