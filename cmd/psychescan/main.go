package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"psychescan"
	"psychescan/cmd/psychescan/tui"
)

var (
	cfg    psychescan.Config
	logger *zap.Logger
)

func isTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func newRootCommand() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "psychescan",
		Short: "PsycheScan AI - a five-question personality scan",
		Long: `PsycheScan asks five questions, lets you pick who narrates the verdict,
and has an LLM write your personality report (with an illustration of your
spirit character when the backend can draw one).

Run without arguments to start the interactive terminal app.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = loadConfig(cmd, v)
			if err != nil {
				return err
			}

			zapConfig := zap.NewProductionConfig()
			if cfg.Verbose {
				zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			// The TUI owns the terminal, so logs go to a file.
			zapConfig.OutputPaths = []string{cfg.LogFile}
			zapConfig.ErrorOutputPaths = []string{cfg.LogFile}
			logger, err = zapConfig.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			psychescan.SetLogger(logger)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd.Context())
		},
	}
	bindFlags(rootCmd, v)

	rootCmd.AddCommand(newQuestionsCmd(), newTonesCmd())
	return rootCmd
}

func runInteractive(ctx context.Context) error {
	if !isTTY() {
		return fmt.Errorf("psychescan needs an interactive terminal; try `psychescan questions` or `psychescan tones`")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	maker, err := cfg.NewReportMaker(ctx)
	if err != nil {
		return fmt.Errorf("failed to create report maker: %w", err)
	}
	gate, err := cfg.NewGate()
	if err != nil {
		return fmt.Errorf("failed to create identity gate: %w", err)
	}

	app := psychescan.NewApp(psychescan.DefaultQuestionBank(), maker, gate)
	logger.Info("starting psychescan",
		zap.String("provider", cfg.Provider),
		zap.Bool("images", cfg.Images),
	)
	return tui.Run(ctx, app, gate, tui.Options{Style: cfg.Style})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}
