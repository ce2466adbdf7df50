package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"silencecut/config"
	"silencecut/logging"
)

// commandContext carries what every subcommand needs after flag parsing.
type commandContext struct {
	cfg        *config.Config
	configPath string
	logger     *zap.Logger
}

// load builds the effective config for cmd. A positional input overrides the
// config file but not an explicit --input.
func (c *commandContext) load(cmd *cobra.Command, args []string) error {
	cfg, path, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	if len(args) > 0 && !cmd.Flags().Changed(config.FlagInput) {
		cfg.Input = args[0]
		if !cmd.Flags().Changed(config.FlagOutput) {
			cfg.Output = ""
		}
	}
	cfg.ResolveOutput()

	c.cfg = cfg
	c.configPath = path
	return nil
}

// ensureLogger builds the logger from the loaded config once.
func (c *commandContext) ensureLogger() (*zap.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}
	logger, err := logging.New(logging.Options{
		Level:  logging.LevelFor(c.cfg.Verbose),
		Format: c.cfg.LogFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	c.logger = logger
	if c.configPath != "" {
		logger.Debug("loaded config file", zap.String("path", c.configPath))
	}
	return logger, nil
}

func (c *commandContext) close() {
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}
	opts := &runOptions{}

	rootCmd := &cobra.Command{
		Use:   "silencecut [input]",
		Short: "Remove silent passages from a video",
		Long: "silencecut runs ffmpeg's silencedetect filter over one audio stream,\n" +
			"keeps everything between the silences and joins the kept parts into\n" +
			"a new file. Without a subcommand it behaves like 'silencecut run'.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, args, ctx, opts)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
	}
	config.BindFlags(rootCmd.PersistentFlags())
	opts.bind(rootCmd.Flags())

	rootCmd.AddCommand(newRunCommand(ctx, opts))
	rootCmd.AddCommand(newDetectCommand(ctx))
	rootCmd.AddCommand(newParseCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

// isTerminal reports whether f is an interactive terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
