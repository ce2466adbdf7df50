package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"silencecut/pipeline"
)

type runOptions struct {
	json bool
}

func (o *runOptions) bind(fs *pflag.FlagSet) {
	fs.BoolVar(&o.json, "json", false, "Print the run report as JSON")
}

func newRunCommand(ctx *commandContext, opts *runOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [input]",
		Short: "Detect silence and write the input without it",
		Example: "  silencecut run talk.mp4\n" +
			"  silencecut run -i talk.mp4 -o short.mp4 --noise -35 --min-silence 0.8\n" +
			"  silencecut run talk.mp4 --dry-run",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, args, ctx, opts)
		},
	}
	opts.bind(cmd.Flags())
	return cmd
}

func runPipeline(cmd *cobra.Command, args []string, ctx *commandContext, opts *runOptions) error {
	if err := ctx.load(cmd, args); err != nil {
		return err
	}
	cfg := ctx.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	logger.Info("starting",
		zap.String("input", cfg.Input),
		zap.String("output", cfg.Output),
		zap.Int("workers", cfg.EffectiveWorkers()))

	out := cmd.OutOrStdout()
	if cfg.DryRun && !opts.json {
		cfg.PrintConfig(out)
	}

	p := pipeline.New(cfg, logger)

	ui := newProgressUI(cmd.ErrOrStderr(), !cfg.Verbose && !opts.json)
	defer ui.finish()
	p.SetDetectProgress(ui.detectCallback()).SetSegmentProgress(ui.segmentCallback())

	report, err := p.Run(cmd.Context())
	ui.finish()
	if err != nil {
		return err
	}

	if opts.json {
		return writeJSON(cmd, report)
	}
	report.Write(out)
	if !report.DryRun && report.Failed > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %d segments failed and were left out\n", report.Failed)
	}
	return nil
}
