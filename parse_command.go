package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"silencecut/pipeline"
)

func newParseCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "parse FILE|-",
		Short: "Compute keep intervals from saved silencedetect output",
		Long: "parse reads ffmpeg's stderr from a silencedetect run, for example\n" +
			"  ffmpeg -i talk.mp4 -af silencedetect=n=-30dB:d=0.5 -f null - 2> detect.log\n" +
			"and prints the intervals between the silences. Padding, unbounded end\n" +
			"and strict mode flags apply.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.load(cmd, nil); err != nil {
				return err
			}
			if err := ctx.cfg.ValidateSettings(); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			text, err := readDiagnostics(cmd, args[0])
			if err != nil {
				return err
			}

			det, err := pipeline.New(ctx.cfg, logger).Analyze(text)
			if err != nil {
				return err
			}
			return printIntervals(cmd, newIntervalsView(det), jsonOut)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print intervals as JSON")
	return cmd
}

func readDiagnostics(cmd *cobra.Command, path string) (string, error) {
	if path != "-" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read diagnostics: %w", err)
		}
		return string(data), nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && isTerminal(f) {
		return "", fmt.Errorf("refusing to read diagnostics from a terminal; pipe ffmpeg's stderr or pass a file")
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read diagnostics from stdin: %w", err)
	}
	return string(data), nil
}
