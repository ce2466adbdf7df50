package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"silencecut/internal/timeutil"
	"silencecut/pipeline"
	"silencecut/silence"
)

// intervalsView is the JSON shape shared by detect and parse.
type intervalsView struct {
	Input          string                 `json:"input,omitempty"`
	Duration       float64                `json:"duration"`
	DurationKnown  bool                   `json:"duration_known"`
	DurationSource silence.DurationSource `json:"duration_source,omitempty"`
	KeptSeconds    float64                `json:"kept_seconds"`
	Warning        string                 `json:"warning,omitempty"`
	Intervals      []silence.KeepInterval `json:"intervals"`
}

func newIntervalsView(det *pipeline.Detection) intervalsView {
	res := det.Result
	view := intervalsView{
		Input:         det.Input,
		Duration:      res.Duration,
		DurationKnown: res.DurationKnown,
		KeptSeconds:   res.KeptSeconds(),
		Intervals:     res.Intervals,
	}
	if view.Intervals == nil {
		view.Intervals = []silence.KeepInterval{}
	}
	if det.Diagnostics != nil && det.Diagnostics.Duration != nil {
		view.DurationSource = det.Diagnostics.Duration.Source
	}
	if res.Warning != nil {
		view.Warning = res.Warning.Error()
	}
	return view
}

func newDetectCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "detect [input]",
		Short: "Print the intervals that would be kept, without cutting",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.load(cmd, args); err != nil {
				return err
			}
			if err := ctx.cfg.Validate(); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			ui := newProgressUI(cmd.ErrOrStderr(), !ctx.cfg.Verbose && !jsonOut)
			det, err := pipeline.New(ctx.cfg, logger).
				SetDetectProgress(ui.detectCallback()).
				Detect(cmd.Context())
			ui.finish()
			if err != nil {
				return err
			}

			return printIntervals(cmd, newIntervalsView(det), jsonOut)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print intervals as JSON")
	return cmd
}

func printIntervals(cmd *cobra.Command, view intervalsView, jsonOut bool) error {
	if jsonOut {
		return writeJSON(cmd, view)
	}
	writeIntervalsTable(cmd.OutOrStdout(), view)
	return nil
}

func writeIntervalsTable(w io.Writer, view intervalsView) {
	rows := make([][]string, 0, len(view.Intervals))
	for i, iv := range view.Intervals {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			timeutil.FormatSeconds(iv.Start),
			timeutil.FormatSeconds(iv.End),
			strconv.FormatFloat(iv.Duration(), 'f', 3, 64),
		})
	}

	footer := []string{"", "", "kept", strconv.FormatFloat(view.KeptSeconds, 'f', 3, 64)}
	fmt.Fprintln(w, renderTable(
		[]string{"#", "Start", "End", "Seconds"},
		rows,
		footer,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
	))

	switch {
	case view.DurationKnown:
		fmt.Fprintf(w, "Duration %s (%s), %d intervals kept\n",
			timeutil.FormatSeconds(view.Duration), view.DurationSource, len(view.Intervals))
	default:
		fmt.Fprintf(w, "Duration unknown, %d intervals kept\n", len(view.Intervals))
	}
	if view.Warning != "" {
		fmt.Fprintf(w, "Warning: %s\n", view.Warning)
	}
}
