package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"silencecut/config"
	"silencecut/internal/timeutil"
	"silencecut/models"
	"silencecut/segmenter"
)

// Report summarizes one run.
type Report struct {
	RunID  string `json:"run_id"`
	Input  string `json:"input"`
	Output string `json:"output"`

	Duration       float64 `json:"duration"` // 0 when unknown
	DurationKnown  bool    `json:"duration_known"`
	KeptSeconds    float64 `json:"kept_seconds"`
	RemovedSeconds float64 `json:"removed_seconds"` // 0 when the duration is unknown

	Segments int `json:"segments"`
	Failed   int `json:"failed"`

	InputSize  uint64        `json:"input_size"`
	OutputSize uint64        `json:"output_size"`
	Elapsed    time.Duration `json:"elapsed"`

	DryRun   bool     `json:"dry_run"`
	Commands []string `json:"commands,omitempty"`
}

func newReport(runID string, cfg *config.Config, det *Detection, segs []*models.Segment) *Report {
	r := &Report{
		RunID:         runID,
		Input:         cfg.Input,
		Output:        cfg.Output,
		Duration:      det.Result.Duration,
		DurationKnown: det.Result.DurationKnown,
		KeptSeconds:   segmenter.KeptSeconds(segs),
		Segments:      len(segs),
	}
	if det.Probe != nil {
		r.InputSize = det.Probe.GetSize()
	}
	if r.DurationKnown && r.Duration > r.KeptSeconds {
		r.RemovedSeconds = r.Duration - r.KeptSeconds
	}
	return r
}

// KeptPercent is the share of the input that survives, or 0 when the
// duration is unknown.
func (r *Report) KeptPercent() float64 {
	if !r.DurationKnown || r.Duration <= 0 {
		return 0
	}
	return r.KeptSeconds / r.Duration * 100
}

// Write prints a human readable summary.
func (r *Report) Write(w io.Writer) {
	if r.DryRun {
		fmt.Fprintf(w, "Dry run: %d segments planned from %s\n", r.Segments, r.Input)
		for _, c := range r.Commands {
			fmt.Fprintf(w, "  %s\n", c)
		}
		return
	}

	fmt.Fprintf(w, "Output:   %s\n", r.Output)
	fmt.Fprintf(w, "Segments: %d", r.Segments)
	if r.Failed > 0 {
		fmt.Fprintf(w, " (%d failed)", r.Failed)
	}
	fmt.Fprintln(w)

	if r.DurationKnown {
		fmt.Fprintf(w, "Kept:     %s of %s (%.1f%%)\n",
			timeutil.FormatSeconds(r.KeptSeconds), timeutil.FormatSeconds(r.Duration), r.KeptPercent())
		fmt.Fprintf(w, "Removed:  %s\n", timeutil.FormatSeconds(r.RemovedSeconds))
	} else {
		fmt.Fprintf(w, "Kept:     %s (input duration unknown)\n", timeutil.FormatSeconds(r.KeptSeconds))
	}

	if r.OutputSize > 0 {
		if r.InputSize > 0 {
			fmt.Fprintf(w, "Size:     %s -> %s\n", humanize.Bytes(r.InputSize), humanize.Bytes(r.OutputSize))
		} else {
			fmt.Fprintf(w, "Size:     %s\n", humanize.Bytes(r.OutputSize))
		}
	}
	fmt.Fprintf(w, "Elapsed:  %s\n", r.Elapsed.Round(time.Millisecond))
}
