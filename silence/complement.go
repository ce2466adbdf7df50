package silence

import (
	"errors"
	"fmt"
	"math"
)

// DefaultUnboundedEnd closes the final keep interval when the total duration
// is unknown. It is far beyond any real media length, so ffmpeg simply reads
// to the end of the input.
const DefaultUnboundedEnd = 10_000_000.0

// Options tunes the complementer.
type Options struct {
	// Padding moves every boundary that comes from a silence marker into the
	// adjacent silence by this many seconds, so speech right next to a pause
	// is not clipped. Negative values shrink keep intervals instead.
	Padding float64

	// UnboundedEnd is used as the end of the final keep interval when the
	// total duration is unknown.
	UnboundedEnd float64
}

// Option mutates Options.
type Option func(*Options)

// WithPadding sets Options.Padding.
func WithPadding(seconds float64) Option {
	return func(o *Options) {
		o.Padding = seconds
	}
}

// WithUnboundedEnd sets Options.UnboundedEnd. Non-positive values are ignored.
func WithUnboundedEnd(seconds float64) Option {
	return func(o *Options) {
		if seconds > 0 {
			o.UnboundedEnd = seconds
		}
	}
}

// DefaultOptions returns zero padding and DefaultUnboundedEnd.
func DefaultOptions() Options {
	return Options{UnboundedEnd: DefaultUnboundedEnd}
}

// Result is the outcome of complementing one diagnostic stream.
type Result struct {
	Intervals []KeepInterval

	// Duration is the total duration used to close the final interval.
	// Zero when DurationKnown is false.
	Duration      float64
	DurationKnown bool

	// Warning is set when the sentinel had to stand in for the duration.
	Warning *AmbiguousDurationWarning
}

// KeptSeconds sums the length of all keep intervals.
func (r *Result) KeptSeconds() float64 {
	total := 0.0
	for _, iv := range r.Intervals {
		total += iv.Duration()
	}
	return total
}

// Complementer inverts silence markers into keep intervals.
type Complementer struct {
	opts Options
}

// NewComplementer builds a Complementer from DefaultOptions plus opts.
func NewComplementer(opts ...Option) *Complementer {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if math.IsNaN(o.Padding) || math.IsInf(o.Padding, 0) {
		o.Padding = 0
	}
	return &Complementer{opts: o}
}

// Options returns the effective options.
func (c *Complementer) Options() Options {
	return c.opts
}

type state int

const (
	stateInitial state = iota // no marker seen yet
	stateInSound
	stateInSilence
)

// span is a keep interval before padding. padStart/padEnd mark boundaries
// that came from a silence marker; boundaries at 0 and at the total
// duration are never padded.
type span struct {
	start, end       float64
	padStart, padEnd bool
}

// Complement walks the markers and returns the keep intervals covering
// [0, duration] minus the silent regions.
func (c *Complementer) Complement(d *Diagnostics) (*Result, error) {
	if d == nil {
		return nil, errors.New("complement: nil diagnostics")
	}

	res := &Result{}
	end := c.opts.UnboundedEnd
	if d.Duration != nil {
		end = d.Duration.Total
		res.Duration = d.Duration.Total
		res.DurationKnown = true
	}

	var (
		cur      = stateInitial
		open     float64
		boundary float64
		spans    = make([]span, 0, len(d.Events)/2+1)
	)

	for _, ev := range d.Events {
		if ev.Time < boundary {
			return nil, &ParseError{
				Line:  ev.Line,
				Field: ev.Kind.String(),
				Text:  formatSeconds(ev.Time),
				Err:   fmt.Errorf("%w: %.3fs is before previous boundary %.3fs", ErrOutOfOrder, ev.Time, boundary),
			}
		}

		switch {
		case cur == stateInitial && ev.Kind == EventStart:
			// The stream opened with sound: the first keep interval starts at 0.
			// Silence right at 0 leaves nothing to keep.
			if ev.Time > 0 {
				spans = append(spans, span{start: 0, end: ev.Time, padEnd: true})
			}
			cur = stateInSilence
		case cur == stateInitial && ev.Kind == EventEnd:
			// The stream opened with silence that had no start marker.
			open = ev.Time
			cur = stateInSound
		case cur == stateInSound && ev.Kind == EventStart:
			spans = append(spans, span{start: open, end: ev.Time, padStart: true, padEnd: true})
			cur = stateInSilence
		case cur == stateInSilence && ev.Kind == EventEnd:
			open = ev.Time
			cur = stateInSound
		default:
			return nil, &ParseError{
				Line:  ev.Line,
				Field: ev.Kind.String(),
				Text:  formatSeconds(ev.Time),
				Err:   fmt.Errorf("%w: %s follows %s", ErrUnbalancedMarkers, ev.Kind, ev.Kind),
			}
		}
		boundary = ev.Time
	}

	// The stream ended in sound: close the open interval at the duration.
	switch cur {
	case stateInitial:
		spans = append(spans, span{start: 0, end: end})
	case stateInSound:
		spans = append(spans, span{start: open, end: end, padStart: true})
	}
	if !res.DurationKnown && (cur == stateInitial || cur == stateInSound) {
		res.Warning = &AmbiguousDurationWarning{Sentinel: c.opts.UnboundedEnd}
	}

	res.Intervals = c.finalize(spans, res.Duration, res.DurationKnown)
	return res, nil
}

// finalize applies padding, clamps every interval into [0, duration] with
// start <= end, and merges intervals that overlap after padding.
func (c *Complementer) finalize(spans []span, duration float64, known bool) []KeepInterval {
	out := make([]KeepInterval, 0, len(spans))
	for _, s := range spans {
		iv := KeepInterval{Start: s.start, End: s.end}
		if s.padStart {
			iv.Start -= c.opts.Padding
		}
		if s.padEnd {
			iv.End += c.opts.Padding
		}

		iv.Start = math.Max(iv.Start, 0)
		if known {
			iv.Start = math.Min(iv.Start, duration)
			iv.End = math.Min(iv.End, duration)
		}
		if iv.End < iv.Start {
			iv.End = iv.Start
		}

		if n := len(out); n > 0 && iv.Start <= out[n-1].End {
			out[n-1].End = math.Max(out[n-1].End, iv.End)
			continue
		}
		out = append(out, iv)
	}
	return out
}

// Extract parses text and complements the markers in one step.
func Extract(text string, opts ...Option) (*Result, error) {
	d, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return NewComplementer(opts...).Complement(d)
}

// Validate checks the output guarantees: start <= end, sorted by strictly
// increasing start, and no overlap.
func Validate(intervals []KeepInterval) error {
	for i, iv := range intervals {
		if iv.Start < 0 {
			return fmt.Errorf("interval %d %s starts before 0", i, iv)
		}
		if iv.End < iv.Start {
			return fmt.Errorf("interval %d %s ends before it starts", i, iv)
		}
		if i == 0 {
			continue
		}
		prev := intervals[i-1]
		if iv.Start <= prev.Start {
			return fmt.Errorf("interval %d %s is not after interval %d %s", i, iv, i-1, prev)
		}
		if iv.Start < prev.End {
			return fmt.Errorf("interval %d %s overlaps interval %d %s", i, iv, i-1, prev)
		}
	}
	return nil
}

func formatSeconds(t float64) string {
	return fmt.Sprintf("%g", t)
}
