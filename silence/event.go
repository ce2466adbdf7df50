package silence

import "fmt"

// EventKind distinguishes the two silencedetect markers.
type EventKind int

const (
	// EventStart marks the point where a silent region begins.
	EventStart EventKind = iota
	// EventEnd marks the point where a silent region ends.
	EventEnd
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "silence_start"
	case EventEnd:
		return "silence_end"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a single silence marker in stream order.
type Event struct {
	Kind EventKind
	Time float64 // seconds
	Line int     // 1-based line in the diagnostic text, 0 when synthesized
}

// DurationSource records where a total duration came from.
type DurationSource string

const (
	SourceProgress DurationSource = "progress" // last progress line of the diagnostic stream
	SourceProbe    DurationSource = "probe"    // container metadata supplied by the caller
)

// DurationReport is the best known estimate of the total media duration.
type DurationReport struct {
	Total  float64
	Line   int
	Source DurationSource
}

// Diagnostics is the parsed form of one diagnostic text blob.
//
// Duration is nil when the stream carried no usable progress report.
type Diagnostics struct {
	Events   []Event
	Duration *DurationReport
}

// SetDuration overrides the total duration with a value obtained elsewhere,
// typically from ffprobe when the stream itself had no progress line.
func (d *Diagnostics) SetDuration(total float64, source DurationSource) {
	d.Duration = &DurationReport{Total: total, Source: source}
}

// KeepInterval is a span of media to retain, in seconds.
type KeepInterval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the length of the interval.
func (k KeepInterval) Duration() float64 {
	return k.End - k.Start
}

func (k KeepInterval) String() string {
	return fmt.Sprintf("{%.3f, %.3f}", k.Start, k.End)
}
