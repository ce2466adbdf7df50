package silence

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"reflect"
	"strings"
	"testing"
)

const epsilon = 1e-9

func assertIntervals(t *testing.T, got []KeepInterval, want []KeepInterval) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("Expected %d intervals %v, got %d %v", len(want), want, len(got), got)
	}
	for i := range want {
		if math.Abs(got[i].Start-want[i].Start) > epsilon || math.Abs(got[i].End-want[i].End) > epsilon {
			t.Errorf("interval %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestExtract_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []KeepInterval
	}{
		{
			name: "stream opens in silence",
			input: strings.Join([]string{
				"[silencedetect @ 0x1] silence_end: 2.0 | silence_duration: 2.0",
				"[silencedetect @ 0x1] silence_start: 5.0",
				"size=N/A time=00:00:10.00 bitrate=N/A speed=100x",
			}, "\n"),
			expected: []KeepInterval{{Start: 2.0, End: 5.0}},
		},
		{
			name: "silence in the middle",
			input: strings.Join([]string{
				"[silencedetect @ 0x1] silence_start: 3.0",
				"[silencedetect @ 0x1] silence_end: 6.0 | silence_duration: 3.0",
				"size=N/A time=00:00:10.00 bitrate=N/A speed=100x",
			}, "\n"),
			expected: []KeepInterval{{Start: 0, End: 3.0}, {Start: 6.0, End: 10.0}},
		},
		{
			name:     "no silence at all",
			input:    "size=N/A time=00:00:15.00 bitrate=N/A speed=100x",
			expected: []KeepInterval{{Start: 0, End: 15.0}},
		},
		{
			name: "leading silence at zero is suppressed",
			input: strings.Join([]string{
				"[silencedetect @ 0x1] silence_start: 0",
				"[silencedetect @ 0x1] silence_end: 1.5 | silence_duration: 1.5",
				"size=N/A time=00:00:10.00 bitrate=N/A",
			}, "\n"),
			expected: []KeepInterval{{Start: 1.5, End: 10.0}},
		},
		{
			name: "stream ends in silence",
			input: strings.Join([]string{
				"[silencedetect @ 0x1] silence_start: 4",
				"size=N/A time=00:00:10.00 bitrate=N/A",
			}, "\n"),
			expected: []KeepInterval{{Start: 0, End: 4}},
		},
		{
			name: "stream ends in sound closes at duration",
			input: strings.Join([]string{
				"[silencedetect @ 0x1] silence_start: 30",
				"[silencedetect @ 0x1] silence_end: 35 | silence_duration: 5",
				"size=N/A time=00:02:00.00 bitrate=N/A",
			}, "\n"),
			expected: []KeepInterval{{Start: 0, End: 30}, {Start: 35, End: 120}},
		},
		{
			name:  "real ffmpeg output",
			input: realDetectOutput,
			// The last silence_end lands after the final progress clock, so the
			// trailing interval clamps to zero length at the duration.
			expected: []KeepInterval{{Start: 1.48312, End: 21.7316}, {Start: 23.9102, End: 40.1}, {Start: 42.66, End: 42.66}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Extract(tt.input)
			if err != nil {
				t.Fatalf("Extract returned error: %v", err)
			}
			assertIntervals(t, res.Intervals, tt.expected)
			if err := Validate(res.Intervals); err != nil {
				t.Errorf("Validate failed: %v", err)
			}
		})
	}
}

func TestComplement_ZeroEventsKnownDuration(t *testing.T) {
	for _, d := range []float64{0.5, 15, 120, 7322.75} {
		diag := &Diagnostics{}
		diag.SetDuration(d, SourceProgress)

		res, err := NewComplementer().Complement(diag)
		if err != nil {
			t.Fatalf("Complement returned error: %v", err)
		}
		assertIntervals(t, res.Intervals, []KeepInterval{{Start: 0, End: d}})
		if res.Warning != nil {
			t.Errorf("Expected no warning with known duration, got %v", res.Warning)
		}
	}
}

func TestComplement_UnknownDuration(t *testing.T) {
	t.Run("no events uses sentinel", func(t *testing.T) {
		res, err := NewComplementer().Complement(&Diagnostics{})
		if err != nil {
			t.Fatalf("Complement returned error: %v", err)
		}
		assertIntervals(t, res.Intervals, []KeepInterval{{Start: 0, End: DefaultUnboundedEnd}})
		if res.Warning == nil {
			t.Fatal("Expected AmbiguousDurationWarning")
		}
		if res.Warning.Sentinel != DefaultUnboundedEnd {
			t.Errorf("Expected sentinel %v, got %v", DefaultUnboundedEnd, res.Warning.Sentinel)
		}
		if res.DurationKnown {
			t.Error("Expected DurationKnown false")
		}
	})

	t.Run("ending in sound uses configured sentinel", func(t *testing.T) {
		res, err := Extract("silence_start: 3\nsilence_end: 6", WithUnboundedEnd(500))
		if err != nil {
			t.Fatalf("Extract returned error: %v", err)
		}
		assertIntervals(t, res.Intervals, []KeepInterval{{Start: 0, End: 3}, {Start: 6, End: 500}})
		if res.Warning == nil || res.Warning.Sentinel != 500 {
			t.Errorf("Expected warning with sentinel 500, got %v", res.Warning)
		}
	})

	t.Run("ending in silence needs no sentinel", func(t *testing.T) {
		res, err := Extract("silence_start: 3\nsilence_end: 6\nsilence_start: 9")
		if err != nil {
			t.Fatalf("Extract returned error: %v", err)
		}
		assertIntervals(t, res.Intervals, []KeepInterval{{Start: 0, End: 3}, {Start: 6, End: 9}})
		if res.Warning != nil {
			t.Errorf("Expected no warning, got %v", res.Warning)
		}
	})

	t.Run("warning is an error value", func(t *testing.T) {
		var err error = &AmbiguousDurationWarning{Sentinel: DefaultUnboundedEnd}
		if !strings.Contains(err.Error(), "sentinel") {
			t.Errorf("Unexpected warning text: %s", err)
		}
	})
}

func TestComplement_Unbalanced(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"two starts", "silence_start: 1\nsilence_start: 2", 2},
		{"two ends", "silence_end: 1\nsilence_end: 2", 2},
		{"two ends after pair", "silence_start: 1\nsilence_end: 2\nsilence_end: 3", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.input)
			if !errors.Is(err, ErrUnbalancedMarkers) {
				t.Fatalf("Expected ErrUnbalancedMarkers, got %v", err)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Expected *ParseError, got %T", err)
			}
			if perr.Line != tt.line {
				t.Errorf("Expected line %d, got %d", tt.line, perr.Line)
			}
		})
	}
}

func TestComplement_OutOfOrder(t *testing.T) {
	_, err := Extract("silence_start: 10\nsilence_end: 4")
	if !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("Expected ErrOutOfOrder, got %v", err)
	}
}

func TestComplement_NilDiagnostics(t *testing.T) {
	if _, err := NewComplementer().Complement(nil); err == nil {
		t.Error("Expected error for nil diagnostics")
	}
}

func TestComplement_Padding(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		padding  float64
		expected []KeepInterval
	}{
		{
			name:     "widens marker boundaries only",
			input:    "silence_start: 3\nsilence_end: 6\nsize=N/A time=00:00:10.00 bitrate=N/A",
			padding:  0.1,
			expected: []KeepInterval{{Start: 0, End: 3.1}, {Start: 5.9, End: 10}},
		},
		{
			name:     "clamped at zero and duration",
			input:    "silence_end: 0.05\nsilence_start: 9.95\nsize=N/A time=00:00:10.00 bitrate=N/A",
			padding:  0.1,
			expected: []KeepInterval{{Start: 0, End: 10}},
		},
		{
			name:     "short silence swallowed by padding merges neighbours",
			input:    "silence_start: 3\nsilence_end: 3.15\nsize=N/A time=00:00:10.00 bitrate=N/A",
			padding:  0.1,
			expected: []KeepInterval{{Start: 0, End: 10}},
		},
		{
			name:     "negative padding narrows",
			input:    "silence_start: 3\nsilence_end: 6\nsize=N/A time=00:00:10.00 bitrate=N/A",
			padding:  -0.5,
			expected: []KeepInterval{{Start: 0, End: 2.5}, {Start: 6.5, End: 10}},
		},
		{
			name:     "inverted interval clamps to zero length",
			input:    "silence_end: 2\nsilence_start: 2.4\nsilence_end: 6\nsize=N/A time=00:00:10.00 bitrate=N/A",
			padding:  -0.5,
			expected: []KeepInterval{{Start: 2.5, End: 2.5}, {Start: 6.5, End: 10}},
		},
		{
			name:     "leading silence at zero stays suppressed",
			input:    "silence_start: 0\nsilence_end: 2\nsize=N/A time=00:00:10.00 bitrate=N/A",
			padding:  0.1,
			expected: []KeepInterval{{Start: 1.9, End: 10}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Extract(tt.input, WithPadding(tt.padding))
			if err != nil {
				t.Fatalf("Extract returned error: %v", err)
			}
			assertIntervals(t, res.Intervals, tt.expected)
			if err := Validate(res.Intervals); err != nil {
				t.Errorf("Validate failed: %v", err)
			}
		})
	}
}

func TestComplement_Idempotent(t *testing.T) {
	first, err := Extract(realDetectOutput, WithPadding(0.1))
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	second, err := Extract(realDetectOutput, WithPadding(0.1))
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical results, got %+v and %+v", first, second)
	}
}

// TestComplement_RandomStreams feeds generated marker sequences through the
// complementer and checks the ordering guarantees hold for every padding.
func TestComplement_RandomStreams(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		var b strings.Builder
		now := 0.0
		inSilence := rng.Intn(2) == 0
		if inSilence {
			b.WriteString("[silencedetect @ 0x1] silence_start: 0\n")
		}
		for n := rng.Intn(12); n > 0; n-- {
			now += rng.Float64() * 5
			if inSilence {
				b.WriteString("[silencedetect @ 0x1] silence_end: ")
			} else {
				b.WriteString("[silencedetect @ 0x1] silence_start: ")
			}
			b.WriteString(formatSeconds(now))
			b.WriteString("\n")
			inSilence = !inSilence
		}
		known := rng.Intn(4) != 0
		if known {
			total := now + rng.Float64()*3
			b.WriteString("size=N/A time=")
			b.WriteString(clock(total))
			b.WriteString(" bitrate=N/A\n")
		}

		for _, pad := range []float64{0, 0.1, 0.75, -0.3} {
			res, err := Extract(b.String(), WithPadding(pad))
			if err != nil {
				t.Fatalf("case %d pad %v: unexpected error: %v\n%s", i, pad, err, b.String())
			}
			if err := Validate(res.Intervals); err != nil {
				t.Fatalf("case %d pad %v: %v\n%s", i, pad, err, b.String())
			}
			if known {
				for _, iv := range res.Intervals {
					if iv.End > res.Duration+epsilon {
						t.Fatalf("case %d pad %v: %s exceeds duration %v", i, pad, iv, res.Duration)
					}
				}
			}
		}
	}
}

func clock(seconds float64) string {
	// Two decimals like ffmpeg, rounded up so the clock never precedes the last marker.
	cs := int(math.Ceil(seconds * 100))
	return fmt.Sprintf("%02d:%02d:%05.2f", cs/360000, (cs/6000)%60, float64(cs%6000)/100)
}
