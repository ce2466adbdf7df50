package main

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"silencecut/models"
	"silencecut/pipeline"
)

// progressUI draws progress bars on an interactive stderr and stays silent
// otherwise, so redirected output and JSON logs are never interleaved with
// bar redraws.
type progressUI struct {
	out     io.Writer
	enabled bool

	mu      sync.Mutex
	detect  *progressbar.ProgressBar
	extract *progressbar.ProgressBar
}

func newProgressUI(out io.Writer, wanted bool) *progressUI {
	enabled := false
	if f, ok := out.(*os.File); ok && wanted {
		enabled = isTerminal(f)
	}
	return &progressUI{out: out, enabled: enabled}
}

func (u *progressUI) newBar(limit int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(limit,
		progressbar.OptionSetWriter(u.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetPredictTime(true),
	)
}

// detectCallback follows the silencedetect pass. Percent is used when the
// probe knew the duration, decoded seconds otherwise.
func (u *progressUI) detectCallback() models.ProgressCallback {
	if !u.enabled {
		return nil
	}
	return func(p *models.Progress) {
		u.mu.Lock()
		defer u.mu.Unlock()
		if u.detect == nil {
			limit := int64(-1)
			if p.TotalDuration > 0 {
				limit = 100
			}
			u.detect = u.newBar(limit, "detecting silence")
		}
		if p.TotalDuration > 0 {
			_ = u.detect.Set(int(p.Percent))
		} else {
			_ = u.detect.Set(int(p.CurrentSeconds))
		}
	}
}

// segmentCallback counts finished extractions.
func (u *progressUI) segmentCallback() pipeline.SegmentProgressFunc {
	if !u.enabled {
		return nil
	}
	return func(completed, total int, _ *models.SegmentResult) {
		u.mu.Lock()
		defer u.mu.Unlock()
		if u.detect != nil {
			_ = u.detect.Finish()
			u.detect = nil
		}
		if u.extract == nil {
			u.extract = u.newBar(int64(total), "extracting segments")
		}
		_ = u.extract.Set(completed)
	}
}

// finish clears any bar still on screen. Safe to call more than once.
func (u *progressUI) finish() {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, bar := range []*progressbar.ProgressBar{u.detect, u.extract} {
		if bar != nil {
			_ = bar.Finish()
		}
	}
	u.detect, u.extract = nil, nil
}
