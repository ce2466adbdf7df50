// Package pipeline wires probing, silence detection, segment extraction and
// concatenation into a single run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"silencecut/command/segment"
	"silencecut/concatenator"
	"silencecut/config"
	"silencecut/ffmpeg"
	"silencecut/ffprobe"
	"silencecut/models"
	"silencecut/orchestrator"
	"silencecut/segmenter"
	"silencecut/silence"
)

// ProbeFunc reads container metadata. ffprobe.Probe satisfies it.
type ProbeFunc func(ctx context.Context, binary, path string) (*ffprobe.ProbeResult, error)

// SegmentProgressFunc is called once per finished extraction.
type SegmentProgressFunc func(completed, total int, result *models.SegmentResult)

// Detection is the outcome of the probe and silencedetect pass.
type Detection struct {
	Input       string
	Probe       *ffprobe.ProbeResult
	Diagnostics *silence.Diagnostics
	Result      *silence.Result
}

// Pipeline runs one input file through detection and cutting.
type Pipeline struct {
	cfg    *config.Config
	logger *zap.Logger
	runner *ffmpeg.Runner
	probe  ProbeFunc
	runID  string

	workRoot        string
	detectProgress  models.ProgressCallback
	segmentProgress SegmentProgressFunc
}

// New creates a pipeline for cfg. A nil logger discards output.
func New(cfg *config.Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := uuid.NewString()
	logger = logger.With(zap.String("run", runID[:8]))
	return &Pipeline{
		cfg:    cfg,
		logger: logger,
		runner: ffmpeg.NewRunner(cfg.FFmpegPath, logger),
		probe:  ffprobe.Probe,
		runID:  runID,
	}
}

// RunID identifies this run in logs and in the work directory name.
func (p *Pipeline) RunID() string {
	return p.runID
}

// SetProbeFunc replaces the metadata reader.
func (p *Pipeline) SetProbeFunc(fn ProbeFunc) *Pipeline {
	if fn != nil {
		p.probe = fn
	}
	return p
}

// SetWorkRoot sets the directory that holds the per-run work directory.
// Empty means os.TempDir().
func (p *Pipeline) SetWorkRoot(dir string) *Pipeline {
	p.workRoot = dir
	return p
}

// SetDetectProgress reports progress of the silencedetect pass.
func (p *Pipeline) SetDetectProgress(cb models.ProgressCallback) *Pipeline {
	p.detectProgress = cb
	return p
}

// SetSegmentProgress reports each finished extraction.
func (p *Pipeline) SetSegmentProgress(cb SegmentProgressFunc) *Pipeline {
	p.segmentProgress = cb
	return p
}

// Detect probes the input, runs silencedetect on the selected audio stream and
// turns the diagnostic text into keep intervals.
func (p *Pipeline) Detect(ctx context.Context) (*Detection, error) {
	cfg := p.cfg
	log := p.logger.With(zap.String("input", cfg.Input))

	probe, err := p.probe(ctx, cfg.FFprobePath, cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to probe %s: %w", cfg.Input, err)
	}
	if !probe.HasAudio() {
		return nil, fmt.Errorf("%s has no audio stream", cfg.Input)
	}
	if _, err := probe.AudioStream(cfg.AudioStream); err != nil {
		return nil, err
	}

	probeDuration, durErr := probe.GetDuration()
	if durErr != nil {
		log.Debug("container reports no duration", zap.Error(durErr))
		probeDuration = 0
	}

	cmd := ffmpeg.NewSilenceDetectCommand(p.runner, cfg.Input).
		SetAudioStream(cfg.AudioStream).
		SetNoise(cfg.Detect.NoiseDB).
		SetMinSilence(cfg.Detect.MinSilence).
		SetProgressCallback(probeDuration, p.detectProgress)

	log.Info("detecting silence",
		zap.Float64("noise_db", cfg.Detect.NoiseDB),
		zap.Float64("min_silence", cfg.Detect.MinSilence),
		zap.Int("audio_stream", cfg.AudioStream))

	text, err := cmd.Run(ctx)
	if err != nil {
		return nil, err
	}

	diag, err := silence.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse silencedetect output: %w", err)
	}
	if diag.Duration == nil && durErr == nil {
		diag.SetDuration(probeDuration, silence.SourceProbe)
	}

	det, err := p.complement(diag)
	if err != nil {
		return nil, err
	}
	det.Input = cfg.Input
	det.Probe = probe

	log.Info("silence detected",
		zap.Int("silences", len(diag.Events)/2),
		zap.Int("intervals", len(det.Result.Intervals)),
		zap.Float64("kept_seconds", det.Result.KeptSeconds()))
	return det, nil
}

// Analyze complements diagnostic text captured earlier, without running
// ffmpeg. Padding, unbounded end and strict mode come from the config.
func (p *Pipeline) Analyze(text string) (*Detection, error) {
	diag, err := silence.Parse(text)
	if err != nil {
		return nil, err
	}
	return p.complement(diag)
}

func (p *Pipeline) complement(diag *silence.Diagnostics) (*Detection, error) {
	res, err := silence.NewComplementer(
		silence.WithPadding(p.cfg.Padding),
		silence.WithUnboundedEnd(p.cfg.UnboundedEnd),
	).Complement(diag)
	if err != nil {
		return nil, fmt.Errorf("failed to compute keep intervals: %w", err)
	}

	if res.Warning != nil {
		if p.cfg.StrictMode {
			return nil, fmt.Errorf("strict mode: %w", res.Warning)
		}
		p.logger.Warn("total duration unknown, last interval runs to end of input",
			zap.Float64("sentinel", res.Warning.Sentinel))
	}
	if err := silence.Validate(res.Intervals); err != nil {
		return nil, fmt.Errorf("internal error: %w", err)
	}

	return &Detection{Diagnostics: diag, Result: res}, nil
}

// Plan converts detected keep intervals into segments.
func (p *Pipeline) Plan(det *Detection) ([]*models.Segment, error) {
	maxSegment := p.cfg.MaxSegment
	if !det.Result.DurationKnown && maxSegment > 0 {
		// The last interval runs to the sentinel; splitting it would plan
		// millions of empty cuts.
		p.logger.Debug("splitting disabled, duration unknown")
		maxSegment = 0
	}

	segs, err := segmenter.NewSegmenter(p.cfg.Input).
		SetMinDuration(p.cfg.MinSegment).
		SetMergeGap(p.cfg.MergeGap).
		SetMaxDuration(maxSegment).
		CreateSegments(det.Result.Intervals)
	if err != nil {
		return nil, err
	}
	if err := segmenter.ValidateSegments(segs); err != nil {
		return nil, fmt.Errorf("internal error: %w", err)
	}
	return segs, nil
}

// Run detects silence, extracts every kept segment in parallel and joins them
// into the configured output. In dry-run mode it stops after planning and
// lists the commands it would run.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}
	started := time.Now()

	det, err := p.Detect(ctx)
	if err != nil {
		return nil, err
	}

	segs, err := p.Plan(det)
	if err != nil {
		return nil, err
	}

	report := newReport(p.runID, p.cfg, det, segs)
	p.logger.Info("segments planned",
		zap.Int("segments", len(segs)),
		zap.Float64("kept_seconds", report.KeptSeconds))

	workDir := filepath.Join(p.workRootDir(), "silencecut-"+p.runID)

	if p.cfg.DryRun {
		report.DryRun = true
		report.Commands = p.dryRunCommands(workDir, segs)
		report.Elapsed = time.Since(started)
		return report, nil
	}

	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	if p.cfg.KeepTemp {
		p.logger.Info("keeping work directory", zap.String("dir", workDir))
	} else {
		defer func() {
			if err := os.RemoveAll(workDir); err != nil {
				p.logger.Warn("failed to remove work directory", zap.String("dir", workDir), zap.Error(err))
			}
		}()
	}

	results, err := p.extract(ctx, workDir, segs)
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		if !r.Success {
			report.Failed++
		}
	}

	if err := concatenator.NewConcatenator(p.runner, p.cfg.StrictMode, p.logger).
		SetListDir(workDir).
		Concatenate(ctx, results, p.cfg.Output); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to concatenate segments: %w", err)
	}

	if info, err := os.Stat(p.cfg.Output); err == nil {
		report.OutputSize = uint64(info.Size())
	}
	report.Elapsed = time.Since(started)

	p.logger.Info("output written",
		zap.String("output", p.cfg.Output),
		zap.Int("segments", len(segs)),
		zap.Int("failed", report.Failed),
		zap.Duration("elapsed", report.Elapsed))
	return report, nil
}

func (p *Pipeline) extract(ctx context.Context, workDir string, segs []*models.Segment) ([]*models.SegmentResult, error) {
	dag := orchestrator.NewDAGOrchestrator([]orchestrator.ResourceConstraint{
		{Type: orchestrator.ResourceCPU, MaxSlots: p.cfg.EffectiveWorkers()},
	})
	dag.SetLogger(p.logger)
	if p.segmentProgress != nil {
		dag.SetProgressCallback(func(completed, total int, task *orchestrator.Task) {
			p.segmentProgress(completed, total, task.Result)
		})
	}

	for _, seg := range segs {
		if err := dag.AddTask(&orchestrator.Task{
			ID:        fmt.Sprintf("extract-%04d", seg.SegmentID),
			SegmentID: seg.SegmentID,
			Command:   p.extractCommand(workDir, seg),
			Resource:  orchestrator.ResourceCPU,
		}); err != nil {
			return nil, err
		}
	}

	p.logger.Debug("extracting segments",
		zap.Int("segments", len(segs)),
		zap.Int("workers", p.cfg.EffectiveWorkers()),
		zap.String("work_dir", workDir))

	results, err := dag.Execute(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("extraction failed: %w", err)
	}
	return results, nil
}

func (p *Pipeline) extractCommand(workDir string, seg *models.Segment) *segment.ExtractBuilder {
	enc := p.cfg.Encode
	return segment.NewExtractBuilder(p.runner, seg, segment.OutputPath(workDir, seg)).
		SetAudioStream(p.cfg.AudioStream).
		SetVideoCodec(enc.VideoCodec).
		SetCRF(enc.CRF).
		SetPreset(enc.Preset).
		SetAudioCodec(enc.AudioCodec, enc.AudioBitrate)
}

func (p *Pipeline) dryRunCommands(workDir string, segs []*models.Segment) []string {
	commands := make([]string, 0, len(segs)+1)
	for _, seg := range segs {
		line, err := p.extractCommand(workDir, seg).DryRun()
		if err != nil {
			line = fmt.Sprintf("# %s: %v", seg, err)
		}
		commands = append(commands, line)
	}
	concat, _ := concatenator.NewConcatCommand(p.runner, filepath.Join(workDir, "concat.txt"), p.cfg.Output).DryRun()
	return append(commands, concat)
}

func (p *Pipeline) workRootDir() string {
	if p.workRoot != "" {
		return p.workRoot
	}
	return os.TempDir()
}
