package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"silencecut/models"
)

// DefaultBinary is looked up on PATH when no explicit path is configured.
const DefaultBinary = "ffmpeg"

// stderrTailLines is how much of stderr an ExitError keeps.
const stderrTailLines = 12

// ExitError is returned when ffmpeg exits non-zero.
type ExitError struct {
	Args []string
	Tail string // last lines of stderr
	Err  error
}

func (e *ExitError) Error() string {
	if e.Tail == "" {
		return fmt.Sprintf("ffmpeg failed: %v", e.Err)
	}
	return fmt.Sprintf("ffmpeg failed: %v\n%s", e.Err, e.Tail)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Runner executes ffmpeg with a fixed binary and logger.
type Runner struct {
	binary string
	logger *zap.Logger
}

// NewRunner creates a Runner. An empty binary means DefaultBinary; a nil
// logger discards output.
func NewRunner(binary string, logger *zap.Logger) *Runner {
	if binary == "" {
		binary = DefaultBinary
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{binary: binary, logger: logger}
}

// Binary returns the ffmpeg executable this runner invokes.
func (r *Runner) Binary() string {
	return r.binary
}

// Run executes ffmpeg with args and returns its complete stderr, one line per
// \n-terminated line. progress may be nil. Cancelling ctx kills the process.
func (r *Runner) Run(ctx context.Context, args []string, progress *models.Progress, callback models.ProgressCallback) (string, error) {
	cmd := exec.CommandContext(ctx, r.binary, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", fmt.Errorf("failed to get stderr pipe: %w", err)
	}

	r.logger.Debug("starting ffmpeg", zap.String("binary", r.binary), zap.Strings("args", args))
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start %s: %w", r.binary, err)
	}

	if progress == nil {
		progress = models.NewProgress(0)
	}
	progress.State = models.ProgressStateStarting

	var out strings.Builder
	collected := make([]string, 0, 64)
	streamErr := NewProgressParser().StreamProgress(stderr, progress, callback, func(line string) {
		out.WriteString(line)
		out.WriteByte('\n')
		collected = append(collected, line)
	})

	waitErr := cmd.Wait()
	switch {
	case ctx.Err() != nil:
		progress.State = models.ProgressStateCancelled
		return out.String(), fmt.Errorf("ffmpeg interrupted: %w", ctx.Err())
	case waitErr != nil:
		progress.State = models.ProgressStateFailed
		return out.String(), &ExitError{Args: args, Tail: tail(collected, stderrTailLines), Err: waitErr}
	case streamErr != nil && !errors.Is(streamErr, ErrNoProgress):
		progress.State = models.ProgressStateFailed
		return out.String(), streamErr
	}

	progress.State = models.ProgressStateCompleted
	r.logger.Debug("ffmpeg finished", zap.String("binary", r.binary), zap.Int("stderr_lines", len(collected)))
	return out.String(), nil
}

// CommandLine renders args as a shell-like string for dry runs and logs.
func (r *Runner) CommandLine(args []string) string {
	quoted := make([]string, 0, len(args)+1)
	quoted = append(quoted, r.binary)
	for _, a := range args {
		if a == "" || strings.ContainsAny(a, " \t'\"") {
			a = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		}
		quoted = append(quoted, a)
	}
	return strings.Join(quoted, " ")
}

func tail(lines []string, n int) string {
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
