package transcoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/echobridge/relay-backend/config"

	errorsx "github.com/echobridge/relay-backend/pkg/errors"
)

// Target codec parameters required by the skill backend's audio player.
// These are constants of the system, not per-call options.
const (
	targetCodec      = "libmp3lame"
	targetBitrate    = "48k"
	targetSampleRate = "24000"
)

// Transcoder converts a staged audio file into the backend's target format.
type Transcoder interface {
	Transcode(ctx context.Context, inputPath string, outputPath string) error
}

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stderr string, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stderr.String(), err
}

// FFmpeg shells out to an ffmpeg binary. The binary is resolved at call
// time: a bundled copy co-located with the deployment wins, otherwise the
// execution environment's search path is consulted.
type FFmpeg struct {
	bundledPath string
	binary      string

	runner   commandRunner
	stat     func(name string) (os.FileInfo, error)
	lookPath func(file string) (string, error)
}

// NewFFmpeg constructs the production transcoder with OS dependencies.
func NewFFmpeg(cfg config.TranscoderConfig) *FFmpeg {
	return &FFmpeg{
		bundledPath: cfg.BundledPath,
		binary:      cfg.Binary,
		runner:      execRunner{},
		stat:        os.Stat,
		lookPath:    exec.LookPath,
	}
}

// resolveBinary probes the bundled location first and falls back to the
// search path.
func (f *FFmpeg) resolveBinary() (string, error) {
	if f.bundledPath != "" {
		if info, err := f.stat(f.bundledPath); err == nil && !info.IsDir() {
			return f.bundledPath, nil
		}
	}

	path, err := f.lookPath(f.binary)
	if err != nil {
		return "", fmt.Errorf("%w: neither %q nor %q on the search path is executable",
			errorsx.ErrTranscoderBinaryMissing, f.bundledPath, f.binary)
	}
	return path, nil
}

// Transcode converts inputPath into an MP3 at outputPath, overwriting any
// pre-existing output file.
func (f *FFmpeg) Transcode(ctx context.Context, inputPath string, outputPath string) error {
	binary, err := f.resolveBinary()
	if err != nil {
		return err
	}

	args := []string{
		"-i", inputPath,
		"-acodec", targetCodec,
		"-ab", targetBitrate,
		"-ar", targetSampleRate,
		"-y",
		outputPath,
	}

	stderr, err := f.runner.Run(ctx, binary, args...)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: exit=%d stderr=%s", errorsx.ErrTranscode, exitErr.ExitCode(), stderr)
		}
		return fmt.Errorf("%w: %v", errorsx.ErrTranscode, err)
	}

	return nil
}
