package transcoder

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/echobridge/relay-backend/config"

	errorsx "github.com/echobridge/relay-backend/pkg/errors"
)

type fakeRunner struct {
	name   string
	args   []string
	stderr string
	err    error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	f.name = name
	f.args = args
	return f.stderr, f.err
}

type fakeFileInfo struct {
	dir bool
}

func (f fakeFileInfo) Name() string       { return "ffmpeg" }
func (f fakeFileInfo) Size() int64        { return 1 }
func (f fakeFileInfo) Mode() fs.FileMode  { return 0o755 }
func (f fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (f fakeFileInfo) IsDir() bool        { return f.dir }
func (f fakeFileInfo) Sys() any           { return nil }

func newTestFFmpeg(runner *fakeRunner, bundledExists bool, onPath bool) *FFmpeg {
	f := NewFFmpeg(config.TranscoderConfig{BundledPath: "./ffmpeg", Binary: "ffmpeg"})
	f.runner = runner
	f.stat = func(string) (os.FileInfo, error) {
		if bundledExists {
			return fakeFileInfo{}, nil
		}
		return nil, os.ErrNotExist
	}
	f.lookPath = func(string) (string, error) {
		if onPath {
			return "/usr/bin/ffmpeg", nil
		}
		return "", errors.New("executable file not found in $PATH")
	}
	return f
}

func TestFFmpeg_PrefersBundledBinary(t *testing.T) {
	c := qt.New(t)
	runner := &fakeRunner{}
	f := newTestFFmpeg(runner, true, true)

	err := f.Transcode(context.Background(), "in.oga", "out.mp3")
	c.Assert(err, qt.IsNil)
	c.Check(runner.name, qt.Equals, "./ffmpeg")
	c.Check(runner.args, qt.DeepEquals, []string{
		"-i", "in.oga",
		"-acodec", "libmp3lame",
		"-ab", "48k",
		"-ar", "24000",
		"-y",
		"out.mp3",
	})
}

func TestFFmpeg_FallsBackToSearchPath(t *testing.T) {
	c := qt.New(t)
	runner := &fakeRunner{}
	f := newTestFFmpeg(runner, false, true)

	err := f.Transcode(context.Background(), "in.oga", "out.mp3")
	c.Assert(err, qt.IsNil)
	c.Check(runner.name, qt.Equals, "/usr/bin/ffmpeg")
}

func TestFFmpeg_BinaryMissingEverywhere(t *testing.T) {
	c := qt.New(t)
	runner := &fakeRunner{}
	f := newTestFFmpeg(runner, false, false)

	err := f.Transcode(context.Background(), "in.oga", "out.mp3")
	c.Assert(errors.Is(err, errorsx.ErrTranscoderBinaryMissing), qt.IsTrue)
	// The process must never have been started.
	c.Check(runner.name, qt.Equals, "")
}

func TestFFmpeg_ProcessFailure(t *testing.T) {
	c := qt.New(t)
	runner := &fakeRunner{
		stderr: "Invalid data found when processing input",
		err:    errors.New("exit status 1"),
	}
	f := newTestFFmpeg(runner, true, false)

	err := f.Transcode(context.Background(), "in.oga", "out.mp3")
	c.Assert(errors.Is(err, errorsx.ErrTranscode), qt.IsTrue)
	c.Check(errors.Is(err, errorsx.ErrTranscoderBinaryMissing), qt.IsFalse)
}

func TestFFmpeg_BundledPathIsDirectory(t *testing.T) {
	c := qt.New(t)
	runner := &fakeRunner{}
	f := newTestFFmpeg(runner, true, true)
	f.stat = func(string) (os.FileInfo, error) { return fakeFileInfo{dir: true}, nil }

	err := f.Transcode(context.Background(), "in.oga", "out.mp3")
	c.Assert(err, qt.IsNil)
	// A directory at the bundled path falls through to the search path.
	c.Check(runner.name, qt.Equals, "/usr/bin/ffmpeg")
}
