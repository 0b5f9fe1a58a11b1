package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestVoiceMessageJob_AdvanceIsForwardOnly(t *testing.T) {
	c := qt.New(t)

	job := newVoiceMessageJob("1", "file")
	c.Assert(job.Status, qt.Equals, JobStatusPending)

	job.advance(JobStatusDownloaded)
	c.Check(job.Status, qt.Equals, JobStatusDownloaded)

	// Backward transitions are ignored.
	job.advance(JobStatusLocated)
	c.Check(job.Status, qt.Equals, JobStatusDownloaded)

	job.advance(JobStatusNotified)
	c.Check(job.Status, qt.Equals, JobStatusNotified)
}

func TestVoiceMessageJob_FailRecordsStage(t *testing.T) {
	c := qt.New(t)

	job := newVoiceMessageJob("1", "file")
	job.advance(JobStatusTranscoded)
	job.fail()

	c.Check(job.Status, qt.Equals, JobStatusFailed)
	c.Check(job.FailedStage, qt.Equals, JobStatusTranscoded)

	// A failed job never advances again.
	job.advance(JobStatusUploaded)
	c.Check(job.Status, qt.Equals, JobStatusFailed)

	// Failing twice keeps the first recorded stage.
	job.fail()
	c.Check(job.FailedStage, qt.Equals, JobStatusTranscoded)
}

func TestStagingFile_ReleaseRemovesFile(t *testing.T) {
	c := qt.New(t)

	path := filepath.Join(t.TempDir(), "artifact.oga")
	c.Assert(os.WriteFile(path, []byte("bytes"), 0o600), qt.IsNil)

	f := newStagingFile(path)
	f.Release(context.Background())

	_, err := os.Stat(path)
	c.Check(os.IsNotExist(err), qt.IsTrue)
}

func TestStagingFile_ReleaseIsIdempotent(t *testing.T) {
	_ = qt.New(t)

	// Releasing a never-created path must be a no-op.
	f := newStagingFile(filepath.Join(t.TempDir(), "never-created.mp3"))
	f.Release(context.Background())
	f.Release(context.Background())
}
