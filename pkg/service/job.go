package service

import (
	"context"
	"os"

	"go.uber.org/zap"

	log "github.com/echobridge/relay-backend/pkg/logger"
)

// JobStatus tracks the forward-only progression of one pipeline run.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusLocated    JobStatus = "located"
	JobStatusDownloaded JobStatus = "downloaded"
	JobStatusTranscoded JobStatus = "transcoded"
	JobStatusUploaded   JobStatus = "uploaded"
	JobStatusLinked     JobStatus = "linked"
	JobStatusNotified   JobStatus = "notified"
	JobStatusFailed     JobStatus = "failed"
)

var jobStatusRank = map[JobStatus]int{
	JobStatusPending:    0,
	JobStatusLocated:    1,
	JobStatusDownloaded: 2,
	JobStatusTranscoded: 3,
	JobStatusUploaded:   4,
	JobStatusLinked:     5,
	JobStatusNotified:   6,
}

// VoiceMessageJob is the ephemeral state of one pipeline run. It exists only
// for the duration of a single webhook invocation; nothing is persisted.
type VoiceMessageJob struct {
	ChatID            string
	RemoteFileRef     string
	AccessToken       string
	StagingInputPath  string
	StagingOutputPath string
	BlobKey           string
	Status            JobStatus
	// FailedStage records the status the job had reached when it failed.
	FailedStage JobStatus
}

func newVoiceMessageJob(chatID string, fileID string) *VoiceMessageJob {
	return &VoiceMessageJob{
		ChatID:        chatID,
		RemoteFileRef: fileID,
		Status:        JobStatusPending,
	}
}

// advance moves the status forward. Backward transitions are ignored, and a
// failed job stays failed.
func (j *VoiceMessageJob) advance(next JobStatus) {
	if j.Status == JobStatusFailed {
		return
	}
	if jobStatusRank[next] > jobStatusRank[j.Status] {
		j.Status = next
	}
}

// fail marks the job failed, remembering the stage it had reached.
func (j *VoiceMessageJob) fail() {
	if j.Status == JobStatusFailed {
		return
	}
	j.FailedStage = j.Status
	j.Status = JobStatusFailed
}

// stagingFile is a scoped handle on one job-owned staging path. Release is
// safe to call more than once and treats a missing file as a no-op.
type stagingFile struct {
	path string
}

func newStagingFile(path string) *stagingFile {
	return &stagingFile{path: path}
}

// Release removes the staging file. Deletion of a never-created or
// already-deleted path is not an error.
func (f *stagingFile) Release(ctx context.Context) {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		logger, _ := log.GetZapLogger(ctx)
		logger.Warn("failed to remove staging file",
			zap.String("path", f.path),
			zap.Error(err))
	}
}
