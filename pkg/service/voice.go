package service

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"github.com/echobridge/relay-backend/pkg/backend"

	log "github.com/echobridge/relay-backend/pkg/logger"
)

const (
	msgVoiceProcessing = "🎤 Processing your voice message..."
	msgVoiceSuccess    = "✅ Your voice message has been sent to your Alexa devices."
	msgVoiceFailed     = "❌ Sorry, there was a problem processing your voice message. Please try again later."
)

// blobKeyPrefix namespaces uploaded voice artifacts in the bucket.
const blobKeyPrefix = "voice-messages"

// HandleVoiceMessage runs the full ingestion pipeline for one voice note:
// locate, download, transcode, upload, issue link, submit to the backend.
// Exactly one terminal notification reaches the user, and both staging paths
// are removed on every exit path.
func (s *service) HandleVoiceMessage(ctx context.Context, chatID string, fileID string) (job *VoiceMessageJob) {
	logger, _ := log.GetZapLogger(ctx)

	job = newVoiceMessageJob(chatID, fileID)

	profile, err := s.resolveProfile(ctx, chatID)
	if err != nil {
		logger.Error("cannot resolve user profile", zap.String("chatID", chatID), zap.Error(err))
		job.fail()
		s.notify(ctx, chatID, msgVoiceFailed)
		return job
	}
	if profile == nil {
		job.fail()
		s.sendLinkPrompt(ctx, chatID)
		return job
	}
	job.AccessToken = profile.AccessToken

	// Fire-and-forget acknowledgment; its failure never aborts the run.
	s.notify(ctx, chatID, msgVoiceProcessing)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("voice pipeline panicked",
				zap.String("chatID", chatID),
				zap.Any("panic", r))
			job.fail()
			s.notify(ctx, chatID, msgVoiceFailed)
		}
	}()

	if err := s.runVoicePipeline(ctx, job); err != nil {
		logger.Error("voice pipeline failed",
			zap.String("chatID", chatID),
			zap.String("stage", string(job.Status)),
			zap.Error(err))
		job.fail()
		s.notify(ctx, chatID, msgVoiceFailed)
		return job
	}

	s.notify(ctx, chatID, msgVoiceSuccess)
	return job
}

// runVoicePipeline executes the stages strictly in order, short-circuiting
// on the first failure. Staging paths are job-owned and released by the
// deferred handles regardless of which stage fails.
func (s *service) runVoicePipeline(ctx context.Context, job *VoiceMessageJob) error {
	input := newStagingFile(filepath.Join(s.stagingDir, uuid.Must(uuid.NewV4()).String()+".oga"))
	output := newStagingFile(filepath.Join(s.stagingDir, uuid.Must(uuid.NewV4()).String()+".mp3"))
	job.StagingInputPath = input.path
	job.StagingOutputPath = output.path
	defer input.Release(ctx)
	defer output.Release(ctx)

	filePath, err := s.telegram.GetFilePath(ctx, job.RemoteFileRef)
	if err != nil {
		return err
	}
	job.advance(JobStatusLocated)

	if err := s.telegram.DownloadFile(ctx, filePath, input.path); err != nil {
		return err
	}
	job.advance(JobStatusDownloaded)

	if err := s.transcoder.Transcode(ctx, input.path, output.path); err != nil {
		return err
	}
	job.advance(JobStatusTranscoded)

	job.BlobKey = fmt.Sprintf("%s/%s.mp3", blobKeyPrefix, uuid.Must(uuid.NewV4()).String())
	if err := s.minio.UploadFile(ctx, output.path, job.BlobKey, "audio/mpeg"); err != nil {
		return err
	}
	job.advance(JobStatusUploaded)

	link, err := s.minio.GetPresignedURLForDownload(ctx, job.BlobKey, s.linkExpiry)
	if err != nil {
		return err
	}
	job.advance(JobStatusLinked)

	err = s.backend.SendMessage(ctx, job.AccessToken, backend.MessageTypeVoice, backend.Payload{
		AudioURL: link.String(),
	})
	if err != nil {
		return err
	}
	job.advance(JobStatusNotified)

	return nil
}
