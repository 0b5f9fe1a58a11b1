package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/echobridge/relay-backend/pkg/backend"
	"github.com/echobridge/relay-backend/pkg/repository"

	errorsx "github.com/echobridge/relay-backend/pkg/errors"
	log "github.com/echobridge/relay-backend/pkg/logger"
)

const (
	msgTextSuccess = "✅ Your message has been sent to your Alexa devices."
	msgTextFailed  = "❌ Sorry, there was a problem sending your message. Please try again later."
	msgTextTimeout = "⏱️ Request timed out. Please try again later."

	msgAccountLinked = "✅ Your account has been successfully linked! You can now send me text or voice messages to forward to your Alexa devices."
	msgUnsupported   = "Sorry, I can only process text and voice messages."
)

// RegisterUser stores the linked account credentials and confirms the link
// to the user. The confirmation message is best-effort.
func (s *service) RegisterUser(ctx context.Context, chatID string, accessToken string, refreshToken string) error {
	logger, _ := log.GetZapLogger(ctx)

	if chatID == "" || accessToken == "" || refreshToken == "" {
		return fmt.Errorf("chat_id, access_token and refresh_token are required")
	}

	profile, err := s.repository.UpsertUserProfile(ctx, repository.UserProfile{
		ChatID:       chatID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
	if err != nil {
		return err
	}

	// A re-registration replaces the tokens; drop any stale cache entry and
	// write the fresh profile through.
	if s.cache != nil {
		if err := s.cache.DeleteUserProfile(ctx, chatID); err != nil {
			logger.Warn("profile cache invalidation failed", zap.String("chatID", chatID), zap.Error(err))
		}
		if err := s.cache.SetUserProfile(ctx, profile, s.profileTTL); err != nil {
			logger.Warn("profile cache write failed", zap.String("chatID", chatID), zap.Error(err))
		}
	}

	s.notify(ctx, chatID, msgAccountLinked)
	return nil
}

// HandleTextMessage forwards one text message to the skill backend and
// reports the outcome to the user. Like the voice pipeline, it never raises
// past its boundary.
func (s *service) HandleTextMessage(ctx context.Context, chatID string, text string) {
	logger, _ := log.GetZapLogger(ctx)

	profile, err := s.resolveProfile(ctx, chatID)
	if err != nil {
		logger.Error("cannot resolve user profile", zap.String("chatID", chatID), zap.Error(err))
		s.notify(ctx, chatID, msgTextFailed)
		return
	}
	if profile == nil {
		s.sendLinkPrompt(ctx, chatID)
		return
	}

	err = s.backend.SendMessage(ctx, profile.AccessToken, backend.MessageTypeText, backend.Payload{
		Text: text,
	})
	switch {
	case err == nil:
		s.notify(ctx, chatID, msgTextSuccess)
	case errors.Is(err, errorsx.ErrNotifyTimeout):
		logger.Error("text relay timed out", zap.String("chatID", chatID), zap.Error(err))
		s.notify(ctx, chatID, msgTextTimeout)
	default:
		logger.Error("text relay failed", zap.String("chatID", chatID), zap.Error(err))
		s.notify(ctx, chatID, msgTextFailed)
	}
}

// HandleUnsupportedMessage replies to content types the relay does not
// process.
func (s *service) HandleUnsupportedMessage(ctx context.Context, chatID string) {
	s.notify(ctx, chatID, msgUnsupported)
}
