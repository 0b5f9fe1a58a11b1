package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/echobridge/relay-backend/config"
	"github.com/echobridge/relay-backend/pkg/backend"
	"github.com/echobridge/relay-backend/pkg/minio"
	"github.com/echobridge/relay-backend/pkg/repository"
	"github.com/echobridge/relay-backend/pkg/telegram"
	"github.com/echobridge/relay-backend/pkg/transcoder"

	errorsx "github.com/echobridge/relay-backend/pkg/errors"
	log "github.com/echobridge/relay-backend/pkg/logger"
)

// Service implements the relay's message handling: account registration,
// text relay, and the voice-message ingestion pipeline.
type Service interface {
	// RegisterUser persists the linked account credentials for a chat and
	// confirms the link to the user.
	RegisterUser(ctx context.Context, chatID string, accessToken string, refreshToken string) error
	// HandleTextMessage relays one text message to the skill backend.
	HandleTextMessage(ctx context.Context, chatID string, text string)
	// HandleVoiceMessage runs the voice ingestion pipeline for one inbound
	// voice note. It never returns an error; failures surface as a user
	// notification and the returned job's terminal status.
	HandleVoiceMessage(ctx context.Context, chatID string, fileID string) *VoiceMessageJob
	// HandleUnsupportedMessage tells the user which content types the relay
	// accepts.
	HandleUnsupportedMessage(ctx context.Context, chatID string)
}

// Options carries the configuration-derived knobs of the service.
type Options struct {
	LinkExpiration time.Duration
	ProfileTTL     time.Duration
	OAuth          config.OAuthConfig
	// StagingDir holds the per-job staging artifacts. Defaults to the OS
	// temp directory.
	StagingDir string
}

type service struct {
	repository  repository.Repository
	cache       repository.ProfileCache
	telegram    telegram.ClientI
	backend     backend.ClientI
	transcoder  transcoder.Transcoder
	minio       minio.MinioI
	linkExpiry  time.Duration
	profileTTL  time.Duration
	oauthConfig config.OAuthConfig
	stagingDir  string
}

// NewService initiates a service instance
func NewService(
	repo repository.Repository,
	cache repository.ProfileCache,
	tg telegram.ClientI,
	bk backend.ClientI,
	tc transcoder.Transcoder,
	blob minio.MinioI,
	opts Options,
) Service {
	if opts.StagingDir == "" {
		opts.StagingDir = os.TempDir()
	}
	if opts.LinkExpiration == 0 {
		opts.LinkExpiration = 300 * time.Second
	}
	return &service{
		repository:  repo,
		cache:       cache,
		telegram:    tg,
		backend:     bk,
		transcoder:  tc,
		minio:       blob,
		linkExpiry:  opts.LinkExpiration,
		profileTTL:  opts.ProfileTTL,
		oauthConfig: opts.OAuth,
		stagingDir:  opts.StagingDir,
	}
}

// notify delivers a best-effort user notification. Delivery failures are
// logged, never propagated.
func (s *service) notify(ctx context.Context, chatID string, text string) {
	logger, _ := log.GetZapLogger(ctx)
	if err := s.telegram.SendMessage(ctx, chatID, text); err != nil {
		logger.Warn("failed to deliver user notification",
			zap.String("chatID", chatID),
			zap.Error(err))
	}
}

// resolveProfile looks up the linked account for a chat, consulting the
// cache before the store. A nil profile with nil error means the user is
// not registered.
func (s *service) resolveProfile(ctx context.Context, chatID string) (*repository.UserProfile, error) {
	logger, _ := log.GetZapLogger(ctx)

	if s.cache != nil {
		cached, err := s.cache.GetUserProfile(ctx, chatID)
		if err != nil {
			logger.Warn("profile cache lookup failed", zap.String("chatID", chatID), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	profile, err := s.repository.GetUserProfileByChatID(ctx, chatID)
	if err != nil {
		if errors.Is(err, errorsx.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetUserProfile(ctx, profile, s.profileTTL); err != nil {
			logger.Warn("profile cache write failed", zap.String("chatID", chatID), zap.Error(err))
		}
	}

	return profile, nil
}

// sendLinkPrompt points an unregistered user at the account-linking
// authorize URL, carrying the chat identifier as the OAuth state.
func (s *service) sendLinkPrompt(ctx context.Context, chatID string) {
	authURL := fmt.Sprintf(
		"https://%s/oauth2/authorize?client_id=%s&response_type=code&scope=%s&redirect_uri=%s&state=%s",
		s.oauthConfig.Domain,
		url.QueryEscape(s.oauthConfig.ClientID),
		url.QueryEscape("openid profile email"),
		url.QueryEscape(s.oauthConfig.RedirectURI),
		url.QueryEscape(chatID),
	)

	text := "Welcome to EchoBridge! " +
		"To get started, you need to link your Amazon account. " +
		"Please use the following link to sign in and authorize the skill:\n\n" +
		fmt.Sprintf("[Link Your Account](%s)", authURL)

	s.notify(ctx, chatID, text)
}
