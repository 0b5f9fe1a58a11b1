package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	errorsx "github.com/echobridge/relay-backend/pkg/errors"
)

// UserProfileI groups operations on linked user accounts.
type UserProfileI interface {
	UpsertUserProfile(ctx context.Context, profile UserProfile) (*UserProfile, error)
	GetUserProfileByChatID(ctx context.Context, chatID string) (*UserProfile, error)
	DeleteUserProfile(ctx context.Context, chatID string) error
}

// UserProfile links a chat identifier to the backend credentials issued
// during account linking. The tokens pass through the relay opaquely.
type UserProfile struct {
	ChatID       string     `gorm:"column:chat_id;size:255;primaryKey" json:"chat_id"`
	AccessToken  string     `gorm:"column:access_token;not null" json:"access_token"`
	RefreshToken string     `gorm:"column:refresh_token;not null" json:"refresh_token"`
	CreateTime   *time.Time `gorm:"column:create_time;not null;default:CURRENT_TIMESTAMP" json:"create_time"`
	UpdateTime   *time.Time `gorm:"column:update_time;not null;autoUpdateTime" json:"update_time"`
}

// TableName overrides the table name to user_profile
func (UserProfile) TableName() string {
	return "user_profile"
}

// table columns map
type UserProfileColumns struct {
	ChatID       string
	AccessToken  string
	RefreshToken string
	CreateTime   string
	UpdateTime   string
}

var UserProfileColumn = UserProfileColumns{
	ChatID:       "chat_id",
	AccessToken:  "access_token",
	RefreshToken: "refresh_token",
	CreateTime:   "create_time",
	UpdateTime:   "update_time",
}

// UpsertUserProfile writes or refreshes the profile keyed by chat_id. A
// repeated registration for the same chat replaces the stored tokens.
func (r *repository) UpsertUserProfile(ctx context.Context, profile UserProfile) (*UserProfile, error) {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: UserProfileColumn.ChatID}},
		DoUpdates: clause.AssignmentColumns([]string{
			UserProfileColumn.AccessToken,
			UserProfileColumn.RefreshToken,
			UserProfileColumn.UpdateTime,
		}),
	}).Create(&profile).Error; err != nil {
		return nil, fmt.Errorf("upserting user profile: %w", err)
	}
	return &profile, nil
}

// GetUserProfileByChatID fetches one profile. A missing profile returns
// errorsx.ErrNotFound so callers can distinguish unregistered users from
// store failures.
func (r *repository) GetUserProfileByChatID(ctx context.Context, chatID string) (*UserProfile, error) {
	var profile UserProfile
	where := fmt.Sprintf("%s = ?", UserProfileColumn.ChatID)
	if err := r.db.WithContext(ctx).Where(where, chatID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user profile for chat %s", errorsx.ErrNotFound, chatID)
		}
		return nil, fmt.Errorf("getting user profile: %w", err)
	}
	return &profile, nil
}

// DeleteUserProfile removes the profile for a chat.
func (r *repository) DeleteUserProfile(ctx context.Context, chatID string) error {
	where := fmt.Sprintf("%s = ?", UserProfileColumn.ChatID)
	if err := r.db.WithContext(ctx).Where(where, chatID).Delete(&UserProfile{}).Error; err != nil {
		return fmt.Errorf("deleting user profile: %w", err)
	}
	return nil
}
