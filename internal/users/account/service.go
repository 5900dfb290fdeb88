// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/yomira-id/internal/platform/apperr"
	"github.com/taibuivan/yomira-id/internal/users/auth"
	"github.com/taibuivan/yomira-id/pkg/uuid"
)

// # Service Layer

// Service orchestrates profile updates and session transparency.
type Service struct {
	profileRepository ProfileRepository
	sessionManager    SessionManager
	avatarStore       AvatarStore
	logger            *slog.Logger
}

// NewService constructs a new [Service].
// avatars may be nil when object storage is not configured; inline uploads
// are then refused.
func NewService(profiles ProfileRepository, sessions SessionManager, avatars AvatarStore, logger *slog.Logger) *Service {
	return &Service{
		profileRepository: profiles,
		sessionManager:    sessions,
		avatarStore:       avatars,
		logger:            logger,
	}
}

// # Profile Management

/*
GetProfile retrieves the full private identity of a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: The hydrated user profile
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*auth.User, error) {
	user, err := service.profileRepository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}
	return user, nil
}

// UpdateProfileInput carries the profile form.
type UpdateProfileInput struct {
	// Name is the new display name (validated by the handler).
	Name string

	// Image is nil to keep the current avatar, "" to remove it, an http(s)
	// link, or a data URL to upload.
	Image *string
}

/*
UpdateProfile replaces the display name and, optionally, the avatar.

Description: Inline uploads are stored in object storage and replaced by their
public URL. An avatar previously uploaded here is deleted once it is no longer
referenced.

Returns:
  - *auth.User: The updated user profile
  - error: VALIDATION_ERROR or PAYLOAD_TOO_LARGE on the image, storage failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateProfileInput) (*auth.User, error) {
	user, err := service.profileRepository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_update_lookup_failed: %w", err)
	}

	previous := user.Image
	image := user.Image

	if input.Image != nil {
		image, err = service.resolveImage(context, userID, *input.Image)
		if err != nil {
			return nil, err
		}
	}

	name := auth.NormalizeName(input.Name)
	if err := service.profileRepository.UpdateProfile(context, userID, name, image); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	if previous != nil && (image == nil || *image != *previous) {
		service.discardAvatar(context, *previous)
	}

	user.Name = name
	user.Image = image

	service.logger.Info("user_profile_updated", slog.String("user_id", userID))

	return user, nil
}

// resolveImage turns the submitted image value into the URL to store.
func (service *Service) resolveImage(context context.Context, userID, value string) (*string, error) {
	value = strings.TrimSpace(value)

	switch {
	case value == "":
		return nil, nil

	case IsDataURL(value):
		if service.avatarStore == nil {
			return nil, apperr.Unprocessable("Avatar uploads are not available")
		}

		upload, err := decodeDataURL(value)
		if err != nil {
			return nil, err
		}

		key := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.New(), upload.Extension)
		link, err := service.avatarStore.Put(context, key, upload.ContentType, upload.Data)
		if err != nil {
			return nil, fmt.Errorf("account_service_avatar_upload_failed: %w", err)
		}
		return &link, nil

	default:
		if err := validateImageLink(value); err != nil {
			return nil, err
		}
		return &value, nil
	}
}

// discardAvatar deletes an avatar we stored ourselves; external links are left alone.
func (service *Service) discardAvatar(context context.Context, link string) {
	if service.avatarStore == nil {
		return
	}

	key, owned := service.avatarStore.KeyFromURL(link)
	if !owned {
		return
	}

	if err := service.avatarStore.Delete(context, key); err != nil {
		service.logger.Warn("avatar_delete_failed", slog.String("key", key), slog.Any("error", err))
	}
}

// # Session Security

/*
ListSessions provides a list of all active device sessions for the user.

Parameters:
  - context: context.Context
  - userID: string
  - currentSessionID: string (marks the caller's own session)

Returns:
  - []SessionInfo: List of active devices
  - error: Retrieval failures
*/
func (service *Service) ListSessions(context context.Context, userID, currentSessionID string) ([]SessionInfo, error) {
	sessions, err := service.sessionManager.ListSessions(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_list_sessions_failed: %w", err)
	}

	infos := make([]SessionInfo, 0, len(sessions))
	for _, item := range sessions {
		infos = append(infos, SessionInfo{
			ID:         item.ID,
			DeviceName: DeviceName(item.UserAgent),
			IPAddress:  item.IPAddress,
			Persistent: item.Persistent,
			CreatedAt:  item.CreatedAt,
			ExpiresAt:  item.ExpiresAt,
			IsCurrent:  item.ID == currentSessionID,
		})
	}
	return infos, nil
}

/*
RevokeSession terminates a specific user session by its ID.

Returns:
  - error: NOT_FOUND when the session is not an active session of the user
*/
func (service *Service) RevokeSession(context context.Context, userID, sessionID string) error {
	if err := service.sessionManager.RevokeSession(context, userID, sessionID); err != nil {
		return fmt.Errorf("account_service_revoke_session_failed: %w", err)
	}

	service.logger.Info("user_session_revoked",
		slog.String("user_id", userID),
		slog.String("session_id", sessionID),
	)

	return nil
}

// RevokeOtherSessions terminates all sessions except for the current active one.
func (service *Service) RevokeOtherSessions(context context.Context, userID, currentSessionID string) error {
	if err := service.sessionManager.RevokeOtherSessions(context, userID, currentSessionID); err != nil {
		return fmt.Errorf("account_service_revoke_others_failed: %w", err)
	}

	service.logger.Info("user_other_sessions_revoked", slog.String("user_id", userID))

	return nil
}

// # Device Labels

var (
	browsers = []struct{ token, label string }{
		{"Edg/", "Edge"},
		{"OPR/", "Opera"},
		{"Firefox/", "Firefox"},
		{"Chrome/", "Chrome"},
		{"Safari/", "Safari"},
	}
	systems = []struct{ token, label string }{
		{"Windows", "Windows"},
		{"iPhone", "iOS"},
		{"iPad", "iPadOS"},
		{"Android", "Android"},
		{"Mac OS X", "macOS"},
		{"Linux", "Linux"},
	}
)

// DeviceName labels a user agent as "<browser> on <system>".
func DeviceName(userAgent string) string {
	browser := match(userAgent, browsers)
	system := match(userAgent, systems)

	switch {
	case browser != "" && system != "":
		return browser + " on " + system
	case browser != "":
		return browser
	case system != "":
		return system
	default:
		return "Unknown device"
	}
}

func match(userAgent string, table []struct{ token, label string }) string {
	for _, entry := range table {
		if strings.Contains(userAgent, entry.token) {
			return entry.label
		}
	}
	return ""
}
