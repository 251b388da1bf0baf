package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"

	"github.com/anonto42/gamematch/backend/internal/models"
	"github.com/anonto42/gamematch/backend/pkg/errorx"
	"github.com/anonto42/gamematch/backend/pkg/logger"
	"github.com/anonto42/gamematch/backend/pkg/storage"
)

const maxAvatarSize = 5 << 20

var avatarExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ProfileService applies profile edits, including avatar uploads.
type ProfileService struct {
	identity *IdentityService
	storage  storage.Storage
}

func NewProfileService(identity *IdentityService, store storage.Storage) *ProfileService {
	return &ProfileService{identity: identity, storage: store}
}

// UpdateProfile stores the avatar (if any) and then applies the edit. A
// rejected edit removes the new avatar again; an accepted one removes the
// previous avatar when this storage holds it.
func (s *ProfileService) UpdateProfile(ctx context.Context, user *models.User, req models.UpdateProfileRequest, avatar *multipart.FileHeader) (*models.OwnProfile, error) {
	edit := models.ProfileEdit{
		DisplayName:   req.DisplayName,
		StatusMessage: req.StatusMessage,
	}

	var newKey string
	if avatar != nil {
		key, err := s.uploadAvatar(ctx, user, avatar)
		if err != nil {
			return nil, err
		}
		url := s.storage.PublicURL(key)
		edit.AvatarURL = &url
		newKey = key
	}

	updated, err := s.identity.UpdateProfile(ctx, user.ID, edit)
	if err != nil {
		if newKey != "" {
			s.removeAvatar(ctx, newKey)
		}
		return nil, err
	}

	if newKey != "" {
		if oldKey, ok := s.storage.KeyFromURL(user.AvatarURL); ok && oldKey != newKey {
			s.removeAvatar(ctx, oldKey)
		}
	}
	return s.identity.GetOwnProfile(ctx, updated)
}

func (s *ProfileService) uploadAvatar(ctx context.Context, user *models.User, fh *multipart.FileHeader) (string, error) {
	contentType := fh.Header.Get("Content-Type")
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return "", errorx.ErrInvalidUpload
	}
	if fh.Size > maxAvatarSize {
		return "", errorx.New(errorx.InvalidInput, "avatar_too_large", "avatar must be at most 5MB")
	}

	f, err := fh.Open()
	if err != nil {
		return "", errorx.Wrap(errorx.InvalidInput, err, "failed to read avatar")
	}
	defer f.Close()

	key := fmt.Sprintf("avatars/%s/%s%s", safeSegment(user.ExternalID), uuid.NewString(), ext)
	if err := s.storage.Write(ctx, key, f, fh.Size, contentType); err != nil {
		return "", errorx.Wrap(errorx.Internal, err, "failed to store avatar")
	}

	l := logger.Ctx(ctx)
	l.Info().Uint(logger.FieldUserID, user.ID).Str("key", key).Msg("avatar uploaded")
	return key, nil
}

// removeAvatar deletes a stored avatar, logging failures.
func (s *ProfileService) removeAvatar(ctx context.Context, key string) {
	if err := s.storage.Delete(context.WithoutCancel(ctx), key); err != nil {
		l := logger.Ctx(ctx)
		l.Warn().Err(err).Str("key", key).Msg("failed to remove avatar")
	}
}

// safeSegment keeps external ids usable as a single path segment.
func safeSegment(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
	if s == "" {
		return "_"
	}
	return s
}
