package identity

import (
	"context"
	"path"
	"strings"
	"time"
)

// ObjectStorageService is the object store holding avatar images.
// Implemented by the S3 and stub storages in the infrastructure layer.
type ObjectStorageService interface {
	// GenerateUploadURL returns a presigned PUT URL and its expiry
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL returns a presigned GET URL and its expiry
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject removes an object
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks whether an object was uploaded
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// AvatarConfig holds avatar upload limits
type AvatarConfig struct {
	UploadURLExpiry   time.Duration
	DownloadURLExpiry time.Duration
	MaxFileSize       int64
}

// DefaultAvatarConfig returns the default avatar limits
func DefaultAvatarConfig() AvatarConfig {
	return AvatarConfig{
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: time.Hour,
		MaxFileSize:       5 << 20,
	}
}

var avatarExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// avatarExtension picks the file extension for a content type, preferring the
// client's own extension when it agrees with the type.
func avatarExtension(fileName, contentType string) (string, bool) {
	ext, ok := avatarExtensions[strings.ToLower(contentType)]
	if !ok {
		return "", false
	}
	given := strings.ToLower(path.Ext(fileName))
	if given == ".jpeg" && ext == ".jpg" {
		return given, true
	}
	return ext, true
}

func avatarKeyPrefix(userID string) string {
	return "avatars/" + userID + "/"
}
