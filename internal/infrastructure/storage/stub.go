package storage

import (
	"context"
	"net/url"
	"time"

	appidentity "github.com/school/backend/internal/application/identity"
)

const defaultStubBaseURL = "https://storage.example.com"

// StubObjectStorage stands in for object storage when none is configured.
// URLs are fake but deterministic for a given key and expiry, deletes are
// no-ops and every key is reported to exist so the attach flow works.
type StubObjectStorage struct {
	BaseURL string
	now     func() time.Time
}

// NewStubObjectStorage creates a new StubObjectStorage
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{BaseURL: defaultStubBaseURL, now: time.Now}
}

// Ensure StubObjectStorage implements ObjectStorageService
var _ appidentity.ObjectStorageService = (*StubObjectStorage)(nil)

// GenerateUploadURL returns a fake upload URL
func (s *StubObjectStorage) GenerateUploadURL(_ context.Context, storageKey, _ string, expiresIn time.Duration) (string, time.Time, error) {
	return s.url("upload", storageKey, expiresIn)
}

// GenerateDownloadURL returns a fake download URL
func (s *StubObjectStorage) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	return s.url("download", storageKey, expiresIn)
}

// DeleteObject does nothing
func (s *StubObjectStorage) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return errEmptyKey
	}
	return nil
}

// ObjectExists is true for every non-empty key
func (s *StubObjectStorage) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errEmptyKey
	}
	return true, nil
}

func (s *StubObjectStorage) url(action, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errEmptyKey
	}
	if expiresIn <= 0 {
		expiresIn = defaultPresignExpiration
	}
	expiresAt := s.now().Add(expiresIn).UTC().Truncate(time.Second)
	q := url.Values{"expires": []string{expiresAt.Format(time.RFC3339)}}
	return s.BaseURL + "/" + action + "/" + storageKey + "?" + q.Encode(), expiresAt, nil
}
