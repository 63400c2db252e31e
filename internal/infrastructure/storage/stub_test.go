package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedStub() *StubObjectStorage {
	s := NewStubObjectStorage()
	s.now = func() time.Time { return time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC) }
	return s
}

func TestStubObjectStorage_URLsAreDeterministic(t *testing.T) {
	s := fixedStub()
	ctx := context.Background()

	up, expiresAt, err := s.GenerateUploadURL(ctx, "avatars/u1/a.png", "image/png", 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "https://storage.example.com/upload/avatars/u1/a.png?expires=2024-03-01T08%3A10%3A00Z", up)
	assert.Equal(t, time.Date(2024, 3, 1, 8, 10, 0, 0, time.UTC), expiresAt)

	again, _, err := s.GenerateUploadURL(ctx, "avatars/u1/a.png", "image/png", 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, up, again)

	down, _, err := s.GenerateDownloadURL(ctx, "avatars/u1/a.png", 0)
	require.NoError(t, err)
	assert.Equal(t, "https://storage.example.com/download/avatars/u1/a.png?expires=2024-03-01T08%3A15%3A00Z", down)
}

func TestStubObjectStorage_Objects(t *testing.T) {
	s := fixedStub()
	ctx := context.Background()

	exists, err := s.ObjectExists(ctx, "any")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, s.DeleteObject(ctx, "any"))

	_, err = s.ObjectExists(ctx, "")
	assert.ErrorIs(t, err, errEmptyKey)
	assert.ErrorIs(t, s.DeleteObject(ctx, ""), errEmptyKey)
	_, _, err = s.GenerateDownloadURL(ctx, "", time.Minute)
	assert.ErrorIs(t, err, errEmptyKey)
}
