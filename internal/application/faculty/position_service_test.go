package faculty

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/school/backend/internal/domain/faculty"
	"github.com/school/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestPosition(t *testing.T, code string) *faculty.Position {
	t.Helper()
	p, err := faculty.NewPosition(code, "Position "+code, "", nil)
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func TestPositionService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes code and persists", func(t *testing.T) {
		repo := new(MockPositionRepository)
		svc := NewPositionService(repo, zap.NewNop())

		repo.On("ExistsActiveByCode", ctx, "HT_01", (*uuid.UUID)(nil)).Return(false, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*faculty.Position")).Return(nil)

		resp, err := svc.Create(ctx, CreatePositionInput{Code: " ht_01 ", Name: "Homeroom"})
		require.NoError(t, err)
		assert.Equal(t, "HT_01", resp.Code)
		assert.True(t, resp.IsActive)
		assert.False(t, resp.IsDeleted)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate code", func(t *testing.T) {
		repo := new(MockPositionRepository)
		svc := NewPositionService(repo, zap.NewNop())

		repo.On("ExistsActiveByCode", ctx, "HT", (*uuid.UUID)(nil)).Return(true, nil)

		_, err := svc.Create(ctx, CreatePositionInput{Code: "HT", Name: "Homeroom"})
		assert.ErrorIs(t, err, shared.ErrDuplicateCode)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("invalid code never reaches the repository", func(t *testing.T) {
		repo := new(MockPositionRepository)
		svc := NewPositionService(repo, zap.NewNop())

		_, err := svc.Create(ctx, CreatePositionInput{Code: "ht-1", Name: "Homeroom"})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, shared.CodeValidationFailed, de.Code)
		repo.AssertExpectations(t)
	})
}

func TestPositionService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("same code skips the collision check", func(t *testing.T) {
		repo := new(MockPositionRepository)
		svc := NewPositionService(repo, zap.NewNop())
		existing := newTestPosition(t, "HT")

		repo.On("FindByID", ctx, existing.ID).Return(existing, nil)
		repo.On("Update", ctx, existing).Return(nil)

		resp, err := svc.Update(ctx, UpdatePositionInput{ID: existing.ID, Code: "ht", Name: "Head teacher"})
		require.NoError(t, err)
		assert.Equal(t, "Head teacher", resp.Name)
		repo.AssertNotCalled(t, "ExistsActiveByCode", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("changed code colliding with another position", func(t *testing.T) {
		repo := new(MockPositionRepository)
		svc := NewPositionService(repo, zap.NewNop())
		existing := newTestPosition(t, "HT")

		repo.On("FindByID", ctx, existing.ID).Return(existing, nil)
		repo.On("ExistsActiveByCode", ctx, "GV", &existing.ID).Return(true, nil)

		_, err := svc.Update(ctx, UpdatePositionInput{ID: existing.ID, Code: "GV", Name: "Teacher"})
		assert.ErrorIs(t, err, shared.ErrDuplicateCode)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockPositionRepository)
		svc := NewPositionService(repo, zap.NewNop())
		id := uuid.New()

		repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := svc.Update(ctx, UpdatePositionInput{ID: id, Code: "HT", Name: "Homeroom"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestPositionService_DeleteAndList(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPositionRepository)
	svc := NewPositionService(repo, zap.NewNop())
	publisher := &capturePublisher{}
	svc.SetEventPublisher(publisher)

	existing := newTestPosition(t, "HT")
	repo.On("FindByID", ctx, existing.ID).Return(existing, nil)
	repo.On("SoftDelete", ctx, existing.ID).Return(nil)

	require.NoError(t, svc.Delete(ctx, existing.ID))
	assert.Equal(t, []string{faculty.EventTypePositionDeleted}, publisher.types())

	other := newTestPosition(t, "GV")
	repo.On("FindAll", ctx, faculty.PositionFilter{OnlyActive: true}).Return([]*faculty.Position{other}, nil)

	list, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "GV", list[0].Code)
}
