package faculty

import (
	"context"

	"github.com/google/uuid"
)

// PositionRepository defines the interface for position persistence
type PositionRepository interface {
	// Create inserts a new position
	Create(ctx context.Context, position *Position) error

	// Update persists changes to an active position
	Update(ctx context.Context, position *Position) error

	// SoftDelete flags the position as deleted
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// FindByID finds an active position by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Position, error)

	// FindByIDs returns the positions with the given IDs, deleted ones included.
	// Unknown IDs are skipped.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Position, error)

	// FindAll returns active positions, newest first
	FindAll(ctx context.Context, filter PositionFilter) ([]*Position, error)

	// ExistsActiveByCode checks whether an active position other than excludeID uses the code
	ExistsActiveByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error)
}

// PositionFilter narrows position listings
type PositionFilter struct {
	OnlyActive bool
}
