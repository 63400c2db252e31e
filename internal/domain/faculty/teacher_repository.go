package faculty

import (
	"context"

	"github.com/google/uuid"
)

// TeacherRepository defines the interface for teacher persistence
type TeacherRepository interface {
	// Create inserts a new teacher with its position assignments
	Create(ctx context.Context, teacher *Teacher) error

	// Update persists employment changes of an active teacher
	Update(ctx context.Context, teacher *Teacher) error

	// SoftDelete flags the teacher as deleted
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// FindByID finds an active teacher by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Teacher, error)

	// FindPage returns active teachers, newest first, skipping offset rows.
	// A limit of zero returns every remaining row.
	FindPage(ctx context.Context, offset, limit int) ([]*Teacher, error)

	// Count returns the number of active teachers
	Count(ctx context.Context) (int64, error)

	// Stats partitions active teachers by employment status
	Stats(ctx context.Context) (TeacherStats, error)
}
