package faculty

import (
	"context"

	"github.com/school/backend/internal/domain/faculty"
)

// TeacherStatsCache holds the last computed teacher statistics
type TeacherStatsCache interface {
	// Get returns the cached stats. The bool is false on a miss.
	Get(ctx context.Context) (faculty.TeacherStats, bool, error)
	Set(ctx context.Context, stats faculty.TeacherStats) error
	Invalidate(ctx context.Context) error
}

// noopStatsCache never hits
type noopStatsCache struct{}

func (noopStatsCache) Get(context.Context) (faculty.TeacherStats, bool, error) {
	return faculty.TeacherStats{}, false, nil
}
func (noopStatsCache) Set(context.Context, faculty.TeacherStats) error { return nil }
func (noopStatsCache) Invalidate(context.Context) error                { return nil }
