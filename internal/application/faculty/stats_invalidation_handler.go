package faculty

import (
	"context"
	"fmt"

	"github.com/school/backend/internal/domain/faculty"
	"github.com/school/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StatsInvalidationHandler drops cached teacher stats whenever a teacher is
// created, updated or deleted
type StatsInvalidationHandler struct {
	queries *TeacherQueryService
	logger  *zap.Logger
}

// NewStatsInvalidationHandler creates a new handler for teacher events
func NewStatsInvalidationHandler(queries *TeacherQueryService, logger *zap.Logger) *StatsInvalidationHandler {
	return &StatsInvalidationHandler{
		queries: queries,
		logger:  logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *StatsInvalidationHandler) EventTypes() []string {
	return faculty.TeacherEventTypes
}

// Handle invalidates the stats cache
func (h *StatsInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if err := h.queries.InvalidateStats(ctx); err != nil {
		return fmt.Errorf("invalidate teacher stats after %s: %w", event.EventType(), err)
	}
	h.logger.Debug("teacher stats invalidated",
		zap.String("event_type", event.EventType()),
		zap.String("teacher_id", event.AggregateID().String()),
	)
	return nil
}

var _ shared.EventHandler = (*StatsInvalidationHandler)(nil)
