package faculty

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/school/backend/internal/domain/faculty"
	"github.com/school/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// PositionService manages the catalog of teacher positions
type PositionService struct {
	positionRepo   faculty.PositionRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPositionService creates a new position service
func NewPositionService(positionRepo faculty.PositionRepository, logger *zap.Logger) *PositionService {
	return &PositionService{
		positionRepo: positionRepo,
		logger:       logger,
	}
}

// SetEventPublisher sets the publisher for position domain events
func (s *PositionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// List returns non-deleted positions, newest first
func (s *PositionService) List(ctx context.Context, onlyActive bool) ([]PositionResponse, error) {
	positions, err := s.positionRepo.FindAll(ctx, faculty.PositionFilter{OnlyActive: onlyActive})
	if err != nil {
		s.logger.Error("Failed to list positions", zap.Error(err))
		return nil, err
	}
	return ToPositionResponses(positions), nil
}

// GetByID returns a non-deleted position
func (s *PositionService) GetByID(ctx context.Context, id uuid.UUID) (*PositionResponse, error) {
	position, err := s.positionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPositionResponse(position)
	return &resp, nil
}

// Create adds a position. The code must be unused among non-deleted positions.
func (s *PositionService) Create(ctx context.Context, input CreatePositionInput) (*PositionResponse, error) {
	position, err := faculty.NewPosition(input.Code, input.Name, input.Description, input.IsActive)
	if err != nil {
		return nil, err
	}

	exists, err := s.positionRepo.ExistsActiveByCode(ctx, position.Code, nil)
	if err != nil {
		return nil, fmt.Errorf("check position code: %w", err)
	}
	if exists {
		return nil, shared.ErrDuplicateCode
	}

	if err := s.positionRepo.Create(ctx, position); err != nil {
		s.logger.Error("Failed to create position", zap.String("code", position.Code), zap.Error(err))
		return nil, err
	}
	s.publish(ctx, position)

	s.logger.Info("Position created",
		zap.String("position_id", position.ID.String()),
		zap.String("code", position.Code))

	resp := ToPositionResponse(position)
	return &resp, nil
}

// Update changes a position. Keeping the current code is not a collision.
func (s *PositionService) Update(ctx context.Context, input UpdatePositionInput) (*PositionResponse, error) {
	position, err := s.positionRepo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	changes := faculty.PositionChanges{
		Code:        input.Code,
		Name:        input.Name,
		Description: input.Description,
		IsActive:    input.IsActive,
	}
	codeChanged := position.CodeChanged(changes)
	if err := position.Update(changes); err != nil {
		return nil, err
	}

	if codeChanged {
		exists, err := s.positionRepo.ExistsActiveByCode(ctx, position.Code, &position.ID)
		if err != nil {
			return nil, fmt.Errorf("check position code: %w", err)
		}
		if exists {
			return nil, shared.ErrDuplicateCode
		}
	}

	if err := s.positionRepo.Update(ctx, position); err != nil {
		s.logger.Error("Failed to update position", zap.String("position_id", position.ID.String()), zap.Error(err))
		return nil, err
	}
	s.publish(ctx, position)

	resp := ToPositionResponse(position)
	return &resp, nil
}

// Delete soft-deletes a position. Teachers referencing it keep the reference.
func (s *PositionService) Delete(ctx context.Context, id uuid.UUID) error {
	position, err := s.positionRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := position.SoftDelete(); err != nil {
		return err
	}
	if err := s.positionRepo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, position)

	s.logger.Info("Position deleted", zap.String("position_id", id.String()))
	return nil
}

func (s *PositionService) publish(ctx context.Context, position *faculty.Position) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, position); err != nil {
		s.logger.Warn("Failed to publish position events",
			zap.String("position_id", position.ID.String()),
			zap.Error(err))
	}
}
