package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/school/backend/internal/domain/faculty"
	"github.com/school/backend/internal/domain/shared"
	"github.com/school/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPositionRepository implements PositionRepository using GORM
type GormPositionRepository struct {
	db *gorm.DB
}

// NewGormPositionRepository creates a new GormPositionRepository
func NewGormPositionRepository(db *gorm.DB) *GormPositionRepository {
	return &GormPositionRepository{db: db}
}

// Create inserts a new position
func (r *GormPositionRepository) Create(ctx context.Context, position *faculty.Position) error {
	model := models.PositionModelFromDomain(position)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translatePositionError(err)
	}
	return nil
}

// Update writes every column of an active position
func (r *GormPositionRepository) Update(ctx context.Context, position *faculty.Position) error {
	model := models.PositionModelFromDomain(position)
	result := r.db.WithContext(ctx).
		Model(&models.PositionModel{}).
		Where("id = ? AND is_deleted = ?", position.ID, false).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return translatePositionError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SoftDelete flags an active position as deleted. Assignments are kept.
func (r *GormPositionRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.PositionModel{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]any{
			"is_deleted": true,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds an active position by ID
func (r *GormPositionRepository) FindByID(ctx context.Context, id uuid.UUID) (*faculty.Position, error) {
	var model models.PositionModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs returns the positions with the given IDs, deleted ones included
func (r *GormPositionRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*faculty.Position, error) {
	if len(ids) == 0 {
		return []*faculty.Position{}, nil
	}
	var rows []models.PositionModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return positionsToDomain(rows), nil
}

// FindAll returns active positions, newest first
func (r *GormPositionRepository) FindAll(ctx context.Context, filter faculty.PositionFilter) ([]*faculty.Position, error) {
	query := r.db.WithContext(ctx).Where("is_deleted = ?", false)
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	var rows []models.PositionModel
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return positionsToDomain(rows), nil
}

// ExistsActiveByCode checks if an active position other than excludeID uses the code
func (r *GormPositionRepository) ExistsActiveByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.PositionModel{}).
		Where("code = ? AND is_deleted = ?", faculty.NormalizePositionCode(code), false)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func positionsToDomain(rows []models.PositionModel) []*faculty.Position {
	positions := make([]*faculty.Position, len(rows))
	for i := range rows {
		positions[i] = rows[i].ToDomain()
	}
	return positions
}

func translatePositionError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrDuplicateCode
	}
	return err
}

// Ensure GormPositionRepository implements PositionRepository
var _ faculty.PositionRepository = (*GormPositionRepository)(nil)
