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

// GormTeacherRepository implements TeacherRepository using GORM.
// Position references are stored as ordered rows in teacher_position_assignments.
type GormTeacherRepository struct {
	db *gorm.DB
}

// NewGormTeacherRepository creates a new GormTeacherRepository
func NewGormTeacherRepository(db *gorm.DB) *GormTeacherRepository {
	return &GormTeacherRepository{db: db}
}

// Create inserts the teacher and its position assignments
func (r *GormTeacherRepository) Create(ctx context.Context, teacher *faculty.Teacher) error {
	if !teacher.HasCode() {
		return shared.NewDomainError(shared.CodeInvalidState, "Teacher code must be assigned before saving")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.TeacherModelFromDomain(teacher)).Error; err != nil {
			return translateTeacherError(err)
		}
		return insertAssignments(tx, teacher)
	})
}

// Update writes the teacher row and replaces its position assignments
func (r *GormTeacherRepository) Update(ctx context.Context, teacher *faculty.Teacher) error {
	model := models.TeacherModelFromDomain(teacher)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.TeacherModel{}).
			Where("id = ? AND is_deleted = ?", teacher.ID, false).
			Select("*").
			// code and owner never change after creation
			Omit("id", "created_at", "code", "user_id").
			Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		if err := tx.Where("teacher_id = ?", teacher.ID).
			Delete(&models.TeacherPositionAssignmentModel{}).Error; err != nil {
			return err
		}
		return insertAssignments(tx, teacher)
	})
}

// SoftDelete flags an active teacher as deleted
func (r *GormTeacherRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.TeacherModel{}).
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

// FindByID finds an active teacher by ID
func (r *GormTeacherRepository) FindByID(ctx context.Context, id uuid.UUID) (*faculty.Teacher, error) {
	var model models.TeacherModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	teachers, err := r.attachPositions(ctx, []models.TeacherModel{model})
	if err != nil {
		return nil, err
	}
	return teachers[0], nil
}

// FindPage returns active teachers, newest first. A zero limit returns all remaining rows.
func (r *GormTeacherRepository) FindPage(ctx context.Context, offset, limit int) ([]*faculty.Teacher, error) {
	query := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("created_at DESC").
		Order("id DESC")
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.TeacherModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.attachPositions(ctx, rows)
}

// Count returns the number of active teachers
func (r *GormTeacherRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TeacherModel{}).
		Where("is_deleted = ?", false).
		Count(&count).Error
	return count, err
}

// Stats counts active teachers grouped by employment status in one query
func (r *GormTeacherRepository) Stats(ctx context.Context) (faculty.TeacherStats, error) {
	var groups []struct {
		IsActive bool
		Total    int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.TeacherModel{}).
		Select("is_active, COUNT(*) AS total").
		Where("is_deleted = ?", false).
		Group("is_active").
		Scan(&groups).Error; err != nil {
		return faculty.TeacherStats{}, err
	}

	var active, inactive int64
	for _, g := range groups {
		if g.IsActive {
			active = g.Total
		} else {
			inactive = g.Total
		}
	}
	return faculty.NewTeacherStats(active, inactive), nil
}

// attachPositions loads the assignments of every row with a single query
func (r *GormTeacherRepository) attachPositions(ctx context.Context, rows []models.TeacherModel) ([]*faculty.Teacher, error) {
	if len(rows) == 0 {
		return []*faculty.Teacher{}, nil
	}
	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}

	var assignments []models.TeacherPositionAssignmentModel
	if err := r.db.WithContext(ctx).
		Where("teacher_id IN ?", ids).
		Order("teacher_id").
		Order("sort_order").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	byTeacher := make(map[uuid.UUID][]uuid.UUID, len(rows))
	for _, a := range assignments {
		byTeacher[a.TeacherID] = append(byTeacher[a.TeacherID], a.PositionID)
	}

	teachers := make([]*faculty.Teacher, len(rows))
	for i := range rows {
		teachers[i] = rows[i].ToDomain(byTeacher[rows[i].ID])
	}
	return teachers, nil
}

func insertAssignments(tx *gorm.DB, teacher *faculty.Teacher) error {
	rows := models.AssignmentModelsFromDomain(teacher)
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

func translateTeacherError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewDomainError(shared.CodeAlreadyExists, "Teacher code or user is already taken")
	}
	return err
}

// Ensure GormTeacherRepository implements TeacherRepository
var _ faculty.TeacherRepository = (*GormTeacherRepository)(nil)
