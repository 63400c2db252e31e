package seed

import (
	"context"
	"fmt"

	"github.com/school/backend/internal/domain/identity"
	"github.com/school/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// ActiveCounts holds the number of non-deleted rows per table
type ActiveCounts struct {
	Users     int64
	Positions int64
	Teachers  int64
}

// ResetDeleted clears the soft-delete flag on every user, position and
// teacher and returns the active counts afterwards.
func ResetDeleted(ctx context.Context, db *gorm.DB) (*ActiveCounts, error) {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []any{&models.UserModel{}, &models.PositionModel{}, &models.TeacherModel{}} {
			if err := all.Model(model).Where("is_deleted = ?", true).Update("is_deleted", false).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reset deleted flags: %w", err)
	}
	return countActive(ctx, db)
}

func countActive(ctx context.Context, db *gorm.DB) (*ActiveCounts, error) {
	counts := &ActiveCounts{}
	for _, c := range []struct {
		model any
		dst   *int64
	}{
		{&models.UserModel{}, &counts.Users},
		{&models.PositionModel{}, &counts.Positions},
		{&models.TeacherModel{}, &counts.Teachers},
	} {
		if err := db.WithContext(ctx).Model(c.model).Where("is_deleted = ?", false).Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	return counts, nil
}

// TeacherSample is one teacher line of a Summary
type TeacherSample struct {
	Code      string
	Name      string
	Email     string
	Positions []string
	IsActive  bool
}

// Summary gives an overview of the loaded data
type Summary struct {
	TotalUsers     int64
	TotalPositions int64
	TotalTeachers  int64
	ActiveTeachers int64

	Positions    []models.PositionModel
	TeacherUsers []models.UserModel
	Samples      []TeacherSample
}

// Summarize counts every row, deleted ones included, and picks a few samples:
// up to five positions, five teacher users and three teachers with their
// user and positions resolved.
func Summarize(ctx context.Context, db *gorm.DB) (*Summary, error) {
	db = db.WithContext(ctx)
	s := &Summary{}
	if err := db.Model(&models.UserModel{}).Count(&s.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.PositionModel{}).Count(&s.TotalPositions).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.TeacherModel{}).Count(&s.TotalTeachers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.TeacherModel{}).
		Where("is_active = ? AND is_deleted = ?", true, false).
		Count(&s.ActiveTeachers).Error; err != nil {
		return nil, err
	}

	if err := db.Where("is_deleted = ?", false).Order("created_at").Limit(5).Find(&s.Positions).Error; err != nil {
		return nil, err
	}
	if err := db.Where("role = ? AND is_deleted = ?", identity.RoleTeacher, false).Order("created_at").Limit(5).Find(&s.TeacherUsers).Error; err != nil {
		return nil, err
	}

	var teachers []models.TeacherModel
	if err := db.Where("is_deleted = ?", false).Order("created_at").Limit(3).Find(&teachers).Error; err != nil {
		return nil, err
	}
	for _, t := range teachers {
		sample := TeacherSample{Code: t.Code, IsActive: t.IsActive}
		var user models.UserModel
		if err := db.Where("id = ?", t.UserID).Limit(1).Find(&user).Error; err != nil {
			return nil, err
		}
		sample.Name, sample.Email = user.Name, user.Email

		if err := db.Model(&models.PositionModel{}).
			Joins("JOIN teacher_position_assignments a ON a.position_id = teacher_positions.id").
			Where("a.teacher_id = ?", t.ID).
			Order("a.sort_order").
			Pluck("teacher_positions.name", &sample.Positions).Error; err != nil {
			return nil, err
		}
		s.Samples = append(s.Samples, sample)
	}
	return s, nil
}
