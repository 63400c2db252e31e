package persistence

import (
	"context"
	"time"

	"github.com/school/backend/internal/domain/faculty"
	"github.com/school/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTeacherCodeSequence keeps one counter row per year in teacher_code_sequences.
// Each call is a single upsert statement, so concurrent callers are serialized
// by the row lock and never read the same value.
type GormTeacherCodeSequence struct {
	db *gorm.DB
}

// NewGormTeacherCodeSequence creates a new GormTeacherCodeSequence
func NewGormTeacherCodeSequence(db *gorm.DB) *GormTeacherCodeSequence {
	return &GormTeacherCodeSequence{db: db}
}

// Next increments the counter for year and returns the new value.
// The first call for a year returns 1.
func (s *GormTeacherCodeSequence) Next(ctx context.Context, year int) (int64, error) {
	now := time.Now()
	row := models.TeacherCodeSequenceModel{Year: year, LastValue: 1, UpdatedAt: now}
	err := s.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "year"}},
				DoUpdates: clause.Assignments(map[string]any{
					"last_value": gorm.Expr("teacher_code_sequences.last_value + 1"),
					"updated_at": now,
				}),
			},
			clause.Returning{Columns: []clause.Column{{Name: "last_value"}}},
		).
		Create(&row).Error
	if err != nil {
		return 0, err
	}
	return row.LastValue, nil
}

// EnsureAtLeast raises the counter for year to value. A higher stored value is kept.
func (s *GormTeacherCodeSequence) EnsureAtLeast(ctx context.Context, year int, value int64) error {
	now := time.Now()
	row := models.TeacherCodeSequenceModel{Year: year, LastValue: value, UpdatedAt: now}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "year"}},
			DoUpdates: clause.Assignments(map[string]any{
				"last_value": gorm.Expr(
					"CASE WHEN teacher_code_sequences.last_value < excluded.last_value " +
						"THEN excluded.last_value ELSE teacher_code_sequences.last_value END"),
				"updated_at": now,
			}),
		}).
		Create(&row).Error
}

// Current returns the stored counter for year, zero when none exists
func (s *GormTeacherCodeSequence) Current(ctx context.Context, year int) (int64, error) {
	var value int64
	err := s.db.WithContext(ctx).
		Model(&models.TeacherCodeSequenceModel{}).
		Select("last_value").
		Where("year = ?", year).
		Scan(&value).Error
	return value, err
}

// Ensure GormTeacherCodeSequence implements TeacherCodeSequence
var _ faculty.TeacherCodeSequence = (*GormTeacherCodeSequence)(nil)
