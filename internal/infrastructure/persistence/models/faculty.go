package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/school/backend/internal/domain/faculty"
	"gorm.io/datatypes"
)

// PositionModel is the persistence model for the Position domain entity.
type PositionModel struct {
	AggregateModel
	Code        string `gorm:"type:varchar(20);not null;uniqueIndex:idx_teacher_positions_code_active,where:is_deleted = false"`
	Name        string `gorm:"type:varchar(100);not null"`
	Description string `gorm:"type:varchar(500)"`
	IsActive    bool   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PositionModel) TableName() string {
	return "teacher_positions"
}

// ToDomain converts the persistence model to a domain Position
func (m *PositionModel) ToDomain() *faculty.Position {
	return &faculty.Position{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Description:       m.Description,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Position
func (m *PositionModel) FromDomain(p *faculty.Position) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Code = p.Code
	m.Name = p.Name
	m.Description = p.Description
	m.IsActive = p.IsActive
}

// PositionModelFromDomain creates a new persistence model from a domain Position
func PositionModelFromDomain(p *faculty.Position) *PositionModel {
	m := &PositionModel{}
	m.FromDomain(p)
	return m
}

// DegreeModel is the JSON shape of a degree stored in teachers.degrees
type DegreeModel struct {
	Type        string `json:"type"`
	School      string `json:"school"`
	Major       string `json:"major"`
	Year        *int   `json:"year,omitempty"`
	IsGraduated bool   `json:"isGraduated"`
}

// TeacherModel is the persistence model for the Teacher domain entity.
// Position references live in teacher_position_assignments.
type TeacherModel struct {
	AggregateModel
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Code      string    `gorm:"type:varchar(20);not null;uniqueIndex"`
	IsActive  bool      `gorm:"not null;index"`
	StartDate time.Time `gorm:"not null"`
	EndDate   *time.Time
	Degrees   datatypes.JSONSlice[DegreeModel] `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TeacherModel) TableName() string {
	return "teachers"
}

// ToDomain converts the persistence model to a domain Teacher.
// PositionIDs are attached by the repository.
func (m *TeacherModel) ToDomain(positionIDs []uuid.UUID) *faculty.Teacher {
	degrees := make([]faculty.Degree, 0, len(m.Degrees))
	for _, d := range m.Degrees {
		degrees = append(degrees, faculty.Degree{
			Type:        d.Type,
			School:      d.School,
			Major:       d.Major,
			Year:        d.Year,
			IsGraduated: d.IsGraduated,
		})
	}
	if positionIDs == nil {
		positionIDs = []uuid.UUID{}
	}
	return &faculty.Teacher{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		UserID:            m.UserID,
		Code:              m.Code,
		PositionIDs:       positionIDs,
		Degrees:           degrees,
		IsActive:          m.IsActive,
		StartDate:         m.StartDate,
		EndDate:           m.EndDate,
	}
}

// FromDomain populates the persistence model from a domain Teacher
func (m *TeacherModel) FromDomain(t *faculty.Teacher) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.UserID = t.UserID
	m.Code = t.Code
	m.IsActive = t.IsActive
	m.StartDate = t.StartDate
	m.EndDate = t.EndDate
	m.Degrees = make(datatypes.JSONSlice[DegreeModel], 0, len(t.Degrees))
	for _, d := range t.Degrees {
		m.Degrees = append(m.Degrees, DegreeModel{
			Type:        d.Type,
			School:      d.School,
			Major:       d.Major,
			Year:        d.Year,
			IsGraduated: d.IsGraduated,
		})
	}
}

// TeacherModelFromDomain creates a new persistence model from a domain Teacher
func TeacherModelFromDomain(t *faculty.Teacher) *TeacherModel {
	m := &TeacherModel{}
	m.FromDomain(t)
	return m
}

// TeacherPositionAssignmentModel links a teacher to a position.
// SortOrder keeps the order in which positions were given.
type TeacherPositionAssignmentModel struct {
	TeacherID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	PositionID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	SortOrder  int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TeacherPositionAssignmentModel) TableName() string {
	return "teacher_position_assignments"
}

// AssignmentModelsFromDomain builds the assignment rows of a teacher
func AssignmentModelsFromDomain(t *faculty.Teacher) []TeacherPositionAssignmentModel {
	rows := make([]TeacherPositionAssignmentModel, 0, len(t.PositionIDs))
	for i, id := range t.PositionIDs {
		rows = append(rows, TeacherPositionAssignmentModel{
			TeacherID:  t.ID,
			PositionID: id,
			SortOrder:  i,
		})
	}
	return rows
}

// TeacherCodeSequenceModel stores the last teacher code sequence per year
type TeacherCodeSequenceModel struct {
	Year      int   `gorm:"primaryKey;autoIncrement:false"`
	LastValue int64 `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (TeacherCodeSequenceModel) TableName() string {
	return "teacher_code_sequences"
}

// AllModels lists every model for AutoMigrate in tests and local sqlite runs
func AllModels() []interface{} {
	return []interface{}{
		&UserModel{},
		&PositionModel{},
		&TeacherModel{},
		&TeacherPositionAssignmentModel{},
		&TeacherCodeSequenceModel{},
	}
}
