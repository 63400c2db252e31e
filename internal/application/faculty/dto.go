package faculty

import (
	"time"

	"github.com/google/uuid"
	appidentity "github.com/school/backend/internal/application/identity"
	"github.com/school/backend/internal/domain/faculty"
	"github.com/school/backend/internal/domain/shared"
)

// CreatePositionInput contains input for creating a position
type CreatePositionInput struct {
	Code        string
	Name        string
	Description string
	IsActive    *bool
}

// UpdatePositionInput contains input for updating a position
type UpdatePositionInput struct {
	ID          uuid.UUID
	Code        string
	Name        string
	Description *string
	IsActive    *bool
}

// PositionResponse is the API representation of a position
type PositionResponse struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"des"`
	IsActive    bool      `json:"isActive"`
	IsDeleted   bool      `json:"isDeleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DegreeDTO is the API shape of a degree
type DegreeDTO struct {
	Type        string `json:"type"`
	School      string `json:"school"`
	Major       string `json:"major"`
	Year        *int   `json:"year,omitempty"`
	IsGraduated bool   `json:"isGraduated"`
}

// CreateTeacherInput contains the person and employment fields of a new teacher
type CreateTeacherInput struct {
	Name        string
	Email       string
	PhoneNumber string
	Address     string
	Identity    string
	DateOfBirth *time.Time

	PositionIDs []uuid.UUID
	Degrees     []DegreeDTO
	StartDate   *time.Time
	EndDate     *time.Time
	IsActive    *bool
}

// UpdateTeacherInput contains a teacher update. PositionIDs and Degrees
// replace the current lists; other nil fields keep their values.
type UpdateTeacherInput struct {
	ID uuid.UUID

	Name        *string
	Email       *string
	PhoneNumber *string
	Address     *string
	Identity    *string
	DateOfBirth *time.Time

	PositionIDs []uuid.UUID
	Degrees     []DegreeDTO
	StartDate   *time.Time
	EndDate     *time.Time
	IsActive    *bool
}

// ListTeachersInput contains paging and search options
type ListTeachersInput struct {
	Page   int
	Limit  int
	Search string
}

// TeacherResponse is the expanded view of a teacher with its user and
// positions inlined
type TeacherResponse struct {
	ID          uuid.UUID                 `json:"id"`
	Code        string                    `json:"code"`
	UserID      uuid.UUID                 `json:"userId"`
	User        *appidentity.UserResponse `json:"user"`
	PositionIDs []uuid.UUID               `json:"teacherPositionsId"`
	Positions   []PositionResponse        `json:"positions"`
	Degrees     []DegreeDTO               `json:"degrees"`
	IsActive    bool                      `json:"isActive"`
	IsDeleted   bool                      `json:"isDeleted"`
	StartDate   time.Time                 `json:"startDate"`
	EndDate     *time.Time                `json:"endDate,omitempty"`
	CreatedAt   time.Time                 `json:"createdAt"`
	UpdatedAt   time.Time                 `json:"updatedAt"`
}

// TeacherListResult is one page of teachers
type TeacherListResult struct {
	Teachers   []TeacherResponse `json:"teachers"`
	Pagination shared.Pagination `json:"pagination"`
}

// ToPositionResponse converts a domain position to its API representation
func ToPositionResponse(p *faculty.Position) PositionResponse {
	return PositionResponse{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		IsActive:    p.IsActive,
		IsDeleted:   p.IsDeleted,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToPositionResponses converts a slice of positions
func ToPositionResponses(positions []*faculty.Position) []PositionResponse {
	out := make([]PositionResponse, len(positions))
	for i, p := range positions {
		out[i] = ToPositionResponse(p)
	}
	return out
}

func toDomainDegrees(in []DegreeDTO) []faculty.Degree {
	out := make([]faculty.Degree, len(in))
	for i, d := range in {
		out[i] = faculty.Degree{
			Type:        d.Type,
			School:      d.School,
			Major:       d.Major,
			Year:        d.Year,
			IsGraduated: d.IsGraduated,
		}
	}
	return out
}

func toDegreeDTOs(in []faculty.Degree) []DegreeDTO {
	out := make([]DegreeDTO, len(in))
	for i, d := range in {
		out[i] = DegreeDTO{
			Type:        d.Type,
			School:      d.School,
			Major:       d.Major,
			Year:        d.Year,
			IsGraduated: d.IsGraduated,
		}
	}
	return out
}
