package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appfaculty "github.com/school/backend/internal/application/faculty"
	"github.com/school/backend/internal/infrastructure/export"
	"github.com/school/backend/internal/interfaces/http/dto"
	"github.com/school/backend/internal/interfaces/http/middleware"
)

// TeacherHandler handles teacher-related API endpoints
type TeacherHandler struct {
	BaseHandler
	teacherService *appfaculty.TeacherService
	queryService   *appfaculty.TeacherQueryService
	now            func() time.Time
}

// NewTeacherHandler creates a new TeacherHandler
func NewTeacherHandler(teacherService *appfaculty.TeacherService, queryService *appfaculty.TeacherQueryService) *TeacherHandler {
	return &TeacherHandler{
		teacherService: teacherService,
		queryService:   queryService,
		now:            time.Now,
	}
}

// DegreeRequest is one academic degree of a teacher. An omitted isGraduated
// means graduated.
// @Description Academic degree
type DegreeRequest struct {
	Type        string `json:"type" binding:"required,max=50" example:"Master"`
	School      string `json:"school" binding:"required,max=200" example:"Hanoi University of Education"`
	Major       string `json:"major" binding:"required,max=200" example:"Mathematics"`
	Year        *int   `json:"year" binding:"omitempty,min=1950,past_year" example:"2015"`
	IsGraduated *bool  `json:"isGraduated" example:"true"`
}

// CreateTeacherRequest is the body of POST /teachers
// @Description Request body for creating a teacher together with its user
type CreateTeacherRequest struct {
	Name        string          `json:"name" binding:"required,min=2,max=100" example:"Nguyen Van An"`
	Email       string          `json:"email" binding:"required,email" example:"an.nguyen@school.edu.vn"`
	PhoneNumber string          `json:"phoneNumber" binding:"omitempty,max=20,phone" example:"0901234567"`
	Address     string          `json:"address" binding:"omitempty,max=255" example:"12 Tran Phu, Ha Dong, Ha Noi"`
	Identity    string          `json:"identity" binding:"omitempty,digits,min=9,max=12" example:"001090012345"`
	DateOfBirth string          `json:"dob" binding:"omitempty,date" example:"1990-05-20"`
	PositionIDs []string        `json:"teacherPositionsId" binding:"omitempty,dive,uuid"`
	Degrees     []DegreeRequest `json:"degrees" binding:"omitempty,dive"`
	StartDate   string          `json:"startDate" binding:"omitempty,date" example:"2024-09-01"`
	EndDate     string          `json:"endDate" binding:"omitempty,date"`
	IsActive    *bool           `json:"isActive" example:"true"`
}

// UpdateTeacherRequest is the body of PUT /teachers/:id. Omitted person
// fields keep their values. teacherPositionsId and degrees always replace
// the current lists, so omitting them clears both.
// @Description Request body for updating a teacher
type UpdateTeacherRequest struct {
	Name        *string         `json:"name" binding:"omitempty,min=2,max=100" example:"Nguyen Van An"`
	Email       *string         `json:"email" binding:"omitempty,email" example:"an.nguyen@school.edu.vn"`
	PhoneNumber *string         `json:"phoneNumber" binding:"omitempty,max=20,phone"`
	Address     *string         `json:"address" binding:"omitempty,max=255"`
	Identity    *string         `json:"identity" binding:"omitempty,digits,min=9,max=12"`
	DateOfBirth *string         `json:"dob" binding:"omitempty,date"`
	PositionIDs []string        `json:"teacherPositionsId" binding:"omitempty,dive,uuid"`
	Degrees     []DegreeRequest `json:"degrees" binding:"omitempty,dive"`
	StartDate   *string         `json:"startDate" binding:"omitempty,date"`
	EndDate     *string         `json:"endDate" binding:"omitempty,date"`
	IsActive    *bool           `json:"isActive"`
}

// List godoc
// @ID           listTeachers
// @Summary      List teachers
// @Description  Returns one page of non-deleted teachers with their user and positions expanded
// @Tags         teachers
// @Produce      json
// @Param        page   query int    false "Page number" default(1) minimum(1) maximum(1000000)
// @Param        limit  query int    false "Page size" default(10) minimum(1) maximum(100)
// @Param        search query string false "Match against name, email or phone"
// @Success      200 {object} APIResponse[appfaculty.TeacherListResult]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /teachers [get]
func (h *TeacherHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.queryService.List(c.Request.Context(), appfaculty.ListTeachersInput{
		Page:   req.Page,
		Limit:  req.Limit,
		Search: req.Search,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result, "Teachers fetched successfully")
}

// Stats godoc
// @ID           getTeacherStats
// @Summary      Teacher statistics
// @Description  Counts non-deleted teachers by employment status
// @Tags         teachers
// @Produce      json
// @Success      200 {object} APIResponse[TeacherStatsResponse]
// @Failure      500 {object} ErrorResponse
// @Router       /teachers/stats [get]
func (h *TeacherHandler) Stats(c *gin.Context) {
	stats, err := h.queryService.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats, "Teacher statistics fetched successfully")
}

// Export godoc
// @ID           exportTeachers
// @Summary      Export teachers
// @Description  Downloads the non-deleted teachers matching search as an XLSX workbook
// @Tags         teachers
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        search query string false "Match against name, email or phone"
// @Success      200 {file} file
// @Failure      500 {object} ErrorResponse
// @Router       /teachers/export [get]
func (h *TeacherHandler) Export(c *gin.Context) {
	rows, err := h.queryService.ExportRows(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("teachers-%s.xlsx", h.now().Format("20060102-150405"))
	c.Header("Content-Type", export.ContentTypeXLSX)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := export.WriteTeachersXLSX(c.Writer, rows); err != nil {
		// headers are already out, the client sees a truncated file
		_ = c.Error(err)
	}
}

// GetByID godoc
// @ID           getTeacher
// @Summary      Get teacher
// @Tags         teachers
// @Produce      json
// @Param        id path string true "Teacher ID" format(uuid)
// @Success      200 {object} APIResponse[appfaculty.TeacherResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /teachers/{id} [get]
func (h *TeacherHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	teacher, err := h.queryService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, teacher, "Teacher fetched successfully")
}

// Create godoc
// @ID           createTeacher
// @Summary      Create teacher
// @Description  Creates the teacher's user record and the teacher with a generated code
// @Tags         teachers
// @Accept       json
// @Produce      json
// @Param        request body CreateTeacherRequest true "Teacher"
// @Success      201 {object} APIResponse[appfaculty.TeacherResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /teachers [post]
func (h *TeacherHandler) Create(c *gin.Context) {
	var req CreateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	positionIDs, err := parseUUIDs(req.PositionIDs)
	if err != nil {
		h.BindError(c, err)
		return
	}
	input := appfaculty.CreateTeacherInput{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Identity:    req.Identity,
		DateOfBirth: optionalDate(req.DateOfBirth),
		PositionIDs: positionIDs,
		Degrees:     toDegreeDTOs(req.Degrees),
		StartDate:   optionalDate(req.StartDate),
		EndDate:     optionalDate(req.EndDate),
		IsActive:    req.IsActive,
	}

	teacher, err := h.teacherService.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, teacher, "Teacher created successfully")
}

// Update godoc
// @ID           updateTeacher
// @Summary      Update teacher
// @Description  Updates the teacher and its user. Positions and degrees are always replaced.
// @Tags         teachers
// @Accept       json
// @Produce      json
// @Param        id      path string               true "Teacher ID" format(uuid)
// @Param        request body UpdateTeacherRequest true "Changes"
// @Success      200 {object} APIResponse[appfaculty.TeacherResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /teachers/{id} [put]
func (h *TeacherHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	positionIDs, err := parseUUIDs(req.PositionIDs)
	if err != nil {
		h.BindError(c, err)
		return
	}
	input := appfaculty.UpdateTeacherInput{
		ID:          id,
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Identity:    req.Identity,
		PositionIDs: positionIDs,
		Degrees:     toDegreeDTOs(req.Degrees),
		IsActive:    req.IsActive,
	}
	if req.DateOfBirth != nil {
		input.DateOfBirth = optionalDate(*req.DateOfBirth)
	}
	if req.StartDate != nil {
		input.StartDate = optionalDate(*req.StartDate)
	}
	if req.EndDate != nil {
		input.EndDate = optionalDate(*req.EndDate)
	}

	teacher, err := h.teacherService.Update(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, teacher, "Teacher updated successfully")
}

// Delete godoc
// @ID           deleteTeacher
// @Summary      Delete teacher
// @Description  Soft deletes the teacher and its user
// @Tags         teachers
// @Produce      json
// @Param        id path string true "Teacher ID" format(uuid)
// @Success      200 {object} MessageResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /teachers/{id} [delete]
func (h *TeacherHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.teacherService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, nil, "Teacher deleted successfully")
}

// optionalDate converts a validated date string, empty meaning unset
func optionalDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := middleware.ParseDate(s)
	if err != nil {
		return nil
	}
	return &t
}

func parseUUIDs(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func toDegreeDTOs(in []DegreeRequest) []appfaculty.DegreeDTO {
	out := make([]appfaculty.DegreeDTO, len(in))
	for i, d := range in {
		graduated := true
		if d.IsGraduated != nil {
			graduated = *d.IsGraduated
		}
		out[i] = appfaculty.DegreeDTO{
			Type:        d.Type,
			School:      d.School,
			Major:       d.Major,
			Year:        d.Year,
			IsGraduated: graduated,
		}
	}
	return out
}
