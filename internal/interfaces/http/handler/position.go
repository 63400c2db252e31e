package handler

import (
	"github.com/gin-gonic/gin"
	appfaculty "github.com/school/backend/internal/application/faculty"
)

// PositionHandler handles teacher position API endpoints
type PositionHandler struct {
	BaseHandler
	positionService *appfaculty.PositionService
}

// NewPositionHandler creates a new PositionHandler
func NewPositionHandler(positionService *appfaculty.PositionService) *PositionHandler {
	return &PositionHandler{positionService: positionService}
}

// CreatePositionRequest is the body of POST /positions
// @Description Request body for creating a teacher position
type CreatePositionRequest struct {
	Code        string `json:"code" binding:"required,min=2,max=20,position_code" example:"HOD_MATH"`
	Name        string `json:"name" binding:"required,min=2,max=100" example:"Head of Mathematics"`
	Description string `json:"des" binding:"max=500" example:"Leads the mathematics department"`
	IsActive    *bool  `json:"isActive" example:"true"`
}

// UpdatePositionRequest is the body of PUT /positions/:id
// @Description Request body for updating a teacher position
type UpdatePositionRequest struct {
	Code        string  `json:"code" binding:"required,min=2,max=20,position_code" example:"HOD_MATH"`
	Name        string  `json:"name" binding:"required,min=2,max=100" example:"Head of Mathematics"`
	Description *string `json:"des" binding:"omitempty,max=500"`
	IsActive    *bool   `json:"isActive"`
}

// ListPositionsQuery holds the list filters
type ListPositionsQuery struct {
	OnlyActive bool `form:"onlyActive"`
}

// List godoc
// @ID           listPositions
// @Summary      List positions
// @Description  Returns non-deleted positions, newest first
// @Tags         positions
// @Produce      json
// @Param        onlyActive query bool false "Only positions with isActive=true"
// @Success      200 {object} APIResponse[[]appfaculty.PositionResponse]
// @Failure      500 {object} ErrorResponse
// @Router       /positions [get]
func (h *PositionHandler) List(c *gin.Context) {
	var q ListPositionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	positions, err := h.positionService.List(c.Request.Context(), q.OnlyActive)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, positions, "Positions fetched successfully")
}

// GetByID godoc
// @ID           getPosition
// @Summary      Get position
// @Tags         positions
// @Produce      json
// @Param        id path string true "Position ID" format(uuid)
// @Success      200 {object} APIResponse[appfaculty.PositionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /positions/{id} [get]
func (h *PositionHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	position, err := h.positionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, position, "Position fetched successfully")
}

// Create godoc
// @ID           createPosition
// @Summary      Create position
// @Description  Codes are stored uppercase and must be unique among non-deleted positions
// @Tags         positions
// @Accept       json
// @Produce      json
// @Param        request body CreatePositionRequest true "Position"
// @Success      201 {object} APIResponse[appfaculty.PositionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /positions [post]
func (h *PositionHandler) Create(c *gin.Context) {
	var req CreatePositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	position, err := h.positionService.Create(c.Request.Context(), appfaculty.CreatePositionInput{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, position, "Position created successfully")
}

// Update godoc
// @ID           updatePosition
// @Summary      Update position
// @Tags         positions
// @Accept       json
// @Produce      json
// @Param        id      path string                true "Position ID" format(uuid)
// @Param        request body UpdatePositionRequest true "Changes"
// @Success      200 {object} APIResponse[appfaculty.PositionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /positions/{id} [put]
func (h *PositionHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req UpdatePositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	position, err := h.positionService.Update(c.Request.Context(), appfaculty.UpdatePositionInput{
		ID:          id,
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, position, "Position updated successfully")
}

// Delete godoc
// @ID           deletePosition
// @Summary      Delete position
// @Description  Soft deletes the position. Teachers keep their existing references.
// @Tags         positions
// @Produce      json
// @Param        id path string true "Position ID" format(uuid)
// @Success      200 {object} MessageResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /positions/{id} [delete]
func (h *PositionHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.positionService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, nil, "Position deleted successfully")
}
