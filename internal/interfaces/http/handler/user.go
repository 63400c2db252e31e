package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	appidentity "github.com/school/backend/internal/application/identity"
)

// UserHandler handles user-related API endpoints
type UserHandler struct {
	BaseHandler
	userService *appidentity.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *appidentity.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUserRequest is the body of POST /users
// @Description Request body for creating a user
type CreateUserRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100" example:"Tran Thi Binh"`
	Email       string `json:"email" binding:"required,email" example:"binh.tran@school.edu.vn"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,max=20,phone" example:"0912345678"`
	Address     string `json:"address" binding:"omitempty,max=255"`
	Identity    string `json:"identity" binding:"omitempty,digits,min=9,max=12" example:"001200012345"`
	DateOfBirth string `json:"dob" binding:"omitempty,date" example:"2008-03-14"`
	Role        string `json:"role" binding:"omitempty,max=20" example:"STUDENT" enums:"STUDENT,TEACHER,ADMIN"`
}

// UpdateUserRequest is the body of PUT /users/:id. Omitted fields keep their values.
// @Description Request body for updating a user
type UpdateUserRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=100"`
	Email       *string `json:"email" binding:"omitempty,email"`
	PhoneNumber *string `json:"phoneNumber" binding:"omitempty,max=20,phone"`
	Address     *string `json:"address" binding:"omitempty,max=255"`
	Identity    *string `json:"identity" binding:"omitempty,digits,min=9,max=12"`
	DateOfBirth *string `json:"dob" binding:"omitempty,date"`
	Role        *string `json:"role" binding:"omitempty,max=20" enums:"STUDENT,TEACHER,ADMIN"`
}

// ListUsersQuery holds the paging and filter parameters of GET /users
type ListUsersQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Role   string `form:"role" binding:"omitempty,max=20"`
	Search string `form:"search" binding:"max=100"`
}

// AvatarUploadRequest is the body of POST /users/:id/avatar/upload-url
// @Description File metadata for a presigned avatar upload
type AvatarUploadRequest struct {
	FileName    string `json:"fileName" binding:"required,max=255" example:"portrait.png"`
	ContentType string `json:"contentType" binding:"required" example:"image/png"`
	FileSize    int64  `json:"fileSize" binding:"required,min=1" example:"204800"`
}

// AttachAvatarRequest is the body of PUT /users/:id/avatar
// @Description Storage key returned by the upload-url call
type AttachAvatarRequest struct {
	StorageKey string `json:"storageKey" binding:"required,max=512"`
}

// List godoc
// @ID           listUsers
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        page   query int    false "Page number" default(1) minimum(1) maximum(1000000)
// @Param        limit  query int    false "Page size" default(10) minimum(1) maximum(100)
// @Param        role   query string false "Filter by role" Enums(STUDENT, TEACHER, ADMIN)
// @Param        search query string false "Match against name or email"
// @Success      200 {object} APIResponse[appidentity.UserListResult]
// @Failure      400 {object} ErrorResponse
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	var q ListUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.userService.List(c.Request.Context(), appidentity.ListUsersInput{
		Page:   q.Page,
		Limit:  q.Limit,
		Role:   strings.TrimSpace(q.Role),
		Search: q.Search,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result, "Users fetched successfully")
}

// GetByID godoc
// @ID           getUser
// @Summary      Get user
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[appidentity.UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user, "User fetched successfully")
}

// Create godoc
// @ID           createUser
// @Summary      Create user
// @Description  Creates a user. The role defaults to STUDENT.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body CreateUserRequest true "User"
// @Success      201 {object} APIResponse[appidentity.UserResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	user, err := h.userService.Create(c.Request.Context(), appidentity.CreateUserInput{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Identity:    req.Identity,
		DateOfBirth: optionalDate(req.DateOfBirth),
		Role:        req.Role,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user, "User created successfully")
}

// Update godoc
// @ID           updateUser
// @Summary      Update user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id      path string            true "User ID" format(uuid)
// @Param        request body UpdateUserRequest true "Changes"
// @Success      200 {object} APIResponse[appidentity.UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	input := appidentity.UpdateUserInput{
		ID:          id,
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Identity:    req.Identity,
		Role:        req.Role,
	}
	if req.DateOfBirth != nil {
		input.DateOfBirth = optionalDate(*req.DateOfBirth)
	}

	user, err := h.userService.Update(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user, "User updated successfully")
}

// Delete godoc
// @ID           deleteUser
// @Summary      Delete user
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} MessageResponse
// @Failure      404 {object} ErrorResponse
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, nil, "User deleted successfully")
}

// RequestAvatarUpload godoc
// @ID           requestUserAvatarUpload
// @Summary      Presign avatar upload
// @Description  Returns a presigned PUT URL. Upload the image there, then attach the storage key.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id      path string              true "User ID" format(uuid)
// @Param        request body AvatarUploadRequest true "File metadata"
// @Success      200 {object} APIResponse[appidentity.AvatarUploadResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /users/{id}/avatar/upload-url [post]
func (h *UserHandler) RequestAvatarUpload(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req AvatarUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.userService.RequestAvatarUpload(c.Request.Context(), appidentity.AvatarUploadInput{
		UserID:      id,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		FileSize:    req.FileSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result, "Upload URL generated successfully")
}

// AttachAvatar godoc
// @ID           attachUserAvatar
// @Summary      Attach avatar
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id      path string              true "User ID" format(uuid)
// @Param        request body AttachAvatarRequest true "Uploaded object"
// @Success      200 {object} APIResponse[appidentity.UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /users/{id}/avatar [put]
func (h *UserHandler) AttachAvatar(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req AttachAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	user, err := h.userService.AttachAvatar(c.Request.Context(), id, req.StorageKey)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user, "Avatar updated successfully")
}

// GetAvatarURL godoc
// @ID           getUserAvatarURL
// @Summary      Presign avatar download
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[appidentity.AvatarDownloadResult]
// @Failure      404 {object} ErrorResponse
// @Router       /users/{id}/avatar [get]
func (h *UserHandler) GetAvatarURL(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	result, err := h.userService.AvatarDownloadURL(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result, "Avatar URL generated successfully")
}
