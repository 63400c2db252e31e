package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/school/backend/internal/domain/identity"
	"github.com/school/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UserService handles user management operations
type UserService struct {
	userRepo       identity.UserRepository
	storage        ObjectStorageService
	avatarConfig   AvatarConfig
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo:     userRepo,
		avatarConfig: DefaultAvatarConfig(),
		logger:       logger,
	}
}

// SetEventPublisher sets the publisher for user domain events
func (s *UserService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetObjectStorage enables avatar uploads
func (s *UserService) SetObjectStorage(storage ObjectStorageService, cfg AvatarConfig) {
	s.storage = storage
	s.avatarConfig = cfg
}

// Create creates a new user
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*UserResponse, error) {
	role := identity.RoleStudent
	if strings.TrimSpace(input.Role) != "" {
		parsed, err := identity.ParseRole(input.Role)
		if err != nil {
			return nil, err
		}
		role = parsed
	}

	user, err := identity.NewUser(identity.Profile{
		Name:        input.Name,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
		Address:     input.Address,
		Identity:    input.Identity,
		DateOfBirth: input.DateOfBirth,
	}, role)
	if err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsActiveByEmail(ctx, user.Email, nil)
	if err != nil {
		return nil, fmt.Errorf("check email availability: %w", err)
	}
	if exists {
		return nil, shared.ErrDuplicateEmail
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, err
	}
	s.publish(ctx, user)

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	resp := ToUserResponse(user)
	return &resp, nil
}

// GetByID returns an active user
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// FindActiveByEmail returns the active user with the email, or nil
func (s *UserService) FindActiveByEmail(ctx context.Context, email string) (*UserResponse, error) {
	user, err := s.userRepo.FindActiveByEmail(ctx, email)
	if err != nil || user == nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// List returns a page of active users, newest first
func (s *UserService) List(ctx context.Context, input ListUsersInput) (*UserListResult, error) {
	page := shared.Filter{Page: input.Page, PageSize: input.Limit}.Normalize()

	filter := identity.NewUserFilter()
	filter.Page = page.Page
	filter.PageSize = page.PageSize
	filter.Search = strings.TrimSpace(input.Search)
	if strings.TrimSpace(input.Role) != "" {
		role, err := identity.ParseRole(input.Role)
		if err != nil {
			return nil, err
		}
		filter.Role = &role
	}

	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		return nil, err
	}

	return &UserListResult{
		Users:      ToUserResponses(users),
		Pagination: shared.NewPagination(total, page.Page, page.PageSize),
	}, nil
}

// Update changes the fields present in input
func (s *UserService) Update(ctx context.Context, input UpdateUserInput) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	changes := identity.ProfileChanges{
		Name:        input.Name,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
		Address:     input.Address,
		Identity:    input.Identity,
		DateOfBirth: input.DateOfBirth,
	}
	if input.Role != nil {
		role, err := identity.ParseRole(*input.Role)
		if err != nil {
			return nil, err
		}
		changes.Role = &role
	}

	if email, changed := user.EmailChange(changes); changed {
		exists, err := s.userRepo.ExistsActiveByEmail(ctx, email, &user.ID)
		if err != nil {
			return nil, fmt.Errorf("check email availability: %w", err)
		}
		if exists {
			return nil, shared.ErrDuplicateEmail
		}
	}

	if err := user.Update(changes); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update user", zap.Error(err))
		return nil, err
	}
	s.publish(ctx, user)

	s.logger.Info("User updated", zap.String("user_id", user.ID.String()))
	resp := ToUserResponse(user)
	return &resp, nil
}

// Delete soft-deletes a user
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := user.SoftDelete(); err != nil {
		return err
	}
	if err := s.userRepo.SoftDelete(ctx, id); err != nil {
		s.logger.Error("Failed to delete user", zap.Error(err))
		return err
	}
	s.publish(ctx, user)

	s.logger.Info("User deleted", zap.String("user_id", id.String()))
	return nil
}

// RequestAvatarUpload returns a presigned URL for uploading a new avatar
func (s *UserService) RequestAvatarUpload(ctx context.Context, input AvatarUploadInput) (*AvatarUploadResult, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Avatar storage is not configured")
	}
	if _, err := s.userRepo.FindByID(ctx, input.UserID); err != nil {
		return nil, err
	}

	var errs shared.FieldErrors
	ext, ok := avatarExtension(input.FileName, input.ContentType)
	if !ok {
		errs.Add("contentType", "Avatar must be a JPEG, PNG, WEBP or GIF image")
	}
	if input.FileSize <= 0 || input.FileSize > s.avatarConfig.MaxFileSize {
		errs.Add("fileSize", fmt.Sprintf("Avatar size must be between 1 and %d bytes", s.avatarConfig.MaxFileSize))
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	key := avatarKeyPrefix(input.UserID.String()) + uuid.New().String() + ext
	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, input.ContentType, s.avatarConfig.UploadURLExpiry)
	if err != nil {
		s.logger.Error("Failed to presign avatar upload", zap.Error(err))
		return nil, err
	}

	return &AvatarUploadResult{
		UploadURL:  url,
		StorageKey: key,
		ExpiresAt:  expiresAt,
	}, nil
}

// AttachAvatar points the user at an uploaded avatar. The previous image is removed.
func (s *UserService) AttachAvatar(ctx context.Context, userID uuid.UUID, storageKey string) (*UserResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Avatar storage is not configured")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(storageKey, avatarKeyPrefix(userID.String())) {
		return nil, shared.NewValidationError(shared.FieldError{Field: "storageKey", Message: "Storage key does not belong to this user"})
	}

	exists, err := s.storage.ObjectExists(ctx, storageKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewValidationError(shared.FieldError{Field: "storageKey", Message: "Avatar has not been uploaded"})
	}

	previous := user.AvatarRef
	if err := user.SetAvatar(storageKey); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if previous != "" && previous != storageKey {
		if err := s.storage.DeleteObject(ctx, previous); err != nil {
			s.logger.Warn("Failed to delete previous avatar",
				zap.String("user_id", userID.String()),
				zap.String("storage_key", previous),
				zap.Error(err))
		}
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

// AvatarDownloadURL presigns a GET for the user's current avatar
func (s *UserService) AvatarDownloadURL(ctx context.Context, userID uuid.UUID) (*AvatarDownloadResult, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Avatar storage is not configured")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.AvatarRef == "" {
		return nil, shared.NewDomainError(shared.CodeNotFound, "User has no avatar")
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, user.AvatarRef, s.avatarConfig.DownloadURLExpiry)
	if err != nil {
		return nil, err
	}
	return &AvatarDownloadResult{URL: url, ExpiresAt: expiresAt}, nil
}

func (s *UserService) publish(ctx context.Context, user *identity.User) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, user); err != nil {
		s.logger.Warn("Failed to publish user events",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	}
}
