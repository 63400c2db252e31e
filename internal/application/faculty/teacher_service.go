package faculty

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/school/backend/internal/domain/faculty"
	"github.com/school/backend/internal/domain/identity"
	"github.com/school/backend/internal/domain/shared"
	"github.com/school/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// TeacherService handles teacher writes. A teacher and the user it owns are
// always written in the same transaction.
type TeacherService struct {
	txScope        TransactionScope
	queries        *TeacherQueryService
	eventPublisher shared.EventPublisher
	now            func() time.Time
	logger         *zap.Logger
}

// NewTeacherService creates a new teacher service
func NewTeacherService(txScope TransactionScope, queries *TeacherQueryService, logger *zap.Logger) *TeacherService {
	return &TeacherService{
		txScope: txScope,
		queries: queries,
		now:     time.Now,
		logger:  logger,
	}
}

// SetEventPublisher sets the publisher for teacher and user domain events
func (s *TeacherService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock replaces the clock that picks the year of generated codes
func (s *TeacherService) SetClock(now func() time.Time) {
	s.now = now
}

// Create hires a teacher: it creates the owned user with role TEACHER, then
// the teacher with a freshly generated code.
func (s *TeacherService) Create(ctx context.Context, input CreateTeacherInput) (_ *TeacherResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "teacher", "create")
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	user, err := identity.NewUser(identity.Profile{
		Name:        input.Name,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
		Address:     input.Address,
		Identity:    input.Identity,
		DateOfBirth: input.DateOfBirth,
	}, identity.RoleTeacher)
	if err != nil {
		return nil, err
	}

	teacher, err := faculty.NewTeacher(user.ID, faculty.Employment{
		PositionIDs: input.PositionIDs,
		Degrees:     toDomainDegrees(input.Degrees),
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		IsActive:    input.IsActive,
	})
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		exists, err := repos.Users().ExistsActiveByEmail(ctx, user.Email, nil)
		if err != nil {
			return fmt.Errorf("check email availability: %w", err)
		}
		if exists {
			return shared.ErrDuplicateEmail
		}
		if err := checkPositions(ctx, repos.Positions(), teacher.PositionIDs, nil); err != nil {
			return err
		}

		code, err := faculty.NewTeacherCodeGenerator(repos.CodeSequence()).WithClock(s.now).Generate(ctx)
		if err != nil {
			return err
		}
		if err := teacher.AssignCode(code); err != nil {
			return err
		}

		if err := repos.Users().Create(ctx, user); err != nil {
			return fmt.Errorf("create teacher user: %w", err)
		}
		if err := repos.Teachers().Create(ctx, teacher); err != nil {
			return fmt.Errorf("create teacher: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to create teacher", zap.String("email", user.Email), zap.Error(err))
		return nil, err
	}

	s.publish(ctx, user, teacher)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTeacherID, teacher.ID.String(),
		telemetry.SpanAttrTeacherCode, teacher.Code,
	)
	s.logger.Info("Teacher created",
		zap.String("teacher_id", teacher.ID.String()),
		zap.String("code", teacher.Code))

	return s.queries.GetByID(ctx, teacher.ID)
}

// Update changes a teacher and its user. Position IDs and degrees are
// replaced wholesale; other omitted fields keep their values.
func (s *TeacherService) Update(ctx context.Context, input UpdateTeacherInput) (*TeacherResponse, error) {
	var (
		teacher *faculty.Teacher
		user    *identity.User
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		teacher, err = repos.Teachers().FindByID(ctx, input.ID)
		if err != nil {
			return err
		}
		user, err = repos.Users().FindByID(ctx, teacher.UserID)
		if err != nil {
			if shared.IsNotFound(err) {
				return shared.NewDomainError(shared.CodeNotFound, "Teacher user not found")
			}
			return err
		}

		changes := identity.ProfileChanges{
			Name:        input.Name,
			Email:       input.Email,
			PhoneNumber: input.PhoneNumber,
			Address:     input.Address,
			Identity:    input.Identity,
			DateOfBirth: input.DateOfBirth,
		}
		if email, changed := user.EmailChange(changes); changed {
			exists, err := repos.Users().ExistsActiveByEmail(ctx, email, &user.ID)
			if err != nil {
				return fmt.Errorf("check email availability: %w", err)
			}
			if exists {
				return shared.ErrDuplicateEmail
			}
		}
		if err := checkPositions(ctx, repos.Positions(), input.PositionIDs, teacher.PositionIDs); err != nil {
			return err
		}

		if err := user.Update(changes); err != nil {
			return err
		}
		if err := teacher.UpdateEmployment(faculty.EmploymentChanges{
			PositionIDs: input.PositionIDs,
			Degrees:     toDomainDegrees(input.Degrees),
			StartDate:   input.StartDate,
			EndDate:     input.EndDate,
			IsActive:    input.IsActive,
		}); err != nil {
			return err
		}

		if err := repos.Users().Update(ctx, user); err != nil {
			return fmt.Errorf("update teacher user: %w", err)
		}
		if err := repos.Teachers().Update(ctx, teacher); err != nil {
			return fmt.Errorf("update teacher: %w", err)
		}
		return nil
	})
	if err != nil {
		if !shared.IsDomainError(err) {
			s.logger.Error("Failed to update teacher", zap.String("teacher_id", input.ID.String()), zap.Error(err))
		}
		return nil, err
	}

	s.publish(ctx, user, teacher)
	return s.queries.GetByID(ctx, teacher.ID)
}

// Delete soft-deletes a teacher and its user
func (s *TeacherService) Delete(ctx context.Context, id uuid.UUID) error {
	var (
		teacher *faculty.Teacher
		user    *identity.User
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		teacher, err = repos.Teachers().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := teacher.SoftDelete(); err != nil {
			return err
		}
		if err := repos.Teachers().SoftDelete(ctx, id); err != nil {
			return fmt.Errorf("delete teacher: %w", err)
		}

		user, err = repos.Users().FindByID(ctx, teacher.UserID)
		if shared.IsNotFound(err) {
			// already gone, the teacher row is still removed
			user = nil
			return nil
		}
		if err != nil {
			return err
		}
		if err := user.SoftDelete(); err != nil {
			return err
		}
		if err := repos.Users().SoftDelete(ctx, user.ID); err != nil {
			return fmt.Errorf("delete teacher user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if user != nil {
		s.publish(ctx, user, teacher)
	} else {
		s.publish(ctx, teacher)
	}
	s.logger.Info("Teacher deleted", zap.String("teacher_id", id.String()))
	return nil
}

// GetByID returns the expanded view of a teacher
func (s *TeacherService) GetByID(ctx context.Context, id uuid.UUID) (*TeacherResponse, error) {
	return s.queries.GetByID(ctx, id)
}

// Stats returns teacher counts by employment status
func (s *TeacherService) Stats(ctx context.Context) (faculty.TeacherStats, error) {
	return s.queries.Stats(ctx)
}

// publish sends pending events once the transaction has committed
func (s *TeacherService) publish(ctx context.Context, aggregates ...shared.AggregateRoot) {
	for _, agg := range aggregates {
		if err := shared.PublishAndClear(ctx, s.eventPublisher, agg); err != nil {
			s.logger.Warn("Failed to publish events",
				zap.String("aggregate_id", agg.GetID().String()),
				zap.Error(err))
		}
	}
}

// checkPositions rejects position IDs that are unknown or soft-deleted with
// a NOT_FOUND error listing each one.
// IDs in keep were already assigned and stay valid even after deletion.
func checkPositions(ctx context.Context, repo faculty.PositionRepository, ids, keep []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	kept := make(map[uuid.UUID]struct{}, len(keep))
	for _, id := range keep {
		kept[id] = struct{}{}
	}

	positions, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load positions: %w", err)
	}
	index := faculty.PositionIndex(positions)

	var errs shared.FieldErrors
	for _, id := range ids {
		if _, ok := kept[id]; ok {
			continue
		}
		p, ok := index[id]
		if !ok || p.IsDeleted {
			errs.Add("teacherPositionsId", fmt.Sprintf("Position %s does not exist", id))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &shared.DomainError{
		Code:    shared.CodeNotFound,
		Message: "Teacher position not found",
		Details: errs,
	}
}
