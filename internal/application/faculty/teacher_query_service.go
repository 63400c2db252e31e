package faculty

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	appidentity "github.com/school/backend/internal/application/identity"
	"github.com/school/backend/internal/domain/faculty"
	"github.com/school/backend/internal/domain/identity"
	"github.com/school/backend/internal/domain/shared"
	"github.com/school/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
)

const statsFlightKey = "teacher-stats"

// TeacherQueryService reads teachers and expands them with their user and
// positions
type TeacherQueryService struct {
	teacherRepo  faculty.TeacherRepository
	userRepo     identity.UserRepository
	positionRepo faculty.PositionRepository
	statsCache   TeacherStatsCache
	statsFlight  singleflight.Group
	logger       *zap.Logger

	// statsGen counts invalidations. A load only fills the cache when no
	// invalidation happened while it was reading.
	statsMu  sync.Mutex
	statsGen uint64
}

// NewTeacherQueryService creates a new teacher query service
func NewTeacherQueryService(
	teacherRepo faculty.TeacherRepository,
	userRepo identity.UserRepository,
	positionRepo faculty.PositionRepository,
	logger *zap.Logger,
) *TeacherQueryService {
	return &TeacherQueryService{
		teacherRepo:  teacherRepo,
		userRepo:     userRepo,
		positionRepo: positionRepo,
		statsCache:   noopStatsCache{},
		logger:       logger,
	}
}

// SetStatsCache enables caching of Stats
func (s *TeacherQueryService) SetStatsCache(cache TeacherStatsCache) {
	if cache == nil {
		cache = noopStatsCache{}
	}
	s.statsCache = cache
}

// GetByID returns the expanded view of a non-deleted teacher
func (s *TeacherQueryService) GetByID(ctx context.Context, id uuid.UUID) (*TeacherResponse, error) {
	teacher, err := s.teacherRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	expanded, err := s.expand(ctx, []*faculty.Teacher{teacher})
	if err != nil {
		return nil, err
	}
	if len(expanded) == 0 {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Teacher user not found")
	}
	return &expanded[0], nil
}

// List returns one page of teachers.
//
// Paging runs over all non-deleted teachers and the search is applied to
// that page afterwards, so a page may hold fewer rows than the limit.
// TotalItems counts every non-deleted teacher regardless of the search.
func (s *TeacherQueryService) List(ctx context.Context, input ListTeachersInput) (_ *TeacherListResult, err error) {
	page := shared.Filter{Page: input.Page, PageSize: input.Limit}.Normalize()
	ctx, span := telemetry.StartServiceSpan(ctx, "teacher", "list",
		telemetry.SpanAttrPage, page.Page,
		telemetry.SpanAttrLimit, page.PageSize,
		telemetry.SpanAttrSearch, input.Search != "",
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	var (
		teachers []*faculty.Teacher
		total    int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		teachers, err = s.teacherRepo.FindPage(gctx, page.Offset(), page.PageSize)
		return err
	})
	g.Go(func() (err error) {
		total, err = s.teacherRepo.Count(gctx)
		return err
	})
	if err = g.Wait(); err != nil {
		s.logger.Error("Failed to list teachers", zap.Error(err))
		return nil, err
	}

	expanded, err := s.expand(ctx, teachers)
	if err != nil {
		return nil, err
	}
	filtered := filterTeachers(expanded, input.Search)
	telemetry.SetAttributes(span, telemetry.SpanAttrResultCount, len(filtered))

	return &TeacherListResult{
		Teachers:   filtered,
		Pagination: shared.NewPagination(total, page.Page, page.PageSize),
	}, nil
}

// ExportRows returns every non-deleted teacher matching search, newest first
func (s *TeacherQueryService) ExportRows(ctx context.Context, search string) ([]TeacherResponse, error) {
	teachers, err := s.teacherRepo.FindPage(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	expanded, err := s.expand(ctx, teachers)
	if err != nil {
		return nil, err
	}
	return filterTeachers(expanded, search), nil
}

// Stats returns active and inactive teacher counts. Concurrent misses share
// one database read.
func (s *TeacherQueryService) Stats(ctx context.Context) (faculty.TeacherStats, error) {
	if stats, ok, err := s.statsCache.Get(ctx); err != nil {
		s.logger.Warn("Teacher stats cache read failed", zap.Error(err))
	} else if ok {
		return stats, nil
	}

	v, err, _ := s.statsFlight.Do(statsFlightKey, func() (interface{}, error) {
		gen := s.statsGeneration()
		stats, err := s.teacherRepo.Stats(ctx)
		if err != nil {
			return nil, err
		}
		s.storeStats(ctx, gen, stats)
		return stats, nil
	})
	if err != nil {
		s.logger.Error("Failed to compute teacher stats", zap.Error(err))
		return faculty.TeacherStats{}, err
	}
	return v.(faculty.TeacherStats), nil
}

// InvalidateStats drops the cached stats. Loads already in flight will not
// write their result back.
func (s *TeacherQueryService) InvalidateStats(ctx context.Context) error {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.statsGen++
	s.statsFlight.Forget(statsFlightKey)
	return s.statsCache.Invalidate(ctx)
}

func (s *TeacherQueryService) statsGeneration() uint64 {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.statsGen
}

// storeStats caches stats read at generation gen unless it is stale
func (s *TeacherQueryService) storeStats(ctx context.Context, gen uint64, stats faculty.TeacherStats) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	if gen != s.statsGen {
		s.logger.Debug("Teacher stats changed during load, not caching")
		return
	}
	if err := s.statsCache.Set(ctx, stats); err != nil {
		s.logger.Warn("Teacher stats cache write failed", zap.Error(err))
	}
}

// expand joins users and positions onto teachers, keeping their order.
// Teachers whose user row is missing are dropped. Missing positions are
// skipped, deleted ones are still included.
func (s *TeacherQueryService) expand(ctx context.Context, teachers []*faculty.Teacher) ([]TeacherResponse, error) {
	if len(teachers) == 0 {
		return []TeacherResponse{}, nil
	}

	userIDs := make([]uuid.UUID, 0, len(teachers))
	var positionIDs []uuid.UUID
	for _, t := range teachers {
		userIDs = append(userIDs, t.UserID)
		positionIDs = append(positionIDs, t.PositionIDs...)
	}

	var (
		users     []*identity.User
		positions []*faculty.Position
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.userRepo.FindByIDs(gctx, userIDs)
		if err != nil {
			return fmt.Errorf("load teacher users: %w", err)
		}
		return nil
	})
	if len(positionIDs) > 0 {
		g.Go(func() error {
			var err error
			positions, err = s.positionRepo.FindByIDs(gctx, positionIDs)
			if err != nil {
				return fmt.Errorf("load teacher positions: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to expand teachers", zap.Error(err))
		return nil, err
	}

	userIndex := make(map[uuid.UUID]*identity.User, len(users))
	for _, u := range users {
		userIndex[u.ID] = u
	}
	positionIndex := faculty.PositionIndex(positions)

	out := make([]TeacherResponse, 0, len(teachers))
	for _, t := range teachers {
		user, ok := userIndex[t.UserID]
		if !ok {
			s.logger.Warn("Teacher without user row", zap.String("teacher_id", t.ID.String()))
			continue
		}
		out = append(out, toTeacherResponse(t, user, positionIndex))
	}
	return out, nil
}

func toTeacherResponse(t *faculty.Teacher, user *identity.User, positions map[uuid.UUID]*faculty.Position) TeacherResponse {
	userResp := appidentity.ToUserResponse(user)

	inlined := make([]PositionResponse, 0, len(t.PositionIDs))
	for _, id := range t.PositionIDs {
		if p, ok := positions[id]; ok {
			inlined = append(inlined, ToPositionResponse(p))
		}
	}
	ids := make([]uuid.UUID, len(t.PositionIDs))
	copy(ids, t.PositionIDs)

	return TeacherResponse{
		ID:          t.ID,
		Code:        t.Code,
		UserID:      t.UserID,
		User:        &userResp,
		PositionIDs: ids,
		Positions:   inlined,
		Degrees:     toDegreeDTOs(t.Degrees),
		IsActive:    t.IsActive,
		IsDeleted:   t.IsDeleted,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// filterTeachers keeps teachers whose user name, email or phone number
// contains search, compared with Unicode case folding
func filterTeachers(teachers []TeacherResponse, search string) []TeacherResponse {
	search = strings.TrimSpace(search)
	if search == "" {
		return teachers
	}
	fold := cases.Fold()
	needle := fold.String(search)

	out := make([]TeacherResponse, 0, len(teachers))
	for _, t := range teachers {
		if t.User == nil {
			continue
		}
		for _, field := range []string{t.User.Name, t.User.Email, t.User.PhoneNumber} {
			if strings.Contains(fold.String(field), needle) {
				out = append(out, t)
				break
			}
		}
	}
	return out
}
