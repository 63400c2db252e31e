package faculty

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/school/backend/internal/domain/faculty"
	"github.com/school/backend/internal/domain/identity"
	"github.com/school/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockPositionRepository is a mock implementation of faculty.PositionRepository
type MockPositionRepository struct {
	mock.Mock
}

func (m *MockPositionRepository) Create(ctx context.Context, position *faculty.Position) error {
	return m.Called(ctx, position).Error(0)
}

func (m *MockPositionRepository) Update(ctx context.Context, position *faculty.Position) error {
	return m.Called(ctx, position).Error(0)
}

func (m *MockPositionRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPositionRepository) FindByID(ctx context.Context, id uuid.UUID) (*faculty.Position, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*faculty.Position), args.Error(1)
}

func (m *MockPositionRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*faculty.Position, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*faculty.Position), args.Error(1)
}

func (m *MockPositionRepository) FindAll(ctx context.Context, filter faculty.PositionFilter) ([]*faculty.Position, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*faculty.Position), args.Error(1)
}

func (m *MockPositionRepository) ExistsActiveByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, code, excludeID)
	return args.Bool(0), args.Error(1)
}

// fakeStore keeps users, positions, teachers and code counters in memory.
// The repository views below share it.
type fakeStore struct {
	mu        sync.Mutex
	users     map[uuid.UUID]identity.User
	positions map[uuid.UUID]faculty.Position
	teachers  map[uuid.UUID]faculty.Teacher
	sequences map[int]int64

	teacherCreateErr error
	userFindByIDsN   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[uuid.UUID]identity.User),
		positions: make(map[uuid.UUID]faculty.Position),
		teachers:  make(map[uuid.UUID]faculty.Teacher),
		sequences: make(map[int]int64),
	}
}

func (s *fakeStore) snapshot() *fakeStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := newFakeStore()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.positions {
		c.positions[k] = v
	}
	for k, v := range s.teachers {
		c.teachers[k] = v
	}
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	return c
}

func (s *fakeStore) restore(from *fakeStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = from.users
	s.positions = from.positions
	s.teachers = from.teachers
	s.sequences = from.sequences
}

func (s *fakeStore) Users() identity.UserRepository            { return fakeUsers{s} }
func (s *fakeStore) Positions() faculty.PositionRepository     { return fakePositions{s} }
func (s *fakeStore) Teachers() faculty.TeacherRepository       { return fakeTeachers{s} }
func (s *fakeStore) CodeSequence() faculty.TeacherCodeSequence { return fakeSequence{s} }

// fakeTxScope restores the store when fn fails
type fakeTxScope struct {
	store *fakeStore
}

func (t fakeTxScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	before := t.store.snapshot()
	if err := fn(t.store); err != nil {
		t.store.restore(before)
		return err
	}
	return nil
}

type fakeUsers struct{ s *fakeStore }

func (r fakeUsers) Create(_ context.Context, u *identity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[u.ID] = *u
	return nil
}

func (r fakeUsers) Update(_ context.Context, u *identity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[u.ID]
	if !ok || cur.IsDeleted {
		return shared.ErrNotFound
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r fakeUsers) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[id]
	if !ok || cur.IsDeleted {
		return shared.ErrNotFound
	}
	cur.IsDeleted = true
	r.s.users[id] = cur
	return nil
}

func (r fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || u.IsDeleted {
		return nil, shared.ErrNotFound
	}
	return &u, nil
}

func (r fakeUsers) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*identity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.userFindByIDsN++
	var out []*identity.User
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			u := u
			out = append(out, &u)
		}
	}
	return out, nil
}

func (r fakeUsers) FindActiveByEmail(_ context.Context, email string) (*identity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = identity.NormalizeEmail(email)
	for _, u := range r.s.users {
		if !u.IsDeleted && u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r fakeUsers) ExistsActiveByEmail(_ context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = identity.NormalizeEmail(email)
	for _, u := range r.s.users {
		if u.IsDeleted || u.Email != email {
			continue
		}
		if excludeID != nil && u.ID == *excludeID {
			continue
		}
		return true, nil
	}
	return false, nil
}

func (r fakeUsers) FindAll(context.Context, identity.UserFilter) ([]*identity.User, int64, error) {
	panic("not used")
}

func (r fakeUsers) Count(context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, u := range r.s.users {
		if !u.IsDeleted {
			n++
		}
	}
	return n, nil
}

type fakePositions struct{ s *fakeStore }

func (r fakePositions) Create(_ context.Context, p *faculty.Position) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.positions[p.ID] = *p
	return nil
}

func (r fakePositions) Update(_ context.Context, p *faculty.Position) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.positions[p.ID] = *p
	return nil
}

func (r fakePositions) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := r.s.positions[id]
	p.IsDeleted = true
	r.s.positions[id] = p
	return nil
}

func (r fakePositions) FindByID(_ context.Context, id uuid.UUID) (*faculty.Position, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.positions[id]
	if !ok || p.IsDeleted {
		return nil, shared.ErrNotFound
	}
	return &p, nil
}

func (r fakePositions) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*faculty.Position, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*faculty.Position
	for _, id := range ids {
		if p, ok := r.s.positions[id]; ok {
			p := p
			out = append(out, &p)
		}
	}
	return out, nil
}

func (r fakePositions) FindAll(context.Context, faculty.PositionFilter) ([]*faculty.Position, error) {
	panic("not used")
}

func (r fakePositions) ExistsActiveByCode(context.Context, string, *uuid.UUID) (bool, error) {
	panic("not used")
}

type fakeTeachers struct{ s *fakeStore }

func (r fakeTeachers) Create(_ context.Context, t *faculty.Teacher) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.teacherCreateErr != nil {
		return r.s.teacherCreateErr
	}
	r.s.teachers[t.ID] = *t
	return nil
}

func (r fakeTeachers) Update(_ context.Context, t *faculty.Teacher) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.teachers[t.ID] = *t
	return nil
}

func (r fakeTeachers) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teachers[id]
	if !ok || t.IsDeleted {
		return shared.ErrNotFound
	}
	t.IsDeleted = true
	r.s.teachers[id] = t
	return nil
}

func (r fakeTeachers) FindByID(_ context.Context, id uuid.UUID) (*faculty.Teacher, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teachers[id]
	if !ok || t.IsDeleted {
		return nil, shared.ErrNotFound
	}
	return &t, nil
}

func (r fakeTeachers) active() []*faculty.Teacher {
	var out []*faculty.Teacher
	for _, t := range r.s.teachers {
		if !t.IsDeleted {
			t := t
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() > out[j].ID.String()
	})
	return out
}

func (r fakeTeachers) FindPage(_ context.Context, offset, limit int) ([]*faculty.Teacher, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.active()
	if offset >= len(all) {
		return []*faculty.Teacher{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r fakeTeachers) Count(context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.active())), nil
}

func (r fakeTeachers) Stats(context.Context) (faculty.TeacherStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var active, inactive int64
	for _, t := range r.active() {
		if t.IsActive {
			active++
		} else {
			inactive++
		}
	}
	return faculty.NewTeacherStats(active, inactive), nil
}

type fakeSequence struct{ s *fakeStore }

func (r fakeSequence) Next(_ context.Context, year int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sequences[year]++
	return r.s.sequences[year], nil
}

func (r fakeSequence) EnsureAtLeast(_ context.Context, year int, value int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.sequences[year] < value {
		r.s.sequences[year] = value
	}
	return nil
}
