package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	appfaculty "github.com/school/backend/internal/application/faculty"
	"github.com/school/backend/internal/domain/faculty"
	"github.com/school/backend/internal/domain/identity"
	"github.com/school/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTeacherCodeSequence_ConcurrentCallers(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewSharedTestDB(t)
	seq := persistence.NewGormTeacherCodeSequence(testDB.DB)
	ctx := context.Background()
	const year, callers = 2031, 40

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		values = make(map[int64]bool, callers)
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := seq.Next(ctx, year)
			assert.NoError(t, err)
			mu.Lock()
			values[v] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, values, callers, "every caller must get a distinct value")
	for v := int64(1); v <= callers; v++ {
		assert.True(t, values[v], "missing value %d", v)
	}

	require.NoError(t, seq.EnsureAtLeast(ctx, year, 10))
	current, err := seq.Current(ctx, year)
	require.NoError(t, err)
	assert.EqualValues(t, callers, current)
}

func TestTransactionScope_RollsBackOnError(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	scope := persistence.NewGormTransactionScope(testDB.DB)
	ctx := context.Background()

	user, err := identity.NewUser(identity.Profile{Name: "Đỗ Hải Yến", Email: "yen@school.edu.vn"}, identity.RoleTeacher)
	require.NoError(t, err)

	err = scope.Execute(ctx, func(repos appfaculty.TransactionalRepositories) error {
		if err := repos.Users().Create(ctx, user); err != nil {
			return err
		}
		teacher, err := faculty.NewTeacher(user.ID, faculty.Employment{
			Code:        "GV20310001",
			PositionIDs: []uuid.UUID{uuid.New()},
		})
		if err != nil {
			return err
		}
		// the unknown position violates the assignment foreign key
		return repos.Teachers().Create(ctx, teacher)
	})
	require.Error(t, err)
	assert.EqualValues(t, 0, testDB.Count("users", "email = ?", "yen@school.edu.vn"))
	assert.EqualValues(t, 0, testDB.Count("teachers", ""))
}

func TestUserRepository_ActiveEmailIndex(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewGormUserRepository(testDB.DB)
	ctx := context.Background()

	first := testDB.CreateUser("Hoàng Lan", "lan@school.edu.vn", "TEACHER")
	dup, err := identity.NewUser(identity.Profile{Name: "Hoàng Lan", Email: "lan@school.edu.vn"}, identity.RoleStudent)
	require.NoError(t, err)
	assert.Error(t, repo.Create(ctx, dup), "the partial unique index rejects a second active email")

	require.NoError(t, repo.SoftDelete(ctx, first))
	require.NoError(t, repo.Create(ctx, dup))

	exists, err := repo.ExistsActiveByEmail(ctx, "lan@school.edu.vn", &dup.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTeacherRepository_KeepsPositionOrder(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewSharedTestDB(t)
	testDB.CleanTables()
	ctx := context.Background()

	userID := testDB.CreateUser("Vũ Đức Thắng", "thang@school.edu.vn", "TEACHER")
	head := testDB.CreatePosition("TTCM", "Tổ trưởng chuyên môn")
	homeroom := testDB.CreatePosition("GVCN", "Giáo viên chủ nhiệm")
	subject := testDB.CreatePosition("GVBM", "Giáo viên bộ môn")
	order := []uuid.UUID{subject, head, homeroom}

	testDB.WithTransaction(func(tx *gorm.DB) {
		repo := persistence.NewGormTeacherRepository(tx)
		teacher, err := faculty.NewTeacher(userID, faculty.Employment{Code: "GV20320001", PositionIDs: order})
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, teacher))

		found, err := repo.FindByID(ctx, teacher.ID)
		require.NoError(t, err)
		assert.Equal(t, order, found.PositionIDs)
	})

	// the transaction was rolled back
	assert.EqualValues(t, 0, testDB.Count("teachers", "code = ?", "GV20320001"))
}
