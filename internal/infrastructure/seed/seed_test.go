package seed

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/school/backend/internal/infrastructure/config"
	"github.com/school/backend/internal/infrastructure/persistence"
	"github.com/school/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	usersJSON = `[
  {"_id": {"$oid": "64f000000000000000000001"}, "name": "Nguyễn Văn An", "email": "An.Nguyen@school.edu.vn",
   "phoneNumber": "0912345678", "identity": "001200012345", "dob": {"$date": "1985-06-20T00:00:00.000Z"},
   "role": "TEACHER", "createdAt": {"$date": {"$numberLong": "1700000000000"}}},
  {"_id": {"$oid": "64f000000000000000000002"}, "name": "Trần Thị Bình", "email": "binh@school.edu.vn"},
  {"_id": {"$oid": "64f000000000000000000003"}, "name": "Lê Cường", "email": "cuong@school.edu.vn", "role": "STUDENT", "isDeleted": true},
  {"_id": {"$oid": "64f000000000000000000004"}, "name": "Dup", "email": "binh@school.edu.vn"},
  {"_id": {"$oid": "64f000000000000000000005"}, "name": "X", "email": "not-an-email"},
  {}
]`
	positionsJSON = `[
  {"_id": {"$oid": "650000000000000000000001"}, "code": "gvcn", "name": "Giáo viên chủ nhiệm", "des": "Homeroom"},
  {"_id": {"$oid": "650000000000000000000002"}, "code": "TTCM", "name": "Tổ trưởng chuyên môn", "isActive": false}
]`
	teachersJSON = `[
  {"_id": {"$oid": "660000000000000000000002"}, "userId": {"$oid": "64f000000000000000000002"},
   "teacherPositionsId": [{"$oid": "650000000000000000000002"}]},
  {"_id": {"$oid": "660000000000000000000001"}, "userId": {"$oid": "64f000000000000000000001"},
   "code": "GV20250007",
   "teacherPositionsId": [{"$oid": "650000000000000000000001"}, {"$oid": "6500000000000000000000ff"}],
   "startDate": {"$date": "2020-09-01T00:00:00Z"},
   "degrees": [{"type": "Thạc sĩ", "school": "ĐH Sư phạm", "major": "Toán", "year": 2012}]},
  {"_id": {"$oid": "660000000000000000000003"}, "userId": {"$oid": "64f0000000000000000000ff"}}
]`
)

var testNow = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         "file::memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.DB.AutoMigrate(models.AllModels()...))
	return db.DB
}

func writeExport(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range map[string]string{
		UsersFile:     usersJSON,
		PositionsFile: positionsJSON,
		TeachersFile:  teachersJSON,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func TestObjectID_UnmarshalJSON(t *testing.T) {
	var wrapped, plain ObjectID
	require.NoError(t, json.Unmarshal([]byte(`{"$oid":"64f000000000000000000001"}`), &wrapped))
	require.NoError(t, json.Unmarshal([]byte(`"64f000000000000000000001"`), &plain))

	assert.Equal(t, wrapped, plain)
	assert.Equal(t, wrapped.UUID(), plain.UUID(), "mapping is deterministic")
	assert.Equal(t, 5, int(wrapped.UUID().Version()))
	assert.NotEqual(t, wrapped.UUID(), ObjectID("64f000000000000000000002").UUID())
}

func TestDate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"relaxed", `{"$date":"2024-01-02T03:04:05Z"}`, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"canonical", `{"$date":{"$numberLong":"1704164645000"}}`, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"millis", `{"$date":1704164645000}`, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"date only", `"2024-01-02"`, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, json.Unmarshal([]byte(tt.in), &d))
			assert.True(t, tt.want.Equal(d.Time), "got %s", d.Time)
		})
	}

	var d Date
	assert.Error(t, json.Unmarshal([]byte(`{"$date":"yesterday"}`), &d))

	var missing *Date
	assert.Nil(t, missing.Ptr())
	assert.Equal(t, testNow, missing.OrNow(testNow))
}

func TestLoadDir(t *testing.T) {
	ds, err := LoadDir(writeExport(t))
	require.NoError(t, err)
	assert.Len(t, ds.Users, 6)
	assert.Len(t, ds.Positions, 2)
	assert.Len(t, ds.Teachers, 3)
	assert.Equal(t, "GV20250007", ds.Teachers[1].Code)
	require.NotNil(t, ds.Teachers[1].Degrees[0].Year)
	assert.Equal(t, 2012, *ds.Teachers[1].Degrees[0].Year)

	_, err = LoadDir(t.TempDir())
	assert.ErrorContains(t, err, "read ")
}

func TestImporter_Import(t *testing.T) {
	db := newTestDB(t)
	ds, err := LoadDir(writeExport(t))
	require.NoError(t, err)

	report, err := NewImporter(db, zap.NewNop()).WithClock(func() time.Time { return testNow }).
		Import(context.Background(), ds, ImportOptions{})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Users)
	assert.Equal(t, 2, report.Positions)
	assert.Equal(t, 2, report.Teachers)
	// duplicate email, invalid email, missing _id, unknown user
	assert.Len(t, report.Skipped, 4)

	t.Run("ObjectIds become UUIDv5", func(t *testing.T) {
		var user models.UserModel
		require.NoError(t, db.First(&user, "id = ?", ObjectID("64f000000000000000000001").UUID()).Error)
		assert.Equal(t, "an.nguyen@school.edu.vn", user.Email)
		assert.True(t, time.UnixMilli(1700000000000).Equal(user.CreatedAt))
	})

	t.Run("supplied code kept and generated code follows it", func(t *testing.T) {
		var imported, generated models.TeacherModel
		require.NoError(t, db.First(&imported, "id = ?", ObjectID("660000000000000000000001").UUID()).Error)
		require.NoError(t, db.First(&generated, "id = ?", ObjectID("660000000000000000000002").UUID()).Error)
		assert.Equal(t, "GV20250007", imported.Code)
		assert.Equal(t, "GV20250008", generated.Code)
	})

	t.Run("unknown position references are dropped", func(t *testing.T) {
		var n int64
		require.NoError(t, db.Model(&models.TeacherPositionAssignmentModel{}).
			Where("teacher_id = ?", ObjectID("660000000000000000000001").UUID()).Count(&n).Error)
		assert.Equal(t, int64(1), n)
	})

	t.Run("deleted flag preserved", func(t *testing.T) {
		var user models.UserModel
		require.NoError(t, db.First(&user, "id = ?", ObjectID("64f000000000000000000003").UUID()).Error)
		assert.True(t, user.IsDeleted)
	})

	t.Run("import again without clear reports conflicts", func(t *testing.T) {
		_, err := NewImporter(db, zap.NewNop()).Import(context.Background(), ds, ImportOptions{})
		assert.Error(t, err)
	})

	t.Run("clear makes the import repeatable", func(t *testing.T) {
		again, err := NewImporter(db, zap.NewNop()).WithClock(func() time.Time { return testNow }).
			Import(context.Background(), ds, ImportOptions{Clear: true})
		require.NoError(t, err)
		assert.Equal(t, 2, again.Teachers)

		var seq models.TeacherCodeSequenceModel
		require.NoError(t, db.First(&seq, "year = ?", 2025).Error)
		assert.Equal(t, int64(8), seq.LastValue)
	})
}

func TestResetDeletedAndSummarize(t *testing.T) {
	db := newTestDB(t)
	ds, err := LoadDir(writeExport(t))
	require.NoError(t, err)
	_, err = NewImporter(db, zap.NewNop()).WithClock(func() time.Time { return testNow }).
		Import(context.Background(), ds, ImportOptions{})
	require.NoError(t, err)

	counts, err := ResetDeleted(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, &ActiveCounts{Users: 3, Positions: 2, Teachers: 2}, counts)

	summary, err := Summarize(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.TotalUsers)
	assert.Equal(t, int64(2), summary.TotalPositions)
	assert.Equal(t, int64(2), summary.TotalTeachers)
	assert.Equal(t, int64(2), summary.ActiveTeachers)
	assert.Len(t, summary.Positions, 2)
	assert.Len(t, summary.TeacherUsers, 2)
	require.Len(t, summary.Samples, 2)

	byCode := map[string]TeacherSample{}
	for _, s := range summary.Samples {
		byCode[s.Code] = s
	}
	assert.Equal(t, "Nguyễn Văn An", byCode["GV20250007"].Name)
	assert.Equal(t, []string{"Giáo viên chủ nhiệm"}, byCode["GV20250007"].Positions)
	assert.Equal(t, []string{"Tổ trưởng chuyên môn"}, byCode["GV20250008"].Positions)
}
