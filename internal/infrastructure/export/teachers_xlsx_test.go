package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	appfaculty "github.com/school/backend/internal/application/faculty"
	appidentity "github.com/school/backend/internal/application/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteTeachersXLSX(t *testing.T) {
	year := 2015
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	teachers := []appfaculty.TeacherResponse{
		{
			ID:   uuid.New(),
			Code: "GV20240001",
			User: &appidentity.UserResponse{
				Name:        "Nguyễn Văn An",
				Email:       "an@school.edu.vn",
				PhoneNumber: "0901234567",
				Address:     "Hà Nội",
			},
			Positions: []appfaculty.PositionResponse{{Name: "Homeroom"}, {Name: "Math"}},
			Degrees: []appfaculty.DegreeDTO{
				{Type: "Bachelor", School: "HNUE", Major: "Mathematics", Year: &year, IsGraduated: true},
				{Type: "Master", School: "VNU", Major: "Education"},
			},
			IsActive:  true,
			StartDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			Code:      "GV20240002",
			StartDate: time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   &end,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTeachersXLSX(&buf, teachers))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(TeachersSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, teacherHeaders, rows[0])
	assert.Equal(t, []string{
		"GV20240001", "Nguyễn Văn An", "an@school.edu.vn", "0901234567", "Hà Nội",
		"Homeroom, Math",
		"Bachelor - Mathematics (HNUE, 2015)\nMaster - Education (VNU, in progress)",
		"2024-01-15", "", "Active",
	}, rows[1])

	second := rows[2]
	assert.Equal(t, "GV20240002", second[0])
	assert.Equal(t, "", second[1], "teacher without user keeps empty person cells")
	assert.Equal(t, "2024-06-30", second[8])
	assert.Equal(t, "Inactive", second[9])
}

func TestWriteTeachersXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTeachersXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(TeachersSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
