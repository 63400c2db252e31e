package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	appfaculty "github.com/school/backend/internal/application/faculty"
	appidentity "github.com/school/backend/internal/application/identity"
	"github.com/school/backend/internal/infrastructure/config"
	"github.com/school/backend/internal/infrastructure/export"
	"github.com/school/backend/internal/infrastructure/persistence"
	"github.com/school/backend/internal/infrastructure/persistence/models"
	"github.com/school/backend/internal/infrastructure/storage"
	"github.com/school/backend/internal/interfaces/http/dto"
	"github.com/school/backend/internal/interfaces/http/middleware"
	"github.com/school/backend/internal/interfaces/http/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// testAPI is the full REST surface over an in-memory sqlite database
type testAPI struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	middleware.SetupValidator()

	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         "file::memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.DB.AutoMigrate(models.AllModels()...))

	log := zap.NewNop()
	userRepo := persistence.NewGormUserRepository(db.DB)
	positionRepo := persistence.NewGormPositionRepository(db.DB)
	teacherRepo := persistence.NewGormTeacherRepository(db.DB)

	userService := appidentity.NewUserService(userRepo, log)
	userService.SetObjectStorage(storage.NewStubObjectStorage(), appidentity.DefaultAvatarConfig())
	positionService := appfaculty.NewPositionService(positionRepo, log)
	queries := appfaculty.NewTeacherQueryService(teacherRepo, userRepo, positionRepo, log)
	teacherService := appfaculty.NewTeacherService(persistence.NewGormTransactionScope(db.DB), queries, log)
	teacherService.SetClock(func() time.Time { return time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC) })

	engine := gin.New()
	engine.Use(middleware.RequestID())
	r := router.NewRouter(engine)
	r.Register(NewTeacherHandler(teacherService, queries).Routes())
	r.Register(NewPositionHandler(positionService).Routes())
	r.Register(NewUserHandler(userService).Routes())
	r.Register(NewSystemHandler("School Backend API", "test").Routes())
	r.Setup()

	return &testAPI{t: t, engine: engine}
}

func (a *testAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(a.t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// data decodes the envelope and its data field into out
func (a *testAPI) data(w *httptest.ResponseRecorder, out any) dto.Response {
	a.t.Helper()
	var env struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if out != nil {
		require.NoError(a.t, json.Unmarshal(env.Data, out))
	}
	return env.Response
}

func (a *testAPI) createPosition(code, name string) appfaculty.PositionResponse {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/positions", gin.H{"code": code, "name": name})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var p appfaculty.PositionResponse
	a.data(w, &p)
	return p
}

func (a *testAPI) createTeacher(body gin.H) appfaculty.TeacherResponse {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/teachers", body)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var tr appfaculty.TeacherResponse
	a.data(w, &tr)
	return tr
}

func fieldsOf(resp dto.Response) []string {
	fields := make([]string, len(resp.Errors))
	for i, e := range resp.Errors {
		fields[i] = e.Field
	}
	return fields
}

func TestPositionAPI(t *testing.T) {
	api := newTestAPI(t)

	math := api.createPosition("hod_math", "Head of Mathematics")
	assert.Equal(t, "HOD_MATH", math.Code)
	assert.True(t, math.IsActive)

	t.Run("duplicate code is a 400", func(t *testing.T) {
		w := api.do(http.MethodPost, "/api/positions", gin.H{"code": "HOD_MATH", "name": "Another"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeDuplicateCode, api.data(w, nil).Code)
	})

	t.Run("invalid fields are itemized", func(t *testing.T) {
		w := api.do(http.MethodPost, "/api/positions", gin.H{"code": "a-b", "name": "X"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := api.data(w, nil)
		assert.Equal(t, dto.ErrCodeValidation, resp.Code)
		assert.ElementsMatch(t, []string{"code", "name"}, fieldsOf(resp))
	})

	t.Run("only active filter", func(t *testing.T) {
		off := false
		w := api.do(http.MethodPost, "/api/positions", gin.H{"code": "RETIRED", "name": "Retired role", "isActive": off})
		require.Equal(t, http.StatusCreated, w.Code)

		var all, active []appfaculty.PositionResponse
		api.data(api.do(http.MethodGet, "/api/positions", nil), &all)
		api.data(api.do(http.MethodGet, "/api/positions?onlyActive=true", nil), &active)
		assert.Len(t, all, 2)
		require.Len(t, active, 1)
		assert.Equal(t, "HOD_MATH", active[0].Code)
	})

	t.Run("update keeps its own code", func(t *testing.T) {
		w := api.do(http.MethodPut, "/api/positions/"+math.ID.String(), gin.H{
			"code": "HOD_MATH", "name": "Head of Maths", "des": "Department lead",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var p appfaculty.PositionResponse
		api.data(w, &p)
		assert.Equal(t, "Head of Maths", p.Name)
		assert.Equal(t, "Department lead", p.Description)
	})

	t.Run("delete then 404", func(t *testing.T) {
		p := api.createPosition("TEMP", "Temporary")
		assert.Equal(t, http.StatusOK, api.do(http.MethodDelete, "/api/positions/"+p.ID.String(), nil).Code)
		assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/positions/"+p.ID.String(), nil).Code)
		assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, "/api/positions/"+p.ID.String(), nil).Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := api.do(http.MethodGet, "/api/positions/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []string{"id"}, fieldsOf(api.data(w, nil)))
	})
}

func TestTeacherAPI_Create(t *testing.T) {
	api := newTestAPI(t)
	hod := api.createPosition("HOD", "Head of Department")
	homeroom := api.createPosition("HOMEROOM", "Homeroom Teacher")

	teacher := api.createTeacher(gin.H{
		"name":               "Nguyen Van An",
		"email":              "An.Nguyen@School.edu.vn",
		"phoneNumber":        "0901 234 567",
		"identity":           "001090012345",
		"dob":                "1990-05-20",
		"teacherPositionsId": []string{homeroom.ID.String(), hod.ID.String()},
		"degrees": []gin.H{
			{"type": "Master", "school": "HNUE", "major": "Mathematics", "year": 2015, "isGraduated": true},
		},
		"startDate": "2024-09-01T00:00:00Z",
	})

	assert.Equal(t, "GV20250001", teacher.Code)
	require.NotNil(t, teacher.User)
	assert.Equal(t, "an.nguyen@school.edu.vn", teacher.User.Email)
	assert.Equal(t, "TEACHER", teacher.User.Role)
	require.Len(t, teacher.Positions, 2)
	assert.Equal(t, "HOMEROOM", teacher.Positions[0].Code)
	assert.True(t, teacher.IsActive)
	require.Len(t, teacher.Degrees, 1)
	assert.Equal(t, 2015, *teacher.Degrees[0].Year)

	t.Run("codes are sequential", func(t *testing.T) {
		next := api.createTeacher(gin.H{"name": "Le Thi Hoa", "email": "hoa@school.edu.vn"})
		assert.Equal(t, "GV20250002", next.Code)
		assert.Empty(t, next.Positions)
	})

	t.Run("degree without isGraduated counts as graduated", func(t *testing.T) {
		created := api.createTeacher(gin.H{
			"name": "Do Quang", "email": "quang@school.edu.vn",
			"degrees": []gin.H{
				{"type": "Bachelor", "school": "VNU", "major": "Chemistry"},
				{"type": "Master", "school": "VNU", "major": "Chemistry", "isGraduated": false},
			},
		})

		var fetched appfaculty.TeacherResponse
		api.data(api.do(http.MethodGet, "/api/teachers/"+created.ID.String(), nil), &fetched)
		require.Len(t, fetched.Degrees, 2)
		assert.True(t, fetched.Degrees[0].IsGraduated)
		assert.False(t, fetched.Degrees[1].IsGraduated)
	})

	t.Run("duplicate email is a 400", func(t *testing.T) {
		w := api.do(http.MethodPost, "/api/teachers", gin.H{"name": "Someone", "email": "an.nguyen@SCHOOL.edu.vn"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeDuplicateEmail, api.data(w, nil).Code)
	})

	t.Run("unknown position is a 404", func(t *testing.T) {
		w := api.do(http.MethodPost, "/api/teachers", gin.H{
			"name": "Pham Minh", "email": "minh@school.edu.vn",
			"teacherPositionsId": []string{"6f1c2a9e-2b7d-4d2f-9c55-0b1c8a7e2f10"},
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := api.data(w, nil)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Code)
		assert.Equal(t, []string{"teacherPositionsId"}, fieldsOf(resp))
	})

	t.Run("request validation lists every field", func(t *testing.T) {
		w := api.do(http.MethodPost, "/api/teachers", gin.H{
			"name":               "A",
			"email":              "not-an-email",
			"phoneNumber":        "call me",
			"identity":           "12ab",
			"dob":                "20/05/1990",
			"teacherPositionsId": []string{"nope"},
			"degrees":            []gin.H{{"type": "", "school": "X", "major": "Y", "year": time.Now().Year() + 1}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.ElementsMatch(t, []string{
			"name", "email", "phoneNumber", "identity", "dob",
			"teacherPositionsId[0]", "degrees[0].type", "degrees[0].year",
		}, fieldsOf(api.data(w, nil)))
	})

	t.Run("end before start is rejected by the domain", func(t *testing.T) {
		w := api.do(http.MethodPost, "/api/teachers", gin.H{
			"name": "Vo Thanh", "email": "thanh@school.edu.vn",
			"startDate": "2024-09-01", "endDate": "2024-01-01",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, fieldsOf(api.data(w, nil)), "endDate")
	})

	t.Run("malformed json", func(t *testing.T) {
		w := api.do(http.MethodPost, "/api/teachers", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []string{"body"}, fieldsOf(api.data(w, nil)))
	})
}

func TestTeacherAPI_UpdateAndDelete(t *testing.T) {
	api := newTestAPI(t)
	hod := api.createPosition("HOD", "Head of Department")
	teacher := api.createTeacher(gin.H{
		"name": "Nguyen Van An", "email": "an@school.edu.vn",
		"teacherPositionsId": []string{hod.ID.String()},
	})
	other := api.createTeacher(gin.H{"name": "Tran Binh", "email": "binh@school.edu.vn"})
	path := "/api/teachers/" + teacher.ID.String()

	t.Run("partial person update and list replacement", func(t *testing.T) {
		w := api.do(http.MethodPut, path, gin.H{
			"phoneNumber": "0988000111",
			"isActive":    false,
			"degrees":     []gin.H{{"type": "Bachelor", "school": "VNU", "major": "Physics"}},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var updated appfaculty.TeacherResponse
		api.data(w, &updated)
		assert.Equal(t, "Nguyen Van An", updated.User.Name)
		assert.Equal(t, "0988000111", updated.User.PhoneNumber)
		assert.False(t, updated.IsActive)
		assert.Empty(t, updated.PositionIDs)
		assert.Len(t, updated.Degrees, 1)
		assert.Equal(t, teacher.Code, updated.Code)
	})

	t.Run("email collision with another user", func(t *testing.T) {
		w := api.do(http.MethodPut, path, gin.H{"email": other.User.Email})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeDuplicateEmail, api.data(w, nil).Code)
	})

	t.Run("stats", func(t *testing.T) {
		var stats TeacherStatsResponse
		api.data(api.do(http.MethodGet, "/api/teachers/stats", nil), &stats)
		assert.Equal(t, TeacherStatsResponse{Total: 2, Active: 1, Inactive: 1}, stats)
	})

	t.Run("delete removes teacher and user", func(t *testing.T) {
		w := api.do(http.MethodDelete, path, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Teacher deleted successfully", api.data(w, nil).Message)

		assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, path, nil).Code)
		assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/users/"+teacher.UserID.String(), nil).Code)
		assert.Equal(t, http.StatusNotFound, api.do(http.MethodPut, path, gin.H{"name": "Ghost"}).Code)
	})

	t.Run("deleted email can be reused", func(t *testing.T) {
		again := api.createTeacher(gin.H{"name": "Nguyen Van An", "email": "an@school.edu.vn"})
		assert.Equal(t, "GV20250003", again.Code)
	})
}

func TestTeacherAPI_ListAndExport(t *testing.T) {
	api := newTestAPI(t)
	for i := 1; i <= 5; i++ {
		api.createTeacher(gin.H{
			"name":  fmt.Sprintf("Teacher %d", i),
			"email": fmt.Sprintf("t%d@school.edu.vn", i),
		})
	}
	api.createTeacher(gin.H{"name": "Đặng Thị Lan", "email": "lan@school.edu.vn"})

	t.Run("pages newest first", func(t *testing.T) {
		var page appfaculty.TeacherListResult
		api.data(api.do(http.MethodGet, "/api/teachers?page=1&limit=4", nil), &page)
		require.Len(t, page.Teachers, 4)
		assert.Equal(t, "Đặng Thị Lan", page.Teachers[0].User.Name)
		assert.Equal(t, int64(6), page.Pagination.TotalItems)
		assert.Equal(t, 2, page.Pagination.TotalPages)
		assert.Equal(t, 4, page.Pagination.ItemsPerPage)
	})

	t.Run("search filters the page but not the total", func(t *testing.T) {
		var page appfaculty.TeacherListResult
		api.data(api.do(http.MethodGet, "/api/teachers?limit=2&search=%C4%91%E1%BA%B6NG", nil), &page)
		require.Len(t, page.Teachers, 1)
		assert.Equal(t, int64(6), page.Pagination.TotalItems)

		api.data(api.do(http.MethodGet, "/api/teachers?page=2&limit=2&search=lan", nil), &page)
		assert.Empty(t, page.Teachers)
		assert.Equal(t, int64(6), page.Pagination.TotalItems)
	})

	t.Run("limit is bounded", func(t *testing.T) {
		w := api.do(http.MethodGet, "/api/teachers?limit=101", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []string{"limit"}, fieldsOf(api.data(w, nil)))
		assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/teachers?page=0", nil).Code)
	})

	t.Run("huge page is rejected instead of wrapping to page one", func(t *testing.T) {
		w := api.do(http.MethodGet, "/api/teachers?page=9223372036854775807&limit=100", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []string{"page"}, fieldsOf(api.data(w, nil)))

		var page appfaculty.TeacherListResult
		w = api.do(http.MethodGet, "/api/teachers?page=1000000&limit=100", nil)
		require.Equal(t, http.StatusOK, w.Code)
		api.data(w, &page)
		assert.Empty(t, page.Teachers)
		assert.Equal(t, 1000000, page.Pagination.CurrentPage)
	})

	t.Run("export streams a workbook", func(t *testing.T) {
		w := api.do(http.MethodGet, "/api/teachers/export?search=school.edu.vn", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, export.ContentTypeXLSX, w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=\"teachers-")

		f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows(export.TeachersSheet)
		require.NoError(t, err)
		assert.Len(t, rows, 7)
	})
}

func TestUserAPI(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/users", gin.H{"name": "Hoang Mai", "email": "mai@school.edu.vn", "dob": "2008-03-14"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var student appidentity.UserResponse
	api.data(w, &student)
	assert.Equal(t, "STUDENT", student.Role)
	require.NotNil(t, student.DateOfBirth)
	assert.Equal(t, 2008, student.DateOfBirth.Year())

	w = api.do(http.MethodPost, "/api/users", gin.H{"name": "Admin", "email": "admin@school.edu.vn", "role": "admin"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	t.Run("unknown role", func(t *testing.T) {
		w := api.do(http.MethodPost, "/api/users", gin.H{"name": "Who", "email": "who@school.edu.vn", "role": "JANITOR"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("list by role", func(t *testing.T) {
		var result appidentity.UserListResult
		api.data(api.do(http.MethodGet, "/api/users?role=ADMIN", nil), &result)
		require.Len(t, result.Users, 1)
		assert.Equal(t, "admin@school.edu.vn", result.Users[0].Email)
		assert.Equal(t, int64(1), result.Pagination.TotalItems)
	})

	t.Run("update and delete", func(t *testing.T) {
		path := "/api/users/" + student.ID.String()
		w := api.do(http.MethodPut, path, gin.H{"address": "1 Le Loi"})
		require.Equal(t, http.StatusOK, w.Code)
		var updated appidentity.UserResponse
		api.data(w, &updated)
		assert.Equal(t, "1 Le Loi", updated.Address)
		assert.Equal(t, "Hoang Mai", updated.Name)

		assert.Equal(t, http.StatusOK, api.do(http.MethodDelete, path, nil).Code)
		assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, path, nil).Code)
	})
}

func TestUserAPI_Avatar(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(http.MethodPost, "/api/users", gin.H{"name": "Hoang Mai", "email": "mai@school.edu.vn"})
	require.Equal(t, http.StatusCreated, w.Code)
	var user appidentity.UserResponse
	api.data(w, &user)
	base := "/api/users/" + user.ID.String() + "/avatar"

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, base, nil).Code)

	w = api.do(http.MethodPost, base+"/upload-url", gin.H{
		"fileName": "me.png", "contentType": "image/png", "fileSize": 2048,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var upload appidentity.AvatarUploadResult
	api.data(w, &upload)
	assert.NotEmpty(t, upload.UploadURL)

	w = api.do(http.MethodPut, base, gin.H{"storageKey": upload.StorageKey})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated appidentity.UserResponse
	api.data(w, &updated)
	assert.Equal(t, upload.StorageKey, updated.Avatar)

	w = api.do(http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var download appidentity.AvatarDownloadResult
	api.data(w, &download)
	assert.NotEmpty(t, download.URL)

	t.Run("rejects documents", func(t *testing.T) {
		w := api.do(http.MethodPost, base+"/upload-url", gin.H{
			"fileName": "cv.pdf", "contentType": "application/pdf", "fileSize": 2048,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []string{"contentType"}, fieldsOf(api.data(w, nil)))
	})
}

func TestSystemRoutes(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(http.MethodGet, "/api/system/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}
