package seed

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	appfaculty "github.com/school/backend/internal/application/faculty"
	"github.com/school/backend/internal/domain/faculty"
	"github.com/school/backend/internal/domain/identity"
	"github.com/school/backend/internal/infrastructure/persistence"
	"github.com/school/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RecordError describes an export record that was not imported
type RecordError struct {
	File    string `json:"file"`
	Index   int    `json:"index"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e RecordError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s[%d] (%s): %s", e.File, e.Index, e.ID, e.Message)
	}
	return fmt.Sprintf("%s[%d]: %s", e.File, e.Index, e.Message)
}

// Report summarizes an import
type Report struct {
	Users     int
	Positions int
	Teachers  int
	Skipped   []RecordError
}

func (r *Report) skip(file string, index int, id ObjectID, err error) {
	r.Skipped = append(r.Skipped, RecordError{File: file, Index: index, ID: string(id), Message: err.Error()})
}

// ImportOptions controls an import run
type ImportOptions struct {
	// Clear removes every user, position and teacher before loading
	Clear bool
}

// Importer loads a Mongo export into the relational schema.
// The whole run is one transaction: any database error leaves the data untouched.
type Importer struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewImporter creates an Importer
func NewImporter(db *gorm.DB, logger *zap.Logger) *Importer {
	return &Importer{db: db, logger: logger, now: time.Now}
}

// WithClock replaces the clock used for missing timestamps and generated codes
func (i *Importer) WithClock(now func() time.Time) *Importer {
	i.now = now
	return i
}

// Import writes the dataset. Records that fail validation are reported and
// skipped; ObjectIds become UUIDv5 so references stay intact. Supplied
// teacher codes are kept and the per-year code counter is raised past them.
func (i *Importer) Import(ctx context.Context, ds *Dataset, opts ImportOptions) (*Report, error) {
	report := &Report{}
	err := i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if opts.Clear {
			if err := clearTables(tx); err != nil {
				return fmt.Errorf("clear existing data: %w", err)
			}
		}
		return persistence.NewGormTransactionScope(tx).Execute(ctx, func(repos appfaculty.TransactionalRepositories) error {
			r := &run{importer: i, repos: repos, report: report, now: i.now()}
			if err := r.users(ctx, ds.Users); err != nil {
				return err
			}
			if err := r.positions(ctx, ds.Positions); err != nil {
				return err
			}
			return r.teachers(ctx, ds.Teachers)
		})
	})
	if err != nil {
		return nil, err
	}

	i.logger.Info("Import finished",
		zap.Int("users", report.Users),
		zap.Int("positions", report.Positions),
		zap.Int("teachers", report.Teachers),
		zap.Int("skipped", len(report.Skipped)),
	)
	return report, nil
}

// run holds the state of one import
type run struct {
	importer *Importer
	repos    appfaculty.TransactionalRepositories
	report   *Report
	now      time.Time

	userIDs     map[ObjectID]uuid.UUID
	positionIDs map[ObjectID]uuid.UUID
}

func (r *run) users(ctx context.Context, records []UserRecord) error {
	r.userIDs = make(map[ObjectID]uuid.UUID, len(records))
	emails := make(map[string]bool, len(records))
	for idx, rec := range records {
		if rec.ID.IsZero() {
			r.report.skip(UsersFile, idx, "", fmt.Errorf("missing _id"))
			continue
		}
		user, err := r.userFromRecord(rec)
		if err != nil {
			r.report.skip(UsersFile, idx, rec.ID, err)
			continue
		}
		if !user.IsDeleted {
			taken, err := r.repos.Users().ExistsActiveByEmail(ctx, user.Email, nil)
			if err != nil {
				return fmt.Errorf("check email %s: %w", user.Email, err)
			}
			if taken || emails[user.Email] {
				r.report.skip(UsersFile, idx, rec.ID, fmt.Errorf("email %s is already in use", user.Email))
				continue
			}
			emails[user.Email] = true
		}
		if err := r.repos.Users().Create(ctx, user); err != nil {
			return fmt.Errorf("insert user %s: %w", rec.ID, err)
		}
		r.userIDs[rec.ID] = user.ID
		r.report.Users++
	}
	return nil
}

func (r *run) userFromRecord(rec UserRecord) (*identity.User, error) {
	role := identity.RoleTeacher
	if rec.Role != "" {
		parsed, err := identity.ParseRole(rec.Role)
		if err != nil {
			return nil, err
		}
		role = parsed
	}
	user, err := identity.NewUser(identity.Profile{
		Name:        rec.Name,
		Email:       rec.Email,
		PhoneNumber: rec.PhoneNumber,
		Address:     rec.Address,
		Identity:    rec.Identity,
		DateOfBirth: rec.DateOfBirth.Ptr(),
	}, role)
	if err != nil {
		return nil, err
	}
	user.ID = rec.ID.UUID()
	user.AvatarRef = rec.Avatar
	user.IsDeleted = rec.IsDeleted
	user.CreatedAt = rec.CreatedAt.OrNow(r.now)
	user.UpdatedAt = rec.UpdatedAt.OrNow(user.CreatedAt)
	return user, nil
}

func (r *run) positions(ctx context.Context, records []PositionRecord) error {
	r.positionIDs = make(map[ObjectID]uuid.UUID, len(records))
	codes := make(map[string]bool, len(records))
	for idx, rec := range records {
		if rec.ID.IsZero() {
			r.report.skip(PositionsFile, idx, "", fmt.Errorf("missing _id"))
			continue
		}
		position, err := faculty.NewPosition(rec.Code, rec.Name, rec.Description, rec.IsActive)
		if err != nil {
			r.report.skip(PositionsFile, idx, rec.ID, err)
			continue
		}
		position.ID = rec.ID.UUID()
		position.IsDeleted = rec.IsDeleted
		position.CreatedAt = rec.CreatedAt.OrNow(r.now)
		position.UpdatedAt = rec.UpdatedAt.OrNow(position.CreatedAt)

		if !position.IsDeleted {
			taken, err := r.repos.Positions().ExistsActiveByCode(ctx, position.Code, nil)
			if err != nil {
				return fmt.Errorf("check position code %s: %w", position.Code, err)
			}
			if taken || codes[position.Code] {
				r.report.skip(PositionsFile, idx, rec.ID, fmt.Errorf("position code %s already exists", position.Code))
				continue
			}
			codes[position.Code] = true
		}
		if err := r.repos.Positions().Create(ctx, position); err != nil {
			return fmt.Errorf("insert position %s: %w", rec.ID, err)
		}
		r.positionIDs[rec.ID] = position.ID
		r.report.Positions++
	}
	return nil
}

func (r *run) teachers(ctx context.Context, records []TeacherRecord) error {
	// Teachers with a supplied code go first so the counter is raised past
	// every imported code before any code is generated.
	order := make([]int, len(records))
	for idx := range records {
		order[idx] = idx
	}
	sort.SliceStable(order, func(a, b int) bool {
		return records[order[a]].Code != "" && records[order[b]].Code == ""
	})

	owners := make(map[uuid.UUID]bool, len(records))
	codes := make(map[string]bool, len(records))
	generator := faculty.NewTeacherCodeGenerator(r.repos.CodeSequence()).WithClock(func() time.Time { return r.now })

	for _, idx := range order {
		rec := records[idx]
		if rec.ID.IsZero() || rec.UserID.IsZero() {
			r.report.skip(TeachersFile, idx, rec.ID, fmt.Errorf("missing _id or userId"))
			continue
		}
		userID, ok := r.userIDs[rec.UserID]
		if !ok {
			r.report.skip(TeachersFile, idx, rec.ID, fmt.Errorf("user %s was not imported", rec.UserID))
			continue
		}
		if owners[userID] {
			r.report.skip(TeachersFile, idx, rec.ID, fmt.Errorf("user %s already has a teacher", rec.UserID))
			continue
		}

		teacher, err := faculty.NewTeacher(userID, faculty.Employment{
			PositionIDs: r.positionRefs(idx, rec),
			Degrees:     degreesFromRecords(rec.Degrees),
			StartDate:   rec.StartDate.Ptr(),
			EndDate:     rec.EndDate.Ptr(),
			IsActive:    rec.IsActive,
			Code:        rec.Code,
		})
		if err != nil {
			r.report.skip(TeachersFile, idx, rec.ID, err)
			continue
		}
		teacher.ID = rec.ID.UUID()
		teacher.IsDeleted = rec.IsDeleted
		teacher.CreatedAt = rec.CreatedAt.OrNow(r.now)
		teacher.UpdatedAt = rec.UpdatedAt.OrNow(teacher.CreatedAt)

		if teacher.HasCode() {
			if codes[teacher.Code] {
				r.report.skip(TeachersFile, idx, rec.ID, fmt.Errorf("teacher code %s is duplicated", teacher.Code))
				continue
			}
			year, seq, _ := faculty.ParseTeacherCode(teacher.Code)
			if err := r.repos.CodeSequence().EnsureAtLeast(ctx, year, seq); err != nil {
				return fmt.Errorf("raise code sequence for %d: %w", year, err)
			}
		} else {
			code, err := generator.Generate(ctx)
			if err != nil {
				return err
			}
			if err := teacher.AssignCode(code); err != nil {
				return err
			}
		}

		if err := r.repos.Teachers().Create(ctx, teacher); err != nil {
			return fmt.Errorf("insert teacher %s: %w", rec.ID, err)
		}
		owners[userID] = true
		codes[teacher.Code] = true
		r.report.Teachers++
	}
	return nil
}

// positionRefs maps position ObjectIds, dropping references to positions
// that were not imported
func (r *run) positionRefs(idx int, rec TeacherRecord) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(rec.PositionIDs))
	for _, oid := range rec.PositionIDs {
		id, ok := r.positionIDs[oid]
		if !ok {
			r.importer.logger.Warn("Dropping unknown position reference",
				zap.String("teacher", string(rec.ID)),
				zap.Int("index", idx),
				zap.String("position", string(oid)),
			)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func degreesFromRecords(in []DegreeRecord) []faculty.Degree {
	out := make([]faculty.Degree, 0, len(in))
	for _, d := range in {
		graduated := true
		if d.IsGraduated != nil {
			graduated = *d.IsGraduated
		}
		out = append(out, faculty.Degree{
			Type:        d.Type,
			School:      d.School,
			Major:       d.Major,
			Year:        d.Year,
			IsGraduated: graduated,
		})
	}
	return out
}

// clearTables hard deletes every row the import writes, children first
func clearTables(tx *gorm.DB) error {
	all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{
		&models.TeacherPositionAssignmentModel{},
		&models.TeacherModel{},
		&models.PositionModel{},
		&models.UserModel{},
		&models.TeacherCodeSequenceModel{},
	} {
		if err := all.Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
