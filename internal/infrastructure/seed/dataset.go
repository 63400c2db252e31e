package seed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// Export file names, as written by mongoexport --jsonArray
const (
	UsersFile     = "users.json"
	PositionsFile = "teacherpositions.json"
	TeachersFile  = "teachers.json"
)

// UserRecord is one document of the users collection
type UserRecord struct {
	ID          ObjectID `json:"_id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	PhoneNumber string   `json:"phoneNumber"`
	Address     string   `json:"address"`
	Identity    string   `json:"identity"`
	DateOfBirth *Date    `json:"dob"`
	Avatar      string   `json:"avatar"`
	Role        string   `json:"role"`
	IsDeleted   bool     `json:"isDeleted"`
	CreatedAt   *Date    `json:"createdAt"`
	UpdatedAt   *Date    `json:"updatedAt"`
}

// PositionRecord is one document of the teacherpositions collection
type PositionRecord struct {
	ID          ObjectID `json:"_id"`
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	Description string   `json:"des"`
	IsActive    *bool    `json:"isActive"`
	IsDeleted   bool     `json:"isDeleted"`
	CreatedAt   *Date    `json:"createdAt"`
	UpdatedAt   *Date    `json:"updatedAt"`
}

// DegreeRecord is an embedded degree of a teacher document
type DegreeRecord struct {
	Type        string `json:"type"`
	School      string `json:"school"`
	Major       string `json:"major"`
	Year        *int   `json:"year"`
	IsGraduated *bool  `json:"isGraduated"`
}

// TeacherRecord is one document of the teachers collection
type TeacherRecord struct {
	ID          ObjectID       `json:"_id"`
	UserID      ObjectID       `json:"userId"`
	PositionIDs []ObjectID     `json:"teacherPositionsId"`
	Code        string         `json:"code"`
	IsActive    *bool          `json:"isActive"`
	IsDeleted   bool           `json:"isDeleted"`
	StartDate   *Date          `json:"startDate"`
	EndDate     *Date          `json:"endDate"`
	Degrees     []DegreeRecord `json:"degrees"`
	CreatedAt   *Date          `json:"createdAt"`
	UpdatedAt   *Date          `json:"updatedAt"`
}

// Dataset is the content of one export directory
type Dataset struct {
	Users     []UserRecord
	Positions []PositionRecord
	Teachers  []TeacherRecord
}

// LoadDir reads the three export files of dir. Every file must exist.
func LoadDir(dir string) (*Dataset, error) {
	ds := &Dataset{}
	var g errgroup.Group
	g.Go(func() error { return readJSON(filepath.Join(dir, UsersFile), &ds.Users) })
	g.Go(func() error { return readJSON(filepath.Join(dir, PositionsFile), &ds.Positions) })
	g.Go(func() error { return readJSON(filepath.Join(dir, TeachersFile), &ds.Teachers) })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ds, nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
