// Package export renders teacher listings as spreadsheet downloads.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	appfaculty "github.com/school/backend/internal/application/faculty"
	"github.com/xuri/excelize/v2"
)

const (
	// TeachersSheet is the worksheet holding the teacher rows
	TeachersSheet = "Teachers"
	// ContentTypeXLSX is the media type of the workbook
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	dateLayout = "2006-01-02"
)

var teacherHeaders = []string{
	"Code", "Name", "Email", "Phone", "Address",
	"Positions", "Degrees", "Start Date", "End Date", "Status",
}

var teacherColWidths = []float64{14, 28, 32, 16, 36, 30, 48, 12, 12, 10}

// WriteTeachersXLSX streams a workbook with one row per teacher to w.
func WriteTeachersXLSX(w io.Writer, teachers []appfaculty.TeacherResponse) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TeachersSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	sw, err := f.NewStreamWriter(TeachersSheet)
	if err != nil {
		return fmt.Errorf("create stream writer: %w", err)
	}
	for i, width := range teacherColWidths {
		if err := sw.SetColWidth(i+1, i+1, width); err != nil {
			return err
		}
	}

	header := make([]any, len(teacherHeaders))
	for i, h := range teacherHeaders {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{Height: 20}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := sw.SetPanes(&excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}

	for i, t := range teachers {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, teacherRow(t)); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	_, err = f.WriteTo(w)
	return err
}

func teacherRow(t appfaculty.TeacherResponse) []any {
	var name, email, phone, address string
	if t.User != nil {
		name, email, phone, address = t.User.Name, t.User.Email, t.User.PhoneNumber, t.User.Address
	}
	endDate := ""
	if t.EndDate != nil {
		endDate = t.EndDate.Format(dateLayout)
	}
	status := "Inactive"
	if t.IsActive {
		status = "Active"
	}
	return []any{
		t.Code, name, email, phone, address,
		positionNames(t.Positions),
		degreeSummary(t.Degrees),
		t.StartDate.Format(dateLayout),
		endDate,
		status,
	}
}

func positionNames(positions []appfaculty.PositionResponse) string {
	names := make([]string, 0, len(positions))
	for _, p := range positions {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

// degreeSummary renders degrees as "type - major (school, year)" lines
func degreeSummary(degrees []appfaculty.DegreeDTO) string {
	lines := make([]string, 0, len(degrees))
	for _, d := range degrees {
		detail := d.School
		if d.Year != nil {
			detail += ", " + strconv.Itoa(*d.Year)
		}
		if !d.IsGraduated {
			detail += ", in progress"
		}
		lines = append(lines, fmt.Sprintf("%s - %s (%s)", d.Type, d.Major, detail))
	}
	return strings.Join(lines, "\n")
}
