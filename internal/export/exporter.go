// Package export renders candidate records to xlsx spreadsheets.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"stafflink/internal/candidates/models"
)

const sheet = "Candidates"

// bulkColumns is the fixed column schema for the bulk export. Every candidate
// field is a column; the order groups personal, pipeline, background,
// preference, and document-link fields. The legacy sheet's extra columns were
// display-side derivatives of these (split name and location parts, duplicate
// contact and stage renderings) and are not carried.
var bulkColumns = []struct {
	header string
	value  func(*models.Candidate) string
}{
	{"Candidate ID", func(c *models.Candidate) string { return c.ID.String() }},
	{"Full Name", func(c *models.Candidate) string { return c.FullName }},
	{"Email", func(c *models.Candidate) string { return c.Email }},
	{"Phone", func(c *models.Candidate) string { return c.Phone }},
	{"Status", func(c *models.Candidate) string { return string(c.Status) }},
	{"Registered", func(c *models.Candidate) string {
		if c.AccountID != nil {
			return "yes"
		}
		return "no"
	}},
	{"Education", func(c *models.Candidate) string { return c.Education.Text() }},
	{"Experience", func(c *models.Candidate) string { return c.Experience.Text() }},
	{"Certifications", func(c *models.Candidate) string { return c.Certifications.Text() }},
	{"Skills", func(c *models.Candidate) string { return strings.Join(c.Skills, ", ") }},
	{"Current Location", func(c *models.Candidate) string { return c.CurrentLocation }},
	{"Preferred Location", func(c *models.Candidate) string { return c.PreferredLocation }},
	{"Current Company", func(c *models.Candidate) string { return c.CurrentCompany }},
	{"Current Role", func(c *models.Candidate) string { return c.CurrentRole }},
	{"Expected Salary", func(c *models.Candidate) string { return c.ExpectedSalary }},
	{"Notice Period", func(c *models.Candidate) string { return c.NoticePeriod }},
	{"Notes", func(c *models.Candidate) string { return c.Notes }},
	{"Resume", func(c *models.Candidate) string { return c.ResumeURL }},
	{"Video Resume", func(c *models.Candidate) string { return c.VideoResumeURL }},
	{"Audio Biodata", func(c *models.Candidate) string { return c.AudioBiodataURL }},
	{"Photograph", func(c *models.Candidate) string { return c.PhotographURL }},
	{"Created", func(c *models.Candidate) string { return c.CreatedAt.Format(time.RFC3339) }},
	{"Updated", func(c *models.Candidate) string { return c.UpdatedAt.Format(time.RFC3339) }},
}

// RenderCandidate writes one candidate as a two-column Field/Value sheet.
func RenderCandidate(candidate *models.Candidate) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := prepareSheet(f); err != nil {
		return nil, err
	}

	headerStyle, err := newHeaderStyle(f)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, "A1", "Field"); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if err := f.SetCellValue(sheet, "B1", "Value"); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	fieldWidth, valueWidth := lineWidth("Field"), lineWidth("Value")
	for i, col := range bulkColumns {
		row := i + 2
		value := col.value(candidate)
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", row), col.header); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", row), value); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
		fieldWidth = max(fieldWidth, lineWidth(col.header))
		valueWidth = max(valueWidth, lineWidth(value))
	}

	if err := f.SetColWidth(sheet, "A", "A", fieldWidth); err != nil {
		return nil, fmt.Errorf("size columns: %w", err)
	}
	if err := f.SetColWidth(sheet, "B", "B", valueWidth); err != nil {
		return nil, fmt.Errorf("size columns: %w", err)
	}
	return toBytes(f)
}

// RenderCandidates writes one row per candidate under the fixed bulk schema.
func RenderCandidates(candidates []*models.Candidate) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := prepareSheet(f); err != nil {
		return nil, err
	}

	headerStyle, err := newHeaderStyle(f)
	if err != nil {
		return nil, err
	}

	widths := make([]float64, len(bulkColumns))
	for i, col := range bulkColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, col.header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
		widths[i] = lineWidth(col.header)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(bulkColumns), 1)
	if err != nil {
		return nil, fmt.Errorf("header cell: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for r, candidate := range candidates {
		for i, col := range bulkColumns {
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return nil, fmt.Errorf("data cell: %w", err)
			}
			value := col.value(candidate)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("write row %d: %w", r+2, err)
			}
			widths[i] = max(widths[i], lineWidth(value))
		}
	}

	for i, width := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			return nil, fmt.Errorf("size columns: %w", err)
		}
	}
	return toBytes(f)
}

func prepareSheet(f *excelize.File) error {
	index, err := f.GetSheetIndex("Sheet1")
	if err != nil {
		return fmt.Errorf("default sheet: %w", err)
	}
	if index >= 0 {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	}
	return nil
}

func newHeaderStyle(f *excelize.File) (int, error) {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9D9D9"}, Pattern: 1},
	})
	if err != nil {
		return 0, fmt.Errorf("header style: %w", err)
	}
	return style, nil
}

// lineWidth measures the longest single line of a cell, in characters, with
// padding. Multi-line cells wrap; total length must not blow the column out.
func lineWidth(value string) float64 {
	longest := 0
	for _, line := range strings.Split(value, "\n") {
		if n := len([]rune(line)); n > longest {
			longest = n
		}
	}
	const padding = 2
	width := float64(longest + padding)
	if width < 10 {
		width = 10
	}
	if width > 80 {
		width = 80
	}
	return width
}

func toBytes(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
