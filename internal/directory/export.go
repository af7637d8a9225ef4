package directory

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"talent-marketplace/internal/domain"

	"github.com/xuri/excelize/v2"
)

var developerColumns = []string{"Full name", "Email", "Location", "Years of experience", "Skills", "GitHub", "LinkedIn", "Has CV", "Joined"}

// ExportDevelopersXLSX writes the given developers to a single-sheet workbook.
// It returns the file content and a suggested filename.
func ExportDevelopersXLSX(devs []domain.DeveloperProfile, now time.Time) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Developers"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, "", fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, col := range developerColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(developerColumns), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, d := range devs {
		for colIdx, value := range developerRow(d) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range developerColumns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 22)
	}
	f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to write Excel file: %w", err)
	}

	filename := fmt.Sprintf("developers_%s.xlsx", now.Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}

func developerRow(d domain.DeveloperProfile) []interface{} {
	years := 0
	if d.YearsExperience != nil {
		years = *d.YearsExperience
	}
	hasCV := "no"
	if d.HasCV() {
		hasCV = "yes"
	}
	return []interface{}{
		d.FullName,
		d.Email,
		str(d.Location),
		years,
		strings.Join(d.Skills, ", "),
		str(d.GithubURL),
		str(d.LinkedinURL),
		hasCV,
		d.CreatedAt.Format("2006-01-02"),
	}
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
