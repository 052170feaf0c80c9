package service

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"erp-injector/internal/models"
)

// ReportService renders injection run reports as Excel workbooks.
type ReportService struct{}

func NewReportService() *ReportService {
	return &ReportService{}
}

// ExportRunResults writes one styled sheet with the per-line breakdown of a
// run plus a counter summary at the bottom.
func (s *ReportService) ExportRunResults(run *models.InjectionRun, results []models.StoredLineResult, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Injection Results"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"Article Code", "Group Key", "Status", "Header ID", "Error Message", "Created At",
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	for i, header := range headers {
		cell := fmt.Sprintf("%s1", string(rune('A'+i)))
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	successStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D4EDDA"}, Pattern: 1},
	})
	duplicateStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFF3CD"}, Pattern: 1},
	})
	failureStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F8D7DA"}, Pattern: 1},
	})

	for i, result := range results {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), result.ArticleCode)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), result.GroupKey)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), result.Status)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), result.HeaderID)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), result.ErrorMessage)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), result.CreatedAt.Format("2006-01-02 15:04:05"))

		statusCell := fmt.Sprintf("C%d", row)
		switch models.LineStatus(result.Status) {
		case models.StatusSuccess:
			f.SetCellStyle(sheetName, statusCell, statusCell, successStyle)
		case models.StatusDuplicateSkipped:
			f.SetCellStyle(sheetName, statusCell, statusCell, duplicateStyle)
		default:
			f.SetCellStyle(sheetName, statusCell, statusCell, failureStyle)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 18)
	f.SetColWidth(sheetName, "B", "B", 18)
	f.SetColWidth(sheetName, "C", "C", 24)
	f.SetColWidth(sheetName, "D", "D", 14)
	f.SetColWidth(sheetName, "E", "E", 50)
	f.SetColWidth(sheetName, "F", "F", 20)

	summaryRow := len(results) + 3
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F0F0F0"}, Pattern: 1},
	})
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryRow), "Summary:")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("A%d", summaryRow), summaryStyle)

	lines := []string{
		fmt.Sprintf("Run: %s (%s)", run.RunCode, run.Kind),
		fmt.Sprintf("Total groups: %d", run.TotalGroups),
		fmt.Sprintf("Successful: %d", run.SuccessfulInjections),
		fmt.Sprintf("Failed: %d", run.FailedInjections),
		fmt.Sprintf("Duplicates filtered: %d", run.DuplicatesFiltered),
		fmt.Sprintf("Business errors: %d", run.BusinessErrors),
	}
	for i, line := range lines {
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryRow+i), line)
	}

	f.DeleteSheet("Sheet1")

	return f.SaveAs(outputPath)
}
