package intelligence

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary    = "Summary"
	sheetTypes      = "File Types"
	sheetDuplicates = "Duplicates"
	sheetRisk       = "Risk"
)

// WriteWorkbook saves the analysis as a spreadsheet with one sheet per
// major section.
func WriteWorkbook(analysis *Analysis, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return err
	}
	writeSummarySheet(f, analysis)

	if _, err := f.NewSheet(sheetTypes); err != nil {
		return err
	}
	writeTypesSheet(f, analysis)

	if _, err := f.NewSheet(sheetDuplicates); err != nil {
		return err
	}
	writeDuplicatesSheet(f, analysis)

	if _, err := f.NewSheet(sheetRisk); err != nil {
		return err
	}
	writeRiskSheet(f, analysis)

	return f.SaveAs(path)
}

func writeSummarySheet(f *excelize.File, analysis *Analysis) {
	rows := [][]interface{}{
		{"Session", analysis.SessionID},
		{"Root", analysis.RootPath},
		{"Project Type", analysis.Project.Type},
		{"Confidence", analysis.Project.Confidence},
		{"Total Files", analysis.Sizes.TotalFiles},
		{"Total Size", analysis.Sizes.TotalSize},
		{"Average Size", analysis.Sizes.AverageSize},
		{"Largest File", analysis.Sizes.MaxSize},
		{"Directories", len(analysis.Hierarchy)},
		{"Duplicate Groups", len(analysis.Duplicates)},
		{"Risk Findings", len(analysis.Risk.Findings)},
	}
	for i, row := range rows {
		f.SetCellValue(sheetSummary, fmt.Sprintf("A%d", i+1), row[0])
		f.SetCellValue(sheetSummary, fmt.Sprintf("B%d", i+1), row[1])
	}
}

func writeTypesSheet(f *excelize.File, analysis *Analysis) {
	headers := []string{"Extension", "Count", "Total Size", "Percentage"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetTypes, cell, h)
	}
	for i, ext := range analysis.Distribution {
		row := i + 2
		f.SetCellValue(sheetTypes, fmt.Sprintf("A%d", row), ext.Extension)
		f.SetCellValue(sheetTypes, fmt.Sprintf("B%d", row), ext.Count)
		f.SetCellValue(sheetTypes, fmt.Sprintf("C%d", row), ext.TotalSize)
		f.SetCellValue(sheetTypes, fmt.Sprintf("D%d", row), ext.Percentage)
	}
}

func writeDuplicatesSheet(f *excelize.File, analysis *Analysis) {
	headers := []string{"Hash", "Count", "Wasted Bytes", "Path"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetDuplicates, cell, h)
	}
	row := 2
	for _, group := range analysis.Duplicates {
		for _, path := range group.Paths {
			f.SetCellValue(sheetDuplicates, fmt.Sprintf("A%d", row), group.Hash)
			f.SetCellValue(sheetDuplicates, fmt.Sprintf("B%d", row), group.Count)
			f.SetCellValue(sheetDuplicates, fmt.Sprintf("C%d", row), group.WastedSpace)
			f.SetCellValue(sheetDuplicates, fmt.Sprintf("D%d", row), path)
			row++
		}
	}
}

func writeRiskSheet(f *excelize.File, analysis *Analysis) {
	headers := []string{"Severity", "Path", "Reason"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetRisk, cell, h)
	}
	for i, finding := range analysis.Risk.Findings {
		row := i + 2
		f.SetCellValue(sheetRisk, fmt.Sprintf("A%d", row), string(finding.Severity))
		f.SetCellValue(sheetRisk, fmt.Sprintf("B%d", row), finding.Path)
		f.SetCellValue(sheetRisk, fmt.Sprintf("C%d", row), finding.Reason)
	}
}
