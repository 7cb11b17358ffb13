// Package export renders a user's applications as a spreadsheet download.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/interntrack/internal/tracker"
)

// Sheet names in the generated workbook.
const (
	ApplicationsSheet = "Applications"
	SummarySheet      = "Summary"
)

// ContentType is the MIME type of the workbook produced by WriteApplicationsXLSX.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ApplicationHeaders are the column headers of the Applications sheet, in order.
var ApplicationHeaders = []string{"Company", "Role", "Location", "Status", "Applied", "URL", "Notes", "Updated"}

// statusFill colours a status cell. Statuses missing here keep the default style.
var statusFill = map[tracker.Status]string{
	tracker.StatusApplied:   "DDEBF7",
	tracker.StatusInterview: "FFEB9C",
	tracker.StatusOffer:     "C6EFCE",
	tracker.StatusAccepted:  "A9D08E",
	tracker.StatusRejected:  "FFC7CE",
	tracker.StatusGhosted:   "D9D9D9",
}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

// WriteApplicationsXLSX writes a workbook with an Applications sheet (one row per application,
// in the given order) and a Summary sheet of per-status counts computed at now.
func WriteApplicationsXLSX(w io.Writer, apps []tracker.Application, now time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ApplicationsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	if err := writeApplicationsSheet(f, apps); err != nil {
		return fmt.Errorf("failed to write applications sheet: %w", err)
	}
	if err := writeSummarySheet(f, tracker.ComputeStats(apps, now), now); err != nil {
		return fmt.Errorf("failed to write summary sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeApplicationsSheet(f *excelize.File, apps []tracker.Application) error {
	sheet := ApplicationsSheet
	widths := map[string]float64{"A": 24, "B": 28, "C": 18, "D": 12, "E": 14, "F": 40, "G": 50, "H": 20}
	for col, width := range widths {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	})
	if err != nil {
		return err
	}

	for i, header := range ApplicationHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(ApplicationHeaders), 1)
	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return err
	}

	statusStyles := make(map[tracker.Status]int, len(statusFill))
	for status, color := range statusFill {
		style, err := f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Border: thinBorder,
		})
		if err != nil {
			return err
		}
		statusStyles[status] = style
	}

	for i, app := range apps {
		row := i + 2
		values := []any{
			app.Company,
			app.Role,
			app.Location,
			string(app.Status),
			app.AppliedDate,
			app.URL,
			app.Notes,
			app.UpdatedAt.UTC().Format("2006-01-02 15:04"),
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return err
		}
		if style, ok := statusStyles[app.Status]; ok {
			cell := fmt.Sprintf("D%d", row)
			if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
				return err
			}
		}
		if app.URL != "" {
			cell := fmt.Sprintf("F%d", row)
			if err := f.SetCellHyperLink(sheet, cell, app.URL, "External"); err != nil {
				return err
			}
		}
	}

	if len(apps) > 0 {
		lastCol, _ := excelize.ColumnNumberToName(len(ApplicationHeaders))
		ref := fmt.Sprintf("A1:%s%d", lastCol, len(apps)+1)
		if err := f.AutoFilter(sheet, ref, []excelize.AutoFilterOptions{}); err != nil {
			return err
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeSummarySheet(f *excelize.File, stats tracker.Stats, now time.Time) error {
	sheet := SummarySheet
	if err := f.SetColWidth(sheet, "A", "A", 22); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "C", 12); err != nil {
		return err
	}

	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	rows := [][]any{
		{"Generated", now.UTC().Format("2006-01-02 15:04:05")},
		{"Total", stats.Total},
		{"Updated last 7 days", stats.Last7},
		{"Updated last 30 days", stats.Last30},
		{},
		{"Status", "Count", "Percent"},
	}
	for _, status := range tracker.Statuses {
		rows = append(rows, []any{string(status), stats.Counts[status], stats.Percent[status]})
	}

	for i, values := range rows {
		if len(values) == 0 {
			continue
		}
		row := i + 1
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return err
		}
		cell := fmt.Sprintf("A%d", row)
		if err := f.SetCellStyle(sheet, cell, cell, labelStyle); err != nil {
			return err
		}
	}
	return nil
}
