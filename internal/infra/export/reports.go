// Package export renders report lists as spreadsheets.
package export

import (
	"fmt"
	"slices"
	"time"

	"eara_connect_portal/internal/domain/display"
	"eara_connect_portal/internal/domain/report"

	"github.com/xuri/excelize/v2"
)

const (
	ReportsSheet = "Reports"
	HistorySheet = "History"
	ContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

const stampLayout = "2006-01-02 15:04"

var reportHeadings = []string{
	"ID", "Resolution", "Subcommittee", "Submitted By", "Performance (%)", "Rating",
	"Status", "Submitted At", "HOD Comments", "Commissioner Comments", "Progress Details", "Hindrances",
}

var historyHeadings = []string{"Report ID", "Resolution", "Stage", "Outcome", "Comments", "Reviewed At"}

// ReportsWorkbook builds a workbook with one row per report and, on a second sheet,
// one row per recorded review outcome. The caller closes the returned file.
func ReportsWorkbook(reports []report.Report, history map[int64][]report.HistoryEntry) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ReportsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("error naming reports sheet: %w", err)
	}
	if _, err := f.NewSheet(HistorySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("error adding history sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating header style: %w", err)
	}

	if err := writeRow(f, ReportsSheet, 1, toCells(reportHeadings)); err != nil {
		f.Close()
		return nil, err
	}
	titles := make(map[int64]string, len(reports))
	for i, r := range reports {
		titles[r.ID] = r.ResolutionTitle()
		row := []interface{}{
			r.ID,
			r.ResolutionTitle(),
			r.SubcommitteeName(),
			r.SubmitterName(),
			r.PerformancePercentage,
			display.PerformanceLabel(r.PerformancePercentage),
			display.StatusLabel(string(r.Status)),
			stamp(r.SubmittedAt.Time),
			r.HODComments,
			r.CommissionerComments,
			r.ProgressDetails,
			r.Hindrances,
		}
		if err := writeRow(f, ReportsSheet, i+2, row); err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := writeRow(f, HistorySheet, 1, toCells(historyHeadings)); err != nil {
		f.Close()
		return nil, err
	}
	ids := make([]int64, 0, len(history))
	for id := range history {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	rowNo := 2
	for _, id := range ids {
		for _, e := range history[id] {
			row := []interface{}{e.ReportID, titles[e.ReportID], string(e.Stage), display.StatusLabel(string(e.Status)), e.Comments, stamp(e.ReviewedAt)}
			if err := writeRow(f, HistorySheet, rowNo, row); err != nil {
				f.Close()
				return nil, err
			}
			rowNo++
		}
	}

	for sheet, cols := range map[string]int{ReportsSheet: len(reportHeadings), HistorySheet: len(historyHeadings)} {
		last, _ := excelize.ColumnNumberToName(cols)
		if err := f.SetCellStyle(sheet, "A1", last+"1", bold); err != nil {
			f.Close()
			return nil, fmt.Errorf("error styling %s header: %w", sheet, err)
		}
		if err := f.SetColWidth(sheet, "A", last, 20); err != nil {
			f.Close()
			return nil, fmt.Errorf("error sizing %s columns: %w", sheet, err)
		}
	}
	return f, nil
}

func writeRow(f *excelize.File, sheet string, rowNo int, values []interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, rowNo)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("error writing %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func toCells(headings []string) []interface{} {
	out := make([]interface{}, len(headings))
	for i, h := range headings {
		out[i] = h
	}
	return out
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(stampLayout)
}
