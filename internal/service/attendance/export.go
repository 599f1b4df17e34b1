package attendance

import (
	"bytes"
	"fmt"

	"github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"
	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary = "Summary"
	sheetUsers   = "Users"
	sheetDaily   = "Daily"
	sheetMonthly = "Monthly"

	noData = "no data"
)

// renderWorkbook writes a report as an XLSX workbook with one sheet per
// section of the report.
func renderWorkbook(report attendance.Report) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, fmt.Errorf("failed to rename default sheet: %w", err)
	}
	for _, name := range []string{sheetUsers, sheetDaily, sheetMonthly} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	writers := []func(*excelize.File, int, attendance.Report) error{
		writeSummarySheet,
		writeUsersSheet,
		writeDailySheet,
		writeMonthlySheet,
	}
	for _, write := range writers {
		if err := write(f, headerStyle, report); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

func writeSummarySheet(f *excelize.File, headerStyle int, report attendance.Report) error {
	stats := report.Statistics
	ing := report.Ingestion

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Average daily attendance", floatOrNoData(stats.AverageDailyAttendance)},
		{"Average mandatory-day attendance", floatOrNoData(stats.AverageMandatoryDayAttendance)},
		{"Average non-mandatory-day attendance", floatOrNoData(stats.AverageNonMandatoryDayAttendance)},
		{"Daily attendance %", floatOrNoData(stats.DailyAttendancePercent)},
		{"Mandatory-day attendance %", floatOrNoData(stats.MandatoryDayAttendancePercent)},
		{"Non-mandatory-day attendance %", floatOrNoData(stats.NonMandatoryDayAttendancePercent)},
		{"Compliance %", floatOrNoData(stats.CompliancePercent)},
		{"Total employees", intOrNoData(stats.TotalEmployees)},
		{"Days observed", stats.DaysObserved},
		{"Users observed", stats.UsersObserved},
		{"Profile", ing.Profile},
		{"Delimiter", ing.Delimiter},
		{"Entry rule", string(ing.EntryRule)},
		{"Timestamp column", ing.TimestampColumn},
		{"Rows read", ing.RowsRead},
		{"Entry rows", ing.EntryRows},
		{"Rows with invalid timestamp", ing.InvalidTimestampRows},
	}
	if err := writeRows(f, sheetSummary, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetSummary, "A1", "B1", headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheetSummary, err)
	}
	if err := f.SetColWidth(sheetSummary, "A", "A", 38); err != nil {
		return err
	}
	return f.SetColWidth(sheetSummary, "B", "B", 18)
}

func writeUsersSheet(f *excelize.File, headerStyle int, report attendance.Report) error {
	rows := [][]interface{}{{"User", "Mandatory_Days_Total", "Total_Attendance", "Compliant"}}
	for _, u := range report.Users {
		var total, compliant interface{}
		if u.TotalAttendance != nil {
			total = *u.TotalAttendance
		}
		if u.Compliant != nil {
			compliant = *u.Compliant
		}
		rows = append(rows, []interface{}{u.User, u.MandatoryDaysTotal, total, compliant})
	}
	if err := writeRows(f, sheetUsers, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetUsers, "A1", "D1", headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheetUsers, err)
	}
	if err := f.SetColWidth(sheetUsers, "A", "A", 28); err != nil {
		return err
	}
	return f.SetColWidth(sheetUsers, "B", "D", 22)
}

func writeDailySheet(f *excelize.File, headerStyle int, report attendance.Report) error {
	rows := [][]interface{}{{"Date", "Weekday", "Count"}}
	for _, d := range report.DailyCounts {
		rows = append(rows, []interface{}{d.Date.String(), d.Weekday.String(), d.Count})
	}
	if err := writeRows(f, sheetDaily, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetDaily, "A1", "C1", headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheetDaily, err)
	}
	return f.SetColWidth(sheetDaily, "A", "C", 14)
}

func writeMonthlySheet(f *excelize.File, headerStyle int, report attendance.Report) error {
	rows := [][]interface{}{{"User", "Month", "Days"}}
	for _, m := range report.Monthly {
		rows = append(rows, []interface{}{m.User, m.Month.String(), m.Days})
	}
	if err := writeRows(f, sheetMonthly, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetMonthly, "A1", "C1", headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheetMonthly, err)
	}
	if err := f.SetColWidth(sheetMonthly, "A", "A", 28); err != nil {
		return err
	}
	return f.SetColWidth(sheetMonthly, "B", "C", 12)
}

// writeRows writes rows starting at A1. Nil values leave the cell empty.
func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func floatOrNoData(v *float64) interface{} {
	if v == nil {
		return noData
	}
	return *v
}

func intOrNoData(v *int) interface{} {
	if v == nil {
		return noData
	}
	return *v
}
