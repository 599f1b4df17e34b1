package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestRenderWorkbook(t *testing.T) {
	log := newAccessLog().
		entries("A", marchMandatoryDays[:5]...).
		entries("B", "2024-03-04", "2024-03-05")

	profile := defaultTestProfile()
	report := runPipeline(t, profile, policyFor(profile, "", "A", "abc"), log.String())

	buf, err := renderWorkbook(report)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetSummary, sheetUsers, sheetDaily, sheetMonthly}, f.GetSheetList())

	users, err := f.GetRows(sheetUsers)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []string{"User", "Mandatory_Days_Total", "Total_Attendance", "Compliant"}, users[0])
	assert.Equal(t, []string{"A", "5", "5", "TRUE"}, users[1])
	assert.Equal(t, []string{"B", "1", "2", "FALSE"}, users[2])

	pct, err := f.GetCellValue(sheetSummary, "B5")
	require.NoError(t, err)
	assert.Equal(t, noData, pct)

	daily, err := f.GetRows(sheetDaily)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-04", "Monday", "2"}, daily[1])

	monthly, err := f.GetRows(sheetMonthly)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "2024-03", "5"}, monthly[1])
}

func TestRenderWorkbook_EmptyReport(t *testing.T) {
	profile := defaultTestProfile()
	report := runPipeline(t, profile, policyFor(profile, "", "", ""), "Event,Result,User,Browser time\n")

	buf, err := renderWorkbook(report)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	avg, err := f.GetCellValue(sheetSummary, "B2")
	require.NoError(t, err)
	assert.Equal(t, noData, avg)

	users, err := f.GetRows(sheetUsers)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
