package reports

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// -------------------------------------------------
// GET /api/reports/export?timeRange=week|month|all  (manager only)
// Streams the report as an XLSX workbook.
// -------------------------------------------------
func ExportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		timeRange, err := parseTimeRange(c)
		if err != nil {
			return err
		}

		report, err := loadReport(timeRange)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute report")
		}

		f, err := buildWorkbook(timeRange, report)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build report workbook")
		}
		defer f.Close()

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not write report workbook")
		}

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="timeclock-report-%s.xlsx"`, timeRange))
		return c.Send(buf.Bytes())
	}
}

func buildWorkbook(timeRange string, report Report) (*excelize.File, error) {
	f := excelize.NewFile()

	summary := "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, err
	}

	summaryRows := [][]interface{}{
		{"Time range", timeRange},
		{"Total hours", report.TotalHours},
		{"Average hours per day", report.AverageHoursPerDay},
		{"Total staff", report.TotalStaff},
		{"Currently active", report.CurrentlyActive},
	}
	for i, row := range summaryRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return nil, err
		}
	}

	staffSheet := "Staff Hours"
	if _, err := f.NewSheet(staffSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(staffSheet, "A1", &[]interface{}{"Staff", "Hours"}); err != nil {
		return nil, err
	}
	for i, s := range report.StaffHours {
		row := []interface{}{s.Name, s.Hours}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(staffSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	locSheet := "Locations"
	if _, err := f.NewSheet(locSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(locSheet, "A1", &[]interface{}{"Location", "Clock-ins"}); err != nil {
		return nil, err
	}
	for i, l := range report.LocationDistribution {
		row := []interface{}{l.Name, l.Count}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(locSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	dailySheet := "Daily"
	if _, err := f.NewSheet(dailySheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(dailySheet, "A1", &[]interface{}{"Date", "Clock-ins", "Avg hours"}); err != nil {
		return nil, err
	}
	avgByDay := make(map[string]float64, len(report.AvgDailyHours))
	for _, d := range report.AvgDailyHours {
		avgByDay[d.Date] = d.Hours
	}
	for i, d := range report.DailyClockIns {
		row := []interface{}{d.Date, d.Count, avgByDay[d.Date]}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(dailySheet, cell, &row); err != nil {
			return nil, err
		}
	}

	return f, nil
}
