package reports

import (
	"time"

	"timeclock-backend/internal/database"
	"timeclock-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// loadReport pulls the window's records plus the name lookups and aggregates.
// timeRange is week (last 7 days), month (last 30 days) or all.
func loadReport(timeRange string) (Report, error) {
	now := time.Now()

	dbq := database.DB.Model(&models.ClockRecord{})
	switch timeRange {
	case "week":
		dbq = dbq.Where("clock_in_time >= ?", now.AddDate(0, 0, -7))
	case "month":
		dbq = dbq.Where("clock_in_time >= ?", now.AddDate(0, 0, -30))
	case "all":
		// no window
	}

	var records []models.ClockRecord
	if err := dbq.Order("clock_in_time asc").Find(&records).Error; err != nil {
		return Report{}, err
	}

	var users []models.User
	if err := database.DB.Find(&users).Error; err != nil {
		return Report{}, err
	}
	userNames := make(map[uint]string, len(users))
	for _, u := range users {
		userNames[u.ID] = u.Name
	}

	var perimeters []models.LocationPerimeter
	if err := database.DB.Find(&perimeters).Error; err != nil {
		return Report{}, err
	}
	perimeterNames := make(map[uint]string, len(perimeters))
	for _, p := range perimeters {
		perimeterNames[p.ID] = p.Name
	}

	return Aggregate(records, userNames, perimeterNames), nil
}

func parseTimeRange(c *fiber.Ctx) (string, error) {
	timeRange := c.Query("timeRange", "week")
	switch timeRange {
	case "week", "month", "all":
		return timeRange, nil
	default:
		return "", fiber.NewError(fiber.StatusBadRequest, "timeRange must be one of: week, month, all")
	}
}

// -------------------------------------------------
// GET /api/reports?timeRange=week|month|all  (manager only)
// -------------------------------------------------
func ReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		timeRange, err := parseTimeRange(c)
		if err != nil {
			return err
		}

		report, err := loadReport(timeRange)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute report")
		}

		return c.JSON(report)
	}
}
