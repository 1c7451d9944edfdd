package clock

import (
	"errors"
	"time"

	"timeclock-backend/internal/auth"
	"timeclock-backend/internal/database"
	"timeclock-backend/internal/geo"
	"timeclock-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ClockInRequest struct {
	// Pointers so that 0 (a valid equator/meridian coordinate) is
	// distinguishable from a missing field.
	Latitude            *float64 `json:"latitude"`
	Longitude           *float64 `json:"longitude"`
	LocationPerimeterID *uint    `json:"locationPerimeterId"`
	Note                string   `json:"note"`
}

type ClockOutRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Note      string   `json:"note"`
}

type LocationPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ClockRecordResponse preserves the wire format of the original web client.
type ClockRecordResponse struct {
	ID                  uint           `json:"id"`
	UserID              uint           `json:"userId"`
	LocationPerimeterID uint           `json:"locationPerimeterId"`
	ClockInTime         time.Time      `json:"clockInTime"`
	ClockInLocation     LocationPoint  `json:"clockInLocation"`
	ClockInNote         string         `json:"clockInNote,omitempty"`
	ClockOutTime        *time.Time     `json:"clockOutTime,omitempty"`
	ClockOutLocation    *LocationPoint `json:"clockOutLocation,omitempty"`
	ClockOutNote        string         `json:"clockOutNote,omitempty"`
}

func NewClockRecordResponse(r *models.ClockRecord) ClockRecordResponse {
	resp := ClockRecordResponse{
		ID:                  r.ID,
		UserID:              r.UserID,
		LocationPerimeterID: r.LocationPerimeterID,
		ClockInTime:         r.ClockInTime,
		ClockInLocation: LocationPoint{
			Latitude:  r.ClockInLatitude,
			Longitude: r.ClockInLongitude,
		},
		ClockInNote:  r.ClockInNote,
		ClockOutTime: r.ClockOutTime,
		ClockOutNote: r.ClockOutNote,
	}
	if r.ClockOutLatitude != nil && r.ClockOutLongitude != nil {
		resp.ClockOutLocation = &LocationPoint{
			Latitude:  *r.ClockOutLatitude,
			Longitude: *r.ClockOutLongitude,
		}
	}
	return resp
}

// -------------------------------------------------
// POST /api/clockin
// -------------------------------------------------
func ClockInHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body ClockInRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Latitude == nil || body.Longitude == nil || body.LocationPerimeterID == nil {
			return fiber.NewError(fiber.StatusBadRequest,
				"Missing required fields: latitude, longitude, or locationPerimeterId")
		}

		pos := geo.Point{Latitude: *body.Latitude, Longitude: *body.Longitude}
		record, err := ClockIn(userID, pos, *body.LocationPerimeterID, body.Note)
		if err != nil {
			switch {
			case errors.Is(err, ErrPerimeterNotFound):
				return fiber.NewError(fiber.StatusNotFound, "Location perimeter not found")
			case errors.Is(err, ErrAlreadyClockedIn):
				return fiber.NewError(fiber.StatusBadRequest, "You are already clocked in. Please clock out first.")
			case errors.Is(err, ErrOutsidePerimeter):
				return fiber.NewError(fiber.StatusBadRequest, "You are outside the allowed perimeter for clock-in")
			case errors.Is(err, geo.ErrInvalidCoordinate):
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "An error occurred during clock in")
			}
		}

		return c.JSON(fiber.Map{
			"success":     true,
			"message":     "Successfully clocked in",
			"clockRecord": NewClockRecordResponse(record),
		})
	}
}

// -------------------------------------------------
// POST /api/clockout
// -------------------------------------------------
func ClockOutHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body ClockOutRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Latitude == nil || body.Longitude == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Missing required fields: latitude, longitude")
		}

		pos := geo.Point{Latitude: *body.Latitude, Longitude: *body.Longitude}
		record, err := ClockOut(userID, pos, body.Note)
		if err != nil {
			switch {
			case errors.Is(err, ErrNoOpenRecord):
				return fiber.NewError(fiber.StatusBadRequest, "No active clock-in record found. Please clock in first.")
			case errors.Is(err, geo.ErrInvalidCoordinate):
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "An error occurred during clock out")
			}
		}

		return c.JSON(fiber.Map{
			"success":     true,
			"message":     "Successfully clocked out",
			"clockRecord": NewClockRecordResponse(record),
		})
	}
}

// -------------------------------------------------
// GET /api/clockrecords?from=2025-08-01&to=2025-08-31
// The caller's own history, newest first.
// -------------------------------------------------
func MyRecordsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.ClockRecord{}).Where("user_id = ?", userID)

		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid 'from' date, expected YYYY-MM-DD")
			}
			dbq = dbq.Where("clock_in_time >= ?", from)
		}
		if toStr := c.Query("to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid 'to' date, expected YYYY-MM-DD")
			}
			dbq = dbq.Where("clock_in_time < ?", to.AddDate(0, 0, 1))
		}

		var records []models.ClockRecord
		if err := dbq.Order("clock_in_time desc").Find(&records).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load clock records")
		}

		resp := make([]ClockRecordResponse, 0, len(records))
		for i := range records {
			resp = append(resp, NewClockRecordResponse(&records[i]))
		}

		return c.JSON(fiber.Map{"records": resp})
	}
}

type ActiveStaffEntry struct {
	UserID       uint      `json:"userId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	ClockInTime  time.Time `json:"clockInTime"`
	LocationName string    `json:"locationName"`
}

// -------------------------------------------------
// GET /api/clockrecords/active  (manager only)
// Staff currently clocked in, for the dashboard.
// -------------------------------------------------
func ActiveStaffHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		type row struct {
			UserID       uint      `gorm:"column:user_id"`
			Name         string    `gorm:"column:name"`
			Email        string    `gorm:"column:email"`
			ClockInTime  time.Time `gorm:"column:clock_in_time"`
			LocationName *string   `gorm:"column:location_name"`
		}
		var rows []row

		err := database.DB.Raw(`
			SELECT cr.user_id, u.name, u.email, cr.clock_in_time, lp.name AS location_name
			FROM clock_records cr
			JOIN users u ON u.id = cr.user_id
			LEFT JOIN location_perimeters lp ON lp.id = cr.location_perimeter_id
			WHERE cr.clock_out_time IS NULL
			ORDER BY cr.clock_in_time ASC
		`).Scan(&rows).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load active staff")
		}

		resp := make([]ActiveStaffEntry, 0, len(rows))
		for _, r := range rows {
			entry := ActiveStaffEntry{
				UserID:       r.UserID,
				Name:         r.Name,
				Email:        r.Email,
				ClockInTime:  r.ClockInTime,
				LocationName: "(deleted location)",
			}
			if r.LocationName != nil {
				entry.LocationName = *r.LocationName
			}
			resp = append(resp, entry)
		}

		return c.JSON(fiber.Map{"active": resp})
	}
}
