package location

import (
	"fmt"
	"log"
	"strings"
	"time"

	"timeclock-backend/internal/audit"
	"timeclock-backend/internal/auth"
	"timeclock-backend/internal/database"
	"timeclock-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateLocationRequest struct {
	Name           string   `json:"name"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	RadiusInMeters *float64 `json:"radiusInMeters"`
}

type UpdateLocationRequest struct {
	ID             *uint    `json:"id"`
	Name           string   `json:"name"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	RadiusInMeters *float64 `json:"radiusInMeters"`
}

type LocationResponse struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	RadiusInMeters float64   `json:"radiusInMeters"`
	CreatedBy      uint      `json:"createdBy"`
	Created        time.Time `json:"created"`
}

func newLocationResponse(p *models.LocationPerimeter) LocationResponse {
	return LocationResponse{
		ID:             p.ID,
		Name:           p.Name,
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
		RadiusInMeters: p.RadiusInMeters,
		CreatedBy:      p.CreatedBy,
		Created:        p.CreatedAt,
	}
}

// validateFields applies the defensive checks the original app skipped:
// coordinate ranges and a positive radius.
func validateFields(name string, lat, lon, radius float64) error {
	if strings.TrimSpace(name) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Location name must not be empty")
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return fiber.NewError(fiber.StatusBadRequest,
			"latitude must be within [-90, 90] and longitude within [-180, 180]")
	}
	if radius <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "radiusInMeters must be greater than zero")
	}
	return nil
}

func writeAudit(c *fiber.Ctx, action models.AuditAction, p *models.LocationPerimeter, before, after any, desc string) {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return
	}

	var user models.User
	userName := ""
	if err := database.DB.First(&user, "id = ?", userID).Error; err == nil {
		userName = user.Name
	}

	if logErr := audit.WriteLog(audit.LogOptions{
		UserID:      userID,
		UserName:    userName,
		EntityType:  audit.EntityLocationPerimeter,
		EntityID:    p.ID,
		Action:      action,
		Description: desc,
		Before:      before,
		After:       after,
	}); logErr != nil {
		// The audit trail is best-effort, the perimeter change itself stands.
		log.Println("Could not write audit log:", logErr)
	}
}

func auditSnapshot(p *models.LocationPerimeter) map[string]interface{} {
	return map[string]interface{}{
		"id":             p.ID,
		"name":           p.Name,
		"latitude":       p.Latitude,
		"longitude":      p.Longitude,
		"radiusInMeters": p.RadiusInMeters,
		"createdBy":      p.CreatedBy,
	}
}

// -------------------------------------------------
// GET /api/location  (manager only)
// -------------------------------------------------
func ListLocationsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var perimeters []models.LocationPerimeter
		if err := database.DB.Order("name asc").Find(&perimeters).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "An error occurred fetching locations")
		}

		resp := make([]LocationResponse, 0, len(perimeters))
		for i := range perimeters {
			resp = append(resp, newLocationResponse(&perimeters[i]))
		}

		return c.JSON(fiber.Map{"locations": resp})
	}
}

// -------------------------------------------------
// GET /api/location/available  (any authenticated role)
// Minimal list so a careworker can pick the site to clock in at.
// -------------------------------------------------
func AvailableLocationsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var perimeters []models.LocationPerimeter
		if err := database.DB.Order("name asc").Find(&perimeters).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "An error occurred fetching locations")
		}

		type availableLocation struct {
			ID             uint    `json:"id"`
			Name           string  `json:"name"`
			Latitude       float64 `json:"latitude"`
			Longitude      float64 `json:"longitude"`
			RadiusInMeters float64 `json:"radiusInMeters"`
		}

		resp := make([]availableLocation, 0, len(perimeters))
		for _, p := range perimeters {
			resp = append(resp, availableLocation{
				ID:             p.ID,
				Name:           p.Name,
				Latitude:       p.Latitude,
				Longitude:      p.Longitude,
				RadiusInMeters: p.RadiusInMeters,
			})
		}

		return c.JSON(fiber.Map{"locations": resp})
	}
}

// -------------------------------------------------
// POST /api/location  (manager only)
// -------------------------------------------------
func CreateLocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body CreateLocationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name == "" || body.Latitude == nil || body.Longitude == nil || body.RadiusInMeters == nil {
			return fiber.NewError(fiber.StatusBadRequest,
				"Missing required fields: name, latitude, longitude, radiusInMeters")
		}
		if err := validateFields(body.Name, *body.Latitude, *body.Longitude, *body.RadiusInMeters); err != nil {
			return err
		}

		perimeter := models.LocationPerimeter{
			Name:           strings.TrimSpace(body.Name),
			Latitude:       *body.Latitude,
			Longitude:      *body.Longitude,
			RadiusInMeters: *body.RadiusInMeters,
			CreatedBy:      userID,
		}

		if err := database.DB.Create(&perimeter).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "An error occurred creating location")
		}

		writeAudit(c, models.AuditActionCreate, &perimeter, nil, auditSnapshot(&perimeter),
			fmt.Sprintf("Location perimeter created: %s (%.0fm)", perimeter.Name, perimeter.RadiusInMeters))

		return c.JSON(fiber.Map{
			"success":           true,
			"message":           "Location perimeter created successfully",
			"locationPerimeter": newLocationResponse(&perimeter),
		})
	}
}

// -------------------------------------------------
// PUT /api/location  (manager only, id in body)
// -------------------------------------------------
func UpdateLocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateLocationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.ID == nil || body.Name == "" || body.Latitude == nil || body.Longitude == nil || body.RadiusInMeters == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Missing required fields")
		}
		if err := validateFields(body.Name, *body.Latitude, *body.Longitude, *body.RadiusInMeters); err != nil {
			return err
		}

		var perimeter models.LocationPerimeter
		if err := database.DB.First(&perimeter, "id = ?", *body.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Location not found")
		}

		before := auditSnapshot(&perimeter)

		perimeter.Name = strings.TrimSpace(body.Name)
		perimeter.Latitude = *body.Latitude
		perimeter.Longitude = *body.Longitude
		perimeter.RadiusInMeters = *body.RadiusInMeters

		if err := database.DB.Save(&perimeter).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "An error occurred updating location")
		}

		writeAudit(c, models.AuditActionUpdate, &perimeter, before, auditSnapshot(&perimeter),
			fmt.Sprintf("Location perimeter updated: %s", perimeter.Name))

		return c.JSON(fiber.Map{
			"success":           true,
			"message":           "Location updated successfully",
			"locationPerimeter": newLocationResponse(&perimeter),
		})
	}
}

// -------------------------------------------------
// DELETE /api/location?id=1  (manager only)
// Historical clock records keep their perimeter id, so deletes never
// rewrite history.
// -------------------------------------------------
func DeleteLocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := c.Query("id")
		if idStr == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Missing location ID")
		}

		var id uint
		if _, err := fmt.Sscan(idStr, &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid location ID")
		}

		var perimeter models.LocationPerimeter
		if err := database.DB.First(&perimeter, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Location not found")
		}

		before := auditSnapshot(&perimeter)

		if err := database.DB.Delete(&perimeter).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "An error occurred deleting location")
		}

		writeAudit(c, models.AuditActionDelete, &perimeter, before, nil,
			fmt.Sprintf("Location perimeter deleted: %s", perimeter.Name))

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Location deleted successfully",
		})
	}
}
