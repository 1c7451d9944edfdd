package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"timeclock-backend/internal/database"
	"timeclock-backend/internal/models"
)

const EntityLocationPerimeter = "location_perimeter"

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func WriteLog(opts LogOptions) error {
	// jsonb columns want the JSON literal "null", not an empty string
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	entry := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
		Undone:      false,
		IsUndone:    false,
	}

	if err := database.DB.Create(&entry).Error; err != nil {
		return fmt.Errorf("could not save audit log: %w", err)
	}

	return nil
}

// UndoLog reverses the change a log entry records: a create is deleted, an
// update is restored to its before-image, a delete is recreated. A
// compensating log entry is written so the undo itself is auditable.
func UndoLog(logID uint, userID uint, userName string) error {
	var entry models.AuditLog
	if err := database.DB.First(&entry, "id = ?", logID).Error; err != nil {
		return fmt.Errorf("log entry not found: %w", err)
	}

	if entry.IsUndone {
		return fmt.Errorf("this change has already been undone")
	}

	switch entry.Action {
	case models.AuditActionCreate:
		if err := deleteEntity(entry.EntityType, entry.EntityID); err != nil {
			return fmt.Errorf("could not delete entity: %w", err)
		}

	case models.AuditActionUpdate:
		if err := restoreEntity(entry.EntityType, entry.EntityID, entry.BeforeData); err != nil {
			return fmt.Errorf("could not restore entity: %w", err)
		}

	case models.AuditActionDelete:
		if err := recreateEntity(entry.EntityType, entry.BeforeData); err != nil {
			return fmt.Errorf("could not recreate entity: %w", err)
		}

	default:
		return fmt.Errorf("this action cannot be undone")
	}

	now := time.Now()
	entry.IsUndone = true
	entry.UndoneBy = &userID
	entry.UndoneAt = &now

	if err := database.DB.Save(&entry).Error; err != nil {
		return fmt.Errorf("could not update log entry: %w", err)
	}

	undoEntry := models.AuditLog{
		UserID:      userID,
		UserName:    userName,
		EntityType:  entry.EntityType,
		EntityID:    entry.EntityID,
		Action:      models.AuditActionUndo,
		Description: fmt.Sprintf("Undone: %s", entry.Description),
		BeforeData:  entry.AfterData,
		AfterData:   entry.BeforeData,
		Undone:      true,
		IsUndone:    false,
	}

	if err := database.DB.Create(&undoEntry).Error; err != nil {
		return fmt.Errorf("could not save undo log: %w", err)
	}

	return nil
}

// perimeterSnapshot matches the JSON written by the location handlers.
type perimeterSnapshot struct {
	ID             uint    `json:"id"`
	Name           string  `json:"name"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	RadiusInMeters float64 `json:"radiusInMeters"`
	CreatedBy      uint    `json:"createdBy"`
}

func deleteEntity(entityType string, entityID uint) error {
	switch entityType {
	case EntityLocationPerimeter:
		return database.DB.Delete(&models.LocationPerimeter{}, "id = ?", entityID).Error
	default:
		return fmt.Errorf("unknown entity type: %s", entityType)
	}
}

func recreateEntity(entityType string, dataJSON string) error {
	switch entityType {
	case EntityLocationPerimeter:
		var snap perimeterSnapshot
		if err := json.Unmarshal([]byte(dataJSON), &snap); err != nil {
			return err
		}
		perimeter := models.LocationPerimeter{
			Name:           snap.Name,
			Latitude:       snap.Latitude,
			Longitude:      snap.Longitude,
			RadiusInMeters: snap.RadiusInMeters,
			CreatedBy:      snap.CreatedBy,
		}
		return database.DB.Create(&perimeter).Error
	default:
		return fmt.Errorf("unknown entity type: %s", entityType)
	}
}

func restoreEntity(entityType string, entityID uint, dataJSON string) error {
	switch entityType {
	case EntityLocationPerimeter:
		var snap perimeterSnapshot
		if err := json.Unmarshal([]byte(dataJSON), &snap); err != nil {
			return err
		}
		return database.DB.Model(&models.LocationPerimeter{}).
			Where("id = ?", entityID).
			Updates(map[string]interface{}{
				"name":             snap.Name,
				"latitude":         snap.Latitude,
				"longitude":        snap.Longitude,
				"radius_in_meters": snap.RadiusInMeters,
			}).Error
	default:
		return fmt.Errorf("unknown entity type: %s", entityType)
	}
}
