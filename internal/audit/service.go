package audit

import (
	"fmt"

	"kirana-backend/internal/auth"
	"kirana-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Entry struct {
	UserID   *uint
	UserName string
	Action   models.AuditAction
	Model    string
	ObjectID uint
	Field    string
	OldValue string
	NewValue string
}

// Record persists one field-level change. A failed audit write is never fatal
// to the request that triggered it; callers log and move on.
func Record(db *gorm.DB, e Entry) error {
	row := models.AuditLog{
		UserID:   e.UserID,
		UserName: e.UserName,
		Action:   e.Action,
		Model:    e.Model,
		ObjectID: e.ObjectID,
		Field:    e.Field,
		OldValue: e.OldValue,
		NewValue: e.NewValue,
	}

	if err := db.Create(&row).Error; err != nil {
		return fmt.Errorf("could not write audit log: %w", err)
	}

	return nil
}

// Actor resolves the authenticated user for audit attribution. Returns a nil
// ID with an empty name when the request carries no usable identity.
func Actor(db *gorm.DB, c *fiber.Ctx) (*uint, string) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		return nil, ""
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, ""
	}

	return &user.ID, user.Name
}
