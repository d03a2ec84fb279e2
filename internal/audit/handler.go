package audit

import (
	"fmt"

	"kirana-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GET /api/admin/audit-logs?model=Product&object_id=3&limit=100
func ListAuditLogsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.Model(&models.AuditLog{})

		if model := c.Query("model"); model != "" {
			dbq = dbq.Where("model = ?", model)
		}
		if objStr := c.Query("object_id"); objStr != "" {
			var objID uint
			if _, err := fmt.Sscan(objStr, &objID); err != nil || objID == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "object_id is invalid")
			}
			dbq = dbq.Where("object_id = ?", objID)
		}

		limit := 100
		if limStr := c.Query("limit"); limStr != "" {
			if _, err := fmt.Sscan(limStr, &limit); err != nil || limit < 1 || limit > 1000 {
				return fiber.NewError(fiber.StatusBadRequest, "limit is invalid")
			}
		}

		var logs []models.AuditLog
		if err := dbq.Order("created_at desc, id desc").Limit(limit).Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list audit logs")
		}

		return c.JSON(logs)
	}
}
