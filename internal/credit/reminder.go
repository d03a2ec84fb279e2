package credit

import (
	"fmt"
	"strings"
	"time"

	"kirana-backend/internal/config"
	"kirana-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// DefaultReminderTemplate follows the shopkeeper's usual WhatsApp/SMS wording.
const DefaultReminderTemplate = "Dear {customer_name}, your pending udhari is ₹{amount}. Please clear it. - {shop_name}"

// RenderReminder fills the placeholder template for one customer.
func RenderReminder(template, customerName string, amount float64, shopName string) string {
	r := strings.NewReplacer(
		"{customer_name}", customerName,
		"{amount}", fmt.Sprintf("%.2f", amount),
		"{shop_name}", shopName,
	)
	return r.Replace(template)
}

type OutstandingRow struct {
	CustomerID   uint    `json:"customer_id"`
	CustomerName string  `json:"customer_name"`
	Phone        string  `json:"phone"`
	Outstanding  float64 `json:"outstanding"`
	Message      string  `json:"message"`
}

type OutstandingResponse struct {
	TotalOutstanding float64          `json:"total_outstanding"`
	Rows             []OutstandingRow `json:"rows"`
}

// GET /api/credits/outstanding
// Per-customer unsettled totals with a ready-to-send reminder message.
func OutstandingSummaryHandler(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		type row struct {
			CustomerID uint    `gorm:"column:customer_id"`
			Total      float64 `gorm:"column:total"`
		}
		var rows []row

		if err := db.Model(&models.CreditEntry{}).
			Select("customer_id, SUM(amount) as total").
			Where("settled = ?", false).
			Group("customer_id").
			Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute outstanding credit")
		}

		ids := make([]uint, 0, len(rows))
		for _, r := range rows {
			ids = append(ids, r.CustomerID)
		}

		var customers []models.Customer
		if len(ids) > 0 {
			if err := db.Where("id IN ?", ids).Find(&customers).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not load customers")
			}
		}
		custMap := make(map[uint]models.Customer, len(customers))
		for _, cu := range customers {
			custMap[cu.ID] = cu
		}

		resp := OutstandingResponse{Rows: make([]OutstandingRow, 0, len(rows))}
		for _, r := range rows {
			cu := custMap[r.CustomerID]
			resp.Rows = append(resp.Rows, OutstandingRow{
				CustomerID:   r.CustomerID,
				CustomerName: cu.Name,
				Phone:        cu.Phone,
				Outstanding:  r.Total,
				Message:      RenderReminder(DefaultReminderTemplate, cu.Name, r.Total, cfg.ShopName),
			})
			resp.TotalOutstanding += r.Total
		}

		return c.JSON(resp)
	}
}

// POST /api/customers/:id/reminder
// Stamps today as the last reminder date and returns the rendered message.
func MarkReminderSentHandler(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var cu models.Customer
		if err := db.First(&cu, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Customer not found")
		}

		var total float64
		if err := db.Model(&models.CreditEntry{}).
			Select("COALESCE(SUM(amount), 0)").
			Where("customer_id = ? AND settled = ?", cu.ID, false).
			Scan(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute outstanding credit")
		}

		today := time.Now()
		cu.LastReminderDate = &today
		if err := db.Save(&cu).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update customer")
		}

		return c.JSON(fiber.Map{
			"customer_id":        cu.ID,
			"last_reminder_date": today.Format("2006-01-02"),
			"outstanding":        total,
			"message":            RenderReminder(DefaultReminderTemplate, cu.Name, total, cfg.ShopName),
		})
	}
}
