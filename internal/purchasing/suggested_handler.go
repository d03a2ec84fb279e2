package purchasing

import (
	"time"

	"kirana-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// nearExpiryDays is the lookahead window for "buy before it runs out" rows.
const nearExpiryDays = 7

type SuggestedPurchaseRow struct {
	ProductID        uint   `json:"product_id"`
	ProductName      string `json:"product_name"`
	StockQuantity    int    `json:"stock_quantity"`
	ReorderThreshold int    `json:"reorder_threshold"`
	Low              bool   `json:"low"`
	Expired          bool   `json:"expired"`
	NearExpiry       bool   `json:"near_expiry"`
	SuggestedQty     int    `json:"suggested_qty"`
}

// GET /api/purchases/suggested
// Flags active products that are low on stock, expired, or expiring within a
// week, with a restock quantity aiming at twice the reorder threshold.
func SuggestedPurchasesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var products []models.Product
		if err := db.Where("is_active = ?", true).Order("name asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list products")
		}

		today := time.Now().Truncate(24 * time.Hour)
		limit := today.AddDate(0, 0, nearExpiryDays)

		rows := make([]SuggestedPurchaseRow, 0)
		for _, p := range products {
			low := p.LowStock()
			expired := p.ExpiryDate != nil && p.ExpiryDate.Before(today)
			near := p.ExpiryDate != nil && !expired && !p.ExpiryDate.After(limit)
			if !low && !expired && !near {
				continue
			}

			suggested := p.ReorderThreshold*2 - p.StockQuantity
			if suggested < 0 {
				suggested = 0
			}

			rows = append(rows, SuggestedPurchaseRow{
				ProductID:        p.ID,
				ProductName:      p.Name,
				StockQuantity:    p.StockQuantity,
				ReorderThreshold: p.ReorderThreshold,
				Low:              low,
				Expired:          expired,
				NearExpiry:       near,
				SuggestedQty:     suggested,
			})
		}

		return c.JSON(fiber.Map{
			"near_days": nearExpiryDays,
			"rows":      rows,
		})
	}
}
