package report

import (
	"time"

	"kirana-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SalesSummaryResponse struct {
	From       string  `json:"from"`
	To         string  `json:"to"`
	OrderCount int64   `json:"order_count"`
	Revenue    float64 `json:"revenue"`
	Profit     float64 `json:"profit"`
	Expenses   float64 `json:"expenses"`
	NetProfit  float64 `json:"net_profit"`
}

type LowStockRow struct {
	ProductID        uint   `json:"product_id"`
	ProductName      string `json:"product_name"`
	StockQuantity    int    `json:"stock_quantity"`
	ReorderThreshold int    `json:"reorder_threshold"`
	Unit             string `json:"unit"`
}

// parsePeriod reads from/to query params; defaults to month-to-date.
func parsePeriod(c *fiber.Ctx) (time.Time, time.Time, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := now

	if fromStr := c.Query("from"); fromStr != "" {
		parsed, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return from, to, fiber.NewError(fiber.StatusBadRequest, "from is invalid")
		}
		from = parsed
	}
	if toStr := c.Query("to"); toStr != "" {
		parsed, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return from, to, fiber.NewError(fiber.StatusBadRequest, "to is invalid")
		}
		// inclusive end of day
		to = parsed.AddDate(0, 0, 1).Add(-time.Second)
	}
	if to.Before(from) {
		return from, to, fiber.NewError(fiber.StatusBadRequest, "to must not be before from")
	}
	return from, to, nil
}

// SalesTotals sums revenue and profit over completed orders in [from, to].
// Returned orders gave their stock back and are excluded from revenue.
func SalesTotals(db *gorm.DB, from, to time.Time) (revenue, profit float64, orderCount int64, err error) {
	type row struct {
		Revenue float64 `gorm:"column:revenue"`
		Profit  float64 `gorm:"column:profit"`
	}
	var r row

	err = db.Model(&models.OrderLine{}).
		Select("COALESCE(SUM((order_lines.unit_price - order_lines.discount_amount) * order_lines.quantity), 0) as revenue, " +
			"COALESCE(SUM((order_lines.unit_price - order_lines.discount_amount - products.cost_price) * order_lines.quantity), 0) as profit").
		Joins("JOIN orders ON orders.id = order_lines.order_id").
		Joins("JOIN products ON products.id = order_lines.product_id").
		Where("orders.status = ? AND orders.created_at >= ? AND orders.created_at <= ?",
			models.OrderStatusCompleted, from, to).
		Scan(&r).Error
	if err != nil {
		return 0, 0, 0, err
	}

	err = db.Model(&models.Order{}).
		Where("status = ? AND created_at >= ? AND created_at <= ?", models.OrderStatusCompleted, from, to).
		Count(&orderCount).Error
	if err != nil {
		return 0, 0, 0, err
	}

	return r.Revenue, r.Profit, orderCount, nil
}

// ExpenseTotal sums expenses dated inside [from, to].
func ExpenseTotal(db *gorm.DB, from, to time.Time) (float64, error) {
	var total float64
	err := db.Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("date >= ? AND date <= ?", from, to).
		Scan(&total).Error
	return total, err
}

// GET /api/reports/sales?from=2025-12-01&to=2025-12-31
func SalesSummaryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, err := parsePeriod(c)
		if err != nil {
			return err
		}

		revenue, profit, orderCount, err := SalesTotals(db, from, to)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute sales summary")
		}

		expenses, err := ExpenseTotal(db, from, to)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute expense total")
		}

		return c.JSON(SalesSummaryResponse{
			From:       from.Format("2006-01-02"),
			To:         to.Format("2006-01-02"),
			OrderCount: orderCount,
			Revenue:    revenue,
			Profit:     profit,
			Expenses:   expenses,
			NetProfit:  profit - expenses,
		})
	}
}

// GET /api/reports/low-stock
func LowStockReportHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var products []models.Product
		if err := db.Where("is_active = ? AND stock_quantity <= reorder_threshold", true).
			Order("stock_quantity asc, name asc").
			Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list low-stock products")
		}

		rows := make([]LowStockRow, 0, len(products))
		for _, p := range products {
			rows = append(rows, LowStockRow{
				ProductID:        p.ID,
				ProductName:      p.Name,
				StockQuantity:    p.StockQuantity,
				ReorderThreshold: p.ReorderThreshold,
				Unit:             p.Unit,
			})
		}
		return c.JSON(rows)
	}
}

// GET /api/dashboard
// One-screen rollup for the shopkeeper: today's numbers, pending orders,
// low-stock count, outstanding udhari.
func DashboardHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now()
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		revenue, profit, orderCount, err := SalesTotals(db, dayStart, now)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute today's sales")
		}

		expenses, err := ExpenseTotal(db, dayStart, now)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute today's expenses")
		}

		var pendingCount int64
		if err := db.Model(&models.Order{}).
			Where("status = ?", models.OrderStatusPending).
			Count(&pendingCount).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not count pending orders")
		}

		var lowStockCount int64
		if err := db.Model(&models.Product{}).
			Where("is_active = ? AND stock_quantity <= reorder_threshold", true).
			Count(&lowStockCount).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not count low-stock products")
		}

		var outstandingCredit float64
		if err := db.Model(&models.CreditEntry{}).
			Select("COALESCE(SUM(amount), 0)").
			Where("settled = ?", false).
			Scan(&outstandingCredit).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute outstanding credit")
		}

		var recent []models.Order
		if err := db.Preload("Lines").
			Order("created_at desc, id desc").
			Limit(10).
			Find(&recent).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list recent orders")
		}

		type recentOrder struct {
			ID           uint    `json:"id"`
			CustomerName string  `json:"customer_name"`
			Status       string  `json:"status"`
			Total        float64 `json:"total"`
			CreatedAt    string  `json:"created_at"`
		}
		recentRows := make([]recentOrder, 0, len(recent))
		for _, o := range recent {
			recentRows = append(recentRows, recentOrder{
				ID:           o.ID,
				CustomerName: o.CustomerName,
				Status:       string(o.Status),
				Total:        o.Total,
				CreatedAt:    o.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		return c.JSON(fiber.Map{
			"today": fiber.Map{
				"order_count": orderCount,
				"revenue":     revenue,
				"profit":      profit,
				"expenses":    expenses,
				"net_profit":  profit - expenses,
			},
			"pending_orders":     pendingCount,
			"low_stock_products": lowStockCount,
			"outstanding_credit": outstandingCredit,
			"recent_orders":      recentRows,
		})
	}
}
