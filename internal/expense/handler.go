package expense

import (
	"fmt"
	"time"

	"kirana-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateExpenseRequest struct {
	Date        string  `json:"date"` // "2025-12-09"
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

type ExpenseResponse struct {
	ID          uint    `json:"id"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

type MonthlyExpenseSummaryItem struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

type MonthlyExpenseSummaryResponse struct {
	Year       int                         `json:"year"`
	Month      int                         `json:"month"`
	Items      []MonthlyExpenseSummaryItem `json:"items"`
	GrandTotal float64                     `json:"grand_total"`
}

func validCategory(cat string) bool {
	for _, c := range models.ExpenseCategories {
		if string(c) == cat {
			return true
		}
	}
	return false
}

// GET /api/expense-categories
func ListExpenseCategoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(models.ExpenseCategories)
	}
}

// POST /api/expenses
func CreateExpenseHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if !validCategory(body.Category) {
			return fiber.NewError(fiber.StatusBadRequest, "category must be one of rent, electricity, salary, maintenance, transport, other")
		}
		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount must be greater than zero")
		}

		d := time.Now()
		if body.Date != "" {
			parsed, err := time.Parse("2006-01-02", body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Date must be in 'YYYY-MM-DD' format")
			}
			d = parsed
		}

		exp := models.Expense{
			Category:    models.ExpenseCategory(body.Category),
			Date:        d,
			Amount:      body.Amount,
			Description: body.Description,
		}

		if err := db.Create(&exp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save expense")
		}

		return c.Status(fiber.StatusCreated).JSON(ExpenseResponse{
			ID:          exp.ID,
			Category:    string(exp.Category),
			Date:        exp.Date.Format("2006-01-02"),
			Amount:      exp.Amount,
			Description: exp.Description,
		})
	}
}

// GET /api/expenses?from=...&to=...&category=rent
func ListExpensesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.Model(&models.Expense{})

		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from is invalid")
			}
			dbq = dbq.Where("date >= ?", from)
		}

		if toStr := c.Query("to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to is invalid")
			}
			dbq = dbq.Where("date <= ?", to)
		}

		if cat := c.Query("category"); cat != "" {
			if !validCategory(cat) {
				return fiber.NewError(fiber.StatusBadRequest, "category is invalid")
			}
			dbq = dbq.Where("category = ?", cat)
		}

		var rows []models.Expense
		if err := dbq.Order("date desc, id desc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list expenses")
		}

		resp := make([]ExpenseResponse, 0, len(rows))
		for _, r := range rows {
			resp = append(resp, ExpenseResponse{
				ID:          r.ID,
				Category:    string(r.Category),
				Date:        r.Date.Format("2006-01-02"),
				Amount:      r.Amount,
				Description: r.Description,
			})
		}

		return c.JSON(resp)
	}
}

// DELETE /api/admin/expenses/:id
func DeleteExpenseHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var exp models.Expense
		if err := db.First(&exp, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Expense not found")
		}

		if err := db.Delete(&exp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete expense")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/expenses/summary/monthly?year=2025&month=12
func MonthlyExpenseSummaryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		yearStr := c.Query("year")
		monthStr := c.Query("month")
		if yearStr == "" || monthStr == "" {
			return fiber.NewError(fiber.StatusBadRequest, "year and month are required")
		}

		var year, month int
		if _, err := fmt.Sscan(yearStr, &year); err != nil || year < 2000 {
			return fiber.NewError(fiber.StatusBadRequest, "year is invalid")
		}
		if _, err := fmt.Sscan(monthStr, &month); err != nil || month < 1 || month > 12 {
			return fiber.NewError(fiber.StatusBadRequest, "month is invalid")
		}

		loc := time.Now().Location()
		firstDay := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
		nextMonth := firstDay.AddDate(0, 1, 0)

		type row struct {
			Category string  `gorm:"column:category"`
			Total    float64 `gorm:"column:total"`
		}
		var rows []row

		if err := db.Model(&models.Expense{}).
			Select("category, SUM(amount) as total").
			Where("date >= ? AND date < ?", firstDay, nextMonth).
			Group("category").
			Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute summary")
		}

		resp := MonthlyExpenseSummaryResponse{
			Year:  year,
			Month: month,
			Items: make([]MonthlyExpenseSummaryItem, 0, len(rows)),
		}
		for _, r := range rows {
			resp.Items = append(resp.Items, MonthlyExpenseSummaryItem{
				Category: r.Category,
				Total:    r.Total,
			})
			resp.GrandTotal += r.Total
		}

		return c.JSON(resp)
	}
}
