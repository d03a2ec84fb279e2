package credit

import (
	"fmt"
	"log"
	"strings"
	"time"

	"kirana-backend/internal/audit"
	"kirana-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateCreditEntryRequest struct {
	CustomerID uint    `json:"customer_id"`
	ProductID  *uint   `json:"product_id"` // optional catalog link
	ItemName   string  `json:"item_name"`  // free text, e.g. "Sugar 2kg"
	Quantity   int     `json:"quantity"`
	Amount     float64 `json:"amount"` // derived from product price when zero
}

type CreditEntryResponse struct {
	ID           uint    `json:"id"`
	CustomerID   uint    `json:"customer_id"`
	CustomerName string  `json:"customer_name"`
	ProductID    *uint   `json:"product_id"`
	ItemName     string  `json:"item_name"`
	Quantity     int     `json:"quantity"`
	Amount       float64 `json:"amount"`
	DateTaken    string  `json:"date_taken"`
	Settled      bool    `json:"settled"`
	DateSettled  *string `json:"date_settled"`
}

func toCreditEntryResponse(e *models.CreditEntry) CreditEntryResponse {
	res := CreditEntryResponse{
		ID:           e.ID,
		CustomerID:   e.CustomerID,
		CustomerName: e.Customer.Name,
		ProductID:    e.ProductID,
		ItemName:     e.ItemName,
		Quantity:     e.Quantity,
		Amount:       e.Amount,
		DateTaken:    e.DateTaken.Format("2006-01-02"),
		Settled:      e.Settled,
	}
	if e.DateSettled != nil {
		s := e.DateSettled.Format("2006-01-02")
		res.DateSettled = &s
	}
	return res
}

// POST /api/credits
func CreateCreditEntryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCreditEntryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.CustomerID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "customer_id is required")
		}
		var customer models.Customer
		if err := db.First(&customer, "id = ?", body.CustomerID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Customer not found")
		}

		qty := body.Quantity
		if qty == 0 {
			qty = 1
		}
		if qty < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity must be greater than zero")
		}

		itemName := strings.TrimSpace(body.ItemName)
		amount := body.Amount

		var product *models.Product
		if body.ProductID != nil {
			var p models.Product
			if err := db.First(&p, "id = ?", *body.ProductID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Product not found")
			}
			product = &p
			if itemName == "" {
				itemName = p.Name
			}
			// Derive the amount from the catalog price when none was given
			if amount <= 0 {
				amount = (p.Price - p.DiscountPrice) * float64(qty)
			}
		}

		if itemName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "item_name is required")
		}
		if amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount must be greater than zero")
		}

		entry := models.CreditEntry{
			CustomerID: customer.ID,
			ItemName:   itemName,
			Quantity:   qty,
			Amount:     amount,
			DateTaken:  time.Now(),
		}
		if product != nil {
			entry.ProductID = &product.ID
		}

		if err := db.Create(&entry).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save credit entry")
		}

		entry.Customer = customer
		return c.Status(fiber.StatusCreated).JSON(toCreditEntryResponse(&entry))
	}
}

// GET /api/credits?settled=false&customer_id=3&sort=customer_asc
func ListCreditEntriesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.Model(&models.CreditEntry{}).
			Joins("JOIN customers ON customers.id = credit_entries.customer_id").
			Preload("Customer")

		switch c.Query("settled") {
		case "":
		case "true":
			dbq = dbq.Where("settled = ?", true)
		case "false":
			dbq = dbq.Where("settled = ?", false)
		default:
			return fiber.NewError(fiber.StatusBadRequest, "settled must be true or false")
		}

		if custStr := c.Query("customer_id"); custStr != "" {
			var cid uint
			if _, err := fmt.Sscan(custStr, &cid); err != nil || cid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "customer_id is invalid")
			}
			dbq = dbq.Where("customer_id = ?", cid)
		}

		switch c.Query("sort") {
		case "customer_asc":
			dbq = dbq.Order("settled asc, customers.name asc")
		case "customer_desc":
			dbq = dbq.Order("settled asc, customers.name desc")
		default:
			dbq = dbq.Order("settled asc, date_taken desc")
		}

		var rows []models.CreditEntry
		if err := dbq.Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list credit entries")
		}

		res := make([]CreditEntryResponse, 0, len(rows))
		for i := range rows {
			res = append(res, toCreditEntryResponse(&rows[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/credits/:id/settle
// Settling is idempotent: a second call leaves the entry exactly as the first.
func SettleCreditEntryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var entry models.CreditEntry
		if err := db.Preload("Customer").First(&entry, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Credit entry not found")
		}

		if !entry.Settled {
			now := time.Now()
			entry.Settled = true
			entry.DateSettled = &now
			if err := db.Save(&entry).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not settle credit entry")
			}

			actorID, actorName := audit.Actor(db, c)
			if err := audit.Record(db, audit.Entry{
				UserID:   actorID,
				UserName: actorName,
				Action:   models.AuditActionCreditSettled,
				Model:    "CreditEntry",
				ObjectID: entry.ID,
				Field:    "settled",
				OldValue: "false",
				NewValue: "true",
			}); err != nil {
				log.Println("audit:", err)
			}
		}

		return c.JSON(toCreditEntryResponse(&entry))
	}
}

// DELETE /api/admin/credits/:id
func DeleteCreditEntryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var entry models.CreditEntry
		if err := db.First(&entry, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Credit entry not found")
		}

		if err := db.Delete(&entry).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete credit entry")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
