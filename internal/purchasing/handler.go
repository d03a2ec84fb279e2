package purchasing

import (
	"strings"
	"time"

	"kirana-backend/internal/catalog"
	"kirana-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type WholesalerResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

type CreateWholesalerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

type PurchaseItemRequest struct {
	ProductID  uint    `json:"product_id"`
	Quantity   int     `json:"quantity"`
	UnitCost   float64 `json:"unit_cost"`
	SellingPrice *float64 `json:"selling_price"` // optional refresh of the shelf price
	ExpiryDate *string  `json:"expiry_date"`     // "2006-01-02"
}

type CreatePurchaseRequest struct {
	WholesalerID uint                  `json:"wholesaler_id"`
	Date         string                `json:"date"` // "2006-01-02", defaults to today
	Items        []PurchaseItemRequest `json:"items"`
}

type PurchaseItemResponse struct {
	ID         uint    `json:"id"`
	ProductID  uint    `json:"product_id"`
	Quantity   int     `json:"quantity"`
	UnitCost   float64 `json:"unit_cost"`
	ExpiryDate *string `json:"expiry_date"`
}

type PurchaseResponse struct {
	ID             uint                   `json:"id"`
	WholesalerID   uint                   `json:"wholesaler_id"`
	WholesalerName string                 `json:"wholesaler_name"`
	Date           string                 `json:"date"`
	Items          []PurchaseItemResponse `json:"items"`
}

func toWholesalerResponse(w *models.Wholesaler) WholesalerResponse {
	return WholesalerResponse{
		ID:      w.ID,
		Name:    w.Name,
		Phone:   w.Phone,
		Email:   w.Email,
		Address: w.Address,
		Notes:   w.Notes,
	}
}

func toPurchaseResponse(p *models.Purchase) PurchaseResponse {
	res := PurchaseResponse{
		ID:             p.ID,
		WholesalerID:   p.WholesalerID,
		WholesalerName: p.Wholesaler.Name,
		Date:           p.Date.Format("2006-01-02"),
		Items:          make([]PurchaseItemResponse, 0, len(p.Items)),
	}
	for _, it := range p.Items {
		item := PurchaseItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitCost:  it.UnitCost,
		}
		if it.ExpiryDate != nil {
			s := it.ExpiryDate.Format("2006-01-02")
			item.ExpiryDate = &s
		}
		res.Items = append(res.Items, item)
	}
	return res
}

// GET /api/wholesalers
func ListWholesalersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rows []models.Wholesaler
		if err := db.Order("name asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list wholesalers")
		}

		res := make([]WholesalerResponse, 0, len(rows))
		for i := range rows {
			res = append(res, toWholesalerResponse(&rows[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/wholesalers
func CreateWholesalerHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateWholesalerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}

		w := models.Wholesaler{
			Name:    body.Name,
			Phone:   strings.TrimSpace(body.Phone),
			Email:   strings.TrimSpace(body.Email),
			Address: strings.TrimSpace(body.Address),
			Notes:   strings.TrimSpace(body.Notes),
		}
		if err := db.Create(&w).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create wholesaler")
		}

		return c.Status(fiber.StatusCreated).JSON(toWholesalerResponse(&w))
	}
}

// POST /api/purchases
// Recording a purchase adds every item's quantity to stock and refreshes the
// product's cost price (and selling price when given), like restocking from
// the wholesaler's bill.
func CreatePurchaseHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePurchaseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.WholesalerID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "wholesaler_id is required")
		}
		var wholesaler models.Wholesaler
		if err := db.First(&wholesaler, "id = ?", body.WholesalerID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Wholesaler not found")
		}

		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "at least one item is required")
		}
		for _, it := range body.Items {
			if it.Quantity <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "quantity must be greater than zero")
			}
			if it.UnitCost <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "unit_cost must be greater than zero")
			}
			if it.SellingPrice != nil && *it.SellingPrice < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "selling_price cannot be negative")
			}
		}

		date := time.Now()
		if body.Date != "" {
			parsed, err := time.Parse("2006-01-02", body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Date must be in 'YYYY-MM-DD' format")
			}
			date = parsed
		}

		var purchase models.Purchase

		err := db.Transaction(func(tx *gorm.DB) error {
			purchase = models.Purchase{
				WholesalerID: wholesaler.ID,
				Date:         date,
			}
			if err := tx.Create(&purchase).Error; err != nil {
				return err
			}

			for _, it := range body.Items {
				var p models.Product
				if err := tx.First(&p, "id = ?", it.ProductID).Error; err != nil {
					return fiber.NewError(fiber.StatusBadRequest, "Product not found")
				}

				var expiry *time.Time
				if it.ExpiryDate != nil && *it.ExpiryDate != "" {
					d, err := time.Parse("2006-01-02", *it.ExpiryDate)
					if err != nil {
						return fiber.NewError(fiber.StatusBadRequest, "expiry_date must be in 'YYYY-MM-DD' format")
					}
					expiry = &d
				}

				item := models.PurchaseItem{
					PurchaseID: purchase.ID,
					ProductID:  p.ID,
					Quantity:   it.Quantity,
					UnitCost:   it.UnitCost,
					ExpiryDate: expiry,
				}
				if err := tx.Create(&item).Error; err != nil {
					return err
				}

				if err := catalog.AddStock(tx, p.ID, it.Quantity); err != nil {
					return err
				}

				updates := map[string]interface{}{"cost_price": it.UnitCost}
				if it.SellingPrice != nil {
					updates["price"] = *it.SellingPrice
				}
				if expiry != nil {
					updates["expiry_date"] = expiry
				}
				if err := tx.Model(&p).Updates(updates).Error; err != nil {
					return err
				}
			}

			return nil
		})
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				return fe
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not record purchase")
		}

		if err := db.Preload("Items").Preload("Wholesaler").First(&purchase, purchase.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load purchase")
		}
		return c.Status(fiber.StatusCreated).JSON(toPurchaseResponse(&purchase))
	}
}

// GET /api/purchases?from=...&to=...
func ListPurchasesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.Model(&models.Purchase{}).Preload("Items").Preload("Wholesaler")

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

		var rows []models.Purchase
		if err := dbq.Order("date desc, id desc").Limit(100).Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list purchases")
		}

		res := make([]PurchaseResponse, 0, len(rows))
		for i := range rows {
			res = append(res, toPurchaseResponse(&rows[i]))
		}
		return c.JSON(res)
	}
}
