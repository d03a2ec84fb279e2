package catalog

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

type ProductResponse struct {
	ID               uint     `json:"id"`
	CategoryID       *uint    `json:"category_id"`
	CategoryName     string   `json:"category_name"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	ImagePath        string   `json:"image_path"`
	Price            float64  `json:"price"`
	CostPrice        float64  `json:"cost_price"`
	DiscountPrice    float64  `json:"discount_price"`
	StockQuantity    int      `json:"stock_quantity"`
	ReorderThreshold int      `json:"reorder_threshold"`
	TaxRatePercent   float64  `json:"tax_rate_percent"`
	Barcode          *string  `json:"barcode"`
	Unit             string   `json:"unit"`
	ExpiryDate       *string  `json:"expiry_date"`
	IsActive         bool     `json:"is_active"`
	LowStock         bool     `json:"low_stock"`
}

type CreateProductRequest struct {
	CategoryID       *uint   `json:"category_id"`
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	Price            float64 `json:"price"`
	CostPrice        float64 `json:"cost_price"`
	DiscountPrice    float64 `json:"discount_price"`
	StockQuantity    int     `json:"stock_quantity"`
	ReorderThreshold *int    `json:"reorder_threshold"`
	TaxRatePercent   float64 `json:"tax_rate_percent"`
	Barcode          *string `json:"barcode"`
	Unit             string  `json:"unit"`
	ExpiryDate       *string `json:"expiry_date"` // "2006-01-02"
}

type UpdateProductRequest struct {
	CategoryID       *uint    `json:"category_id"`
	ClearCategory    bool     `json:"clear_category"`
	Name             *string  `json:"name"`
	Description      *string  `json:"description"`
	Price            *float64 `json:"price"`
	CostPrice        *float64 `json:"cost_price"`
	DiscountPrice    *float64 `json:"discount_price"`
	StockQuantity    *int     `json:"stock_quantity"`
	ReorderThreshold *int     `json:"reorder_threshold"`
	TaxRatePercent   *float64 `json:"tax_rate_percent"`
	Barcode          *string  `json:"barcode"`
	Unit             *string  `json:"unit"`
	ExpiryDate       *string  `json:"expiry_date"`
	IsActive         *bool    `json:"is_active"`
}

func toProductResponse(p *models.Product) ProductResponse {
	res := ProductResponse{
		ID:               p.ID,
		CategoryID:       p.CategoryID,
		Name:             p.Name,
		Description:      p.Description,
		ImagePath:        p.ImagePath,
		Price:            p.Price,
		CostPrice:        p.CostPrice,
		DiscountPrice:    p.DiscountPrice,
		StockQuantity:    p.StockQuantity,
		ReorderThreshold: p.ReorderThreshold,
		TaxRatePercent:   p.TaxRatePercent,
		Barcode:          p.Barcode,
		Unit:             p.Unit,
		IsActive:         p.IsActive,
		LowStock:         p.LowStock(),
	}
	if p.Category != nil {
		res.CategoryName = p.Category.Name
	}
	if p.ExpiryDate != nil {
		s := p.ExpiryDate.Format("2006-01-02")
		res.ExpiryDate = &s
	}
	return res
}

func validateProductFields(price, costPrice, discountPrice, taxRate float64, stock int) error {
	if price < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "price cannot be negative")
	}
	if costPrice < 0 || discountPrice < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "cost_price and discount_price cannot be negative")
	}
	if stock < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "stock_quantity cannot be negative")
	}
	if taxRate < 0 || taxRate > 100 {
		return fiber.NewError(fiber.StatusBadRequest, "tax_rate_percent must be between 0 and 100")
	}
	return nil
}

// GET /api/products?q=apple&category_id=2&active=true&low_stock=true
func ListProductsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.Model(&models.Product{}).Preload("Category")

		if q := strings.TrimSpace(c.Query("q")); q != "" {
			dbq = dbq.Where("name LIKE ?", "%"+q+"%")
		}
		if catStr := c.Query("category_id"); catStr != "" {
			var cid uint
			if _, err := fmt.Sscan(catStr, &cid); err != nil || cid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "category_id is invalid")
			}
			dbq = dbq.Where("category_id = ?", cid)
		}
		switch c.Query("active") {
		case "", "true":
			dbq = dbq.Where("is_active = ?", true)
		case "all":
			// no filter
		case "false":
			dbq = dbq.Where("is_active = ?", false)
		default:
			return fiber.NewError(fiber.StatusBadRequest, "active must be true, false or all")
		}
		if c.Query("low_stock") == "true" {
			dbq = dbq.Where("stock_quantity <= reorder_threshold")
		}

		var products []models.Product
		if err := dbq.Order("name asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list products")
		}

		res := make([]ProductResponse, 0, len(products))
		for i := range products {
			res = append(res, toProductResponse(&products[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/products/:id
func GetProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Product
		if err := db.Preload("Category").First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}

		return c.JSON(toProductResponse(&p))
	}
}

// POST /api/admin/products
func CreateProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}
		if err := validateProductFields(body.Price, body.CostPrice, body.DiscountPrice, body.TaxRatePercent, body.StockQuantity); err != nil {
			return err
		}

		if body.CategoryID != nil {
			var cat models.Category
			if err := db.First(&cat, "id = ?", *body.CategoryID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Category not found")
			}
		}

		var barcode *string
		if body.Barcode != nil {
			code := strings.TrimSpace(*body.Barcode)
			if code != "" {
				var existing models.Product
				if err := db.Where("barcode = ?", code).First(&existing).Error; err == nil {
					return fiber.NewError(fiber.StatusBadRequest, "This barcode is already in use")
				}
				barcode = &code
			}
		}

		var expiry *time.Time
		if body.ExpiryDate != nil && *body.ExpiryDate != "" {
			d, err := time.Parse("2006-01-02", *body.ExpiryDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "expiry_date must be in 'YYYY-MM-DD' format")
			}
			expiry = &d
		}

		unit := strings.TrimSpace(body.Unit)
		if unit == "" {
			unit = "piece"
		}
		threshold := 5
		if body.ReorderThreshold != nil {
			if *body.ReorderThreshold < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "reorder_threshold cannot be negative")
			}
			threshold = *body.ReorderThreshold
		}

		p := models.Product{
			CategoryID:       body.CategoryID,
			Name:             body.Name,
			Description:      strings.TrimSpace(body.Description),
			Price:            body.Price,
			CostPrice:        body.CostPrice,
			DiscountPrice:    body.DiscountPrice,
			StockQuantity:    body.StockQuantity,
			ReorderThreshold: threshold,
			TaxRatePercent:   body.TaxRatePercent,
			Barcode:          barcode,
			Unit:             unit,
			ExpiryDate:       expiry,
			IsActive:         true,
		}

		if err := db.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create product")
		}

		return c.Status(fiber.StatusCreated).JSON(toProductResponse(&p))
	}
}

// PUT /api/admin/products/:id
func UpdateProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Product
		if err := db.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		oldPrice := p.Price
		oldStock := p.StockQuantity

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Name cannot be empty")
			}
			p.Name = name
		}
		if body.Description != nil {
			p.Description = strings.TrimSpace(*body.Description)
		}
		if body.ClearCategory {
			p.CategoryID = nil
		} else if body.CategoryID != nil {
			var cat models.Category
			if err := db.First(&cat, "id = ?", *body.CategoryID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Category not found")
			}
			p.CategoryID = body.CategoryID
		}
		if body.Price != nil {
			p.Price = *body.Price
		}
		if body.CostPrice != nil {
			p.CostPrice = *body.CostPrice
		}
		if body.DiscountPrice != nil {
			p.DiscountPrice = *body.DiscountPrice
		}
		if body.StockQuantity != nil {
			p.StockQuantity = *body.StockQuantity
		}
		if body.ReorderThreshold != nil {
			if *body.ReorderThreshold < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "reorder_threshold cannot be negative")
			}
			p.ReorderThreshold = *body.ReorderThreshold
		}
		if body.TaxRatePercent != nil {
			p.TaxRatePercent = *body.TaxRatePercent
		}
		if body.Barcode != nil {
			code := strings.TrimSpace(*body.Barcode)
			if code == "" {
				p.Barcode = nil
			} else {
				var existing models.Product
				if err := db.Where("barcode = ? AND id <> ?", code, p.ID).First(&existing).Error; err == nil {
					return fiber.NewError(fiber.StatusBadRequest, "This barcode is already in use")
				}
				p.Barcode = &code
			}
		}
		if body.Unit != nil {
			unit := strings.TrimSpace(*body.Unit)
			if unit == "" {
				return fiber.NewError(fiber.StatusBadRequest, "unit cannot be empty")
			}
			p.Unit = unit
		}
		if body.ExpiryDate != nil {
			if *body.ExpiryDate == "" {
				p.ExpiryDate = nil
			} else {
				d, err := time.Parse("2006-01-02", *body.ExpiryDate)
				if err != nil {
					return fiber.NewError(fiber.StatusBadRequest, "expiry_date must be in 'YYYY-MM-DD' format")
				}
				p.ExpiryDate = &d
			}
		}
		if body.IsActive != nil {
			p.IsActive = *body.IsActive
		}

		if err := validateProductFields(p.Price, p.CostPrice, p.DiscountPrice, p.TaxRatePercent, p.StockQuantity); err != nil {
			return err
		}

		if err := db.Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update product")
		}

		userID, userName := audit.Actor(db, c)
		if oldPrice != p.Price {
			if err := audit.Record(db, audit.Entry{
				UserID:   userID,
				UserName: userName,
				Action:   models.AuditActionPriceChange,
				Model:    "Product",
				ObjectID: p.ID,
				Field:    "price",
				OldValue: fmt.Sprintf("%.2f", oldPrice),
				NewValue: fmt.Sprintf("%.2f", p.Price),
			}); err != nil {
				log.Println("audit:", err)
			}
		}
		if oldStock != p.StockQuantity {
			if err := audit.Record(db, audit.Entry{
				UserID:   userID,
				UserName: userName,
				Action:   models.AuditActionStockChange,
				Model:    "Product",
				ObjectID: p.ID,
				Field:    "stock_quantity",
				OldValue: fmt.Sprintf("%d", oldStock),
				NewValue: fmt.Sprintf("%d", p.StockQuantity),
			}); err != nil {
				log.Println("audit:", err)
			}
		}

		return c.JSON(toProductResponse(&p))
	}
}

// DELETE /api/admin/products/:id
// Delete policy: a product referenced by order lines or purchase items cannot
// be removed, only deactivated.
func DeleteProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Product
		if err := db.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}

		var lineCount int64
		if err := db.Model(&models.OrderLine{}).Where("product_id = ?", p.ID).Count(&lineCount).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not check product references")
		}
		var itemCount int64
		if err := db.Model(&models.PurchaseItem{}).Where("product_id = ?", p.ID).Count(&itemCount).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not check product references")
		}
		if lineCount > 0 || itemCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Product is referenced by orders or purchases, deactivate it instead")
		}

		if err := db.Delete(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete product")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
