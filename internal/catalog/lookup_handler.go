package catalog

import (
	"strconv"
	"strings"

	"kirana-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// FindProductByCode resolves a scanned code: barcode exact match first, then
// a numeric product ID as fallback.
func FindProductByCode(db *gorm.DB, code string) (*models.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, gorm.ErrRecordNotFound
	}

	var p models.Product
	if err := db.Preload("Category").Where("barcode = ?", code).First(&p).Error; err == nil {
		return &p, nil
	}

	pid, err := strconv.Atoi(code)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	if err := db.Preload("Category").First(&p, "id = ?", pid).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GET /api/products/lookup?code=8901030... (price checker / scanner)
func LookupProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		code := c.Query("code")
		if strings.TrimSpace(code) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "code is required")
		}

		p, err := FindProductByCode(db, code)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found for the scanned code")
		}

		return c.JSON(toProductResponse(p))
	}
}
