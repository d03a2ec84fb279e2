package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"kirana-backend/internal/config"
	"kirana-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// POST /api/admin/products/:id/image (multipart, field "image")
// The stored file gets a uuid name; the relative path lands on the product and
// the file is served statically under /product-images.
func UploadProductImageHandler(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Product
		if err := db.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}

		fileHeader, err := c.FormFile("image")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "image file is required")
		}

		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		if !allowedImageExts[ext] {
			return fiber.NewError(fiber.StatusBadRequest, "image must be jpg, jpeg, png or webp")
		}

		if err := os.MkdirAll(cfg.ProductImagePath, 0o755); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not prepare image directory")
		}

		filename := fmt.Sprintf("%s%s", uuid.NewString(), ext)
		dest := filepath.Join(cfg.ProductImagePath, filename)
		if err := c.SaveFile(fileHeader, dest); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save image")
		}

		// Replace the previous image if there was one
		if p.ImagePath != "" {
			_ = os.Remove(filepath.Join(cfg.ProductImagePath, p.ImagePath))
		}

		p.ImagePath = filename
		if err := db.Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update product")
		}

		return c.JSON(fiber.Map{
			"id":         p.ID,
			"image_path": p.ImagePath,
		})
	}
}
