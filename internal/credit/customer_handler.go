package credit

import (
	"strings"

	"kirana-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CustomerResponse struct {
	ID               uint    `json:"id"`
	Name             string  `json:"name"`
	Phone            string  `json:"phone"`
	Address          string  `json:"address"`
	Notes            string  `json:"notes"`
	IsActive         bool    `json:"is_active"`
	LastReminderDate *string `json:"last_reminder_date"`
}

type CreateCustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

type UpdateCustomerRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	Notes    *string `json:"notes"`
	IsActive *bool   `json:"is_active"`
}

func toCustomerResponse(cu *models.Customer) CustomerResponse {
	res := CustomerResponse{
		ID:       cu.ID,
		Name:     cu.Name,
		Phone:    cu.Phone,
		Address:  cu.Address,
		Notes:    cu.Notes,
		IsActive: cu.IsActive,
	}
	if cu.LastReminderDate != nil {
		s := cu.LastReminderDate.Format("2006-01-02")
		res.LastReminderDate = &s
	}
	return res
}

// GET /api/customers?q=ram&active=true
func ListCustomersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.Model(&models.Customer{})

		if q := strings.TrimSpace(c.Query("q")); q != "" {
			dbq = dbq.Where("name LIKE ?", "%"+q+"%")
		}
		if c.Query("active") != "all" {
			dbq = dbq.Where("is_active = ?", true)
		}

		var rows []models.Customer
		if err := dbq.Order("name asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list customers")
		}

		res := make([]CustomerResponse, 0, len(rows))
		for i := range rows {
			res = append(res, toCustomerResponse(&rows[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/customers
func CreateCustomerHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}

		cu := models.Customer{
			Name:     body.Name,
			Phone:    strings.TrimSpace(body.Phone),
			Address:  strings.TrimSpace(body.Address),
			Notes:    strings.TrimSpace(body.Notes),
			IsActive: true,
		}
		if err := db.Create(&cu).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create customer")
		}

		return c.Status(fiber.StatusCreated).JSON(toCustomerResponse(&cu))
	}
}

// PUT /api/customers/:id
func UpdateCustomerHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var cu models.Customer
		if err := db.First(&cu, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Customer not found")
		}

		var body UpdateCustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Name cannot be empty")
			}
			cu.Name = name
		}
		if body.Phone != nil {
			cu.Phone = strings.TrimSpace(*body.Phone)
		}
		if body.Address != nil {
			cu.Address = strings.TrimSpace(*body.Address)
		}
		if body.Notes != nil {
			cu.Notes = strings.TrimSpace(*body.Notes)
		}
		if body.IsActive != nil {
			cu.IsActive = *body.IsActive
		}

		if err := db.Save(&cu).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update customer")
		}

		return c.JSON(toCustomerResponse(&cu))
	}
}

// DELETE /api/admin/customers/:id
// Delete policy: the customer's credit entries go with them.
func DeleteCustomerHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var cu models.Customer
		if err := db.First(&cu, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Customer not found")
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Delete(&models.CreditEntry{}, "customer_id = ?", cu.ID).Error; err != nil {
				return err
			}
			return tx.Delete(&cu).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete customer")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
