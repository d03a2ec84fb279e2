package credit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"kirana-backend/internal/models"
	"kirana-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCustomerApp(db *gorm.DB) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Unexpected server error"})
		},
	})
	app.Get("/customers", ListCustomersHandler(db))
	app.Post("/customers", CreateCustomerHandler(db))
	app.Put("/customers/:id", UpdateCustomerHandler(db))
	app.Delete("/customers/:id", DeleteCustomerHandler(db))
	return app
}

func TestCreateCustomerRequiresName(t *testing.T) {
	db := testutil.OpenDB(t)
	app := newCustomerApp(db)

	status, _ := postJSON(t, app, "/customers", fiber.Map{"name": "  ", "phone": "98"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, out := postJSON(t, app, "/customers", fiber.Map{"name": " Ramesh ", "phone": "9800000001"})
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "Ramesh", out["name"])
	assert.Equal(t, true, out["is_active"])
	assert.Nil(t, out["last_reminder_date"])
}

func TestListCustomersHidesInactiveByDefault(t *testing.T) {
	db := testutil.OpenDB(t)
	app := newCustomerApp(db)

	require.NoError(t, db.Create(&models.Customer{Name: "Ramesh", IsActive: true}).Error)
	require.NoError(t, db.Create(&models.Customer{Name: "Gone", IsActive: false}).Error)

	list := func(path string) []CustomerResponse {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		var rows []CustomerResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
		return rows
	}

	assert.Len(t, list("/customers"), 1)
	assert.Len(t, list("/customers?active=all"), 2)
	assert.Len(t, list("/customers?q=Ram"), 1)
}

func TestDeleteCustomerCascadesCreditEntries(t *testing.T) {
	db := testutil.OpenDB(t)
	app := newCustomerApp(db)

	cu := seedCustomer(t, db, "Mohan")
	require.NoError(t, db.Create(&models.CreditEntry{CustomerID: cu.ID, ItemName: "Rice", Quantity: 1, Amount: 320}).Error)
	require.NoError(t, db.Create(&models.CreditEntry{CustomerID: cu.ID, ItemName: "Dal", Quantity: 1, Amount: 110}).Error)

	resp, err := app.Test(httptest.NewRequest("DELETE", fmt.Sprintf("/customers/%d", cu.ID), nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	var entries, customers int64
	require.NoError(t, db.Model(&models.CreditEntry{}).Count(&entries).Error)
	require.NoError(t, db.Model(&models.Customer{}).Count(&customers).Error)
	assert.Zero(t, entries)
	assert.Zero(t, customers)
}

func TestUpdateCustomer(t *testing.T) {
	db := testutil.OpenDB(t)
	app := newCustomerApp(db)
	cu := seedCustomer(t, db, "Sita")

	buf, err := json.Marshal(fiber.Map{"phone": "9811111111", "is_active": false})
	require.NoError(t, err)

	req := httptest.NewRequest("PUT", fmt.Sprintf("/customers/%d", cu.ID), bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got models.Customer
	require.NoError(t, db.First(&got, cu.ID).Error)
	assert.Equal(t, "9811111111", got.Phone)
	assert.False(t, got.IsActive)
	assert.Equal(t, "Sita", got.Name, "unsent fields stay untouched")
}
