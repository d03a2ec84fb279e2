package purchasing

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"kirana-backend/internal/models"
	"kirana-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPurchasingApp(db *gorm.DB) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Unexpected server error"})
		},
	})
	app.Get("/wholesalers", ListWholesalersHandler(db))
	app.Post("/wholesalers", CreateWholesalerHandler(db))
	app.Post("/purchases", CreatePurchaseHandler(db))
	app.Get("/purchases", ListPurchasesHandler(db))
	app.Get("/purchases/suggested", SuggestedPurchasesHandler(db))
	return app
}

func seedWholesaler(t *testing.T, db *gorm.DB) *models.Wholesaler {
	t.Helper()
	w := models.Wholesaler{Name: "Gupta Traders", Phone: "9800000002"}
	require.NoError(t, db.Create(&w).Error)
	return &w
}

func seedProduct(t *testing.T, db *gorm.DB, name string, stock, threshold int) *models.Product {
	t.Helper()
	p := models.Product{
		Name:             name,
		Price:            50,
		CostPrice:        40,
		StockQuantity:    stock,
		ReorderThreshold: threshold,
		Unit:             "piece",
		IsActive:         true,
	}
	require.NoError(t, db.Create(&p).Error)
	return &p
}

func postPurchase(t *testing.T, app *fiber.App, body fiber.Map) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest("POST", "/purchases", &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestCreatePurchaseRestocksAndRefreshesCost(t *testing.T) {
	db := testutil.OpenDB(t)
	app := newPurchasingApp(db)
	w := seedWholesaler(t, db)
	p := seedProduct(t, db, "Sugar 1kg", 3, 5)

	status, _ := postPurchase(t, app, fiber.Map{
		"wholesaler_id": w.ID,
		"date":          "2026-08-20",
		"items": []fiber.Map{
			{"product_id": p.ID, "quantity": 12, "unit_cost": 42.5, "selling_price": 52},
		},
	})
	require.Equal(t, fiber.StatusCreated, status)

	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, 15, got.StockQuantity)
	assert.Equal(t, 42.5, got.CostPrice)
	assert.Equal(t, 52.0, got.Price)
}

func TestCreatePurchaseSetsExpiryDate(t *testing.T) {
	db := testutil.OpenDB(t)
	app := newPurchasingApp(db)
	w := seedWholesaler(t, db)
	p := seedProduct(t, db, "Bread", 2, 4)

	status, out := postPurchase(t, app, fiber.Map{
		"wholesaler_id": w.ID,
		"items": []fiber.Map{
			{"product_id": p.ID, "quantity": 10, "unit_cost": 30, "expiry_date": "2026-09-01"},
		},
	})
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "Gupta Traders", out["wholesaler_name"])

	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	require.NotNil(t, got.ExpiryDate)
	assert.Equal(t, "2026-09-01", got.ExpiryDate.Format("2006-01-02"))
}

func TestCreatePurchaseValidation(t *testing.T) {
	db := testutil.OpenDB(t)
	app := newPurchasingApp(db)
	w := seedWholesaler(t, db)
	p := seedProduct(t, db, "Salt", 5, 2)

	cases := []fiber.Map{
		{"items": []fiber.Map{{"product_id": p.ID, "quantity": 1, "unit_cost": 10}}},
		{"wholesaler_id": w.ID},
		{"wholesaler_id": w.ID, "items": []fiber.Map{{"product_id": p.ID, "quantity": 0, "unit_cost": 10}}},
		{"wholesaler_id": w.ID, "items": []fiber.Map{{"product_id": p.ID, "quantity": 1, "unit_cost": 0}}},
		{"wholesaler_id": w.ID, "items": []fiber.Map{{"product_id": 9999, "quantity": 1, "unit_cost": 10}}},
		{"wholesaler_id": 9999, "items": []fiber.Map{{"product_id": p.ID, "quantity": 1, "unit_cost": 10}}},
	}
	for i, body := range cases {
		status, _ := postPurchase(t, app, body)
		assert.Equal(t, fiber.StatusBadRequest, status, "case %d", i)
	}

	// nothing was recorded and stock never moved
	var count int64
	require.NoError(t, db.Model(&models.Purchase{}).Count(&count).Error)
	assert.Zero(t, count)
	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, 5, got.StockQuantity)
}

func TestCreatePurchaseUnknownProductRollsBack(t *testing.T) {
	db := testutil.OpenDB(t)
	app := newPurchasingApp(db)
	w := seedWholesaler(t, db)
	p := seedProduct(t, db, "Oil 1L", 4, 3)

	status, _ := postPurchase(t, app, fiber.Map{
		"wholesaler_id": w.ID,
		"items": []fiber.Map{
			{"product_id": p.ID, "quantity": 6, "unit_cost": 120},
			{"product_id": 9999, "quantity": 1, "unit_cost": 10},
		},
	})
	assert.Equal(t, fiber.StatusBadRequest, status)

	// the first item's restock must have rolled back with the purchase
	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, 4, got.StockQuantity)

	var count int64
	require.NoError(t, db.Model(&models.Purchase{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSuggestedPurchases(t *testing.T) {
	db := testutil.OpenDB(t)
	app := newPurchasingApp(db)

	low := seedProduct(t, db, "Tea 250g", 2, 5)
	fine := seedProduct(t, db, "Rice 5kg", 30, 5)

	expired := seedProduct(t, db, "Curd", 10, 2)
	past := time.Now().AddDate(0, 0, -2)
	require.NoError(t, db.Model(expired).Update("expiry_date", past).Error)

	near := seedProduct(t, db, "Paneer", 10, 2)
	soon := time.Now().AddDate(0, 0, 3)
	require.NoError(t, db.Model(near).Update("expiry_date", soon).Error)

	resp, err := app.Test(httptest.NewRequest("GET", "/purchases/suggested", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		NearDays int                    `json:"near_days"`
		Rows     []SuggestedPurchaseRow `json:"rows"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, nearExpiryDays, out.NearDays)

	byID := map[uint]SuggestedPurchaseRow{}
	for _, r := range out.Rows {
		byID[r.ProductID] = r
	}

	require.Contains(t, byID, low.ID)
	assert.True(t, byID[low.ID].Low)
	// restock aims at twice the threshold: 2*5 - 2
	assert.Equal(t, 8, byID[low.ID].SuggestedQty)

	require.Contains(t, byID, expired.ID)
	assert.True(t, byID[expired.ID].Expired)
	assert.False(t, byID[expired.ID].NearExpiry)
	// already above twice the threshold, nothing to order
	assert.Equal(t, 0, byID[expired.ID].SuggestedQty)

	require.Contains(t, byID, near.ID)
	assert.True(t, byID[near.ID].NearExpiry)
	assert.False(t, byID[near.ID].Expired)

	assert.NotContains(t, byID, fine.ID)
}

func TestCreateWholesalerRequiresName(t *testing.T) {
	db := testutil.OpenDB(t)
	app := newPurchasingApp(db)

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(fiber.Map{"name": "   "}))
	req := httptest.NewRequest("POST", "/wholesalers", &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
