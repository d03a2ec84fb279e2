package report

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"kirana-backend/internal/models"
	"kirana-backend/internal/orders"
	"kirana-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newReportApp(db *gorm.DB) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Unexpected server error"})
		},
	})
	app.Get("/reports/sales", SalesSummaryHandler(db))
	app.Get("/reports/low-stock", LowStockReportHandler(db))
	app.Get("/dashboard", DashboardHandler(db))
	return app
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price, cost float64, stock, threshold int) *models.Product {
	t.Helper()
	p := models.Product{
		Name:             name,
		Price:            price,
		CostPrice:        cost,
		StockQuantity:    stock,
		ReorderThreshold: threshold,
		Unit:             "piece",
		IsActive:         true,
	}
	require.NoError(t, db.Create(&p).Error)
	return &p
}

func sellAndComplete(t *testing.T, db *gorm.DB, productID uint, qty int) *models.Order {
	t.Helper()
	order, err := orders.Checkout(db, orders.CheckoutInput{
		CustomerName: "Walk-in",
		Lines:        []orders.CheckoutLine{{ProductID: productID, Quantity: qty}},
	})
	require.NoError(t, err)
	completed, err := orders.CompleteOrder(db, order.ID)
	require.NoError(t, err)
	return completed
}

func window() (time.Time, time.Time) {
	now := time.Now()
	return now.Add(-time.Hour), now.Add(time.Hour)
}

func TestSalesTotals(t *testing.T) {
	db := testutil.OpenDB(t)
	tea := seedProduct(t, db, "Tea 250g", 120, 90, 50, 5)
	rice := seedProduct(t, db, "Rice 5kg", 320, 280, 20, 3)

	sellAndComplete(t, db, tea.ID, 2)  // revenue 240, profit 60
	sellAndComplete(t, db, rice.ID, 1) // revenue 320, profit 40

	from, to := window()
	revenue, profit, orderCount, err := SalesTotals(db, from, to)
	require.NoError(t, err)

	assert.Equal(t, 560.0, revenue)
	assert.Equal(t, 100.0, profit)
	assert.Equal(t, int64(2), orderCount)
}

func TestSalesTotalsExcludesPendingAndReturned(t *testing.T) {
	db := testutil.OpenDB(t)
	p := seedProduct(t, db, "Soap", 35, 28, 40, 5)

	// pending: stays out of the totals
	_, err := orders.Checkout(db, orders.CheckoutInput{
		CustomerName: "Anu",
		Lines:        []orders.CheckoutLine{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	// completed then returned: out as well
	completed := sellAndComplete(t, db, p.ID, 2)
	_, err = orders.ReturnOrder(db, completed.ID, nil, "")
	require.NoError(t, err)

	// only this one counts
	sellAndComplete(t, db, p.ID, 3)

	from, to := window()
	revenue, profit, orderCount, err := SalesTotals(db, from, to)
	require.NoError(t, err)

	assert.Equal(t, 3*35.0, revenue)
	assert.Equal(t, 3*(35.0-28.0), profit)
	assert.Equal(t, int64(1), orderCount)
}

func TestSalesTotalsEmptyWindow(t *testing.T) {
	db := testutil.OpenDB(t)

	from, to := window()
	revenue, profit, orderCount, err := SalesTotals(db, from, to)
	require.NoError(t, err)
	assert.Zero(t, revenue)
	assert.Zero(t, profit)
	assert.Zero(t, orderCount)
}

func TestExpenseTotal(t *testing.T) {
	db := testutil.OpenDB(t)
	now := time.Now()

	require.NoError(t, db.Create(&models.Expense{Category: models.ExpenseCategoryRent, Date: now, Amount: 12000}).Error)
	require.NoError(t, db.Create(&models.Expense{Category: models.ExpenseCategoryOther, Date: now, Amount: 300}).Error)
	// outside the window
	require.NoError(t, db.Create(&models.Expense{Category: models.ExpenseCategorySalary, Date: now.AddDate(0, -2, 0), Amount: 9000}).Error)

	from, to := window()
	total, err := ExpenseTotal(db, from, to)
	require.NoError(t, err)
	assert.Equal(t, 12300.0, total)
}

func TestSalesSummaryHandlerNetProfit(t *testing.T) {
	db := testutil.OpenDB(t)
	app := newReportApp(db)
	p := seedProduct(t, db, "Dal 1kg", 110, 95, 30, 5)

	sellAndComplete(t, db, p.ID, 4) // profit 60
	require.NoError(t, db.Create(&models.Expense{Category: models.ExpenseCategoryTransport, Date: time.Now(), Amount: 25}).Error)

	from, to := window()
	path := "/reports/sales?from=" + from.Format("2006-01-02") + "&to=" + to.Format("2006-01-02")
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out SalesSummaryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	assert.Equal(t, 440.0, out.Revenue)
	assert.Equal(t, 60.0, out.Profit)
	assert.Equal(t, 25.0, out.Expenses)
	assert.Equal(t, 35.0, out.NetProfit)
	assert.Equal(t, int64(1), out.OrderCount)
}

func TestSalesSummaryHandlerRejectsBadPeriod(t *testing.T) {
	app := newReportApp(testutil.OpenDB(t))

	for _, path := range []string{
		"/reports/sales?from=garbage",
		"/reports/sales?to=garbage",
		"/reports/sales?from=2026-08-10&to=2026-08-01",
	} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, path)
	}
}

func TestLowStockReport(t *testing.T) {
	db := testutil.OpenDB(t)
	app := newReportApp(db)

	seedProduct(t, db, "Tea 250g", 120, 90, 10, 5) // fine for now
	low := seedProduct(t, db, "Sugar 1kg", 45, 38, 4, 5)
	inactive := seedProduct(t, db, "Old stock", 10, 8, 0, 5)
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

	resp, err := app.Test(httptest.NewRequest("GET", "/reports/low-stock", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var rows []LowStockRow
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	require.Len(t, rows, 1)
	assert.Equal(t, low.ID, rows[0].ProductID)
	assert.Equal(t, 4, rows[0].StockQuantity)
}

func TestLowStockReportAfterSale(t *testing.T) {
	db := testutil.OpenDB(t)
	app := newReportApp(db)
	p := seedProduct(t, db, "Tea 250g", 120, 90, 10, 5)

	sellAndComplete(t, db, p.ID, 6) // 10 - 6 = 4, at or under the threshold

	resp, err := app.Test(httptest.NewRequest("GET", "/reports/low-stock", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var rows []LowStockRow
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	require.Len(t, rows, 1)
	assert.Equal(t, p.ID, rows[0].ProductID)
	assert.Equal(t, 4, rows[0].StockQuantity)
}

func TestDashboard(t *testing.T) {
	db := testutil.OpenDB(t)
	app := newReportApp(db)

	p := seedProduct(t, db, "Milk", 25, 21, 20, 5)
	sellAndComplete(t, db, p.ID, 2)

	// one pending order
	_, err := orders.Checkout(db, orders.CheckoutInput{
		CustomerName: "Raju",
		Lines:        []orders.CheckoutLine{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	cu := models.Customer{Name: "Ramesh", IsActive: true}
	require.NoError(t, db.Create(&cu).Error)
	require.NoError(t, db.Create(&models.CreditEntry{CustomerID: cu.ID, ItemName: "Atta", Quantity: 1, Amount: 450}).Error)
	require.NoError(t, db.Create(&models.CreditEntry{CustomerID: cu.ID, ItemName: "Ghee", Quantity: 1, Amount: 600, Settled: true}).Error)

	resp, err := app.Test(httptest.NewRequest("GET", "/dashboard", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Today struct {
			OrderCount int64   `json:"order_count"`
			Revenue    float64 `json:"revenue"`
		} `json:"today"`
		PendingOrders     int64   `json:"pending_orders"`
		LowStockProducts  int64   `json:"low_stock_products"`
		OutstandingCredit float64 `json:"outstanding_credit"`
		RecentOrders      []struct {
			ID     uint   `json:"id"`
			Status string `json:"status"`
		} `json:"recent_orders"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	assert.Equal(t, int64(1), out.Today.OrderCount)
	assert.Equal(t, 50.0, out.Today.Revenue)
	assert.Equal(t, int64(1), out.PendingOrders)
	assert.Equal(t, int64(0), out.LowStockProducts)
	assert.Equal(t, 450.0, out.OutstandingCredit)
	assert.Len(t, out.RecentOrders, 2)
}
