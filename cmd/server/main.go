package main

import (
	"log"
	"strings"

	"kirana-backend/internal/audit"
	"kirana-backend/internal/auth"
	"kirana-backend/internal/catalog"
	"kirana-backend/internal/config"
	"kirana-backend/internal/credit"
	"kirana-backend/internal/database"
	"kirana-backend/internal/expense"
	"kirana-backend/internal/models"
	"kirana-backend/internal/orders"
	"kirana-backend/internal/purchasing"
	"kirana-backend/internal/report"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()

	db, err := database.Init(cfg)
	if err != nil {
		log.Fatal(err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	// Product images are opaque blobs, served as-is
	app.Static("/product-images", cfg.ProductImagePath)

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-owner", auth.RegisterOwnerHandler(db))
	api.Post("/auth/login", auth.LoginHandler(db, cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler(db))

	// Catalog
	protected.Get("/categories", catalog.ListCategoriesHandler(db))
	protected.Get("/products", catalog.ListProductsHandler(db))
	protected.Get("/products/lookup", catalog.LookupProductHandler(db))
	protected.Get("/products/:id", catalog.GetProductHandler(db))

	// Orders / checkout
	protected.Post("/orders", orders.CheckoutHandler(db))
	protected.Get("/orders", orders.ListOrdersHandler(db))
	protected.Get("/orders/:id", orders.GetOrderHandler(db))
	protected.Post("/orders/:id/complete", orders.CompleteOrderHandler(db))
	protected.Post("/orders/:id/return", orders.ReturnOrderHandler(db))

	// Customers & udhari
	protected.Get("/customers", credit.ListCustomersHandler(db))
	protected.Post("/customers", credit.CreateCustomerHandler(db))
	protected.Put("/customers/:id", credit.UpdateCustomerHandler(db))
	protected.Post("/customers/:id/reminder", credit.MarkReminderSentHandler(db, cfg))
	protected.Post("/credits", credit.CreateCreditEntryHandler(db))
	protected.Get("/credits", credit.ListCreditEntriesHandler(db))
	protected.Get("/credits/outstanding", credit.OutstandingSummaryHandler(db, cfg))
	protected.Post("/credits/:id/settle", credit.SettleCreditEntryHandler(db))

	// Expenses
	protected.Get("/expense-categories", expense.ListExpenseCategoriesHandler())
	protected.Post("/expenses", expense.CreateExpenseHandler(db))
	protected.Get("/expenses", expense.ListExpensesHandler(db))
	protected.Get("/expenses/summary/monthly", expense.MonthlyExpenseSummaryHandler(db))

	// Wholesalers & purchases
	protected.Get("/wholesalers", purchasing.ListWholesalersHandler(db))
	protected.Post("/wholesalers", purchasing.CreateWholesalerHandler(db))
	protected.Post("/purchases", purchasing.CreatePurchaseHandler(db))
	protected.Get("/purchases", purchasing.ListPurchasesHandler(db))
	protected.Get("/purchases/suggested", purchasing.SuggestedPurchasesHandler(db))

	// Reports
	protected.Get("/reports/sales", report.SalesSummaryHandler(db))
	protected.Get("/reports/low-stock", report.LowStockReportHandler(db))
	protected.Get("/dashboard", report.DashboardHandler(db))

	// Owner-only back office
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleOwner))

	adminRoutes.Post("/staff", auth.CreateStaffHandler(db))

	adminRoutes.Post("/categories", catalog.CreateCategoryHandler(db))
	adminRoutes.Put("/categories/:id", catalog.UpdateCategoryHandler(db))
	adminRoutes.Delete("/categories/:id", catalog.DeleteCategoryHandler(db))

	adminRoutes.Post("/products", catalog.CreateProductHandler(db))
	adminRoutes.Put("/products/:id", catalog.UpdateProductHandler(db))
	adminRoutes.Delete("/products/:id", catalog.DeleteProductHandler(db))
	adminRoutes.Post("/products/:id/image", catalog.UploadProductImageHandler(db, cfg))

	adminRoutes.Delete("/orders/:id", orders.DeleteOrderHandler(db))
	adminRoutes.Delete("/customers/:id", credit.DeleteCustomerHandler(db))
	adminRoutes.Delete("/credits/:id", credit.DeleteCreditEntryHandler(db))
	adminRoutes.Delete("/expenses/:id", expense.DeleteExpenseHandler(db))

	adminRoutes.Get("/audit-logs", audit.ListAuditLogsHandler(db))

	log.Println("Server listening on port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
