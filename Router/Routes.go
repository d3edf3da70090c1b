package Router

import (
	"os"

	"Stockly/Controllers"
	"Stockly/Models"
	"Stockly/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize handlers
	productController := Controllers.NewProductController(db)
	customerController := Controllers.NewCustomerController(db)
	expenseController := Controllers.NewExpenseController(db)
	saleController := Controllers.NewSaleController(db)
	reportController := Controllers.NewReportController(db)

	// API group
	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", Controllers.Register)
	auth.Post("/login", Controllers.Login)
	auth.Post("/logout", Controllers.Logout)
	auth.Get("/user", middleware.Verify(), Controllers.CurrentUser)

	// Product catalog routes
	products := api.Group("/products", middleware.Verify())
	products.Post("/", productController.CreateProduct)
	products.Get("/", productController.GetProducts)
	products.Get("/:id", productController.GetProduct)
	products.Put("/:id", productController.UpdateProduct)
	products.Delete("/:id", productController.DeleteProduct)

	// Customer routes
	customers := api.Group("/customers", middleware.Verify())
	customers.Post("/", customerController.CreateCustomer)
	customers.Get("/", customerController.GetCustomers)
	customers.Get("/:id", customerController.GetCustomer)
	customers.Put("/:id", customerController.UpdateCustomer)
	customers.Delete("/:id", customerController.DeleteCustomer)

	// Expense routes
	expenses := api.Group("/expenses", middleware.Verify())
	expenses.Post("/", expenseController.CreateExpense)
	expenses.Get("/", expenseController.GetExpenses)
	expenses.Get("/:id", expenseController.GetExpense)
	expenses.Put("/:id", expenseController.UpdateExpense)
	expenses.Delete("/:id", expenseController.DeleteExpense)

	// Sale lifecycle routes
	sales := api.Group("/sales", middleware.Verify())
	sales.Post("/", saleController.CreateSale)
	sales.Get("/", saleController.GetSales)
	sales.Put("/:id", saleController.UpdateSale)
	sales.Patch("/:id/payment", saleController.UpdateSalePayment)
	sales.Delete("/:id", saleController.DeleteSale)

	// Report routes
	reports := api.Group("/reports", middleware.Verify())
	reports.Get("/profit-loss", reportController.GetProfitLoss)
	reports.Get("/profit-loss/export", reportController.ExportProfitLoss)
}

func Serve() {
	app := fiber.New()

	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression,
	}))

	origins := os.Getenv("FRONTEND_URL")
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           300,
	}))

	SetupRoutes(app, Models.DB)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8008"
	}
	log.Info().Str("port", port).Msg("Server up")
	if err := app.Listen(":" + port); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
