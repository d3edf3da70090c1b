package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"Stockly/Controllers"
	"Stockly/Models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Models.Migrate(db))
	return db
}

// newTestApp wires the business routes with the given user already
// authenticated, bypassing the jwt middleware.
func newTestApp(t *testing.T) (*fiber.App, *gorm.DB, Models.User) {
	db := newTestDB(t)

	user := Models.User{Name: "Owner", Email: "owner@example.com", Password: []byte("hash")}
	require.NoError(t, db.Create(&user).Error)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", user)
		return c.Next()
	})

	saleController := Controllers.NewSaleController(db)
	reportController := Controllers.NewReportController(db)
	productController := Controllers.NewProductController(db)
	customerController := Controllers.NewCustomerController(db)
	expenseController := Controllers.NewExpenseController(db)

	api := app.Group("/api")

	sales := api.Group("/sales")
	sales.Post("/", saleController.CreateSale)
	sales.Get("/", saleController.GetSales)
	sales.Put("/:id", saleController.UpdateSale)
	sales.Patch("/:id/payment", saleController.UpdateSalePayment)
	sales.Delete("/:id", saleController.DeleteSale)

	reports := api.Group("/reports")
	reports.Get("/profit-loss", reportController.GetProfitLoss)
	reports.Get("/profit-loss/export", reportController.ExportProfitLoss)

	products := api.Group("/products")
	products.Post("/", productController.CreateProduct)
	products.Get("/", productController.GetProducts)

	customers := api.Group("/customers")
	customers.Post("/", customerController.CreateCustomer)
	customers.Get("/", customerController.GetCustomers)

	expenses := api.Group("/expenses")
	expenses.Post("/", expenseController.CreateExpense)
	expenses.Get("/", expenseController.GetExpenses)

	return app, db, user
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, map[string]interface{}) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	payload := map[string]interface{}{}
	if strings.Contains(resp.Header.Get("Content-Type"), "json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	}
	return resp.StatusCode, payload
}

func doRaw(t *testing.T, app *fiber.App, method, path string) *http.Response {
	req := httptest.NewRequest(method, path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func seedProduct(t *testing.T, db *gorm.DB, name string, stock int, costPrice, salePrice int64) Models.Product {
	product := Models.Product{
		Name:        name,
		CostPrice:   decimal.NewFromInt(costPrice),
		SalePrice:   decimal.NewFromInt(salePrice),
		RetailPrice: decimal.NewFromInt(salePrice),
		Stock:       stock,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func seedCustomer(t *testing.T, db *gorm.DB, user Models.User, name string) Models.Customer {
	customer := Models.Customer{Name: name, UserID: user.ID}
	require.NoError(t, db.Create(&customer).Error)
	return customer
}

func stockOf(t *testing.T, db *gorm.DB, id uint) int {
	var product Models.Product
	require.NoError(t, db.First(&product, id).Error)
	return product.Stock
}

func saleField(t *testing.T, payload map[string]interface{}, field string) interface{} {
	sale, ok := payload["sale"].(map[string]interface{})
	require.True(t, ok, "response has no sale object")
	return sale[field]
}

func mustDate(t *testing.T, value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return parsed
}
