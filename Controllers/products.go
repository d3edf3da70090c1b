package Controllers

import (
	"errors"
	"strconv"
	"time"

	"Stockly/Models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductController handles product catalog endpoints. Direct stock
// edits through here are allowed; sales go through the stock ledger.
type ProductController struct {
	DB *gorm.DB
}

// NewProductController creates a new ProductController
func NewProductController(db *gorm.DB) *ProductController {
	return &ProductController{DB: db}
}

type ProductInput struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	CostPrice   decimal.Decimal `json:"costPrice"`
	SalePrice   decimal.Decimal `json:"salePrice"`
	RetailPrice decimal.Decimal `json:"retailPrice"`
	Stock       int             `json:"stock"`
	BatchNumber string          `json:"batchNumber"`

	ExpirationDate string `json:"expirationDate"`
	DatePurchased  string `json:"datePurchased"`
}

func (in *ProductInput) validatePrices() string {
	if in.CostPrice.IsNegative() || in.SalePrice.IsNegative() || in.RetailPrice.IsNegative() {
		return "Prices cannot be negative"
	}
	if in.Stock < 0 {
		return "Stock cannot be negative"
	}
	return ""
}

func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// CreateProduct adds a product to the catalog.
// POST /api/products
func (c *ProductController) CreateProduct(ctx *fiber.Ctx) error {
	var input ProductInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Cannot parse JSON",
		})
	}
	if err := validate.Struct(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}
	if msg := input.validatePrices(); msg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": msg,
		})
	}

	expirationDate, err := parseOptionalDate(input.ExpirationDate)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid expirationDate format. Use YYYY-MM-DD",
		})
	}
	datePurchased, err := parseOptionalDate(input.DatePurchased)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid datePurchased format. Use YYYY-MM-DD",
		})
	}

	category := input.Category
	if category == "" {
		category = "General"
	}

	product := Models.Product{
		Name:           input.Name,
		Description:    input.Description,
		Category:       category,
		CostPrice:      input.CostPrice,
		SalePrice:      input.SalePrice,
		RetailPrice:    input.RetailPrice,
		Stock:          input.Stock,
		BatchNumber:    input.BatchNumber,
		ExpirationDate: expirationDate,
		DatePurchased:  datePurchased,
	}
	if result := c.DB.Create(&product); result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create product",
		})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"product": product,
	})
}

// GetProducts returns the full catalog.
// GET /api/products
func (c *ProductController) GetProducts(ctx *fiber.Ctx) error {
	products := []Models.Product{}
	if result := c.DB.Order("name ASC").Find(&products); result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to retrieve products",
		})
	}

	return ctx.JSON(fiber.Map{
		"success":  true,
		"products": products,
	})
}

// GetProduct returns a single product by ID.
// GET /api/products/:id
func (c *ProductController) GetProduct(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid product ID",
		})
	}

	var product Models.Product
	if result := c.DB.First(&product, id); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Product not found",
			})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to retrieve product",
		})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"product": product,
	})
}

// UpdateProduct updates a product's catalog fields.
// PUT /api/products/:id
func (c *ProductController) UpdateProduct(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid product ID",
		})
	}

	var product Models.Product
	if result := c.DB.First(&product, id); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Product not found",
			})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to retrieve product",
		})
	}

	var input ProductInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Cannot parse JSON",
		})
	}
	if err := validate.Struct(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}
	if msg := input.validatePrices(); msg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": msg,
		})
	}

	expirationDate, err := parseOptionalDate(input.ExpirationDate)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid expirationDate format. Use YYYY-MM-DD",
		})
	}
	datePurchased, err := parseOptionalDate(input.DatePurchased)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid datePurchased format. Use YYYY-MM-DD",
		})
	}

	product.Name = input.Name
	product.Description = input.Description
	if input.Category != "" {
		product.Category = input.Category
	}
	product.CostPrice = input.CostPrice
	product.SalePrice = input.SalePrice
	product.RetailPrice = input.RetailPrice
	product.Stock = input.Stock
	product.BatchNumber = input.BatchNumber
	product.ExpirationDate = expirationDate
	product.DatePurchased = datePurchased

	if result := c.DB.Save(&product); result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update product",
		})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"product": product,
	})
}

// DeleteProduct removes a product from the catalog.
// DELETE /api/products/:id
func (c *ProductController) DeleteProduct(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid product ID",
		})
	}

	var product Models.Product
	if result := c.DB.First(&product, id); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Product not found",
			})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to retrieve product",
		})
	}

	if result := c.DB.Delete(&product); result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to delete product",
		})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Product deleted",
	})
}
