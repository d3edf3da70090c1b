package Controllers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"Stockly/Models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleController owns the sale lifecycle. It is the only place that
// mutates sales and, through the stock ledger, product stock.
type SaleController struct {
	DB *gorm.DB
}

// NewSaleController creates a new SaleController
func NewSaleController(db *gorm.DB) *SaleController {
	return &SaleController{DB: db}
}

type SaleItemInput struct {
	Product   uint            `json:"product" validate:"required"`
	Quantity  int             `json:"quantity" validate:"required,min=1"`
	SalePrice decimal.Decimal `json:"salePrice"`
}

type CreateSaleInput struct {
	Customer       uint            `json:"customer" validate:"required"`
	Items          []SaleItemInput `json:"items" validate:"required,min=1,dive"`
	InvoiceNumber  string          `json:"invoiceNumber" validate:"required"`
	InitialPayment decimal.Decimal `json:"initialPayment"`
	SaleDate       string          `json:"saleDate"`
}

type UpdateSaleInput struct {
	Customer      *uint            `json:"customer"`
	Items         *[]SaleItemInput `json:"items"`
	InvoiceNumber *string          `json:"invoiceNumber"`
	SaleDate      *string          `json:"saleDate"`
}

type UpdatePaymentInput struct {
	Amount decimal.Decimal `json:"amount"`
}

// salePreloads resolves the customer and each item's product for display.
func salePreloads(db *gorm.DB) *gorm.DB {
	return db.Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("item_order ASC")
		}).
		Preload("Items.Product")
}

// CreateSale creates a multi-item sale, reserving stock for every item.
// All items are validated before any stock moves, and the whole
// operation runs inside one transaction so a failure leaves no partial
// stock decrement.
// POST /api/sales
func (c *SaleController) CreateSale(ctx *fiber.Ctx) error {
	user := currentUser(ctx)

	var input CreateSaleInput
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
	for _, item := range input.Items {
		if item.SalePrice.IsNegative() {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Item salePrice cannot be negative",
			})
		}
	}
	if input.InitialPayment.IsNegative() {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "initialPayment cannot be negative",
		})
	}

	saleDate := time.Now()
	if input.SaleDate != "" {
		parsed, err := time.Parse("2006-01-02", input.SaleDate)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid saleDate format. Use YYYY-MM-DD",
			})
		}
		saleDate = parsed
	}

	tx := c.DB.Begin()
	if tx.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to start transaction",
		})
	}

	var customer Models.Customer
	if err := tx.Where("id = ? AND user_id = ?", input.Customer, user.ID).First(&customer).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Customer not found",
			})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to look up customer",
		})
	}

	var duplicates int64
	if err := tx.Model(&Models.Sale{}).Where("invoice_number = ?", input.InvoiceNumber).Count(&duplicates).Error; err != nil {
		tx.Rollback()
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to check invoice number",
		})
	}
	if duplicates > 0 {
		tx.Rollback()
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "An invoice with this number already exists",
		})
	}

	// Validate every item before touching any stock
	for _, item := range input.Items {
		var product Models.Product
		if err := tx.First(&product, item.Product).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"success": false,
					"message": fmt.Sprintf("Product %d not found", item.Product),
				})
			}
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to look up product",
			})
		}
		if product.Stock < item.Quantity {
			tx.Rollback()
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": fmt.Sprintf("Not enough stock available for %s", product.Name),
			})
		}
	}

	// Reserve stock for every item
	for _, item := range input.Items {
		if err := Models.ReserveStock(tx, item.Product, item.Quantity); err != nil {
			tx.Rollback()
			return stockErrorResponse(ctx, err)
		}
	}

	sale := Models.Sale{
		InvoiceNumber:   input.InvoiceNumber,
		CustomerID:      customer.ID,
		InitialPayment:  input.InitialPayment,
		PaymentReceived: input.InitialPayment,
		Date:            saleDate,
		UserID:          user.ID,
	}
	for i, item := range input.Items {
		sale.Items = append(sale.Items, Models.SaleItem{
			ProductID: item.Product,
			Quantity:  item.Quantity,
			SalePrice: item.SalePrice,
			ItemOrder: i + 1,
		})
	}
	sale.PaymentStatus = Models.DerivePaymentStatus(sale.PaymentReceived, sale.ComputeTotal())

	if err := tx.Create(&sale).Error; err != nil {
		tx.Rollback()
		if strings.Contains(err.Error(), "UNIQUE constraint") ||
			strings.Contains(err.Error(), "unique constraint") {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": "An invoice with this number already exists",
			})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create sale",
		})
	}

	if err := tx.Commit().Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to commit transaction",
		})
	}

	var created Models.Sale
	if err := salePreloads(c.DB).First(&created, sale.ID).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to load created sale",
		})
	}
	created.Derive()

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"sale":    created,
	})
}

// GetSales returns the caller's sales newest-first, with customer and
// product references resolved. Pagination via page/limit is optional;
// without it the full list is returned.
// GET /api/sales
func (c *SaleController) GetSales(ctx *fiber.Ctx) error {
	user := currentUser(ctx)

	query := salePreloads(c.DB).
		Where("user_id = ?", user.ID).
		Order("date DESC, id DESC")

	paginated := ctx.Query("page") != "" || ctx.Query("limit") != ""
	if paginated {
		page, _ := strconv.Atoi(ctx.Query("page", "1"))
		limit, _ := strconv.Atoi(ctx.Query("limit", "20"))
		if page < 1 {
			page = 1
		}
		if limit < 1 || limit > 100 {
			limit = 20
		}

		var total int64
		c.DB.Model(&Models.Sale{}).Where("user_id = ?", user.ID).Count(&total)

		sales := []Models.Sale{}
		if err := query.Offset((page - 1) * limit).Limit(limit).Find(&sales).Error; err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to retrieve sales",
			})
		}
		for i := range sales {
			sales[i].Derive()
		}

		return ctx.JSON(fiber.Map{
			"success": true,
			"sales":   sales,
			"pagination": fiber.Map{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": (total + int64(limit) - 1) / int64(limit),
			},
		})
	}

	sales := []Models.Sale{}
	if err := query.Find(&sales).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to retrieve sales",
		})
	}
	for i := range sales {
		sales[i].Derive()
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"sales":   sales,
	})
}

// UpdateSalePayment records an additional payment against a sale. The
// amount is an increment, and the running total may not exceed the
// sale's totalAmount.
// PATCH /api/sales/:id/payment
func (c *SaleController) UpdateSalePayment(ctx *fiber.Ctx) error {
	user := currentUser(ctx)

	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid sale ID",
		})
	}

	var input UpdatePaymentInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid payment amount",
		})
	}
	if !input.Amount.IsPositive() {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Payment amount must be greater than zero",
		})
	}

	var sale Models.Sale
	if err := salePreloads(c.DB).Where("user_id = ?", user.ID).First(&sale, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Sale not found",
			})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to look up sale",
		})
	}

	total := sale.ComputeTotal()
	received := sale.PaymentReceived.Add(input.Amount)
	if received.GreaterThan(total) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Payment exceeds the outstanding balance",
		})
	}

	status := Models.DerivePaymentStatus(received, total)
	err = c.DB.Model(&Models.Sale{}).Where("id = ?", sale.ID).Updates(map[string]interface{}{
		"payment_received": received,
		"payment_status":   status,
	}).Error
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to record payment",
		})
	}

	var updated Models.Sale
	if err := salePreloads(c.DB).First(&updated, sale.ID).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to load sale",
		})
	}
	updated.Derive()

	return ctx.JSON(fiber.Map{
		"success": true,
		"sale":    updated,
	})
}

// UpdateSale edits a sale. When items change, the old reservation is
// released, the new items are validated and reserved, and the item rows
// are replaced, all inside one transaction: a failed validation rolls
// the released stock back too. Payment received is never altered by an
// edit, but the status is recomputed against the new total.
// PUT /api/sales/:id
func (c *SaleController) UpdateSale(ctx *fiber.Ctx) error {
	user := currentUser(ctx)

	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid sale ID",
		})
	}

	var input UpdateSaleInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Cannot parse JSON",
		})
	}
	if input.Items != nil {
		if len(*input.Items) == 0 {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Sale must contain at least one item",
			})
		}
		for _, item := range *input.Items {
			if item.Product == 0 || item.Quantity < 1 {
				return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"success": false,
					"message": "Each item needs a product and a quantity of at least 1",
				})
			}
			if item.SalePrice.IsNegative() {
				return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"success": false,
					"message": "Item salePrice cannot be negative",
				})
			}
		}
	}
	if input.InvoiceNumber != nil && *input.InvoiceNumber == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invoiceNumber cannot be empty",
		})
	}

	var saleDate *time.Time
	if input.SaleDate != nil {
		parsed, err := time.Parse("2006-01-02", *input.SaleDate)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid saleDate format. Use YYYY-MM-DD",
			})
		}
		saleDate = &parsed
	}

	tx := c.DB.Begin()
	if tx.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to start transaction",
		})
	}

	var sale Models.Sale
	if err := tx.Preload("Items").Where("user_id = ?", user.ID).First(&sale, id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Sale not found",
			})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to look up sale",
		})
	}

	updates := map[string]interface{}{}

	if input.Customer != nil {
		var customer Models.Customer
		if err := tx.Where("id = ? AND user_id = ?", *input.Customer, user.ID).First(&customer).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"success": false,
					"message": "Customer not found",
				})
			}
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to look up customer",
			})
		}
		updates["customer_id"] = customer.ID
	}

	if input.InvoiceNumber != nil && *input.InvoiceNumber != sale.InvoiceNumber {
		var duplicates int64
		if err := tx.Model(&Models.Sale{}).
			Where("invoice_number = ? AND id <> ?", *input.InvoiceNumber, sale.ID).
			Count(&duplicates).Error; err != nil {
			tx.Rollback()
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to check invoice number",
			})
		}
		if duplicates > 0 {
			tx.Rollback()
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": "An invoice with this number already exists",
			})
		}
		updates["invoice_number"] = *input.InvoiceNumber
	}

	if saleDate != nil {
		updates["date"] = *saleDate
	}

	if input.Items != nil {
		// Undo the old reservation first so the new items can draw on it
		for _, item := range sale.Items {
			if err := Models.ReleaseStock(tx, item.ProductID, item.Quantity); err != nil {
				tx.Rollback()
				return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"success": false,
					"message": "Failed to restore stock",
				})
			}
		}

		// Validate every new item before touching any stock
		for _, item := range *input.Items {
			var product Models.Product
			if err := tx.First(&product, item.Product).Error; err != nil {
				tx.Rollback()
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
						"success": false,
						"message": fmt.Sprintf("Product %d not found", item.Product),
					})
				}
				return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"success": false,
					"message": "Failed to look up product",
				})
			}
			if product.Stock < item.Quantity {
				tx.Rollback()
				return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"success": false,
					"message": fmt.Sprintf("Not enough stock available for %s", product.Name),
				})
			}
		}

		// Reserve the new items
		for _, item := range *input.Items {
			if err := Models.ReserveStock(tx, item.Product, item.Quantity); err != nil {
				tx.Rollback()
				return stockErrorResponse(ctx, err)
			}
		}

		// Replace the item rows
		if err := tx.Unscoped().Where("sale_id = ?", sale.ID).Delete(&Models.SaleItem{}).Error; err != nil {
			tx.Rollback()
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to replace sale items",
			})
		}
		newItems := make([]Models.SaleItem, 0, len(*input.Items))
		for i, item := range *input.Items {
			newItems = append(newItems, Models.SaleItem{
				SaleID:    sale.ID,
				ProductID: item.Product,
				Quantity:  item.Quantity,
				SalePrice: item.SalePrice,
				ItemOrder: i + 1,
			})
		}
		if err := tx.Create(&newItems).Error; err != nil {
			tx.Rollback()
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to replace sale items",
			})
		}
		sale.Items = newItems
	}

	// Payment itself is untouched by an edit; the status follows the new total
	updates["payment_status"] = Models.DerivePaymentStatus(sale.PaymentReceived, sale.ComputeTotal())

	if err := tx.Model(&Models.Sale{}).Where("id = ?", sale.ID).Updates(updates).Error; err != nil {
		tx.Rollback()
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update sale",
		})
	}

	if err := tx.Commit().Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to commit transaction",
		})
	}

	var updated Models.Sale
	if err := salePreloads(c.DB).First(&updated, sale.ID).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to load sale",
		})
	}
	updated.Derive()

	return ctx.JSON(fiber.Map{
		"success": true,
		"sale":    updated,
	})
}

// DeleteSale removes a sale and puts every item's quantity back on stock.
// DELETE /api/sales/:id
func (c *SaleController) DeleteSale(ctx *fiber.Ctx) error {
	user := currentUser(ctx)

	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid sale ID",
		})
	}

	tx := c.DB.Begin()
	if tx.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to start transaction",
		})
	}

	var sale Models.Sale
	if err := tx.Preload("Items").Where("user_id = ?", user.ID).First(&sale, id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Sale not found",
			})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to look up sale",
		})
	}

	for _, item := range sale.Items {
		if err := Models.ReleaseStock(tx, item.ProductID, item.Quantity); err != nil {
			tx.Rollback()
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to restore stock",
			})
		}
	}

	if err := tx.Unscoped().Where("sale_id = ?", sale.ID).Delete(&Models.SaleItem{}).Error; err != nil {
		tx.Rollback()
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to delete sale items",
		})
	}
	if err := tx.Unscoped().Delete(&sale).Error; err != nil {
		tx.Rollback()
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to delete sale",
		})
	}

	if err := tx.Commit().Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to commit transaction",
		})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Sale deleted and stock restored",
	})
}

// stockErrorResponse maps stock ledger failures after the validate pass.
// A reservation can still lose the race to a concurrent request, which
// surfaces here as insufficient stock.
func stockErrorResponse(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Product not found",
		})
	case errors.Is(err, Models.ErrInsufficientStock):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Not enough stock available",
		})
	default:
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to reserve stock",
		})
	}
}
