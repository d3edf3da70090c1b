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

// ExpenseController handles expense CRUD, scoped to the caller.
type ExpenseController struct {
	DB *gorm.DB
}

// NewExpenseController creates a new ExpenseController
func NewExpenseController(db *gorm.DB) *ExpenseController {
	return &ExpenseController{DB: db}
}

type ExpenseInput struct {
	Description string          `json:"description" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
}

// CreateExpense records an expense.
// POST /api/expenses
func (c *ExpenseController) CreateExpense(ctx *fiber.Ctx) error {
	user := currentUser(ctx)

	var input ExpenseInput
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
	if input.Amount.IsNegative() {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Amount cannot be negative",
		})
	}

	date := time.Now()
	if input.Date != "" {
		parsed, err := time.Parse("2006-01-02", input.Date)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid date format. Use YYYY-MM-DD",
			})
		}
		date = parsed
	}

	expense := Models.Expense{
		Description: input.Description,
		Amount:      input.Amount,
		Date:        date,
		UserID:      user.ID,
	}
	if result := c.DB.Create(&expense); result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create expense",
		})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"expense": expense,
	})
}

// GetExpenses returns the caller's expenses, newest first.
// GET /api/expenses
func (c *ExpenseController) GetExpenses(ctx *fiber.Ctx) error {
	user := currentUser(ctx)

	expenses := []Models.Expense{}
	result := c.DB.Where("user_id = ?", user.ID).Order("date DESC, id DESC").Find(&expenses)
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to retrieve expenses",
		})
	}

	return ctx.JSON(fiber.Map{
		"success":  true,
		"expenses": expenses,
	})
}

// GetExpense returns one expense by ID.
// GET /api/expenses/:id
func (c *ExpenseController) GetExpense(ctx *fiber.Ctx) error {
	user := currentUser(ctx)

	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid expense ID",
		})
	}

	var expense Models.Expense
	result := c.DB.Where("user_id = ?", user.ID).First(&expense, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Expense not found",
			})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to retrieve expense",
		})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"expense": expense,
	})
}

// UpdateExpense updates an expense.
// PUT /api/expenses/:id
func (c *ExpenseController) UpdateExpense(ctx *fiber.Ctx) error {
	user := currentUser(ctx)

	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid expense ID",
		})
	}

	var expense Models.Expense
	result := c.DB.Where("user_id = ?", user.ID).First(&expense, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Expense not found",
			})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to retrieve expense",
		})
	}

	var input ExpenseInput
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
	if input.Amount.IsNegative() {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Amount cannot be negative",
		})
	}

	expense.Description = input.Description
	expense.Amount = input.Amount
	if input.Date != "" {
		parsed, err := time.Parse("2006-01-02", input.Date)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid date format. Use YYYY-MM-DD",
			})
		}
		expense.Date = parsed
	}

	if result := c.DB.Save(&expense); result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update expense",
		})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"expense": expense,
	})
}

// DeleteExpense removes an expense.
// DELETE /api/expenses/:id
func (c *ExpenseController) DeleteExpense(ctx *fiber.Ctx) error {
	user := currentUser(ctx)

	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid expense ID",
		})
	}

	var expense Models.Expense
	result := c.DB.Where("user_id = ?", user.ID).First(&expense, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Expense not found",
			})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to retrieve expense",
		})
	}

	if result := c.DB.Delete(&expense); result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to delete expense",
		})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Expense deleted",
	})
}
