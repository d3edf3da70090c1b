package Controllers

import (
	"errors"
	"strconv"

	"Stockly/Models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CustomerController handles customer CRUD, scoped to the caller.
type CustomerController struct {
	DB *gorm.DB
}

// NewCustomerController creates a new CustomerController
func NewCustomerController(db *gorm.DB) *CustomerController {
	return &CustomerController{DB: db}
}

type CustomerInput struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// CreateCustomer adds a customer.
// POST /api/customers
func (c *CustomerController) CreateCustomer(ctx *fiber.Ctx) error {
	user := currentUser(ctx)

	var input CustomerInput
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

	customer := Models.Customer{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Address: input.Address,
		UserID:  user.ID,
	}
	if result := c.DB.Create(&customer); result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create customer",
		})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"customer": customer,
	})
}

// GetCustomers returns the caller's customers, newest first.
// GET /api/customers
func (c *CustomerController) GetCustomers(ctx *fiber.Ctx) error {
	user := currentUser(ctx)

	customers := []Models.Customer{}
	result := c.DB.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&customers)
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to retrieve customers",
		})
	}

	return ctx.JSON(fiber.Map{
		"success":   true,
		"customers": customers,
	})
}

// GetCustomer returns one customer by ID.
// GET /api/customers/:id
func (c *CustomerController) GetCustomer(ctx *fiber.Ctx) error {
	user := currentUser(ctx)

	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid customer ID",
		})
	}

	var customer Models.Customer
	result := c.DB.Where("user_id = ?", user.ID).First(&customer, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Customer not found",
			})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to retrieve customer",
		})
	}

	return ctx.JSON(fiber.Map{
		"success":  true,
		"customer": customer,
	})
}

// UpdateCustomer updates a customer's contact fields.
// PUT /api/customers/:id
func (c *CustomerController) UpdateCustomer(ctx *fiber.Ctx) error {
	user := currentUser(ctx)

	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid customer ID",
		})
	}

	var customer Models.Customer
	result := c.DB.Where("user_id = ?", user.ID).First(&customer, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Customer not found",
			})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to retrieve customer",
		})
	}

	var input CustomerInput
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

	customer.Name = input.Name
	customer.Email = input.Email
	customer.Phone = input.Phone
	customer.Address = input.Address
	if result := c.DB.Save(&customer); result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update customer",
		})
	}

	return ctx.JSON(fiber.Map{
		"success":  true,
		"customer": customer,
	})
}

// DeleteCustomer removes a customer.
// DELETE /api/customers/:id
func (c *CustomerController) DeleteCustomer(ctx *fiber.Ctx) error {
	user := currentUser(ctx)

	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid customer ID",
		})
	}

	var customer Models.Customer
	result := c.DB.Where("user_id = ?", user.ID).First(&customer, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Customer not found",
			})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to retrieve customer",
		})
	}

	if result := c.DB.Delete(&customer); result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to delete customer",
		})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Customer deleted",
	})
}
