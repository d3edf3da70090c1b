package Controllers_test

import (
	"fmt"
	"testing"

	"Stockly/Models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createSaleBody(customer uint, invoice string, items ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"customer":      customer,
		"invoiceNumber": invoice,
		"items":         items,
	}
}

func saleItem(product uint, quantity int, salePrice int64) map[string]interface{} {
	return map[string]interface{}{
		"product":   product,
		"quantity":  quantity,
		"salePrice": salePrice,
	}
}

func TestSaleLifecycle_CreatePayDelete(t *testing.T) {
	app, db, user := newTestApp(t)
	productA := seedProduct(t, db, "Soap", 10, 60, 100)
	customer := seedCustomer(t, db, user, "Alice")

	body := createSaleBody(customer.ID, "INV-001", saleItem(productA.ID, 3, 100))
	body["initialPayment"] = 150

	status, payload := doJSON(t, app, "POST", "/api/sales/", body)
	require.Equal(t, 201, status, "create failed: %v", payload)
	assert.Equal(t, true, payload["success"])

	assert.Equal(t, 7, stockOf(t, db, productA.ID))
	assert.EqualValues(t, 300, saleField(t, payload, "totalAmount"))
	assert.EqualValues(t, 150, saleField(t, payload, "paymentReceived"))
	assert.EqualValues(t, 150, saleField(t, payload, "balance"))
	assert.Equal(t, "partial", saleField(t, payload, "paymentStatus"))

	saleID := uint(saleField(t, payload, "ID").(float64))

	// Pay off the remainder
	status, payload = doJSON(t, app, "PATCH", fmt.Sprintf("/api/sales/%d/payment", saleID),
		map[string]interface{}{"amount": 150})
	require.Equal(t, 200, status)
	assert.EqualValues(t, 300, saleField(t, payload, "paymentReceived"))
	assert.EqualValues(t, 0, saleField(t, payload, "balance"))
	assert.Equal(t, "paid", saleField(t, payload, "paymentStatus"))

	// Delete restores the stock
	status, _ = doJSON(t, app, "DELETE", fmt.Sprintf("/api/sales/%d", saleID), nil)
	require.Equal(t, 200, status)
	assert.Equal(t, 10, stockOf(t, db, productA.ID))

	var count int64
	require.NoError(t, db.Model(&Models.Sale{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestCreateSale_ResolvesReferences(t *testing.T) {
	app, db, user := newTestApp(t)
	product := seedProduct(t, db, "Lamp", 5, 200, 350)
	customer := seedCustomer(t, db, user, "Bob")

	status, payload := doJSON(t, app, "POST", "/api/sales/",
		createSaleBody(customer.ID, "INV-002", saleItem(product.ID, 1, 350)))
	require.Equal(t, 201, status)

	resolvedCustomer := saleField(t, payload, "customer").(map[string]interface{})
	assert.Equal(t, "Bob", resolvedCustomer["name"])

	items := saleField(t, payload, "items").([]interface{})
	require.Len(t, items, 1)
	resolvedProduct := items[0].(map[string]interface{})["product"].(map[string]interface{})
	assert.Equal(t, "Lamp", resolvedProduct["name"])
}

func TestCreateSale_InsufficientStock_NoPartialDecrement(t *testing.T) {
	app, db, user := newTestApp(t)
	productA := seedProduct(t, db, "Soap", 5, 60, 100)
	productB := seedProduct(t, db, "Towel", 2, 30, 50)
	customer := seedCustomer(t, db, user, "Alice")

	status, payload := doJSON(t, app, "POST", "/api/sales/",
		createSaleBody(customer.ID, "INV-003",
			saleItem(productA.ID, 3, 100),
			saleItem(productB.ID, 5, 50)))
	require.Equal(t, 400, status)
	assert.Equal(t, false, payload["success"])

	// neither product moved
	assert.Equal(t, 5, stockOf(t, db, productA.ID))
	assert.Equal(t, 2, stockOf(t, db, productB.ID))
}

func TestCreateSale_DuplicateInvoice(t *testing.T) {
	app, db, user := newTestApp(t)
	product := seedProduct(t, db, "Soap", 10, 60, 100)
	customer := seedCustomer(t, db, user, "Alice")

	status, _ := doJSON(t, app, "POST", "/api/sales/",
		createSaleBody(customer.ID, "INV-004", saleItem(product.ID, 1, 100)))
	require.Equal(t, 201, status)

	status, payload := doJSON(t, app, "POST", "/api/sales/",
		createSaleBody(customer.ID, "INV-004", saleItem(product.ID, 1, 100)))
	require.Equal(t, 409, status)
	assert.Equal(t, false, payload["success"])

	// only the first sale reserved stock
	assert.Equal(t, 9, stockOf(t, db, product.ID))
}

func TestCreateSale_EmptyItems(t *testing.T) {
	app, db, user := newTestApp(t)
	customer := seedCustomer(t, db, user, "Alice")

	status, payload := doJSON(t, app, "POST", "/api/sales/", createSaleBody(customer.ID, "INV-005"))
	require.Equal(t, 400, status)
	assert.Equal(t, false, payload["success"])
}

func TestCreateSale_UnknownProduct(t *testing.T) {
	app, db, user := newTestApp(t)
	product := seedProduct(t, db, "Soap", 10, 60, 100)
	customer := seedCustomer(t, db, user, "Alice")

	status, _ := doJSON(t, app, "POST", "/api/sales/",
		createSaleBody(customer.ID, "INV-006",
			saleItem(product.ID, 2, 100),
			saleItem(9999, 1, 100)))
	require.Equal(t, 404, status)
	assert.Equal(t, 10, stockOf(t, db, product.ID))
}

func TestCreateSale_UnknownCustomer(t *testing.T) {
	app, db, _ := newTestApp(t)
	product := seedProduct(t, db, "Soap", 10, 60, 100)

	status, _ := doJSON(t, app, "POST", "/api/sales/",
		createSaleBody(9999, "INV-007", saleItem(product.ID, 1, 100)))
	require.Equal(t, 404, status)
}

func TestUpdateSalePayment_Accumulates(t *testing.T) {
	app, db, user := newTestApp(t)
	product := seedProduct(t, db, "Soap", 10, 60, 100)
	customer := seedCustomer(t, db, user, "Alice")

	status, payload := doJSON(t, app, "POST", "/api/sales/",
		createSaleBody(customer.ID, "INV-008", saleItem(product.ID, 5, 100)))
	require.Equal(t, 201, status)
	saleID := uint(saleField(t, payload, "ID").(float64))

	status, payload = doJSON(t, app, "PATCH", fmt.Sprintf("/api/sales/%d/payment", saleID),
		map[string]interface{}{"amount": 300})
	require.Equal(t, 200, status)
	assert.Equal(t, "partial", saleField(t, payload, "paymentStatus"))

	status, payload = doJSON(t, app, "PATCH", fmt.Sprintf("/api/sales/%d/payment", saleID),
		map[string]interface{}{"amount": 200})
	require.Equal(t, 200, status)
	assert.EqualValues(t, 500, saleField(t, payload, "paymentReceived"))
	assert.EqualValues(t, 0, saleField(t, payload, "balance"))
	assert.Equal(t, "paid", saleField(t, payload, "paymentStatus"))

	// the sale is settled, further payments are rejected
	status, payload = doJSON(t, app, "PATCH", fmt.Sprintf("/api/sales/%d/payment", saleID),
		map[string]interface{}{"amount": 1})
	require.Equal(t, 400, status)
	assert.Equal(t, false, payload["success"])
}

func TestUpdateSalePayment_Validation(t *testing.T) {
	app, db, user := newTestApp(t)
	product := seedProduct(t, db, "Soap", 10, 60, 100)
	customer := seedCustomer(t, db, user, "Alice")

	status, payload := doJSON(t, app, "POST", "/api/sales/",
		createSaleBody(customer.ID, "INV-009", saleItem(product.ID, 1, 100)))
	require.Equal(t, 201, status)
	saleID := uint(saleField(t, payload, "ID").(float64))

	status, _ = doJSON(t, app, "PATCH", fmt.Sprintf("/api/sales/%d/payment", saleID),
		map[string]interface{}{"amount": "not-a-number"})
	assert.Equal(t, 400, status)

	status, _ = doJSON(t, app, "PATCH", fmt.Sprintf("/api/sales/%d/payment", saleID),
		map[string]interface{}{"amount": -10})
	assert.Equal(t, 400, status)

	status, _ = doJSON(t, app, "PATCH", "/api/sales/9999/payment",
		map[string]interface{}{"amount": 10})
	assert.Equal(t, 404, status)
}

func TestUpdateSale_ReplacesItemsAndRestocks(t *testing.T) {
	app, db, user := newTestApp(t)
	product := seedProduct(t, db, "Soap", 10, 60, 100)
	customer := seedCustomer(t, db, user, "Alice")

	body := createSaleBody(customer.ID, "INV-010", saleItem(product.ID, 4, 100))
	body["initialPayment"] = 200
	status, payload := doJSON(t, app, "POST", "/api/sales/", body)
	require.Equal(t, 201, status)
	require.Equal(t, 6, stockOf(t, db, product.ID))
	saleID := uint(saleField(t, payload, "ID").(float64))

	// shrink the sale to 2 units: old 4 released, new 2 reserved
	status, payload = doJSON(t, app, "PUT", fmt.Sprintf("/api/sales/%d", saleID),
		map[string]interface{}{"items": []map[string]interface{}{saleItem(product.ID, 2, 100)}})
	require.Equal(t, 200, status)

	assert.Equal(t, 8, stockOf(t, db, product.ID))
	assert.EqualValues(t, 200, saleField(t, payload, "totalAmount"))
	// payment untouched by the edit, status recomputed against the new total
	assert.EqualValues(t, 200, saleField(t, payload, "paymentReceived"))
	assert.Equal(t, "paid", saleField(t, payload, "paymentStatus"))
}

func TestUpdateSale_PaidCanRevertToPartial(t *testing.T) {
	app, db, user := newTestApp(t)
	product := seedProduct(t, db, "Soap", 10, 60, 100)
	customer := seedCustomer(t, db, user, "Alice")

	body := createSaleBody(customer.ID, "INV-011", saleItem(product.ID, 1, 100))
	body["initialPayment"] = 100
	status, payload := doJSON(t, app, "POST", "/api/sales/", body)
	require.Equal(t, 201, status)
	require.Equal(t, "paid", saleField(t, payload, "paymentStatus"))
	saleID := uint(saleField(t, payload, "ID").(float64))

	status, payload = doJSON(t, app, "PUT", fmt.Sprintf("/api/sales/%d", saleID),
		map[string]interface{}{"items": []map[string]interface{}{saleItem(product.ID, 3, 100)}})
	require.Equal(t, 200, status)

	assert.EqualValues(t, 300, saleField(t, payload, "totalAmount"))
	assert.Equal(t, "partial", saleField(t, payload, "paymentStatus"))
	assert.EqualValues(t, 200, saleField(t, payload, "balance"))
}

func TestUpdateSale_InsufficientStock_RollsBackRelease(t *testing.T) {
	app, db, user := newTestApp(t)
	product := seedProduct(t, db, "Soap", 10, 60, 100)
	customer := seedCustomer(t, db, user, "Alice")

	status, payload := doJSON(t, app, "POST", "/api/sales/",
		createSaleBody(customer.ID, "INV-012", saleItem(product.ID, 4, 100)))
	require.Equal(t, 201, status)
	require.Equal(t, 6, stockOf(t, db, product.ID))
	saleID := uint(saleField(t, payload, "ID").(float64))

	// asking for more than exists fails, and the released stock is rolled back
	status, _ = doJSON(t, app, "PUT", fmt.Sprintf("/api/sales/%d", saleID),
		map[string]interface{}{"items": []map[string]interface{}{saleItem(product.ID, 20, 100)}})
	require.Equal(t, 400, status)

	assert.Equal(t, 6, stockOf(t, db, product.ID))

	var sale Models.Sale
	require.NoError(t, db.Preload("Items").First(&sale, saleID).Error)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, 4, sale.Items[0].Quantity)
}

func TestUpdateSale_EmptyItemsRejected(t *testing.T) {
	app, db, user := newTestApp(t)
	product := seedProduct(t, db, "Soap", 10, 60, 100)
	customer := seedCustomer(t, db, user, "Alice")

	status, payload := doJSON(t, app, "POST", "/api/sales/",
		createSaleBody(customer.ID, "INV-013", saleItem(product.ID, 1, 100)))
	require.Equal(t, 201, status)
	saleID := uint(saleField(t, payload, "ID").(float64))

	status, _ = doJSON(t, app, "PUT", fmt.Sprintf("/api/sales/%d", saleID),
		map[string]interface{}{"items": []map[string]interface{}{}})
	assert.Equal(t, 400, status)
}

func TestUpdateSale_DuplicateInvoiceRejected(t *testing.T) {
	app, db, user := newTestApp(t)
	product := seedProduct(t, db, "Soap", 10, 60, 100)
	customer := seedCustomer(t, db, user, "Alice")

	status, _ := doJSON(t, app, "POST", "/api/sales/",
		createSaleBody(customer.ID, "INV-014", saleItem(product.ID, 1, 100)))
	require.Equal(t, 201, status)

	status, payload := doJSON(t, app, "POST", "/api/sales/",
		createSaleBody(customer.ID, "INV-015", saleItem(product.ID, 1, 100)))
	require.Equal(t, 201, status)
	saleID := uint(saleField(t, payload, "ID").(float64))

	status, _ = doJSON(t, app, "PUT", fmt.Sprintf("/api/sales/%d", saleID),
		map[string]interface{}{"invoiceNumber": "INV-014"})
	assert.Equal(t, 409, status)
}

func TestDeleteSale_NotFound(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, payload := doJSON(t, app, "DELETE", "/api/sales/9999", nil)
	require.Equal(t, 404, status)
	assert.Equal(t, false, payload["success"])
}

func TestGetSales_NewestFirstAndScoped(t *testing.T) {
	app, db, user := newTestApp(t)
	product := seedProduct(t, db, "Soap", 50, 60, 100)
	customer := seedCustomer(t, db, user, "Alice")

	older := createSaleBody(customer.ID, "INV-016", saleItem(product.ID, 1, 100))
	older["saleDate"] = "2026-01-10"
	newer := createSaleBody(customer.ID, "INV-017", saleItem(product.ID, 1, 100))
	newer["saleDate"] = "2026-02-10"

	status, _ := doJSON(t, app, "POST", "/api/sales/", older)
	require.Equal(t, 201, status)
	status, _ = doJSON(t, app, "POST", "/api/sales/", newer)
	require.Equal(t, 201, status)

	// another user's sale must stay invisible
	other := Models.User{Name: "Other", Email: "other@example.com", Password: []byte("hash")}
	require.NoError(t, db.Create(&other).Error)
	otherCustomer := Models.Customer{Name: "Eve", UserID: other.ID}
	require.NoError(t, db.Create(&otherCustomer).Error)
	require.NoError(t, db.Create(&Models.Sale{
		InvoiceNumber: "INV-OTHER",
		CustomerID:    otherCustomer.ID,
		Date:          mustDate(t, "2026-03-01"),
		UserID:        other.ID,
		PaymentStatus: Models.PaymentStatusUnpaid,
	}).Error)

	status, payload := doJSON(t, app, "GET", "/api/sales/", nil)
	require.Equal(t, 200, status)

	sales := payload["sales"].([]interface{})
	require.Len(t, sales, 2)
	first := sales[0].(map[string]interface{})
	second := sales[1].(map[string]interface{})
	assert.Equal(t, "INV-017", first["invoiceNumber"])
	assert.Equal(t, "INV-016", second["invoiceNumber"])
}

func TestGetSales_Pagination(t *testing.T) {
	app, db, user := newTestApp(t)
	product := seedProduct(t, db, "Soap", 50, 60, 100)
	customer := seedCustomer(t, db, user, "Alice")

	for i := 0; i < 3; i++ {
		status, _ := doJSON(t, app, "POST", "/api/sales/",
			createSaleBody(customer.ID, fmt.Sprintf("INV-P%d", i), saleItem(product.ID, 1, 100)))
		require.Equal(t, 201, status)
	}

	status, payload := doJSON(t, app, "GET", "/api/sales/?page=1&limit=2", nil)
	require.Equal(t, 200, status)
	require.Len(t, payload["sales"].([]interface{}), 2)

	pagination := payload["pagination"].(map[string]interface{})
	assert.EqualValues(t, 3, pagination["total"])
	assert.EqualValues(t, 2, pagination["totalPages"])
}
