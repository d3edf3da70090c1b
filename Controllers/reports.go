package Controllers

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"Stockly/Models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ReportController handles the profit/loss reporting endpoints. Reports
// are pure reads over persisted sales and expenses; nothing here
// mutates state.
type ReportController struct {
	DB *gorm.DB
}

// NewReportController creates a new ReportController
func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db}
}

type SaleReportLine struct {
	SaleID        uint            `json:"saleId"`
	InvoiceNumber string          `json:"invoiceNumber"`
	Date          time.Time       `json:"date"`
	Customer      string          `json:"customer"`
	Product       string          `json:"product"`
	Quantity      int             `json:"quantity"`
	SalePrice     decimal.Decimal `json:"salePrice"`
	CostPrice     decimal.Decimal `json:"costPrice"`
	LineTotal     decimal.Decimal `json:"lineTotal"`
	PaymentStatus string          `json:"paymentStatus"`
}

type ExpenseReportLine struct {
	ExpenseID   uint            `json:"expenseId"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

type ProfitLossReport struct {
	TotalSalesAmount decimal.Decimal
	TotalCost        decimal.Decimal
	TotalExpenses    decimal.Decimal
	PendingAmount    decimal.Decimal
	Profit           decimal.Decimal
	ExpectedProfit   decimal.Decimal
	IncludeUnpaid    bool
	Sales            []SaleReportLine
	Expenses         []ExpenseReportLine
}

// reportWindow parses the inclusive date window from the query string.
func reportWindow(ctx *fiber.Ctx) (start, end time.Time, err error) {
	startParam := ctx.Query("startDate")
	endParam := ctx.Query("endDate")
	if startParam == "" || endParam == "" {
		return start, end, fmt.Errorf("startDate and endDate are required")
	}
	start, err = time.Parse("2006-01-02", startParam)
	if err != nil {
		return start, end, fmt.Errorf("invalid startDate. Use YYYY-MM-DD")
	}
	end, err = time.Parse("2006-01-02", endParam)
	if err != nil {
		return start, end, fmt.Errorf("invalid endDate. Use YYYY-MM-DD")
	}
	// Window runs through the end of endDate
	end = end.Add(24*time.Hour - time.Nanosecond)
	return start, end, nil
}

// buildProfitLoss aggregates in-window sales and expenses for one user.
// totalSalesAmount is realized cash (payment actually received on
// in-window sales), not invoiced total.
func (c *ReportController) buildProfitLoss(userID uint, start, end time.Time, customerID uint, includeUnpaid bool) (*ProfitLossReport, error) {
	salesQuery := c.DB.
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("item_order ASC")
		}).
		Preload("Items.Product").
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, start, end)
	if customerID != 0 {
		salesQuery = salesQuery.Where("customer_id = ?", customerID)
	}

	var sales []Models.Sale
	if err := salesQuery.Order("date ASC, id ASC").Find(&sales).Error; err != nil {
		return nil, err
	}

	var expenses []Models.Expense
	err := c.DB.
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, start, end).
		Order("date ASC, id ASC").
		Find(&expenses).Error
	if err != nil {
		return nil, err
	}

	report := &ProfitLossReport{
		IncludeUnpaid: includeUnpaid,
		Sales:         []SaleReportLine{},
		Expenses:      []ExpenseReportLine{},
	}

	for i := range sales {
		sale := &sales[i]
		sale.Derive()

		report.TotalSalesAmount = report.TotalSalesAmount.Add(sale.PaymentReceived)
		report.PendingAmount = report.PendingAmount.Add(sale.Balance)

		for _, item := range sale.Items {
			quantity := decimal.NewFromInt(int64(item.Quantity))
			report.TotalCost = report.TotalCost.Add(item.Product.CostPrice.Mul(quantity))

			report.Sales = append(report.Sales, SaleReportLine{
				SaleID:        sale.ID,
				InvoiceNumber: sale.InvoiceNumber,
				Date:          sale.Date,
				Customer:      sale.Customer.Name,
				Product:       item.Product.Name,
				Quantity:      item.Quantity,
				SalePrice:     item.SalePrice,
				CostPrice:     item.Product.CostPrice,
				LineTotal:     item.SalePrice.Mul(quantity),
				PaymentStatus: sale.PaymentStatus,
			})
		}
	}

	for _, expense := range expenses {
		report.TotalExpenses = report.TotalExpenses.Add(expense.Amount)
		report.Expenses = append(report.Expenses, ExpenseReportLine{
			ExpenseID:   expense.ID,
			Date:        expense.Date,
			Description: expense.Description,
			Amount:      expense.Amount,
		})
	}

	report.Profit = report.TotalSalesAmount.Sub(report.TotalCost).Sub(report.TotalExpenses)
	if includeUnpaid {
		report.ExpectedProfit = report.Profit.Add(report.PendingAmount)
	}

	return report, nil
}

// GetProfitLoss returns the profit/loss summary and line items for an
// inclusive date window, optionally filtered to one customer.
// GET /api/reports/profit-loss?startDate&endDate&customer&includeUnpaid
func (c *ReportController) GetProfitLoss(ctx *fiber.Ctx) error {
	user := currentUser(ctx)

	start, end, err := reportWindow(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	var customerID uint
	if customerParam := ctx.Query("customer"); customerParam != "" {
		parsed, err := strconv.Atoi(customerParam)
		if err != nil || parsed < 1 {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid customer ID",
			})
		}
		customerID = uint(parsed)
	}
	includeUnpaid, _ := strconv.ParseBool(ctx.Query("includeUnpaid", "false"))

	report, err := c.buildProfitLoss(user.ID, start, end, customerID, includeUnpaid)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to build report",
		})
	}

	response := fiber.Map{
		"success":          true,
		"totalSalesAmount": report.TotalSalesAmount,
		"totalCost":        report.TotalCost,
		"totalExpenses":    report.TotalExpenses,
		"pendingAmount":    report.PendingAmount,
		"profit":           report.Profit,
		"sales":            report.Sales,
		"expenses":         report.Expenses,
	}
	if includeUnpaid {
		response["expectedProfit"] = report.ExpectedProfit
	}

	return ctx.JSON(response)
}

// ExportProfitLoss streams the same report as an .xlsx attachment.
// GET /api/reports/profit-loss/export
func (c *ReportController) ExportProfitLoss(ctx *fiber.Ctx) error {
	user := currentUser(ctx)

	start, end, err := reportWindow(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	var customerID uint
	if customerParam := ctx.Query("customer"); customerParam != "" {
		parsed, err := strconv.Atoi(customerParam)
		if err != nil || parsed < 1 {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid customer ID",
			})
		}
		customerID = uint(parsed)
	}
	includeUnpaid, _ := strconv.ParseBool(ctx.Query("includeUnpaid", "false"))

	report, err := c.buildProfitLoss(user.ID, start, end, customerID, includeUnpaid)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to build report",
		})
	}

	buf, err := profitLossWorkbook(report, start, end)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to generate report file",
		})
	}

	filename := fmt.Sprintf("profit-loss_%s_%s.xlsx", start.Format("2006-01-02"), end.Format("2006-01-02"))
	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return ctx.Send(buf.Bytes())
}

// profitLossWorkbook renders the report into an Excel workbook with a
// summary sheet plus sale and expense line items.
func profitLossWorkbook(report *ProfitLossReport, start, end time.Time) (*bytes.Buffer, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6E6FA"},
			Pattern: 1,
		},
	})
	if err != nil {
		headerStyle = 0
	}

	// Summary sheet
	summary := "Summary"
	index, err := f.NewSheet(summary)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	rows := [][]interface{}{
		{"Period", fmt.Sprintf("%s - %s", start.Format("2006-01-02"), end.Format("2006-01-02"))},
		{"Total Sales (cash received)", report.TotalSalesAmount.InexactFloat64()},
		{"Total Cost of Goods", report.TotalCost.InexactFloat64()},
		{"Total Expenses", report.TotalExpenses.InexactFloat64()},
		{"Pending Amount", report.PendingAmount.InexactFloat64()},
		{"Profit", report.Profit.InexactFloat64()},
	}
	if report.IncludeUnpaid {
		rows = append(rows, []interface{}{"Expected Profit (incl. unpaid)", report.ExpectedProfit.InexactFloat64()})
	}
	for i, row := range rows {
		f.SetCellValue(summary, fmt.Sprintf("A%d", i+1), row[0])
		f.SetCellValue(summary, fmt.Sprintf("B%d", i+1), row[1])
	}
	f.SetColWidth(summary, "A", "A", 32)
	f.SetColWidth(summary, "B", "B", 24)

	// Sales sheet
	salesSheet := "Sales"
	if _, err := f.NewSheet(salesSheet); err != nil {
		return nil, fmt.Errorf("error creating sheet: %v", err)
	}
	saleHeaders := []string{
		"Invoice", "Date", "Customer", "Product", "Quantity",
		"Sale Price", "Cost Price", "Line Total", "Payment Status",
	}
	for i, header := range saleHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(salesSheet, cell, header)
	}
	if headerStyle != 0 {
		f.SetRowStyle(salesSheet, 1, 1, headerStyle)
	}
	for rowIndex, line := range report.Sales {
		row := rowIndex + 2
		values := []interface{}{
			line.InvoiceNumber,
			line.Date.Format("2006-01-02"),
			line.Customer,
			line.Product,
			line.Quantity,
			line.SalePrice.InexactFloat64(),
			line.CostPrice.InexactFloat64(),
			line.LineTotal.InexactFloat64(),
			line.PaymentStatus,
		}
		for colIndex, value := range values {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, row)
			f.SetCellValue(salesSheet, cell, value)
		}
	}
	for i := range saleHeaders {
		f.SetColWidth(salesSheet, string('A'+rune(i)), string('A'+rune(i)), 15)
	}

	// Expenses sheet
	expensesSheet := "Expenses"
	if _, err := f.NewSheet(expensesSheet); err != nil {
		return nil, fmt.Errorf("error creating sheet: %v", err)
	}
	expenseHeaders := []string{"Date", "Description", "Amount"}
	for i, header := range expenseHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(expensesSheet, cell, header)
	}
	if headerStyle != 0 {
		f.SetRowStyle(expensesSheet, 1, 1, headerStyle)
	}
	for rowIndex, line := range report.Expenses {
		row := rowIndex + 2
		values := []interface{}{
			line.Date.Format("2006-01-02"),
			line.Description,
			line.Amount.InexactFloat64(),
		}
		for colIndex, value := range values {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, row)
			f.SetCellValue(expensesSheet, cell, value)
		}
	}
	f.SetColWidth(expensesSheet, "B", "B", 40)

	f.DeleteSheet("Sheet1")

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("error writing Excel file to buffer: %v", err)
	}
	return &buf, nil
}
