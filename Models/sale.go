package Models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment status values for a sale. The status is derived from
// paymentReceived vs totalAmount and only changes through the sale
// mutation paths (create, edit, record payment).
const (
	PaymentStatusUnpaid  = "unpaid"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
)

type Sale struct {
	gorm.Model
	InvoiceNumber   string          `json:"invoiceNumber" gorm:"size:100;not null;uniqueIndex"`
	CustomerID      uint            `json:"customerId" gorm:"not null;index"`
	InitialPayment  decimal.Decimal `json:"initialPayment" gorm:"type:decimal(12,2);not null"`
	PaymentReceived decimal.Decimal `json:"paymentReceived" gorm:"type:decimal(12,2);not null"`
	PaymentStatus   string          `json:"paymentStatus" gorm:"size:20;not null;default:unpaid;index"`
	Date            time.Time       `json:"date" gorm:"not null;index"`
	UserID          uint            `json:"-" gorm:"not null;index"`

	// Relationships
	Customer Customer   `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Items    []SaleItem `json:"items" gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`

	// Derived fields, recomputed from Items and PaymentReceived on every
	// read. Never persisted so they can't go stale.
	TotalAmount decimal.Decimal `json:"totalAmount" gorm:"-"`
	Balance     decimal.Decimal `json:"balance" gorm:"-"`
}

// SaleItem pins the price charged at sale time. Later edits to the
// product catalog do not touch historical sales.
type SaleItem struct {
	gorm.Model
	SaleID    uint            `json:"-" gorm:"not null;index"`
	ProductID uint            `json:"productId" gorm:"not null;index"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	SalePrice decimal.Decimal `json:"salePrice" gorm:"type:decimal(12,2);not null"`
	ItemOrder int             `json:"-" gorm:"not null;default:0"`

	// Relationship
	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// ComputeTotal sums quantity x salePrice over the sale's items.
func (s *Sale) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.SalePrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Derive fills the computed fields and refreshes the stored payment
// status from the current items and payment received.
func (s *Sale) Derive() {
	s.TotalAmount = s.ComputeTotal()
	s.Balance = s.TotalAmount.Sub(s.PaymentReceived)
	if s.Balance.IsNegative() {
		s.Balance = decimal.Zero
	}
	s.PaymentStatus = DerivePaymentStatus(s.PaymentReceived, s.TotalAmount)
}

// DerivePaymentStatus classifies a payment position:
// paid when received >= total, unpaid when nothing received, partial otherwise.
func DerivePaymentStatus(received, total decimal.Decimal) string {
	switch {
	case received.GreaterThanOrEqual(total):
		return PaymentStatusPaid
	case received.IsPositive():
		return PaymentStatusPartial
	default:
		return PaymentStatusUnpaid
	}
}
