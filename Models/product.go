package Models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	gorm.Model
	Name        string          `json:"name" gorm:"size:255;not null;index"`
	Description string          `json:"description" gorm:"type:text"`
	Category    string          `json:"category" gorm:"size:100;default:General"`
	CostPrice   decimal.Decimal `json:"costPrice" gorm:"type:decimal(12,2);not null"`
	SalePrice   decimal.Decimal `json:"salePrice" gorm:"type:decimal(12,2);not null"`
	RetailPrice decimal.Decimal `json:"retailPrice" gorm:"type:decimal(12,2);not null"`
	Stock       int             `json:"stock" gorm:"not null;default:0"`
	BatchNumber string          `json:"batchNumber" gorm:"size:100"`

	ExpirationDate *time.Time `json:"expirationDate"`
	DatePurchased  *time.Time `json:"datePurchased"`
}
