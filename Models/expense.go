package Models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Expense struct {
	gorm.Model
	Description string          `json:"description" gorm:"not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Date        time.Time       `json:"date" gorm:"not null;index"`
	UserID      uint            `json:"-" gorm:"not null;index"`
}
