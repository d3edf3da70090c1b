package Models

import (
	"gorm.io/gorm"
)

type Customer struct {
	gorm.Model
	Name    string `json:"name" gorm:"size:255;not null"`
	Email   string `json:"email" gorm:"size:255"`
	Phone   string `json:"phone" gorm:"size:50"`
	Address string `json:"address" gorm:"size:500"`
	UserID  uint   `json:"-" gorm:"not null;index"`
}
