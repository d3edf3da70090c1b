package Models

import (
	"errors"

	"gorm.io/gorm"
)

// ErrInsufficientStock is returned when a reservation asks for more
// units than the product currently has.
var ErrInsufficientStock = errors.New("not enough stock available")

// ReserveStock decrements a product's stock by quantity. The decrement
// is conditional (stock >= quantity) in a single UPDATE, so two
// concurrent sales against the same product cannot both win the last
// units; the loser sees zero rows affected.
//
// Callers pass their open transaction so the reservation rolls back
// with the rest of the sale on failure.
func ReserveStock(tx *gorm.DB, productID uint, quantity int) error {
	result := tx.Model(&Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Zero rows means either the product is gone or the stock is short.
		var count int64
		if err := tx.Model(&Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrInsufficientStock
	}
	return nil
}

// ReleaseStock puts quantity units back on a product, undoing a prior
// reservation (sale delete, or the restore-old-items step of an edit).
// There is no upper-bound check: a release always reverses exactly what
// was reserved before.
func ReleaseStock(tx *gorm.DB, productID uint, quantity int) error {
	result := tx.Model(&Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	return result.Error
}
