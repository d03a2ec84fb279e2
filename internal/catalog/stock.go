package catalog

import (
	"errors"

	"kirana-backend/internal/models"

	"gorm.io/gorm"
)

// ErrInsufficientStock is returned when a decrement would drive stock negative.
var ErrInsufficientStock = errors.New("insufficient stock")

// DecrementStock takes qty units off a product's stock. The guard lives in the
// WHERE clause so two concurrent checkouts can never drive the quantity
// negative: if the row no longer has enough stock the update matches nothing
// and the caller's transaction rolls back.
func DecrementStock(db *gorm.DB, productID uint, qty int) error {
	if qty <= 0 {
		return errors.New("quantity must be greater than zero")
	}

	res := db.Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", productID, qty).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// AddStock puts qty units back, the exact reverse of DecrementStock. Used by
// order returns and wholesaler purchases.
func AddStock(db *gorm.DB, productID uint, qty int) error {
	if qty <= 0 {
		return errors.New("quantity must be greater than zero")
	}

	res := db.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
