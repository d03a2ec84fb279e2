package models

import "time"

type Wholesaler struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:150;not null;index"`
	Phone     string `gorm:"size:20"`
	Email     string `gorm:"size:100"`
	Address   string `gorm:"size:255"`
	Notes     string `gorm:"size:500"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Purchase - a restock bought from a wholesaler. Recording one increments
// product stock and refreshes cost/selling prices.
type Purchase struct {
	ID           uint           `gorm:"primaryKey"`
	WholesalerID uint           `gorm:"index;not null"`
	Wholesaler   Wholesaler     `gorm:"foreignKey:WholesalerID"`
	Date         time.Time      `gorm:"index;not null"`
	Items        []PurchaseItem `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type PurchaseItem struct {
	ID         uint    `gorm:"primaryKey"`
	PurchaseID uint    `gorm:"index;not null"`
	ProductID  uint    `gorm:"index;not null"`
	Product    Product `gorm:"foreignKey:ProductID"`
	Quantity   int     `gorm:"not null"`
	UnitCost   float64 `gorm:"not null"`
	ExpiryDate *time.Time
	CreatedAt  time.Time
}
