package models

import "time"

type Product struct {
	ID          uint      `gorm:"primaryKey"`
	CategoryID  *uint     `gorm:"index"`
	Category    *Category `gorm:"foreignKey:CategoryID"`
	Name        string    `gorm:"size:200;not null"`
	Description string    `gorm:"size:500"`
	ImagePath   string    `gorm:"size:255"` // relative path under the configured image dir

	Price         float64 `gorm:"not null"`           // selling price per unit
	CostPrice     float64 `gorm:"not null;default:0"` // wholesale cost per unit
	DiscountPrice float64 `gorm:"not null;default:0"` // flat discount per unit

	StockQuantity    int     `gorm:"not null;default:0"`
	ReorderThreshold int     `gorm:"not null;default:5"`
	TaxRatePercent   float64 `gorm:"not null;default:0"` // GST percentage, e.g. 5.00
	Barcode          *string `gorm:"size:64;uniqueIndex"`
	Unit             string  `gorm:"size:30;not null;default:piece"` // kg, piece, packet etc.
	ExpiryDate       *time.Time
	IsActive         bool `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LowStock reports whether the product is at or below its reorder threshold.
func (p *Product) LowStock() bool {
	return p.StockQuantity <= p.ReorderThreshold
}
