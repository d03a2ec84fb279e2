package models

import "time"

// CreditEntry - an item a customer took on credit (udhari).
// Each entry is binary settled/unsettled; there is no partial payment tracking.
type CreditEntry struct {
	ID          uint      `gorm:"primaryKey"`
	CustomerID  uint      `gorm:"index;not null"`
	Customer    Customer  `gorm:"foreignKey:CustomerID"`
	ProductID   *uint     `gorm:"index"` // optional catalog link
	Product     *Product  `gorm:"foreignKey:ProductID"`
	ItemName    string    `gorm:"size:200;not null"`
	Quantity    int       `gorm:"not null;default:1"`
	Amount      float64   `gorm:"not null"`
	DateTaken   time.Time `gorm:"index;not null"`
	Settled     bool      `gorm:"not null;default:false;index"`
	DateSettled *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
