package models

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusReturned  OrderStatus = "returned"
)

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodUPI  PaymentMethod = "upi"
)

type Order struct {
	ID            uint           `gorm:"primaryKey"`
	CustomerName  string         `gorm:"size:150;not null"`
	CustomerPhone string         `gorm:"size:20"`
	Status        OrderStatus    `gorm:"type:varchar(20);not null;index;default:pending"`
	Total         float64        `gorm:"not null"` // sum of line subtotals at checkout time
	Lines         []OrderLine    `gorm:"foreignKey:OrderID"`
	Payments      []OrderPayment `gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type OrderLine struct {
	ID             uint    `gorm:"primaryKey"`
	OrderID        uint    `gorm:"index;not null"`
	ProductID      uint    `gorm:"index;not null"`
	Product        Product `gorm:"foreignKey:ProductID"`
	Quantity       int     `gorm:"not null"`
	UnitPrice      float64 `gorm:"not null"` // price snapshot at sale time
	DiscountAmount float64 `gorm:"not null;default:0"`
	CreatedAt      time.Time
}

// Subtotal is the line contribution to the order total.
func (l *OrderLine) Subtotal() float64 {
	return (l.UnitPrice - l.DiscountAmount) * float64(l.Quantity)
}

type OrderPayment struct {
	ID        uint          `gorm:"primaryKey"`
	OrderID   uint          `gorm:"index;not null"`
	Method    PaymentMethod `gorm:"type:varchar(20);not null"`
	Amount    float64       `gorm:"not null"`
	Reference string        `gorm:"size:100"` // UPI/card reference
	CreatedAt time.Time
}
