package models

import "time"

type AuditAction string

const (
	AuditActionStockChange   AuditAction = "stock_change"
	AuditActionPriceChange   AuditAction = "price_change"
	AuditActionCreditSettled AuditAction = "credit_settled"
)

// AuditLog records a single field change so back-office corrections can be
// traced (who changed which product's stock/price, who settled which credit).
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID   *uint  `json:"user_id"`
	UserName string `gorm:"size:100" json:"user_name"` // denormalized for display

	Action   AuditAction `gorm:"size:50;index" json:"action"`
	Model    string      `gorm:"size:100;index" json:"model"`
	ObjectID uint        `gorm:"index" json:"object_id"`
	Field    string      `gorm:"size:100" json:"field"`
	OldValue string      `gorm:"size:255" json:"old_value"`
	NewValue string      `gorm:"size:255" json:"new_value"`
}
