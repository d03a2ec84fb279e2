package models

import "time"

type Customer struct {
	ID               uint   `gorm:"primaryKey"`
	Name             string `gorm:"size:150;not null;index"`
	Phone            string `gorm:"size:20"`
	Address          string `gorm:"size:255"`
	Notes            string `gorm:"size:500"`
	IsActive         bool   `gorm:"not null;default:true"`
	LastReminderDate *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
