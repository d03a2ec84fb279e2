package models

import "time"

type ExpenseCategory string

const (
	ExpenseCategoryRent        ExpenseCategory = "rent"
	ExpenseCategoryElectricity ExpenseCategory = "electricity"
	ExpenseCategorySalary      ExpenseCategory = "salary"
	ExpenseCategoryMaintenance ExpenseCategory = "maintenance"
	ExpenseCategoryTransport   ExpenseCategory = "transport"
	ExpenseCategoryOther       ExpenseCategory = "other"
)

// ExpenseCategories lists the accepted category values.
var ExpenseCategories = []ExpenseCategory{
	ExpenseCategoryRent,
	ExpenseCategoryElectricity,
	ExpenseCategorySalary,
	ExpenseCategoryMaintenance,
	ExpenseCategoryTransport,
	ExpenseCategoryOther,
}

type Expense struct {
	ID          uint            `gorm:"primaryKey"`
	Category    ExpenseCategory `gorm:"type:varchar(50);not null;index"`
	Amount      float64         `gorm:"not null"`
	Description string          `gorm:"size:255"`
	Date        time.Time       `gorm:"index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
