package orders

import (
	"errors"
	"fmt"
	"strings"

	"kirana-backend/internal/audit"
	"kirana-backend/internal/catalog"
	"kirana-backend/internal/models"

	"gorm.io/gorm"
)

var (
	// ErrValidation marks rejected input; nothing is persisted.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidTransition marks an illegal status change; state is untouched.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Legal transitions. returned is terminal; completed can still be returned so
// a sale can be undone after the fact.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:   {models.OrderStatusCompleted, models.OrderStatusReturned},
	models.OrderStatusCompleted: {models.OrderStatusReturned},
	models.OrderStatusReturned:  {},
}

func canTransition(from, to models.OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type CheckoutLine struct {
	ProductID uint
	Quantity  int
}

type CheckoutPayment struct {
	Method    models.PaymentMethod
	Amount    float64
	Reference string
}

type CheckoutInput struct {
	CustomerName  string
	CustomerPhone string
	Lines         []CheckoutLine
	Payments      []CheckoutPayment

	// actor, for the stock-change audit trail
	ActorID   *uint
	ActorName string
}

// Checkout creates the order, snapshots prices, computes the total and takes
// the stock for every line inside one transaction. Insufficient stock on any
// line rolls the whole thing back: no partial order is ever persisted.
func Checkout(db *gorm.DB, in CheckoutInput) (*models.Order, error) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	if in.CustomerName == "" {
		return nil, fmt.Errorf("%w: customer_name is required", ErrValidation)
	}
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: at least one line is required", ErrValidation)
	}
	for _, l := range in.Lines {
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be greater than zero", ErrValidation)
		}
	}
	for _, p := range in.Payments {
		switch p.Method {
		case models.PaymentMethodCash, models.PaymentMethodCard, models.PaymentMethodUPI:
		default:
			return nil, fmt.Errorf("%w: payment method must be cash, card or upi", ErrValidation)
		}
		if p.Amount <= 0 {
			return nil, fmt.Errorf("%w: payment amount must be greater than zero", ErrValidation)
		}
	}

	var order models.Order

	err := db.Transaction(func(tx *gorm.DB) error {
		order = models.Order{
			CustomerName:  in.CustomerName,
			CustomerPhone: strings.TrimSpace(in.CustomerPhone),
			Status:        models.OrderStatusPending,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		var total float64
		for _, l := range in.Lines {
			var p models.Product
			if err := tx.First(&p, "id = ?", l.ProductID).Error; err != nil {
				return fmt.Errorf("%w: product %d not found", ErrValidation, l.ProductID)
			}
			if !p.IsActive {
				return fmt.Errorf("%w: product %q is not for sale", ErrValidation, p.Name)
			}

			line := models.OrderLine{
				OrderID:        order.ID,
				ProductID:      p.ID,
				Quantity:       l.Quantity,
				UnitPrice:      p.Price,
				DiscountAmount: p.DiscountPrice,
			}
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
			total += line.Subtotal()

			if err := catalog.DecrementStock(tx, p.ID, l.Quantity); err != nil {
				if errors.Is(err, catalog.ErrInsufficientStock) {
					return fmt.Errorf("%w for product %q", catalog.ErrInsufficientStock, p.Name)
				}
				return err
			}

			if err := audit.Record(tx, audit.Entry{
				UserID:   in.ActorID,
				UserName: in.ActorName,
				Action:   models.AuditActionStockChange,
				Model:    "Product",
				ObjectID: p.ID,
				Field:    "stock_quantity",
				OldValue: fmt.Sprintf("%d", p.StockQuantity),
				NewValue: fmt.Sprintf("%d", p.StockQuantity-l.Quantity),
			}); err != nil {
				return err
			}
		}

		order.Total = total
		if err := tx.Model(&order).Update("total", total).Error; err != nil {
			return err
		}

		for _, pay := range in.Payments {
			payment := models.OrderPayment{
				OrderID:   order.ID,
				Method:    pay.Method,
				Amount:    pay.Amount,
				Reference: strings.TrimSpace(pay.Reference),
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := db.Preload("Lines").Preload("Payments").First(&order, order.ID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// CompleteOrder flips a pending order to completed. Stock already moved at
// checkout, so this is a pure status change.
func CompleteOrder(db *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := db.First(&order, "id = ?", orderID).Error; err != nil {
		return nil, err
	}

	if !canTransition(order.Status, models.OrderStatusCompleted) {
		return nil, fmt.Errorf("%w: %s -> completed", ErrInvalidTransition, order.Status)
	}

	if err := db.Model(&order).Update("status", models.OrderStatusCompleted).Error; err != nil {
		return nil, err
	}
	order.Status = models.OrderStatusCompleted
	return &order, nil
}

// ReturnOrder marks the order returned and puts every line's quantity back on
// the shelf, the exact reverse of the checkout decrement.
func ReturnOrder(db *gorm.DB, orderID uint, actorID *uint, actorName string) (*models.Order, error) {
	var order models.Order
	if err := db.Preload("Lines").First(&order, "id = ?", orderID).Error; err != nil {
		return nil, err
	}

	if !canTransition(order.Status, models.OrderStatusReturned) {
		return nil, fmt.Errorf("%w: %s -> returned", ErrInvalidTransition, order.Status)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, line := range order.Lines {
			var p models.Product
			if err := tx.First(&p, "id = ?", line.ProductID).Error; err != nil {
				return err
			}
			if err := catalog.AddStock(tx, line.ProductID, line.Quantity); err != nil {
				return err
			}
			if err := audit.Record(tx, audit.Entry{
				UserID:   actorID,
				UserName: actorName,
				Action:   models.AuditActionStockChange,
				Model:    "Product",
				ObjectID: line.ProductID,
				Field:    "stock_quantity",
				OldValue: fmt.Sprintf("%d", p.StockQuantity),
				NewValue: fmt.Sprintf("%d", p.StockQuantity+line.Quantity),
			}); err != nil {
				return err
			}
		}
		return tx.Model(&order).Update("status", models.OrderStatusReturned).Error
	})
	if err != nil {
		return nil, err
	}

	order.Status = models.OrderStatusReturned
	return &order, nil
}

// DeleteOrder removes an order with its lines and payments (back-office
// correction). Stock is restored unless the order was already returned,
// since a returned order has already given its quantities back.
func DeleteOrder(db *gorm.DB, orderID uint) error {
	var order models.Order
	if err := db.Preload("Lines").First(&order, "id = ?", orderID).Error; err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if order.Status != models.OrderStatusReturned {
			for _, line := range order.Lines {
				if err := catalog.AddStock(tx, line.ProductID, line.Quantity); err != nil {
					return err
				}
			}
		}
		if err := tx.Delete(&models.OrderPayment{}, "order_id = ?", order.ID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.OrderLine{}, "order_id = ?", order.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
}
