package orders

import (
	"errors"

	"kirana-backend/internal/audit"
	"kirana-backend/internal/catalog"
	"kirana-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CheckoutLineRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type CheckoutPaymentRequest struct {
	Method    string  `json:"method"` // cash, card, upi
	Amount    float64 `json:"amount"`
	Reference string  `json:"reference"`
}

type CheckoutRequest struct {
	CustomerName  string                   `json:"customer_name"`
	CustomerPhone string                   `json:"customer_phone"`
	Lines         []CheckoutLineRequest    `json:"lines"`
	Payments      []CheckoutPaymentRequest `json:"payments"`
}

type OrderLineResponse struct {
	ID             uint    `json:"id"`
	ProductID      uint    `json:"product_id"`
	Quantity       int     `json:"quantity"`
	UnitPrice      float64 `json:"unit_price"`
	DiscountAmount float64 `json:"discount_amount"`
	Subtotal       float64 `json:"subtotal"`
}

type OrderPaymentResponse struct {
	ID        uint    `json:"id"`
	Method    string  `json:"method"`
	Amount    float64 `json:"amount"`
	Reference string  `json:"reference"`
}

type OrderResponse struct {
	ID            uint                   `json:"id"`
	CustomerName  string                 `json:"customer_name"`
	CustomerPhone string                 `json:"customer_phone"`
	Status        string                 `json:"status"`
	Total         float64                `json:"total"`
	Lines         []OrderLineResponse    `json:"lines"`
	Payments      []OrderPaymentResponse `json:"payments"`
	CreatedAt     string                 `json:"created_at"`
}

func toOrderResponse(o *models.Order) OrderResponse {
	res := OrderResponse{
		ID:            o.ID,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		Status:        string(o.Status),
		Total:         o.Total,
		Lines:         make([]OrderLineResponse, 0, len(o.Lines)),
		Payments:      make([]OrderPaymentResponse, 0, len(o.Payments)),
		CreatedAt:     o.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	for i := range o.Lines {
		l := &o.Lines[i]
		res.Lines = append(res.Lines, OrderLineResponse{
			ID:             l.ID,
			ProductID:      l.ProductID,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			DiscountAmount: l.DiscountAmount,
			Subtotal:       l.Subtotal(),
		})
	}
	for _, p := range o.Payments {
		res.Payments = append(res.Payments, OrderPaymentResponse{
			ID:        p.ID,
			Method:    string(p.Method),
			Amount:    p.Amount,
			Reference: p.Reference,
		})
	}
	return res
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrInsufficientStock):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Order not found")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "Could not process order")
	}
}

// POST /api/orders (checkout)
func CheckoutHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CheckoutRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		actorID, actorName := audit.Actor(db, c)

		in := CheckoutInput{
			CustomerName:  body.CustomerName,
			CustomerPhone: body.CustomerPhone,
			ActorID:       actorID,
			ActorName:     actorName,
		}
		for _, l := range body.Lines {
			in.Lines = append(in.Lines, CheckoutLine{ProductID: l.ProductID, Quantity: l.Quantity})
		}
		for _, p := range body.Payments {
			in.Payments = append(in.Payments, CheckoutPayment{
				Method:    models.PaymentMethod(p.Method),
				Amount:    p.Amount,
				Reference: p.Reference,
			})
		}

		order, err := Checkout(db, in)
		if err != nil {
			return toHTTPError(err)
		}

		return c.Status(fiber.StatusCreated).JSON(toOrderResponse(order))
	}
}

// GET /api/orders?status=pending&limit=50
func ListOrdersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.Model(&models.Order{}).Preload("Lines").Preload("Payments")

		if status := c.Query("status"); status != "" {
			switch models.OrderStatus(status) {
			case models.OrderStatusPending, models.OrderStatusCompleted, models.OrderStatusReturned:
				dbq = dbq.Where("status = ?", status)
			default:
				return fiber.NewError(fiber.StatusBadRequest, "status must be pending, completed or returned")
			}
		}

		var rows []models.Order
		if err := dbq.Order("created_at desc, id desc").Limit(200).Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list orders")
		}

		res := make([]OrderResponse, 0, len(rows))
		for i := range rows {
			res = append(res, toOrderResponse(&rows[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/orders/:id
func GetOrderHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var order models.Order
		if err := db.Preload("Lines").Preload("Payments").First(&order, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Order not found")
		}

		return c.JSON(toOrderResponse(&order))
	}
}

// POST /api/orders/:id/complete
func CompleteOrderHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var orderID uint
		if err := parseIDParam(c, &orderID); err != nil {
			return err
		}

		order, err := CompleteOrder(db, orderID)
		if err != nil {
			return toHTTPError(err)
		}

		return c.JSON(fiber.Map{
			"id":     order.ID,
			"status": order.Status,
		})
	}
}

// POST /api/orders/:id/return
func ReturnOrderHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var orderID uint
		if err := parseIDParam(c, &orderID); err != nil {
			return err
		}

		actorID, actorName := audit.Actor(db, c)
		order, err := ReturnOrder(db, orderID, actorID, actorName)
		if err != nil {
			return toHTTPError(err)
		}

		return c.JSON(fiber.Map{
			"id":     order.ID,
			"status": order.Status,
		})
	}
}

// DELETE /api/admin/orders/:id
func DeleteOrderHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var orderID uint
		if err := parseIDParam(c, &orderID); err != nil {
			return err
		}

		if err := DeleteOrder(db, orderID); err != nil {
			return toHTTPError(err)
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

func parseIDParam(c *fiber.Ctx, out *uint) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "id is invalid")
	}
	*out = uint(id)
	return nil
}
