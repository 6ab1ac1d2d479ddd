package orders

import (
	"time"

	"github.com/gigadev/qr-order-backend/pkg/db/models"
	"github.com/gigadev/qr-order-backend/pkg/enums"
	"github.com/google/uuid"
)

// ItemInput is one cart line in an initiation request.
type ItemInput struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// InitiateOrderInput carries a validated cart for a store.
type InitiateOrderInput struct {
	StoreID uuid.UUID
	Items   []ItemInput
}

// ConfirmInput carries the gateway redirect parameters for confirmation.
type ConfirmInput struct {
	PaymentKey string
	OrderID    string
	Amount     int
	StoreID    uuid.UUID
}

// CancelInput identifies the order to cancel and an optional reason.
type CancelInput struct {
	OrderID string
	StoreID uuid.UUID
	Reason  string
}

// OrderItemView is the flattened line-item shape shared by every order
// projection. Name resolves from the product when it is still present.
type OrderItemView struct {
	ProductID    uuid.UUID `json:"productId"`
	Quantity     int       `json:"quantity"`
	PriceAtOrder int       `json:"priceAtOrder"`
	Name         string    `json:"name"`
}

// OrderProjection is the one canonical read shape for an order. Both the
// confirm response and the order lookup endpoint return it, so the two
// paths cannot drift.
type OrderProjection struct {
	ID            uuid.UUID         `json:"id"`
	OrderID       string            `json:"orderId"`
	OrderName     string            `json:"orderName"`
	Amount        int               `json:"amount"`
	Status        enums.OrderStatus `json:"status"`
	StoreID       uuid.UUID         `json:"storeId"`
	PaymentKey    *string           `json:"paymentKey,omitempty"`
	Method        *string           `json:"method,omitempty"`
	ApprovedAt    *time.Time        `json:"approvedAt,omitempty"`
	TransactionID *string           `json:"transactionId,omitempty"`
	ReceiptURL    *string           `json:"receiptUrl,omitempty"`
	FailReason    *string           `json:"failReason,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
	Items         []OrderItemView   `json:"orderItems"`
}

// ConfirmResult is the confirm endpoint's success payload.
type ConfirmResult struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Order   *OrderProjection `json:"order"`
}

// CancelResult reports the cancellation outcome. Success false with a nil
// error is a refusal, not a failure (a PAID order must use the refund flow).
type CancelResult struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	OrderID string            `json:"orderId"`
	Status  enums.OrderStatus `json:"status"`
}

func projectOrder(order *models.Order) *OrderProjection {
	if order == nil {
		return nil
	}
	items := make([]OrderItemView, 0, len(order.Items))
	for _, item := range order.Items {
		view := OrderItemView{
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			PriceAtOrder: item.PriceAtOrder,
		}
		if item.Product != nil {
			view.Name = item.Product.Name
		}
		items = append(items, view)
	}

	name := ""
	if order.OrderName != nil {
		name = *order.OrderName
	}
	return &OrderProjection{
		ID:            order.ID,
		OrderID:       order.OrderID,
		OrderName:     name,
		Amount:        order.Amount,
		Status:        order.Status,
		StoreID:       order.StoreID,
		PaymentKey:    order.PaymentKey,
		Method:        order.Method,
		ApprovedAt:    order.ApprovedAt,
		TransactionID: order.TransactionID,
		ReceiptURL:    order.ReceiptURL,
		FailReason:    order.FailReason,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
		Items:         items,
	}
}
