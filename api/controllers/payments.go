package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gigadev/qr-order-backend/api/responses"
	"github.com/gigadev/qr-order-backend/api/validators"
	ordersvc "github.com/gigadev/qr-order-backend/internal/orders"
	pkgerrors "github.com/gigadev/qr-order-backend/pkg/errors"
	"github.com/gigadev/qr-order-backend/pkg/logger"
)

type initiateOrderItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type initiateOrderRequest struct {
	StoreID string                     `json:"storeId" validate:"required,uuid4"`
	Items   []initiateOrderItemRequest `json:"orderItems" validate:"required,min=1,dive"`
}

// InitiateOrder creates a PENDING order from a customer's cart and returns
// the identifiers the payment widget needs.
func InitiateOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var payload initiateOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.InitiateOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func (p initiateOrderRequest) toInput() (ordersvc.InitiateOrderInput, error) {
	storeID, err := uuid.Parse(strings.TrimSpace(p.StoreID))
	if err != nil {
		return ordersvc.InitiateOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store id")
	}

	items := make([]ordersvc.ItemInput, 0, len(p.Items))
	for _, item := range p.Items {
		productID, err := uuid.Parse(strings.TrimSpace(item.ProductID))
		if err != nil {
			return ordersvc.InitiateOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
		}
		items = append(items, ordersvc.ItemInput{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}

	return ordersvc.InitiateOrderInput{StoreID: storeID, Items: items}, nil
}

type confirmPaymentRequest struct {
	PaymentKey string `json:"paymentKey" validate:"required"`
	OrderID    string `json:"orderId" validate:"required"`
	Amount     int    `json:"amount" validate:"required,min=1"`
	StoreID    string `json:"storeId" validate:"required,uuid4"`
}

// ConfirmPayment verifies the gateway redirect parameters against the stored
// order and settles it as PAID or FAILED.
func ConfirmPayment(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var payload confirmPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		storeID, err := uuid.Parse(strings.TrimSpace(payload.StoreID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store id"))
			return
		}

		ctx := logg.WithOrderID(r.Context(), payload.OrderID)
		result, err := svc.ConfirmPayment(ctx, ordersvc.ConfirmInput{
			PaymentKey: strings.TrimSpace(payload.PaymentKey),
			OrderID:    strings.TrimSpace(payload.OrderID),
			Amount:     payload.Amount,
			StoreID:    storeID,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type cancelOrderRequest struct {
	OrderID string `json:"orderId" validate:"required"`
	StoreID string `json:"storeId" validate:"required,uuid4"`
	Reason  string `json:"reason,omitempty"`
}

// CancelOrder cancels a PENDING order before payment settles.
func CancelOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var payload cancelOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		storeID, err := uuid.Parse(strings.TrimSpace(payload.StoreID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store id"))
			return
		}

		ctx := logg.WithOrderID(r.Context(), payload.OrderID)
		result, err := svc.CancelOrder(ctx, ordersvc.CancelInput{
			OrderID: strings.TrimSpace(payload.OrderID),
			StoreID: storeID,
			Reason:  strings.TrimSpace(payload.Reason),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ListStoreOrders returns the authenticated owner's order history.
func ListStoreOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		storeID, err := actorStoreID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.ListStoreOrders(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, orders)
	}
}

// GetOrder returns the canonical order projection for a wire order id.
func GetOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
		if orderID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id required"))
			return
		}

		storeID, err := validators.RequireQueryUUID(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID, storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}
