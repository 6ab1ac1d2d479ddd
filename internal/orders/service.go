package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gigadev/qr-order-backend/pkg/db"
	"github.com/gigadev/qr-order-backend/pkg/db/models"
	"github.com/gigadev/qr-order-backend/pkg/enums"
	pkgerrors "github.com/gigadev/qr-order-backend/pkg/errors"
	"github.com/gigadev/qr-order-backend/pkg/logger"
	"github.com/gigadev/qr-order-backend/pkg/toss"
	"github.com/gigadev/qr-order-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	fallbackOrderName   = "product order"
	defaultCancelReason = "canceled by customer request"

	// Conflicts on the generated order id are close to impossible with a
	// UUID-derived suffix; the retry exists so the unique index stays the
	// last word instead of surfacing as a 5xx.
	orderIDAttempts = 3
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the order lifecycle operations.
type Service interface {
	InitiateOrder(ctx context.Context, input InitiateOrderInput) (*OrderProjection, error)
	GetOrder(ctx context.Context, orderID string, storeID uuid.UUID) (*OrderProjection, error)
	ListStoreOrders(ctx context.Context, storeID uuid.UUID) ([]*OrderProjection, error)
	ConfirmPayment(ctx context.Context, input ConfirmInput) (*ConfirmResult, error)
	CancelOrder(ctx context.Context, input CancelInput) (*CancelResult, error)
}

type service struct {
	repo     Repository
	products ProductFinder
	tx       txRunner
	gateway  toss.Confirmer
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the order service with the required collaborators.
func NewService(repo Repository, products ProductFinder, tx txRunner, gateway toss.Confirmer, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		products: products,
		tx:       tx,
		gateway:  gateway,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *service) InitiateOrder(ctx context.Context, input InitiateOrderInput) (*OrderProjection, error) {
	if input.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order items are required")
	}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required on every item")
		}
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
		}
	}

	distinct := distinctProductIDs(input.Items)
	products, err := s.products.FindByIDsForStore(ctx, input.StoreID, distinct)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	if len(products) < len(distinct) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "one or more products not found or not in this store")
	}

	byID := make(map[uuid.UUID]models.Product, len(products))
	var unavailable []string
	for _, product := range products {
		byID[product.ID] = product
		if !product.IsAvailable {
			unavailable = append(unavailable, product.Name)
		}
	}
	if len(unavailable) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("products currently unavailable: %s", strings.Join(unavailable, ", "))).
			WithDetails(map[string]any{"unavailable": unavailable})
	}

	amount := 0
	nameParts := make([]string, 0, len(input.Items))
	items := make([]models.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		product := byID[item.ProductID]
		amount += product.Price * item.Quantity
		nameParts = append(nameParts, fmt.Sprintf("%s x %d", product.Name, item.Quantity))
		items = append(items, models.OrderItem{
			ProductID:    product.ID,
			Quantity:     item.Quantity,
			PriceAtOrder: product.Price,
		})
	}
	orderName := fallbackOrderName
	if len(nameParts) > 0 {
		orderName = strings.Join(nameParts, ", ")
	}

	var created *models.Order
	for attempt := 0; attempt < orderIDAttempts; attempt++ {
		candidate := &models.Order{
			OrderID:   s.newOrderID(input.StoreID),
			OrderName: &orderName,
			Amount:    amount,
			Status:    enums.OrderStatusPending,
			StoreID:   input.StoreID,
			Items:     cloneItems(items),
		}
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			_, txErr := s.repo.WithTx(tx).CreateOrder(ctx, candidate)
			return txErr
		})
		if err == nil {
			created = candidate
			break
		}
		if !pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
	}
	if created == nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order: id conflicts exhausted retries")
	}

	ctx = s.logg.WithOrderID(ctx, created.OrderID)
	s.logg.Info(ctx, "order initiated")

	projection := projectOrder(created)
	// Creation does not round-trip through the preload path, so resolve
	// the display names from the products already in hand.
	for i := range projection.Items {
		if product, ok := byID[projection.Items[i].ProductID]; ok {
			projection.Items[i].Name = product.Name
		}
	}
	return projection, nil
}

func (s *service) GetOrder(ctx context.Context, orderID string, storeID uuid.UUID) (*OrderProjection, error) {
	order, err := s.loadOrder(ctx, orderID, storeID)
	if err != nil {
		return nil, err
	}
	return projectOrder(order), nil
}

// ListStoreOrders returns a store's order history, newest first.
func (s *service) ListStoreOrders(ctx context.Context, storeID uuid.UUID) ([]*OrderProjection, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	orders, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	projections := make([]*OrderProjection, 0, len(orders))
	for i := range orders {
		projections = append(projections, projectOrder(&orders[i]))
	}
	return projections, nil
}

func (s *service) ConfirmPayment(ctx context.Context, input ConfirmInput) (*ConfirmResult, error) {
	if strings.TrimSpace(input.PaymentKey) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment key required")
	}
	order, err := s.loadOrder(ctx, input.OrderID, input.StoreID)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithOrderID(ctx, order.OrderID)

	// Idempotent short-circuit: a confirmed order returns the stored
	// payment metadata and never re-hits the gateway.
	if order.Status == enums.OrderStatusPaid {
		s.logg.Info(ctx, "confirm repeated on paid order")
		return &ConfirmResult{
			Success: true,
			Message: "payment already confirmed",
			Order:   projectOrder(order),
		}, nil
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order cannot be confirmed in status %s", order.Status))
	}
	// Amount is checked before any external call to catch a tampered or
	// stale client-side total.
	if order.Amount != input.Amount {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			"payment amount does not match the order amount").
			WithDetails(map[string]any{"expected": order.Amount, "claimed": input.Amount})
	}

	payment, gatewayErr := s.gateway.ConfirmPayment(ctx, toss.ConfirmParams{
		PaymentKey: input.PaymentKey,
		OrderID:    input.OrderID,
		Amount:     input.Amount,
	})
	if gatewayErr != nil {
		return nil, s.resolveFailed(ctx, order, gatewayErr)
	}

	approvedAt := s.parseApprovedAt(payment.ApprovedAt)
	updates := map[string]any{
		"status":          enums.OrderStatusPaid,
		"payment_key":     payment.PaymentKey,
		"approved_at":     approvedAt,
		"method":          payment.Method,
		"transaction_id":  payment.TransactionID,
		"receipt_url":     receiptURL(payment),
		"payment_details": payment.Raw,
	}
	if err := s.writeResolution(ctx, order.ID, updates); err != nil {
		return nil, err
	}

	order.Status = enums.OrderStatusPaid
	order.PaymentKey = &payment.PaymentKey
	order.ApprovedAt = &approvedAt
	order.Method = strPtr(payment.Method)
	order.TransactionID = strPtr(payment.TransactionID)
	order.ReceiptURL = strPtr(receiptURL(payment))
	order.PaymentDetails = payment.Raw

	s.logg.Info(ctx, "payment confirmed")
	return &ConfirmResult{
		Success: true,
		Message: "payment confirmed",
		Order:   projectOrder(order),
	}, nil
}

func (s *service) CancelOrder(ctx context.Context, input CancelInput) (*CancelResult, error) {
	order, err := s.loadOrder(ctx, input.OrderID, input.StoreID)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithOrderID(ctx, order.OrderID)

	switch {
	case order.Status == enums.OrderStatusPaid:
		return &CancelResult{
			Success: false,
			Message: "paid orders cannot be canceled here; use the refund flow",
			OrderID: order.OrderID,
			Status:  order.Status,
		}, nil
	case order.Status.IsTerminal():
		return &CancelResult{
			Success: true,
			Message: fmt.Sprintf("order already resolved as %s", order.Status),
			OrderID: order.OrderID,
			Status:  order.Status,
		}, nil
	case order.Status == enums.OrderStatusPending:
		// fall through to the transition below
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order cannot be canceled in status %s", order.Status))
	}

	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		reason = defaultCancelReason
	}
	updates := map[string]any{
		"status":      enums.OrderStatusCanceled,
		"fail_reason": reason,
	}
	if err := s.writeResolution(ctx, order.ID, updates); err != nil {
		return nil, err
	}

	s.logg.Info(ctx, "order canceled")
	return &CancelResult{
		Success: true,
		Message: "order canceled",
		OrderID: order.OrderID,
		Status:  enums.OrderStatusCanceled,
	}, nil
}

func (s *service) loadOrder(ctx context.Context, orderID string, storeID uuid.UUID) (*models.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	order, err := s.repo.FindByOrderID(ctx, orderID, storeID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// resolveFailed marks the order FAILED after any gateway failure, then
// surfaces the original error. A pending order is never left ambiguous
// once a confirmation has been attempted.
func (s *service) resolveFailed(ctx context.Context, order *models.Order, gatewayErr error) error {
	reason := gatewayErr.Error()
	updates := map[string]any{
		"status":      enums.OrderStatusFailed,
		"fail_reason": reason,
	}
	var raw types.JSONMap
	if apiErr, ok := gatewayErr.(*toss.APIError); ok && apiErr.Raw != nil {
		raw = apiErr.Raw
		updates["payment_details"] = raw
	}
	if err := s.writeResolution(ctx, order.ID, updates); err != nil {
		return err
	}
	order.Status = enums.OrderStatusFailed
	order.FailReason = &reason
	if raw != nil {
		order.PaymentDetails = raw
	}
	s.logg.Error(ctx, "payment confirmation failed", gatewayErr)

	if _, ok := gatewayErr.(*toss.APIError); ok {
		return pkgerrors.Wrap(pkgerrors.CodePaymentDecline, gatewayErr, reason)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, gatewayErr, "payment gateway call failed")
}

// writeResolution commits a status transition in a fresh short
// transaction with a compare-and-swap on status=PENDING.
func (s *service) writeResolution(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.WithTx(tx).UpdateIfPending(ctx, id, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write order status")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order was resolved by a concurrent request")
		}
		return nil
	})
}

func (s *service) newOrderID(storeID uuid.UUID) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("order_%s_%d_%s", storeID, s.now().UnixMilli(), suffix)
}

func (s *service) parseApprovedAt(value string) time.Time {
	if value != "" {
		if parsed, err := time.Parse(time.RFC3339, value); err == nil {
			return parsed
		}
	}
	return s.now()
}

func distinctProductIDs(items []ItemInput) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

func cloneItems(items []models.OrderItem) []models.OrderItem {
	out := make([]models.OrderItem, len(items))
	copy(out, items)
	return out
}

func receiptURL(payment *toss.Payment) string {
	if payment.Receipt == nil {
		return ""
	}
	return payment.Receipt.URL
}

func strPtr(value string) *string {
	return &value
}
