package orders

import (
	"context"

	"github.com/gigadev/qr-order-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the order ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByOrderID(ctx context.Context, orderID string, storeID uuid.UUID) (*models.Order, error)
	// UpdateIfPending applies updates with a status=PENDING predicate and
	// reports how many rows matched. Zero rows means a concurrent writer
	// already resolved the order.
	UpdateIfPending(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Order, error)
}

// ProductFinder is the slice of the catalog the order services need.
type ProductFinder interface {
	FindByIDsForStore(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID) ([]models.Product, error)
}
