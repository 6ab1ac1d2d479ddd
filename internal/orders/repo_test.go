package orders

import (
	"context"
	"testing"
	"time"

	"github.com/gigadev/qr-order-backend/pkg/db/models"
	"github.com/gigadev/qr-order-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS stores (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  address TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  price INTEGER NOT NULL,
  image_url TEXT,
  is_available INTEGER NOT NULL DEFAULT 1,
  store_id TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL UNIQUE,
  order_name TEXT,
  payment_key TEXT,
  amount INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'PENDING',
  store_id TEXT NOT NULL,
  approved_at DATETIME,
  method TEXT,
  transaction_id TEXT,
  receipt_url TEXT,
  fail_reason TEXT,
  payment_details TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  price_at_order INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedStoreAndProduct(t *testing.T, db *gorm.DB, price int) (uuid.UUID, uuid.UUID) {
	t.Helper()

	storeID := uuid.New()
	require.NoError(t, db.Create(&models.Store{ID: storeID, Name: "Test Cafe"}).Error)

	productID := uuid.New()
	require.NoError(t, db.Create(&models.Product{
		ID:          productID,
		Name:        "Americano",
		Price:       price,
		IsAvailable: true,
		StoreID:     storeID,
	}).Error)
	return storeID, productID
}

func TestRepositoryCreateAndFindByOrderID(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	storeID, productID := seedStoreAndProduct(t, db, 1000)
	name := "Americano x 2"
	order := &models.Order{
		ID:        uuid.New(),
		OrderID:   "order_" + uuid.NewString(),
		OrderName: &name,
		Amount:    2000,
		Status:    enums.OrderStatusPending,
		StoreID:   storeID,
		Items: []models.OrderItem{
			{ID: uuid.New(), ProductID: productID, Quantity: 2, PriceAtOrder: 1000},
		},
	}

	_, err := repo.CreateOrder(ctx, order)
	require.NoError(t, err)

	found, err := repo.FindByOrderID(ctx, order.OrderID, storeID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	assert.Equal(t, 2000, found.Amount)
	assert.Equal(t, enums.OrderStatusPending, found.Status)
	require.Len(t, found.Items, 1)
	assert.Equal(t, 1000, found.Items[0].PriceAtOrder)
	require.NotNil(t, found.Items[0].Product)
	assert.Equal(t, "Americano", found.Items[0].Product.Name)
}

func TestRepositoryFindByOrderIDScopedToStore(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	storeID, productID := seedStoreAndProduct(t, db, 500)
	order := &models.Order{
		ID:      uuid.New(),
		OrderID: "order_" + uuid.NewString(),
		Amount:  500,
		Status:  enums.OrderStatusPending,
		StoreID: storeID,
		Items: []models.OrderItem{
			{ID: uuid.New(), ProductID: productID, Quantity: 1, PriceAtOrder: 500},
		},
	}
	_, err := repo.CreateOrder(ctx, order)
	require.NoError(t, err)

	_, err = repo.FindByOrderID(ctx, order.OrderID, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryUpdateIfPendingIsCompareAndSwap(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	storeID, productID := seedStoreAndProduct(t, db, 1000)
	order := &models.Order{
		ID:      uuid.New(),
		OrderID: "order_" + uuid.NewString(),
		Amount:  1000,
		Status:  enums.OrderStatusPending,
		StoreID: storeID,
		Items: []models.OrderItem{
			{ID: uuid.New(), ProductID: productID, Quantity: 1, PriceAtOrder: 1000},
		},
	}
	_, err := repo.CreateOrder(ctx, order)
	require.NoError(t, err)

	rows, err := repo.UpdateIfPending(ctx, order.ID, map[string]any{
		"status":      enums.OrderStatusPaid,
		"payment_key": "pay_abc",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	// The order is no longer PENDING, so a second transition must not match.
	rows, err = repo.UpdateIfPending(ctx, order.ID, map[string]any{
		"status": enums.OrderStatusFailed,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	found, err := repo.FindByOrderID(ctx, order.OrderID, storeID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPaid, found.Status)
	require.NotNil(t, found.PaymentKey)
	assert.Equal(t, "pay_abc", *found.PaymentKey)
}

func TestRepositoryListByStoreNewestFirst(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	storeID, productID := seedStoreAndProduct(t, db, 1000)
	older := &models.Order{
		ID:        uuid.New(),
		OrderID:   "order_" + uuid.NewString(),
		Amount:    1000,
		Status:    enums.OrderStatusPaid,
		StoreID:   storeID,
		CreatedAt: time.Now().Add(-time.Hour),
		Items: []models.OrderItem{
			{ID: uuid.New(), ProductID: productID, Quantity: 1, PriceAtOrder: 1000},
		},
	}
	newer := &models.Order{
		ID:        uuid.New(),
		OrderID:   "order_" + uuid.NewString(),
		Amount:    2000,
		Status:    enums.OrderStatusPending,
		StoreID:   storeID,
		CreatedAt: time.Now(),
		Items: []models.OrderItem{
			{ID: uuid.New(), ProductID: productID, Quantity: 2, PriceAtOrder: 1000},
		},
	}
	foreign := &models.Order{
		ID:      uuid.New(),
		OrderID: "order_" + uuid.NewString(),
		Amount:  500,
		Status:  enums.OrderStatusPending,
		StoreID: uuid.New(),
	}
	for _, order := range []*models.Order{older, newer, foreign} {
		_, err := repo.CreateOrder(ctx, order)
		require.NoError(t, err)
	}

	list, err := repo.ListByStore(ctx, storeID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.OrderID, list[0].OrderID)
	assert.Equal(t, older.OrderID, list[1].OrderID)
	require.Len(t, list[0].Items, 1)
	require.NotNil(t, list[0].Items[0].Product)
	assert.Equal(t, "Americano", list[0].Items[0].Product.Name)
}

func TestRepositoryUniqueOrderID(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	storeID, productID := seedStoreAndProduct(t, db, 1000)
	orderID := "order_" + uuid.NewString()

	first := &models.Order{
		ID:      uuid.New(),
		OrderID: orderID,
		Amount:  1000,
		Status:  enums.OrderStatusPending,
		StoreID: storeID,
		Items: []models.OrderItem{
			{ID: uuid.New(), ProductID: productID, Quantity: 1, PriceAtOrder: 1000},
		},
	}
	_, err := repo.CreateOrder(ctx, first)
	require.NoError(t, err)

	dup := &models.Order{
		ID:      uuid.New(),
		OrderID: orderID,
		Amount:  1000,
		Status:  enums.OrderStatusPending,
		StoreID: storeID,
	}
	_, err = repo.CreateOrder(ctx, dup)
	assert.Error(t, err)
}
