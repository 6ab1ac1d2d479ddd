package products

import (
	"context"
	"testing"

	"github.com/gigadev/qr-order-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  price INTEGER NOT NULL,
  image_url TEXT,
  is_available INTEGER NOT NULL DEFAULT 1,
  store_id TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedCatalog(t *testing.T, db *gorm.DB, storeID uuid.UUID) {
	t.Helper()
	for _, p := range []models.Product{
		{ID: uuid.New(), Name: "Americano", Price: 3000, IsAvailable: true, StoreID: storeID},
		{ID: uuid.New(), Name: "Cafe Latte", Price: 4500, IsAvailable: true, StoreID: storeID},
		{ID: uuid.New(), Name: "Croissant", Price: 3800, IsAvailable: false, StoreID: storeID},
	} {
		require.NoError(t, db.Create(&p).Error)
	}
}

func TestListByStoreSortsByPrice(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	storeID := uuid.New()
	seedCatalog(t, db, storeID)

	list, err := repo.ListByStore(ctx, storeID, ListParams{SortBy: "price", Order: "asc"})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Americano", list[0].Name)
	assert.Equal(t, "Cafe Latte", list[2].Name)
}

func TestListByStoreSearchFiltersByName(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	storeID := uuid.New()
	seedCatalog(t, db, storeID)

	list, err := repo.ListByStore(ctx, storeID, ListParams{SortBy: "name", Order: "asc", Search: "latte"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Cafe Latte", list[0].Name)
}

func TestListByStoreScopedToStore(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	storeID := uuid.New()
	seedCatalog(t, db, storeID)

	list, err := repo.ListByStore(ctx, uuid.New(), ListParams{SortBy: "name", Order: "asc"})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFindByIDsForStoreIgnoresForeignProducts(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	storeID := uuid.New()
	otherStore := uuid.New()
	mine := models.Product{ID: uuid.New(), Name: "Americano", Price: 3000, IsAvailable: true, StoreID: storeID}
	foreign := models.Product{ID: uuid.New(), Name: "Espresso", Price: 2500, IsAvailable: true, StoreID: otherStore}
	require.NoError(t, db.Create(&mine).Error)
	require.NoError(t, db.Create(&foreign).Error)

	list, err := repo.FindByIDsForStore(ctx, storeID, []uuid.UUID{mine.ID, foreign.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)
}
