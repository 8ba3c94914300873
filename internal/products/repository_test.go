package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/davegutierrez/shoplite-backend/pkg/db/models"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	productsTable := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  category_id TEXT,
  sku TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  description TEXT,
  price_cents INTEGER NOT NULL DEFAULT 0,
  cost_cents INTEGER NOT NULL DEFAULT 0,
  stock_cached INTEGER NOT NULL DEFAULT 0 CHECK (stock_cached >= 0),
  min_stock INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(productsTable).Error)
	return db
}

func newProduct(t *testing.T, db *gorm.DB, sku, name string, stock, minStock int, active bool) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:          uuid.New(),
		SKU:         sku,
		Name:        name,
		StockCached: stock,
		MinStock:    minStock,
		IsActive:    active,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestRepositoryListFilters(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	newProduct(t, db, "COF-001", "Coffee Beans", 10, 3, true)
	low := newProduct(t, db, "TEA-001", "Green Tea", 2, 5, true)
	newProduct(t, db, "OLD-001", "Retired Mug", 0, 0, false)

	active, err := repo.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	all, err := repo.List(ctx, ListFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	lowStock, err := repo.List(ctx, ListFilter{LowStockOnly: true})
	require.NoError(t, err)
	require.Len(t, lowStock, 1)
	assert.Equal(t, low.ID, lowStock[0].ID)

	bySearch, err := repo.List(ctx, ListFilter{Search: "tea"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "TEA-001", bySearch[0].SKU)
}

func TestRepositoryApplyStockDelta(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := newProduct(t, db, "COF-001", "Coffee Beans", 10, 0, true)

	affected, err := repo.ApplyStockDelta(ctx, product.ID, -4)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	reloaded, err := repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, reloaded.StockCached)

	// The guard rejects a drain below zero without touching the row.
	affected, err = repo.ApplyStockDelta(ctx, product.ID, -7)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	reloaded, err = repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, reloaded.StockCached)

	// Unknown product also reports zero rows.
	affected, err = repo.ApplyStockDelta(ctx, uuid.New(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestRepositoryUpdateNeverTouchesStock(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := newProduct(t, db, "COF-001", "Coffee Beans", 10, 0, true)

	product.Name = "Dark Roast Beans"
	product.StockCached = 999
	require.NoError(t, repo.Update(ctx, product))

	reloaded, err := repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dark Roast Beans", reloaded.Name)
	assert.Equal(t, 10, reloaded.StockCached)
}

func TestRepositorySetStock(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := newProduct(t, db, "COF-001", "Coffee Beans", 3, 0, true)

	require.NoError(t, repo.SetStock(ctx, product.ID, 8))

	reloaded, err := repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, reloaded.StockCached)
}
