package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/fekuna/catalog-service/internal/apperror"
	"github.com/fekuna/catalog-service/internal/database/dbtest"
	"github.com/fekuna/catalog-service/internal/inventory"
	"github.com/fekuna/catalog-service/internal/inventory/repository"
	"github.com/fekuna/catalog-service/internal/logger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (inventory.UseCase, *sqlx.DB) {
	db := dbtest.NewSQLite(t)
	return NewInventoryUseCase(repository.NewPGRepository(db), logger.NewNop()), db
}

func insertProduct(t *testing.T, db *sqlx.DB, name string, stock int, track bool) int64 {
	t.Helper()
	var id int64
	err := db.Get(&id, db.Rebind(`
        INSERT INTO products (name, slug, price, stock_quantity, track_inventory, created_at, updated_at)
        VALUES (?, ?, 9.99, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
        RETURNING id`), name, name, stock, track)
	require.NoError(t, err)
	return id
}

func stockOf(t *testing.T, db *sqlx.DB, id int64) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, db.Rebind(`SELECT stock_quantity FROM products WHERE id = ?`), id))
	return n
}

func TestReduceThenAddStock(t *testing.T) {
	uc, db := setup(t)
	ctx := context.Background()
	id := insertProduct(t, db, "widget", 5, true)

	level, err := uc.ReduceStock(ctx, id, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, level.StockQuantity)
	assert.LessOrEqual(t, level.StockQuantity, level.LowStockThreshold)

	level, err = uc.AddStock(ctx, id, 10)
	require.NoError(t, err)
	assert.Equal(t, 12, level.StockQuantity)
	assert.Greater(t, level.StockQuantity, level.LowStockThreshold)

	level, err = uc.UpdateStock(ctx, id, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, level.StockQuantity)
}

func TestInsufficientStockLeavesQuantity(t *testing.T) {
	uc, db := setup(t)
	id := insertProduct(t, db, "widget", 2, true)

	_, err := uc.ReduceStock(context.Background(), id, 3)
	require.ErrorIs(t, err, apperror.ErrInsufficientStock)
	ae, _ := apperror.As(err)
	assert.Equal(t, "Insufficient stock. Available: 2, Requested: 3", ae.Message)
	assert.Equal(t, 2, stockOf(t, db, id))
}

func TestRejectedAdjustments(t *testing.T) {
	uc, db := setup(t)
	ctx := context.Background()
	untracked := insertProduct(t, db, "gift-card", 0, false)
	tracked := insertProduct(t, db, "widget", 1, true)

	_, err := uc.AddStock(ctx, untracked, 1)
	require.ErrorIs(t, err, apperror.ErrNotAllowed)
	ae, _ := apperror.As(err)
	assert.Equal(t, "Cannot add stock for product that doesn't track inventory", ae.Message)

	_, err = uc.ReduceStock(ctx, 999, 1)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = uc.UpdateStock(ctx, tracked, -1)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	_, err = uc.AddStock(ctx, tracked, 0)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	_, err = uc.ReduceStock(ctx, tracked, -2)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, 1, stockOf(t, db, tracked))
}

func TestConcurrentReducersNeverOversell(t *testing.T) {
	uc, db := setup(t)
	id := insertProduct(t, db, "widget", 10, true)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 15; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := uc.ReduceStock(context.Background(), id, 1); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, success)
	assert.Equal(t, 0, stockOf(t, db, id))
}
