package usecase

import (
	"context"

	"github.com/fekuna/catalog-service/internal/apperror"
	"github.com/fekuna/catalog-service/internal/inventory"
	"github.com/fekuna/catalog-service/internal/inventory/dto"
	"github.com/fekuna/catalog-service/internal/logger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var notTracked = map[dto.Op]string{
	dto.SetStock:    "Cannot update stock for product that doesn't track inventory",
	dto.AddStock:    "Cannot add stock for product that doesn't track inventory",
	dto.ReduceStock: "Cannot reduce stock for product that doesn't track inventory",
}

type inventoryUseCase struct {
	repo   inventory.Repository
	logger logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *inventoryUseCase) UpdateStock(ctx context.Context, productID int64, quantity int) (*dto.Level, error) {
	if quantity < 0 {
		return nil, apperror.Validation("Stock quantity cannot be negative")
	}
	return uc.adjust(ctx, &dto.Adjustment{ProductID: productID, Op: dto.SetStock, Quantity: quantity})
}

func (uc *inventoryUseCase) AddStock(ctx context.Context, productID int64, quantity int) (*dto.Level, error) {
	if quantity <= 0 {
		return nil, apperror.Validation("quantity must be positive, got %d", quantity)
	}
	return uc.adjust(ctx, &dto.Adjustment{ProductID: productID, Op: dto.AddStock, Quantity: quantity})
}

// ReduceStock checks and decrements in one statement, so concurrent
// reducers can never drive the quantity below zero.
func (uc *inventoryUseCase) ReduceStock(ctx context.Context, productID int64, quantity int) (*dto.Level, error) {
	if quantity <= 0 {
		return nil, apperror.Validation("quantity must be positive, got %d", quantity)
	}
	return uc.adjust(ctx, &dto.Adjustment{ProductID: productID, Op: dto.ReduceStock, Quantity: quantity})
}

func (uc *inventoryUseCase) adjust(ctx context.Context, adj *dto.Adjustment) (*dto.Level, error) {
	var level *dto.Level
	err := uc.repo.Transaction(ctx, func(repo inventory.Repository) error {
		applied, err := repo.Adjust(ctx, adj)
		if err != nil {
			return err
		}
		level, err = repo.Level(ctx, adj.ProductID)
		if err != nil {
			return err
		}
		if applied {
			return nil
		}
		return rejection(adj, level)
	})
	if err != nil {
		logger.Failure(uc.logger, "failed to adjust stock", err,
			zap.Int64("product_id", adj.ProductID), zap.Stringer("op", adj.Op), zap.Int("quantity", adj.Quantity))
		return nil, err
	}

	uc.logger.Info("stock adjusted", zap.Int64("product_id", adj.ProductID), zap.Stringer("op", adj.Op),
		zap.Int("quantity", adj.Quantity), zap.Int("stock", level.StockQuantity))
	return level, nil
}

// rejection explains why an adjustment matched no row.
func rejection(adj *dto.Adjustment, level *dto.Level) error {
	switch {
	case level == nil:
		return apperror.NotFound("product", adj.ProductID)
	case !level.TrackInventory:
		return apperror.NotAllowed("product", adj.ProductID, notTracked[adj.Op])
	case adj.Op == dto.ReduceStock:
		return apperror.InsufficientStock(adj.ProductID, level.StockQuantity, adj.Quantity)
	default:
		return apperror.Internal(errors.Errorf("%s stock on product %d matched no row", adj.Op, adj.ProductID), "stock adjustment failed")
	}
}
