package main

import (
	"context"

	"github.com/fekuna/catalog-service/config"
	"github.com/fekuna/catalog-service/internal/brand"
	brandH "github.com/fekuna/catalog-service/internal/brand/handler"
	brandRepoPkg "github.com/fekuna/catalog-service/internal/brand/repository"
	brandUCPkg "github.com/fekuna/catalog-service/internal/brand/usecase"
	"github.com/fekuna/catalog-service/internal/category"
	catH "github.com/fekuna/catalog-service/internal/category/handler"
	catRepoPkg "github.com/fekuna/catalog-service/internal/category/repository"
	catUCPkg "github.com/fekuna/catalog-service/internal/category/usecase"
	"github.com/fekuna/catalog-service/internal/database"
	"github.com/fekuna/catalog-service/internal/inventory"
	invH "github.com/fekuna/catalog-service/internal/inventory/handler"
	invRepoPkg "github.com/fekuna/catalog-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/catalog-service/internal/inventory/usecase"
	"github.com/fekuna/catalog-service/internal/logger"
	"github.com/fekuna/catalog-service/internal/product"
	prodH "github.com/fekuna/catalog-service/internal/product/handler"
	prodRepoPkg "github.com/fekuna/catalog-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/catalog-service/internal/product/usecase"
	"github.com/fekuna/catalog-service/internal/query"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// app holds the connected store and the usecases built on it.
type app struct {
	log logger.ZapLogger
	db  *sqlx.DB

	brands     brand.UseCase
	categories category.UseCase
	products   product.UseCase
	inventory  inventory.UseCase
}

func newLogger(cfg *config.Config) logger.ZapLogger {
	return logger.NewZapLogger(&logger.ZapLoggerConfig{
		IsDevelopment:     cfg.IsDevelopment(),
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
		Filename:          cfg.Logger.Filename,
	})
}

// newApp connects to the configured database and, when enabled, applies the
// schema before wiring the usecases.
func newApp(ctx context.Context, cfg *config.Config, migrate bool) (*app, error) {
	log := newLogger(cfg)

	db, err := database.Open(ctx, cfg)
	if err != nil {
		log.Error("could not connect to database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
		return nil, err
	}
	log.Info("connected to database", zap.String("driver", cfg.Database.Driver))

	if migrate {
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info("schema migrated")
	}

	return &app{
		log:        log,
		db:         db,
		brands:     brandUCPkg.NewBrandUseCase(brandRepoPkg.NewPGRepository(db), log),
		categories: catUCPkg.NewCategoryUseCase(catRepoPkg.NewPGRepository(db), cfg.Catalog.MaxHierarchyDepth, log),
		products:   prodUCPkg.NewProductUseCase(prodRepoPkg.NewPGRepository(db), log),
		inventory:  invUCPkg.NewInventoryUseCase(invRepoPkg.NewPGRepository(db), log),
	}, nil
}

// executor registers every feature's operations.
func (a *app) executor(cfg config.CatalogConfig) *query.Executor {
	exec := query.NewExecutor(a.log)
	brandH.NewBrandHandler(a.brands, cfg, a.log).Register(exec)
	catH.NewCategoryHandler(a.categories, cfg, a.log).Register(exec)
	prodH.NewProductHandler(a.products, cfg, a.log).Register(exec)
	invH.NewInventoryHandler(a.inventory, a.products, cfg, a.log).Register(exec)
	return exec
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.log.Warn("closing database", zap.Error(err))
	}
	_ = a.log.Sync()
}
