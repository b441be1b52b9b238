package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/handler"
	"storefront/internal/infra/content"
	"storefront/internal/infra/db"
	"storefront/internal/infra/image"
	"storefront/internal/infra/order"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/repository"
	"storefront/internal/server"
	"storefront/internal/session"
	"storefront/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "storefront:"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	//.env は無くてもよい
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.GoEnv)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//Redis（キャッシュ、STORAGE_BACKEND=redis の保存先）
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = db.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
	}

	//ウィッシュリストの保存先
	var kv repository.KeyValueStore
	switch cfg.StorageBackend {
	case config.StorageBackendPostgres:
		gormDB, pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := gormDB.AutoMigrate(&model.KVEntry{}); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		kv = infraRepo.NewKVGormRepository(gormDB)
	case config.StorageBackendRedis:
		kv = infraRepo.NewKVRedisRepository(rdb, redisKeyPrefix)
	default:
		logger.Warn("wishlist is kept in memory and lost on restart")
		kv = infraRepo.NewKVMemoryRepository()
	}

	//商品一覧キャッシュ
	var cache repository.ProductCache
	if rdb != nil {
		cache = infraRepo.NewProductRedisCache(rdb, cfg.CacheTTL)
	} else {
		cache = infraRepo.NewProductMemoryCache(cfg.CacheTTL)
	}

	//コンテンツAPI
	contentClient, err := content.NewClient(content.Config{
		ProjectID:  cfg.ContentProjectID,
		Dataset:    cfg.ContentDataset,
		APIVersion: cfg.ContentAPIVersion,
		Token:      cfg.ContentToken,
		UseCDN:     cfg.ContentUseCDN,
	})
	if err != nil {
		return err
	}
	products := content.NewProductContentRepository(contentClient, logger)

	//画像URL
	var images repository.ImageResolver = image.DirectResolver{}
	if cfg.CloudinaryCloudName != "" {
		cld, err := image.NewCloudinaryResolver(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			return err
		}
		images = cld
	}

	//セッション
	placer := order.NewSimulatedPlacer(cfg.CheckoutDelay)
	reg := session.NewRegistry(kv, placer, cfg.PageSizes, logger)
	go reg.RunSweeper(ctx, sweepInterval(cfg.SessionIdle), cfg.SessionIdle)

	//Usecase / Handler生成
	h := server.Handlers{
		Product:  handler.NewProductHandler(usecase.NewProductUsecase(products, images, logger)),
		Shop:     handler.NewShopHandler(usecase.NewCatalogUsecase(products, cache, images, logger)),
		Search:   handler.NewSearchHandler(usecase.NewSearchUsecase(products, images, logger)),
		Cart:     handler.NewCartHandler(usecase.NewCartUsecase(products, images, logger)),
		Wishlist: handler.NewWishlistHandler(usecase.NewWishlistUsecase(products, images, logger)),
		Checkout: handler.NewCheckoutHandler(usecase.NewCheckoutUsecase(logger)),
	}

	e, err := server.New(cfg, reg, h, logger)
	if err != nil {
		return err
	}

	//Server起動
	return server.Start(ctx, e, cfg.Addr(), logger)
}

func newLogger(goEnv string) (*zap.Logger, error) {
	if goEnv == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// 無操作時間の1/4ごと（最短1分）
func sweepInterval(idle time.Duration) time.Duration {
	return max(idle/4, time.Minute)
}
