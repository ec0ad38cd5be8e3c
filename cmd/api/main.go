package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/db"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/infra/telemetry"
	"storefront/internal/server"
	"storefront/internal/usecase"

	"github.com/labstack/gommon/log"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now().UTC()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	log.SetLevel(server.LogLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//トレース
	shutdownTracing, err := telemetry.Init(cfg.TracingEnabled, cfg.ServiceName, os.Stdout)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Errorf("telemetry shutdown: %v", err)
		}
	}()

	//DB接続
	gormDB, err := db.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(gormDB); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	//Repository（GORM実装）生成
	txm := infraRepo.NewTxManagerGorm(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	customerRepo := infraRepo.NewCustomerGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	collectionRepo := infraRepo.NewCollectionGormRepository(gormDB)
	reviewRepo := infraRepo.NewReviewGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)

	clock := &realClock{}

	//Usecase生成
	orderUC := usecase.NewOrderUsecase(txm, cartRepo, cartItemRepo, customerRepo, orderRepo, clock)
	cartUC := usecase.NewCartUsecase(cartRepo, cartItemRepo, productRepo)
	productUC := usecase.NewProductUsecase(txm, productRepo, collectionRepo, orderItemRepo, clock)
	collectionUC := usecase.NewCollectionUsecase(collectionRepo, productRepo)
	reviewUC := usecase.NewReviewUsecase(reviewRepo, productRepo, clock)
	customerUC := usecase.NewCustomerUsecase(txm, customerRepo, orderRepo, clock)
	addressUC := usecase.NewAddressUsecase(addressRepo, customerRepo)

	//Handler生成
	e := server.New(cfg,
		handler.NewCollectionHandler(collectionUC),
		handler.NewProductHandler(productUC),
		handler.NewReviewHandler(reviewUC),
		handler.NewCartHandler(cartUC),
		handler.NewCustomerHandler(customerUC),
		handler.NewAddressHandler(addressUC),
		handler.NewOrderHandler(orderUC),
	)

	//Server起動
	if err := server.Start(ctx, cfg, e); err != nil {
		log.Errorf("server: %v", err)
	}
}
