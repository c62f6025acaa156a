package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ecshop/internal/config"
	"ecshop/internal/handler"
	"ecshop/internal/infra/db"
	infraRepo "ecshop/internal/infra/repository"
	"ecshop/internal/logger"
	"ecshop/internal/metrics"
	"ecshop/internal/notify"
	"ecshop/internal/server"
	"ecshop/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatal("failed to build logger: ", err)
	}
	defer func() { _ = zl.Sync() }()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		zl.Fatal("db connect failed", zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		zl.Fatal("db migrate failed", zap.Error(err))
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	notificationRepo := infraRepo.NewNotificationGormRepository(gormDB)
	wishlistRepo := infraRepo.NewWishlistGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//通知（DB保存 + kafka）
	dispatchers := []notify.Dispatcher{notify.NewStoreDispatcher(notificationRepo)}
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		kd := notify.NewKafkaDispatcher(notify.NewKafkaWriter(brokers, cfg.NotifyTopic, zl))
		defer func() { _ = kd.Close() }()
		dispatchers = append(dispatchers, kd)
		zl.Info("kafka notifications enabled", zap.Strings("brokers", brokers), zap.String("topic", cfg.NotifyTopic))
	}
	notifier := notify.NewMulti(zl, dispatchers...)

	//メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	srvMetrics := metrics.NewServerMetrics(reg, "api")

	//Usecase生成
	cartUC := usecase.NewCartUsecase(txm, cartRepo, cartRepo, productRepo, zl)
	orderUC := usecase.NewOrderUsecase(txm, addressRepo, zl, srvMetrics)
	statusUC := usecase.NewOrderStatusUsecase(txm, userRepo, notifier, zl)
	productUC := usecase.NewProductUsecase(productRepo, inventoryRepo, auditRepo)
	addressUC := usecase.NewAddressUsecase(addressRepo)
	notificationUC := usecase.NewNotificationUsecase(notificationRepo)
	wishlistUC := usecase.NewWishlistUsecase(wishlistRepo, productRepo)

	//Handler生成
	e := server.NewEcho(server.Deps{
		Cfg:      cfg,
		Users:    userRepo,
		Metrics:  srvMetrics,
		Gatherer: reg,
		Log:      zl,
	}, server.Handlers{
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		Cart:         handler.NewCartHandler(cartUC),
		Order:        handler.NewOrderHandler(orderUC),
		Delivery:     handler.NewDeliveryHandler(orderUC, statusUC),
		AdminOrder:   handler.NewAdminOrderHandler(statusUC),
		Address:      handler.NewAddressHandler(addressUC),
		Notification: handler.NewNotificationHandler(notificationUC),
		Wishlist:     handler.NewWishlistHandler(wishlistUC),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//Server起動
	addr := cfg.Port
	if addr != "" && addr[0] != ':' {
		addr = ":" + addr
	}
	if err := server.Start(ctx, addr, e, zl); err != nil {
		zl.Error("server stopped", zap.Error(err))
	}
}
