package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/broker"
	"storefront/internal/infra/db"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/logger"
	"storefront/internal/notify"
	"storefront/internal/server"
	"storefront/internal/usecase"
	auth "storefront/internal/usecase/auth_usecase"

	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.MustLoad()
	base := logger.Setup(cfg.Env)
	log := logrus.NewEntry(base).WithField("app", "storefront")

	//DB接続
	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("db connect failed")
	}
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(gormDB); err != nil {
			log.WithError(err).Fatal("auto migrate failed")
		}
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	resetRepo := infraRepo.NewPasswordResetTokenGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	wishlistRepo := infraRepo.NewWishlistGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	imageRepo := infraRepo.NewFeatureImageGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//通知チャネル。RabbitMQがあれば全インスタンスに中継する
	hub := notify.NewHub(cfg.Notify.Buffer, log)
	var publisher notify.Publisher = hub
	var relay *broker.Relay
	if cfg.Notify.RabbitMQURL != "" {
		relay, err = broker.Dial(broker.Config{
			URL:      cfg.Notify.RabbitMQURL,
			Exchange: cfg.Notify.Exchange,
		}, hub, log)
		if err != nil {
			log.WithError(err).Fatal("rabbitmq connect failed")
		}
		publisher = relay
	}

	//usecaseに渡す部品
	hasher := auth.NewBcryptPasswordHasher(12)
	issuer := auth.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	clock := auth.SystemClock{}

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher)
	loginUC := auth.NewLoginUsecase(userRepo, hasher, issuer, clock)
	meUC := auth.NewMeUsecase(userRepo)
	resetUC := auth.NewPasswordResetUsecase(
		userRepo, resetRepo, hasher, auth.NewLogMailer(log), auth.UUIDGenerator{}, clock,
		cfg.ResetTokenTTL, cfg.ResetURLBase,
	)

	productUC := usecase.NewProductUsecase(txm, productRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, cartRepo, productRepo)
	wishlistUC := usecase.NewWishlistUsecase(wishlistRepo, productRepo)
	addressUC := usecase.NewAddressUsecase(addressRepo)
	orderUC := usecase.NewOrderUsecase(orderRepo, productRepo, addressRepo, txm, publisher, log)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, orderRepo, log)
	auditUC := usecase.NewAuditLogUsecase(auditRepo)
	featureUC := usecase.NewFeatureImageUsecase(txm, imageRepo)

	//Handler生成
	h := server.Handlers{
		Auth:         handler.NewAuthHandler(registerUC, loginUC, meUC, resetUC),
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		Cart:         handler.NewCartHandler(cartUC),
		Wishlist:     handler.NewWishlistHandler(wishlistUC),
		Address:      handler.NewAddressHandler(addressUC),
		Order:        handler.NewOrderHandler(orderUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC, auditUC),
		Feature:      handler.NewFeatureHandler(featureUC),
		AdminFeed:    handler.NewAdminFeedHandler(hub, cfg.Notify.PingInterval, cfg.FEURL, log),
	}

	srv := server.New(cfg, log, userRepo, h)

	//Server起動
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.WithField("signal", s.String()).Info("shutting down")
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("server stopped")
		}
	}

	//websocketセッションを先に閉じる
	hub.Shutdown()
	if err := srv.Shutdown(shutdownTimeout); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	if relay != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := relay.Close(ctx); err != nil {
			log.WithError(err).Warn("relay close")
		}
		cancel()
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
