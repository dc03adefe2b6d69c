package main

import (
	"log"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/joho/godotenv"
)

func main() {
	//.envは無くても起動できる（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatal(err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Product{},
		&model.Order{},
		&model.OrderStatusEvent{},
		&model.OrderDetail{},
		&model.RatingCategory{},
		&model.Feedback{},
		&model.AuditLog{},
	); err != nil {
		log.Fatal(err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	odRepo := infraRepo.NewOrderDetailGormRepository(gormDB)
	rcRepo := infraRepo.NewRatingCategoryGormRepository(gormDB)
	feedbackRepo := infraRepo.NewFeedbackGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//Validator
	authValidator := validator.NewAuthValidator(userRepo)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg, userRepo, rtRepo, authValidator)
	productUC := usecase.NewProductUsecase(productRepo, auditRepo)
	cartUC := usecase.NewCartUsecase(odRepo, productRepo)
	orderUC := usecase.NewOrderUsecase(txManager)
	feedbackUC := usecase.NewFeedbackUsecase(txManager, feedbackRepo, odRepo, orderRepo, productRepo, rcRepo, auditRepo)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, auditRepo)
	adminUserUC := usecase.NewAdminUserUsecase(userRepo, rtRepo, auditRepo)

	//Handler生成
	refreshTTL := 30 * 24 * time.Hour
	cookieSecure := cfg.GoEnv != "dev"

	h := server.Handlers{
		Auth:         handler.NewAuthHandler(authUC, refreshTTL, cookieSecure),
		Product:      handler.NewProductHandler(productUC, feedbackUC),
		Cart:         handler.NewCartHandler(cartUC),
		Order:        handler.NewOrderHandler(orderUC),
		Feedback:     handler.NewFeedbackHandler(feedbackUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		AdminUser:    handler.NewAdminUserHandler(cfg, userRepo, adminUserUC, authUC, feedbackUC),
	}

	//Server起動
	e := server.New(cfg, userRepo, h)

	addr := ":" + cfg.Port
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
