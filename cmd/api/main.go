package main

import (
	"strconv"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/domain/model"
	"marketplace/internal/handler"
	"marketplace/internal/infra/db"
	infraRepo "marketplace/internal/infra/repository"
	"marketplace/internal/notify"
	"marketplace/internal/server"
	"marketplace/internal/usecase"
	auth "marketplace/internal/usecase/auth_usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func (i *jwtIssuer) Issue(userID int64, role model.Role, verifiedSeller bool, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":      strconv.FormatInt(userID, 10),
		"role":     string(role),
		"verified": verifiedSeller,
		"iat":      now.Unix(),
		"exp":      expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	logger := log.New("api")

	//.envは無ければ環境変数だけで動く
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		logger.Fatalf("db connect: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Order{},
		&model.Review{},
		&model.Notification{},
		&model.StockAdjustment{},
		&model.AuditLog{},
	); err != nil {
		logger.Fatalf("migrate: %v", err)
	}

	//Repository（GORM実装）生成
	txManager := infraRepo.NewTxManagerGorm(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	stockRepo := infraRepo.NewStockGormRepository(gormDB)
	reviewRepo := infraRepo.NewReviewGormRepository(gormDB)
	notificationRepo := infraRepo.NewNotificationGormRepository(gormDB)

	//外部通知（トークン未設定なら無効）
	var messenger notify.Messenger
	if cfg.TelegramBotToken != "" {
		messenger = notify.NewTelegramMessenger(cfg.TelegramBotToken)
	}
	dispatcher := notify.NewDispatcher(messenger)

	//usecaseに渡す部品
	clock := &realClock{}
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := &jwtIssuer{
		secret:    []byte(cfg.JWTSecret),
		accessTTL: 15 * time.Minute,
	}

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, clock)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)
	productUC := usecase.NewProductUsecase(productRepo, stockRepo)
	sellerProductUC := usecase.NewSellerProductUsecase(txManager)
	orderUC := usecase.NewOrderUsecase(txManager, dispatcher)
	sellerOrderUC := usecase.NewSellerOrderUsecase(txManager, dispatcher, cfg.RestockOnCancel)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, dispatcher, cfg.RestockOnCancel)
	reviewUC := usecase.NewReviewUsecase(txManager, reviewRepo, dispatcher)
	notificationUC := usecase.NewNotificationUsecase(notificationRepo)

	//Handler生成
	handlers := server.Handlers{
		Auth:          handler.NewAuthHandler(registerUC, loginUC),
		Product:       handler.NewProductHandler(productUC, reviewUC),
		Order:         handler.NewOrderHandler(orderUC),
		SellerOrder:   handler.NewSellerOrderHandler(sellerOrderUC),
		SellerProduct: handler.NewSellerProductHandler(sellerProductUC),
		AdminOrder:    handler.NewAdminOrderHandler(adminOrderUC),
		Review:        handler.NewReviewHandler(reviewUC),
		Notification:  handler.NewNotificationHandler(notificationUC),
	}

	//Server起動
	addr := ":" + cfg.Port
	if cfg.Port[0] == ':' {
		addr = cfg.Port
	}

	if err := server.Start(addr, cfg, handlers); err != nil {
		logger.Fatalf("server: %v", err)
	}
}
