package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	httpadp "lendflow-backend/internal/adapter/http"
	mw "lendflow-backend/internal/adapter/middleware"
	"lendflow-backend/internal/adapter/repository/mysql"
	"lendflow-backend/internal/config"
	"lendflow-backend/internal/domain/user"
	"lendflow-backend/internal/infrastructure/cache"
	"lendflow-backend/internal/infrastructure/db"
	"lendflow-backend/internal/infrastructure/notify"
	"lendflow-backend/internal/infrastructure/queue"
	"lendflow-backend/internal/infrastructure/storage"
	"lendflow-backend/internal/observability"
	adminuc "lendflow-backend/internal/usecase/admin"
	kycuc "lendflow-backend/internal/usecase/kyc"
	loanuc "lendflow-backend/internal/usecase/loan"
	"lendflow-backend/pkg/schema"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := observability.NewLogger(cfg.Env)

	gdb, err := db.OpenGorm(cfg.MySQLDSN(), cfg.Env)
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	store, err := storage.NewCloudinaryStore(cfg.CloudinaryURL)
	if err != nil {
		log.Fatalf("cloudinary: %v", err)
	}

	producer := queue.NewProducer(cfg.KafkaBroker, cfg.KafkaTopic)
	defer producer.Close()

	// repositories
	loans := mysql.NewLoanRepository(gdb)
	users := mysql.NewUserRepository(gdb)
	docs := mysql.NewKYCRepository(gdb)
	loanTypes := mysql.NewLoanTypeRepository(gdb)
	notifications := mysql.NewNotificationRepository(gdb)
	unit := mysql.NewGormUoW(gdb)

	dispatcher := notify.NewDispatcher(notifications, producer, logger)
	validator := schema.New()
	verifier := kycuc.NewVerifier(docs, store)

	kycUC := kycuc.NewUsecase(docs, users, unit, store, dispatcher, logger)
	loanUC := loanuc.NewUsecase(unit, loans, users, loanTypes, docs, validator, verifier, kycUC, dispatcher, logger)
	adminUC := adminuc.NewUsecase(users, loanTypes, unit, validator, logger)

	h := httpadp.NewHandler()
	loanH := httpadp.NewLoanHandler(loanUC)
	kycH := httpadp.NewKYCHandler(kycUC, users)
	adminH := httpadp.NewAdminHandler(adminUC)
	notifH := httpadp.NewNotificationHandler(notifications)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	e.GET("/health", h.Health)

	api := e.Group("/api/v1", mw.JWTAuth(cfg.JWTSecret), mw.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, logger))

	api.POST("/loans", loanH.Apply, mw.RequireRole(user.RoleMerchant))
	api.GET("/loans", loanH.List)
	api.GET("/loans/:loan_id", loanH.Get)
	api.POST("/loans/:loan_id/assign", loanH.Assign, mw.RequireRole(user.RoleBanker, user.RoleAdmin))
	api.POST("/loans/:loan_id/approve", loanH.Approve, mw.RequireRole(user.RoleBanker))
	api.POST("/loans/:loan_id/reject", loanH.Reject, mw.RequireRole(user.RoleBanker))
	api.POST("/loans/:loan_id/disburse", loanH.Disburse, mw.RequireRole(user.RoleBanker))
	api.POST("/loans/:loan_id/cancel", loanH.Cancel)

	api.POST("/kyc/documents/upload-url", kycH.GenerateUploadURL)
	api.POST("/kyc/documents/:doc_id/complete", kycH.CompleteUpload)
	api.POST("/kyc/documents/:doc_id/verify", kycH.VerifyDocument, mw.RequireRole(user.RoleBanker, user.RoleAdmin))
	api.GET("/kyc/documents", kycH.ListDocuments)
	api.GET("/kyc/readiness", kycH.Readiness)

	api.GET("/notifications", notifH.List)
	api.POST("/notifications/:id/read", notifH.MarkRead)

	adm := api.Group("/admin", mw.RequireRole(user.RoleAdmin))
	adm.POST("/loan-types", adminH.CreateLoanType)
	adm.PUT("/loan-types/:type_id", adminH.UpdateLoanType)
	adm.GET("/loan-types", adminH.ListLoanTypes)
	adm.POST("/banks", adminH.CreateBank)
	adm.PUT("/users/:user_id/status", adminH.SetUserStatus)
	adm.PUT("/users/:user_id/banker-active", adminH.SetBankerActive)

	addr := ":" + cfg.AppPort
	logger.Info("listening", "addr", addr, "env", cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
