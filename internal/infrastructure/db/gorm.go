package db

import (
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lendflow-backend/internal/domain/audit"
	"lendflow-backend/internal/domain/kyc"
	"lendflow-backend/internal/domain/loan"
	"lendflow-backend/internal/domain/loantype"
	"lendflow-backend/internal/domain/notification"
	"lendflow-backend/internal/domain/user"
)

func OpenGorm(dsn, env string) (*gorm.DB, error) {
	mode := logger.Info
	if env == "prod" {
		mode = logger.Warn
	}
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(mode),
	}
	db, err := gorm.Open(mysql.Open(dsn), cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	log.Println("gorm: connected")
	return db, nil
}

// Migrate creates or updates the schema for every persisted entity.
// Referenced tables come first.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},
		&user.CustomerProfile{},
		&user.MerchantProfile{},
		&user.BankerProfile{},
		&loantype.Bank{},
		&loantype.LoanType{},
		&kyc.Document{},
		&loan.Loan{},
		&loan.Document{},
		&audit.Entry{},
		&notification.Notification{},
	)
}
