package database

import (
	"log"

	"repairmybike-api/config"
	"repairmybike-api/internal/domain/billing"
	"repairmybike-api/internal/domain/bookings"
	"repairmybike-api/internal/domain/catalog"
	"repairmybike-api/internal/domain/parts"
	"repairmybike-api/internal/domain/plans"
	"repairmybike-api/internal/domain/shop"
	"repairmybike-api/internal/domain/users"
	"repairmybike-api/internal/domain/vehicles"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	dsn := config.DB_URL
	if dsn == "" {
		log.Fatal("❌ DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		zap.L().Fatal("❌ Failed to connect to database", zap.Error(err))
	}

	DB = db

	if err := Migrate(DB); err != nil {
		zap.L().Fatal("❌ AutoMigrate error", zap.Error(err))
	}

	zap.L().Info("✅ Connected and migrated successfully")
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return err
	}

	err := db.AutoMigrate(
		// auth
		&users.User{},
		&users.UserSession{},
		&users.PhoneOTP{},
		&users.EmailOTP{},
		&users.OTPAttempt{},
		&users.OTPSend{},
		&users.StaffDirectory{},

		// catalog
		&vehicles.VehicleType{},
		&vehicles.VehicleBrand{},
		&vehicles.VehicleModel{},
		&catalog.ServiceCategory{},
		&catalog.Service{},
		&catalog.ServicePricing{},

		// plans
		&plans.Plan{},
		&plans.Subscription{},

		// bookings + payments
		&bookings.Customer{},
		&bookings.Booking{},
		&bookings.BookingService{},
		&billing.Payment{},

		// shop
		&shop.ShopInfo{},
		&parts.PartCategory{},
		&parts.PartBrand{},
		&parts.SparePart{},
		&parts.PartImage{},
		&parts.PartFitment{},
		&parts.Cart{},
		&parts.CartItem{},
		&parts.Order{},
		&parts.OrderItem{},
	)
	if err != nil {
		return err
	}

	// window_started_at is NOT NULL and no longer written.
	if db.Migrator().HasColumn(&users.OTPAttempt{}, "window_started_at") {
		return db.Migrator().DropColumn(&users.OTPAttempt{}, "window_started_at")
	}
	return nil
}
