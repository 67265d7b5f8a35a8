package database

import (
	"log"

	"rishta/config"
	"rishta/internal/domain"
	"rishta/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error), // only log errors, not every SQL query
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Interest{},
		&models.CallSession{},
		&models.CallLogEntry{},
		&models.CallCreditBalance{},
		&models.CreditPackage{},
		&models.Payment{},
		&models.Notification{},
		&models.AuditLog{},
	)
}

// SeedAdmin creates the default admin account if none exists.
func SeedAdmin(db *gorm.DB) {
	var count int64
	db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&count)
	if count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("admin-change-me"), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[seed] bcrypt: %v", err)
		return
	}
	admin := &models.User{
		Email:         "admin@rishta.local",
		Phone:         "0000000000",
		PasswordHash:  string(hash),
		Role:          domain.RoleAdmin,
		AccountStatus: domain.AccountStatusActive,
	}
	if err := db.Create(admin).Error; err != nil {
		log.Printf("[seed] admin: %v", err)
		return
	}
	log.Printf("[seed] created default admin %s", admin.Email)
}

// SeedCreditPackages inserts the default purchasable packages once.
func SeedCreditPackages(db *gorm.DB) {
	var count int64
	db.Model(&models.CreditPackage{}).Count(&count)
	if count > 0 {
		return
	}
	packages := []models.CreditPackage{
		{Name: "Starter", Credits: 10, PriceCents: 9900, Currency: "INR", ValidityDays: 30, IsActive: true},
		{Name: "Standard", Credits: 30, PriceCents: 24900, Currency: "INR", ValidityDays: 60, IsActive: true},
		{Name: "Premium", Credits: 100, PriceCents: 59900, Currency: "INR", ValidityDays: 90, IsActive: true},
	}
	for i := range packages {
		if err := db.Create(&packages[i]).Error; err != nil {
			log.Printf("[seed] credit package %s: %v", packages[i].Name, err)
		}
	}
}
