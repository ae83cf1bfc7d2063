package database

import (
	"fmt"
	"log"
	"strings"

	config "github.com/benerin-indonesia/benerin/configs"
	"github.com/benerin-indonesia/benerin/models"
	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func gormConfig() *gorm.Config {
	return &gorm.Config{
		PrepareStmt:                              false,
		DisableForeignKeyConstraintWhenMigrating: true,
		DisableNestedTransaction:                 true,
	}
}

// ConnectDB opens DATABASE_URL. A "sqlite:" prefix selects a local SQLite file,
// anything else is handed to the postgres driver.
func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	if path, ok := strings.CutPrefix(dsn, "sqlite:"); ok {
		DB, err = OpenSQLite(path)
	} else {
		DB, err = Open(postgres.Open(dsn))
	}
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	return gorm.Open(dialector, gormConfig())
}

// OpenSQLite opens a SQLite database on a single connection, so transactions
// serialize the same way row locks do on postgres. Use ":memory:" in tests.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := Open(sqlite.Open(path))
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Technician{},
		&models.ServiceRequest{},
		&models.Payment{},
		&models.Refund{},
		&models.Payout{},
		&models.LedgerEntry{},
	)
}

func Migrate() {
	if err := AutoMigrate(DB); err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

func SeedAdmin() {
	adminEmail := config.Config("ADMIN_EMAIL")
	adminPassword := config.Config("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		log.Println("⚠️ ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed.")
		return
	}

	var count int64
	err := DB.Model(&models.User{}).Where("email = ?", adminEmail).Count(&count).Error
	if err != nil {
		log.Fatalf("🔥 Failed to check for admin user: %v", err)
		return
	}

	if count > 0 {
		log.Println("Admin user already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash admin password: %v", err)
		return
	}

	adminUser := models.User{
		FullName: config.ConfigDefault("ADMIN_FULL_NAME", "Admin Benerin"),
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
	}

	if err := DB.Create(&adminUser).Error; err != nil {
		log.Fatalf("🔥 Failed to seed admin user: %v", err)
		return
	}

	log.Println("✅ Admin user seeded successfully")
}
