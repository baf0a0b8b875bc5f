package database

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/donote/donote/app/models"
	"github.com/donote/donote/internal/pkg/env"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

var DB *gorm.DB

// GetDB returns the handle opened by SetupDatabase.
func GetDB() *gorm.DB {
	return DB
}

// SetupDatabase connects using DB_* environment settings, retrying while the
// database container comes up, and migrates the schema.
func SetupDatabase() {
	driver := env.GetEnv("DB_DRIVER", DriverMySQL)
	dsn := dsnFromEnv(driver)

	if driver == DriverSQLite && dsn == ":memory:" {
		db, err := OpenInMemory("donote")
		if err != nil {
			panic(err)
		}
		DB = db
		log.Warn("[Database] Using in-memory SQLite, data is lost on exit")
		return
	}

	var err error
	for i := 0; i < maxRetries; i++ {
		DB, err = Open(driver, dsn)
		if err == nil {
			if err = Migrate(DB); err != nil {
				panic(fmt.Errorf("auto migrate: %w", err))
			}
			log.Infof("[Database] Connected (%s)", driver)
			return
		}

		log.Errorf("[Database] Failed to connect (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			log.Infof("[Database] Retrying in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}

	if err != nil {
		panic(err)
	}
}

func dsnFromEnv(driver string) string {
	if driver == DriverSQLite {
		return env.GetEnv("DB_PATH", "donote.db")
	}
	// "user:pass@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=True&loc=Local"
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		env.GetEnv("DB_USER", ""),
		env.GetEnv("DB_PASSWORD", ""),
		env.GetEnv("DB_HOST", "127.0.0.1"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", ""),
	)
}

// Open returns a GORM handle for the given driver. SQLite handles are limited
// to a single connection so in-memory databases stay consistent.
func Open(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{}
	if !env.IsDev() {
		cfg.Logger = logger.Default.LogMode(logger.Warn)
	}

	switch driver {
	case DriverMySQL:
		return gorm.Open(mysql.New(mysql.Config{
			DSN:                       dsn,   // data source name
			DefaultStringSize:         256,   // default size for string fields
			DisableDatetimePrecision:  true,  // disable datetime precision, which not supported before MySQL 5.6
			DontSupportRenameIndex:    true,  // drop & create when rename index, rename index not supported before MySQL 5.7, MariaDB
			DontSupportRenameColumn:   true,  // `change` when rename column, rename column not supported before MySQL 8, MariaDB
			SkipInitializeWithVersion: false, // auto configure based on currently MySQL version
		}), cfg)
	case DriverSQLite:
		db, err := gorm.Open(sqlite.Open(dsn), cfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

// Migrate creates or updates the tables owned by this service.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Donation{},
		&models.Settlement{},
		&models.CreatorSettlementInfo{},
		&models.PaymentWebhookEvent{},
	)
}

// OpenInMemory opens a private, migrated in-memory SQLite database. It backs
// local runs with DB_DRIVER=sqlite DB_PATH=:memory: and the package tests.
func OpenInMemory(name string) (*gorm.DB, error) {
	db, err := Open(DriverSQLite, "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
