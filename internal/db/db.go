package db

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"sufganiot/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Open 根据 DATABASE_URL 前缀选择驱动：postgres://… / postgresql://… 或 sqlite://…
func Open(databaseURL string, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		dialector = postgres.Open(databaseURL)
		log.Println("Connecting to PostgreSQL database...")
	case strings.HasPrefix(databaseURL, "sqlite://"):
		dsn := strings.TrimPrefix(databaseURL, "sqlite://")
		dialector = sqlite.Open(dsn)
		log.Println("Connecting to SQLite database at", dsn)
	default:
		return nil, fmt.Errorf("invalid DATABASE_URL %q: must start with postgres:// or sqlite://", databaseURL)
	}

	logMode := logger.Silent
	if debug {
		logMode = logger.Info
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logMode),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if conn.Dialector.Name() == "sqlite" {
		// SQLite 单写者，串行化连接避免 database is locked
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
	}

	log.Println("Database connection established")
	return conn, nil
}

// Migrate 建表并确保 Settings 单例存在
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.Couple{},
		&models.Sufgania{},
		&models.Vote{},
		&models.Comment{},
		&models.Settings{},
		&models.Activity{},
	)
	if err != nil {
		return err
	}
	log.Println("Database migration completed")

	_, err = EnsureSettings(conn)
	return err
}

// EnsureSettings get-or-create 单例设置行。并发首次访问时依赖主键冲突 DO NOTHING。
func EnsureSettings(conn *gorm.DB) (*models.Settings, error) {
	var settings models.Settings
	err := conn.First(&settings, models.SettingsID).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	settings = models.Settings{ID: models.SettingsID}
	if err := conn.Clauses(clause.OnConflict{DoNothing: true}).Create(&settings).Error; err != nil {
		return nil, err
	}
	if err := conn.First(&settings, models.SettingsID).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}
