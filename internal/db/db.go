package db

import (
	"fmt"
	"log/slog"

	"opinions/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open 根据驱动建立连接，sqlite 用于本地开发和测试
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}

func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.User{},
		&models.Topic{},
		&models.Opinion{},
		&models.Comment{},
		&models.Notification{},
	)
}

// Init 连接并迁移，结果保存在 DB
func Init(driver, dsn string) error {
	conn, err := Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	slog.Info("database connection established", "driver", driver)

	if err := Migrate(conn); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	slog.Info("database migration completed")

	DB = conn
	return nil
}
