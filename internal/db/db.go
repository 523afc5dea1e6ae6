package db

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"arc-backend/internal/config"
)

var (
	conn    *gorm.DB
	initErr error
	once    sync.Once
)

// ErrNoDatabaseURL is returned when DATABASE_URL is unset.
var ErrNoDatabaseURL = errors.New("db: DATABASE_URL is not set")

// InitDBFromConfig opens the shared postgres connection once and applies the
// pool settings from config.xml.
func InitDBFromConfig(cfg *config.APIConfig) (*gorm.DB, error) {
	once.Do(func() {
		conn, initErr = Open(cfg.Env.DatabaseURL, cfg.DB)
	})
	return conn, initErr
}

// Open connects to postgres without touching the shared connection.
func Open(dsn string, c config.DBConfig) (*gorm.DB, error) {
	if dsn == "" {
		return nil, ErrNoDatabaseURL
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logLevel(c.LogLevel)),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	if c.Pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(c.Pool.MaxOpenConns)
	}
	if c.Pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(c.Pool.MaxIdleConns)
	}
	if c.Pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(c.Pool.ConnMaxLifetime) * time.Minute)
	}
	return gdb, nil
}

func logLevel(s string) logger.LogLevel {
	switch strings.ToLower(s) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
