package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type PoolConfig struct {
	MinConns    int
	MaxConns    int
	MaxLifetime time.Duration
}

// Open connects gorm to Postgres over a bounded pool and checks the
// connection once before returning.
func Open(ctx context.Context, dsn string, pool PoolConfig, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: NewGormLogger(log)})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle: %w", err)
	}
	if err := ConfigurePool(sqlDB, pool); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info("connected to database",
		zap.Int("pool_min", pool.MinConns), zap.Int("pool_max", pool.MaxConns))
	return db, nil
}

func ConfigurePool(sqlDB *sql.DB, pool PoolConfig) error {
	if pool.MaxConns <= 0 || pool.MinConns < 0 || pool.MinConns > pool.MaxConns {
		return fmt.Errorf("invalid pool bounds min=%d max=%d", pool.MinConns, pool.MaxConns)
	}
	sqlDB.SetMaxOpenConns(pool.MaxConns)
	sqlDB.SetMaxIdleConns(pool.MinConns)
	if pool.MaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.MaxLifetime)
	}
	return nil
}

// NewGormLogger routes gorm warnings through zap. Queries are logged with
// placeholders only, so bound values such as password hashes never reach
// the log.
func NewGormLogger(log *zap.Logger) logger.Interface {
	return logger.New(zap.NewStdLog(log.Named("gorm")), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
		Colorful:                  false,
	})
}
