package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/krobus00/symbol-store/internal/config"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const (
	defaultConnectTimeout = 5 * time.Second
	defaultMaxIdleConns   = 2
	defaultMaxOpenConns   = 10
	defaultConnLifetime   = 1 * time.Hour
)

func NewPostgresConnection(ctx context.Context, logger *logrus.Logger, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("database dsn is required")
	}

	connectTimeout := cfg.PingInterval
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}

	maxRetry := max(cfg.MaxRetry, 0)
	policy := newBackoffPolicy(cfg.ReconnectFactor, cfg.MinJitter, cfg.MaxJitter)

	var lastErr error
	for attempt := 0; attempt <= maxRetry; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		attemptCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		db, err := sqlx.ConnectContext(attemptCtx, "postgres", cfg.DSN)
		cancel()
		if err == nil {
			configurePool(db, cfg)
			logger.WithField("max_retry", maxRetry).Info("postgres connection established")
			return db, nil
		}

		lastErr = err
		if attempt == maxRetry {
			break
		}

		wait := policy.delay(attempt)
		logger.WithFields(logrus.Fields{
			"attempt":      attempt + 1,
			"retry_in":     wait.String(),
			"postgres_dsn": maskDSN(cfg.DSN),
		}).Warnf("postgres connection failed: %v", err)

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("connect postgres after %d attempts: %w", maxRetry+1, lastErr)
}

func configurePool(db *sqlx.DB, cfg config.DatabaseConfig) {
	idle := cfg.MaxIdleConns
	if idle <= 0 {
		idle = defaultMaxIdleConns
	}
	open := cfg.MaxActiveConns
	if open <= 0 {
		open = defaultMaxOpenConns
	}
	lifetime := cfg.MaxConnLifetime
	if lifetime <= 0 {
		lifetime = defaultConnLifetime
	}

	db.SetMaxIdleConns(idle)
	db.SetMaxOpenConns(open)
	db.SetConnMaxLifetime(lifetime)
}

func maskDSN(dsn string) string {
	at := strings.Index(dsn, "@")
	if at == -1 {
		return dsn
	}

	scheme := strings.Index(dsn[:at], "://")
	if scheme == -1 {
		return "***" + dsn[at:]
	}

	return dsn[:scheme+3] + "***" + dsn[at:]
}
