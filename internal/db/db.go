package db

import (
	"database/sql"
	"errors"
	"fmt"

	"pixlink/internal/config"
	"pixlink/internal/logger"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

var ErrMissingDBURL = errors.New("DB_URL is required for the postgres store")

func NewDatabase(cfg *config.Config) (*sql.DB, error) {
	return newDatabaseWithDriver(cfg, "postgres")
}

func newDatabaseWithDriver(cfg *config.Config, driver string) (*sql.DB, error) {
	if cfg.DBURL == "" {
		return nil, ErrMissingDBURL
	}

	db, err := sql.Open(driver, cfg.DBURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	logger.L().Info("database connection established", zap.String("driver", driver))
	return db, nil
}
