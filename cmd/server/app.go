package main

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront-backend/internal/config"
	"storefront-backend/internal/logging"
	"storefront-backend/internal/models"
)

const serviceName = "storefront-backend"

// bootstrap loads config, builds the logger and opens the database; shared
// by every subcommand.
func bootstrap() (config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(logging.Config{
		ServiceName: serviceName,
		Env:         cfg.AppEnv,
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("build logger: %w", err)
	}
	cfg.Log(logger)

	db, err := config.InitDB(cfg)
	if err != nil {
		return config.Config{}, nil, nil, err
	}

	return cfg, logger, db, nil
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Transaction{},
		&models.TransactionItem{},
	)
}
