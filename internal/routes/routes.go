package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront-backend/internal/config"
	handler "storefront-backend/internal/handlers"
	"storefront-backend/internal/provider/midtrans"
	"storefront-backend/internal/repository"
	"storefront-backend/internal/services/matching"
	service "storefront-backend/internal/services/transaction"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config, logger *zap.Logger) {
	transactionRepo := repository.NewTransactionRepository(db)
	itemRepo := repository.NewTransactionItemRepository(db)
	providerClient := midtrans.NewClient(cfg.ProviderURL, cfg.ProviderTimeout)

	transactionService := service.NewTransactionService(
		transactionRepo,
		itemRepo,
		providerClient,
		matching.NewEngine(cfg.OrderPrefix),
		logger.Named("transaction"),
	)

	transactionHandler := handler.NewTransactionHandler(transactionService)

	api := r.Group("/api")

	// Health check
	api.GET("/health", handler.Health(func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}))

	transactionHandler.Register(api)
}
