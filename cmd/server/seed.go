package main

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"storefront-backend/internal/logging"
	"storefront-backend/internal/models"
	"storefront-backend/internal/repository"
)

func seedCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert a sample transaction with two items",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer logging.Sync(logger)

			if err := migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			ctx := cmd.Context()
			txRepo := repository.NewTransactionRepository(db)
			itemRepo := repository.NewTransactionItemRepository(db)

			details, err := json.Marshal(map[string]string{
				"first_name": "Sample",
				"email":      "sample@example.com",
			})
			if err != nil {
				return err
			}

			regular := decimal.NewFromInt(150000)
			vip := decimal.NewFromInt(350000)
			tx := &models.Transaction{
				CustomerName:    "Sample Customer",
				CustomerEmail:   "sample@example.com",
				GrossAmount:     regular.Mul(decimal.NewFromInt(2)).Add(vip),
				PaymentType:     "bank_transfer",
				Status:          status,
				CustomerDetails: datatypes.JSON(details),
			}
			if err := txRepo.Create(ctx, tx); err != nil {
				return fmt.Errorf("create transaction: %w", err)
			}

			items := []models.TransactionItem{
				{TransactionID: tx.ID, ProductID: "regular", ProductName: "Regular Ticket", Qty: 2, Amount: regular},
				{TransactionID: tx.ID, ProductID: "vip", ProductName: "VIP Ticket", Qty: 1, Amount: vip},
			}
			if err := itemRepo.CreateBatch(ctx, items); err != nil {
				return fmt.Errorf("create items: %w", err)
			}

			logger.Info("sample transaction created",
				zap.String("transaction_id", tx.ID.String()),
				zap.String("order_id", cfg.OrderPrefix+tx.ID.String()),
				zap.String("status", tx.Status),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "completed", "status of the sample transaction")
	return cmd
}
