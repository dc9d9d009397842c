package repository

import (
	"context"

	"storefront-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionItemRepository struct {
	db *gorm.DB
}

func NewTransactionItemRepository(db *gorm.DB) *TransactionItemRepository {
	return &TransactionItemRepository{db: db}
}

// FindByTransactionID returns the items of one transaction. An empty slice
// is a valid result.
func (r *TransactionItemRepository) FindByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]models.TransactionItem, error) {
	items := []models.TransactionItem{}
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// FindByTransactionIDs loads items for many transactions in one query.
func (r *TransactionItemRepository) FindByTransactionIDs(ctx context.Context, transactionIDs []uuid.UUID) ([]models.TransactionItem, error) {
	items := []models.TransactionItem{}
	if len(transactionIDs) == 0 {
		return items, nil
	}
	err := r.db.WithContext(ctx).
		Where("transaction_id IN ?", transactionIDs).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// CreateBatch inserts items in one statement.
func (r *TransactionItemRepository) CreateBatch(ctx context.Context, items []models.TransactionItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(&items).Error
}
