package repository

import (
	"context"
	"errors"

	"storefront-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// GetByID fetch a single transaction by ID
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).First(&tx, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// FindByStatus returns transactions with the exact status, newest first.
func (r *TransactionRepository) FindByStatus(ctx context.Context, status string) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&txs).Error
	return txs, err
}

// FindAll returns every transaction, newest first.
func (r *TransactionRepository) FindAll(ctx context.Context) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&txs).Error
	return txs, err
}

// FindOldestUnread returns the oldest transaction with the given status that
// has not been marked read yet.
func (r *TransactionRepository) FindOldestUnread(ctx context.Context, status string) (*models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Where("status = ? AND is_read = ?", status, false).
		Order("created_at ASC").
		Limit(1).
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, ErrNotFound
	}
	return &txs[0], nil
}

// Create inserts a transaction; used by seeding and tests.
func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(tx).Error
}
