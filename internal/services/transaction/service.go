package transaction

import (
	"context"
	"errors"
	"fmt"

	"storefront-backend/internal/apperror"
	"storefront-backend/internal/models"
	"storefront-backend/internal/provider/midtrans"
	"storefront-backend/internal/repository"
	"storefront-backend/internal/services/matching"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TransactionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	FindByStatus(ctx context.Context, status string) ([]models.Transaction, error)
	FindAll(ctx context.Context) ([]models.Transaction, error)
	FindOldestUnread(ctx context.Context, status string) (*models.Transaction, error)
}

type ItemStore interface {
	FindByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]models.TransactionItem, error)
	FindByTransactionIDs(ctx context.Context, transactionIDs []uuid.UUID) ([]models.TransactionItem, error)
}

type ProviderClient interface {
	FetchTransactions(ctx context.Context) ([]midtrans.Record, error)
}

// LookupResult is a local transaction together with its items and the
// provider record sharing its order id, if any.
type LookupResult struct {
	Transaction    *models.Transaction      `json:"transaction"`
	Items          []models.TransactionItem `json:"transactionItems"`
	ProviderRecord *midtrans.Record         `json:"midtransData"`
}

func (r *LookupResult) Matched() bool {
	return r.ProviderRecord != nil
}

type Listing struct {
	Transactions []models.Transaction     `json:"Transactions"`
	Items        []models.TransactionItem `json:"TransactionItems"`
}

type TransactionService struct {
	transactions TransactionStore
	items        ItemStore
	provider     ProviderClient
	matcher      *matching.Engine
	logger       *zap.Logger
}

func NewTransactionService(
	transactions TransactionStore,
	items ItemStore,
	provider ProviderClient,
	matcher *matching.Engine,
	logger *zap.Logger,
) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		items:        items,
		provider:     provider,
		matcher:      matcher,
		logger:       logger,
	}
}

// LookupByID loads a transaction and its items and pairs it with the
// provider's record for the same order. A missing provider record is not an
// error.
func (s *TransactionService) LookupByID(ctx context.Context, transactionID string) (*LookupResult, error) {
	id, err := uuid.Parse(transactionID)
	if transactionID == "" || err != nil {
		return nil, apperror.New(apperror.InvalidArgument, "Invalid or missing Transaction ID")
	}

	tx, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.New(apperror.NotFound, "Transaction not found")
		}
		return nil, s.internal("load transaction", err, zap.String("transaction_id", transactionID))
	}

	items, err := s.items.FindByTransactionID(ctx, id)
	if err != nil {
		return nil, s.internal("load transaction items", err, zap.String("transaction_id", transactionID))
	}

	records, err := s.provider.FetchTransactions(ctx)
	if err != nil {
		switch {
		case errors.Is(err, midtrans.ErrMissingData):
			s.logger.Warn("provider response without data", zap.Error(err))
			return nil, apperror.Wrap(apperror.UpstreamUnavailable, "Failed to fetch transaction data from Midtrans", err)
		case errors.Is(err, midtrans.ErrInvalidFormat):
			s.logger.Warn("provider response in unexpected format", zap.Error(err))
			return nil, apperror.Wrap(apperror.UpstreamUnavailable, "Invalid data format received from Midtrans", err)
		default:
			return nil, s.internal("fetch provider transactions", err, zap.String("transaction_id", transactionID))
		}
	}

	// uuid.Parse also accepts upper-case and braced input; match on the
	// canonical form.
	result := &LookupResult{Transaction: tx, Items: items}
	if rec, ok := s.matcher.MatchTransaction(tx.ID.String(), records); ok {
		result.ProviderRecord = &rec
	}
	return result, nil
}

// ListByStatus returns transactions with exactly the given status, newest
// first, with the items of all of them.
func (s *TransactionService) ListByStatus(ctx context.Context, status string) (*Listing, error) {
	if status == "" {
		return nil, apperror.New(apperror.InvalidArgument, "Status parameter is required")
	}

	txs, err := s.transactions.FindByStatus(ctx, status)
	if err != nil {
		return nil, s.internal("list transactions by status", err, zap.String("status", status))
	}
	if len(txs) == 0 {
		return nil, apperror.New(apperror.NotFound, fmt.Sprintf("No transactions found with status '%s'", status))
	}

	return s.withItems(ctx, txs)
}

// ListAll returns every transaction, newest first, with their items.
func (s *TransactionService) ListAll(ctx context.Context) (*Listing, error) {
	txs, err := s.transactions.FindAll(ctx)
	if err != nil {
		return nil, s.internal("list transactions", err)
	}
	if len(txs) == 0 {
		return nil, apperror.New(apperror.NotFound, "No transactions found")
	}

	return s.withItems(ctx, txs)
}

// NextUnreadCompleted returns the oldest completed transaction nobody has
// read yet. It does not mark it read.
func (s *TransactionService) NextUnreadCompleted(ctx context.Context) ([]models.Transaction, error) {
	tx, err := s.transactions.FindOldestUnread(ctx, models.StatusCompleted)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.New(apperror.NothingPending, "No transaction found")
		}
		return nil, s.internal("find unread completed transaction", err)
	}
	return []models.Transaction{*tx}, nil
}

func (s *TransactionService) withItems(ctx context.Context, txs []models.Transaction) (*Listing, error) {
	ids := make([]uuid.UUID, 0, len(txs))
	for _, tx := range txs {
		ids = append(ids, tx.ID)
	}

	items, err := s.items.FindByTransactionIDs(ctx, ids)
	if err != nil {
		return nil, s.internal("load transaction items", err, zap.Int("transactions", len(ids)))
	}

	return &Listing{Transactions: txs, Items: items}, nil
}

func (s *TransactionService) internal(op string, err error, fields ...zap.Field) error {
	s.logger.Error(op+" failed", append(fields, zap.Error(err))...)
	return apperror.Wrap(apperror.Internal, "An internal server error occurred", fmt.Errorf("%s: %w", op, err))
}
