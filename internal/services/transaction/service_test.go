package transaction

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"storefront-backend/internal/apperror"
	"storefront-backend/internal/models"
	"storefront-backend/internal/provider/midtrans"
	"storefront-backend/internal/repository"
	"storefront-backend/internal/services/matching"
)

type mockTransactionStore struct{ mock.Mock }

func (m *mockTransactionStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	tx, _ := args.Get(0).(*models.Transaction)
	return tx, args.Error(1)
}

func (m *mockTransactionStore) FindByStatus(ctx context.Context, status string) ([]models.Transaction, error) {
	args := m.Called(ctx, status)
	txs, _ := args.Get(0).([]models.Transaction)
	return txs, args.Error(1)
}

func (m *mockTransactionStore) FindAll(ctx context.Context) ([]models.Transaction, error) {
	args := m.Called(ctx)
	txs, _ := args.Get(0).([]models.Transaction)
	return txs, args.Error(1)
}

func (m *mockTransactionStore) FindOldestUnread(ctx context.Context, status string) (*models.Transaction, error) {
	args := m.Called(ctx, status)
	tx, _ := args.Get(0).(*models.Transaction)
	return tx, args.Error(1)
}

type mockItemStore struct{ mock.Mock }

func (m *mockItemStore) FindByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]models.TransactionItem, error) {
	args := m.Called(ctx, transactionID)
	items, _ := args.Get(0).([]models.TransactionItem)
	return items, args.Error(1)
}

func (m *mockItemStore) FindByTransactionIDs(ctx context.Context, transactionIDs []uuid.UUID) ([]models.TransactionItem, error) {
	args := m.Called(ctx, transactionIDs)
	items, _ := args.Get(0).([]models.TransactionItem)
	return items, args.Error(1)
}

type mockProvider struct{ mock.Mock }

func (m *mockProvider) FetchTransactions(ctx context.Context) ([]midtrans.Record, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]midtrans.Record)
	return records, args.Error(1)
}

type fixture struct {
	txs      *mockTransactionStore
	items    *mockItemStore
	provider *mockProvider
	svc      *TransactionService
}

func newFixture() *fixture {
	f := &fixture{
		txs:      &mockTransactionStore{},
		items:    &mockItemStore{},
		provider: &mockProvider{},
	}
	f.svc = NewTransactionService(f.txs, f.items, f.provider, matching.NewEngine("VAILOVENT-"), zap.NewNop())
	return f
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.txs.AssertExpectations(t)
	f.items.AssertExpectations(t)
	f.provider.AssertExpectations(t)
}

func record(t *testing.T, fields map[string]any) midtrans.Record {
	t.Helper()
	raw, err := json.Marshal(fields)
	require.NoError(t, err)
	id, _ := fields["order_id"].(string)
	return midtrans.Record{OrderID: id, Raw: datatypes.JSON(raw)}
}

func requireKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperror.KindOf(err), "unexpected kind for %v", err)
}

func TestLookupByID_InvalidID(t *testing.T) {
	for _, id := range []string{"", "not-a-uuid", "64b7f0c2e1d3a9b8c7f6e5d4", "123"} {
		t.Run(id, func(t *testing.T) {
			f := newFixture()

			_, err := f.svc.LookupByID(context.Background(), id)

			requireKind(t, err, apperror.InvalidArgument)
			f.txs.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
			f.provider.AssertNotCalled(t, "FetchTransactions", mock.Anything)
		})
	}
}

func TestLookupByID_NotFound(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.txs.On("GetByID", mock.Anything, id).Return(nil, repository.ErrNotFound)

	_, err := f.svc.LookupByID(context.Background(), id.String())

	requireKind(t, err, apperror.NotFound)
	f.provider.AssertNotCalled(t, "FetchTransactions", mock.Anything)
	f.items.AssertNotCalled(t, "FindByTransactionID", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestLookupByID_Matched(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	tx := &models.Transaction{ID: id, Status: models.StatusCompleted, GrossAmount: decimal.NewFromInt(150000)}
	items := []models.TransactionItem{{ID: uuid.New(), TransactionID: id, ProductName: "Early Bird", Qty: 2, Amount: decimal.NewFromInt(75000)}}
	match := record(t, map[string]any{"order_id": "VAILOVENT-" + id.String(), "transaction_status": "settlement"})

	f.txs.On("GetByID", mock.Anything, id).Return(tx, nil)
	f.items.On("FindByTransactionID", mock.Anything, id).Return(items, nil)
	f.provider.On("FetchTransactions", mock.Anything).Return([]midtrans.Record{
		record(t, map[string]any{"order_id": "VAILOVENT-" + uuid.NewString()}),
		match,
	}, nil).Once()

	res, err := f.svc.LookupByID(context.Background(), id.String())

	require.NoError(t, err)
	assert.Same(t, tx, res.Transaction)
	assert.Equal(t, items, res.Items)
	require.True(t, res.Matched())
	assert.JSONEq(t, string(match.Raw), string(res.ProviderRecord.Raw))
	f.assertExpectations(t)
}

func TestLookupByID_NoProviderMatch(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.txs.On("GetByID", mock.Anything, id).Return(&models.Transaction{ID: id}, nil)
	f.items.On("FindByTransactionID", mock.Anything, id).Return([]models.TransactionItem{}, nil)
	f.provider.On("FetchTransactions", mock.Anything).Return([]midtrans.Record{
		record(t, map[string]any{"order_id": "OTHER-" + id.String()}),
	}, nil)

	res, err := f.svc.LookupByID(context.Background(), id.String())

	require.NoError(t, err)
	assert.False(t, res.Matched())
	assert.Nil(t, res.ProviderRecord)
	assert.Empty(t, res.Items)
	f.assertExpectations(t)
}

func TestLookupByID_UpperCaseIDMatchesCanonicalOrder(t *testing.T) {
	f := newFixture()
	id := uuid.MustParse("7d5b0c5e-3b4f-4b8e-9a51-0d2a7c1f6e11")
	f.txs.On("GetByID", mock.Anything, id).Return(&models.Transaction{ID: id}, nil)
	f.items.On("FindByTransactionID", mock.Anything, id).Return([]models.TransactionItem{}, nil)
	f.provider.On("FetchTransactions", mock.Anything).Return([]midtrans.Record{
		record(t, map[string]any{"order_id": "VAILOVENT-7d5b0c5e-3b4f-4b8e-9a51-0d2a7c1f6e11"}),
	}, nil)

	res, err := f.svc.LookupByID(context.Background(), "7D5B0C5E-3B4F-4B8E-9A51-0D2A7C1F6E11")

	require.NoError(t, err)
	assert.True(t, res.Matched())
}

func TestLookupByID_Failures(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(f *fixture, id uuid.UUID)
		wantKind apperror.Kind
		wantMsg  string
	}{
		{
			name: "store failure on transaction",
			setup: func(f *fixture, id uuid.UUID) {
				f.txs.On("GetByID", mock.Anything, id).Return(nil, errors.New("connection reset"))
			},
			wantKind: apperror.Internal,
			wantMsg:  "An internal server error occurred",
		},
		{
			name: "store failure on items",
			setup: func(f *fixture, id uuid.UUID) {
				f.txs.On("GetByID", mock.Anything, id).Return(&models.Transaction{ID: id}, nil)
				f.items.On("FindByTransactionID", mock.Anything, id).Return(nil, errors.New("connection reset"))
			},
			wantKind: apperror.Internal,
			wantMsg:  "An internal server error occurred",
		},
		{
			name: "provider without data",
			setup: func(f *fixture, id uuid.UUID) {
				f.txs.On("GetByID", mock.Anything, id).Return(&models.Transaction{ID: id}, nil)
				f.items.On("FindByTransactionID", mock.Anything, id).Return([]models.TransactionItem{}, nil)
				f.provider.On("FetchTransactions", mock.Anything).Return(nil, midtrans.ErrMissingData)
			},
			wantKind: apperror.UpstreamUnavailable,
			wantMsg:  "Failed to fetch transaction data from Midtrans",
		},
		{
			name: "provider with unexpected shape",
			setup: func(f *fixture, id uuid.UUID) {
				f.txs.On("GetByID", mock.Anything, id).Return(&models.Transaction{ID: id}, nil)
				f.items.On("FindByTransactionID", mock.Anything, id).Return([]models.TransactionItem{}, nil)
				f.provider.On("FetchTransactions", mock.Anything).Return(nil, midtrans.ErrInvalidFormat)
			},
			wantKind: apperror.UpstreamUnavailable,
			wantMsg:  "Invalid data format received from Midtrans",
		},
		{
			name: "provider unreachable",
			setup: func(f *fixture, id uuid.UUID) {
				f.txs.On("GetByID", mock.Anything, id).Return(&models.Transaction{ID: id}, nil)
				f.items.On("FindByTransactionID", mock.Anything, id).Return([]models.TransactionItem{}, nil)
				f.provider.On("FetchTransactions", mock.Anything).Return(nil, errors.New("dial tcp: i/o timeout"))
			},
			wantKind: apperror.Internal,
			wantMsg:  "An internal server error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			id := uuid.New()
			tt.setup(f, id)

			_, err := f.svc.LookupByID(context.Background(), id.String())

			requireKind(t, err, tt.wantKind)
			var appErr *apperror.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantMsg, appErr.Message)
			f.assertExpectations(t)
		})
	}
}

func TestLookupByID_Idempotent(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.txs.On("GetByID", mock.Anything, id).Return(&models.Transaction{ID: id}, nil)
	f.items.On("FindByTransactionID", mock.Anything, id).Return([]models.TransactionItem{}, nil)
	f.provider.On("FetchTransactions", mock.Anything).Return([]midtrans.Record{
		record(t, map[string]any{"order_id": "VAILOVENT-" + id.String(), "gross_amount": "1000.00"}),
	}, nil).Twice()

	first, err := f.svc.LookupByID(context.Background(), id.String())
	require.NoError(t, err)
	second, err := f.svc.LookupByID(context.Background(), id.String())
	require.NoError(t, err)

	assert.Equal(t, first.ProviderRecord, second.ProviderRecord)
	f.assertExpectations(t)
}

func TestListByStatus(t *testing.T) {
	t.Run("missing status", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.ListByStatus(context.Background(), "")
		requireKind(t, err, apperror.InvalidArgument)
		f.txs.AssertNotCalled(t, "FindByStatus", mock.Anything, mock.Anything)
	})

	t.Run("no rows", func(t *testing.T) {
		f := newFixture()
		f.txs.On("FindByStatus", mock.Anything, "refunded").Return([]models.Transaction{}, nil)

		_, err := f.svc.ListByStatus(context.Background(), "refunded")

		requireKind(t, err, apperror.NotFound)
		assert.Contains(t, err.Error(), "No transactions found with status 'refunded'")
		f.items.AssertNotCalled(t, "FindByTransactionIDs", mock.Anything, mock.Anything)
	})

	t.Run("batched items", func(t *testing.T) {
		f := newFixture()
		now := time.Now()
		a := models.Transaction{ID: uuid.New(), Status: models.StatusCompleted, CreatedAt: now}
		b := models.Transaction{ID: uuid.New(), Status: models.StatusCompleted, CreatedAt: now.Add(-time.Hour)}
		items := []models.TransactionItem{{TransactionID: a.ID}, {TransactionID: b.ID}}

		f.txs.On("FindByStatus", mock.Anything, models.StatusCompleted).Return([]models.Transaction{a, b}, nil)
		f.items.On("FindByTransactionIDs", mock.Anything, []uuid.UUID{a.ID, b.ID}).Return(items, nil).Once()

		res, err := f.svc.ListByStatus(context.Background(), models.StatusCompleted)

		require.NoError(t, err)
		assert.Equal(t, []models.Transaction{a, b}, res.Transactions)
		assert.Equal(t, items, res.Items)
		f.assertExpectations(t)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newFixture()
		f.txs.On("FindByStatus", mock.Anything, "pending").Return(nil, errors.New("timeout"))

		_, err := f.svc.ListByStatus(context.Background(), "pending")

		requireKind(t, err, apperror.Internal)
	})
}

func TestListAll(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		f := newFixture()
		f.txs.On("FindAll", mock.Anything).Return([]models.Transaction{}, nil)

		_, err := f.svc.ListAll(context.Background())

		requireKind(t, err, apperror.NotFound)
	})

	t.Run("returns items too", func(t *testing.T) {
		f := newFixture()
		a := models.Transaction{ID: uuid.New(), Status: models.StatusPending}
		items := []models.TransactionItem{{TransactionID: a.ID, ProductName: "VIP"}}
		f.txs.On("FindAll", mock.Anything).Return([]models.Transaction{a}, nil)
		f.items.On("FindByTransactionIDs", mock.Anything, []uuid.UUID{a.ID}).Return(items, nil)

		res, err := f.svc.ListAll(context.Background())

		require.NoError(t, err)
		assert.Len(t, res.Transactions, 1)
		assert.Equal(t, items, res.Items)
		f.assertExpectations(t)
	})

	t.Run("item failure", func(t *testing.T) {
		f := newFixture()
		a := models.Transaction{ID: uuid.New()}
		f.txs.On("FindAll", mock.Anything).Return([]models.Transaction{a}, nil)
		f.items.On("FindByTransactionIDs", mock.Anything, []uuid.UUID{a.ID}).Return(nil, errors.New("boom"))

		_, err := f.svc.ListAll(context.Background())

		requireKind(t, err, apperror.Internal)
	})
}

func TestNextUnreadCompleted(t *testing.T) {
	t.Run("oldest unread", func(t *testing.T) {
		f := newFixture()
		a := &models.Transaction{ID: uuid.New(), Status: models.StatusCompleted, CreatedAt: time.Unix(100, 0)}
		f.txs.On("FindOldestUnread", mock.Anything, models.StatusCompleted).Return(a, nil)

		res, err := f.svc.NextUnreadCompleted(context.Background())

		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, a.ID, res[0].ID)
		f.assertExpectations(t)
	})

	t.Run("none pending", func(t *testing.T) {
		f := newFixture()
		f.txs.On("FindOldestUnread", mock.Anything, models.StatusCompleted).Return(nil, repository.ErrNotFound)

		_, err := f.svc.NextUnreadCompleted(context.Background())

		requireKind(t, err, apperror.NothingPending)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newFixture()
		f.txs.On("FindOldestUnread", mock.Anything, models.StatusCompleted).Return(nil, errors.New("boom"))

		_, err := f.svc.NextUnreadCompleted(context.Background())

		requireKind(t, err, apperror.Internal)
	})
}
