package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionItem is one purchased line of a Transaction.
type TransactionItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TransactionID uuid.UUID       `gorm:"type:uuid;index;not null" json:"transaction_id"`
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Qty           int             `json:"qty"`
	Amount        decimal.Decimal `gorm:"type:numeric(14,2)" json:"amount"`
	CreatedAt     time.Time       `json:"created_at"`
}
