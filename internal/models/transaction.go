package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Known values of Transaction.Status. The column is free-form; other
// collaborators may write values not listed here.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type Transaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	CustomerPhone   string          `json:"customer_phone"`
	GrossAmount     decimal.Decimal `gorm:"type:numeric(14,2)" json:"gross_amount"`
	PaymentType     string          `json:"payment_type"`
	Status          string          `gorm:"index" json:"status"`
	IsRead          bool            `gorm:"column:is_read;not null;default:false;index" json:"is_read"`
	CustomerDetails datatypes.JSON  `json:"customer_details,omitempty"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
