package matching

import (
	"storefront-backend/internal/provider/midtrans"
)

// DefaultOrderPrefix is prepended to a local transaction id to form the
// provider-side order id.
const DefaultOrderPrefix = "VAILOVENT-"

// Engine pairs local transactions with provider records by order id.
type Engine struct {
	prefix string
}

func NewEngine(prefix string) *Engine {
	if prefix == "" {
		prefix = DefaultOrderPrefix
	}
	return &Engine{prefix: prefix}
}

// OrderID derives the provider order id for a local transaction id.
func (e *Engine) OrderID(transactionID string) string {
	return e.prefix + transactionID
}

// MatchTransaction returns the first record whose order id equals the one
// derived from transactionID, in provider order. ok is false when nothing
// matches.
func (e *Engine) MatchTransaction(transactionID string, records []midtrans.Record) (midtrans.Record, bool) {
	orderID := e.OrderID(transactionID)
	for _, r := range records {
		if r.OrderID == orderID {
			return r, true
		}
	}
	return midtrans.Record{}, false
}
