package handler

import (
	"context"
	"fmt"

	"storefront-backend/internal/models"
	service "storefront-backend/internal/services/transaction"

	"github.com/gin-gonic/gin"
)

type TransactionService interface {
	LookupByID(ctx context.Context, transactionID string) (*service.LookupResult, error)
	ListByStatus(ctx context.Context, status string) (*service.Listing, error)
	ListAll(ctx context.Context) (*service.Listing, error)
	NextUnreadCompleted(ctx context.Context) ([]models.Transaction, error)
}

type TransactionHandler struct {
	service TransactionService
}

func NewTransactionHandler(s TransactionService) *TransactionHandler {
	return &TransactionHandler{service: s}
}

// GetByID returns the stored transaction, its items and the matching
// provider record.
func (h *TransactionHandler) GetByID(c *gin.Context) {
	res, err := h.service.LookupByID(c.Request.Context(), c.Param("transaction_id"))
	if err != nil {
		respondError(c, err, false)
		return
	}

	message := "No matching transaction found in Midtrans"
	if res.Matched() {
		message = "Matching transaction found"
	}
	respondOK(c, message, res)
}

func (h *TransactionHandler) ListByStatus(c *gin.Context) {
	status := c.Param("status")
	listing, err := h.service.ListByStatus(c.Request.Context(), status)
	if err != nil {
		respondError(c, err, true)
		return
	}

	respondOK(c, fmt.Sprintf("Transactions with status '%s' successfully retrieved", status), listing)
}

func (h *TransactionHandler) ListAll(c *gin.Context) {
	listing, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err, true)
		return
	}

	respondOK(c, "Transactions successfully retrieved", listing)
}

// PendingNotification returns the oldest completed transaction that has not
// been read.
func (h *TransactionHandler) PendingNotification(c *gin.Context) {
	txs, err := h.service.NextUnreadCompleted(c.Request.Context())
	if err != nil {
		respondError(c, err, true)
		return
	}

	respondOK(c, "Transactions successfully retrieved", txs)
}

// Register mounts the transaction routes on rg.
func (h *TransactionHandler) Register(rg *gin.RouterGroup) {
	tx := rg.Group("/transaction")
	tx.GET("", h.ListAll)
	tx.GET("/pending-notification", h.PendingNotification)
	tx.GET("/status/", h.ListByStatus)
	tx.GET("/status/:status", h.ListByStatus)
	tx.GET("/:transaction_id", h.GetByID)
}
