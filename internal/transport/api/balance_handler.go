package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/payflow/balance-svc/internal/domain"
	"github.com/payflow/balance-svc/internal/service"
)

type BalanceHandler struct {
	svs BalanceServicer
}

func NewBalanceHandler(svs BalanceServicer) *BalanceHandler {
	return &BalanceHandler{
		svs: svs,
	}
}

// BalanceResponse - снимок счета. Суммы сериализуются строками, float для денег
// не используется.
type BalanceResponse struct {
	UserID           string          `json:"userId"`
	CurrentBalance   decimal.Decimal `json:"currentBalance"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	ReservedBalance  decimal.Decimal `json:"reservedBalance"`
	Currency         string          `json:"currency"`
}

func newBalanceResponse(s *domain.BalanceSnapshot) *BalanceResponse {
	return &BalanceResponse{
		UserID:           s.UserID,
		CurrentBalance:   s.CurrentBalance,
		AvailableBalance: s.AvailableBalance,
		ReservedBalance:  s.ReservedBalance,
		Currency:         s.Currency,
	}
}

type OperationParams struct {
	Amount        decimal.Decimal `json:"amount" binding:"required,decimal_gt_zero"`
	Description   *string         `json:"description"`
	TransactionID *uuid.UUID      `json:"transactionId"`
}

func (b *BalanceHandler) Index(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	snapshot, err := b.svs.GetBalance(reqCtx, c.Param("userId"))
	if err != nil {
		abortWithOperationError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBalanceResponse(snapshot))
}

func (b *BalanceHandler) Credit(c *gin.Context) {
	b.operation(c, b.svs.Credit)
}

func (b *BalanceHandler) Debit(c *gin.Context) {
	b.operation(c, b.svs.Debit)
}

func (b *BalanceHandler) Reserve(c *gin.Context) {
	b.operation(c, b.svs.Reserve)
}

func (b *BalanceHandler) Release(c *gin.Context) {
	b.operation(c, b.svs.Release)
}

type operationFunc func(ctx context.Context, userID string, args service.OperationArgs) (*domain.BalanceSnapshot, error)

func (b *BalanceHandler) operation(c *gin.Context, fn operationFunc) {
	var params OperationParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	snapshot, err := fn(reqCtx, c.Param("userId"), service.OperationArgs{
		Amount:        params.Amount,
		Description:   params.Description,
		TransactionID: params.TransactionID,
	})
	if err != nil {
		abortWithOperationError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBalanceResponse(snapshot))
}

type TransactionsResponseItem struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balanceBefore"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
	Description   *string         `json:"description,omitempty"`
	TransactionID *uuid.UUID      `json:"transactionId,omitempty"`
	CreatedAt     string          `json:"createdAt"`
}

func (b *BalanceHandler) Transactions(c *gin.Context) {
	page := parseUintQuery(c, "page", 1)
	pageSize := parseUintQuery(c, "pageSize", 0)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transactions, err := b.svs.Transactions(reqCtx, c.Param("userId"), page, pageSize)
	if err != nil {
		abortWithOperationError(c, err)
		return
	}

	response := make([]TransactionsResponseItem, len(transactions))
	for i, transaction := range transactions {
		response[i] = TransactionsResponseItem{
			ID:            transaction.ID,
			Type:          string(transaction.Type),
			Amount:        transaction.Amount,
			BalanceBefore: transaction.BalanceBefore,
			BalanceAfter:  transaction.BalanceAfter,
			Description:   transaction.Description,
			TransactionID: transaction.TransactionID,
			CreatedAt:     transaction.CreatedAt.Format(time.RFC3339),
		}
	}

	c.JSON(http.StatusOK, response)
}

func (b *BalanceHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "balance-service"})
}

// abortWithOperationError переводит ошибки сервиса в статусы HTTP.
// ErrLockTimeout отдается как 409: вызывающий может повторить запрос.
// Нарушение инвариантов не маскируется под бизнес-ошибку и уходит как 500.
func abortWithOperationError(c *gin.Context, err error) {
	var invariantErr *domain.InvariantViolationError

	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		_ = c.AbortWithError(http.StatusBadRequest, err).SetType(gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrBalanceNotFound):
		_ = c.AbortWithError(http.StatusNotFound, err).SetType(gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrInsufficientAvailableBalance),
		errors.Is(err, domain.ErrInsufficientReservedBalance):
		_ = c.AbortWithError(http.StatusPaymentRequired, err).SetType(gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrLockTimeout):
		_ = c.AbortWithError(http.StatusConflict, err).SetType(gin.ErrorTypePublic)
	case errors.As(err, &invariantErr):
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
	default:
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
	}
}

func parseUintQuery(c *gin.Context, name string, defaultValue uint) uint {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return defaultValue
	}
	return uint(value)
}
