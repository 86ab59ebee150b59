package repoargs

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/payflow/balance-svc/internal/domain"
)

type TransactionCreate struct {
	UserID        string
	TransactionID *uuid.UUID
	Type          domain.TransactionType
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Description   *string
	Metadata      *string
}
