package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCurrency - валюта, присваиваемая счету при ленивом создании.
const DefaultCurrency = "INR"

type Balance struct {
	ID              uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
	UserID          string
	CurrentBalance  decimal.Decimal
	ReservedBalance decimal.Decimal
	Currency        string
	IsActive        bool
}

// AvailableBalance возвращает сумму, доступную для списания или новой резервации.
func (b *Balance) AvailableBalance() decimal.Decimal {
	return b.CurrentBalance.Sub(b.ReservedBalance)
}

type BalanceTransaction struct {
	ID            uuid.UUID
	CreatedAt     time.Time
	UserID        string
	TransactionID *uuid.UUID
	Type          TransactionType
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Description   *string
	Metadata      *string
}

// BalanceSnapshot - состояние счета, возвращаемое наружу после каждой операции.
type BalanceSnapshot struct {
	UserID           string
	CurrentBalance   decimal.Decimal
	AvailableBalance decimal.Decimal
	ReservedBalance  decimal.Decimal
	Currency         string
}

func NewBalanceSnapshot(b *Balance) *BalanceSnapshot {
	return &BalanceSnapshot{
		UserID:           b.UserID,
		CurrentBalance:   b.CurrentBalance,
		AvailableBalance: b.AvailableBalance(),
		ReservedBalance:  b.ReservedBalance,
		Currency:         b.Currency,
	}
}

// ZeroBalanceSnapshot возвращает снимок никогда не существовавшего счета.
// Чтение не создает запись в хранилище.
func ZeroBalanceSnapshot(userID string) *BalanceSnapshot {
	return &BalanceSnapshot{
		UserID:           userID,
		CurrentBalance:   decimal.Zero,
		AvailableBalance: decimal.Zero,
		ReservedBalance:  decimal.Zero,
		Currency:         DefaultCurrency,
	}
}
