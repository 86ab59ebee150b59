package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrUnknown        = errors.New("unknown error")

	ErrInvalidAmount                = errors.New("amount must be positive")
	ErrBalanceNotFound              = errors.New("balance not found")
	ErrInsufficientBalance          = errors.New("insufficient balance")
	ErrInsufficientAvailableBalance = errors.New("insufficient available balance")
	ErrInsufficientReservedBalance  = errors.New("insufficient reserved balance")

	// ErrLockTimeout - эксклюзивный доступ к счету не получен за отведенное время.
	// Ошибка ретраибельна, состояние счета не изменено.
	ErrLockTimeout = errors.New("balance lock timeout")
)

// InvariantViolationError - защитная проверка инвариантов счета не прошла.
// Это не бизнес-ошибка, а признак бага в процессоре или хранилище: операция
// прерывается, состояние остается прежним, ошибка не маскируется.
type InvariantViolationError struct {
	UserID          string
	CurrentBalance  decimal.Decimal
	ReservedBalance decimal.Decimal
}

func NewInvariantViolationError(userID string, current, reserved decimal.Decimal) error {
	return &InvariantViolationError{
		UserID:          userID,
		CurrentBalance:  current,
		ReservedBalance: reserved,
	}
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf(
		"balance invariant violation for user %s: current=%s reserved=%s",
		e.UserID,
		e.CurrentBalance.String(),
		e.ReservedBalance.String(),
	)
}
