package memrepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/payflow/balance-svc/internal/domain"
	"github.com/payflow/balance-svc/internal/repository/repoargs"
)

type balanceRepo struct {
	store *Store
	tx    *memTx // nil вне транзакции
}

func (b *balanceRepo) GetByUserID(_ context.Context, userID string) (*domain.Balance, error) {
	if b.tx != nil {
		if balance, ok := b.tx.balances[userID]; ok {
			return &balance, nil
		}
	}

	b.store.mu.RLock()
	defer b.store.mu.RUnlock()

	if balance, ok := b.store.balances[userID]; ok {
		return &balance, nil
	}
	return nil, domain.ErrRecordNotFound
}

func (b *balanceRepo) GetByUserIDForUpdate(ctx context.Context, userID string) (*domain.Balance, error) {
	if b.tx == nil {
		return nil, errors.New("[memrepo] locking read outside of transaction")
	}
	if err := b.tx.acquire(ctx, userID); err != nil {
		return nil, err
	}
	return b.GetByUserID(ctx, userID)
}

// CreateIfAbsent стейджит нулевой счет под блокировкой, поэтому два первых
// зачисления одному юзеру не могут создать запись дважды.
func (b *balanceRepo) CreateIfAbsent(ctx context.Context, userID string) error {
	if b.tx == nil {
		return errors.New("[memrepo] create outside of transaction")
	}
	if err := b.tx.acquire(ctx, userID); err != nil {
		return err
	}

	if _, err := b.GetByUserID(ctx, userID); err == nil {
		return nil
	}

	now := time.Now()
	b.tx.balances[userID] = domain.Balance{
		ID:              uuid.New(),
		CreatedAt:       now,
		UpdatedAt:       now,
		UserID:          userID,
		CurrentBalance:  decimal.Zero,
		ReservedBalance: decimal.Zero,
		Currency:        domain.DefaultCurrency,
		IsActive:        true,
	}
	return nil
}

func (b *balanceRepo) UpdateBalances(
	ctx context.Context,
	update repoargs.BalanceUpdate,
) (*domain.Balance, error) {
	if b.tx == nil {
		return nil, errors.New("[memrepo] update outside of transaction")
	}

	balance, err := b.GetByUserID(ctx, update.UserID)
	if err != nil {
		return nil, err
	}

	balance.CurrentBalance = update.CurrentBalance
	balance.ReservedBalance = update.ReservedBalance
	balance.UpdatedAt = time.Now()
	b.tx.balances[update.UserID] = *balance

	result := *balance
	return &result, nil
}
