package memrepo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/payflow/balance-svc/internal/domain"
	"github.com/payflow/balance-svc/internal/repository/repoargs"
)

type transactionRepo struct {
	store *Store
	tx    *memTx // nil вне транзакции
}

func (t *transactionRepo) Create(
	ctx context.Context,
	create repoargs.TransactionCreate,
) (*domain.BalanceTransaction, error) {
	// Уникальность transaction_id повторяет частичный уникальный индекс постгреса.
	if create.TransactionID != nil {
		if _, err := t.FindByTransactionID(ctx, *create.TransactionID); err == nil {
			return nil, domain.ErrDuplicateKey
		}
	}

	record := domain.BalanceTransaction{
		ID:            uuid.New(),
		CreatedAt:     time.Now(),
		UserID:        create.UserID,
		TransactionID: create.TransactionID,
		Type:          create.Type,
		Amount:        create.Amount,
		BalanceBefore: create.BalanceBefore,
		BalanceAfter:  create.BalanceAfter,
		Description:   create.Description,
		Metadata:      create.Metadata,
	}

	if t.tx != nil {
		t.tx.transactions = append(t.tx.transactions, record)
	} else {
		t.store.mu.Lock()
		if record.TransactionID != nil {
			t.store.byTxID[*record.TransactionID] = len(t.store.transactions)
		}
		t.store.transactions = append(t.store.transactions, record)
		t.store.mu.Unlock()
	}
	return &record, nil
}

func (t *transactionRepo) GetByUserID(
	_ context.Context,
	userID string,
	page uint,
	pageSize uint,
) ([]domain.BalanceTransaction, error) {
	t.store.mu.RLock()
	var all []domain.BalanceTransaction
	for _, transaction := range t.store.transactions {
		if transaction.UserID == userID {
			all = append(all, transaction)
		}
	}
	t.store.mu.RUnlock()

	// Журнал хранится в порядке вставки, наружу отдаем новые первыми.
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}

	if page < 1 {
		page = 1
	}
	start := int((page - 1) * pageSize)
	if start >= len(all) {
		return nil, nil
	}
	end := start + int(pageSize)
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (t *transactionRepo) FindByTransactionID(
	_ context.Context,
	transactionID uuid.UUID,
) (*domain.BalanceTransaction, error) {
	if t.tx != nil {
		for _, transaction := range t.tx.transactions {
			if transaction.TransactionID != nil && *transaction.TransactionID == transactionID {
				result := transaction
				return &result, nil
			}
		}
	}

	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	if i, ok := t.store.byTxID[transactionID]; ok {
		result := t.store.transactions[i]
		return &result, nil
	}
	return nil, domain.ErrRecordNotFound
}
