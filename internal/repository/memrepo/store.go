package memrepo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/payflow/balance-svc/internal/domain"
	"github.com/payflow/balance-svc/internal/repository/repoargs"
	"github.com/payflow/balance-svc/pkg/uow"
)

const defaultLockTimeout = 3 * time.Second

// Store - in-memory реализация хранилища счетов и журнала с той же семантикой,
// что у постгресовой: эксклюзивная блокировка по user_id от GetByUserIDForUpdate
// до конца Do, атомарная фиксация, откат без частичных изменений.
// Используется как тестовый дублер вместо моков: блокировочное поведение
// моками не выразить.
type Store struct {
	mu           sync.RWMutex
	balances     map[string]domain.Balance
	transactions []domain.BalanceTransaction
	byTxID       map[uuid.UUID]int

	locksMu     sync.Mutex
	locks       map[string]chan struct{}
	lockTimeout time.Duration
}

func NewStore(lockTimeout time.Duration) *Store {
	if lockTimeout <= 0 {
		lockTimeout = defaultLockTimeout
	}
	return &Store{
		balances:    make(map[string]domain.Balance),
		byTxID:      make(map[uuid.UUID]int),
		locks:       make(map[string]chan struct{}),
		lockTimeout: lockTimeout,
	}
}

// Do выполняет fn в транзакции: изменения стейджатся и попадают в стор только
// при успешном завершении fn. Блокировки счетов снимаются после фиксации.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, tx uow.TX) error) error {
	tx := newTx(s)
	defer tx.release()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *Store) GetRepository(name uow.RepositoryName) (uow.Repository, error) {
	switch repoargs.RepositoryName(name) {
	case repoargs.BalanceRepoName:
		return &balanceRepo{store: s}, nil
	case repoargs.TransactionRepoName:
		return &transactionRepo{store: s}, nil
	}
	return nil, uow.ErrRepositoryNotRegistered
}

// userLock возвращает канал-семафор на один счет.
func (s *Store) userLock(userID string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	ch, ok := s.locks[userID]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[userID] = ch
	}
	return ch
}

type memTx struct {
	store       *Store
	locked      map[string]struct{}
	lockedOrder []string

	balances     map[string]domain.Balance
	transactions []domain.BalanceTransaction
}

func newTx(s *Store) *memTx {
	return &memTx{
		store:    s,
		locked:   make(map[string]struct{}),
		balances: make(map[string]domain.Balance),
	}
}

func (t *memTx) Get(name uow.RepositoryName) (uow.Repository, error) {
	switch repoargs.RepositoryName(name) {
	case repoargs.BalanceRepoName:
		return &balanceRepo{store: t.store, tx: t}, nil
	case repoargs.TransactionRepoName:
		return &transactionRepo{store: t.store, tx: t}, nil
	}
	return nil, uow.ErrRepositoryNotRegistered
}

// acquire берет блокировку счета с ограниченным ожиданием. Повторный захват
// внутри одной транзакции - no-op.
func (t *memTx) acquire(ctx context.Context, userID string) error {
	if _, ok := t.locked[userID]; ok {
		return nil
	}

	ch := t.store.userLock(userID)
	timer := time.NewTimer(t.store.lockTimeout)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		t.locked[userID] = struct{}{}
		t.lockedOrder = append(t.lockedOrder, userID)
		return nil
	case <-timer.C:
		return domain.ErrLockTimeout
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck
	}
}

func (t *memTx) release() {
	for _, userID := range t.lockedOrder {
		<-t.store.userLock(userID)
	}
	t.locked = make(map[string]struct{})
	t.lockedOrder = nil
}

func (t *memTx) commit() {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for userID, balance := range t.balances {
		s.balances[userID] = balance
	}
	for _, transaction := range t.transactions {
		if transaction.TransactionID != nil {
			s.byTxID[*transaction.TransactionID] = len(s.transactions)
		}
		s.transactions = append(s.transactions, transaction)
	}
}
