package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/payflow/balance-svc/internal/domain"
	"github.com/payflow/balance-svc/internal/repository/repoargs"
	"github.com/payflow/balance-svc/internal/transport/events"
	"github.com/payflow/balance-svc/pkg/uow"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

// BalanceRepository - хранилище счетов. GetByUserIDForUpdate внутри uow.Do дает
// эксклюзивный доступ к счету до конца транзакции.
type BalanceRepository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.Balance, error)
	GetByUserIDForUpdate(ctx context.Context, userID string) (*domain.Balance, error)
	CreateIfAbsent(ctx context.Context, userID string) error
	UpdateBalances(ctx context.Context, update repoargs.BalanceUpdate) (*domain.Balance, error)
}

// TransactionRepository - журнал операций по счетам.
type TransactionRepository interface {
	Create(ctx context.Context, create repoargs.TransactionCreate) (*domain.BalanceTransaction, error)
	GetByUserID(ctx context.Context, userID string, page uint, pageSize uint) ([]domain.BalanceTransaction, error)
	FindByTransactionID(ctx context.Context, transactionID uuid.UUID) (*domain.BalanceTransaction, error)
}

// UOW - то, что сервису нужно от единицы работы. Сужен относительно pkg/uow,
// чтобы in-memory дублеру не приходилось реализовывать регистрацию фабрик.
type UOW interface {
	Do(ctx context.Context, fn func(ctx context.Context, tx uow.TX) error) error
	GetRepository(name uow.RepositoryName) (uow.Repository, error)
}

// EventPublisher публикует событие об изменении счета. Доставка не гарантируется
// и на корректность операций не влияет.
type EventPublisher interface {
	PublishBalanceUpdated(ctx context.Context, event events.BalanceEvent) error
}
