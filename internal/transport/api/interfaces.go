package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/payflow/balance-svc/internal/domain"
	"github.com/payflow/balance-svc/internal/service"
)

type BalanceServicer interface {
	GetBalance(ctx context.Context, userID string) (*domain.BalanceSnapshot, error)
	Credit(ctx context.Context, userID string, args service.OperationArgs) (*domain.BalanceSnapshot, error)
	Debit(ctx context.Context, userID string, args service.OperationArgs) (*domain.BalanceSnapshot, error)
	Reserve(ctx context.Context, userID string, args service.OperationArgs) (*domain.BalanceSnapshot, error)
	Release(ctx context.Context, userID string, args service.OperationArgs) (*domain.BalanceSnapshot, error)
	Transactions(ctx context.Context, userID string, page uint, pageSize uint) ([]domain.BalanceTransaction, error)
}
