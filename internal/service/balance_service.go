package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/payflow/balance-svc/internal/domain"
	"github.com/payflow/balance-svc/internal/repository/repoargs"
	"github.com/payflow/balance-svc/internal/transport/events"
	"github.com/payflow/balance-svc/pkg/uow"
)

const (
	defaultPageSize uint = 20
	maxPageSize     uint = 100
)

// OperationArgs - общие аргументы операций credit/debit/reserve/release.
// TransactionID - необязательный ключ идемпотентности со стороны вызывающего.
type OperationArgs struct {
	Amount        decimal.Decimal
	Description   *string
	Metadata      *string
	TransactionID *uuid.UUID
}

type BalanceService struct {
	uow         UOW
	balanceRepo BalanceRepository
	transRepo   TransactionRepository
	events      EventPublisher
	log         logrus.FieldLogger
}

func NewBalanceService(u UOW, publisher EventPublisher, l logrus.FieldLogger) (*BalanceService, error) {
	balanceRepo, balRepoErr := uow.GetRepositoryAs[BalanceRepository](u, uow.RepositoryName(repoargs.BalanceRepoName))
	if balRepoErr != nil {
		return nil, balRepoErr
	}
	transRepo, transRepoErr := uow.GetRepositoryAs[TransactionRepository](u, uow.RepositoryName(repoargs.TransactionRepoName))
	if transRepoErr != nil {
		return nil, transRepoErr
	}
	return &BalanceService{
		uow:         u,
		balanceRepo: balanceRepo,
		transRepo:   transRepo,
		events:      publisher,
		log:         l,
	}, nil
}

func (s *BalanceService) Credit(ctx context.Context, userID string, args OperationArgs) (*domain.BalanceSnapshot, error) {
	return s.apply(ctx, userID, domain.TransactionTypeCredit, args)
}

func (s *BalanceService) Debit(ctx context.Context, userID string, args OperationArgs) (*domain.BalanceSnapshot, error) {
	return s.apply(ctx, userID, domain.TransactionTypeDebit, args)
}

func (s *BalanceService) Reserve(ctx context.Context, userID string, args OperationArgs) (*domain.BalanceSnapshot, error) {
	return s.apply(ctx, userID, domain.TransactionTypeReserve, args)
}

func (s *BalanceService) Release(ctx context.Context, userID string, args OperationArgs) (*domain.BalanceSnapshot, error) {
	return s.apply(ctx, userID, domain.TransactionTypeRelease, args)
}

// GetBalance - чтение без блокировки. Для никогда не существовавшего счета
// возвращает нулевой снимок, запись не создается.
func (s *BalanceService) GetBalance(ctx context.Context, userID string) (*domain.BalanceSnapshot, error) {
	balance, err := s.balanceRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.ZeroBalanceSnapshot(userID), nil
		}
		return nil, err //nolint:wrapcheck
	}
	return domain.NewBalanceSnapshot(balance), nil
}

// Transactions возвращает страницу истории операций, новые первыми.
func (s *BalanceService) Transactions(
	ctx context.Context,
	userID string,
	page uint,
	pageSize uint,
) ([]domain.BalanceTransaction, error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return s.transRepo.GetByUserID(ctx, userID, page, pageSize) //nolint:wrapcheck
}

// apply - общий путь всех четырех операций:
//  1. валидация суммы;
//  2. проверка идемпотентности по transactionId;
//  3. в одной транзакции: чтение счета под блокировкой строки, проверка
//     предусловия операции, защитная проверка инвариантов, запись нового
//     вектора и запись в журнал;
//  4. публикация события после фиксации.
//
// Блокировка берется только по одному счету; будущий перевод между счетами
// должен брать обе блокировки в порядке сортировки userID.
func (s *BalanceService) apply(
	ctx context.Context,
	userID string,
	opType domain.TransactionType,
	args OperationArgs,
) (*domain.BalanceSnapshot, error) {
	if !args.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	if args.TransactionID != nil {
		prior, findErr := s.transRepo.FindByTransactionID(ctx, *args.TransactionID)
		switch {
		case findErr == nil:
			return s.replaySnapshot(ctx, prior)
		case !errors.Is(findErr, domain.ErrRecordNotFound):
			return nil, findErr
		}
	}

	var snapshot *domain.BalanceSnapshot

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		balanceRepo, balRepoErr := uow.GetAs[BalanceRepository](tx, uow.RepositoryName(repoargs.BalanceRepoName))
		if balRepoErr != nil {
			return balRepoErr //nolint:wrapcheck
		}
		transRepo, transRepoErr := uow.GetAs[TransactionRepository](tx, uow.RepositoryName(repoargs.TransactionRepoName))
		if transRepoErr != nil {
			return transRepoErr //nolint:wrapcheck
		}

		// Счет создается лениво первым зачислением, атомарно с захватом блокировки.
		if opType == domain.TransactionTypeCredit {
			if createErr := balanceRepo.CreateIfAbsent(c, userID); createErr != nil {
				return createErr //nolint:wrapcheck
			}
		}

		balance, lockErr := balanceRepo.GetByUserIDForUpdate(c, userID)
		if lockErr != nil {
			if errors.Is(lockErr, domain.ErrRecordNotFound) {
				return domain.ErrBalanceNotFound
			}
			return lockErr //nolint:wrapcheck
		}

		next, record, opErr := computeOperation(balance, opType, args)
		if opErr != nil {
			return opErr
		}

		// Защитная проверка: нарушение здесь - баг процессора, а не бизнес-ошибка.
		if next.CurrentBalance.IsNegative() || next.ReservedBalance.IsNegative() ||
			next.ReservedBalance.GreaterThan(next.CurrentBalance) {
			return domain.NewInvariantViolationError(userID, next.CurrentBalance, next.ReservedBalance)
		}

		updated, updErr := balanceRepo.UpdateBalances(c, repoargs.BalanceUpdate{
			UserID:          userID,
			CurrentBalance:  next.CurrentBalance,
			ReservedBalance: next.ReservedBalance,
		})
		if updErr != nil {
			return updErr //nolint:wrapcheck
		}

		if _, createErr := transRepo.Create(c, record); createErr != nil {
			return createErr //nolint:wrapcheck
		}

		snapshot = domain.NewBalanceSnapshot(updated)
		return nil
	})

	if txErr != nil {
		// Конкурирующий носитель того же transactionId успел первым: его запись уже
		// в журнале, наша транзакция откатилась без эффекта. Возвращаем его снимок.
		if args.TransactionID != nil && errors.Is(txErr, domain.ErrDuplicateKey) {
			prior, findErr := s.transRepo.FindByTransactionID(ctx, *args.TransactionID)
			if findErr == nil {
				return s.replaySnapshot(ctx, prior)
			}
		}
		return nil, txErr //nolint:wrapcheck
	}

	s.publishUpdated(ctx, opType, args, snapshot)
	return snapshot, nil
}

type balanceVector struct {
	CurrentBalance  decimal.Decimal
	ReservedBalance decimal.Decimal
}

// computeOperation проверяет предусловие операции и считает новый вектор счета.
// В записи журнала balance_before/balance_after относятся к тому полю, которое
// операция реально меняет: current для credit/debit, reserved для reserve/release.
func computeOperation(
	balance *domain.Balance,
	opType domain.TransactionType,
	args OperationArgs,
) (balanceVector, repoargs.TransactionCreate, error) {
	next := balanceVector{
		CurrentBalance:  balance.CurrentBalance,
		ReservedBalance: balance.ReservedBalance,
	}
	var before, after decimal.Decimal

	switch opType {
	case domain.TransactionTypeCredit:
		next.CurrentBalance = balance.CurrentBalance.Add(args.Amount)
		before, after = balance.CurrentBalance, next.CurrentBalance
	case domain.TransactionTypeDebit:
		if balance.AvailableBalance().LessThan(args.Amount) {
			return next, repoargs.TransactionCreate{}, domain.ErrInsufficientBalance
		}
		next.CurrentBalance = balance.CurrentBalance.Sub(args.Amount)
		before, after = balance.CurrentBalance, next.CurrentBalance
	case domain.TransactionTypeReserve:
		if balance.AvailableBalance().LessThan(args.Amount) {
			return next, repoargs.TransactionCreate{}, domain.ErrInsufficientAvailableBalance
		}
		next.ReservedBalance = balance.ReservedBalance.Add(args.Amount)
		before, after = balance.ReservedBalance, next.ReservedBalance
	case domain.TransactionTypeRelease:
		if balance.ReservedBalance.LessThan(args.Amount) {
			return next, repoargs.TransactionCreate{}, domain.ErrInsufficientReservedBalance
		}
		next.ReservedBalance = balance.ReservedBalance.Sub(args.Amount)
		before, after = balance.ReservedBalance, next.ReservedBalance
	default:
		return next, repoargs.TransactionCreate{}, fmt.Errorf("unsupported transaction type %s", opType)
	}

	record := repoargs.TransactionCreate{
		UserID:        balance.UserID,
		TransactionID: args.TransactionID,
		Type:          opType,
		Amount:        args.Amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		Description:   args.Description,
		Metadata:      args.Metadata,
	}
	return next, record, nil
}

// replaySnapshot восстанавливает снимок по ранее примененной записи журнала:
// текущее состояние счета, поверх которого накладывается balance_after
// затронутого операцией поля. Сама операция повторно не выполняется.
func (s *BalanceService) replaySnapshot(
	ctx context.Context,
	record *domain.BalanceTransaction,
) (*domain.BalanceSnapshot, error) {
	balance, err := s.balanceRepo.GetByUserID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrBalanceNotFound
		}
		return nil, err //nolint:wrapcheck
	}

	snapshot := domain.NewBalanceSnapshot(balance)
	if record.Type.MutatesReserved() {
		snapshot.ReservedBalance = record.BalanceAfter
	} else {
		snapshot.CurrentBalance = record.BalanceAfter
	}
	snapshot.AvailableBalance = snapshot.CurrentBalance.Sub(snapshot.ReservedBalance)
	return snapshot, nil
}

func (s *BalanceService) publishUpdated(
	ctx context.Context,
	opType domain.TransactionType,
	args OperationArgs,
	snapshot *domain.BalanceSnapshot,
) {
	if s.events == nil {
		return
	}

	event := events.BalanceEvent{
		UserID:          snapshot.UserID,
		Type:            string(opType),
		Amount:          args.Amount,
		CurrentBalance:  snapshot.CurrentBalance,
		ReservedBalance: snapshot.ReservedBalance,
		Currency:        snapshot.Currency,
		TransactionID:   args.TransactionID,
		At:              time.Now(),
	}

	if err := s.events.PublishBalanceUpdated(ctx, event); err != nil && s.log != nil {
		s.log.WithError(err).
			WithField("UserID", snapshot.UserID).
			Warn("publishing balance event failed")
	}
}
