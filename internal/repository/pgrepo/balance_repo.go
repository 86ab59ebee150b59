package pgrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/payflow/balance-svc/internal/domain"
	"github.com/payflow/balance-svc/internal/repository/repoargs"
	"github.com/payflow/balance-svc/pkg/uow"
)

const balanceColumns = "id, user_id, current_balance, reserved_balance, currency, is_active, created_at, updated_at"

type BalanceRepository struct {
	db          uow.DBTX
	lockTimeout time.Duration
}

func NewBalanceRepository(db uow.DBTX, lockTimeout time.Duration) *BalanceRepository {
	return &BalanceRepository{db: db, lockTimeout: lockTimeout}
}

func (b *BalanceRepository) GetByUserID(ctx context.Context, userID string) (*domain.Balance, error) {
	row := b.db.QueryRow(ctx,
		"SELECT "+balanceColumns+" FROM balances WHERE user_id = $1",
		userID,
	)
	balance, err := scanBalance(row)
	if err != nil {
		return nil, convertErr(err, "getting balance for user %s", userID)
	}
	return balance, nil
}

// GetByUserIDForUpdate читает счет под блокировкой строки (SELECT ... FOR UPDATE).
// Блокировка удерживается до конца объемлющей транзакции и сериализует все операции
// по одному user_id. Ожидание ограничено lock_timeout: по истечении вернется
// ErrLockTimeout, и вызывающий может повторить запрос.
func (b *BalanceRepository) GetByUserIDForUpdate(ctx context.Context, userID string) (*domain.Balance, error) {
	if b.lockTimeout > 0 {
		// SET LOCAL действует до конца текущей транзакции.
		setStmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", b.lockTimeout.Milliseconds())
		if _, err := b.db.Exec(ctx, setStmt); err != nil {
			return nil, convertErr(err, "setting lock timeout for user %s", userID)
		}
	}

	row := b.db.QueryRow(ctx,
		"SELECT "+balanceColumns+" FROM balances WHERE user_id = $1 FOR UPDATE",
		userID,
	)
	balance, err := scanBalance(row)
	if err != nil {
		return nil, convertErr(err, "locking balance for user %s", userID)
	}
	return balance, nil
}

// CreateIfAbsent создает нулевой счет, если его еще нет. Выполняется в той же
// транзакции, что и последующий GetByUserIDForUpdate, поэтому гонки
// "нет записи - создаем - кто-то создал раньше" не возникает.
func (b *BalanceRepository) CreateIfAbsent(ctx context.Context, userID string) error {
	_, err := b.db.Exec(ctx,
		"INSERT INTO balances (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING",
		userID,
	)
	if err != nil {
		return convertErr(err, "creating balance for user %s", userID)
	}
	return nil
}

func (b *BalanceRepository) UpdateBalances(
	ctx context.Context,
	update repoargs.BalanceUpdate,
) (*domain.Balance, error) {
	row := b.db.QueryRow(ctx,
		`UPDATE balances
			SET current_balance = $2, reserved_balance = $3, updated_at = now()
			WHERE user_id = $1
			RETURNING `+balanceColumns,
		update.UserID, update.CurrentBalance, update.ReservedBalance,
	)
	balance, err := scanBalance(row)
	if err != nil {
		return nil, convertErr(err, "updating balance for user %s", update.UserID)
	}
	return balance, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBalance(row rowScanner) (*domain.Balance, error) {
	var b domain.Balance
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.CurrentBalance,
		&b.ReservedBalance,
		&b.Currency,
		&b.IsActive,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
