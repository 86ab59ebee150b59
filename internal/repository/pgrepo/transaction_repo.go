package pgrepo

import (
	"context"

	"github.com/google/uuid"

	"github.com/payflow/balance-svc/internal/domain"
	"github.com/payflow/balance-svc/internal/repository/repoargs"
	"github.com/payflow/balance-svc/pkg/uow"
)

const transactionColumns = "id, user_id, transaction_id, type, amount, balance_before, balance_after, description, metadata, created_at"

// TransactionRepository - append-only журнал операций. Записи никогда не обновляются
// и не удаляются.
type TransactionRepository struct {
	db uow.DBTX
}

func NewTransactionRepository(db uow.DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (t *TransactionRepository) Create(
	ctx context.Context,
	create repoargs.TransactionCreate,
) (*domain.BalanceTransaction, error) {
	row := t.db.QueryRow(ctx,
		`INSERT INTO balance_transactions
			(user_id, transaction_id, type, amount, balance_before, balance_after, description, metadata)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING `+transactionColumns,
		create.UserID,
		create.TransactionID,
		string(create.Type),
		create.Amount,
		create.BalanceBefore,
		create.BalanceAfter,
		create.Description,
		create.Metadata,
	)
	transaction, err := scanTransaction(row)
	if err != nil {
		return nil, convertErr(err, "creating balance transaction for user %s", create.UserID)
	}
	return transaction, nil
}

// GetByUserID возвращает страницу истории операций, новые записи первыми.
// Нумерация страниц с единицы.
func (t *TransactionRepository) GetByUserID(
	ctx context.Context,
	userID string,
	page uint,
	pageSize uint,
) ([]domain.BalanceTransaction, error) {
	if page < 1 {
		page = 1
	}
	rows, err := t.db.Query(ctx,
		`SELECT `+transactionColumns+`
			FROM balance_transactions
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2 OFFSET $3`,
		userID, pageSize, (page-1)*pageSize,
	)
	if err != nil {
		return nil, convertErr(err, "getting balance transactions for user %s", userID)
	}
	defer rows.Close()

	var transactions []domain.BalanceTransaction
	for rows.Next() {
		transaction, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning balance transaction for user %s", userID)
		}
		transactions = append(transactions, *transaction)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting balance transactions for user %s", userID)
	}
	return transactions, nil
}

func (t *TransactionRepository) FindByTransactionID(
	ctx context.Context,
	transactionID uuid.UUID,
) (*domain.BalanceTransaction, error) {
	row := t.db.QueryRow(ctx,
		"SELECT "+transactionColumns+" FROM balance_transactions WHERE transaction_id = $1",
		transactionID,
	)
	transaction, err := scanTransaction(row)
	if err != nil {
		return nil, convertErr(err, "finding balance transaction %s", transactionID)
	}
	return transaction, nil
}

func scanTransaction(row rowScanner) (*domain.BalanceTransaction, error) {
	var tr domain.BalanceTransaction
	var trType string
	err := row.Scan(
		&tr.ID,
		&tr.UserID,
		&tr.TransactionID,
		&trType,
		&tr.Amount,
		&tr.BalanceBefore,
		&tr.BalanceAfter,
		&tr.Description,
		&tr.Metadata,
		&tr.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	tr.Type = domain.TransactionType(trType)
	return &tr, nil
}
