package pgrepo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/payflow/balance-svc/internal/domain"
)

const (
	uniqueViolationCode  = "23505"
	lockNotAvailableCode = "55P03"
	queryCanceledCode    = "57014"
)

// convertErr преобразует ошибку к стандартному виду для слоя репозитория.
// Добавляет форматированное сообщение контекста, тип бизнес-ошибки и оригинальное сообщение.
// Особенности:
//   - pgx.ErrNoRows возвращается как ErrRecordNotFound из domain.
//   - Дубликаты ключей (23505) возвращаются как ErrDuplicateKey из domain.
//   - Истечение lock_timeout (55P03) и снятие запроса по таймауту (57014)
//     возвращаются как ErrLockTimeout - вызывающий может повторить операцию.
//   - Все остальные ошибки возвращаются как ErrUnknown с оригинальным сообщением.
func convertErr(err error, format string, formatArgs ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, formatArgs...)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("[repository/%s] %w", msg, domain.ErrRecordNotFound)
	}

	var pgErr *pgconn.PgError
	errType := domain.ErrUnknown

	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			errType = domain.ErrDuplicateKey
		case lockNotAvailableCode, queryCanceledCode:
			errType = domain.ErrLockTimeout
		}
	}

	return fmt.Errorf("[repository/%s] %w: %s", msg, errType, err.Error())
}
