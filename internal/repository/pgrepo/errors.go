package pgrepo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/osama-agency/telesklad/internal/domain"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

var errNegativeQuantity = errors.New("negative quantity")

// convertErr приводит ошибку к виду, принятому в слое репозитория: контекст операции, бизнес-тип ошибки и
// оригинальное сообщение.
//   - pgx.ErrNoRows и нарушение внешнего ключа превращаются в domain.ErrRecordNotFound;
//   - нарушение уникальности и пропущенная вставка (duplicateRowError) в domain.ErrDuplicateKey;
//   - все остальное в domain.ErrUnknown.
func convertErr(err error, format string, formatArgs ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, formatArgs...)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("[repository/%s] %w", msg, domain.ErrRecordNotFound)
	}

	errType := domain.ErrUnknown

	var (
		pgErr  *pgconn.PgError
		dupErr *duplicateRowError
	)
	if errors.As(err, &dupErr) {
		errType = domain.ErrDuplicateKey
	} else if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			errType = domain.ErrDuplicateKey
		case foreignKeyViolationCode:
			errType = domain.ErrRecordNotFound
		}
	}

	return fmt.Errorf("[repository/%s] %w: %s", msg, errType, err.Error())
}

// duplicateRowError вставка пропущена из-за ON CONFLICT DO NOTHING.
type duplicateRowError struct{}

func (e *duplicateRowError) Error() string {
	return "row already exists"
}
