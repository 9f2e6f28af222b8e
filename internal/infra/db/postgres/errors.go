package postgres

import (
	"errors"

	"ai-tutor-backend/internal/domain"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
)

// translateErr maps driver errors onto domain sentinels.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return domain.ErrAlreadyExists
		case pgerrcode.ForeignKeyViolation:
			return domain.ErrNotFound
		case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
			return domain.ErrInvalidArgument
		}
	}
	return err
}
