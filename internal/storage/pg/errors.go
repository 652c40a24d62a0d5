package pg

import (
	"errors"

	"github.com/DjordjeVuckovic/pref-assess/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// mapErr translates driver errors into storage sentinels. The original error
// stays in the chain.
func mapErr(err error, unique error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound(err)
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return errors.Join(unique, err)
	case codeForeignKeyViolation:
		return errors.Join(storage.ErrUnknownDocument, err)
	case codeCheckViolation:
		if pgErr.ConstraintName == "document_relations_distinct" {
			return errors.Join(storage.ErrSelfRelation, err)
		}
	}
	return err
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errors.Join(storage.ErrNotFound, err)
	}
	return err
}
