package impl

import (
	stderrors "errors"

	"Huddle/repositories"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

// translate maps driver errors onto the repository sentinels and wraps the
// rest with the calling operation.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return repositories.ErrNotFound
	}
	if isUniqueViolation(err) {
		return errors.Wrap(repositories.ErrSequenceConflict, op)
	}
	return errors.Wrap(err, op)
}

func isUniqueViolation(err error) bool {
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return stderrors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
