package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes checked by the repositories.
const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
	codeSerialization       = "40001"
	codeDeadlock            = "40P01"
)

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.SQLState()
	}
	return ""
}

// IsForeignKeyViolation reports whether err is a foreign key violation (23503).
func IsForeignKeyViolation(err error) bool {
	return sqlState(err) == codeForeignKeyViolation
}

// IsUniqueViolation reports whether err is a unique constraint violation (23505).
func IsUniqueViolation(err error) bool {
	return sqlState(err) == codeUniqueViolation
}

// IsRetryable reports whether err is a transient failure worth retrying:
// serialization failures, deadlocks and connection-level errors.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch sqlState(err) {
	case codeSerialization, codeDeadlock:
		return true
	case "":
		// not a server-side error: network or pool failure
		return true
	default:
		return false
	}
}
