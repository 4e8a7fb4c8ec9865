package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestSQLStateHelpers(t *testing.T) {
	fk := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"})
	uniq := &pgconn.PgError{Code: "23505"}
	deadlock := &pgconn.PgError{Code: "40P01"}
	network := errors.New("connection reset")

	if !IsForeignKeyViolation(fk) {
		t.Error("wrapped 23503 should be a foreign key violation")
	}
	if !IsUniqueViolation(uniq) || IsUniqueViolation(fk) {
		t.Error("unique violation detection is wrong")
	}
	if !IsRetryable(deadlock) || !IsRetryable(network) {
		t.Error("deadlocks and network errors should be retryable")
	}
	if IsRetryable(fk) || IsRetryable(nil) {
		t.Error("constraint violations and nil are not retryable")
	}
}
