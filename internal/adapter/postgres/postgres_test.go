package postgres

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Temutjin2k/sitetrack/pkg/retry"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		permanent bool
	}{
		{"network", errors.New("connection reset"), false},
		{"serialization", &pgconn.PgError{Code: "40001"}, false},
		{"unique violation", &pgconn.PgError{Code: "23505"}, true},
		{"already permanent", retry.Permanent(errors.New("x")), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(classify(tt.err), retry.ErrPermanent); got != tt.permanent {
				t.Errorf("permanent = %v, want %v", got, tt.permanent)
			}
		})
	}
}

func TestEmbeddedSchema(t *testing.T) {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil || len(names) == 0 {
		t.Fatalf("no migrations embedded: %v", err)
	}
	sql, err := migrations.ReadFile(names[0])
	if err != nil {
		t.Fatal(err)
	}
	for _, table := range []string{"routes", "deliveries", "delivery_events", "alerts", "location_history"} {
		if !strings.Contains(string(sql), "CREATE TABLE IF NOT EXISTS "+table+" (") {
			t.Errorf("schema is missing table %s", table)
		}
	}
}
