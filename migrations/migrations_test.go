package migrations

import (
	"strings"
	"testing"
)

func TestSplitSQL(t *testing.T) {
	in := StripSQLComments(`
-- header
CREATE TABLE a (id TEXT);

  -- indented comment
CREATE INDEX i ON a (id);
`)
	got := SplitSQL(in)
	if len(got) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(got), got)
	}
	if got[0] != "CREATE TABLE a (id TEXT)" {
		t.Errorf("first statement = %q", got[0])
	}
	if strings.Contains(got[1], "--") {
		t.Errorf("comment leaked into %q", got[1])
	}
}

func TestStatementsPerDialect(t *testing.T) {
	for _, dialect := range []string{Postgres, SQLite} {
		stmts, err := Statements(dialect)
		if err != nil {
			t.Fatalf("%s: %v", dialect, err)
		}
		joined := strings.Join(stmts, "\n")
		for _, want := range []string{"CREATE TABLE IF NOT EXISTS users", "CREATE TABLE IF NOT EXISTS cabs", "CREATE TABLE IF NOT EXISTS bookings", "idx_bookings_active_route"} {
			if !strings.Contains(joined, want) {
				t.Errorf("%s: missing %q", dialect, want)
			}
		}
	}
}

func TestStatementsUnknownDialect(t *testing.T) {
	if _, err := Statements("mysql"); err == nil {
		t.Fatal("expected error for unknown dialect")
	}
}
