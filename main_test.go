package main

import (
	"database/sql"
	"testing"
)

func TestDriversRegistered(t *testing.T) {
	registered := make(map[string]bool)
	for _, d := range sql.Drivers() {
		registered[d] = true
	}
	for _, want := range []string{"sqlserver", "mssql", "postgres", "sqlite3", "duckdb"} {
		if !registered[want] {
			t.Errorf("expected driver %q to be registered, got %v", want, sql.Drivers())
		}
	}
}
