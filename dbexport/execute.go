package dbexport

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mailreport/apperr"
)

// Execute opens a single connection with the given driver and connection
// string, runs command once and reads the first result set that has
// columns into a Table. The connection is released on every return path.
// Any failure is reported as a DataAccessError wrapping the driver's
// diagnostic.
//
// Usage:
//
//	t, err := dbexport.Execute(ctx, "sqlserver", connStr, "SELECT * FROM dbo.Orders")
func Execute(ctx context.Context, driver, connString, command string) (*Table, error) {
	if strings.TrimSpace(connString) == "" {
		return nil, apperr.NewDataAccess("open connection", errors.New("connection string is empty"))
	}
	db, err := sqlOpen(driver, connString)
	if err != nil {
		return nil, apperr.NewDataAccess("open connection", fmt.Errorf("error creating connection pool: %w", err))
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, apperr.NewDataAccess("open connection", fmt.Errorf("cannot connect to database: %w", err))
	}
	defer conn.Close()
	if err := conn.PingContext(ctx); err != nil {
		return nil, apperr.NewDataAccess("open connection", fmt.Errorf("cannot connect to database: %w", err))
	}

	rows, err := conn.QueryContext(ctx, command)
	if err != nil {
		return nil, apperr.NewDataAccess("execute command", withObjectHint(err))
	}
	defer rows.Close()

	t, err := ReadTable(rows)
	if err != nil {
		return nil, apperr.NewDataAccess("read rows", withObjectHint(err))
	}
	return t, nil
}

// ReadTable drains rows into a Table. Leading result sets without
// columns (SELECT ... INTO, DDL) are skipped so the
// first real result set is the one returned. It does not close rows.
func ReadTable(rows Rows) (*Table, error) {
	if rows == nil {
		return nil, fmt.Errorf("rows is nil")
	}
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("error getting columns: %w", err)
	}
	for len(cols) == 0 {
		// statements without a result set still have to run to completion
		for rows.Next() {
		}
		if !rows.NextResultSet() {
			if err := rows.Err(); err != nil {
				return nil, fmt.Errorf("row error: %w", err)
			}
			return NewTable(), nil
		}
		if cols, err = rows.Columns(); err != nil {
			return nil, fmt.Errorf("error getting columns: %w", err)
		}
	}

	t := NewTable(cols...)
	for rows.Next() {
		vals, err := ScanRowValues(rows, cols)
		if err != nil {
			return nil, err
		}
		t.Rows = append(t.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error: %w", err)
	}
	return t, nil
}
