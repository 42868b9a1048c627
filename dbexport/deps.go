package dbexport

import (
	"database/sql"
)

// sqlOpen is a package-level variable to allow test injection.
var sqlOpen = func(driver, dsn string) (*sql.DB, error) {
	return sql.Open(driver, dsn)
}
