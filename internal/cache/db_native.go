//go:build !cgo_sqlite

package cache

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

func openSQL(dataSource string) (*sql.DB, error) {
	return sql.Open(driverName, dataSource)
}
