//go:build !cgo_sqlite

package main

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// dataSourceFor returns path unchanged: the pure-Go driver reads the
// _pragma=name(value) parameters used in the default config natively.
func dataSourceFor(path string) string {
	return path
}

func initDB(path string) (*sql.DB, error) {
	return sql.Open("sqlite", dataSourceFor(path))
}
