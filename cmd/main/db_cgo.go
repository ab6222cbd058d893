//go:build cgo_sqlite

package main

import (
	"database/sql"
	"regexp"

	_ "github.com/mattn/go-sqlite3"
)

// pragmaParam matches a pure-Go style _pragma=name(value) DSN parameter.
var pragmaParam = regexp.MustCompile(`_pragma=([a-z_]+)\(([^)]*)\)`)

// dataSourceFor rewrites _pragma=name(value) parameters into the _name=value form
// understood by the cgo driver, so one config works with both builds.
func dataSourceFor(path string) string {
	return pragmaParam.ReplaceAllString(path, "_$1=$2")
}

func initDB(path string) (*sql.DB, error) {
	return sql.Open("sqlite3", dataSourceFor(path))
}
