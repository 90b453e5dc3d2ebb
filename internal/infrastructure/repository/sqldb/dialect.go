package sqldb

import "fmt"

type dialect struct {
	driver string
	goose  string
	// substring is a SQL function returning the 1-based position of the
	// needle, or 0. Both are case-sensitive, unlike SQLite LIKE.
	substring string
}

var dialects = map[string]dialect{
	DriverPostgres: {driver: DriverPostgres, goose: "postgres", substring: "strpos"},
	DriverSQLite:   {driver: DriverSQLite, goose: "sqlite3", substring: "instr"},
}

func dialectFor(driver string) (dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return dialect{}, fmt.Errorf("unsupported db driver %q", driver)
	}
	return d, nil
}
