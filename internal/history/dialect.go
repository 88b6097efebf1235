package history

import (
	"fmt"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// dialect covers the differences between the supported database/sql drivers.
type dialect struct {
	driver      string
	createTable string
	positional  bool // $1, $2 instead of ?
}

var dialects = map[string]dialect{
	DriverSQLite: {
		driver: DriverSQLite,
		createTable: `CREATE TABLE IF NOT EXISTS history (
			id          TEXT PRIMARY KEY,
			session_id  TEXT NOT NULL,
			executed_at INTEGER NOT NULL,
			input       TEXT NOT NULL,
			output      TEXT NOT NULL,
			error       TEXT NOT NULL
		)`,
	},
	DriverMySQL: {
		driver: DriverMySQL,
		createTable: `CREATE TABLE IF NOT EXISTS history (
			id          CHAR(36) PRIMARY KEY,
			session_id  CHAR(36) NOT NULL,
			executed_at BIGINT NOT NULL,
			input       TEXT NOT NULL,
			output      TEXT NOT NULL,
			error       TEXT NOT NULL
		)`,
	},
	DriverPostgres: {
		driver: DriverPostgres,
		createTable: `CREATE TABLE IF NOT EXISTS history (
			id          UUID PRIMARY KEY,
			session_id  UUID NOT NULL,
			executed_at BIGINT NOT NULL,
			input       TEXT NOT NULL,
			output      TEXT NOT NULL,
			error       TEXT NOT NULL
		)`,
		positional: true,
	},
}

func lookupDialect(driver string) (dialect, error) {
	if driver == "" {
		driver = DriverSQLite
	}
	d, ok := dialects[driver]
	if !ok {
		return dialect{}, fmt.Errorf("unsupported history driver %q", driver)
	}
	return d, nil
}

// rebind rewrites ? placeholders for drivers that number their parameters.
func (d dialect) rebind(query string) string {
	if !d.positional {
		return query
	}

	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}
