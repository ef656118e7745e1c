// Package backend constructs dialects by name.
//
//	d, err := backend.New("postgres", dialect.WithQuotedTables())
//	if err != nil {
//		return err
//	}
//	stmt, err := d.CreateTable("users", "", def)
package backend

import (
	"fmt"
	"strings"

	"github.com/syssam/dbdialect"
	"github.com/syssam/dbdialect/dialect"
	"github.com/syssam/dbdialect/dialect/mysql"
	"github.com/syssam/dbdialect/dialect/postgres"
	"github.com/syssam/dbdialect/dialect/sqlite"
)

// New returns the dialect registered under name. The names "postgresql"
// and "sqlite3" are accepted as aliases.
func New(name string, opts ...dialect.Option) (dialect.Dialect, error) {
	switch Canonical(name) {
	case dialect.Postgres:
		return postgres.New(opts...), nil
	case dialect.MySQL:
		return mysql.New(opts...), nil
	case dialect.SQLite:
		return sqlite.New(opts...), nil
	default:
		return nil, dbdialect.NewInvalidArgumentError("new", "dialect",
			fmt.Sprintf("unknown dialect %q, want one of %s", name, strings.Join(dialect.Names(), ", ")))
	}
}

// Canonical returns the dialect name for a name or alias. Unknown names are
// returned lower-cased.
func Canonical(name string) string {
	switch name = strings.ToLower(strings.TrimSpace(name)); name {
	case "postgresql", "pg":
		return dialect.Postgres
	case "sqlite3":
		return dialect.SQLite
	default:
		return name
	}
}
