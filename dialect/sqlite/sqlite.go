// Package sqlite implements the SQLite dialect.
//
// Auto-increment columns declare the primary key inline, so they must be of
// type INTEGER. CREATE TABLE accepts the "without_rowid" and "strict" options.
// Row locking clauses do not exist in SQLite: ForUpdate and SharedLock return
// the query unchanged.
package sqlite

import (
	"strings"

	"github.com/syssam/dbdialect/dialect"
	"github.com/syssam/dbdialect/dialect/sql"
	"github.com/syssam/dbdialect/schema"
)

// Dialect is the SQLite dialect.
type Dialect struct {
	*sql.Builder
	cfg dialect.Config
}

var _ dialect.Dialect = (*Dialect)(nil)

// New returns a SQLite dialect.
func New(opts ...dialect.Option) *Dialect {
	d := &Dialect{cfg: dialect.NewConfig(opts...)}
	d.Builder = sql.NewBuilder(
		sql.Quoter{QuoteFunc: sql.Backtick, QuoteTables: d.cfg.QuoteTables},
		d,
		sql.InlinePrimaryKey(),
	)
	return d
}

// Name implements dialect.Dialect.
func (*Dialect) Name() string { return dialect.SQLite }

// AutoIncrementSuffix declares the column as the auto-increment primary key.
func (*Dialect) AutoIncrementSuffix(*schema.Column) string {
	return " PRIMARY KEY AUTOINCREMENT"
}

// TableOptionsClause renders the WITHOUT ROWID and STRICT table options.
func (*Dialect) TableOptionsClause(opts schema.Options) string {
	var parts []string
	if opts.Bool(schema.OptionWithoutRowID, false) {
		parts = append(parts, "WITHOUT ROWID")
	}
	if opts.Bool(schema.OptionStrict, false) {
		parts = append(parts, "STRICT")
	}
	return strings.Join(parts, ", ")
}

// ForUpdate returns the query unchanged.
func (*Dialect) ForUpdate(query string) string { return query }

// SharedLock returns the query unchanged.
func (*Dialect) SharedLock(query string) string { return query }
