// Package postgres implements the PostgreSQL dialect.
//
// Identifiers are double-quoted. Auto-increment columns become identity
// columns and table options support a tablespace:
//
//	d := postgres.New()
//	stmt, _ := d.AddColumn("users", "public", &schema.Column{Name: "age", Type: field.TypeInteger})
//	// ALTER TABLE public.users ADD "age" INT NOT NULL
package postgres

import (
	"github.com/lib/pq"

	"github.com/syssam/dbdialect/dialect"
	"github.com/syssam/dbdialect/dialect/sql"
	"github.com/syssam/dbdialect/schema"
)

// DefaultSchema is the schema used by catalog queries when none is given.
const DefaultSchema = "public"

// Dialect is the PostgreSQL dialect.
type Dialect struct {
	*sql.Builder
	cfg dialect.Config
}

var _ dialect.Dialect = (*Dialect)(nil)

// New returns a PostgreSQL dialect.
func New(opts ...dialect.Option) *Dialect {
	cfg := dialect.NewConfig(opts...)
	if cfg.DefaultSchema == "" {
		cfg.DefaultSchema = DefaultSchema
	}
	d := &Dialect{cfg: cfg}
	d.Builder = sql.NewBuilder(sql.Quoter{QuoteFunc: pq.QuoteIdentifier, QuoteTables: cfg.QuoteTables}, d)
	return d
}

// Name implements dialect.Dialect.
func (*Dialect) Name() string { return dialect.Postgres }

// AutoIncrementSuffix declares the column as an identity column.
func (*Dialect) AutoIncrementSuffix(*schema.Column) string {
	return " GENERATED BY DEFAULT AS IDENTITY"
}

// TableOptionsClause renders the "tablespace" option.
func (d *Dialect) TableOptionsClause(opts schema.Options) string {
	if ts := opts.String(schema.OptionTablespace, ""); ts != "" {
		return "TABLESPACE " + d.Table(ts, "")
	}
	return ""
}

// ForUpdate appends a FOR UPDATE clause.
func (*Dialect) ForUpdate(query string) string {
	return query + " FOR UPDATE"
}

// SharedLock appends a FOR SHARE clause.
func (*Dialect) SharedLock(query string) string {
	return query + " FOR SHARE"
}
