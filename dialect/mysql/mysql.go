// Package mysql implements the MySQL dialect.
//
// Identifiers are quoted with backticks. CREATE TABLE accepts the "engine",
// "auto_increment" and "table_collation" options:
//
//	def.Options = schema.Options{"engine": "InnoDB", "table_collation": "utf8mb4_unicode_ci"}
//	// ... ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci
package mysql

import (
	"strconv"
	"strings"

	"github.com/syssam/dbdialect/dialect"
	"github.com/syssam/dbdialect/dialect/sql"
	"github.com/syssam/dbdialect/schema"
)

// Dialect is the MySQL dialect.
type Dialect struct {
	*sql.Builder
	cfg dialect.Config
}

var _ dialect.Dialect = (*Dialect)(nil)

// New returns a MySQL dialect.
func New(opts ...dialect.Option) *Dialect {
	d := &Dialect{cfg: dialect.NewConfig(opts...)}
	d.Builder = sql.NewBuilder(sql.Quoter{QuoteFunc: sql.Backtick, QuoteTables: d.cfg.QuoteTables}, d)
	return d
}

// Name implements dialect.Dialect.
func (*Dialect) Name() string { return dialect.MySQL }

// AutoIncrementSuffix returns the AUTO_INCREMENT column attribute.
func (*Dialect) AutoIncrementSuffix(*schema.Column) string {
	return " AUTO_INCREMENT"
}

// TableOptionsClause renders the ENGINE, AUTO_INCREMENT and collation options.
func (*Dialect) TableOptionsClause(opts schema.Options) string {
	var parts []string
	if engine := opts.String(schema.OptionEngine, ""); engine != "" {
		parts = append(parts, "ENGINE="+engine)
	}
	if n := opts.Int(schema.OptionAutoIncrement, 0); n > 0 {
		parts = append(parts, "AUTO_INCREMENT="+strconv.Itoa(n))
	}
	if collation := opts.String(schema.OptionTableCollation, ""); collation != "" {
		charset, _, _ := strings.Cut(collation, "_")
		parts = append(parts, "DEFAULT CHARSET="+charset, "COLLATE="+collation)
	}
	return strings.Join(parts, " ")
}

// ForUpdate appends a FOR UPDATE clause.
func (*Dialect) ForUpdate(query string) string {
	return query + " FOR UPDATE"
}

// SharedLock appends a LOCK IN SHARE MODE clause.
func (*Dialect) SharedLock(query string) string {
	return query + " LOCK IN SHARE MODE"
}
