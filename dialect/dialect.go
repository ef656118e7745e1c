package dialect

import (
	"github.com/syssam/dbdialect/schema"
	"github.com/syssam/dbdialect/schema/field"
)

// Dialect names.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// Names returns the names of all supported dialects.
func Names() []string {
	return []string{Postgres, MySQL, SQLite}
}

// TypeMapper maps abstract column types to native SQL types and back.
type TypeMapper interface {
	// Supports reports if the dialect can render the given type.
	Supports(t field.Type) bool
	// SupportedTypes returns the capability set of the dialect.
	SupportedTypes() []field.Type
	// ColumnSQLType returns the native type of the column, such as
	// "CHARACTER VARYING(255)" or "NUMERIC(10,2)".
	ColumnSQLType(c *schema.Column) (string, error)
	// ParseType maps a native type reported by the catalog back to an
	// abstract type with its size and scale.
	ParseType(native string) (t field.Type, size, scale int, err error)
}

// Identifiers quotes identifiers under the dialect's quoting policy.
type Identifiers interface {
	// Quote quotes a column, index or constraint name.
	Quote(ident string) string
	// ColumnList quotes every name and joins them with ", ".
	ColumnList(names []string) string
	// Table returns the qualified table name, schema.table when schema is set.
	Table(name, schema string) string
}

// DDL generates schema-changing statements.
type DDL interface {
	ColumnDefinition(c *schema.Column) (string, error)
	AddColumn(table, schema string, c *schema.Column) (string, error)
	ModifyColumn(table, schema string, c *schema.Column) (string, error)
	DropColumn(table, schema, column string) string
	AddIndex(table, schema string, idx *schema.Index) (string, error)
	DropIndex(table, schema, index string) string
	AddPrimaryKey(table, schema string, idx *schema.Index) (string, error)
	DropPrimaryKey(table, schema string) string
	AddForeignKey(table, schema string, ref *schema.Reference) (string, error)
	DropForeignKey(table, schema, reference string) string
	CreateTable(table, schema string, def *schema.TableDefinition) (string, error)
	DropTable(table, schema string, ifExists bool) string
	CreateView(view, schema, selectSQL string) (string, error)
	DropView(view, schema string, ifExists bool) string
}

// Introspector generates catalog queries. The result-set layout of each
// query is uniform across dialects:
//
//	TableExists        one row, one integer column: 1 or 0
//	ListTables         table_name
//	DescribeColumns    field, type, null, key, default, extra
//	DescribeIndexes    key_name, column_name, is_primary, is_unique
//	DescribeReferences constraint_name, table_schema, column_name,
//	                   referenced_table_schema, referenced_table_name,
//	                   referenced_column_name, on_delete, on_update
//	TableOptions       one row, one column per option
//	ViewExists         one row, one integer column: 1 or 0
//	ListViews          view_name
type Introspector interface {
	TableExists(table, schema string) string
	ListTables(schema string) string
	DescribeColumns(table, schema string) string
	DescribeIndexes(table, schema string) string
	DescribeReferences(table, schema string) string
	TableOptions(table, schema string) string
	ViewExists(view, schema string) string
	ListViews(schema string) string
}

// Modifier appends clauses to an existing SELECT statement.
type Modifier interface {
	// Limit appends a LIMIT clause if number is numeric. Otherwise, the
	// query is returned unchanged.
	Limit(query string, number any) string
	ForUpdate(query string) string
	SharedLock(query string) string
}

// Dialect is the full operation surface of a SQL backend.
// Implementations are immutable and safe for concurrent use.
type Dialect interface {
	// Name returns the dialect name, one of Postgres, MySQL or SQLite.
	Name() string
	TypeMapper
	Identifiers
	DDL
	Introspector
	Modifier
}

// Config holds the construction-time options shared by all dialects.
type Config struct {
	// QuoteTables quotes table and schema names. By default they are
	// emitted verbatim.
	QuoteTables bool
	// DefaultSchema is used by catalog queries when no schema is given.
	DefaultSchema string
}

// Option configures a dialect.
type Option func(*Config)

// WithQuotedTables quotes table and schema names with the dialect's
// identifier quoting policy.
func WithQuotedTables() Option {
	return func(c *Config) {
		c.QuoteTables = true
	}
}

// WithDefaultSchema sets the schema used by catalog queries when the caller
// passes an empty schema.
func WithDefaultSchema(name string) Option {
	return func(c *Config) {
		c.DefaultSchema = name
	}
}

// NewConfig applies the options on a zero Config.
func NewConfig(opts ...Option) Config {
	var c Config
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
