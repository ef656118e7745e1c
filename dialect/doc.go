// Package dialect defines the contract every SQL backend implements.
//
// A Dialect turns the backend-neutral schema model into DDL and
// catalog-introspection SQL text. It performs no I/O: executing the text is
// left to the caller (see dialect/sql.Driver and dialect/sql/inspect).
//
// # Supported Dialects
//
// The following dialects are supported:
//
//   - Postgres: PostgreSQL database (dialect/postgres)
//   - MySQL: MySQL/MariaDB database (dialect/mysql)
//   - SQLite: SQLite database (dialect/sqlite)
//
// # Dialect Constants
//
// Each dialect is identified by a constant string:
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// # Capability Groups
//
// The Dialect interface is composed of smaller interfaces, so consumers can
// depend on only what they use:
//
//	type Dialect interface {
//	    Name() string
//	    TypeMapper   // abstract type -> native type
//	    Identifiers  // quoting and column lists
//	    DDL          // ALTER/CREATE/DROP statements
//	    Introspector // catalog queries
//	    Modifier     // LIMIT and locking clauses
//	}
//
// # Usage
//
// There is no process-wide current dialect. Construct one and pass it along:
//
//	d := postgres.New(dialect.WithQuotedTables())
//	stmt, err := d.CreateTable("users", "", def)
//
// or select one by name:
//
//	d, err := backend.New(dialect.MySQL)
package dialect
