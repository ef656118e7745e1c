// Package sql holds the pieces shared by the SQL dialects and the code that
// executes their output.
//
// # Builders
//
// Builder renders the DDL templates common to all backends. A backend embeds
// a *Builder and supplies the parts that differ through the Backend
// interface:
//
//	type Dialect struct {
//		*sql.Builder
//	}
//
//	func New() *Dialect {
//		d := &Dialect{}
//		d.Builder = sql.NewBuilder(sql.Quoter{Ident: sql.Backtick}, d)
//		return d
//	}
//
// Quoter quotes identifiers with a backend-specific function. QuoteString
// and QuoteStringEscaped quote string literals.
//
// # Driver
//
// Driver executes statements on a database/sql handle. It logs statements
// with log/slog, keeps statement statistics and applies session variables
// attached to the context:
//
//	drv, err := sql.Open(postgres.New(), dsn, sql.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	ctx = sql.WithVar(ctx, "search_path", "tenant")
//	err = drv.Apply(ctx, stmts)
//	if sql.IsUniqueConstraintError(err) {
//		// existing rows conflict with a new unique index
//	}
//
// The caller imports the database/sql driver of the dialect: lib/pq for
// postgres, go-sql-driver/mysql for mysql and modernc.org/sqlite for sqlite.
package sql
