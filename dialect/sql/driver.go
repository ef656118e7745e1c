package sql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/syssam/dbdialect/dialect"
)

// validIdentifierRe validates SQL identifiers (alphanumeric, underscores, dots for schema.name)
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// isValidIdentifier checks if the string is a valid SQL identifier.
func isValidIdentifier(s string) bool {
	return s != "" && len(s) <= 128 && validIdentifierRe.MatchString(s)
}

// DriverName returns the database/sql driver name registered for a dialect:
// "postgres" by lib/pq, "mysql" by go-sql-driver/mysql and "sqlite" by
// modernc.org/sqlite.
func DriverName(dialectName string) string {
	return dialectName
}

// Driver executes statements generated by a dialect on a database/sql handle.
type Driver struct {
	Conn
	dialect dialect.Dialect
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithLogger logs every executed statement at debug level and every failed
// one at error level.
func WithLogger(l *slog.Logger) DriverOption {
	return func(d *Driver) {
		d.log = l
	}
}

// NewDriver creates a new Driver with the given dialect and Conn.
func NewDriver(d dialect.Dialect, c Conn, opts ...DriverOption) *Driver {
	drv := &Driver{dialect: d, Conn: c}
	drv.Conn.dialect = d.Name()
	drv.Conn.stats = &QueryStats{}
	drv.Conn.slow = DefaultSlowThreshold
	for _, opt := range opts {
		opt(drv)
	}
	return drv
}

// Open wraps the database/sql.Open method using the driver registered for
// the dialect. The caller must import the driver package.
func Open(d dialect.Dialect, source string, opts ...DriverOption) (*Driver, error) {
	db, err := sql.Open(DriverName(d.Name()), source)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: open %s: %w", d.Name(), err)
	}
	return NewDriver(d, Conn{ExecQuerier: db}, opts...), nil
}

// OpenDB wraps the given database/sql.DB with a Driver.
func OpenDB(d dialect.Dialect, db *sql.DB, opts ...DriverOption) *Driver {
	return NewDriver(d, Conn{ExecQuerier: db}, opts...)
}

// DB returns the underlying *sql.DB instance.
func (d *Driver) DB() *sql.DB {
	return d.ExecQuerier.(*sql.DB)
}

// Dialect returns the dialect used to generate statements for this driver.
func (d *Driver) Dialect() dialect.Dialect {
	return d.dialect
}

// Tx starts and returns a transaction.
func (d *Driver) Tx(ctx context.Context) (*Tx, error) {
	return d.BeginTx(ctx, nil)
}

// BeginTx starts a transaction with options.
func (d *Driver) BeginTx(ctx context.Context, opts *TxOptions) (*Tx, error) {
	tx, err := d.DB().BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: begin: %w", err)
	}
	return &Tx{
		Conn: Conn{ExecQuerier: tx, dialect: d.Conn.dialect, log: d.log, stats: d.stats, slow: d.slow},
		Tx:   tx,
	}, nil
}

// Close closes the underlying connection.
func (d *Driver) Close() error { return d.DB().Close() }

// Apply executes the statements in order within a single transaction. The
// transaction is rolled back on the first failure. Note that MySQL commits
// DDL statements implicitly, so a failed apply may leave earlier statements
// in place there.
func (d *Driver) Apply(ctx context.Context, stmts []string) (rerr error) {
	if len(stmts) == 0 {
		return nil
	}
	tx, err := d.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rerr != nil {
			if err := tx.Rollback(); err != nil {
				rerr = errors.Join(rerr, fmt.Errorf("dialect/sql: rollback: %w", err))
			}
		}
	}()
	for i, stmt := range stmts {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("dialect/sql: apply statement %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("dialect/sql: commit: %w", err)
	}
	return nil
}

// Tx is a transaction bound to a Driver.
type Tx struct {
	Conn
	driver.Tx
}

// ctyVarsKey is the key used for attaching and reading the context variables.
type ctxVarsKey struct{}

// sessionVars holds sessions/transactions variables to set before every statement.
type sessionVars struct {
	vars []struct{ k, v string }
}

// WithVar returns a new context that holds the session variable to be
// executed before every statement, such as search_path on PostgreSQL.
func WithVar(ctx context.Context, name, value string) context.Context {
	sv, _ := ctx.Value(ctxVarsKey{}).(sessionVars)
	vars := make([]struct{ k, v string }, len(sv.vars), len(sv.vars)+1)
	copy(vars, sv.vars)
	vars = append(vars, struct {
		k, v string
	}{
		k: name,
		v: value,
	})
	return context.WithValue(ctx, ctxVarsKey{}, sessionVars{vars: vars})
}

// VarFromContext returns the session variable value from the context.
func VarFromContext(ctx context.Context, name string) (string, bool) {
	sv, _ := ctx.Value(ctxVarsKey{}).(sessionVars)
	for i := len(sv.vars) - 1; i >= 0; i-- {
		if sv.vars[i].k == name {
			return sv.vars[i].v, true
		}
	}
	return "", false
}

// WithIntVar calls WithVar with the string representation of the value.
func WithIntVar(ctx context.Context, name string, value int) context.Context {
	return WithVar(ctx, name, strconv.Itoa(value))
}

// ExecQuerier wraps the standard Exec and Query methods.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Conn executes statements on an ExecQuerier, applying the session
// variables attached to the context.
type Conn struct {
	ExecQuerier
	dialect string
	log     *slog.Logger
	stats   *QueryStats
	slow    time.Duration
}

// Exec executes a statement that returns no rows.
func (c Conn) Exec(ctx context.Context, query string, args ...any) (_ sql.Result, rerr error) {
	ex, cf, err := c.maySetVars(ctx)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: exec: set session vars: %w", err)
	}
	if cf != nil {
		defer func() { rerr = errors.Join(rerr, cf()) }()
	}
	start := time.Now()
	res, err := ex.ExecContext(ctx, query, args...)
	c.record(ctx, "exec", query, start, err)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: exec: %w", err)
	}
	return res, nil
}

// Query executes a query that returns rows. The caller must close the rows.
func (c Conn) Query(ctx context.Context, query string, args ...any) (*Rows, error) {
	ex, cf, err := c.maySetVars(ctx)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: query: set session vars: %w", err)
	}
	start := time.Now()
	rows, err := ex.QueryContext(ctx, query, args...)
	c.record(ctx, "query", query, start, err)
	if err != nil {
		if cf != nil {
			err = errors.Join(err, cf())
		}
		return nil, fmt.Errorf("dialect/sql: query: %w", err)
	}
	if cf != nil {
		return &Rows{rowsWithCloser{rows, cf}}, nil
	}
	return &Rows{rows}, nil
}

// maySetVars sets the session variables before executing a query.
func (c Conn) maySetVars(ctx context.Context) (ExecQuerier, func() error, error) {
	sv, _ := ctx.Value(ctxVarsKey{}).(sessionVars)
	if len(sv.vars) == 0 {
		return c.ExecQuerier, nil, nil
	}
	var (
		ex    ExecQuerier  // Underlying ExecQuerier.
		cf    func() error // Close function.
		reset []string     // Reset variables.
		seen  = make(map[string]struct{}, len(sv.vars))
	)
	switch e := c.ExecQuerier.(type) {
	case *sql.Tx:
		ex = e
	case *sql.DB:
		conn, err := e.Conn(ctx)
		if err != nil {
			return nil, nil, err
		}
		ex, cf = conn, conn.Close
	default:
		return nil, nil, fmt.Errorf("unsupported ExecQuerier type: %T", c.ExecQuerier)
	}
	for _, s := range sv.vars {
		// Validate the variable name to prevent SQL injection
		if !isValidIdentifier(s.k) {
			if cf != nil {
				_ = cf()
			}
			return nil, nil, fmt.Errorf("invalid session variable name: %q", s.k)
		}
		if _, ok := seen[s.k]; !ok {
			switch c.dialect {
			case dialect.Postgres:
				reset = append(reset, fmt.Sprintf("RESET %s", s.k))
			case dialect.MySQL:
				reset = append(reset, fmt.Sprintf("SET %s = NULL", s.k))
			}
			seen[s.k] = struct{}{}
		}
		value := QuoteString(s.v)
		if c.dialect == dialect.MySQL {
			value = QuoteStringEscaped(s.v)
		}
		if _, err := ex.ExecContext(ctx, fmt.Sprintf("SET %s = %s", s.k, value)); err != nil {
			if cf != nil {
				err = errors.Join(err, cf())
			}
			return nil, nil, err
		}
	}
	// If there are variables to reset, and we need to return the
	// connection to the pool, we need to clean up the variables.
	// Use a background context with timeout for cleanup to ensure
	// it completes even if the original context was canceled.
	if cls := cf; cf != nil && len(reset) > 0 {
		cf = func() error {
			cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			for _, q := range reset {
				if _, err := ex.ExecContext(cleanupCtx, q); err != nil {
					return errors.Join(err, cls())
				}
			}
			return cls()
		}
	}
	return ex, cf, nil
}

type (
	// Rows wraps the sql.Rows to avoid locks copy.
	Rows struct{ ColumnScanner }
	// Result is an alias to sql.Result.
	Result = sql.Result
	// NullString is an alias to sql.NullString.
	NullString = sql.NullString
	// TxOptions holds the transaction options to be used in DB.BeginTx.
	TxOptions = sql.TxOptions
)

// ColumnScanner is the interface that wraps the standard
// sql.Rows methods used for scanning database rows.
type ColumnScanner interface {
	Close() error
	ColumnTypes() ([]*sql.ColumnType, error)
	Columns() ([]string, error)
	Err() error
	Next() bool
	NextResultSet() bool
	Scan(dest ...any) error
}

// rowsWithCloser wraps the ColumnScanner interface with a custom Close hook.
type rowsWithCloser struct {
	ColumnScanner
	closer func() error
}

// Close closes the underlying ColumnScanner and calls the custom closer.
func (r rowsWithCloser) Close() error {
	err := r.ColumnScanner.Close()
	return errors.Join(err, r.closer())
}
