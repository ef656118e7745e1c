package sql

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/dbdialect/dialect"
)

// namedDialect satisfies dialect.Dialect for driver tests, which only need
// the dialect name.
type namedDialect struct {
	dialect.Dialect
	name string
}

func (d namedDialect) Name() string { return d.name }

func openMock(t *testing.T, name string, opts ...DriverOption) (*Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return OpenDB(namedDialect{name: name}, db, opts...), mock
}

func TestWithVars(t *testing.T) {
	drv, mock := openMock(t, dialect.Postgres)
	drv.DB().SetMaxOpenConns(1)

	mock.ExpectExec("SET search_path = 'tenant'").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec("RESET search_path").WillReturnResult(sqlmock.NewResult(0, 0))
	rows, err := drv.Query(WithVar(context.Background(), "search_path", "tenant"), "SELECT 1")
	require.NoError(t, err)
	require.NoError(t, rows.Close(), "rows should be closed to release the connection")
	require.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectExec("SET foo = 'bar'").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SET foo = 'baz'").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE t").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("RESET foo").WillReturnResult(sqlmock.NewResult(0, 0))
	_, err = drv.Exec(WithVar(WithVar(context.Background(), "foo", "bar"), "foo", "baz"), "CREATE TABLE t (id INT)")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectBegin()
	mock.ExpectExec("SET foo = 'bar'").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectCommit()
	tx, err := drv.Tx(context.Background())
	require.NoError(t, err)
	rows, err = tx.Query(WithVar(context.Background(), "foo", "bar"), "SELECT 1")
	require.NoError(t, err)
	require.NoError(t, rows.Close())
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVarFromContext(t *testing.T) {
	ctx := WithIntVar(WithVar(context.Background(), "a", "1"), "a", 2)
	v, ok := VarFromContext(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, "2", v)
	_, ok = VarFromContext(ctx, "b")
	assert.False(t, ok)
}

func TestOpenDB(t *testing.T) {
	for _, name := range dialect.Names() {
		t.Run(name, func(t *testing.T) {
			drv, _ := openMock(t, name)
			assert.NotNil(t, drv)
			assert.Equal(t, name, drv.Dialect().Name())
			assert.Equal(t, name, DriverName(name))
		})
	}
}

func TestDriverQuery(t *testing.T) {
	drv, mock := openMock(t, dialect.Postgres)

	t.Run("simple_query", func(t *testing.T) {
		mock.ExpectQuery("SELECT table_name FROM information_schema.tables").
			WillReturnRows(sqlmock.NewRows([]string{"table_name"}).
				AddRow("users").
				AddRow("posts"))

		rows, err := drv.Query(context.Background(), "SELECT table_name FROM information_schema.tables")
		require.NoError(t, err)
		var names []string
		for rows.Next() {
			var s string
			require.NoError(t, rows.Scan(&s))
			names = append(names, s)
		}
		require.NoError(t, rows.Close())
		assert.Equal(t, []string{"users", "posts"}, names)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query_error", func(t *testing.T) {
		mock.ExpectQuery("SELECT").WillReturnError(errors.New("database error"))
		_, err := drv.Query(context.Background(), "SELECT")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dialect/sql: query: database error")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDriverExec(t *testing.T) {
	drv, mock := openMock(t, dialect.MySQL)

	t.Run("simple_exec", func(t *testing.T) {
		mock.ExpectExec("ALTER TABLE users ADD").WillReturnResult(sqlmock.NewResult(0, 0))
		_, err := drv.Exec(context.Background(), "ALTER TABLE users ADD `age` INT NOT NULL")
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exec_error", func(t *testing.T) {
		mock.ExpectExec("DROP TABLE").WillReturnError(errors.New("unknown table"))
		_, err := drv.Exec(context.Background(), "DROP TABLE missing")
		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDriverApply(t *testing.T) {
	t.Run("commit", func(t *testing.T) {
		drv, mock := openMock(t, dialect.Postgres)
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE a").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE TABLE b").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()
		err := drv.Apply(context.Background(), []string{"CREATE TABLE a (id INT)", "CREATE TABLE b (id INT)"})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback", func(t *testing.T) {
		drv, mock := openMock(t, dialect.Postgres)
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE a").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE TABLE b").WillReturnError(errors.New("boom"))
		mock.ExpectRollback()
		err := drv.Apply(context.Background(), []string{"CREATE TABLE a (id INT)", "CREATE TABLE b (id INT)"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "apply statement 2")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty", func(t *testing.T) {
		drv, mock := openMock(t, dialect.Postgres)
		require.NoError(t, drv.Apply(context.Background(), nil))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDriverLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	drv, mock := openMock(t, dialect.SQLite, WithLogger(logger))

	mock.ExpectExec("DROP TABLE t").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DROP TABLE u").WillReturnError(errors.New("no such table"))
	_, err := drv.Exec(context.Background(), "DROP TABLE t")
	require.NoError(t, err)
	_, err = drv.Exec(context.Background(), "DROP TABLE u")
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "statement executed")
	assert.Contains(t, out, `query="DROP TABLE t"`)
	assert.Contains(t, out, "statement failed")
	assert.Contains(t, out, "dialect=sqlite")
}

func TestContextCancellation(t *testing.T) {
	drv, mock := openMock(t, dialect.Postgres)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mock.ExpectQuery("SELECT").WillReturnError(context.Canceled)
	_, err := drv.Query(ctx, "SELECT 1")
	assert.Error(t, err)
}

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"valid_simple", "foo", true},
		{"valid_with_underscore", "foo_bar", true},
		{"valid_with_number", "foo123", true},
		{"valid_with_dot", "schema.table", true},
		{"valid_starting_underscore", "_private", true},
		{"invalid_empty", "", false},
		{"invalid_starting_number", "123foo", false},
		{"invalid_with_space", "foo bar", false},
		{"invalid_with_quote", "foo'bar", false},
		{"invalid_with_semicolon", "foo;DROP TABLE", false},
		{"invalid_with_dash", "foo-bar", false},
		{"invalid_too_long", string(make([]byte, 129)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isValidIdentifier(tt.input))
		})
	}
}

func TestWithVarsInvalidIdentifier(t *testing.T) {
	drv, _ := openMock(t, dialect.Postgres)
	drv.DB().SetMaxOpenConns(1)

	_, err := drv.Query(WithVar(context.Background(), "foo; DROP TABLE users; --", "bar"), "SELECT 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid session variable name")
}

func TestWithVarsEscapedValue(t *testing.T) {
	drv, mock := openMock(t, dialect.Postgres)
	drv.DB().SetMaxOpenConns(1)

	mock.ExpectExec("SET foo = 'it''s escaped'").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec("RESET foo").WillReturnResult(sqlmock.NewResult(0, 0))

	rows, err := drv.Query(WithVar(context.Background(), "foo", "it's escaped"), "SELECT 1")
	require.NoError(t, err)
	require.NoError(t, rows.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithVarsBackslash(t *testing.T) {
	tests := []struct {
		dialect string
		set     string
		reset   string
	}{
		{dialect.Postgres, `SET foo = 'C:\tmp'`, "RESET foo"},
		{dialect.MySQL, `SET foo = 'C:\\tmp'`, "SET foo = NULL"},
	}
	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
			require.NoError(t, err)
			t.Cleanup(func() { db.Close() })
			db.SetMaxOpenConns(1)
			drv := OpenDB(namedDialect{name: tt.dialect}, db)

			mock.ExpectExec(tt.set).WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
			mock.ExpectExec(tt.reset).WillReturnResult(sqlmock.NewResult(0, 0))

			rows, err := drv.Query(WithVar(context.Background(), "foo", `C:\tmp`), "SELECT 1")
			require.NoError(t, err)
			require.NoError(t, rows.Close())
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
