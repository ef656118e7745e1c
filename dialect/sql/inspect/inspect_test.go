package inspect_test

import (
	"bytes"
	"context"
	stdsql "database/sql"
	"errors"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/syssam/dbdialect"
	"github.com/syssam/dbdialect/dialect"
	"github.com/syssam/dbdialect/dialect/mysql"
	"github.com/syssam/dbdialect/dialect/postgres"
	"github.com/syssam/dbdialect/dialect/sql"
	"github.com/syssam/dbdialect/dialect/sql/inspect"
	"github.com/syssam/dbdialect/dialect/sql/plan"
	"github.com/syssam/dbdialect/dialect/sqlite"
	"github.com/syssam/dbdialect/schema"
	"github.com/syssam/dbdialect/schema/field"
)

func openMock(t *testing.T, d dialect.Dialect) (*sql.Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sql.OpenDB(d, db), mock
}

func robotsTable() *schema.TableDefinition {
	return &schema.TableDefinition{
		Name: "robots",
		Columns: []*schema.Column{
			{Name: "id", Type: field.TypeInteger, AutoIncrement: true},
			{Name: "name", Type: field.TypeVarchar, Size: 70},
			{Name: "type", Type: field.TypeVarchar, Size: 32, Nullable: true, Default: "'mechanical'"},
			{Name: "price", Type: field.TypeDecimal, Size: 10, Scale: 2},
		},
		Indexes: []*schema.Index{schema.Primary("id")},
	}
}

func partsTable() *schema.TableDefinition {
	return &schema.TableDefinition{
		Name: "parts",
		Columns: []*schema.Column{
			{Name: "id", Type: field.TypeInteger, AutoIncrement: true},
			{Name: "robot_id", Type: field.TypeInteger},
		},
		Indexes: []*schema.Index{schema.Primary("id")},
		References: []*schema.Reference{{
			Name:              "parts_robot",
			Columns:           []string{"robot_id"},
			ReferencedTable:   "robots",
			ReferencedColumns: []string{"id"},
			OnDelete:          schema.Cascade,
		}},
	}
}

func openSQLite(t *testing.T) *sql.Driver {
	t.Helper()
	db, err := stdsql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	d := sqlite.New()
	var stmts []string
	for _, def := range []*schema.TableDefinition{robotsTable(), partsTable()} {
		stmt, err := d.CreateTable("", "", def)
		require.NoError(t, err)
		stmts = append(stmts, stmt)
	}
	drv := sql.OpenDB(d, db)
	require.NoError(t, drv.Apply(context.Background(), stmts))
	return drv
}

func TestInspector_SQLite(t *testing.T) {
	drv := openSQLite(t)
	ctx := context.Background()
	ins := inspect.New(drv.Dialect(), drv, inspect.WithWorkers(2))

	ok, err := ins.TableExists(ctx, "robots", "")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = ins.TableExists(ctx, "droids", "")
	require.NoError(t, err)
	assert.False(t, ok)

	tables, err := ins.Tables(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"parts", "robots"}, tables)

	defs, err := ins.Schema(ctx, "")
	require.NoError(t, err)
	require.Len(t, defs, 2)
	parts, robots := defs[0], defs[1]

	want := robotsTable()
	require.Len(t, robots.Columns, len(want.Columns))
	for n, c := range want.Columns {
		assert.True(t, c.Equal(robots.Columns[n]), "column %s: got %s", c.Name, robots.Columns[n])
	}
	require.Len(t, robots.Indexes, 1)
	assert.True(t, robots.Indexes[0].Equal(schema.Primary("id")))
	assert.Empty(t, robots.References)
	assert.Nil(t, robots.Options)

	require.Len(t, parts.References, 1)
	ref := parts.References[0]
	assert.Equal(t, "fk_0", ref.Name)
	assert.Equal(t, []string{"robot_id"}, ref.Columns)
	assert.Empty(t, ref.ReferencedSchema)
	assert.Equal(t, "robots", ref.ReferencedTable)
	assert.Equal(t, []string{"id"}, ref.ReferencedColumns)
	assert.Equal(t, schema.Cascade, ref.OnDelete)
	assert.Equal(t, schema.NoAction, ref.OnUpdate)

	_, err = ins.Table(ctx, "droids", "")
	assert.ErrorIs(t, err, inspect.ErrTableNotFound)
}

func TestInspector_SQLiteViews(t *testing.T) {
	drv := openSQLite(t)
	ctx := context.Background()
	d := drv.Dialect()
	view, err := d.CreateView("robot_names", "", "SELECT name FROM robots")
	require.NoError(t, err)
	_, err = drv.Exec(ctx, view)
	require.NoError(t, err)

	ins := inspect.New(d, drv)
	ok, err := ins.ViewExists(ctx, "robot_names", "")
	require.NoError(t, err)
	assert.True(t, ok)
	views, err := ins.Views(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"robot_names"}, views)
}

func TestInspector_Postgres(t *testing.T) {
	d := postgres.New()
	drv, mock := openMock(t, d)
	ctx := context.Background()

	mock.ExpectQuery(d.DescribeColumns("parts", "")).WillReturnRows(
		sqlmock.NewRows([]string{"field", "type", "null", "key", "default", "extra"}).
			AddRow("id", "integer", "NO", "PRI", "nextval('parts_id_seq'::regclass)", "auto_increment").
			AddRow("robot_id", "integer", "NO", "", "", "").
			AddRow("label", "character varying(20)", "YES", "", "", "").
			AddRow("status", "character varying(10)", "NO", "", "'it''s new'::character varying", "").
			AddRow("created", "timestamp without time zone", "NO", "", "CURRENT_TIMESTAMP", ""))
	mock.ExpectQuery(d.DescribeIndexes("parts", "")).WillReturnRows(
		sqlmock.NewRows([]string{"key_name", "column_name", "is_primary", "is_unique"}).
			AddRow("parts_pkey", "id", true, true).
			AddRow("parts_label_robot", "label", false, true).
			AddRow("parts_label_robot", "robot_id", false, true))
	mock.ExpectQuery(d.DescribeReferences("parts", "")).WillReturnRows(
		sqlmock.NewRows([]string{"constraint_name", "table_schema", "column_name", "referenced_table_schema", "referenced_table_name", "referenced_column_name", "on_delete", "on_update"}).
			AddRow("parts_robot", "public", "robot_id", "public", "robots", "id", "CASCADE", "NO ACTION").
			AddRow("parts_owner", "public", "owner_id", "auth", "users", "id", "SET NULL", "NO ACTION"))
	mock.ExpectQuery(d.TableOptions("parts", "")).WillReturnRows(
		sqlmock.NewRows([]string{"tablespace"}).AddRow("fast"))

	def, err := inspect.New(d, drv).Table(ctx, "parts", "")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, []*schema.Column{
		{Name: "id", Type: field.TypeInteger, AutoIncrement: true},
		{Name: "robot_id", Type: field.TypeInteger},
		{Name: "label", Type: field.TypeVarchar, Size: 20, Nullable: true},
		{Name: "status", Type: field.TypeVarchar, Size: 10, Default: "'it''s new'"},
		{Name: "created", Type: field.TypeTimestamp, Default: "CURRENT_TIMESTAMP"},
	}, def.Columns)
	assert.Equal(t, []*schema.Index{
		{Name: schema.PrimaryKey, Columns: []string{"id"}},
		{Name: "parts_label_robot", Columns: []string{"label", "robot_id"}, Unique: true},
	}, def.Indexes)
	require.Len(t, def.References, 2)
	assert.Empty(t, def.References[0].ReferencedSchema)
	assert.Equal(t, "auth", def.References[1].ReferencedSchema)
	assert.Equal(t, schema.SetNull, def.References[1].OnDelete)
	assert.Equal(t, schema.Options{"tablespace": "fast"}, def.Options)
}

func TestInspector_MySQL(t *testing.T) {
	d := mysql.New()
	drv, mock := openMock(t, d)
	ctx := context.Background()
	ins := inspect.New(d, drv)

	mock.ExpectQuery(d.TableExists("robots", "shop")).WillReturnRows(
		sqlmock.NewRows([]string{"IF(COUNT(*) > 0, 1, 0)"}).AddRow(int64(1)))
	ok, err := ins.TableExists(ctx, "robots", "shop")
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectQuery(d.DescribeColumns("robots", "shop")).WillReturnRows(
		sqlmock.NewRows([]string{"field", "type", "null", "key", "default", "extra"}).
			AddRow([]byte("id"), []byte("int(10) unsigned"), []byte("NO"), []byte("PRI"), []byte(""), []byte("auto_increment")).
			AddRow([]byte("active"), []byte("tinyint(1)"), []byte("NO"), []byte(""), []byte("1"), []byte("")))
	columns, err := ins.Columns(ctx, "robots", "shop")
	require.NoError(t, err)
	require.Len(t, columns, 2)
	assert.Equal(t, field.TypeInteger, columns[0].Type)
	assert.True(t, columns[0].AutoIncrement)
	assert.Equal(t, field.TypeBoolean, columns[1].Type)
	assert.Equal(t, "1", columns[1].Default)

	mock.ExpectQuery(d.DescribeIndexes("robots", "shop")).WillReturnRows(
		sqlmock.NewRows([]string{"key_name", "column_name", "is_primary", "is_unique"}).
			AddRow("PRIMARY", "id", int64(1), int64(1)).
			AddRow("robots_type", "type", int64(0), int64(0)))
	indexes, err := ins.Indexes(ctx, "robots", "shop")
	require.NoError(t, err)
	assert.Equal(t, []*schema.Index{
		schema.Primary("id"),
		{Name: "robots_type", Columns: []string{"type"}},
	}, indexes)

	mock.ExpectQuery(d.TableOptions("robots", "shop")).WillReturnRows(
		sqlmock.NewRows([]string{"engine", "auto_increment", "table_collation"}).
			AddRow([]byte("InnoDB"), nil, []byte("utf8mb4_general_ci")))
	opts, err := ins.Options(ctx, "robots", "shop")
	require.NoError(t, err)
	assert.Equal(t, schema.Options{"engine": "InnoDB", "table_collation": "utf8mb4_general_ci"}, opts)
	assert.Equal(t, "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_general_ci", d.TableOptionsClause(opts))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInspector_MySQLReferenceIndex(t *testing.T) {
	d := mysql.New()
	drv, mock := openMock(t, d)
	ctx := context.Background()

	mock.ExpectQuery(d.DescribeColumns("parts", "shop")).WillReturnRows(
		sqlmock.NewRows([]string{"field", "type", "null", "key", "default", "extra"}).
			AddRow("id", "int(11)", "NO", "PRI", "", "auto_increment").
			AddRow("robot_id", "int(11)", "NO", "MUL", "", ""))
	mock.ExpectQuery(d.DescribeIndexes("parts", "shop")).WillReturnRows(
		sqlmock.NewRows([]string{"key_name", "column_name", "is_primary", "is_unique"}).
			AddRow("PRIMARY", "id", int64(1), int64(1)).
			AddRow("parts_robot", "robot_id", int64(0), int64(0)))
	mock.ExpectQuery(d.DescribeReferences("parts", "shop")).WillReturnRows(
		sqlmock.NewRows([]string{"constraint_name", "table_schema", "column_name", "referenced_table_schema", "referenced_table_name", "referenced_column_name", "on_delete", "on_update"}).
			AddRow("parts_robot", "shop", "robot_id", "shop", "robots", "id", "CASCADE", "NO ACTION"))
	mock.ExpectQuery(d.TableOptions("parts", "shop")).WillReturnRows(
		sqlmock.NewRows([]string{"engine"}).AddRow("InnoDB"))

	def, err := inspect.New(d, drv).Table(ctx, "parts", "shop")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, []*schema.Index{schema.Primary("id")}, def.Indexes)

	desired := partsTable()
	desired.Schema = "shop"
	p := plan.Diff([]*schema.TableDefinition{def}, []*schema.TableDefinition{desired})
	assert.True(t, p.Empty(), "%v", p.Changes)
	assert.NoError(t, p.Err())
}

func TestInspector_Errors(t *testing.T) {
	d := postgres.New()
	drv, mock := openMock(t, d)
	ctx := context.Background()
	ins := inspect.New(d, drv)

	mock.ExpectQuery(d.DescribeColumns("t", "")).WillReturnError(errors.New("connection reset"))
	_, err := ins.Columns(ctx, "t", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `inspect: columns of "t"`)
	assert.Contains(t, err.Error(), "connection reset")

	mock.ExpectQuery(d.DescribeColumns("t", "")).WillReturnRows(
		sqlmock.NewRows([]string{"field", "type", "null", "key", "default", "extra"}).
			AddRow("area", "polygon", "YES", "", "", ""))
	_, err = ins.Columns(ctx, "t", "")
	assert.True(t, dbdialect.IsUnrecognizedType(err))

	mock.ExpectQuery(d.DescribeReferences("t", "")).WillReturnRows(
		sqlmock.NewRows([]string{"constraint_name", "table_schema", "column_name", "referenced_table_schema", "referenced_table_name", "referenced_column_name", "on_delete", "on_update"}).
			AddRow("fk", "public", "a", "public", "b", "id", "EXPLODE", ""))
	_, err = ins.References(ctx, "t", "")
	assert.ErrorContains(t, err, "unknown reference action")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInspector_Cache(t *testing.T) {
	drv := openSQLite(t)
	ctx := context.Background()
	cache := dbdialect.NewMemoryCache()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ins := inspect.New(drv.Dialect(), drv, inspect.WithCache(cache, 0), inspect.WithLogger(logger))

	first, err := ins.Table(ctx, "robots", "")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())
	assert.Contains(t, buf.String(), "schema cache miss")

	// Dropping the table does not affect the cached snapshot.
	_, err = drv.Exec(ctx, drv.Dialect().DropTable("parts", "", false))
	require.NoError(t, err)
	_, err = drv.Exec(ctx, drv.Dialect().DropTable("robots", "", false))
	require.NoError(t, err)

	second, err := ins.Table(ctx, "robots", "")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "schema cache hit")
	assert.Equal(t, first.Name, second.Name)
	require.Len(t, second.Columns, len(first.Columns))
	for n, c := range first.Columns {
		assert.True(t, c.Equal(second.Columns[n]))
	}

	require.NoError(t, ins.InvalidateSchema(ctx, ""))
	assert.Zero(t, cache.Len())
	_, err = ins.Table(ctx, "robots", "")
	assert.ErrorIs(t, err, inspect.ErrTableNotFound)

	require.NoError(t, ins.Invalidate(ctx, "robots", ""))
}
