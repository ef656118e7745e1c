// Package inspect runs the introspection queries of a dialect and maps the
// results back into schema definitions.
//
//	drv, err := sql.Open(postgres.New(), dsn)
//	if err != nil {
//		return err
//	}
//	ins := inspect.New(drv.Dialect(), drv, inspect.WithWorkers(4))
//	tables, err := ins.Schema(ctx, "public")
package inspect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/dbdialect"
	"github.com/syssam/dbdialect/dialect"
	"github.com/syssam/dbdialect/dialect/sql"
	"github.com/syssam/dbdialect/schema"
)

// ErrTableNotFound is returned by Table when the table has no columns in
// the catalog.
var ErrTableNotFound = errors.New("inspect: table not found")

// Querier executes catalog queries. It is implemented by *sql.Driver,
// *sql.Tx and sql.Conn.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Inspector reads table definitions from a live database.
type Inspector struct {
	dialect dialect.Dialect
	querier Querier
	workers int
	cache   dbdialect.Cache
	ttl     time.Duration
	log     *slog.Logger
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithWorkers bounds the number of tables described concurrently by Schema.
// Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(i *Inspector) {
		if n > 0 {
			i.workers = n
		}
	}
}

// WithCache caches table snapshots for ttl. A zero ttl never expires.
func WithCache(c dbdialect.Cache, ttl time.Duration) Option {
	return func(i *Inspector) {
		i.cache, i.ttl = c, ttl
	}
}

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(i *Inspector) {
		i.log = l
	}
}

// New returns an Inspector running the queries of d on q.
func New(d dialect.Dialect, q Querier, opts ...Option) *Inspector {
	i := &Inspector{
		dialect: d,
		querier: q,
		workers: 1,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// TableExists reports if the table exists.
func (i *Inspector) TableExists(ctx context.Context, table, schemaName string) (bool, error) {
	return i.exists(ctx, "table exists", i.dialect.TableExists(table, schemaName))
}

// ViewExists reports if the view exists.
func (i *Inspector) ViewExists(ctx context.Context, view, schemaName string) (bool, error) {
	return i.exists(ctx, "view exists", i.dialect.ViewExists(view, schemaName))
}

func (i *Inspector) exists(ctx context.Context, op, query string) (bool, error) {
	rows, err := i.query(ctx, query)
	if err != nil {
		return false, fmt.Errorf("inspect: %s: %w", op, err)
	}
	if len(rows) == 0 || len(rows[0]) != 1 {
		return false, nil
	}
	values := slices.Collect(maps.Values(rows[0]))
	return truthy(values[0]), nil
}

// Tables returns the names of the base tables in the schema.
func (i *Inspector) Tables(ctx context.Context, schemaName string) ([]string, error) {
	return i.names(ctx, "tables", i.dialect.ListTables(schemaName), "table_name")
}

// Views returns the names of the views in the schema.
func (i *Inspector) Views(ctx context.Context, schemaName string) ([]string, error) {
	return i.names(ctx, "views", i.dialect.ListViews(schemaName), "view_name")
}

func (i *Inspector) names(ctx context.Context, op, query, label string) ([]string, error) {
	rows, err := i.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("inspect: %s: %w", op, err)
	}
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.str(label))
	}
	return names, nil
}

// Columns returns the columns of the table in ordinal order.
func (i *Inspector) Columns(ctx context.Context, table, schemaName string) ([]*schema.Column, error) {
	rows, err := i.query(ctx, i.dialect.DescribeColumns(table, schemaName))
	if err != nil {
		return nil, fmt.Errorf("inspect: columns of %q: %w", table, err)
	}
	columns := make([]*schema.Column, 0, len(rows))
	for _, r := range rows {
		typ, size, scale, err := i.dialect.ParseType(r.str("type"))
		if err != nil {
			return nil, fmt.Errorf("inspect: columns of %q: column %q: %w", table, r.str("field"), err)
		}
		c := &schema.Column{
			Name:          r.str("field"),
			Type:          typ,
			Size:          size,
			Scale:         scale,
			Nullable:      strings.EqualFold(r.str("null"), "YES"),
			AutoIncrement: strings.Contains(strings.ToLower(r.str("extra")), "auto_increment"),
			Default:       r.str("default"),
		}
		// Sequence defaults of serial columns are implied by the auto-increment.
		if c.AutoIncrement && strings.HasPrefix(strings.ToLower(c.Default), "nextval(") {
			c.Default = ""
		}
		if i.dialect.Name() == dialect.Postgres {
			c.Default = trimCast(c.Default)
		}
		columns = append(columns, c)
	}
	return columns, nil
}

// Indexes returns the indexes of the table. The primary key is reported
// under the schema.PrimaryKey name.
func (i *Inspector) Indexes(ctx context.Context, table, schemaName string) ([]*schema.Index, error) {
	rows, err := i.query(ctx, i.dialect.DescribeIndexes(table, schemaName))
	if err != nil {
		return nil, fmt.Errorf("inspect: indexes of %q: %w", table, err)
	}
	var (
		indexes []*schema.Index
		byName  = make(map[string]*schema.Index)
	)
	for _, r := range rows {
		name := r.str("key_name")
		primary := truthy(r["is_primary"])
		if primary {
			name = schema.PrimaryKey
		}
		idx, ok := byName[name]
		if !ok {
			idx = &schema.Index{Name: name, Unique: !primary && truthy(r["is_unique"])}
			byName[name] = idx
			indexes = append(indexes, idx)
		}
		idx.Columns = append(idx.Columns, r.str("column_name"))
	}
	return indexes, nil
}

// References returns the foreign keys of the table. The referenced schema
// is left empty when it is the schema of the table.
func (i *Inspector) References(ctx context.Context, table, schemaName string) ([]*schema.Reference, error) {
	rows, err := i.query(ctx, i.dialect.DescribeReferences(table, schemaName))
	if err != nil {
		return nil, fmt.Errorf("inspect: references of %q: %w", table, err)
	}
	var (
		refs   []*schema.Reference
		byName = make(map[string]*schema.Reference)
	)
	for _, r := range rows {
		name := r.str("constraint_name")
		ref, ok := byName[name]
		if !ok {
			onDelete, err := schema.ParseReferenceAction(r.str("on_delete"))
			if err != nil {
				return nil, fmt.Errorf("inspect: references of %q: %w", table, err)
			}
			onUpdate, err := schema.ParseReferenceAction(r.str("on_update"))
			if err != nil {
				return nil, fmt.Errorf("inspect: references of %q: %w", table, err)
			}
			ref = &schema.Reference{
				Name:             name,
				ReferencedSchema: r.str("referenced_table_schema"),
				ReferencedTable:  r.str("referenced_table_name"),
				OnDelete:         onDelete,
				OnUpdate:         onUpdate,
			}
			if ref.ReferencedSchema == r.str("table_schema") {
				ref.ReferencedSchema = ""
			}
			byName[name] = ref
			refs = append(refs, ref)
		}
		ref.Columns = append(ref.Columns, r.str("column_name"))
		ref.ReferencedColumns = append(ref.ReferencedColumns, r.str("referenced_column_name"))
	}
	return refs, nil
}

// castRe matches a quoted literal followed by a type cast, the form
// pg_get_expr reports for defaults such as 'abc'::character varying.
var castRe = regexp.MustCompile(`^('(?:[^']|'')*')::[a-z_][a-z0-9_ ]*(?:\(\d+(?:,\s*\d+)?\))?(?:\[\])?$`)

// trimCast strips the type cast from a literal default.
func trimCast(def string) string {
	if m := castRe.FindStringSubmatch(def); m != nil {
		return m[1]
	}
	return def
}

// withoutReferenceIndexes removes the indexes MySQL creates for foreign keys
// under the constraint name. They cannot be dropped while the key exists.
func withoutReferenceIndexes(indexes []*schema.Index, refs []*schema.Reference) []*schema.Index {
	if len(refs) == 0 {
		return indexes
	}
	return slices.DeleteFunc(indexes, func(idx *schema.Index) bool {
		if idx.IsPrimary() || idx.Unique {
			return false
		}
		return slices.ContainsFunc(refs, func(ref *schema.Reference) bool {
			return ref.Name == idx.Name
		})
	})
}

// Options returns the table options reported by the catalog. NULL, empty
// and zero values are omitted.
func (i *Inspector) Options(ctx context.Context, table, schemaName string) (schema.Options, error) {
	rows, err := i.query(ctx, i.dialect.TableOptions(table, schemaName))
	if err != nil {
		return nil, fmt.Errorf("inspect: options of %q: %w", table, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	var opts schema.Options
	for k, v := range rows[0] {
		if v == nil {
			continue
		}
		s := text(v)
		if s == "" || s == "0" {
			continue
		}
		if opts == nil {
			opts = make(schema.Options)
		}
		opts[k] = s
	}
	return opts, nil
}

// Table returns the definition of the table. Snapshots are served from the
// cache, if configured.
func (i *Inspector) Table(ctx context.Context, table, schemaName string) (*schema.TableDefinition, error) {
	key := dbdialect.CacheKey{Dialect: i.dialect.Name(), Schema: schemaName, Table: table, Operation: "table"}
	if def, ok := i.cached(ctx, key); ok {
		return def, nil
	}
	columns, err := i.Columns(ctx, table, schemaName)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrTableNotFound, table)
	}
	def := &schema.TableDefinition{Name: table, Schema: schemaName, Columns: columns}
	if def.Indexes, err = i.Indexes(ctx, table, schemaName); err != nil {
		return nil, err
	}
	if def.References, err = i.References(ctx, table, schemaName); err != nil {
		return nil, err
	}
	if i.dialect.Name() == dialect.MySQL {
		def.Indexes = withoutReferenceIndexes(def.Indexes, def.References)
	}
	if def.Options, err = i.Options(ctx, table, schemaName); err != nil {
		return nil, err
	}
	i.store(ctx, key, def)
	return def, nil
}

// Schema returns the definitions of all base tables in the schema, in the
// order reported by Tables.
func (i *Inspector) Schema(ctx context.Context, schemaName string) ([]*schema.TableDefinition, error) {
	names, err := i.Tables(ctx, schemaName)
	if err != nil {
		return nil, err
	}
	defs := make([]*schema.TableDefinition, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)
	for n, name := range names {
		g.Go(func() error {
			def, err := i.Table(gctx, name, schemaName)
			if err != nil {
				return err
			}
			defs[n] = def
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return defs, nil
}

// Invalidate drops the cached snapshot of the table.
func (i *Inspector) Invalidate(ctx context.Context, table, schemaName string) error {
	if i.cache == nil {
		return nil
	}
	key := dbdialect.CacheKey{Dialect: i.dialect.Name(), Schema: schemaName, Table: table, Operation: "table"}
	return i.cache.Delete(ctx, key.String())
}

// InvalidateSchema drops the cached snapshots of all tables in the schema.
func (i *Inspector) InvalidateSchema(ctx context.Context, schemaName string) error {
	if i.cache == nil {
		return nil
	}
	key := dbdialect.CacheKey{Dialect: i.dialect.Name(), Schema: schemaName}
	return i.cache.DeletePrefix(ctx, key.Prefix())
}

func (i *Inspector) cached(ctx context.Context, key dbdialect.CacheKey) (*schema.TableDefinition, bool) {
	if i.cache == nil {
		return nil, false
	}
	b, err := i.cache.Get(ctx, key.String())
	if err != nil {
		i.log.WarnContext(ctx, "schema cache read failed", "key", key.String(), "error", err)
		return nil, false
	}
	if b == nil {
		i.log.DebugContext(ctx, "schema cache miss", "key", key.String())
		return nil, false
	}
	def := new(schema.TableDefinition)
	if err := msgpack.Unmarshal(b, def); err != nil {
		i.log.WarnContext(ctx, "schema cache entry corrupt", "key", key.String(), "error", err)
		return nil, false
	}
	i.log.DebugContext(ctx, "schema cache hit", "key", key.String())
	return def, true
}

func (i *Inspector) store(ctx context.Context, key dbdialect.CacheKey, def *schema.TableDefinition) {
	if i.cache == nil {
		return
	}
	b, err := msgpack.Marshal(def)
	if err == nil {
		err = i.cache.Set(ctx, key.String(), b, i.ttl)
	}
	if err != nil {
		i.log.WarnContext(ctx, "schema cache write failed", "key", key.String(), "error", err)
	}
}
