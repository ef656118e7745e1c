// dialectgen turns YAML schema files into DDL for PostgreSQL, MySQL or
// SQLite. The current state is read from a previous schema (-from) or from a
// live database (-inspect); without either, the whole schema is created.
//
//	dialectgen -dialect mysql -schema ./schema -inspect "root:pass@tcp(localhost:3306)/app"
//	dialectgen -dialect postgres -schema ./schema -out ./migrations -format golang-migrate -name add_users
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/syssam/dbdialect/dialect"
	"github.com/syssam/dbdialect/dialect/backend"
	"github.com/syssam/dbdialect/dialect/sql"
	"github.com/syssam/dbdialect/dialect/sql/inspect"
	"github.com/syssam/dbdialect/dialect/sql/plan"
	"github.com/syssam/dbdialect/schema"
	"github.com/syssam/dbdialect/schema/load"
)

// versionFormat is the layout of generated migration versions.
const versionFormat = "20060102150405"

// debounce delays regeneration until a burst of file events settles.
var debounce = 100 * time.Millisecond

var allowOptions = map[string]func() plan.Option{
	"drop-column":      plan.AllowDropColumn,
	"drop-table":       plan.AllowDropTable,
	"drop-index":       plan.AllowDropIndex,
	"null-to-not-null": plan.AllowNullToNotNull,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "dialectgen:", err)
		}
		os.Exit(1)
	}
}

type generator struct {
	dialect  dialect.Dialect
	schema   string
	from     string
	dsn      string
	dbSchema string
	out      string
	format   string
	name     string
	version  string
	allow    []plan.Option
	stdout   io.Writer
	log      *slog.Logger
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("dialectgen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		name        = fs.String("dialect", dialect.Postgres, "target dialect: "+strings.Join(dialect.Names(), ", "))
		schemaPath  = fs.String("schema", "", "schema file or directory of the desired state (required)")
		from        = fs.String("from", "", "schema file or directory of the current state")
		dsn         = fs.String("inspect", "", "data source name of a database holding the current state")
		dbSchema    = fs.String("db-schema", "", "database schema to inspect (default: the connection's schema)")
		out         = fs.String("out", "", "migration directory to write to (default: print statements)")
		migName     = fs.String("name", "schema", "migration name")
		version     = fs.String("version", "", "migration version (default: current UTC time as "+versionFormat+")")
		format      = fs.String("format", plan.FormatAtlas, "migration directory format: "+strings.Join(plan.Formats(), ", "))
		allow       = fs.String("allow", "", "comma-separated breaking changes to allow: drop-column, drop-table, drop-index, null-to-not-null")
		quoteTables = fs.Bool("quote-tables", false, "quote table and schema names")
		watchMode   = fs.Bool("watch", false, "regenerate when schema files change")
		verbose     = fs.Bool("v", false, "log debug output")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if *schemaPath == "" {
		return errors.New("missing -schema")
	}
	if *from != "" && *dsn != "" {
		return errors.New("-from and -inspect are mutually exclusive")
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	var opts []dialect.Option
	if *quoteTables {
		opts = append(opts, dialect.WithQuotedTables())
	}
	d, err := backend.New(*name, opts...)
	if err != nil {
		return err
	}
	g := &generator{
		dialect:  d,
		schema:   *schemaPath,
		from:     *from,
		dsn:      *dsn,
		dbSchema: *dbSchema,
		out:      *out,
		format:   *format,
		name:     *migName,
		version:  *version,
		stdout:   stdout,
		log:      log.With("dialect", d.Name()),
	}
	if *allow != "" {
		for _, a := range strings.Split(*allow, ",") {
			opt, ok := allowOptions[strings.TrimSpace(a)]
			if !ok {
				return fmt.Errorf("unknown -allow value %q", a)
			}
			g.allow = append(g.allow, opt())
		}
	}
	if *watchMode {
		return g.watch(ctx)
	}
	return g.generate(ctx)
}

// generate diffs the desired schema against the current state and writes
// or prints the resulting changes.
func (g *generator) generate(ctx context.Context) error {
	desired, err := load.Path(g.schema)
	if err != nil {
		return err
	}
	result := schema.ValidateSchema(desired)
	g.report(result)
	if result.HasErrors() {
		return fmt.Errorf("invalid schema %s:\n%s", g.schema, result)
	}
	current, err := g.current(ctx)
	if err != nil {
		return err
	}
	p := plan.Diff(current, desired, g.allow...)
	g.report(p.Validation)
	if err := p.Err(); err != nil {
		return err
	}
	if p.Empty() {
		g.log.Info("schema is up to date")
		return nil
	}
	if g.out == "" {
		stmts, err := p.Statements(g.dialect)
		if err != nil {
			return err
		}
		for _, stmt := range stmts {
			fmt.Fprintf(g.stdout, "%s;\n", stmt)
		}
		return nil
	}
	dir, f, err := plan.OpenDir(g.format, g.out)
	if err != nil {
		return err
	}
	version := g.version
	if version == "" {
		version = time.Now().UTC().Format(versionFormat)
	}
	if err := plan.Write(dir, f, g.dialect, p, g.name, version); err != nil {
		return err
	}
	g.log.Info("migration written", "dir", g.out, "format", g.format, "version", version, "changes", len(p.Changes))
	return nil
}

// current returns the tables of the current state.
func (g *generator) current(ctx context.Context) ([]*schema.TableDefinition, error) {
	switch {
	case g.from != "":
		return load.Path(g.from)
	case g.dsn != "":
		return g.inspect(ctx)
	default:
		return nil, nil
	}
}

func (g *generator) inspect(ctx context.Context) ([]*schema.TableDefinition, error) {
	if g.dialect.Name() == dialect.MySQL {
		cfg, err := mysql.ParseDSN(g.dsn)
		if err != nil {
			return nil, fmt.Errorf("invalid mysql data source name: %w", err)
		}
		g.log.Debug("inspecting database", "addr", cfg.Addr, "database", cfg.DBName)
	}
	drv, err := sql.Open(g.dialect, g.dsn, sql.WithLogger(g.log))
	if err != nil {
		return nil, err
	}
	defer drv.Close()
	tables, err := inspect.New(g.dialect, drv, inspect.WithLogger(g.log)).Schema(ctx, g.dbSchema)
	if err != nil {
		return nil, err
	}
	g.log.Debug("database inspected", "tables", len(tables), "stats", drv.Stats().String())
	return tables, nil
}

func (g *generator) report(r *schema.ValidationResult) {
	for _, w := range r.Warnings {
		g.log.Warn(w.Error())
	}
}

// watch generates once and again on every change of the schema files until
// the context is canceled. Generation errors are logged.
func (g *generator) watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()
	info, err := os.Stat(g.schema)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	dir, match := g.schema, func(name string) bool {
		return slices.Contains(load.Extensions, filepath.Ext(name))
	}
	// Editors replace files on save, so the parent directory is watched.
	if !info.IsDir() {
		dir = filepath.Dir(g.schema)
		match = func(name string) bool {
			return filepath.Clean(name) == filepath.Clean(g.schema)
		}
	}
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	g.log.Info("watching schema", "path", g.schema)
	g.regenerate(ctx)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 || !match(ev.Name) {
				continue
			}
			g.log.Debug("schema changed", "file", ev.Name, "op", ev.Op.String())
			timer.Reset(debounce)
		case <-timer.C:
			g.regenerate(ctx)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			g.log.Error("watch failed", "error", err)
		}
	}
}

func (g *generator) regenerate(ctx context.Context) {
	if err := g.generate(ctx); err != nil {
		g.log.Error("generate failed", "error", err)
	}
}
