package plan

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/sqltool"

	"github.com/syssam/dbdialect"
	"github.com/syssam/dbdialect/dialect"
)

// Migration directory formats.
const (
	FormatAtlas         = "atlas"
	FormatGolangMigrate = "golang-migrate"
	FormatGoose         = "goose"
	FormatDBMate        = "dbmate"
	FormatFlyway        = "flyway"
	FormatLiquibase     = "liquibase"
)

var formats = map[string]struct {
	formatter migrate.Formatter
	dir       func(string) (migrate.Dir, error)
}{
	FormatAtlas: {migrate.DefaultFormatter, func(path string) (migrate.Dir, error) {
		return migrate.NewLocalDir(path)
	}},
	FormatGolangMigrate: {sqltool.GolangMigrateFormatter, func(path string) (migrate.Dir, error) {
		return sqltool.NewGolangMigrateDir(path)
	}},
	FormatGoose: {sqltool.GooseFormatter, func(path string) (migrate.Dir, error) {
		return sqltool.NewGooseDir(path)
	}},
	FormatDBMate: {sqltool.DBMateFormatter, func(path string) (migrate.Dir, error) {
		return sqltool.NewDBMateDir(path)
	}},
	FormatFlyway: {sqltool.FlywayFormatter, func(path string) (migrate.Dir, error) {
		return sqltool.NewFlywayDir(path)
	}},
	FormatLiquibase: {sqltool.LiquibaseFormatter, func(path string) (migrate.Dir, error) {
		return sqltool.NewLiquibaseDir(path)
	}},
}

// Formats returns the names of the supported migration directory formats.
func Formats() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenDir opens the migration directory at path in the given format and
// returns it together with the matching formatter. A missing directory is
// created.
func OpenDir(format, path string) (migrate.Dir, migrate.Formatter, error) {
	f, ok := formats[format]
	if !ok {
		return nil, nil, fmt.Errorf("plan: unknown migration format %q, want one of %s", format, strings.Join(Formats(), ", "))
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, nil, fmt.Errorf("plan: create %s directory: %w", format, err)
	}
	dir, err := f.dir(path)
	if err != nil {
		return nil, nil, fmt.Errorf("plan: open %s directory: %w", format, err)
	}
	return dir, f.formatter, nil
}

// Migration converts the plan into an atlas migration plan. Every change
// carries its reverse statement.
func (p *Plan) Migration(d dialect.DDL, name, version string) (*migrate.Plan, error) {
	m := &migrate.Plan{
		Version:    version,
		Name:       name,
		Reversible: true,
		Changes:    make([]*migrate.Change, 0, len(p.Changes)),
	}
	var errs []error
	for _, c := range p.Changes {
		cmd, err := c.SQL(d)
		if err != nil {
			errs = append(errs, fmt.Errorf("plan: %s: %w", c, err))
			continue
		}
		rev, err := c.Reverse().SQL(d)
		if err != nil {
			errs = append(errs, fmt.Errorf("plan: reverse %s: %w", c, err))
			continue
		}
		m.Changes = append(m.Changes, &migrate.Change{Cmd: cmd, Reverse: rev, Comment: c.String()})
	}
	if err := dbdialect.NewAggregateError(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

// Write formats the plan as a migration, writes its files to dir and
// updates the directory checksum file. A nil formatter uses the atlas
// format.
func Write(dir migrate.Dir, f migrate.Formatter, d dialect.DDL, p *Plan, name, version string) error {
	if f == nil {
		f = migrate.DefaultFormatter
	}
	m, err := p.Migration(d, name, version)
	if err != nil {
		return err
	}
	files, err := f.Format(m)
	if err != nil {
		return fmt.Errorf("plan: format migration: %w", err)
	}
	for _, file := range files {
		if err := dir.WriteFile(file.Name(), file.Bytes()); err != nil {
			return fmt.Errorf("plan: write %s: %w", file.Name(), err)
		}
	}
	sum, err := dir.Checksum()
	if err != nil {
		return fmt.Errorf("plan: checksum: %w", err)
	}
	if err := migrate.WriteSumFile(dir, sum); err != nil {
		return fmt.Errorf("plan: write sum file: %w", err)
	}
	return nil
}
