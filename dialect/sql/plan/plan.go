// Package plan computes the changes between two sets of table definitions
// and renders them through a dialect.
//
//	p := plan.Diff(current, desired, plan.AllowDropColumn())
//	if err := p.Err(); err != nil {
//		return err
//	}
//	stmts, err := p.Statements(d)
package plan

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/syssam/dbdialect"
	"github.com/syssam/dbdialect/dialect"
	"github.com/syssam/dbdialect/dialect/sql"
	"github.com/syssam/dbdialect/schema"
)

// ErrBreakingChange is returned by Plan.Err when the plan contains a
// breaking change that was not allowed.
var ErrBreakingChange = errors.New("plan: breaking change not allowed")

// Option configures Diff.
type Option func(*config)

type config struct {
	allowDropColumn    bool
	allowDropTable     bool
	allowDropIndex     bool
	allowNullToNotNull bool
}

// AllowDropColumn allows dropping columns without error.
func AllowDropColumn() Option {
	return func(c *config) {
		c.allowDropColumn = true
	}
}

// AllowDropTable allows dropping tables without error.
func AllowDropTable() Option {
	return func(c *config) {
		c.allowDropTable = true
	}
}

// AllowDropIndex allows dropping indexes without error.
func AllowDropIndex() Option {
	return func(c *config) {
		c.allowDropIndex = true
	}
}

// AllowNullToNotNull allows changing nullable columns to not null.
func AllowNullToNotNull() Option {
	return func(c *config) {
		c.allowNullToNotNull = true
	}
}

// Plan is an ordered list of changes together with the validation of the
// breaking ones.
type Plan struct {
	Changes    []*Change
	Validation *schema.ValidationResult
}

// Empty reports if the plan has no changes.
func (p *Plan) Empty() bool { return len(p.Changes) == 0 }

// Err returns an error wrapping ErrBreakingChange if validation failed.
func (p *Plan) Err() error {
	if p.Validation == nil || !p.Validation.HasErrors() {
		return nil
	}
	return fmt.Errorf("%w:\n%s", ErrBreakingChange, p.Validation)
}

// Statements renders the changes with the dialect, in order. Every change
// the dialect fails to render is reported in a dbdialect.AggregateError.
func (p *Plan) Statements(d dialect.DDL) ([]string, error) {
	stmts := make([]string, 0, len(p.Changes))
	var errs []error
	for _, c := range p.Changes {
		stmt, err := c.SQL(d)
		if err != nil {
			errs = append(errs, fmt.Errorf("plan: %s: %w", c, err))
			continue
		}
		stmts = append(stmts, stmt)
	}
	if err := dbdialect.NewAggregateError(errs...); err != nil {
		return nil, err
	}
	return stmts, nil
}

// Apply validates the plan and executes its statements on the driver in a
// single transaction.
func (p *Plan) Apply(ctx context.Context, drv *sql.Driver) error {
	if err := p.Err(); err != nil {
		return err
	}
	stmts, err := p.Statements(drv.Dialect())
	if err != nil {
		return err
	}
	return drv.Apply(ctx, stmts)
}

// Diff returns the plan turning current into desired. Tables are matched by
// name. Columns, indexes and references are matched by name within a table
// and replaced when they differ.
func Diff(current, desired []*schema.TableDefinition, opts ...Option) *Plan {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	d := &differ{cfg: cfg, result: &schema.ValidationResult{}}
	currentMap := make(map[string]*schema.TableDefinition, len(current))
	for _, t := range current {
		currentMap[t.Name] = t
	}
	desiredMap := make(map[string]*schema.TableDefinition, len(desired))
	for _, t := range desired {
		desiredMap[t.Name] = t
	}
	for _, t := range current {
		if _, ok := desiredMap[t.Name]; !ok {
			d.dropTable(t)
		}
	}
	var created []*schema.TableDefinition
	for _, t := range desired {
		if cur, ok := currentMap[t.Name]; ok {
			d.table(cur, t)
		} else {
			created = append(created, t)
		}
	}
	for _, t := range createOrder(created) {
		d.add(&Change{Kind: CreateTable, Table: t.Name, Schema: t.Schema, Definition: t})
	}
	// Stable sort keeps the diff order within a kind.
	slices.SortStableFunc(d.changes, func(a, b *Change) int {
		return cmp.Compare(a.Kind, b.Kind)
	})
	return &Plan{Changes: d.changes, Validation: d.result}
}

type differ struct {
	cfg     *config
	changes []*Change
	result  *schema.ValidationResult
}

func (d *differ) add(c *Change) {
	d.changes = append(d.changes, c)
}

// gate records a breaking change as an error, or as a warning if allowed.
func (d *differ) gate(allowed bool, e *schema.ValidationError) {
	e.Breaking = true
	if allowed {
		d.result.Warnings = append(d.result.Warnings, e)
	} else {
		d.result.Errors = append(d.result.Errors, e)
	}
}

func (d *differ) warn(table, column, msg string) {
	d.result.Warnings = append(d.result.Warnings, &schema.ValidationError{Table: table, Column: column, Message: msg})
}

func (d *differ) dropTable(t *schema.TableDefinition) {
	d.gate(d.cfg.allowDropTable, &schema.ValidationError{Table: t.Name, Message: "table will be dropped"})
	// Foreign keys go first, so tables referencing each other can be dropped.
	for _, ref := range t.References {
		d.add(&Change{Kind: DropForeignKey, Table: t.Name, Schema: t.Schema, Reference: ref})
	}
	d.add(&Change{Kind: DropTable, Table: t.Name, Schema: t.Schema, Definition: t})
}

func (d *differ) table(current, desired *schema.TableDefinition) {
	d.columns(current, desired)
	d.indexes(current, desired)
	d.references(current, desired)
}

func (d *differ) columns(current, desired *schema.TableDefinition) {
	for _, c := range current.Columns {
		if _, ok := desired.Column(c.Name); ok {
			continue
		}
		d.gate(d.cfg.allowDropColumn, &schema.ValidationError{Table: current.Name, Column: c.Name, Message: "column will be dropped"})
		d.add(&Change{Kind: DropColumn, Table: desired.Name, Schema: desired.Schema, Column: c})
	}
	for _, c := range desired.Columns {
		cur, ok := current.Column(c.Name)
		if !ok {
			if !c.Nullable && c.Default == "" && !c.AutoIncrement {
				d.warn(desired.Name, c.Name, "new NOT NULL column without default value may fail if table has data")
			}
			d.add(&Change{Kind: AddColumn, Table: desired.Name, Schema: desired.Schema, Column: c})
			continue
		}
		if cur.Equal(c) {
			continue
		}
		if cur.Type != c.Type {
			d.warn(desired.Name, c.Name, fmt.Sprintf("column type changing from %s to %s", cur.Type, c.Type))
		}
		if cur.Size > 0 && c.Size > 0 && c.Size < cur.Size {
			d.warn(desired.Name, c.Name, fmt.Sprintf("column size reducing from %d to %d may truncate data", cur.Size, c.Size))
		}
		if cur.Nullable && !c.Nullable {
			d.gate(d.cfg.allowNullToNotNull, &schema.ValidationError{
				Table:   desired.Name,
				Column:  c.Name,
				Message: "column changing from NULL to NOT NULL may fail if column has NULL values",
			})
		}
		d.add(&Change{Kind: ModifyColumn, Table: desired.Name, Schema: desired.Schema, Column: c, Prev: cur})
	}
}

func (d *differ) indexes(current, desired *schema.TableDefinition) {
	for _, idx := range current.Indexes {
		next, ok := desired.Index(idx.Name)
		switch {
		case ok && idx.Equal(next):
			continue
		case idx.IsPrimary():
			d.add(&Change{Kind: DropPrimaryKey, Table: desired.Name, Schema: desired.Schema, Index: idx})
		default:
			if !ok {
				d.gate(d.cfg.allowDropIndex, &schema.ValidationError{
					Table:   desired.Name,
					Message: fmt.Sprintf("index %q will be dropped", idx.Name),
				})
			}
			d.add(&Change{Kind: DropIndex, Table: desired.Name, Schema: desired.Schema, Index: idx})
		}
	}
	for _, idx := range desired.Indexes {
		if prev, ok := current.Index(idx.Name); ok && prev.Equal(idx) {
			continue
		}
		kind := AddIndex
		if idx.IsPrimary() {
			kind = AddPrimaryKey
		} else if idx.Unique {
			d.warn(desired.Name, "", fmt.Sprintf("adding unique index %q may fail if duplicate values exist", idx.Name))
		}
		d.add(&Change{Kind: kind, Table: desired.Name, Schema: desired.Schema, Index: idx})
	}
}

func (d *differ) references(current, desired *schema.TableDefinition) {
	for _, ref := range current.References {
		if next, ok := desired.Reference(ref.Name); ok && ref.Equal(next) {
			continue
		}
		d.add(&Change{Kind: DropForeignKey, Table: desired.Name, Schema: desired.Schema, Reference: ref})
	}
	for _, ref := range desired.References {
		if prev, ok := current.Reference(ref.Name); ok && prev.Equal(ref) {
			continue
		}
		d.add(&Change{Kind: AddForeignKey, Table: desired.Name, Schema: desired.Schema, Reference: ref})
	}
}

// createOrder sorts new tables so referenced tables are created first.
// Tables in a reference cycle keep their input order.
func createOrder(tables []*schema.TableDefinition) []*schema.TableDefinition {
	pending := make(map[string]bool, len(tables))
	for _, t := range tables {
		pending[t.Name] = true
	}
	ordered := make([]*schema.TableDefinition, 0, len(tables))
	for len(ordered) < len(tables) {
		progress := false
		for _, t := range tables {
			if !pending[t.Name] || !ready(t, pending) {
				continue
			}
			pending[t.Name] = false
			ordered = append(ordered, t)
			progress = true
		}
		if !progress {
			for _, t := range tables {
				if pending[t.Name] {
					pending[t.Name] = false
					ordered = append(ordered, t)
				}
			}
		}
	}
	return ordered
}

// ready reports if no table referenced by t is still pending.
func ready(t *schema.TableDefinition, pending map[string]bool) bool {
	for _, ref := range t.References {
		if ref.ReferencedTable != t.Name && pending[ref.ReferencedTable] {
			return false
		}
	}
	return true
}
