package sql

import (
	"math"
	"strconv"
	"strings"

	"github.com/syssam/dbdialect"
	"github.com/syssam/dbdialect/schema"
	"github.com/syssam/dbdialect/schema/field"
)

// Backend supplies the dialect-specific parts of DDL generation.
type Backend interface {
	// Name returns the dialect name.
	Name() string
	// ColumnSQLType returns the native type of the column.
	ColumnSQLType(c *schema.Column) (string, error)
	// AutoIncrementSuffix returns the clause appended to an auto-increment
	// column line in CREATE TABLE, including its leading space.
	AutoIncrementSuffix(c *schema.Column) string
	// TableOptionsClause renders the options fragment appended to
	// CREATE TABLE, or "" if none of the options apply.
	TableOptionsClause(opts schema.Options) string
}

// Builder implements the statement templates shared by all dialects on top
// of a Quoter and a Backend.
type Builder struct {
	Quoter
	backend Backend
	// inlinePK is set when the auto-increment suffix already declares the
	// primary key, so a PRIMARY index over that column alone is not repeated.
	inlinePK bool
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// InlinePrimaryKey marks the backend's auto-increment suffix as declaring
// the primary key.
func InlinePrimaryKey() BuilderOption {
	return func(b *Builder) {
		b.inlinePK = true
	}
}

// NewBuilder returns a Builder for the given quoting policy and backend.
func NewBuilder(q Quoter, backend Backend, opts ...BuilderOption) *Builder {
	b := &Builder{Quoter: q, backend: backend}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func invalid(op, arg, reason string) error {
	return dbdialect.NewInvalidArgumentError(op, arg, reason)
}

// ColumnDefinition returns the native type of the column. NOT NULL, DEFAULT
// and auto-increment clauses are appended by the statements using it.
func (b *Builder) ColumnDefinition(c *schema.Column) (string, error) {
	if c == nil {
		return "", invalid("columnDefinition", "column", "nil column")
	}
	return b.backend.ColumnSQLType(c)
}

// columnSpec renders "<name> <type>[ NOT NULL][ DEFAULT <expr>]".
func (b *Builder) columnSpec(op string, c *schema.Column) (string, error) {
	if c == nil {
		return "", invalid(op, "column", "nil column")
	}
	if c.Name == "" {
		return "", invalid(op, "column", "empty name")
	}
	typ, err := b.backend.ColumnSQLType(c)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(b.Quote(c.Name))
	sb.WriteByte(' ')
	sb.WriteString(typ)
	if !c.Nullable {
		sb.WriteString(" NOT NULL")
	}
	if c.Default != "" {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(c.Default)
	}
	return sb.String(), nil
}

func (b *Builder) alterTable(table, schemaName string) string {
	return "ALTER TABLE " + b.Table(table, schemaName)
}

// AddColumn returns ALTER TABLE <table> ADD <column>.
func (b *Builder) AddColumn(table, schemaName string, c *schema.Column) (string, error) {
	if table == "" {
		return "", invalid("addColumn", "table", "empty name")
	}
	spec, err := b.columnSpec("addColumn", c)
	if err != nil {
		return "", err
	}
	return b.alterTable(table, schemaName) + " ADD " + spec, nil
}

// ModifyColumn returns ALTER TABLE <table> MODIFY <column>.
func (b *Builder) ModifyColumn(table, schemaName string, c *schema.Column) (string, error) {
	if table == "" {
		return "", invalid("modifyColumn", "table", "empty name")
	}
	spec, err := b.columnSpec("modifyColumn", c)
	if err != nil {
		return "", err
	}
	return b.alterTable(table, schemaName) + " MODIFY " + spec, nil
}

// DropColumn returns ALTER TABLE <table> DROP COLUMN <column>.
func (b *Builder) DropColumn(table, schemaName, column string) string {
	return b.alterTable(table, schemaName) + " DROP COLUMN " + b.Quote(column)
}

func checkIndex(op string, idx *schema.Index, named bool) error {
	switch {
	case idx == nil:
		return invalid(op, "index", "nil index")
	case named && idx.Name == "":
		return invalid(op, "index", "empty name")
	case len(idx.Columns) == 0:
		return invalid(op, "index", "no columns")
	}
	return nil
}

// AddIndex returns ALTER TABLE <table> ADD [UNIQUE ]INDEX <name> (<columns>).
func (b *Builder) AddIndex(table, schemaName string, idx *schema.Index) (string, error) {
	if table == "" {
		return "", invalid("addIndex", "table", "empty name")
	}
	if err := checkIndex("addIndex", idx, true); err != nil {
		return "", err
	}
	kind := " ADD INDEX "
	if idx.Unique {
		kind = " ADD UNIQUE INDEX "
	}
	return b.alterTable(table, schemaName) + kind + b.Quote(idx.Name) + " (" + b.ColumnList(idx.Columns) + ")", nil
}

// DropIndex returns ALTER TABLE <table> DROP INDEX <name>.
func (b *Builder) DropIndex(table, schemaName, index string) string {
	return b.alterTable(table, schemaName) + " DROP INDEX " + b.Quote(index)
}

// AddPrimaryKey returns ALTER TABLE <table> ADD PRIMARY KEY (<columns>).
// The index name is ignored.
func (b *Builder) AddPrimaryKey(table, schemaName string, idx *schema.Index) (string, error) {
	if table == "" {
		return "", invalid("addPrimaryKey", "table", "empty name")
	}
	if err := checkIndex("addPrimaryKey", idx, false); err != nil {
		return "", err
	}
	return b.alterTable(table, schemaName) + " ADD PRIMARY KEY (" + b.ColumnList(idx.Columns) + ")", nil
}

// DropPrimaryKey returns ALTER TABLE <table> DROP PRIMARY KEY.
func (b *Builder) DropPrimaryKey(table, schemaName string) string {
	return b.alterTable(table, schemaName) + " DROP PRIMARY KEY"
}

func checkReference(op string, ref *schema.Reference) error {
	switch {
	case ref == nil:
		return invalid(op, "reference", "nil reference")
	case ref.Name == "":
		return invalid(op, "reference", "empty name")
	case ref.ReferencedTable == "":
		return invalid(op, "reference", "empty referenced table")
	case len(ref.Columns) == 0:
		return invalid(op, "reference", "no columns")
	case len(ref.Columns) != len(ref.ReferencedColumns):
		return invalid(op, "reference", "columns and referenced columns differ in length")
	}
	return nil
}

// references renders "REFERENCES <table>(<columns>)[ ON DELETE x][ ON UPDATE y]".
func (b *Builder) references(ref *schema.Reference) string {
	var sb strings.Builder
	sb.WriteString("REFERENCES ")
	sb.WriteString(b.Table(ref.ReferencedTable, ref.ReferencedSchema))
	sb.WriteByte('(')
	sb.WriteString(b.ColumnList(ref.ReferencedColumns))
	sb.WriteByte(')')
	if ref.OnDelete != "" {
		sb.WriteString(" ON DELETE ")
		sb.WriteString(string(ref.OnDelete))
	}
	if ref.OnUpdate != "" {
		sb.WriteString(" ON UPDATE ")
		sb.WriteString(string(ref.OnUpdate))
	}
	return sb.String()
}

// AddForeignKey returns
// ALTER TABLE <table> ADD FOREIGN KEY <name>(<columns>) REFERENCES <ref>(<columns>).
func (b *Builder) AddForeignKey(table, schemaName string, ref *schema.Reference) (string, error) {
	if table == "" {
		return "", invalid("addForeignKey", "table", "empty name")
	}
	if err := checkReference("addForeignKey", ref); err != nil {
		return "", err
	}
	return b.alterTable(table, schemaName) + " ADD FOREIGN KEY " + b.Quote(ref.Name) +
		"(" + b.ColumnList(ref.Columns) + ") " + b.references(ref), nil
}

// DropForeignKey returns ALTER TABLE <table> DROP FOREIGN KEY <name>.
func (b *Builder) DropForeignKey(table, schemaName, reference string) string {
	return b.alterTable(table, schemaName) + " DROP FOREIGN KEY " + b.Quote(reference)
}

// CreateTable returns the CREATE TABLE statement of def. An empty table or
// schema argument falls back to def.Name and def.Schema.
func (b *Builder) CreateTable(table, schemaName string, def *schema.TableDefinition) (string, error) {
	const op = "createTable"
	if def == nil {
		return "", invalid(op, "definition", "nil definition")
	}
	if table == "" {
		table = def.Name
	}
	if schemaName == "" {
		schemaName = def.Schema
	}
	if table == "" {
		return "", invalid(op, "table", "empty name")
	}
	if len(def.Columns) == 0 {
		return "", invalid(op, "definition", "no columns")
	}
	lines := make([]string, 0, len(def.Columns)+len(def.Indexes)+len(def.References))
	var inlined string
	for _, c := range def.Columns {
		line, err := b.columnSpec(op, c)
		if err != nil {
			return "", err
		}
		if c.AutoIncrement {
			if b.inlinePK {
				if err := checkInlined(op, c, inlined, def.Indexes); err != nil {
					return "", err
				}
				inlined = c.Name
			}
			line += b.backend.AutoIncrementSuffix(c)
		}
		lines = append(lines, line)
	}
	for _, idx := range def.Indexes {
		if err := checkIndex(op, idx, true); err != nil {
			return "", err
		}
		switch {
		case idx.IsPrimary() && inlined != "" && len(idx.Columns) == 1 && idx.Columns[0] == inlined:
			// Declared inline by the auto-increment column.
		case idx.IsPrimary():
			lines = append(lines, "PRIMARY KEY ("+b.ColumnList(idx.Columns)+")")
		case idx.Unique:
			lines = append(lines, "UNIQUE KEY "+b.Quote(idx.Name)+" ("+b.ColumnList(idx.Columns)+")")
		default:
			lines = append(lines, "KEY "+b.Quote(idx.Name)+" ("+b.ColumnList(idx.Columns)+")")
		}
	}
	for _, ref := range def.References {
		if err := checkReference(op, ref); err != nil {
			return "", err
		}
		lines = append(lines, "CONSTRAINT "+b.Quote(ref.Name)+" FOREIGN KEY ("+b.ColumnList(ref.Columns)+") "+b.references(ref))
	}
	var sb strings.Builder
	if def.Options.Bool(schema.OptionTemporary, false) {
		sb.WriteString("CREATE TEMPORARY TABLE ")
	} else {
		sb.WriteString("CREATE TABLE ")
	}
	sb.WriteString(b.Table(table, schemaName))
	sb.WriteString(" (\n\t")
	sb.WriteString(strings.Join(lines, ",\n\t"))
	sb.WriteString("\n)")
	if len(def.Options) > 0 {
		if clause := b.backend.TableOptionsClause(def.Options); clause != "" {
			sb.WriteByte(' ')
			sb.WriteString(clause)
		}
	}
	return sb.String(), nil
}

// checkInlined reports if c can declare the primary key inline: it must be
// the only auto-increment column, of type INTEGER, and the PRIMARY index, if
// any, must cover c alone.
func checkInlined(op string, c *schema.Column, inlined string, indexes []*schema.Index) error {
	if inlined != "" {
		return invalid(op, "column", "auto-increment columns "+strconv.Quote(inlined)+" and "+strconv.Quote(c.Name)+" both declare the primary key")
	}
	if c.Type != field.TypeInteger {
		return invalid(op, "column", "auto-increment column "+strconv.Quote(c.Name)+" must be of type INTEGER, not "+c.Type.String())
	}
	for _, idx := range indexes {
		if idx != nil && idx.IsPrimary() && (len(idx.Columns) != 1 || idx.Columns[0] != c.Name) {
			return invalid(op, "column", "auto-increment column "+strconv.Quote(c.Name)+" must be the only primary key column")
		}
	}
	return nil
}

// DropTable returns DROP TABLE [IF EXISTS ]<table>.
func (b *Builder) DropTable(table, schemaName string, ifExists bool) string {
	if ifExists {
		return "DROP TABLE IF EXISTS " + b.Table(table, schemaName)
	}
	return "DROP TABLE " + b.Table(table, schemaName)
}

// CreateView returns CREATE VIEW <view> AS <select>.
func (b *Builder) CreateView(view, schemaName, selectSQL string) (string, error) {
	if view == "" {
		return "", invalid("createView", "view", "empty name")
	}
	if strings.TrimSpace(selectSQL) == "" {
		return "", invalid("createView", "definition", "empty select")
	}
	return "CREATE VIEW " + b.Table(view, schemaName) + " AS " + selectSQL, nil
}

// DropView returns DROP VIEW [IF EXISTS ]<view>.
func (b *Builder) DropView(view, schemaName string, ifExists bool) string {
	if ifExists {
		return "DROP VIEW IF EXISTS " + b.Table(view, schemaName)
	}
	return "DROP VIEW " + b.Table(view, schemaName)
}

// Limit appends " LIMIT <n>" to query when number is numeric and not
// negative. Fractional numbers are truncated. Any other value leaves the
// query unchanged.
func (b *Builder) Limit(query string, number any) string {
	return Limit(query, number)
}

// Limit is the function form of Builder.Limit.
func Limit(query string, number any) string {
	n, ok := limitValue(number)
	if !ok {
		return query
	}
	return query + " LIMIT " + strconv.FormatInt(n, 10)
}

func limitValue(v any) (int64, bool) {
	var n int64
	switch v := v.(type) {
	case int:
		n = int64(v)
	case int8:
		n = int64(v)
	case int16:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, false
		}
		n = int64(v)
	case uint8:
		n = int64(v)
	case uint16:
		n = int64(v)
	case uint32:
		n = int64(v)
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		n = int64(v)
	case float32:
		return floatLimit(float64(v))
	case float64:
		return floatLimit(v)
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			n = i
			break
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return floatLimit(f)
	default:
		return 0, false
	}
	return n, n >= 0
}

func floatLimit(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
