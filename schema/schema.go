package schema

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/syssam/dbdialect/schema/field"
)

// PrimaryKey is the reserved index name that denotes a table's primary key.
const PrimaryKey = "PRIMARY"

// Column describes a single table column.
type Column struct {
	Name string
	Type field.Type
	// Size is the length of VARCHAR/CHAR columns, the precision of DECIMAL
	// columns and an optional display width of INTEGER columns.
	Size int
	// Scale is the number of fractional digits of DECIMAL columns.
	Scale         int
	Nullable      bool
	AutoIncrement bool
	// Default is a raw SQL expression emitted after DEFAULT. Empty means no default.
	Default string
}

// Equal reports if both columns render the same definition.
func (c *Column) Equal(o *Column) bool {
	if c == nil || o == nil {
		return c == o
	}
	return *c == *o
}

// String returns a short human-readable description of the column.
func (c *Column) String() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte(' ')
	b.WriteString(c.Type.String())
	switch {
	case c.Type == field.TypeDecimal:
		fmt.Fprintf(&b, "(%d,%d)", c.Size, c.Scale)
	case c.Size > 0:
		fmt.Fprintf(&b, "(%d)", c.Size)
	}
	if !c.Nullable {
		b.WriteString(" NOT NULL")
	}
	return b.String()
}

// Index is a named, ordered list of columns.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// Primary returns the primary key index over the given columns.
func Primary(columns ...string) *Index {
	return &Index{Name: PrimaryKey, Columns: columns}
}

// IsPrimary reports if the index denotes the primary key.
func (i *Index) IsPrimary() bool { return i.Name == PrimaryKey }

// Equal reports if both indexes cover the same columns with the same uniqueness.
func (i *Index) Equal(o *Index) bool {
	if i == nil || o == nil {
		return i == o
	}
	return i.Name == o.Name && i.Unique == o.Unique && slices.Equal(i.Columns, o.Columns)
}

// ReferenceAction is the referential action of a foreign key.
type ReferenceAction string

// Referential actions.
const (
	Cascade    ReferenceAction = "CASCADE"
	SetNull    ReferenceAction = "SET NULL"
	Restrict   ReferenceAction = "RESTRICT"
	SetDefault ReferenceAction = "SET DEFAULT"
	NoAction   ReferenceAction = "NO ACTION"
)

// ParseReferenceAction parses a referential action case-insensitively.
// The empty string parses to the empty action.
func ParseReferenceAction(s string) (ReferenceAction, error) {
	a := ReferenceAction(strings.ToUpper(strings.Join(strings.Fields(s), " ")))
	switch a {
	case "", Cascade, SetNull, Restrict, SetDefault, NoAction:
		return a, nil
	default:
		return "", fmt.Errorf("schema: unknown reference action %q", s)
	}
}

// Reference is a foreign key from Columns to ReferencedColumns of
// ReferencedTable. Both column lists have equal length.
type Reference struct {
	Name              string
	Columns           []string
	ReferencedSchema  string
	ReferencedTable   string
	ReferencedColumns []string
	OnDelete          ReferenceAction
	OnUpdate          ReferenceAction
}

// Equal reports if both references describe the same constraint.
func (r *Reference) Equal(o *Reference) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.Name == o.Name &&
		r.ReferencedSchema == o.ReferencedSchema &&
		r.ReferencedTable == o.ReferencedTable &&
		normAction(r.OnDelete) == normAction(o.OnDelete) &&
		normAction(r.OnUpdate) == normAction(o.OnUpdate) &&
		slices.Equal(r.Columns, o.Columns) &&
		slices.Equal(r.ReferencedColumns, o.ReferencedColumns)
}

// normAction treats NO ACTION as the absence of an action, since catalogs
// report it for constraints declared without one.
func normAction(a ReferenceAction) ReferenceAction {
	if a == NoAction {
		return ""
	}
	return a
}

// TableDefinition describes a table to create.
type TableDefinition struct {
	Name       string
	Schema     string
	Columns    []*Column
	Indexes    []*Index
	References []*Reference
	Options    Options
}

// Column returns the column with the given name.
func (t *TableDefinition) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Index returns the index with the given name.
func (t *TableDefinition) Index(name string) (*Index, bool) {
	for _, idx := range t.Indexes {
		if idx.Name == name {
			return idx, true
		}
	}
	return nil, false
}

// Reference returns the reference with the given name.
func (t *TableDefinition) Reference(name string) (*Reference, bool) {
	for _, r := range t.References {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// PrimaryKey returns the primary key index, if defined.
func (t *TableDefinition) PrimaryKey() (*Index, bool) {
	return t.Index(PrimaryKey)
}

// Options holds dialect-specific table options keyed by lower-case names,
// such as "temporary", "engine" or "table_collation".
type Options map[string]any

// Known option keys.
const (
	OptionTemporary      = "temporary"
	OptionEngine         = "engine"
	OptionAutoIncrement  = "auto_increment"
	OptionTableCollation = "table_collation"
	OptionTablespace     = "tablespace"
	OptionWithoutRowID   = "without_rowid"
	OptionStrict         = "strict"
)

// Bool returns the boolean value of key, or def if absent or not a boolean.
// The strings "true", "1", "yes" and "on" count as true.
func (o Options) Bool(key string, def bool) bool {
	switch v := o[key].(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(v) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	case int:
		return v != 0
	}
	return def
}

// String returns the string value of key, or def if absent or empty.
func (o Options) String(key, def string) string {
	switch v := o[key].(type) {
	case string:
		if v != "" {
			return v
		}
	case fmt.Stringer:
		return v.String()
	case int, int64, uint64, float64:
		return fmt.Sprint(v)
	}
	return def
}

// Int returns the integer value of key, or def if absent or not an integer.
func (o Options) Int(key string, def int) int {
	switch v := o[key].(type) {
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint8:
		return int(v)
	case uint16:
		return int(v)
	case uint32:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}
