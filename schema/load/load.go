// Package load reads table definitions from YAML schema files.
//
//	tables:
//	  - name: users
//	    columns:
//	      - {name: id, type: integer, auto_increment: true}
//	      - {name: email, type: varchar, size: 255}
//	    primary_key: id
//	    indexes:
//	      - {columns: email, unique: true}
//	  - name: posts
//	    columns:
//	      - {name: id, type: integer, auto_increment: true}
//	      - {name: user_id, type: integer}
//	    primary_key: id
//	    references:
//	      - {columns: user_id, table: users, on_delete: cascade}
//
// Indexes without a name are named <table>_<columns>. References without a
// name are named <table>_<singular referenced table>_fk, and reference the
// "id" column when no referenced columns are given.
package load

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-openapi/inflect"
	"gopkg.in/yaml.v3"

	"github.com/syssam/dbdialect/schema"
	"github.com/syssam/dbdialect/schema/field"
)

// Extensions are the file extensions read by Dir.
var Extensions = []string{".yaml", ".yml"}

type (
	file struct {
		Tables []table `yaml:"tables"`
	}

	table struct {
		Name       string         `yaml:"name"`
		Schema     string         `yaml:"schema"`
		Columns    []column       `yaml:"columns"`
		PrimaryKey list           `yaml:"primary_key"`
		Indexes    []index        `yaml:"indexes"`
		References []reference    `yaml:"references"`
		Options    schema.Options `yaml:"options"`
	}

	column struct {
		Name          string     `yaml:"name"`
		Type          field.Type `yaml:"type"`
		Size          int        `yaml:"size"`
		Scale         int        `yaml:"scale"`
		Nullable      bool       `yaml:"nullable"`
		AutoIncrement bool       `yaml:"auto_increment"`
		Default       string     `yaml:"default"`
	}

	index struct {
		Name    string `yaml:"name"`
		Columns list   `yaml:"columns"`
		Unique  bool   `yaml:"unique"`
	}

	reference struct {
		Name              string `yaml:"name"`
		Columns           list   `yaml:"columns"`
		Schema            string `yaml:"schema"`
		Table             string `yaml:"table"`
		ReferencedColumns list   `yaml:"referenced_columns"`
		OnDelete          string `yaml:"on_delete"`
		OnUpdate          string `yaml:"on_update"`
	}
)

// list is a YAML value that can be either a string or a list of strings.
type list []string

// UnmarshalYAML implements yaml.Unmarshaler for list.
func (l *list) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*l = []string{node.Value}
		return nil
	case yaml.SequenceNode:
		var v []string
		if err := node.Decode(&v); err != nil {
			return err
		}
		*l = v
		return nil
	default:
		return fmt.Errorf("line %d: expected string or list of strings", node.Line)
	}
}

// Read decodes the table definitions of a single YAML document. Unknown keys
// are rejected.
func Read(r io.Reader) ([]*schema.TableDefinition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f file
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("load: decode: %w", err)
	}
	tables := make([]*schema.TableDefinition, 0, len(f.Tables))
	for i := range f.Tables {
		t, err := f.Tables[i].definition()
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// File reads the table definitions of the file at path.
func File(path string) ([]*schema.TableDefinition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	defer f.Close()
	tables, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tables, nil
}

// Dir reads the table definitions of all schema files in the directory, in
// file name order. Table names must be unique across files.
func Dir(path string) ([]*schema.TableDefinition, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	var (
		tables []*schema.TableDefinition
		seen   = make(map[string]string)
	)
	for _, e := range entries {
		if e.IsDir() || !slices.Contains(Extensions, filepath.Ext(e.Name())) {
			continue
		}
		name := filepath.Join(path, e.Name())
		ts, err := File(name)
		if err != nil {
			return nil, err
		}
		for _, t := range ts {
			key := t.Schema + "." + t.Name
			if prev, ok := seen[key]; ok {
				return nil, fmt.Errorf("load: table %q defined in %s and %s", t.Name, prev, name)
			}
			seen[key] = name
		}
		tables = append(tables, ts...)
	}
	return tables, nil
}

// Path reads a schema file, or all schema files of a directory.
func Path(path string) ([]*schema.TableDefinition, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	if info.IsDir() {
		return Dir(path)
	}
	return File(path)
}

func (t *table) definition() (*schema.TableDefinition, error) {
	if t.Name == "" {
		return nil, errors.New("load: table without name")
	}
	def := &schema.TableDefinition{
		Name:    t.Name,
		Schema:  t.Schema,
		Options: t.Options,
	}
	for i, c := range t.Columns {
		if c.Type == field.TypeInvalid {
			return nil, fmt.Errorf("load: table %q: column %d (%q) has no type", t.Name, i, c.Name)
		}
		def.Columns = append(def.Columns, &schema.Column{
			Name:          c.Name,
			Type:          c.Type,
			Size:          c.Size,
			Scale:         c.Scale,
			Nullable:      c.Nullable,
			AutoIncrement: c.AutoIncrement,
			Default:       c.Default,
		})
	}
	if len(t.PrimaryKey) > 0 {
		def.Indexes = append(def.Indexes, schema.Primary(t.PrimaryKey...))
	}
	for _, idx := range t.Indexes {
		name := idx.Name
		if name == "" {
			name = t.Name + "_" + strings.Join(idx.Columns, "_")
		}
		def.Indexes = append(def.Indexes, &schema.Index{Name: name, Columns: idx.Columns, Unique: idx.Unique})
	}
	for _, ref := range t.References {
		r, err := ref.reference(t.Name)
		if err != nil {
			return nil, fmt.Errorf("load: table %q: %w", t.Name, err)
		}
		def.References = append(def.References, r)
	}
	return def, nil
}

func (r *reference) reference(table string) (*schema.Reference, error) {
	if r.Table == "" {
		return nil, errors.New("reference without table")
	}
	onDelete, err := schema.ParseReferenceAction(r.OnDelete)
	if err != nil {
		return nil, err
	}
	onUpdate, err := schema.ParseReferenceAction(r.OnUpdate)
	if err != nil {
		return nil, err
	}
	ref := &schema.Reference{
		Name:              r.Name,
		Columns:           r.Columns,
		ReferencedSchema:  r.Schema,
		ReferencedTable:   r.Table,
		ReferencedColumns: r.ReferencedColumns,
		OnDelete:          onDelete,
		OnUpdate:          onUpdate,
	}
	if ref.Name == "" {
		ref.Name = table + "_" + inflect.Singularize(r.Table) + "_fk"
	}
	if len(ref.ReferencedColumns) == 0 {
		ref.ReferencedColumns = []string{"id"}
	}
	return ref, nil
}
