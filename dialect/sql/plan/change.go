package plan

import (
	"fmt"

	"github.com/syssam/dbdialect/dialect"
	"github.com/syssam/dbdialect/schema"
)

// Kind is the kind of a schema change.
type Kind uint8

// Change kinds, in the order they are applied.
const (
	DropForeignKey Kind = iota + 1
	DropIndex
	DropPrimaryKey
	DropColumn
	DropTable
	CreateTable
	AddColumn
	ModifyColumn
	AddPrimaryKey
	AddIndex
	AddForeignKey
)

var kindNames = [...]string{
	DropForeignKey: "drop foreign key",
	DropIndex:      "drop index",
	DropPrimaryKey: "drop primary key",
	DropColumn:     "drop column",
	DropTable:      "drop table",
	CreateTable:    "create table",
	AddColumn:      "add column",
	ModifyColumn:   "modify column",
	AddPrimaryKey:  "add primary key",
	AddIndex:       "add index",
	AddForeignKey:  "add foreign key",
}

// String returns the kind in lower-case words, such as "add column".
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Change is a single schema change on one table. Drop changes hold the
// dropped entity, so they can be reversed.
type Change struct {
	Kind   Kind
	Table  string
	Schema string

	Column     *schema.Column
	Index      *schema.Index
	Reference  *schema.Reference
	Definition *schema.TableDefinition

	// Prev is the column replaced by a ModifyColumn change.
	Prev *schema.Column
}

// String describes the change, e.g. `add column "age" of table "users"`.
func (c *Change) String() string {
	switch c.Kind {
	case CreateTable, DropTable, DropPrimaryKey, AddPrimaryKey:
		return fmt.Sprintf("%s %q", c.Kind, c.Table)
	case AddColumn, ModifyColumn, DropColumn:
		return fmt.Sprintf("%s %q of table %q", c.Kind, c.Column.Name, c.Table)
	case AddIndex, DropIndex:
		return fmt.Sprintf("%s %q of table %q", c.Kind, c.Index.Name, c.Table)
	case AddForeignKey, DropForeignKey:
		return fmt.Sprintf("%s %q of table %q", c.Kind, c.Reference.Name, c.Table)
	default:
		return c.Kind.String()
	}
}

// SQL renders the change with the dialect.
func (c *Change) SQL(d dialect.DDL) (string, error) {
	switch c.Kind {
	case CreateTable:
		return d.CreateTable(c.Table, c.Schema, c.Definition)
	case DropTable:
		return d.DropTable(c.Table, c.Schema, false), nil
	case AddColumn:
		return d.AddColumn(c.Table, c.Schema, c.Column)
	case ModifyColumn:
		return d.ModifyColumn(c.Table, c.Schema, c.Column)
	case DropColumn:
		return d.DropColumn(c.Table, c.Schema, c.Column.Name), nil
	case AddIndex:
		return d.AddIndex(c.Table, c.Schema, c.Index)
	case DropIndex:
		return d.DropIndex(c.Table, c.Schema, c.Index.Name), nil
	case AddPrimaryKey:
		return d.AddPrimaryKey(c.Table, c.Schema, c.Index)
	case DropPrimaryKey:
		return d.DropPrimaryKey(c.Table, c.Schema), nil
	case AddForeignKey:
		return d.AddForeignKey(c.Table, c.Schema, c.Reference)
	case DropForeignKey:
		return d.DropForeignKey(c.Table, c.Schema, c.Reference.Name), nil
	default:
		return "", fmt.Errorf("plan: unknown change kind %d", c.Kind)
	}
}

// Reverse returns the change undoing c. The reverse of DropTable recreates
// the table without its references: Diff drops them in DropForeignKey
// changes, whose reverses add them back.
func (c *Change) Reverse() *Change {
	r := *c
	switch c.Kind {
	case CreateTable:
		r.Kind = DropTable
	case DropTable:
		r.Kind = CreateTable
		if c.Definition != nil && len(c.Definition.References) > 0 {
			def := *c.Definition
			def.References = nil
			r.Definition = &def
		}
	case AddColumn:
		r.Kind = DropColumn
	case DropColumn:
		r.Kind = AddColumn
	case ModifyColumn:
		r.Column, r.Prev = c.Prev, c.Column
	case AddIndex:
		r.Kind = DropIndex
	case DropIndex:
		r.Kind = AddIndex
	case AddPrimaryKey:
		r.Kind = DropPrimaryKey
	case DropPrimaryKey:
		r.Kind = AddPrimaryKey
	case AddForeignKey:
		r.Kind = DropForeignKey
	case DropForeignKey:
		r.Kind = AddForeignKey
	}
	return &r
}
