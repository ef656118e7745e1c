// Package schema provides the backend-neutral description of relational
// tables that dialects translate into SQL.
//
// The model is a set of plain value types owned by the caller:
//
//   - [Column]: a named column with an abstract [field.Type]
//   - [Index]: a named, ordered column list; [PrimaryKey] marks the primary key
//   - [Reference]: a foreign key from local columns to columns of another table
//   - [TableDefinition]: columns, indexes, references and [Options]
//
// # Quick Start
//
//	def := &schema.TableDefinition{
//	    Name: "users",
//	    Columns: []*schema.Column{
//	        {Name: "id", Type: field.TypeInteger, AutoIncrement: true},
//	        {Name: "email", Type: field.TypeVarchar, Size: 255},
//	        {Name: "bio", Type: field.TypeText, Nullable: true},
//	    },
//	    Indexes: []*schema.Index{
//	        schema.Primary("id"),
//	        {Name: "users_email", Columns: []string{"email"}, Unique: true},
//	    },
//	}
//
// Dialects never mutate these values. [ValidateTable] and [ValidateSchema]
// check a definition for structural mistakes before it is rendered.
//
// [field.Type]: github.com/syssam/dbdialect/schema/field.Type
package schema
