package sqlite

import (
	"slices"
	"strconv"
	"strings"

	atlas "ariga.io/atlas/sql/sqlite"

	"github.com/syssam/dbdialect"
	"github.com/syssam/dbdialect/dialect"
	"github.com/syssam/dbdialect/dialect/sql"
	"github.com/syssam/dbdialect/schema"
	"github.com/syssam/dbdialect/schema/field"
)

// supported lists every type except JSON.
var supported = slices.DeleteFunc(field.Types(), func(t field.Type) bool {
	return t == field.TypeJSON
})

// Supports implements dialect.TypeMapper.
func (*Dialect) Supports(t field.Type) bool {
	return slices.Contains(supported, t)
}

// SupportedTypes implements dialect.TypeMapper.
func (*Dialect) SupportedTypes() []field.Type {
	return slices.Clone(supported)
}

// ColumnSQLType implements dialect.TypeMapper.
func (*Dialect) ColumnSQLType(c *schema.Column) (string, error) {
	switch c.Type {
	case field.TypeInteger:
		return "INTEGER", nil
	case field.TypeDate:
		return "DATE", nil
	case field.TypeVarchar:
		return "VARCHAR(" + strconv.Itoa(c.Size) + ")", nil
	case field.TypeDecimal:
		return "NUMERIC(" + strconv.Itoa(c.Size) + "," + strconv.Itoa(c.Scale) + ")", nil
	case field.TypeTimestamp:
		return "TIMESTAMP", nil
	case field.TypeChar:
		return "CHARACTER(" + strconv.Itoa(c.Size) + ")", nil
	case field.TypeText:
		return "TEXT", nil
	case field.TypeFloat:
		return "FLOAT", nil
	case field.TypeBoolean:
		return "BOOLEAN", nil
	case field.TypeBigInt:
		return "BIGINT", nil
	case field.TypeBlob:
		return "BLOB", nil
	default:
		return "", dbdialect.NewUnrecognizedTypeError(dialect.SQLite, c.Type.String(), c.Name)
	}
}

// ParseType implements dialect.TypeMapper. It accepts the declared type
// reported by pragma_table_info, such as "VARCHAR(70)".
func (d *Dialect) ParseType(native string) (field.Type, int, int, error) {
	at, err := atlas.ParseType(strings.TrimSpace(native))
	if err != nil {
		return field.TypeInvalid, 0, 0, dbdialect.NewUnrecognizedTypeError(dialect.SQLite, native, "")
	}
	t, size, scale, ok := sql.FieldType(at)
	if !ok || !d.Supports(t) {
		return field.TypeInvalid, 0, 0, dbdialect.NewUnrecognizedTypeError(dialect.SQLite, native, "")
	}
	return t, size, scale, nil
}
