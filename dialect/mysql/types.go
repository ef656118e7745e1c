package mysql

import (
	"slices"
	"strconv"
	"strings"

	atlas "ariga.io/atlas/sql/mysql"

	"github.com/syssam/dbdialect"
	"github.com/syssam/dbdialect/dialect"
	"github.com/syssam/dbdialect/dialect/sql"
	"github.com/syssam/dbdialect/schema"
	"github.com/syssam/dbdialect/schema/field"
)

var supported = field.Types()

// Supports implements dialect.TypeMapper.
func (*Dialect) Supports(t field.Type) bool {
	return slices.Contains(supported, t)
}

// SupportedTypes implements dialect.TypeMapper.
func (*Dialect) SupportedTypes() []field.Type {
	return slices.Clone(supported)
}

// ColumnSQLType implements dialect.TypeMapper. The size of an INTEGER
// column is rendered as its display width.
func (*Dialect) ColumnSQLType(c *schema.Column) (string, error) {
	switch c.Type {
	case field.TypeInteger:
		if c.Size > 0 {
			return "INT(" + strconv.Itoa(c.Size) + ")", nil
		}
		return "INT", nil
	case field.TypeDate:
		return "DATE", nil
	case field.TypeVarchar:
		return "VARCHAR(" + strconv.Itoa(c.Size) + ")", nil
	case field.TypeDecimal:
		return "DECIMAL(" + strconv.Itoa(c.Size) + "," + strconv.Itoa(c.Scale) + ")", nil
	case field.TypeTimestamp:
		return "TIMESTAMP", nil
	case field.TypeChar:
		return "CHAR(" + strconv.Itoa(c.Size) + ")", nil
	case field.TypeText:
		return "TEXT", nil
	case field.TypeFloat:
		return "FLOAT", nil
	case field.TypeBoolean:
		return "TINYINT(1)", nil
	case field.TypeBigInt:
		return "BIGINT", nil
	case field.TypeBlob:
		return "BLOB", nil
	case field.TypeJSON:
		return "JSON", nil
	default:
		return "", dbdialect.NewUnrecognizedTypeError(dialect.MySQL, c.Type.String(), c.Name)
	}
}

// ParseType implements dialect.TypeMapper. It accepts the Type column of
// DESCRIBE, such as "varchar(255)" or "int(10) unsigned". TINYINT(1) maps
// to BOOLEAN.
func (*Dialect) ParseType(native string) (field.Type, int, int, error) {
	at, err := atlas.ParseType(strings.ToLower(strings.TrimSpace(native)))
	if err != nil {
		return field.TypeInvalid, 0, 0, dbdialect.NewUnrecognizedTypeError(dialect.MySQL, native, "")
	}
	t, size, scale, ok := sql.FieldType(at)
	if !ok {
		return field.TypeInvalid, 0, 0, dbdialect.NewUnrecognizedTypeError(dialect.MySQL, native, "")
	}
	return t, size, scale, nil
}
