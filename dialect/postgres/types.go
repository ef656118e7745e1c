package postgres

import (
	"slices"
	"strconv"
	"strings"

	atlas "ariga.io/atlas/sql/postgres"

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

// ColumnSQLType implements dialect.TypeMapper.
func (*Dialect) ColumnSQLType(c *schema.Column) (string, error) {
	switch c.Type {
	case field.TypeInteger:
		return "INT", nil
	case field.TypeDate:
		return "DATE", nil
	case field.TypeVarchar:
		return "CHARACTER VARYING(" + strconv.Itoa(c.Size) + ")", nil
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
		return "BYTEA", nil
	case field.TypeJSON:
		return "JSONB", nil
	default:
		return "", dbdialect.NewUnrecognizedTypeError(dialect.Postgres, c.Type.String(), c.Name)
	}
}

// ParseType implements dialect.TypeMapper. It accepts the output of
// format_type, such as "character varying(255)" or "numeric(10,2)".
// Serial types map to their integer counterparts.
func (*Dialect) ParseType(native string) (field.Type, int, int, error) {
	at, err := atlas.ParseType(strings.ToLower(strings.TrimSpace(native)))
	if err != nil {
		return field.TypeInvalid, 0, 0, dbdialect.NewUnrecognizedTypeError(dialect.Postgres, native, "")
	}
	if st, ok := at.(*atlas.SerialType); ok {
		switch st.T {
		case atlas.TypeBigSerial, atlas.TypeSerial8:
			return field.TypeBigInt, 0, 0, nil
		default:
			return field.TypeInteger, 0, 0, nil
		}
	}
	t, size, scale, ok := sql.FieldType(at)
	if !ok {
		return field.TypeInvalid, 0, 0, dbdialect.NewUnrecognizedTypeError(dialect.Postgres, native, "")
	}
	return t, size, scale, nil
}
