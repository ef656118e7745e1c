package sql

import (
	"strings"

	atlas "ariga.io/atlas/sql/schema"

	"github.com/syssam/dbdialect/schema/field"
)

// FieldType maps a column type parsed by one of the atlas drivers, e.g.
// mysql.ParseType, to its field type, size and scale. The size and scale
// are zero for types that carry none. ok is false for atlas types without
// a field counterpart, such as spatial or network types.
func FieldType(t atlas.Type) (typ field.Type, size, scale int, ok bool) {
	switch t := t.(type) {
	case *atlas.IntegerType:
		switch strings.ToLower(t.T) {
		case "bigint", "int8", "int64", "uint64", "unsigned big int":
			return field.TypeBigInt, 0, 0, true
		}
		return field.TypeInteger, 0, 0, true
	case *atlas.BoolType:
		return field.TypeBoolean, 0, 0, true
	case *atlas.DecimalType:
		return field.TypeDecimal, t.Precision, t.Scale, true
	case *atlas.FloatType:
		return field.TypeFloat, 0, 0, true
	case *atlas.StringType:
		switch strings.ToLower(t.T) {
		case "char", "character", "bpchar", "nchar", "native character":
			return field.TypeChar, t.Size, 0, true
		case "varchar", "character varying", "varying character", "nvarchar":
			return field.TypeVarchar, t.Size, 0, true
		}
		return field.TypeText, 0, 0, true
	case *atlas.TimeType:
		switch strings.ToLower(t.T) {
		case "date":
			return field.TypeDate, 0, 0, true
		case "timestamp", "timestamptz", "datetime":
			return field.TypeTimestamp, 0, 0, true
		}
	case *atlas.BinaryType:
		return field.TypeBlob, 0, 0, true
	case *atlas.JSONType:
		return field.TypeJSON, 0, 0, true
	}
	return field.TypeInvalid, 0, 0, false
}
