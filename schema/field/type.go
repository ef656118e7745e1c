// Package field defines the closed set of abstract column types understood
// by every dialect.
//
// A dialect maps each Type to its native SQL spelling:
//
//	field.TypeVarchar  // postgres: CHARACTER VARYING(n), mysql: VARCHAR(n)
//	field.TypeDecimal  // postgres: NUMERIC(p,s), mysql: DECIMAL(p,s)
//
// Types are parsed from their upper-case names, with a few common aliases:
//
//	t, err := field.ParseType("character varying") // field.TypeVarchar
package field

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/dbdialect"
)

// A Type represents an abstract column type.
type Type uint8

// List of abstract column types.
const (
	TypeInvalid Type = iota
	TypeInteger
	TypeDate
	TypeVarchar
	TypeDecimal
	TypeTimestamp
	TypeChar
	TypeText
	TypeFloat
	TypeBoolean
	TypeBigInt
	TypeBlob
	TypeJSON
	endTypes
)

var typeNames = [...]string{
	TypeInvalid:   "INVALID",
	TypeInteger:   "INTEGER",
	TypeDate:      "DATE",
	TypeVarchar:   "VARCHAR",
	TypeDecimal:   "DECIMAL",
	TypeTimestamp: "TIMESTAMP",
	TypeChar:      "CHAR",
	TypeText:      "TEXT",
	TypeFloat:     "FLOAT",
	TypeBoolean:   "BOOLEAN",
	TypeBigInt:    "BIGINT",
	TypeBlob:      "BLOB",
	TypeJSON:      "JSON",
}

// aliases accepted by ParseType in addition to the canonical names.
var aliases = map[string]Type{
	"INT":               TypeInteger,
	"DATETIME":          TypeTimestamp,
	"CHARACTER VARYING": TypeVarchar,
	"CHARACTER":         TypeChar,
	"NUMERIC":           TypeDecimal,
	"BOOL":              TypeBoolean,
	"BYTEA":             TypeBlob,
	"JSONB":             TypeJSON,
}

var upper = cases.Upper(language.Und)

// String returns the canonical upper-case name of the type.
func (t Type) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", t)
}

// Valid reports if the type is a known, non-invalid type.
func (t Type) Valid() bool {
	return t > TypeInvalid && t < endTypes
}

// Sized reports if the native spelling of the type carries a size.
func (t Type) Sized() bool {
	return t == TypeVarchar || t == TypeChar || t == TypeDecimal
}

// Numeric reports if the type is a numeric type.
func (t Type) Numeric() bool {
	switch t {
	case TypeInteger, TypeBigInt, TypeDecimal, TypeFloat:
		return true
	default:
		return false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("field: %w: %s", dbdialect.ErrUnrecognizedType, t)
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	v, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Types returns all valid types in declaration order.
func Types() []Type {
	types := make([]Type, 0, endTypes-1)
	for t := TypeInvalid + 1; t < endTypes; t++ {
		types = append(types, t)
	}
	return types
}

// ParseType parses a type name case-insensitively. Canonical names and the
// common aliases INT, DATETIME, CHARACTER VARYING, CHARACTER, NUMERIC, BOOL,
// BYTEA and JSONB are accepted.
func ParseType(s string) (Type, error) {
	name := upper.String(strings.Join(strings.Fields(s), " "))
	for t := TypeInvalid + 1; t < endTypes; t++ {
		if typeNames[t] == name {
			return t, nil
		}
	}
	if t, ok := aliases[name]; ok {
		return t, nil
	}
	return TypeInvalid, fmt.Errorf("field: %w: %q", dbdialect.ErrUnrecognizedType, s)
}
