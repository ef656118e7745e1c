package field_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/dbdialect"
	"github.com/syssam/dbdialect/schema/field"
)

func TestType_String(t *testing.T) {
	assert.Equal(t, "INTEGER", field.TypeInteger.String())
	assert.Equal(t, "VARCHAR", field.TypeVarchar.String())
	assert.Equal(t, "JSON", field.TypeJSON.String())
	assert.Equal(t, "INVALID", field.TypeInvalid.String())
	assert.Equal(t, "Type(200)", field.Type(200).String())
}

func TestType_Predicates(t *testing.T) {
	assert.False(t, field.TypeInvalid.Valid())
	assert.False(t, field.Type(200).Valid())
	for _, typ := range field.Types() {
		assert.True(t, typ.Valid(), typ.String())
	}
	assert.Len(t, field.Types(), 12)

	assert.True(t, field.TypeVarchar.Sized())
	assert.True(t, field.TypeChar.Sized())
	assert.True(t, field.TypeDecimal.Sized())
	assert.False(t, field.TypeInteger.Sized())
	assert.False(t, field.TypeText.Sized())

	assert.True(t, field.TypeFloat.Numeric())
	assert.True(t, field.TypeBigInt.Numeric())
	assert.False(t, field.TypeDate.Numeric())
}

func TestParseType(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want field.Type
	}{
		{"integer", field.TypeInteger},
		{"INT", field.TypeInteger},
		{"Varchar", field.TypeVarchar},
		{"character  varying", field.TypeVarchar},
		{"datetime", field.TypeTimestamp},
		{"timestamp", field.TypeTimestamp},
		{"numeric", field.TypeDecimal},
		{" text ", field.TypeText},
		{"bool", field.TypeBoolean},
		{"jsonb", field.TypeJSON},
		{"bytea", field.TypeBlob},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := field.ParseType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := field.ParseType("geometry")
	require.Error(t, err)
	assert.True(t, dbdialect.IsUnrecognizedType(err))

	_, err = field.ParseType("invalid")
	assert.Error(t, err)
}

func TestType_Text(t *testing.T) {
	b, err := field.TypeDecimal.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "DECIMAL", string(b))

	var typ field.Type
	require.NoError(t, typ.UnmarshalText([]byte("char")))
	assert.Equal(t, field.TypeChar, typ)

	_, err = field.TypeInvalid.MarshalText()
	assert.Error(t, err)
	assert.Error(t, typ.UnmarshalText([]byte("point")))
}
