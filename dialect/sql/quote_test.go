package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoter(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		q      Quoter
		table  string
		schema string
		want   string
	}{
		{"verbatim", Quoter{QuoteFunc: DoubleQuote}, "users", "", "users"},
		{"verbatim schema", Quoter{QuoteFunc: DoubleQuote}, "users", "public", "public.users"},
		{"quoted", Quoter{QuoteFunc: DoubleQuote, QuoteTables: true}, "users", "", `"users"`},
		{"quoted schema", Quoter{QuoteFunc: Backtick, QuoteTables: true}, "users", "app", "`app`.`users`"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.q.Table(tt.table, tt.schema))
		})
	}
}

func TestQuoter_ColumnList(t *testing.T) {
	q := Quoter{QuoteFunc: DoubleQuote}
	assert.Equal(t, "", q.ColumnList(nil))
	assert.Equal(t, `"a"`, q.ColumnList([]string{"a"}))
	assert.Equal(t, `"b", "a", "c"`, q.ColumnList([]string{"b", "a", "c"}))

	q = Quoter{QuoteFunc: Backtick}
	assert.Equal(t, "`id`, `name`", q.ColumnList([]string{"id", "name"}))
	assert.Equal(t, "`x`", q.Quote("x"))
}

func TestQuoteFuncs(t *testing.T) {
	assert.Equal(t, `"we""ird"`, DoubleQuote(`we"ird`))
	assert.Equal(t, "`we``ird`", Backtick("we`ird"))
	assert.Equal(t, "'it''s'", QuoteString("it's"))
	assert.Equal(t, `'a\b'`, QuoteString(`a\b`))
	assert.Equal(t, `'a\\b''c'`, QuoteStringEscaped(`a\b'c`))
}

func TestEscapeStringValue(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no_escaping_needed", "hello", "hello"},
		{"single_quote", "it's", "it''s"},
		{"multiple_quotes", "he said 'hello'", "he said ''hello''"},
		{"backslash", `path\to\file`, `path\\to\\file`},
		{"both_quote_and_backslash", `it's a \test`, `it''s a \\test`},
		{"empty_string", "", ""},
		{"sql_injection_attempt", "'; DROP TABLE users; --", "''; DROP TABLE users; --"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, escapeStringValue(tt.input))
		})
	}
}
