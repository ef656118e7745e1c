package sql

import (
	"strings"
)

// Quoter applies one identifier quoting policy. Column, index and constraint
// names are always quoted with QuoteFunc; table and schema names only when
// QuoteTables is set.
type Quoter struct {
	QuoteFunc   func(string) string
	QuoteTables bool
}

// Quote quotes a column, index or constraint name.
func (q Quoter) Quote(ident string) string {
	return q.QuoteFunc(ident)
}

// ColumnList quotes every name and joins them with ", ", preserving order.
func (q Quoter) ColumnList(names []string) string {
	if len(names) == 0 {
		return ""
	}
	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(q.QuoteFunc(name))
	}
	return b.String()
}

// Table returns the qualified name of a table: schema.table when schema is
// non-empty, table otherwise.
func (q Quoter) Table(name, schema string) string {
	if q.QuoteTables {
		name = q.QuoteFunc(name)
		if schema != "" {
			schema = q.QuoteFunc(schema)
		}
	}
	if schema == "" {
		return name
	}
	return schema + "." + name
}

// DoubleQuote quotes an identifier with double quotes, doubling embedded ones.
func DoubleQuote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// Backtick quotes an identifier with backticks, doubling embedded ones.
func Backtick(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

// QuoteString returns s as a single-quoted SQL string literal, doubling
// embedded single quotes.
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// QuoteStringEscaped is like QuoteString, but also escapes backslashes, as
// required by MySQL's default SQL mode.
func QuoteStringEscaped(s string) string {
	return "'" + escapeStringValue(s) + "'"
}

// escapeStringValue escapes a string value for safe use in SQL.
// It escapes both single quotes (by doubling) and backslashes (for MySQL compatibility).
func escapeStringValue(s string) string {
	// Fast path: if no escaping needed, return as-is
	if !strings.ContainsAny(s, `'\`) {
		return s
	}
	// Escape backslashes first, then single quotes
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", "''")
	return s
}
