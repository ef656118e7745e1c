package inspect

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/syssam/dbdialect/dialect/sql"
)

// row holds the values of one result row keyed by lower-case column label.
type row map[string]any

// str returns the value of the column as text, or "" if it is NULL or
// absent.
func (r row) str(label string) string {
	return text(r[label])
}

// query runs the query and reads all rows.
func (i *Inspector) query(ctx context.Context, query string) (_ []row, rerr error) {
	rows, err := i.querier.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil && rerr == nil {
			rerr = err
		}
	}()
	return scanRows(rows)
}

func scanRows(rows *sql.Rows) ([]row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	for n := range columns {
		columns[n] = strings.ToLower(columns[n])
	}
	var result []row
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for n := range values {
			dest[n] = &values[n]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		r := make(row, len(columns))
		for n, c := range columns {
			r[c] = values[n]
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// text converts a driver value to its textual form.
func text(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return ""
	}
}

// truthy reports if a catalog flag is set. Integer flags, PostgreSQL
// booleans and their text forms are accepted.
func truthy(v any) bool {
	switch v := v.(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	default:
		switch strings.ToLower(text(v)) {
		case "1", "t", "true", "yes", "y":
			return true
		}
		return false
	}
}
