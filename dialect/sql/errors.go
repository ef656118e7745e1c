package sql

import (
	"errors"
	"slices"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// PostgreSQL SQLSTATE codes for constraint violations (Class 23).
const (
	pgNotNullViolation    = "23502"
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

// MySQL error numbers for constraint violations.
const (
	mysqlBadNull                = 1048 // Column cannot be null
	mysqlDuplicateEntry         = 1062
	mysqlInvalidUseOfNull       = 1138 // MODIFY ... NOT NULL over NULL values
	mysqlForeignKeyParent       = 1451 // Cannot delete or update a parent row
	mysqlForeignKeyChild        = 1452 // Cannot add or update a child row
	mysqlCheckConstraintViolate = 3819
)

type violation struct {
	pg    string
	mysql []uint16
	// text matches drivers without typed errors, SQLite among them.
	text []string
}

var (
	uniqueViolation = violation{
		pg:    pgUniqueViolation,
		mysql: []uint16{mysqlDuplicateEntry},
		text:  []string{"violates unique constraint", "UNIQUE constraint failed", "Error 1062"},
	}
	foreignKeyViolation = violation{
		pg:    pgForeignKeyViolation,
		mysql: []uint16{mysqlForeignKeyParent, mysqlForeignKeyChild},
		text:  []string{"violates foreign key constraint", "FOREIGN KEY constraint failed", "Error 1451", "Error 1452"},
	}
	notNullViolation = violation{
		pg:    pgNotNullViolation,
		mysql: []uint16{mysqlBadNull, mysqlInvalidUseOfNull},
		text:  []string{"violates not-null constraint", "NOT NULL constraint failed", "Error 1048", "Error 1138"},
	}
	checkViolation = violation{
		pg:    pgCheckViolation,
		mysql: []uint16{mysqlCheckConstraintViolate},
		text:  []string{"violates check constraint", "CHECK constraint failed", "Error 3819"},
	}
)

func (v violation) match(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == v.pg
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return slices.Contains(v.mysql, myErr.Number)
	}
	msg := err.Error()
	for _, s := range v.text {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// IsConstraintError reports if the error resulted from a database constraint
// violation. Schema changes raise them when existing rows conflict with the
// change:
//
//	if err := p.Apply(ctx, drv); sql.IsUniqueConstraintError(err) {
//		// deduplicate rows first
//	}
func IsConstraintError(err error) bool {
	return IsUniqueConstraintError(err) ||
		IsForeignKeyConstraintError(err) ||
		IsNotNullConstraintError(err) ||
		IsCheckConstraintError(err)
}

// IsUniqueConstraintError reports if the error resulted from a uniqueness
// constraint violation, e.g. a unique index over duplicate values.
func IsUniqueConstraintError(err error) bool { return uniqueViolation.match(err) }

// IsForeignKeyConstraintError reports if the error resulted from a
// foreign-key constraint violation, e.g. a reference to a missing row.
func IsForeignKeyConstraintError(err error) bool { return foreignKeyViolation.match(err) }

// IsNotNullConstraintError reports if the error resulted from a NOT NULL
// constraint violation, e.g. a column made NOT NULL over NULL values.
func IsNotNullConstraintError(err error) bool { return notNullViolation.match(err) }

// IsCheckConstraintError reports if the error resulted from a check constraint violation.
func IsCheckConstraintError(err error) bool { return checkViolation.match(err) }
