package mysql

import (
	"github.com/syssam/dbdialect/dialect/sql"
)

// schemaExpr returns the schema as a string literal. Without a schema name,
// the configured default schema is used, or the current database.
func (d *Dialect) schemaExpr(schemaName string) string {
	if schemaName == "" {
		schemaName = d.cfg.DefaultSchema
	}
	if schemaName == "" {
		return "DATABASE()"
	}
	return sql.QuoteStringEscaped(schemaName)
}

// TableExists implements dialect.Introspector.
func (d *Dialect) TableExists(table, schemaName string) string {
	return "SELECT IF(COUNT(*) > 0, 1, 0) FROM INFORMATION_SCHEMA.TABLES" +
		" WHERE TABLE_SCHEMA = " + d.schemaExpr(schemaName) +
		" AND TABLE_NAME = " + sql.QuoteStringEscaped(table)
}

// ListTables implements dialect.Introspector.
func (d *Dialect) ListTables(schemaName string) string {
	return "SELECT TABLE_NAME AS table_name FROM INFORMATION_SCHEMA.TABLES" +
		" WHERE TABLE_SCHEMA = " + d.schemaExpr(schemaName) +
		" AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME"
}

// DescribeColumns implements dialect.Introspector.
func (d *Dialect) DescribeColumns(table, schemaName string) string {
	return "SELECT COLUMN_NAME AS field, COLUMN_TYPE AS type, IS_NULLABLE AS `null`," +
		" IF(COLUMN_KEY = 'PRI', 'PRI', '') AS `key`, COALESCE(COLUMN_DEFAULT, '') AS `default`," +
		" IF(EXTRA LIKE '%auto_increment%', 'auto_increment', '') AS extra" +
		" FROM INFORMATION_SCHEMA.COLUMNS" +
		" WHERE TABLE_SCHEMA = " + d.schemaExpr(schemaName) +
		" AND TABLE_NAME = " + sql.QuoteStringEscaped(table) +
		" ORDER BY ORDINAL_POSITION"
}

// DescribeIndexes implements dialect.Introspector.
func (d *Dialect) DescribeIndexes(table, schemaName string) string {
	return "SELECT INDEX_NAME AS key_name, COLUMN_NAME AS column_name," +
		" IF(INDEX_NAME = 'PRIMARY', 1, 0) AS is_primary, IF(NON_UNIQUE = 0, 1, 0) AS is_unique" +
		" FROM INFORMATION_SCHEMA.STATISTICS" +
		" WHERE TABLE_SCHEMA = " + d.schemaExpr(schemaName) +
		" AND TABLE_NAME = " + sql.QuoteStringEscaped(table) +
		" ORDER BY INDEX_NAME, SEQ_IN_INDEX"
}

// DescribeReferences implements dialect.Introspector.
func (d *Dialect) DescribeReferences(table, schemaName string) string {
	return "SELECT kcu.CONSTRAINT_NAME AS constraint_name, kcu.TABLE_SCHEMA AS table_schema, kcu.COLUMN_NAME AS column_name," +
		" kcu.REFERENCED_TABLE_SCHEMA AS referenced_table_schema, kcu.REFERENCED_TABLE_NAME AS referenced_table_name," +
		" kcu.REFERENCED_COLUMN_NAME AS referenced_column_name, rc.DELETE_RULE AS on_delete, rc.UPDATE_RULE AS on_update" +
		" FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu" +
		" JOIN INFORMATION_SCHEMA.REFERENTIAL_CONSTRAINTS rc ON rc.CONSTRAINT_SCHEMA = kcu.CONSTRAINT_SCHEMA AND rc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME" +
		" WHERE kcu.REFERENCED_TABLE_NAME IS NOT NULL AND kcu.TABLE_SCHEMA = " + d.schemaExpr(schemaName) +
		" AND kcu.TABLE_NAME = " + sql.QuoteStringEscaped(table) +
		" ORDER BY kcu.CONSTRAINT_NAME, kcu.ORDINAL_POSITION"
}

// TableOptions implements dialect.Introspector.
func (d *Dialect) TableOptions(table, schemaName string) string {
	return "SELECT ENGINE AS engine, AUTO_INCREMENT AS auto_increment, TABLE_COLLATION AS table_collation" +
		" FROM INFORMATION_SCHEMA.TABLES" +
		" WHERE TABLE_SCHEMA = " + d.schemaExpr(schemaName) +
		" AND TABLE_NAME = " + sql.QuoteStringEscaped(table)
}

// ViewExists implements dialect.Introspector.
func (d *Dialect) ViewExists(view, schemaName string) string {
	return "SELECT IF(COUNT(*) > 0, 1, 0) FROM INFORMATION_SCHEMA.VIEWS" +
		" WHERE TABLE_SCHEMA = " + d.schemaExpr(schemaName) +
		" AND TABLE_NAME = " + sql.QuoteStringEscaped(view)
}

// ListViews implements dialect.Introspector.
func (d *Dialect) ListViews(schemaName string) string {
	return "SELECT TABLE_NAME AS view_name FROM INFORMATION_SCHEMA.VIEWS" +
		" WHERE TABLE_SCHEMA = " + d.schemaExpr(schemaName) +
		" ORDER BY TABLE_NAME"
}
