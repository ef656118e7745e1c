package sqlite

import (
	"github.com/syssam/dbdialect/dialect/sql"
)

// master returns the catalog table of the given schema.
func (d *Dialect) master(schemaName string) string {
	if schemaName == "" {
		schemaName = d.cfg.DefaultSchema
	}
	if schemaName == "" {
		return "sqlite_master"
	}
	return sql.Backtick(schemaName) + ".sqlite_master"
}

// pragma returns a table-valued pragma call on arg, optionally scoped to a
// schema.
func (d *Dialect) pragma(name, arg, schemaName string) string {
	if schemaName == "" {
		schemaName = d.cfg.DefaultSchema
	}
	if schemaName == "" {
		return "pragma_" + name + "(" + arg + ")"
	}
	return "pragma_" + name + "(" + arg + ", " + sql.QuoteString(schemaName) + ")"
}

// TableExists implements dialect.Introspector.
func (d *Dialect) TableExists(table, schemaName string) string {
	return "SELECT CASE WHEN COUNT(*) > 0 THEN 1 ELSE 0 END FROM " + d.master(schemaName) +
		" WHERE type = 'table' AND name = " + sql.QuoteString(table)
}

// ListTables implements dialect.Introspector. Internal sqlite_ tables are
// excluded.
func (d *Dialect) ListTables(schemaName string) string {
	return "SELECT name AS table_name FROM " + d.master(schemaName) +
		" WHERE type = 'table' AND name NOT LIKE 'sqlite\\_%' ESCAPE '\\' ORDER BY name"
}

// DescribeColumns implements dialect.Introspector.
func (d *Dialect) DescribeColumns(table, schemaName string) string {
	lit := sql.QuoteString(table)
	return "SELECT c.name AS field, c.type AS type," +
		" CASE WHEN c.`notnull` = 1 THEN 'NO' ELSE 'YES' END AS `null`," +
		" CASE WHEN c.pk > 0 THEN 'PRI' ELSE '' END AS `key`," +
		" COALESCE(c.dflt_value, '') AS `default`," +
		" CASE WHEN c.pk > 0 AND upper(c.type) = 'INTEGER' AND" +
		" (SELECT m.sql FROM " + d.master(schemaName) + " AS m WHERE m.type = 'table' AND m.name = " + lit + ") LIKE '%AUTOINCREMENT%'" +
		" THEN 'auto_increment' ELSE '' END AS extra" +
		" FROM " + d.pragma("table_info", lit, schemaName) + " AS c" +
		" ORDER BY c.cid"
}

// DescribeIndexes implements dialect.Introspector. The primary key is
// reported as the PRIMARY index.
func (d *Dialect) DescribeIndexes(table, schemaName string) string {
	lit := sql.QuoteString(table)
	return "SELECT key_name, column_name, is_primary, is_unique FROM (" +
		"SELECT il.name AS key_name, ii.name AS column_name, 0 AS is_primary, il.`unique` AS is_unique, ii.seqno AS seq" +
		" FROM " + d.pragma("index_list", lit, schemaName) + " AS il, " + d.pragma("index_info", "il.name", schemaName) + " AS ii" +
		" WHERE il.origin <> 'pk'" +
		" UNION ALL" +
		" SELECT 'PRIMARY', c.name, 1, 1, c.pk FROM " + d.pragma("table_info", lit, schemaName) + " AS c WHERE c.pk > 0" +
		") ORDER BY key_name, seq"
}

// DescribeReferences implements dialect.Introspector. SQLite does not keep
// foreign key names, so constraints are named fk_<id>.
func (d *Dialect) DescribeReferences(table, schemaName string) string {
	lit := sql.QuoteString(schemaName)
	return "SELECT 'fk_' || fk.id AS constraint_name, " + lit + " AS table_schema, fk.`from` AS column_name," +
		" " + lit + " AS referenced_table_schema, fk.`table` AS referenced_table_name," +
		" COALESCE(fk.`to`, '') AS referenced_column_name, fk.on_delete AS on_delete, fk.on_update AS on_update" +
		" FROM " + d.pragma("foreign_key_list", sql.QuoteString(table), schemaName) + " AS fk" +
		" ORDER BY fk.id, fk.seq"
}

// TableOptions implements dialect.Introspector.
func (d *Dialect) TableOptions(table, schemaName string) string {
	if schemaName == "" {
		schemaName = d.cfg.DefaultSchema
	}
	if schemaName == "" {
		schemaName = "main"
	}
	return "SELECT t.wr AS without_rowid, t.`strict` AS `strict` FROM pragma_table_list AS t" +
		" WHERE t.schema = " + sql.QuoteString(schemaName) +
		" AND t.name = " + sql.QuoteString(table)
}

// ViewExists implements dialect.Introspector.
func (d *Dialect) ViewExists(view, schemaName string) string {
	return "SELECT CASE WHEN COUNT(*) > 0 THEN 1 ELSE 0 END FROM " + d.master(schemaName) +
		" WHERE type = 'view' AND name = " + sql.QuoteString(view)
}

// ListViews implements dialect.Introspector.
func (d *Dialect) ListViews(schemaName string) string {
	return "SELECT name AS view_name FROM " + d.master(schemaName) +
		" WHERE type = 'view' ORDER BY name"
}
