package postgres

import (
	"github.com/syssam/dbdialect/dialect/sql"
)

// schemaLit returns the schema name as a string literal, falling back to
// the configured default schema.
func (d *Dialect) schemaLit(schemaName string) string {
	if schemaName == "" {
		schemaName = d.cfg.DefaultSchema
	}
	return sql.QuoteString(schemaName)
}

// TableExists implements dialect.Introspector.
func (d *Dialect) TableExists(table, schemaName string) string {
	return "SELECT CASE WHEN COUNT(*) > 0 THEN 1 ELSE 0 END FROM information_schema.tables" +
		" WHERE table_schema = " + d.schemaLit(schemaName) +
		" AND table_name = " + sql.QuoteString(table)
}

// ListTables implements dialect.Introspector.
func (d *Dialect) ListTables(schemaName string) string {
	return "SELECT table_name FROM information_schema.tables" +
		" WHERE table_schema = " + d.schemaLit(schemaName) +
		" AND table_type = 'BASE TABLE' ORDER BY table_name"
}

// DescribeColumns implements dialect.Introspector.
func (d *Dialect) DescribeColumns(table, schemaName string) string {
	return "SELECT a.attname AS field," +
		" format_type(a.atttypid, a.atttypmod) AS type," +
		" CASE WHEN a.attnotnull THEN 'NO' ELSE 'YES' END AS null," +
		" CASE WHEN EXISTS (SELECT 1 FROM pg_index i WHERE i.indrelid = c.oid AND i.indisprimary AND a.attnum = ANY(i.indkey)) THEN 'PRI' ELSE '' END AS key," +
		" COALESCE(pg_get_expr(ad.adbin, ad.adrelid), '') AS default," +
		" CASE WHEN a.attidentity <> '' OR COALESCE(pg_get_expr(ad.adbin, ad.adrelid), '') LIKE 'nextval(%' THEN 'auto_increment' ELSE '' END AS extra" +
		" FROM pg_attribute a" +
		" JOIN pg_class c ON c.oid = a.attrelid" +
		" JOIN pg_namespace n ON n.oid = c.relnamespace" +
		" LEFT JOIN pg_attrdef ad ON ad.adrelid = a.attrelid AND ad.adnum = a.attnum" +
		" WHERE n.nspname = " + d.schemaLit(schemaName) +
		" AND c.relname = " + sql.QuoteString(table) +
		" AND a.attnum > 0 AND NOT a.attisdropped" +
		" ORDER BY a.attnum"
}

// DescribeIndexes implements dialect.Introspector.
func (d *Dialect) DescribeIndexes(table, schemaName string) string {
	return "SELECT i.relname AS key_name, a.attname AS column_name," +
		" ix.indisprimary AS is_primary, ix.indisunique AS is_unique" +
		" FROM pg_class t" +
		" JOIN pg_namespace n ON n.oid = t.relnamespace" +
		" JOIN pg_index ix ON ix.indrelid = t.oid" +
		" JOIN pg_class i ON i.oid = ix.indexrelid" +
		" JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)" +
		" WHERE t.relkind = 'r' AND n.nspname = " + d.schemaLit(schemaName) +
		" AND t.relname = " + sql.QuoteString(table) +
		" ORDER BY i.relname, array_position(ix.indkey::int2[], a.attnum)"
}

// DescribeReferences implements dialect.Introspector.
func (d *Dialect) DescribeReferences(table, schemaName string) string {
	return "SELECT tc.constraint_name AS constraint_name, tc.table_schema AS table_schema, kcu.column_name AS column_name," +
		" rcu.table_schema AS referenced_table_schema, rcu.table_name AS referenced_table_name," +
		" rcu.column_name AS referenced_column_name, rc.delete_rule AS on_delete, rc.update_rule AS on_update" +
		" FROM information_schema.table_constraints tc" +
		" JOIN information_schema.referential_constraints rc ON rc.constraint_schema = tc.constraint_schema AND rc.constraint_name = tc.constraint_name" +
		" JOIN information_schema.key_column_usage kcu ON kcu.constraint_schema = tc.constraint_schema AND kcu.constraint_name = tc.constraint_name" +
		" JOIN information_schema.key_column_usage rcu ON rcu.constraint_schema = rc.unique_constraint_schema AND rcu.constraint_name = rc.unique_constraint_name AND rcu.ordinal_position = kcu.position_in_unique_constraint" +
		" WHERE tc.constraint_type = 'FOREIGN KEY' AND tc.table_schema = " + d.schemaLit(schemaName) +
		" AND tc.table_name = " + sql.QuoteString(table) +
		" ORDER BY tc.constraint_name, kcu.ordinal_position"
}

// TableOptions implements dialect.Introspector.
func (d *Dialect) TableOptions(table, schemaName string) string {
	return "SELECT COALESCE(ts.spcname, '') AS tablespace" +
		" FROM pg_class c" +
		" JOIN pg_namespace n ON n.oid = c.relnamespace" +
		" LEFT JOIN pg_tablespace ts ON ts.oid = c.reltablespace" +
		" WHERE n.nspname = " + d.schemaLit(schemaName) +
		" AND c.relname = " + sql.QuoteString(table)
}

// ViewExists implements dialect.Introspector.
func (d *Dialect) ViewExists(view, schemaName string) string {
	return "SELECT CASE WHEN COUNT(*) > 0 THEN 1 ELSE 0 END FROM pg_views" +
		" WHERE viewname = " + sql.QuoteString(view) +
		" AND schemaname = " + d.schemaLit(schemaName)
}

// ListViews implements dialect.Introspector.
func (d *Dialect) ListViews(schemaName string) string {
	return "SELECT viewname AS view_name FROM pg_views" +
		" WHERE schemaname = " + d.schemaLit(schemaName) +
		" ORDER BY viewname"
}
