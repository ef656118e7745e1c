package load_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/dbdialect"
	"github.com/syssam/dbdialect/schema"
	"github.com/syssam/dbdialect/schema/field"
	"github.com/syssam/dbdialect/schema/load"
)

const blog = `
tables:
  - name: users
    columns:
      - {name: id, type: integer, auto_increment: true}
      - {name: email, type: VARCHAR, size: 255}
      - {name: balance, type: numeric, size: 10, scale: 2, default: "0"}
      - {name: bio, type: text, nullable: true}
    primary_key: id
    indexes:
      - {columns: email, unique: true}
    options:
      engine: InnoDB
      auto_increment: 100
  - name: posts
    schema: blog
    columns:
      - {name: id, type: integer, auto_increment: true}
      - {name: user_id, type: integer}
    primary_key: [id]
    references:
      - columns: user_id
        table: users
        on_delete: set null
      - name: posts_editor
        columns: [user_id]
        table: users
        referenced_columns: [id]
        on_update: CASCADE
`

func TestRead(t *testing.T) {
	tables, err := load.Read(strings.NewReader(blog))
	require.NoError(t, err)
	require.Len(t, tables, 2)

	users := tables[0]
	assert.Equal(t, "users", users.Name)
	assert.Equal(t, []*schema.Column{
		{Name: "id", Type: field.TypeInteger, AutoIncrement: true},
		{Name: "email", Type: field.TypeVarchar, Size: 255},
		{Name: "balance", Type: field.TypeDecimal, Size: 10, Scale: 2, Default: "0"},
		{Name: "bio", Type: field.TypeText, Nullable: true},
	}, users.Columns)
	assert.Equal(t, []*schema.Index{
		schema.Primary("id"),
		{Name: "users_email", Columns: []string{"email"}, Unique: true},
	}, users.Indexes)
	assert.Equal(t, "InnoDB", users.Options.String(schema.OptionEngine, ""))
	assert.Equal(t, 100, users.Options.Int(schema.OptionAutoIncrement, 0))

	posts := tables[1]
	assert.Equal(t, "blog", posts.Schema)
	assert.Equal(t, []*schema.Reference{
		{
			Name:              "posts_user_fk",
			Columns:           []string{"user_id"},
			ReferencedTable:   "users",
			ReferencedColumns: []string{"id"},
			OnDelete:          schema.SetNull,
		},
		{
			Name:              "posts_editor",
			Columns:           []string{"user_id"},
			ReferencedTable:   "users",
			ReferencedColumns: []string{"id"},
			OnUpdate:          schema.Cascade,
		},
	}, posts.References)

	assert.False(t, schema.ValidateSchema(tables).HasErrors())
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "unknown type",
			input: "tables:\n  - name: t\n    columns:\n      - {name: c, type: uuid}\n",
			want:  "unrecognized data type",
		},
		{
			name:  "unknown key",
			input: "tables:\n  - name: t\n    colums: []\n",
			want:  "field colums not found",
		},
		{
			name:  "missing type",
			input: "tables:\n  - name: t\n    columns:\n      - {name: c}\n",
			want:  `column 0 ("c") has no type`,
		},
		{
			name:  "table without name",
			input: "tables:\n  - columns: []\n",
			want:  "table without name",
		},
		{
			name:  "bad action",
			input: "tables:\n  - name: t\n    references:\n      - {columns: a, table: u, on_delete: explode}\n",
			want:  `unknown reference action "explode"`,
		},
		{
			name:  "reference without table",
			input: "tables:\n  - name: t\n    references:\n      - {columns: a}\n",
			want:  "reference without table",
		},
		{
			name:  "bad column list",
			input: "tables:\n  - name: t\n    primary_key: {a: b}\n",
			want:  "expected string or list of strings",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := load.Read(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.want)
		})
	}

	_, err := load.Read(strings.NewReader(tests[0].input))
	assert.True(t, dbdialect.IsUnrecognizedType(err))
}

func TestRead_Empty(t *testing.T) {
	tables, err := load.Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("b.yml", "tables:\n  - name: posts\n    columns:\n      - {name: id, type: bigint}\n")
	write("a.yaml", "tables:\n  - name: users\n    columns:\n      - {name: id, type: integer}\n")
	write("README.md", "not a schema")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755))

	tables, err := load.Path(dir)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "users", tables[0].Name)
	assert.Equal(t, "posts", tables[1].Name)

	tables, err = load.Path(filepath.Join(dir, "b.yml"))
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, field.TypeBigInt, tables[0].Columns[0].Type)

	write("c.yaml", "tables:\n  - name: users\n    columns:\n      - {name: id, type: integer}\n")
	_, err = load.Dir(dir)
	assert.ErrorContains(t, err, `table "users" defined in`)

	_, err = load.Path(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
