package backend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/dbdialect"
	"github.com/syssam/dbdialect/dialect"
	"github.com/syssam/dbdialect/dialect/backend"
)

func TestNew(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name, want string
		drop       string
	}{
		{"postgres", dialect.Postgres, `DROP TABLE IF EXISTS "t"`},
		{"PostgreSQL", dialect.Postgres, `DROP TABLE IF EXISTS "t"`},
		{"mysql", dialect.MySQL, "DROP TABLE IF EXISTS `t`"},
		{"sqlite3", dialect.SQLite, "DROP TABLE IF EXISTS `t`"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d, err := backend.New(tt.name, dialect.WithQuotedTables())
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name())
			assert.Equal(t, tt.drop, d.DropTable("t", "", true))
		})
	}
}

func TestNew_Unknown(t *testing.T) {
	d, err := backend.New("oracle")
	require.Error(t, err)
	assert.Nil(t, d)
	assert.True(t, dbdialect.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), `unknown dialect "oracle"`)
}

func TestIndependentInstances(t *testing.T) {
	quoted, err := backend.New(dialect.Postgres, dialect.WithQuotedTables())
	require.NoError(t, err)
	plain, err := backend.New(dialect.Postgres)
	require.NoError(t, err)
	assert.Equal(t, `DROP TABLE "t"`, quoted.DropTable("t", "", false))
	assert.Equal(t, "DROP TABLE t", plain.DropTable("t", "", false))
}
