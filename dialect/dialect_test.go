package dialect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/dbdialect/dialect"
)

func TestNewConfig(t *testing.T) {
	c := dialect.NewConfig()
	assert.False(t, c.QuoteTables)
	assert.Empty(t, c.DefaultSchema)

	c = dialect.NewConfig(dialect.WithQuotedTables(), dialect.WithDefaultSchema("app"))
	assert.True(t, c.QuoteTables)
	assert.Equal(t, "app", c.DefaultSchema)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"postgres", "mysql", "sqlite"}, dialect.Names())
}
