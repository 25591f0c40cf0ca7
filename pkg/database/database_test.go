package database

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_CategoryNameUnique(t *testing.T) {
	body, err := migrations.ReadFile("migrations/00001_init_catalog.sql")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`(?m)^\s*name\s+VARCHAR\(200\) NOT NULL UNIQUE,$`), string(body))
	assert.NotContains(t, string(body), "(COALESCE(parent_id, 0), name)")
}
