package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/folio/internal/profile"
)

func TestShouldApplyMigration(t *testing.T) {
	tests := []struct {
		file, current, target string
		want                  bool
	}{
		{"0.2.1", "", "0.3.1", true},
		{"0.2.1", "0.2.1", "0.3.1", false},
		{"0.3.1", "0.2.1", "0.3.1", true},
		{"0.4.1", "0.2.1", "0.3.1", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, shouldApplyMigration(tt.file, tt.current, tt.target), "%s in (%q, %s]", tt.file, tt.current, tt.target)
	}
}

func TestValidateMigrationFileName(t *testing.T) {
	require.NoError(t, validateMigrationFileName("00__project_tag.sql"))
	require.Error(t, validateMigrationFileName("project_tag.sql"))
	require.Error(t, validateMigrationFileName("ab__project_tag.sql"))
}

func TestSchemaVersionOfMigrateScript(t *testing.T) {
	s := &Store{profile: &profile.Profile{Mode: "prod", Driver: "sqlite"}}

	v, err := s.getSchemaVersionOfMigrateScript("migration/sqlite/0.2/00__project_tag.sql")
	require.NoError(t, err)
	require.Equal(t, "0.2.1", v)

	latest, err := s.GetCurrentSchemaVersion()
	require.NoError(t, err)
	v, err = s.getSchemaVersionOfMigrateScript("migration/sqlite/" + LatestSchemaFileName)
	require.NoError(t, err)
	require.Equal(t, latest, v)
}

func TestPendingMigrations(t *testing.T) {
	s := &Store{profile: &profile.Profile{Mode: "prod", Driver: "postgres"}}

	all, err := s.pendingMigrations("", "0.3.1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "0.2.1", all[0].version)
	assert.Equal(t, "0.3.1", all[1].version)

	rest, err := s.pendingMigrations("0.2.1", "0.3.1")
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "migration/postgres/0.3/00__tag_id_index.sql", rest[0].path)
}

func TestSplitSQL(t *testing.T) {
	stmts := splitSQL(`-- tag
CREATE TABLE tag (id SERIAL PRIMARY KEY, name TEXT NOT NULL DEFAULT 'a;b'); -- trailing
INSERT INTO tag (name) VALUES ('it''s -- not a comment');

CREATE INDEX idx_tag_name ON tag (name)
`)
	require.Len(t, stmts, 3)
	assert.Contains(t, stmts[0], "'a;b'")
	assert.NotContains(t, stmts[0], "trailing")
	assert.Contains(t, stmts[1], "'it''s -- not a comment'")
	assert.Equal(t, "CREATE INDEX idx_tag_name ON tag (name)", stmts[2])
}
