package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_UpAndDownPairs(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}

	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}

func TestMigrations_SchemaConstraints(t *testing.T) {
	data, err := fs.ReadFile(migrationFiles, "migrations/000001_init.up.sql")
	require.NoError(t, err)
	schema := string(data)

	for _, table := range []string{"users", "images", "friendships", "groups", "group_members", "image_shares", "notifications"} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
	assert.Contains(t, schema, "LEAST(requester_id, addressee_id), GREATEST(requester_id, addressee_id)")
	assert.Contains(t, schema, "CHECK ((user_id IS NULL) <> (group_id IS NULL))")
	assert.Contains(t, schema, "UNIQUE (group_id, user_id)")
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"al", "al"},
		{"100%", `100\%`},
		{"a_b", `a\_b`},
		{`back\slash`, `back\\slash`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeLike(tt.in))
		})
	}
}

func TestErrorClassification(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}

	assert.True(t, isUniqueViolation(dup))
	assert.False(t, isUniqueViolation(fk))
	assert.False(t, isUniqueViolation(errors.New("boom")))

	assert.True(t, isNoRows(fmt.Errorf("scan: %w", pgx.ErrNoRows)))
	assert.False(t, isNoRows(dup))
}
