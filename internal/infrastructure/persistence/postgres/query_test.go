package postgres

import (
	"context"
	"testing"

	"github.com/epis-academic/academic-records/internal/domain/shared"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectByIDs(t *testing.T) {
	a, b := shared.NewID(), shared.NewID()

	sql, args, err := selectByIDs("courses", columns("id", "name"), "id", []shared.ID{a, b}, orderBy("name"))
	require.NoError(t, err)

	assert.Contains(t, sql, `SELECT "id", "name" FROM "courses"`)
	assert.Contains(t, sql, `"id" IN ($1, $2)`)
	assert.Contains(t, sql, `ORDER BY "name" ASC`)
	assert.Equal(t, []interface{}{a.String(), b.String()}, args)
}

func TestQueryIn_EmptyIDs(t *testing.T) {
	scan := func(pgx.Row) (string, error) { return "", nil }

	out, err := queryIn(context.Background(), nil, scan, "courses", columns("id"), "id", nil)

	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestNullableIDs(t *testing.T) {
	assert.Nil(t, nullableID(nil))
	assert.Nil(t, idPtr(nil))

	id := shared.NewID()
	assert.Equal(t, id.String(), nullableID(&id))

	raw := id.String()
	require.NotNil(t, idPtr(&raw))
	assert.Equal(t, id, *idPtr(&raw))
}
