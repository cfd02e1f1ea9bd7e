package repo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/irrigodev/irrigationdesign/pkg/repo"
)

func TestJoinWhere(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", repo.JoinWhere())
	assert.Equal(t, "WHERE a = $1", repo.JoinWhere("a = $1"))
	assert.Equal(t, "WHERE a = $1 AND b = $2", repo.JoinWhere("a = $1", "", "b = $2"))
}

func TestInsert(t *testing.T) {
	t.Parallel()

	q := repo.Insert("plans", []string{"name", "creator_id"}, "id")
	assert.Equal(t, "INSERT INTO plans (name, creator_id) VALUES ($1, $2) RETURNING id", q)
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	q := repo.Update("plans", []string{"name", "description"}, "id = $3")
	assert.Equal(t, "UPDATE plans SET name = $1, description = $2 WHERE id = $3", q)
}

func TestBatchInsertQueryN(t *testing.T) {
	t.Parallel()

	q, args := repo.BatchInsertQueryN(
		"INSERT INTO shapes (plan_id, shape_type) VALUES",
		[][]any{{"p1", "LINE"}, {"p2", "CIRCLE"}},
	)
	assert.Equal(t, "INSERT INTO shapes (plan_id, shape_type) VALUES ($1, $2), ($3, $4)", q)
	assert.Equal(t, []any{"p1", "LINE", "p2", "CIRCLE"}, args)
}

func TestFormatLimitOffset(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", repo.FormatLimitOffset(0, 0))
	assert.Equal(t, "LIMIT 25", repo.FormatLimitOffset(25, 0))
	assert.Equal(t, "LIMIT 25 OFFSET 50", repo.FormatLimitOffset(25, 50))
}
