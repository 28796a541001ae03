package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/risingbsm/bsm-api/internal/query"
)

func TestCompileCriteriaEmpty(t *testing.T) {
	where, args := compileCriteria(query.New())
	assert.Empty(t, where)
	assert.Nil(t, args)

	where, args = compileCriteria(nil)
	assert.Empty(t, where)
	assert.Nil(t, args)
}

func TestCompileCriteriaOperators(t *testing.T) {
	tests := []struct {
		name     string
		cr       *query.Criteria
		want     string
		wantArgs []interface{}
	}{
		{
			name:     "eq",
			cr:       query.New().Eq("status", "active"),
			want:     "status = $1",
			wantArgs: []interface{}{"active"},
		},
		{
			name:     "not eq",
			cr:       query.New().NotEq("status", "deleted"),
			want:     "status <> $1",
			wantArgs: []interface{}{"deleted"},
		},
		{
			name:     "contains wraps term",
			cr:       query.New().Contains("name", "smith"),
			want:     "name ILIKE $1",
			wantArgs: []interface{}{"%smith%"},
		},
		{
			name:     "starts with",
			cr:       query.New().StartsWith("email", "info@"),
			want:     "email ILIKE $1",
			wantArgs: []interface{}{"info@%"},
		},
		{
			name:     "in",
			cr:       query.New().In("status", "new", "in_progress"),
			want:     "status IN ($1, $2)",
			wantArgs: []interface{}{"new", "in_progress"},
		},
		{
			name:     "empty in matches nothing",
			cr:       query.New().In("status"),
			want:     "FALSE",
			wantArgs: nil,
		},
		{
			name:     "range",
			cr:       query.New().Gte("amount", 10).Lte("amount", 20),
			want:     "amount >= $1 AND amount <= $2",
			wantArgs: []interface{}{10, 20},
		},
		{
			name:     "multi field search shares the placeholder",
			cr:       query.New().Search("ann", "name", "email"),
			want:     "(name ILIKE $1 OR email ILIKE $1)",
			wantArgs: []interface{}{"%ann%"},
		},
		{
			name:     "conditions are anded in order",
			cr:       query.New().Eq("status", "active").Search("ann", "name", "email"),
			want:     "status = $1 AND (name ILIKE $2 OR email ILIKE $2)",
			wantArgs: []interface{}{"active", "%ann%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := compileCriteria(tt.cr)
			assert.Equal(t, tt.want, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestOrderBy(t *testing.T) {
	sortable := map[string]bool{"name": true, "created_at": true}

	assert.Equal(t, "id DESC", orderBy(nil, sortable, "id DESC"))
	assert.Equal(t, "name ASC", orderBy([]query.Sort{{Field: "name"}}, sortable, "id DESC"))
	assert.Equal(t, "name DESC", orderBy([]query.Sort{{Field: "name", Dir: query.SortDesc}}, sortable, "id DESC"))
	assert.Equal(t, "name ASC, created_at DESC",
		orderBy([]query.Sort{
			{Field: "name"},
			{Field: "created_at", Dir: query.SortDesc},
		}, sortable, "id DESC"))

	// unlisted columns never reach SQL
	assert.Equal(t, "id DESC", orderBy([]query.Sort{{Field: "password_hash"}}, sortable, "id DESC"))
	assert.Equal(t, "name ASC",
		orderBy([]query.Sort{
			{Field: "drop table"},
			{Field: "name"},
		}, sortable, "id DESC"))
}

func TestInValues(t *testing.T) {
	assert.Equal(t, []interface{}{"a", "b"}, inValues([]interface{}{"a", "b"}))
	assert.Equal(t, []interface{}{"a", "b"}, inValues([]string{"a", "b"}))
	assert.Equal(t, []interface{}{int64(1), int64(2)}, inValues([]int64{1, 2}))
	assert.Equal(t, []interface{}{42}, inValues(42))
	assert.Nil(t, inValues(nil))
}
