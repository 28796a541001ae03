package postgres

import (
	"fmt"
	"strings"

	"github.com/risingbsm/bsm-api/internal/query"
)

// compileCriteria turns a criteria set into a WHERE fragment with
// positional args, starting at $1. An empty set compiles to "", nil.
// Field names come from repository code, never from request input, so
// they are interpolated directly; values always go through args.
func compileCriteria(cr *query.Criteria) (string, []interface{}) {
	if cr.IsEmpty() {
		return "", nil
	}

	var (
		conds []string
		args  []interface{}
	)
	ph := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, c := range cr.Conditions {
		switch c.Op {
		case query.OpEq:
			conds = append(conds, fmt.Sprintf("%s = %s", c.Field, ph(c.Value)))
		case query.OpNotEq:
			conds = append(conds, fmt.Sprintf("%s <> %s", c.Field, ph(c.Value)))
		case query.OpContains:
			conds = append(conds, fmt.Sprintf("%s ILIKE %s", c.Field, ph("%"+fmt.Sprint(c.Value)+"%")))
		case query.OpStartsWith:
			conds = append(conds, fmt.Sprintf("%s ILIKE %s", c.Field, ph(fmt.Sprint(c.Value)+"%")))
		case query.OpIn:
			values := inValues(c.Value)
			if len(values) == 0 {
				// empty set matches nothing
				conds = append(conds, "FALSE")
				continue
			}
			placeholders := make([]string, len(values))
			for i, v := range values {
				placeholders[i] = ph(v)
			}
			conds = append(conds, fmt.Sprintf("%s IN (%s)", c.Field, strings.Join(placeholders, ", ")))
		case query.OpGte:
			conds = append(conds, fmt.Sprintf("%s >= %s", c.Field, ph(c.Value)))
		case query.OpLte:
			conds = append(conds, fmt.Sprintf("%s <= %s", c.Field, ph(c.Value)))
		}
	}

	for _, s := range cr.Searches {
		// one placeholder shared by every column of the search
		p := ph("%" + s.Term + "%")
		parts := make([]string, len(s.Fields))
		for i, f := range s.Fields {
			parts[i] = fmt.Sprintf("%s ILIKE %s", f, p)
		}
		conds = append(conds, "("+strings.Join(parts, " OR ")+")")
	}

	return strings.Join(conds, " AND "), args
}

// inValues flattens the supported slice shapes for IN conditions.
func inValues(v interface{}) []interface{} {
	switch vv := v.(type) {
	case []interface{}:
		return vv
	case []string:
		out := make([]interface{}, len(vv))
		for i, s := range vv {
			out[i] = s
		}
		return out
	case []int64:
		out := make([]interface{}, len(vv))
		for i, n := range vv {
			out[i] = n
		}
		return out
	case nil:
		return nil
	default:
		return []interface{}{v}
	}
}

// limitOffset renders LIMIT/OFFSET placeholders following n bound args.
func limitOffset(n int) string {
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2)
}

// orderBy renders a validated ORDER BY clause. Columns not in the
// whitelist are dropped; when nothing survives, the default applies.
func orderBy(sorts []query.Sort, sortable map[string]bool, defaultSort string) string {
	var cols []string
	for _, s := range sorts {
		if !sortable[s.Field] {
			continue
		}
		dir := "ASC"
		if s.Dir == query.SortDesc {
			dir = "DESC"
		}
		cols = append(cols, s.Field+" "+dir)
	}
	if len(cols) == 0 {
		return defaultSort
	}
	return strings.Join(cols, ", ")
}
