package query

import "strings"

// Op identifies a comparison operator in a filter condition.
type Op string

// Supported filter operators.
const (
	OpEq         Op = "eq"
	OpNotEq      Op = "neq"
	OpContains   Op = "contains"
	OpStartsWith Op = "startsWith"
	OpIn         Op = "in"
	OpGte        Op = "gte"
	OpLte        Op = "lte"
)

// Condition is a single typed predicate against one column.
type Condition struct {
	Field string
	Op    Op
	Value interface{}
}

// Search matches one term against several columns, case-insensitively.
// The per-column matches are ORed together.
type Search struct {
	Term   string
	Fields []string
}

// Criteria collects conditions that are ANDed together when compiled.
type Criteria struct {
	Conditions []Condition
	Searches   []Search
}

// New returns an empty criteria set.
func New() *Criteria {
	return &Criteria{}
}

func (c *Criteria) add(field string, op Op, v interface{}) *Criteria {
	c.Conditions = append(c.Conditions, Condition{Field: field, Op: op, Value: v})
	return c
}

// Eq adds an equality condition.
func (c *Criteria) Eq(field string, v interface{}) *Criteria {
	return c.add(field, OpEq, v)
}

// NotEq adds an inequality condition.
func (c *Criteria) NotEq(field string, v interface{}) *Criteria {
	return c.add(field, OpNotEq, v)
}

// Contains adds a case-insensitive substring condition.
func (c *Criteria) Contains(field, term string) *Criteria {
	return c.add(field, OpContains, term)
}

// StartsWith adds a case-insensitive prefix condition.
func (c *Criteria) StartsWith(field, prefix string) *Criteria {
	return c.add(field, OpStartsWith, prefix)
}

// In adds a set-membership condition. An empty set matches nothing.
func (c *Criteria) In(field string, values ...interface{}) *Criteria {
	return c.add(field, OpIn, values)
}

// Gte adds a greater-or-equal condition.
func (c *Criteria) Gte(field string, v interface{}) *Criteria {
	return c.add(field, OpGte, v)
}

// Lte adds a less-or-equal condition.
func (c *Criteria) Lte(field string, v interface{}) *Criteria {
	return c.add(field, OpLte, v)
}

// Between adds an inclusive range condition over one column.
func (c *Criteria) Between(field string, from, to interface{}) *Criteria {
	return c.add(field, OpGte, from).add(field, OpLte, to)
}

// Search adds a multi-column term search. Blank terms are ignored.
func (c *Criteria) Search(term string, fields ...string) *Criteria {
	term = strings.TrimSpace(term)
	if term == "" || len(fields) == 0 {
		return c
	}
	c.Searches = append(c.Searches, Search{Term: term, Fields: fields})
	return c
}

// IsEmpty reports whether no conditions have been added.
func (c *Criteria) IsEmpty() bool {
	return c == nil || (len(c.Conditions) == 0 && len(c.Searches) == 0)
}
