// Package query builds parameterized WHERE clauses over the issues table.
// Filter expressions from filtered streams compile down to predicate trees,
// which the store turns into SQL it can execute on either backend.
package query

import (
	"fmt"

	"github.com/ghstream/ghstream/internal/model"
)

// Logic determines how multiple predicates are combined.
type Logic int

const (
	AND Logic = iota
	OR
)

// Operator represents a SQL comparison operator.
type Operator string

const (
	Equal          Operator = "="
	NotEqual       Operator = "!="
	Like           Operator = "LIKE"
	NotLike        Operator = "NOT LIKE"
	GreaterOrEqual Operator = ">="
	LessOrEqual    Operator = "<="
)

// validOperators is the set of allowed operators for validation.
var validOperators = map[Operator]bool{
	Equal: true, NotEqual: true, Like: true, NotLike: true,
	GreaterOrEqual: true, LessOrEqual: true,
}

// Predicate represents a single filter condition or a composite of conditions.
// Predicates use parameterized values to prevent SQL injection.
type Predicate struct {
	kind  predicateKind
	field string
	op    Operator
	value string
	date1 string
	date2 string
	left  *Predicate
	right *Predicate
	logic Logic
}

type predicateKind int

const (
	predNone predicateKind = iota
	predSimple
	predDate
	predComposite
)

// Simple creates a predicate that compares an issue column to a value.
// Returns nil if the field name is invalid or the operator is unrecognized.
func Simple(field string, op Operator, value string) *Predicate {
	if !isValidField(field) || !validOperators[op] {
		return nil
	}
	return &Predicate{
		kind:  predSimple,
		field: field,
		op:    op,
		value: value,
	}
}

// DateRange creates a predicate filtering issues updated between two
// timestamps (inclusive).
func DateRange(date1, date2 string) *Predicate {
	return &Predicate{
		kind:  predDate,
		date1: date1,
		date2: date2,
	}
}

// Combine joins multiple predicates with the given logic (AND or OR).
// Returns nil for an empty slice. Returns the single predicate if only one is
// given. Nil predicates in the slice are skipped.
func Combine(preds []*Predicate, logic Logic) *Predicate {
	filtered := make([]*Predicate, 0, len(preds))
	for _, p := range preds {
		if p != nil {
			filtered = append(filtered, p)
		}
	}

	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}

	result := &Predicate{
		kind:  predComposite,
		left:  filtered[0],
		right: filtered[1],
		logic: logic,
	}

	for i := 2; i < len(filtered); i++ {
		result = &Predicate{
			kind:  predComposite,
			left:  result,
			right: filtered[i],
			logic: logic,
		}
	}

	return result
}

// WhereClause returns the SQL WHERE fragment and its parameter values.
// For example: "(author = ?)", []interface{}{"octocat"}
func (p *Predicate) WhereClause() (string, []interface{}) {
	if p == nil {
		return "", nil
	}

	switch p.kind {
	case predNone:
		return "", nil

	case predSimple:
		if p.op == Like || p.op == NotLike {
			return fmt.Sprintf("(%s %s ?)", p.field, p.op),
				[]interface{}{"%" + p.value + "%"}
		}
		return fmt.Sprintf("(%s %s ?)", p.field, p.op),
			[]interface{}{p.value}

	case predDate:
		return "(updated_at BETWEEN ? AND ?)",
			[]interface{}{p.date1, p.date2}

	case predComposite:
		leftSQL, leftArgs := p.left.WhereClause()
		rightSQL, rightArgs := p.right.WhereClause()

		if leftSQL == "" && rightSQL == "" {
			return "", nil
		}
		if leftSQL == "" {
			return rightSQL, rightArgs
		}
		if rightSQL == "" {
			return leftSQL, leftArgs
		}

		logicStr := "AND"
		if p.logic == OR {
			logicStr = "OR"
		}

		sql := fmt.Sprintf("(%s %s %s)", leftSQL, logicStr, rightSQL)
		args := append(leftArgs, rightArgs...)
		return sql, args

	default:
		return "", nil
	}
}

// Fields returns the list of column names referenced by this predicate tree.
func (p *Predicate) Fields() []string {
	if p == nil {
		return nil
	}

	switch p.kind {
	case predNone:
		return nil
	case predSimple:
		return []string{p.field}
	case predDate:
		return []string{"updated_at"}
	case predComposite:
		seen := make(map[string]bool)
		var result []string
		for _, f := range p.left.Fields() {
			if !seen[f] {
				seen[f] = true
				result = append(result, f)
			}
		}
		for _, f := range p.right.Fields() {
			if !seen[f] {
				seen[f] = true
				result = append(result, f)
			}
		}
		return result
	default:
		return nil
	}
}

// isValidField checks a field name against the known issue columns.
func isValidField(name string) bool {
	for _, f := range model.Fields {
		if f == name {
			return true
		}
	}
	return false
}
