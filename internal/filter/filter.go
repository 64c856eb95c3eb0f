// Package filter parses the filter expressions attached to filtered streams
// (e.g. "is:open is:pr author:octocat repo:owner/name") into query
// predicates over the mirrored issues table.
package filter

import (
	"strings"

	"github.com/ghstream/ghstream/internal/query"
)

// Parse compiles a filter expression into a single AND-combined predicate.
// Unknown tokens match against the issue title. An empty expression yields a
// nil predicate, which the store treats as "no filter".
func Parse(expr string) *query.Predicate {
	var preds []*query.Predicate

	for _, token := range strings.Fields(expr) {
		if p := parseToken(token); p != nil {
			preds = append(preds, p)
		}
	}

	return query.Combine(preds, query.AND)
}

func parseToken(token string) *query.Predicate {
	negated := false
	if strings.HasPrefix(token, "-") {
		negated = true
		token = token[1:]
	}
	if token == "" {
		return nil
	}

	key, value, found := strings.Cut(token, ":")
	if !found {
		// Free text matches the title.
		return simple("title", query.Like, query.NotLike, token, negated)
	}

	switch key {
	case "is":
		return isPredicate(value, negated)
	case "author":
		return simple("author", query.Equal, query.NotEqual, value, negated)
	case "repo":
		return simple("repo", query.Equal, query.NotEqual, value, negated)
	case "involves":
		return simple("involves", query.Like, query.NotLike, value, negated)
	case "review-requested":
		return simple("requested_reviewers", query.Like, query.NotLike, value, negated)
	case "number":
		return simple("number", query.Equal, query.NotEqual, value, negated)
	default:
		return simple("title", query.Like, query.NotLike, token, negated)
	}
}

// isPredicate handles the is:<state> qualifiers.
func isPredicate(value string, negated bool) *query.Predicate {
	switch value {
	case "open", "closed":
		return simple("state", query.Equal, query.NotEqual, value, negated)
	case "issue", "pr":
		return simple("type", query.Equal, query.NotEqual, value, negated)
	case "unread":
		return boolPredicate("unread", !negated)
	case "read":
		return boolPredicate("unread", negated)
	case "private":
		return boolPredicate("private", !negated)
	case "public":
		return boolPredicate("private", negated)
	case "draft":
		return boolPredicate("draft", !negated)
	default:
		return nil
	}
}

func boolPredicate(field string, set bool) *query.Predicate {
	if set {
		return query.Simple(field, query.Equal, "1")
	}
	return query.Simple(field, query.Equal, "0")
}

func simple(field string, op, negOp query.Operator, value string, negated bool) *query.Predicate {
	if negated {
		return query.Simple(field, negOp, value)
	}
	return query.Simple(field, op, value)
}
