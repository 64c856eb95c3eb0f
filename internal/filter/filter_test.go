package filter

import (
	"reflect"
	"testing"
)

// clause is a test helper flattening a parsed expression.
func clause(t *testing.T, expr string) (string, []interface{}) {
	t.Helper()
	return Parse(expr).WhereClause()
}

func TestParseEmpty(t *testing.T) {
	if p := Parse(""); p != nil {
		t.Error("empty expression must yield a nil predicate")
	}
	if p := Parse("   "); p != nil {
		t.Error("whitespace expression must yield a nil predicate")
	}
}

func TestParseStateQualifier(t *testing.T) {
	sql, args := clause(t, "is:open")
	if sql != "(state = ?)" || args[0] != "open" {
		t.Errorf("is:open = %q %v", sql, args)
	}

	sql, args = clause(t, "-is:closed")
	if sql != "(state != ?)" || args[0] != "closed" {
		t.Errorf("-is:closed = %q %v", sql, args)
	}
}

func TestParseTypeQualifier(t *testing.T) {
	sql, args := clause(t, "is:pr")
	if sql != "(type = ?)" || args[0] != "pr" {
		t.Errorf("is:pr = %q %v", sql, args)
	}
	sql, args = clause(t, "is:issue")
	if sql != "(type = ?)" || args[0] != "issue" {
		t.Errorf("is:issue = %q %v", sql, args)
	}
}

func TestParseBooleanQualifiers(t *testing.T) {
	cases := []struct {
		expr string
		sql  string
		arg  string
	}{
		{"is:unread", "(unread = ?)", "1"},
		{"is:read", "(unread = ?)", "0"},
		{"-is:unread", "(unread = ?)", "0"},
		{"is:private", "(private = ?)", "1"},
		{"is:public", "(private = ?)", "0"},
		{"is:draft", "(draft = ?)", "1"},
		{"-is:draft", "(draft = ?)", "0"},
	}
	for _, tc := range cases {
		sql, args := clause(t, tc.expr)
		if sql != tc.sql || args[0] != tc.arg {
			t.Errorf("%q = %q %v, want %q [%s]", tc.expr, sql, args, tc.sql, tc.arg)
		}
	}
}

func TestParseAuthorAndRepo(t *testing.T) {
	sql, args := clause(t, "author:octocat")
	if sql != "(author = ?)" || args[0] != "octocat" {
		t.Errorf("author = %q %v", sql, args)
	}

	sql, args = clause(t, "repo:acme/widgets")
	if sql != "(repo = ?)" || args[0] != "acme/widgets" {
		t.Errorf("repo = %q %v", sql, args)
	}

	sql, args = clause(t, "-author:bot")
	if sql != "(author != ?)" || args[0] != "bot" {
		t.Errorf("negated author = %q %v", sql, args)
	}
}

func TestParseListQualifiers(t *testing.T) {
	// List columns are comma-joined text, so membership is a LIKE match.
	sql, args := clause(t, "involves:alice")
	if sql != "(involves LIKE ?)" || args[0] != "%alice%" {
		t.Errorf("involves = %q %v", sql, args)
	}

	sql, args = clause(t, "review-requested:bob")
	if sql != "(requested_reviewers LIKE ?)" || args[0] != "%bob%" {
		t.Errorf("review-requested = %q %v", sql, args)
	}
}

func TestParseFreeText(t *testing.T) {
	sql, args := clause(t, "panic")
	if sql != "(title LIKE ?)" || args[0] != "%panic%" {
		t.Errorf("free text = %q %v", sql, args)
	}

	sql, args = clause(t, "-flaky")
	if sql != "(title NOT LIKE ?)" || args[0] != "%flaky%" {
		t.Errorf("negated free text = %q %v", sql, args)
	}

	// Unknown key:value tokens also fall back to title matching.
	sql, args = clause(t, "label:bug")
	if sql != "(title LIKE ?)" || args[0] != "%label:bug%" {
		t.Errorf("unknown qualifier = %q %v", sql, args)
	}
}

func TestParseCombinesWithAnd(t *testing.T) {
	sql, args := clause(t, "is:open is:pr author:octocat")
	if sql != "(((state = ?) AND (type = ?)) AND (author = ?))" {
		t.Errorf("sql = %q", sql)
	}
	want := []interface{}{"open", "pr", "octocat"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("args = %v, want %v", args, want)
	}
}

func TestParseSkipsUnusableTokens(t *testing.T) {
	// A bare "-" and an unknown is: value contribute nothing.
	sql, args := clause(t, "- is:banana is:open")
	if sql != "(state = ?)" || args[0] != "open" {
		t.Errorf("sql = %q %v", sql, args)
	}
}
