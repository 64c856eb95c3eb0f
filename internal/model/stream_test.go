package model

import (
	"reflect"
	"testing"
)

func TestQueryList(t *testing.T) {
	cases := []struct {
		queries string
		want    []string
	}{
		{`["involves:alice"]`, []string{"involves:alice"}},
		{`["involves:alice","org:acme"]`, []string{"involves:alice", "org:acme"}},
		{`[]`, []string{}},
		// A plain string that is not a JSON array counts as one query.
		{"involves:alice", []string{"involves:alice"}},
		{"", nil},
	}

	for _, tc := range cases {
		s := &Stream{Queries: tc.queries}
		if got := s.QueryList(); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("QueryList(%q) = %#v, want %#v", tc.queries, got, tc.want)
		}
	}
}
