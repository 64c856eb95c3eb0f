package database

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ghstream/ghstream/internal/model"
)

// createTestDB builds a fresh SQLite store in a temp directory.
func createTestDB(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := CreateSQLite(path, nil)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleIssue(id int64) *model.Issue {
	return &model.Issue{
		ID:                 id,
		Number:             id,
		Type:               "issue",
		Title:              "sample issue",
		Body:               "body",
		State:              "open",
		Author:             "alice",
		Repo:               "acme/widgets",
		HTMLURL:            "https://github.com/acme/widgets/issues/1",
		Involves:           []string{"alice", "bob"},
		RequestedReviewers: []string{},
		Projects:           []string{},
		CreatedAt:          "2024-03-01T08:00:00Z",
		UpdatedAt:          "2024-03-02T09:00:00Z",
	}
}

func TestCreateAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := CreateSQLite(path, nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := db.CreateStream("Me", `["involves:alice"]`, "#e74c3c", 1); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	db.Close()

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	streams, err := reopened.GetStreams()
	if err != nil {
		t.Fatalf("read after reopen failed: %v", err)
	}
	if len(streams) != 1 || streams[0].Name != "Me" {
		t.Errorf("streams after reopen = %+v", streams)
	}
	if reopened.Path() != path {
		t.Errorf("path = %q", reopened.Path())
	}
}

func TestStreamCRUD(t *testing.T) {
	db := createTestDB(t)

	s, err := db.CreateStream("Me", `["involves:alice"]`, "#e74c3c", 1)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if s.ID != 1 || s.Position != 0 {
		t.Errorf("first stream id=%d position=%d", s.ID, s.Position)
	}
	if s.CreatedAt == "" || s.CreatedAt != s.UpdatedAt {
		t.Errorf("timestamps = %q / %q", s.CreatedAt, s.UpdatedAt)
	}

	s2, err := db.CreateStream("Team", `["org:acme"]`, "#3498db", 0)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if s2.ID != 2 || s2.Position != 1 {
		t.Errorf("second stream id=%d position=%d", s2.ID, s2.Position)
	}

	s.Name = "Mine"
	s.Queries = `["author:alice"]`
	if err := db.UpdateStream(s); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	got, err := db.GetStream(s.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Name != "Mine" || got.Queries != `["author:alice"]` {
		t.Errorf("updated stream = %+v", got)
	}

	if err := db.DeleteStream(s.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := db.GetStream(s.ID); err == nil {
		t.Error("expected error reading deleted stream")
	}
	var serr *StoreError
	_, err = db.GetStream(s.ID)
	if !errors.As(err, &serr) {
		t.Errorf("expected *StoreError, got %T", err)
	}
}

func TestFilteredStreamPositions(t *testing.T) {
	db := createTestDB(t)

	s, err := db.CreateStream("Me", `["involves:alice"]`, "#e74c3c", 1)
	if err != nil {
		t.Fatalf("create stream failed: %v", err)
	}

	// Positions are global across streams and filters.
	f1, err := db.CreateFilteredStream(s.ID, "Open", "is:open", "#2ecc71", 0)
	if err != nil {
		t.Fatalf("create filter failed: %v", err)
	}
	f2, err := db.CreateFilteredStream(s.ID, "PRs", "is:pr", "#3498db", 0)
	if err != nil {
		t.Fatalf("create filter failed: %v", err)
	}
	if f1.Position != 1 || f2.Position != 2 {
		t.Errorf("filter positions = %d, %d", f1.Position, f2.Position)
	}

	filters, err := db.GetFilteredStreamsFor(s.ID)
	if err != nil {
		t.Fatalf("list filters failed: %v", err)
	}
	if len(filters) != 2 || filters[0].Name != "Open" || filters[1].Name != "PRs" {
		t.Errorf("filters = %+v", filters)
	}

	if err := db.DeleteFilteredStream(f1.ID); err != nil {
		t.Fatalf("delete filter failed: %v", err)
	}
	filters, _ = db.GetFilteredStreamsFor(s.ID)
	if len(filters) != 1 {
		t.Errorf("expected 1 filter after delete, got %d", len(filters))
	}
}

func TestSeedsOnEmptyTables(t *testing.T) {
	db := createTestDB(t)

	next, count, err := db.StreamSeed()
	if err != nil {
		t.Fatalf("stream seed failed: %v", err)
	}
	if next != 1 || count != 0 {
		t.Errorf("empty stream seed = (%d, %d), want (1, 0)", next, count)
	}

	next, count, err = db.FilteredStreamSeed()
	if err != nil {
		t.Fatalf("filter seed failed: %v", err)
	}
	if next != 1 || count != 0 {
		t.Errorf("empty filter seed = (%d, %d), want (1, 0)", next, count)
	}
}

func TestSeedsSkipDeletedIDs(t *testing.T) {
	db := createTestDB(t)

	// Ids never get reused: seed follows max(id), not count.
	s1, _ := db.CreateStream("A", `["q"]`, "#111111", 0)
	s2, _ := db.CreateStream("B", `["q"]`, "#222222", 0)
	db.DeleteStream(s1.ID)

	next, count, err := db.StreamSeed()
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if next != s2.ID+1 || count != 1 {
		t.Errorf("seed after delete = (%d, %d), want (%d, 1)", next, count, s2.ID+1)
	}
}

func TestSaveIssueUpsert(t *testing.T) {
	db := createTestDB(t)
	s, _ := db.CreateStream("Me", `["involves:alice"]`, "#e74c3c", 1)

	issue := sampleIssue(100)
	if err := db.SaveIssue(issue, s.ID); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	issues, err := db.IssuesForStream(s.ID, 0, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	got := issues[0]
	if !got.Unread {
		t.Error("new issue must start unread")
	}
	if len(got.Involves) != 2 || got.Involves[0] != "alice" {
		t.Errorf("involves = %v", got.Involves)
	}
	if got.Projects == nil || len(got.Projects) != 0 {
		t.Errorf("projects = %#v, want empty slice", got.Projects)
	}

	// Re-saving the unchanged document keeps read state intact.
	if err := db.MarkIssueRead(issue.ID, true); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	if err := db.SaveIssue(issue, s.ID); err != nil {
		t.Fatalf("re-save failed: %v", err)
	}
	issues, _ = db.IssuesForStream(s.ID, 0, 0)
	if len(issues) != 1 {
		t.Fatalf("upsert duplicated the row: %d issues", len(issues))
	}
	if issues[0].Unread {
		t.Error("unchanged document must not flip unread back")
	}

	// A newer updated_at flips the row back to unread and rewrites fields.
	issue.Title = "sample issue, edited"
	issue.UpdatedAt = "2024-03-03T10:00:00Z"
	if err := db.SaveIssue(issue, s.ID); err != nil {
		t.Fatalf("update save failed: %v", err)
	}
	issues, _ = db.IssuesForStream(s.ID, 0, 0)
	if issues[0].Title != "sample issue, edited" {
		t.Errorf("title = %q", issues[0].Title)
	}
	if !issues[0].Unread {
		t.Error("changed document must become unread again")
	}
}

func TestSaveIssuePreservesTimelineFields(t *testing.T) {
	db := createTestDB(t)
	s, _ := db.CreateStream("Me", `["involves:alice"]`, "#e74c3c", 1)

	enriched := sampleIssue(100)
	enriched.LastTimelineUser = "bob"
	enriched.LastTimelineAt = "2024-03-02T09:30:00Z"
	enriched.Projects = []string{"roadmap"}
	if err := db.SaveIssue(enriched, s.ID); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// A search re-sync always carries empty timeline fields; they must not
	// clobber the enriched values on conflict.
	fromSearch := sampleIssue(100)
	fromSearch.UpdatedAt = "2024-03-03T10:00:00Z"
	if err := db.SaveIssue(fromSearch, s.ID); err != nil {
		t.Fatalf("re-save failed: %v", err)
	}

	issues, _ := db.IssuesForStream(s.ID, 0, 0)
	if issues[0].LastTimelineUser != "bob" || issues[0].LastTimelineAt != "2024-03-02T09:30:00Z" {
		t.Errorf("timeline fields lost: %q / %q", issues[0].LastTimelineUser, issues[0].LastTimelineAt)
	}
	if len(issues[0].Projects) != 1 || issues[0].Projects[0] != "roadmap" {
		t.Errorf("projects lost: %v", issues[0].Projects)
	}
}

func TestIssueSharedAcrossStreams(t *testing.T) {
	db := createTestDB(t)
	s1, _ := db.CreateStream("Me", `["involves:alice"]`, "#e74c3c", 1)
	s2, _ := db.CreateStream("Team", `["org:acme"]`, "#3498db", 0)

	issue := sampleIssue(100)
	if err := db.SaveIssue(issue, s1.ID); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := db.SaveIssue(issue, s2.ID); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	count, err := db.CountIssues("", nil)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("issue row duplicated: count = %d", count)
	}

	for _, id := range []int64{s1.ID, s2.ID} {
		issues, err := db.IssuesForStream(id, 0, 0)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(issues) != 1 {
			t.Errorf("stream %d sees %d issues", id, len(issues))
		}
	}
}

func TestUnreadCount(t *testing.T) {
	db := createTestDB(t)
	s, _ := db.CreateStream("Me", `["involves:alice"]`, "#e74c3c", 1)

	for id := int64(100); id < 103; id++ {
		if err := db.SaveIssue(sampleIssue(id), s.ID); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	count, err := db.UnreadCount(s.ID)
	if err != nil {
		t.Fatalf("unread count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("unread = %d, want 3", count)
	}

	db.MarkIssueRead(100, true)
	db.MarkIssueRead(101, true)
	count, _ = db.UnreadCount(s.ID)
	if count != 1 {
		t.Errorf("unread after marking = %d, want 1", count)
	}

	db.MarkIssueRead(100, false)
	count, _ = db.UnreadCount(s.ID)
	if count != 2 {
		t.Errorf("unread after unmarking = %d, want 2", count)
	}
}

func TestQueryIssues(t *testing.T) {
	db := createTestDB(t)
	s, _ := db.CreateStream("Me", `["involves:alice"]`, "#e74c3c", 1)

	open := sampleIssue(100)
	closed := sampleIssue(101)
	closed.State = "closed"
	closed.UpdatedAt = "2024-03-05T09:00:00Z"
	pr := sampleIssue(102)
	pr.Type = "pr"
	pr.UpdatedAt = "2024-03-07T09:00:00Z"
	for _, issue := range []*model.Issue{open, closed, pr} {
		if err := db.SaveIssue(issue, s.ID); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	issues, err := db.QueryIssues("state = ?", []interface{}{"open"}, "updated_at DESC", 0, 0)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("expected 2 open issues, got %d", len(issues))
	}
	// Newest first.
	if issues[0].ID != 102 || issues[1].ID != 100 {
		t.Errorf("order = %d, %d", issues[0].ID, issues[1].ID)
	}

	issues, err = db.QueryIssues("", nil, "updated_at DESC", 2, 1)
	if err != nil {
		t.Fatalf("paged query failed: %v", err)
	}
	if len(issues) != 2 || issues[0].ID != 101 {
		t.Errorf("paged result = %+v", issues)
	}

	count, err := db.CountIssues("type = ?", []interface{}{"pr"})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("pr count = %d", count)
	}
}

func TestOpenStoreFactory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := CreateStore("sqlite", path, nil)
	if err != nil {
		t.Fatalf("factory create failed: %v", err)
	}
	db.Close()

	db, err = OpenStore("sqlite", path)
	if err != nil {
		t.Fatalf("factory open failed: %v", err)
	}
	db.Close()

	if _, err := OpenStore("oracle", path); err == nil {
		t.Error("expected error for unknown driver")
	}
}
