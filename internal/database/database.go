package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ghstream/ghstream/internal/model"

	_ "modernc.org/sqlite"
)

// Default fields to index when creating a new database.
var DefaultIndexFields = []string{"repo", "author", "state", "updated_at", "unread"}

// issueColumns is the SELECT column list for the issues table, in scan order.
const issueColumns = "id, number, type, title, body, state, author, repo, html_url, " +
	"private, draft, involves, requested_reviewers, last_timeline_user, " +
	"last_timeline_at, projects, created_at, updated_at, closed_at, unread"

// UTCNow returns the current time as the fixed-format UTC string stored in
// every created_at/updated_at column. One import call captures this once and
// applies it identically to every row it writes.
func UTCNow() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05Z")
}

// store holds the shared implementation behind both backends. All SQL is
// generated through the dialect so the same method bodies serve SQLite and
// PostgreSQL.
type store struct {
	path    string
	conn    *sql.DB
	dialect Dialect
}

// SQLiteStore manages all SQLite operations for a ghstream database.
// It implements the Store interface.
type SQLiteStore struct {
	store
}

// OpenSQLite opens an existing ghstream SQLite database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	d := &SQLiteDialect{}

	conn, err := sql.Open(d.DriverName(), d.DSN(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Verify the connection works
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	db := &SQLiteStore{store{path: path, conn: conn, dialect: d}}
	db.migrate()

	return db, nil
}

// CreateSQLite creates a new ghstream SQLite database with the full schema.
// indexFields specifies which issue columns to index. Pass nil to use
// DefaultIndexFields.
func CreateSQLite(path string, indexFields []string) (*SQLiteStore, error) {
	d := &SQLiteDialect{}

	conn, err := sql.Open(d.DriverName(), d.DSN(path))
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	db := &SQLiteStore{store{path: path, conn: conn, dialect: d}}

	if err := db.createSchema(indexFields); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *store) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Path returns the file path or connection string of the database.
func (db *store) Path() string {
	return db.path
}

// Conn returns the underlying *sql.DB connection for advanced query usage.
func (db *store) Conn() *sql.DB {
	return db.conn
}

// migrate applies schema migrations for backward compatibility.
func (db *store) migrate() {
	// Add draft column if missing (pre-0.3.0 databases)
	var count int
	err := db.conn.QueryRow(
		db.dialect.SchemaCheckColumnSQL("issues", "draft"),
	).Scan(&count)
	if err == nil && count == 0 {
		db.conn.Exec("ALTER TABLE issues ADD COLUMN draft INTEGER DEFAULT 0")
	}
}

// Migrate applies any pending schema migrations.
func (db *store) Migrate() error {
	db.migrate()
	return nil
}

// createSchema builds all tables and indexes for a new database.
func (db *store) createSchema(indexFields []string) error {
	if indexFields == nil {
		indexFields = DefaultIndexFields
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for name, ddl := range map[string]string{
		"streams":          db.dialect.CreateStreamsTableSQL(),
		"filtered_streams": db.dialect.CreateFilteredStreamsTableSQL(),
		"issues":           db.dialect.CreateIssuesTableSQL(),
		"streams_issues":   db.dialect.CreateStreamsIssuesTableSQL(),
	} {
		if _, err := tx.Exec(ddl); err != nil {
			return fmt.Errorf("creating %s table: %w", name, err)
		}
	}

	for _, field := range indexFields {
		_, err = tx.Exec(db.dialect.CreateIndexSQL(field+"_idx", "issues", field))
		if err != nil {
			return fmt.Errorf("creating index on %s: %w", field, err)
		}
	}

	return tx.Commit()
}

// -- Streams --

// GetStreams returns all streams ordered by their global position.
func (db *store) GetStreams() ([]*model.Stream, error) {
	pos := db.dialect.QuoteColumn("position")
	rows, err := db.conn.Query(
		"SELECT id, name, queries, " + pos + ", notification, color, created_at, updated_at" +
			" FROM streams ORDER BY " + pos)
	if err != nil {
		return nil, storeErr("select streams", "", err)
	}
	defer rows.Close()

	var streams []*model.Stream
	for rows.Next() {
		s := &model.Stream{}
		err := rows.Scan(&s.ID, &s.Name, &s.Queries, &s.Position,
			&s.Notification, &s.Color, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, storeErr("scan stream", "", err)
		}
		streams = append(streams, s)
	}
	return streams, rows.Err()
}

// GetStream returns a single stream by id, or a StoreError if it is missing.
func (db *store) GetStream(id int64) (*model.Stream, error) {
	pos := db.dialect.QuoteColumn("position")
	s := &model.Stream{}
	err := db.conn.QueryRow(
		"SELECT id, name, queries, "+pos+", notification, color, created_at, updated_at"+
			" FROM streams WHERE id = "+db.dialect.Placeholder(1), id,
	).Scan(&s.ID, &s.Name, &s.Queries, &s.Position,
		&s.Notification, &s.Color, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, storeErr("select stream", fmt.Sprintf("id=%d", id), err)
	}
	return s, nil
}

// CreateStream inserts a new stream at the end of the global position order,
// allocating the next free identifier.
func (db *store) CreateStream(name, queries, color string, notification int64) (*model.Stream, error) {
	next, _, err := db.StreamSeed()
	if err != nil {
		return nil, err
	}
	pos, err := db.nextPosition()
	if err != nil {
		return nil, err
	}

	now := UTCNow()
	s := &model.Stream{
		ID: next, Name: name, Queries: queries, Position: pos,
		Notification: notification, Color: color,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := db.InsertStream(s); err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateStream rewrites the mutable columns of a stream row.
func (db *store) UpdateStream(s *model.Stream) error {
	d := db.dialect
	_, err := db.conn.Exec(
		"UPDATE streams SET name = "+d.Placeholder(1)+", queries = "+d.Placeholder(2)+
			", notification = "+d.Placeholder(3)+", color = "+d.Placeholder(4)+
			", updated_at = "+d.Placeholder(5)+" WHERE id = "+d.Placeholder(6),
		s.Name, s.Queries, s.Notification, s.Color, UTCNow(), s.ID)
	return storeErr("update stream", fmt.Sprintf("id=%d", s.ID), err)
}

// DeleteStream removes a stream, its filters, and its issue associations.
func (db *store) DeleteStream(id int64) error {
	d := db.dialect
	for _, q := range []string{
		"DELETE FROM filtered_streams WHERE stream_id = " + d.Placeholder(1),
		"DELETE FROM streams_issues WHERE stream_id = " + d.Placeholder(1),
		"DELETE FROM streams WHERE id = " + d.Placeholder(1),
	} {
		if _, err := db.conn.Exec(q, id); err != nil {
			return storeErr("delete stream", fmt.Sprintf("id=%d", id), err)
		}
	}
	return nil
}

// -- Filtered streams --

// GetFilteredStreams returns all filtered streams ordered by
// (stream_id, position).
func (db *store) GetFilteredStreams() ([]*model.FilteredStream, error) {
	pos := db.dialect.QuoteColumn("position")
	rows, err := db.conn.Query(
		"SELECT id, stream_id, name, filter, " + pos + ", notification, color, created_at, updated_at" +
			" FROM filtered_streams ORDER BY stream_id, " + pos)
	if err != nil {
		return nil, storeErr("select filtered_streams", "", err)
	}
	defer rows.Close()
	return scanFilteredStreams(rows)
}

// GetFilteredStreamsFor returns the filters owned by one stream, in position order.
func (db *store) GetFilteredStreamsFor(streamID int64) ([]*model.FilteredStream, error) {
	pos := db.dialect.QuoteColumn("position")
	rows, err := db.conn.Query(
		"SELECT id, stream_id, name, filter, "+pos+", notification, color, created_at, updated_at"+
			" FROM filtered_streams WHERE stream_id = "+db.dialect.Placeholder(1)+
			" ORDER BY "+pos, streamID)
	if err != nil {
		return nil, storeErr("select filtered_streams", fmt.Sprintf("stream_id=%d", streamID), err)
	}
	defer rows.Close()
	return scanFilteredStreams(rows)
}

// CreateFilteredStream inserts a new filter under the given stream at the end
// of the global position order.
func (db *store) CreateFilteredStream(streamID int64, name, filter, color string, notification int64) (*model.FilteredStream, error) {
	next, _, err := db.FilteredStreamSeed()
	if err != nil {
		return nil, err
	}
	pos, err := db.nextPosition()
	if err != nil {
		return nil, err
	}

	now := UTCNow()
	f := &model.FilteredStream{
		ID: next, StreamID: streamID, Name: name, Filter: filter,
		Position: pos, Notification: notification, Color: color,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := db.InsertFilteredStream(f); err != nil {
		return nil, err
	}
	return f, nil
}

// DeleteFilteredStream removes a single filter row.
func (db *store) DeleteFilteredStream(id int64) error {
	_, err := db.conn.Exec(
		"DELETE FROM filtered_streams WHERE id = "+db.dialect.Placeholder(1), id)
	return storeErr("delete filtered_stream", fmt.Sprintf("id=%d", id), err)
}

// -- Seeds and raw inserts --

// StreamSeed returns (max(id)+1, count(1)) for the streams table.
// An empty table yields a next id of 1.
func (db *store) StreamSeed() (next, count int64, err error) {
	return db.seed(db.dialect.StreamSeedSQL(), "streams seed")
}

// FilteredStreamSeed returns (max(id)+1, count(1)) for filtered_streams.
func (db *store) FilteredStreamSeed() (next, count int64, err error) {
	return db.seed(db.dialect.FilteredStreamSeedSQL(), "filtered_streams seed")
}

func (db *store) seed(query, op string) (next, count int64, err error) {
	var nullableNext sql.NullInt64
	if err := db.conn.QueryRow(query).Scan(&nullableNext, &count); err != nil {
		return 0, 0, storeErr(op, "", err)
	}
	next = nullableNext.Int64
	if next == 0 {
		next = 1
	}
	return next, count, nil
}

// nextPosition returns the append position: streams count + filters count.
func (db *store) nextPosition() (int64, error) {
	_, streamCount, err := db.StreamSeed()
	if err != nil {
		return 0, err
	}
	_, filterCount, err := db.FilteredStreamSeed()
	if err != nil {
		return 0, err
	}
	return streamCount + filterCount, nil
}

// InsertStream writes a stream row with its explicit id and position.
func (db *store) InsertStream(s *model.Stream) error {
	_, err := db.conn.Exec(db.dialect.InsertStreamSQL(),
		s.ID, s.Name, s.Queries, s.Position, s.Notification, s.Color,
		s.CreatedAt, s.UpdatedAt)
	return storeErr("insert stream", fmt.Sprintf("id=%d name=%q", s.ID, s.Name), err)
}

// InsertFilteredStream writes a filtered_streams row with its explicit id,
// parent id, and position.
func (db *store) InsertFilteredStream(f *model.FilteredStream) error {
	_, err := db.conn.Exec(db.dialect.InsertFilteredStreamSQL(),
		f.ID, f.StreamID, f.Name, f.Filter, f.Notification, f.Color,
		f.Position, f.CreatedAt, f.UpdatedAt)
	return storeErr("insert filtered_stream", fmt.Sprintf("id=%d name=%q", f.ID, f.Name), err)
}

// -- Issues --

// SaveIssue merges a normalized remote document into the issues table, keyed
// by remote identity, and records which stream it arrived through.
func (db *store) SaveIssue(issue *model.Issue, streamID int64) error {
	_, err := db.conn.Exec(db.dialect.UpsertIssueSQL(),
		issue.ID, issue.Number, issue.Type, issue.Title, issue.Body,
		issue.State, issue.Author, issue.Repo, issue.HTMLURL,
		boolToInt(issue.Private), boolToInt(issue.Draft),
		joinList(issue.Involves), joinList(issue.RequestedReviewers),
		issue.LastTimelineUser, issue.LastTimelineAt, joinList(issue.Projects),
		issue.CreatedAt, issue.UpdatedAt, issue.ClosedAt)
	if err != nil {
		return storeErr("upsert issue", fmt.Sprintf("id=%d %s#%d", issue.ID, issue.Repo, issue.Number), err)
	}

	_, err = db.conn.Exec(db.dialect.InsertStreamIssueSQL(), streamID, issue.ID)
	return storeErr("associate issue", fmt.Sprintf("stream_id=%d issue_id=%d", streamID, issue.ID), err)
}

// IssuesForStream returns the issues associated with a stream, newest first.
func (db *store) IssuesForStream(streamID int64, limit, offset int) ([]*model.Issue, error) {
	query := "SELECT " + issueColumns + " FROM issues" +
		" WHERE id IN (SELECT issue_id FROM streams_issues WHERE stream_id = " +
		db.dialect.Placeholder(1) + ") ORDER BY updated_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
	}

	rows, err := db.conn.Query(query, streamID)
	if err != nil {
		return nil, storeErr("select issues", fmt.Sprintf("stream_id=%d", streamID), err)
	}
	defer rows.Close()
	return scanIssues(rows)
}

// QueryIssues runs a filtered SELECT over the issues table.
// whereClause may be empty; it must use the dialect's placeholders.
func (db *store) QueryIssues(where string, args []interface{}, orderBy string, limit, offset int) ([]*model.Issue, error) {
	query := "SELECT " + issueColumns + " FROM issues"
	if where != "" {
		query += " WHERE " + where
	}
	if orderBy != "" {
		query += " ORDER BY " + orderBy
	}
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, storeErr("query issues", "", err)
	}
	defer rows.Close()
	return scanIssues(rows)
}

// CountIssues returns the number of issues, optionally filtered.
func (db *store) CountIssues(where string, args []interface{}) (int64, error) {
	query := "SELECT COUNT(id) FROM issues"
	if where != "" {
		query += " WHERE " + where
	}

	var count int64
	err := db.conn.QueryRow(query, args...).Scan(&count)
	return count, storeErr("count issues", "", err)
}

// UnreadCount returns how many unread issues a stream currently holds.
func (db *store) UnreadCount(streamID int64) (int64, error) {
	var count int64
	err := db.conn.QueryRow(
		"SELECT COUNT(id) FROM issues WHERE unread = 1 AND id IN"+
			" (SELECT issue_id FROM streams_issues WHERE stream_id = "+db.dialect.Placeholder(1)+")",
		streamID,
	).Scan(&count)
	return count, storeErr("count unread", fmt.Sprintf("stream_id=%d", streamID), err)
}

// MarkIssueRead sets or clears the unread flag on one issue.
func (db *store) MarkIssueRead(id int64, read bool) error {
	unread := int64(1)
	if read {
		unread = 0
	}
	_, err := db.conn.Exec(
		"UPDATE issues SET unread = "+db.dialect.Placeholder(1)+
			" WHERE id = "+db.dialect.Placeholder(2), unread, id)
	return storeErr("mark issue read", fmt.Sprintf("id=%d", id), err)
}

// -- Scan helpers --

func scanFilteredStreams(rows *sql.Rows) ([]*model.FilteredStream, error) {
	var filters []*model.FilteredStream
	for rows.Next() {
		f := &model.FilteredStream{}
		err := rows.Scan(&f.ID, &f.StreamID, &f.Name, &f.Filter, &f.Position,
			&f.Notification, &f.Color, &f.CreatedAt, &f.UpdatedAt)
		if err != nil {
			return nil, storeErr("scan filtered_stream", "", err)
		}
		filters = append(filters, f)
	}
	return filters, rows.Err()
}

func scanIssues(rows *sql.Rows) ([]*model.Issue, error) {
	var issues []*model.Issue
	for rows.Next() {
		i := &model.Issue{}
		var private, draft, unread int64
		var involves, reviewers, projects string
		err := rows.Scan(
			&i.ID, &i.Number, &i.Type, &i.Title, &i.Body, &i.State,
			&i.Author, &i.Repo, &i.HTMLURL, &private, &draft,
			&involves, &reviewers, &i.LastTimelineUser, &i.LastTimelineAt,
			&projects, &i.CreatedAt, &i.UpdatedAt, &i.ClosedAt, &unread,
		)
		if err != nil {
			return nil, storeErr("scan issue", "", err)
		}
		i.Private = private != 0
		i.Draft = draft != 0
		i.Unread = unread != 0
		i.Involves = splitList(involves)
		i.RequestedReviewers = splitList(reviewers)
		i.Projects = splitList(projects)
		issues = append(issues, i)
	}
	return issues, rows.Err()
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// joinList stores a list field as a comma-joined TEXT column.
func joinList(items []string) string {
	return strings.Join(items, ",")
}

func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
