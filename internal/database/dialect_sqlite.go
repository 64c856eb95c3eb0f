package database

import "fmt"

// SQLiteDialect implements the Dialect interface for SQLite databases.
type SQLiteDialect struct{}

func (d *SQLiteDialect) DriverName() string             { return "sqlite" }
func (d *SQLiteDialect) DSN(pathOrConnStr string) string { return pathOrConnStr }
func (d *SQLiteDialect) Placeholder(index int) string    { return "?" }
func (d *SQLiteDialect) QuoteColumn(name string) string  { return name }

func (d *SQLiteDialect) SchemaCheckColumnSQL(table, column string) string {
	return fmt.Sprintf(
		"SELECT COUNT(*) FROM pragma_table_info('%s') WHERE name='%s'", table, column)
}

func (d *SQLiteDialect) CreateStreamsTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS streams (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		queries TEXT NOT NULL,
		position INTEGER NOT NULL,
		notification INTEGER DEFAULT 1,
		color TEXT DEFAULT '',
		created_at TEXT, updated_at TEXT
	)`
}

func (d *SQLiteDialect) CreateFilteredStreamsTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS filtered_streams (
		id INTEGER PRIMARY KEY,
		stream_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		filter TEXT NOT NULL,
		position INTEGER NOT NULL,
		notification INTEGER DEFAULT 1,
		color TEXT DEFAULT '',
		created_at TEXT, updated_at TEXT
	)`
}

func (d *SQLiteDialect) CreateIssuesTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS issues (
		id INTEGER PRIMARY KEY,
		number INTEGER, type TEXT, title TEXT, body TEXT,
		state TEXT, author TEXT, repo TEXT, html_url TEXT,
		private INTEGER DEFAULT 0, draft INTEGER DEFAULT 0,
		involves TEXT DEFAULT '', requested_reviewers TEXT DEFAULT '',
		last_timeline_user TEXT DEFAULT '', last_timeline_at TEXT DEFAULT '',
		projects TEXT DEFAULT '',
		created_at TEXT, updated_at TEXT, closed_at TEXT,
		unread INTEGER DEFAULT 1
	)`
}

func (d *SQLiteDialect) CreateStreamsIssuesTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS streams_issues (
		stream_id INTEGER NOT NULL,
		issue_id INTEGER NOT NULL,
		PRIMARY KEY (stream_id, issue_id)
	)`
}

func (d *SQLiteDialect) CreateIndexSQL(indexName, tableName, column string) string {
	return fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS %s ON %s (%s)", indexName, tableName, column)
}

func (d *SQLiteDialect) DropIndexSQL(indexName string) string {
	return fmt.Sprintf("DROP INDEX IF EXISTS %s", indexName)
}

func (d *SQLiteDialect) InsertStreamSQL() string {
	return `INSERT INTO streams
		(id, name, queries, position, notification, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
}

func (d *SQLiteDialect) InsertFilteredStreamSQL() string {
	return `INSERT INTO filtered_streams
		(id, stream_id, name, filter, notification, color, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
}

func (d *SQLiteDialect) UpsertIssueSQL() string {
	return `INSERT INTO issues (
		id, number, type, title, body, state, author, repo, html_url,
		private, draft, involves, requested_reviewers,
		last_timeline_user, last_timeline_at, projects,
		created_at, updated_at, closed_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		number = excluded.number, type = excluded.type,
		title = excluded.title, body = excluded.body,
		state = excluded.state, author = excluded.author,
		repo = excluded.repo, html_url = excluded.html_url,
		private = excluded.private, draft = excluded.draft,
		involves = excluded.involves,
		requested_reviewers = excluded.requested_reviewers,
		created_at = excluded.created_at, updated_at = excluded.updated_at,
		closed_at = excluded.closed_at,
		unread = CASE WHEN issues.updated_at <> excluded.updated_at
			THEN 1 ELSE issues.unread END`
}

func (d *SQLiteDialect) InsertStreamIssueSQL() string {
	return `INSERT INTO streams_issues (stream_id, issue_id) VALUES (?, ?)
		ON CONFLICT(stream_id, issue_id) DO NOTHING`
}

func (d *SQLiteDialect) StreamSeedSQL() string {
	return "SELECT max(id) + 1, count(1) FROM streams"
}

func (d *SQLiteDialect) FilteredStreamSeedSQL() string {
	return "SELECT max(id) + 1, count(1) FROM filtered_streams"
}
