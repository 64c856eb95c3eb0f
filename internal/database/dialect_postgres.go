package database

import "fmt"

// pgQuoteCol wraps a column name in double quotes if it needs quoting under
// PostgreSQL. "position" collides with the standard SQL POSITION() function in
// some expression contexts, so it is always quoted. Non-reserved names are
// returned as-is so PostgreSQL folds them to lowercase consistently with
// unquoted DDL definitions.
func pgQuoteCol(name string) string {
	switch name {
	case "position":
		return `"` + name + `"`
	default:
		return name
	}
}

// PostgresDialect implements the Dialect interface for PostgreSQL databases.
type PostgresDialect struct{}

func (d *PostgresDialect) DriverName() string             { return "pgx" }
func (d *PostgresDialect) DSN(pathOrConnStr string) string { return pathOrConnStr }
func (d *PostgresDialect) Placeholder(index int) string    { return fmt.Sprintf("$%d", index) }
func (d *PostgresDialect) QuoteColumn(name string) string  { return pgQuoteCol(name) }

func (d *PostgresDialect) SchemaCheckColumnSQL(table, column string) string {
	return fmt.Sprintf(
		"SELECT COUNT(*) FROM information_schema.columns WHERE table_name='%s' AND column_name='%s'",
		table, column)
}

func (d *PostgresDialect) CreateStreamsTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS streams (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		queries TEXT NOT NULL,
		"position" BIGINT NOT NULL,
		notification BIGINT DEFAULT 1,
		color TEXT DEFAULT '',
		created_at TEXT, updated_at TEXT
	)`
}

func (d *PostgresDialect) CreateFilteredStreamsTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS filtered_streams (
		id BIGINT PRIMARY KEY,
		stream_id BIGINT NOT NULL,
		name TEXT NOT NULL,
		filter TEXT NOT NULL,
		"position" BIGINT NOT NULL,
		notification BIGINT DEFAULT 1,
		color TEXT DEFAULT '',
		created_at TEXT, updated_at TEXT
	)`
}

func (d *PostgresDialect) CreateIssuesTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS issues (
		id BIGINT PRIMARY KEY,
		number BIGINT, type TEXT, title TEXT, body TEXT,
		state TEXT, author TEXT, repo TEXT, html_url TEXT,
		private BIGINT DEFAULT 0, draft BIGINT DEFAULT 0,
		involves TEXT DEFAULT '', requested_reviewers TEXT DEFAULT '',
		last_timeline_user TEXT DEFAULT '', last_timeline_at TEXT DEFAULT '',
		projects TEXT DEFAULT '',
		created_at TEXT, updated_at TEXT, closed_at TEXT,
		unread BIGINT DEFAULT 1
	)`
}

func (d *PostgresDialect) CreateStreamsIssuesTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS streams_issues (
		stream_id BIGINT NOT NULL,
		issue_id BIGINT NOT NULL,
		PRIMARY KEY (stream_id, issue_id)
	)`
}

func (d *PostgresDialect) CreateIndexSQL(indexName, tableName, column string) string {
	return fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS %s ON %s (%s)", indexName, tableName, pgQuoteCol(column))
}

func (d *PostgresDialect) DropIndexSQL(indexName string) string {
	return fmt.Sprintf("DROP INDEX IF EXISTS %s", indexName)
}

func (d *PostgresDialect) InsertStreamSQL() string {
	return `INSERT INTO streams
		(id, name, queries, "position", notification, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
}

func (d *PostgresDialect) InsertFilteredStreamSQL() string {
	return `INSERT INTO filtered_streams
		(id, stream_id, name, filter, notification, color, "position", created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
}

func (d *PostgresDialect) UpsertIssueSQL() string {
	return `INSERT INTO issues (
		id, number, type, title, body, state, author, repo, html_url,
		private, draft, involves, requested_reviewers,
		last_timeline_user, last_timeline_at, projects,
		created_at, updated_at, closed_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
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

func (d *PostgresDialect) InsertStreamIssueSQL() string {
	return `INSERT INTO streams_issues (stream_id, issue_id) VALUES ($1, $2)
		ON CONFLICT (stream_id, issue_id) DO NOTHING`
}

func (d *PostgresDialect) StreamSeedSQL() string {
	return "SELECT max(id) + 1, count(1) FROM streams"
}

func (d *PostgresDialect) FilteredStreamSeedSQL() string {
	return "SELECT max(id) + 1, count(1) FROM filtered_streams"
}
