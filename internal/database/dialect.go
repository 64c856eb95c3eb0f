package database

// Dialect abstracts all database-specific SQL generation.
// Each database backend (SQLite, PostgreSQL, etc.) implements this interface.
type Dialect interface {
	// DriverName returns the database/sql driver name (e.g. "sqlite", "pgx").
	DriverName() string

	// DSN returns the data source name for opening a connection.
	// For SQLite this is the file path; for PostgreSQL it is a connection string.
	DSN(pathOrConnStr string) string

	// Placeholder returns the parameter placeholder for the given 1-based index.
	// SQLite: "?" (ignoring index), PostgreSQL: "$1", "$2", etc.
	Placeholder(index int) string

	// QuoteColumn returns the column name quoted appropriately for the dialect.
	// SQLite returns the name unchanged. PostgreSQL wraps reserved words in
	// double quotes.
	QuoteColumn(name string) string

	// SchemaCheckColumnSQL returns a SQL query that counts how many times a column
	// appears in a table's schema. Used for migration checks.
	// SQLite queries pragma_table_info; PostgreSQL queries information_schema.
	SchemaCheckColumnSQL(table, column string) string

	// CreateStreamsTableSQL returns the DDL for the streams table.
	CreateStreamsTableSQL() string

	// CreateFilteredStreamsTableSQL returns the DDL for the filtered_streams table.
	CreateFilteredStreamsTableSQL() string

	// CreateIssuesTableSQL returns the DDL for the mirrored issues table.
	CreateIssuesTableSQL() string

	// CreateStreamsIssuesTableSQL returns the DDL for the stream/issue
	// association table.
	CreateStreamsIssuesTableSQL() string

	// CreateIndexSQL returns DDL to create an index on a table column.
	CreateIndexSQL(indexName, tableName, column string) string

	// DropIndexSQL returns DDL to drop an index by name.
	DropIndexSQL(indexName string) string

	// InsertStreamSQL returns the parameterized INSERT for a stream row with an
	// explicit id and position.
	InsertStreamSQL() string

	// InsertFilteredStreamSQL returns the parameterized INSERT for a
	// filtered_streams row with an explicit id, parent id, and position.
	InsertFilteredStreamSQL() string

	// UpsertIssueSQL returns the INSERT ... ON CONFLICT statement that merges a
	// remote issue into the issues table, keyed by its remote identifier. The
	// unread flag flips to 1 only when the remote updated_at moved.
	UpsertIssueSQL() string

	// InsertStreamIssueSQL returns the idempotent INSERT for the
	// streams_issues association table.
	InsertStreamIssueSQL() string

	// StreamSeedSQL returns the query producing (max(id)+1, count(1)) for the
	// streams table.
	StreamSeedSQL() string

	// FilteredStreamSeedSQL is the same seed query for filtered_streams.
	FilteredStreamSeedSQL() string
}
