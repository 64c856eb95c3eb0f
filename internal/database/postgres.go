package database

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore manages all PostgreSQL operations for a ghstream database.
// It implements the Store interface.
type PostgresStore struct {
	store
}

// OpenPostgres opens an existing ghstream PostgreSQL database.
func OpenPostgres(connStr string) (*PostgresStore, error) {
	d := &PostgresDialect{}

	conn, err := sql.Open(d.DriverName(), d.DSN(connStr))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	db := &PostgresStore{store{path: connStr, conn: conn, dialect: d}}
	db.migrate()

	return db, nil
}

// CreatePostgres creates the ghstream schema on a PostgreSQL database.
// The database itself must already exist; this creates the tables and indexes.
func CreatePostgres(connStr string, indexFields []string) (*PostgresStore, error) {
	d := &PostgresDialect{}

	conn, err := sql.Open(d.DriverName(), d.DSN(connStr))
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	db := &PostgresStore{store{path: connStr, conn: conn, dialect: d}}

	if err := db.createSchema(indexFields); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return db, nil
}
