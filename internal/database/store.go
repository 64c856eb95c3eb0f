package database

import (
	"database/sql"

	"github.com/ghstream/ghstream/internal/model"
)

// Store defines the interface for all database operations.
// Every method that the application needs is captured here so that
// app.go depends on the interface, not on a concrete database type.
type Store interface {
	// Streams, ordered by their global position.
	GetStreams() ([]*model.Stream, error)
	GetStream(id int64) (*model.Stream, error)
	CreateStream(name, queries, color string, notification int64) (*model.Stream, error)
	UpdateStream(s *model.Stream) error
	DeleteStream(id int64) error

	// Filtered streams, ordered by (stream_id, position).
	GetFilteredStreams() ([]*model.FilteredStream, error)
	GetFilteredStreamsFor(streamID int64) ([]*model.FilteredStream, error)
	CreateFilteredStream(streamID int64, name, filter, color string, notification int64) (*model.FilteredStream, error)
	DeleteFilteredStream(id int64) error

	// Identifier and position seeds plus raw inserts, used by the snapshot
	// codec which allocates ids and positions itself.
	StreamSeed() (next, count int64, err error)
	FilteredStreamSeed() (next, count int64, err error)
	InsertStream(s *model.Stream) error
	InsertFilteredStream(f *model.FilteredStream) error

	// Mirrored issues. SaveIssue upserts by remote id and records the
	// stream association.
	SaveIssue(issue *model.Issue, streamID int64) error
	IssuesForStream(streamID int64, limit, offset int) ([]*model.Issue, error)
	QueryIssues(where string, args []interface{}, orderBy string, limit, offset int) ([]*model.Issue, error)
	CountIssues(where string, args []interface{}) (int64, error)
	UnreadCount(streamID int64) (int64, error)
	MarkIssueRead(id int64, read bool) error

	// Lifecycle
	Migrate() error
	Close() error
	Path() string
	Conn() *sql.DB
}
