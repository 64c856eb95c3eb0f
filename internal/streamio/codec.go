// Package streamio serializes a user's entire set of streams and per-stream
// filters into a transport-neutral snapshot, and restores a snapshot into
// freshly allocated rows with recomputed ordering.
package streamio

import (
	"sync"

	"github.com/ghstream/ghstream/internal/database"
	"github.com/ghstream/ghstream/internal/model"
)

// Notifier receives the restart signal after a snapshot load completes, so
// dependent pollers re-read the full stream set. It fires exactly once per
// successful import and never on a partial or failed one.
type Notifier interface {
	RestartAllStreams()
}

// NotifierFunc adapts a plain function to the Notifier interface.
type NotifierFunc func()

func (f NotifierFunc) RestartAllStreams() { f() }

// StreamStore is the slice of the database layer the codec needs.
// database.Store satisfies it.
type StreamStore interface {
	GetStreams() ([]*model.Stream, error)
	GetFilteredStreams() ([]*model.FilteredStream, error)
	StreamSeed() (next, count int64, err error)
	FilteredStreamSeed() (next, count int64, err error)
	InsertStream(s *model.Stream) error
	InsertFilteredStream(f *model.FilteredStream) error
}

// SnapshotStream carries the reconstructable attributes of one stream.
// Identifiers and timestamps are intentionally absent: both are reassigned
// on import.
type SnapshotStream struct {
	Name         string `json:"name"`
	Queries      string `json:"queries"`
	Notification int64  `json:"notification"`
	Color        string `json:"color"`
}

// SnapshotFilter carries the reconstructable attributes of one filtered stream.
type SnapshotFilter struct {
	Name         string `json:"name"`
	Filter       string `json:"filter"`
	Notification int64  `json:"notification"`
	Color        string `json:"color"`
}

// Entry pairs one stream with its filters, in display order.
type Entry struct {
	Stream  SnapshotStream   `json:"stream"`
	Filters []SnapshotFilter `json:"filters"`
}

// Codec exports and imports stream snapshots against a Store. Imports are
// serialized behind a mutex: the max-id and count seeds must be read and
// acted on as one critical section, and two interleaved imports would hand
// out colliding identifiers.
type Codec struct {
	mu       sync.Mutex
	store    StreamStore
	notifier Notifier
}

// NewCodec creates a Codec. notifier may be nil when no poller needs the
// restart signal (e.g. in a standalone export).
func NewCodec(store StreamStore, notifier Notifier) *Codec {
	return &Codec{store: store, notifier: notifier}
}

// ExportAll reads every stream ordered by position and groups each stream's
// filters under it, ordered by (stream id, position). Pure read projection;
// the snapshot is sufficient to rebuild names, queries, colors, and
// notification flags, but not identifiers or timestamps.
func (c *Codec) ExportAll() ([]Entry, error) {
	streams, err := c.store.GetStreams()
	if err != nil {
		return nil, err
	}
	filters, err := c.store.GetFilteredStreams()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(streams))
	for _, stream := range streams {
		entry := Entry{
			Stream: SnapshotStream{
				Name:         stream.Name,
				Queries:      stream.Queries,
				Notification: stream.Notification,
				Color:        stream.Color,
			},
			Filters: []SnapshotFilter{},
		}
		for _, f := range filters {
			if f.StreamID == stream.ID {
				entry.Filters = append(entry.Filters, SnapshotFilter{
					Name:         f.Name,
					Filter:       f.Filter,
					Notification: f.Notification,
					Color:        f.Color,
				})
			}
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// ImportAll writes the snapshot into the store as fresh rows.
//
// New stream and filter ids continue after the current max of each table,
// and the shared position counter starts at the combined existing row count,
// so imported rows always append after the existing global order and never
// interleave into it. One timestamp is captured up front and applied to
// every row.
//
// Inserts are issued sequentially, not in a transaction: a failure leaves a
// partially imported but syntactically valid stream set, and the restart
// signal does not fire.
func (c *Codec) ImportAll(entries []Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	streamIndex, streamCount, err := c.store.StreamSeed()
	if err != nil {
		return err
	}
	filterIndex, filterCount, err := c.store.FilteredStreamSeed()
	if err != nil {
		return err
	}

	position := streamCount + filterCount
	now := database.UTCNow()

	for _, entry := range entries {
		err := c.store.InsertStream(&model.Stream{
			ID:           streamIndex,
			Name:         entry.Stream.Name,
			Queries:      entry.Stream.Queries,
			Position:     position,
			Notification: entry.Stream.Notification,
			Color:        entry.Stream.Color,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return err
		}
		position++

		for _, filter := range entry.Filters {
			err := c.store.InsertFilteredStream(&model.FilteredStream{
				ID:           filterIndex,
				StreamID:     streamIndex,
				Name:         filter.Name,
				Filter:       filter.Filter,
				Position:     position,
				Notification: filter.Notification,
				Color:        filter.Color,
				CreatedAt:    now,
				UpdatedAt:    now,
			})
			if err != nil {
				return err
			}
			filterIndex++
			position++
		}

		streamIndex++
	}

	if c.notifier != nil {
		c.notifier.RestartAllStreams()
	}
	return nil
}
