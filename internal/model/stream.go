package model

import "encoding/json"

// Stream is a saved top-level issue search shown as one scrollable list.
// Position orders streams and filtered streams together in a single global
// sequence, so a stream's filters sort immediately after it.
type Stream struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Queries      string `json:"queries" db:"queries"`
	Position     int64  `json:"position" db:"position"`
	Notification int64  `json:"notification" db:"notification"`
	Color        string `json:"color" db:"color"`
	CreatedAt    string `json:"created_at" db:"created_at"`
	UpdatedAt    string `json:"updated_at" db:"updated_at"`
}

// QueryList decodes the queries column, which stores a JSON array of search
// query strings. A value that is not a JSON array is treated as one plain
// query.
func (s *Stream) QueryList() []string {
	var queries []string
	if err := json.Unmarshal([]byte(s.Queries), &queries); err != nil {
		if s.Queries == "" {
			return nil
		}
		return []string{s.Queries}
	}
	return queries
}

// FilteredStream is a named sub-filter scoped to exactly one Stream.
// Its lifetime is bounded by the parent: deleting a stream removes its filters.
type FilteredStream struct {
	ID           int64  `json:"id" db:"id"`
	StreamID     int64  `json:"stream_id" db:"stream_id"`
	Name         string `json:"name" db:"name"`
	Filter       string `json:"filter" db:"filter"`
	Position     int64  `json:"position" db:"position"`
	Notification int64  `json:"notification" db:"notification"`
	Color        string `json:"color" db:"color"`
	CreatedAt    string `json:"created_at" db:"created_at"`
	UpdatedAt    string `json:"updated_at" db:"updated_at"`
}
