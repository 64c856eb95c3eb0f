package database

import "fmt"

// StoreError wraps a constraint violation or connectivity failure during a
// read or write, keeping enough context to identify the offending operation
// and row. A write that fails mid-import leaves the tables in their current
// partial state; there is no automatic rollback.
type StoreError struct {
	Op  string // e.g. "insert stream", "upsert issue"
	Row string // human-readable identity of the affected row, may be empty
	Err error
}

func (e *StoreError) Error() string {
	if e.Row != "" {
		return fmt.Sprintf("store: %s (%s): %v", e.Op, e.Row, e.Err)
	}
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// storeErr wraps err in a *StoreError unless it is nil.
func storeErr(op, row string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Row: row, Err: err}
}
