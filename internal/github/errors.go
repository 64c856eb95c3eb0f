package github

import "fmt"

// RateAbuseError reports an abnormally tight burst of search calls: ten
// consecutive calls each under a second apart. It signals a programming
// defect in the calling poller, not a retryable condition; the caller must
// stop issuing further calls.
type RateAbuseError struct {
	Count int
}

func (e *RateAbuseError) Error() string {
	return fmt.Sprintf("over excess calling search api (%d calls under 1s apart)", e.Count)
}

// RequestError wraps a transport, HTTP, or remote-side failure from the
// search endpoint, carrying enough context for logging. Retry and backoff
// policy belong to the caller.
type RequestError struct {
	Query  string
	Page   int
	Cursor string
	Status int // HTTP status, 0 when the request never completed
	Err    error
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("search request failed (status %d, query %q, page %d): %v",
			e.Status, e.Query, e.Page, e.Err)
	}
	return fmt.Sprintf("search request failed (query %q, page %d): %v", e.Query, e.Page, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }
