// Package sync drives the backward, date-bounded pagination of the issue
// search API and merges the results into the local store.
package sync

import (
	"context"
	"log/slog"

	"github.com/ghstream/ghstream/internal/github"
	"github.com/ghstream/ghstream/internal/model"
)

// MaxSearchPages is the per-query page ceiling. The remote search endpoint
// caps any single query at 1000 results, i.e. 10 pages of 100; past that the
// driver narrows the time window with a date cursor and starts over at page 1.
const MaxSearchPages = 10

// Pager fetches one page of a date-bounded issue search.
// *github.Client satisfies this.
type Pager interface {
	SearchIssues(ctx context.Context, query string, page, perPage int, cursorDate string) (*github.SearchResult, error)
}

// IssueSink receives normalized documents. database.Store satisfies this.
type IssueSink interface {
	SaveIssue(issue *model.Issue, streamID int64) error
}

// state is the driver's position in the pagination state machine.
type state int

const (
	statePaging state = iota
	stateWindowExhausted
	stateDone
	stateFailed
)

// Driver repeatedly calls the pager until a stream's query is exhausted.
// It applies no retry policy of its own: rate-abuse, remote, and store
// errors surface to the caller unchanged.
type Driver struct {
	pager   Pager
	sink    IssueSink
	perPage int
	logger  *slog.Logger
}

// Result summarizes one completed sync run.
type Result struct {
	Saved     int              `json:"saved"`
	Pages     int              `json:"pages"`
	RateLimit github.RateLimit `json:"rateLimit"`
}

// New creates a Driver. perPage <= 0 selects the API maximum.
// Pass nil for logger to use slog's default.
func New(pager Pager, sink IssueSink, perPage int, logger *slog.Logger) *Driver {
	if perPage <= 0 || perPage > github.MaxPerPage {
		perPage = github.MaxPerPage
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{pager: pager, sink: sink, perPage: perPage, logger: logger}
}

// SyncQuery pages backward through one search query, merging every document
// into the sink under the given stream. It terminates when a page comes back
// empty or without a cursor date, and honors ctx cancellation between and
// during page fetches.
func (d *Driver) SyncQuery(ctx context.Context, streamID int64, query string) (*Result, error) {
	result := &Result{}
	page := 1
	cursor := ""

	st := statePaging
	for st == statePaging || st == stateWindowExhausted {
		if st == stateWindowExhausted {
			// Narrow the time window and start the page count over.
			page = 1
			st = statePaging
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := d.pager.SearchIssues(ctx, query, page, d.perPage, cursor)
		if err != nil {
			st = stateFailed
			d.logger.Error("sync page failed",
				"stream", streamID, "page", page, "cursor", cursor, "error", err)
			return nil, err
		}

		result.Pages++
		result.RateLimit = res.RateLimit

		if len(res.Issues) == 0 || res.LastDate == "" {
			st = stateDone
			break
		}

		for _, issue := range res.Issues {
			if err := d.sink.SaveIssue(issue, streamID); err != nil {
				st = stateFailed
				return nil, err
			}
			result.Saved++
		}

		d.logger.Debug("sync page merged",
			"stream", streamID, "page", page, "saved", len(res.Issues),
			"total", res.TotalCount, "last_date", res.LastDate)

		switch {
		case res.TotalCount <= page*d.perPage:
			st = stateDone
		case page >= MaxSearchPages:
			cursor = res.LastDate
			st = stateWindowExhausted
		default:
			page++
		}
	}

	return result, nil
}

// SyncStream runs SyncQuery for each of the stream's saved queries,
// accumulating the results.
func (d *Driver) SyncStream(ctx context.Context, stream *model.Stream) (*Result, error) {
	total := &Result{}
	for _, query := range stream.QueryList() {
		res, err := d.SyncQuery(ctx, stream.ID, query)
		if err != nil {
			return nil, err
		}
		total.Saved += res.Saved
		total.Pages += res.Pages
		total.RateLimit = res.RateLimit
	}
	return total, nil
}
