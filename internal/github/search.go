package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ghstream/ghstream/internal/model"
)

// MaxPerPage is the search API's per_page ceiling.
const MaxPerPage = 100

// SearchResult is one page of a date-bounded issue search.
type SearchResult struct {
	Issues     []*model.Issue
	TotalCount int
	RateLimit  RateLimit

	// LastDate is the updated_at date (YYYY-MM-DD) of the oldest document in
	// the page, used as the cursor for the next backward time window. Empty
	// when the page is empty, which means pagination must stop.
	LastDate string
}

// remoteUser is the wire shape of a user reference in a search payload.
type remoteUser struct {
	Login string `json:"login"`
}

// remoteIssue is the raw wire shape of one search result document. Fields
// that the search API omits are pointers or nil slices here; normalization
// turns them into concrete defaults.
type remoteIssue struct {
	ID                 int64        `json:"id"`
	Number             int64        `json:"number"`
	Title              string       `json:"title"`
	Body               string       `json:"body"`
	State              string       `json:"state"`
	HTMLURL            string       `json:"html_url"`
	RepositoryURL      string       `json:"repository_url"`
	User               remoteUser   `json:"user"`
	PullRequest        *struct{}    `json:"pull_request"`
	Private            *bool        `json:"private"`
	Draft              *bool        `json:"draft"`
	Involves           []remoteUser `json:"involves"`
	RequestedReviewers []remoteUser `json:"requested_reviewers"`
	CreatedAt          string       `json:"created_at"`
	UpdatedAt          string       `json:"updated_at"`
	ClosedAt           string       `json:"closed_at"`
}

type searchResponse struct {
	TotalCount int           `json:"total_count"`
	Items      []remoteIssue `json:"items"`
}

// SearchIssues fetches one page of the issue search for query.
//
// page is 1-based; perPage is clamped to MaxPerPage, with 0 meaning the
// maximum. A non-empty cursorDate (YYYY-MM-DD) narrows the query to
// documents updated on or before that date, which is how backward
// time-paging works around the remote's absolute result ceiling.
func (c *Client) SearchIssues(ctx context.Context, query string, page, perPage int, cursorDate string) (*SearchResult, error) {
	if err := c.guard.Check(); err != nil {
		return nil, err
	}

	if cursorDate != "" {
		query = query + " updated:<=" + cursorDate
	}
	if page < 1 {
		page = 1
	}
	if perPage <= 0 || perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	params := url.Values{
		"q":        {query},
		"per_page": {strconv.Itoa(perPage)},
		"page":     {strconv.Itoa(page)},
		"sort":     {"updated"},
		"order":    {"desc"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/search/issues?"+params.Encode(), nil)
	if err != nil {
		return nil, &RequestError{Query: query, Page: page, Cursor: cursorDate, Err: err}
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Query: query, Page: page, Cursor: cursorDate, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &RequestError{
			Query: query, Page: page, Cursor: cursorDate,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &RequestError{Query: query, Page: page, Cursor: cursorDate, Err: err}
	}

	result := &SearchResult{
		TotalCount: body.TotalCount,
		RateLimit:  parseRateLimit(resp.Header),
	}
	for _, item := range body.Items {
		result.Issues = append(result.Issues, normalizeIssue(item))
	}

	// The sort is updated desc, so the tail element is the oldest in the page.
	if n := len(body.Items); n > 0 {
		result.LastDate = cursorFromTimestamp(body.Items[n-1].UpdatedAt)
	}

	return result, nil
}

// normalizeIssue converts a wire document into a fully populated Issue.
// The defaulting is total: every absent-field combination yields the same
// concrete zero values, so nothing downstream deals with optionals.
// last_timeline_user, last_timeline_at, and projects are filled by a richer
// non-search API in a later stage and always start empty here.
func normalizeIssue(w remoteIssue) *model.Issue {
	issue := &model.Issue{
		ID:                 w.ID,
		Number:             w.Number,
		Type:               "issue",
		Title:              w.Title,
		Body:               w.Body,
		State:              w.State,
		Author:             w.User.Login,
		Repo:               repoFromURL(w.RepositoryURL),
		HTMLURL:            w.HTMLURL,
		Private:            w.Private != nil && *w.Private,
		Draft:              w.Draft != nil && *w.Draft,
		Involves:           loginList(w.Involves),
		RequestedReviewers: loginList(w.RequestedReviewers),
		LastTimelineUser:   "",
		LastTimelineAt:     "",
		Projects:           []string{},
		CreatedAt:          w.CreatedAt,
		UpdatedAt:          w.UpdatedAt,
		ClosedAt:           w.ClosedAt,
	}
	if w.PullRequest != nil {
		issue.Type = "pr"
	}
	return issue
}

func loginList(users []remoteUser) []string {
	logins := make([]string, 0, len(users))
	for _, u := range users {
		logins = append(logins, u.Login)
	}
	return logins
}

// repoFromURL extracts "owner/name" from a repository_url like
// "https://api.github.com/repos/owner/name".
func repoFromURL(repositoryURL string) string {
	_, after, found := strings.Cut(repositoryURL, "/repos/")
	if !found {
		return ""
	}
	return after
}

// cursorFromTimestamp formats an RFC 3339 updated_at as the YYYY-MM-DD
// cursor date. An unparseable timestamp yields an empty cursor, which stops
// pagination.
func cursorFromTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}
