package model

// Fields is the ordered list of column names in the issues table.
// Used for query building, field validation, and index management.
var Fields = []string{
	"number", "type", "title", "body", "state", "author", "repo",
	"html_url", "private", "draft", "involves", "requested_reviewers",
	"last_timeline_user", "last_timeline_at", "projects",
	"created_at", "updated_at", "closed_at", "unread",
}

// Issue is a single mirrored issue or pull request. Every field is concrete:
// the search client fills in defaults for anything the remote payload omits,
// so nothing downstream has to deal with optional values.
//
// List-valued fields (involves, requested_reviewers, projects) are stored as
// comma-joined TEXT columns.
type Issue struct {
	ID                 int64    `json:"id" db:"id"`
	Number             int64    `json:"number" db:"number"`
	Type               string   `json:"type" db:"type"`
	Title              string   `json:"title" db:"title"`
	Body               string   `json:"body" db:"body"`
	State              string   `json:"state" db:"state"`
	Author             string   `json:"author" db:"author"`
	Repo               string   `json:"repo" db:"repo"`
	HTMLURL            string   `json:"html_url" db:"html_url"`
	Private            bool     `json:"private" db:"private"`
	Draft              bool     `json:"draft" db:"draft"`
	Involves           []string `json:"involves" db:"involves"`
	RequestedReviewers []string `json:"requested_reviewers" db:"requested_reviewers"`
	LastTimelineUser   string   `json:"last_timeline_user" db:"last_timeline_user"`
	LastTimelineAt     string   `json:"last_timeline_at" db:"last_timeline_at"`
	Projects           []string `json:"projects" db:"projects"`
	CreatedAt          string   `json:"created_at" db:"created_at"`
	UpdatedAt          string   `json:"updated_at" db:"updated_at"`
	ClosedAt           string   `json:"closed_at" db:"closed_at"`
	Unread             bool     `json:"unread" db:"unread"`
}
