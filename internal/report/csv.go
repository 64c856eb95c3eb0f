// Package report writes issue lists to files for use outside the app.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/ghstream/ghstream/internal/model"
)

// Export header for writing issues to CSV.
var exportHeader = []string{
	"number", "type", "title", "state", "author", "repo", "html_url",
	"private", "draft", "involves", "requested_reviewers",
	"created_at", "updated_at", "closed_at", "unread",
}

// WriteIssuesCSV writes issues to a CSV file, one row per issue.
// List fields are joined with spaces so spreadsheet tools keep them in one
// cell without quoting surprises.
func WriteIssuesCSV(path string, issues []*model.Issue) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, issue := range issues {
		row := []string{
			fmt.Sprintf("%d", issue.Number),
			issue.Type,
			issue.Title,
			issue.State,
			issue.Author,
			issue.Repo,
			issue.HTMLURL,
			boolString(issue.Private),
			boolString(issue.Draft),
			strings.Join(issue.Involves, " "),
			strings.Join(issue.RequestedReviewers, " "),
			issue.CreatedAt,
			issue.UpdatedAt,
			issue.ClosedAt,
			boolString(issue.Unread),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	return nil
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
