package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ghstream/ghstream/internal/config"
	"github.com/ghstream/ghstream/internal/database"
	"github.com/ghstream/ghstream/internal/filter"
	"github.com/ghstream/ghstream/internal/github"
	"github.com/ghstream/ghstream/internal/model"
	"github.com/ghstream/ghstream/internal/report"
	"github.com/ghstream/ghstream/internal/streamio"
	"github.com/ghstream/ghstream/internal/sync"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// App is the main application struct that Wails binds to the frontend.
// All exported methods become callable from JavaScript.
type App struct {
	ctx    context.Context
	config *config.Config
	db     database.Store
	driver *sync.Driver
	codec  *streamio.Codec
}

// NewApp creates a new App instance.
func NewApp() *App {
	return &App{}
}

// startup is called when the app starts. The context is saved
// so we can call runtime methods (dialogs, events, etc.)
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	a.config = config.Load()

	db, err := openOrCreateStore(a.config)
	if err != nil {
		slog.Error("opening store failed", "driver", a.config.DBDriver, "error", err)
		runtime.EventsEmit(ctx, "app:fatal", err.Error())
		return
	}
	a.db = db

	client := github.NewClient(a.config.APIURL, a.config.GithubToken)
	a.driver = sync.New(client, db, a.config.PerPage, slog.Default())

	// A finished snapshot import restarts every stream poller.
	a.codec = streamio.NewCodec(db, streamio.NotifierFunc(func() {
		runtime.EventsEmit(a.ctx, "streams:restart")
	}))
}

// shutdown is called when the app is closing.
func (a *App) shutdown(ctx context.Context) {
	if a.db != nil {
		a.db.Close()
	}
}

// openOrCreateStore opens the configured database, creating the schema on
// first launch. The SQLite file lives in the ghstream home directory.
func openOrCreateStore(cfg *config.Config) (database.Store, error) {
	if cfg.DBDriver == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating home directory: %w", err)
		}
		if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
			return database.CreateStore(cfg.DBDriver, cfg.DBPath, nil)
		}
	}
	return database.OpenStore(cfg.DBDriver, cfg.DBPath)
}

// -- Streams --

// StreamInfo bundles a stream with its filters and unread count for the
// sidebar.
type StreamInfo struct {
	Stream      *model.Stream           `json:"stream"`
	Filters     []*model.FilteredStream `json:"filters"`
	UnreadCount int64                   `json:"unreadCount"`
}

// GetStreams returns every stream in display order, each with its filters.
func (a *App) GetStreams() ([]*StreamInfo, error) {
	if a.db == nil {
		return nil, fmt.Errorf("no database open")
	}

	streams, err := a.db.GetStreams()
	if err != nil {
		return nil, err
	}
	filters, err := a.db.GetFilteredStreams()
	if err != nil {
		return nil, err
	}

	infos := make([]*StreamInfo, 0, len(streams))
	for _, s := range streams {
		info := &StreamInfo{Stream: s, Filters: []*model.FilteredStream{}}
		for _, f := range filters {
			if f.StreamID == s.ID {
				info.Filters = append(info.Filters, f)
			}
		}
		if info.UnreadCount, err = a.db.UnreadCount(s.ID); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// CreateStream saves a new stream at the end of the sidebar order.
func (a *App) CreateStream(name, queries, color string, notification bool) (*model.Stream, error) {
	if a.db == nil {
		return nil, fmt.Errorf("no database open")
	}
	return a.db.CreateStream(name, queries, color, notificationFlag(notification))
}

// UpdateStream rewrites a stream's name, queries, color, and notification flag.
func (a *App) UpdateStream(s model.Stream) error {
	if a.db == nil {
		return fmt.Errorf("no database open")
	}
	return a.db.UpdateStream(&s)
}

// DeleteStream removes a stream together with its filters and associations.
func (a *App) DeleteStream(id int64) error {
	if a.db == nil {
		return fmt.Errorf("no database open")
	}
	return a.db.DeleteStream(id)
}

// CreateFilteredStream saves a new filter under a stream.
func (a *App) CreateFilteredStream(streamID int64, name, filterExpr, color string, notification bool) (*model.FilteredStream, error) {
	if a.db == nil {
		return nil, fmt.Errorf("no database open")
	}
	return a.db.CreateFilteredStream(streamID, name, filterExpr, color, notificationFlag(notification))
}

// DeleteFilteredStream removes a single filter.
func (a *App) DeleteFilteredStream(id int64) error {
	if a.db == nil {
		return fmt.Errorf("no database open")
	}
	return a.db.DeleteFilteredStream(id)
}

func notificationFlag(on bool) int64 {
	if on {
		return 1
	}
	return 0
}

// -- Issues --

// GetStreamIssues returns one page of a stream's issues, newest first.
func (a *App) GetStreamIssues(streamID int64, page, pageSize int) ([]*model.Issue, error) {
	if a.db == nil {
		return nil, fmt.Errorf("no database open")
	}
	if pageSize <= 0 {
		pageSize = 100
	}
	if page < 1 {
		page = 1
	}
	return a.db.IssuesForStream(streamID, pageSize, pageSize*(page-1))
}

// GetFilteredStreamIssues returns one page of a filter's issues: the parent
// stream's issues narrowed by the filter expression.
func (a *App) GetFilteredStreamIssues(filteredStreamID int64, page, pageSize int) ([]*model.Issue, error) {
	if a.db == nil {
		return nil, fmt.Errorf("no database open")
	}
	if pageSize <= 0 {
		pageSize = 100
	}
	if page < 1 {
		page = 1
	}

	var target *model.FilteredStream
	filters, err := a.db.GetFilteredStreams()
	if err != nil {
		return nil, err
	}
	for _, f := range filters {
		if f.ID == filteredStreamID {
			target = f
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("no such filtered stream: %d", filteredStreamID)
	}

	where := "id IN (SELECT issue_id FROM streams_issues WHERE stream_id = ?)"
	args := []interface{}{target.StreamID}

	if pred := filter.Parse(target.Filter); pred != nil {
		filterSQL, filterArgs := pred.WhereClause()
		where += " AND " + filterSQL
		args = append(args, filterArgs...)
	}

	return a.db.QueryIssues(where, args, "updated_at DESC", pageSize, pageSize*(page-1))
}

// MarkIssueRead sets or clears the unread flag on one issue.
func (a *App) MarkIssueRead(id int64, read bool) error {
	if a.db == nil {
		return fmt.Errorf("no database open")
	}
	return a.db.MarkIssueRead(id, read)
}

// -- Sync --

// SyncStream pulls the remote search results for one stream into the mirror.
func (a *App) SyncStream(streamID int64) (*sync.Result, error) {
	if a.db == nil {
		return nil, fmt.Errorf("no database open")
	}

	stream, err := a.db.GetStream(streamID)
	if err != nil {
		return nil, err
	}

	runtime.EventsEmit(a.ctx, "sync:progress", map[string]interface{}{
		"phase": "running", "stream": stream.Name,
	})

	res, err := a.driver.SyncStream(a.ctx, stream)
	if err != nil {
		runtime.EventsEmit(a.ctx, "sync:progress", map[string]interface{}{
			"phase": "failed", "stream": stream.Name, "message": err.Error(),
		})
		return nil, err
	}

	runtime.EventsEmit(a.ctx, "sync:progress", map[string]interface{}{
		"phase": "done", "stream": stream.Name, "saved": res.Saved,
	})
	return res, nil
}

// SyncAll syncs every stream in display order. The first failure stops the
// run; retry policy belongs to the poller in the frontend.
func (a *App) SyncAll() error {
	if a.db == nil {
		return fmt.Errorf("no database open")
	}

	streams, err := a.db.GetStreams()
	if err != nil {
		return err
	}
	for _, stream := range streams {
		if _, err := a.SyncStream(stream.ID); err != nil {
			return err
		}
	}
	return nil
}

// -- Snapshot export/import --

// ExportStreams saves all streams and filters to a JSON snapshot file.
func (a *App) ExportStreams() (string, error) {
	if a.db == nil {
		return "", fmt.Errorf("no database open")
	}

	savePath, err := runtime.SaveFileDialog(a.ctx, runtime.SaveDialogOptions{
		Title:           "Export Streams",
		DefaultFilename: "streams.json",
		Filters: []runtime.FileFilter{
			{DisplayName: "JSON Files (*.json)", Pattern: "*.json"},
		},
	})
	if err != nil {
		return "", err
	}
	if savePath == "" {
		return "", nil // user cancelled
	}

	entries, err := a.codec.ExportAll()
	if err != nil {
		return "", fmt.Errorf("exporting streams: %w", err)
	}
	if err := streamio.WriteSnapshot(savePath, entries); err != nil {
		return "", err
	}

	return fmt.Sprintf("Exported %d streams to %s", len(entries), savePath), nil
}

// ImportStreams loads a JSON snapshot file, appending its streams after the
// existing ones. A successful import emits streams:restart.
func (a *App) ImportStreams() (string, error) {
	if a.db == nil {
		return "", fmt.Errorf("no database open")
	}

	openPath, err := runtime.OpenFileDialog(a.ctx, runtime.OpenDialogOptions{
		Title: "Import Streams",
		Filters: []runtime.FileFilter{
			{DisplayName: "JSON Files (*.json)", Pattern: "*.json"},
			{DisplayName: "All Files (*.*)", Pattern: "*.*"},
		},
	})
	if err != nil {
		return "", err
	}
	if openPath == "" {
		return "", nil
	}

	entries, err := streamio.ReadSnapshot(openPath)
	if err != nil {
		return "", fmt.Errorf("invalid snapshot file: %w", err)
	}
	if err := a.codec.ImportAll(entries); err != nil {
		return "", fmt.Errorf("importing streams: %w", err)
	}

	return fmt.Sprintf("Imported %d streams from %s", len(entries), openPath), nil
}

// ExportStreamCSV writes one stream's issues to a CSV file picked by the user.
func (a *App) ExportStreamCSV(streamID int64) (string, error) {
	if a.db == nil {
		return "", fmt.Errorf("no database open")
	}

	stream, err := a.db.GetStream(streamID)
	if err != nil {
		return "", err
	}

	savePath, err := runtime.SaveFileDialog(a.ctx, runtime.SaveDialogOptions{
		Title:           "Export Issues",
		DefaultFilename: stream.Name + ".csv",
		Filters: []runtime.FileFilter{
			{DisplayName: "CSV Files (*.csv)", Pattern: "*.csv"},
		},
	})
	if err != nil {
		return "", err
	}
	if savePath == "" {
		return "", nil
	}

	issues, err := a.db.IssuesForStream(streamID, 0, 0)
	if err != nil {
		return "", err
	}
	if err := report.WriteIssuesCSV(savePath, issues); err != nil {
		return "", err
	}

	return fmt.Sprintf("Exported %d issues to %s", len(issues), savePath), nil
}

// -- Internal helpers --

// GetVersion returns the application version string.
func (a *App) GetVersion() string {
	return Version
}
