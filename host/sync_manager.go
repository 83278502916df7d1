// Package host drives the connector the way a hosting platform would: it runs
// paginated syncs into a store and persists the continuation between pages.
package host

import (
	"context"
	"errors"
	"fmt"
	"log"

	"sproutsync/sprout"
	"sproutsync/storage"
)

// VideosTable is the sync-state key for the Videos table.
const VideosTable = "videos"

// VideoSyncer fetches one page of the Videos sync table.
type VideoSyncer interface {
	SyncVideos(ctx context.Context, cont *sprout.Continuation, opts *sprout.SyncOptions) (*sprout.SyncPage, error)
}

// SyncManager runs sync passes of the Videos table into a store.
// The continuation is persisted after every page so an interrupted run can
// resume where it stopped.
type SyncManager struct {
	client   VideoSyncer
	store    storage.Store
	maxPages int
}

// SyncManagerOption configures a SyncManager.
type SyncManagerOption func(*SyncManager)

// WithMaxPages caps the pages fetched per run when RunOptions.MaxPages is zero.
// Zero means no cap.
func WithMaxPages(n int) SyncManagerOption {
	return func(sm *SyncManager) { sm.maxPages = n }
}

// NewSyncManager creates a sync manager.
func NewSyncManager(client VideoSyncer, store storage.Store, opts ...SyncManagerOption) *SyncManager {
	sm := &SyncManager{
		client: client,
		store:  store,
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

// RunOptions controls a single sync run.
type RunOptions struct {
	// MaxPages stops the run after this many pages, leaving it resumable.
	// Zero falls back to the manager default.
	MaxPages int
	// StartFrom is passed to the first page of a fresh run.
	StartFrom int
	// Reset discards any resumable state and starts from the newest video.
	Reset bool
}

// RunResult contains the outcome of a sync run.
type RunResult struct {
	// RunID identifies the run. A resumed run keeps its original ID.
	RunID string `json:"runId"`
	// Pages is the number of pages fetched by this call.
	Pages int `json:"pages"`
	// Rows is the number of rows written by this call.
	Rows int `json:"rows"`
	// Resumed is true if the run continued from a stored continuation.
	Resumed bool `json:"resumed"`
	// Complete is true once the listing is exhausted.
	Complete bool `json:"complete"`
}

// Run fetches pages until the listing is exhausted or the page cap is hit.
func (sm *SyncManager) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	state, err := sm.store.GetSyncState(ctx, VideosTable)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("get sync state: %w", err)
	}
	if state == nil {
		state = storage.NewSyncState(VideosTable)
	}

	result := &RunResult{}
	var syncOpts *sprout.SyncOptions
	if state.CanResume() && !opts.Reset {
		log.Printf("sproutsync: resuming run %s from %s", state.RunID, state.Continuation.NextPageEndpoint)
		state.ResumeSync()
		result.Resumed = true
	} else {
		state.StartSync()
		if opts.StartFrom > 0 {
			syncOpts = &sprout.SyncOptions{StartFrom: opts.StartFrom}
		}
	}
	result.RunID = state.RunID

	if err := sm.store.UpdateSyncState(ctx, state); err != nil {
		return nil, fmt.Errorf("persist sync state: %w", err)
	}

	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = sm.maxPages
	}

	for {
		if maxPages > 0 && result.Pages >= maxPages {
			log.Printf("sproutsync: run %s paused after %d pages", state.RunID, result.Pages)
			return result, nil
		}

		page, err := sm.client.SyncVideos(ctx, state.Continuation, syncOpts)
		if err != nil {
			return result, sm.fail(ctx, state, err)
		}
		syncOpts = nil

		if err := sm.store.UpsertVideos(ctx, page.Videos); err != nil {
			return result, sm.fail(ctx, state, err)
		}

		state.RecordPage(page.Continuation, len(page.Videos))
		result.Pages++
		result.Rows += len(page.Videos)

		if page.Continuation == nil {
			state.CompleteSync()
			result.Complete = true
		}
		if err := sm.store.UpdateSyncState(ctx, state); err != nil {
			return result, fmt.Errorf("persist sync state: %w", err)
		}
		if result.Complete {
			log.Printf("sproutsync: run %s complete: %d pages, %d rows", state.RunID, state.PagesFetched, state.RowsSynced)
			return result, nil
		}
	}
}

// fail records err on the state, keeping the continuation for a later resume.
func (sm *SyncManager) fail(ctx context.Context, state *storage.SyncState, err error) error {
	state.FailSync(err.Error())
	if perr := sm.store.UpdateSyncState(ctx, state); perr != nil {
		log.Printf("sproutsync: failed to persist error state: %v", perr)
	}
	return fmt.Errorf("sync run %s: %w", state.RunID, err)
}

// Status returns the stored sync state of the Videos table.
func (sm *SyncManager) Status(ctx context.Context) (*storage.SyncState, error) {
	return sm.store.GetSyncState(ctx, VideosTable)
}
