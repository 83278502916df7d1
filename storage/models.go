package storage

import (
	"time"

	"github.com/google/uuid"

	"sproutsync/sprout"
)

// Sync status constants for the SyncState.Status field.
const (
	// SyncStatusIdle indicates no sync run is in progress.
	SyncStatusIdle = "idle"
	// SyncStatusSyncing indicates a run has started and not reached the last page.
	SyncStatusSyncing = "syncing"
	// SyncStatusError indicates the last run failed.
	SyncStatusError = "error"
)

// SyncState tracks synchronization progress for one sync table.
type SyncState struct {
	// Table is the sync table name ("videos").
	Table string `json:"table"`
	// RunID identifies the current or last sync run (UUID).
	RunID string `json:"run_id,omitempty"`
	// Status indicates the current sync state ("idle", "syncing", "error").
	Status string `json:"status"`
	// Continuation is the page to fetch next. Nil when no page is pending.
	Continuation *sprout.Continuation `json:"continuation,omitempty"`
	// PagesFetched is the number of pages fetched in the current run.
	PagesFetched int `json:"pages_fetched"`
	// RowsSynced is the number of rows written in the current run.
	RowsSynced int `json:"rows_synced"`
	// LastError contains the error message if the last run failed.
	LastError string `json:"last_error,omitempty"`
	// SyncStartedAt is when the current run began.
	SyncStartedAt time.Time `json:"sync_started_at,omitempty"`
	// LastPageFetchedAt is when the last page was fetched.
	LastPageFetchedAt time.Time `json:"last_page_fetched_at,omitempty"`
	// LastSyncAt is when the last run completed.
	LastSyncAt time.Time `json:"last_sync_at,omitempty"`
}

// NewSyncState creates an idle SyncState for a table.
func NewSyncState(table string) *SyncState {
	return &SyncState{
		Table:  table,
		Status: SyncStatusIdle,
	}
}

// CanResume returns true if a run was interrupted with a page still pending.
func (s *SyncState) CanResume() bool {
	if s == nil || s.Continuation == nil || s.Continuation.NextPageEndpoint == "" {
		return false
	}
	return s.Status == SyncStatusSyncing || s.Status == SyncStatusError
}

// ClearPaginationState resets all pagination-related fields.
func (s *SyncState) ClearPaginationState() {
	if s == nil {
		return
	}
	s.Continuation = nil
	s.PagesFetched = 0
	s.RowsSynced = 0
	s.SyncStartedAt = time.Time{}
	s.LastPageFetchedAt = time.Time{}
}

// StartSync begins a fresh run with a new RunID.
func (s *SyncState) StartSync() {
	if s == nil {
		return
	}
	s.ClearPaginationState()
	s.RunID = uuid.NewString()
	s.Status = SyncStatusSyncing
	s.SyncStartedAt = time.Now()
	s.LastError = ""
}

// ResumeSync marks an interrupted run as syncing again, keeping its progress.
func (s *SyncState) ResumeSync() {
	if s == nil {
		return
	}
	s.Status = SyncStatusSyncing
	s.LastError = ""
}

// RecordPage stores the continuation returned with a page and its row count.
func (s *SyncState) RecordPage(next *sprout.Continuation, rows int) {
	if s == nil {
		return
	}
	s.Continuation = next
	s.PagesFetched++
	s.RowsSynced += rows
	s.LastPageFetchedAt = time.Now()
}

// CompleteSync marks the run as finished.
func (s *SyncState) CompleteSync() {
	if s == nil {
		return
	}
	s.Status = SyncStatusIdle
	s.LastSyncAt = time.Now()
	s.Continuation = nil
}

// FailSync marks the run as failed with an error message.
// Pagination state is preserved so the run can resume.
func (s *SyncState) FailSync(errMsg string) {
	if s == nil {
		return
	}
	s.Status = SyncStatusError
	s.LastError = errMsg
}
