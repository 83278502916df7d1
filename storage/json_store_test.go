package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"sproutsync/sprout"
)

func TestNewJSONStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.json")

	store, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("NewJSONStore() error = %v", err)
	}
	defer store.Close()

	// File should exist after creation
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("store file was not created")
	}
}

func TestJSONStore_LoadExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.json")
	ctx := context.Background()

	store, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("NewJSONStore() error = %v", err)
	}
	if err := store.UpsertVideos(ctx, []sprout.Video{{VideoID: "v1", Title: "First", Tags: []string{"Foo"}}}); err != nil {
		t.Fatalf("UpsertVideos() error = %v", err)
	}
	state := NewSyncState("videos")
	state.StartSync()
	state.RecordPage(&sprout.Continuation{NextPageEndpoint: "videos?page=2"}, 1)
	if err := store.UpdateSyncState(ctx, state); err != nil {
		t.Fatalf("UpdateSyncState() error = %v", err)
	}
	store.Close()

	// Reopen and verify
	store2, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("NewJSONStore() reopen error = %v", err)
	}
	defer store2.Close()

	loaded, err := store2.GetVideo(ctx, "v1")
	if err != nil {
		t.Fatalf("GetVideo() error = %v", err)
	}
	if loaded.Title != "First" || len(loaded.Tags) != 1 || loaded.Tags[0] != "Foo" {
		t.Errorf("loaded video = %+v", loaded)
	}

	loadedState, err := store2.GetSyncState(ctx, "videos")
	if err != nil {
		t.Fatalf("GetSyncState() error = %v", err)
	}
	if loadedState.RunID != state.RunID {
		t.Errorf("RunID = %q, want %q", loadedState.RunID, state.RunID)
	}
	if !loadedState.CanResume() {
		t.Error("reloaded state should be resumable")
	}
	if loadedState.Continuation.NextPageEndpoint != "videos?page=2" {
		t.Errorf("continuation = %+v", loadedState.Continuation)
	}
}

func TestJSONStore_VideoUpsert(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()
	ctx := context.Background()

	videos := []sprout.Video{
		{VideoID: "old", Title: "Old", CreatedAt: "2010-08-26T21:35:41-04:00"},
		{VideoID: "new", Title: "New", CreatedAt: "2012-12-20T00:07:54-05:00"},
	}
	if err := store.UpsertVideos(ctx, videos); err != nil {
		t.Fatalf("UpsertVideos() error = %v", err)
	}

	// Replace
	if err := store.UpsertVideos(ctx, []sprout.Video{{VideoID: "old", Title: "Renamed", CreatedAt: "2010-08-26T21:35:41-04:00"}}); err != nil {
		t.Fatalf("UpsertVideos() error = %v", err)
	}
	got, err := store.GetVideo(ctx, "old")
	if err != nil {
		t.Fatalf("GetVideo() error = %v", err)
	}
	if got.Title != "Renamed" {
		t.Errorf("Title = %q, want Renamed", got.Title)
	}

	// Returned rows are copies
	got.Title = "mutated"
	again, _ := store.GetVideo(ctx, "old")
	if again.Title != "Renamed" {
		t.Error("GetVideo() returned shared state")
	}

	list, err := store.ListVideos(ctx)
	if err != nil {
		t.Fatalf("ListVideos() error = %v", err)
	}
	if len(list) != 2 || list[0].VideoID != "new" || list[1].VideoID != "old" {
		t.Errorf("ListVideos() = %+v, want new then old", list)
	}

	n, err := store.CountVideos(ctx)
	if err != nil || n != 2 {
		t.Errorf("CountVideos() = %d, %v; want 2", n, err)
	}

	_, err = store.GetVideo(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetVideo() missing error = %v, want ErrNotFound", err)
	}

	err = store.UpsertVideos(ctx, []sprout.Video{{Title: "no id"}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("UpsertVideos() without ID error = %v, want ErrInvalidInput", err)
	}
}

func TestJSONStore_SyncState(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()
	ctx := context.Background()

	_, err := store.GetSyncState(ctx, "videos")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetSyncState() error = %v, want ErrNotFound", err)
	}

	state := NewSyncState("videos")
	state.StartSync()
	if err := store.UpdateSyncState(ctx, state); err != nil {
		t.Fatalf("UpdateSyncState() error = %v", err)
	}

	// Later mutation of the caller's copy must not leak into the store
	state.RecordPage(&sprout.Continuation{NextPageEndpoint: "videos?page=9"}, 10)

	got, err := store.GetSyncState(ctx, "videos")
	if err != nil {
		t.Fatalf("GetSyncState() error = %v", err)
	}
	if got.Status != SyncStatusSyncing {
		t.Errorf("Status = %q, want %q", got.Status, SyncStatusSyncing)
	}
	if got.Continuation != nil || got.PagesFetched != 0 {
		t.Errorf("stored state changed after UpdateSyncState: %+v", got)
	}

	if err := store.UpdateSyncState(ctx, &SyncState{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("UpdateSyncState() without table error = %v, want ErrInvalidInput", err)
	}
}

func TestJSONStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := NewJSONStore(path)
	if !errors.Is(err, ErrStorageCorrupt) {
		t.Errorf("NewJSONStore() error = %v, want ErrStorageCorrupt", err)
	}
}

func TestJSONStore_ConcurrentUpserts(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i))
			if err := store.UpsertVideos(ctx, []sprout.Video{{VideoID: id}}); err != nil {
				t.Errorf("UpsertVideos(%s) error = %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	if n, _ := store.CountVideos(ctx); n != 10 {
		t.Errorf("CountVideos() = %d, want 10", n)
	}
}

// TestFileLocking tests that two handles cannot open the same store.
func TestFileLocking(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "locked.json")

	store1, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("NewJSONStore() error = %v", err)
	}
	defer store1.Close()

	_, err = NewJSONStore(path)
	if !errors.Is(err, ErrLockTimeout) {
		t.Errorf("expected ErrLockTimeout opening locked store, got %v", err)
	}
}

func TestStorageError(t *testing.T) {
	err := &StorageError{
		Op:     "read",
		Entity: "video",
		ID:     "abc123",
		Err:    ErrNotFound,
	}

	want := "storage: read video abc123: storage: not found"
	if err.Error() != want {
		t.Errorf("StorageError.Error() = %q, want %q", err.Error(), want)
	}

	if !errors.Is(err, ErrNotFound) {
		t.Error("StorageError should unwrap to ErrNotFound")
	}
}

func newTestStore(t *testing.T) *JSONStore {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.json")

	store, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("NewJSONStore() error = %v", err)
	}
	return store
}

func TestJSONStore_FailedSaveLeavesMemoryUnchanged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.json")
	ctx := context.Background()

	store, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("NewJSONStore() error = %v", err)
	}
	defer store.Close()

	if err := store.UpsertVideos(ctx, []sprout.Video{{VideoID: "v1", Title: "Old"}}); err != nil {
		t.Fatalf("UpsertVideos() error = %v", err)
	}
	state := NewSyncState("videos")
	state.StartSync()
	if err := store.UpdateSyncState(ctx, state); err != nil {
		t.Fatalf("UpdateSyncState() error = %v", err)
	}

	// A non-empty directory at the store path makes the rename fail
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(path, "blocker"), 0755); err != nil {
		t.Fatal(err)
	}

	err = store.UpsertVideos(ctx, []sprout.Video{{VideoID: "v1", Title: "New"}, {VideoID: "v2"}})
	if err == nil {
		t.Fatal("UpsertVideos() should fail when the file cannot be written")
	}
	got, err := store.GetVideo(ctx, "v1")
	if err != nil {
		t.Fatalf("GetVideo() error = %v", err)
	}
	if got.Title != "Old" {
		t.Errorf("Title = %q, want Old after failed write", got.Title)
	}
	if n, _ := store.CountVideos(ctx); n != 1 {
		t.Errorf("CountVideos() = %d, want 1 after failed write", n)
	}

	failed := NewSyncState("videos")
	failed.FailSync("boom")
	if err := store.UpdateSyncState(ctx, failed); err == nil {
		t.Fatal("UpdateSyncState() should fail when the file cannot be written")
	}
	kept, err := store.GetSyncState(ctx, "videos")
	if err != nil {
		t.Fatalf("GetSyncState() error = %v", err)
	}
	if kept.RunID != state.RunID || kept.Status != state.Status {
		t.Errorf("sync state changed after failed write: %+v", kept)
	}

	if err := store.UpdateSyncState(ctx, NewSyncState("other")); err == nil {
		t.Fatal("UpdateSyncState() should fail when the file cannot be written")
	}
	if _, err := store.GetSyncState(ctx, "other"); !errors.Is(err, ErrNotFound) {
		t.Errorf("new sync state kept after failed write, err = %v", err)
	}
}
