package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sort"
	"sync"
	"time"

	"sproutsync/sprout"
)

const (
	schemaVersion = "1.0"
	lockTimeout   = 5 * time.Second
)

// JSONStore implements Store using a single JSON file.
type JSONStore struct {
	path string
	lock *FileLock
	data *storeData
	mu   sync.RWMutex
}

// storeData is the top-level JSON structure.
type storeData struct {
	Version    string                   `json:"version"`
	UpdatedAt  time.Time                `json:"updated_at"`
	Videos     map[string]*sprout.Video `json:"videos"`
	SyncStates map[string]*SyncState    `json:"sync_states"`
}

// NewJSONStore creates a new JSON file store at the given path.
// If the file exists, it is loaded; otherwise an empty store is created.
func NewJSONStore(path string) (*JSONStore, error) {
	s := &JSONStore{
		path: path,
		lock: NewFileLock(path),
	}

	if err := s.lock.Lock(lockTimeout); err != nil {
		return nil, err
	}

	if err := s.load(); err != nil {
		s.lock.Unlock()
		return nil, err
	}

	return s, nil
}

// load reads the JSON file into memory. Creates empty data if file doesn't exist.
func (s *JSONStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.data = newStoreData()
			// Save immediately to catch permission errors early
			return s.save()
		}
		return &StorageError{Op: "read", Entity: "store", Err: err}
	}

	s.data = &storeData{}
	if err := json.Unmarshal(data, s.data); err != nil {
		return &StorageError{Op: "read", Entity: "store", Err: ErrStorageCorrupt}
	}
	if s.data.Videos == nil {
		s.data.Videos = make(map[string]*sprout.Video)
	}
	if s.data.SyncStates == nil {
		s.data.SyncStates = make(map[string]*SyncState)
	}

	return nil
}

// save persists the data to disk atomically.
func (s *JSONStore) save() error {
	s.data.UpdatedAt = time.Now()
	if err := writeJSONAtomic(s.path, s.data); err != nil {
		return &StorageError{Op: "write", Entity: "store", Err: err}
	}
	return nil
}

// Close releases resources held by the store.
func (s *JSONStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lock.Unlock()
}

func newStoreData() *storeData {
	return &storeData{
		Version:    schemaVersion,
		UpdatedAt:  time.Now(),
		Videos:     make(map[string]*sprout.Video),
		SyncStates: make(map[string]*SyncState),
	}
}

// --- VideoStore implementation ---

func (s *JSONStore) UpsertVideos(ctx context.Context, videos []sprout.Video) error {
	for _, v := range videos {
		if v.VideoID == "" {
			return &StorageError{Op: "upsert", Entity: "video", Err: ErrInvalidInput}
		}
	}
	if len(videos) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := make(map[string]*sprout.Video, len(videos))
	for i := range videos {
		video := videos[i]
		if _, seen := prev[video.VideoID]; !seen {
			prev[video.VideoID] = s.data.Videos[video.VideoID]
		}
		s.data.Videos[video.VideoID] = &video
	}
	if err := s.save(); err != nil {
		for id, old := range prev {
			if old == nil {
				delete(s.data.Videos, id)
			} else {
				s.data.Videos[id] = old
			}
		}
		return err
	}
	return nil
}

func (s *JSONStore) GetVideo(ctx context.Context, videoID string) (*sprout.Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	video, exists := s.data.Videos[videoID]
	if !exists {
		return nil, &StorageError{Op: "read", Entity: "video", ID: videoID, Err: ErrNotFound}
	}
	out := *video
	return &out, nil
}

func (s *JSONStore) ListVideos(ctx context.Context) ([]sprout.Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	videos := make([]sprout.Video, 0, len(s.data.Videos))
	for _, v := range s.data.Videos {
		videos = append(videos, *v)
	}
	SortNewestFirst(videos)
	return videos, nil
}

func (s *JSONStore) CountVideos(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data.Videos), nil
}

// --- SyncStateStore implementation ---

func (s *JSONStore) GetSyncState(ctx context.Context, table string) (*SyncState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, exists := s.data.SyncStates[table]
	if !exists {
		return nil, &StorageError{Op: "read", Entity: "sync_state", ID: table, Err: ErrNotFound}
	}
	out := *state
	if state.Continuation != nil {
		cont := *state.Continuation
		out.Continuation = &cont
	}
	return &out, nil
}

func (s *JSONStore) UpdateSyncState(ctx context.Context, state *SyncState) error {
	if state == nil || state.Table == "" {
		return &StorageError{Op: "update", Entity: "sync_state", Err: ErrInvalidInput}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *state
	if state.Continuation != nil {
		cont := *state.Continuation
		stored.Continuation = &cont
	}
	prev, existed := s.data.SyncStates[state.Table]
	s.data.SyncStates[state.Table] = &stored
	if err := s.save(); err != nil {
		if existed {
			s.data.SyncStates[state.Table] = prev
		} else {
			delete(s.data.SyncStates, state.Table)
		}
		return err
	}
	return nil
}

// SortNewestFirst orders rows by CreatedAt descending, then VideoID.
// CreatedAt strings are RFC3339 and compare chronologically when parsed.
func SortNewestFirst(videos []sprout.Video) {
	sort.SliceStable(videos, func(i, j int) bool {
		ti, erri := time.Parse(time.RFC3339, videos[i].CreatedAt)
		tj, errj := time.Parse(time.RFC3339, videos[j].CreatedAt)
		if erri == nil && errj == nil && !ti.Equal(tj) {
			return ti.After(tj)
		}
		if videos[i].CreatedAt != videos[j].CreatedAt {
			return videos[i].CreatedAt > videos[j].CreatedAt
		}
		return videos[i].VideoID < videos[j].VideoID
	})
}
