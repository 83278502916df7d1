package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sproutsync/sprout"
	"sproutsync/storage"
)

type fakeConnector struct {
	pages    map[string]*sprout.SyncPage
	syncErr  error
	tagErr   error
	lastOpts *sprout.SyncOptions
}

func (f *fakeConnector) SyncVideos(ctx context.Context, cont *sprout.Continuation, opts *sprout.SyncOptions) (*sprout.SyncPage, error) {
	f.lastOpts = opts
	if f.syncErr != nil {
		return nil, f.syncErr
	}
	key := ""
	if cont != nil {
		key = cont.NextPageEndpoint
	}
	page, ok := f.pages[key]
	if !ok {
		return nil, errors.New("unexpected page " + key)
	}
	return page, nil
}

func (f *fakeConnector) AddTag(ctx context.Context, videoID, tagName string) (*sprout.Video, error) {
	if f.tagErr != nil {
		return nil, f.tagErr
	}
	if tagName == "" {
		return nil, &sprout.UserError{Message: "tag name is required", Err: sprout.ErrInvalidInput}
	}
	return &sprout.Video{VideoID: videoID, Tags: []string{tagName}}, nil
}

func (f *fakeConnector) ConnectionName(ctx context.Context) (string, error) {
	return "Acme (Jane Doe)", nil
}

func newTestServer(t *testing.T, conn *fakeConnector) (*Server, storage.Store) {
	t.Helper()
	store, err := storage.NewJSONStore(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(conn, store, "127.0.0.1:0"), store
}

func twoPages() *fakeConnector {
	return &fakeConnector{pages: map[string]*sprout.SyncPage{
		"": {
			Videos:       []sprout.Video{{VideoID: "v1", CreatedAt: "2012-12-20T00:07:54-05:00"}},
			Continuation: &sprout.Continuation{NextPageEndpoint: "videos?page=2"},
		},
		"videos?page=2": {
			Videos: []sprout.Video{{VideoID: "v2", CreatedAt: "2010-08-26T21:35:41-04:00"}},
		},
	}}
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t, twoPages())
	rec := do(t, s, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleSchemaAndConnection(t *testing.T) {
	s, _ := newTestServer(t, twoPages())

	rec := do(t, s, http.MethodGet, "/api/schema", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"videoId"`)

	rec = do(t, s, http.MethodGet, "/api/connection", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"Acme (Jane Doe)"}`, rec.Body.String())
}

func TestHandleSyncPage(t *testing.T) {
	conn := twoPages()
	s, store := newTestServer(t, conn)

	rec := do(t, s, http.MethodGet, "/api/videos/sync", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var page sprout.SyncPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Videos, 1)
	require.NotNil(t, page.Continuation)
	assert.Equal(t, "videos?page=2", page.Continuation.NextPageEndpoint)

	rec = do(t, s, http.MethodGet, "/api/videos/sync?continuation=videos%3Fpage%3D2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"continuation":null`)

	// Pages served here are not persisted
	n, err := store.CountVideos(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	rec = do(t, s, http.MethodGet, "/api/videos/sync?startFrom=150", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, conn.lastOpts)
	assert.Equal(t, 150, conn.lastOpts.StartFrom)

	rec = do(t, s, http.MethodGet, "/api/videos/sync?startFrom=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAddTag(t *testing.T) {
	s, store := newTestServer(t, twoPages())

	rec := do(t, s, http.MethodPost, "/api/videos/v9/tags", `{"tag":"New"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var video sprout.Video
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &video))
	assert.Equal(t, "v9", video.VideoID)
	assert.Equal(t, []string{"New"}, video.Tags)

	stored, err := store.GetVideo(context.Background(), "v9")
	require.NoError(t, err)
	assert.Equal(t, []string{"New"}, stored.Tags)

	rec = do(t, s, http.MethodPost, "/api/videos/v9/tags", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/videos/v9/tags", `{"tag":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user":true`)
}

func TestHandleAddTag_VideoNotFound(t *testing.T) {
	conn := twoPages()
	conn.tagErr = &sprout.UserError{Message: "video not found: v0", Err: sprout.ErrVideoNotFound}
	s, _ := newTestServer(t, conn)

	rec := do(t, s, http.MethodPost, "/api/videos/v0/tags", `{"tag":"New"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleRunSyncAndState(t *testing.T) {
	s, _ := newTestServer(t, twoPages())

	rec := do(t, s, http.MethodGet, "/api/sync/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"idle"`)

	rec = do(t, s, http.MethodPost, "/api/sync?maxPages=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"complete":false`)

	rec = do(t, s, http.MethodGet, "/api/sync/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"nextPageEndpoint":"videos?page=2"`)

	rec = do(t, s, http.MethodPost, "/api/sync", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"complete":true`)

	rec = do(t, s, http.MethodGet, "/api/videos", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Result []sprout.Video `json:"result"`
		Count  int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, "v1", list.Result[0].VideoID)

	rec = do(t, s, http.MethodPost, "/api/sync?maxPages=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", &sprout.UserError{Message: "bad", Err: sprout.ErrInvalidInput}, http.StatusBadRequest},
		{"video not found", &sprout.UserError{Message: "missing", Err: sprout.ErrVideoNotFound}, http.StatusNotFound},
		{"unauthorized", &sprout.RequestError{Method: "GET", Endpoint: "account", StatusCode: 401, Err: sprout.ErrUnauthorized}, http.StatusUnauthorized},
		{"remote failure", &sprout.RequestError{Method: "GET", Endpoint: "videos", StatusCode: 500, Err: sprout.ErrRemote}, http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestServerStartStop(t *testing.T) {
	s, _ := newTestServer(t, twoPages())

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(), ErrServerAlreadyRunning)

	resp, err := http.Get("http://" + s.Addr() + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.ErrorIs(t, s.Stop(), ErrServerNotRunning)
}
