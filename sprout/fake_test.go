package sprout

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// fakeAccount is an in-memory SproutVideo account served through the Fetcher
// interface. It records every request it receives.
type fakeAccount struct {
	mu        sync.Mutex
	videos    map[string]*RawVideo
	tags      []Tag
	pages     map[string]string // listing endpoint (path?query) -> JSON body
	nextTagID int
	requests  []Request

	failTagList bool
	failPut     bool
}

func newFakeAccount() *fakeAccount {
	return &fakeAccount{
		videos: make(map[string]*RawVideo),
		pages:  make(map[string]string),
	}
}

func (f *fakeAccount) Fetch(ctx context.Context, req *Request) (*Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, *req)

	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, err
	}
	path := strings.TrimPrefix(u.Path, "/v1/")

	switch {
	case req.Method == http.MethodGet && path == "tags":
		if f.failTagList {
			return status(http.StatusInternalServerError, `{"error":"boom"}`), nil
		}
		return jsonResponse(map[string]any{"tags": f.tags}), nil

	case req.Method == http.MethodPost && path == "tags":
		var body struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(req.Body, &body); err != nil {
			return status(http.StatusBadRequest, `{}`), nil
		}
		f.nextTagID++
		tag := Tag{ID: fmt.Sprintf("tag-%d", f.nextTagID), Name: body.Name}
		f.tags = append(f.tags, tag)
		return jsonResponse(tag), nil

	case req.Method == http.MethodGet && path == "videos":
		body, ok := f.pages[path+"?"+u.RawQuery]
		if !ok {
			body, ok = f.pages[path]
		}
		if !ok {
			return status(http.StatusNotFound, `{}`), nil
		}
		return &Response{StatusCode: http.StatusOK, Body: []byte(body)}, nil

	case strings.HasPrefix(path, "videos/"):
		id := strings.TrimPrefix(path, "videos/")
		video, ok := f.videos[id]
		if !ok {
			return status(http.StatusNotFound, `{"error":"not found"}`), nil
		}
		if req.Method == http.MethodPut {
			if f.failPut {
				return status(http.StatusBadGateway, `{}`), nil
			}
			var body struct {
				Tags []string `json:"tags"`
			}
			if err := json.Unmarshal(req.Body, &body); err != nil {
				return status(http.StatusBadRequest, `{}`), nil
			}
			updated := *video
			updated.Tags = body.Tags
			f.videos[id] = &updated
			video = &updated
		}
		return jsonResponse(video), nil
	}

	return status(http.StatusNotFound, `{}`), nil
}

func (f *fakeAccount) count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, req := range f.requests {
		u, _ := url.Parse(req.URL)
		if req.Method == method && strings.TrimPrefix(u.Path, "/v1/") == path {
			n++
		}
	}
	return n
}

func (f *fakeAccount) find(method, path string) (Request, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, req := range f.requests {
		u, _ := url.Parse(req.URL)
		if req.Method == method && strings.TrimPrefix(u.Path, "/v1/") == path {
			return req, true
		}
	}
	return Request{}, false
}

func jsonResponse(v any) *Response {
	body, _ := json.Marshal(v)
	return &Response{StatusCode: http.StatusOK, Body: body}
}

func status(code int, body string) *Response {
	return &Response{StatusCode: code, Body: []byte(body)}
}

// fetcherFunc adapts a function to Fetcher.
type fetcherFunc func(ctx context.Context, req *Request) (*Response, error)

func (f fetcherFunc) Fetch(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

func strPtr(s string) *string { return &s }

func sampleVideo(id string, tagIDs ...string) *RawVideo {
	return &RawVideo{
		ID:                        id,
		Title:                     "example.mov",
		Description:               "An example movie",
		CreatedAt:                 "2010-08-26T21:35:41-04:00",
		UpdatedAt:                 "2012-12-20T00:07:54-05:00",
		Width:                     960,
		Height:                    540,
		Plays:                     348,
		Duration:                  73,
		SourceVideoFileSize:       2 * 1024 * 1024,
		Privacy:                   0,
		SelectedPosterFrameNumber: 1,
		Tags:                      tagIDs,
		Assets: Assets{
			Videos: map[string]*string{
				"240p":   strPtr("https://api-files.sproutvideo.com/file/" + id + "/240.mp4"),
				"720p":   strPtr("https://api-files.sproutvideo.com/file/" + id + "/720.mp4"),
				"1080p":  strPtr("https://api-files.sproutvideo.com/file/" + id + "/1080.mp4"),
				"4k":     nil,
				"source": nil,
			},
			Thumbnails:   []string{"https://images.sproutvideo.com/" + id + "/thumbnails/frame_0000.jpg"},
			PosterFrames: []string{"https://images.sproutvideo.com/" + id + "/poster_frames/frame_0000.jpg", "https://images.sproutvideo.com/" + id + "/poster_frames/frame_0001.jpg"},
		},
	}
}
