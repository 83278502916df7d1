package sprout

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"
)

// AddTag applies the tag named tagName to a video, creating the tag if the
// account has none with that name (case-insensitive). Tagging a video that
// already carries the tag is a silent no-op. A tag created here is not
// removed if the video update then fails.
func (c *Client) AddTag(ctx context.Context, videoID, tagName string) (*Video, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil, &UserError{Message: "video ID is required", Err: ErrInvalidInput}
	}
	if strings.TrimSpace(tagName) == "" {
		return nil, &UserError{Message: "tag name is required", Err: ErrInvalidInput}
	}

	videoEndpoint := videosEndpoint + "/" + videoID

	var (
		video *RawVideo
		tags  tagList
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		video, err = c.fetchVideo(gctx, videoEndpoint)
		if errors.Is(err, ErrNotFound) {
			return videoNotFound(videoID, err)
		}
		return err
	})
	g.Go(func() error {
		return c.get(gctx, tagsEndpoint, 0, nil, &tags)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if video == nil {
		return nil, videoNotFound(videoID, nil)
	}

	accountTags := tags.Tags
	tag, ok := FindTagByName(accountTags, tagName)
	if !ok {
		created, err := c.CreateTag(ctx, tagName)
		if err != nil {
			return nil, err
		}
		tag = *created
		accountTags = append(accountTags[:len(accountTags):len(accountTags)], tag)
	}

	if video.HasTag(tag.ID) {
		return Enrich(video, accountTags)
	}

	tagIDs := make([]string, 0, len(video.Tags)+1)
	tagIDs = append(tagIDs, video.Tags...)
	tagIDs = append(tagIDs, tag.ID)

	var updated RawVideo
	if err := c.send(ctx, videoEndpoint, http.MethodPut, Params{"tags": tagIDs}, &updated); err != nil {
		return nil, err
	}
	return Enrich(&updated, accountTags)
}

// CreateTag creates an account tag.
func (c *Client) CreateTag(ctx context.Context, name string) (*Tag, error) {
	var tag Tag
	if err := c.send(ctx, tagsEndpoint, http.MethodPost, Params{"name": name}, &tag); err != nil {
		return nil, err
	}
	if tag.ID == "" {
		return nil, fmt.Errorf("create tag %q: %w: response has no id", name, ErrRemote)
	}
	return &tag, nil
}

// FindTagByName looks a tag up by name, ignoring case.
func FindTagByName(tags []Tag, name string) (Tag, bool) {
	for _, tag := range tags {
		if strings.EqualFold(tag.Name, name) {
			return tag, true
		}
	}
	return Tag{}, false
}

// fetchVideo returns nil without error when the API answers with an empty body.
func (c *Client) fetchVideo(ctx context.Context, endpoint string) (*RawVideo, error) {
	body, err := c.Call(ctx, endpoint, http.MethodGet, 0, nil)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var video RawVideo
	if err := decode(endpoint, trimmed, &video); err != nil {
		return nil, err
	}
	return &video, nil
}

func videoNotFound(videoID string, cause error) error {
	if cause == nil {
		cause = ErrVideoNotFound
	} else {
		cause = fmt.Errorf("%w: %w", ErrVideoNotFound, cause)
	}
	return &UserError{
		Message: fmt.Sprintf("Video %q not found", videoID),
		Err:     cause,
	}
}
