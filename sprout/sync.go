package sprout

import (
	"context"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	videosEndpoint = "videos"
	tagsEndpoint   = "tags"

	// TagListTTL is how long a host may cache the tag list during a sync.
	TagListTTL = time.Hour

	startFromPageSize = 100
)

// SyncOptions tunes the first page of a sync.
type SyncOptions struct {
	// StartFrom skips to the page holding the StartFrom-th most recent video.
	// Ignored when resuming from a continuation.
	StartFrom int
}

// SyncVideos fetches one page of the video listing, newest first, enriched
// against the account's tags. Pass the previous page's Continuation to
// continue; a nil Continuation in the result means the listing is exhausted.
func (c *Client) SyncVideos(ctx context.Context, cont *Continuation, opts *SyncOptions) (*SyncPage, error) {
	endpoint := videosEndpoint
	params := Params{
		"order_by":  "created_at",
		"order_dir": "desc",
	}
	if cont != nil && cont.NextPageEndpoint != "" {
		endpoint = cont.NextPageEndpoint
	} else if opts != nil && opts.StartFrom > 0 {
		params["per_page"] = strconv.Itoa(startFromPageSize)
		params["page"] = strconv.Itoa((opts.StartFrom-1)/startFromPageSize + 1)
	}

	var (
		listing videoList
		tags    tagList
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.get(gctx, endpoint, 0, params, &listing)
	})
	g.Go(func() error {
		return c.get(gctx, tagsEndpoint, TagListTTL, nil, &tags)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	videos := make([]Video, 0, len(listing.Videos))
	for i := range listing.Videos {
		video, err := Enrich(&listing.Videos[i], tags.Tags)
		if err != nil {
			return nil, err
		}
		videos = append(videos, *video)
	}

	return &SyncPage{
		Videos:       videos,
		Continuation: c.nextContinuation(listing.NextPage),
	}, nil
}

// nextContinuation strips the base URL from a next_page link.
func (c *Client) nextContinuation(nextPage string) *Continuation {
	if nextPage == "" {
		return nil
	}
	return &Continuation{NextPageEndpoint: strings.TrimPrefix(nextPage, c.baseURL)}
}
