package host

import (
	"context"
	"log"

	"sproutsync/sprout"
	"sproutsync/storage"
)

// VideoTagger applies the add-tag action to a video.
type VideoTagger interface {
	AddTag(ctx context.Context, videoID, tagName string) (*sprout.Video, error)
}

// ApplyTag runs the add-tag action and writes the returned row back to the
// store, the way a host updates a sync table after an action.
func ApplyTag(ctx context.Context, tagger VideoTagger, store storage.VideoStore, videoID, tagName string) (*sprout.Video, error) {
	video, err := tagger.AddTag(ctx, videoID, tagName)
	if err != nil {
		return nil, err
	}
	if err := store.UpsertVideos(ctx, []sprout.Video{*video}); err != nil {
		// The remote update already happened; the next sync repairs the row.
		log.Printf("sproutsync: failed to store tagged video %s: %v", videoID, err)
	}
	return video, nil
}
