package sprout

import (
	"fmt"
	"math"
)

// VideoPageURL is the public permalink prefix for a video.
const VideoPageURL = "https://sproutvideo.com/videos/"

const bytesPerMegabyte = 1024 * 1024

// privacyStates is indexed by the API's numeric privacy code.
var privacyStates = [...]string{
	"Private",
	"Password Protected",
	"Public",
	"Login Protected",
}

// resolutionOrder lists resolution labels from lowest to highest quality.
var resolutionOrder = [...]string{"240p", "360p", "480p", "720p", "1080p", "2k", "4k", "8k", "source"}

// aspectRatioBands are checked in order; the first open interval containing
// the ratio wins. The bands overlap at some edges and the order decides.
var aspectRatioBands = [...]struct {
	min, max float64
	label    string
}{
	{2.3, 2.5, "2.39:1 (Cinemascope)"},
	{1.95, 2.05, "2:1"},
	{1.878, 1.95, "1.9:1 (DCI)"},
	{1.678, 1.878, "16:9 (widescreen)"},
	{1.233, 1.433, "4:3 (traditional)"},
	{1.4, 1.6, "3:2 (wide)"},
	{0.75, 0.85, "5:4 (social tall)"},
	{0.5125, 0.6125, "9:16 (vertical)"},
}

// Enrich builds the display-ready row for raw using the account's full tag set.
// Neither argument is modified. It fails if the privacy code is unknown or a
// tag ID cannot be resolved; missing media only leaves fields empty.
func Enrich(raw *RawVideo, tags []Tag) (*Video, error) {
	privacy, err := PrivacyLabel(raw.Privacy)
	if err != nil {
		return nil, &EnrichError{VideoID: raw.ID, Err: err}
	}

	tagNames, err := ResolveTagNames(raw.Tags, tags)
	if err != nil {
		return nil, &EnrichError{VideoID: raw.ID, Err: err}
	}

	bestResolution, _ := BestResolution(raw.Assets.Videos)

	video := &Video{
		VideoID:        raw.ID,
		Title:          raw.Title,
		CreatedAt:      raw.CreatedAt,
		UpdatedAt:      raw.UpdatedAt,
		Height:         raw.Height,
		Width:          raw.Width,
		Description:    raw.Description,
		Plays:          raw.Plays,
		SourceSizeMB:   MegabytesFromBytes(raw.SourceVideoFileSize),
		Tags:           tagNames,
		Duration:       FormatDuration(raw.Duration),
		Privacy:        privacy,
		Thumbnail:      firstThumbnail(raw.Assets.Thumbnails),
		PosterFrame:    posterFrame(raw.Assets.PosterFrames, raw.SelectedPosterFrameNumber),
		BestResolution: bestResolution,
		AspectRatio:    AspectRatio(raw.Width, raw.Height),
		Link:           VideoPageURL + raw.ID,
	}
	if raw.Password != nil {
		video.Password = *raw.Password
	}
	if raw.FolderID != nil {
		video.Folder = *raw.FolderID
	}
	return video, nil
}

// PrivacyLabel maps a privacy code (0-3) to its label.
func PrivacyLabel(code int) (string, error) {
	if code < 0 || code >= len(privacyStates) {
		return "", &PrivacyError{Code: code}
	}
	return privacyStates[code], nil
}

// BestResolution returns the highest-quality label with a non-empty URL.
// ok is false when no resolution is available.
func BestResolution(videos map[string]*string) (label string, ok bool) {
	for _, res := range resolutionOrder {
		if url := videos[res]; url != nil && *url != "" {
			label, ok = res, true
		}
	}
	return label, ok
}

// AspectRatio classifies width/height into a common aspect ratio label.
// It returns "" when either dimension is zero.
func AspectRatio(width, height int) string {
	if width == 0 || height == 0 {
		return ""
	}
	ratio := float64(width) / float64(height)
	if ratio == 1 {
		return "1:1 (square)"
	}
	for _, band := range aspectRatioBands {
		if ratio > band.min && ratio < band.max {
			return band.label
		}
	}
	if width > height {
		return "horizontal"
	}
	return "vertical"
}

// ResolveTagNames maps tag IDs to names, preserving order.
func ResolveTagNames(ids []string, tags []Tag) ([]string, error) {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		tag, ok := findTagByID(tags, id)
		if !ok {
			return nil, &TagLookupError{TagID: id}
		}
		names = append(names, tag.Name)
	}
	return names, nil
}

// FormatDuration renders seconds as whole seconds with a unit suffix.
func FormatDuration(seconds float64) string {
	return fmt.Sprintf("%d secs", roundHalfUp(seconds))
}

// MegabytesFromBytes converts a byte count to whole megabytes.
func MegabytesFromBytes(n int64) int64 {
	return roundHalfUp(float64(n) / bytesPerMegabyte)
}

func roundHalfUp(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}

func firstThumbnail(thumbnails []string) string {
	if len(thumbnails) == 0 {
		return ""
	}
	return thumbnails[0]
}

func posterFrame(frames []string, selected int) string {
	if selected < 0 || selected >= len(frames) {
		return ""
	}
	return frames[selected]
}

func findTagByID(tags []Tag, id string) (Tag, bool) {
	for _, tag := range tags {
		if tag.ID == id {
			return tag, true
		}
	}
	return Tag{}, false
}
