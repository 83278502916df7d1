package sprout

// Tag is an account-level tag.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Assets holds the media references of a video.
type Assets struct {
	// Videos maps a resolution label ("240p", "1080p", "source", ...) to a URL.
	// Resolutions that were not encoded are null.
	Videos       map[string]*string `json:"videos"`
	Thumbnails   []string           `json:"thumbnails"`
	PosterFrames []string           `json:"poster_frames"`
}

// RawVideo is a video as returned by the SproutVideo API.
type RawVideo struct {
	ID                        string   `json:"id"`
	Title                     string   `json:"title"`
	Description               string   `json:"description"`
	CreatedAt                 string   `json:"created_at"`
	UpdatedAt                 string   `json:"updated_at"`
	Width                     int      `json:"width"`
	Height                    int      `json:"height"`
	Plays                     int      `json:"plays"`
	Duration                  float64  `json:"duration"`
	SourceVideoFileSize       int64    `json:"source_video_file_size"`
	State                     string   `json:"state"`
	EmbedCode                 string   `json:"embed_code"`
	SecurityToken             string   `json:"security_token"`
	Password                  *string  `json:"password"`
	Privacy                   int      `json:"privacy"`
	SelectedPosterFrameNumber int      `json:"selected_poster_frame_number"`
	Tags                      []string `json:"tags"`
	FolderID                  *string  `json:"folder_id"`
	Assets                    Assets   `json:"assets"`
}

// HasTag reports whether the video already carries the tag ID.
func (v *RawVideo) HasTag(tagID string) bool {
	for _, id := range v.Tags {
		if id == tagID {
			return true
		}
	}
	return false
}

// Video is a display-ready row of the Videos sync table.
type Video struct {
	VideoID        string   `json:"videoId"`
	Title          string   `json:"title"`
	CreatedAt      string   `json:"createdAt"`
	UpdatedAt      string   `json:"updatedAt"`
	Height         int      `json:"height"`
	Width          int      `json:"width"`
	Description    string   `json:"description"`
	Plays          int      `json:"plays"`
	SourceSizeMB   int64    `json:"sourceSizeMB"`
	Tags           []string `json:"tags"`
	Duration       string   `json:"duration"`
	Password       string   `json:"password,omitempty"`
	Privacy        string   `json:"privacy"`
	PosterFrame    string   `json:"posterFrame,omitempty"`
	Thumbnail      string   `json:"thumbnail,omitempty"`
	BestResolution string   `json:"bestResolution,omitempty"`
	AspectRatio    string   `json:"aspectRatio"`
	Folder         string   `json:"folder,omitempty"`
	Link           string   `json:"link"`
}

// Continuation carries pagination state between sync invocations.
// A nil *Continuation means the first call on input and completion on output.
type Continuation struct {
	NextPageEndpoint string `json:"nextPageEndpoint"`
}

// SyncPage is the result of one sync invocation.
type SyncPage struct {
	Videos       []Video       `json:"result"`
	Continuation *Continuation `json:"continuation"`
}

// Account is the subset of the account resource used for the connection label.
type Account struct {
	Company   string `json:"company"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type videoList struct {
	Videos   []RawVideo `json:"videos"`
	NextPage string     `json:"next_page"`
	Total    int        `json:"total"`
}

type tagList struct {
	Tags     []Tag  `json:"tags"`
	NextPage string `json:"next_page"`
}
