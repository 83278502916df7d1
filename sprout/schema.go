package sprout

// ValueType is the column type of a sync-table property.
type ValueType string

const (
	TypeString ValueType = "string"
	TypeNumber ValueType = "number"
	TypeArray  ValueType = "array"
)

// ValueHint refines how a host renders a column.
type ValueHint string

const (
	HintNone            ValueHint = ""
	HintDateTime        ValueHint = "datetime"
	HintDuration        ValueHint = "duration"
	HintImageAttachment ValueHint = "imageAttachment"
)

// Column declares one property of the Videos table.
type Column struct {
	Name  string    `json:"name"`
	Type  ValueType `json:"type"`
	Items ValueType `json:"items,omitempty"`
	Hint  ValueHint `json:"hint,omitempty"`
}

// TableSchema describes the row shape published to the host.
type TableSchema struct {
	Name         string   `json:"name"`
	IdentityName string   `json:"identityName"`
	ID           string   `json:"id"`
	Primary      string   `json:"primary"`
	Featured     []string `json:"featured"`
	Columns      []Column `json:"columns"`
}

// Schema returns the declaration of the Videos sync table.
// Column names match the JSON keys of Video.
func Schema() TableSchema {
	return TableSchema{
		Name:         "Videos",
		IdentityName: "Video",
		ID:           "videoId",
		Primary:      "title",
		Featured:     []string{"thumbnail", "duration", "createdAt"},
		Columns: []Column{
			{Name: "videoId", Type: TypeString},
			{Name: "title", Type: TypeString},
			{Name: "createdAt", Type: TypeString, Hint: HintDateTime},
			{Name: "updatedAt", Type: TypeString, Hint: HintDateTime},
			{Name: "height", Type: TypeNumber},
			{Name: "width", Type: TypeNumber},
			{Name: "description", Type: TypeString},
			{Name: "plays", Type: TypeNumber},
			{Name: "sourceSizeMB", Type: TypeNumber},
			{Name: "tags", Type: TypeArray, Items: TypeString},
			{Name: "duration", Type: TypeString, Hint: HintDuration},
			{Name: "password", Type: TypeString},
			{Name: "privacy", Type: TypeString},
			{Name: "posterFrame", Type: TypeString, Hint: HintImageAttachment},
			{Name: "thumbnail", Type: TypeString, Hint: HintImageAttachment},
			{Name: "bestResolution", Type: TypeString},
			{Name: "aspectRatio", Type: TypeString},
			{Name: "folder", Type: TypeString},
			{Name: "link", Type: TypeString},
		},
	}
}
