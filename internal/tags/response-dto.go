package tags

import "time"

// TagOut is the public shape of a tag in child and suggestion payloads
type TagOut struct {
	Slug     string    `json:"slug"`
	Label    string    `json:"label"`
	Category *Category `json:"category"`
}

type TagResponse struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Label     string    `json:"label"`
	Category  *Category `json:"category"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ChildTagsResponse struct {
	ChildID     string   `json:"child_id"`
	Tags        []TagOut `json:"tags"`
	Suggestions []TagOut `json:"suggestions"`
}

type SuggestResponse struct {
	Query   string   `json:"query"`
	Results []TagOut `json:"results"`
}
