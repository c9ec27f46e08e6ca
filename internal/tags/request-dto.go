package tags

// Per-request bounds on a tag replace. 100 characters keeps custom slugs and
// labels inside the tags.slug (120) and tags.label (200) columns.
const (
	MaxTagsPerRequest = 50
	MaxTagInputLength = 100
)

type ReplaceChildTagsRequest struct {
	Tags []string `json:"tags" validate:"required,max=50,dive,max=100"`
}

type SetTagActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type SuggestQuery struct {
	Q     string `form:"q"`
	Limit string `form:"limit"`
}
