package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTypeChildTagsReplaced EventType = "child.tags.replaced"
)

// TagChangeNotification is published after a child's tag set has been replaced
type TagChangeNotification struct {
	ID         uuid.UUID `json:"id"`
	Type       EventType `json:"type"`
	ChildID    string    `json:"child_id"`
	Slugs      []string  `json:"slugs"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewTagChangeNotification(childID string, slugs []string) *TagChangeNotification {
	if slugs == nil {
		slugs = []string{}
	}
	return &TagChangeNotification{
		ID:         uuid.New(),
		Type:       EventTypeChildTagsReplaced,
		ChildID:    childID,
		Slugs:      slugs,
		OccurredAt: time.Now().UTC(),
	}
}

// GetPartitionKey keeps all changes for one child on one partition
func (n *TagChangeNotification) GetPartitionKey() string {
	return n.ChildID
}

func (n *TagChangeNotification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}
