package domain

import "github.com/google/uuid"

// Theme is a descriptive grouping referenced by zero or more games.
type Theme struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// TagType partitions tags into two mutually exclusive categories. A game's
// tag set may hold tags of both types at once.
type TagType string

const (
	TagTypeAccessibility TagType = "accessibility"
	TagTypeCustom        TagType = "custom"
)

// ParseTagType validates a tag type token.
func ParseTagType(value string) (TagType, bool) {
	switch TagType(value) {
	case TagTypeAccessibility, TagTypeCustom:
		return TagType(value), true
	}
	return "", false
}

// Opposite returns the other tag category.
func (t TagType) Opposite() TagType {
	if t == TagTypeAccessibility {
		return TagTypeCustom
	}
	return TagTypeAccessibility
}

// Tag is a typed label referenced by games.
type Tag struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Type TagType   `json:"type"`
}
