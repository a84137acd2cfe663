package domain

import "time"

type StoryType string

const (
	StoryTypeFree     StoryType = "free"
	StoryTypeDonation StoryType = "donation"
	StoryTypeSale     StoryType = "sale"
)

// ValidStoryType reports whether t is one of the known story types.
func ValidStoryType(t StoryType) bool {
	switch t {
	case StoryTypeFree, StoryTypeDonation, StoryTypeSale:
		return true
	}
	return false
}

// Story is a user-authored content item. Price is set if and only if Type is
// StoryTypeSale.
type Story struct {
	ID        string
	UserID    string
	Title     string
	Excerpt   string
	Body      string
	Tags      []string
	Type      StoryType
	Price     *int64
	Likes     int64
	CreatedAt time.Time
}

// Favorite records that a user favorited a story. The (UserID, StoryID) pair
// is unique; toggling works by presence, not by counting.
type Favorite struct {
	ID        string
	UserID    string
	StoryID   string
	CreatedAt time.Time
}
