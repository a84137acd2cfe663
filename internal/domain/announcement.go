package domain

import "time"

// Announcement is an admin-authored broadcast notice. Pinned announcements
// sort ahead of unpinned ones.
type Announcement struct {
	ID        string
	AdminID   string
	Content   string
	Pinned    bool
	CreatedAt time.Time
}
