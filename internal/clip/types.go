// Package clip defines the short-form video item shared by the feed components.
package clip

import "time"

// Clip is one playable unit of the feed.
type Clip struct {
	ID           string    `json:"id"`
	MediaURL     string    `json:"media_url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	OwnerID      string    `json:"owner_id,omitempty"`
	Views        int64     `json:"views"`
	CreatedAt    time.Time `json:"created_at"`
	LikedBy      []string  `json:"liked_by"`
	DislikedBy   []string  `json:"disliked_by"`
	SavedBy      []string  `json:"saved_by,omitempty"`
	SavedByCount int       `json:"saved_by_count"`
	ShareCount   int       `json:"share_count"`
}

// Likes returns the number of users who liked the clip.
func (c Clip) Likes() int {
	return len(c.LikedBy)
}

// IDs returns the clip ids in feed order.
func IDs(clips []Clip) []string {
	ids := make([]string, 0, len(clips))
	for _, c := range clips {
		ids = append(ids, c.ID)
	}
	return ids
}
