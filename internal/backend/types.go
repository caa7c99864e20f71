package backend

import (
	"encoding/json"
	"time"

	"github.com/clipdeck/clipdeck/internal/clip"
)

// ReactionState is the authoritative like/dislike membership of a clip. A nil
// list was not part of the reply and says nothing about that side.
type ReactionState struct {
	LikedBy    []string
	DislikedBy []string
}

// API response types (private - implementation detail)

type clipResponse struct {
	ID           string          `json:"_id"`
	UserID       string          `json:"userId"`
	Title        string          `json:"title"`
	Desc         string          `json:"desc"`
	ImgURL       string          `json:"imgUrl"`
	VideoURL     string          `json:"videoUrl"`
	Views        int64           `json:"views"`
	Likes        []string        `json:"likes"`
	Dislikes     []string        `json:"dislikes"`
	SavedBy      []string        `json:"savedBy"`
	SavedByCount *int            `json:"savedByCount"`
	Share        json.RawMessage `json:"share"`
	ShareCount   *int            `json:"shareCount"`
	CreatedAt    string          `json:"createdAt"`
}

func (r clipResponse) toClip() clip.Clip {
	createdAt, _ := time.Parse(time.RFC3339, r.CreatedAt)

	savedCount := len(r.SavedBy)
	if r.SavedByCount != nil && *r.SavedByCount >= 0 {
		savedCount = *r.SavedByCount
	}

	shareCount := 0
	if r.ShareCount != nil && *r.ShareCount >= 0 {
		shareCount = *r.ShareCount
	} else if len(r.Share) > 0 {
		if n, err := parseShareCount(r.Share); err == nil {
			shareCount = n
		}
	}

	return clip.Clip{
		ID:           r.ID,
		MediaURL:     r.VideoURL,
		ThumbnailURL: r.ImgURL,
		Title:        r.Title,
		Description:  r.Desc,
		OwnerID:      r.UserID,
		Views:        r.Views,
		CreatedAt:    createdAt,
		LikedBy:      nonNil(r.Likes),
		DislikedBy:   nonNil(r.Dislikes),
		SavedBy:      r.SavedBy,
		SavedByCount: savedCount,
		ShareCount:   shareCount,
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

type reactionResponse struct {
	Likes    []string `json:"likes"`
	Dislikes []string `json:"dislikes"`
}

type saveResponse struct {
	SavedByCount *int `json:"savedByCount"`
}

type shareResponse struct {
	ShareCount *int `json:"shareCount"`
}

type errorResponse struct {
	Message string `json:"message"`
}
