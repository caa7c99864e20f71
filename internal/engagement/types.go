// Package engagement keeps per-clip like, dislike, save and share state.
//
// Mutations are applied locally before the backend confirms them. Each op
// owns a lane on its clip; the lane's fields are snapshotted before the
// optimistic change and restored exactly if confirmation fails.
package engagement

import (
	"context"
	"errors"
	"fmt"

	"github.com/clipdeck/clipdeck/internal/backend"
)

var (
	ErrUnauthenticated     = errors.New("engagement: no signed-in user")
	ErrOperationInProgress = errors.New("engagement: operation already in progress")
	ErrNetworkFailure      = errors.New("engagement: network failure")
	ErrUnknownClip         = errors.New("engagement: unknown clip")
)

// ServerRejectedError is returned when the backend refused a mutation.
type ServerRejectedError struct {
	StatusCode int
	Message    string
}

func (e *ServerRejectedError) Error() string {
	return fmt.Sprintf("engagement: server rejected (status %d): %s", e.StatusCode, e.Message)
}

// Kind names an engagement action.
type Kind string

const (
	KindLike    Kind = "like"
	KindDislike Kind = "dislike"
	KindSave    Kind = "save"
	KindShare   Kind = "share"
)

// lane groups kinds that write the same fields; at most one op per clip lane is in flight.
type lane string

const (
	laneReaction lane = "reaction"
	laneSave     lane = "save"
	laneShare    lane = "share"
)

func (k Kind) lane() lane {
	switch k {
	case KindLike, KindDislike:
		return laneReaction
	case KindSave:
		return laneSave
	default:
		return laneShare
	}
}

// Backend is the confirming collaborator. *backend.Client satisfies it.
type Backend interface {
	ToggleLike(ctx context.Context, clipID string) (*backend.ReactionState, error)
	ToggleDislike(ctx context.Context, clipID string) (*backend.ReactionState, error)
	Save(ctx context.Context, clipID string) (int, error)
	Share(ctx context.Context, clipID string) (int, error)
}

// Engagement is a point-in-time copy of a clip's engagement state.
// Id slices are sorted so snapshots compare with cmp.Equal.
type Engagement struct {
	ClipID       string
	LikedBy      []string
	DislikedBy   []string
	SavedBy      []string
	SavedByCount int
	ShareCount   int
}

// Likes returns the like count.
func (e Engagement) Likes() int { return len(e.LikedBy) }

// Dislikes returns the dislike count.
func (e Engagement) Dislikes() int { return len(e.DislikedBy) }

// LikedByUser reports whether userID is in the like set.
func (e Engagement) LikedByUser(userID string) bool { return contains(e.LikedBy, userID) }

// DislikedByUser reports whether userID is in the dislike set.
func (e Engagement) DislikedByUser(userID string) bool { return contains(e.DislikedBy, userID) }

// SavedByUser reports whether userID saved the clip.
func (e Engagement) SavedByUser(userID string) bool { return contains(e.SavedBy, userID) }

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Change is delivered to the store observer once an op settles.
type Change struct {
	ClipID string
	Kind   Kind
	State  Engagement
	Err    error // nil when confirmed; otherwise the state was rolled back
}
