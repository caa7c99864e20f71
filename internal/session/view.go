package session

import (
	"github.com/clipdeck/clipdeck/internal/clip"
	"github.com/clipdeck/clipdeck/internal/engagement"
	"github.com/clipdeck/clipdeck/internal/playback"
)

// View is what the presentation layer renders for the current clip.
type View struct {
	UserID     string
	Category   string
	Index      int
	Total      int
	HasClip    bool
	AtStart    bool
	AtEnd      bool
	Clip       clip.Clip
	Engagement engagement.Engagement
	Playback   playback.Status
}

// Liked reports whether the session user likes the current clip.
func (v View) Liked() bool { return v.UserID != "" && v.Engagement.LikedByUser(v.UserID) }

// Disliked reports whether the session user dislikes the current clip.
func (v View) Disliked() bool { return v.UserID != "" && v.Engagement.DislikedByUser(v.UserID) }

// Saved reports whether the session user saved the current clip.
func (v View) Saved() bool { return v.UserID != "" && v.Engagement.SavedByUser(v.UserID) }

// State returns the view of the current clip.
func (s *Session) State() View {
	s.mu.Lock()
	c, ok := s.nav.Current()
	idx, _ := s.nav.Index()
	v := View{
		UserID:   s.user.ID,
		Category: s.category,
		Index:    idx,
		Total:    s.nav.Len(),
		HasClip:  ok,
		AtStart:  ok && idx == 0,
		AtEnd:    s.nav.AtEnd(),
		Clip:     c,
	}
	s.mu.Unlock()

	if !ok {
		return v
	}
	v.Engagement, _ = s.store.Snapshot(c.ID)
	v.Playback, _ = s.ctrl.Status(c.ID)
	return v
}

// Clips returns the loaded feed in display order.
func (s *Session) Clips() []clip.Clip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Clips()
}

// SlotState returns the playback state of any loaded clip.
func (s *Session) SlotState(clipID string) playback.State {
	return s.ctrl.State(clipID)
}
