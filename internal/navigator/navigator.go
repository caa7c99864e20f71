// Package navigator tracks the position within an ordered clip feed.
package navigator

import (
	"github.com/clipdeck/clipdeck/internal/clip"
)

// Activator starts playback of a clip. *playback.Controller satisfies it.
type Activator interface {
	Activate(clipID string) error
}

// Navigator holds the clip sequence and a cursor into it. The cursor never wraps.
type Navigator struct {
	clips    []clip.Clip
	current  int // -1 when the feed is empty
	activate Activator
}

// New creates a navigator over an empty feed.
func New(activate Activator) *Navigator {
	return &Navigator{current: -1, activate: activate}
}

// LoadFeed replaces the sequence and activates the first clip if there is one.
func (n *Navigator) LoadFeed(clips []clip.Clip) error {
	n.clips = append([]clip.Clip(nil), clips...)
	if len(n.clips) == 0 {
		n.current = -1
		return nil
	}
	n.current = 0
	return n.activate.Activate(n.clips[0].ID)
}

// Advance moves to the next clip. At the last clip it does nothing.
func (n *Navigator) Advance() error {
	if n.current < 0 || n.current >= len(n.clips)-1 {
		return nil
	}
	n.current++
	return n.activate.Activate(n.clips[n.current].ID)
}

// Retreat moves to the previous clip. At the first clip it does nothing.
func (n *Navigator) Retreat() error {
	if n.current <= 0 {
		return nil
	}
	n.current--
	return n.activate.Activate(n.clips[n.current].ID)
}

// Index returns the cursor, false when the feed is empty.
func (n *Navigator) Index() (int, bool) {
	return n.current, n.current >= 0
}

// Current returns the clip under the cursor.
func (n *Navigator) Current() (clip.Clip, bool) {
	if n.current < 0 {
		return clip.Clip{}, false
	}
	return n.clips[n.current], true
}

// Len returns the number of clips.
func (n *Navigator) Len() int {
	return len(n.clips)
}

// AtEnd reports whether the cursor is on the last clip.
func (n *Navigator) AtEnd() bool {
	return n.current >= 0 && n.current == len(n.clips)-1
}

// Clips returns the sequence in display order.
func (n *Navigator) Clips() []clip.Clip {
	return append([]clip.Clip(nil), n.clips...)
}
