package playback

import (
	"errors"
	"sync"
	"time"
)

// ErrAutoplayBlocked is returned by VirtualMedia when unmuted playback is refused.
var ErrAutoplayBlocked = errors.New("playback: autoplay blocked")

// VirtualOption configures a VirtualMedia.
type VirtualOption func(*VirtualMedia)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) VirtualOption {
	return func(v *VirtualMedia) {
		v.now = now
	}
}

// WithAutoplayPolicy makes unmuted Play calls fail, as browsers do without a user gesture.
func WithAutoplayPolicy() VirtualOption {
	return func(v *VirtualMedia) {
		v.blockUnmuted = true
	}
}

// WithMetadataPending leaves the duration unknown until LoadMetadata is called.
func WithMetadataPending() VirtualOption {
	return func(v *VirtualMedia) {
		v.known = false
	}
}

// VirtualMedia is a clock-driven Media that loops like the feed's video elements.
type VirtualMedia struct {
	mu           sync.Mutex
	now          func() time.Time
	duration     time.Duration
	known        bool
	offset       time.Duration
	startedAt    time.Time
	playing      bool
	muted        bool
	blockUnmuted bool
}

// NewVirtualMedia creates a paused media of the given length at position 0.
func NewVirtualMedia(duration time.Duration, opts ...VirtualOption) *VirtualMedia {
	v := &VirtualMedia{
		now:      time.Now,
		duration: duration,
		known:    true,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// LoadMetadata makes the duration known.
func (v *VirtualMedia) LoadMetadata() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.known = true
}

func (v *VirtualMedia) Play() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.blockUnmuted && !v.muted {
		return ErrAutoplayBlocked
	}
	if !v.playing {
		v.playing = true
		v.startedAt = v.now()
	}
	return nil
}

func (v *VirtualMedia) Pause() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.playing {
		v.offset = v.position()
		v.playing = false
	}
	return nil
}

func (v *VirtualMedia) SetMuted(muted bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.muted = muted
}

// Muted reports whether the media is muted.
func (v *VirtualMedia) Muted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.muted
}

// Paused reports whether the media is not playing.
func (v *VirtualMedia) Paused() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.playing
}

func (v *VirtualMedia) Position() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.position()
}

func (v *VirtualMedia) Duration() (time.Duration, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.duration, v.known
}

func (v *VirtualMedia) SeekTo(pos time.Duration) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.offset = pos
	if v.playing {
		v.startedAt = v.now()
	}
	return nil
}

func (v *VirtualMedia) position() time.Duration {
	if !v.playing {
		return v.offset
	}
	pos := v.offset + v.now().Sub(v.startedAt)
	if v.duration > 0 && pos >= v.duration {
		pos %= v.duration
	}
	return pos
}
