// Package playback enforces that at most one mounted clip plays at a time.
//
// Slots are kept in an arena keyed by clip id. Every transport operation is
// best-effort: media failures are logged and degrade the slot to Idle with a
// status flag instead of escaping to the caller as a panic.
package playback

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrPlaybackDegraded = errors.New("playback degraded")
	ErrSlotNotMounted   = errors.New("playback: slot not mounted")
)

// Media is the capability a mounted media element offers.
type Media interface {
	Play() error
	Pause() error
	SetMuted(muted bool)
	Position() time.Duration
	// Duration reports false until the media metadata is loaded.
	Duration() (time.Duration, bool)
	SeekTo(pos time.Duration) error
}

// State is the transport state of a slot.
type State int

const (
	Idle State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "idle"
	}
}

// Status is the observable condition of a slot.
type Status struct {
	State    State
	Degraded bool
	Err      error
	Position time.Duration
	Duration time.Duration
}

type slot struct {
	media    Media
	state    State
	degraded bool
	err      error
}

// Option configures the Controller.
type Option func(*Controller)

// WithLogger sets the logger used for media failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// Controller owns the transport state of every mounted slot.
type Controller struct {
	mu     sync.Mutex
	slots  map[string]*slot
	logger zerolog.Logger
}

// NewController creates a controller with no mounted slots.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		slots:  make(map[string]*slot),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mount registers media for a clip. A previously mounted handle is paused and replaced.
func (c *Controller) Mount(clipID string, m Media) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.slots[clipID]; ok && old.state == Playing {
		c.pause(clipID, old)
	}
	c.slots[clipID] = &slot{media: m}
}

// Unmount pauses and forgets a clip's media.
func (c *Controller) Unmount(clipID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.slots[clipID]; ok {
		if s.state == Playing {
			c.pause(clipID, s)
		}
		delete(c.slots, clipID)
	}
}

// Activate plays clipID and pauses every other mounted slot.
func (c *Controller) Activate(clipID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pauseOthers(clipID)

	s, ok := c.slots[clipID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSlotNotMounted, clipID)
	}
	return c.play(clipID, s)
}

// TogglePlayback pauses a playing slot or plays a paused or idle one.
func (c *Controller) TogglePlayback(clipID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots[clipID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSlotNotMounted, clipID)
	}
	if s.state == Playing {
		return c.pause(clipID, s)
	}
	c.pauseOthers(clipID)
	return c.play(clipID, s)
}

// Pause pauses clipID if it is playing.
func (c *Controller) Pause(clipID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots[clipID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSlotNotMounted, clipID)
	}
	if s.state != Playing {
		return nil
	}
	return c.pause(clipID, s)
}

// Seek moves clipID's position by delta, clamped to [0, duration].
// It does nothing while the duration is unknown.
func (c *Controller) Seek(clipID string, delta time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots[clipID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSlotNotMounted, clipID)
	}

	duration, known := s.media.Duration()
	if !known {
		return nil
	}

	target := s.media.Position() + delta
	if target < 0 {
		target = 0
	}
	if target > duration {
		target = duration
	}

	if err := s.media.SeekTo(target); err != nil {
		return c.degrade(clipID, s, "seek", err)
	}
	return nil
}

// State returns the slot state, Idle for unmounted clips.
func (c *Controller) State(clipID string) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.slots[clipID]; ok {
		return s.state
	}
	return Idle
}

// Status returns the observable condition of a mounted slot.
func (c *Controller) Status(clipID string) (Status, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots[clipID]
	if !ok {
		return Status{}, false
	}
	duration, _ := s.media.Duration()
	return Status{
		State:    s.state,
		Degraded: s.degraded,
		Err:      s.err,
		Position: s.media.Position(),
		Duration: duration,
	}, true
}

// Playing returns the clip currently playing, if any.
func (c *Controller) Playing() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, s := range c.slots {
		if s.state == Playing {
			return id, true
		}
	}
	return "", false
}

func (c *Controller) play(clipID string, s *slot) error {
	err := s.media.Play()
	if err != nil {
		// Autoplay policies usually allow muted playback.
		c.logger.Debug().Err(err).Str("clip_id", clipID).Msg("play rejected, retrying muted")
		s.media.SetMuted(true)
		err = s.media.Play()
	}
	if err != nil {
		return c.degrade(clipID, s, "play", err)
	}
	s.state = Playing
	s.degraded = false
	s.err = nil
	return nil
}

func (c *Controller) pause(clipID string, s *slot) error {
	if err := s.media.Pause(); err != nil {
		return c.degrade(clipID, s, "pause", err)
	}
	s.state = Paused
	return nil
}

func (c *Controller) pauseOthers(clipID string) {
	for id, s := range c.slots {
		if id == clipID || s.state != Playing {
			continue
		}
		// Errors are recorded on the slot by degrade.
		_ = c.pause(id, s)
	}
}

func (c *Controller) degrade(clipID string, s *slot, op string, err error) error {
	c.logger.Warn().Err(err).Str("clip_id", clipID).Str("op", op).Msg("media operation failed")
	s.state = Idle
	s.degraded = true
	s.err = err
	return fmt.Errorf("%w: %s %s: %w", ErrPlaybackDegraded, op, clipID, err)
}
