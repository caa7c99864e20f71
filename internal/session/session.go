// Package session wires the feed components together and exposes the only
// action surface the presentation layer uses.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/clipdeck/clipdeck/internal/clip"
	"github.com/clipdeck/clipdeck/internal/engagement"
	"github.com/clipdeck/clipdeck/internal/gesture"
	"github.com/clipdeck/clipdeck/internal/navigator"
	"github.com/clipdeck/clipdeck/internal/playback"
)

// DefaultCategory is the feed loaded by Start unless overridden.
const DefaultCategory = "shorts"

// DefaultClipLength is the duration of the virtual media mounted when no
// MediaFactory is given. Feed entries carry no duration.
const DefaultClipLength = 30 * time.Second

// ErrEmptyFeed is returned by actions that need a current clip.
var ErrEmptyFeed = errors.New("session: feed is empty")

// FeedLoadError reports that the initial feed could not be fetched.
// The session stays usable with an empty feed.
type FeedLoadError struct {
	Category string
	Err      error
}

func (e *FeedLoadError) Error() string {
	return fmt.Sprintf("failed to load %q feed: %v", e.Category, e.Err)
}

func (e *FeedLoadError) Unwrap() error { return e.Err }

// API is the backend collaborator. *backend.Client satisfies it.
type API interface {
	engagement.Backend
	FetchFeed(ctx context.Context, category string) ([]clip.Clip, error)
	FetchSaved(ctx context.Context) ([]clip.Clip, error)
	RecordView(ctx context.Context, clipID string) error
}

// User is the signed-in user acting in the session. A zero User is anonymous.
type User struct {
	ID string
}

// MediaFactory creates the media element mounted for a clip.
type MediaFactory func(c clip.Clip) playback.Media

// VirtualMediaFactory mounts a clock-driven virtual media of DefaultClipLength.
func VirtualMediaFactory(clip.Clip) playback.Media {
	return playback.NewVirtualMedia(DefaultClipLength)
}

// Option configures a Session.
type Option func(*Session)

// WithCategory selects the feed category.
func WithCategory(category string) Option {
	return func(s *Session) {
		if category != "" {
			s.category = category
		}
	}
}

// WithMediaFactory sets how media elements are created for loaded clips.
// A nil factory keeps VirtualMediaFactory.
func WithMediaFactory(f MediaFactory) Option {
	return func(s *Session) {
		if f != nil {
			s.newMedia = f
		}
	}
}

// WithLogger sets the session logger. Components get child loggers.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithObserver receives every settled engagement change.
func WithObserver(fn func(engagement.Change)) Option {
	return func(s *Session) {
		s.observer = fn
	}
}

// WithRequestTimeout bounds each background backend call.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// Session is the composition root of the feed player.
type Session struct {
	api      API
	user     User
	category string
	newMedia MediaFactory
	logger   zerolog.Logger
	observer func(engagement.Change)
	timeout  time.Duration

	store  *engagement.Store
	ctrl   *playback.Controller
	router *gesture.Router

	mu     sync.Mutex
	nav    *navigator.Navigator
	viewed map[string]bool
	views  sync.WaitGroup
}

// New creates a session for user. Nothing is fetched until Start.
func New(api API, user User, opts ...Option) *Session {
	s := &Session{
		api:      api,
		user:     user,
		category: DefaultCategory,
		newMedia: VirtualMediaFactory,
		logger:   zerolog.Nop(),
		timeout:  15 * time.Second,
		viewed:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.store = engagement.NewStore(api,
		engagement.WithRequestTimeout(s.timeout),
		engagement.WithObserver(s.observer),
		engagement.WithLogger(s.logger.With().Str("component", "engagement").Logger()),
	)
	s.ctrl = playback.NewController(playback.WithLogger(s.logger.With().Str("component", "playback").Logger()))
	s.router = gesture.NewRouter(s.ctrl)
	s.nav = navigator.New(s.ctrl)
	return s
}

// Start fetches the feed and activates its first clip. On failure it returns
// a *FeedLoadError and leaves the session with an empty feed.
func (s *Session) Start(ctx context.Context) error {
	var clips, saved []clip.Clip

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.api.FetchFeed(gctx, s.category)
		if err != nil {
			return err
		}
		clips = c
		return nil
	})
	if s.user.ID != "" {
		g.Go(func() error {
			c, err := s.api.FetchSaved(gctx)
			if err != nil {
				s.logger.Warn().Err(err).Msg("saved clips unavailable")
				return nil
			}
			saved = c
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("category", s.category).Msg("feed load failed")
		s.load(nil, nil)
		return &FeedLoadError{Category: s.category, Err: err}
	}

	s.load(clips, saved)
	s.logger.Info().Str("category", s.category).Int("clips", len(clips)).Msg("feed loaded")
	return nil
}

func (s *Session) load(clips, saved []clip.Clip) {
	s.store.Load(clips)
	for _, c := range saved {
		s.store.MarkSaved(c.ID, s.user.ID)
	}
	for _, c := range clips {
		s.ctrl.Mount(c.ID, s.newMedia(c))
	}

	s.mu.Lock()
	err := s.nav.LoadFeed(clips)
	s.mu.Unlock()
	if err != nil {
		s.logger.Warn().Err(err).Msg("first clip did not start")
	}
	s.recordView()
}

// Next moves to the following clip; a no-op at the end of the feed.
func (s *Session) Next() error {
	s.mu.Lock()
	err := s.nav.Advance()
	s.mu.Unlock()
	s.recordView()
	return err
}

// Previous moves to the preceding clip; a no-op at the start of the feed.
func (s *Session) Previous() error {
	s.mu.Lock()
	err := s.nav.Retreat()
	s.mu.Unlock()
	s.recordView()
	return err
}

// Tap routes a tap in zone to the current clip.
func (s *Session) Tap(zone gesture.Zone) error {
	c, err := s.current()
	if err != nil {
		return err
	}
	return s.router.Route(zone, c.ID)
}

// TapAt routes a tap at x within a viewport of the given width.
func (s *Session) TapAt(x, width float64) error {
	return s.Tap(gesture.ZoneAt(x, width))
}

// Like toggles the user's like on the current clip.
func (s *Session) Like(ctx context.Context) (*engagement.Op, error) {
	return s.act(ctx, s.store.ToggleLike)
}

// Dislike toggles the user's dislike on the current clip.
func (s *Session) Dislike(ctx context.Context) (*engagement.Op, error) {
	return s.act(ctx, s.store.ToggleDislike)
}

// Save toggles the saved state of the current clip.
func (s *Session) Save(ctx context.Context) (*engagement.Op, error) {
	return s.act(ctx, s.store.Save)
}

// Share records a share of the current clip. Open the share dialog once the op reports ShareReady.
func (s *Session) Share(ctx context.Context) (*engagement.Op, error) {
	return s.act(ctx, s.store.Share)
}

func (s *Session) act(ctx context.Context, fn func(context.Context, string, string) (*engagement.Op, error)) (*engagement.Op, error) {
	c, err := s.current()
	if err != nil {
		return nil, err
	}
	return fn(ctx, c.ID, s.user.ID)
}

func (s *Session) current() (clip.Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.nav.Current()
	if !ok {
		return clip.Clip{}, ErrEmptyFeed
	}
	return c, nil
}

// recordView reports the first activation of the current clip in the background.
func (s *Session) recordView() {
	c, err := s.current()
	if err != nil {
		return
	}

	s.mu.Lock()
	if s.viewed[c.ID] {
		s.mu.Unlock()
		return
	}
	s.viewed[c.ID] = true
	s.mu.Unlock()

	s.views.Add(1)
	go func() {
		defer s.views.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.api.RecordView(ctx, c.ID); err != nil {
			s.logger.Debug().Err(err).Str("clip_id", c.ID).Msg("view not recorded")
		}
	}()
}

// Close waits for every background confirmation and view report.
func (s *Session) Close() {
	s.store.Wait()
	s.views.Wait()
}
