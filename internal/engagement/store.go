package engagement

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/clipdeck/clipdeck/internal/backend"
	"github.com/clipdeck/clipdeck/internal/clip"
)

const defaultRequestTimeout = 15 * time.Second

// Op is an engagement mutation whose local effect is already applied and
// whose confirmation is still running.
type Op struct {
	ClipID string
	Kind   Kind

	done  chan struct{}
	err   error
	count int
}

// Done is closed once the op is confirmed or rolled back.
func (o *Op) Done() <-chan struct{} { return o.done }

// Err returns the confirmation outcome. Only meaningful after Done is closed.
func (o *Op) Err() error { return o.err }

// Wait blocks until the op settles or ctx ends.
func (o *Op) Wait(ctx context.Context) error {
	select {
	case <-o.done:
		return o.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Count returns the authoritative count reported by the backend for save and share ops.
func (o *Op) Count() int { return o.count }

// ShareReady reports whether a settled share op succeeded, so the share dialog may open.
func (o *Op) ShareReady() bool {
	select {
	case <-o.done:
		return o.Kind == KindShare && o.err == nil
	default:
		return false
	}
}

type set map[string]struct{}

func newSet(ids []string) set {
	s := make(set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s set) clone() set {
	c := make(set, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

func (s set) sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type record struct {
	likedBy    set
	dislikedBy set
	savedBy    set
	savedCount int
	shareCount int
}

// laneState holds the fields a lane owns, captured before an optimistic change.
type laneState struct {
	likedBy    set
	dislikedBy set
	savedBy    set
	savedCount int
	shareCount int
}

func (r *record) capture(l lane) laneState {
	switch l {
	case laneReaction:
		return laneState{likedBy: r.likedBy.clone(), dislikedBy: r.dislikedBy.clone()}
	case laneSave:
		return laneState{savedBy: r.savedBy.clone(), savedCount: r.savedCount}
	default:
		return laneState{shareCount: r.shareCount}
	}
}

func (r *record) restore(l lane, st laneState) {
	switch l {
	case laneReaction:
		r.likedBy, r.dislikedBy = st.likedBy, st.dislikedBy
	case laneSave:
		r.savedBy, r.savedCount = st.savedBy, st.savedCount
	default:
		r.shareCount = st.shareCount
	}
}

func (r *record) snapshot(clipID string) Engagement {
	return Engagement{
		ClipID:       clipID,
		LikedBy:      r.likedBy.sorted(),
		DislikedBy:   r.dislikedBy.sorted(),
		SavedBy:      r.savedBy.sorted(),
		SavedByCount: r.savedCount,
		ShareCount:   r.shareCount,
	}
}

// reconcileReactions replaces the sides the backend reported. A reported like
// wins over a dislike; a reported dislike wins over an unreported like.
func (r *record) reconcileReactions(st *backend.ReactionState) {
	if st.DislikedBy != nil {
		r.dislikedBy = newSet(st.DislikedBy)
		if st.LikedBy == nil {
			for id := range r.dislikedBy {
				delete(r.likedBy, id)
			}
		}
	}
	if st.LikedBy != nil {
		r.likedBy = newSet(st.LikedBy)
		for id := range r.likedBy {
			delete(r.dislikedBy, id)
		}
	}
}

type laneKey struct {
	clipID string
	lane   lane
}

// Option configures the Store.
type Option func(*Store)

// WithRequestTimeout bounds each confirming call.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithObserver registers a callback invoked after every confirmation or rollback.
func WithObserver(fn func(Change)) Option {
	return func(s *Store) {
		s.observer = fn
	}
}

// WithLogger sets the logger used for rollbacks.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Store holds engagement state for the clips of a session.
type Store struct {
	backend  Backend
	timeout  time.Duration
	observer func(Change)
	logger   zerolog.Logger

	mu       sync.Mutex
	records  map[string]*record
	inflight map[laneKey]struct{}
	wg       sync.WaitGroup
}

// NewStore creates an empty store confirming through b.
func NewStore(b Backend, opts ...Option) *Store {
	s := &Store{
		backend:  b,
		timeout:  defaultRequestTimeout,
		logger:   zerolog.Nop(),
		records:  make(map[string]*record),
		inflight: make(map[laneKey]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load seeds state for clips not tracked yet. Already tracked clips keep
// their local state, which may carry unconfirmed changes.
func (s *Store) Load(clips []clip.Clip) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range clips {
		if _, ok := s.records[c.ID]; ok {
			continue
		}
		r := &record{
			likedBy:    newSet(c.LikedBy),
			dislikedBy: newSet(c.DislikedBy),
			savedBy:    newSet(c.SavedBy),
			savedCount: c.SavedByCount,
			shareCount: c.ShareCount,
		}
		for id := range r.likedBy {
			delete(r.dislikedBy, id)
		}
		s.records[c.ID] = r
	}
}

// MarkSaved records that userID saved clipID without changing the count.
func (s *Store) MarkSaved(clipID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.records[clipID]; ok && userID != "" {
		r.savedBy[userID] = struct{}{}
	}
}

// Snapshot returns a copy of the clip's current state.
func (s *Store) Snapshot(clipID string) (Engagement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[clipID]
	if !ok {
		return Engagement{}, false
	}
	return r.snapshot(clipID), true
}

// InFlight reports whether an op of kind's lane is pending on clipID.
func (s *Store) InFlight(clipID string, kind Kind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[laneKey{clipID, kind.lane()}]
	return ok
}

// ToggleLike adds userID to the like set (leaving the dislike set) or removes it.
func (s *Store) ToggleLike(ctx context.Context, clipID, userID string) (*Op, error) {
	return s.start(ctx, clipID, userID, KindLike, func(r *record) {
		toggleReaction(r.likedBy, r.dislikedBy, userID)
	})
}

// ToggleDislike adds userID to the dislike set (leaving the like set) or removes it.
func (s *Store) ToggleDislike(ctx context.Context, clipID, userID string) (*Op, error) {
	return s.start(ctx, clipID, userID, KindDislike, func(r *record) {
		toggleReaction(r.dislikedBy, r.likedBy, userID)
	})
}

// Save toggles userID's saved membership. The backend's count replaces the local one.
func (s *Store) Save(ctx context.Context, clipID, userID string) (*Op, error) {
	return s.start(ctx, clipID, userID, KindSave, func(r *record) {
		if _, ok := r.savedBy[userID]; ok {
			delete(r.savedBy, userID)
			if r.savedCount > 0 {
				r.savedCount--
			}
			return
		}
		r.savedBy[userID] = struct{}{}
		r.savedCount++
	})
}

// Share records a share. The backend's count replaces the local one.
func (s *Store) Share(ctx context.Context, clipID, userID string) (*Op, error) {
	return s.start(ctx, clipID, userID, KindShare, func(r *record) {
		r.shareCount++
	})
}

// Wait blocks until every pending confirmation has settled.
func (s *Store) Wait() {
	s.wg.Wait()
}

func toggleReaction(target, other set, userID string) {
	if _, ok := target[userID]; ok {
		delete(target, userID)
		return
	}
	target[userID] = struct{}{}
	delete(other, userID)
}

func (s *Store) start(ctx context.Context, clipID, userID string, kind Kind, mutate func(*record)) (*Op, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	key := laneKey{clipID, kind.lane()}

	s.mu.Lock()
	r, ok := s.records[clipID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrUnknownClip, clipID)
	}
	if _, busy := s.inflight[key]; busy {
		s.mu.Unlock()
		return nil, ErrOperationInProgress
	}
	s.inflight[key] = struct{}{}
	before := r.capture(key.lane)
	mutate(r)
	s.mu.Unlock()

	op := &Op{ClipID: clipID, Kind: kind, done: make(chan struct{})}

	// Leaving the clip must not cancel its confirmation.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.confirm(callCtx, op, key, before)
	}()

	return op, nil
}

func (s *Store) confirm(ctx context.Context, op *Op, key laneKey, before laneState) {
	var (
		reaction *backend.ReactionState
		count    int
		err      error
	)
	switch op.Kind {
	case KindLike:
		reaction, err = s.backend.ToggleLike(ctx, op.ClipID)
	case KindDislike:
		reaction, err = s.backend.ToggleDislike(ctx, op.ClipID)
	case KindSave:
		count, err = s.backend.Save(ctx, op.ClipID)
	case KindShare:
		count, err = s.backend.Share(ctx, op.ClipID)
	}

	s.mu.Lock()
	r := s.records[op.ClipID]
	if err != nil {
		err = classify(err)
		r.restore(key.lane, before)
	} else {
		switch op.Kind {
		case KindLike, KindDislike:
			if reaction != nil {
				r.reconcileReactions(reaction)
			}
		case KindSave:
			r.savedCount = count
		case KindShare:
			r.shareCount = count
		}
	}
	delete(s.inflight, key)
	change := Change{ClipID: op.ClipID, Kind: op.Kind, State: r.snapshot(op.ClipID), Err: err}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn().Err(err).Str("clip_id", op.ClipID).Str("kind", string(op.Kind)).Msg("engagement rolled back")
	} else {
		s.logger.Debug().Str("clip_id", op.ClipID).Str("kind", string(op.Kind)).Msg("engagement confirmed")
	}

	op.err = err
	op.count = count
	if s.observer != nil {
		s.observer(change)
	}
	close(op.done)
}

func classify(err error) error {
	var apiErr *backend.APIError
	switch {
	case errors.As(err, &apiErr):
		return &ServerRejectedError{StatusCode: apiErr.StatusCode, Message: apiErr.Message}
	case errors.Is(err, backend.ErrUnauthenticated):
		return fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	default:
		return fmt.Errorf("%w: %w", ErrNetworkFailure, err)
	}
}
