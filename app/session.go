package app

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/CrestNiraj12/feedline/domain"
)

const changeBufSize = 256

// SessionDeps are the remote services a Session uses. Streams may be nil to
// disable live updates.
type SessionDeps struct {
	Timelines TimelineService
	Streams   StreamService
	Log       zerolog.Logger
}

// SessionOptions configure one Session.
type SessionOptions struct {
	Filter    domain.FilterOptions
	PageLimit int
}

// Session is the scoped owner of one active timeline view: its Feed, Pager
// and, for streamable timelines, its LiveChannel. It is acquired when the
// view opens and released with Close when the view goes away.
type Session struct {
	id       string
	timeline domain.Timeline
	feed     *Feed
	pager    *Pager
	live     *LiveChannel
	changes  chan Change
	log      zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	started bool
	closed  bool
	wg      sync.WaitGroup
}

// NewSession validates tl and assembles the engine for it.
func NewSession(tl domain.Timeline, deps SessionDeps, opts SessionOptions) (*Session, error) {
	if err := tl.Validate(); err != nil {
		return nil, err
	}
	id := uuid.NewString()
	log := deps.Log.With().Str("session", id).Str("timeline", tl.Key()).Logger()

	feed := NewFeed(opts.Filter)
	pager := NewPager(tl, deps.Timelines, feed, opts.PageLimit, log)
	changes := make(chan Change, changeBufSize)

	var live *LiveChannel
	if deps.Streams != nil && tl.Streamable() {
		live = NewLiveChannel(tl, deps.Streams, feed, pager, changes, log)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:       id,
		timeline: tl,
		feed:     feed,
		pager:    pager,
		live:     live,
		changes:  changes,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

func (s *Session) ID() string                { return s.id }
func (s *Session) Timeline() domain.Timeline { return s.timeline }
func (s *Session) Feed() *Feed               { return s.feed }
func (s *Session) Pager() *Pager             { return s.pager }

// Live reports whether the session has a live update channel.
func (s *Session) Live() bool { return s.live != nil }

// Changes delivers live notifications. It is closed when the live channel
// stops, immediately on Start for sessions without one, or on Close.
func (s *Session) Changes() <-chan Change { return s.changes }

// Context is cancelled when the session closes; use it for the session's
// own requests so they stop with the view.
func (s *Session) Context() context.Context { return s.ctx }

// Start launches the live channel. It is a no-op after the first call or
// after Close.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.closed {
		return
	}
	s.started = true
	if s.live == nil {
		close(s.changes)
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(s.changes)
		if err := s.live.Run(s.ctx); err != nil {
			s.log.Warn().Err(err).Msg("live updates unavailable")
		}
	}()
	s.log.Info().Msg("session started")
}

// LoadNextPage loads the next older page within the session's lifetime.
func (s *Session) LoadNextPage() (PageResult, error) {
	return s.pager.LoadNextPage(s.ctx)
}

// LoadNewer loads statuses newer than the newest retained one.
func (s *Session) LoadNewer() (PageResult, error) {
	return s.pager.LoadNewer(s.ctx)
}

// SetFilter re-evaluates the retained list under opts and returns the new
// visible count.
func (s *Session) SetFilter(opts domain.FilterOptions) int {
	return s.feed.SetFilter(opts)
}

// Close releases the subscription and marks the feed closed so in-flight
// results are discarded. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	started := s.started
	s.mu.Unlock()

	s.feed.close()
	s.cancel()
	s.wg.Wait()
	if !started {
		close(s.changes)
	}
	s.log.Info().Msg("session closed")
}
