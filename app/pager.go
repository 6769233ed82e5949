package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/CrestNiraj12/feedline/domain"
)

const (
	// DefaultPageLimit is the page size when none is configured.
	DefaultPageLimit = 20

	// maxGapPages bounds how many pages LoadNewer walks forward.
	maxGapPages = 5
)

// PageResult describes the outcome of one pager call.
type PageResult struct {
	// Skipped is set when another request was already in flight and the call
	// did nothing.
	Skipped bool
	// Exhausted is set when the server returned an empty page: no more data
	// in that direction.
	Exhausted bool
	// Raw is the number of records the server returned.
	Raw int
	// Added is the number of new statuses retained; Visible of those passed
	// the filter.
	Added   int
	Visible int
	// Truncated is set when LoadNewer stopped at its page bound before
	// reaching the newest status, leaving a hole below the head.
	Truncated bool
	// Cursor is the pager's cursor after the call.
	Cursor string
}

// Pager owns the pagination state of one timeline and feeds pages into the
// shared Feed.
type Pager struct {
	timeline domain.Timeline
	service  TimelineService
	feed     *Feed
	limit    int
	log      zerolog.Logger

	mu            sync.Mutex
	cursor        string
	inFlight      bool
	newerInFlight bool
	exhausted     bool
}

// NewPager creates a pager for tl that appends into feed.
func NewPager(tl domain.Timeline, service TimelineService, feed *Feed, limit int, log zerolog.Logger) *Pager {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	return &Pager{
		timeline: tl,
		service:  service,
		feed:     feed,
		limit:    limit,
		log:      log,
	}
}

// Cursor returns the id older pages are requested from; empty means newest.
func (p *Pager) Cursor() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

// Exhausted reports whether the last older-page request came back empty.
func (p *Pager) Exhausted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exhausted
}

// Loading reports whether an older-page request is in flight.
func (p *Pager) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight
}

// LoadNextPage fetches the page older than the cursor and appends it. A call
// made while another is in flight is a no-op. On failure the feed and cursor
// are unchanged and the error is returned; there is no automatic retry.
func (p *Pager) LoadNextPage(ctx context.Context) (PageResult, error) {
	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		return PageResult{Skipped: true, Cursor: p.Cursor()}, nil
	}
	p.inFlight = true
	cursor := p.cursor
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.inFlight = false
		p.mu.Unlock()
	}()

	page, err := p.service.FetchPage(ctx, p.timeline, PageQuery{MaxID: cursor, Limit: p.limit})
	if p.feed.Closed() {
		return PageResult{}, ErrSessionClosed
	}
	if err != nil {
		p.log.Warn().Err(err).Str("max_id", cursor).Msg("page load failed")
		return PageResult{Cursor: cursor}, fmt.Errorf("loading %s page: %w", p.timeline.Label(), err)
	}

	if page.RawCount == 0 || page.LastRawID == "" {
		p.mu.Lock()
		p.exhausted = true
		p.mu.Unlock()
		p.log.Debug().Str("max_id", cursor).Msg("no more data")
		return PageResult{Exhausted: true, Raw: page.RawCount, Cursor: cursor}, nil
	}

	added, visible, ok := p.feed.appendPage(page.Statuses)
	if !ok {
		return PageResult{}, ErrSessionClosed
	}

	// The cursor follows the raw page boundary, not the filtered subset, so
	// filtered-out records are never fetched again.
	p.mu.Lock()
	p.cursor = page.LastRawID
	p.exhausted = false
	next := p.cursor
	p.mu.Unlock()

	p.log.Debug().
		Str("max_id", cursor).
		Str("cursor", next).
		Int("raw", page.RawCount).
		Int("added", added).
		Int("visible", visible).
		Msg("page loaded")

	return PageResult{Raw: page.RawCount, Added: added, Visible: visible, Cursor: next}, nil
}

// LoadNewer fetches statuses newer than the newest retained one and inserts
// them through the idempotent insert path. It fills the gap left by a
// dropped stream and backs manual refresh. On an empty feed it loads the
// first page instead.
func (p *Pager) LoadNewer(ctx context.Context) (PageResult, error) {
	newest, ok := p.feed.Newest()
	if !ok {
		return p.LoadNextPage(ctx)
	}

	p.mu.Lock()
	if p.newerInFlight {
		p.mu.Unlock()
		return PageResult{Skipped: true, Cursor: p.Cursor()}, nil
	}
	p.newerInFlight = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.newerInFlight = false
		p.mu.Unlock()
	}()

	var res PageResult
	minID := newest
	caughtUp := false
	for range maxGapPages {
		page, err := p.service.FetchPage(ctx, p.timeline, PageQuery{MinID: minID, Limit: p.limit})
		if p.feed.Closed() {
			return PageResult{}, ErrSessionClosed
		}
		if err != nil {
			p.log.Warn().Err(err).Str("min_id", minID).Msg("gap fill failed")
			return res, fmt.Errorf("loading newer %s statuses: %w", p.timeline.Label(), err)
		}
		res.Raw += page.RawCount
		if page.RawCount == 0 {
			caughtUp = true
			break
		}
		for _, st := range page.Statuses {
			inserted, visible := p.feed.insert(st)
			if inserted {
				res.Added++
			}
			if inserted && visible {
				res.Visible++
			}
			if domain.CompareIDs(st.ID, minID) > 0 {
				minID = st.ID
			}
		}
		if page.RawCount < p.limit {
			caughtUp = true
			break
		}
	}
	res.Exhausted = res.Raw == 0
	res.Truncated = !caughtUp
	res.Cursor = p.Cursor()
	p.log.Debug().Int("added", res.Added).Bool("truncated", res.Truncated).Msg("newer statuses loaded")
	return res, nil
}
