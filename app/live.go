package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/CrestNiraj12/feedline/domain"
)

// ChangeKind classifies a notification published to the presentation layer.
type ChangeKind int

const (
	// ChangeInserted: a live status was added.
	ChangeInserted ChangeKind = iota
	// ChangeDeleted: a status was removed.
	ChangeDeleted
	// ChangeUpdated: a status was replaced by its edited version.
	ChangeUpdated
	// ChangeGapFilled: statuses missed while disconnected were loaded, or Err
	// says why they could not be.
	ChangeGapFilled
	// ChangeLive: the stream is connected.
	ChangeLive
	// ChangeDegraded: the stream dropped; live updates are paused.
	ChangeDegraded
	// ChangeStreamEnded: the stream is gone for good.
	ChangeStreamEnded
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeInserted:
		return "inserted"
	case ChangeDeleted:
		return "deleted"
	case ChangeUpdated:
		return "updated"
	case ChangeGapFilled:
		return "gap-filled"
	case ChangeLive:
		return "live"
	case ChangeDegraded:
		return "degraded"
	case ChangeStreamEnded:
		return "stream-ended"
	default:
		return "unknown"
	}
}

// Change is one incremental notification about a Feed.
type Change struct {
	Kind     ChangeKind
	StatusID string
	Status   *domain.Status
	// Visible is set for inserts and updates that pass the current filter.
	Visible bool
	// Count is the number of statuses added by a gap fill. Truncated means
	// the fill gave up before reaching the newest status.
	Count     int
	Truncated bool
	Err       error
}

// LiveChannel merges a push subscription into a Feed.
type LiveChannel struct {
	timeline domain.Timeline
	streams  StreamService
	feed     *Feed
	pager    *Pager
	out      chan<- Change
	log      zerolog.Logger

	connectedOnce bool
	ended         bool
}

// NewLiveChannel creates a channel for tl that mutates feed and publishes to
// out. pager may be nil, in which case reconnects do not fill the gap.
func NewLiveChannel(tl domain.Timeline, streams StreamService, feed *Feed, pager *Pager, out chan<- Change, log zerolog.Logger) *LiveChannel {
	return &LiveChannel{
		timeline: tl,
		streams:  streams,
		feed:     feed,
		pager:    pager,
		out:      out,
		log:      log,
	}
}

// Run subscribes and consumes events until ctx ends or the subscription
// finishes. A failure to subscribe is published as ChangeStreamEnded and
// returned.
func (c *LiveChannel) Run(ctx context.Context) error {
	sub, err := c.streams.Subscribe(ctx, c.timeline)
	if err != nil {
		c.log.Warn().Err(err).Msg("subscribe failed")
		c.publish(ctx, Change{Kind: ChangeStreamEnded, Err: err})
		return err
	}
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-sub.Events():
			if !ok {
				if ctx.Err() == nil && !c.ended {
					c.publish(ctx, Change{Kind: ChangeStreamEnded, Err: errors.New("stream closed")})
				}
				return nil
			}
			if ch, ok := c.apply(ctx, ev); ok {
				c.publish(ctx, ch)
			}
		}
	}
}

// apply merges one event into the feed and reports the change to publish.
func (c *LiveChannel) apply(ctx context.Context, ev domain.StreamEvent) (Change, bool) {
	if c.feed.Closed() {
		return Change{}, false
	}
	switch ev.Kind {
	case domain.EventNewStatus:
		if ev.Status == nil {
			return Change{}, false
		}
		inserted, visible := c.feed.insert(*ev.Status)
		if !inserted {
			c.log.Debug().Str("id", ev.Status.ID).Msg("duplicate live status discarded")
			return Change{}, false
		}
		return Change{Kind: ChangeInserted, StatusID: ev.Status.ID, Status: ev.Status, Visible: visible}, true

	case domain.EventStatusDeleted:
		if !c.feed.remove(ev.StatusID) {
			return Change{}, false
		}
		return Change{Kind: ChangeDeleted, StatusID: ev.StatusID}, true

	case domain.EventStatusUpdated:
		if ev.Status == nil || !c.feed.replace(*ev.Status) {
			return Change{}, false
		}
		return Change{
			Kind:     ChangeUpdated,
			StatusID: ev.Status.ID,
			Status:   ev.Status,
			Visible:  domain.Include(*ev.Status, c.feed.Filter()),
		}, true

	case domain.EventConnected:
		reconnect := c.connectedOnce
		c.connectedOnce = true
		if reconnect && c.pager != nil {
			c.publish(ctx, Change{Kind: ChangeLive})
			res, err := c.pager.LoadNewer(ctx)
			if err != nil {
				if errors.Is(err, ErrSessionClosed) {
					return Change{}, false
				}
				return Change{Kind: ChangeGapFilled, Err: err}, true
			}
			return Change{Kind: ChangeGapFilled, Count: res.Added, Truncated: res.Truncated}, true
		}
		return Change{Kind: ChangeLive}, true

	case domain.EventDisconnected:
		if ev.Final {
			c.ended = true
			return Change{Kind: ChangeStreamEnded, Err: ev.Err}, true
		}
		return Change{Kind: ChangeDegraded, Err: ev.Err}, true
	}
	return Change{}, false
}

func (c *LiveChannel) publish(ctx context.Context, ch Change) {
	select {
	case c.out <- ch:
	case <-ctx.Done():
	}
}
