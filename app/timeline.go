package app

import (
	"context"

	"github.com/CrestNiraj12/feedline/domain"
)

// PageQuery carries the cursor parameters of a timeline request. Empty ids
// are omitted from the request.
type PageQuery struct {
	MaxID   string // Older than
	SinceID string // Newer than, newest first
	MinID   string // Immediately newer than
	Limit   int
}

// Page is one normalized timeline response.
type Page struct {
	Statuses []domain.Status
	// RawCount is the number of records the server returned, including ones
	// that failed to normalize.
	RawCount int
	// LastRawID is the id of the last raw record, the cursor for the next
	// older page.
	LastRawID string
}

// TimelineService fetches timeline pages from the remote instance.
type TimelineService interface {
	// FetchPage returns one page of the timeline, newest first.
	FetchPage(ctx context.Context, tl domain.Timeline, q PageQuery) (Page, error)
}

// Subscription is a live event sequence for one timeline. Events is closed
// when the subscription ends; Close releases the connection.
type Subscription interface {
	Events() <-chan domain.StreamEvent
	Close() error
}

// StreamService opens push subscriptions.
type StreamService interface {
	// Subscribe opens a subscription for tl. It fails with
	// domain.ErrNotStreamable for timelines without a stream.
	Subscribe(ctx context.Context, tl domain.Timeline) (Subscription, error)
}
