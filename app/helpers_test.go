package app

import (
	"context"
	"strconv"
	"sync"

	"github.com/CrestNiraj12/feedline/domain"
)

func status(id string) domain.Status {
	return domain.Status{ID: id, Content: "<p>" + id + "</p>", Account: domain.Account{ID: "1", Acct: "alice"}}
}

func reply(id, parent string) domain.Status {
	st := status(id)
	st.InReplyToID = parent
	return st
}

func boost(id, of string) domain.Status {
	inner := status(of)
	st := status(id)
	st.Reblog = &inner
	return st
}

func ids(list []domain.Status) []string {
	out := make([]string, 0, len(list))
	for _, st := range list {
		out = append(out, st.ID)
	}
	return out
}

func pageOf(list ...domain.Status) Page {
	p := Page{Statuses: list, RawCount: len(list)}
	if len(list) > 0 {
		p.LastRawID = list[len(list)-1].ID
	}
	return p
}

// fakeTimelines serves pages keyed by the query cursor. An optional gate
// blocks every call until it is closed.
type fakeTimelines struct {
	mu      sync.Mutex
	older   map[string]Page
	newer   map[string]Page
	err     error
	gate    chan struct{}
	started chan struct{}
	calls   []PageQuery
}

func newFakeTimelines() *fakeTimelines {
	return &fakeTimelines{older: map[string]Page{}, newer: map[string]Page{}}
}

func (f *fakeTimelines) FetchPage(ctx context.Context, _ domain.Timeline, q PageQuery) (Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	gate, started := f.gate, f.started
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return Page{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return Page{}, f.err
	}
	if q.MinID != "" {
		return f.newer[q.MinID], nil
	}
	return f.older[q.MaxID], nil
}

// chainNewer registers pages full pages of limit statuses each, walking
// forward from the numeric id after.
func (f *fakeTimelines) chainNewer(after, limit, pages int) {
	minID := after
	for range pages {
		list := make([]domain.Status, 0, limit)
		for id := minID + limit; id > minID; id-- {
			list = append(list, status(strconv.Itoa(id)))
		}
		f.newer[strconv.Itoa(minID)] = pageOf(list...)
		minID += limit
	}
}

func (f *fakeTimelines) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeSubscription struct {
	events chan domain.StreamEvent
	once   sync.Once
	closed chan struct{}
}

func newFakeSubscription() *fakeSubscription {
	return &fakeSubscription{events: make(chan domain.StreamEvent, 16), closed: make(chan struct{})}
}

func (s *fakeSubscription) Events() <-chan domain.StreamEvent { return s.events }

func (s *fakeSubscription) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

type fakeStreams struct {
	sub *fakeSubscription
	err error
}

func (f *fakeStreams) Subscribe(context.Context, domain.Timeline) (Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sub, nil
}
