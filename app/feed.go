package app

import (
	"slices"
	"sort"
	"sync"

	"github.com/CrestNiraj12/feedline/domain"
)

// Feed is the ordered status list of one timeline view. It retains every
// accepted status newest-first, unique by id, and exposes the subset that
// passes the current filter. Only the owning Pager and LiveChannel mutate it;
// the exported API is read-only apart from SetFilter.
type Feed struct {
	mu      sync.RWMutex
	opts    domain.FilterOptions
	entries []domain.Status
	ids     map[string]struct{}
	deleted map[string]struct{}
	// tombstones holds deleted ids oldest first; it bounds deleted.
	tombstones []string
	closed     bool
}

// maxTombstones caps how many deleted ids a feed remembers. Tombstones only
// have to outlive pages that were in flight when the delete arrived.
const maxTombstones = 1024

// NewFeed creates an empty feed filtered by opts.
func NewFeed(opts domain.FilterOptions) *Feed {
	return &Feed{
		opts:    opts,
		ids:     make(map[string]struct{}),
		deleted: make(map[string]struct{}),
	}
}

// Visible returns the statuses that pass the filter, newest first.
func (f *Feed) Visible() []domain.Status {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]domain.Status, 0, len(f.entries))
	for _, st := range f.entries {
		if domain.Include(st, f.opts) {
			out = append(out, st)
		}
	}
	return out
}

// All returns every retained status, including filtered ones.
func (f *Feed) All() []domain.Status {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.entries)
}

// Len is the number of retained statuses.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.entries)
}

// Contains reports whether a status with id is retained.
func (f *Feed) Contains(id string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.ids[id]
	return ok
}

// Newest returns the id of the newest retained status.
func (f *Feed) Newest() (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.entries) == 0 {
		return "", false
	}
	return f.entries[0].ID, true
}

// Filter returns the current filter options.
func (f *Feed) Filter() domain.FilterOptions {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.opts
}

// SetFilter replaces the filter and re-evaluates the whole retained list. It
// returns the number of visible statuses afterwards.
func (f *Feed) SetFilter(opts domain.FilterOptions) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opts = opts
	n := 0
	for _, st := range f.entries {
		if domain.Include(st, opts) {
			n++
		}
	}
	return n
}

// Closed reports whether the owning view has been torn down.
func (f *Feed) Closed() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.closed
}

func (f *Feed) close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

// appendPage adds an older page at the tail in the order received. Known and
// deleted ids are skipped. ok is false when the feed is closed.
func (f *Feed) appendPage(page []domain.Status) (added, visible int, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, 0, false
	}
	for _, st := range page {
		if !f.acceptable(st.ID) {
			continue
		}
		if n := len(f.entries); n == 0 || domain.CompareIDs(st.ID, f.entries[n-1].ID) < 0 {
			f.entries = append(f.entries, st)
		} else {
			// Out-of-order record; keep the list sorted.
			f.insertSorted(st)
		}
		f.ids[st.ID] = struct{}{}
		added++
		if domain.Include(st, f.opts) {
			visible++
		}
	}
	return added, visible, true
}

// insert adds st at its position by id, normally the head. It is idempotent:
// a known id is discarded.
func (f *Feed) insert(st domain.Status) (inserted, visible bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || !f.acceptable(st.ID) {
		return false, false
	}
	f.insertSorted(st)
	f.ids[st.ID] = struct{}{}
	return true, domain.Include(st, f.opts)
}

// remove drops the entry with id, if any, and remembers the id so a page
// fetched later cannot bring it back.
func (f *Feed) remove(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || id == "" {
		return false
	}
	f.tombstone(id)
	if _, ok := f.ids[id]; !ok {
		return false
	}
	delete(f.ids, id)
	i := slices.IndexFunc(f.entries, func(st domain.Status) bool { return st.ID == id })
	if i < 0 {
		return false
	}
	f.entries = slices.Delete(f.entries, i, i+1)
	return true
}

// replace swaps the retained status that has st's id for st.
func (f *Feed) replace(st domain.Status) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	if _, ok := f.ids[st.ID]; !ok {
		return false
	}
	i := slices.IndexFunc(f.entries, func(e domain.Status) bool { return e.ID == st.ID })
	if i < 0 {
		return false
	}
	f.entries[i] = st
	return true
}

// tombstone remembers id, forgetting the oldest tombstone past the cap.
// Callers hold f.mu.
func (f *Feed) tombstone(id string) {
	if _, ok := f.deleted[id]; ok {
		return
	}
	f.deleted[id] = struct{}{}
	f.tombstones = append(f.tombstones, id)
	if len(f.tombstones) > maxTombstones {
		delete(f.deleted, f.tombstones[0])
		f.tombstones = slices.Delete(f.tombstones, 0, 1)
	}
}

func (f *Feed) acceptable(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := f.ids[id]; ok {
		return false
	}
	_, gone := f.deleted[id]
	return !gone
}

// insertSorted places st before the first older entry. Callers hold f.mu.
func (f *Feed) insertSorted(st domain.Status) {
	i := sort.Search(len(f.entries), func(i int) bool {
		return domain.CompareIDs(f.entries[i].ID, st.ID) < 0
	})
	f.entries = slices.Insert(f.entries, i, st)
}
