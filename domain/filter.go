package domain

// FilterOptions are the visibility toggles of a timeline view.
type FilterOptions struct {
	ShowBoosts  bool
	ShowReplies bool
}

// DefaultFilterOptions shows everything.
func DefaultFilterOptions() FilterOptions {
	return FilterOptions{ShowBoosts: true, ShowReplies: true}
}

// Include reports whether s should be displayed under opts. It is total and
// has no side effects.
func Include(s Status, opts FilterOptions) bool {
	if s.IsReply() && !opts.ShowReplies {
		return false
	}
	if s.IsBoost() && !opts.ShowBoosts {
		return false
	}
	return true
}
