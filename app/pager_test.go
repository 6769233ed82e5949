package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CrestNiraj12/feedline/domain"
)

func TestPager_FilteredPageAdvancesCursorToRawBoundary(t *testing.T) {
	svc := newFakeTimelines()
	svc.older[""] = pageOf(status("30"), reply("20", "5"), status("10"))
	feed := NewFeed(domain.FilterOptions{ShowBoosts: true, ShowReplies: false})
	p := NewPager(domain.HomeTimeline(), svc, feed, 3, zerolog.Nop())

	res, err := p.LoadNextPage(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Raw)
	assert.Equal(t, 3, res.Added)
	assert.Equal(t, 2, res.Visible)
	assert.Equal(t, "10", res.Cursor)
	assert.Equal(t, "10", p.Cursor())
	assert.Equal(t, []string{"30", "10"}, ids(feed.Visible()))
}

func TestPager_CursorFollowsRawRecordsThatFailedToNormalize(t *testing.T) {
	svc := newFakeTimelines()
	// The last raw record was dropped by the normalizer.
	svc.older[""] = Page{Statuses: []domain.Status{status("9"), status("8")}, RawCount: 3, LastRawID: "7"}
	svc.older["7"] = pageOf(status("6"))
	feed := NewFeed(domain.DefaultFilterOptions())
	p := NewPager(domain.HomeTimeline(), svc, feed, 3, zerolog.Nop())

	_, err := p.LoadNextPage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "7", p.Cursor())

	_, err = p.LoadNextPage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"9", "8", "6"}, ids(feed.All()))
	assert.Equal(t, "7", svc.calls[1].MaxID)
}

func TestPager_EmptyPageMarksExhausted(t *testing.T) {
	svc := newFakeTimelines()
	svc.older[""] = pageOf(status("2"), status("1"))
	feed := NewFeed(domain.DefaultFilterOptions())
	p := NewPager(domain.PublicTimeline(), svc, feed, 20, zerolog.Nop())

	_, err := p.LoadNextPage(context.Background())
	require.NoError(t, err)
	assert.False(t, p.Exhausted())

	res, err := p.LoadNextPage(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Exhausted)
	assert.True(t, p.Exhausted())
	assert.Equal(t, "1", p.Cursor(), "cursor is unchanged by an empty page")
}

func TestPager_FailureLeavesStateUnchanged(t *testing.T) {
	svc := newFakeTimelines()
	svc.older[""] = pageOf(status("2"), status("1"))
	feed := NewFeed(domain.DefaultFilterOptions())
	p := NewPager(domain.HomeTimeline(), svc, feed, 20, zerolog.Nop())
	_, err := p.LoadNextPage(context.Background())
	require.NoError(t, err)

	boom := errors.New("boom")
	svc.err = boom
	_, err = p.LoadNextPage(context.Background())
	require.ErrorIs(t, err, boom)

	assert.Equal(t, "1", p.Cursor())
	assert.Equal(t, []string{"2", "1"}, ids(feed.All()))
	assert.False(t, p.Loading(), "guard is released after failure")
}

func TestPager_ConcurrentCallsIssueOneRequest(t *testing.T) {
	svc := newFakeTimelines()
	svc.older[""] = pageOf(status("2"), status("1"))
	svc.gate = make(chan struct{})
	svc.started = make(chan struct{}, 1)
	feed := NewFeed(domain.DefaultFilterOptions())
	p := NewPager(domain.HomeTimeline(), svc, feed, 20, zerolog.Nop())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = p.LoadNextPage(context.Background())
	}()
	<-svc.started
	assert.True(t, p.Loading())

	res, err := p.LoadNextPage(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	close(svc.gate)
	wg.Wait()
	assert.Equal(t, 1, svc.callCount())
	assert.Equal(t, []string{"2", "1"}, ids(feed.All()))
}

func TestPager_ResultAfterCloseIsDiscarded(t *testing.T) {
	svc := newFakeTimelines()
	svc.older[""] = pageOf(status("2"), status("1"))
	svc.gate = make(chan struct{})
	svc.started = make(chan struct{}, 1)
	feed := NewFeed(domain.DefaultFilterOptions())
	p := NewPager(domain.HomeTimeline(), svc, feed, 20, zerolog.Nop())

	errc := make(chan error, 1)
	go func() {
		_, err := p.LoadNextPage(context.Background())
		errc <- err
	}()
	<-svc.started
	feed.close()
	close(svc.gate)

	require.ErrorIs(t, <-errc, ErrSessionClosed)
	assert.Zero(t, feed.Len())
	assert.Empty(t, p.Cursor())
}

func TestPager_IndependentTimelines(t *testing.T) {
	home := newFakeTimelines()
	home.older[""] = pageOf(status("20"), status("19"))
	tag := newFakeTimelines()
	tag.older[""] = pageOf(status("7"), status("6"), status("5"))

	homeFeed := NewFeed(domain.DefaultFilterOptions())
	tagFeed := NewFeed(domain.DefaultFilterOptions())
	hp := NewPager(domain.HomeTimeline(), home, homeFeed, 20, zerolog.Nop())
	tp := NewPager(domain.HashtagTimeline("go"), tag, tagFeed, 20, zerolog.Nop())

	var wg sync.WaitGroup
	for _, p := range []*Pager{hp, tp} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.LoadNextPage(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, "19", hp.Cursor())
	assert.Equal(t, "5", tp.Cursor())
	assert.Equal(t, []string{"20", "19"}, ids(homeFeed.All()))
	assert.Equal(t, []string{"7", "6", "5"}, ids(tagFeed.All()))
}

func TestPager_LoadNewerWalksForward(t *testing.T) {
	svc := newFakeTimelines()
	svc.older[""] = pageOf(status("10"), status("9"))
	svc.newer["10"] = pageOf(status("12"), status("11"))
	svc.newer["12"] = pageOf(status("13"))
	feed := NewFeed(domain.DefaultFilterOptions())
	p := NewPager(domain.HomeTimeline(), svc, feed, 2, zerolog.Nop())

	_, err := p.LoadNextPage(context.Background())
	require.NoError(t, err)

	res, err := p.LoadNewer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Added)
	assert.Equal(t, []string{"13", "12", "11", "10", "9"}, ids(feed.All()))
	assert.Equal(t, "9", p.Cursor(), "older cursor is untouched")
}

func TestPager_LoadNewerReportsTruncatedGap(t *testing.T) {
	svc := newFakeTimelines()
	svc.older[""] = pageOf(status("10"))
	svc.chainNewer(10, 2, maxGapPages+1)
	feed := NewFeed(domain.DefaultFilterOptions())
	p := NewPager(domain.HomeTimeline(), svc, feed, 2, zerolog.Nop())

	_, err := p.LoadNextPage(context.Background())
	require.NoError(t, err)

	res, err := p.LoadNewer(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Equal(t, 2*maxGapPages, res.Added)
	assert.Equal(t, 1+maxGapPages, svc.callCount())
}

func TestPager_LoadNewerCaughtUpIsNotTruncated(t *testing.T) {
	svc := newFakeTimelines()
	svc.older[""] = pageOf(status("10"))
	svc.chainNewer(10, 2, maxGapPages-1)
	feed := NewFeed(domain.DefaultFilterOptions())
	p := NewPager(domain.HomeTimeline(), svc, feed, 2, zerolog.Nop())

	_, err := p.LoadNextPage(context.Background())
	require.NoError(t, err)

	res, err := p.LoadNewer(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Truncated, "an empty page ends the walk")
	assert.Equal(t, 2*(maxGapPages-1), res.Added)
}

func TestPager_LoadNewerOnEmptyFeedLoadsFirstPage(t *testing.T) {
	svc := newFakeTimelines()
	svc.older[""] = pageOf(status("4"))
	feed := NewFeed(domain.DefaultFilterOptions())
	p := NewPager(domain.LocalTimeline(), svc, feed, 20, zerolog.Nop())

	res, err := p.LoadNewer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, "4", p.Cursor())
}

func TestNewPager_DefaultsLimit(t *testing.T) {
	svc := newFakeTimelines()
	p := NewPager(domain.HomeTimeline(), svc, NewFeed(domain.DefaultFilterOptions()), 0, zerolog.Nop())

	_, err := p.LoadNextPage(context.Background())
	require.NoError(t, err)
	require.Len(t, svc.calls, 1)
	assert.Equal(t, DefaultPageLimit, svc.calls[0].Limit)
}
