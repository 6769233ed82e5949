package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimelineKind(t *testing.T) {
	for in, want := range map[string]TimelineKind{
		"home":      TimelineHome,
		"Following": TimelineHome,
		"public":    TimelinePublic,
		"local":     TimelineLocal,
		" tag ":     TimelineHashtag,
		"account":   TimelineAccount,
		"list":      TimelineList,
	} {
		got, err := ParseTimelineKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseTimelineKind("trending")
	require.ErrorIs(t, err, ErrInvalidTimeline)
}

func TestTimelineValidate(t *testing.T) {
	require.NoError(t, HomeTimeline().Validate())
	require.NoError(t, HashtagTimeline("#golang").Validate())
	require.ErrorIs(t, HashtagTimeline("  ").Validate(), ErrInvalidTimeline)
	require.ErrorIs(t, AccountTimeline("").Validate(), ErrInvalidTimeline)
	require.ErrorIs(t, Timeline{Kind: TimelineKind(42)}.Validate(), ErrInvalidTimeline)
}

func TestTimelineKeyAndStreamable(t *testing.T) {
	tag := HashtagTimeline("#GoLang")
	assert.Equal(t, "GoLang", tag.Discriminator)
	assert.Equal(t, "hashtag:golang", tag.Key())
	assert.Equal(t, "#GoLang", tag.Label())
	assert.Equal(t, "local", LocalTimeline().Key())

	assert.True(t, HomeTimeline().Streamable())
	assert.True(t, tag.Streamable())
	assert.False(t, AccountTimeline("1").Streamable())
}
