package domain

import (
	"fmt"
	"strings"
)

// TimelineKind names a feed of statuses.
type TimelineKind int

const (
	TimelineHome TimelineKind = iota
	TimelinePublic
	TimelineLocal
	TimelineHashtag
	TimelineAccount
	TimelineList
)

func (k TimelineKind) String() string {
	switch k {
	case TimelineHome:
		return "home"
	case TimelinePublic:
		return "public"
	case TimelineLocal:
		return "local"
	case TimelineHashtag:
		return "hashtag"
	case TimelineAccount:
		return "account"
	case TimelineList:
		return "list"
	default:
		return fmt.Sprintf("timeline(%d)", int(k))
	}
}

// ParseTimelineKind accepts the names produced by String plus a few aliases.
func ParseTimelineKind(s string) (TimelineKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "home", "following":
		return TimelineHome, nil
	case "public", "federated":
		return TimelinePublic, nil
	case "local":
		return TimelineLocal, nil
	case "hashtag", "tag":
		return TimelineHashtag, nil
	case "account", "profile":
		return TimelineAccount, nil
	case "list":
		return TimelineList, nil
	default:
		return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidTimeline, s)
	}
}

// Timeline identifies one timeline: a kind plus the discriminator the kind
// needs (tag text for hashtag, account id for account, list id for list).
type Timeline struct {
	Kind          TimelineKind
	Discriminator string
}

func HomeTimeline() Timeline   { return Timeline{Kind: TimelineHome} }
func PublicTimeline() Timeline { return Timeline{Kind: TimelinePublic} }
func LocalTimeline() Timeline  { return Timeline{Kind: TimelineLocal} }

// HashtagTimeline accepts the tag with or without a leading '#'.
func HashtagTimeline(tag string) Timeline {
	return Timeline{Kind: TimelineHashtag, Discriminator: strings.TrimPrefix(strings.TrimSpace(tag), "#")}
}

func AccountTimeline(accountID string) Timeline {
	return Timeline{Kind: TimelineAccount, Discriminator: strings.TrimSpace(accountID)}
}

func ListTimeline(listID string) Timeline {
	return Timeline{Kind: TimelineList, Discriminator: strings.TrimSpace(listID)}
}

// Validate checks that kinds needing a discriminator have one.
func (t Timeline) Validate() error {
	switch t.Kind {
	case TimelineHome, TimelinePublic, TimelineLocal:
		return nil
	case TimelineHashtag, TimelineAccount, TimelineList:
		if t.Discriminator == "" {
			return fmt.Errorf("%w: %s timeline needs a value", ErrInvalidTimeline, t.Kind)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidTimeline, t.Kind)
	}
}

// Streamable reports whether the server offers a push stream for the kind.
func (t Timeline) Streamable() bool {
	return t.Kind != TimelineAccount
}

// Key is a stable identity string, e.g. "hashtag:golang".
func (t Timeline) Key() string {
	if t.Discriminator == "" {
		return t.Kind.String()
	}
	return t.Kind.String() + ":" + strings.ToLower(t.Discriminator)
}

// Label is a short human-readable name.
func (t Timeline) Label() string {
	switch t.Kind {
	case TimelineHashtag:
		return "#" + t.Discriminator
	case TimelineAccount:
		return "account " + t.Discriminator
	case TimelineList:
		return "list " + t.Discriminator
	default:
		return t.Kind.String()
	}
}
