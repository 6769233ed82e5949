package domain

import (
	"net/url"
	"time"
)

// Visibility is the audience level of a status.
type Visibility string

const (
	VisibilityUnknown  Visibility = ""
	VisibilityPublic   Visibility = "public"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPrivate  Visibility = "private"
	VisibilityDirect   Visibility = "direct"
)

// ParseVisibility maps the wire value to a Visibility. Unrecognized values
// become VisibilityUnknown.
func ParseVisibility(s string) Visibility {
	switch v := Visibility(s); v {
	case VisibilityPublic, VisibilityUnlisted, VisibilityPrivate, VisibilityDirect:
		return v
	default:
		return VisibilityUnknown
	}
}

// MediaKind classifies an attachment.
type MediaKind string

const (
	MediaUnknown  MediaKind = "unknown"
	MediaImage    MediaKind = "image"
	MediaAnimated MediaKind = "gifv"
	MediaVideo    MediaKind = "video"
	MediaAudio    MediaKind = "audio"
)

// ParseMediaKind maps the wire value to a MediaKind.
func ParseMediaKind(s string) MediaKind {
	switch k := MediaKind(s); k {
	case MediaImage, MediaAnimated, MediaVideo, MediaAudio:
		return k
	default:
		return MediaUnknown
	}
}

// CustomEmoji is an instance-defined emoji referenced by :shortcode:.
type CustomEmoji struct {
	Shortcode       string
	URL             *url.URL
	StaticURL       *url.URL
	VisibleInPicker bool
}

// Field is a name/value pair from an account profile.
type Field struct {
	Name       string
	Value      string    // HTML
	VerifiedAt time.Time // Zero when unverified
}

// Account is an immutable snapshot of a remote account.
type Account struct {
	ID             string
	Username       string
	Acct           string // "user" for local accounts, "user@domain" for remote ones
	DisplayName    string
	Note           string // HTML
	URL            *url.URL
	Avatar         *url.URL
	AvatarStatic   *url.URL
	Header         *url.URL
	HeaderStatic   *url.URL
	Fields         []Field
	Emojis         []CustomEmoji
	Bot            bool
	Locked         bool
	StatusesCount  int
	FollowersCount int
	FollowingCount int
	CreatedAt      time.Time
}

// Label returns the display name, falling back to the handle.
func (a Account) Label() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Acct
}

// MediaAttachment is a file attached to a status.
type MediaAttachment struct {
	ID          string
	Kind        MediaKind
	URL         *url.URL
	PreviewURL  *url.URL
	RemoteURL   *url.URL
	Description string
	Blurhash    string
	Width       int
	Height      int
}

// PreviewCard is a rich link preview attached to a status.
type PreviewCard struct {
	URL          *url.URL
	Title        string
	Description  string
	Type         string
	ProviderName string
	AuthorName   string
	Image        *url.URL
	Blurhash     string
	Width        int
	Height       int
}

// Mention references an account mentioned in a status body.
type Mention struct {
	ID   string
	Acct string
	URL  *url.URL
}

// Tag is a hashtag used in a status body.
type Tag struct {
	Name string
	URL  *url.URL
}

// ViewerState holds the flags relative to the authenticated viewer. It is only
// present on statuses fetched with a credential.
type ViewerState struct {
	Favourited bool
	Reblogged  bool
	Bookmarked bool
	Muted      bool
	Pinned     bool
}

// Status is an immutable snapshot of a post. Updates arrive as a whole new
// Status with the same ID; fields are never patched in place.
type Status struct {
	ID                 string
	URI                string
	URL                *url.URL
	CreatedAt          time.Time
	EditedAt           time.Time
	Account            Account
	Content            string // HTML
	Visibility         Visibility
	Sensitive          bool
	SpoilerText        string
	Media              []MediaAttachment
	Emojis             []CustomEmoji
	Mentions           []Mention
	Tags               []Tag
	InReplyToID        string
	InReplyToAccountID string
	Reblog             *Status
	Card               *PreviewCard
	Language           string
	Application        string
	RepliesCount       int
	ReblogsCount       int
	FavouritesCount    int
	Viewer             *ViewerState
}

// IsReply reports whether the status answers another status.
func (s Status) IsReply() bool { return s.InReplyToID != "" }

// IsBoost reports whether the status re-shares another status.
func (s Status) IsBoost() bool { return s.Reblog != nil }

// Displayed returns the status whose content should be shown: the boosted
// status for a boost, the status itself otherwise. The outer status of a boost
// only contributes the boosting account and timestamp.
func (s Status) Displayed() Status {
	if s.Reblog != nil {
		return *s.Reblog
	}
	return s
}
