package mastodon

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/CrestNiraj12/feedline/app"
	"github.com/CrestNiraj12/feedline/domain"
)

// record is one decoded JSON object. Its accessors never fail: a missing or
// mistyped field yields the zero value for its type.
type record map[string]any

func asRecord(raw any) (record, bool) {
	m, ok := raw.(map[string]any)
	return record(m), ok
}

func (r record) has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

func (r record) str(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func (r record) boolean(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

func (r record) integer(key string) int {
	switch v := r[key].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
		if f, err := v.Float64(); err == nil && !math.IsNaN(f) {
			return int(f)
		}
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	}
	return 0
}

func (r record) timestamp(key string) time.Time {
	return parseTimestamp(r.str(key))
}

func (r record) link(key string) *url.URL {
	return parseLink(r.str(key))
}

func (r record) object(key string) (record, bool) {
	return asRecord(r[key])
}

func (r record) array(key string) []any {
	a, _ := r[key].([]any)
	return a
}

var timestampLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

// parseTimestamp returns the zero time for empty or malformed input.
func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseLink accepts only absolute http(s) URLs; anything else is nil.
func parseLink(s string) *url.URL {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return nil
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u
	default:
		return nil
	}
}

// NormalizeStatuses converts a decoded timeline array. Elements that are not
// status objects are dropped but still count towards RawCount.
func NormalizeStatuses(raw any) (app.Page, error) {
	if raw == nil {
		return app.Page{}, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return app.Page{}, &ParseError{Context: "timeline", Err: fmt.Errorf("expected array, got %T", raw)}
	}
	page := app.Page{Statuses: make([]domain.Status, 0, len(items)), RawCount: len(items)}
	for _, item := range items {
		if rec, ok := asRecord(item); ok {
			if id := rec.str("id"); id != "" {
				page.LastRawID = id
			}
		}
		st, err := NormalizeStatus(item)
		if err != nil || st == nil {
			continue
		}
		page.Statuses = append(page.Statuses, *st)
	}
	return page, nil
}

// NormalizeStatus converts one decoded status. Nil input yields (nil, nil),
// non-object input ErrNotRecord, and an object without an id is treated as
// absent. Nothing object-shaped fails.
func NormalizeStatus(raw any) (*domain.Status, error) {
	return normalizeStatus(raw, 0)
}

// maxReblogDepth bounds reblog recursion; servers never nest boosts.
const maxReblogDepth = 1

func normalizeStatus(raw any, depth int) (*domain.Status, error) {
	if raw == nil {
		return nil, nil
	}
	r, ok := asRecord(raw)
	if !ok {
		return nil, ErrNotRecord
	}
	id := r.str("id")
	if id == "" {
		return nil, nil
	}

	st := &domain.Status{
		ID:                 id,
		URI:                r.str("uri"),
		URL:                r.link("url"),
		CreatedAt:          r.timestamp("created_at"),
		EditedAt:           r.timestamp("edited_at"),
		Content:            r.str("content"),
		Visibility:         domain.ParseVisibility(r.str("visibility")),
		Sensitive:          r.boolean("sensitive"),
		SpoilerText:        r.str("spoiler_text"),
		InReplyToID:        r.str("in_reply_to_id"),
		InReplyToAccountID: r.str("in_reply_to_account_id"),
		Language:           r.str("language"),
		RepliesCount:       r.integer("replies_count"),
		ReblogsCount:       r.integer("reblogs_count"),
		FavouritesCount:    r.integer("favourites_count"),
		Media:              normalizeEach(r.array("media_attachments"), normalizeMedia),
		Emojis:             normalizeEach(r.array("emojis"), normalizeEmoji),
		Mentions:           normalizeEach(r.array("mentions"), normalizeMention),
		Tags:               normalizeEach(r.array("tags"), normalizeTag),
		Viewer:             normalizeViewer(r),
	}
	if acct, ok := r.object("account"); ok {
		st.Account = normalizeAccount(acct)
	}
	if application, ok := r.object("application"); ok {
		st.Application = application.str("name")
	}
	if card, ok := r.object("card"); ok {
		st.Card = normalizeCard(card)
	}
	if depth < maxReblogDepth {
		// A malformed reblog is dropped; the outer status survives.
		if reblog, err := normalizeStatus(r["reblog"], depth+1); err == nil {
			st.Reblog = reblog
		}
	}
	return st, nil
}

// NormalizeAccount converts one decoded account.
func NormalizeAccount(raw any) (*domain.Account, error) {
	if raw == nil {
		return nil, nil
	}
	r, ok := asRecord(raw)
	if !ok {
		return nil, ErrNotRecord
	}
	acct := normalizeAccount(r)
	return &acct, nil
}

func normalizeAccount(r record) domain.Account {
	acct := r.str("acct")
	if acct == "" {
		acct = r.str("username")
	}
	return domain.Account{
		ID:             r.str("id"),
		Username:       r.str("username"),
		Acct:           acct,
		DisplayName:    r.str("display_name"),
		Note:           r.str("note"),
		URL:            r.link("url"),
		Avatar:         r.link("avatar"),
		AvatarStatic:   r.link("avatar_static"),
		Header:         r.link("header"),
		HeaderStatic:   r.link("header_static"),
		Fields:         normalizeEach(r.array("fields"), normalizeField),
		Emojis:         normalizeEach(r.array("emojis"), normalizeEmoji),
		Bot:            r.boolean("bot"),
		Locked:         r.boolean("locked"),
		StatusesCount:  r.integer("statuses_count"),
		FollowersCount: r.integer("followers_count"),
		FollowingCount: r.integer("following_count"),
		CreatedAt:      r.timestamp("created_at"),
	}
}

// normalizeEach applies fn to every object element, keeping order and
// skipping elements that are not objects or that fn rejects.
func normalizeEach[T any](items []any, fn func(record) (T, bool)) []T {
	if len(items) == 0 {
		return nil
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		r, ok := asRecord(item)
		if !ok {
			continue
		}
		if v, ok := fn(r); ok {
			out = append(out, v)
		}
	}
	return out
}

func normalizeField(r record) (domain.Field, bool) {
	name := r.str("name")
	if name == "" {
		return domain.Field{}, false
	}
	return domain.Field{
		Name:       name,
		Value:      r.str("value"),
		VerifiedAt: r.timestamp("verified_at"),
	}, true
}

func normalizeEmoji(r record) (domain.CustomEmoji, bool) {
	code := strings.Trim(r.str("shortcode"), ":")
	if code == "" {
		return domain.CustomEmoji{}, false
	}
	e := domain.CustomEmoji{
		Shortcode:       code,
		URL:             r.link("url"),
		StaticURL:       r.link("static_url"),
		VisibleInPicker: r.boolean("visible_in_picker"),
	}
	if e.StaticURL == nil {
		e.StaticURL = e.URL
	}
	return e, true
}

func normalizeMedia(r record) (domain.MediaAttachment, bool) {
	id := r.str("id")
	if id == "" {
		return domain.MediaAttachment{}, false
	}
	m := domain.MediaAttachment{
		ID:          id,
		Kind:        domain.ParseMediaKind(r.str("type")),
		URL:         r.link("url"),
		PreviewURL:  r.link("preview_url"),
		RemoteURL:   r.link("remote_url"),
		Description: strings.TrimSpace(r.str("description")),
		Blurhash:    r.str("blurhash"),
	}
	if meta, ok := r.object("meta"); ok {
		if orig, ok := meta.object("original"); ok {
			m.Width = orig.integer("width")
			m.Height = orig.integer("height")
		}
	}
	return m, true
}

func normalizeMention(r record) (domain.Mention, bool) {
	id := r.str("id")
	if id == "" {
		return domain.Mention{}, false
	}
	return domain.Mention{ID: id, Acct: r.str("acct"), URL: r.link("url")}, true
}

func normalizeTag(r record) (domain.Tag, bool) {
	name := r.str("name")
	if name == "" {
		return domain.Tag{}, false
	}
	return domain.Tag{Name: name, URL: r.link("url")}, true
}

func normalizeCard(r record) *domain.PreviewCard {
	return &domain.PreviewCard{
		URL:          r.link("url"),
		Title:        r.str("title"),
		Description:  r.str("description"),
		Type:         r.str("type"),
		ProviderName: r.str("provider_name"),
		AuthorName:   r.str("author_name"),
		Image:        r.link("image"),
		Blurhash:     r.str("blurhash"),
		Width:        r.integer("width"),
		Height:       r.integer("height"),
	}
}

var viewerKeys = []string{"favourited", "reblogged", "bookmarked", "muted", "pinned"}

// normalizeViewer returns nil unless the response carried viewer flags, which
// servers only send to authenticated requests.
func normalizeViewer(r record) *domain.ViewerState {
	present := false
	for _, k := range viewerKeys {
		if r.has(k) {
			present = true
			break
		}
	}
	if !present {
		return nil
	}
	return &domain.ViewerState{
		Favourited: r.boolean("favourited"),
		Reblogged:  r.boolean("reblogged"),
		Bookmarked: r.boolean("bookmarked"),
		Muted:      r.boolean("muted"),
		Pinned:     r.boolean("pinned"),
	}
}
