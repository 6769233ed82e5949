package mastodon

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/CrestNiraj12/feedline/app"
	"github.com/CrestNiraj12/feedline/domain"
	"github.com/CrestNiraj12/feedline/infra/logging"
)

const defaultLimit = 20

// timelineService implements app.TimelineService using the Mastodon API.
type timelineService struct {
	client *Client
	log    zerolog.Logger
}

// NewTimelineService creates a TimelineService backed by Mastodon.
func NewTimelineService(client *Client) *timelineService {
	return &timelineService{
		client: client,
		log:    logging.Component("timeline"),
	}
}

// timelineEndpoint maps a timeline to its REST path and fixed parameters.
func timelineEndpoint(tl domain.Timeline) (string, Query, error) {
	if err := tl.Validate(); err != nil {
		return "", nil, err
	}
	switch tl.Kind {
	case domain.TimelineHome:
		return "/api/v1/timelines/home", nil, nil
	case domain.TimelinePublic:
		return "/api/v1/timelines/public", nil, nil
	case domain.TimelineLocal:
		return "/api/v1/timelines/public", Query{}.Add("local", "true"), nil
	case domain.TimelineHashtag:
		return "/api/v1/timelines/tag/" + url.PathEscape(tl.Discriminator), nil, nil
	case domain.TimelineAccount:
		return "/api/v1/accounts/" + url.PathEscape(tl.Discriminator) + "/statuses", nil, nil
	case domain.TimelineList:
		return "/api/v1/timelines/list/" + url.PathEscape(tl.Discriminator), nil, nil
	}
	return "", nil, fmt.Errorf("%w: %s", domain.ErrInvalidTimeline, tl.Kind)
}

func (s *timelineService) FetchPage(ctx context.Context, tl domain.Timeline, q app.PageQuery) (app.Page, error) {
	path, query, err := timelineEndpoint(tl)
	if err != nil {
		return app.Page{}, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	query = query.
		Add("limit", strconv.Itoa(limit)).
		AddIf("max_id", q.MaxID).
		AddIf("since_id", q.SinceID).
		AddIf("min_id", q.MinID)

	body, err := s.client.Get(ctx, path, query)
	if err != nil {
		return app.Page{}, fmt.Errorf("fetching %s timeline: %w", tl.Kind, err)
	}

	page, err := NormalizeStatuses(body)
	if err != nil {
		return app.Page{}, fmt.Errorf("fetching %s timeline: %w", tl.Kind, err)
	}
	if dropped := page.RawCount - len(page.Statuses); dropped > 0 {
		s.log.Debug().Str("timeline", tl.Key()).Int("dropped", dropped).Msg("records skipped during normalization")
	}
	return page, nil
}
