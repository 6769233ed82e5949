package mastodon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/CrestNiraj12/feedline/app"
	"github.com/CrestNiraj12/feedline/domain"
	"github.com/CrestNiraj12/feedline/infra/logging"
)

const (
	streamingPath  = "/api/v1/streaming"
	maxMessageSize = 1 << 20
	eventBufSize   = 64
)

// Streamer implements app.StreamService over Mastodon's WebSocket streaming API.
type Streamer struct {
	client     *Client
	maxRetries uint64
	newBackOff func() backoff.BackOff
	log        zerolog.Logger
}

// NewStreamer creates a Streamer that reuses the client's instance URL and
// credential. maxRetries bounds consecutive failed connection attempts.
func NewStreamer(client *Client, maxRetries uint64) *Streamer {
	return &Streamer{
		client:     client,
		maxRetries: maxRetries,
		newBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = time.Second
			bo.MaxInterval = time.Minute
			bo.Multiplier = 2
			bo.MaxElapsedTime = 0
			return bo
		},
		log: logging.Component("stream"),
	}
}

// subscribeRequest is the message that selects a stream on the connection.
type subscribeRequest struct {
	Type   string `json:"type"`
	Stream string `json:"stream"`
	Tag    string `json:"tag,omitempty"`
	List   string `json:"list,omitempty"`
}

func streamRequest(tl domain.Timeline) (subscribeRequest, error) {
	if err := tl.Validate(); err != nil {
		return subscribeRequest{}, err
	}
	req := subscribeRequest{Type: "subscribe"}
	switch tl.Kind {
	case domain.TimelineHome:
		req.Stream = "user"
	case domain.TimelinePublic:
		req.Stream = "public"
	case domain.TimelineLocal:
		req.Stream = "public:local"
	case domain.TimelineHashtag:
		req.Stream = "hashtag"
		req.Tag = tl.Discriminator
	case domain.TimelineList:
		req.Stream = "list"
		req.List = tl.Discriminator
	default:
		return subscribeRequest{}, fmt.Errorf("%w: %s", domain.ErrNotStreamable, tl.Kind)
	}
	return req, nil
}

func (s *Streamer) streamURL() string {
	base := s.client.BaseURL()
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + streamingPath
}

// Subscribe opens a subscription for tl. Connecting happens in the
// background; the first event is EventConnected or EventDisconnected.
func (s *Streamer) Subscribe(ctx context.Context, tl domain.Timeline) (app.Subscription, error) {
	req, err := streamRequest(tl)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	sub := &subscription{
		streamer: s,
		request:  req,
		events:   make(chan domain.StreamEvent, eventBufSize),
		cancel:   cancel,
		done:     make(chan struct{}),
		log:      s.log.With().Str("timeline", tl.Key()).Logger(),
	}
	go sub.run(ctx)
	return sub, nil
}

type subscription struct {
	streamer *Streamer
	request  subscribeRequest
	events   chan domain.StreamEvent
	cancel   context.CancelFunc
	done     chan struct{}
	once     sync.Once
	log      zerolog.Logger
}

func (sub *subscription) Events() <-chan domain.StreamEvent { return sub.events }

// Close stops the subscription and waits for the connection to be released.
func (sub *subscription) Close() error {
	sub.once.Do(sub.cancel)
	<-sub.done
	return nil
}

func (sub *subscription) emit(ctx context.Context, ev domain.StreamEvent) bool {
	select {
	case sub.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (sub *subscription) run(ctx context.Context) {
	defer close(sub.done)
	defer close(sub.events)

	bo := backoff.WithContext(backoff.WithMaxRetries(sub.streamer.newBackOff(), sub.streamer.maxRetries), ctx)
	for {
		err := sub.session(ctx, bo)
		if ctx.Err() != nil {
			sub.log.Debug().Msg("subscription closed")
			return
		}
		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			sub.log.Warn().Err(err).Msg("giving up on stream")
			sub.emit(ctx, domain.StreamEvent{Kind: domain.EventDisconnected, Err: err, Final: true})
			return
		}
		sub.log.Warn().Err(err).Dur("retry_in", wait).Msg("stream dropped")
		if !sub.emit(ctx, domain.StreamEvent{Kind: domain.EventDisconnected, Err: err}) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// session runs one connection until it fails or ctx ends.
func (sub *subscription) session(ctx context.Context, bo backoff.BackOff) error {
	token, err := sub.streamer.client.AccessToken()
	if err != nil {
		return &NetworkError{Op: "auth", URL: streamingPath, Err: err}
	}
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, _, err := websocket.Dial(ctx, sub.streamer.streamURL(), &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		return &NetworkError{Op: "dial", URL: streamingPath, Err: err}
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	conn.SetReadLimit(maxMessageSize)

	if err := wsjson.Write(ctx, conn, sub.request); err != nil {
		return &NetworkError{Op: "subscribe", URL: streamingPath, Err: err}
	}
	sub.log.Info().Str("stream", sub.request.Stream).Msg("stream connected")
	if !sub.emit(ctx, domain.StreamEvent{Kind: domain.EventConnected}) {
		return ctx.Err()
	}
	bo.Reset()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return fmt.Errorf("server closed stream: %w", err)
			}
			return &NetworkError{Op: "read", URL: streamingPath, Err: err}
		}
		ev, err := DecodeEnvelope(data)
		if err != nil {
			sub.log.Debug().Err(err).Msg("skipping malformed stream message")
			continue
		}
		if ev.Kind == domain.EventUnknown {
			continue
		}
		if !sub.emit(ctx, ev) {
			return ctx.Err()
		}
	}
}

// envelope is the outer frame of a streaming message. Payload is usually a
// JSON string that itself contains JSON.
type envelope struct {
	Stream  []string        `json:"stream"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// DecodeEnvelope turns one streaming frame into a StreamEvent. Events the
// engine does not handle come back as EventUnknown with a nil error.
func DecodeEnvelope(data []byte) (domain.StreamEvent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return domain.StreamEvent{}, &ParseError{Context: "stream envelope", Err: err}
	}
	payload := unquotePayload(env.Payload)

	switch env.Event {
	case "update", "status.update":
		st, err := decodeStatusPayload(payload)
		if err != nil {
			return domain.StreamEvent{}, err
		}
		kind := domain.EventNewStatus
		if env.Event == "status.update" {
			kind = domain.EventStatusUpdated
		}
		return domain.StreamEvent{Kind: kind, Status: st}, nil
	case "delete":
		id := strings.TrimSpace(string(payload))
		if id == "" {
			return domain.StreamEvent{}, &ParseError{Context: "delete payload", Err: errors.New("empty id")}
		}
		return domain.StreamEvent{Kind: domain.EventStatusDeleted, StatusID: id}, nil
	default:
		return domain.StreamEvent{Kind: domain.EventUnknown}, nil
	}
}

// unquotePayload returns the string content when raw is a JSON string and the
// raw bytes otherwise.
func unquotePayload(raw json.RawMessage) []byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return []byte(s)
		}
	}
	return raw
}

func decodeStatusPayload(payload []byte) (*domain.Status, error) {
	body, err := decodeBody(payload, "stream payload")
	if err != nil {
		return nil, err
	}
	st, err := NormalizeStatus(body)
	if err != nil {
		return nil, &ParseError{Context: "stream status", Err: err}
	}
	if st == nil {
		return nil, &ParseError{Context: "stream status", Err: errors.New("missing status")}
	}
	return st, nil
}
