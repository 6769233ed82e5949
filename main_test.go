package main

import (
	"bytes"
	"context"
	"errors"
	"runtime/debug"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CrestNiraj12/feedline/app"
	"github.com/CrestNiraj12/feedline/domain"
	"github.com/CrestNiraj12/feedline/infra/config"
)

func TestResolveVersionInfo(t *testing.T) {
	tests := []struct {
		name          string
		v, c, d       string
		moduleVersion string
		settings      map[string]string
		want          [3]string
	}{
		{
			name:          "ldflags win",
			v:             "v1.2.3",
			c:             "abc",
			d:             "2026-01-01",
			moduleVersion: "v9.9.9",
			settings:      map[string]string{"vcs.revision": "ffffffffffffffff", "vcs.time": "x"},
			want:          [3]string{"v1.2.3", "abc", "2026-01-01"},
		},
		{
			name:          "build info fills defaults",
			v:             "dev",
			c:             "none",
			d:             "unknown",
			moduleVersion: "v0.4.0",
			settings:      map[string]string{"vcs.revision": "0123456789abcdef", "vcs.time": "2026-02-03T04:05:06Z"},
			want:          [3]string{"v0.4.0", "0123456789ab", "2026-02-03T04:05:06Z"},
		},
		{
			name:          "devel module version is ignored",
			v:             "dev",
			c:             "none",
			d:             "unknown",
			moduleVersion: "(devel)",
			settings:      map[string]string{},
			want:          [3]string{"dev", "none", "unknown"},
		},
		{
			name:          "short revision kept whole",
			v:             "dev",
			c:             "none",
			d:             "unknown",
			moduleVersion: "",
			settings:      map[string]string{"vcs.revision": "abc123"},
			want:          [3]string{"dev", "abc123", "unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, c, d := resolveVersionInfo(tt.v, tt.c, tt.d, tt.moduleVersion, tt.settings)
			assert.Equal(t, tt.want, [3]string{v, c, d})
		})
	}
}

func TestBuildSettingsMap(t *testing.T) {
	got := buildSettingsMap([]debug.BuildSetting{
		{Key: "vcs.revision", Value: "abc"},
		{Key: "vcs.time", Value: "t"},
	})
	assert.Equal(t, map[string]string{"vcs.revision": "abc", "vcs.time": "t"}, got)
}

func baseConfig() config.Config {
	return config.Config{
		InstanceURL: "https://example.social",
		Timeline:    "public",
		ShowBoosts:  true,
		ShowReplies: true,
		PageLimit:   20,
		Streaming:   true,
	}
}

func TestOptionsApply(t *testing.T) {
	t.Run("empty options keep config", func(t *testing.T) {
		cfg := baseConfig()
		(&options{}).apply(&cfg)
		assert.Equal(t, baseConfig(), cfg)
	})

	t.Run("tag implies hashtag timeline", func(t *testing.T) {
		cfg := baseConfig()
		(&options{tag: "golang"}).apply(&cfg)
		assert.Equal(t, "hashtag", cfg.Timeline)
		assert.Equal(t, "golang", cfg.Hashtag)
	})

	t.Run("explicit timeline wins over implied one", func(t *testing.T) {
		cfg := baseConfig()
		(&options{timeline: "local", list: "7"}).apply(&cfg)
		assert.Equal(t, "local", cfg.Timeline)
		assert.Equal(t, "7", cfg.ListID)
	})

	t.Run("toggles and limits", func(t *testing.T) {
		cfg := baseConfig()
		(&options{
			noBoosts:  true,
			noReplies: true,
			noStream:  true,
			limit:     35,
			logLevel:  "debug",
			instance:  "https://other.example",
		}).apply(&cfg)
		assert.False(t, cfg.ShowBoosts)
		assert.False(t, cfg.ShowReplies)
		assert.False(t, cfg.Streaming)
		assert.Equal(t, 35, cfg.PageLimit)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "https://other.example", cfg.InstanceURL)
	})
}

type fakeAccounts struct {
	lookups []string
	err     error
}

func (f *fakeAccounts) VerifyCredentials(context.Context) (domain.Account, error) {
	return domain.Account{}, errors.New("not used")
}

func (f *fakeAccounts) AccountByID(context.Context, string) (domain.Account, error) {
	return domain.Account{}, errors.New("not used")
}

func (f *fakeAccounts) Lookup(_ context.Context, acct string) (domain.Account, error) {
	f.lookups = append(f.lookups, acct)
	if f.err != nil {
		return domain.Account{}, f.err
	}
	return domain.Account{ID: "4242", Acct: acct}, nil
}

var _ app.AccountService = (*fakeAccounts)(nil)

func TestResolveTimeline(t *testing.T) {
	ctx := context.Background()

	t.Run("hashtag", func(t *testing.T) {
		cfg := baseConfig()
		cfg.Timeline, cfg.Hashtag = "hashtag", "go"
		tl, err := resolveTimeline(ctx, cfg, &fakeAccounts{})
		require.NoError(t, err)
		assert.Equal(t, "hashtag:go", tl.Key())
	})

	t.Run("hashtag without tag is invalid", func(t *testing.T) {
		cfg := baseConfig()
		cfg.Timeline = "hashtag"
		_, err := resolveTimeline(ctx, cfg, &fakeAccounts{})
		assert.ErrorIs(t, err, domain.ErrInvalidTimeline)
	})

	t.Run("unknown kind", func(t *testing.T) {
		cfg := baseConfig()
		cfg.Timeline = "federated-ish"
		_, err := resolveTimeline(ctx, cfg, &fakeAccounts{})
		assert.Error(t, err)
	})

	t.Run("account handle is looked up", func(t *testing.T) {
		cfg := baseConfig()
		cfg.Timeline, cfg.AccountID = "account", "dana@far.example"
		accounts := &fakeAccounts{}
		tl, err := resolveTimeline(ctx, cfg, accounts)
		require.NoError(t, err)
		assert.Equal(t, domain.AccountTimeline("4242"), tl)
		assert.Equal(t, []string{"dana@far.example"}, accounts.lookups)
	})

	t.Run("numeric account id skips lookup", func(t *testing.T) {
		cfg := baseConfig()
		cfg.Timeline, cfg.AccountID = "account", "77"
		accounts := &fakeAccounts{}
		tl, err := resolveTimeline(ctx, cfg, accounts)
		require.NoError(t, err)
		assert.Equal(t, domain.AccountTimeline("77"), tl)
		assert.Empty(t, accounts.lookups)
	})

	t.Run("failed lookup", func(t *testing.T) {
		cfg := baseConfig()
		cfg.Timeline, cfg.AccountID = "account", "ghost@nowhere"
		_, err := resolveTimeline(ctx, cfg, &fakeAccounts{err: domain.ErrUnauthorized})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("account without reference", func(t *testing.T) {
		cfg := baseConfig()
		cfg.Timeline = "account"
		_, err := resolveTimeline(ctx, cfg, &fakeAccounts{})
		assert.ErrorIs(t, err, domain.ErrInvalidTimeline)
	})
}

func TestTimelineCycle(t *testing.T) {
	keys := func(tls []domain.Timeline) []string {
		out := make([]string, len(tls))
		for i, tl := range tls {
			out[i] = tl.Key()
		}
		return out
	}

	anon := timelineCycle(domain.HashtagTimeline("go"), false)
	assert.Equal(t, []string{"hashtag:go", "public", "local"}, keys(anon))

	authed := timelineCycle(domain.PublicTimeline(), true)
	assert.Equal(t, []string{"public", "home", "local"}, keys(authed))
}

func TestWriteStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	orig := domain.Status{
		ID:        "9",
		CreatedAt: now.Add(-5 * time.Minute),
		Account:   domain.Account{Acct: "dana"},
		Content:   "<p>hello <b>there</b></p><p>second</p>",
	}

	var buf bytes.Buffer
	writeStatus(&buf, orig, now)
	assert.Equal(t, "9    5m @dana: hello there second\n", buf.String())

	buf.Reset()
	boost := domain.Status{ID: "10", CreatedAt: now, Account: domain.Account{Acct: "eli"}, Reblog: &orig}
	writeStatus(&buf, boost, now)
	assert.True(t, strings.HasPrefix(buf.String(), "10    5m ⟳ eli @dana: hello"), buf.String())

	buf.Reset()
	cw := orig
	cw.SpoilerText = "spoilers"
	writeStatus(&buf, cw, now)
	assert.Contains(t, buf.String(), "CW: spoilers")
	assert.NotContains(t, buf.String(), "hello")
}

func TestRootCommandWiring(t *testing.T) {
	cmd := newRootCmd("v0.0.1")
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["fetch"])
	assert.True(t, names["tail"])

	for _, flag := range []string{"timeline", "tag", "account", "list", "no-boosts", "no-replies", "no-stream", "log-level"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}

	fetch, _, err := cmd.Find([]string{"fetch"})
	require.NoError(t, err)
	assert.NotNil(t, fetch.Flags().Lookup("pages"))
}

func TestSetup_InstanceFlagOverridesBadEnvironment(t *testing.T) {
	t.Setenv("FEEDLINE_INSTANCE", "http://insecure.local")
	t.Setenv("FEEDLINE_TIMELINE", "public")
	t.Setenv("FEEDLINE_LOG_FILE", "")

	rt, err := setup(context.Background(), &options{instance: "https://override.example", noStream: true})
	require.NoError(t, err)
	defer rt.closeLog()
	assert.Equal(t, "https://override.example", rt.cfg.InstanceURL)
	assert.Equal(t, domain.PublicTimeline(), rt.timeline)
	assert.Nil(t, rt.streams)

	_, err = setup(context.Background(), &options{})
	assert.Error(t, err, "the environment value is still validated without the flag")
}
