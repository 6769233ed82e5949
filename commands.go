package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/CrestNiraj12/feedline/app"
	"github.com/CrestNiraj12/feedline/domain"
	"github.com/CrestNiraj12/feedline/infra/auth"
	"github.com/CrestNiraj12/feedline/infra/config"
	"github.com/CrestNiraj12/feedline/infra/logging"
	"github.com/CrestNiraj12/feedline/infra/mastodon"
	"github.com/CrestNiraj12/feedline/tui"
	"github.com/CrestNiraj12/feedline/tui/common"
)

// options are the command-line overrides shared by every command. Empty or
// unset values fall back to the FEEDLINE_* environment.
type options struct {
	instance  string
	timeline  string
	tag       string
	account   string
	list      string
	limit     int
	noBoosts  bool
	noReplies bool
	noStream  bool
	logLevel  string
	logFile   string
}

func newRootCmd(version string) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "feedline",
		Short: "Mastodon timelines in the terminal",
		Long: "feedline pages through a Mastodon timeline and merges live updates into it.\n\n" +
			"Environment:\n" + config.Usage(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}
	cmd.SetVersionTemplate("feedline {{.Version}}\n")

	f := cmd.PersistentFlags()
	f.StringVar(&opts.instance, "instance", "", "instance URL (overrides FEEDLINE_INSTANCE)")
	f.StringVar(&opts.timeline, "timeline", "", "home, public, local, hashtag, account or list")
	f.StringVar(&opts.tag, "tag", "", "hashtag for the hashtag timeline")
	f.StringVar(&opts.account, "account", "", "account id or user@domain for the account timeline")
	f.StringVar(&opts.list, "list", "", "list id for the list timeline")
	f.IntVar(&opts.limit, "limit", 0, "statuses per page (max 40)")
	f.BoolVar(&opts.noBoosts, "no-boosts", false, "hide boosts")
	f.BoolVar(&opts.noReplies, "no-replies", false, "hide replies")
	f.BoolVar(&opts.noStream, "no-stream", false, "disable live updates")
	f.StringVar(&opts.logLevel, "log-level", "", "trace, debug, info, warn or error")
	f.StringVar(&opts.logFile, "log-file", "", "write logs to this file")

	cmd.AddCommand(
		newFetchCmd(opts),
		newTailCmd(opts),
	)
	return cmd
}

func newFetchCmd(opts *options) *cobra.Command {
	var pages int
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Print the newest pages of a timeline and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context(), opts, pages, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to load")
	return cmd
}

func newTailCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tail",
		Short: "Follow a timeline, printing statuses as they arrive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTail(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

// runtime is the wired infrastructure for one invocation.
type runtime struct {
	cfg       config.Config
	timeline  domain.Timeline
	timelines app.TimelineService
	streams   app.StreamService
	log       zerolog.Logger
	closeLog  func()
}

func (o *options) apply(cfg *config.Config) {
	if o.instance != "" {
		cfg.InstanceURL = o.instance
	}
	if o.timeline != "" {
		cfg.Timeline = o.timeline
	}
	if o.tag != "" {
		cfg.Hashtag = o.tag
		if o.timeline == "" {
			cfg.Timeline = "hashtag"
		}
	}
	if o.account != "" {
		cfg.AccountID = o.account
		if o.timeline == "" {
			cfg.Timeline = "account"
		}
	}
	if o.list != "" {
		cfg.ListID = o.list
		if o.timeline == "" {
			cfg.Timeline = "list"
		}
	}
	if o.limit > 0 {
		cfg.PageLimit = o.limit
	}
	if o.noBoosts {
		cfg.ShowBoosts = false
	}
	if o.noReplies {
		cfg.ShowReplies = false
	}
	if o.noStream {
		cfg.Streaming = false
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.logFile != "" {
		cfg.LogFile = o.logFile
	}
}

func setup(ctx context.Context, opts *options) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	opts.apply(&cfg)
	if err := cfg.Normalize(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logCfg := logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}
	closeLog := func() {}
	if cfg.LogFile != "" {
		f, err := logging.OpenFile(cfg.LogFile)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		logCfg.Output = f
		closeLog = func() { _ = f.Close() }
	}
	logging.Init(logCfg)

	client := mastodon.NewClient(cfg.InstanceURL, auth.FromSettings(cfg.Token, cfg.TokenPath))
	tl, err := resolveTimeline(ctx, cfg, mastodon.NewAccountService(client))
	if err != nil {
		closeLog()
		return nil, err
	}

	rt := &runtime{
		cfg:       cfg,
		timeline:  tl,
		timelines: mastodon.NewTimelineService(client),
		log:       logging.Component("cli"),
		closeLog:  closeLog,
	}
	if cfg.Streaming {
		rt.streams = mastodon.NewStreamer(client, cfg.StreamMaxRetries)
	}
	startLog := logging.WithTimeline(tl.Key())
	startLog.Info().
		Str("instance", cfg.InstanceURL).
		Bool("streaming", cfg.Streaming).
		Msg("feedline starting")
	return rt, nil
}

// resolveTimeline builds the configured timeline, resolving an account
// handle to its id when needed.
func resolveTimeline(ctx context.Context, cfg config.Config, accounts app.AccountService) (domain.Timeline, error) {
	kind, err := domain.ParseTimelineKind(cfg.Timeline)
	if err != nil {
		return domain.Timeline{}, err
	}
	var tl domain.Timeline
	switch kind {
	case domain.TimelineHome:
		tl = domain.HomeTimeline()
	case domain.TimelinePublic:
		tl = domain.PublicTimeline()
	case domain.TimelineLocal:
		tl = domain.LocalTimeline()
	case domain.TimelineHashtag:
		tl = domain.HashtagTimeline(cfg.Hashtag)
	case domain.TimelineList:
		tl = domain.ListTimeline(cfg.ListID)
	case domain.TimelineAccount:
		if strings.TrimSpace(cfg.AccountID) == "" {
			return domain.Timeline{}, fmt.Errorf("%w: account timeline needs --account", domain.ErrInvalidTimeline)
		}
		id, err := mastodon.ResolveAccountID(ctx, accounts, cfg.AccountID)
		if err != nil {
			return domain.Timeline{}, fmt.Errorf("resolving account %q: %w", cfg.AccountID, err)
		}
		tl = domain.AccountTimeline(id)
	}
	return tl, tl.Validate()
}

// timelineCycle is the list the TUI switches through: the configured
// timeline first, then the instance-wide ones, then home when a credential
// is present.
func timelineCycle(first domain.Timeline, authenticated bool) []domain.Timeline {
	cycle := []domain.Timeline{first}
	extra := []domain.Timeline{domain.PublicTimeline(), domain.LocalTimeline()}
	if authenticated {
		extra = append([]domain.Timeline{domain.HomeTimeline()}, extra...)
	}
	for _, tl := range extra {
		if tl.Key() != first.Key() {
			cycle = append(cycle, tl)
		}
	}
	return cycle
}

func (rt *runtime) filter() domain.FilterOptions {
	return domain.FilterOptions{ShowBoosts: rt.cfg.ShowBoosts, ShowReplies: rt.cfg.ShowReplies}
}

func (rt *runtime) authenticated() bool {
	tok, err := auth.FromSettings(rt.cfg.Token, rt.cfg.TokenPath).AccessToken()
	return err == nil && tok != ""
}

func (rt *runtime) newSession(withStream bool) (*app.Session, error) {
	deps := app.SessionDeps{Timelines: rt.timelines, Log: rt.log}
	if withStream {
		deps.Streams = rt.streams
	}
	return app.NewSession(rt.timeline, deps, app.SessionOptions{
		Filter:    rt.filter(),
		PageLimit: rt.cfg.PageLimit,
	})
}

func runTUI(ctx context.Context, opts *options) error {
	rt, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.closeLog()

	root, err := tui.NewApp(tui.Deps{
		Timelines: rt.timelines,
		Streams:   rt.streams,
		Log:       rt.log,
		Filter:    rt.filter(),
		PageLimit: rt.cfg.PageLimit,
		Cycle:     timelineCycle(rt.timeline, rt.authenticated()),
	})
	if err != nil {
		return err
	}
	defer root.Close()

	p := tea.NewProgram(root, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

func runFetch(ctx context.Context, opts *options, pages int, out io.Writer) error {
	rt, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.closeLog()

	s, err := rt.newSession(false)
	if err != nil {
		return err
	}
	defer s.Close()

	for i := 0; i < max(pages, 1); i++ {
		res, err := s.LoadNextPage()
		if err != nil {
			return err
		}
		if res.Exhausted {
			break
		}
	}
	now := time.Now()
	for _, st := range s.Feed().Visible() {
		writeStatus(out, st, now)
	}
	return nil
}

func runTail(ctx context.Context, opts *options, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts.noStream = false
	rt, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.closeLog()
	if !rt.timeline.Streamable() {
		return fmt.Errorf("%w: %s", domain.ErrNotStreamable, rt.timeline.Label())
	}

	s, err := rt.newSession(true)
	if err != nil {
		return err
	}
	defer s.Close()
	s.Start()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ch, ok := <-s.Changes():
			if !ok {
				return nil
			}
			if err := reportChange(out, errOut, s, ch); err != nil {
				return err
			}
		}
	}
}

// reportChange prints inserted statuses to out and connection state to
// errOut. A stream that ended for good is returned as an error.
func reportChange(out, errOut io.Writer, s *app.Session, ch app.Change) error {
	switch ch.Kind {
	case app.ChangeInserted:
		if ch.Visible && ch.Status != nil {
			writeStatus(out, *ch.Status, time.Now())
		}
	case app.ChangeDeleted:
		fmt.Fprintf(errOut, "-- deleted %s\n", ch.StatusID)
	case app.ChangeLive:
		fmt.Fprintf(errOut, "-- live: %s\n", s.Timeline().Label())
	case app.ChangeDegraded:
		fmt.Fprintf(errOut, "-- reconnecting: %v\n", ch.Err)
	case app.ChangeGapFilled:
		if ch.Err != nil {
			fmt.Fprintf(errOut, "-- could not load missed statuses: %v\n", ch.Err)
		} else if ch.Count > 0 {
			fmt.Fprintf(errOut, "-- %d statuses arrived while disconnected\n", ch.Count)
		}
		if ch.Truncated {
			fmt.Fprintln(errOut, "-- gap too large, some statuses were skipped")
		}
	case app.ChangeStreamEnded:
		if ch.Err != nil {
			return fmt.Errorf("stream ended: %w", ch.Err)
		}
	}
	return nil
}

const lineWidth = 120

// writeStatus prints one status as a single line.
func writeStatus(w io.Writer, st domain.Status, now time.Time) {
	shown := st.Displayed()
	text := strings.Join(strings.Fields(common.PlainText(shown.Content)), " ")
	if cw := strings.TrimSpace(shown.SpoilerText); cw != "" {
		text = "CW: " + common.SanitizeForTerminal(cw)
	}
	prefix := ""
	if st.IsBoost() {
		prefix = "⟳ " + common.SanitizeForTerminal(st.Account.Acct) + " "
	}
	line := fmt.Sprintf("%s %5s %s@%s: %s",
		st.ID,
		common.RelativeTime(shown.CreatedAt, now),
		prefix,
		common.SanitizeForTerminal(shown.Account.Acct),
		text,
	)
	fmt.Fprintln(w, ansi.Truncate(line, lineWidth, "…"))
}
