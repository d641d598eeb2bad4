package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/sussurros/journalterm/app/engagement"
	"github.com/sussurros/journalterm/infra/api"
	"github.com/sussurros/journalterm/infra/auth"
	"github.com/sussurros/journalterm/infra/config"
	"github.com/sussurros/journalterm/infra/editor"
	"github.com/sussurros/journalterm/infra/localstore"
	"github.com/sussurros/journalterm/infra/logging"
	"github.com/sussurros/journalterm/infra/sse"
	"github.com/sussurros/journalterm/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func resolveVersionInfo(v, c, d, moduleVersion string, settings map[string]string) (string, string, string) {
	if v == "dev" {
		mv := strings.TrimSpace(moduleVersion)
		if mv != "" && mv != "(devel)" {
			v = mv
		}
	}
	if c == "none" {
		rev := strings.TrimSpace(settings["vcs.revision"])
		if rev != "" {
			if len(rev) > 12 {
				rev = rev[:12]
			}
			c = rev
		}
	}
	if d == "unknown" {
		t := strings.TrimSpace(settings["vcs.time"])
		if t != "" {
			d = t
		}
	}
	return v, c, d
}

func buildSettingsMap(in []debug.BuildSetting) map[string]string {
	out := make(map[string]string, len(in))
	for _, s := range in {
		out[s.Key] = s.Value
	}
	return out
}

func resolvedRuntimeVersionInfo(v, c, d string) (string, string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return v, c, d
	}
	return resolveVersionInfo(v, c, d, info.Main.Version, buildSettingsMap(info.Settings))
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "journalterm: %v\n", err)
	}
	if err := newRootCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "journalterm: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cli.Command {
	defaultConfig, err := config.DefaultPath()
	if err != nil {
		defaultConfig = ""
	}

	return &cli.Command{
		Name:  "journalterm",
		Usage: "Read the Sussurros do Saber journal in your terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Configuration file path",
				Value: defaultConfig,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runTUI(ctx, c, tui.Route{Kind: tui.RouteFeed})
		},
		Commands: []*cli.Command{
			{
				Name:      "read",
				Usage:     "Open an article",
				ArgsUsage: "<slug>",
				Action: func(ctx context.Context, c *cli.Command) error {
					slug, err := requireArg(c, "slug")
					if err != nil {
						return err
					}
					return runTUI(ctx, c, tui.Route{Kind: tui.RouteArticle, Target: slug})
				},
			},
			{
				Name:      "author",
				Usage:     "Open an author profile",
				ArgsUsage: "<username>",
				Action: func(ctx context.Context, c *cli.Command) error {
					username, err := requireArg(c, "username")
					if err != nil {
						return err
					}
					return runTUI(ctx, c, tui.Route{Kind: tui.RouteAuthor, Target: username})
				},
			},
			{
				Name:  "bookmarks",
				Usage: "List bookmarked articles",
				Action: func(ctx context.Context, c *cli.Command) error {
					return runTUI(ctx, c, tui.Route{Kind: tui.RouteBookmarks})
				},
			},
			{
				Name:      "library",
				Usage:     "List digital library publications, or show one and its download address",
				ArgsUsage: "[slug]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "search",
						Usage: "Filter publications by title or abstract",
					},
				},
				Action: libraryAction,
			},
			{
				Name:      "login",
				Usage:     "Email a sign-in link, or sign in through a provider",
				ArgsUsage: "<email>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "provider",
						Usage: "Sign in with " + strings.Join(auth.SocialProviders, " or ") + " instead of e-mail",
					},
				},
				Action: loginAction,
			},
			{
				Name:      "verify",
				Usage:     "Complete sign-in with the token from the emailed link",
				ArgsUsage: "<token>",
				Action:    verifyAction,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored session",
				Action: logoutAction,
			},
			{
				Name:  "version",
				Usage: "Print version information",
				Action: func(_ context.Context, c *cli.Command) error {
					v, cm, d := resolvedRuntimeVersionInfo(version, commit, date)
					fmt.Fprintf(c.Root().Writer, "journalterm %s\ncommit: %s\nbuilt: %s\n", v, cm, d)
					return nil
				},
			},
		},
	}
}

func requireArg(c *cli.Command, name string) (string, error) {
	v := strings.TrimSpace(c.Args().First())
	if v == "" {
		return "", fmt.Errorf("missing <%s> argument", name)
	}
	return v, nil
}

// env is the wired infrastructure shared by every command.
type env struct {
	cfg     config.Config
	log     *zap.Logger
	store   localstore.Store
	session *auth.Session
	stop    context.CancelFunc
}

func setup(ctx context.Context, c *cli.Command) (*env, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFile, cfg.TelemetryDSN)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	ctx, stop := context.WithCancel(ctx)
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		stop()
		_ = log.Sync()
		return nil, err
	}
	log.Info("starting", zap.String("api", cfg.APIURL), zap.String("store", cfg.Store))

	return &env{
		cfg:     cfg,
		log:     log,
		store:   store,
		session: auth.NewSession(store, log),
		stop:    stop,
	}, nil
}

// openStore opens the configured client storage and watches it so sessions
// in other terminals see each other's changes.
func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (localstore.Store, error) {
	if cfg.Store == config.StoreSQLite {
		store, err := localstore.NewSQLiteStore(cfg.StorePath())
		if err != nil {
			return nil, fmt.Errorf("opening store: %w", err)
		}
		go func() {
			if err := store.Watch(ctx, time.Second); err != nil {
				log.Warn("store watcher stopped", zap.Error(err))
			}
		}()
		return store, nil
	}

	store, err := localstore.NewFileStore(cfg.StorePath(), log)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	go func() {
		if err := store.Watch(ctx); err != nil {
			log.Warn("store watcher stopped", zap.Error(err))
		}
	}()
	return store, nil
}

func (r *env) Close() {
	r.stop()
	if err := r.store.Close(); err != nil {
		r.log.Warn("closing store", zap.Error(err))
	}
	_ = r.log.Sync()
}

func runTUI(ctx context.Context, c *cli.Command, start tui.Route) error {
	rt, err := setup(ctx, c)
	if err != nil {
		return err
	}
	defer rt.Close()

	client := api.NewClient(rt.cfg.APIURL, rt.session, rt.log)

	root := tui.NewApp(tui.Deps{
		Articles:  api.NewArticleService(client),
		Authors:   api.NewAuthorService(client),
		Bookmarks: api.NewBookmarkService(client),
		Analytics: api.NewAnalyticsService(client),
		Streams:   sse.NewStreams(rt.cfg.APIURL, rt.log),
		Session:   rt.session,
		Login:     auth.NewLogin(rt.cfg.APIURL, rt.session),
		Store:     rt.store,
		Editor:    editor.NewEnvEditor(),
		Log:       rt.log,
		Options:   engagementOptions(rt.cfg),
		Start:     start,
	})

	p := tea.NewProgram(root, tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(ctx))
	final, err := p.Run()
	if app, ok := final.(tui.App); ok {
		app.Close()
	}
	if err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}

// engagementOptions turns the configured timing overrides into options.
func engagementOptions(cfg config.Config) []engagement.Option {
	var opts []engagement.Option
	if cfg.HeartbeatInterval > 0 {
		opts = append(opts, engagement.WithHeartbeatInterval(cfg.HeartbeatInterval))
	}
	if cfg.ViewDwell > 0 {
		opts = append(opts, engagement.WithDwell(cfg.ViewDwell))
	}
	if cfg.ScrollThreshold > 0 {
		opts = append(opts, engagement.WithScrollThreshold(cfg.ScrollThreshold))
	}
	if cfg.PendingTTL > 0 {
		opts = append(opts, engagement.WithPendingTTL(cfg.PendingTTL))
	}
	return opts
}

func loginAction(ctx context.Context, c *cli.Command) error {
	if provider := strings.TrimSpace(c.String("provider")); provider != "" {
		return socialLogin(ctx, c, provider)
	}
	email, err := requireArg(c, "email")
	if err != nil {
		return err
	}
	rt, err := setup(ctx, c)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := auth.NewLogin(rt.cfg.APIURL, rt.session).RequestMagicLink(ctx, email); err != nil {
		return fmt.Errorf("requesting sign-in link: %w", err)
	}
	fmt.Fprintf(c.Root().Writer, "Sign-in link sent to %s. Run `journalterm verify <token>` with the token from the link.\n", email)
	return nil
}

// socialLogin prints the provider address to open in a browser, then
// completes the login with the redirect address pasted back.
func socialLogin(ctx context.Context, c *cli.Command, provider string) error {
	rt, err := setup(ctx, c)
	if err != nil {
		return err
	}
	defer rt.Close()

	login := auth.NewLogin(rt.cfg.APIURL, rt.session)
	target, err := login.SocialLoginURL(ctx, provider)
	if err != nil {
		return err
	}
	out := c.Root().Writer
	fmt.Fprintf(out, "Open this address in a browser to sign in with %s:\n\n  %s\n\n", provider, target)
	fmt.Fprint(out, "Paste the address the browser was redirected to (or the code): ")

	in := c.Root().Reader
	if in == nil {
		in = os.Stdin
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading callback: %w", err)
	}
	code, state, err := auth.ParseCallback(line)
	if err != nil {
		return err
	}
	user, err := login.ExchangeSocialCode(ctx, provider, code, state)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nLogged in as @%s.\n", user.Username)
	return nil
}

func verifyAction(ctx context.Context, c *cli.Command) error {
	token, err := requireArg(c, "token")
	if err != nil {
		return err
	}
	rt, err := setup(ctx, c)
	if err != nil {
		return err
	}
	defer rt.Close()

	user, err := auth.NewLogin(rt.cfg.APIURL, rt.session).VerifyMagicLink(ctx, token)
	if err != nil {
		return fmt.Errorf("verifying sign-in link: %w", err)
	}
	fmt.Fprintf(c.Root().Writer, "Logged in as @%s.\n", user.Username)
	return nil
}

func libraryAction(ctx context.Context, c *cli.Command) error {
	rt, err := setup(ctx, c)
	if err != nil {
		return err
	}
	defer rt.Close()

	lib := api.NewLibraryService(api.NewClient(rt.cfg.APIURL, rt.session, rt.log))
	out := c.Root().Writer

	slug := strings.TrimSpace(c.Args().First())
	if slug == "" {
		pubs, err := lib.Publications(ctx, c.String("search"))
		if err != nil {
			return err
		}
		if len(pubs) == 0 {
			fmt.Fprintln(out, "No publications found.")
			return nil
		}
		for _, p := range pubs {
			fmt.Fprintf(out, "%s\t%s (%d)\n", p.Slug, p.Title, p.Year)
			if len(p.Authors) > 0 {
				fmt.Fprintf(out, "\t%s\n", strings.Join(p.Authors, ", "))
			}
		}
		return nil
	}

	p, err := lib.Publication(ctx, slug)
	if err != nil {
		return err
	}
	if err := lib.RecordView(ctx, slug); err != nil {
		rt.log.Warn("recording publication view", zap.String("slug", slug), zap.Error(err))
	}
	fmt.Fprintf(out, "%s (%d)\n", p.Title, p.Year)
	if len(p.Authors) > 0 {
		fmt.Fprintln(out, strings.Join(p.Authors, ", "))
	}
	if p.Institution != "" {
		fmt.Fprintln(out, p.Institution)
	}
	fmt.Fprintf(out, "%s · %s · %d views · %d downloads\n", p.Type, p.AccessLevel, p.Views, p.Downloads)
	if p.Abstract != "" {
		fmt.Fprintf(out, "\n%s\n", p.Abstract)
	}

	link, err := lib.RecordDownload(ctx, slug)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nDownload: %s\n", link)
	return nil
}

func logoutAction(ctx context.Context, c *cli.Command) error {
	rt, err := setup(ctx, c)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.session.Logout(); err != nil {
		return fmt.Errorf("logging out: %w", err)
	}
	fmt.Fprintln(c.Root().Writer, "Logged out.")
	return nil
}
