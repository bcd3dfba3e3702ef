// Package main implements the kitsu command line client.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/adeilh/go-kitsu/auth"
	"github.com/adeilh/go-kitsu/config"
	"github.com/adeilh/go-kitsu/internal/logging"
	"github.com/adeilh/go-kitsu/kitsu"
)

const usage = `usage: kitsu [-config kitsu.toml] [-strict] [-v] [-trace] [-metrics] <command> [args]

commands:
  search anime|manga|characters <query> [-limit n]
  get anime|manga|characters <id>
  trending anime|manga
  characters anime|manga <id> [-limit n]
  user <id-or-slug>`

type globalOptions struct {
	ConfigPath string
	Verbose    bool
	Strict     bool
	Trace      bool
	Metrics    bool
	Args       []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.LookupEnv)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, lookup func(string) (string, bool)) int {
	opts, err := parseGlobal(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			_, _ = fmt.Fprintln(stdout, usage)
			return 0
		}
		_, _ = fmt.Fprintln(stderr, err.Error())
		return 2
	}

	loaded, err := config.Load(opts.ConfigPath, config.LoadOptions{Strict: opts.Strict, Lookup: lookup})
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err.Error())
		return 1
	}
	cfg := loaded.Config

	logger := logging.FromSlog(logging.New(logging.Options{
		Verbose: opts.Verbose || cfg.Verbose,
		JSON:    cfg.JSONLogs,
		Writer:  stderr,
	}))
	for _, w := range loaded.Warnings {
		logger.Warn(w)
	}

	var extra []kitsu.Option
	if opts.Trace {
		exp, err := stdouttrace.New(stdouttrace.WithWriter(stderr), stdouttrace.WithPrettyPrint())
		if err != nil {
			_, _ = fmt.Fprintln(stderr, err.Error())
			return 1
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
		defer func() { _ = tp.Shutdown(context.Background()) }()
		extra = append(extra, kitsu.WithTracerProvider(tp))
	}
	if opts.Metrics {
		reg := prometheus.NewRegistry()
		defer printMetrics(stderr, reg)
		extra = append(extra, kitsu.WithMetrics(reg))
	}

	client, closeClient, err := newClient(cfg, logger, extra...)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err.Error())
		return 1
	}
	defer closeClient()

	if err := dispatch(ctx, client, opts.Args, stdout); err != nil {
		_, _ = fmt.Fprintln(stderr, err.Error())
		if errors.Is(err, kitsu.ErrInvalidArgument) || errors.Is(err, flag.ErrHelp) {
			return 2
		}
		return 1
	}
	return 0
}

func parseGlobal(args []string, stderr io.Writer) (globalOptions, error) {
	var opts globalOptions
	fs := flag.NewFlagSet("kitsu", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {}
	fs.StringVar(&opts.ConfigPath, "config", "", "path to a kitsu.toml file")
	fs.BoolVar(&opts.Verbose, "v", false, "enable debug logging")
	fs.BoolVar(&opts.Strict, "strict", false, "reject unknown configuration keys")
	fs.BoolVar(&opts.Trace, "trace", false, "write request spans to stderr")
	fs.BoolVar(&opts.Metrics, "metrics", false, "print client metrics to stderr on exit")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.Args = fs.Args()
	if len(opts.Args) == 0 {
		return opts, fmt.Errorf("missing command\n%s", usage)
	}
	return opts, nil
}

func newClient(cfg config.Config, logger logging.Logger, extra ...kitsu.Option) (*kitsu.Client, func(), error) {
	opts := []kitsu.Option{
		kitsu.WithBaseURL(cfg.BaseURL),
		kitsu.WithCacheExpiry(time.Duration(cfg.CacheExpiry)),
		kitsu.WithHTTPTimeout(time.Duration(cfg.Timeout)),
		kitsu.WithUserAgent(cfg.UserAgent),
		kitsu.WithLogger(logger),
		kitsu.WithToken(cfg.Token),
	}

	closers := []func(){}
	if cfg.Auth.Enabled() {
		grant, err := auth.NewPasswordGrant(cfg.Auth.Username, cfg.Auth.Password,
			auth.WithTokenURL(cfg.Auth.TokenURL),
			auth.WithClientCredentials(cfg.Auth.ClientID, cfg.Auth.ClientSecret),
			auth.WithGrantTimeout(time.Duration(cfg.Timeout)),
			auth.WithGrantLogger(logger),
		)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, grant.Close)
		opts = append(opts, kitsu.WithTokenSource(grant))
	}

	client := kitsu.New(append(opts, extra...)...)
	closers = append(closers, client.Close)
	return client, func() {
		for _, c := range closers {
			c()
		}
	}, nil
}

func dispatch(ctx context.Context, c *kitsu.Client, args []string, out io.Writer) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "search":
		return runSearch(ctx, c, rest, out)
	case "get":
		return runGet(ctx, c, rest, out)
	case "trending":
		return runTrending(ctx, c, rest, out)
	case "characters":
		return runCharacters(ctx, c, rest, out)
	case "user":
		return runUser(ctx, c, rest, out)
	case "help":
		_, _ = fmt.Fprintln(out, usage)
		return nil
	}
	return fmt.Errorf("%w: unknown command %q\n%s", kitsu.ErrInvalidArgument, cmd, usage)
}

// parseInterleaved lets flags follow positional arguments, so both
// "search anime -limit 3 bebop" and "search anime bebop -limit 3" work.
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func limitFlags(name string) (*flag.FlagSet, *int) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs, fs.Int("limit", 10, "maximum number of results (1-20)")
}

func runSearch(ctx context.Context, c *kitsu.Client, args []string, out io.Writer) error {
	fs, limit := limitFlags("search")
	pos, err := parseInterleaved(fs, args)
	if err != nil {
		return err
	}
	if len(pos) < 2 {
		return fmt.Errorf("%w: search needs a type and a query", kitsu.ErrInvalidArgument)
	}
	query := strings.Join(pos[1:], " ")

	switch pos[0] {
	case "anime":
		res, err := c.SearchAnime(ctx, query, *limit)
		if err != nil {
			return err
		}
		return printAnime(out, res)
	case "manga":
		res, err := c.SearchManga(ctx, query, *limit)
		if err != nil {
			return err
		}
		return printManga(out, res)
	case "characters":
		res, err := c.SearchCharacters(ctx, query, *limit)
		if err != nil {
			return err
		}
		return printCharacters(out, res)
	}
	return fmt.Errorf("%w: cannot search %q", kitsu.ErrInvalidArgument, pos[0])
}

func runGet(ctx context.Context, c *kitsu.Client, args []string, out io.Writer) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: get needs a type and an id", kitsu.ErrInvalidArgument)
	}
	id, err := parseID(args[1])
	if err != nil {
		return err
	}

	switch args[0] {
	case "anime":
		a, err := c.Anime(ctx, id)
		if err != nil {
			return err
		}
		return printAnime(out, []*kitsu.Anime{a})
	case "manga":
		m, err := c.Manga(ctx, id)
		if err != nil {
			return err
		}
		return printManga(out, []*kitsu.Manga{m})
	case "characters":
		ch, err := c.Character(ctx, id)
		if err != nil {
			return err
		}
		return printCharacters(out, []*kitsu.Character{ch})
	}
	return fmt.Errorf("%w: cannot get %q", kitsu.ErrInvalidArgument, args[0])
}

func runTrending(ctx context.Context, c *kitsu.Client, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: trending needs anime or manga", kitsu.ErrInvalidArgument)
	}
	t, err := kitsu.ParseMediaType(args[0])
	if err != nil {
		return err
	}
	if t == kitsu.MediaAnime {
		res, err := c.TrendingAnime(ctx)
		if err != nil {
			return err
		}
		return printAnime(out, res)
	}
	res, err := c.TrendingManga(ctx)
	if err != nil {
		return err
	}
	return printManga(out, res)
}

func runCharacters(ctx context.Context, c *kitsu.Client, args []string, out io.Writer) error {
	fs, limit := limitFlags("characters")
	pos, err := parseInterleaved(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 2 {
		return fmt.Errorf("%w: characters needs a media type and an id", kitsu.ErrInvalidArgument)
	}
	t, err := kitsu.ParseMediaType(pos[0])
	if err != nil {
		return err
	}
	id, err := parseID(pos[1])
	if err != nil {
		return err
	}
	res, err := c.Characters(ctx, kitsu.MediaRef{Type: t, ID: id}, *limit)
	if err != nil {
		return err
	}
	return printCharacters(out, res)
}

func runUser(ctx context.Context, c *kitsu.Client, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: user needs an id or slug", kitsu.ErrInvalidArgument)
	}
	u, err := c.User(ctx, args[0])
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "id\t%d\n", u.ID)
	_, _ = fmt.Fprintf(tw, "name\t%s\n", u.Name)
	_, _ = fmt.Fprintf(tw, "followers\t%d\n", u.FollowersCount)
	_, _ = fmt.Fprintf(tw, "pro\t%t\n", u.Pro())
	_, _ = fmt.Fprintf(tw, "url\t%s\n", u.URL())
	return tw.Flush()
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id %q", kitsu.ErrInvalidArgument, s)
	}
	return id, nil
}

func printAnime(w io.Writer, list []*kitsu.Anime) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, a := range list {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%s\n", a.ID, a.CanonicalTitle, a.Subtype, a.AverageRating, a.URL())
	}
	return tw.Flush()
}

func printManga(w io.Writer, list []*kitsu.Manga) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, m := range list {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%s\n", m.ID, m.CanonicalTitle, m.Subtype, m.AverageRating, m.URL())
	}
	return tw.Flush()
}

func printCharacters(w io.Writer, list []*kitsu.Character) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, ch := range list {
		role := ch.Role
		if role == "" {
			role = "-"
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", ch.ID, ch.Name, role)
	}
	return tw.Flush()
}

// printMetrics writes every counter and gauge sample in reg as
// "name{labels} value" lines.
func printMetrics(w io.Writer, reg *prometheus.Registry) {
	families, err := reg.Gather()
	if err != nil {
		_, _ = fmt.Fprintln(w, err.Error())
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			value := m.GetCounter().GetValue()
			if g := m.GetGauge(); g != nil {
				value = g.GetValue()
			}
			_, _ = fmt.Fprintf(w, "%s{%s} %g\n", mf.GetName(), strings.Join(labels, ","), value)
		}
	}
}
