package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"

	"yadro.com/comicsearch/client/adapters/auth"
	"yadro.com/comicsearch/client/adapters/cache"
	"yadro.com/comicsearch/client/adapters/events"
	"yadro.com/comicsearch/client/adapters/search"
	"yadro.com/comicsearch/client/config"
	"yadro.com/comicsearch/client/core"
)

var version = "dev"

func main() {
	if err := newApp(os.Stdin, os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(in io.Reader, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "comicsearch",
		Usage:   "Query the comic search service",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "configuration file, environment only when empty",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Run a search query, e.g. 'linux @date: 2020-01-01, 2020-12-31'",
				ArgsUsage: "QUERY",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "page",
						Usage: "result page, omitted when 0",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return runSearch(ctx, out, c.String("config"), strings.Join(c.Args().Slice(), " "), c.Int("page"))
				},
			},
			{
				Name:  "ping",
				Usage: "Check that the search service is reachable",
				Action: func(ctx context.Context, c *cli.Command) error {
					return runPing(ctx, out, c.String("config"))
				},
			},
			{
				Name:  "shell",
				Usage: "Read queries from stdin, one per line; ':page N', ':ping' and ':quit' are commands",
				Action: func(ctx context.Context, c *cli.Command) error {
					return runShell(ctx, in, out, c.String("config"))
				},
			},
		},
	}
}

func runSearch(ctx context.Context, out io.Writer, configPath, query string, page int) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	svc, log, closeFn, err := openService(ctx, configPath)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := svc.Search(ctx, query, page)
	if err != nil {
		return err
	}
	printResult(out, log, query, res)
	return nil
}

func runPing(ctx context.Context, out io.Writer, configPath string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	svc, _, closeFn, err := openService(ctx, configPath)
	if err != nil {
		return err
	}
	defer closeFn()

	v, err := svc.Ping(ctx)
	if err != nil {
		return fmt.Errorf("search service unavailable: %w", err)
	}
	fmt.Fprintf(out, "ok %s\n", v)
	return nil
}

func openService(ctx context.Context, configPath string) (*core.Service, *slog.Logger, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}
	log := mustMakeLogger(cfg.LogLevel)

	svc, closeFn, err := newService(ctx, cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return svc, log, closeFn, nil
}

func newService(ctx context.Context, cfg config.Config, log *slog.Logger) (*core.Service, func(), error) {
	var (
		clientOpts []search.Option
		svcOpts    []core.Option
		closers    []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Token != "" {
		ts, err := auth.New(cfg.Token)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot init token source: %w", err)
		}
		if exp := ts.Expires(); !exp.IsZero() {
			log.Info("search token loaded", "expires", exp, "valid_for", time.Until(exp).Round(time.Second))
		}
		clientOpts = append(clientOpts, search.WithTokenSource(ts))
	}

	client, err := search.NewClient(cfg.SearchAddress, cfg.Timeout, log, clientOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot init search adapter: %w", err)
	}

	if cfg.SearchRate > 0 {
		svcOpts = append(svcOpts, core.WithLimiter(rate.NewLimiter(rate.Limit(cfg.SearchRate), 1)))
	}

	if cfg.CacheSize > 0 {
		c, err := cache.New(cfg.CacheSize, cfg.CacheTTL)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot init cache: %w", err)
		}
		svcOpts = append(svcOpts, core.WithCache(c))

		if cfg.BrokerAddress != "" {
			nc, err := events.Connect(log, cfg.BrokerAddress)
			if err != nil {
				return nil, nil, fmt.Errorf("cannot connect to broker: %w", err)
			}
			closers = append(closers, nc.Close)

			inv := events.NewInvalidator(log, c, nc)
			if err := inv.Start(ctx); err != nil {
				closeAll()
				return nil, nil, fmt.Errorf("cannot start cache invalidator: %w", err)
			}
			closers = append(closers, inv.Stop)
		}
	}

	svc, err := core.NewService(log, core.NewNormalizer(nil, cfg.NumShorthand), client, svcOpts...)
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	return svc, closeAll, nil
}

// printResult renders one search outcome. A nil result is either an empty
// query or a search cut short by an interrupt.
func printResult(out io.Writer, log *slog.Logger, query string, res *core.SearchResult) {
	if res == nil {
		if query == "" {
			fmt.Fprintln(out, "No search performed")
		} else {
			fmt.Fprintln(out, "search cancelled")
		}
		return
	}
	fmt.Fprintf(out, "Found %d comics in %.4fs\n", res.Count, res.Time)
	for i, ref := range res.Comics {
		c, err := ref.Decode()
		if err != nil {
			log.Warn("cannot decode comic", "index", i, "error", err)
			fmt.Fprintf(out, "%d. %s\n", i+1, string(ref))
			continue
		}
		fmt.Fprintf(out, "%d. #%d %s %s\n", i+1, c.Number, c.Title, c.ImgURL)
	}
}

func mustMakeLogger(logLevel string) *slog.Logger {
	var level slog.Level
	switch logLevel {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		panic("unknown log level: " + logLevel)
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
