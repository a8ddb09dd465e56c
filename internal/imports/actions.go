package imports

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/url-importer/internal/common"
	"github.com/dtnitsch/url-importer/pkg/caching"
	"github.com/dtnitsch/url-importer/pkg/db"
	"github.com/dtnitsch/url-importer/pkg/fetcher"
	"github.com/dtnitsch/url-importer/pkg/nitter"
	"github.com/dtnitsch/url-importer/pkg/settings"
	"github.com/dtnitsch/url-importer/pkg/vault"
	"github.com/dtnitsch/url-importer/pkg/webimport"
)

func ImportAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	cfg, err := settings.Load(c.String("settings"))
	if err != nil {
		return err
	}

	rawURLs := append([]string{}, c.StringSlice("url")...)
	rawURLs = append(rawURLs, c.Args().Slice()...)
	if len(rawURLs) == 0 {
		return cli.Exit("Error: at least one URL is required (--url or argument)", 1)
	}

	urls, invalid := common.SanitizeAndValidateURLs(rawURLs)
	if len(invalid) > 0 {
		return cli.Exit(fmt.Sprintf("Error: invalid URL(s): %s", strings.Join(invalid, ", ")), 1)
	}

	form := webimport.Request{
		Title:  c.String("title"),
		Author: c.String("author"),
	}
	if c.IsSet("date") {
		form.Created, err = dateparse.ParseLocal(c.String("date"))
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error: unrecognised date %q", c.String("date")), 1)
		}
	}

	f := fetcher.NewFetcher(fetcher.Options{
		Timeout:   time.Duration(cfg.RequestTimeoutMillis) * time.Millisecond,
		Interval:  time.Duration(cfg.RequestIntervalMillis) * time.Millisecond,
		UserAgent: cfg.UserAgent,
		Headers:   cfg.Headers,
	})

	var client webimport.Client = f
	if cfg.CacheDir != "" {
		cache, err := caching.NewCache(cfg.CacheDir, time.Duration(cfg.CacheTTLMinutes)*time.Minute)
		if err != nil {
			return err
		}
		client = caching.NewGetter(f, cache, logger)
	}

	v, err := vault.NewFS(cfg.VaultDir, os.Stdout, cfg.OpenCommand)
	if err != nil {
		return err
	}

	threads, err := nitter.NewImporter(client, v, nitter.Config{
		Origin:      cfg.Origin,
		AssetNaming: cfg.AssetNaming,
		MaxPages:    cfg.MaxPages,
	}, logger)
	if err != nil {
		return err
	}

	d := &Dispatcher{
		Threads: threads,
		Web: webimport.NewImporter(client, v, webimport.Config{
			APIEndpoint: cfg.APIEndpoint,
			APIKey:      cfg.APIKey,
			Folder:      cfg.Folder,
		}, logger),
		Form:   form,
		Logger: logger,
	}

	if !c.Bool("no-ledger") {
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			// The ledger never blocks an import
			logger.Warn("import ledger unavailable", "error", err)
		} else {
			defer database.Close()
			d.Ledger = database
		}
	}

	results := run(c.Context, d, urls, c.Int("workers"))
	if failed := printSummary(os.Stdout, results); failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d imports failed", failed, len(results)), 2)
	}
	return nil
}
