package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/url-importer/internal/config"
	"github.com/dtnitsch/url-importer/internal/db"
	"github.com/dtnitsch/url-importer/internal/imports"
	"github.com/dtnitsch/url-importer/pkg/help"
	"github.com/dtnitsch/url-importer/pkg/settings"
)

func main() {
	app := &cli.App{
		Name:  "url-importer",
		Usage: "Import nitter/Twitter threads and web pages into a markdown vault",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "settings",
				Usage:   "path to the settings file",
				Value:   settings.DefaultPath(),
				EnvVars: []string{"URL_IMPORTER_SETTINGS"},
			},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only log errors"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log debug output"},
		},
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Import one or more URLs into the vault",
				ArgsUsage: "[url...]",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "url", Aliases: []string{"u"}, Usage: "URL to import (repeatable)"},
					&cli.StringFlag{Name: "title", Usage: "title override for web pages"},
					&cli.StringFlag{Name: "author", Usage: "author override for web pages"},
					&cli.StringFlag{Name: "date", Usage: "creation date for web pages (defaults to now)"},
					&cli.IntFlag{Name: "workers", Value: 1, Usage: "number of URLs imported concurrently"},
					&cli.BoolFlag{Name: "no-ledger", Usage: "do not record imports in the ledger"},
				},
				Action: imports.ImportAction,
			},
			{
				Name:  "history",
				Usage: "List recorded imports",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "maximum rows (0 for all)"},
				},
				Action: db.HistoryAction,
				Subcommands: []*cli.Command{
					{
						Name:      "show",
						Usage:     "List the assets of an import (latest when no id is given)",
						ArgsUsage: "[id]",
						Action:    db.HistoryShowAction,
					},
				},
			},
			{
				Name:   "quickstart",
				Usage:  "Print a short usage guide",
				Action: func(c *cli.Context) error {
					fmt.Print(help.ColdstartYAML)
					return nil
				},
			},
			{
				Name:  "settings",
				Usage: "Show or change settings",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "Print the effective settings",
						Flags:  []cli.Flag{&cli.BoolFlag{Name: "reveal", Usage: "print the API key"}},
						Action: config.ShowAction,
					},
					{
						Name:      "set",
						Usage:     "Set one or more values",
						ArgsUsage: "key=value...",
						Action:    config.SetAction,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
