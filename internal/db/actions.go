package db

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	dbpkg "github.com/dtnitsch/url-importer/pkg/db"
	"github.com/dtnitsch/url-importer/pkg/settings"
)

func openLedger(c *cli.Context) (*dbpkg.DB, error) {
	cfg, err := settings.Load(c.String("settings"))
	if err != nil {
		return nil, err
	}
	database, err := dbpkg.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

// HistoryAction lists recorded imports, newest first.
func HistoryAction(c *cli.Context) error {
	database, err := openLedger(c)
	if err != nil {
		return err
	}
	defer database.Close()

	records, err := database.ListImports(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list imports: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No imports recorded")
		return nil
	}

	fmt.Printf("%-6s %-14s %-7s %-6s %-16s %-40s\n",
		"ID", "When", "Kind", "Pages", "Assets", "Document")
	fmt.Println(strings.Repeat("-", 100))

	for _, r := range records {
		assets := "-"
		if r.AssetCount > 0 {
			assets = fmt.Sprintf("%d (%s)", r.AssetCount, humanize.Bytes(uint64(r.AssetBytes)))
		}
		pages := "-"
		if r.PageCount > 0 {
			pages = fmt.Sprintf("%d", r.PageCount)
		}
		fmt.Printf("%-6d %-14s %-7s %-6s %-16s %-40s\n",
			r.ImportID,
			humanize.Time(r.CreatedAt),
			r.Kind,
			pages,
			assets,
			r.DocumentPath,
		)
	}

	fmt.Printf("\nTotal: %d imports\n", len(records))
	fmt.Printf("\nTip: Use 'url-importer history show <id>' to list assets\n")

	return nil
}

// HistoryShowAction prints one import and its assets.
func HistoryShowAction(c *cli.Context) error {
	database, err := openLedger(c)
	if err != nil {
		return err
	}
	defer database.Close()

	importID, err := GetImportIDOrLatest(c, database)
	if err != nil {
		return err
	}

	assets, err := database.ListAssets(importID)
	if err != nil {
		return fmt.Errorf("failed to list assets: %w", err)
	}

	fmt.Printf("Import %d: %d assets\n", importID, len(assets))
	for _, a := range assets {
		fmt.Printf("  %-50s %10s  %s  %s\n", a.Path, humanize.Bytes(uint64(a.SizeBytes)), a.ContentHash[:min(12, len(a.ContentHash))], a.SourceURL)
	}
	return nil
}
