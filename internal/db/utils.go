package db

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	dbpkg "github.com/dtnitsch/url-importer/pkg/db"
)

// GetImportIDOrLatest returns the import ID from args, or the latest import if not provided
func GetImportIDOrLatest(c *cli.Context, database *dbpkg.DB) (int64, error) {
	if c.NArg() == 0 {
		records, err := database.ListImports(1)
		if err != nil {
			return 0, fmt.Errorf("failed to get latest import: %w", err)
		}
		if len(records) == 0 {
			return 0, errors.New("no imports found. Run 'url-importer import <url>' first")
		}
		return records[0].ImportID, nil
	}

	var importID int64
	if _, err := fmt.Sscanf(c.Args().First(), "%d", &importID); err != nil {
		return 0, fmt.Errorf("invalid import ID: %s", c.Args().First())
	}
	return importID, nil
}
