package db

import (
	"fmt"

	dbpkg "github.com/dtnitsch/bac-archiver/pkg/db"
	"github.com/urfave/cli/v2"
)

// GetRunIDOrLatest returns the run ID from args, or the latest run if not provided
func GetRunIDOrLatest(c *cli.Context, database *dbpkg.DB) (int64, error) {
	if c.NArg() == 0 {
		runs, err := database.ListRuns(1)
		if err != nil {
			return 0, fmt.Errorf("failed to get latest run: %w", err)
		}
		if len(runs) == 0 {
			return 0, fmt.Errorf("no runs found. Run 'bac-archiver scrape --year ...' first")
		}
		return runs[0].RunID, nil
	}

	return ParseRunID(c.Args().First())
}

// ParseRunID parses a numeric run ID argument
func ParseRunID(arg string) (int64, error) {
	var runID int64
	if _, err := fmt.Sscanf(arg, "%d", &runID); err != nil || runID <= 0 {
		return 0, fmt.Errorf("invalid run ID: %s", arg)
	}
	return runID, nil
}
