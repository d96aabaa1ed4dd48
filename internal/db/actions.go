package db

import (
	"fmt"
	"strings"

	dbpkg "github.com/dtnitsch/bac-archiver/pkg/db"
	"github.com/urfave/cli/v2"
)

// RunsAction lists recent runs
func RunsAction(c *cli.Context) error {
	database, err := dbpkg.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	// Print table header
	fmt.Printf("%-6s %-20s %-6s %-8s %-12s %-8s %-8s %-8s %-8s\n",
		"ID", "Started", "Year", "Sink", "Status", "Seen", "Skipped", "Placed", "Failed")
	fmt.Println(strings.Repeat("-", 100))

	for _, r := range runs {
		sink := r.Sink
		if r.DryRun {
			sink = "dry_run"
		}
		fmt.Printf("%-6d %-20s %-6s %-8s %-12s %-8d %-8d %-8d %-8d\n",
			r.RunID,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Year,
			sink,
			r.Status,
			r.SourcesSeen,
			r.SourcesSkipped,
			r.DocumentsPlaced,
			r.DocumentsFailed,
		)
	}

	fmt.Printf("\nTotal: %d runs\n", len(runs))
	fmt.Printf("\nTip: Use 'bac-archiver db run <id>' to see details\n")

	return nil
}

// RunAction shows the sources and placements of one run
func RunAction(c *cli.Context) error {
	database, err := dbpkg.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	runID, err := GetRunIDOrLatest(c, database)
	if err != nil {
		return err
	}

	run, err := database.GetRunByID(runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}
	sources, err := database.GetRunSources(runID)
	if err != nil {
		return fmt.Errorf("failed to get run sources: %w", err)
	}
	placements, err := database.GetRunPlacements(runID)
	if err != nil {
		return fmt.Errorf("failed to get run placements: %w", err)
	}

	fmt.Printf("Run %d\n", run.RunID)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Started:     %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	if run.FinishedAt != nil {
		fmt.Printf("Finished:    %s\n", run.FinishedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Year:        %s\n", run.Year)
	fmt.Printf("Sink:        %s (dry run: %t)\n", run.Sink, run.DryRun)
	fmt.Printf("Rules:       %s\n", run.RulesVersion)
	fmt.Printf("Status:      %s\n", run.Status)
	fmt.Printf("Sources:     %d seen (%d skipped, %d processed, %d failed)\n",
		run.SourcesSeen, run.SourcesSkipped, run.SourcesProcessed, run.SourcesFailed)
	fmt.Printf("Documents:   %d placed, %d failed\n", run.DocumentsPlaced, run.DocumentsFailed)

	byURL := make(map[string][]dbpkg.Placement)
	for _, p := range placements {
		byURL[p.SourceURL] = append(byURL[p.SourceURL], p)
	}

	fmt.Printf("\nSources (%d):\n", len(sources))
	fmt.Println(strings.Repeat("-", 60))
	for i, s := range sources {
		fmt.Printf("%2d. [%s] %s\n", i+1, s.Status, s.URL)
		if s.ErrorType != "" {
			fmt.Printf("    Error: [%s] %s\n", s.ErrorType, s.ErrorMessage)
		}
		if c.Bool("placements") {
			// Placements are listed under the first attempt at a URL.
			for _, p := range byURL[s.URL] {
				printPlacement(p)
			}
			delete(byURL, s.URL)
		}
	}

	if !c.Bool("placements") && len(placements) > 0 {
		fmt.Printf("\nTip: Use 'bac-archiver db run %d --placements' to list %d placements\n", runID, len(placements))
	}

	return nil
}

func printPlacement(p dbpkg.Placement) {
	dest := p.Destination
	if dest == "" {
		dest = p.Document
	}
	fmt.Printf("    - [%s] %s\n", p.Outcome, dest)
	if p.ErrorType != "" {
		fmt.Printf("      Error: [%s] %s\n", p.ErrorType, p.ErrorMessage)
	}
}
