package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dtnitsch/bac-archiver/internal/classify"
	"github.com/dtnitsch/bac-archiver/internal/db"
	"github.com/dtnitsch/bac-archiver/internal/scrape"
	"github.com/dtnitsch/bac-archiver/models"
	"github.com/dtnitsch/bac-archiver/pkg/help"
	"github.com/urfave/cli/v2"
)

var dbFlag = &cli.StringFlag{
	Name:  "db",
	Usage: "Path to the run history database (default: next to the binary)",
}

var rulesFlag = &cli.StringFlag{
	Name:  "rules",
	Usage: "YAML rule table overriding the built-in classification rules",
}

var formatFlag = &cli.StringFlag{
	Name:  "format",
	Value: "json",
	Usage: "Output format: json or yaml",
}

var ledgerFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "ledger",
		Value: "seen_urls.txt",
		Usage: "Ledger file for the file backend",
	},
	&cli.StringFlag{
		Name:  "ledger-backend",
		Value: "file",
		Usage: "Where processed source URLs are kept: file, sqlite or redis",
	},
	&cli.StringFlag{
		Name:    "redis-addr",
		Usage:   "Redis address for the redis ledger backend",
		EnvVars: []string{"BAC_REDIS_ADDR"},
	},
	&cli.StringFlag{
		Name:  "redis-key",
		Usage: "Redis set holding processed source URLs",
	},
	dbFlag,
}

func scrapeFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.IntFlag{
			Name:  "year",
			Usage: "Exam year to scrape (default: current year)",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "Optional YAML config file; flags override its values",
		},
		rulesFlag,
		&cli.BoolFlag{
			Name:  "archive-hosts",
			Value: true,
			Usage: "Use the year archive host (subiecte{year}.edu.ro) in page URLs; --archive-hosts=false for the live host",
		},
		&cli.StringSliceFlag{
			Name:  "pages",
			Usage: "Page URL templates to scan; {year} and {archive} are expanded",
		},
		&cli.StringFlag{
			Name:  "output-dir",
			Value: "files",
			Usage: "Root directory for the local sink",
		},
		&cli.StringFlag{
			Name:  "sink",
			Value: "local",
			Usage: "Destination store: local or s3",
		},
		&cli.StringFlag{Name: "s3-endpoint", Usage: "S3/R2 endpoint host", EnvVars: []string{"BAC_S3_ENDPOINT"}},
		&cli.StringFlag{Name: "s3-bucket", Usage: "S3 bucket", EnvVars: []string{"BAC_S3_BUCKET"}},
		&cli.StringFlag{Name: "s3-prefix", Usage: "Key prefix inside the bucket"},
		&cli.StringFlag{Name: "s3-region", Usage: "S3 region"},
		&cli.BoolFlag{Name: "s3-ssl", Value: true, Usage: "Use TLS for the S3 endpoint"},
		&cli.StringFlag{Name: "s3-access-key", EnvVars: []string{"BAC_S3_ACCESS_KEY"}, Usage: "S3 access key"},
		&cli.StringFlag{Name: "s3-secret-key", EnvVars: []string{"BAC_S3_SECRET_KEY"}, Usage: "S3 secret key"},
		&cli.IntFlag{
			Name:  "workers",
			Value: 1,
			Usage: "Archives processed concurrently per page",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Classify and plan without writing files or the ledger",
		},
		&cli.BoolFlag{
			Name:  "validate-pdf",
			Usage: "Reject PDFs that fail structural validation",
		},
		&cli.StringFlag{
			Name:  "cache-dir",
			Usage: "Cache downloaded archives in this directory",
		},
		&cli.StringFlag{
			Name:  "max-age",
			Value: "24h",
			Usage: "Cache freshness threshold (0 = never expire)",
		},
		&cli.BoolFlag{
			Name:  "force-fetch",
			Usage: "Ignore the archive cache",
		},
		&cli.StringFlag{
			Name:  "user-agent",
			Value: models.DefaultUserAgent,
			Usage: "User-Agent sent to the publisher",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Value: models.DefaultTimeout,
			Usage: "Per-request timeout",
		},
		&cli.BoolFlag{
			Name:  "no-history",
			Usage: "Do not record the run in the database",
		},
		formatFlag,
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Only log errors",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Log debug output",
		},
	}
	return append(flags, ledgerFlags...)
}

func main() {
	app := &cli.App{
		Name:     "bac-archiver",
		Usage:    "Archive and classify baccalaureate exam papers",
		Compiled: time.Now(),
		Commands: []*cli.Command{
			{
				Name:   "scrape",
				Usage:  "Discover archives, classify their documents and place them",
				Flags:  scrapeFlags(),
				Action: scrape.ScrapeAction,
			},
			{
				Name:      "classify",
				Usage:     "Classify filenames from args or stdin and print their placement",
				ArgsUsage: "[filename...]",
				Flags: []cli.Flag{
					rulesFlag,
					formatFlag,
					&cli.StringFlag{
						Name:  "origin",
						Usage: "Page URL the documents were linked from",
					},
				},
				Action: classify.ClassifyAction,
			},
			{
				Name:  "quickstart",
				Usage: "Print a quick reference of common commands",
				Action: func(c *cli.Context) error {
					fmt.Print(help.ColdstartYAML)
					return nil
				},
			},
			{
				Name:   "rules",
				Usage:  "Print the effective rule set as YAML",
				Flags:  []cli.Flag{rulesFlag},
				Action: classify.RulesAction,
			},
			{
				Name:  "ledger",
				Usage: "Inspect the processed-source ledger",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List processed source URLs",
						Flags:  ledgerFlags,
						Action: db.LedgerListAction,
					},
					{
						Name:      "check",
						Usage:     "Report whether source URLs were already processed",
						ArgsUsage: "<url>...",
						Flags:     ledgerFlags,
						Action:    db.LedgerCheckAction,
					},
				},
			},
			{
				Name:  "db",
				Usage: "Query run history",
				Subcommands: []*cli.Command{
					{
						Name:  "runs",
						Usage: "List recent runs",
						Flags: []cli.Flag{
							dbFlag,
							&cli.IntFlag{
								Name:  "limit",
								Value: 20,
								Usage: "Maximum runs to show",
							},
						},
						Action: db.RunsAction,
					},
					{
						Name:      "run",
						Usage:     "Show one run (default: latest)",
						ArgsUsage: "[run-id]",
						Flags: []cli.Flag{
							dbFlag,
							&cli.BoolFlag{
								Name:  "placements",
								Usage: "List every placement under its source",
							},
						},
						Action: db.RunAction,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}
