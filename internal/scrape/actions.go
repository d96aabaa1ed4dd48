package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/dtnitsch/bac-archiver/internal/common"
	"github.com/dtnitsch/bac-archiver/models"
	"github.com/dtnitsch/bac-archiver/pkg/caching"
	"github.com/dtnitsch/bac-archiver/pkg/db"
	"github.com/dtnitsch/bac-archiver/pkg/fetcher"
	"github.com/dtnitsch/bac-archiver/pkg/ledger"
	"github.com/dtnitsch/bac-archiver/pkg/manifest"
	"github.com/dtnitsch/bac-archiver/pkg/rules"
	"github.com/dtnitsch/bac-archiver/pkg/sink"
	"github.com/urfave/cli/v2"
)

const (
	defaultOutputDir = "files"
	defaultLedger    = "seen_urls.txt"
)

// ScrapeAction runs one ingestion pass for a year.
func ScrapeAction(c *cli.Context) error {
	logger := common.NewLogger(os.Stderr, c.Bool("quiet"), c.Bool("verbose"))

	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	applyFlags(c, cfg)
	if cfg.Year == 0 {
		cfg.Year = time.Now().Year()
	}
	year := strconv.Itoa(cfg.Year)

	rs, err := rules.LoadOrDefault(cfg.RulesFile)
	if err != nil {
		logger.Error("failed to load rules", "error", err)
		os.Exit(2)
	}

	pages, invalid := common.SanitizeAndValidateURLs(cfg.PageURLs())
	if len(invalid) > 0 {
		fmt.Fprintf(os.Stderr, "Error: %d page URL(s) are malformed:\n", len(invalid))
		for _, bad := range invalid {
			fmt.Fprintf(os.Stderr, "  - %s\n", bad)
		}
		os.Exit(2)
	}

	source, err := newFetcher(c, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize cache", "error", err)
		os.Exit(2)
	}

	var database *db.DB
	if !c.Bool("no-history") || cfg.Ledger.Backend == "sqlite" {
		database, err = db.Open(c.String("db"))
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(2)
		}
		defer database.Close()
	}

	store, closeStore, err := NewLedgerStore(cfg.Ledger, database)
	if err != nil {
		logger.Error("failed to initialize ledger", "error", err)
		os.Exit(2)
	}
	defer closeStore()

	target, err := newSink(cfg)
	if err != nil {
		logger.Error("failed to initialize sink", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	seen := ledger.New(store)
	if err := seen.Load(ctx); err != nil {
		logger.Error("failed to load ledger", "error", err)
		os.Exit(2)
	}
	logger.Info("Loaded ledger", "backend", LedgerBackend(cfg.Ledger), "size", seen.Len())

	p := New(rs, year)
	p.Source = source
	p.Ledger = seen
	p.Sink = target
	p.Logger = logger
	p.Workers = cfg.WorkerCount

	if database != nil && !c.Bool("no-history") {
		runID, err := database.CreateRun(year, sinkName(cfg), cfg.DryRun, rs.Version)
		if err != nil {
			logger.Error("failed to create run", "error", err)
			os.Exit(2)
		}
		p.RunID = runID
		p.Recorder = database
	}

	startTime := time.Now()
	report := p.Run(ctx, pages)

	// The ledger is saved even when interrupted; a cancelled ctx must not
	// abort the write.
	if !cfg.DryRun {
		if err := seen.Persist(context.WithoutCancel(ctx)); err != nil {
			logger.Error("failed to persist ledger", "error", err)
		}
	}

	summary := manifest.Build(manifest.RunInfo{
		RunID:        p.RunID,
		Year:         year,
		DryRun:       cfg.DryRun,
		RulesVersion: rs.Version,
		Interrupted:  report.Interrupted,
		Pages:        report.Pages,
		PagesFailed:  report.PagesFailed,
		LedgerSize:   seen.Len(),
		NewSources:   seen.Added(),
	}, report.Sources)

	if p.Recorder != nil {
		if err := database.FinishRun(p.RunID, runStats(summary)); err != nil {
			logger.Warn("failed to finish run", "run_id", p.RunID, "error", err)
		}
	}

	logger.Info("Finished scrape",
		"duration", time.Since(startTime).String(),
		"sources", summary.SourcesSeen,
		"new_sources", summary.NewSources,
		"placed", summary.DocumentsPlaced,
		"failed", summary.DocumentsFailed)

	if err := manifest.Write(os.Stdout, summary, c.String("format")); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	if summary.Failed() {
		os.Exit(1)
	}
	return nil
}

// applyFlags overrides config file values with flags the user set.
func applyFlags(c *cli.Context, cfg *models.ScrapeConfig) {
	if c.IsSet("year") {
		cfg.Year = c.Int("year")
	}
	if c.IsSet("archive-hosts") {
		cfg.ArchiveHosts = c.Bool("archive-hosts")
	}
	if c.IsSet("pages") {
		cfg.Pages = c.StringSlice("pages")
	}
	if c.IsSet("rules") {
		cfg.RulesFile = c.String("rules")
	}
	if c.IsSet("output-dir") || cfg.OutputDir == "" {
		cfg.OutputDir = c.String("output-dir")
	}
	if c.IsSet("ledger") || cfg.Ledger.Path == "" {
		cfg.Ledger.Path = c.String("ledger")
	}
	if c.IsSet("ledger-backend") || cfg.Ledger.Backend == "" {
		cfg.Ledger.Backend = c.String("ledger-backend")
	}
	if c.IsSet("redis-addr") {
		cfg.Ledger.RedisURL = c.String("redis-addr")
	}
	if c.IsSet("redis-key") {
		cfg.Ledger.RedisKey = c.String("redis-key")
	}
	if c.IsSet("sink") || cfg.Sink == "" {
		cfg.Sink = c.String("sink")
	}
	if c.IsSet("s3-endpoint") {
		cfg.S3.Endpoint = c.String("s3-endpoint")
	}
	if c.IsSet("s3-bucket") {
		cfg.S3.Bucket = c.String("s3-bucket")
	}
	if c.IsSet("s3-prefix") {
		cfg.S3.Prefix = c.String("s3-prefix")
	}
	if c.IsSet("s3-region") {
		cfg.S3.Region = c.String("s3-region")
	}
	if c.IsSet("s3-ssl") {
		cfg.S3.UseSSL = c.Bool("s3-ssl")
	}
	if c.IsSet("s3-access-key") {
		cfg.S3.AccessKey = c.String("s3-access-key")
	}
	if c.IsSet("s3-secret-key") {
		cfg.S3.SecretKey = c.String("s3-secret-key")
	}
	if c.IsSet("workers") || cfg.WorkerCount == 0 {
		cfg.WorkerCount = c.Int("workers")
	}
	if c.IsSet("dry-run") {
		cfg.DryRun = c.Bool("dry-run")
	}
	if c.IsSet("validate-pdf") {
		cfg.ValidatePDF = c.Bool("validate-pdf")
	}
	if c.IsSet("cache-dir") {
		cfg.CacheDir = c.String("cache-dir")
	}
	if c.IsSet("user-agent") || cfg.UserAgent == "" {
		cfg.UserAgent = c.String("user-agent")
	}
	if c.IsSet("timeout") || cfg.Timeout == 0 {
		cfg.Timeout = c.Duration("timeout")
	}
}

func newFetcher(c *cli.Context, cfg *models.ScrapeConfig, logger *slog.Logger) (*fetcher.Fetcher, error) {
	opts := []fetcher.Option{
		fetcher.WithLogger(logger),
		fetcher.WithTimeout(cfg.Timeout),
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithAlternateHosts(cfg.HostFallbacks()),
	}

	if cfg.CacheDir != "" && !c.Bool("force-fetch") {
		ttl := cfg.CacheTTL
		if c.IsSet("max-age") || ttl == 0 {
			var err error
			ttl, err = time.ParseDuration(c.String("max-age"))
			if err != nil {
				return nil, fmt.Errorf("invalid max-age duration: %w", err)
			}
		}
		cache, err := caching.NewCache(cfg.CacheDir, ttl)
		if err != nil {
			return nil, err
		}
		opts = append(opts, fetcher.WithCache(cache))
	}
	return fetcher.NewFetcher(opts...), nil
}

func LedgerBackend(cfg models.LedgerConfig) string {
	if cfg.Backend == "" {
		return "file"
	}
	return cfg.Backend
}

// NewLedgerStore returns the configured store and a func releasing it.
func NewLedgerStore(cfg models.LedgerConfig, database *db.DB) (ledger.Store, func(), error) {
	noop := func() {}
	switch LedgerBackend(cfg) {
	case "file":
		p := cfg.Path
		if p == "" {
			p = defaultLedger
		}
		return ledger.NewFileStore(p), noop, nil
	case "sqlite":
		if database == nil {
			return nil, noop, fmt.Errorf("sqlite ledger requires a database")
		}
		return db.NewLedgerStore(database), noop, nil
	case "redis":
		if cfg.RedisURL == "" {
			return nil, noop, fmt.Errorf("redis ledger requires --redis-addr")
		}
		var opts []ledger.RedisOption
		if cfg.RedisKey != "" {
			opts = append(opts, ledger.WithRedisKey(cfg.RedisKey))
		}
		store := ledger.NewRedisStore(cfg.RedisURL, opts...)
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown ledger backend %q", cfg.Backend)
	}
}

func sinkName(cfg *models.ScrapeConfig) string {
	if cfg.DryRun {
		return "dry_run"
	}
	if cfg.Sink == "" {
		return "local"
	}
	return cfg.Sink
}

func newSink(cfg *models.ScrapeConfig) (sink.Sink, error) {
	var target sink.Sink
	switch sinkName(cfg) {
	case "dry_run":
		return sink.NewDryRun(), nil
	case "local":
		root := cfg.OutputDir
		if root == "" {
			root = defaultOutputDir
		}
		target = sink.NewLocal(filepath.Clean(root))
	case "s3":
		s3, err := sink.NewS3(cfg.S3)
		if err != nil {
			return nil, err
		}
		target = s3
	default:
		return nil, fmt.Errorf("unknown sink %q", cfg.Sink)
	}
	if cfg.ValidatePDF {
		target = sink.NewValidating(target)
	}
	return target, nil
}

func runStats(s manifest.RunSummary) db.RunStats {
	status := db.RunSuccess
	switch {
	case s.Interrupted:
		status = db.RunInterrupted
	case s.Failed():
		status = db.RunPartial
	}
	return db.RunStats{
		Status:           status,
		SourcesSeen:      s.SourcesSeen,
		SourcesSkipped:   s.SourcesSkipped,
		SourcesProcessed: s.SourcesSeen - s.SourcesSkipped - s.SourcesFailed - s.SourcesEmpty,
		SourcesFailed:    s.SourcesFailed,
		DocumentsPlaced:  s.DocumentsPlaced,
		DocumentsFailed:  s.DocumentsFailed,
	}
}
