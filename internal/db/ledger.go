package db

import (
	"fmt"

	"github.com/dtnitsch/bac-archiver/internal/scrape"
	"github.com/dtnitsch/bac-archiver/models"
	dbpkg "github.com/dtnitsch/bac-archiver/pkg/db"
	"github.com/dtnitsch/bac-archiver/pkg/ledger"
	"github.com/urfave/cli/v2"
)

// openLedger loads the ledger selected by the --ledger* flags.
func openLedger(c *cli.Context) (*ledger.Ledger, func(), error) {
	cfg := models.LedgerConfig{
		Backend:  c.String("ledger-backend"),
		Path:     c.String("ledger"),
		RedisURL: c.String("redis-addr"),
		RedisKey: c.String("redis-key"),
	}

	closers := []func(){}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var database *dbpkg.DB
	if scrape.LedgerBackend(cfg) == "sqlite" {
		var err error
		database, err = dbpkg.Open(c.String("db"))
		if err != nil {
			return nil, closeAll, fmt.Errorf("failed to open database: %w", err)
		}
		closers = append(closers, func() { _ = database.Close() })
	}

	store, closeStore, err := scrape.NewLedgerStore(cfg, database)
	if err != nil {
		return nil, closeAll, err
	}
	closers = append(closers, closeStore)

	l := ledger.New(store)
	if err := l.Load(c.Context); err != nil {
		return nil, closeAll, fmt.Errorf("failed to load ledger: %w", err)
	}
	return l, closeAll, nil
}

// LedgerListAction prints every processed source URL
func LedgerListAction(c *cli.Context) error {
	l, closeLedger, err := openLedger(c)
	defer closeLedger()
	if err != nil {
		return err
	}

	for _, u := range l.URLs() {
		fmt.Println(u)
	}
	fmt.Printf("\nTotal: %d sources\n", l.Len())
	return nil
}

// LedgerCheckAction reports whether each URL argument was already processed
func LedgerCheckAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("no URLs provided, usage: bac-archiver ledger check <url>")
	}

	l, closeLedger, err := openLedger(c)
	defer closeLedger()
	if err != nil {
		return err
	}

	missing := 0
	for _, u := range c.Args().Slice() {
		state := "new"
		if l.Contains(u) {
			state = "processed"
		} else {
			missing++
		}
		fmt.Printf("%-10s %s\n", state, u)
	}
	if missing > 0 {
		return cli.Exit("", 1)
	}
	return nil
}
