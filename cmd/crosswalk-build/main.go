// crosswalk-build rebuilds the player identity table from a provider
// feed export and the authoritative birthdate reference, then writes it
// as a CSV the ingest pipeline loads on later runs.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/zazu-22/ff-data-analytics-sub000/internal/config"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/exporter"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/identity"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/infrastructure"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/sheets"
	"github.com/zazu-22/ff-data-analytics-sub000/pkg/contracts"
	"github.com/zazu-22/ff-data-analytics-sub000/pkg/contracts/domain"
)

func main() {
	var (
		feed      = flag.String("feed", "", "provider identity feed CSV (required)")
		authority = flag.String("authority", "", "authoritative birthdate reference CSV (required)")
		out       = flag.String("out", "", "output path for the identity table (defaults to data/reference/player_identity.csv)")
		version   = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Println(contracts.GetVersionString())
		return
	}

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("failed to resolve paths", "error", err)
		os.Exit(1)
	}

	cfg := config.Default()
	cfg.Logging.Output = "console"
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	if *feed == "" || *authority == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *out == "" {
		*out = paths.ReferencePath("player_identity.csv")
	}

	identities, err := build(*feed, *authority, logger)
	if err != nil {
		logger.Error("crosswalk build failed", "error", err)
		os.Exit(1)
	}

	if err := exporter.WriteIdentityTable(*out, identities); err != nil {
		logger.Error("failed to write identity table", "path", *out, "error", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %d identities to %s\n", len(identities), *out)
}

// build reads both source CSVs and runs the deduplication passes.
func build(feedPath, authorityPath string, logger *slog.Logger) ([]domain.PlayerIdentity, error) {
	feedTab, err := sheets.LoadCSVFile(feedPath)
	if err != nil {
		return nil, err
	}
	authorityTab, err := sheets.LoadCSVFile(authorityPath)
	if err != nil {
		return nil, err
	}

	records := identity.ReadFeed(feedTab.Rows)
	authority := identity.ReadAuthority(authorityTab.Rows)

	return identity.NewBuilder(logger).Build(records, authority)
}
