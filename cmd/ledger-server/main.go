// ledger-server serves the normalized league datasets, the unmapped QA
// tables, and an ingest trigger over HTTP, with a WebSocket channel
// streaming run progress.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/zazu-22/ff-data-analytics-sub000/internal/app"
	"github.com/zazu-22/ff-data-analytics-sub000/pkg/contracts"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetVersionString())
		return
	}

	application, err := app.NewApplication()
	if err != nil {
		slog.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
