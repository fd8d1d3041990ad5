// Command puller runs one scheduled SEC Form D pull: discover new D / D-A
// filings, extract offering details, filter by funding range, post matches
// to the configured webhook and write the run artifact.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"formdwatch/pkg/core/config"
	"formdwatch/pkg/core/edgar"
	"formdwatch/pkg/core/fetch"
	"formdwatch/pkg/core/filter"
	"formdwatch/pkg/core/formd"
	"formdwatch/pkg/core/logging"
	"formdwatch/pkg/core/pipeline"
	"formdwatch/pkg/core/publish"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file found, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	client := fetch.NewClient(cfg.UserAgent)

	discovery := edgar.NewDiscovery(
		edgar.NewFullTextSearchClient(client, log),
		edgar.NewMasterIndexFetcher(client, log),
		log,
	)
	resolver := formd.NewDetailResolver(client, log)
	offeringFilter := filter.New(cfg.MinOffering, cfg.MaxOffering, cfg.ExcludedIndustries)
	sink := publish.NewWebhook(client, cfg.WebhookURL, os.Stdout, log)
	archive := publish.NewArtifactWriter(cfg.OutputDir, log)

	driver := pipeline.New(cfg, discovery, resolver, offeringFilter, sink, archive, log, os.Stdout)

	if _, err := driver.Run(context.Background()); err != nil {
		log.Error("run failed", zap.Error(err))
		os.Exit(1)
	}
}
