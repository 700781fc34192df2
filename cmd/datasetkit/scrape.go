// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/datasetkit/internal/catalog"
	"github.com/pdiddy/datasetkit/internal/scrape"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Download every PDF linked from a topic index page",
	Long: `Scrape fetches the index page, follows each topic page linked from it,
and downloads the PDFs listed there into one subdirectory per topic.
Files that already exist are skipped, so an interrupted run can be
resumed. Downloads are recorded in the SQLite catalog unless
--catalog is set to an empty string.`,
	RunE: runScrape,
}

func init() {
	f := scrapeCmd.Flags()
	f.String("base-url", "", "index page listing the topic pages")
	f.String("topic-marker", "", "path fragment identifying topic links")
	f.String("download-dir", "", "directory receiving one subdirectory per topic (default matematika_pdfs)")
	f.Duration("delay", 0, "delay between consecutive downloads (default 500ms)")
	f.Duration("timeout", 0, "HTTP request timeout (default 60s)")
	f.Int("max-retries", 0, "retries on HTTP 429/503 (default 3)")
	f.String("catalog", "", "SQLite catalog path (default matematika_pdfs/catalog.db)")

	bindFlag("scrape.base_url", f.Lookup("base-url"))
	bindFlag("scrape.topic_marker", f.Lookup("topic-marker"))
	bindFlag("scrape.download_dir", f.Lookup("download-dir"))
	bindFlag("scrape.download_delay", f.Lookup("delay"))
	bindFlag("scrape.timeout", f.Lookup("timeout"))
	bindFlag("scrape.max_retries", f.Lookup("max-retries"))
	bindFlag("scrape.catalog_path", f.Lookup("catalog"))

	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	sc := cfg.Scrape

	var rec scrape.Recorder
	if sc.CatalogPath != "" {
		store, err := catalog.Open(sc.CatalogPath)
		if err != nil {
			return err
		}
		defer store.Close()
		rec = store
	}

	s, err := scrape.New(sc, rec, logger)
	if err != nil {
		return err
	}

	result, err := s.Run(cmd.Context(), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d download(s) and %d topic page(s) failed", result.Failed, result.FailedPages)
	}
	return nil
}
