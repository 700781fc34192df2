// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/datasetkit/pkg/types"
)

const (
	defaultBaseURL     = "https://www.galeje.sk/predmety/matematika/matematika-v-dialogoch/"
	defaultDownloadDir = "matematika_pdfs"
	defaultCatalogPath = "matematika_pdfs/catalog.db"
)

// setDefaults registers every configuration key so environment variables
// and config files can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("split.source_dir", "dataset")
	v.SetDefault("split.target_dir", "dataset_split")
	v.SetDefault("split.test_ratio", 0.25)
	v.SetDefault("split.seed", 0)
	v.SetDefault("split.keep_extension", false)
	v.SetDefault("split.manifest", false)

	v.SetDefault("scrape.base_url", defaultBaseURL)
	v.SetDefault("scrape.topic_marker", "/matematika-v-dialogoch/")
	v.SetDefault("scrape.download_dir", defaultDownloadDir)
	v.SetDefault("scrape.download_delay", 500*time.Millisecond)
	v.SetDefault("scrape.catalog_path", defaultCatalogPath)
	v.SetDefault("scrape.timeout", 60*time.Second)
	v.SetDefault("scrape.user_agent", "")
	v.SetDefault("scrape.max_retries", 3)

	v.SetDefault("extract.backend", string(types.BackendNative))
	v.SetDefault("extract.pdf_dir", defaultDownloadDir)
	v.SetDefault("extract.output_file", "matematika_all_text.txt")
	v.SetDefault("extract.catalog_path", defaultCatalogPath)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// bindFlag ties a viper key to a flag so an explicitly set flag wins over
// file and environment values.
func bindFlag(key string, f *pflag.Flag) {
	if err := viper.BindPFlag(key, f); err != nil {
		panic(err)
	}
}
