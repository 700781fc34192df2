// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/datasetkit/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the catalog of downloaded PDFs",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalogued documents",
	Long: `List prints the documents recorded by scrape, with their topic, link
title, and whether text has been extracted. Use --pending to show only
documents not yet extracted.`,
	RunE: runCatalogList,
}

func init() {
	catalogCmd.PersistentFlags().String("db", "", "SQLite catalog path (default: scrape.catalog_path)")

	f := catalogListCmd.Flags()
	f.String("topic", "", "only documents in this topic")
	f.Bool("pending", false, "only documents without extracted text")
	f.String("format", catalog.FormatTable, "output format: table, json, or yaml")

	catalogCmd.AddCommand(catalogListCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		path = viper.GetString("scrape.catalog_path")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("catalog %s: %w (run scrape first)", path, err)
	}

	store, err := catalog.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	topic, _ := cmd.Flags().GetString("topic")
	pending, _ := cmd.Flags().GetBool("pending")
	format, _ := cmd.Flags().GetString("format")

	docs, err := store.List(cmd.Context(), catalog.ListOptions{Topic: topic, PendingOnly: pending})
	if err != nil {
		return err
	}
	return catalog.Write(cmd.OutOrStdout(), docs, format)
}
