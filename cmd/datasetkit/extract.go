// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/datasetkit/internal/catalog"
	"github.com/pdiddy/datasetkit/internal/pdftext"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract plain text from downloaded PDFs",
	Long: `Extract turns PDFs into plain text. Use "extract all" to build one
combined corpus file from a download tree, or "extract file" to inspect a
single PDF page by page.`,
}

// --- all subcommand ---

var extractAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Extract every PDF under a directory into one text file",
	Long: `All walks the PDF directory recursively, extracts the text of each PDF,
and writes the texts separated by blank lines to the output file. PDFs
that yield no text are reported and left out. Extracted documents are
marked in the catalog when it exists.`,
	RunE: runExtractAll,
}

func runExtractAll(cmd *cobra.Command, args []string) error {
	ec := cfg.Extract
	e, err := pdftext.NewExtractor(ec.Backend)
	if err != nil {
		return err
	}

	result, err := pdftext.ExtractAll(e, ec.PDFDir, ec.OutputFile, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	if ec.CatalogPath != "" && len(result.Extracted) > 0 {
		markExtracted(cmd, ec.CatalogPath, result.Extracted)
	}

	if result.HasFailures() {
		return fmt.Errorf("%d PDF(s) yielded no text", result.Failed)
	}
	return nil
}

// markExtracted flags documents in the catalog. Catalog problems are logged
// and do not fail the extraction.
func markExtracted(cmd *cobra.Command, path string, docs []string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	store, err := catalog.Open(path)
	if err != nil {
		logger.Warn("opening catalog", zap.String("path", path), zap.Error(err))
		return
	}
	defer store.Close()

	n, err := store.MarkExtracted(cmd.Context(), docs)
	if err != nil {
		logger.Warn("updating catalog", zap.String("path", path), zap.Error(err))
		return
	}
	logger.Debug("catalog updated", zap.Int("marked", n), zap.Int("extracted", len(docs)))
}

// --- file subcommand ---

var extractFileCmd = &cobra.Command{
	Use:   "file <pdf> [output]",
	Short: "Extract one PDF with page markers",
	Long: `File extracts a single PDF. Each page is preceded by a "--- Page N ---"
marker. The text is written to output when given, otherwise printed.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runExtractFile,
}

func runExtractFile(cmd *cobra.Command, args []string) error {
	e, err := pdftext.NewExtractor(cfg.Extract.Backend)
	if err != nil {
		return err
	}
	var outPath string
	if len(args) == 2 {
		outPath = args[1]
	}
	return pdftext.ExtractFile(e, args[0], outPath, cmd.OutOrStdout())
}

func init() {
	extractCmd.PersistentFlags().String("backend", "", "extraction backend: native or pdftotext (default native)")
	bindFlag("extract.backend", extractCmd.PersistentFlags().Lookup("backend"))

	f := extractAllCmd.Flags()
	f.String("pdf-dir", "", "directory searched for PDFs (default matematika_pdfs)")
	f.String("output", "", "combined text file (default matematika_all_text.txt)")
	f.String("catalog", "", "SQLite catalog to mark extracted documents in")
	bindFlag("extract.pdf_dir", f.Lookup("pdf-dir"))
	bindFlag("extract.output_file", f.Lookup("output"))
	bindFlag("extract.catalog_path", f.Lookup("catalog"))

	extractCmd.AddCommand(extractAllCmd)
	extractCmd.AddCommand(extractFileCmd)
	rootCmd.AddCommand(extractCmd)
}
