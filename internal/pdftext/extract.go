// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

const banner = "=================================================="

// BatchResult holds the outcome of a batch extraction run.
type BatchResult struct {
	Succeeded int
	Failed    int
	// Extracted lists the PDFs whose text made it into the output.
	Extracted []string
	// OutputBytes is the size of the combined text file.
	OutputBytes int64
}

// Total returns the number of PDFs processed.
func (r BatchResult) Total() int {
	return r.Succeeded + r.Failed
}

// HasFailures reports whether any PDF yielded no text.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// RenderPages formats pages the way ExtractFile outputs them: a
// "--- Page N ---" header per page, pages separated by a blank line.
func RenderPages(pages []Page) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = fmt.Sprintf("--- Page %d ---\n%s\n", p.Number, p.Text)
	}
	return strings.Join(parts, "\n")
}

// ExtractFile extracts one PDF. With outPath set the text is written there;
// otherwise it is printed to w below a banner.
func ExtractFile(e Extractor, pdfPath, outPath string, w io.Writer) error {
	pages, total, err := e.Pages(pdfPath)
	if err != nil {
		return fmt.Errorf("extracting text: %w", err)
	}
	fmt.Fprintf(w, "Processing %d pages...\n", total)
	if skipped := total - len(pages); skipped > 0 {
		fmt.Fprintf(w, "%d page(s) had no extractable text\n", skipped)
	}

	text := RenderPages(pages)
	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}
		fmt.Fprintf(w, "\nText saved to: %s\n", outPath)
		return nil
	}

	fmt.Fprintf(w, "\n%s\nEXTRACTED TEXT:\n%s\n%s\n", banner, banner, text)
	return nil
}

// FindPDFs returns every file under root with a .pdf extension (any case),
// sorted by path.
func FindPDFs(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".pdf") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// ExtractAll extracts every PDF under dir and writes the texts, separated by
// blank lines, to outFile. Documents that fail or contain no text are counted
// and left out. When dir holds no PDFs nothing is written.
func ExtractAll(e Extractor, dir, outFile string, w io.Writer) (BatchResult, error) {
	var result BatchResult

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return result, fmt.Errorf("directory %s not found (run scrape first)", dir)
		}
		return result, err
	}
	if !info.IsDir() {
		return result, fmt.Errorf("%s is not a directory", dir)
	}

	fmt.Fprintf(w, "scanning directory: %s\n", dir)
	pdfs, err := FindPDFs(dir)
	if err != nil {
		return result, fmt.Errorf("scanning %s: %w", dir, err)
	}
	fmt.Fprintf(w, "found %d PDF files\n\n", len(pdfs))
	if len(pdfs) == 0 {
		return result, nil
	}

	var texts []string
	for i, path := range pdfs {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		fmt.Fprintf(w, "[%d/%d] %s\n", i+1, len(pdfs), rel)

		pages, _, err := e.Pages(path)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", rel, err)
			result.Failed++
			continue
		}
		parts := make([]string, len(pages))
		for j, p := range pages {
			parts[j] = p.Text
		}
		text := strings.Join(parts, "\n")
		if text == "" {
			fmt.Fprintf(w, "failed:  %s (no text)\n", rel)
			result.Failed++
			continue
		}
		texts = append(texts, text)
		result.Succeeded++
		result.Extracted = append(result.Extracted, path)
	}

	combined := strings.Join(texts, "\n\n")
	if err := os.WriteFile(outFile, []byte(combined), 0o644); err != nil {
		return result, fmt.Errorf("writing %s: %w", outFile, err)
	}
	result.OutputBytes = int64(len(combined))

	fmt.Fprintf(w, "\nExtraction summary: %d processed, %d succeeded, %d failed\n",
		result.Total(), result.Succeeded, result.Failed)
	fmt.Fprintf(w, "output: %s (%s bytes, %.2f MB)\n",
		outFile, humanize.Comma(result.OutputBytes), float64(result.OutputBytes)/(1024*1024))
	return result, nil
}
