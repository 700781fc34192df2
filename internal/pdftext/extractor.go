// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext extracts plain text from PDF files with pluggable backends
// and combines the text of a whole download tree into one corpus file.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/datasetkit/pkg/types"
)

const pdftotextBin = "pdftotext"

// Page is the text of one PDF page. Number is 1-based and refers to the page
// position in the source document.
type Page struct {
	Number int
	Text   string
}

// Extractor returns the non-empty pages of a PDF together with the
// document's total page count. Different backends (native Go parser,
// poppler's pdftotext) implement this interface.
type Extractor interface {
	Pages(pdfPath string) (pages []Page, total int, err error)
}

// NewExtractor returns the extractor for the named backend. An empty backend
// selects the native one.
func NewExtractor(backend types.ExtractionBackend) (Extractor, error) {
	switch backend {
	case "", types.BackendNative:
		return NativeExtractor{}, nil
	case types.BackendPdftotext:
		return NewCommandExtractor(), nil
	default:
		return nil, fmt.Errorf("unknown extraction backend %q (want %q or %q)",
			backend, types.BackendNative, types.BackendPdftotext)
	}
}

// NativeExtractor reads PDFs with github.com/ledongthuc/pdf. Pages that are
// missing or fail to decode are skipped rather than failing the document.
type NativeExtractor struct{}

// Pages implements Extractor.
func (NativeExtractor) Pages(pdfPath string) ([]Page, int, error) {
	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", pdfPath, err)
	}
	defer f.Close()

	total := r.NumPage()
	var pages []Page
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, Page{Number: i, Text: text})
	}
	return pages, total, nil
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Output(name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) Output(name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil && stderr.Len() > 0 {
		return out, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, err
}

// ErrToolMissing is returned when the pdftotext binary is not on PATH.
var ErrToolMissing = errors.New("pdftotext not found on PATH (install poppler-utils)")

// CommandExtractor shells out to `pdftotext -layout`. Pages are separated by
// form feeds in its output.
type CommandExtractor struct {
	exec executor
}

// NewCommandExtractor returns a CommandExtractor backed by os/exec.
func NewCommandExtractor() *CommandExtractor {
	return &CommandExtractor{exec: osExecutor{}}
}

// Pages implements Extractor.
func (c *CommandExtractor) Pages(pdfPath string) ([]Page, int, error) {
	if _, err := c.exec.LookPath(pdftotextBin); err != nil {
		return nil, 0, ErrToolMissing
	}
	out, err := c.exec.Output(pdftotextBin, "-layout", pdfPath, "-")
	if err != nil {
		return nil, 0, fmt.Errorf("running %s on %s: %w", pdftotextBin, pdfPath, err)
	}
	if len(out) == 0 {
		return nil, 0, nil
	}

	// pdftotext terminates every page with a form feed.
	chunks := strings.Split(strings.TrimSuffix(string(out), "\f"), "\f")
	var pages []Page
	for i, chunk := range chunks {
		text := strings.TrimSpace(chunk)
		if text == "" {
			continue
		}
		pages = append(pages, Page{Number: i + 1, Text: text})
	}
	return pages, len(chunks), nil
}
