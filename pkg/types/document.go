// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Document is a PDF downloaded by the scraper.
type Document struct {
	// Path is the local filesystem path; it identifies the document.
	Path string `json:"path" yaml:"path"`

	// Topic is the human-readable topic the PDF was listed under.
	Topic string `json:"topic" yaml:"topic"`

	// Title is the link text the PDF was published with.
	Title string `json:"title" yaml:"title"`

	// SourceURL is the URL the PDF was downloaded from.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// DownloadedAt is when the file was first recorded.
	DownloadedAt time.Time `json:"downloaded_at" yaml:"downloaded_at"`

	// Extracted reports whether text has been extracted from the PDF.
	Extracted bool `json:"extracted" yaml:"extracted"`
}
