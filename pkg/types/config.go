// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries is the number of retries on HTTP 429/503 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// SplitConfig holds settings for the dataset splitter.
type SplitConfig struct {
	// SourceDir contains one subdirectory per class label.
	SourceDir string `json:"source_dir" yaml:"source_dir" mapstructure:"source_dir"`

	// TargetDir receives the train/ and test/ trees.
	TargetDir string `json:"target_dir" yaml:"target_dir" mapstructure:"target_dir"`

	// TestRatio is the fraction of each class assigned to test, in [0,1).
	TestRatio float64 `json:"test_ratio" yaml:"test_ratio" mapstructure:"test_ratio"`

	// Seed drives the shuffle. The same seed over the same tree yields the
	// same output.
	Seed int64 `json:"seed" yaml:"seed" mapstructure:"seed"`

	// KeepExtension names outputs with the source's extension instead of ".jpg".
	KeepExtension bool `json:"keep_extension" yaml:"keep_extension" mapstructure:"keep_extension"`

	// Manifest writes manifest.yaml into TargetDir.
	Manifest bool `json:"manifest" yaml:"manifest" mapstructure:"manifest"`
}

// ScrapeConfig holds settings for the PDF scraper.
type ScrapeConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the index page listing topic pages.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// TopicMarker is the path fragment a topic link must contain. Empty
	// means the path of BaseURL.
	TopicMarker string `json:"topic_marker" yaml:"topic_marker" mapstructure:"topic_marker"`

	// DownloadDir is the base directory; each topic gets a subdirectory.
	DownloadDir string `json:"download_dir" yaml:"download_dir" mapstructure:"download_dir"`

	// DownloadDelay is the pause between consecutive downloads (default 500ms).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay" mapstructure:"download_delay"`

	// CatalogPath is the SQLite catalog file. Empty disables the catalog.
	CatalogPath string `json:"catalog_path" yaml:"catalog_path" mapstructure:"catalog_path"`
}

// ExtractionBackend identifies the PDF text extraction tool.
type ExtractionBackend string

const (
	BackendNative    ExtractionBackend = "native"
	BackendPdftotext ExtractionBackend = "pdftotext"
)

// ExtractConfig holds settings for PDF text extraction.
type ExtractConfig struct {
	// Backend selects the extraction tool: native or pdftotext.
	Backend ExtractionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// PDFDir is searched recursively for *.pdf files.
	PDFDir string `json:"pdf_dir" yaml:"pdf_dir" mapstructure:"pdf_dir"`

	// OutputFile receives the combined text of all PDFs.
	OutputFile string `json:"output_file" yaml:"output_file" mapstructure:"output_file"`

	// CatalogPath, when set, marks successfully extracted documents.
	CatalogPath string `json:"catalog_path" yaml:"catalog_path" mapstructure:"catalog_path"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is console or json.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all stage configurations.
type Config struct {
	Split   SplitConfig   `json:"split" yaml:"split" mapstructure:"split"`
	Scrape  ScrapeConfig  `json:"scrape" yaml:"scrape" mapstructure:"scrape"`
	Extract ExtractConfig `json:"extract" yaml:"extract" mapstructure:"extract"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}
