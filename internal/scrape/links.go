// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PDFLink is a link to a PDF found on a topic page.
type PDFLink struct {
	URL  string
	Name string
}

// filenameReplacer maps characters that are invalid in file names on common
// filesystems to underscores.
var filenameReplacer = strings.NewReplacer(
	"<", "_", ">", "_", ":", "_", `"`, "_",
	"/", "_", `\`, "_", "|", "_", "?", "_", "*", "_",
)

// TopicLinks returns the absolute URLs of topic pages linked from the index
// page: hrefs containing marker and ending in "/", excluding the index itself.
// Duplicates are dropped; first-seen order is kept.
func TopicLinks(doc *goquery.Document, base *url.URL, marker string) []string {
	var links []string
	seen := map[string]bool{base.String(): true}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if !strings.Contains(href, marker) || !strings.HasSuffix(href, "/") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		full := base.ResolveReference(ref).String()
		if seen[full] {
			return
		}
		seen[full] = true
		links = append(links, full)
	})
	return links
}

// PDFLinks returns every link on the page whose href mentions ".pdf"
// (case-insensitively), resolved against page.
func PDFLinks(doc *goquery.Document, page *url.URL) []PDFLink {
	var links []PDFLink
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if !strings.Contains(strings.ToLower(href), ".pdf") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		links = append(links, PDFLink{
			URL:  page.ResolveReference(ref).String(),
			Name: strings.Join(strings.Fields(a.Text()), " "),
		})
	})
	return links
}

// TopicName derives a display name from the last path segment of a topic
// URL: "…/vyrokova-logika/" becomes "Vyrokova Logika".
func TopicName(topicURL string) string {
	trimmed := strings.TrimRight(topicURL, "/")
	seg := trimmed[strings.LastIndex(trimmed, "/")+1:]
	if unescaped, err := url.PathUnescape(seg); err == nil {
		seg = unescaped
	}
	return cases.Title(language.Und).String(strings.ReplaceAll(seg, "-", " "))
}

// SanitizeFilename replaces characters that are invalid in file names and
// trims leading and trailing spaces and dots.
func SanitizeFilename(name string) string {
	return strings.Trim(filenameReplacer.Replace(name), ". ")
}

// FileName picks the local name for a PDF. The URL's last path element is
// used as-is when the link text is empty or identical to it; otherwise the
// sanitized link text is prefixed so the name stays readable and unique.
func FileName(pdfURL, linkName string) string {
	base := ""
	if u, err := url.Parse(pdfURL); err == nil {
		base = u.Path[strings.LastIndex(u.Path, "/")+1:]
	}
	if base == "" {
		base = "document.pdf"
	}
	if linkName == "" || linkName == base {
		return base
	}
	clean := SanitizeFilename(linkName)
	if clean == "" {
		return base
	}
	return clean + "_" + base
}
