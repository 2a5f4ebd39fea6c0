// Package extract adapts the docconv converter to the page-delimited
// contract the document chunker expects.
package extract

import (
	"context"
	"os"
	"strings"

	"code.sajari.com/docconv"

	"github.com/markdave123-py/Docuchat/internal/core"
)

type DocconvExtractor struct {
	useReadability bool
}

var _ core.DocumentExtractor = (*DocconvExtractor)(nil)

func NewDocconvExtractor(useReadability bool) *DocconvExtractor {
	return &DocconvExtractor{useReadability: useReadability}
}

// Analyze converts the file at path and splits the result into pages.
// pdftotext-backed conversions delimit pages with form feeds; other
// formats come back as one undelimited body and are paginated later by
// the chunker's reconstruction pass.
func (e *DocconvExtractor) Analyze(ctx context.Context, path string, mimeType string) ([]core.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &core.ExtractionError{Stage: "open", Err: err}
	}
	defer f.Close()

	if mimeType == "" {
		mimeType = docconv.MimeTypeByExtension(path)
	}
	res, err := docconv.Convert(f, mimeType, e.useReadability)
	if err != nil {
		return nil, &core.ExtractionError{Stage: "convert", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return SplitPages(res.Body), nil
}

// SplitPages breaks extracted text on form-feed boundaries, dropping
// whitespace-only pages. Page numbers are 1-based.
func SplitPages(body string) []core.Page {
	parts := strings.Split(body, "\f")
	pages := make([]core.Page, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		pages = append(pages, core.Page{Number: len(pages) + 1, Text: p})
	}
	return pages
}

// RebuildPages regroups undelimited text into synthetic pages of about
// wordsPerPage words, breaking on paragraph boundaries. Used for word
// processor output where the converter loses page structure.
func RebuildPages(body string, wordsPerPage int) []core.Page {
	if wordsPerPage <= 0 {
		wordsPerPage = 500
	}
	paras := strings.Split(body, "\n\n")

	var pages []core.Page
	var buf []string
	words := 0
	flush := func() {
		if words == 0 {
			return
		}
		pages = append(pages, core.Page{
			Number: len(pages) + 1,
			Text:   strings.TrimSpace(strings.Join(buf, "\n\n")),
		})
		buf = buf[:0]
		words = 0
	}

	for _, p := range paras {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		buf = append(buf, p)
		words += len(strings.Fields(p))
		if words >= wordsPerPage {
			flush()
		}
	}
	flush()
	return pages
}
