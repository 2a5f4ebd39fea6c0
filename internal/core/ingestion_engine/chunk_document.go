package ingestion_engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/markdave123-py/Docuchat/internal/core"
	"github.com/markdave123-py/Docuchat/internal/core/extract"
)

// DocumentChunker handles PDFs, word processor formats and scanned
// images. One extracted page becomes one chunk; word processor output
// with no page delimiters is regrouped into synthetic pages. Oversized
// PDFs are pre-split into page-range files so a single conversion never
// holds the whole document in memory.
type DocumentChunker struct {
	Extractor     core.DocumentExtractor
	WordsPerChunk int
	MaxPDFBytes   int64
	MaxPDFPages   int
	TempDir       string
}

func (c *DocumentChunker) Chunk(ctx context.Context, path string, sink Sink) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".pdf" {
		if split, err := c.needsSplit(path); err != nil {
			return err
		} else if split {
			return c.chunkSplitPDF(ctx, path, sink)
		}
	}

	pages, err := c.Extractor.Analyze(ctx, path, "")
	if err != nil {
		return err
	}
	pages = c.repaginate(ext, pages)

	if err := sink.SetEstimate(ctx, len(pages)); err != nil {
		return err
	}
	seq := 0
	for _, p := range pages {
		if err := sink.Save(ctx, Unit{Seq: seq, Text: p.Text}); err != nil {
			return err
		}
		seq++
	}
	return nil
}

// repaginate rebuilds synthetic pages for formats whose converter
// returns one undelimited body.
func (c *DocumentChunker) repaginate(ext string, pages []core.Page) []core.Page {
	switch ext {
	case ".docx", ".doc", ".odt", ".rtf", ".pptx":
	default:
		return pages
	}
	if len(pages) != 1 {
		return pages
	}
	return extract.RebuildPages(pages[0].Text, c.WordsPerChunk)
}

func (c *DocumentChunker) needsSplit(path string) (bool, error) {
	if c.MaxPDFBytes <= 0 && c.MaxPDFPages <= 0 {
		return false, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if c.MaxPDFBytes > 0 && info.Size() > c.MaxPDFBytes {
		return true, nil
	}
	if c.MaxPDFPages > 0 {
		n, err := api.PageCountFile(path)
		if err != nil {
			return false, &core.ExtractionError{Stage: "page-count", Err: err}
		}
		if n > c.MaxPDFPages {
			return true, nil
		}
	}
	return false, nil
}

// chunkSplitPDF splits the PDF into page-range files, converts each one
// in turn, and reports sub-file progress so a long document moves the
// progress bar before its first chunk lands.
func (c *DocumentChunker) chunkSplitPDF(ctx context.Context, path string, sink Sink) error {
	span := c.MaxPDFPages
	if span <= 0 {
		span = 50
	}
	total, err := api.PageCountFile(path)
	if err != nil {
		return &core.ExtractionError{Stage: "page-count", Err: err}
	}

	outDir, err := os.MkdirTemp(c.TempDir, "pdfsplit-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(outDir)

	if err := api.SplitFile(path, outDir, span, nil); err != nil {
		return &core.ExtractionError{Stage: "split", Err: err}
	}
	parts, err := filepath.Glob(filepath.Join(outDir, "*.pdf"))
	if err != nil {
		return err
	}
	sortNumeric(parts)

	if err := sink.SetEstimate(ctx, total); err != nil {
		return err
	}
	seq := 0
	for i, part := range parts {
		if err := sink.SetFileChunk(ctx, i+1, len(parts)); err != nil {
			return err
		}
		pages, err := c.Extractor.Analyze(ctx, part, "application/pdf")
		if err != nil {
			return err
		}
		for _, p := range pages {
			if err := sink.Save(ctx, Unit{Seq: seq, Text: p.Text}); err != nil {
				return err
			}
			seq++
		}
		os.Remove(part)
	}
	return nil
}

// sortNumeric orders split output by the page range embedded in the
// file name, so "doc_10-18.pdf" follows "doc_2-9.pdf" rather than
// preceding it lexically.
func sortNumeric(paths []string) {
	key := func(p string) int {
		base := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		idx := strings.LastIndex(base, "_")
		if idx < 0 {
			return 0
		}
		rng := base[idx+1:]
		if dash := strings.Index(rng, "-"); dash > 0 {
			rng = rng[:dash]
		}
		n := 0
		for _, r := range rng {
			if r < '0' || r > '9' {
				return 0
			}
			n = n*10 + int(r-'0')
		}
		return n
	}
	for i := 1; i < len(paths); i++ {
		for j := i; j > 0 && key(paths[j]) < key(paths[j-1]); j-- {
			paths[j], paths[j-1] = paths[j-1], paths[j]
		}
	}
}
