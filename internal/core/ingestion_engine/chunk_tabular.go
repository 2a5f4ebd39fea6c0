package ingestion_engine

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// TabularChunker handles CSV, TSV and XLSX files. Rows are packed into
// character-budgeted chunks and every chunk repeats the header row so
// each one stands alone; the header does not count against the budget.
// XLSX sheets are chunked independently, with the sheet name recorded
// as a file suffix, but chunk sequence numbers continue across sheets.
type TabularChunker struct {
	ChunkChars int
}

func (c *TabularChunker) Chunk(ctx context.Context, path string, sink Sink) error {
	budget := c.ChunkChars
	if budget <= 0 {
		budget = 2400
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".xlsx" {
		return c.chunkWorkbook(ctx, path, budget, sink)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	if ext == ".tsv" {
		r.Comma = '\t'
	}
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		rows = append(rows, rec)
	}

	chunks := packRows(rows, budget)
	if err := sink.SetEstimate(ctx, len(chunks)); err != nil {
		return err
	}
	for seq, text := range chunks {
		if err := sink.Save(ctx, Unit{Seq: seq, Text: text}); err != nil {
			return err
		}
	}
	return nil
}

func (c *TabularChunker) chunkWorkbook(ctx context.Context, path string, budget int, sink Sink) error {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return err
	}
	defer wb.Close()

	type sheetChunks struct {
		name   string
		chunks []string
	}
	var all []sheetChunks
	total := 0
	for _, name := range wb.GetSheetList() {
		rows, err := wb.GetRows(name)
		if err != nil {
			return err
		}
		chunks := packRows(rows, budget)
		if len(chunks) == 0 {
			continue
		}
		all = append(all, sheetChunks{name: name, chunks: chunks})
		total += len(chunks)
	}

	if err := sink.SetEstimate(ctx, total); err != nil {
		return err
	}
	seq := 0
	for _, sc := range all {
		suffix := ""
		if len(all) > 1 {
			suffix = " [" + sc.name + "]"
		}
		for _, text := range sc.chunks {
			if err := sink.Save(ctx, Unit{Seq: seq, Text: text, FileSuffix: suffix}); err != nil {
				return err
			}
			seq++
		}
	}
	return nil
}

// packRows joins consecutive data rows into chunks up to budget chars,
// prepending the header row to every chunk. A single oversized row
// still emits whole.
func packRows(rows [][]string, budget int) []string {
	if len(rows) == 0 {
		return nil
	}
	header := strings.Join(rows[0], ", ")
	data := rows[1:]
	if len(data) == 0 {
		if strings.TrimSpace(header) == "" {
			return nil
		}
		return []string{header}
	}

	var out []string
	var lines []string
	size := 0
	flush := func() {
		if len(lines) == 0 {
			return
		}
		out = append(out, header+"\n"+strings.Join(lines, "\n"))
		lines = nil
		size = 0
	}
	for _, row := range data {
		line := strings.Join(row, ", ")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if size+len(line)+1 > budget && len(lines) > 0 {
			flush()
		}
		lines = append(lines, line)
		size += len(line) + 1
	}
	flush()
	return out
}
