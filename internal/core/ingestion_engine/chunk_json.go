package ingestion_engine

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"strings"
)

// JSONChunker handles structured data files. Valid JSON is split along
// element boundaries so no chunk cuts through the middle of a value;
// invalid JSON falls back to plain word splitting.
type JSONChunker struct {
	ChunkChars    int
	WordsPerChunk int
}

func (c *JSONChunker) Chunk(ctx context.Context, path string, sink Sink) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	budget := c.ChunkChars
	if budget <= 0 {
		budget = 2400
	}

	var frags []string
	var root any
	if jerr := json.Unmarshal(data, &root); jerr == nil {
		frags = splitJSONValue(root, budget)
	} else {
		frags = splitWords(string(data), c.WordsPerChunk)
	}

	// Structural leftovers like "{}" or "[]" carry no signal.
	kept := frags[:0]
	for _, f := range frags {
		if trivialJSON(f) {
			continue
		}
		kept = append(kept, f)
	}
	frags = kept

	if err := sink.SetEstimate(ctx, len(frags)); err != nil {
		return err
	}
	for seq, text := range frags {
		if err := sink.Save(ctx, Unit{Seq: seq, Text: text}); err != nil {
			return err
		}
	}
	return nil
}

func trivialJSON(s string) bool {
	t := strings.TrimSpace(s)
	return t == "" || t == "{}" || t == "[]" || t == `""` || t == "null"
}

// splitJSONValue renders v as compact JSON if it fits the budget,
// otherwise recurses into its elements. Scalars always emit whole even
// when oversized.
func splitJSONValue(v any, budget int) []string {
	enc, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	if len(enc) <= budget {
		return []string{string(enc)}
	}
	switch t := v.(type) {
	case []any:
		return splitJSONArray(t, budget)
	case map[string]any:
		// Key order fixes the fragment order, so the same file always
		// yields the same chunk sequence and chunk ids.
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var out []string
		for _, k := range keys {
			val := t[k]
			one := map[string]any{k: val}
			if enc, err := json.Marshal(one); err == nil && len(enc) <= budget {
				out = append(out, string(enc))
				continue
			}
			out = append(out, splitJSONValue(val, budget)...)
		}
		return out
	default:
		return []string{string(enc)}
	}
}

// splitJSONArray packs consecutive elements into sub-arrays up to the
// budget, preserving element order.
func splitJSONArray(arr []any, budget int) []string {
	var out []string
	var batch []any
	batchLen := 2
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if enc, err := json.Marshal(batch); err == nil {
			out = append(out, string(enc))
		}
		batch = nil
		batchLen = 2
	}
	for _, el := range arr {
		enc, err := json.Marshal(el)
		if err != nil {
			continue
		}
		if len(enc) > budget {
			flush()
			out = append(out, splitJSONValue(el, budget)...)
			continue
		}
		if batchLen+len(enc)+1 > budget {
			flush()
		}
		batch = append(batch, el)
		batchLen += len(enc) + 1
	}
	flush()
	return out
}
