package core

import "fmt"

// ChunkKey derives the index id for a chunk from its parent document id
// and sequence number. The derivation is deliberately the only place
// ids are composed: same inputs, same key, so re-indexing a unit is an
// upsert, never a duplicate. Sequence numbers are plain integers; video
// chunks pass the integer second offset of their window so the key
// stays free of timestamp punctuation.
func ChunkKey(documentID string, sequence int) string {
	return fmt.Sprintf("%s_%d", documentID, sequence)
}
