package ingestion_engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/markdave123-py/Docuchat/internal/config"
	"github.com/markdave123-py/Docuchat/internal/core"
	objectclient "github.com/markdave123-py/Docuchat/internal/core/object-client"
	"github.com/markdave123-py/Docuchat/internal/logger"
	"github.com/markdave123-py/Docuchat/internal/models"
)

// DocumentIngestor runs the background ingestion pipeline: validate the
// spooled upload, mirror it for citations when enabled, chunk it with
// the format-specific chunker, embed and index every chunk as it is
// produced, then finalize the record. Jobs run on a bounded worker pool
// so a burst of uploads cannot exhaust the process.
type DocumentIngestor struct {
	store    core.Store
	embedder core.EmbeddingProvider
	llm      core.LLMProvider
	objects  core.ObjectClient
	log      *logger.Logger
	cfg      *config.Config

	registry map[string]registration
	pool     *ants.Pool
}

// Deps carries the optional backends. A nil Transcriber disables audio
// ingestion, a nil VideoIndexer disables video, a nil ObjectClient
// disables enhanced citations, a nil LLM disables the metadata pass;
// the corresponding extensions simply stay unregistered.
type Deps struct {
	Store       core.Store
	Embedder    core.EmbeddingProvider
	LLM         core.LLMProvider
	Objects     core.ObjectClient
	Extractor   core.DocumentExtractor
	Transcriber core.Transcriber
	Video       core.VideoIndexer
}

func NewDocumentIngestor(cfg *config.Config, deps Deps, log *logger.Logger) (*DocumentIngestor, error) {
	if deps.Store == nil || deps.Embedder == nil || deps.Extractor == nil {
		return nil, errors.New("ingestor requires store, embedder and extractor")
	}
	workers := cfg.IngestWorkers
	if workers <= 0 {
		workers = 4
	}
	pool, err := ants.NewPool(workers, ants.WithNonblocking(false))
	if err != nil {
		return nil, err
	}

	i := &DocumentIngestor{
		store:    deps.Store,
		embedder: deps.Embedder,
		llm:      deps.LLM,
		objects:  deps.Objects,
		log:      log,
		cfg:      cfg,
		pool:     pool,
	}
	i.registry = buildRegistry(cfg, deps)
	return i, nil
}

func buildRegistry(cfg *config.Config, deps Deps) map[string]registration {
	text := registration{family: familyText, chunker: &TextChunker{WordsPerChunk: cfg.WordsPerChunk}}
	markup := registration{family: familyMarkup, chunker: &MarkupChunker{
		WordsPerChunk: cfg.WordsPerChunk,
		MinChunkWords: cfg.MinChunkWords,
		CharsPerWord:  cfg.CharsPerWord,
	}}
	structured := registration{family: familyStructured, chunker: &JSONChunker{
		ChunkChars:    cfg.JSONChunkChars,
		WordsPerChunk: cfg.WordsPerChunk,
	}}
	tabular := registration{family: familyTabular, chunker: &TabularChunker{ChunkChars: cfg.TabularChunkChars}}
	document := registration{family: familyDocument, chunker: &DocumentChunker{
		Extractor:     deps.Extractor,
		WordsPerChunk: cfg.WordsPerChunk,
		MaxPDFBytes:   cfg.MaxPDFBytes,
		MaxPDFPages:   cfg.MaxPDFPages,
		TempDir:       cfg.TempDir,
	}}

	reg := map[string]registration{
		".txt": text, ".log": text, ".text": text,
		".md": markup, ".markdown": markup, ".html": markup, ".htm": markup,
		".json": structured,
		".csv":  tabular, ".tsv": tabular, ".xlsx": tabular,
		".pdf": document, ".docx": document, ".doc": document,
		".pptx": document, ".odt": document, ".rtf": document,
		".png": document, ".jpg": document, ".jpeg": document, ".tiff": document,
	}
	if deps.Transcriber != nil {
		audio := registration{family: familyAudio, chunker: &AudioChunker{
			Transcriber:    deps.Transcriber,
			SegmentSeconds: cfg.AudioSegmentSeconds,
			WordsPerChunk:  cfg.WordsPerChunk,
			TempDir:        cfg.TempDir,
		}}
		for _, ext := range []string{".mp3", ".wav", ".m4a", ".flac", ".ogg"} {
			reg[ext] = audio
		}
	}
	if deps.Video != nil {
		video := registration{family: familyVideo, chunker: &VideoChunker{
			Indexer:       deps.Video,
			WindowSeconds: cfg.VideoWindowSeconds,
		}}
		for _, ext := range []string{".mp4", ".mov", ".avi", ".mkv", ".webm"} {
			reg[ext] = video
		}
	}
	return reg
}

// Close drains the worker pool. In-flight jobs finish.
func (i *DocumentIngestor) Close() {
	i.pool.Release()
}

// Enqueue hands the spooled file to the worker pool and returns once
// the job is accepted. The pool blocks submission when saturated, which
// back-pressures the upload handler instead of queueing unboundedly.
func (i *DocumentIngestor) Enqueue(docID string, scope models.Scope, localPath, fileName string, version int) error {
	return i.pool.Submit(func() {
		ctx := context.Background()
		if err := i.Ingest(ctx, docID, scope, localPath, fileName, version); err != nil {
			i.log.Error("ingestion failed", "document_id", docID, "file", fileName, "error", err)
		}
	})
}

// Ingest runs the whole pipeline for one document version. The spooled
// file is always removed, success or not.
func (i *DocumentIngestor) Ingest(ctx context.Context, docID string, scope models.Scope, localPath, fileName string, version int) error {
	defer os.Remove(localPath)

	err := i.ingest(ctx, docID, scope, localPath, fileName, version)
	if err == nil {
		return nil
	}
	if errors.Is(err, core.ErrStoreNotFound) {
		// The record was deleted mid-flight. Drop whatever chunks
		// landed and walk away without resurrecting the document.
		if derr := i.store.DeleteByDocument(ctx, scope, docID); derr != nil {
			i.log.Warn("orphan chunk cleanup failed", "document_id", docID, "error", derr)
		}
		return err
	}

	status := FailureStatus(err)
	upd := &models.DocumentUpdate{Status: &status}
	if uerr := i.store.UpdateDocument(ctx, scope, docID, upd); uerr != nil && !errors.Is(uerr, core.ErrStoreNotFound) {
		i.log.Error("failure status write failed", "document_id", docID, "error", uerr)
	}
	return err
}

func (i *DocumentIngestor) ingest(ctx context.Context, docID string, scope models.Scope, localPath, fileName string, version int) error {
	ext := strings.ToLower(filepath.Ext(fileName))
	if err := i.validate(localPath, ext); err != nil {
		return err
	}
	reg, ok := i.chunkerFor(ext)
	if !ok {
		return &core.UnsupportedTypeError{Extension: ext}
	}

	if i.objects != nil && i.cfg.EnhancedCitations {
		i.mirrorForCitations(ctx, docID, scope, localPath, fileName)
	}

	if err := i.store.UpdateDocument(ctx, scope, docID, transition(PhaseSending, 0, 0)); err != nil {
		return err
	}

	sink := &ingestSink{
		ingestor: i,
		docID:    docID,
		scope:    scope,
		fileName: fileName,
		version:  version,
		ext:      ext,
	}
	if err := reg.chunker.Chunk(ctx, localPath, sink); err != nil {
		return err
	}

	if sink.saved == 0 {
		return i.store.UpdateDocument(ctx, scope, docID, transition(PhaseCompleteNoText, 0, 0))
	}

	if i.llm != nil && i.cfg.MetadataExtraction {
		if err := i.store.UpdateDocument(ctx, scope, docID, transition(PhaseExtractingMetadata, 0, 0)); err != nil {
			return err
		}
		if err := i.extractMetadata(ctx, docID, scope); err != nil {
			// Metadata is best effort; the text is already indexed.
			i.log.Warn("metadata extraction failed", "document_id", docID, "error", err)
		}
	}

	final := transition(PhaseComplete, 0, 0)
	pages := sink.saved
	final.NumberOfPages = &pages
	return i.store.UpdateDocument(ctx, scope, docID, final)
}

func (i *DocumentIngestor) validate(localPath, ext string) error {
	info, err := os.Stat(localPath)
	if err != nil {
		return &core.ValidationError{Reason: fmt.Sprintf("upload not readable: %v", err)}
	}
	if info.Size() == 0 {
		return &core.ValidationError{Reason: "file is empty"}
	}
	if i.cfg.MaxUploadBytes > 0 && info.Size() > i.cfg.MaxUploadBytes {
		return &core.ValidationError{Reason: fmt.Sprintf("file exceeds %d byte limit", i.cfg.MaxUploadBytes)}
	}
	for _, allowed := range i.cfg.AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return &core.ValidationError{Reason: fmt.Sprintf("extension %q is not allowed", ext)}
}

// mirrorForCitations copies the original bytes to the object store so
// search hits can deep-link to the source. Failure only costs the
// citation link, never the ingestion.
func (i *DocumentIngestor) mirrorForCitations(ctx context.Context, docID string, scope models.Scope, localPath, fileName string) {
	f, err := os.Open(localPath)
	if err != nil {
		i.log.Warn("citation mirror skipped", "document_id", docID, "error", err)
		return
	}
	defer f.Close()

	key := objectclient.CitationKey(scope, docID, fileName)
	url, err := i.objects.UploadFile(ctx, i.cfg.BucketName, key, f, "")
	if err != nil {
		i.log.Warn("citation mirror upload failed", "document_id", docID, "error", err)
		return
	}
	upd := &models.DocumentUpdate{StorageURL: &url}
	if err := i.store.UpdateDocument(ctx, scope, docID, upd); err != nil && !errors.Is(err, core.ErrStoreNotFound) {
		i.log.Warn("storage url write failed", "document_id", docID, "error", err)
	}
}

// ingestSink persists each chunk the moment a chunker emits it: embed,
// upsert into the index, then advance the progress record in one
// partial update. A not-found from the progress write aborts the run.
type ingestSink struct {
	ingestor *DocumentIngestor
	docID    string
	scope    models.Scope
	fileName string
	version  int
	ext      string

	estimate int
	saved    int
}

func (s *ingestSink) SetEstimate(ctx context.Context, total int) error {
	s.estimate = total
	if total <= 0 {
		return nil
	}
	upd := &models.DocumentUpdate{NumberOfPages: &total}
	return s.ingestor.store.UpdateDocument(ctx, s.scope, s.docID, upd)
}

func (s *ingestSink) SetFileChunk(ctx context.Context, current, total int) error {
	upd := &models.DocumentUpdate{CurrentFileChunk: &current, NumFileChunks: &total}
	return s.ingestor.store.UpdateDocument(ctx, s.scope, s.docID, upd)
}

func (s *ingestSink) Save(ctx context.Context, u Unit) error {
	vec, err := s.ingestor.embedder.EmbedText(ctx, u.Text)
	if err != nil {
		return err
	}

	chunk := &models.Chunk{
		ID:            core.ChunkKey(s.docID, u.Seq),
		DocumentID:    s.docID,
		ChunkSequence: u.Seq,
		ChunkText:     u.Text,
		Embedding:     vec,
		FileName:      s.fileName + u.FileSuffix,
		OwnerKind:     s.scope.Kind,
		OwnerID:       s.scope.ID,
		Version:       s.version,
		UploadDate:    time.Now().UTC(),
	}
	if err := s.ingestor.store.UpsertChunk(ctx, chunk); err != nil {
		return &core.IndexWriteError{ChunkID: chunk.ID, Err: err}
	}

	s.saved++
	upd := transition(PhaseSavingChunk, s.saved, s.estimate)
	upd.NumChunksDelta = 1
	return s.ingestor.store.UpdateDocument(ctx, s.scope, s.docID, upd)
}
