package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/markdave123-py/Docuchat/internal/core"
	"github.com/markdave123-py/Docuchat/internal/core/ingestion_engine"
	objectclient "github.com/markdave123-py/Docuchat/internal/core/object-client"
	"github.com/markdave123-py/Docuchat/internal/logger"
	"github.com/markdave123-py/Docuchat/internal/models"
)

type DocumentService struct {
	store    core.Store
	ingestor *ingestion_engine.DocumentIngestor
	tempDir  string

	objects core.ObjectClient
	bucket  string
	log     *logger.Logger
}

func NewDocumentService(store core.Store, ingestor *ingestion_engine.DocumentIngestor, tempDir string, log *logger.Logger) *DocumentService {
	return &DocumentService{store: store, ingestor: ingestor, tempDir: tempDir, log: log}
}

// EnableCitationCleanup makes Delete also remove the mirrored source
// file from the object store.
func (s *DocumentService) EnableCitationCleanup(objects core.ObjectClient, bucket string) {
	s.objects = objects
	s.bucket = bucket
}

// StartIngestion spools the upload to a temp file, creates the next
// version of the document record in the Queued state and hands the file
// to the background pipeline. The returned record already carries its
// assigned version number.
func (s *DocumentService) StartIngestion(ctx context.Context, scope models.Scope, fileName string, data io.Reader) (*models.Document, error) {
	if err := scope.Validate(); err != nil {
		return nil, &core.ValidationError{Reason: err.Error()}
	}
	if fileName == "" {
		return nil, &core.ValidationError{Reason: "file name is empty"}
	}

	spool, err := os.CreateTemp(s.tempDir, "upload-*"+filepath.Ext(fileName))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(spool, data); err != nil {
		spool.Close()
		os.Remove(spool.Name())
		return nil, err
	}
	if err := spool.Close(); err != nil {
		os.Remove(spool.Name())
		return nil, err
	}

	now := time.Now().UTC()
	doc := &models.Document{
		ID:         uuid.NewString(),
		OwnerKind:  scope.Kind,
		OwnerID:    scope.ID,
		FileName:   fileName,
		Status:     "Queued for processing",
		UploadDate: now,
	}
	if err := s.store.CreateDocument(ctx, doc); err != nil {
		os.Remove(spool.Name())
		return nil, err
	}

	if err := s.ingestor.Enqueue(doc.ID, scope, spool.Name(), fileName, doc.Version); err != nil {
		os.Remove(spool.Name())
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) Get(ctx context.Context, scope models.Scope, id string) (*models.Document, error) {
	return s.store.GetDocument(ctx, scope, id)
}

func (s *DocumentService) GetLatest(ctx context.Context, scope models.Scope, fileName string) (*models.Document, error) {
	return s.store.GetLatest(ctx, scope, fileName)
}

func (s *DocumentService) List(ctx context.Context, scope models.Scope) ([]models.Document, error) {
	return s.store.ListDocuments(ctx, scope)
}

func (s *DocumentService) ListVersions(ctx context.Context, scope models.Scope, fileName string) ([]models.Document, error) {
	return s.store.ListVersions(ctx, scope, fileName)
}

// Delete removes one version, or the whole version chain when
// allVersions is set. Chunks go with their document either way, and
// any mirrored source file is cleaned up best effort.
func (s *DocumentService) Delete(ctx context.Context, scope models.Scope, id string, allVersions bool) error {
	doc, err := s.store.GetDocument(ctx, scope, id)
	if err != nil {
		return err
	}

	targets := []models.Document{*doc}
	if allVersions {
		targets, err = s.store.ListVersions(ctx, scope, doc.FileName)
		if err != nil {
			return err
		}
	}

	for _, v := range targets {
		if err := s.store.DeleteDocument(ctx, scope, v.ID); err != nil {
			return err
		}
		s.removeMirror(ctx, scope, &v)
	}
	return nil
}

func (s *DocumentService) removeMirror(ctx context.Context, scope models.Scope, doc *models.Document) {
	if s.objects == nil || doc.StorageURL == "" {
		return
	}
	key := objectclient.CitationKey(scope, doc.ID, doc.FileName)
	if err := s.objects.DeleteFile(ctx, s.bucket, key); err != nil {
		s.log.Warn("citation mirror delete failed", "document_id", doc.ID, "error", err)
	}
}
