package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Docuchat/internal/core"
	"github.com/markdave123-py/Docuchat/internal/logger"
	"github.com/markdave123-py/Docuchat/internal/models"
)

type versionStore struct {
	core.Store

	docs    map[string]*models.Document
	deleted []string
}

func (s *versionStore) GetDocument(ctx context.Context, scope models.Scope, id string) (*models.Document, error) {
	d, ok := s.docs[id]
	if !ok {
		return nil, core.ErrStoreNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *versionStore) ListVersions(ctx context.Context, scope models.Scope, fileName string) ([]models.Document, error) {
	var out []models.Document
	for _, d := range s.docs {
		if d.FileName == fileName {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (s *versionStore) DeleteDocument(ctx context.Context, scope models.Scope, id string) error {
	if _, ok := s.docs[id]; !ok {
		return core.ErrStoreNotFound
	}
	delete(s.docs, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func chainStore() *versionStore {
	return &versionStore{docs: map[string]*models.Document{
		"v1": {ID: "v1", FileName: "report.pdf", Version: 1, OwnerKind: models.ScopeUser, OwnerID: "u1"},
		"v2": {ID: "v2", FileName: "report.pdf", Version: 2, OwnerKind: models.ScopeUser, OwnerID: "u1"},
		"v3": {ID: "v3", FileName: "report.pdf", Version: 3, OwnerKind: models.ScopeUser, OwnerID: "u1"},
		"x1": {ID: "x1", FileName: "other.txt", Version: 1, OwnerKind: models.ScopeUser, OwnerID: "u1"},
	}}
}

func TestDeleteSingleVersion(t *testing.T) {
	store := chainStore()
	svc := NewDocumentService(store, nil, t.TempDir(), logger.NewNop())

	require.NoError(t, svc.Delete(context.Background(), models.UserScope("u1"), "v2", false))
	assert.Equal(t, []string{"v2"}, store.deleted)
	assert.Contains(t, store.docs, "v1")
	assert.Contains(t, store.docs, "v3")
}

func TestDeleteAllVersionsLeavesOtherFilesAlone(t *testing.T) {
	store := chainStore()
	svc := NewDocumentService(store, nil, t.TempDir(), logger.NewNop())

	require.NoError(t, svc.Delete(context.Background(), models.UserScope("u1"), "v2", true))
	assert.ElementsMatch(t, []string{"v1", "v2", "v3"}, store.deleted)
	assert.Contains(t, store.docs, "x1")
}

func TestDeleteMissingDocument(t *testing.T) {
	store := chainStore()
	svc := NewDocumentService(store, nil, t.TempDir(), logger.NewNop())

	err := svc.Delete(context.Background(), models.UserScope("u1"), "nope", false)
	require.ErrorIs(t, err, core.ErrStoreNotFound)
	assert.Empty(t, store.deleted)
}
