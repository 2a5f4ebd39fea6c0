package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/markdave123-py/Docuchat/internal/core"
	"github.com/markdave123-py/Docuchat/internal/models"
	"github.com/markdave123-py/Docuchat/internal/services"
)

type fakeUserStore struct {
	users map[string]*models.User
}

func (s *fakeUserStore) CreateUser(ctx context.Context, u *models.User) error {
	if _, ok := s.users[u.Email]; ok {
		return errors.New("user exists")
	}
	s.users[u.Email] = u
	return nil
}

func (s *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := s.users[email]
	if !ok {
		return nil, core.ErrStoreNotFound
	}
	return u, nil
}

func newAuthHandler(t *testing.T) (*AuthHandler, *fakeUserStore) {
	t.Helper()
	store := &fakeUserStore{users: make(map[string]*models.User)}
	return NewAuthHandler(services.NewUserService(store), "test-secret"), store
}

func postJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestLoginUnknownEmailIsUnauthorized(t *testing.T) {
	h, _ := newAuthHandler(t)

	rec := postJSON(t, h.Login, `{"email":"nobody@example.com","password":"whatever"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginWrongPasswordIsUnauthorized(t *testing.T) {
	h, store := newAuthHandler(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	store.users["ada@example.com"] = &models.User{
		ID: "u1", Email: "ada@example.com", PasswordHash: string(hash),
	}

	rec := postJSON(t, h.Login, `{"email":"ada@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginIssuesToken(t *testing.T) {
	h, store := newAuthHandler(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	store.users["ada@example.com"] = &models.User{
		ID: "u1", Email: "ada@example.com", PasswordHash: string(hash),
	}

	rec := postJSON(t, h.Login, `{"email":"ada@example.com","password":"correct horse"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["token"])
}
