package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"diarioweb/config/database"
	"diarioweb/internal/access"
	"diarioweb/internal/diary/storage"
	userRepo "diarioweb/internal/user/repository"
	"diarioweb/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	ownerName = "admin"
	ownerPass = "correct horse"
)

type testServer struct {
	*httptest.Server
	t *testing.T
}

func newTestServer(t *testing.T, limiter *middleware.RateLimiter) *testServer {
	t.Helper()
	ctx := context.Background()

	db, err := database.Connect(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(ctx, db))

	hash, err := bcrypt.GenerateFromPassword([]byte(ownerPass), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = userRepo.NewUserRepository(db).EnsureOwner(ctx, ownerName, string(hash))
	require.NoError(t, err)

	gate, err := access.NewGate(access.Credentials{
		Username:      ownerName,
		PasswordHash:  string(hash),
		SigningSecret: []byte("router-test-secret"),
		TokenTTL:      time.Hour,
	})
	require.NoError(t, err)

	blobs, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	srv := httptest.NewServer(Setup(Deps{
		DB:                 db,
		Gate:               gate,
		Blobs:              blobs,
		LoginLimiter:       limiter,
		CorsAllowedOrigins: []string{"*"},
		MaxUploadBytes:     1 << 20,
	}))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, t: t}
}

func (s *testServer) do(method, path, token string, body io.Reader, contentType string) (*http.Response, []byte) {
	s.t.Helper()
	req, err := http.NewRequest(method, s.URL+path, body)
	require.NoError(s.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := s.Client().Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	return resp, b
}

func (s *testServer) json(method, path, token string, payload interface{}) (*http.Response, []byte) {
	s.t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(s.t, err)
		body = bytes.NewReader(b)
	}
	return s.do(method, path, token, body, "application/json")
}

func (s *testServer) login() string {
	s.t.Helper()
	resp, body := s.json(http.MethodPost, "/login", "", map[string]string{"username": ownerName, "password": ownerPass})
	require.Equal(s.t, http.StatusOK, resp.StatusCode, string(body))
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(s.t, json.Unmarshal(body, &out))
	require.NotEmpty(s.t, out.AccessToken)
	return out.AccessToken
}

func decode(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &m), string(body))
	return m
}

func TestLogin(t *testing.T) {
	s := newTestServer(t, nil)

	resp, body := s.json(http.MethodPost, "/api/login", "", map[string]string{"username": ownerName, "password": "nope"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Invalid Credentials"}`, string(body))

	resp, _ = s.json(http.MethodPost, "/api/login", "", map[string]string{"username": "someone", "password": ownerPass})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	token := s.login()
	resp, body = s.do(http.MethodGet, "/protected", token, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Welcome, admin! This is a protected route.", string(body))
}

func TestOwnerRoutesNeedToken(t *testing.T) {
	s := newTestServer(t, nil)
	payload := map[string]interface{}{"title": "x"}

	resp, body := s.json(http.MethodPost, "/api/texts", "", payload)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Unauthorized: No token provided"}`, string(body))

	resp, _ = s.json(http.MethodPost, "/api/articles", "not-a-token", payload)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = s.do(http.MethodGet, "/api/diary/list", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPrivateTextFlow(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login()

	resp, body := s.json(http.MethodPost, "/api/texts", token, map[string]interface{}{
		"title": "Carta", "synopsis": "Para ti", "content": "El contenido", "is_private": true, "password": "abc",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	created := decode(t, body)
	assert.Equal(t, "Personal text created successfully.", created["message"])
	id := int64(created["id"].(float64))
	path := fmt.Sprintf("/api/texts/%d", id)

	resp, body = s.do(http.MethodGet, path, "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	redacted := decode(t, body)
	assert.Equal(t, "Carta", redacted["title"])
	assert.Equal(t, "Para ti", redacted["synopsis"])
	assert.Equal(t, true, redacted["is_private"])
	assert.Equal(t, "Password required for this text.", redacted["message"])
	assert.NotContains(t, redacted, "content")

	resp, body = s.do(http.MethodGet, path+"?password=abc", "", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "El contenido", decode(t, body)["content"])

	resp, body = s.do(http.MethodGet, path+"?password=wrong", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotContains(t, decode(t, body), "content")

	resp, body = s.do(http.MethodGet, path, token, nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "the owner token does not unlock a gated text")

	resp, body = s.do(http.MethodGet, "/api/texts", "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summaries []map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &summaries))
	require.Len(t, summaries, 1)
	assert.NotContains(t, summaries[0], "content")
	assert.NotContains(t, summaries[0], "password")

	resp, _ = s.json(http.MethodPut, path, token, map[string]interface{}{"title": "Carta abierta", "content": "Ahora público"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = s.do(http.MethodGet, path, "", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ahora público", decode(t, body)["content"])

	resp, _ = s.json(http.MethodPut, "/api/texts/999", token, map[string]interface{}{"title": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = s.do(http.MethodDelete, path, token, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Personal text deleted successfully."}`, string(body))

	resp, body = s.do(http.MethodGet, path, "", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Text not found."}`, string(body))

	resp, _ = s.do(http.MethodGet, "/api/texts/abc", "", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPrivateTextNeedsPassword(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login()
	resp, body := s.json(http.MethodPost, "/api/texts", token, map[string]interface{}{"title": "x", "is_private": true})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"message":"A password is required for a private text."}`, string(body))
}

func TestArticles(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login()

	resp, body := s.json(http.MethodPost, "/api/articles", token, map[string]string{
		"title": "Alienación parental", "content": "...", "author": "A. Autor", "link": "https://example.org",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	id := int64(decode(t, body)["id"].(float64))
	path := fmt.Sprintf("/api/articles/%d", id)

	resp, body = s.do(http.MethodGet, path, "", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "A. Autor", decode(t, body)["author"])

	resp, body = s.do(http.MethodGet, "/api/articles", "", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, 1)

	resp, _ = s.json(http.MethodPut, path, token, map[string]string{"title": "Nuevo título"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(http.MethodDelete, path, token, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = s.do(http.MethodDelete, path, token, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Article not found."}`, string(body))
}

func multipartBody(t *testing.T, field, filename, content string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestDiaryFlow(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login()

	body, ct := multipartBody(t, "other", "a.docx", "x")
	resp, raw := s.do(http.MethodPost, "/api/diary/upload", token, body, ct)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"message":"No file uploaded."}`, string(raw))

	body, ct = multipartBody(t, "diaryFile", "mi diario.docx", "querido diario")
	resp, raw = s.do(http.MethodPost, "/api/diary/upload", token, body, ct)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	up := decode(t, raw)
	ref := up["filename"].(string)
	assert.True(t, strings.HasSuffix(ref, "-mi_diario.docx"), ref)
	assert.Equal(t, "Diary entry uploaded successfully.", up["message"])
	id := int64(up["id"].(float64))

	resp, raw = s.do(http.MethodGet, "/api/diary/list", token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, ref, entries[0]["filename"])
	assert.Contains(t, entries[0], "upload_date")

	resp, raw = s.do(http.MethodGet, "/api/diary/download/"+ref, token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "querido diario", string(raw))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

	resp, raw = s.do(http.MethodGet, "/api/diary/download/nope.docx", token, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"message":"File not found or you do not have permission to download it."}`, string(raw))

	resp, raw = s.do(http.MethodDelete, fmt.Sprintf("/api/diary/%d", id), token, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Diary entry deleted successfully."}`, string(raw))

	resp, _ = s.do(http.MethodGet, "/api/diary/download/"+ref, token, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/diary/%d", id), token, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDiaryUploadTooLarge(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login()

	body, ct := multipartBody(t, "diaryFile", "big.docx", strings.Repeat("x", 3<<19))
	resp, _ := s.do(http.MethodPost, "/api/diary/upload", token, body, ct)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestLoginRateLimit(t *testing.T) {
	s := newTestServer(t, middleware.NewRateLimiter(2, time.Minute))
	creds := map[string]string{"username": ownerName, "password": "wrong"}

	for i := 0; i < 2; i++ {
		resp, _ := s.json(http.MethodPost, "/login", "", creds)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
	resp, _ := s.json(http.MethodPost, "/api/login", "", creds)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestHomeAndHealth(t *testing.T) {
	s := newTestServer(t, nil)

	resp, body := s.do(http.MethodGet, "/", "", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hello from the backend!", string(body))
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))

	resp, body = s.do(http.MethodGet, "/health", "", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	resp, body = s.do(http.MethodGet, "/nowhere", "", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Not found."}`, string(body))
}
