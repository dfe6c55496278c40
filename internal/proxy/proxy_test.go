package proxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProxy(t *testing.T) (*Server, *string, *string) {
	t.Helper()

	var authPath, ragPath string
	authBackend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authPath = r.URL.Path
		_, _ = w.Write([]byte("auth-ok"))
	}))
	t.Cleanup(authBackend.Close)

	ragBackend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ragPath = r.URL.Path
		_, _ = w.Write([]byte("rag-ok"))
	}))
	t.Cleanup(ragBackend.Close)

	srv, err := New(Config{
		AuthBackendURL: authBackend.URL,
		RAGBackendURL:  ragBackend.URL,
	})
	require.NoError(t, err)

	return srv, &authPath, &ragPath
}

func TestAuthRouteKeepsPrefix(t *testing.T) {
	srv, authPath, _ := newTestProxy(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/login", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, "auth-ok", string(body))
	assert.Equal(t, "/api/auth/login", *authPath, "the /api prefix is forwarded as-is")
}

func TestRAGRouteStripsPrefix(t *testing.T) {
	srv, _, ragPath := newTestProxy(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api-rag/query", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/query", *ragPath, "the /api-rag prefix is stripped")
}

func TestRAGRootBecomesSlash(t *testing.T) {
	srv, _, ragPath := newTestProxy(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api-rag", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/", *ragPath)
}

func TestUnknownRouteIs404(t *testing.T) {
	srv, _, _ := newTestProxy(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnreachableUpstreamIsBadGateway(t *testing.T) {
	srv, err := New(Config{
		AuthBackendURL: "http://127.0.0.1:1", // nothing listens here
		RAGBackendURL:  "http://127.0.0.1:1",
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/anything", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestNewRejectsInvalidUpstream(t *testing.T) {
	_, err := New(Config{AuthBackendURL: "not a url", RAGBackendURL: "http://localhost:3003"})
	assert.Error(t, err)

	_, err = New(Config{AuthBackendURL: "http://localhost:4002", RAGBackendURL: ""})
	assert.Error(t, err)
}
