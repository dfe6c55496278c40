// Package proxy fronts the platform's two backends behind one
// listener: /api goes to the auth backend with its prefix kept,
// /api-rag goes to the RAG backend with the prefix stripped. It is a
// static two-rule router, nothing more: no retries, no health checks,
// no balancing.
package proxy

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/botdesk/botusage/internal/logger"
)

type Config struct {
	Addr           string
	AuthBackendURL string
	RAGBackendURL  string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

type Server struct {
	server *http.Server
	addr   string
}

func New(cfg Config) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = ":3005"
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 60 * time.Second
	}

	authProxy, err := upstreamProxy(cfg.AuthBackendURL)
	if err != nil {
		return nil, fmt.Errorf("auth backend: %w", err)
	}
	ragProxy, err := upstreamProxy(cfg.RAGBackendURL)
	if err != nil {
		return nil, fmt.Errorf("rag backend: %w", err)
	}

	router := mux.NewRouter()
	router.PathPrefix("/api-rag").Handler(stripPrefix("/api-rag", ragProxy))
	router.PathPrefix("/api").Handler(authProxy)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not found", http.StatusNotFound)
	})

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}).Handler(logRequests(router))

	return &Server{
		server: &http.Server{
			Addr:         cfg.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		addr: cfg.Addr,
	}, nil
}

// Handler exposes the routing stack for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start blocks until the listener fails or Stop is called.
func (s *Server) Start() error {
	logger.Info("proxy listening", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop drains in-flight requests and shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func upstreamProxy(rawURL string) (*httputil.ReverseProxy, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url %q: %w", rawURL, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid upstream url %q", rawURL)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)

	// Equivalent of changeOrigin: present the upstream's host.
	director := proxy.Director
	proxy.Director = func(r *http.Request) {
		director(r)
		r.Host = target.Host
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("upstream request failed", "upstream", target.Host, "path", r.URL.Path, "error", err)
		http.Error(w, "Bad gateway", http.StatusBadGateway)
	}
	return proxy, nil
}

// stripPrefix removes the route prefix before forwarding, keeping "/"
// when the prefix is the whole path.
func stripPrefix(prefix string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, prefix)
		if path == "" {
			path = "/"
		}
		r.URL.Path = path
		next.ServeHTTP(w, r)
	})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info("proxied", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
