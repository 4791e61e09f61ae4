package htmstest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/htms/internal/config"
)

// FragmentFunc renders the fragment for r and the status to answer with.
type FragmentFunc func(r *http.Request) (string, int)

// Recorded is a request seen by a Server.
type Recorded struct {
	Method      string
	Path        string
	RawQuery    string
	Fragment    bool
	ContentType string
}

// URL returns the path and query as the page built them.
func (r Recorded) URL() string {
	return r.Path + "?" + r.RawQuery
}

// Server is an httptest server that renders fragments or full pages.
type Server struct {
	*httptest.Server

	router chi.Router
	layout func(body string) string
	header string

	mu       sync.Mutex
	requests []Recorded
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// Layout wraps full-page responses in a document whose body holds
// prefix followed by the fragment.
func Layout(prefix string) ServerOption {
	return func(s *Server) {
		s.layout = func(body string) string {
			return "<!DOCTYPE html><html><head><title>htmstest</title></head><body>" + prefix + body + "</body></html>"
		}
	}
}

// WithMarkerHeader sets the header that marks fragment requests.
func WithMarkerHeader(name string) ServerOption {
	return func(s *Server) {
		s.header = name
	}
}

// NewServer starts a Server that is closed when the test ends.
func NewServer(t testing.TB, opts ...ServerOption) *Server {
	t.Helper()
	s := &Server{
		router: chi.NewRouter(),
		header: config.DefaultRequestHeader,
	}
	Layout("")(s)
	for _, opt := range opts {
		opt(s)
	}
	s.router.Use(s.record)
	s.Server = httptest.NewServer(s.router)
	t.Cleanup(s.Close)
	return s
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Recorded{
			Method:      r.Method,
			Path:        r.URL.Path,
			RawQuery:    r.URL.RawQuery,
			Fragment:    r.Header.Get(s.header) == "true",
			ContentType: r.Header.Get("Content-Type"),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// Fragment routes GET and POST requests for pattern to fn.
func (s *Server) Fragment(pattern string, fn FragmentFunc) {
	h := func(w http.ResponseWriter, r *http.Request) {
		body, status := fn(r)
		if status == 0 {
			status = http.StatusOK
		}
		if r.Header.Get(s.header) != "true" {
			body = s.layout(body)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}
	s.router.Get(pattern, h)
	s.router.Post(pattern, h)
}

// Redirect answers pattern with a 303 to target.
func (s *Server) Redirect(pattern, target string) {
	s.router.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		to := target
		if r.URL.RawQuery != "" && !strings.Contains(target, "?") {
			to += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, to, http.StatusSeeOther)
	})
}

// Handle mounts a raw handler.
func (s *Server) Handle(pattern string, h http.HandlerFunc) {
	s.router.HandleFunc(pattern, h)
}

// Requests returns the requests seen so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// Fragments returns the fragment requests seen so far.
func (s *Server) Fragments() []Recorded {
	var out []Recorded
	for _, r := range s.Requests() {
		if r.Fragment {
			out = append(out, r)
		}
	}
	return out
}
