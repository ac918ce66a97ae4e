package testsupport

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Request is one call received by the fake service.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]any
}

// Remote is an in-process stand-in for the scitran API. Created entities get
// sequential identifiers such as "project-1" and "session-2".
type Remote struct {
	server *httptest.Server

	mu       sync.Mutex
	requests []Request
	groups   map[string]bool
	failures map[string]int
	counters map[string]int
}

// RemoteOption customizes a Remote.
type RemoteOption func(*Remote)

// WithExistingGroup makes GET /groups/{name} return 200.
func WithExistingGroup(name string) RemoteOption {
	return func(r *Remote) {
		r.groups[name] = true
	}
}

// WithStatus forces method+path to answer with status.
func WithStatus(method, path string, status int) RemoteOption {
	return func(r *Remote) {
		r.failures[method+" "+path] = status
	}
}

// NewRemote starts a fake service that is shut down when the test ends.
func NewRemote(t testing.TB, opts ...RemoteOption) *Remote {
	t.Helper()

	remote := &Remote{
		groups:   make(map[string]bool),
		failures: make(map[string]int),
		counters: make(map[string]int),
	}
	for _, opt := range opts {
		opt(remote)
	}

	r := chi.NewRouter()
	r.Use(remote.record)
	r.Use(remote.injectFailures)
	r.Get("/groups/{group}", remote.getGroup)
	r.Post("/groups", remote.createGroup)
	r.Post("/{collection}", remote.create)

	remote.server = httptest.NewServer(r)
	t.Cleanup(remote.server.Close)
	return remote
}

// URL returns the service root.
func (r *Remote) URL() string {
	return r.server.URL
}

// Requests returns every call received so far.
func (r *Remote) Requests() []Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Request(nil), r.requests...)
}

// Calls returns the calls made with method to path.
func (r *Remote) Calls(method, path string) []Request {
	var out []Request
	for _, req := range r.Requests() {
		if req.Method == method && req.Path == path {
			out = append(out, req)
		}
	}
	return out
}

// Count returns the number of calls made with method to path.
func (r *Remote) Count(method, path string) int {
	return len(r.Calls(method, path))
}

func (r *Remote) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		entry := Request{
			Method: req.Method,
			Path:   req.URL.Path,
			Query:  req.URL.Query(),
		}
		if req.Body != nil {
			data, _ := io.ReadAll(req.Body)
			req.Body.Close()
			if len(data) > 0 {
				_ = json.Unmarshal(data, &entry.Body)
			}
			req.Body = io.NopCloser(strings.NewReader(string(data)))
		}
		r.mu.Lock()
		r.requests = append(r.requests, entry)
		r.mu.Unlock()
		next.ServeHTTP(w, req)
	})
}

func (r *Remote) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.mu.Lock()
		status, ok := r.failures[req.Method+" "+req.URL.Path]
		r.mu.Unlock()
		if ok {
			w.WriteHeader(status)
			return
		}
		next.ServeHTTP(w, req)
	})
}

func (r *Remote) getGroup(w http.ResponseWriter, req *http.Request) {
	name := chi.URLParam(req, "group")
	r.mu.Lock()
	exists := r.groups[name]
	r.mu.Unlock()
	if !exists {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]string{"_id": name})
}

func (r *Remote) createGroup(w http.ResponseWriter, req *http.Request) {
	var body struct {
		ID string `json:"_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.ID == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	r.mu.Lock()
	r.groups[body.ID] = true
	r.mu.Unlock()
	writeJSON(w, map[string]string{"_id": body.ID})
}

func (r *Remote) create(w http.ResponseWriter, req *http.Request) {
	collection := chi.URLParam(req, "collection")
	switch collection {
	case "projects", "sessions", "acquisitions":
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	r.mu.Lock()
	r.counters[collection]++
	id := fmt.Sprintf("%s-%d", strings.TrimSuffix(collection, "s"), r.counters[collection])
	r.mu.Unlock()
	writeJSON(w, map[string]string{"_id": id})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
