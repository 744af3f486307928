// Package mockstorage provides an in-memory bunny.net Edge Storage server for testing.
package mockstorage

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// DefaultZone is the storage zone name used by New.
const DefaultZone = "test-zone"

// DefaultAccessKey is the access key accepted by New.
const DefaultAccessKey = "test-storage-access-key"

const maxUpload = 8 << 20

type object struct {
	data        []byte
	lastChanged time.Time
	created     time.Time
}

type state struct {
	mu       sync.RWMutex
	objects  map[string]*object
	failures map[string]int
	requests int
}

// Server is a mock Edge Storage server for testing.
type Server struct {
	*httptest.Server
	zone      string
	accessKey string
	state     *state
	now       func() time.Time
}

// New creates a new mock Edge Storage server for DefaultZone.
func New() *Server {
	return NewWith(DefaultZone, DefaultAccessKey)
}

// NewWith creates a mock server for zone that accepts accessKey.
func NewWith(zone, accessKey string) *Server {
	s := &Server{
		zone:      zone,
		accessKey: accessKey,
		state: &state{
			objects:  make(map[string]*object),
			failures: make(map[string]int),
		},
		now: time.Now,
	}

	r := chi.NewRouter()
	r.Get("/public/*", s.handlePublicGet)
	r.Get("/{zone}/*", s.handleGet)
	r.Get("/{zone}", s.handleGet)
	r.Put("/{zone}/*", s.handlePut)

	s.Server = httptest.NewServer(s.countRequests(r))
	return s
}

// Handler returns the server's router for mounting on a real listener.
func (s *Server) Handler() http.Handler {
	return s.Config.Handler
}

// URL returns the storage API base URL.
func (s *Server) URL() string {
	return s.Server.URL
}

// PublicURL returns the base URL for unauthenticated reads.
func (s *Server) PublicURL() string {
	return s.Server.URL + "/public"
}

// Zone returns the storage zone name.
func (s *Server) Zone() string {
	return s.zone
}

// AccessKey returns the access key the server accepts.
func (s *Server) AccessKey() string {
	return s.accessKey
}

// PutObject stores data at p with the given modification time.
func (s *Server) PutObject(p string, data []byte, lastChanged time.Time) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	s.state.objects[clean(p)] = &object{data: data, lastChanged: lastChanged, created: lastChanged}
}

// Object returns the stored bytes at p.
func (s *Server) Object(p string) ([]byte, bool) {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	o, ok := s.state.objects[clean(p)]
	if !ok {
		return nil, false
	}
	return o.data, true
}

// SetFailure makes every request touching p answer with status until cleared.
func (s *Server) SetFailure(p string, status int) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	s.state.failures[clean(p)] = status
}

// ClearFailures removes all injected failures.
func (s *Server) ClearFailures() {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	s.state.failures = make(map[string]int)
}

// Requests returns the number of requests served so far.
func (s *Server) Requests() int {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	return s.state.requests
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.state.mu.Lock()
		s.state.requests++
		s.state.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handlePublicGet(w http.ResponseWriter, r *http.Request) {
	s.serveObject(w, clean(chi.URLParam(r, "*")))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r) {
		return
	}
	rest := chi.URLParam(r, "*")
	if rest == "" || strings.HasSuffix(r.URL.Path, "/") {
		s.serveListing(w, clean(rest))
		return
	}
	s.serveObject(w, clean(rest))
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r) {
		return
	}
	p := clean(chi.URLParam(r, "*"))
	if status, ok := s.failure(p); ok {
		writeJSON(w, status, map[string]any{"HttpCode": status, "Message": "Injected failure"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxUpload))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"HttpCode": 400, "Message": "Unreadable body"})
		return
	}

	now := s.now().UTC()
	s.state.mu.Lock()
	existing, ok := s.state.objects[p]
	created := now
	if ok {
		created = existing.created
	}
	s.state.objects[p] = &object{data: data, lastChanged: now, created: created}
	s.state.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"HttpCode": 201, "Message": "File uploaded."})
}

func (s *Server) serveObject(w http.ResponseWriter, p string) {
	if status, ok := s.failure(p); ok {
		writeJSON(w, status, map[string]any{"HttpCode": status, "Message": "Injected failure"})
		return
	}
	data, ok := s.Object(p)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"HttpCode": 404, "Message": "Object Not Found"})
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write(data)
}

func (s *Server) serveListing(w http.ResponseWriter, dir string) {
	if status, ok := s.failure(dir); ok {
		writeJSON(w, status, map[string]any{"HttpCode": status, "Message": "Injected failure"})
		return
	}

	s.state.mu.RLock()
	var items []map[string]any
	for p, o := range s.state.objects {
		parent := path.Dir(p)
		if parent == "." {
			parent = ""
		}
		if parent != dir {
			continue
		}
		items = append(items, map[string]any{
			"Guid":            p,
			"StorageZoneName": s.zone,
			"Path":            "/" + s.zone + "/" + strings.TrimPrefix(dir+"/", "/"),
			"ObjectName":      path.Base(p),
			"Length":          len(o.data),
			"LastChanged":     o.lastChanged.UTC().Format("2006-01-02T15:04:05.000"),
			"IsDirectory":     false,
			"DateCreated":     o.created.UTC().Format("2006-01-02T15:04:05.000"),
		})
	}
	s.state.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		return items[i]["ObjectName"].(string) < items[j]["ObjectName"].(string)
	})
	if items == nil {
		items = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) authorize(w http.ResponseWriter, r *http.Request) bool {
	if chi.URLParam(r, "zone") != s.zone || r.Header.Get("AccessKey") != s.accessKey {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"HttpCode": 401, "Message": "Unauthorized"})
		return false
	}
	return true
}

func (s *Server) failure(p string) (int, bool) {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	status, ok := s.state.failures[p]
	return status, ok
}

func clean(p string) string {
	return strings.Trim(p, "/")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck
	json.NewEncoder(w).Encode(v)
}
