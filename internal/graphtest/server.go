package graphtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
)

// Token is the bearer token the fake token endpoint issues and the
// graph endpoints require.
const Token = "graphtest-token"

// installation is one fake per-user app installation.
type installation struct {
	InstalledAppID string
	CatalogAppID   string
}

// Server is an in-process fake of the directory graph API plus a
// client-credentials token endpoint.
type Server struct {
	server *httptest.Server

	mu            sync.Mutex
	installations map[string][]installation
	removed       []string
	tokenCalls    int
	failTokens    bool
	failRemovals  map[string]int
}

var (
	installedAppsPath = regexp.MustCompile(`^/users/([^/]+)/installedApps$`)
	removeAppPath     = regexp.MustCompile(`^/users/([^/]+)/installedApps/([^/]+)$`)
)

// NewServer starts the fake server. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		installations: make(map[string][]installation),
		failRemovals:  make(map[string]int),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handler))
	return s
}

// URL returns the fake server's base URL, usable as both the graph base
// URL and the identity endpoint.
func (s *Server) URL() string {
	return s.server.URL
}

// Close shuts the fake server down.
func (s *Server) Close() {
	s.server.Close()
}

// Install registers a fake installation for a user.
func (s *Server) Install(userID, installedAppID, catalogAppID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.installations[userID] = append(s.installations[userID], installation{
		InstalledAppID: installedAppID,
		CatalogAppID:   catalogAppID,
	})
}

// FailTokens makes the token endpoint return 500.
func (s *Server) FailTokens(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failTokens = fail
}

// FailRemoval makes the next n removal attempts for a user return 502.
func (s *Server) FailRemoval(userID string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failRemovals[userID] = n
}

// Removed returns the user IDs whose installations were removed, in
// call order.
func (s *Server) Removed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.removed))
	copy(out, s.removed)
	return out
}

// TokenCalls returns how many token requests were served.
func (s *Server) TokenCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tokenCalls
}

func (s *Server) handler(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, "/oauth2/v2.0/token") {
		s.handleToken(w, r)
		return
	}

	if r.Header.Get("Authorization") != "Bearer "+Token {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"code":"InvalidAuthenticationToken","message":"bad token"}}`)
		return
	}

	if m := installedAppsPath.FindStringSubmatch(r.URL.Path); m != nil && r.Method == http.MethodGet {
		s.handleList(w, m[1])
		return
	}
	if m := removeAppPath.FindStringSubmatch(r.URL.Path); m != nil && r.Method == http.MethodDelete {
		s.handleRemove(w, m[1], m[2])
		return
	}

	http.NotFound(w, r)
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.tokenCalls++
	fail := s.failTokens
	s.mu.Unlock()

	if fail {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token": Token,
		"token_type":   "Bearer",
		"expires_in":   3600,
	})
}

func (s *Server) handleList(w http.ResponseWriter, userID string) {
	s.mu.Lock()
	installs := s.installations[userID]
	s.mu.Unlock()

	type app struct {
		ID string `json:"id"`
	}
	type entry struct {
		ID  string `json:"id"`
		App app    `json:"app"`
	}

	value := make([]entry, 0, len(installs))
	for _, inst := range installs {
		value = append(value, entry{ID: inst.InstalledAppID, App: app{ID: inst.CatalogAppID}})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"value": value})
}

func (s *Server) handleRemove(w http.ResponseWriter, userID, installedAppID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failRemovals[userID] > 0 {
		s.failRemovals[userID]--
		w.WriteHeader(http.StatusBadGateway)
		return
	}

	installs := s.installations[userID]
	for i, inst := range installs {
		if inst.InstalledAppID == installedAppID {
			s.installations[userID] = append(installs[:i], installs[i+1:]...)
			s.removed = append(s.removed, userID)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}

	w.WriteHeader(http.StatusNotFound)
}
