// Package overfasttest provides an in-process fake of the OverFast API for tests.
package overfasttest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"git.home.luguber.info/inful/overfastsite/internal/overfast"
)

// Server serves canned collections and records request counts.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	bodies   map[string]string
	statuses map[string]int
	hits     map[string]int
}

// Sample collections used by default.
var (
	SampleHeroes = []overfast.Hero{
		{Key: "ana", Name: "Ana", Portrait: "https://example.test/ana.png", Role: "support"},
		{Key: "reinhardt", Name: "Reinhardt", Portrait: "https://example.test/reinhardt.png", Role: "tank"},
		{Key: "tracer", Name: "Tracer", Portrait: "https://example.test/tracer.png", Role: "damage"},
	}
	SampleRoles = []overfast.Role{
		{Key: "tank", Name: "Tank", Icon: "https://example.test/tank.svg", Description: "Frontline"},
		{Key: "damage", Name: "Damage", Icon: "https://example.test/damage.svg", Description: "Eliminations"},
		{Key: "support", Name: "Support", Icon: "https://example.test/support.svg", Description: "Healing"},
	}
	SampleGamemodes = []overfast.Gamemode{
		{Key: "escort", Name: "Escort", Icon: "https://example.test/escort.svg", Description: "Move the payload"},
		{Key: "hybrid", Name: "Hybrid", Icon: "https://example.test/hybrid.svg", Description: "Capture then escort"},
	}
	SampleMaps = []overfast.Map{
		{Name: "King's Row", Screenshot: "https://example.test/kings-row.jpg", Gamemodes: []string{"escort", "hybrid"}, Location: "London, United Kingdom"},
		{Name: "Ilios", Screenshot: "https://example.test/ilios.jpg", Gamemodes: []string{"control"}, Location: "Greece"},
	}
)

// NewServer starts a fake API serving the sample collections plus a hero
// detail for every sample hero. It is closed on test cleanup.
func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		bodies:   map[string]string{},
		statuses: map[string]int{},
		hits:     map[string]int{},
	}
	s.SetJSON(t, overfast.EndpointHeroes, SampleHeroes)
	s.SetJSON(t, overfast.EndpointRoles, SampleRoles)
	s.SetJSON(t, overfast.EndpointGamemodes, SampleGamemodes)
	s.SetJSON(t, overfast.EndpointMaps, SampleMaps)
	for _, h := range SampleHeroes {
		s.SetJSON(t, "heroes/"+h.Key, map[string]any{
			"name":        h.Name,
			"description": h.Name + " description",
			"portrait":    h.Portrait,
			"role":        h.Role,
			"location":    "Earth",
			"abilities":   []map[string]string{{"name": "Ability", "description": "Does things", "icon": "https://example.test/a.png"}},
		})
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// SetJSON replaces the body served for endpoint.
func (s *Server) SetJSON(t *testing.T, endpoint string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", endpoint, err)
	}
	s.SetRaw(endpoint, string(data))
}

// SetRaw replaces the body served for endpoint without encoding it.
func (s *Server) SetRaw(endpoint, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies[endpoint] = body
	delete(s.statuses, endpoint)
}

// Fail makes endpoint answer with status.
func (s *Server) Fail(endpoint string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[endpoint] = status
}

// Hits reports how many requests endpoint received.
func (s *Server) Hits(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[endpoint]
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	endpoint := strings.Trim(r.URL.Path, "/")

	s.mu.Lock()
	s.hits[endpoint]++
	status, failing := s.statuses[endpoint]
	body, ok := s.bodies[endpoint]
	s.mu.Unlock()

	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if failing {
		http.Error(w, http.StatusText(status), status)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}
