package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// ErrStateVersion is returned by Load for files written in another format.
var ErrStateVersion = errors.New("unsupported discovery state version")

// DiscoveryState is a cached discovery document.
type DiscoveryState struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the document was fetched.
	SavedAt time.Time `json:"saved_at"`

	// ThingName and Endpoint identify the request that returned Document.
	ThingName string `json:"thing_name"`
	Endpoint  string `json:"endpoint"`

	// Document is the raw response body, before any parsing.
	Document []byte `json:"document"`
}

// Age returns how long ago the document was saved.
func (s *DiscoveryState) Age(now time.Time) time.Duration {
	return now.Sub(s.SavedAt)
}

// Matches reports whether the state was saved for thing at endpoint.
func (s *DiscoveryState) Matches(thing, endpoint string) bool {
	return s.ThingName == thing && s.Endpoint == endpoint
}

// DiscoveryStore manages the discovery state file.
type DiscoveryStore struct {
	mu   sync.Mutex
	path string
}

// NewDiscoveryStore creates a store for the file at path.
func NewDiscoveryStore(path string) *DiscoveryStore {
	return &DiscoveryStore{path: path}
}

// Path returns the state file path.
func (s *DiscoveryStore) Path() string {
	return s.path
}

// Save writes state atomically. The document is copied as is.
func (s *DiscoveryStore) Save(state *DiscoveryState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	state.Version = StateVersion
	if state.SavedAt.IsZero() {
		state.SavedAt = time.Now()
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Load reads the state file.
// Returns nil, nil if the file doesn't exist.
func (s *DiscoveryStore) Load() (*DiscoveryState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &DiscoveryState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}
	if state.Version != StateVersion {
		return nil, fmt.Errorf("%w: %d", ErrStateVersion, state.Version)
	}
	return state, nil
}

// Clear removes the state file.
func (s *DiscoveryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
