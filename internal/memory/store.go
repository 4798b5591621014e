package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// ErrPersist marks a failure to write the swarm memory to disk. It is the
// only storage condition that propagates to callers; read failures fall
// back to the default document instead.
var ErrPersist = errors.New("failed to persist swarm memory")

// Memory is the full swarm memory document: agent weight table, accuracy
// scorecard, and the historical case list.
type Memory struct {
	AgentWeights   map[string]float64    `json:"agent_weights"`
	AgentScorecard map[string]*Scorecard `json:"agent_scorecard"`
	Cases          []*CaseRecord         `json:"cases"`
}

// DefaultWeights returns the initial weight table: 1.0 for every specialist.
func DefaultWeights() map[string]float64 {
	weights := make(map[string]float64, 4)
	for _, agent := range AgentNames() {
		weights[agent] = 1.0
	}
	return weights
}

// NewMemory creates a fresh default memory document.
func NewMemory() *Memory {
	return &Memory{
		AgentWeights:   DefaultWeights(),
		AgentScorecard: make(map[string]*Scorecard),
		Cases:          []*CaseRecord{},
	}
}

// normalize initializes any sections missing from a loaded document.
// A section that is present but empty is kept as-is.
func (m *Memory) normalize() {
	if m.AgentWeights == nil {
		m.AgentWeights = DefaultWeights()
	}
	if m.AgentScorecard == nil {
		m.AgentScorecard = make(map[string]*Scorecard)
	}
	if m.Cases == nil {
		m.Cases = []*CaseRecord{}
	}
}

// FindCase returns the case with the given identifier, or nil.
func (m *Memory) FindCase(caseID string) *CaseRecord {
	for _, c := range m.Cases {
		if c.CaseID == caseID {
			return c
		}
	}
	return nil
}

// AppendCase appends a new case record to the history.
func (m *Memory) AppendCase(c *CaseRecord) {
	m.Cases = append(m.Cases, c)
}

// Store abstracts persistence of the swarm memory document. The engine
// performs one Load and one Save per decision or feedback call.
type Store interface {
	// Load reads the memory document. A missing, corrupt, or unreadable
	// store falls back to the default document and never fails.
	Load() *Memory

	// Save writes the full memory document synchronously. Failures wrap
	// ErrPersist.
	Save(m *Memory) error

	// Path reports where the store lives, for diagnostics.
	Path() string
}

// FileStore implements Store as a single JSON flat file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file-backed store at the given path. The file is
// created lazily on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath returns the path to ~/.quitswarm/swarm_memory.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".quitswarm", "swarm_memory.json"), nil
}

// Load reads the memory document from disk. Any read or parse failure
// resets to the default document.
func (s *FileStore) Load() *Memory {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: failed to read swarm memory, using defaults: %v", err)
		}
		return NewMemory()
	}

	var m Memory
	if err := json.Unmarshal(data, &m); err != nil {
		log.Printf("Warning: swarm memory is corrupt, using defaults: %v", err)
		return NewMemory()
	}

	m.normalize()
	return &m
}

// Save writes the full memory document to disk.
func (s *FileStore) Save(m *Memory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrPersist, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("%w: create directory: %v", ErrPersist, err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrPersist, s.path, err)
	}

	return nil
}

// Path returns the store's file path.
func (s *FileStore) Path() string {
	return s.path
}
