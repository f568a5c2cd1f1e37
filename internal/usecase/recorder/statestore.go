package recorder

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/SasaKuruppuarachchi/tcp-communication/internal/domain"
)

// StateStore persists the identity of the single active recording session.
// It holds zero or one record; Write replaces any previous value. Read treats
// a corrupt record as absent so a damaged file can never wedge the CLI.
type StateStore interface {
	Write(state *domain.RecordingState) error
	// Read returns the persisted state, or ok=false when no session is known.
	Read() (state *domain.RecordingState, ok bool)
	Clear() error
}

const (
	stateDirName  = ".agi_logger"
	stateFileName = "recording_state.json"
)

// stateRecord is the on-disk layout. start_time is kept as unix seconds so
// state files written by earlier releases stay readable.
type stateRecord struct {
	PID       int      `json:"pid"`
	BagName   string   `json:"bag_name"`
	BagPath   string   `json:"bag_path"`
	StartTime float64  `json:"start_time"`
	Command   []string `json:"command"`
}

// FileStore is the production StateStore: a JSON file at a fixed per-user
// path, shared by every CLI invocation of the same user.
type FileStore struct {
	path string
}

// NewFileStore creates a store at the default per-user location,
// ~/.agi_logger/recording_state.json.
func NewFileStore() (*FileStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, domain.WrapOp("StateStore", err)
	}
	return &FileStore{path: filepath.Join(home, stateDirName, stateFileName)}, nil
}

// NewFileStoreAt creates a store backed by an explicit file path.
func NewFileStoreAt(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Write(state *domain.RecordingState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return domain.WrapOp("StateStore.Write", err)
	}
	record := stateRecord{
		PID:       state.PID,
		BagName:   state.BagName,
		BagPath:   state.BagPath,
		StartTime: float64(state.StartTime.UnixNano()) / float64(time.Second),
		Command:   state.Command,
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return domain.WrapOp("StateStore.Write", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return domain.WrapOp("StateStore.Write", err)
	}
	return nil
}

func (s *FileStore) Read() (*domain.RecordingState, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, false
	}
	var record stateRecord
	if err := json.Unmarshal(data, &record); err != nil {
		// Corruption degrades to "no known session".
		return nil, false
	}
	if record.BagName == "" || record.Command == nil {
		return nil, false
	}
	seconds := int64(record.StartTime)
	nanos := int64((record.StartTime - float64(seconds)) * float64(time.Second))
	return &domain.RecordingState{
		PID:       record.PID,
		BagName:   record.BagName,
		BagPath:   record.BagPath,
		StartTime: time.Unix(seconds, nanos),
		Command:   record.Command,
	}, true
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return domain.WrapOp("StateStore.Clear", err)
	}
	return nil
}

// MemoryStore is an in-memory StateStore for unit tests. It is goroutine
// safe: the manager's auto-stop timer reads and clears state from its own
// goroutine.
type MemoryStore struct {
	mu    sync.Mutex
	state *domain.RecordingState
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Write(state *domain.RecordingState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *state
	s.state = &copied
	return nil
}

func (s *MemoryStore) Read() (*domain.RecordingState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil, false
	}
	copied := *s.state
	return &copied, true
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = nil
	return nil
}
