package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xtrntr/tradedesk/internal/models"
)

// StorageName prefixes every persisted record name
const StorageName = "tradedesk-storage"

// Persister is the durable home of a single snapshot record
type Persister interface {
	// Load returns nil when nothing has been saved yet
	Load(ctx context.Context) (*models.Snapshot, error)
	Save(ctx context.Context, snap models.Snapshot) error
}

// PersisterFactory builds the persister for a named record
type PersisterFactory func(name string) Persister

// RecordName is the record name used for a session
func RecordName(session string) string {
	return StorageName + ":" + session
}

// DecodeSnapshot parses a stored record. Fields missing from data keep
// their default values.
func DecodeSnapshot(data []byte) (models.Snapshot, error) {
	snap := DefaultState().Snapshot()
	if err := json.Unmarshal(data, &snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}

// MemoryPersister keeps the snapshot in process memory
type MemoryPersister struct {
	mu    sync.Mutex
	snap  *models.Snapshot
	saves int
	err   error
}

// NewMemoryPersister optionally starts with a saved snapshot
func NewMemoryPersister(initial *models.Snapshot) *MemoryPersister {
	return &MemoryPersister{snap: initial}
}

func (p *MemoryPersister) Load(ctx context.Context) (*models.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snap == nil {
		return nil, nil
	}
	snap := *p.snap
	snap.Favorites = append([]string{}, p.snap.Favorites...)
	return &snap, nil
}

func (p *MemoryPersister) Save(ctx context.Context, snap models.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves++
	if p.err != nil {
		return p.err
	}
	p.snap = &snap
	return nil
}

// FailWith makes subsequent saves return err
func (p *MemoryPersister) FailWith(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

// Saves reports how many times Save was called
func (p *MemoryPersister) Saves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}

// FilePersister stores one JSON file per record under a directory
type FilePersister struct {
	path string
}

// NewFilePersister places the record name under dir
func NewFilePersister(dir, name string) *FilePersister {
	return &FilePersister{path: filepath.Join(dir, fileName(name))}
}

// Path is the file backing the record
func (p *FilePersister) Path() string {
	return p.path
}

func (p *FilePersister) Load(ctx context.Context) (*models.Snapshot, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p.path, err)
	}
	snap, err := DecodeSnapshot(data)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (p *FilePersister) Save(ctx context.Context, snap models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", p.path, err)
	}
	return nil
}

func fileName(name string) string {
	r := strings.NewReplacer(":", "_", "/", "_", "\\", "_", "..", "_")
	return r.Replace(name) + ".json"
}
