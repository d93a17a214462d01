package content

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Repository persists one document per content domain. Load returns (nil, nil)
// when nothing has been persisted for the domain yet.
type Repository interface {
	Load(ctx context.Context, domain string) (*Document, error)
	Save(ctx context.Context, d *Document) error
}

// FileRepository stores each domain as a JSON file under a data directory.
// Writes go through a temp file + rename so readers never see a torn file.
type FileRepository struct {
	dir string
}

func NewFileRepository(dir string) (*FileRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("content dir: %w", err)
	}
	return &FileRepository{dir: dir}, nil
}

func (r *FileRepository) path(domain string) string {
	return filepath.Join(r.dir, domain+".json")
}

func (r *FileRepository) Load(ctx context.Context, domain string) (*Document, error) {
	b, err := os.ReadFile(r.path(domain))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var d Document
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("decode %s: %w", domain, err)
	}
	return &d, nil
}

func (r *FileRepository) Save(ctx context.Context, d *Document) error {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	tmp := r.path(d.Domain) + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, r.path(d.Domain))
}

// MemoryRepository keeps documents in a map. Used by the standalone content
// binary and unit tests.
type MemoryRepository struct {
	store map[string]*Document
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]*Document)}
}

func (r *MemoryRepository) Load(ctx context.Context, domain string) (*Document, error) {
	d, ok := r.store[domain]
	if !ok {
		return nil, nil
	}
	return d.clone(), nil
}

func (r *MemoryRepository) Save(ctx context.Context, d *Document) error {
	r.store[d.Domain] = d.clone()
	return nil
}
