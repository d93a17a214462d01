package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrNotFound        = errors.New("content not found")
	ErrInvalidSection  = errors.New("invalid section name")
	ErrVersionConflict = errors.New("version conflict")
)

// Store owns the in-memory cache of content documents and the single write
// path to the repository. Constructed once at startup and passed to handlers;
// all mutations run under the mutex, so persisted writes for a domain are
// totally ordered and readers never observe a partially applied document.
type Store struct {
	mu    sync.RWMutex
	repo  Repository
	cache map[string]*Document
}

func NewStore(repo Repository) *Store {
	return &Store{repo: repo, cache: make(map[string]*Document)}
}

// Get returns the current document for the domain, loading it from the
// repository on first access and falling back to the bundled default.
func (s *Store) Get(ctx context.Context, domain string) (*Document, error) {
	if !KnownDomain(domain) {
		return nil, ErrNotFound
	}

	s.mu.RLock()
	if d, ok := s.cache[domain]; ok {
		s.mu.RUnlock()
		return d.clone(), nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.cache[domain]; ok {
		return d.clone(), nil
	}

	d, err := s.repo.Load(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", domain, err)
	}
	if d == nil {
		d = defaultDocument(domain)
		if d == nil {
			return nil, ErrNotFound
		}
		d.UpdatedAt = time.Now().UTC()
		if err := s.repo.Save(ctx, d); err != nil {
			return nil, fmt.Errorf("persist default %s: %w", domain, err)
		}
	}
	s.cache[domain] = d
	return d.clone(), nil
}

// Replace swaps the whole document. Unknown section keys are rejected so a
// full replace cannot smuggle sections past the allow-list. When
// expectedVersion > 0 it must match the current version or the write fails
// with ErrVersionConflict.
func (s *Store) Replace(ctx context.Context, domain string, sections map[string]json.RawMessage, expectedVersion int64) (*Document, error) {
	if !KnownDomain(domain) {
		return nil, ErrNotFound
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidSection)
	}
	for name := range sections {
		if !ValidSection(domain, name) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSection, name)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.currentLocked(ctx, domain)
	if err != nil {
		return nil, err
	}
	if expectedVersion > 0 && cur.Version != expectedVersion {
		return nil, fmt.Errorf("%w: have %d, expected %d", ErrVersionConflict, cur.Version, expectedVersion)
	}

	next := &Document{
		Domain:    domain,
		Version:   cur.Version + 1,
		UpdatedAt: time.Now().UTC(),
		Sections:  make(map[string]json.RawMessage, len(sections)),
	}
	for k, v := range sections {
		raw := make(json.RawMessage, len(v))
		copy(raw, v)
		next.Sections[k] = raw
	}
	if err := s.repo.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("persist %s: %w", domain, err)
	}
	s.cache[domain] = next
	return next.clone(), nil
}

// UpdateSection replaces one allow-listed section wholesale, leaving siblings
// untouched.
func (s *Store) UpdateSection(ctx context.Context, domain, section string, data json.RawMessage, expectedVersion int64) (*Document, error) {
	if !KnownDomain(domain) {
		return nil, ErrNotFound
	}
	if !ValidSection(domain, section) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSection, section)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.currentLocked(ctx, domain)
	if err != nil {
		return nil, err
	}
	if expectedVersion > 0 && cur.Version != expectedVersion {
		return nil, fmt.Errorf("%w: have %d, expected %d", ErrVersionConflict, cur.Version, expectedVersion)
	}

	next := cur.clone()
	next.Version = cur.Version + 1
	next.UpdatedAt = time.Now().UTC()
	raw := make(json.RawMessage, len(data))
	copy(raw, data)
	next.Sections[section] = raw

	if err := s.repo.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("persist %s: %w", domain, err)
	}
	s.cache[domain] = next
	return next.clone(), nil
}

// Reset restores the bundled default document, discarding prior edits.
// Idempotent apart from the version counter and timestamp.
func (s *Store) Reset(ctx context.Context, domain string) (*Document, error) {
	if !KnownDomain(domain) {
		return nil, ErrNotFound
	}
	d := defaultDocument(domain)
	if d == nil {
		return nil, ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.currentLocked(ctx, domain)
	if err != nil {
		return nil, err
	}
	// the version keeps climbing through a reset so a stale pre-reset
	// version cannot pass the optimistic check afterwards
	d.Version = cur.Version + 1
	d.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("persist default %s: %w", domain, err)
	}
	s.cache[domain] = d
	return d.clone(), nil
}

// currentLocked returns the cached document, loading or defaulting as Get
// does. Caller holds the write lock.
func (s *Store) currentLocked(ctx context.Context, domain string) (*Document, error) {
	if d, ok := s.cache[domain]; ok {
		return d, nil
	}
	d, err := s.repo.Load(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", domain, err)
	}
	if d == nil {
		d = defaultDocument(domain)
		if d == nil {
			return nil, ErrNotFound
		}
		d.UpdatedAt = time.Now().UTC()
	}
	s.cache[domain] = d
	return d, nil
}
