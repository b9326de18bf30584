// Package memory is the in-process storage backend, used for tests
// and single-node deployments.
package memory

import (
	"context"
	"sync"

	"github.com/yourusername/gammon/internal/storage"
	"github.com/yourusername/gammon/pkg/match"
)

// Storage is an in-memory implementation of the storage interface.
type Storage struct {
	mu sync.RWMutex

	matches map[string]*match.Match
	records map[recordKey]string
}

type recordKey struct {
	matchID    string
	gameNumber int
}

// New creates a new in-memory storage instance.
func New() *Storage {
	return &Storage{
		matches: make(map[string]*match.Match),
		records: make(map[recordKey]string),
	}
}

var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveMatch(ctx context.Context, m *match.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	s.matches[m.ID] = &cp
	return nil
}

func (s *Storage) GetMatch(ctx context.Context, id string) (*match.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *Storage) DeleteMatch(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.matches, id)
	return nil
}

func (s *Storage) ListMatchIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.matches))
	for id := range s.matches {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Storage) SaveGameRecord(ctx context.Context, matchID string, gameNumber int, record string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[recordKey{matchID, gameNumber}] = record
	return nil
}

func (s *Storage) GetGameRecord(ctx context.Context, matchID string, gameNumber int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[recordKey{matchID, gameNumber}]
	if !ok {
		return "", storage.ErrNotFound
	}
	return rec, nil
}

func (s *Storage) DeleteGameRecords(ctx context.Context, matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.records {
		if k.matchID == matchID {
			delete(s.records, k)
		}
	}
	return nil
}
