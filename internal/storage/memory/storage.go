package memory

import (
	"context"
	"sync"

	"github.com/mcoot/tictacgame-go/internal/model"
	"github.com/mcoot/tictacgame-go/internal/storage"
)

// Storage is an in-memory implementation of the credential store, used in tests
type Storage struct {
	mu      sync.RWMutex
	records []model.Credential
}

// New creates a new in-memory store, optionally pre-seeded with records
func New(records ...model.Credential) *Storage {
	s := &Storage{}
	s.records = append(s.records, records...)
	return s
}

// Ensure Storage implements the interface
var _ storage.CredentialStore = (*Storage)(nil)

func (s *Storage) Load(ctx context.Context) ([]model.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Credential, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *Storage) Save(ctx context.Context, records []model.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make([]model.Credential, len(records))
	copy(s.records, records)
	return nil
}
