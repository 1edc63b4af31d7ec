// Package credentials holds the account registry: login verification and
// registration with synchronous durable persistence.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/tictacgame-go/internal/model"
	"github.com/mcoot/tictacgame-go/internal/storage"
)

// VerifyResult is the outcome of a login check
type VerifyResult int

const (
	VerifyOK VerifyResult = iota
	VerifyUnknownUser
	VerifyWrongPassword
)

// Service manages the username -> credential-hash registry.
// There is no registry size cap; rooms, not users, are limited.
type Service struct {
	store  storage.CredentialStore
	logger *slog.Logger

	mu      sync.RWMutex
	records []model.Credential
	index   map[string]int // username -> records index
}

// New creates a credentials service backed by the given store
func New(store storage.CredentialStore, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		index:  make(map[string]int),
	}
}

// Load reads the durable store into memory. Called once at startup, before
// the listener binds; any error here is fatal.
func (s *Service) Load(ctx context.Context) error {
	records, err := s.store.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.index = make(map[string]int, len(records))
	for i, r := range records {
		s.index[r.Username] = i
	}
	s.logger.Info("credential registry loaded", slog.Int("users", len(records)))
	return nil
}

// Verify checks a username/secret pair against the registry
func (s *Service) Verify(username, secret string) VerifyResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[username]
	if !ok {
		return VerifyUnknownUser
	}
	if bcrypt.CompareHashAndPassword([]byte(s.records[i].PasswordHash), []byte(secret)) != nil {
		return VerifyWrongPassword
	}
	return VerifyOK
}

// Register derives a hash for secret, appends the record and persists the
// registry synchronously. The durable write must succeed before the caller
// may report success; a persist failure is returned as a wrapped error and
// leaves the in-memory registry unchanged.
func (s *Service) Register(ctx context.Context, username, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[username]; ok {
		return model.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("deriving credential hash: %w", err)
	}

	updated := make([]model.Credential, len(s.records), len(s.records)+1)
	copy(updated, s.records)
	updated = append(updated, model.Credential{Username: username, PasswordHash: string(hash)})

	if err := s.store.Save(ctx, updated); err != nil {
		return fmt.Errorf("persisting credential registry: %w", err)
	}

	s.records = updated
	s.index[username] = len(updated) - 1
	s.logger.Info("user registered", slog.String("username", username))
	return nil
}

// IsPersistFailure reports whether err came from the durable write rather
// than a protocol-level outcome
func IsPersistFailure(err error) bool {
	return err != nil && !errors.Is(err, model.ErrUserExists)
}
