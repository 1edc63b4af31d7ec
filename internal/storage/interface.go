package storage

import (
	"context"

	"github.com/mcoot/tictacgame-go/internal/model"
)

// CredentialStore defines the interface for durable credential persistence.
// The store holds the full ordered record list; Save rewrites it in full on
// each successful registration.
type CredentialStore interface {
	Load(ctx context.Context) ([]model.Credential, error)
	Save(ctx context.Context, records []model.Credential) error
}
