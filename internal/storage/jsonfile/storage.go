// Package jsonfile persists credentials as a JSON array of user records,
// the on-disk format the server has always used.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mcoot/tictacgame-go/internal/model"
	"github.com/mcoot/tictacgame-go/internal/storage"
)

// record is the on-disk shape of a single credential entry
type record struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Storage is a file-backed implementation of the credential store
type Storage struct {
	path string
}

// New creates a file-backed store reading and writing path
func New(path string) *Storage {
	return &Storage{path: path}
}

// Ensure Storage implements the interface
var _ storage.CredentialStore = (*Storage)(nil)

// Load reads and validates the credential file. Each entry must be an object
// with exactly the "username" and "password" keys.
func (s *Storage) Load(ctx context.Context) ([]model.Credential, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s doesn't exist", s.path)
		}
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	var items []map[string]string
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%s is not a valid JSON array of user records", s.path)
	}

	records := make([]model.Credential, 0, len(items))
	for _, item := range items {
		username, hasUser := item["username"]
		password, hasPass := item["password"]
		if len(item) != 2 || !hasUser || !hasPass {
			return nil, fmt.Errorf("%s contains invalid user record formats", s.path)
		}
		records = append(records, model.Credential{
			Username:     username,
			PasswordHash: password,
		})
	}
	return records, nil
}

// Save rewrites the credential file in full
func (s *Storage) Save(ctx context.Context, records []model.Credential) error {
	items := make([]record, len(records))
	for i, r := range records {
		items[i] = record{Username: r.Username, Password: r.PasswordHash}
	}

	data, err := json.MarshalIndent(items, "", "   ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}
