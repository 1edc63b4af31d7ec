package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tictacgame-go/internal/model"
)

type StorageSuite struct {
	suite.Suite
	path string
	ctx  context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "users.json")
	s.ctx = context.Background()
}

func (s *StorageSuite) write(content string) {
	s.Require().NoError(os.WriteFile(s.path, []byte(content), 0o644))
}

func (s *StorageSuite) TestLoadMissingFile() {
	_, err := New(s.path).Load(s.ctx)
	s.ErrorContains(err, "doesn't exist")
}

func (s *StorageSuite) TestLoadInvalidJSON() {
	s.write(`{"not": "an array"}`)

	_, err := New(s.path).Load(s.ctx)
	s.ErrorContains(err, "not a valid JSON array")
}

func (s *StorageSuite) TestLoadInvalidRecordShape() {
	s.write(`[{"username": "alice"}]`)

	_, err := New(s.path).Load(s.ctx)
	s.ErrorContains(err, "invalid user record formats")
}

func (s *StorageSuite) TestLoadRejectsExtraKeys() {
	s.write(`[{"username": "alice", "password": "h", "admin": "yes"}]`)

	_, err := New(s.path).Load(s.ctx)
	s.ErrorContains(err, "invalid user record formats")
}

func (s *StorageSuite) TestLoadEmptyRegistry() {
	s.write(`[]`)

	records, err := New(s.path).Load(s.ctx)
	s.Require().NoError(err)
	s.Empty(records)
}

func (s *StorageSuite) TestSaveThenLoadRoundTrip() {
	store := New(s.path)
	in := []model.Credential{
		{Username: "alice", PasswordHash: "$2b$12$hashA"},
		{Username: "bob", PasswordHash: "$2b$12$hashB"},
	}

	s.Require().NoError(store.Save(s.ctx, in))

	out, err := store.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal(in, out)
}

func (s *StorageSuite) TestSaveRewritesInFull() {
	store := New(s.path)
	s.Require().NoError(store.Save(s.ctx, []model.Credential{{Username: "alice", PasswordHash: "a"}}))
	s.Require().NoError(store.Save(s.ctx, []model.Credential{{Username: "bob", PasswordHash: "b"}}))

	out, err := store.Load(s.ctx)
	s.Require().NoError(err)
	s.Len(out, 1)
	s.Equal("bob", out[0].Username)
}

func (s *StorageSuite) TestSaveToUnwritablePathFails() {
	store := New(filepath.Join(s.T().TempDir(), "missing-dir", "users.json"))

	err := store.Save(s.ctx, nil)
	s.Error(err)
}
