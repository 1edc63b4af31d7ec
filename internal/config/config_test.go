package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ConfigSuite struct {
	suite.Suite
	dir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) SetupTest() {
	s.dir = s.T().TempDir()
}

func (s *ConfigSuite) write(name, content string) string {
	path := filepath.Join(s.dir, name)
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (s *ConfigSuite) TestLoadValidConfig() {
	path := s.write("config.json", `{"port": 8002, "userDatabase": "users.json"}`)

	cfg, err := Load(path)
	s.Require().NoError(err)
	s.Equal(8002, cfg.Port)
	s.Equal("users.json", cfg.UserDatabase)
	s.Equal(StorageFile, cfg.Storage)
	s.Zero(cfg.StatusPort)
}

func (s *ConfigSuite) TestLoadMissingFile() {
	_, err := Load(filepath.Join(s.dir, "nope.json"))
	s.ErrorContains(err, "doesn't exist")
}

func (s *ConfigSuite) TestLoadInvalidJSON() {
	path := s.write("config.json", `{"port": 8002,`)

	_, err := Load(path)
	s.ErrorContains(err, "not in a valid JSON format")
}

func (s *ConfigSuite) TestLoadMissingPort() {
	path := s.write("config.json", `{"userDatabase": "users.json"}`)

	_, err := Load(path)
	s.ErrorContains(err, "missing key(s): port")
}

func (s *ConfigSuite) TestLoadMissingBothKeysSorted() {
	path := s.write("config.json", `{}`)

	_, err := Load(path)
	s.ErrorContains(err, "missing key(s): port, userDatabase")
}

func (s *ConfigSuite) TestLoadPortOutOfRange() {
	for _, port := range []string{"80", "70000", "-1"} {
		path := s.write("config.json", `{"port": `+port+`, "userDatabase": "users.json"}`)

		_, err := Load(path)
		s.ErrorContains(err, "port number out of range")
	}
}

func (s *ConfigSuite) TestLoadRedisStorageRequiresURL() {
	path := s.write("config.json", `{"port": 8002, "userDatabase": "u.json", "storage": "redis"}`)

	_, err := Load(path)
	s.ErrorContains(err, "redisURL required")
}

func (s *ConfigSuite) TestLoadRedisStorage() {
	path := s.write("config.json",
		`{"port": 8002, "userDatabase": "u.json", "storage": "redis", "redisURL": "redis://localhost:6379"}`)

	cfg, err := Load(path)
	s.Require().NoError(err)
	s.Equal(StorageRedis, cfg.Storage)
	s.Equal("redis://localhost:6379", cfg.RedisURL)
}

func (s *ConfigSuite) TestLoadUnknownStorage() {
	path := s.write("config.json", `{"port": 8002, "userDatabase": "u.json", "storage": "dynamo"}`)

	_, err := Load(path)
	s.ErrorContains(err, "storage must be")
}

func (s *ConfigSuite) TestLoadStatusPortOutOfRange() {
	path := s.write("config.json", `{"port": 8002, "userDatabase": "u.json", "statusPort": 99}`)

	_, err := Load(path)
	s.ErrorContains(err, "statusPort number out of range")
}

func (s *ConfigSuite) TestExpandHome() {
	home, err := os.UserHomeDir()
	s.Require().NoError(err)

	s.Equal(filepath.Join(home, "users.json"), ExpandHome("~/users.json"))
	s.Equal("/etc/users.json", ExpandHome("/etc/users.json"))
}
