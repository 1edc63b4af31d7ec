package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/tictacgame-go/internal/model"
	"github.com/mcoot/tictacgame-go/internal/storage"
)

// record mirrors the file backend's on-disk shape so the two stores are
// interchangeable
type record struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Storage is a Redis-backed implementation of the credential store
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.CredentialStore = (*Storage)(nil)

// Load reads the full credential list. A missing key is an empty registry.
func (s *Storage) Load(ctx context.Context) ([]model.Credential, error) {
	data, err := s.client.Get(ctx, s.cfg.Key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var items []record
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}

	records := make([]model.Credential, len(items))
	for i, item := range items {
		records[i] = model.Credential{Username: item.Username, PasswordHash: item.Password}
	}
	return records, nil
}

// Save rewrites the full credential list
func (s *Storage) Save(ctx context.Context, records []model.Credential) error {
	items := make([]record, len(records))
	for i, r := range records {
		items[i] = record{Username: r.Username, Password: r.PasswordHash}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.cfg.Key, data, 0).Err()
}
