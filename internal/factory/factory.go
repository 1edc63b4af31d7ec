// Package factory wires the application's components together.
package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/tictacgame-go/internal/config"
	"github.com/mcoot/tictacgame-go/internal/server"
	"github.com/mcoot/tictacgame-go/internal/services/credentials"
	"github.com/mcoot/tictacgame-go/internal/services/pending"
	"github.com/mcoot/tictacgame-go/internal/services/room"
	"github.com/mcoot/tictacgame-go/internal/services/session"
	"github.com/mcoot/tictacgame-go/internal/storage"
	"github.com/mcoot/tictacgame-go/internal/storage/jsonfile"
	redisstorage "github.com/mcoot/tictacgame-go/internal/storage/redis"
)

// App contains all wired application components
type App struct {
	Store       storage.CredentialStore
	Credentials *credentials.Service
	Sessions    *session.Table
	Pending     *pending.Queue
	Rooms       *room.Registry
	Server      *server.Server
}

// New creates a new application with all dependencies wired from the given
// startup configuration
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.CredentialStore
	switch cfg.Storage {
	case config.StorageFile:
		store = jsonfile.New(cfg.UserDatabase)
	case config.StorageRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		redisStore, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid storage backend: must be 'file' or 'redis'")
	}

	creds := credentials.New(store, logger)
	sessions := session.NewTable()
	pendingQueue := pending.NewQueue()

	srv := server.New(cfg.Port, logger)
	rooms := room.NewRegistry(sessions, pendingQueue, srv, logger)
	srv.AttachDispatcher(server.NewDispatcher(creds, sessions, rooms, srv, logger))

	return &App{
		Store:       store,
		Credentials: creds,
		Sessions:    sessions,
		Pending:     pendingQueue,
		Rooms:       rooms,
		Server:      srv,
	}, nil
}
