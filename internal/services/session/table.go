// Package session tracks which connections are authenticated and as whom.
package session

import (
	"sync"

	"github.com/mcoot/tictacgame-go/internal/model"
)

// Table is the bidirectional connection <-> username association.
// A connection holds at most one username; a username holds at most one live
// connection.
type Table struct {
	mu     sync.RWMutex
	byConn map[model.ConnID]string
	byUser map[string]model.ConnID
}

// NewTable creates an empty session table
func NewTable() *Table {
	return &Table{
		byConn: make(map[model.ConnID]string),
		byUser: make(map[string]model.ConnID),
	}
}

// Authenticate records the mapping. Idempotent; re-authenticating the same
// connection under a new username replaces its previous binding.
func (t *Table) Authenticate(conn model.ConnID, username string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if prev, ok := t.byConn[conn]; ok && prev != username {
		delete(t.byUser, prev)
	}
	t.byConn[conn] = username
	t.byUser[username] = conn
}

// IsAuthenticated reports whether the connection has a live session
func (t *Table) IsAuthenticated(conn model.ConnID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.byConn[conn]
	return ok
}

// UsernameOf returns the username bound to the connection
func (t *Table) UsernameOf(conn model.ConnID) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	username, ok := t.byConn[conn]
	return username, ok
}

// ConnFor returns the live connection bound to the username
func (t *Table) ConnFor(username string) (model.ConnID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	conn, ok := t.byUser[username]
	return conn, ok
}

// Remove drops both directions of the mapping; called on disconnect
func (t *Table) Remove(conn model.ConnID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if username, ok := t.byConn[conn]; ok {
		delete(t.byUser, username)
		delete(t.byConn, conn)
	}
}
