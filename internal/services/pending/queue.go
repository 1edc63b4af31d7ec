// Package pending buffers PLACE requests that arrive before it is legal to
// process them, to be replayed once the submitter's turn comes around.
package pending

import (
	"sync"

	"github.com/mcoot/tictacgame-go/internal/model"
)

// Queue is the per-connection FIFO of raw out-of-turn move lines
type Queue struct {
	mu     sync.Mutex
	byConn map[model.ConnID][]string
}

// NewQueue creates an empty pending-move queue
func NewQueue() *Queue {
	return &Queue{
		byConn: make(map[model.ConnID][]string),
	}
}

// Enqueue appends a raw move line to the connection's FIFO
func (q *Queue) Enqueue(conn model.ConnID, raw string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.byConn[conn] = append(q.byConn[conn], raw)
}

// Pop removes and returns the oldest queued line for the connection.
// The per-connection queue is deleted once it empties.
func (q *Queue) Pop(conn model.ConnID) (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	fifo := q.byConn[conn]
	if len(fifo) == 0 {
		return "", false
	}
	raw := fifo[0]
	if len(fifo) == 1 {
		delete(q.byConn, conn)
	} else {
		q.byConn[conn] = fifo[1:]
	}
	return raw, true
}

// Drop discards everything queued for the connection; called on disconnect
func (q *Queue) Drop(conn model.ConnID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.byConn, conn)
}

// Len returns the number of lines queued for the connection
func (q *Queue) Len(conn model.ConnID) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.byConn[conn])
}
