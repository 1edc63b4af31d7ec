// Package room implements the named-room registry and the match state
// machine inside each room: turn order, move application, win/draw/forfeit
// resolution and the broadcasts those produce.
package room

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/mcoot/tictacgame-go/internal/model"
	"github.com/mcoot/tictacgame-go/internal/protocol"
	"github.com/mcoot/tictacgame-go/internal/services/pending"
	"github.com/mcoot/tictacgame-go/internal/services/session"
)

const (
	// MaxRooms caps the number of live rooms
	MaxRooms = 256
	// MaxNameLength caps the room name length
	MaxNameLength = 20
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9- _]+$`)

// ValidName reports whether name satisfies the room naming rules
func ValidName(name string) bool {
	return len(name) <= MaxNameLength && namePattern.MatchString(name)
}

// Sender delivers one protocol line to a connection. Delivery is best-effort:
// a failed send surfaces later as that connection's own disconnect and must
// not affect other recipients.
type Sender interface {
	Send(conn model.ConnID, line string)
}

// Status is a read-only snapshot of one room for the status API
type Status struct {
	Name      string `json:"name"`
	Players   int    `json:"players"`
	Viewers   int    `json:"viewers"`
	Commenced bool   `json:"commenced"`
}

// Registry owns all live rooms. All mutation arrives through the single
// dispatch goroutine; the lock exists so the status API can snapshot from
// its own goroutine.
type Registry struct {
	sessions *session.Table
	pending  *pending.Queue
	sender   Sender
	logger   *slog.Logger

	mu    sync.RWMutex
	rooms map[string]*model.Room
	order []string // insertion order, for listing
}

// NewRegistry creates an empty room registry
func NewRegistry(sessions *session.Table, pending *pending.Queue, sender Sender, logger *slog.Logger) *Registry {
	return &Registry{
		sessions: sessions,
		pending:  pending,
		sender:   sender,
		logger:   logger,
		rooms:    make(map[string]*model.Room),
	}
}

// Create makes a new room with the creator as sole player. Name validity is
// checked before existence, which is checked before capacity; the returned
// error decides the acknowledgment code, so the order matters.
func (r *Registry) Create(conn model.ConnID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !ValidName(name) {
		return model.ErrBadRoomName
	}
	if _, ok := r.rooms[name]; ok {
		return model.ErrRoomExists
	}
	if len(r.rooms) >= MaxRooms {
		return model.ErrRegistryFull
	}

	r.rooms[name] = model.NewRoom(name, conn)
	r.order = append(r.order, name)
	r.logger.Info("room created", slog.String("room", name))
	return nil
}

// List returns room names in creation order. PLAYER mode lists only rooms
// still joinable as a player; VIEWER mode lists every room.
func (r *Registry) List(mode string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.order))
	for _, name := range r.order {
		if mode == protocol.ModePlayer && len(r.rooms[name].Players) >= 2 {
			continue
		}
		names = append(names, name)
	}
	return names
}

// Join adds the connection to the room as a player or viewer.
// On success the JOIN acknowledgment is sent here rather than by the caller,
// so that it always precedes the INPROGRESS or BEGIN broadcast that may
// follow it on the same connection.
func (r *Registry) Join(conn model.ConnID, name, mode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[name]
	if !ok {
		return model.ErrRoomNotFound
	}

	if mode == protocol.ModePlayer {
		if len(rm.Players) >= 2 {
			return model.ErrRoomFull
		}
		if !rm.HasPlayer(conn) {
			rm.Players = append(rm.Players, conn)
		}
	} else {
		rm.Viewers[conn] = struct{}{}
	}

	r.sender.Send(conn, protocol.Ack(protocol.CmdJoin, protocol.JoinOK))

	if mode == protocol.ModeViewer && rm.Commenced {
		p0, _ := r.sessions.UsernameOf(rm.Players[0])
		other := p0
		if p0 == rm.CurrentTurn {
			other, _ = r.sessions.UsernameOf(rm.Players[1])
		}
		r.sender.Send(conn, protocol.InProgress(rm.CurrentTurn, other))
	}

	if !rm.Commenced && len(rm.Players) == 2 {
		r.commenceLocked(rm)
	}
	return nil
}

// commenceLocked starts the match once the second player has joined
func (r *Registry) commenceLocked(rm *model.Room) {
	player1, _ := r.sessions.UsernameOf(rm.Players[0])
	player2, _ := r.sessions.UsernameOf(rm.Players[1])

	rm.Board = model.NewBoard()
	rm.CurrentTurn = player1
	rm.Commenced = true
	r.broadcastLocked(rm, protocol.Begin(player1, player2))
	r.logger.Info("match commenced",
		slog.String("room", rm.Name),
		slog.String("player1", player1),
		slog.String("player2", player2))

	r.drainLocked(rm)
}

// Place processes a move request. If the submitter is not a player anywhere,
// ErrNotInRoom. If the match has not commenced or it is not the submitter's
// turn, the raw line is queued unvalidated and replayed later; otherwise the
// move is applied immediately.
func (r *Registry) Place(conn model.ConnID, raw string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm := r.roomWithPlayerLocked(conn)
	if rm == nil {
		return model.ErrNotInRoom
	}

	username, _ := r.sessions.UsernameOf(conn)
	if !rm.Commenced || rm.CurrentTurn != username {
		r.pending.Enqueue(conn, raw)
		return nil
	}

	if !r.applyMoveLocked(rm, conn, username, raw) {
		r.drainLocked(rm)
	}
	return nil
}

// applyMoveLocked mutates the board for an in-turn move and resolves the
// outcome. Returns true if the move ended the match (room deleted).
// Coordinates are trusted once it is the mover's turn; a line that does not
// parse is discarded without advancing the turn.
func (r *Registry) applyMoveLocked(rm *model.Room, conn model.ConnID, username, raw string) bool {
	fields := strings.Split(strings.TrimSpace(raw), ":")
	if len(fields) != 3 {
		r.logger.Warn("discarding unparseable move", slog.String("room", rm.Name))
		return false
	}
	x, errX := strconv.Atoi(fields[1])
	y, errY := strconv.Atoi(fields[2])
	if errX != nil || errY != nil {
		r.logger.Warn("discarding unparseable move", slog.String("room", rm.Name))
		return false
	}

	mark := rm.MarkOf(conn)
	rm.Board.Set(x, y, mark)
	board := rm.Board.String()

	if rm.Board.Wins(mark) {
		r.broadcastLocked(rm, protocol.GameEndWin(board, username))
		r.deleteRoomLocked(rm.Name)
		return true
	}
	if rm.Board.IsDraw() {
		r.broadcastLocked(rm, protocol.GameEndDraw(board))
		r.deleteRoomLocked(rm.Name)
		return true
	}

	rm.CurrentTurn, _ = r.sessions.UsernameOf(rm.OtherPlayer(conn))
	r.broadcastLocked(rm, protocol.BoardStatus(board))
	return false
}

// drainLocked replays queued moves for whichever player currently holds the
// turn, as a work list: each applied move flips the turn (or ends the match),
// and the loop then considers the new holder's queue. Iterative on purpose,
// so stack depth stays bounded regardless of queue depth.
func (r *Registry) drainLocked(rm *model.Room) {
	for {
		if _, ok := r.rooms[rm.Name]; !ok {
			return
		}
		holder, ok := r.sessions.ConnFor(rm.CurrentTurn)
		if !ok {
			return
		}
		raw, ok := r.pending.Pop(holder)
		if !ok {
			return
		}
		if r.applyMoveLocked(rm, holder, rm.CurrentTurn, raw) {
			return
		}
	}
}

// Forfeit resolves an explicit forfeit by a player.
// ErrNotInRoom if the connection is not a player of any room.
func (r *Registry) Forfeit(conn model.ConnID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm := r.roomWithPlayerLocked(conn)
	if rm == nil {
		return model.ErrNotInRoom
	}
	r.forfeitLocked(rm, conn)
	return nil
}

// forfeitLocked deletes the room; a commenced match first declares the other
// player the winner. A room that never commenced is removed silently.
func (r *Registry) forfeitLocked(rm *model.Room, conn model.ConnID) {
	if !rm.Commenced {
		r.deleteRoomLocked(rm.Name)
		return
	}

	winner, _ := r.sessions.UsernameOf(rm.OtherPlayer(conn))
	r.broadcastLocked(rm, protocol.GameEndForfeit(rm.Board.String(), winner))
	r.deleteRoomLocked(rm.Name)
	r.logger.Info("match forfeited",
		slog.String("room", rm.Name),
		slog.String("winner", winner))
}

// Disconnect applies the forfeit effect if the connection was a player, then
// removes it from every viewer set and drops its pending queue. Called for
// orderly closes and read errors alike.
func (r *Registry) Disconnect(conn model.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rm := r.roomWithPlayerLocked(conn); rm != nil {
		r.forfeitLocked(rm, conn)
	}
	for _, rm := range r.rooms {
		delete(rm.Viewers, conn)
	}
	r.pending.Drop(conn)
}

// IsViewer reports whether the connection sits in any room's viewer set
func (r *Registry) IsViewer(conn model.ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rm := range r.rooms {
		if _, ok := rm.Viewers[conn]; ok {
			return true
		}
	}
	return false
}

// Snapshot returns the current rooms in creation order for the status API
func (r *Registry) Snapshot() []Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Status, 0, len(r.order))
	for _, name := range r.order {
		rm := r.rooms[name]
		out = append(out, Status{
			Name:      rm.Name,
			Players:   len(rm.Players),
			Viewers:   len(rm.Viewers),
			Commenced: rm.Commenced,
		})
	}
	return out
}

func (r *Registry) roomWithPlayerLocked(conn model.ConnID) *model.Room {
	for _, name := range r.order {
		if rm := r.rooms[name]; rm.HasPlayer(conn) {
			return rm
		}
	}
	return nil
}

// broadcastLocked sends a line to every player, then every viewer
func (r *Registry) broadcastLocked(rm *model.Room, line string) {
	for _, p := range rm.Players {
		r.sender.Send(p, line)
	}
	for v := range rm.Viewers {
		r.sender.Send(v, line)
	}
}

func (r *Registry) deleteRoomLocked(name string) {
	delete(r.rooms, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}
