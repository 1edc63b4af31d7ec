package server

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/tictacgame-go/internal/model"
	"github.com/mcoot/tictacgame-go/internal/protocol"
	"github.com/mcoot/tictacgame-go/internal/services/credentials"
	"github.com/mcoot/tictacgame-go/internal/services/room"
	"github.com/mcoot/tictacgame-go/internal/services/session"
)

// Dispatcher parses inbound lines into commands, invokes the registries and
// formats the responses. Commands are matched against the exact first field
// of the line, so a room named after a command cannot misroute a message.
type Dispatcher struct {
	creds    *credentials.Service
	sessions *session.Table
	rooms    *room.Registry
	sender   room.Sender
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher over the given services
func NewDispatcher(
	creds *credentials.Service,
	sessions *session.Table,
	rooms *room.Registry,
	sender room.Sender,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		creds:    creds,
		sessions: sessions,
		rooms:    rooms,
		sender:   sender,
		logger:   logger,
	}
}

// Dispatch processes one complete inbound line to completion. A non-nil
// error is fatal to the serving process (currently only a failed durable
// write during registration).
func (d *Dispatcher) Dispatch(ctx context.Context, conn model.ConnID, line string) error {
	// Connections watching a match as viewers are muted
	if d.rooms.IsViewer(conn) {
		return nil
	}

	switch protocol.Command(line) {
	case protocol.CmdLogin:
		d.handleLogin(conn, line)
	case protocol.CmdRegister:
		return d.handleRegister(ctx, conn, line)
	case protocol.CmdRoomList:
		d.handleRoomList(conn, line)
	case protocol.CmdCreate:
		d.handleCreate(conn, line)
	case protocol.CmdJoin:
		d.handleJoin(conn, line)
	case protocol.CmdPlace:
		d.handlePlace(conn, line)
	case protocol.CmdForfeit:
		d.handleForfeit(conn)
	default:
		d.logger.Debug("ignoring unknown command", slog.Uint64("conn", uint64(conn)))
	}
	return nil
}

// Disconnected runs the registry-side cleanup for a dropped connection:
// forfeit effect for players, viewer-set and pending-queue removal, then
// session removal
func (d *Dispatcher) Disconnected(conn model.ConnID) {
	d.rooms.Disconnect(conn)
	d.sessions.Remove(conn)
}

func (d *Dispatcher) handleLogin(conn model.ConnID, line string) {
	fields := protocol.Fields(line)
	if len(fields) != 3 {
		d.sender.Send(conn, protocol.Ack(protocol.CmdLogin, protocol.LoginMalformed))
		return
	}
	username, secret := fields[1], fields[2]

	switch d.creds.Verify(username, secret) {
	case credentials.VerifyUnknownUser:
		d.sender.Send(conn, protocol.Ack(protocol.CmdLogin, protocol.LoginUnknownUser))
	case credentials.VerifyWrongPassword:
		d.sender.Send(conn, protocol.Ack(protocol.CmdLogin, protocol.LoginWrongPassword))
	case credentials.VerifyOK:
		// One live session per username: a second login from another
		// connection is refused with the closest existing failure code
		if other, ok := d.sessions.ConnFor(username); ok && other != conn {
			d.sender.Send(conn, protocol.Ack(protocol.CmdLogin, protocol.LoginWrongPassword))
			d.logger.Warn("refused duplicate login", slog.String("username", username))
			return
		}
		d.sender.Send(conn, protocol.Ack(protocol.CmdLogin, protocol.LoginOK))
		d.sessions.Authenticate(conn, username)
		d.logger.Info("user logged in", slog.String("username", username))
	}
}

func (d *Dispatcher) handleRegister(ctx context.Context, conn model.ConnID, line string) error {
	fields := protocol.Fields(line)
	if len(fields) != 3 {
		d.sender.Send(conn, protocol.Ack(protocol.CmdRegister, protocol.RegisterMalformed))
		return nil
	}

	err := d.creds.Register(ctx, fields[1], fields[2])
	switch {
	case errors.Is(err, model.ErrUserExists):
		d.sender.Send(conn, protocol.Ack(protocol.CmdRegister, protocol.RegisterExists))
	case err != nil:
		// Durable write failed: success must not be reported, and the
		// durability guarantee is gone. Fatal.
		return err
	default:
		d.sender.Send(conn, protocol.Ack(protocol.CmdRegister, protocol.RegisterOK))
	}
	return nil
}

func (d *Dispatcher) handleRoomList(conn model.ConnID, line string) {
	if !d.sessions.IsAuthenticated(conn) {
		d.sender.Send(conn, protocol.MsgBadAuth)
		return
	}

	fields := protocol.Fields(line)
	if len(fields) != 2 || !protocol.ValidMode(fields[1]) {
		d.sender.Send(conn, protocol.Ack(protocol.CmdRoomList, protocol.RoomListBadMode))
		return
	}

	d.sender.Send(conn, protocol.RoomList(d.rooms.List(fields[1])))
}

func (d *Dispatcher) handleCreate(conn model.ConnID, line string) {
	if !d.sessions.IsAuthenticated(conn) {
		d.sender.Send(conn, protocol.MsgBadAuth)
		return
	}

	fields := protocol.Fields(line)
	if len(fields) != 2 {
		d.sender.Send(conn, protocol.Ack(protocol.CmdCreate, protocol.CreateMalformed))
		return
	}

	switch err := d.rooms.Create(conn, fields[1]); {
	case errors.Is(err, model.ErrBadRoomName):
		d.sender.Send(conn, protocol.Ack(protocol.CmdCreate, protocol.CreateBadName))
	case errors.Is(err, model.ErrRoomExists):
		d.sender.Send(conn, protocol.Ack(protocol.CmdCreate, protocol.CreateExists))
	case errors.Is(err, model.ErrRegistryFull):
		d.sender.Send(conn, protocol.Ack(protocol.CmdCreate, protocol.CreateFull))
	default:
		d.sender.Send(conn, protocol.Ack(protocol.CmdCreate, protocol.CreateOK))
	}
}

func (d *Dispatcher) handleJoin(conn model.ConnID, line string) {
	if !d.sessions.IsAuthenticated(conn) {
		d.sender.Send(conn, protocol.MsgBadAuth)
		return
	}

	fields := protocol.Fields(line)
	if len(fields) != 3 || !protocol.ValidMode(fields[2]) {
		d.sender.Send(conn, protocol.Ack(protocol.CmdJoin, protocol.JoinMalformed))
		return
	}

	// The registry sends the success acknowledgment itself, ahead of any
	// INPROGRESS or BEGIN broadcast triggered by the join
	switch err := d.rooms.Join(conn, fields[1], fields[2]); {
	case errors.Is(err, model.ErrRoomNotFound):
		d.sender.Send(conn, protocol.Ack(protocol.CmdJoin, protocol.JoinNoSuchRoom))
	case errors.Is(err, model.ErrRoomFull):
		d.sender.Send(conn, protocol.Ack(protocol.CmdJoin, protocol.JoinRoomFull))
	}
}

func (d *Dispatcher) handlePlace(conn model.ConnID, line string) {
	if !d.sessions.IsAuthenticated(conn) {
		d.sender.Send(conn, protocol.MsgBadAuth)
		return
	}

	if errors.Is(d.rooms.Place(conn, line), model.ErrNotInRoom) {
		d.sender.Send(conn, protocol.MsgNoRoom)
	}
}

func (d *Dispatcher) handleForfeit(conn model.ConnID) {
	if !d.sessions.IsAuthenticated(conn) {
		d.sender.Send(conn, protocol.MsgBadAuth)
		return
	}

	if errors.Is(d.rooms.Forfeit(conn), model.ErrNotInRoom) {
		d.sender.Send(conn, protocol.MsgNoRoom)
	}
}
