package room

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tictacgame-go/internal/model"
	"github.com/mcoot/tictacgame-go/internal/protocol"
	"github.com/mcoot/tictacgame-go/internal/services/pending"
	"github.com/mcoot/tictacgame-go/internal/services/session"
	"github.com/mcoot/tictacgame-go/internal/testutil"
)

// captureSender records every line sent, in order, per connection
type captureSender struct {
	lines map[model.ConnID][]string
}

func newCaptureSender() *captureSender {
	return &captureSender{lines: make(map[model.ConnID][]string)}
}

func (c *captureSender) Send(conn model.ConnID, line string) {
	c.lines[conn] = append(c.lines[conn], line)
}

type RegistrySuite struct {
	suite.Suite
	sessions *session.Table
	pending  *pending.Queue
	sender   *captureSender
	registry *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.sessions = session.NewTable()
	s.pending = pending.NewQueue()
	s.sender = newCaptureSender()
	s.registry = NewRegistry(s.sessions, s.pending, s.sender, testutil.NopLogger())
}

func (s *RegistrySuite) TestValidName() {
	s.True(ValidName("Room 1"))
	s.True(ValidName("a-b_c"))
	s.False(ValidName(""))
	s.False(ValidName("room!"))
	s.False(ValidName("this name is twenty-one"))
}

func (s *RegistrySuite) TestCreateChecksNameBeforeExistence() {
	s.Require().NoError(s.registry.Create(1, "room"))
	s.ErrorIs(s.registry.Create(1, "room"), model.ErrRoomExists)
	s.ErrorIs(s.registry.Create(1, "room!"), model.ErrBadRoomName)
}

func (s *RegistrySuite) TestCreateCapacity() {
	for i := 0; i < MaxRooms; i++ {
		s.Require().NoError(s.registry.Create(1, fmt.Sprintf("room %d", i)))
	}
	s.ErrorIs(s.registry.Create(1, "one too many"), model.ErrRegistryFull)

	// Invalid names and duplicates still get their own errors at capacity
	s.ErrorIs(s.registry.Create(1, "room!"), model.ErrBadRoomName)
	s.ErrorIs(s.registry.Create(1, "room 0"), model.ErrRoomExists)
}

func (s *RegistrySuite) TestListModes() {
	s.sessions.Authenticate(1, "alice")
	s.sessions.Authenticate(2, "bob")

	s.Require().NoError(s.registry.Create(1, "open"))
	s.Require().NoError(s.registry.Create(2, "full"))
	s.Require().NoError(s.registry.Join(1, "full", protocol.ModePlayer))

	s.Equal([]string{"open"}, s.registry.List(protocol.ModePlayer))
	s.Equal([]string{"open", "full"}, s.registry.List(protocol.ModeViewer))
}

func (s *RegistrySuite) TestJoinCommencesOnSecondPlayer() {
	s.sessions.Authenticate(1, "alice")
	s.sessions.Authenticate(2, "bob")

	s.Require().NoError(s.registry.Create(1, "room"))
	s.Require().NoError(s.registry.Join(2, "room", protocol.ModePlayer))

	// The joiner's ack precedes BEGIN on the same connection
	s.Equal([]string{
		protocol.Ack(protocol.CmdJoin, protocol.JoinOK),
		protocol.Begin("alice", "bob"),
	}, s.sender.lines[2])
	s.Equal([]string{protocol.Begin("alice", "bob")}, s.sender.lines[1])
}

func (s *RegistrySuite) TestJoinFullRoom() {
	s.sessions.Authenticate(1, "alice")
	s.sessions.Authenticate(2, "bob")

	s.Require().NoError(s.registry.Create(1, "room"))
	s.Require().NoError(s.registry.Join(2, "room", protocol.ModePlayer))

	s.ErrorIs(s.registry.Join(3, "room", protocol.ModePlayer), model.ErrRoomFull)
}

func (s *RegistrySuite) TestJoinUnknownRoom() {
	s.ErrorIs(s.registry.Join(1, "nowhere", protocol.ModePlayer), model.ErrRoomNotFound)
}

func (s *RegistrySuite) TestViewerJoiningLiveMatchGetsInProgress() {
	s.sessions.Authenticate(1, "alice")
	s.sessions.Authenticate(2, "bob")

	s.Require().NoError(s.registry.Create(1, "room"))
	s.Require().NoError(s.registry.Join(2, "room", protocol.ModePlayer))
	s.Require().NoError(s.registry.Join(3, "room", protocol.ModeViewer))

	s.True(s.registry.IsViewer(3))
	s.Equal([]string{
		protocol.Ack(protocol.CmdJoin, protocol.JoinOK),
		protocol.InProgress("alice", "bob"),
	}, s.sender.lines[3])
}

func (s *RegistrySuite) TestOutOfTurnMoveQueuedAndReplayed() {
	s.sessions.Authenticate(1, "alice")
	s.sessions.Authenticate(2, "bob")

	s.Require().NoError(s.registry.Create(1, "room"))
	s.Require().NoError(s.registry.Join(2, "room", protocol.ModePlayer))

	// bob moves out of turn; nothing visible happens yet
	s.Require().NoError(s.registry.Place(2, "PLACE:0:0"))
	s.NotContains(s.sender.lines[1], protocol.BoardStatus("200000000"))

	// alice's in-turn move applies, then bob's queued move replays
	s.Require().NoError(s.registry.Place(1, "PLACE:1:1"))
	s.Contains(s.sender.lines[1], protocol.BoardStatus("000010000"))
	s.Contains(s.sender.lines[1], protocol.BoardStatus("200010000"))
}

func (s *RegistrySuite) TestMovesBeforeCommencementReplayAfterBegin() {
	s.sessions.Authenticate(1, "alice")
	s.sessions.Authenticate(2, "bob")

	s.Require().NoError(s.registry.Create(1, "room"))
	s.Require().NoError(s.registry.Place(1, "PLACE:0:0"))

	s.Require().NoError(s.registry.Join(2, "room", protocol.ModePlayer))

	s.Equal([]string{
		protocol.Begin("alice", "bob"),
		protocol.BoardStatus("100000000"),
	}, s.sender.lines[1])
}

func (s *RegistrySuite) TestPlaceWithoutRoom() {
	s.sessions.Authenticate(1, "alice")
	s.ErrorIs(s.registry.Place(1, "PLACE:0:0"), model.ErrNotInRoom)
}

func (s *RegistrySuite) TestWinEndsMatchAndDelistsRoom() {
	s.sessions.Authenticate(1, "alice")
	s.sessions.Authenticate(2, "bob")

	s.Require().NoError(s.registry.Create(1, "room"))
	s.Require().NoError(s.registry.Join(2, "room", protocol.ModePlayer))

	s.Require().NoError(s.registry.Place(1, "PLACE:0:0"))
	s.Require().NoError(s.registry.Place(2, "PLACE:0:1"))
	s.Require().NoError(s.registry.Place(1, "PLACE:1:0"))
	s.Require().NoError(s.registry.Place(2, "PLACE:1:1"))
	s.Require().NoError(s.registry.Place(1, "PLACE:2:0"))

	end := protocol.GameEndWin("111220000", "alice")
	s.Contains(s.sender.lines[1], end)
	s.Contains(s.sender.lines[2], end)
	s.Empty(s.registry.List(protocol.ModeViewer))
}

func (s *RegistrySuite) TestDrawEndsMatch() {
	s.sessions.Authenticate(1, "alice")
	s.sessions.Authenticate(2, "bob")

	s.Require().NoError(s.registry.Create(1, "room"))
	s.Require().NoError(s.registry.Join(2, "room", protocol.ModePlayer))

	moves := []struct {
		conn model.ConnID
		x, y int
	}{
		{1, 0, 0}, {2, 1, 0}, {1, 2, 0},
		{2, 1, 1}, {1, 0, 1}, {2, 2, 1},
		{1, 1, 2}, {2, 0, 2}, {1, 2, 2},
	}
	for _, m := range moves {
		s.Require().NoError(s.registry.Place(m.conn, fmt.Sprintf("PLACE:%d:%d", m.x, m.y)))
	}

	s.Contains(s.sender.lines[1], protocol.GameEndDraw("121122211"))
	s.Empty(s.registry.List(protocol.ModeViewer))
}

func (s *RegistrySuite) TestUnparseableMoveDiscardedWithoutAdvancingTurn() {
	s.sessions.Authenticate(1, "alice")
	s.sessions.Authenticate(2, "bob")

	s.Require().NoError(s.registry.Create(1, "room"))
	s.Require().NoError(s.registry.Join(2, "room", protocol.ModePlayer))

	s.Require().NoError(s.registry.Place(1, "PLACE:zero:0"))
	s.Require().NoError(s.registry.Place(1, "PLACE:0:0"))

	s.Contains(s.sender.lines[1], protocol.BoardStatus("100000000"))
}

func (s *RegistrySuite) TestForfeitBeforeCommencementIsSilent() {
	s.sessions.Authenticate(1, "alice")

	s.Require().NoError(s.registry.Create(1, "room"))
	s.Require().NoError(s.registry.Forfeit(1))

	s.Empty(s.registry.List(protocol.ModeViewer))
	for _, lines := range s.sender.lines {
		for _, line := range lines {
			s.NotContains(line, "GAMEEND")
		}
	}
}

func (s *RegistrySuite) TestForfeitDuringMatchDeclaresOpponentWinner() {
	s.sessions.Authenticate(1, "alice")
	s.sessions.Authenticate(2, "bob")

	s.Require().NoError(s.registry.Create(1, "room"))
	s.Require().NoError(s.registry.Join(2, "room", protocol.ModePlayer))
	s.Require().NoError(s.registry.Join(3, "room", protocol.ModeViewer))

	s.Require().NoError(s.registry.Forfeit(2))

	end := protocol.GameEndForfeit("000000000", "alice")
	s.Contains(s.sender.lines[1], end)
	s.Contains(s.sender.lines[2], end)
	s.Contains(s.sender.lines[3], end)
	s.Empty(s.registry.List(protocol.ModeViewer))
}

func (s *RegistrySuite) TestForfeitWithoutRoom() {
	s.ErrorIs(s.registry.Forfeit(1), model.ErrNotInRoom)
}

func (s *RegistrySuite) TestDisconnectForfeitsAndCleansUp() {
	s.sessions.Authenticate(1, "alice")
	s.sessions.Authenticate(2, "bob")

	s.Require().NoError(s.registry.Create(1, "room"))
	s.Require().NoError(s.registry.Join(2, "room", protocol.ModePlayer))
	s.pending.Enqueue(2, "PLACE:0:0")

	s.registry.Disconnect(2)

	s.Contains(s.sender.lines[1], protocol.GameEndForfeit("000000000", "alice"))
	s.Zero(s.pending.Len(2))
	s.Empty(s.registry.List(protocol.ModeViewer))
}

func (s *RegistrySuite) TestDisconnectRemovesViewer() {
	s.sessions.Authenticate(1, "alice")

	s.Require().NoError(s.registry.Create(1, "room"))
	s.Require().NoError(s.registry.Join(3, "room", protocol.ModeViewer))
	s.Require().True(s.registry.IsViewer(3))

	s.registry.Disconnect(3)
	s.False(s.registry.IsViewer(3))
}

func (s *RegistrySuite) TestSnapshot() {
	s.sessions.Authenticate(1, "alice")
	s.sessions.Authenticate(2, "bob")

	s.Require().NoError(s.registry.Create(1, "first"))
	s.Require().NoError(s.registry.Create(2, "second"))
	s.Require().NoError(s.registry.Join(2, "first", protocol.ModePlayer))
	s.Require().NoError(s.registry.Join(3, "first", protocol.ModeViewer))

	s.Equal([]Status{
		{Name: "first", Players: 2, Viewers: 1, Commenced: true},
		{Name: "second", Players: 1, Viewers: 0, Commenced: false},
	}, s.registry.Snapshot())
}
