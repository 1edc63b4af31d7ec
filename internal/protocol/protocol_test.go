package protocol

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ProtocolSuite struct {
	suite.Suite
}

func TestProtocolSuite(t *testing.T) {
	suite.Run(t, new(ProtocolSuite))
}

func (s *ProtocolSuite) TestFieldsSplitsOnColons() {
	s.Equal([]string{"LOGIN", "alice", "secret"}, Fields("LOGIN:alice:secret"))
}

func (s *ProtocolSuite) TestFieldsTrimsLineEndings() {
	s.Equal([]string{"FORFEIT"}, Fields("FORFEIT\r\n"))
}

func (s *ProtocolSuite) TestCommandIsExactFirstField() {
	s.Equal("JOIN", Command("JOIN:LOGIN:PLAYER"))
	s.Equal("CREATE", Command("CREATE:LOGIN"))
}

func (s *ProtocolSuite) TestValidMode() {
	s.True(ValidMode(ModePlayer))
	s.True(ValidMode(ModeViewer))
	s.False(ValidMode("OBSERVER"))
	s.False(ValidMode("player"))
}

func (s *ProtocolSuite) TestAck() {
	s.Equal("LOGIN:ACKSTATUS:0", Ack(CmdLogin, LoginOK))
	s.Equal("CREATE:ACKSTATUS:4", Ack(CmdCreate, CreateMalformed))
}

func (s *ProtocolSuite) TestRoomList() {
	s.Equal("ROOMLIST:ACKSTATUS:0:alpha,beta", RoomList([]string{"alpha", "beta"}))
	s.Equal("ROOMLIST:ACKSTATUS:0:", RoomList(nil))
}

func (s *ProtocolSuite) TestBroadcastMessages() {
	s.Equal("BEGIN:alice:bob", Begin("alice", "bob"))
	s.Equal("INPROGRESS:alice:bob", InProgress("alice", "bob"))
	s.Equal("BOARDSTATUS:120000000", BoardStatus("120000000"))
}

func (s *ProtocolSuite) TestGameEndMessages() {
	s.Equal("GAMEEND:111220000:0:alice", GameEndWin("111220000", "alice"))
	s.Equal("GAMEEND:121122211:1", GameEndDraw("121122211"))
	s.Equal("GAMEEND:000000000:2:bob", GameEndForfeit("000000000", "bob"))
}
