// Package protocol defines the line-oriented wire format: newline-delimited
// ASCII messages with colon-separated fields and no escaping.
package protocol

import (
	"fmt"
	"strings"
)

// Client-to-server commands, matched against the exact first field of a line
const (
	CmdLogin    = "LOGIN"
	CmdRegister = "REGISTER"
	CmdRoomList = "ROOMLIST"
	CmdCreate   = "CREATE"
	CmdJoin     = "JOIN"
	CmdPlace    = "PLACE"
	CmdForfeit  = "FORFEIT"
)

// Room access modes for ROOMLIST and JOIN
const (
	ModePlayer = "PLAYER"
	ModeViewer = "VIEWER"
)

// Standalone server responses
const (
	MsgBadAuth = "BADAUTH"
	MsgNoRoom  = "NOROOM"
)

// LOGIN acknowledgment codes
const (
	LoginOK            = 0
	LoginUnknownUser   = 1
	LoginWrongPassword = 2
	LoginMalformed     = 3
)

// REGISTER acknowledgment codes
const (
	RegisterOK        = 0
	RegisterExists    = 1
	RegisterMalformed = 2
)

// ROOMLIST acknowledgment codes
const (
	RoomListOK      = 0
	RoomListBadMode = 1
)

// CREATE acknowledgment codes
const (
	CreateOK        = 0
	CreateBadName   = 1
	CreateExists    = 2
	CreateFull      = 3
	CreateMalformed = 4
)

// JOIN acknowledgment codes
const (
	JoinOK         = 0
	JoinNoSuchRoom = 1
	JoinRoomFull   = 2
	JoinMalformed  = 3
)

// GAMEEND outcome codes
const (
	EndWin     = 0
	EndDraw    = 1
	EndForfeit = 2
)

// Fields splits a trimmed line into its colon-separated fields
func Fields(line string) []string {
	return strings.Split(strings.TrimSpace(line), ":")
}

// Command returns the exact first field of a line
func Command(line string) string {
	return Fields(line)[0]
}

// ValidMode reports whether s is a recognised room access mode
func ValidMode(s string) bool {
	return s == ModePlayer || s == ModeViewer
}

// Ack formats a command acknowledgment with a numeric status code
func Ack(cmd string, code int) string {
	return fmt.Sprintf("%s:ACKSTATUS:%d", cmd, code)
}

// RoomList formats a successful ROOMLIST response with the given names
func RoomList(names []string) string {
	return fmt.Sprintf("%s:ACKSTATUS:%d:%s", CmdRoomList, RoomListOK, strings.Join(names, ","))
}

// Begin announces the start of a match to players and viewers
func Begin(player1, player2 string) string {
	return fmt.Sprintf("BEGIN:%s:%s", player1, player2)
}

// InProgress is the snapshot sent to a viewer joining a commenced match
func InProgress(currentTurn, other string) string {
	return fmt.Sprintf("INPROGRESS:%s:%s", currentTurn, other)
}

// BoardStatus carries the board after a non-terminal move
func BoardStatus(board string) string {
	return fmt.Sprintf("BOARDSTATUS:%s", board)
}

// GameEndWin announces a win by winner
func GameEndWin(board, winner string) string {
	return fmt.Sprintf("GAMEEND:%s:%d:%s", board, EndWin, winner)
}

// GameEndDraw announces a draw
func GameEndDraw(board string) string {
	return fmt.Sprintf("GAMEEND:%s:%d", board, EndDraw)
}

// GameEndForfeit announces a forfeit in favour of winner
func GameEndForfeit(board, winner string) string {
	return fmt.Sprintf("GAMEEND:%s:%d:%s", board, EndForfeit, winner)
}
