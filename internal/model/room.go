package model

// Room represents a single match container: up to two players, any number of
// viewers, and the board/turn state once the match has commenced
type Room struct {
	Name string

	// Players in join order; index 0 is the creator and plays MarkCross
	Players []ConnID

	// Viewers observe broadcasts but never hold a turn
	Viewers map[ConnID]struct{}

	// Commenced flips to true exactly when the second player joins
	Commenced bool

	Board Board

	// CurrentTurn is the username of the turn-holder; meaningful only once commenced
	CurrentTurn string
}

// NewRoom creates a room with the creator as its sole player
func NewRoom(name string, creator ConnID) *Room {
	return &Room{
		Name:    name,
		Players: []ConnID{creator},
		Viewers: make(map[ConnID]struct{}),
		Board:   NewBoard(),
	}
}

// HasPlayer reports whether the connection is one of the room's players
func (r *Room) HasPlayer(id ConnID) bool {
	for _, p := range r.Players {
		if p == id {
			return true
		}
	}
	return false
}

// OtherPlayer returns the player connection that is not id.
// Defined only for commenced rooms, which always hold exactly two players.
func (r *Room) OtherPlayer(id ConnID) ConnID {
	if r.Players[0] == id {
		return r.Players[1]
	}
	return r.Players[0]
}

// MarkOf returns the mark the given player connection places with
func (r *Room) MarkOf(id ConnID) Mark {
	if r.Players[0] == id {
		return MarkCross
	}
	return MarkNought
}
