package model

// BoardSize is the grid dimension; the game is always played on a 3x3 board.
const BoardSize = 3

// Mark is a single cell value on the wire ('0' empty, '1' player 0, '2' player 1)
type Mark = byte

const (
	MarkEmpty  Mark = '0'
	MarkCross  Mark = '1' // player 0
	MarkNought Mark = '2' // player 1
)

// Board is the 9-cell game grid in row-major order, using wire encoding directly
type Board [BoardSize * BoardSize]byte

// NewBoard returns an all-empty board
func NewBoard() Board {
	var b Board
	for i := range b {
		b[i] = MarkEmpty
	}
	return b
}

// Cell returns the mark at column x, row y
func (b Board) Cell(x, y int) Mark {
	return b[y*BoardSize+x]
}

// Set places a mark at column x, row y.
// Range and occupancy checks are the caller's responsibility: the protocol
// contract makes coordinate validation the submitting client's job.
func (b *Board) Set(x, y int, m Mark) {
	b[y*BoardSize+x] = m
}

// Wins reports whether any full row, column or diagonal is uniformly m
func (b Board) Wins(m Mark) bool {
	for i := 0; i < BoardSize; i++ {
		if b.Cell(0, i) == m && b.Cell(1, i) == m && b.Cell(2, i) == m {
			return true
		}
		if b.Cell(i, 0) == m && b.Cell(i, 1) == m && b.Cell(i, 2) == m {
			return true
		}
	}
	if b.Cell(0, 0) == m && b.Cell(1, 1) == m && b.Cell(2, 2) == m {
		return true
	}
	return b.Cell(0, 2) == m && b.Cell(1, 1) == m && b.Cell(2, 0) == m
}

// IsDraw reports whether every cell is filled and neither mark wins
func (b Board) IsDraw() bool {
	for _, c := range b {
		if c == MarkEmpty {
			return false
		}
	}
	return !b.Wins(MarkCross) && !b.Wins(MarkNought)
}

// String returns the 9-character wire encoding of the board
func (b Board) String() string {
	return string(b[:])
}
