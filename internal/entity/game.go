package entity

type Cell string

type Player string

type Status string

const (
	EmptyCell Cell = ""

	PlayerX Player = "X"
	PlayerO Player = "O"

	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusDrawn      Status = "drawn"
)

// BoardSize is the number of cells on the fixed 3x3 board.
const BoardSize = 9

// WinLine is a triple of cell indices that wins when uniformly marked.
type WinLine [3]int

// WinLines is ordered rows, columns, then the two diagonals. The first
// completed line in this order is the one reported.
var WinLines = [8]WinLine{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

func (that Cell) IsValid() bool {
	return that == EmptyCell || that == Cell(PlayerX) || that == Cell(PlayerO)
}

// Contains reports whether the line goes through the cell.
func (that WinLine) Contains(cell int) bool {
	for _, index := range that {
		if index == cell {
			return true
		}
	}
	return false
}

type Board [BoardSize]Cell

// FindWinLine returns the first line holding three equal non-empty marks.
func (that *Board) FindWinLine() (WinLine, bool) {
	for _, line := range WinLines {
		a, b, c := that[line[0]], that[line[1]], that[line[2]]
		if a != EmptyCell && a == b && b == c {
			return line, true
		}
	}

	return WinLine{}, false
}

func (that *Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}
	return true
}

// Count returns how many cells carry the given mark.
func (that *Board) Count(mark Cell) int {
	count := 0
	for _, cell := range that {
		if cell == mark {
			count++
		}
	}
	return count
}

// Score holds the number of rounds won by each player.
type Score struct {
	X int `json:"x"`
	O int `json:"o"`
}

func (that Score) Of(player Player) int {
	if player == PlayerO {
		return that.O
	}
	return that.X
}

// Add returns a copy of the score with one more win for the player.
func (that Score) Add(player Player) Score {
	switch player {
	case PlayerX:
		that.X++
	case PlayerO:
		that.O++
	}
	return that
}

// State is a read-only snapshot of a round.
type State struct {
	Board   Board    `json:"board"`
	Turn    Player   `json:"turn"`
	Status  Status   `json:"status"`
	Winner  Player   `json:"winner,omitempty"`
	WinLine *WinLine `json:"win_line,omitempty"`
}

func (that *State) IsFinished() bool {
	return that.Status == StatusWon || that.Status == StatusDrawn
}
