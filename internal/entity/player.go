package entity

// Mark returns the cell value a player writes on the board.
func (that Player) Mark() Cell {
	return Cell(that)
}

func (that Player) Opponent() Player {
	if that == PlayerX {
		return PlayerO
	}
	return PlayerX
}

func (that Player) IsValid() bool {
	return that == PlayerX || that == PlayerO
}
