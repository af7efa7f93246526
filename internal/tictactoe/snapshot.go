package tictactoe

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

var (
	errUnknownMark   = errors.New("unknown mark")
	errUnknownStatus = errors.New("unknown status")
	errNegativeScore = errors.New("negative score")
	errMarkCount     = errors.New("mark counts do not match the turn")
	errStatusBoard   = errors.New("status does not match the board")
)

// validateSnapshot checks that a stored round could have been produced by
// play starting with X.
func validateSnapshot(state entity.State, score entity.Score) error {
	if score.X < 0 || score.O < 0 {
		return errNegativeScore
	}

	for i, cell := range state.Board {
		if !cell.IsValid() {
			return fmt.Errorf("%w %q at cell %d", errUnknownMark, cell, i)
		}
	}

	if !state.Turn.IsValid() {
		return fmt.Errorf("%w %q for turn", errUnknownMark, state.Turn)
	}

	xCount := state.Board.Count(entity.PlayerX.Mark())
	oCount := state.Board.Count(entity.PlayerO.Mark())
	line, won := state.Board.FindWinLine()

	switch state.Status {
	case entity.StatusInProgress:
		if won || state.Board.IsFull() || state.Winner != "" || state.WinLine != nil {
			return errStatusBoard
		}
		// X moves when both have the same number of marks.
		if (state.Turn == entity.PlayerX) != (xCount == oCount) || xCount-oCount < 0 || xCount-oCount > 1 {
			return errMarkCount
		}
	case entity.StatusWon:
		if !won || state.WinLine == nil || *state.WinLine != line || state.Winner != state.Turn {
			return errStatusBoard
		}
		if state.Board[line[0]] != state.Winner.Mark() {
			return errStatusBoard
		}
		// The winner made the last move.
		if (state.Winner == entity.PlayerX && xCount != oCount+1) || (state.Winner == entity.PlayerO && xCount != oCount) {
			return errMarkCount
		}
	case entity.StatusDrawn:
		if won || !state.Board.IsFull() || state.Winner != "" || state.WinLine != nil {
			return errStatusBoard
		}
		if state.Turn != entity.PlayerX || xCount != oCount+1 {
			return errMarkCount
		}
	default:
		return fmt.Errorf("%w %q", errUnknownStatus, state.Status)
	}

	return nil
}
