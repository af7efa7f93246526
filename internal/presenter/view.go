// Package presenter turns engine snapshots and outcomes into what a frontend
// shows and plays: cell labels, the highlighted winning cells, the status
// message, the score line and a sound cue.
package presenter

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

const Instructions = "Tip: press 1-9 to play a cell or R to restart"

type View struct {
	Cells        [entity.BoardSize]string `json:"cells"`
	Highlight    [entity.BoardSize]bool   `json:"highlight"`
	Message      string                   `json:"message"`
	ScoreLine    string                   `json:"score_line"`
	Instructions string                   `json:"instructions"`
	Cue          Cue                      `json:"cue,omitempty"`
}

// Render builds the view of a state. The outcome is the result of the action
// that produced the state, or nil after a reset or a plain read.
func Render(state entity.State, score entity.Score, outcome *entity.Outcome) View {
	view := View{
		Message:      StatusMessage(state),
		ScoreLine:    ScoreLine(score),
		Instructions: Instructions,
	}

	for i, cell := range state.Board {
		view.Cells[i] = string(cell)
	}

	if state.WinLine != nil {
		for _, cell := range state.WinLine {
			view.Highlight[cell] = true
		}
	}

	if outcome != nil {
		view.Cue = CueFor(*outcome)
		if !outcome.IsAccepted() {
			view.Message = RejectionMessage(*outcome) + " " + view.Message
		}
	}

	return view
}

// RenderReset builds the view shown right after a new round was started.
func RenderReset(state entity.State, score entity.Score) View {
	view := Render(state, score, nil)
	view.Cue = CueReset

	return view
}

// StatusMessage is the turn or result line shown under the board.
func StatusMessage(state entity.State) string {
	if !state.IsFinished() {
		return fmt.Sprintf("Player %s's turn", state.Turn)
	}

	if state.Status == entity.StatusWon {
		return fmt.Sprintf("Player %s wins!", state.Winner)
	}

	return "It's a draw!"
}

func ScoreLine(score entity.Score) string {
	return fmt.Sprintf("Score: Player X %d | Player O %d", score.Of(entity.PlayerX), score.Of(entity.PlayerO))
}

func RejectionMessage(outcome entity.Outcome) string {
	switch {
	case errors.Is(outcome.Reason, apperror.ErrGameFinished):
		return "The round is over, press R to play again."
	case errors.Is(outcome.Reason, apperror.ErrCellOccupied):
		return fmt.Sprintf("Cell %d is taken.", outcome.Cell+1)
	case errors.Is(outcome.Reason, apperror.ErrInvalidCell):
		return "Pick a cell from 1 to 9."
	default:
		return "Move rejected."
	}
}
