package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

// Engine owns one table: the board of the current round, whose turn it is and
// the score across rounds. It is not safe for concurrent use; callers serialise
// access.
type Engine struct {
	board   entity.Board
	turn    entity.Player
	status  entity.Status
	winner  entity.Player
	winLine *entity.WinLine
	score   entity.Score
}

// NewEngine returns an engine with an empty board, X to move and a zero score.
func NewEngine() *Engine {
	engine := &Engine{}
	engine.Reset()

	return engine
}

// Restore rebuilds an engine from snapshots taken with State and Score.
func Restore(state entity.State, score entity.Score) (*Engine, error) {
	if err := validateSnapshot(state, score); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrCorruptState, err)
	}

	engine := &Engine{
		board:  state.Board,
		turn:   state.Turn,
		status: state.Status,
		winner: state.Winner,
		score:  score,
	}

	if state.WinLine != nil {
		line := *state.WinLine
		engine.winLine = &line
	}

	return engine, nil
}

// ApplyMove puts the current player's mark on the cell. Moves after the round
// ended, outside the board or onto an occupied cell are rejected and change
// nothing.
func (that *Engine) ApplyMove(cell int) entity.Outcome {
	if err := that.validateMove(cell); err != nil {
		return entity.Rejected(cell, err)
	}

	player := that.turn
	that.board[cell] = player.Mark()

	return that.updateGameStatus(cell, player)
}

// Reset starts a new round with X to move. The score is kept.
func (that *Engine) Reset() {
	that.board = entity.Board{}
	that.turn = entity.PlayerX
	that.status = entity.StatusInProgress
	that.winner = ""
	that.winLine = nil
}

func (that *Engine) Score() entity.Score {
	return that.score
}

func (that *Engine) State() entity.State {
	state := entity.State{
		Board:  that.board,
		Turn:   that.turn,
		Status: that.status,
		Winner: that.winner,
	}

	if that.winLine != nil {
		line := *that.winLine
		state.WinLine = &line
	}

	return state
}

// validateMove - checks if the move is valid.
func (that *Engine) validateMove(cell int) error {
	if that.status != entity.StatusInProgress {
		return apperror.ErrGameFinished
	}

	if cell < 0 || cell >= len(that.board) {
		return apperror.ErrInvalidCell
	}

	if that.board[cell] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	return nil
}

// updateGameStatus - checks the game status after a move. A win is checked
// before a full board so the last move of a full board can still win.
func (that *Engine) updateGameStatus(cell int, player entity.Player) entity.Outcome {
	if line, ok := that.board.FindWinLine(); ok {
		that.status = entity.StatusWon
		that.winner = player
		that.winLine = &line
		that.score = that.score.Add(player)

		reported := line

		return entity.Outcome{
			Kind:    entity.OutcomeWin,
			Cell:    cell,
			Player:  player,
			Winner:  player,
			WinLine: &reported,
		}
	}

	if that.board.IsFull() {
		that.status = entity.StatusDrawn

		return entity.Outcome{
			Kind:   entity.OutcomeDraw,
			Cell:   cell,
			Player: player,
		}
	}

	that.turn = player.Opponent()

	return entity.Outcome{
		Kind:   entity.OutcomeContinue,
		Cell:   cell,
		Player: player,
		Next:   that.turn,
	}
}
