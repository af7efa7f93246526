package entity

type OutcomeKind string

const (
	OutcomeContinue OutcomeKind = "continue"
	OutcomeWin      OutcomeKind = "win"
	OutcomeDraw     OutcomeKind = "draw"
	OutcomeRejected OutcomeKind = "rejected"
)

// Outcome describes what a single move did to the round.
//
// Player is the one who moved; Next is set only for OutcomeContinue, Winner and
// WinLine only for OutcomeWin. A rejected move carries the Reason and leaves the
// round untouched.
type Outcome struct {
	Kind    OutcomeKind `json:"kind"`
	Cell    int         `json:"cell"`
	Player  Player      `json:"player,omitempty"`
	Next    Player      `json:"next,omitempty"`
	Winner  Player      `json:"winner,omitempty"`
	WinLine *WinLine    `json:"win_line,omitempty"`
	Reason  error       `json:"-"`
}

func (that Outcome) IsAccepted() bool {
	return that.Kind != OutcomeRejected
}

func (that Outcome) IsFinal() bool {
	return that.Kind == OutcomeWin || that.Kind == OutcomeDraw
}

func Rejected(cell int, reason error) Outcome {
	return Outcome{
		Kind:   OutcomeRejected,
		Cell:   cell,
		Reason: reason,
	}
}
