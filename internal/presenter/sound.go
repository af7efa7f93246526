package presenter

import (
	"time"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

type Cue string

const (
	CueNone  Cue = ""
	CueMove  Cue = "move"
	CueWin   Cue = "win"
	CueReset Cue = "reset"
)

// Tone is one step of a cue: a pitch held for a duration.
type Tone struct {
	FrequencyHz int           `json:"frequency_hz"`
	Duration    time.Duration `json:"duration"`
}

var cueTones = map[Cue][]Tone{
	CueMove: {
		{FrequencyHz: 800, Duration: 100 * time.Millisecond},
	},
	CueWin: {
		{FrequencyHz: 600, Duration: 100 * time.Millisecond},
		{FrequencyHz: 800, Duration: 100 * time.Millisecond},
		{FrequencyHz: 1000, Duration: 100 * time.Millisecond},
	},
	CueReset: {
		{FrequencyHz: 800, Duration: 100 * time.Millisecond},
	},
}

// CueFor picks the sound for a move. Rejected moves are silent.
func CueFor(outcome entity.Outcome) Cue {
	switch outcome.Kind {
	case entity.OutcomeWin:
		return CueWin
	case entity.OutcomeContinue, entity.OutcomeDraw:
		return CueMove
	default:
		return CueNone
	}
}

// Tones returns a copy of the tone sequence of a cue.
func (that Cue) Tones() []Tone {
	tones := cueTones[that]
	if len(tones) == 0 {
		return nil
	}

	return append([]Tone(nil), tones...)
}
