package terminal

import (
	"fmt"
	"io"
	"time"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/presenter"
)

const bellChar = "\a"

// Bell plays cues on the terminal bell, one ring per tone. A terminal has
// no pitch control, so only the rhythm of a cue survives.
type Bell struct {
	out   io.Writer
	sleep func(time.Duration)
}

// NewBell rings on out. A nil out gives a muted bell.
func NewBell(out io.Writer) *Bell {
	return &Bell{
		out:   out,
		sleep: time.Sleep,
	}
}

func (that *Bell) Play(cue presenter.Cue) error {
	if that.out == nil {
		return nil
	}

	for i, tone := range cue.Tones() {
		if i > 0 {
			that.sleep(tone.Duration)
		}

		if _, err := io.WriteString(that.out, bellChar); err != nil {
			return fmt.Errorf("failed to ring bell: %w", err)
		}
	}

	return nil
}
