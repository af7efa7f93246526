package terminal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nsf/termbox-go"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/keymap"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/presenter"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/tictactoe"
)

const topMargin = 1

// UI is the local hot-seat frontend: both players share one keyboard and
// one engine.
type UI struct {
	logger *slog.Logger
	engine *tictactoe.Engine
	bell   *Bell

	view presenter.View
}

func New(logger *slog.Logger, bell *Bell) *UI {
	engine := tictactoe.NewEngine()

	return &UI{
		logger: logger.With("component", "terminal_ui"),
		engine: engine,
		bell:   bell,
		view:   presenter.Render(engine.State(), engine.Score(), nil),
	}
}

func (that *UI) View() presenter.View {
	return that.view
}

// HandleKey applies one key press and reports whether the UI should keep
// running. Keys that map to nothing leave the view as it is.
func (that *UI) HandleKey(key termbox.Key, ch rune) bool {
	log := that.logger.With("method", "HandleKey")

	if key == termbox.KeyEsc || key == termbox.KeyCtrlC {
		return false
	}

	that.view.Cue = presenter.CueNone

	command, err := keymap.Parse(ch)
	if err != nil {
		log.Debug("key ignored", "key", key, "ch", ch)
		return true
	}

	switch command.Action {
	case keymap.ActionQuit:
		return false
	case keymap.ActionReset:
		that.engine.Reset()
		that.view = presenter.RenderReset(that.engine.State(), that.engine.Score())
	case keymap.ActionMove:
		outcome := that.engine.ApplyMove(command.Cell)
		if outcome.IsFinal() {
			log.Info("round finished", "outcome", outcome.Kind, "winner", outcome.Winner)
		}

		that.view = presenter.Render(that.engine.State(), that.engine.Score(), &outcome)
	}

	return true
}

// Run takes over the terminal until the players quit or ctx is done.
func (that *UI) Run(ctx context.Context) error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("failed to init terminal: %w", err)
	}
	defer termbox.Close()

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			termbox.Interrupt()
		case <-done:
		}
	}()

	that.logger.Info("terminal ui started")

	for {
		if err := that.draw(); err != nil {
			return err
		}

		if err := that.bell.Play(that.view.Cue); err != nil {
			that.logger.Warn("failed to play cue", "cue", that.view.Cue, "error", err)
		}

		switch event := termbox.PollEvent(); event.Type {
		case termbox.EventKey:
			if !that.HandleKey(event.Key, event.Ch) {
				return nil
			}
		case termbox.EventResize:
			that.view.Cue = presenter.CueNone
		case termbox.EventInterrupt:
			return nil
		case termbox.EventError:
			return fmt.Errorf("terminal event: %w", event.Err)
		default:
			that.view.Cue = presenter.CueNone
		}
	}
}

func (that *UI) draw() error {
	if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		return fmt.Errorf("failed to clear terminal: %w", err)
	}

	width, _ := termbox.Size()

	for y, line := range Layout(that.view) {
		x := (width - line.Width()) / 2
		if x < 0 {
			x = 0
		}

		for _, segment := range line {
			fg, bg := colors(segment.Style)
			for _, ch := range segment.Text {
				termbox.SetCell(x, y+topMargin, ch, fg, bg)
				x += runeWidth(ch)
			}
		}
	}

	if err := termbox.Flush(); err != nil {
		return fmt.Errorf("failed to flush terminal: %w", err)
	}

	return nil
}

func colors(style Style) (termbox.Attribute, termbox.Attribute) {
	switch style {
	case StyleHint:
		return termbox.ColorBlue, termbox.ColorDefault
	case StyleMark:
		return termbox.ColorDefault | termbox.AttrBold, termbox.ColorDefault
	case StyleHighlight:
		return termbox.ColorBlack | termbox.AttrBold, termbox.ColorGreen
	case StyleMessage:
		return termbox.ColorYellow, termbox.ColorDefault
	default:
		return termbox.ColorDefault, termbox.ColorDefault
	}
}
