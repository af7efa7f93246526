package keymap

import (
	"errors"
	"fmt"
)

var ErrUnmappedKey = errors.New("key is not mapped")

type Action string

const (
	ActionMove  Action = "move"
	ActionReset Action = "reset"
	ActionQuit  Action = "quit"
)

// Command is what a key press asks the game to do. Cell is only meaningful
// for ActionMove.
type Command struct {
	Action Action
	Cell   int
}

// Parse maps the number keys 1-9 onto cells 0-8, r/R onto a new round and
// q/Q onto quitting.
func Parse(key rune) (Command, error) {
	switch {
	case key >= '1' && key <= '9':
		return Command{Action: ActionMove, Cell: int(key - '1')}, nil
	case key == 'r' || key == 'R':
		return Command{Action: ActionReset}, nil
	case key == 'q' || key == 'Q':
		return Command{Action: ActionQuit}, nil
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnmappedKey, key)
	}
}

// ParseString is Parse for frontends that deliver keys as strings.
func ParseString(key string) (Command, error) {
	runes := []rune(key)
	if len(runes) != 1 {
		return Command{}, fmt.Errorf("%w: %q", ErrUnmappedKey, key)
	}

	return Parse(runes[0])
}
