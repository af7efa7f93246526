package websocket

import (
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/presenter"
)

const (
	actionGameState = "game:state"
	actionGameMove  = "game:move"
	actionGameKey   = "game:key"
	actionGameReset = "game:reset"
)

// Message is what a client sends. Payload stays loosely typed until the
// action handler decodes it into its own request type.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload,omitempty"`
}

type Response struct {
	Action  string                    `json:"action"`
	Payload *presenter.SessionPayload `json:"payload,omitempty"`
	Error   string                    `json:"error,omitempty"`
}

type movePayload struct {
	Cell *int `mapstructure:"cell"`
}

type keyPayload struct {
	Key string `mapstructure:"key"`
}
