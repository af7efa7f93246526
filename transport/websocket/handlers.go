package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/keymap"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/presenter"
)

var errQuit = errors.New("client asked to quit")

// requestError is a problem with what the client sent. Its text goes back to
// the client as is.
type requestError struct {
	err error
}

func (that *requestError) Error() string {
	return that.err.Error()
}

func (that *requestError) Unwrap() error {
	return that.err
}

func badRequest(format string, args ...any) error {
	return &requestError{err: fmt.Errorf(format, args...)}
}

func (that *Server) handleGameState(ctx context.Context, sessionID string, _ *Message) (*presenter.SessionPayload, error) {
	session, err := that.gameUseCase.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	payload := presenter.NewSessionPayload(session, nil)

	return &payload, nil
}

func (that *Server) handleGameMove(ctx context.Context, sessionID string, msg *Message) (*presenter.SessionPayload, error) {
	var request movePayload
	if err := mapstructure.Decode(msg.Payload, &request); err != nil {
		return nil, badRequest("failed to decode payload: %w", err)
	}

	if request.Cell == nil {
		return nil, badRequest("cell is required")
	}

	return that.makeMove(ctx, sessionID, *request.Cell)
}

// handleGameKey takes a key exactly as the local keyboard frontend would:
// 1-9 plays a cell, r restarts and q closes the connection.
func (that *Server) handleGameKey(ctx context.Context, sessionID string, msg *Message) (*presenter.SessionPayload, error) {
	var request keyPayload
	if err := mapstructure.Decode(msg.Payload, &request); err != nil {
		return nil, badRequest("failed to decode payload: %w", err)
	}

	command, err := keymap.ParseString(request.Key)
	if err != nil {
		return nil, &requestError{err: err}
	}

	switch command.Action {
	case keymap.ActionMove:
		return that.makeMove(ctx, sessionID, command.Cell)
	case keymap.ActionReset:
		return that.handleGameReset(ctx, sessionID, msg)
	default:
		return nil, errQuit
	}
}

func (that *Server) handleGameReset(ctx context.Context, sessionID string, _ *Message) (*presenter.SessionPayload, error) {
	session, err := that.gameUseCase.Reset(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	payload := presenter.NewResetPayload(session)

	return &payload, nil
}

func (that *Server) makeMove(ctx context.Context, sessionID string, cell int) (*presenter.SessionPayload, error) {
	session, outcome, err := that.gameUseCase.MakeMove(ctx, sessionID, cell)
	if err != nil {
		return nil, err
	}

	payload := presenter.NewSessionPayload(session, &outcome)

	return &payload, nil
}
