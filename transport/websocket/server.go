package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/presenter"
	"github.com/rocketscienceinc/tictactoe-hotseat/transport/rest"
)

const writeWait = 10 * time.Second

type gameUseCase interface {
	GetSession(ctx context.Context, id string) (*entity.Session, error)
	MakeMove(ctx context.Context, id string, cell int) (*entity.Session, entity.Outcome, error)
	Reset(ctx context.Context, id string) (*entity.Session, error)
}

type authService interface {
	ParseToken(token string) (string, error)
}

type handlerFunc func(ctx context.Context, sessionID string, msg *Message) (*presenter.SessionPayload, error)

type Server struct {
	baseCtx     context.Context
	logger      *slog.Logger
	gameUseCase gameUseCase
	authService authService
	upgrader    websocket.Upgrader

	handlers map[string]handlerFunc
}

// New builds the websocket endpoint. An empty allowedOrigin accepts any origin.
// Open connections are closed with a going away frame once ctx is done.
func New(ctx context.Context, logger *slog.Logger, gameUseCase gameUseCase, authService authService, allowedOrigin string) *Server {
	server := &Server{
		baseCtx:     ctx,
		logger:      logger.With("component", "websocket_server"),
		gameUseCase: gameUseCase,
		authService: authService,
		upgrader: websocket.Upgrader{
			CheckOrigin: checkOrigin(allowedOrigin),
		},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionGameState] = server.handleGameState
	server.handlers[actionGameMove] = server.handleGameMove
	server.handlers[actionGameKey] = server.handleGameKey
	server.handlers[actionGameReset] = server.handleGameReset

	return server
}

// ServeHTTP authenticates the session and upgrades the connection. The token
// comes from the token query parameter, a bearer header or the session cookie.
func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	token := r.URL.Query().Get("token")
	if token == "" {
		token = rest.TokenFromRequest(r)
	}

	sessionID, err := that.authService.ParseToken(token)
	if err != nil {
		http.Error(w, apperror.ErrInvalidToken.Error(), http.StatusUnauthorized)
		return
	}

	if _, err = that.gameUseCase.GetSession(r.Context(), sessionID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		log.Error("failed to get session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	defer conn.Close()

	// deadlines left over from the http server must not cut the socket
	_ = conn.SetReadDeadline(time.Time{})

	log = log.With("sessionID", sessionID)
	log.Info("websocket connection established")

	done := make(chan struct{})
	defer close(done)

	go that.closeOnShutdown(conn, done)

	if err = that.handleMessages(r.Context(), conn, sessionID); err != nil {
		log.Info("websocket connection closed", "reason", err)
	}
}

func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn, sessionID string) error {
	log := that.logger.With("method", "handleMessages", "sessionID", sessionID)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var msg Message
		if err = json.Unmarshal(data, &msg); err != nil {
			log.Debug("failed to unmarshal message", "error", err)

			if err = that.writeResponse(conn, Response{Error: "message must be json"}); err != nil {
				return err
			}

			continue
		}

		response, err := that.dispatch(ctx, sessionID, &msg)
		if errors.Is(err, errQuit) {
			return that.writeClose(conn)
		}

		if err = that.writeResponse(conn, response); err != nil {
			return err
		}
	}
}

func (that *Server) dispatch(ctx context.Context, sessionID string, msg *Message) (Response, error) {
	handler, ok := that.handlers[msg.Action]
	if !ok {
		return Response{Action: msg.Action, Error: apperror.ErrUnknownAction.Error()}, nil
	}

	payload, err := handler(ctx, sessionID, msg)
	if errors.Is(err, errQuit) {
		return Response{}, err
	}

	if err != nil {
		return Response{Action: msg.Action, Error: that.errorMessage(err)}, nil
	}

	return Response{Action: msg.Action, Payload: payload}, nil
}

func (that *Server) errorMessage(err error) string {
	var requestErr *requestError

	switch {
	case errors.As(err, &requestErr):
		return requestErr.Error()
	case errors.Is(err, apperror.ErrNotFound):
		return "session not found"
	default:
		that.logger.Error("failed to handle message", "error", err)
		return "internal error"
	}
}

func (that *Server) writeResponse(conn *websocket.Conn, response Response) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return conn.WriteJSON(response)
}

func (that *Server) writeClose(conn *websocket.Conn) error {
	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")

	return conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(writeWait))
}

// closeOnShutdown tells the client the server is going away and closes the
// socket, which ends the read loop of the connection.
func (that *Server) closeOnShutdown(conn *websocket.Conn, done <-chan struct{}) {
	select {
	case <-done:
	case <-that.baseCtx.Done():
		message := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
		if err := conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(writeWait)); err != nil {
			that.logger.Debug("failed to write close message", "error", err)
		}

		_ = conn.Close()
	}
}

func checkOrigin(allowedOrigin string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if allowedOrigin == "" {
			return true
		}

		origin := r.Header.Get("Origin")

		return origin == "" || origin == allowedOrigin
	}
}
