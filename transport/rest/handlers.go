package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/presenter"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/service"
)

type Handlers interface {
	PingHandler(w http.ResponseWriter, _ *http.Request)

	RequireSession(next http.Handler) http.Handler

	CreateSession(w http.ResponseWriter, r *http.Request)
	EndSession(w http.ResponseWriter, r *http.Request)

	GetGame(w http.ResponseWriter, r *http.Request)
	MakeMove(w http.ResponseWriter, r *http.Request)
	Reset(w http.ResponseWriter, r *http.Request)
	GetScore(w http.ResponseWriter, r *http.Request)
}

type gameUseCase interface {
	CreateSession(ctx context.Context) (*entity.Session, error)
	GetSession(ctx context.Context, id string) (*entity.Session, error)
	EndSession(ctx context.Context, id string) error

	MakeMove(ctx context.Context, id string, cell int) (*entity.Session, entity.Outcome, error)
	Reset(ctx context.Context, id string) (*entity.Session, error)
}

type authService interface {
	GenerateToken(sessionID string) (string, error)
	ParseToken(token string) (string, error)
}

type ctxSessionKey struct{}

type errorResponse struct {
	Error string `json:"error"`
}

type scoreResponse struct {
	entity.Score
	Line string `json:"line"`
}

type handlers struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	authService authService
	cookieTTL   time.Duration
}

func NewHandlers(logger *slog.Logger, gameUseCase gameUseCase, authService authService, cookieTTL time.Duration) Handlers {
	return &handlers{
		logger:      logger.With("component", "rest_handlers"),
		gameUseCase: gameUseCase,
		authService: authService,
		cookieTTL:   cookieTTL,
	}
}

func (that *handlers) PingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

// RequireSession resolves the session token of the request and puts the
// session id into the request context.
func (that *handlers) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		if token == "" {
			that.writeError(w, apperror.ErrInvalidToken)
			return
		}

		sessionID, err := that.authService.ParseToken(token)
		if err != nil {
			that.writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), ctxSessionKey{}, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (that *handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "CreateSession")

	session, err := that.gameUseCase.CreateSession(r.Context())
	if err != nil {
		log.Error("failed to create session", "error", err)
		that.writeError(w, err)
		return
	}

	token, err := that.authService.GenerateToken(session.ID)
	if err != nil {
		log.Error("failed to generate session token", "error", err)
		that.writeError(w, err)
		return
	}

	that.setSessionCookie(w, token)

	that.writeJSON(w, http.StatusCreated, presenter.NewSessionPayload(session, nil))
}

func (that *handlers) EndSession(w http.ResponseWriter, r *http.Request) {
	if err := that.gameUseCase.EndSession(r.Context(), sessionIDFrom(r)); err != nil {
		that.writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     service.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	w.WriteHeader(http.StatusNoContent)
}

func (that *handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	session, err := that.gameUseCase.GetSession(r.Context(), sessionIDFrom(r))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, presenter.NewSessionPayload(session, nil))
}

// MakeMove plays the cell index (0-8) from the path. A rejected move still
// answers 200, the outcome says why it was rejected.
func (that *handlers) MakeMove(w http.ResponseWriter, r *http.Request) {
	cell, err := strconv.Atoi(chi.URLParam(r, "cell"))
	if err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cell must be a number"})
		return
	}

	session, outcome, err := that.gameUseCase.MakeMove(r.Context(), sessionIDFrom(r), cell)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.refreshSession(w, session.ID)

	that.writeJSON(w, http.StatusOK, presenter.NewSessionPayload(session, &outcome))
}

func (that *handlers) Reset(w http.ResponseWriter, r *http.Request) {
	session, err := that.gameUseCase.Reset(r.Context(), sessionIDFrom(r))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.refreshSession(w, session.ID)

	that.writeJSON(w, http.StatusOK, presenter.NewResetPayload(session))
}

func (that *handlers) GetScore(w http.ResponseWriter, r *http.Request) {
	session, err := that.gameUseCase.GetSession(r.Context(), sessionIDFrom(r))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, scoreResponse{
		Score: session.Score,
		Line:  presenter.ScoreLine(session.Score),
	})
}

// refreshSession reissues the token after a write, so the cookie lives as long
// as the stored session it points to.
func (that *handlers) refreshSession(w http.ResponseWriter, sessionID string) {
	token, err := that.authService.GenerateToken(sessionID)
	if err != nil {
		that.logger.Warn("failed to refresh session token", "sessionID", sessionID, "error", err)
		return
	}

	that.setSessionCookie(w, token)
}

func (that *handlers) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     service.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(that.cookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (that *handlers) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, apperror.ErrInvalidToken):
		status, message = http.StatusUnauthorized, apperror.ErrInvalidToken.Error()
	case errors.Is(err, apperror.ErrNotFound):
		status, message = http.StatusNotFound, "session not found"
	default:
		that.logger.Error("request failed", "error", err)
	}

	that.writeJSON(w, status, errorResponse{Error: message})
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

// TokenFromRequest reads the session token from a bearer header or from the
// session cookie.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[len("bearer "):])
	}

	if cookie, err := r.Cookie(service.SessionCookie); err == nil {
		return cookie.Value
	}

	return ""
}

func sessionIDFrom(r *http.Request) string {
	sessionID, _ := r.Context().Value(ctxSessionKey{}).(string)
	return sessionID
}
