package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/tictactoe"
)

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
	UpdateByID(ctx context.Context, id string, update func(session *entity.Session) (bool, error)) (*entity.Session, error)
}

// GameManager runs one engine per session. Every call loads the session,
// restores its engine, applies the operation and stores the result, so the
// engine itself never outlives a request. Calls on one session are
// serialised: in process by a per-session lock, across processes by the
// repository's atomic update.
type GameManager struct {
	logger      *slog.Logger
	sessionRepo sessionRepo
	locks       *sessionLocks

	newID func() string
	now   func() time.Time
}

func NewGameManager(logger *slog.Logger, sessionRepo sessionRepo) *GameManager {
	return &GameManager{
		logger:      logger.With("component", "game_manager"),
		sessionRepo: sessionRepo,
		locks:       newSessionLocks(),

		newID: uuid.NewString,
		now:   time.Now,
	}
}

// CreateSession opens a new table with a fresh round and a zero score.
func (that *GameManager) CreateSession(ctx context.Context) (*entity.Session, error) {
	engine := tictactoe.NewEngine()

	session := &entity.Session{
		ID:    that.newID(),
		Round: 1,
	}
	that.capture(session, engine)

	if err := that.updateSession(ctx, session); err != nil {
		return nil, err
	}

	that.logger.Info("session created", "sessionID", session.ID)

	return session, nil
}

func (that *GameManager) GetSession(ctx context.Context, id string) (*entity.Session, error) {
	return that.getSessionByID(ctx, id)
}

// MakeMove applies a move to the session's round. A rejected move is not an
// error: the session is returned unchanged together with the outcome.
func (that *GameManager) MakeMove(ctx context.Context, id string, cell int) (*entity.Session, entity.Outcome, error) {
	log := that.logger.With("method", "MakeMove", "sessionID", id)

	unlock := that.locks.lock(id)
	defer unlock()

	var outcome entity.Outcome

	session, err := that.updateSessionByID(ctx, id, func(_ *entity.Session, engine *tictactoe.Engine) bool {
		outcome = engine.ApplyMove(cell)
		return outcome.IsAccepted()
	})
	if err != nil {
		return nil, entity.Outcome{}, err
	}

	if !outcome.IsAccepted() {
		log.Debug("move rejected", "cell", cell, "reason", outcome.Reason)

		return session, outcome, nil
	}

	if outcome.IsFinal() {
		log.Info("round finished", "round", session.Round, "outcome", outcome.Kind, "winner", outcome.Winner)
	}

	return session, outcome, nil
}

// Reset starts the next round of a session. The score is kept.
func (that *GameManager) Reset(ctx context.Context, id string) (*entity.Session, error) {
	unlock := that.locks.lock(id)
	defer unlock()

	return that.updateSessionByID(ctx, id, func(session *entity.Session, engine *tictactoe.Engine) bool {
		engine.Reset()
		session.Round++

		return true
	})
}

func (that *GameManager) EndSession(ctx context.Context, id string) error {
	if err := that.sessionRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	that.logger.Info("session ended", "sessionID", id)

	return nil
}

// updateSessionByID restores the session's engine, lets apply change it and
// saves the session when apply reports a change.
func (that *GameManager) updateSessionByID(ctx context.Context, id string, apply func(session *entity.Session, engine *tictactoe.Engine) bool) (*entity.Session, error) {
	session, err := that.sessionRepo.UpdateByID(ctx, id, func(session *entity.Session) (bool, error) {
		engine, err := tictactoe.Restore(session.State, session.Score)
		if err != nil {
			return false, fmt.Errorf("failed to restore session %s: %w", id, err)
		}

		if !apply(session, engine) {
			return false, nil
		}

		that.capture(session, engine)

		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return session, nil
}

func (that *GameManager) capture(session *entity.Session, engine *tictactoe.Engine) {
	session.State = engine.State()
	session.Score = engine.Score()
	session.UpdatedAt = that.now().UTC()
}

func (that *GameManager) getSessionByID(ctx context.Context, id string) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

func (that *GameManager) updateSession(ctx context.Context, session *entity.Session) error {
	if err := that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}
