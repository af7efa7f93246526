package usecase

import (
	"context"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

// GameUseCase is the session-level game API the transports are written against.
type GameUseCase interface {
	CreateSession(ctx context.Context) (*entity.Session, error)
	GetSession(ctx context.Context, id string) (*entity.Session, error)
	EndSession(ctx context.Context, id string) error

	MakeMove(ctx context.Context, id string, cell int) (*entity.Session, entity.Outcome, error)
	Reset(ctx context.Context, id string) (*entity.Session, error)
}

var _ GameUseCase = (*GameManager)(nil)
