package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

const maxUpdateRetries = 50

var (
	ErrSessionNotFound = fmt.Errorf("session %w", apperror.ErrNotFound)
	ErrUpdateConflict  = errors.New("session kept changing during update")
)

// UpdateFunc changes a loaded session in place and reports whether it should
// be written back. It may run more than once for one UpdateByID call.
type UpdateFunc = func(session *entity.Session) (bool, error)

type SessionRepository interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error

	// UpdateByID runs update on the stored session and saves the result
	// atomically: no other write to the session lands between the read and
	// the save.
	UpdateByID(ctx context.Context, id string, update UpdateFunc) (*entity.Session, error)
}

type dbSession struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository stores sessions in redis. Every write pushes the
// expiry ttl into the future; a zero ttl keeps sessions until deleted.
func NewSessionRepository(client *redis.Client, ttl time.Duration) SessionRepository {
	return &dbSession{
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(id string) string {
	return "session:" + id
}

func (that *dbSession) CreateOrUpdate(ctx context.Context, session *entity.Session) error {
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}

	err = that.client.Set(ctx, sessionKey(session.ID), sessionJSON, that.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	return nil
}

func (that *dbSession) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	response, err := that.client.Get(ctx, sessionKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	var existingSession entity.Session
	if err = json.Unmarshal([]byte(response), &existingSession); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &existingSession, nil
}

func (that *dbSession) DeleteByID(ctx context.Context, id string) error {
	deleted, err := that.client.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session by id: %w", err)
	}

	if deleted == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// UpdateByID watches the session key and retries the whole read-update-save
// when another client wrote the key in between.
func (that *dbSession) UpdateByID(ctx context.Context, id string, update UpdateFunc) (*entity.Session, error) {
	key := sessionKey(id)

	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		var updated *entity.Session

		err := that.client.Watch(ctx, func(tx *redis.Tx) error {
			response, err := tx.Get(ctx, key).Result()
			if errors.Is(err, redis.Nil) {
				return ErrSessionNotFound
			}

			if err != nil {
				return fmt.Errorf("failed to get session by id: %w", err)
			}

			var session entity.Session
			if err = json.Unmarshal([]byte(response), &session); err != nil {
				return fmt.Errorf("failed to unmarshal session: %w", err)
			}

			changed, err := update(&session)
			if err != nil {
				return err
			}

			updated = &session

			if !changed {
				return nil
			}

			sessionJSON, err := json.Marshal(&session)
			if err != nil {
				return fmt.Errorf("could not marshal session: %w", err)
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, sessionJSON, that.ttl)
				return nil
			})

			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		if err != nil {
			return nil, err
		}

		return updated, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUpdateConflict, id)
}
