package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/repository"
	"github.com/rocketscienceinc/tictactoe-hotseat/testing/suite"
)

var errRedisDown = errors.New("redis down")

type mockSessionRepo struct {
	mock.Mock
}

func (that *mockSessionRepo) CreateOrUpdate(ctx context.Context, session *entity.Session) error {
	args := that.Called(ctx, session)
	return args.Error(0)
}

func (that *mockSessionRepo) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	args := that.Called(ctx, id)

	session, _ := args.Get(0).(*entity.Session)

	return session, args.Error(1)
}

func (that *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

// UpdateByID hands the stored session to update the way a repository does and
// routes the save through CreateOrUpdate, so tests set expectations on both.
func (that *mockSessionRepo) UpdateByID(ctx context.Context, id string, update func(*entity.Session) (bool, error)) (*entity.Session, error) {
	args := that.Called(ctx, id)
	if err := args.Error(1); err != nil {
		return nil, err
	}

	stored, _ := args.Get(0).(*entity.Session)
	session := *stored

	changed, err := update(&session)
	if err != nil {
		return nil, err
	}

	if changed {
		if err = that.CreateOrUpdate(ctx, &session); err != nil {
			return nil, err
		}
	}

	return &session, nil
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T) (*GameManager, *mockSessionRepo) {
	t.Helper()

	repo := &mockSessionRepo{}
	t.Cleanup(func() {
		repo.AssertExpectations(t)
	})

	manager := NewGameManager(suite.NewLogger(), repo)
	manager.newID = func() string { return "session-1" }
	manager.now = func() time.Time { return fixedNow }

	return manager, repo
}

func freshSession() *entity.Session {
	return &entity.Session{
		ID:    "session-1",
		State: entity.State{Turn: entity.PlayerX, Status: entity.StatusInProgress},
		Round: 1,
	}
}

func TestGameManager_CreateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a session with a fresh round", func(t *testing.T) {
		// Given: a repository that accepts the new session
		manager, repo := newTestManager(t)

		repo.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Session")).
			Return(nil).
			Once()

		// When: a session is created
		session, err := manager.CreateSession(ctx)

		// Then: it starts at round 1 with X to move and no score
		require.NoError(t, err)

		expected := &entity.Session{
			ID:        "session-1",
			State:     entity.State{Turn: entity.PlayerX, Status: entity.StatusInProgress},
			Round:     1,
			UpdatedAt: fixedNow,
		}
		assert.Equal(t, expected, session)
	})

	t.Run("Returns error if the repository fails", func(t *testing.T) {
		manager, repo := newTestManager(t)

		repo.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Session")).
			Return(errRedisDown).
			Once()

		session, err := manager.CreateSession(ctx)

		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, session)
	})

	t.Run("Uses a uuid by default", func(t *testing.T) {
		repo := &mockSessionRepo{}
		repo.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Session")).Return(nil).Once()

		session, err := NewGameManager(suite.NewLogger(), repo).CreateSession(ctx)

		require.NoError(t, err)
		assert.Len(t, session.ID, 36)
	})
}

func TestGameManager_MakeMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores an accepted move", func(t *testing.T) {
		// Given: a fresh session
		manager, repo := newTestManager(t)

		repo.On("UpdateByID", ctx, "session-1").Return(freshSession(), nil).Once()
		repo.On("CreateOrUpdate", ctx, mock.MatchedBy(func(s *entity.Session) bool {
			return s.State.Board[4] == entity.PlayerX.Mark() && s.State.Turn == entity.PlayerO
		})).Return(nil).Once()

		// When: X plays the centre
		session, outcome, err := manager.MakeMove(ctx, "session-1", 4)

		// Then: the move is accepted and stored
		require.NoError(t, err)
		assert.Equal(t, entity.OutcomeContinue, outcome.Kind)
		assert.Equal(t, entity.PlayerO, outcome.Next)
		assert.Equal(t, fixedNow, session.UpdatedAt)
	})

	t.Run("Rejected move is not stored", func(t *testing.T) {
		// Given: a session where X already holds the centre
		manager, repo := newTestManager(t)

		stored := freshSession()
		stored.State.Board[4] = entity.PlayerX.Mark()
		stored.State.Turn = entity.PlayerO

		repo.On("UpdateByID", ctx, "session-1").Return(stored, nil).Once()

		// When: O plays the centre
		session, outcome, err := manager.MakeMove(ctx, "session-1", 4)

		// Then: the outcome is rejected without an error and nothing is written
		require.NoError(t, err)
		assert.Equal(t, entity.OutcomeRejected, outcome.Kind)
		assert.ErrorIs(t, outcome.Reason, apperror.ErrCellOccupied)
		assert.Equal(t, stored, session)
		repo.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})

	t.Run("Winning move updates the score", func(t *testing.T) {
		// Given: X holds 0 and 1, O holds 3 and 4, X has won once before
		manager, repo := newTestManager(t)

		x, o := entity.PlayerX.Mark(), entity.PlayerO.Mark()
		stored := freshSession()
		stored.State.Board = entity.Board{x, x, "", o, o}
		stored.Score = entity.Score{X: 1}

		repo.On("UpdateByID", ctx, "session-1").Return(stored, nil).Once()
		repo.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Session")).Return(nil).Once()

		// When: X completes the top row
		session, outcome, err := manager.MakeMove(ctx, "session-1", 2)

		// Then: X wins and the stored score goes up
		require.NoError(t, err)
		assert.Equal(t, entity.OutcomeWin, outcome.Kind)
		assert.Equal(t, entity.Score{X: 2}, session.Score)
		assert.Equal(t, entity.StatusWon, session.State.Status)
	})

	t.Run("Error if the session does not exist", func(t *testing.T) {
		manager, repo := newTestManager(t)

		repo.On("UpdateByID", ctx, "missing").Return(nil, repository.ErrSessionNotFound).Once()

		session, _, err := manager.MakeMove(ctx, "missing", 0)

		require.ErrorIs(t, err, apperror.ErrNotFound)
		assert.Nil(t, session)
	})

	t.Run("Error if the stored round is corrupt", func(t *testing.T) {
		manager, repo := newTestManager(t)

		stored := freshSession()
		stored.State.Status = "paused"

		repo.On("UpdateByID", ctx, "session-1").Return(stored, nil).Once()

		_, _, err := manager.MakeMove(ctx, "session-1", 0)

		require.ErrorIs(t, err, apperror.ErrCorruptState)
	})

	t.Run("Error if the update fails", func(t *testing.T) {
		manager, repo := newTestManager(t)

		repo.On("UpdateByID", ctx, "session-1").Return(freshSession(), nil).Once()
		repo.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Session")).Return(errRedisDown).Once()

		session, _, err := manager.MakeMove(ctx, "session-1", 0)

		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, session)
	})
}

func TestGameManager_Reset(t *testing.T) {
	ctx := context.Background()

	t.Run("Starts the next round and keeps the score", func(t *testing.T) {
		// Given: a drawn round in a session with some score
		manager, repo := newTestManager(t)

		x, o := entity.PlayerX.Mark(), entity.PlayerO.Mark()
		stored := freshSession()
		stored.State = entity.State{
			Board:  entity.Board{x, x, o, o, o, x, x, o, x},
			Turn:   entity.PlayerX,
			Status: entity.StatusDrawn,
		}
		stored.Score = entity.Score{X: 3, O: 2}
		stored.Round = 6

		repo.On("UpdateByID", ctx, "session-1").Return(stored, nil).Once()
		repo.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Session")).Return(nil).Once()

		// When: the session is reset
		session, err := manager.Reset(ctx, "session-1")

		// Then: round 7 starts empty and the score is untouched
		require.NoError(t, err)
		assert.Equal(t, 7, session.Round)
		assert.Equal(t, entity.Board{}, session.State.Board)
		assert.Equal(t, entity.PlayerX, session.State.Turn)
		assert.Equal(t, entity.StatusInProgress, session.State.Status)
		assert.Equal(t, entity.Score{X: 3, O: 2}, session.Score)
	})

	t.Run("Error if the session does not exist", func(t *testing.T) {
		manager, repo := newTestManager(t)

		repo.On("UpdateByID", ctx, "missing").Return(nil, repository.ErrSessionNotFound).Once()

		session, err := manager.Reset(ctx, "missing")

		require.ErrorIs(t, err, repository.ErrSessionNotFound)
		assert.Nil(t, session)
	})
}

func TestGameManager_EndSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Deletes the session", func(t *testing.T) {
		manager, repo := newTestManager(t)

		repo.On("DeleteByID", ctx, "session-1").Return(nil).Once()

		require.NoError(t, manager.EndSession(ctx, "session-1"))
	})

	t.Run("Returns error if the session is unknown", func(t *testing.T) {
		manager, repo := newTestManager(t)

		repo.On("DeleteByID", ctx, "missing").Return(repository.ErrSessionNotFound).Once()

		err := manager.EndSession(ctx, "missing")

		require.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestGameManager_WithMemoryRepository(t *testing.T) {
	ctx := context.Background()

	// Given: a manager backed by the in-memory repository
	manager := NewGameManager(suite.NewLogger(), repository.NewMemorySessionRepository(time.Hour))

	session, err := manager.CreateSession(ctx)
	require.NoError(t, err)

	// When: X wins the first round and a second round is started
	var outcome entity.Outcome
	for _, cell := range []int{0, 3, 1, 4, 2} {
		_, outcome, err = manager.MakeMove(ctx, session.ID, cell)
		require.NoError(t, err)
	}

	_, err = manager.Reset(ctx, session.ID)
	require.NoError(t, err)

	// Then: the stored session carries the win into round 2
	assert.Equal(t, entity.OutcomeWin, outcome.Kind)

	stored, err := manager.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Round)
	assert.Equal(t, entity.Score{X: 1}, stored.Score)
	assert.Equal(t, entity.Board{}, stored.State.Board)
}

// slowSessionRepo stretches the window between reading and saving a session,
// as a networked store does.
type slowSessionRepo struct {
	repository.SessionRepository
}

func (that *slowSessionRepo) UpdateByID(ctx context.Context, id string, update repository.UpdateFunc) (*entity.Session, error) {
	return that.SessionRepository.UpdateByID(ctx, id, func(session *entity.Session) (bool, error) {
		time.Sleep(time.Millisecond)
		return update(session)
	})
}

func TestGameManager_ConcurrentCalls(t *testing.T) {
	ctx := context.Background()

	newManager := func(t *testing.T) (*GameManager, string) {
		t.Helper()

		repo := &slowSessionRepo{SessionRepository: repository.NewMemorySessionRepository(time.Hour)}
		manager := NewGameManager(suite.NewLogger(), repo)

		session, err := manager.CreateSession(ctx)
		require.NoError(t, err)

		return manager, session.ID
	}

	t.Run("Same cell twice is accepted once", func(t *testing.T) {
		// Given: a fresh session
		manager, id := newManager(t)

		// When: two requests play the centre at the same time
		kinds := make([]string, 2)

		var wg sync.WaitGroup
		for i := range kinds {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()

				_, outcome, err := manager.MakeMove(ctx, id, 4)
				assert.NoError(t, err)
				kinds[i] = string(outcome.Kind)
			}(i)
		}
		wg.Wait()

		// Then: one move continues the round and the other is rejected
		sort.Strings(kinds)
		assert.Equal(t, []string{string(entity.OutcomeContinue), string(entity.OutcomeRejected)}, kinds)
	})

	t.Run("Two different cells both land", func(t *testing.T) {
		// Given: a fresh session
		manager, id := newManager(t)

		// When: two requests play opposite corners at the same time
		var wg sync.WaitGroup
		for _, cell := range []int{0, 8} {
			wg.Add(1)
			go func(cell int) {
				defer wg.Done()

				_, outcome, err := manager.MakeMove(ctx, id, cell)
				assert.NoError(t, err)
				assert.Equal(t, entity.OutcomeContinue, outcome.Kind)
			}(cell)
		}
		wg.Wait()

		// Then: the stored board holds one X and one O and X is to move
		stored, err := manager.GetSession(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.State.Board.Count(entity.PlayerX.Mark()))
		assert.Equal(t, 1, stored.State.Board.Count(entity.PlayerO.Mark()))
		assert.Equal(t, entity.PlayerX, stored.State.Turn)
	})

	t.Run("Resets racing moves keep every round", func(t *testing.T) {
		manager, id := newManager(t)

		var wg sync.WaitGroup
		for i := 0; i < 3; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()

				_, err := manager.Reset(ctx, id)
				assert.NoError(t, err)
			}()
			go func(cell int) {
				defer wg.Done()

				_, _, err := manager.MakeMove(ctx, id, cell)
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		stored, err := manager.GetSession(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 4, stored.Round)
		assert.Zero(t, manager.locks.size())
	})
}

func TestSessionLocks(t *testing.T) {
	// Given: a lock held for one session
	locks := newSessionLocks()
	unlock := locks.lock("a")

	// When: another goroutine asks for the same session
	acquired := make(chan struct{})
	go func() {
		release := locks.lock("a")
		close(acquired)
		release()
	}()

	// Then: it waits until the first holder lets go, and other sessions are free
	select {
	case <-acquired:
		t.Fatal("lock acquired while held")
	case <-time.After(20 * time.Millisecond):
	}

	locks.lock("b")()

	unlock()
	<-acquired

	assert.Eventually(t, func() bool { return locks.size() == 0 }, time.Second, time.Millisecond)
}
