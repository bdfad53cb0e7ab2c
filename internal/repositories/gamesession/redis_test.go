package gamesession_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/storyloom/trpg-api/internal/entities"
	"github.com/storyloom/trpg-api/internal/errors"
	"github.com/storyloom/trpg-api/internal/pkg/clock"
	"github.com/storyloom/trpg-api/internal/testutils"

	"github.com/storyloom/trpg-api/internal/repositories/gamesession"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	repo    gamesession.Repository
	cleanup func()
	ctx     context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup
	s.ctx = context.Background()

	repo, err := gamesession.NewRedisRepository(&gamesession.Config{
		Client: client,
		Clock:  clock.New(),
	})
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

func (s *RedisRepositoryTestSuite) newSession() *entities.GameSession {
	return &entities.GameSession{
		GameID:  "game-123",
		OwnerID: "owner-456",
		Player:  entities.NewActor("Aria", 30, 10),
	}
}

func (s *RedisRepositoryTestSuite) TestCreateAndGet() {
	created, err := s.repo.Create(s.ctx, gamesession.CreateInput{Session: s.newSession()})
	s.Require().NoError(err)
	s.Equal(int64(1), created.Session.Version)
	s.NotZero(created.Session.UpdatedAt)

	got, err := s.repo.Get(s.ctx, gamesession.GetInput{GameID: "game-123", OwnerID: "owner-456"})
	s.Require().NoError(err)
	s.Equal(int64(1), got.Session.Version)
	s.Equal("Aria", got.Session.Player.Name)
	s.Equal(int32(30), got.Session.Player.Pool(entities.PoolHP).Current)
}

func (s *RedisRepositoryTestSuite) TestCreateDuplicateFails() {
	_, err := s.repo.Create(s.ctx, gamesession.CreateInput{Session: s.newSession()})
	s.Require().NoError(err)

	_, err = s.repo.Create(s.ctx, gamesession.CreateInput{Session: s.newSession()})
	s.Require().Error(err)
	s.True(errors.IsAlreadyExists(err))
}

func (s *RedisRepositoryTestSuite) TestGetNotFound() {
	_, err := s.repo.Get(s.ctx, gamesession.GetInput{GameID: "missing", OwnerID: "owner-456"})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))

	meta := errors.GetMeta(err)
	s.Equal("missing", meta["game_id"])
}

func (s *RedisRepositoryTestSuite) TestGetValidatesInput() {
	_, err := s.repo.Get(s.ctx, gamesession.GetInput{OwnerID: "owner-456"})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.repo.Get(s.ctx, gamesession.GetInput{GameID: "game-123"})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisRepositoryTestSuite) TestCommitIncrementsVersion() {
	_, err := s.repo.Create(s.ctx, gamesession.CreateInput{Session: s.newSession()})
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, gamesession.GetInput{GameID: "game-123", OwnerID: "owner-456"})
	s.Require().NoError(err)

	working := got.Session.Clone()
	s.Require().NoError(working.ApplyDamage(entities.PlayerRef, entities.PoolHP, 7))
	working.AppendTurn("A scuffle in the alley.", nil)

	committed, err := s.repo.Commit(s.ctx, gamesession.CommitInput{Session: working})
	s.Require().NoError(err)
	s.Equal(int64(2), committed.Session.Version)

	stored, err := s.repo.Get(s.ctx, gamesession.GetInput{GameID: "game-123", OwnerID: "owner-456"})
	s.Require().NoError(err)
	s.Equal(int64(2), stored.Session.Version)
	s.Equal(int32(23), stored.Session.Player.Pool(entities.PoolHP).Current)
	s.Len(stored.Session.History, 1)
}

func (s *RedisRepositoryTestSuite) TestCommitStaleVersionAborts() {
	_, err := s.repo.Create(s.ctx, gamesession.CreateInput{Session: s.newSession()})
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, gamesession.GetInput{GameID: "game-123", OwnerID: "owner-456"})
	s.Require().NoError(err)

	first := got.Session.Clone()
	first.AppendTurn("first writer wins", nil)
	_, err = s.repo.Commit(s.ctx, gamesession.CommitInput{Session: first})
	s.Require().NoError(err)

	stale := got.Session.Clone()
	stale.AppendTurn("second writer loses", nil)
	_, err = s.repo.Commit(s.ctx, gamesession.CommitInput{Session: stale})
	s.Require().Error(err)
	s.True(errors.IsAborted(err))

	// The losing commit must not have changed anything
	stored, err := s.repo.Get(s.ctx, gamesession.GetInput{GameID: "game-123", OwnerID: "owner-456"})
	s.Require().NoError(err)
	s.Equal(int64(2), stored.Session.Version)
	s.Equal("first writer wins", stored.Session.History[0].Narration)
}

func (s *RedisRepositoryTestSuite) TestCommitMissingSessionNotFound() {
	session := s.newSession()
	session.Version = 1

	_, err := s.repo.Commit(s.ctx, gamesession.CommitInput{Session: session})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestCommitDoesNotMutateInput() {
	_, err := s.repo.Create(s.ctx, gamesession.CreateInput{Session: s.newSession()})
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, gamesession.GetInput{GameID: "game-123", OwnerID: "owner-456"})
	s.Require().NoError(err)

	working := got.Session.Clone()
	_, err = s.repo.Commit(s.ctx, gamesession.CommitInput{Session: working})
	s.Require().NoError(err)
	s.Equal(int64(1), working.Version, "caller's session keeps its loaded version")
}

func TestRedisRepositorySuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func TestGetCorruptedSession(t *testing.T) {
	client, cleanup := testutils.CreateTestRedisClientWithData(t, func(mr *miniredis.Miniredis) {
		require.NoError(t, mr.Set("game_session:game-123:owner-456", "not json"))
	})
	defer cleanup()

	repo, err := gamesession.NewRedisRepository(&gamesession.Config{
		Client: client,
		Clock:  clock.New(),
	})
	require.NoError(t, err)

	_, err = repo.Get(context.Background(), gamesession.GetInput{GameID: "game-123", OwnerID: "owner-456"})
	require.Error(t, err)
	require.True(t, errors.IsInternal(err))
}
