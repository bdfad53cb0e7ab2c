package gamesession

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"github.com/storyloom/trpg-api/internal/entities"
	"github.com/storyloom/trpg-api/internal/errors"
	"github.com/storyloom/trpg-api/internal/pkg/clock"
	redisclient "github.com/storyloom/trpg-api/internal/redis"
)

const (
	// Key pattern: game_session:{game_id}:{owner_id}
	sessionKeyPrefix = "game_session:"

	// Error messages
	errSessionNil   = "session cannot be nil"
	errGameIDEmpty  = "game ID cannot be empty"
	errOwnerIDEmpty = "owner ID cannot be empty"
)

// Config holds the configuration for the Redis repository
type Config struct {
	Client redisclient.Client
	Clock  clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c.Client == nil {
		return errors.InvalidArgument("redis client is required")
	}
	if c.Clock == nil {
		return errors.InvalidArgument("clock is required")
	}
	return nil
}

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// NewRedisRepository creates a new Redis repository for game sessions
func NewRedisRepository(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  cfg.Clock,
	}, nil
}

// Ensure redisRepository implements Repository
var _ Repository = (*redisRepository)(nil)

// Get loads the session for (game_id, owner_id)
func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.GameID == "" {
		return nil, errors.InvalidArgument(errGameIDEmpty)
	}
	if input.OwnerID == "" {
		return nil, errors.InvalidArgument(errOwnerIDEmpty)
	}

	key := r.buildKey(input.GameID, input.OwnerID)

	sessionJSON, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFound("game session not found").
				WithMeta("game_id", input.GameID).
				WithMeta("owner_id", input.OwnerID)
		}
		return nil, errors.Wrapf(err, "failed to get session from Redis")
	}

	session, err := decodeSession(sessionJSON)
	if err != nil {
		return nil, err
	}

	return &GetOutput{Session: session}, nil
}

// Create stores a brand-new session at version 1
func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if err := validateSession(input.Session); err != nil {
		return nil, err
	}

	session := input.Session.Clone()
	session.Version = 1
	session.UpdatedAt = r.clock.Now().Unix()

	data, err := encodeSession(session)
	if err != nil {
		return nil, err
	}

	key := r.buildKey(session.GameID, session.OwnerID)
	stored, err := r.client.SetNX(ctx, key, data, 0).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to store session in Redis")
	}
	if !stored {
		return nil, errors.AlreadyExistsf("session for game %s already exists", session.GameID)
	}

	return &CreateOutput{Session: session}, nil
}

// Commit atomically persists one processed turn. The key is watched
// so a concurrent commit between load and write fails the EXEC, and
// the stored version is re-checked inside the transaction so a stale
// caller gets an aborted error instead of silently overwriting.
func (r *redisRepository) Commit(ctx context.Context, input CommitInput) (*CommitOutput, error) {
	if err := validateSession(input.Session); err != nil {
		return nil, err
	}

	next := input.Session.Clone()
	next.Version++
	next.UpdatedAt = r.clock.Now().Unix()

	data, err := encodeSession(next)
	if err != nil {
		return nil, err
	}

	key := r.buildKey(next.GameID, next.OwnerID)

	txn := func(tx *redis.Tx) error {
		storedJSON, err := tx.Get(ctx, key).Result()
		if err != nil {
			if err == redis.Nil {
				return errors.NotFound("game session not found")
			}
			return errors.Wrapf(err, "failed to get session from Redis")
		}

		stored, err := decodeSession(storedJSON)
		if err != nil {
			return err
		}

		if stored.Version != input.Session.Version {
			return errors.Abortedf("version conflict: expected %d, found %d",
				input.Session.Version, stored.Version)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}

	if err := r.client.Watch(ctx, txn, key); err != nil {
		if err == redis.TxFailedErr {
			return nil, errors.Aborted("version conflict: session changed during commit")
		}
		return nil, err
	}

	return &CommitOutput{Session: next}, nil
}

func validateSession(session *entities.GameSession) error {
	if session == nil {
		return errors.InvalidArgument(errSessionNil)
	}
	if session.GameID == "" {
		return errors.InvalidArgument(errGameIDEmpty)
	}
	if session.OwnerID == "" {
		return errors.InvalidArgument(errOwnerIDEmpty)
	}
	return nil
}

// buildKey creates the Redis key for a game session
func (r *redisRepository) buildKey(gameID, ownerID string) string {
	return fmt.Sprintf("%s%s:%s", sessionKeyPrefix, gameID, ownerID)
}
