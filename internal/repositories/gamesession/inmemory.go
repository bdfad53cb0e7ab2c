package gamesession

import (
	"context"
	"sync"

	"github.com/storyloom/trpg-api/internal/errors"
)

type sessionKey struct {
	gameID  string
	ownerID string
}

// InMemoryRepository implements Repository using in-memory storage.
// Used for tests and local development; the optimistic version check
// matches the Redis implementation's behavior.
type InMemoryRepository struct {
	mu    sync.RWMutex
	store map[sessionKey]string
}

// NewInMemory creates a new in-memory repository
func NewInMemory() *InMemoryRepository {
	return &InMemoryRepository{
		store: make(map[sessionKey]string),
	}
}

var _ Repository = (*InMemoryRepository)(nil)

// Get loads the session for (game_id, owner_id)
func (r *InMemoryRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.GameID == "" {
		return nil, errors.InvalidArgument(errGameIDEmpty)
	}
	if input.OwnerID == "" {
		return nil, errors.InvalidArgument(errOwnerIDEmpty)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	data, exists := r.store[sessionKey{input.GameID, input.OwnerID}]
	if !exists {
		return nil, errors.NotFound("game session not found").
			WithMeta("game_id", input.GameID).
			WithMeta("owner_id", input.OwnerID)
	}

	session, err := decodeSession(data)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Session: session}, nil
}

// Create stores a brand-new session at version 1
func (r *InMemoryRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if err := validateSession(input.Session); err != nil {
		return nil, err
	}

	session := input.Session.Clone()
	session.Version = 1

	data, err := encodeSession(session)
	if err != nil {
		return nil, err
	}

	key := sessionKey{session.GameID, session.OwnerID}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store[key]; exists {
		return nil, errors.AlreadyExistsf("session for game %s already exists", session.GameID)
	}
	r.store[key] = data

	return &CreateOutput{Session: session}, nil
}

// Commit atomically persists one processed turn
func (r *InMemoryRepository) Commit(ctx context.Context, input CommitInput) (*CommitOutput, error) {
	if err := validateSession(input.Session); err != nil {
		return nil, err
	}

	next := input.Session.Clone()
	next.Version++

	data, err := encodeSession(next)
	if err != nil {
		return nil, err
	}

	key := sessionKey{next.GameID, next.OwnerID}

	r.mu.Lock()
	defer r.mu.Unlock()

	storedData, exists := r.store[key]
	if !exists {
		return nil, errors.NotFound("game session not found")
	}
	stored, err := decodeSession(storedData)
	if err != nil {
		return nil, err
	}
	if stored.Version != input.Session.Version {
		return nil, errors.Abortedf("version conflict: expected %d, found %d",
			input.Session.Version, stored.Version)
	}

	r.store[key] = data

	return &CommitOutput{Session: next}, nil
}
