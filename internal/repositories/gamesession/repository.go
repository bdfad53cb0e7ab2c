// Package gamesession provides repository interface and types for
// persisted game sessions. A session is exclusively owned by one
// (game_id, owner_id) pair and carries an optimistic version token
// checked on every commit.
package gamesession

import (
	"context"

	"github.com/storyloom/trpg-api/internal/entities"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=gamesessionmock github.com/storyloom/trpg-api/internal/repositories/gamesession Repository

// GetInput contains parameters for loading a session
type GetInput struct {
	GameID  string
	OwnerID string
}

// GetOutput contains the loaded session
type GetOutput struct {
	Session *entities.GameSession
}

// CreateInput contains parameters for creating a fresh session.
// The session's Version is set to 1 on success.
type CreateInput struct {
	Session *entities.GameSession
}

// CreateOutput contains the stored session
type CreateOutput struct {
	Session *entities.GameSession
}

// CommitInput carries the fully computed next state of one turn.
// Session.Version must still hold the version observed at load time;
// the repository increments it on success.
type CommitInput struct {
	Session *entities.GameSession
}

// CommitOutput contains the durably stored session
type CommitOutput struct {
	Session *entities.GameSession
}

// Repository defines the session store consumed by the turn engine.
// Commit is atomic: either the entire new state is durably stored
// with Version+1, or nothing is. A commit whose expected version no
// longer matches fails with an aborted-coded error and must be
// retried from a fresh Get.
type Repository interface {
	// Get loads the session for (game_id, owner_id); not-found when absent
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Create stores a brand-new session at version 1
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Commit atomically persists one processed turn
	Commit(ctx context.Context, input CommitInput) (*CommitOutput, error)
}
