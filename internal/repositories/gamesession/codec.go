package gamesession

import (
	"encoding/json"

	"github.com/storyloom/trpg-api/internal/entities"
	"github.com/storyloom/trpg-api/internal/errors"
)

// Sessions are stored as JSON documents. This is the single
// serialization boundary for session state; everything above the
// repository works on the typed entities.GameSession.

func encodeSession(session *entities.GameSession) (string, error) {
	data, err := json.Marshal(session)
	if err != nil {
		return "", errors.Wrapf(err, "failed to marshal session")
	}
	return string(data), nil
}

func decodeSession(data string) (*entities.GameSession, error) {
	var session entities.GameSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal session")
	}
	return &session, nil
}
