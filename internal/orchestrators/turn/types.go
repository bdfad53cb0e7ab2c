package turn

import (
	"context"

	"github.com/storyloom/trpg-api/internal/entities"
	"github.com/storyloom/trpg-api/internal/errors"
	"github.com/storyloom/trpg-api/internal/events"
	"github.com/storyloom/trpg-api/internal/narrator"
	"github.com/storyloom/trpg-api/internal/repositories/gamesession"
)

//go:generate mockgen -destination=mock/mock_service.go -package=turnmock github.com/storyloom/trpg-api/internal/orchestrators/turn Service

// DefaultHistoryWindow is how many recent story turns are sent to the
// narrative generator when not configured otherwise. Small on purpose
// to bound the request size.
const DefaultHistoryWindow = 3

// Service defines the interface for turn processing
type Service interface {
	// ProcessTurn advances one turn of a game session from a player message
	ProcessTurn(ctx context.Context, input *ProcessTurnInput) (*ProcessTurnOutput, error)
}

// ProcessTurnInput contains one player message addressed to a session
type ProcessTurnInput struct {
	GameID  string
	OwnerID string
	Message string
}

// ActorStateView is the caller-facing snapshot of one actor after a turn
type ActorStateView struct {
	Ref   string   `json:"ref"`
	Name  string   `json:"name"`
	HP    int32    `json:"hp"`
	HPMax int32    `json:"hp_max"`
	MP    int32    `json:"mp"`
	MPMax int32    `json:"mp_max"`
	Gold  int32    `json:"gold"`
	Items []string `json:"items,omitempty"`
}

// ProcessTurnOutput is the result of one committed turn
type ProcessTurnOutput struct {
	TurnNumber int32                `json:"turn_number"`
	Narration  string               `json:"narration"`
	Dialogues  []entities.Dialogue  `json:"dialogues"`
	Player     ActorStateView       `json:"player"`
	Companions []ActorStateView     `json:"companions,omitempty"`
	Combat     *entities.CombatState `json:"combat,omitempty"`
}

// Config holds the dependencies for the turn orchestrator
type Config struct {
	SessionRepo gamesession.Repository
	Generator   narrator.Generator
	Events      events.Resolver

	// HistoryWindow bounds the history sent to the generator;
	// zero uses DefaultHistoryWindow
	HistoryWindow int
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.SessionRepo == nil {
		vb.RequiredField("SessionRepo")
	}
	if c.Generator == nil {
		vb.RequiredField("Generator")
	}
	if c.Events == nil {
		vb.RequiredField("Events")
	}
	if c.HistoryWindow < 0 {
		vb.Fieldf("HistoryWindow", "must not be negative, got %d", c.HistoryWindow)
	}

	return vb.Build()
}
