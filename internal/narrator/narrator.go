// Package narrator defines the boundary to the external narrative
// generator: the compiled request it receives, the semi-structured
// response it returns, and parsing helpers that never trust that
// response structurally.
package narrator

import (
	"context"
)

//go:generate mockgen -destination=mock/mock_generator.go -package=narratormock github.com/storyloom/trpg-api/internal/narrator Generator

// Generator produces one turn of narrative from a compiled request.
// Implementations may be slow or unreliable; callers must treat a
// returned error as "nothing happened" and commit no state.
type Generator interface {
	Generate(ctx context.Context, req *TurnRequest) (*TurnResponse, error)
}

// ActorView is the bounded actor state exposed to the generator.
// This is the only shape session internals cross the boundary in;
// persistence-layer representations never do.
type ActorView struct {
	Ref    string   `json:"ref"`
	Name   string   `json:"name"`
	HP     int32    `json:"hp"`
	HPMax  int32    `json:"hp_max"`
	MP     int32    `json:"mp"`
	MPMax  int32    `json:"mp_max"`
	Gold   int32    `json:"gold"`
	Items  []string `json:"items,omitempty"`
}

// CombatView summarizes active combat for the generator
type CombatView struct {
	Phase    string      `json:"phase"`
	Round    int32       `json:"round"`
	Monsters []ActorView `json:"monsters"`
}

// EventView describes a random event that fired this turn
type EventView struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

// HistoryLine is one dialogue line in the recent-history window
type HistoryLine struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// HistoryTurn is one recent story turn in the request window
type HistoryTurn struct {
	Turn      int32         `json:"turn"`
	Narration string        `json:"narration"`
	Lines     []HistoryLine `json:"lines,omitempty"`
}

// TurnRequest is the bounded payload compiled for the generator
type TurnRequest struct {
	Turn          int32         `json:"turn"`
	PlayerMessage string        `json:"player_message"`
	Player        ActorView     `json:"player"`
	Companions    []ActorView   `json:"companions,omitempty"`
	Combat        *CombatView   `json:"combat,omitempty"`
	Event         *EventView    `json:"event,omitempty"`
	History       []HistoryTurn `json:"history,omitempty"`
}

// DialogueItem is one line of generated dialogue. All fields are
// untrusted until validated by the reconciler.
type DialogueItem struct {
	SpeakerType string            `json:"speaker_type"`
	Name        string            `json:"name,omitempty"`
	Text        string            `json:"text"`
	ActorRef    string            `json:"actor_ref,omitempty"`
	IsAction    bool              `json:"is_action,omitempty"`
	Meta        map[string]string `json:"meta,omitempty"`
}

// ActorUpdate is a requested state delta for one actor. Deltas are
// applied only through clamping session mutations, never directly.
type ActorUpdate struct {
	ActorRef    string   `json:"actor_ref"`
	HPDelta     int32    `json:"hp_delta"`
	MPDelta     int32    `json:"mp_delta"`
	GoldDelta   int32    `json:"gold_delta"`
	ItemsAdd    []string `json:"items_add,omitempty"`
	ItemsRemove []string `json:"items_remove,omitempty"`
}

// StateUpdates groups the requested deltas for the whole session
type StateUpdates struct {
	Player     ActorUpdate   `json:"player"`
	Companions []ActorUpdate `json:"companions,omitempty"`
}

// MonsterUpdate sets a monster's remaining hit points by ref
type MonsterUpdate struct {
	Ref string `json:"ref"`
	HP  int32  `json:"hp"`
}

// CombatUpdate is the generator's view of how combat progressed
type CombatUpdate struct {
	InCombat *bool           `json:"in_combat,omitempty"`
	Phase    string          `json:"phase,omitempty"`
	Monsters []MonsterUpdate `json:"monsters,omitempty"`
}

// TurnResponse is the generator's semi-structured output for one turn
type TurnResponse struct {
	Narration     string         `json:"narration"`
	Dialogues     []DialogueItem `json:"dialogues"`
	StateUpdates  *StateUpdates  `json:"state_updates,omitempty"`
	UpdatedCombat *CombatUpdate  `json:"updated_combat,omitempty"`
}
