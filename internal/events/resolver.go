// Package events implements per-turn random event resolution. The
// resolver rolls once per turn before the narrative generator runs and
// returns an outcome whose patch is applied explicitly by the turn
// orchestrator, never by the resolver itself.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/storyloom/trpg-api/internal/entities"
	"github.com/storyloom/trpg-api/internal/errors"
	"github.com/storyloom/trpg-api/internal/pkg/dice"
	"github.com/storyloom/trpg-api/internal/repositories/bestiary"
)

//go:generate mockgen -destination=mock/mock_resolver.go -package=eventsmock github.com/storyloom/trpg-api/internal/events Resolver

// Kind identifies a random event type
type Kind string

// Recognized event kinds. "nothing" is a valid no-op outcome: the
// dice said an event fires but the table chose an uneventful turn.
const (
	KindCombat  Kind = "combat"
	KindNothing Kind = "nothing"
)

// Area identifies the rough region the session is currently in,
// used to modify the event chance.
type Area string

// Area types
const (
	AreaTown    Area = "town"
	AreaField   Area = "field"
	AreaDungeon Area = "dungeon"
)

// AttrArea is the player attribute consulted to determine the current area
const AttrArea = "area"

// Outcome describes a resolved event. Patch mutates a session to apply
// the event's mechanical effect; the resolver never applies it itself
// so a failed turn leaves no partial effect behind.
type Outcome struct {
	Kind              Kind
	EnemyKind         string
	EffectDescription string
	Patch             func(*entities.GameSession) error
}

// Rules configures event resolution. Zero values disable events.
type Rules struct {
	// BaseChance is the percent chance, per eligible turn, that an event fires
	BaseChance int `yaml:"base_chance"`

	// AreaMod adjusts BaseChance per area, in percentage points
	AreaMod map[Area]int `yaml:"area_mod"`

	// CooldownTurns is the minimum number of turns between events of the same kind
	CooldownTurns int32 `yaml:"cooldown_turns"`

	// EventWeights weights the eligible event kinds; nil means combat only
	EventWeights map[Kind]int `yaml:"event_weights"`

	// CombatWeights weights enemy kinds for combat events
	CombatWeights map[string]int `yaml:"combat_weights"`

	// DefaultArea applies when the session does not carry an area attribute
	DefaultArea Area `yaml:"default_area"`
}

// Resolver decides whether a random event fires for a turn
type Resolver interface {
	// Resolve rolls for the turn; a nil outcome means no event fired
	Resolve(ctx context.Context, session *entities.GameSession) (*Outcome, error)
}

// Config holds the dependencies for the resolver
type Config struct {
	Rules    Rules
	Bestiary bestiary.Repository
	Roller   dice.Roller
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Bestiary == nil {
		vb.RequiredField("Bestiary")
	}
	if c.Roller == nil {
		vb.RequiredField("Roller")
	}
	if c.Rules.BaseChance < 0 || c.Rules.BaseChance > 100 {
		vb.Fieldf("Rules.BaseChance", "must be between 0 and 100, got %d", c.Rules.BaseChance)
	}
	if c.Rules.CooldownTurns < 0 {
		vb.Fieldf("Rules.CooldownTurns", "must not be negative, got %d", c.Rules.CooldownTurns)
	}

	return vb.Build()
}

type resolver struct {
	rules    Rules
	bestiary bestiary.Repository
	roller   dice.Roller
}

// NewResolver creates an event resolver with the provided dependencies
func NewResolver(cfg *Config) (Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	rules := cfg.Rules
	if rules.DefaultArea == "" {
		rules.DefaultArea = AreaField
	}
	if len(rules.EventWeights) == 0 {
		rules.EventWeights = map[Kind]int{KindCombat: 1}
	}

	return &resolver{
		rules:    rules,
		bestiary: cfg.Bestiary,
		roller:   cfg.Roller,
	}, nil
}

var _ Resolver = (*resolver)(nil)

// Resolve rolls for the turn; a nil outcome means no event fired.
// Events are suppressed while combat is active: combat continues or
// resolves through its own phase transitions, not through this path.
func (r *resolver) Resolve(ctx context.Context, session *entities.GameSession) (*Outcome, error) {
	if session.Combat != nil {
		return nil, nil
	}

	area := r.areaOf(session)
	chance := r.rules.BaseChance + r.rules.AreaMod[area]
	if chance < 0 {
		chance = 0
	}
	if chance > 100 {
		chance = 100
	}

	roll := r.roller.Roll(100)
	if roll > chance {
		return nil, nil
	}

	nextTurn := session.CurrentTurn() + 1
	kind := r.pickKind(session, nextTurn)
	if kind == "" {
		// Every eligible kind is still cooling down
		return nil, nil
	}

	slog.Debug("random event fired",
		"game_id", session.GameID,
		"area", area,
		"roll", roll,
		"chance", chance,
		"kind", kind,
	)

	if kind == KindNothing {
		return &Outcome{
			Kind:              KindNothing,
			EffectDescription: "A moment passes without incident.",
			Patch: func(s *entities.GameSession) error {
				s.MarkEvent(string(KindNothing), nextTurn)
				return nil
			},
		}, nil
	}

	return r.resolveCombat(ctx, nextTurn)
}

func (r *resolver) resolveCombat(ctx context.Context, nextTurn int32) (*Outcome, error) {
	enemyKind := weightedPick(r.roller, r.rules.CombatWeights, "monsters")

	rosterOut, err := r.bestiary.RosterFor(ctx, bestiary.RosterForInput{Kind: enemyKind})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build %s roster", enemyKind)
	}
	monsters := rosterOut.Monsters

	names := make([]string, 0, len(monsters))
	for _, m := range monsters {
		names = append(names, m.Name)
	}

	return &Outcome{
		Kind:              KindCombat,
		EnemyKind:         enemyKind,
		EffectDescription: fmt.Sprintf("A sudden battle against %s breaks out: %s.", enemyKind, strings.Join(names, ", ")),
		Patch: func(s *entities.GameSession) error {
			if err := s.StartCombat(monsters); err != nil {
				return err
			}
			s.MarkEvent(string(KindCombat), nextTurn)
			return nil
		},
	}, nil
}

// pickKind selects an event kind among those whose cooldown has
// elapsed. Returns "" when nothing is eligible.
func (r *resolver) pickKind(session *entities.GameSession, nextTurn int32) Kind {
	eligible := make(map[string]int, len(r.rules.EventWeights))
	for kind, weight := range r.rules.EventWeights {
		if weight <= 0 {
			continue
		}
		if last, ok := session.LastEvents[string(kind)]; ok {
			if nextTurn-last < r.rules.CooldownTurns {
				continue
			}
		}
		eligible[string(kind)] = weight
	}
	if len(eligible) == 0 {
		return ""
	}
	return Kind(weightedPick(r.roller, eligible, ""))
}

func (r *resolver) areaOf(session *entities.GameSession) Area {
	if session.Player != nil {
		if v, ok := session.Player.Attributes[AttrArea]; ok && v != "" {
			return Area(v)
		}
	}
	return r.rules.DefaultArea
}

// weightedPick selects a key proportionally to its weight. Iteration
// is ordered so the same roll always picks the same key.
func weightedPick[K ~string](roller dice.Roller, weights map[K]int, fallback K) K {
	total := 0
	keys := make([]K, 0, len(weights))
	for key, w := range weights {
		if w > 0 {
			total += w
			keys = append(keys, key)
		}
	}
	if total <= 0 {
		return fallback
	}
	slices.Sort(keys)

	roll := roller.Roll(total)
	cumulative := 0
	for _, key := range keys {
		cumulative += weights[key]
		if roll <= cumulative {
			return key
		}
	}
	return fallback
}
