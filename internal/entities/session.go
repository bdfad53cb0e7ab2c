// Package entities defines the core game session data model.
// Entities are owned by orchestrators and persisted by repositories;
// all mutation goes through the methods below so that resource pools
// stay clamped and combat state stays consistent with its monsters.
package entities

import (
	"github.com/storyloom/trpg-api/internal/errors"
)

// PlayerRef is the reserved actor reference for the session's player.
const PlayerRef = "player"

// Well-known resource pool names. Sessions may carry additional pools.
const (
	PoolHP = "hp"
	PoolMP = "mp"
)

// SpeakerType identifies who a dialogue line belongs to
type SpeakerType string

// Speaker types for story dialogue lines
const (
	SpeakerPlayer    SpeakerType = "player"
	SpeakerNPC       SpeakerType = "npc"
	SpeakerMonster   SpeakerType = "monster"
	SpeakerNarration SpeakerType = "narration"
)

// CombatPhase tracks where an active combat currently is
type CombatPhase string

// Combat phases
const (
	CombatPhaseEngaging  CombatPhase = "engaging"
	CombatPhaseOngoing   CombatPhase = "ongoing"
	CombatPhaseResolving CombatPhase = "resolving"
)

// ResourcePool is a clamped current/max stat pair (HP, MP, ...)
type ResourcePool struct {
	Current int32 `json:"current"`
	Max     int32 `json:"max"`
}

// Adjust applies a delta to Current, clamped to [0, Max]
func (p *ResourcePool) Adjust(delta int32) {
	next := p.Current + delta
	if next < 0 {
		next = 0
	}
	if next > p.Max {
		next = p.Max
	}
	p.Current = next
}

// Depleted reports whether the pool has hit zero
func (p *ResourcePool) Depleted() bool {
	return p.Current <= 0
}

// Inventory holds an actor's gold and ordered item list
type Inventory struct {
	Gold  int32    `json:"gold"`
	Items []string `json:"items"`
}

// Actor is a named entity with resource pools, attributes, and an inventory.
// The player, companions, and monsters all share this shape.
type Actor struct {
	Name       string                   `json:"name"`
	Pools      map[string]*ResourcePool `json:"pools"`
	Attributes map[string]string        `json:"attributes,omitempty"`
	Inventory  Inventory                `json:"inventory"`
}

// NewActor creates an actor with the given hp/mp maximums, both pools full
func NewActor(name string, hp, mp int32) *Actor {
	return &Actor{
		Name: name,
		Pools: map[string]*ResourcePool{
			PoolHP: {Current: hp, Max: hp},
			PoolMP: {Current: mp, Max: mp},
		},
	}
}

// Pool returns the named resource pool, or nil if the actor lacks it
func (a *Actor) Pool(name string) *ResourcePool {
	return a.Pools[name]
}

func (a *Actor) clone() *Actor {
	if a == nil {
		return nil
	}
	out := &Actor{
		Name:      a.Name,
		Pools:     make(map[string]*ResourcePool, len(a.Pools)),
		Inventory: Inventory{Gold: a.Inventory.Gold},
	}
	for name, pool := range a.Pools {
		p := *pool
		out.Pools[name] = &p
	}
	if a.Attributes != nil {
		out.Attributes = make(map[string]string, len(a.Attributes))
		for k, v := range a.Attributes {
			out.Attributes[k] = v
		}
	}
	out.Inventory.Items = append([]string(nil), a.Inventory.Items...)
	return out
}

// Monster is a transient combatant that exists only while combat is active
type Monster struct {
	Actor
	// Ref uniquely identifies this monster within the session's combat
	Ref string `json:"ref"`
}

// CombatState is present on a session iff at least one live monster exists
type CombatState struct {
	Phase    CombatPhase `json:"phase"`
	Monsters []*Monster  `json:"monsters"`
	Round    int32       `json:"round"`
}

// LiveMonsters returns the monsters that still have hit points left
func (c *CombatState) LiveMonsters() []*Monster {
	if c == nil {
		return nil
	}
	var live []*Monster
	for _, m := range c.Monsters {
		if hp := m.Pool(PoolHP); hp == nil || !hp.Depleted() {
			live = append(live, m)
		}
	}
	return live
}

// Dialogue is a single line of story output attributed to a speaker
type Dialogue struct {
	SpeakerType SpeakerType       `json:"speaker_type"`
	Name        string            `json:"name,omitempty"`
	Text        string            `json:"text"`
	ActorRef    string            `json:"actor_ref,omitempty"`
	IsAction    bool              `json:"is_action,omitempty"`
	Meta        map[string]string `json:"meta,omitempty"`
}

// StoryTurn is the immutable record appended once per processed turn
type StoryTurn struct {
	TurnNumber int32      `json:"turn_number"`
	Narration  string     `json:"narration"`
	Dialogues  []Dialogue `json:"dialogues"`
	CreatedAt  int64      `json:"created_at,omitempty"`
}

// GameSession is the aggregate root for one player's run of one game.
// Version is the optimistic concurrency token checked on commit.
type GameSession struct {
	GameID     string            `json:"game_id"`
	OwnerID    string            `json:"owner_id"`
	Player     *Actor            `json:"player"`
	Companions map[string]*Actor `json:"companions,omitempty"`
	Combat     *CombatState      `json:"combat,omitempty"`
	History    []StoryTurn       `json:"history"`
	// LastEvents maps event kinds to the turn number they last fired on,
	// used for cooldown checks by the event resolver.
	LastEvents map[string]int32 `json:"last_events,omitempty"`
	Version    int64            `json:"version"`
	UpdatedAt  int64            `json:"updated_at,omitempty"`
}

// MarkEvent records that an event of the given kind fired on the given turn
func (s *GameSession) MarkEvent(kind string, turn int32) {
	if s.LastEvents == nil {
		s.LastEvents = make(map[string]int32)
	}
	s.LastEvents[kind] = turn
}

// Actor resolves an actor reference: PlayerRef, a companion ref id,
// or the ref of a live monster in the current combat.
func (s *GameSession) Actor(ref string) (*Actor, error) {
	if ref == PlayerRef {
		if s.Player == nil {
			return nil, errors.Internal("session has no player")
		}
		return s.Player, nil
	}
	if companion, ok := s.Companions[ref]; ok {
		return companion, nil
	}
	if s.Combat != nil {
		for _, m := range s.Combat.Monsters {
			if m.Ref == ref {
				return &m.Actor, nil
			}
		}
	}
	return nil, errors.InvalidArgumentf("unknown actor ref %q", ref)
}

// ApplyDamage reduces the named pool of an actor, clamped at zero
func (s *GameSession) ApplyDamage(ref, pool string, amount int32) error {
	if amount < 0 {
		return errors.InvalidArgumentf("damage amount must not be negative, got %d", amount)
	}
	return s.adjustPool(ref, pool, -amount)
}

// Heal raises the named pool of an actor, clamped at its maximum
func (s *GameSession) Heal(ref, pool string, amount int32) error {
	if amount < 0 {
		return errors.InvalidArgumentf("heal amount must not be negative, got %d", amount)
	}
	return s.adjustPool(ref, pool, amount)
}

func (s *GameSession) adjustPool(ref, pool string, delta int32) error {
	actor, err := s.Actor(ref)
	if err != nil {
		return err
	}
	p := actor.Pool(pool)
	if p == nil {
		return errors.InvalidArgumentf("actor %q has no %q pool", ref, pool)
	}
	p.Adjust(delta)
	return nil
}

// AddItem applies a gold delta (floored at zero) and appends an item
// to the actor's inventory. An empty item adjusts gold only.
func (s *GameSession) AddItem(ref string, goldDelta int32, item string) error {
	actor, err := s.Actor(ref)
	if err != nil {
		return err
	}
	gold := actor.Inventory.Gold + goldDelta
	if gold < 0 {
		gold = 0
	}
	actor.Inventory.Gold = gold
	if item != "" {
		actor.Inventory.Items = append(actor.Inventory.Items, item)
	}
	return nil
}

// SpendGold deducts gold from an actor, floored at zero
func (s *GameSession) SpendGold(ref string, amount int32) error {
	if amount < 0 {
		return errors.InvalidArgumentf("spend amount must not be negative, got %d", amount)
	}
	return s.AddItem(ref, -amount, "")
}

// RemoveItem drops the first matching item from the actor's inventory.
// Removing an item the actor does not carry is an invalid mutation.
func (s *GameSession) RemoveItem(ref, item string) error {
	actor, err := s.Actor(ref)
	if err != nil {
		return err
	}
	for i, have := range actor.Inventory.Items {
		if have == item {
			actor.Inventory.Items = append(actor.Inventory.Items[:i], actor.Inventory.Items[i+1:]...)
			return nil
		}
	}
	return errors.InvalidArgumentf("actor %q does not carry %q", ref, item)
}

// StartCombat begins a combat with the given monsters in the engaging phase
func (s *GameSession) StartCombat(monsters []*Monster) error {
	if s.Combat != nil {
		return errors.FailedPrecondition("combat already in progress")
	}
	if len(monsters) == 0 {
		return errors.InvalidArgument("combat requires at least one monster")
	}
	s.Combat = &CombatState{
		Phase:    CombatPhaseEngaging,
		Monsters: monsters,
		Round:    0,
	}
	return nil
}

// EndCombat clears combat state; monsters are transient and are dropped
func (s *GameSession) EndCombat() {
	s.Combat = nil
}

// NormalizeCombat enforces the combat invariant after mutations:
// defeated monsters are removed, and combat ends when none remain.
func (s *GameSession) NormalizeCombat() {
	if s.Combat == nil {
		return
	}
	live := s.Combat.LiveMonsters()
	if len(live) == 0 {
		s.Combat = nil
		return
	}
	s.Combat.Monsters = live
}

// CurrentTurn returns the highest committed turn number, zero for a fresh session
func (s *GameSession) CurrentTurn() int32 {
	if len(s.History) == 0 {
		return 0
	}
	return s.History[len(s.History)-1].TurnNumber
}

// AppendTurn appends the next sequential story turn and returns it
func (s *GameSession) AppendTurn(narration string, dialogues []Dialogue) StoryTurn {
	turn := StoryTurn{
		TurnNumber: s.CurrentTurn() + 1,
		Narration:  narration,
		Dialogues:  dialogues,
	}
	s.History = append(s.History, turn)
	return turn
}

// RecentHistory returns up to the last n story turns
func (s *GameSession) RecentHistory(n int) []StoryTurn {
	if n <= 0 || len(s.History) == 0 {
		return nil
	}
	if n > len(s.History) {
		n = len(s.History)
	}
	return s.History[len(s.History)-n:]
}

// Clone deep-copies the session so a turn can be computed without
// touching the loaded state until commit.
func (s *GameSession) Clone() *GameSession {
	if s == nil {
		return nil
	}
	out := &GameSession{
		GameID:    s.GameID,
		OwnerID:   s.OwnerID,
		Player:    s.Player.clone(),
		Version:   s.Version,
		UpdatedAt: s.UpdatedAt,
	}
	if s.Companions != nil {
		out.Companions = make(map[string]*Actor, len(s.Companions))
		for ref, companion := range s.Companions {
			out.Companions[ref] = companion.clone()
		}
	}
	if s.Combat != nil {
		combat := &CombatState{
			Phase: s.Combat.Phase,
			Round: s.Combat.Round,
		}
		for _, m := range s.Combat.Monsters {
			combat.Monsters = append(combat.Monsters, &Monster{
				Actor: *m.Actor.clone(),
				Ref:   m.Ref,
			})
		}
		out.Combat = combat
	}
	if s.LastEvents != nil {
		out.LastEvents = make(map[string]int32, len(s.LastEvents))
		for kind, turn := range s.LastEvents {
			out.LastEvents[kind] = turn
		}
	}
	out.History = append([]StoryTurn(nil), s.History...)
	return out
}
