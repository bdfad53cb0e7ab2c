package bestiary

import (
	"context"
	"fmt"
	"sort"

	"github.com/storyloom/trpg-api/internal/entities"
	"github.com/storyloom/trpg-api/internal/errors"
	"github.com/storyloom/trpg-api/internal/pkg/idgen"
)

// DefaultGroups returns the built-in enemy groups used when no rules
// file overrides them.
func DefaultGroups() map[string][]MonsterTemplate {
	return map[string][]MonsterTemplate{
		"bandits": {
			{Name: "Bandit", HP: 30, Attack: 5},
			{Name: "Bandit Leader", HP: 50, Attack: 8},
		},
		"soldiers": {
			{Name: "Enemy Footman", HP: 35, Attack: 6},
			{Name: "Enemy Archer", HP: 25, Attack: 7},
		},
		"monsters": {
			{Name: "Slime", HP: 20, Attack: 4},
			{Name: "Goblin", HP: 25, Attack: 5},
		},
	}
}

// Config holds the configuration for the in-memory bestiary
type Config struct {
	// Groups maps enemy kinds to monster templates; nil uses DefaultGroups
	Groups map[string][]MonsterTemplate

	// IDGenerator mints monster refs; required
	IDGenerator idgen.Generator
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c.IDGenerator == nil {
		return errors.InvalidArgument("ID generator is required")
	}
	return nil
}

type inMemoryRepository struct {
	groups map[string][]MonsterTemplate
	idGen  idgen.Generator
}

// NewInMemory creates an in-memory bestiary repository
func NewInMemory(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	groups := cfg.Groups
	if len(groups) == 0 {
		groups = DefaultGroups()
	}

	return &inMemoryRepository{
		groups: groups,
		idGen:  cfg.IDGenerator,
	}, nil
}

var _ Repository = (*inMemoryRepository)(nil)

// RosterFor materializes fresh monster instances for the given enemy kind
func (r *inMemoryRepository) RosterFor(ctx context.Context, input RosterForInput) (*RosterForOutput, error) {
	if input.Kind == "" {
		return nil, errors.InvalidArgument("enemy kind is required")
	}

	templates, ok := r.groups[input.Kind]
	if !ok {
		return nil, errors.NotFoundf("no enemy group %q in bestiary", input.Kind)
	}

	monsters := make([]*entities.Monster, 0, len(templates))
	for _, tmpl := range templates {
		monster := &entities.Monster{
			Actor: *entities.NewActor(tmpl.Name, tmpl.HP, 0),
			Ref:   r.idGen.Generate(),
		}
		monster.Attributes = map[string]string{
			"attack": fmt.Sprintf("%d", tmpl.Attack),
		}
		monsters = append(monsters, monster)
	}

	return &RosterForOutput{Monsters: monsters}, nil
}

// Kinds lists the enemy kinds this catalog can build rosters for
func (r *inMemoryRepository) Kinds(ctx context.Context) ([]string, error) {
	kinds := make([]string, 0, len(r.groups))
	for kind := range r.groups {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds, nil
}
