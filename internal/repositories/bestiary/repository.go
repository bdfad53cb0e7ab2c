// Package bestiary provides the monster catalog consumed by the event
// resolver when a combat event needs a roster.
package bestiary

import (
	"context"

	"github.com/storyloom/trpg-api/internal/entities"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=bestiarymock github.com/storyloom/trpg-api/internal/repositories/bestiary Repository

// MonsterTemplate describes one monster entry in an enemy group
type MonsterTemplate struct {
	Name   string `yaml:"name"`
	HP     int32  `yaml:"hp"`
	Attack int32  `yaml:"attack"`
}

// RosterForInput contains parameters for building a combat roster
type RosterForInput struct {
	// Kind selects the enemy group (e.g. "bandits", "monsters", "soldiers")
	Kind string
}

// RosterForOutput contains the materialized monsters for one combat
type RosterForOutput struct {
	Monsters []*entities.Monster
}

// Repository defines the interface for monster catalog lookups
type Repository interface {
	// RosterFor materializes fresh monster instances for the given enemy kind
	RosterFor(ctx context.Context, input RosterForInput) (*RosterForOutput, error)

	// Kinds lists the enemy kinds this catalog can build rosters for
	Kinds(ctx context.Context) ([]string, error)
}
