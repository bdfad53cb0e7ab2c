// Package config loads server configuration from the environment and
// game rules from an optional YAML file.
package config

import (
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/storyloom/trpg-api/internal/errors"
	"github.com/storyloom/trpg-api/internal/events"
	"github.com/storyloom/trpg-api/internal/repositories/bestiary"
)

// Config holds the server configuration
type Config struct {
	HTTPAddr  string `env:"HTTP_ADDR" envDefault:":8080"`
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`

	GeminiAPIKey string `env:"GEMINI_API_KEY,required"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	// RulesFile optionally points at a YAML file overriding the
	// default event rules and bestiary
	RulesFile string `env:"RULES_FILE"`

	// HistoryWindow bounds the story history sent to the generator
	HistoryWindow int `env:"HISTORY_WINDOW" envDefault:"3"`
}

// Load parses configuration from the environment
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse environment")
	}
	return &cfg, nil
}

// Rules is the YAML shape of the tunable game rules
type Rules struct {
	Events   events.Rules                          `yaml:"events"`
	Bestiary map[string][]bestiary.MonsterTemplate `yaml:"bestiary"`
}

// DefaultRules returns the rules used when no file is configured.
// The tuning values here are a product decision, not a constraint.
func DefaultRules() *Rules {
	return &Rules{
		Events: events.Rules{
			BaseChance:    20,
			CooldownTurns: 2,
			AreaMod: map[events.Area]int{
				events.AreaTown:    -10,
				events.AreaField:   0,
				events.AreaDungeon: 15,
			},
			EventWeights: map[events.Kind]int{
				events.KindCombat:  70,
				events.KindNothing: 30,
			},
			CombatWeights: map[string]int{
				"bandits":  40,
				"monsters": 40,
				"soldiers": 20,
			},
			DefaultArea: events.AreaField,
		},
		Bestiary: bestiary.DefaultGroups(),
	}
}

// LoadRules reads the rules file, falling back to defaults when no
// path is given. Values absent from the file keep their defaults.
func LoadRules(path string) (*Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read rules file %s", path)
	}
	if err := yaml.Unmarshal(data, rules); err != nil {
		return nil, errors.Wrapf(err, "failed to parse rules file %s", path)
	}
	return rules, nil
}
