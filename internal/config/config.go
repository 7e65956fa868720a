package config

import (
	"fmt"
	"os"

	"github.com/dyluth/kitbash/pkg/workshop"
	"gopkg.in/yaml.v3"
)

// DefaultRedisImage is used by `kitbash up` when redis.image is not set.
const DefaultRedisImage = "redis:7-alpine"

// KitbashConfig represents the top-level kitbash.yml configuration
type KitbashConfig struct {
	Version    string            `yaml:"version"`
	Instance   string            `yaml:"instance,omitempty"`
	Redis      *RedisConfig      `yaml:"redis,omitempty"`
	Characters []CharacterConfig `yaml:"characters"`
	Players    []PlayerConfig    `yaml:"players,omitempty"`
}

// RedisConfig overrides the local Redis service
type RedisConfig struct {
	Image string `yaml:"image,omitempty"`
	Port  int    `yaml:"port,omitempty"` // 0 means allocate automatically
}

// CharacterConfig is a character and its pieces in canonical order
type CharacterConfig struct {
	ID       string        `yaml:"id"`
	Name     string        `yaml:"name"`
	Unlocked bool          `yaml:"unlocked,omitempty"` // Unlocked for every configured player
	Powers   []string      `yaml:"powers,omitempty"`
	Pieces   []PieceConfig `yaml:"pieces"`
}

// PieceConfig is a single piece. Fake pieces are decoys.
type PieceConfig struct {
	ID          string `yaml:"id"`
	Level       int    `yaml:"level"`
	Special     bool   `yaml:"special,omitempty"`
	ComboVisual bool   `yaml:"combo_visual,omitempty"`
	Fake        bool   `yaml:"fake,omitempty"`
}

// PlayerConfig is a player and the characters they have unlocked
type PlayerConfig struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Role     string   `yaml:"role,omitempty"` // Defaults to "user"
	Unlocked []string `yaml:"unlocked,omitempty"`
}

// Validate performs strict validation on the configuration and applies defaults
func (c *KitbashConfig) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	// Required: at least one character
	if len(c.Characters) == 0 {
		return fmt.Errorf("no characters defined")
	}

	if c.Redis == nil {
		c.Redis = &RedisConfig{}
	}
	if c.Redis.Image == "" {
		c.Redis.Image = DefaultRedisImage
	}
	if c.Redis.Port < 0 || c.Redis.Port > 65535 {
		return fmt.Errorf("redis.port out of range: %d", c.Redis.Port)
	}

	characters := make(map[string]bool, len(c.Characters))
	for i := range c.Characters {
		ch := &c.Characters[i]
		if err := ch.Validate(); err != nil {
			return err
		}
		if characters[ch.ID] {
			return fmt.Errorf("duplicate character id '%s'", ch.ID)
		}
		characters[ch.ID] = true
	}

	players := make(map[string]bool, len(c.Players))
	for i := range c.Players {
		p := &c.Players[i]
		if err := p.Validate(characters); err != nil {
			return err
		}
		if players[p.ID] {
			return fmt.Errorf("duplicate player id '%s'", p.ID)
		}
		players[p.ID] = true
	}

	return nil
}

// Validate performs validation on a single character configuration
func (ch *CharacterConfig) Validate() error {
	if ch.ID == "" {
		return fmt.Errorf("character id is required")
	}

	if ch.Name == "" {
		return fmt.Errorf("character '%s': name is required", ch.ID)
	}

	if len(ch.Pieces) == 0 {
		return fmt.Errorf("character '%s': at least one piece is required", ch.ID)
	}

	seen := make(map[string]bool, len(ch.Pieces))
	hasCorrect := false
	for _, p := range ch.Pieces {
		if p.ID == "" {
			return fmt.Errorf("character '%s': piece id is required", ch.ID)
		}
		if seen[p.ID] {
			return fmt.Errorf("character '%s': duplicate piece id '%s'", ch.ID, p.ID)
		}
		seen[p.ID] = true

		if p.Level < 1 || p.Level > 4 {
			return fmt.Errorf("character '%s': piece '%s' has invalid level %d (must be 1-4)", ch.ID, p.ID, p.Level)
		}
		if !p.Fake {
			hasCorrect = true
		}
	}

	if !hasCorrect {
		return fmt.Errorf("character '%s': every piece is fake", ch.ID)
	}

	return nil
}

// Validate checks a player against the set of configured character IDs
func (p *PlayerConfig) Validate(characters map[string]bool) error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}

	if p.Role == "" {
		p.Role = string(workshop.RoleUser)
	}
	if err := workshop.Role(p.Role).Validate(); err != nil {
		return fmt.Errorf("player '%s': %w", p.ID, err)
	}

	for _, id := range p.Unlocked {
		if !characters[id] {
			return fmt.Errorf("player '%s': unlocked character '%s' is not defined", p.ID, id)
		}
	}

	return nil
}

// Character converts the configuration into a workshop record
func (ch *CharacterConfig) Character() *workshop.Character {
	pieces := make([]workshop.Piece, len(ch.Pieces))
	for i, p := range ch.Pieces {
		pieces[i] = workshop.Piece{
			ID:          p.ID,
			Level:       p.Level,
			Special:     p.Special,
			ComboVisual: p.ComboVisual,
			Fake:        p.Fake,
		}
	}

	powers := ch.Powers
	if powers == nil {
		powers = []string{}
	}

	return &workshop.Character{
		ID:       ch.ID,
		Name:     ch.Name,
		Unlocked: ch.Unlocked,
		Pieces:   pieces,
		Powers:   powers,
	}
}

// Load reads and validates kitbash.yml from the specified path
func Load(path string) (*KitbashConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config KitbashConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
