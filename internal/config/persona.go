package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPersona is the system instruction sent with every model request when
// no persona override is configured.
const DefaultPersona = "You are a friendly, encouraging tutor. Keep replies short: one or two sentences."

// DefaultMaxReplyTokens is an approximate sentence-or-two output budget.
const DefaultMaxReplyTokens = 50

// PersonaConfig describes the tutor persona loaded from a YAML file.
type PersonaConfig struct {
	Persona        string `yaml:"persona"`
	MaxReplyTokens int    `yaml:"max_reply_tokens"`
}

// LoadPersonaConfig parses the yaml file at the provided path.
func LoadPersonaConfig(path string) (*PersonaConfig, error) {
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read persona config %q: %w", cleanPath, err)
	}

	var persona PersonaConfig
	if err := yaml.Unmarshal(data, &persona); err != nil {
		return nil, fmt.Errorf("parse persona config %q: %w", cleanPath, err)
	}
	persona.Persona = strings.TrimSpace(persona.Persona)
	return &persona, nil
}
