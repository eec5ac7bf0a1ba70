package npc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultMood is the disposition a profile starts with and returns to when
// nothing has moved it.
const DefaultMood = "neutral"

// ProfileSpec is the serializable definition of an NPC, loaded from YAML
// data files. Runtime state (mood, defeat, history) lives on Profile.
type ProfileSpec struct {
	ID              string        `yaml:"id" json:"id"`
	Name            string        `yaml:"name" json:"name"`
	Persona         string        `yaml:"persona" json:"persona"`
	DefeatedPersona string        `yaml:"defeated_persona,omitempty" json:"defeated_persona,omitempty"`
	Monsters        []MonsterSpec `yaml:"monsters,omitempty" json:"monsters,omitempty"`
}

// Profile is the runtime representation of an NPC: the static spec plus the
// mutable fields the dialogue engine reads and writes. All mutation happens
// on the game loop side; the generation worker only ever sees snapshots.
type Profile struct {
	Spec *ProfileSpec

	Mood     string
	Defeated bool
	History  History
}

// NewProfile creates a runtime profile from a spec with default mood.
func NewProfile(spec *ProfileSpec) (*Profile, error) {
	if spec == nil {
		return nil, fmt.Errorf("spec cannot be nil")
	}
	if spec.Name == "" {
		return nil, fmt.Errorf("profile name is required")
	}
	return &Profile{
		Spec: spec,
		Mood: DefaultMood,
	}, nil
}

// Persona returns the active persona prompt, switching to the defeated-state
// variant once the NPC has lost a battle.
func (p *Profile) Persona() string {
	if p.Defeated && p.Spec.DefeatedPersona != "" {
		return p.Spec.DefeatedPersona
	}
	if p.Spec.Persona != "" {
		return p.Spec.Persona
	}
	return fmt.Sprintf("You are %s, an NPC in a fantasy RPG game.", p.Spec.Name)
}

// LoadProfileSpec loads a single NPC spec from a YAML file. The filename
// (without extension) overrides any ID in the file.
func LoadProfileSpec(path string) (*ProfileSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	var spec ProfileSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile spec: %w", err)
	}

	ext := filepath.Ext(path)
	spec.ID = strings.TrimSuffix(filepath.Base(path), ext)

	if spec.Name == "" {
		return nil, fmt.Errorf("profile %s has no name", spec.ID)
	}
	return &spec, nil
}

// LoadProfileSpecs loads all .yaml profile specs from a directory, keyed by
// ID.
func LoadProfileSpecs(dir string) (map[string]*ProfileSpec, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile dir: %w", err)
	}

	specs := make(map[string]*ProfileSpec)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		spec, err := LoadProfileSpec(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		specs[spec.ID] = spec
	}
	return specs, nil
}
