package npc

import (
	"fmt"

	"github.com/jwebster45206/d20"
)

// MonsterSpec describes one creature on an NPC's roster. Rosters are handed
// to the external battle engine when a conversation escalates.
type MonsterSpec struct {
	ID         string         `yaml:"id" json:"id"`
	Name       string         `yaml:"name" json:"name"`
	Element    string         `yaml:"element,omitempty" json:"element,omitempty"` // e.g. "fire", "water", "plant"
	Level      int            `yaml:"level,omitempty" json:"level,omitempty"`
	HP         int            `yaml:"hp" json:"hp"`
	AC         int            `yaml:"ac" json:"ac"`
	Attributes map[string]int `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	CombatMods map[string]int `yaml:"combat_modifiers,omitempty" json:"combat_modifiers,omitempty"`
}

// BuildActor constructs the combat actor for one roster entry.
func (m *MonsterSpec) BuildActor() (*d20.Actor, error) {
	if m.ID == "" {
		return nil, fmt.Errorf("monster id is required")
	}
	actor, err := d20.NewActor(m.ID).
		WithHP(m.HP).
		WithAC(m.AC).
		WithAttributes(m.Attributes).
		WithCombatModifiers(m.CombatMods).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor for %s: %w", m.ID, err)
	}
	return actor, nil
}

// BattleRoster builds combat actors for every monster on the profile's
// roster, in roster order. An empty roster returns nil; the battle initiator
// treats that as "nothing to fight" and skips the encounter.
func (p *Profile) BattleRoster() ([]*d20.Actor, error) {
	if len(p.Spec.Monsters) == 0 {
		return nil, nil
	}
	actors := make([]*d20.Actor, 0, len(p.Spec.Monsters))
	for i := range p.Spec.Monsters {
		actor, err := p.Spec.Monsters[i].BuildActor()
		if err != nil {
			return nil, err
		}
		actors = append(actors, actor)
	}
	return actors, nil
}
