package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ItemInfo describes what the host knows about an item.
type ItemInfo struct {
	Edible        bool // Restores hunger when eaten
	Hunger        int  // Hunger restored by eating the item
	Special       bool // Consumed outside the hunger path (e.g. drinks)
	BaseValue     int  // Base value used for special consumables
	ClearsEffects bool // Consuming it strips the actor's status effects
}

// Consumable reports whether the item may carry nutrients.
func (i ItemInfo) Consumable() bool {
	return i.Edible || i.Special
}

// ItemRegistry resolves item identities and tag membership.
type ItemRegistry interface {
	LookupItem(id ItemID) (ItemInfo, bool)
	HasTag(id ItemID, tag string) bool
	Items() []ItemID
}

// EffectRef is an opaque handle to a host status-effect type.
type EffectRef string

// EffectRegistry resolves status-effect names to host references.
type EffectRegistry interface {
	LookupEffect(name string) (EffectRef, bool)
}

// StaticRegistry is an in-memory ItemRegistry and EffectRegistry.
type StaticRegistry struct {
	items   map[ItemID]ItemInfo
	tags    map[ItemID]map[string]struct{}
	order   []ItemID
	effects map[string]EffectRef
}

// NewStaticRegistry creates an empty registry.
func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{
		items:   make(map[ItemID]ItemInfo),
		tags:    make(map[ItemID]map[string]struct{}),
		effects: make(map[string]EffectRef),
	}
}

// AddItem registers an item with its tags. Re-adding replaces the info and
// merges tags.
func (r *StaticRegistry) AddItem(id ItemID, info ItemInfo, tags ...string) {
	if _, ok := r.items[id]; !ok {
		r.order = append(r.order, id)
	}
	r.items[id] = info
	if len(tags) == 0 {
		return
	}
	set := r.tags[id]
	if set == nil {
		set = make(map[string]struct{}, len(tags))
		r.tags[id] = set
	}
	for _, t := range tags {
		set[t] = struct{}{}
	}
}

// AddEffect registers a status-effect name.
func (r *StaticRegistry) AddEffect(name string, ref EffectRef) {
	r.effects[name] = ref
}

// LookupItem implements ItemRegistry.
func (r *StaticRegistry) LookupItem(id ItemID) (ItemInfo, bool) {
	info, ok := r.items[id]
	return info, ok
}

// HasTag implements ItemRegistry.
func (r *StaticRegistry) HasTag(id ItemID, tag string) bool {
	_, ok := r.tags[id][tag]
	return ok
}

// Items implements ItemRegistry. Items are returned in registration order.
func (r *StaticRegistry) Items() []ItemID {
	out := make([]ItemID, len(r.order))
	copy(out, r.order)
	return out
}

// LookupEffect implements EffectRegistry.
func (r *StaticRegistry) LookupEffect(name string) (EffectRef, bool) {
	ref, ok := r.effects[name]
	return ref, ok
}

// EffectNames returns registered status-effect names, sorted.
func (r *StaticRegistry) EffectNames() []string {
	names := make([]string, 0, len(r.effects))
	for name := range r.effects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// registryFile mirrors the layout of a registry YAML file.
type registryFile struct {
	Items []struct {
		ID            string   `yaml:"id"`
		Edible        *bool    `yaml:"edible"`
		Hunger        int      `yaml:"hunger"`
		Special       bool     `yaml:"special"`
		BaseValue     int      `yaml:"base_value"`
		ClearsEffects bool     `yaml:"clears_effects"`
		Tags          []string `yaml:"tags"`
	} `yaml:"items"`
	Effects []string `yaml:"effects"`
}

// LoadRegistry reads a StaticRegistry from a YAML file.
func LoadRegistry(path string) (*StaticRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading registry %s: %w", path, err)
	}
	return ParseRegistry(data)
}

// ParseRegistry decodes a StaticRegistry from YAML bytes.
func ParseRegistry(data []byte) (*StaticRegistry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing registry: %w", err)
	}

	r := NewStaticRegistry()
	for i, it := range file.Items {
		ref, err := ParseItemRef(it.ID)
		if err != nil {
			return nil, fmt.Errorf("registry item %d: %w", i, err)
		}
		// Special consumables are not eaten for hunger unless stated otherwise.
		edible := !it.Special
		if it.Edible != nil {
			edible = *it.Edible
		}
		r.AddItem(ref.ID, ItemInfo{
			Edible:        edible,
			Hunger:        it.Hunger,
			Special:       it.Special,
			BaseValue:     it.BaseValue,
			ClearsEffects: it.ClearsEffects,
		}, it.Tags...)
	}
	for _, name := range file.Effects {
		r.AddEffect(name, EffectRef(name))
	}
	return r, nil
}
