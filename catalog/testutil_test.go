package catalog

import "github.com/pthm-cable/nutrition/config"

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

var testDefaults = config.NutrientDefaults{
	Starting:         50,
	Decay:            0.5,
	DeathPenaltyMin:  50,
	DeathPenaltyLoss: 15,
}

// testRegistry builds a small world of items and status effects.
func testRegistry() *StaticRegistry {
	r := NewStaticRegistry()
	r.AddItem(MustItemID("minecraft:apple"), ItemInfo{Edible: true, Hunger: 4}, "listAllfruit")
	r.AddItem(MustItemID("minecraft:bread"), ItemInfo{Edible: true, Hunger: 5}, "listAllgrain")
	r.AddItem(MustItemID("minecraft:mushroom_stew"), ItemInfo{Edible: true, Hunger: 6}, "listAllfruit", "listAllgrain")
	r.AddItem(MustItemID("minecraft:milk_bucket"), ItemInfo{Special: true, BaseValue: 4, ClearsEffects: true})
	r.AddItem(MustItemID("minecraft:stone"), ItemInfo{})
	r.AddItem(MustItemID("minecraft:cookie"), ItemInfo{Edible: true, Hunger: 2})
	r.AddEffect("strength", EffectRef("strength"))
	r.AddEffect("weakness", EffectRef("weakness"))
	return r
}

func nutrientRecord(name string) NutrientRecord {
	return NutrientRecord{Name: name, Icon: "minecraft:apple", Color: "ff0000"}
}
