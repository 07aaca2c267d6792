package systems

import (
	"math"

	"github.com/pthm-cable/nutrition/catalog"
	"github.com/pthm-cable/nutrition/components"
)

var (
	apple       = catalog.MustItemID("minecraft:apple")
	bread       = catalog.MustItemID("minecraft:bread")
	mysteryStew = catalog.MustItemID("minecraft:mystery_stew")
	milk        = catalog.MustItemID("minecraft:milk_bucket")
	honey       = catalog.MustItemID("minecraft:honey_bottle")
	stone       = catalog.MustItemID("minecraft:stone")
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func testItems() *catalog.StaticRegistry {
	r := catalog.NewStaticRegistry()
	r.AddItem(apple, catalog.ItemInfo{Edible: true, Hunger: 4})
	r.AddItem(bread, catalog.ItemInfo{Edible: true, Hunger: 5}, "grain")
	r.AddItem(mysteryStew, catalog.ItemInfo{Edible: true, Hunger: 8}, "fruit", "grain")
	r.AddItem(milk, catalog.ItemInfo{Special: true, BaseValue: 4, ClearsEffects: true}, "dairy")
	r.AddItem(honey, catalog.ItemInfo{Edible: true, Hunger: 6}, "fruit")
	r.AddItem(stone, catalog.ItemInfo{})
	return r
}

func testResolver() *Resolver {
	return &Resolver{Items: testItems(), Multiplier: 1.0, LossFraction: 0.15}
}

// testCatalog builds Fruit and Grain, both decaying by 1 per pass.
// Apple contributes 10 Fruit explicitly; honey names Fruit with no value.
func testCatalog(effects ...*catalog.Effect) *catalog.Catalog {
	fruit := &catalog.Nutrient{
		Name: "fruit", Starting: 50, Decay: 1, Visible: true,
		DeathPenaltyMin: 50, DeathPenaltyLoss: 15,
		Items: map[catalog.ItemID]float64{apple: 10, honey: 0},
		Tags:  []string{"fruit"},
	}
	grain := &catalog.Nutrient{
		Name: "grain", Starting: 50, Decay: 1, Visible: true,
		DeathPenaltyMin: 50, DeathPenaltyLoss: 15,
		Items: map[catalog.ItemID]float64{},
		Tags:  []string{"grain"},
	}
	return catalog.New([]*catalog.Nutrient{fruit, grain}, effects)
}

func levels(vs ...float64) *components.Nutrition {
	return &components.Nutrition{Levels: vs}
}
