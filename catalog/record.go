package catalog

// NutrientRecord mirrors the layout of a nutrient file. Pointer fields are
// optional and fall back to the configured defaults.
type NutrientRecord struct {
	Name      string     `yaml:"name"`
	Icon      string     `yaml:"icon"`
	Color     string     `yaml:"color"` // RRGGBB hex
	Starting  *int       `yaml:"starting"`
	DeathMin  *int       `yaml:"deathmin"`
	DeathLoss *int       `yaml:"deathloss"`
	Decay     *float64   `yaml:"decay"`
	Visible   *bool      `yaml:"visible"`
	Enabled   *bool      `yaml:"enabled"`
	Food      FoodRecord `yaml:"food"`

	Source string `yaml:"-"`
}

// FoodRecord lists the items and tags a nutrient claims.
type FoodRecord struct {
	Tags  []string `yaml:"tags"`
	Items []string `yaml:"items"`
}

// EffectRecord mirrors the layout of an effect file.
type EffectRecord struct {
	Name               string   `yaml:"name"`
	Status             string   `yaml:"status"`
	Potion             string   `yaml:"potion"` // Older spelling of Status
	Amplifier          *int     `yaml:"amplifier"`
	Minimum            int      `yaml:"minimum"`
	Maximum            int      `yaml:"maximum"`
	Detect             string   `yaml:"detect"`
	Nutrients          []string `yaml:"nutrients"`
	CumulativeModifier *int     `yaml:"cumulative_modifier"`
	Enabled            *bool    `yaml:"enabled"`

	Source string `yaml:"-"`
}

// statusName returns the status-effect name, preferring the current spelling.
func (r EffectRecord) statusName() string {
	if r.Status != "" {
		return r.Status
	}
	return r.Potion
}

func enabled(flag *bool) bool {
	return flag == nil || *flag
}
