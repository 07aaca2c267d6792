// Package telemetry provides nutrition window stats, bookmarking, and snapshots.
package telemetry

// EventType identifies telemetry events.
type EventType uint8

const (
	EventMeal EventType = iota
	EventSpecial
	EventForeign
	EventEffectStarted
	EventEffectChanged
	EventEffectEnded
	EventDeath
	EventJoin
	EventLeave
)

var eventNames = [...]string{
	EventMeal:          "meal",
	EventSpecial:       "special",
	EventForeign:       "foreign",
	EventEffectStarted: "effect_started",
	EventEffectChanged: "effect_changed",
	EventEffectEnded:   "effect_ended",
	EventDeath:         "death",
	EventJoin:          "join",
	EventLeave:         "leave",
}

func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// Event represents a single telemetry event.
type Event struct {
	Type  EventType
	Tick  int32
	Actor string

	// Optional fields depending on event type
	Item      string  // meal and special events
	Amount    float64 // total nutrient gain
	Effect    string  // effect events
	Ref       string
	Amplifier int
	Previous  int
}

// NewMealEvent creates a meal event.
func NewMealEvent(tick int32, actor, item string, gained float64) Event {
	return Event{Type: EventMeal, Tick: tick, Actor: actor, Item: item, Amount: gained}
}

// NewSpecialEvent creates an event for a special consumable.
func NewSpecialEvent(tick int32, actor, item string, gained float64) Event {
	return Event{Type: EventSpecial, Tick: tick, Actor: actor, Item: item, Amount: gained}
}

// NewForeignEvent records stat increases that no consumption claimed.
func NewForeignEvent(tick int32, actor string, count int) Event {
	return Event{Type: EventForeign, Tick: tick, Actor: actor, Amount: float64(count)}
}

// NewEffectEvent creates an effect transition event.
func NewEffectEvent(t EventType, tick int32, actor, effect, ref string, amplifier, previous int) Event {
	return Event{
		Type:      t,
		Tick:      tick,
		Actor:     actor,
		Effect:    effect,
		Ref:       ref,
		Amplifier: amplifier,
		Previous:  previous,
	}
}

// NewDeathEvent creates a death event.
func NewDeathEvent(tick int32, actor string) Event {
	return Event{Type: EventDeath, Tick: tick, Actor: actor}
}

// NewJoinEvent creates an event for an actor entering the simulation.
func NewJoinEvent(tick int32, actor string) Event {
	return Event{Type: EventJoin, Tick: tick, Actor: actor}
}

// NewLeaveEvent creates an event for an actor leaving the simulation.
func NewLeaveEvent(tick int32, actor string) Event {
	return Event{Type: EventLeave, Tick: tick, Actor: actor}
}

// IsEffect reports whether the event is an effect transition.
func (e Event) IsEffect() bool {
	return e.Type == EventEffectStarted || e.Type == EventEffectChanged || e.Type == EventEffectEnded
}

// EffectRecord is the CSV row for an effect transition.
type EffectRecord struct {
	Tick      int32  `csv:"tick"`
	Actor     string `csv:"actor"`
	Effect    string `csv:"effect"`
	Ref       string `csv:"ref"`
	Edge      string `csv:"edge"`
	Amplifier int    `csv:"amplifier"`
	Previous  int    `csv:"previous"`
}

// ToEffectRecord converts an effect event to its CSV row.
func (e Event) ToEffectRecord() EffectRecord {
	return EffectRecord{
		Tick:      e.Tick,
		Actor:     e.Actor,
		Effect:    e.Effect,
		Ref:       e.Ref,
		Edge:      e.Type.String(),
		Amplifier: e.Amplifier,
		Previous:  e.Previous,
	}
}
