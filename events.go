package main

// SoundKind names an audio cue
type SoundKind string

const (
	SoundBounce    SoundKind = "bounce"
	SoundHit       SoundKind = "hit"
	SoundDestroyed SoundKind = "destroyed"
	SoundFire      SoundKind = "fire"
	SoundPickup    SoundKind = "pickup"
	SoundExplosion SoundKind = "explosion"
)

// EffectKind names a visual effect
type EffectKind string

const (
	EffectSpark     EffectKind = "spark"
	EffectSpray     EffectKind = "spray"
	EffectExplosion EffectKind = "explosion"
)

// EventSink receives presentation intents from the simulation. The
// simulation never learns how they are realized.
type EventSink interface {
	PlaySound(kind SoundKind, x, y float64)
	SpawnEffect(kind EffectKind, x, y float64)
	StatusText(slot int, text string)
}

// Event is one recorded intent
type Event struct {
	Type string  `json:"t" msgpack:"t"` // "sound", "effect", "status"
	Name string  `json:"n,omitempty" msgpack:"n,omitempty"`
	X    float64 `json:"x,omitempty" msgpack:"x,omitempty"`
	Y    float64 `json:"y,omitempty" msgpack:"y,omitempty"`
	Slot int     `json:"s,omitempty" msgpack:"s,omitempty"`
	Text string  `json:"txt,omitempty" msgpack:"txt,omitempty"`
}

// EventBuffer collects events for the host to drain once per tick
type EventBuffer struct {
	events []Event
}

func (b *EventBuffer) PlaySound(kind SoundKind, x, y float64) {
	b.events = append(b.events, Event{Type: "sound", Name: string(kind), X: round1(x), Y: round1(y)})
}

func (b *EventBuffer) SpawnEffect(kind EffectKind, x, y float64) {
	b.events = append(b.events, Event{Type: "effect", Name: string(kind), X: round1(x), Y: round1(y)})
}

func (b *EventBuffer) StatusText(slot int, text string) {
	b.events = append(b.events, Event{Type: "status", Slot: slot, Text: text})
}

// Drain returns and clears the buffered events
func (b *EventBuffer) Drain() []Event {
	out := b.events
	b.events = nil
	return out
}

// Count returns how many buffered events match type and name
func (b *EventBuffer) Count(typ, name string) int {
	n := 0
	for _, e := range b.events {
		if e.Type == typ && e.Name == name {
			n++
		}
	}
	return n
}
