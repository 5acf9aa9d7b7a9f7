package main

import "fmt"

// InputSource answers named action queries. Names follow p{N}_accel,
// p{N}_turn, p{N}_strafe, p{N}_fire, p{N}_alt_fire and p{N}_repair, with
// N starting at 1.
type InputSource interface {
	Axis(name string) float64
	Button(name string) bool
}

// InputState is a map-backed InputSource fed by controllers
type InputState struct {
	axes    map[string]float64
	buttons map[string]bool
}

// NewInputState returns an empty input state
func NewInputState() *InputState {
	return &InputState{
		axes:    make(map[string]float64),
		buttons: make(map[string]bool),
	}
}

func (s *InputState) Axis(name string) float64 { return s.axes[name] }

func (s *InputState) Button(name string) bool { return s.buttons[name] }

// SetAxis stores an axis clamped to [-1, 1]
func (s *InputState) SetAxis(name string, v float64) {
	s.axes[name] = Clamp(v, -1, 1)
}

// SetButton stores a button state
func (s *InputState) SetButton(name string, down bool) {
	s.buttons[name] = down
}

// ActionName returns the input name of an action for a player slot
func ActionName(slot int, action string) string {
	return fmt.Sprintf("p%d_%s", slot+1, action)
}

// ReadControls resolves a player's controls from an input source
func ReadControls(src InputSource, slot int) Controls {
	if src == nil {
		return Controls{}
	}
	return Controls{
		Accel:  Clamp(src.Axis(ActionName(slot, "accel")), -1, 1),
		Turn:   Clamp(src.Axis(ActionName(slot, "turn")), -1, 1),
		Strafe: Clamp(src.Axis(ActionName(slot, "strafe")), -1, 1),
		Fire: [2]bool{
			src.Button(ActionName(slot, "fire")),
			src.Button(ActionName(slot, "alt_fire")),
		},
		Repair: src.Button(ActionName(slot, "repair")),
	}
}
