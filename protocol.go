package main

import (
	"encoding/json"
	"math"
)

// Client -> Server message types
const (
	MsgList    = "list"    // list sessions
	MsgCreate  = "create"  // create session
	MsgJoin    = "join"    // render or spectate a session
	MsgSeat    = "seat"    // host PIN -> seat token
	MsgControl = "control" // seat token -> controller attach
	MsgInput   = "input"
	MsgLeave   = "leave"
)

// Server -> Client message types
const (
	MsgSessions  = "sessions"
	MsgCreated   = "created"
	MsgJoined    = "joined"
	MsgSeatOK    = "seat_ok"
	MsgControlOK = "control_ok"
	MsgEvents    = "events"
	MsgResult    = "result"
	MsgError     = "error"
	MsgCtrlOn    = "ctrl_on"  // notify renderers: controller attached
	MsgCtrlOff   = "ctrl_off" // notify renderers: controller detached
)

// binaryInputTag marks a compact controller input frame:
// [0x01, accel int8, turn int8, strafe int8, flags]
const (
	binaryInputTag = 0x01
	binaryInputLen = 5

	flagFire    = 0x01
	flagAltFire = 0x02
	flagRepair  = 0x04
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string `json:"t"`
	Data any    `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// ControllerInput is one controller's axes and buttons
type ControllerInput struct {
	Accel   float64 `json:"accel"`
	Turn    float64 `json:"turn"`
	Strafe  float64 `json:"strafe"`
	Fire    bool    `json:"fire"`
	AltFire bool    `json:"alt"`
	Repair  bool    `json:"repair"`
}

// decodeBinaryInput unpacks a compact input frame
func decodeBinaryInput(msg []byte) (ControllerInput, bool) {
	if len(msg) != binaryInputLen || msg[0] != binaryInputTag {
		return ControllerInput{}, false
	}
	axis := func(b byte) float64 { return Clamp(float64(int8(b))/127, -1, 1) }
	flags := msg[4]
	return ControllerInput{
		Accel:   axis(msg[1]),
		Turn:    axis(msg[2]),
		Strafe:  axis(msg[3]),
		Fire:    flags&flagFire != 0,
		AltFire: flags&flagAltFire != 0,
		Repair:  flags&flagRepair != 0,
	}, true
}

// encodeBinaryInput packs an input frame, the inverse of decodeBinaryInput
func encodeBinaryInput(in ControllerInput) []byte {
	axis := func(v float64) byte { return byte(int8(math.Round(Clamp(v, -1, 1) * 127))) }
	var flags byte
	if in.Fire {
		flags |= flagFire
	}
	if in.AltFire {
		flags |= flagAltFire
	}
	if in.Repair {
		flags |= flagRepair
	}
	return []byte{binaryInputTag, axis(in.Accel), axis(in.Turn), axis(in.Strafe), flags}
}

// CreateMsg asks for a new session
type CreateMsg struct {
	Name    string `json:"name"`
	Mode    string `json:"mode"`
	Arena   string `json:"arena"`
	Humans  int    `json:"humans"`
	Bots    int    `json:"bots"`
	Vehicle string `json:"vehicle"`
}

// JoinMsg attaches a renderer or spectator to a session
type JoinMsg struct {
	SessionID string `json:"sid"`
}

// SeatMsg asks for a controller seat token
type SeatMsg struct {
	SessionID string `json:"sid"`
	Slot      int    `json:"slot"`
	Pin       string `json:"pin"`
}

// SeatOKMsg carries an issued seat token
type SeatOKMsg struct {
	SessionID string `json:"sid"`
	Slot      int    `json:"slot"`
	Token     string `json:"token"`
}

// ControlMsg attaches a controller with a seat token
type ControlMsg struct {
	Token string `json:"token"`
}

// VehicleFrame is one vehicle in a state frame
type VehicleFrame struct {
	ID     int     `json:"id" msgpack:"id"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	R      float64 `json:"r" msgpack:"r"`
	Shield float64 `json:"sh" msgpack:"sh"`
	Armor  float64 `json:"ar" msgpack:"ar"`
	Health float64 `json:"hp" msgpack:"hp"`
	State  int     `json:"st" msgpack:"st"`
	Repair bool    `json:"rp,omitempty" msgpack:"rp,omitempty"`
	Class  string  `json:"c" msgpack:"c"`
}

// ProjectileFrame is one projectile in a state frame
type ProjectileFrame struct {
	ID     int     `json:"id" msgpack:"id"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	R      float64 `json:"r" msgpack:"r"`
	Weapon string  `json:"w" msgpack:"w"`
	Owner  int     `json:"o" msgpack:"o"`
}

// BoxFrame is one weapon box in a state frame
type BoxFrame struct {
	ID     int     `json:"id" msgpack:"id"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Weapon string  `json:"w" msgpack:"w"`
}

// ScoreFrame is one player's scoreboard line
type ScoreFrame struct {
	Slot   int     `json:"s" msgpack:"s"`
	Name   string  `json:"n" msgpack:"n"`
	Score  float64 `json:"sc" msgpack:"sc"`
	Kills  int     `json:"k" msgpack:"k"`
	Deaths int     `json:"d" msgpack:"d"`
	Place  int     `json:"p,omitempty" msgpack:"p,omitempty"`
}

// CameraFrame is the renderer's view
type CameraFrame struct {
	X    float64 `json:"x" msgpack:"x"`
	Y    float64 `json:"y" msgpack:"y"`
	Zoom float64 `json:"z" msgpack:"z"`
}

// StateFrame is the full state broadcast
type StateFrame struct {
	Tick        int               `json:"tick" msgpack:"tick"`
	Vehicles    []VehicleFrame    `json:"v" msgpack:"v"`
	Projectiles []ProjectileFrame `json:"pr" msgpack:"pr"`
	Boxes       []BoxFrame        `json:"b" msgpack:"b"`
	Scores      []ScoreFrame      `json:"sc" msgpack:"sc"`
	Camera      CameraFrame       `json:"cam" msgpack:"cam"`
	Elapsed     float64           `json:"el" msgpack:"el"`
	Ended       bool              `json:"end,omitempty" msgpack:"end,omitempty"`
}

// SessionInfo is used in the session list
type SessionInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Mode    string `json:"mode"`
	Arena   string `json:"arena"`
	Players int    `json:"players"`
	Clients int    `json:"clients"`
}

// ErrorMsg sends error to client
type ErrorMsg struct {
	Msg string `json:"msg"`
}
