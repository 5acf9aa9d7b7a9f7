package main

import (
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// EventKind names a row in analytics_events
type EventKind string

const (
	EvtMatchStart  EventKind = "match_start"
	EvtMatchEnd    EventKind = "match_end"
	EvtVehicleKill EventKind = "vehicle_kill"
)

const (
	analyticsBuffer     = 1024
	analyticsBatchSize  = 50
	analyticsFlushEvery = 5 * time.Second
)

// AnalyticsEvent is one queued row. Data holds the JSON payload, "" for none.
type AnalyticsEvent struct {
	Kind      EventKind
	SessionID string
	Data      string
	At        time.Time
}

type matchStartData struct {
	Match   string `json:"match"`
	Mode    string `json:"mode"`
	Arena   string `json:"arena"`
	Players int    `json:"players"`
}

type matchEndData struct {
	Match    string  `json:"match"`
	Mode     string  `json:"mode"`
	Duration float64 `json:"duration"`
	Winner   int     `json:"winner"`
}

type killData struct {
	Victim int        `json:"victim"`
	Killer int        `json:"killer"`
	Weapon WeaponName `json:"weapon,omitempty"`
}

// Analytics batches events into the database from one background writer.
// A nil *Analytics drops everything.
type Analytics struct {
	db     *DB
	events chan AnalyticsEvent
	stop   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewAnalytics starts the writer
func NewAnalytics(db *DB) *Analytics {
	a := &Analytics{
		db:     db,
		events: make(chan AnalyticsEvent, analyticsBuffer),
		stop:   make(chan struct{}),
	}
	a.wg.Add(1)
	go a.writer()
	return a
}

// TrackMatchStart records a new session's match
func (a *Analytics) TrackMatchStart(sid, matchID string, setup MatchSetup) {
	a.Track(EvtMatchStart, sid, matchStartData{
		Match: matchID, Mode: setup.Mode.String(), Arena: setup.Arena, Players: len(setup.Players),
	})
}

// TrackMatchEnd records a finished match and its first-placed player
func (a *Analytics) TrackMatchEnd(sid string, o MatchOutcome) {
	winner := NoPlayer
	if len(o.Players) > 0 {
		winner = o.Players[0].Slot
	}
	a.Track(EvtMatchEnd, sid, matchEndData{Match: o.ID, Mode: o.Mode, Duration: o.Duration, Winner: winner})
}

// TrackKill records one applied kill
func (a *Analytics) TrackKill(sid string, k KillReport) {
	a.Track(EvtVehicleKill, sid, killData{Victim: k.Victim, Killer: k.Killer, Weapon: k.Weapon})
}

// Track queues an event without blocking; a full queue drops it.
// data is encoded as JSON unless nil.
func (a *Analytics) Track(kind EventKind, sid string, data any) {
	if a == nil {
		return
	}
	evt := AnalyticsEvent{Kind: kind, SessionID: sid, At: time.Now().UTC()}
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			log.Warn().Err(err).Str("event", string(kind)).Msg("analytics: encode data")
			return
		}
		evt.Data = string(b)
	}
	select {
	case a.events <- evt:
	default:
		log.Debug().Str("event", string(kind)).Msg("analytics: queue full, dropped")
	}
}

// Stop flushes what is queued and waits for the writer. Safe to call twice.
func (a *Analytics) Stop() {
	if a == nil {
		return
	}
	a.once.Do(func() { close(a.stop) })
	a.wg.Wait()
}

func (a *Analytics) writer() {
	defer a.wg.Done()
	ticker := time.NewTicker(analyticsFlushEvery)
	defer ticker.Stop()

	var batch []AnalyticsEvent
	flush := func() {
		a.flush(batch)
		batch = batch[:0]
	}
	for {
		select {
		case evt := <-a.events:
			if batch = append(batch, evt); len(batch) >= analyticsBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-a.stop:
			for len(a.events) > 0 {
				batch = append(batch, <-a.events)
			}
			flush()
			return
		}
	}
}

func (a *Analytics) flush(events []AnalyticsEvent) {
	if a.db == nil || len(events) == 0 {
		return
	}
	tx, err := a.db.conn.Begin()
	if err != nil {
		log.Error().Err(err).Msg("analytics: begin tx")
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO analytics_events (event_type, session_id, data, created_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		log.Error().Err(err).Msg("analytics: prepare")
		return
	}
	defer stmt.Close()

	for _, evt := range events {
		sid := sql.NullString{String: evt.SessionID, Valid: evt.SessionID != ""}
		data := sql.NullString{String: evt.Data, Valid: evt.Data != ""}
		if _, err := stmt.Exec(string(evt.Kind), sid, data, evt.At.Format(time.RFC3339)); err != nil {
			log.Error().Err(err).Str("event", string(evt.Kind)).Msg("analytics: insert")
		}
	}
	if err := tx.Commit(); err != nil {
		log.Error().Err(err).Int("events", len(events)).Msg("analytics: commit")
	}
}

// EventCounts returns how often each kind was recorded in the last days
func (a *Analytics) EventCounts(days int) (map[EventKind]int, error) {
	if a == nil || a.db == nil {
		return nil, nil
	}
	rows, err := a.db.conn.Query(`
		SELECT event_type, COUNT(*) FROM analytics_events
		WHERE created_at >= date('now', '-' || ? || ' days')
		GROUP BY event_type
	`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[EventKind]int)
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, err
		}
		result[EventKind(kind)] = count
	}
	return result, rows.Err()
}

// WeaponKills counts recorded kills per weapon over the last days.
// Uncredited deaths with no weapon are left out.
func (db *DB) WeaponKills(days int) (map[WeaponName]int, error) {
	rows, err := db.conn.Query(`
		SELECT json_extract(data, '$.weapon') AS weapon, COUNT(*) FROM analytics_events
		WHERE event_type = ? AND created_at >= date('now', '-' || ? || ' days')
		  AND json_extract(data, '$.weapon') IS NOT NULL
		GROUP BY weapon
	`, string(EvtVehicleKill), days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[WeaponName]int)
	for rows.Next() {
		var weapon string
		var count int
		if err := rows.Scan(&weapon, &count); err != nil {
			return nil, err
		}
		result[WeaponName(weapon)] = count
	}
	return result, rows.Err()
}
