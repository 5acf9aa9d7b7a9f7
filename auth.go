package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	seatExpiry     = 12 * time.Hour
	bcryptCost     = 12
	pinRateWindow  = 60 * time.Second
	maxPinAttempts = 10

	settingSeatSecret = "seat_secret"
	settingHostPin    = "host_pin_hash"
)

var (
	ErrBadPin      = errors.New("wrong host pin")
	ErrRateLimited = errors.New("too many pin attempts, try again later")
)

// SeatClaims are the claims of a controller seat token
type SeatClaims struct {
	SessionID string `json:"sid"`
	Slot      int    `json:"slot"`
	jwt.RegisteredClaims
}

// SeatAuth issues controller seat tokens and guards them with the host PIN
type SeatAuth struct {
	db      *DB
	secret  []byte
	pinHash []byte // nil disables the pin check

	// Rate limiting for pin attempts (IP -> attempts)
	rateMu  sync.Mutex
	rateMap map[string]*rateEntry
}

type rateEntry struct {
	Count   int
	ResetAt time.Time
}

// NewSeatAuth creates a seat authority. A non-empty pin replaces the
// stored host PIN; an empty one disables the check.
func NewSeatAuth(db *DB, pin string) (*SeatAuth, error) {
	a := &SeatAuth{
		db:      db,
		secret:  loadOrCreateSecret(db),
		rateMap: make(map[string]*rateEntry),
	}
	if pin != "" {
		if err := a.SetHostPin(pin); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// loadOrCreateSecret loads the signing secret from the database, or generates
// and persists a new one if none exists.
func loadOrCreateSecret(db *DB) []byte {
	if db != nil {
		if h := db.GetSetting(settingSeatSecret); h != "" {
			if b, err := hex.DecodeString(h); err == nil && len(b) == 32 {
				return b
			}
		}
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("failed to generate seat secret: " + err.Error())
	}
	if db != nil {
		if err := db.SetSetting(settingSeatSecret, hex.EncodeToString(secret)); err != nil {
			log.Warn().Err(err).Msg("could not persist seat secret")
		}
	}
	return secret
}

// SetHostPin hashes and stores the host PIN
func (a *SeatAuth) SetHostPin(pin string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash host pin: %w", err)
	}
	a.pinHash = hash
	if a.db != nil {
		if err := a.db.SetSetting(settingHostPin, string(hash)); err != nil {
			return fmt.Errorf("store host pin: %w", err)
		}
	}
	return nil
}

// PinRequired reports whether seats need the host PIN
func (a *SeatAuth) PinRequired() bool {
	return a.pinHash != nil
}

// CheckHostPin verifies a PIN attempt from ip
func (a *SeatAuth) CheckHostPin(pin, ip string) error {
	if a.pinHash == nil {
		return nil
	}
	if !a.checkRate(ip) {
		return ErrRateLimited
	}
	if err := bcrypt.CompareHashAndPassword(a.pinHash, []byte(pin)); err != nil {
		return ErrBadPin
	}
	return nil
}

// IssueSeat signs a token for one slot of one session
func (a *SeatAuth) IssueSeat(sessionID string, slot int) (string, error) {
	return a.issueSeat(sessionID, slot, time.Now().Add(seatExpiry))
}

func (a *SeatAuth) issueSeat(sessionID string, slot int, exp time.Time) (string, error) {
	claims := SeatClaims{
		SessionID: sessionID,
		Slot:      slot,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ValidateSeat validates a seat token and returns (sessionID, slot, error)
func (a *SeatAuth) ValidateSeat(tokenStr string) (string, int, error) {
	claims := &SeatClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return a.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return "", 0, err
	}
	if !token.Valid || claims.SessionID == "" {
		return "", 0, fmt.Errorf("invalid seat token")
	}
	return claims.SessionID, claims.Slot, nil
}

func (a *SeatAuth) checkRate(ip string) bool {
	a.rateMu.Lock()
	defer a.rateMu.Unlock()

	now := time.Now()
	entry, ok := a.rateMap[ip]
	if !ok || now.After(entry.ResetAt) {
		a.rateMap[ip] = &rateEntry{Count: 1, ResetAt: now.Add(pinRateWindow)}
		return true
	}
	entry.Count++
	return entry.Count <= maxPinAttempts
}
