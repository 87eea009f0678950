// Package session gates the UI behind a verified access code. A successful
// verification is remembered in the key-value store for three days.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/five82/leaddesk/internal/crmerr"
	"github.com/five82/leaddesk/internal/kvstore"
)

// Key is the durable key holding the session record.
const Key = "session"

// Validity is how long a verification lasts.
const Validity = 3 * 24 * time.Hour

// Record is the persisted session.
type Record struct {
	Timestamp int64 `json:"timestamp"` // unix milliseconds of verification
	Verified  bool  `json:"verified"`
}

// Verifier checks an access code against the API.
type Verifier interface {
	Verify(ctx context.Context, code string) error
}

// Gate answers whether the user is signed in.
type Gate struct {
	kv       kvstore.KV
	verifier Verifier
	now      func() time.Time
	logger   *slog.Logger
}

// NewGate returns a Gate persisting to kv and verifying through v.
func NewGate(kv kvstore.KV, v Verifier, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{kv: kv, verifier: v, now: time.Now, logger: logger.With("component", "session")}
}

// Valid reports whether a verified, unexpired session is stored. Unreadable or
// malformed records count as signed out.
func (g *Gate) Valid() bool {
	rec, ok := g.load()
	if !ok || !rec.Verified {
		return false
	}
	age := g.now().Sub(time.UnixMilli(rec.Timestamp))
	return age >= 0 && age <= Validity
}

// ExpiresAt returns when the current session lapses, or false when there is
// none.
func (g *Gate) ExpiresAt() (time.Time, bool) {
	if !g.Valid() {
		return time.Time{}, false
	}
	rec, _ := g.load()
	return time.UnixMilli(rec.Timestamp).Add(Validity), true
}

// Verify checks code and stores a fresh session on success.
func (g *Gate) Verify(ctx context.Context, code string) error {
	if err := g.verifier.Verify(ctx, code); err != nil {
		g.logger.Info("verification rejected", "error", err)
		return err
	}
	b, err := json.Marshal(Record{Timestamp: g.now().UnixMilli(), Verified: true})
	if err != nil {
		return crmerr.Storage("encode session", err)
	}
	if err := g.kv.Set(Key, string(b)); err != nil {
		return crmerr.Storage("save session", err)
	}
	g.logger.Info("session verified")
	return nil
}

// Clear signs out.
func (g *Gate) Clear() error {
	return crmerr.Storage("clear session", g.kv.Delete(Key))
}

func (g *Gate) load() (Record, bool) {
	raw, ok, err := g.kv.Get(Key)
	if err != nil {
		g.logger.Warn("read session failed", "error", err)
		return Record{}, false
	}
	if !ok {
		return Record{}, false
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		g.logger.Warn("session record is malformed", "error", err)
		return Record{}, false
	}
	return rec, true
}
