package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/leaddesk/internal/crmerr"
	"github.com/five82/leaddesk/internal/kvstore"
)

type codeVerifier string

func (c codeVerifier) Verify(_ context.Context, code string) error {
	if code != string(c) {
		return crmerr.API("verify", "Invalid code")
	}
	return nil
}

func TestGate_VerifyThenExpire(t *testing.T) {
	kv := kvstore.NewMem()
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	g := NewGate(kv, codeVerifier("2468"), nil)
	g.now = func() time.Time { return now }

	assert.False(t, g.Valid())

	err := g.Verify(context.Background(), "1111")
	assert.True(t, crmerr.IsAPI(err))
	assert.False(t, g.Valid())

	require.NoError(t, g.Verify(context.Background(), "2468"))
	assert.True(t, g.Valid())
	exp, ok := g.ExpiresAt()
	require.True(t, ok)
	assert.Equal(t, now.Add(Validity), exp.UTC())

	now = now.Add(Validity)
	assert.True(t, g.Valid(), "valid through the last instant")

	now = now.Add(time.Second)
	assert.False(t, g.Valid())
}

func TestGate_UnverifiedOrMalformedRecord(t *testing.T) {
	kv := kvstore.NewMem()
	g := NewGate(kv, codeVerifier("x"), nil)

	require.NoError(t, kv.Set(Key, `{"timestamp":`+"1"+`,"verified":false}`))
	assert.False(t, g.Valid())

	require.NoError(t, kv.Set(Key, "not json"))
	assert.False(t, g.Valid())
}

func TestGate_Clear(t *testing.T) {
	kv := kvstore.NewMem()
	g := NewGate(kv, codeVerifier("2468"), nil)
	require.NoError(t, g.Verify(context.Background(), "2468"))
	require.NoError(t, g.Clear())
	assert.False(t, g.Valid())
}
