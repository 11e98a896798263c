package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore records how often the backing store is consulted.
type countingStore struct {
	*MemorySessionStore
	touches int
}

func (s *countingStore) Touch(ctx context.Context, id string, ttl time.Duration) (string, error) {
	s.touches++
	return s.MemorySessionStore.Touch(ctx, id, ttl)
}

func TestSessionService_CreateResolveDestroy(t *testing.T) {
	ctx := context.Background()
	svc := NewSessionService(NewMemorySessionStore(), "secret", time.Hour)

	token, err := svc.Create(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	userID, err := svc.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	require.NoError(t, svc.Destroy(ctx, token))
	_, err = svc.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_TokenClaims(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewSessionService(NewMemorySessionStore(), "secret", time.Hour)
	svc.now = func() time.Time { return now }

	token, err := svc.Create(context.Background(), "user-1")
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Equal(t, "HS256", parsed.Method.Alg())
	assert.NoError(t, uuid.Validate(claims.ID))
	assert.Equal(t, now.Add(time.Hour), claims.ExpiresAt.Time.UTC())
	// the user id lives only in the store
	assert.NotContains(t, token, "user-1")
}

func TestSessionService_ForgedTokenSkipsStore(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{MemorySessionStore: NewMemorySessionStore()}
	svc := NewSessionService(store, "secret", time.Hour)

	token, err := svc.Create(ctx, "user-1")
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	id := claims.ID

	signWith := func(method jwt.SigningMethod, key any, c jwt.RegisteredClaims) string {
		t.Helper()
		tok, err := jwt.NewWithClaims(method, c).SignedString(key)
		require.NoError(t, err)
		return tok
	}
	valid := jwt.RegisteredClaims{
		ID:        id,
		Issuer:    sessionIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	noExpiry := valid
	noExpiry.ExpiresAt = nil
	otherIssuer := valid
	otherIssuer.Issuer = "someone-else"

	head, _, _ := strings.Cut(token, ".")
	parts := strings.Split(token, ".")
	otherSig := strings.Split(signWith(jwt.SigningMethodHS256, []byte("other-secret"), valid), ".")[2]

	tests := []struct {
		name  string
		token string
	}{
		{"bare id", id},
		{"id with made-up mac", id + ".deadbeef"},
		{"swapped signature", parts[0] + "." + parts[1] + "." + otherSig},
		{"header only", head},
		{"wrong secret", signWith(jwt.SigningMethodHS256, []byte("other-secret"), valid)},
		{"alg none", signWith(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid)},
		{"HS512 with same secret", signWith(jwt.SigningMethodHS512, []byte("secret"), valid)},
		{"expired", signWith(jwt.SigningMethodHS256, []byte("secret"), expired)},
		{"no expiry", signWith(jwt.SigningMethodHS256, []byte("secret"), noExpiry)},
		{"other issuer", signWith(jwt.SigningMethodHS256, []byte("secret"), otherIssuer)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Resolve(ctx, tt.token)
			assert.ErrorIs(t, err, ErrSessionNotFound)
			assert.Zero(t, store.touches)
		})
	}

	// a correctly signed token for the same session still resolves
	userID, err := svc.Resolve(ctx, signWith(jwt.SigningMethodHS256, []byte("secret"), valid))
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestSessionService_RefreshSlidesExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := NewMemorySessionStore()
	store.now = clock
	svc := NewSessionService(store, "secret", time.Hour)
	svc.now = clock

	token, err := svc.Create(ctx, "user-1")
	require.NoError(t, err)

	// active use keeps the session alive past the first token's exp
	for range 3 {
		now = now.Add(40 * time.Minute)
		_, err := svc.Resolve(ctx, token)
		require.NoError(t, err)
		token, err = svc.Refresh(token)
		require.NoError(t, err)
	}

	userID, err := svc.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	// an idle hour ends it
	now = now.Add(time.Hour + time.Second)
	_, err = svc.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Refresh(token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_DestroyRevokesBeforeExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	svc := NewSessionService(store, "secret", time.Hour)

	token, err := svc.Create(ctx, "user-1")
	require.NoError(t, err)
	refreshed, err := svc.Refresh(token)
	require.NoError(t, err)

	// logging out with either token ends the session for both
	require.NoError(t, svc.Destroy(ctx, token))
	_, err = svc.Resolve(ctx, refreshed)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_DestroyForgedIsNoop(t *testing.T) {
	ctx := context.Background()
	svc := NewSessionService(NewMemorySessionStore(), "secret", time.Hour)
	token, err := svc.Create(ctx, "user-1")
	require.NoError(t, err)

	other := NewSessionService(svc.store, "other-secret", time.Hour)
	assert.NoError(t, svc.Destroy(ctx, "garbage"))
	assert.NoError(t, other.Destroy(ctx, token))

	userID, err := svc.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestMemorySessionStore_SlidingExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemorySessionStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, "s1", "u1", time.Hour))

	// 50 minutes in: still valid, and the expiry slides another hour
	now = now.Add(50 * time.Minute)
	userID, err := store.Touch(ctx, "s1", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	// 100 minutes after creation is within the refreshed window
	now = now.Add(50 * time.Minute)
	_, err = store.Touch(ctx, "s1", time.Hour)
	require.NoError(t, err)

	// an idle hour ends it
	now = now.Add(time.Hour)
	_, err = store.Touch(ctx, "s1", time.Hour)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionStore_SweepDropsExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemorySessionStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, "idle", "u1", time.Minute))
	require.NoError(t, store.Save(ctx, "active", "u2", time.Hour))

	assert.Zero(t, store.sweepExpired())

	// sessions that are never touched again still go away
	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, store.sweepExpired())

	store.mu.Lock()
	assert.NotContains(t, store.sessions, "idle")
	assert.Contains(t, store.sessions, "active")
	store.mu.Unlock()

	userID, err := store.Touch(ctx, "active", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "u2", userID)
}

func TestNewSessionStore_FallsBackToMemory(t *testing.T) {
	store, rdb := NewSessionStore("", nopLogger())
	assert.Nil(t, rdb)
	assert.IsType(t, &MemorySessionStore{}, store)

	store, rdb = NewSessionStore("not a url", nopLogger())
	assert.Nil(t, rdb)
	assert.IsType(t, &MemorySessionStore{}, store)
}
