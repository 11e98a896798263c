package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/steve2482/simspeedserver/internal/metrics"
)

const sessionIssuer = "simspeedserver"

// SessionService issues and resolves session tokens. A token is an HS256
// JWT whose jti is the session uuid; the store maps that uuid to the user,
// so deleting it revokes the token before exp.
type SessionService struct {
	store  SessionStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionService(store SessionStore, secret string, ttl time.Duration) *SessionService {
	return &SessionService{store: store, secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the sliding lifetime of a session.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Create starts a session for userID and returns its token.
func (s *SessionService) Create(ctx context.Context, userID string) (string, error) {
	id := uuid.NewString()
	if err := s.store.Save(ctx, id, userID, s.ttl); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	token, err := s.sign(id)
	if err != nil {
		return "", err
	}
	metrics.SessionsCreated.Inc()
	return token, nil
}

// Resolve returns the user id behind token and extends the session.
// Tokens that fail verification never reach the store.
func (s *SessionService) Resolve(ctx context.Context, token string) (string, error) {
	claims, err := s.parse(token)
	if err != nil {
		return "", ErrSessionNotFound
	}
	return s.store.Touch(ctx, claims.ID, s.ttl)
}

// Refresh re-signs a valid token for the same session with a new expiry,
// so the token slides along with the stored session.
func (s *SessionService) Refresh(token string) (string, error) {
	claims, err := s.parse(token)
	if err != nil {
		return "", ErrSessionNotFound
	}
	return s.sign(claims.ID)
}

// Destroy ends the session behind token. Expired tokens still name their
// session; unknown or forged tokens are ignored.
func (s *SessionService) Destroy(ctx context.Context, token string) error {
	claims, err := s.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil
	}
	return s.store.Delete(ctx, claims.ID)
}

func (s *SessionService) sign(sessionID string) (string, error) {
	now := s.now()
	claims := &jwt.RegisteredClaims{
		ID:        sessionID,
		Issuer:    sessionIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return token, nil
}

func (s *SessionService) parse(token string, opts ...jwt.ParserOption) (*jwt.RegisteredClaims, error) {
	opts = append(opts,
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(sessionIssuer),
	)
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v (only HS256 allowed)", t.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, errors.New("session token has no id")
	}
	return claims, nil
}
