package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carried by a player token. PlayerID is the opaque identity the
// engine keys everything on; Admin is the single capability flag.
type Claims struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Admin       bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// TokenConfig holds signing configuration.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration // default: 12 hours
	Issuer string
}

// Manager issues and validates player tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewManager creates a token manager.
func NewManager(cfg TokenConfig) *Manager {
	if cfg.TTL == 0 {
		cfg.TTL = 12 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "gameshow"
	}
	return &Manager{
		secret: cfg.Secret,
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
	}
}

// Issue mints a fresh opaque player ID and its signed token.
func (m *Manager) Issue(displayName string, admin bool) (string, string, error) {
	playerID := uuid.NewString()
	token, err := m.IssueFor(playerID, displayName, admin)
	return playerID, token, err
}

// IssueFor signs a token for an existing player ID.
func (m *Manager) IssueFor(playerID, displayName string, admin bool) (string, error) {
	now := time.Now()
	claims := Claims{
		PlayerID:    playerID,
		DisplayName: displayName,
		Admin:       admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   playerID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses and validates a player token.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
