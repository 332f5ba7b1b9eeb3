package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TypeSession = "session"
	TypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	Type   string `json:"typ"`
	jwt.RegisteredClaims
}

// Pair is the session and refresh token handed to a client after login.
type Pair struct {
	SessionID        string
	SessionToken     string
	RefreshToken     string
	SessionExpiresAt time.Time
	RefreshExpiresAt time.Time
}

type Issuer struct {
	secret     []byte
	sessionTTL time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(secret string, sessionTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (i *Issuer) SessionTTL() time.Duration { return i.sessionTTL }

func (i *Issuer) Issue(userID uint, role string) (Pair, error) {
	now := i.now()
	sid := uuid.NewString()

	session, err := i.sign(userID, role, TypeSession, sid, now, now.Add(i.sessionTTL))
	if err != nil {
		return Pair{}, err
	}
	refresh, err := i.sign(userID, role, TypeRefresh, sid, now, now.Add(i.refreshTTL))
	if err != nil {
		return Pair{}, err
	}

	return Pair{
		SessionID:        sid,
		SessionToken:     session,
		RefreshToken:     refresh,
		SessionExpiresAt: now.Add(i.sessionTTL),
		RefreshExpiresAt: now.Add(i.refreshTTL),
	}, nil
}

func (i *Issuer) sign(userID uint, role, typ, sid string, now, exp time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		Role:   role,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sid,
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

// Parse validates signature, expiry and token type.
func (i *Issuer) Parse(tokenString, typ string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != typ {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
