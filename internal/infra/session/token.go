package session

import (
	"fmt"
	"time"

	"eara_connect_portal/internal/domain/user"

	"github.com/dgrijalva/jwt-go"
)

var ErrInvalidToken = fmt.Errorf("invalid or expired token")

const issuer = "eara-connect-portal"

// Claims carries the session record to API clients that cannot hold the cookie.
type Claims struct {
	UserID           int64     `json:"uid"`
	Email            string    `json:"email"`
	Name             string    `json:"name,omitempty"`
	Role             user.Role `json:"role"`
	SubcommitteeID   int64     `json:"sid,omitempty"`
	SubcommitteeName string    `json:"sname,omitempty"`
	CountryID        int64     `json:"cid,omitempty"`
	Backend          string    `json:"bs,omitempty"`
	jwt.StandardClaims
}

func (c Claims) SessionUser() user.SessionUser {
	return user.SessionUser{
		ID:               c.UserID,
		Email:            c.Email,
		Name:             c.Name,
		Role:             c.Role,
		SubcommitteeID:   c.SubcommitteeID,
		SubcommitteeName: c.SubcommitteeName,
		CountryID:        c.CountryID,
	}
}

type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *TokenIssuer) Issue(u user.SessionUser, backendCookie string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:           u.ID,
		Email:            u.Email,
		Name:             u.Name,
		Role:             u.Role,
		SubcommitteeID:   u.SubcommitteeID,
		SubcommitteeName: u.SubcommitteeName,
		CountryID:        u.CountryID,
		Backend:          backendCookie,
		StandardClaims: jwt.StandardClaims{
			Issuer:    issuer,
			IssuedAt:  now.Unix(),
			ExpiresAt: exp.Unix(),
		},
	})
	signed, err := tok.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

func (t *TokenIssuer) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == 0 || claims.Issuer != issuer {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
