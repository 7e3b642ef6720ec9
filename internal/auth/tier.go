package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carries the access tier granted by a signed token.
type Claims struct {
	Tier string `json:"tier"`
	jwt.RegisteredClaims
}

// Resolver maps a caller token to an access tier. Static premium tokens are
// compared by hash in constant time; anything else must be an HS256 JWT.
type Resolver struct {
	secret        []byte
	premiumHashes [][]byte
}

func NewResolver(jwtSecret string, premiumTokens []string) *Resolver {
	r := &Resolver{secret: []byte(jwtSecret)}
	for _, t := range premiumTokens {
		if t = strings.TrimSpace(t); t != "" {
			r.premiumHashes = append(r.premiumHashes, hashToken(t))
		}
	}
	return r
}

// Resolve returns TierFree for an empty token.
func (r *Resolver) Resolve(token string) (Tier, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return TierFree, nil
	}

	h := hashToken(token)
	for _, p := range r.premiumHashes {
		if subtle.ConstantTimeCompare(h, p) == 1 {
			return TierPremium, nil
		}
	}

	if len(r.secret) == 0 {
		return "", ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}

	switch Tier(claims.Tier) {
	case TierPremium:
		return TierPremium, nil
	case TierFree, "":
		return TierFree, nil
	default:
		return "", fmt.Errorf("%w: unknown tier %q", ErrInvalidToken, claims.Tier)
	}
}

// Sign issues a token for the given tier. Used by operators and tests.
func (r *Resolver) Sign(tier Tier, claims jwt.RegisteredClaims) (string, error) {
	if len(r.secret) == 0 {
		return "", errors.New("jwt secret not configured")
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Tier: string(tier), RegisteredClaims: claims})
	return t.SignedString(r.secret)
}

func hashToken(token string) []byte {
	h := sha256.Sum256([]byte(token))
	return h[:]
}
