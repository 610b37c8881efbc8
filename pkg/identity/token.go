package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "propdocs"

// ErrInvalidToken indicates the token failed signature or claim validation.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims carried by propdocs bearer tokens. The
// organization fields are flattened so the token stays a single level deep.
type Claims struct {
	Role              string   `json:"role"`
	OrgKind           string   `json:"org_kind,omitempty"`
	OrgID             string   `json:"org_id,omitempty"`
	CustomPermissions []string `json:"custom_permissions,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a token manager with the given signing secret and
// token lifetime.
func NewTokenManager(secret []byte, ttl time.Duration) (*TokenManager, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: secret, ttl: ttl}, nil
}

// IssueToken signs a token for the given principal.
func (tm *TokenManager) IssueToken(p *Principal) (string, error) {
	if p == nil || p.ID == "" {
		return "", errors.New("principal with an ID is required")
	}

	now := time.Now().UTC()
	claims := Claims{
		Role:              string(p.Role),
		CustomPermissions: p.CustomPermissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
			ID:        uuid.NewString(),
		},
	}
	if p.Organization != nil {
		claims.OrgKind = string(p.Organization.Kind)
		claims.OrgID = p.Organization.ID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies a bearer token and reconstructs the principal it
// was issued for. The returned principal reflects the token contents, not
// the current identity store row; callers that need fresh custom permissions
// should re-read the store.
func (tm *TokenManager) ValidateToken(tokenString string) (*Principal, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return tm.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	p := &Principal{
		ID:                claims.Subject,
		Role:              Role(claims.Role),
		CustomPermissions: claims.CustomPermissions,
		IsActive:          true,
	}
	if claims.OrgKind != "" && claims.OrgID != "" {
		p.Organization = &OrganizationRef{Kind: OrgKind(claims.OrgKind), ID: claims.OrgID}
	}
	return p, nil
}
