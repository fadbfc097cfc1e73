// Package auth issues and verifies signed session tokens (JWT, HS256).
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/minibank/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the registered claims plus the account role.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// IssuedToken is a freshly signed token and the times embedded in it.
type IssuedToken struct {
	Raw       string
	Subject   string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issuer mints tokens with a fixed time-to-live.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	return &Issuer{secret: secret, ttl: ttl, now: time.Now}
}

// Issue signs a token for subject. ExpiresAt is always IssuedAt + ttl;
// both are truncated to whole seconds, the precision of JWT dates.
func (i *Issuer) Issue(subject, role string) (*IssuedToken, error) {
	if len(i.secret) == 0 {
		return nil, common.NewError(common.CodeConfiguration, "token signing secret is not configured")
	}
	if subject == "" {
		return nil, common.NewError(common.CodeInvalidArgument, "token subject is required")
	}

	issuedAt := i.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(i.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role: role,
	})

	raw, err := token.SignedString(i.secret)
	if err != nil {
		return nil, common.WrapError(common.CodeInternal, "failed to sign token", err)
	}

	return &IssuedToken{
		Raw:       raw,
		Subject:   subject,
		Role:      role,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Verifier resolves a presented token to its subject. It never touches
// storage.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

func NewVerifier(secret []byte) *Verifier {
	return &Verifier{secret: secret, now: time.Now}
}

// Verify returns the token subject. An empty token is ErrTokenMissing;
// a bad signature, expiry or missing subject are all ErrTokenInvalid.
func (v *Verifier) Verify(raw string) (*Claims, error) {
	if raw == "" {
		return nil, common.ErrTokenMissing
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (any, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, common.WrapError(common.CodeTokenInvalid, common.ErrTokenInvalid.Message, err)
	}
	if !token.Valid {
		return nil, common.ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, common.WrapError(common.CodeTokenInvalid, common.ErrTokenInvalid.Message, errors.New("subject claim is missing"))
	}

	return claims, nil
}
