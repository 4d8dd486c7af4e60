// Package auth resolves bearer credentials into learner identities.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core"
)

var (
	// errors
	ErrUnauthenticated   = core.NewError(core.KindUnauthenticated, "missing credential")
	ErrInvalidCredential = core.NewError(core.KindInvalidCredential, "invalid or expired credential")
	ErrForbidden         = core.NewError(core.KindForbidden, "permission denied")

	signingMethod = jwt.SigningMethodHS256
)

// Identity is the opaque, stable identifier of an authenticated learner.
type Identity string

func (id Identity) String() string { return string(id) }

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
}

// Guard verifies and issues signed bearer credentials. It holds no state besides its settings.
type Guard struct {
	key        []byte
	issuer     string
	audience   string
	expiration time.Duration

	NowFunc func() time.Time // mockable
}

func NewGuard(conf *core.Config) *Guard {
	return &Guard{
		key:        []byte(conf.SecretKey),
		issuer:     conf.Server.JWTIssuer,
		audience:   conf.Server.JWTAudience,
		expiration: conf.Server.JWTExpirationDelta,
		NowFunc:    time.Now,
	}
}

// Verify resolves token into an Identity.
func (g *Guard) Verify(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrUnauthenticated
	}

	claims := new(Claims)
	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(*jwt.Token) (interface{}, error) { return g.key, nil },
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(g.issuer),
		jwt.WithAudience(g.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.NowFunc),
	)
	if err != nil {
		return "", ErrInvalidCredential.WithCause(err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", ErrInvalidCredential.WithCause(errors.New("missing subject"))
	}
	return Identity(claims.Subject), nil
}

// Issue generates a signed JWT representing id.
func (g *Guard) Issue(id Identity) (string, error) {
	if id == "" {
		return "", errors.New("issuing token: empty identity")
	}
	now := g.NowFunc()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   id.String(),
			Audience:  jwt.ClaimStrings{g.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(g.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	ss, err := jwt.NewWithClaims(signingMethod, claims).SignedString(g.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// Authorize fails with ErrForbidden unless actor owns the resource.
func Authorize(actor, owner Identity) error {
	if actor == "" || actor != owner {
		return ErrForbidden
	}
	return nil
}

type ctxKey struct{}

func NewContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the Identity stored in ctx, or ErrUnauthenticated.
func FromContext(ctx context.Context) (Identity, error) {
	if id, ok := ctx.Value(ctxKey{}).(Identity); ok && id != "" {
		return id, nil
	}
	return "", ErrUnauthenticated
}
