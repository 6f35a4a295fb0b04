package session

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// Codec decodes an opaque bearer token into structured claims. The default
// implementation does not verify signatures; the issuing service is the
// trust boundary and the client only parses. Deployments that cannot trust
// that boundary can swap in the JWKS backed VerifyingCodec.
type Codec interface {
	Decode(token string) (*TokenClaims, error)
}

// CodecFunc adapts a function into a Codec.
type CodecFunc func(token string) (*TokenClaims, error)

// Decode satisfies the Codec interface.
func (f CodecFunc) Decode(token string) (*TokenClaims, error) {
	if f == nil {
		return nil, ErrTokenMalformed
	}
	return f(token)
}

// ParseCodec is the default, stateless codec. It splits the token into its
// three segments, base64url-decodes the payload, and extracts claims. No
// signature verification is performed.
type ParseCodec struct{}

var _ Codec = ParseCodec{}

// Decode implements Codec. It is deterministic and total: it never panics,
// only returns claims or an error.
func (ParseCodec) Decode(token string) (*TokenClaims, error) {
	if token == "" {
		return nil, detailError(ErrTokenMalformed, "token is empty")
	}

	claims := &TokenClaims{}
	parser := jwt.NewParser()

	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode).
			WithCode(ErrTokenMalformed.Code)
	}

	if err := requireClaims(claims); err != nil {
		return nil, err
	}

	return claims, nil
}

// Decode runs the default codec; a convenience for callers that do not need
// to inject their own.
func Decode(token string) (*TokenClaims, error) {
	return ParseCodec{}.Decode(token)
}

func requireClaims(claims *TokenClaims) error {
	if claims.RegisteredClaims.Subject == "" {
		return missingClaim("sub")
	}
	if claims.UserRole == "" {
		return missingClaim("role")
	}
	if claims.RegisteredClaims.ExpiresAt == nil {
		return missingClaim("exp")
	}
	return nil
}

func missingClaim(field string) error {
	clone := ErrMissingClaim.Clone()
	if clone == nil {
		return ErrMissingClaim
	}
	clone.Message = "token is missing required claim: " + field
	clone.Source = ErrMissingClaim
	return clone.WithMetadata(map[string]any{"claim": field})
}
