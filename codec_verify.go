package session

import (
	stderrors "errors"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// VerifyingCodec is the signature-checking extension point. It decodes
// claims exactly like ParseCodec but additionally verifies the token
// signature against a JWK Set. Expiry is still left to the session manager
// so both codecs share one clock.
type VerifyingCodec struct {
	jwks *keyfunc.JWKS
}

var _ Codec = (*VerifyingCodec)(nil)

// NewVerifyingCodec fetches and caches the JWK Set at the given URL.
func NewVerifyingCodec(jwksURL string, opts ...keyfunc.Options) (*VerifyingCodec, error) {
	options := keyfunc.Options{}
	if len(opts) > 0 {
		options = opts[0]
	}

	jwks, err := keyfunc.Get(jwksURL, options)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to fetch JWK Set")
	}

	return &VerifyingCodec{jwks: jwks}, nil
}

// NewVerifyingCodecFromKeys builds a codec from pre-shared keys, keyed by
// kid. Useful for tests and deployments without a JWKS endpoint.
func NewVerifyingCodecFromKeys(keys map[string]keyfunc.GivenKey) *VerifyingCodec {
	return &VerifyingCodec{jwks: keyfunc.NewGiven(keys)}
}

// Decode implements Codec.
func (c *VerifyingCodec) Decode(token string) (*TokenClaims, error) {
	if token == "" {
		return nil, detailError(ErrTokenMalformed, "token is empty")
	}

	claims := &TokenClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, c.jwks.Keyfunc, jwt.WithoutClaimsValidation())
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrBadSignature
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode).
			WithCode(ErrTokenMalformed.Code)
	}

	if !parsed.Valid {
		return nil, ErrBadSignature
	}

	if err := requireClaims(claims); err != nil {
		return nil, err
	}

	return claims, nil
}
