package session_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	session "github.com/recruitkit/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeValidToken(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	token := signedToken(t, "recruiter@example.com", "HR", exp)

	claims, err := session.Decode(token)
	require.NoError(t, err)

	assert.Equal(t, "recruiter@example.com", claims.Email())
	assert.Equal(t, session.RoleHR, claims.Role())
	assert.Equal(t, exp.Unix(), claims.Expires().Unix())
}

func TestDecodeNormalizesRoleCase(t *testing.T) {
	token := signedToken(t, "a@b.com", "hr", time.Now().Add(time.Hour))

	claims, err := session.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, session.RoleHR, claims.Role())
}

func TestDecodeMalformedTokens(t *testing.T) {
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"a@b.com"}`))

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"single segment", "justonesegment"},
		{"two segments", "header.payload"},
		{"four segments", "a.b.c.d"},
		{"payload is not base64url", "aGVhZGVy.!!!not-base64!!!.c2ln"},
		{"payload is not JSON", "aGVhZGVy." + base64.RawURLEncoding.EncodeToString([]byte("plain text")) + ".c2ln"},
		{"missing header", "." + payload + ".c2ln"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			claims, err := session.Decode(tc.token)
			assert.Nil(t, claims)
			require.Error(t, err)
			assert.True(t, session.IsMalformedError(err))
		})
	}
}

func TestDecodeMissingClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"missing sub", signedToken(t, "", "HR", exp)},
		{"missing role", signedToken(t, "a@b.com", "", exp)},
		{"missing exp", signedToken(t, "a@b.com", "HR", time.Time{})},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			claims, err := session.Decode(tc.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, session.ErrMissingClaim)
		})
	}
}

// Decode never verifies signatures: a tampered signature segment still
// decodes. The issuing service is the trust boundary.
func TestDecodeIgnoresSignature(t *testing.T) {
	token := signedToken(t, "a@b.com", "Admin", time.Now().Add(time.Hour))
	tampered := token[:len(token)-4] + "XXXX"

	claims, err := session.Decode(tampered)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", claims.Email())
}

// Decode must be total: no panic on adversarial input, only claims or error.
func TestDecodeIsTotal(t *testing.T) {
	inputs := []string{
		"..",
		"...",
		"\x00.\x00.\x00",
		"e30.e30.e30",
		base64.RawURLEncoding.EncodeToString([]byte(`{}`)),
	}

	for _, input := range inputs {
		assert.NotPanics(t, func() {
			_, _ = session.Decode(input)
		})
	}
}

func signedTokenWithKid(t *testing.T, kid string, key []byte) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "a@b.com",
		"role": "HR",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	token.Header["kid"] = kid

	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestVerifyingCodecAcceptsGoodSignature(t *testing.T) {
	key := []byte("shared-secret")
	codec := session.NewVerifyingCodecFromKeys(map[string]keyfunc.GivenKey{
		"primary": keyfunc.NewGivenCustom(key, keyfunc.GivenKeyOptions{Algorithm: "HS256"}),
	})

	claims, err := codec.Decode(signedTokenWithKid(t, "primary", key))
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", claims.Email())
}

func TestVerifyingCodecRejectsBadSignature(t *testing.T) {
	codec := session.NewVerifyingCodecFromKeys(map[string]keyfunc.GivenKey{
		"primary": keyfunc.NewGivenCustom([]byte("shared-secret"), keyfunc.GivenKeyOptions{Algorithm: "HS256"}),
	})

	claims, err := codec.Decode(signedTokenWithKid(t, "primary", []byte("wrong-secret")))
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, session.ErrBadSignature)
}
