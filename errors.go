package session

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeTokenMalformed  = "session_token_malformed"
	TextCodeMissingClaim    = "session_missing_claim"
	TextCodeTokenExpired    = "session_token_expired"
	TextCodeBadSignature    = "session_bad_signature"
	TextCodeIncompleteCode  = "otp_incomplete_code"
	TextCodeInvalidEmail    = "otp_invalid_email"
	TextCodeRequestFailed   = "otp_request_failed"
	TextCodeVerifyFailed    = "otp_verify_failed"
	TextCodeRequestInFlight = "otp_request_in_flight"
	TextCodeInvalidState    = "otp_invalid_flow_state"
	TextCodeForbidden       = "route_forbidden"
)

// ErrTokenMalformed is returned when a bearer token is not a three segment
// structure with a decodable payload.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrMissingClaim is returned when a decoded payload lacks sub, role, or exp.
var ErrMissingClaim = errors.New("token is missing a required claim", errors.CategoryAuth).
	WithTextCode(TextCodeMissingClaim).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when the stored token's expiry is in the past.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrBadSignature is returned by the verifying codec when a signature does
// not check out against the configured JWKS.
var ErrBadSignature = errors.New("token signature is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeBadSignature).
	WithCode(errors.CodeUnauthorized)

// ErrIncompleteCode is returned before any network call when the submitted
// passcode is not exactly six digits.
var ErrIncompleteCode = errors.New("passcode must be 6 digits", errors.CategoryValidation).
	WithTextCode(TextCodeIncompleteCode).
	WithCode(errors.CodeBadRequest)

// ErrInvalidEmail is returned before any network call when the submitted
// email is not a plausible address.
var ErrInvalidEmail = errors.New("a valid email is required", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidEmail).
	WithCode(errors.CodeBadRequest)

// ErrOTPRequestFailed is returned when the passcode-issuing endpoint rejects
// the request or is unreachable.
var ErrOTPRequestFailed = errors.New("failed to request OTP", errors.CategoryAuth).
	WithTextCode(TextCodeRequestFailed).
	WithCode(errors.CodeUnauthorized)

// ErrOTPVerifyFailed is returned when passcode verification is rejected or
// the endpoint is unreachable.
var ErrOTPVerifyFailed = errors.New("invalid or expired code", errors.CategoryAuth).
	WithTextCode(TextCodeVerifyFailed).
	WithCode(errors.CodeUnauthorized)

// ErrRequestInFlight is returned when an OTP operation is re-invoked while a
// previous network call is still outstanding.
var ErrRequestInFlight = errors.New("a login request is already in flight", errors.CategoryConflict).
	WithTextCode(TextCodeRequestInFlight).
	WithCode(errors.CodeConflict)

// ErrInvalidFlowState is returned when an OTP operation is invoked from a
// state it is not valid in.
var ErrInvalidFlowState = errors.New("invalid login flow state", errors.CategoryConflict).
	WithTextCode(TextCodeInvalidState).
	WithCode(errors.CodeConflict)

// ErrForbidden is the route guard's deny outcome: authenticated but lacking
// the required role.
var ErrForbidden = errors.New("you do not have permission to access this page", errors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(errors.CodeForbidden)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTokenExpired) ||
		strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for structurally broken tokens
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrMissingClaim) ||
		strings.Contains(err.Error(), "token is malformed")
}

// metadataError clones a sentinel so call-site metadata can be attached
// without mutating the shared sentinel; errors.Is still matches through
// Source.
func metadataError(sentinel *errors.Error, metadata map[string]any) error {
	clone := sentinel.Clone()
	if clone == nil {
		return sentinel
	}
	clone.Source = sentinel
	return clone.WithMetadata(metadata)
}

// detailError clones a sentinel so a server supplied detail message can be
// surfaced while errors.Is still matches the sentinel.
func detailError(sentinel *errors.Error, detail string) error {
	clone := sentinel.Clone()
	if clone == nil {
		return sentinel
	}
	if detail != "" {
		clone.Message = detail
	}
	clone.Source = sentinel
	return clone
}
