package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	session "github.com/recruitkit/go-session"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTokenStore implements session.TokenStore
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Get(ctx context.Context) (string, bool, error) {
	args := m.Called(ctx)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockTokenStore) Set(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockOTPService implements session.OTPService
type MockOTPService struct {
	mock.Mock
}

func (m *MockOTPService) RequestCode(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockOTPService) VerifyCode(ctx context.Context, email, code string) (string, error) {
	args := m.Called(ctx, email, code)
	return args.String(0), args.Error(1)
}

// MockActivitySink implements session.ActivitySink
type MockActivitySink struct {
	mock.Mock
}

func (m *MockActivitySink) Record(ctx context.Context, event session.ActivityEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// recordingSink collects events without expectations; handy when a test only
// cares about the sequence.
type recordingSink struct {
	events []session.ActivityEvent
}

func (s *recordingSink) Record(_ context.Context, event session.ActivityEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) types() []session.ActivityEventType {
	out := make([]session.ActivityEventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.EventType)
	}
	return out
}

// stubOTPService lets a test script responses or re-enter the flow from
// inside an outstanding call.
type stubOTPService struct {
	requestCode func(ctx context.Context, email string) (string, error)
	verifyCode  func(ctx context.Context, email, code string) (string, error)
}

func (s *stubOTPService) RequestCode(ctx context.Context, email string) (string, error) {
	if s.requestCode == nil {
		return "", nil
	}
	return s.requestCode(ctx, email)
}

func (s *stubOTPService) VerifyCode(ctx context.Context, email, code string) (string, error) {
	if s.verifyCode == nil {
		return "", nil
	}
	return s.verifyCode(ctx, email, code)
}

// serverError mimics what the HTTP service produces when the backend rejects
// a request with a detail message.
func serverError(sentinel *errors.Error, detail string) error {
	clone := sentinel.Clone()
	clone.Message = detail
	clone.Source = sentinel
	return clone
}

const testSigningKey = "test-signing-key"

// signedToken builds a structurally valid bearer token carrying the given
// claims. The codec never checks the signature, any key works.
func signedToken(t *testing.T, sub, role string, exp time.Time) string {
	t.Helper()

	claims := jwt.MapClaims{}
	if sub != "" {
		claims["sub"] = sub
	}
	if role != "" {
		claims["role"] = role
	}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(testSigningKey))
	require.NoError(t, err)

	return token
}
