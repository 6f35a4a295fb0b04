package session

import (
	"context"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
)

// FlowState is a step of the two-round-trip OTP login.
type FlowState string

const (
	// FlowAwaitingEmail is the initial state: no passcode requested yet.
	FlowAwaitingEmail FlowState = "awaiting_email"
	// FlowRequestingCode means the request-otp call is outstanding.
	FlowRequestingCode FlowState = "requesting_code"
	// FlowAwaitingCode means a passcode was emailed, waiting for the user.
	FlowAwaitingCode FlowState = "awaiting_code"
	// FlowVerifying means the verify-otp call is outstanding.
	FlowVerifying FlowState = "verifying"
	// FlowComplete means a token was obtained and the session established.
	FlowComplete FlowState = "complete"
)

// OTPFlow orchestrates the passwordless login protocol and hands the
// resulting bearer token to the session Manager. A failed verification
// returns to FlowAwaitingCode so the user can retry; Restart returns to
// FlowAwaitingEmail. Operations are rejected while a network call is
// outstanding so a double submission cannot race itself.
type OTPFlow struct {
	mu       sync.Mutex
	state    FlowState
	email    string
	message  string
	lastErr  string
	svc      OTPService
	sessions *Manager
	logger   Logger
	sink     ActivitySink
	now      func() time.Time

	transitions map[FlowState]map[FlowState]struct{}
}

// FlowOption customizes an OTPFlow.
type FlowOption func(*OTPFlow)

// WithFlowLogger overrides the default logger.
func WithFlowLogger(logger Logger) FlowOption {
	return func(f *OTPFlow) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithFlowActivitySink sets the sink OTP events go to.
func WithFlowActivitySink(sink ActivitySink) FlowOption {
	return func(f *OTPFlow) {
		f.sink = normalizeActivitySink(sink)
	}
}

// WithFlowClock injects a custom clock (useful for tests).
func WithFlowClock(clock func() time.Time) FlowOption {
	return func(f *OTPFlow) {
		if clock != nil {
			f.now = clock
		}
	}
}

// NewOTPFlow returns a flow in FlowAwaitingEmail.
func NewOTPFlow(svc OTPService, sessions *Manager, opts ...FlowOption) *OTPFlow {
	f := &OTPFlow{
		state:    FlowAwaitingEmail,
		svc:      svc,
		sessions: sessions,
		logger:   defLogger{},
		sink:     noopActivitySink{},
		now:      time.Now,
		transitions: map[FlowState]map[FlowState]struct{}{
			FlowAwaitingEmail: {
				FlowRequestingCode: {},
			},
			FlowRequestingCode: {
				FlowAwaitingCode:  {},
				FlowAwaitingEmail: {},
			},
			FlowAwaitingCode: {
				FlowVerifying: {},
			},
			FlowVerifying: {
				FlowComplete:     {},
				FlowAwaitingCode: {},
			},
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	return f
}

// State returns the current flow state.
func (f *OTPFlow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Email returns the address the passcode was requested for.
func (f *OTPFlow) Email() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email
}

// Message returns the display message from the last successful code request.
func (f *OTPFlow) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// LastError returns the user-facing message of the last failure, empty when
// the last operation succeeded.
func (f *OTPFlow) LastError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// RequestCode asks the backend to email a passcode. Valid only from
// FlowAwaitingEmail; on failure the flow stays there and the server-supplied
// error message is surfaced through LastError.
func (f *OTPFlow) RequestCode(ctx context.Context, email string) error {
	f.mu.Lock()

	if f.inFlightLocked() {
		f.mu.Unlock()
		return ErrRequestInFlight
	}

	if f.state != FlowAwaitingEmail {
		f.mu.Unlock()
		return metadataError(ErrInvalidFlowState, map[string]any{
			"state":     f.state,
			"operation": "request_code",
		})
	}

	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		f.lastErr = ErrInvalidEmail.Message
		f.mu.Unlock()
		return ErrInvalidEmail
	}

	f.setStateLocked(FlowRequestingCode)
	f.email = email
	f.message = ""
	f.lastErr = ""
	f.mu.Unlock()

	message, err := f.svc.RequestCode(ctx, email)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		f.setStateLocked(FlowAwaitingEmail)
		f.lastErr = errorMessage(err, ErrOTPRequestFailed.Message)
		f.emitLocked(ctx, ActivityEventOTPFailure, email, map[string]any{
			"step":  "request",
			"error": f.lastErr,
		})
		return err
	}

	f.setStateLocked(FlowAwaitingCode)
	f.message = message
	f.emitLocked(ctx, ActivityEventOTPRequested, email, nil)

	return nil
}

// VerifyCode trades the emailed passcode for a bearer token and establishes
// the session. Valid only from FlowAwaitingCode. A code that is not exactly
// six digits fails locally without a network round-trip.
func (f *OTPFlow) VerifyCode(ctx context.Context, email, code string) error {
	f.mu.Lock()

	if f.inFlightLocked() {
		f.mu.Unlock()
		return ErrRequestInFlight
	}

	if f.state != FlowAwaitingCode {
		f.mu.Unlock()
		return metadataError(ErrInvalidFlowState, map[string]any{
			"state":     f.state,
			"operation": "verify_code",
		})
	}

	if err := validation.Validate(code, validation.Required, validation.Length(6, 6), is.Digit); err != nil {
		f.lastErr = ErrIncompleteCode.Message
		f.mu.Unlock()
		return ErrIncompleteCode
	}

	f.setStateLocked(FlowVerifying)
	f.lastErr = ""
	f.mu.Unlock()

	token, err := f.svc.VerifyCode(ctx, email, code)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		f.setStateLocked(FlowAwaitingCode)
		f.lastErr = errorMessage(err, ErrOTPVerifyFailed.Message)
		f.emitLocked(ctx, ActivityEventOTPFailure, email, map[string]any{
			"step":  "verify",
			"error": f.lastErr,
		})
		return err
	}

	if err := f.sessions.Login(ctx, token); err != nil {
		// The issuing service handed back a token the codec rejects. The
		// session already self-healed; let the user retry.
		f.logger.Error("verify returned an unusable token: %v", err)
		f.setStateLocked(FlowAwaitingCode)
		f.lastErr = ErrOTPVerifyFailed.Message
		f.emitLocked(ctx, ActivityEventOTPFailure, email, map[string]any{
			"step":  "login",
			"error": f.lastErr,
		})
		return err
	}

	f.setStateLocked(FlowComplete)
	f.emitLocked(ctx, ActivityEventOTPVerified, email, nil)

	return nil
}

// Restart returns the flow to FlowAwaitingEmail and clears message and error
// state. Valid from any state except while a call is outstanding.
func (f *OTPFlow) Restart() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.inFlightLocked() {
		return ErrRequestInFlight
	}

	f.state = FlowAwaitingEmail
	f.email = ""
	f.message = ""
	f.lastErr = ""

	return nil
}

func (f *OTPFlow) inFlightLocked() bool {
	return f.state == FlowRequestingCode || f.state == FlowVerifying
}

func (f *OTPFlow) setStateLocked(to FlowState) {
	if !f.canTransitionLocked(f.state, to) {
		// The operation guards make this unreachable; log it rather than
		// corrupt the flow if a new state is ever wired up incompletely.
		f.logger.Error("invalid flow transition from %s to %s", f.state, to)
		return
	}
	f.state = to
}

func (f *OTPFlow) canTransitionLocked(from, to FlowState) bool {
	if allowed, ok := f.transitions[from]; ok {
		_, exists := allowed[to]
		return exists
	}
	return false
}

func (f *OTPFlow) emitLocked(ctx context.Context, eventType ActivityEventType, email string, metadata map[string]any) {
	sink := normalizeActivitySink(f.sink)
	event := newActivityEvent(eventType, email, metadata, f.now())

	if err := sink.Record(ctx, event); err != nil {
		f.logger.Warn("flow activity sink error: %v", err)
	}
}

// errorMessage extracts the user-facing message from a rich error, falling
// back to a generic message for plain errors.
func errorMessage(err error, fallback string) string {
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.Message != "" {
		return richErr.Message
	}
	return fallback
}
