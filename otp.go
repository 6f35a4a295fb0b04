package session

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
)

const (
	requestOTPPath = "/users/login/request-otp"
	verifyOTPPath  = "/users/login/verify-otp"
)

// OTPService abstracts the two network round-trips of the passwordless
// login: issuing a one-time passcode and trading it for a bearer token.
type OTPService interface {
	// RequestCode asks the issuing endpoint to email a passcode. It returns
	// the human-readable status message from the response.
	RequestCode(ctx context.Context, email string) (string, error)

	// VerifyCode trades the passcode for a bearer token.
	VerifyCode(ctx context.Context, email, code string) (string, error)
}

type otpRequestPayload struct {
	Email string `json:"email"`
}

type otpVerifyPayload struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type otpRequestResponse struct {
	Message string `json:"message"`
}

type otpVerifyResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type errorDetail struct {
	Detail string `json:"detail"`
}

// HTTPOTPService talks to the recruitment backend's OTP endpoints.
type HTTPOTPService struct {
	baseURL    string
	httpClient *http.Client
	logger     Logger
}

var _ OTPService = (*HTTPOTPService)(nil)

// OTPServiceOption customizes an HTTPOTPService.
type OTPServiceOption func(*HTTPOTPService)

// WithOTPHTTPClient injects a custom HTTP client. Timeout policy belongs to
// the transport; a timeout surfaces as a normal request failure.
func WithOTPHTTPClient(client *http.Client) OTPServiceOption {
	return func(s *HTTPOTPService) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithOTPLogger overrides the default logger.
func WithOTPLogger(logger Logger) OTPServiceOption {
	return func(s *HTTPOTPService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHTTPOTPService creates a client for the OTP endpoints under cfg's base
// URL.
func NewHTTPOTPService(cfg Config, opts ...OTPServiceOption) *HTTPOTPService {
	timeout := time.Duration(cfg.GetRequestTimeout()) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	s := &HTTPOTPService{
		baseURL:    strings.TrimRight(cfg.GetBaseURL(), "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// RequestCode implements OTPService.
func (s *HTTPOTPService) RequestCode(ctx context.Context, email string) (string, error) {
	out := otpRequestResponse{}

	if err := s.postJSON(ctx, requestOTPPath, otpRequestPayload{Email: email}, &out, ErrOTPRequestFailed); err != nil {
		return "", err
	}

	return out.Message, nil
}

// VerifyCode implements OTPService.
func (s *HTTPOTPService) VerifyCode(ctx context.Context, email, code string) (string, error) {
	out := otpVerifyResponse{}

	if err := s.postJSON(ctx, verifyOTPPath, otpVerifyPayload{Email: email, OTP: code}, &out, ErrOTPVerifyFailed); err != nil {
		return "", err
	}

	if out.AccessToken == "" {
		return "", detailError(ErrOTPVerifyFailed, "verification response is missing access_token")
	}

	return out.AccessToken, nil
}

func (s *HTTPOTPService) postJSON(ctx context.Context, path string, payload, out any, sentinel *errors.Error) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return detailError(sentinel, "")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return detailError(sentinel, "")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Warn("OTP endpoint %s unreachable: %v", path, err)
		return detailError(sentinel, "")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return detailError(sentinel, "")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := errorDetail{}
		_ = json.Unmarshal(raw, &detail)
		s.logger.Debug("OTP endpoint %s rejected request with status %d", path, resp.StatusCode)
		return detailError(sentinel, detail.Detail)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return detailError(sentinel, "")
	}

	return nil
}
