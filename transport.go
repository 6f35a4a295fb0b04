package session

import "net/http"

// BearerTransport is an http.RoundTripper that attaches the current stored
// token as "Authorization: Bearer <token>" to every outgoing request. This
// is the one obligation the session core places on all other API-calling
// collaborators; give them an *http.Client built with NewAuthenticatedClient
// and they never touch the token directly.
type BearerTransport struct {
	store TokenStore
	base  http.RoundTripper
}

var _ http.RoundTripper = (*BearerTransport)(nil)

// NewBearerTransport wraps base (http.DefaultTransport when nil).
func NewBearerTransport(store TokenStore, base http.RoundTripper) *BearerTransport {
	return &BearerTransport{
		store: store,
		base:  base,
	}
}

// NewAuthenticatedClient returns an *http.Client whose requests carry the
// stored bearer token.
func NewAuthenticatedClient(store TokenStore) *http.Client {
	return &http.Client{
		Transport: NewBearerTransport(store, nil),
	}
}

// RoundTrip implements http.RoundTripper. Requests made while no token is
// present go out without an Authorization header; the backend's 401 is the
// signal, not a client-side failure.
func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, present, err := t.store.Get(req.Context())
	if err == nil && present {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}

	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	return base.RoundTrip(req)
}
