package session

// Config holds client options
type Config interface {
	GetBaseURL() string
	GetStorageKey() string
	GetRequestTimeout() int
	GetLoginRoute() string
	GetRejectedRouteKey() string
	GetRejectedRouteDefault() string
}

// ClientConfig is a plain-struct Config with sensible defaults applied by
// its getters.
type ClientConfig struct {
	// BaseURL of the recruitment backend, e.g. "http://localhost:8000".
	BaseURL string
	// StorageKey the persisted token lives under; defaults to "authToken".
	StorageKey string
	// RequestTimeout for OTP calls, in seconds; defaults to 10.
	RequestTimeout int
	// LoginRoute unauthenticated users are redirected to; defaults to "/login".
	LoginRoute string
	// RejectedRouteKey names the cookie remembering the route a redirect
	// interrupted; defaults to "rejected_route".
	RejectedRouteKey string
	// RejectedRouteDefault is where users land after login when no rejected
	// route was recorded; defaults to "/dashboard".
	RejectedRouteDefault string
}

var _ Config = ClientConfig{}

func (c ClientConfig) GetBaseURL() string {
	return c.BaseURL
}

func (c ClientConfig) GetStorageKey() string {
	if c.StorageKey == "" {
		return DefaultStorageKey
	}
	return c.StorageKey
}

func (c ClientConfig) GetRequestTimeout() int {
	if c.RequestTimeout <= 0 {
		return 10
	}
	return c.RequestTimeout
}

func (c ClientConfig) GetLoginRoute() string {
	if c.LoginRoute == "" {
		return "/login"
	}
	return c.LoginRoute
}

func (c ClientConfig) GetRejectedRouteKey() string {
	if c.RejectedRouteKey == "" {
		return "rejected_route"
	}
	return c.RejectedRouteKey
}

func (c ClientConfig) GetRejectedRouteDefault() string {
	if c.RejectedRouteDefault == "" {
		return "/dashboard"
	}
	return c.RejectedRouteDefault
}
