package session

import (
	"net/http"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RouteGuard applies the access gate to router navigation. The two deny
// outcomes are explicit and consistent: a missing session redirects to the
// login route, a role mismatch renders an in-place forbidden notice.
type RouteGuard struct {
	sessions         *Manager
	cfg              Config
	Logger           Logger
	ForbiddenHandler func(c router.Context, err error) error
}

// NewRouteGuard builds a guard over the session manager.
func NewRouteGuard(sessions *Manager, cfg Config) *RouteGuard {
	g := &RouteGuard{
		sessions: sessions,
		cfg:      cfg,
		Logger:   defLogger{},
	}

	g.ForbiddenHandler = g.defaultForbiddenHandler

	return g
}

// Protected returns middleware enforcing the route's role requirement. Pass
// an empty role for routes that only require authentication.
func (g *RouteGuard) Protected(requiredRole Role) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			var identity *Identity
			if current, ok := g.sessions.CurrentIdentity(); ok {
				identity = &current
			}

			switch Authorize(identity, requiredRole) {
			case DecisionAllow:
				if identity != nil {
					c.SetContext(WithIdentityContext(c.Context(), *identity))
				}
				return next(c)

			case DecisionDeny:
				return g.ForbiddenHandler(c, metadataError(ErrForbidden, map[string]any{
					"required_role": string(requiredRole),
					"role":          string(identity.Role),
					"path":          c.OriginalURL(),
				}))

			default:
				return g.redirectToLogin(c)
			}
		}
	}
}

// SetRedirect remembers the rejected route so the user can be sent back
// after logging in.
func (g *RouteGuard) SetRedirect(c router.Context) {
	rejectedRoute := g.cfg.GetRejectedRouteKey()

	g.Logger.Info("Setting redirect cookie %s to %s", rejectedRoute, c.OriginalURL())

	c.Cookie(&router.Cookie{
		Name:     rejectedRoute,
		Value:    c.OriginalURL(),
		Expires:  time.Now().Add(time.Minute * 5),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

// GetRedirect returns the remembered rejected route, or def when none was
// recorded, clearing the cookie either way.
func (g *RouteGuard) GetRedirect(c router.Context, def ...string) string {
	rejectedRoute := g.cfg.GetRejectedRouteKey()
	r := c.Cookies(rejectedRoute)
	if r == "" {
		if len(def) > 0 {
			return def[0]
		}
		return ""
	}
	g.cookieDel(c, rejectedRoute)
	return r
}

// GetRedirectOrDefault resolves the post-login destination: the rejected
// route, the referer, then the configured default.
func (g *RouteGuard) GetRedirectOrDefault(c router.Context) string {
	rejectedRoute := g.cfg.GetRejectedRouteKey()
	refererHeader := string(c.Referer())

	r := c.Cookies(rejectedRoute, refererHeader)
	if r == "" {
		r = g.cfg.GetRejectedRouteDefault()
	}
	g.cookieDel(c, rejectedRoute)
	return r
}

func (g *RouteGuard) redirectToLogin(c router.Context) error {
	g.SetRedirect(c)

	statusCode := http.StatusSeeOther
	if c.Method() == string(router.GET) {
		statusCode = http.StatusFound
	}
	return c.Redirect(g.cfg.GetLoginRoute(), statusCode)
}

func (g *RouteGuard) defaultForbiddenHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuthz, "access denied").
			WithCode(errors.CodeForbidden)
	}

	g.Logger.Info(
		"Forbidden route access: %s [%s] %s",
		richErr.Message,
		richErr.TextCode,
		print.MaybePrettyJSON(richErr.Metadata),
	)

	return c.Status(richErr.Code).Render("errors/403", router.ViewContext{
		"error":    richErr,
		"redirect": g.cfg.GetRejectedRouteDefault(),
	})
}

func (g *RouteGuard) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}
