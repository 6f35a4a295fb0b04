// Package session implements the authentication lifecycle and role gate of
// a recruitment-management client: the two-step one-time-passcode login,
// bearer-token storage and expiry handling, and the route-authorization
// decision in front of every protected view.
//
// Token handling:
//   - ParseCodec decodes a bearer token's claims without verifying its
//     signature; the issuing service is the trust boundary. VerifyingCodec
//     is the opt-in JWKS-backed extension point for deployments that cannot
//     trust that boundary.
//   - Manager owns the derived Identity and enforces the invariant that an
//     identity exists iff the store holds a valid, unexpired token. Broken
//     or stale tokens self-heal to "logged out" instead of surfacing errors.
//
// Login flow:
//   - OTPFlow drives request-otp/verify-otp against the backend, rejects
//     double submissions while a call is outstanding, and hands the
//     resulting token to the Manager.
//
// Authorization:
//   - Authorize maps identity plus required role to allow, deny, or
//     redirect-to-login; RouteGuard applies that decision as router
//     middleware. Admin satisfies every role requirement.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter describing session and
//     OTP events. Sinks run best-effort (errors are logged) so you can
//     forward to a database or queue without blocking login.
package session
