// Package auth provides authentication and authorisation for Sentra.
//
// It implements the security core of the system:
//   - bcrypt password hashing with a configurable work factor
//   - a progressive account lockout state machine (three consecutive
//     failures lock the account until out-of-band intervention)
//   - stateless JWT session tokens (HS256, injected secret, 24h default
//     lifetime, no revocation list)
//   - an access guard that verifies bearer tokens and enforces device
//     ownership
//
// Ownership is the only authorisation model: a device belongs to exactly
// one account, and sensor readings are authorised transitively through the
// device's owner. Every device and reading operation in the HTTP layer
// passes through Guard; there are no row-level checks elsewhere.
//
// Lockout bookkeeping serialises the read-modify-write of the failure
// counter per account (keyed mutex in Service), so concurrent attempts
// against the same account cannot lose updates. Token verification is
// stateless and lock-free.
package auth
