// Package accounts implements a minimal user-account service core:
// credential verification, stateless bearer-token issuance and validation,
// and the resolution of a trusted current user from an inbound request.
//
// Components:
//   - Hasher: adaptive-cost bcrypt password hashing.
//   - TokenService: HS256 signed tokens carrying {sub, exp} claims.
//   - Users / RepositoryManager: bun-backed user persistence.
//   - UserProvider + Auther: identifier/password authentication and login.
//   - CurrentUserResolver: token -> user resolution plus superuser gating.
//
// Tokens are self-verifying; rotating the signing key invalidates every
// previously issued token. There is no revocation list and no refresh
// rotation. Password hashing is CPU-bound and runs on the calling
// goroutine; Go's preemptive scheduler keeps concurrent requests live
// while a hash is computed.
package accounts
