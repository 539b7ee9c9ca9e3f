// Package auth authenticates users and gates requests.
//
// Two schemes are supported and selected once at startup by AUTH_METHOD:
//
//	AUTH_METHOD=bearer_access_token  # JWT in "Authorization: Bearer <token>"
//	AUTH_METHOD=session_cookie       # opaque session id in a cookie (default)
//
// Building blocks:
//   - PasswordHasher: bcrypt (or argon2id) hashing and verification
//   - TokenCodec and PayloadFactory: HMAC-signed JWTs with access/refresh expiry
//   - LoginSessionService: server-side login sessions
//   - UserAuthService: credential checks shared by both login flows
//   - Authorizer: one implementation per scheme
//   - Middleware: the single request gate, with a glob exclusion list
//   - PermissionGuard: per-route permission checks
//
// Handlers read the attached identity with CurrentIdentity, CurrentUserID,
// CurrentPayload or CurrentSession; each returns Unauthorized when the
// request never passed the gate.
package auth
