// Package auth implements account registration, email verification, login
// and session tokens.
//
// # Account lifecycle
//
// A user is created Pending (inactive) with a random verification token
// that expires exactly 24 hours after registration. Presenting the token
// activates the account and clears the token. Activation is one-way.
//
// # Sessions
//
// Login issues an HS256 JWT whose subject is the user id. Authenticate
// verifies the signature and expiry and resolves the user; every project
// operation derives the caller's identity this way.
//
// # Email
//
// The verification email is best effort. A Mailer failure is logged and
// never fails the registration.
package auth
