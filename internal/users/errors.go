package users

import "errors"

var (
	// ErrNotFound reports that no record matched the lookup.
	ErrNotFound = errors.New("user not found")

	// ErrUsernameTaken reports a username uniqueness violation on create
	// or update.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidCredentials reports a failed authentication attempt:
	// unknown username, wrong password, or an account with no password
	// set.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
