package auth

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrIdentityConflict = errors.New("username or email is already taken")
	ErrInvalidCode      = errors.New("invalid or expired confirmation code")
	ErrInvalidToken     = errors.New("invalid or expired token")
)
