package users

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with that username or email already exists")
	ErrInvalidRole       = errors.New("no such role")
)
