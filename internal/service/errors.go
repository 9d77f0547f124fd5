package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrInvalidCredentials  = errors.New("Unable to log in with provided credentials.")
	ErrUserInactive        = errors.New("User inactive or deleted.")
	ErrInvalidToken        = errors.New("Invalid token.")

	ErrVersionIsNotSpecified = errors.New("app version is not specified")
)
