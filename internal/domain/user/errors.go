package user

import "errors"

var (
	ErrInvalidToken          = errors.New("invalid token")
	ErrManagerAccessRequired = errors.New("manager access required")
	ErrInvalidRole           = errors.New("invalid role")
)
