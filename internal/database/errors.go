package database

import "errors"

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrInquiryNotFound    = errors.New("inquiry not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
