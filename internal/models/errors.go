package models

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated  = errors.New("authentication required")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrMisconfigured    = errors.New("payment system not configured")
	ErrUpstream         = errors.New("payment provider error")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrNotFound         = errors.New("not found")
	ErrPersistence      = errors.New("persistence error")
	ErrUserExists       = errors.New("user with this email already exists")
	ErrInvalidInput     = errors.New("invalid input")
)

// ErrCheckoutCreationFailed ошибка создания checkout у провайдера.
var ErrCheckoutCreationFailed = fmt.Errorf("checkout creation failed: %w", ErrUpstream)

// ErrInvalidCredentials неверный email или пароль.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthenticated)
