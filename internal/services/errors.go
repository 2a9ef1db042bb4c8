package services

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var (
	ErrDuplicateEmail     = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNoRoadmap          = errors.New("no active roadmap")
	ErrNoProfile          = errors.New("no completed assessment")
	// ErrStaleSession means the session ended or changed account while a
	// synthesis was in flight. The result is discarded.
	ErrStaleSession = errors.New("session changed during synthesis")
	ErrInvalidTask  = errors.New("task does not exist in the active roadmap")
)

var validate = validator.New(validator.WithRequiredStructEnabled())
