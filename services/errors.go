package services

import "errors"

// Errors shared across services and the HTTP error mapping. Engine errors
// (package brackets) pass through wrapped, so handlers can match on both
// layers with errors.Is.
var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrUserNotFound       = errors.New("user not found")

	ErrValidationFailed        = errors.New("validation failed")
	ErrTournamentNameRequired  = errors.New("tournament name is required")
	ErrTournamentInvalidFormat = errors.New("invalid tournament format")
	ErrPlayerNameRequired      = errors.New("player name is required")
	ErrPasswordTooShort        = errors.New("password is too short")

	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrPlayersOnlyInDraft     = errors.New("players can only be changed while the tournament is a draft")
	ErrTournamentNotDraft     = errors.New("tournament has already been started")
	ErrTournamentNotActive    = errors.New("tournament is not active")

	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	ErrLogoStorageDisabled = errors.New("logo storage is not configured")
)
