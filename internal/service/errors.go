package service

import "errors"

// Domain errors surfaced to handlers. Business-rule rejections never corrupt
// state; handlers translate them into response codes.
var (
	ErrUserBlocked           = errors.New("user account is blocked")
	ErrEmailTaken            = errors.New("email already registered")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrDirectionInactive     = errors.New("direction is not active")
	ErrWindowClosed          = errors.New("direction test window is closed")
	ErrAttemptsExhausted     = errors.New("no test attempts left")
	ErrPaymentRequired       = errors.New("no entitlement for this direction")
	ErrSessionConflict       = errors.New("active session already exists for this user and direction")
	ErrInsufficientQuestions = errors.New("not enough questions to build a snapshot")
	ErrSessionNotActive      = errors.New("session is already terminal")
	ErrNotSessionOwner       = errors.New("session belongs to another user")
	ErrUnknownQuestion       = errors.New("question is not part of the session snapshot")
	ErrInvalidAnswer         = errors.New("answer must be one of A, B, C, D")
	ErrTimeExpired           = errors.New("session time budget is exhausted")
	ErrResultNotReady        = errors.New("session has no result")
)
