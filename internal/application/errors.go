package application

import "errors"

// Lifecycle and authentication errors. Handlers map these to HTTP statuses;
// nothing in this package knows about transport.
var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrCPFTaken          = errors.New("cpf already registered")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrAccountPending    = errors.New("account awaiting review")
	ErrAccountRejected   = errors.New("account rejected")
	ErrAccountBlocked    = errors.New("account blocked")
	// ErrInvalidState is the defensive arm for a status value outside the
	// closed enumeration, i.e. corrupted data.
	ErrInvalidState = errors.New("account in unrecognized state")
)

// Recovery errors.
var (
	ErrEmailNotFound     = errors.New("email not found")
	ErrAccountNotActive  = errors.New("account not active")
	ErrNoChallenge       = errors.New("no recovery code issued")
	ErrChallengeExpired  = errors.New("recovery code expired")
	ErrChallengeMismatch = errors.New("recovery code mismatch")
)
