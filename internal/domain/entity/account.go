package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the closed set of account lifecycle states. Anything else read
// from storage is a data-integrity error, not a new state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusBlocked  Status = "blocked"
)

// Valid reports whether s is one of the recognized lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusBlocked:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// Account is the aggregate root for the registration domain.
// PasswordHash holds a bcrypt digest; the plaintext secret is never stored.
type Account struct {
	ID           int64
	CPF          string
	Name         string
	Email        string
	Phone        string
	BirthDate    *time.Time
	PasswordHash string
	Status       Status
	Balance      decimal.Decimal
	RequestedAt  time.Time
	DecidedAt    *time.Time
}

// AdminPrincipal is the credential record for the admin login path.
// Not a full account; it has no lifecycle.
type AdminPrincipal struct {
	Username     string
	PasswordHash string
}
