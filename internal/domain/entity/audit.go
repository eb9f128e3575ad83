package entity

import "time"

// Audit event kinds. The set is closed; new kinds get a constant here.
const (
	AuditLoginSuccess       = "login_success"
	AuditLoginDenied        = "login_denied"
	AuditApprovalGranted    = "approval_granted"
	AuditApprovalDenied     = "approval_denied"
	AuditSignupSuccess      = "signup_success"
	AuditSignupDenied       = "signup_denied"
	AuditRecoveryCodeSent   = "recovery_code_sent"
	AuditRecoveryCodeDenied = "recovery_code_denied"
	AuditRecoveryValidated  = "recovery_validated"
	AuditRecoveryRedeemed   = "recovery_redeemed"
)

// AuditRecord is one immutable activity row. AccountID is nil when the
// actor could not be resolved to an account.
type AuditRecord struct {
	ID        int64
	AccountID *int64
	Kind      string
	Detail    string
	OriginIP  string
	UserAgent string
	CreatedAt time.Time

	// AccountName is populated only by joined read queries.
	AccountName string
}
