package repository

import (
	"context"
	"time"

	"github.com/contalivre/cadastro-api/internal/domain/entity"
)

// AccountField names a column usable in availability checks.
type AccountField string

const (
	FieldCPF   AccountField = "cpf"
	FieldName  AccountField = "name"
	FieldEmail AccountField = "email"
	FieldPhone AccountField = "phone"
)

// AccountRepository defines the storage contract for account rows.
// UpdateStatus and UpdateSecretByEmail return the number of rows affected;
// zero means the target did not exist (or was not in an eligible state) and
// callers must treat that as not-found rather than silent success.
type AccountRepository interface {
	Create(ctx context.Context, a *entity.Account) error
	FindByID(ctx context.Context, id int64) (*entity.Account, error)
	FindByCPF(ctx context.Context, cpf string) (*entity.Account, error)
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)
	ExistsBy(ctx context.Context, field AccountField, value string) (bool, error)
	UpdateStatus(ctx context.Context, id int64, from []entity.Status, to entity.Status, decidedAt *time.Time) (int64, error)
	UpdateSecretByEmail(ctx context.Context, email, passwordHash string) (int64, error)
	CountByStatus(ctx context.Context, status entity.Status) (int64, error)
	ListByStatuses(ctx context.Context, statuses []entity.Status) ([]entity.Account, error)
	List(ctx context.Context) ([]entity.Account, error)
}

// AdminRepository looks up admin principals for the admin login path.
type AdminRepository interface {
	FindByUsername(ctx context.Context, username string) (*entity.AdminPrincipal, error)
	Upsert(ctx context.Context, username, passwordHash string) error
}

// AuditRepository appends and reads immutable activity records.
type AuditRepository interface {
	Append(ctx context.Context, rec *entity.AuditRecord) error
	ListWithAccountNames(ctx context.Context, limit int) ([]entity.AuditRecord, error)
}
