package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/contalivre/cadastro-api/internal/domain/entity"
	repo "github.com/contalivre/cadastro-api/internal/domain/repository"
	"github.com/contalivre/cadastro-api/pkg/helpers"
	"github.com/contalivre/cadastro-api/pkg/mailer"
)

// Notifier is the outbound notification collaborator. Delivery is
// fire-and-forget: publish failures are logged and never roll back the
// transition that triggered them. *helpers.RabbitPublisher satisfies it.
type Notifier interface {
	PublishJSON(ctx context.Context, body any) error
}

// RequestMeta carries request origin data into audit records.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// AccountService owns the approval state machine and the authentication
// flows around it.
type AccountService struct {
	Accounts repo.AccountRepository
	Admins   repo.AdminRepository
	Hasher   *helpers.Hasher
	Tokens   *helpers.TokenManager
	Audit    *Recorder
	Pub      Notifier
	Logger   *logrus.Logger
}

func NewAccountService(accounts repo.AccountRepository, admins repo.AdminRepository, hasher *helpers.Hasher, tokens *helpers.TokenManager, audit *Recorder, pub Notifier, logger *logrus.Logger) *AccountService {
	return &AccountService{
		Accounts: accounts,
		Admins:   admins,
		Hasher:   hasher,
		Tokens:   tokens,
		Audit:    audit,
		Pub:      pub,
		Logger:   logger,
	}
}

type RegisterInput struct {
	CPF       string
	Name      string
	Email     string
	Phone     string
	Password  string
	BirthDate *time.Time
}

// Register creates a new account in pending state. The CPF must not have a
// live row already; the duplicate check runs before any write.
func (s *AccountService) Register(ctx context.Context, in RegisterInput, meta RequestMeta) (*entity.Account, error) {
	exists, err := s.Accounts.ExistsBy(ctx, repo.FieldCPF, in.CPF)
	if err != nil {
		return nil, err
	}
	if exists {
		s.audit(ctx, nil, entity.AuditSignupDenied, "duplicate cpf", meta, in.CPF)
		return nil, ErrCPFTaken
	}
	hash, err := s.Hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, err
	}
	a := &entity.Account{
		CPF:          in.CPF,
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		BirthDate:    in.BirthDate,
		PasswordHash: hash,
		Status:       entity.StatusPending,
	}
	if err := s.Accounts.Create(ctx, a); err != nil {
		return nil, err
	}
	s.audit(ctx, &a.ID, entity.AuditSignupSuccess, "account created", meta, "")
	return a, nil
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Account   *entity.Account
}

// Login authenticates by CPF and secret and branches on lifecycle status.
// Every branch, success or failure, produces exactly one audit record.
func (s *AccountService) Login(ctx context.Context, cpf, password string, meta RequestMeta) (*LoginResult, error) {
	a, err := s.Accounts.FindByCPF(ctx, cpf)
	if err != nil {
		return nil, err
	}
	if a == nil {
		s.audit(ctx, nil, entity.AuditLoginDenied, "unknown cpf", meta, cpf)
		return nil, ErrAccountNotFound
	}
	if !s.Hasher.Verify(password, a.PasswordHash) {
		s.audit(ctx, &a.ID, entity.AuditLoginDenied, "wrong password", meta, "")
		return nil, ErrInvalidCredential
	}
	switch a.Status {
	case entity.StatusApproved:
		token, exp, err := s.Tokens.Issue(a.CPF, helpers.RoleUser)
		if err != nil {
			return nil, err
		}
		s.audit(ctx, &a.ID, entity.AuditLoginSuccess, "login", meta, "")
		return &LoginResult{Token: token, ExpiresAt: exp, Account: a}, nil
	case entity.StatusRejected:
		s.audit(ctx, &a.ID, entity.AuditLoginDenied, "account rejected", meta, "")
		return nil, ErrAccountRejected
	case entity.StatusPending:
		s.audit(ctx, &a.ID, entity.AuditLoginDenied, "account pending", meta, "")
		return nil, ErrAccountPending
	case entity.StatusBlocked:
		s.audit(ctx, &a.ID, entity.AuditLoginDenied, "account blocked", meta, "")
		return nil, ErrAccountBlocked
	default:
		s.audit(ctx, &a.ID, entity.AuditLoginDenied, "unrecognized status "+a.Status.String(), meta, "")
		return nil, ErrInvalidState
	}
}

// AdminLogin authenticates an admin principal and issues an admin-role
// token. A missing principal and a wrong secret are indistinguishable to
// the caller.
func (s *AccountService) AdminLogin(ctx context.Context, username, password string, meta RequestMeta) (string, time.Time, error) {
	p, err := s.Admins.FindByUsername(ctx, username)
	if err != nil {
		return "", time.Time{}, err
	}
	if p == nil {
		s.audit(ctx, nil, entity.AuditLoginDenied, "unknown admin "+username, meta, "")
		return "", time.Time{}, ErrInvalidCredential
	}
	if !s.Hasher.Verify(password, p.PasswordHash) {
		s.audit(ctx, nil, entity.AuditLoginDenied, "wrong admin password "+username, meta, "")
		return "", time.Time{}, ErrInvalidCredential
	}
	token, exp, err := s.Tokens.Issue(username, helpers.RoleAdmin)
	if err != nil {
		return "", time.Time{}, err
	}
	s.audit(ctx, nil, entity.AuditLoginSuccess, "admin login "+username, meta, "")
	return token, exp, nil
}

// Approve moves an account from pending or rejected into approved and
// stamps decided_at. The transition is a single conditional update; zero
// affected rows means the account does not exist or is not eligible and is
// reported as not found.
func (s *AccountService) Approve(ctx context.Context, id int64, meta RequestMeta) error {
	now := time.Now().UTC()
	n, err := s.Accounts.UpdateStatus(ctx, id,
		[]entity.Status{entity.StatusPending, entity.StatusRejected},
		entity.StatusApproved, &now)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAccountNotFound
	}
	s.audit(ctx, &id, entity.AuditApprovalGranted, "account approved", meta, "")
	s.notifyDecision(ctx, id, mailer.TemplateAccountApproved)
	return nil
}

// Reject moves an account from pending into rejected. Rejecting an already
// rejected account is an idempotent no-op that still affects one row.
func (s *AccountService) Reject(ctx context.Context, id int64, meta RequestMeta) error {
	n, err := s.Accounts.UpdateStatus(ctx, id,
		[]entity.Status{entity.StatusPending, entity.StatusRejected},
		entity.StatusRejected, nil)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAccountNotFound
	}
	s.audit(ctx, &id, entity.AuditApprovalDenied, "account rejected", meta, "")
	s.notifyDecision(ctx, id, mailer.TemplateAccountRejected)
	return nil
}

// ReviewQueue lists accounts awaiting an admin decision. Rejected accounts
// stay in the queue so they can be re-approved.
func (s *AccountService) ReviewQueue(ctx context.Context) ([]entity.Account, error) {
	return s.Accounts.ListByStatuses(ctx, []entity.Status{entity.StatusPending, entity.StatusRejected})
}

func (s *AccountService) CountByStatus(ctx context.Context, status entity.Status) (int64, error) {
	return s.Accounts.CountByStatus(ctx, status)
}

// StatusCounts returns per-status account totals for the admin dashboard.
func (s *AccountService) StatusCounts(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64, 4)
	for _, st := range []entity.Status{entity.StatusPending, entity.StatusApproved, entity.StatusRejected, entity.StatusBlocked} {
		n, err := s.Accounts.CountByStatus(ctx, st)
		if err != nil {
			return nil, err
		}
		out[st.String()] = n
	}
	return out, nil
}

func (s *AccountService) List(ctx context.Context) ([]entity.Account, error) {
	return s.Accounts.List(ctx)
}

// CheckAvailability reports whether a row already holds value in field.
func (s *AccountService) CheckAvailability(ctx context.Context, field repo.AccountField, value string) (bool, error) {
	return s.Accounts.ExistsBy(ctx, field, value)
}

func (s *AccountService) audit(ctx context.Context, accountID *int64, kind, detail string, meta RequestMeta, resolveAddr string) {
	if s.Audit == nil {
		return
	}
	s.Audit.Record(ctx, entity.AuditRecord{
		AccountID: accountID,
		Kind:      kind,
		Detail:    detail,
		OriginIP:  meta.IP,
		UserAgent: meta.UserAgent,
	}, resolveAddr)
}

// notifyDecision enqueues the decision email. Failures are logged only.
func (s *AccountService) notifyDecision(ctx context.Context, id int64, template string) {
	if s.Pub == nil {
		return
	}
	a, err := s.Accounts.FindByID(ctx, id)
	if err != nil || a == nil {
		return
	}
	job := mailer.EmailJob{To: a.Email, Template: template, Data: map[string]any{"Name": a.Name}}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("template", template).Warn("failed to enqueue decision email")
	}
}
