package application

import (
	"context"
	"sync"
	"time"

	"github.com/contalivre/cadastro-api/internal/domain/entity"
	repo "github.com/contalivre/cadastro-api/internal/domain/repository"
	"github.com/contalivre/cadastro-api/pkg/mailer"
)

type fakeAccountRepo struct {
	mu       sync.Mutex
	seq      int64
	accounts map[int64]*entity.Account

	// injectable lookup failures
	findCPFErr   error
	findEmailErr error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[int64]*entity.Account)}
}

func (r *fakeAccountRepo) Create(_ context.Context, a *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	a.ID = r.seq
	a.RequestedAt = time.Now().UTC()
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *fakeAccountRepo) FindByID(_ context.Context, id int64) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeAccountRepo) FindByCPF(_ context.Context, cpf string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findCPFErr != nil {
		return nil, r.findCPFErr
	}
	for _, a := range r.accounts {
		if a.CPF == cpf {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) FindByEmail(_ context.Context, email string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findEmailErr != nil {
		return nil, r.findEmailErr
	}
	for _, a := range r.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) ExistsBy(_ context.Context, field repo.AccountField, value string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		switch field {
		case repo.FieldCPF:
			if a.CPF == value {
				return true, nil
			}
		case repo.FieldName:
			if a.Name == value {
				return true, nil
			}
		case repo.FieldEmail:
			if a.Email == value {
				return true, nil
			}
		case repo.FieldPhone:
			if a.Phone == value {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *fakeAccountRepo) UpdateStatus(_ context.Context, id int64, from []entity.Status, to entity.Status, decidedAt *time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return 0, nil
	}
	eligible := false
	for _, s := range from {
		if a.Status == s {
			eligible = true
			break
		}
	}
	if !eligible {
		return 0, nil
	}
	a.Status = to
	if decidedAt != nil {
		d := *decidedAt
		a.DecidedAt = &d
	}
	return 1, nil
}

func (r *fakeAccountRepo) UpdateSecretByEmail(_ context.Context, email, passwordHash string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.accounts {
		if a.Email == email {
			a.PasswordHash = passwordHash
			n++
		}
	}
	return n, nil
}

func (r *fakeAccountRepo) CountByStatus(_ context.Context, status entity.Status) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.accounts {
		if a.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeAccountRepo) ListByStatuses(_ context.Context, statuses []entity.Status) ([]entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Account
	for _, a := range r.accounts {
		for _, s := range statuses {
			if a.Status == s {
				out = append(out, *a)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) List(_ context.Context) ([]entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, *a)
	}
	return out, nil
}

// setStatus is test plumbing to force a lifecycle state directly.
func (r *fakeAccountRepo) setStatus(id int64, status entity.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok {
		a.Status = status
	}
}

var _ repo.AccountRepository = (*fakeAccountRepo)(nil)

type fakeAdminRepo struct {
	mu      sync.Mutex
	admins  map[string]string
	findErr error
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{admins: make(map[string]string)}
}

func (r *fakeAdminRepo) FindByUsername(_ context.Context, username string) (*entity.AdminPrincipal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	if hash, ok := r.admins[username]; ok {
		return &entity.AdminPrincipal{Username: username, PasswordHash: hash}, nil
	}
	return nil, nil
}

func (r *fakeAdminRepo) Upsert(_ context.Context, username, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.admins[username] = passwordHash
	return nil
}

var _ repo.AdminRepository = (*fakeAdminRepo)(nil)

type fakeAuditRepo struct {
	mu      sync.Mutex
	seq     int64
	records []entity.AuditRecord
}

func newFakeAuditRepo() *fakeAuditRepo { return &fakeAuditRepo{} }

func (r *fakeAuditRepo) Append(_ context.Context, rec *entity.AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	rec.ID = r.seq
	rec.CreatedAt = time.Now().UTC()
	r.records = append(r.records, *rec)
	return nil
}

func (r *fakeAuditRepo) ListWithAccountNames(_ context.Context, limit int) ([]entity.AuditRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.AuditRecord, len(r.records))
	copy(out, r.records)
	return out, nil
}

func (r *fakeAuditRepo) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.Kind)
	}
	return out
}

func (r *fakeAuditRepo) last() *entity.AuditRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.records) == 0 {
		return nil
	}
	rec := r.records[len(r.records)-1]
	return &rec
}

var _ repo.AuditRepository = (*fakeAuditRepo)(nil)

type fakeNotifier struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
}

func (n *fakeNotifier) PublishJSON(_ context.Context, body any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if job, ok := body.(mailer.EmailJob); ok {
		n.jobs = append(n.jobs, job)
	}
	return nil
}

func (n *fakeNotifier) sent() []mailer.EmailJob {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]mailer.EmailJob, len(n.jobs))
	copy(out, n.jobs)
	return out
}
