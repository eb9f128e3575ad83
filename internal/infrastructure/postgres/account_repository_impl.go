package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/contalivre/cadastro-api/internal/domain/entity"
	repo "github.com/contalivre/cadastro-api/internal/domain/repository"
)

const accountColumns = `id, cpf, name, email, COALESCE(phone, ''), birth_date, password_hash, status, balance::text, requested_at, decided_at`

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func scanAccount(row pgx.Row) (*entity.Account, error) {
	a := &entity.Account{}
	var status, balance string
	if err := row.Scan(&a.ID, &a.CPF, &a.Name, &a.Email, &a.Phone, &a.BirthDate,
		&a.PasswordHash, &status, &balance, &a.RequestedAt, &a.DecidedAt); err != nil {
		return nil, err
	}
	a.Status = entity.Status(status)
	d, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("parse balance: %w", err)
	}
	a.Balance = d
	return a, nil
}

func (r *AccountRepository) Create(ctx context.Context, a *entity.Account) error {
	var phone any
	if a.Phone != "" {
		phone = a.Phone
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (cpf, name, email, phone, birth_date, password_hash, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, balance::text, requested_at
	`, a.CPF, a.Name, a.Email, phone, a.BirthDate, a.PasswordHash, string(a.Status))

	var balance string
	if err := row.Scan(&a.ID, &balance, &a.RequestedAt); err != nil {
		return err
	}
	d, err := decimal.NewFromString(balance)
	if err != nil {
		return fmt.Errorf("parse balance: %w", err)
	}
	a.Balance = d
	return nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*entity.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (r *AccountRepository) FindByCPF(ctx context.Context, cpf string) (*entity.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE cpf = $1`, cpf))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// ExistsBy reports whether any row holds value in field. The field is
// restricted to the known column set; anything else is a programming error.
func (r *AccountRepository) ExistsBy(ctx context.Context, field repo.AccountField, value string) (bool, error) {
	var query string
	switch field {
	case repo.FieldCPF:
		query = `SELECT EXISTS (SELECT 1 FROM accounts WHERE cpf = $1)`
	case repo.FieldName:
		query = `SELECT EXISTS (SELECT 1 FROM accounts WHERE name = $1)`
	case repo.FieldEmail:
		query = `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`
	case repo.FieldPhone:
		query = `SELECT EXISTS (SELECT 1 FROM accounts WHERE phone = $1)`
	default:
		return false, fmt.Errorf("unknown account field %q", field)
	}
	var exists bool
	err := r.pool.QueryRow(ctx, query, value).Scan(&exists)
	return exists, err
}

// UpdateStatus performs the lifecycle transition as one conditional update
// so concurrent administrators cannot lose each other's writes. decidedAt,
// when non-nil, stamps decided_at; otherwise the column is left untouched.
func (r *AccountRepository) UpdateStatus(ctx context.Context, id int64, from []entity.Status, to entity.Status, decidedAt *time.Time) (int64, error) {
	fromStr := make([]string, len(from))
	for i, s := range from {
		fromStr[i] = string(s)
	}
	res, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET status = $1, decided_at = COALESCE($2, decided_at)
		WHERE id = $3 AND status = ANY($4)
	`, string(to), decidedAt, id, fromStr)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

func (r *AccountRepository) UpdateSecretByEmail(ctx context.Context, email, passwordHash string) (int64, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE accounts SET password_hash = $1 WHERE email = $2
	`, passwordHash, email)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

func (r *AccountRepository) CountByStatus(ctx context.Context, status entity.Status) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM accounts WHERE status = $1`, string(status)).Scan(&n)
	return n, err
}

func (r *AccountRepository) ListByStatuses(ctx context.Context, statuses []entity.Status) ([]entity.Account, error) {
	ss := make([]string, len(statuses))
	for i, s := range statuses {
		ss[i] = string(s)
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE status = ANY($1) ORDER BY requested_at`, ss)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func (r *AccountRepository) List(ctx context.Context) ([]entity.Account, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY requested_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func collectAccounts(rows pgx.Rows) ([]entity.Account, error) {
	var out []entity.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

var _ repo.AccountRepository = (*AccountRepository)(nil)
