package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contalivre/cadastro-api/internal/domain/entity"
	repo "github.com/contalivre/cadastro-api/internal/domain/repository"
)

type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Append inserts one row and fills rec.ID and rec.CreatedAt. Audit rows
// are never updated or deleted.
func (r *AuditRepository) Append(ctx context.Context, rec *entity.AuditRecord) error {
	var ip, ua any
	if rec.OriginIP != "" {
		ip = rec.OriginIP
	}
	if rec.UserAgent != "" {
		ua = rec.UserAgent
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO audit_logs (account_id, kind, detail, origin_ip, user_agent)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, rec.AccountID, rec.Kind, rec.Detail, ip, ua).Scan(&rec.ID, &rec.CreatedAt)
}

func (r *AuditRepository) ListWithAccountNames(ctx context.Context, limit int) ([]entity.AuditRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT l.id, l.account_id, l.kind, l.detail,
		       COALESCE(l.origin_ip, ''), COALESCE(l.user_agent, ''),
		       l.created_at, COALESCE(a.name, '')
		FROM audit_logs l
		LEFT JOIN accounts a ON a.id = l.account_id
		ORDER BY l.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.AuditRecord
	for rows.Next() {
		var rec entity.AuditRecord
		if err := rows.Scan(&rec.ID, &rec.AccountID, &rec.Kind, &rec.Detail,
			&rec.OriginIP, &rec.UserAgent, &rec.CreatedAt, &rec.AccountName); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

var _ repo.AuditRepository = (*AuditRepository)(nil)
