package application

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/contalivre/cadastro-api/internal/domain/entity"
	repo "github.com/contalivre/cadastro-api/internal/domain/repository"
)

// Recorder appends immutable activity records. Writes are fire-and-forget
// from the caller's perspective: a failing audit write is logged locally
// and never aborts the operation that produced it.
type Recorder struct {
	Audits   repo.AuditRepository
	Accounts repo.AccountRepository
	Logger   *logrus.Logger
	ES       *elasticsearch.Client
	ESIndex  string
}

func NewRecorder(audits repo.AuditRepository, accounts repo.AccountRepository, logger *logrus.Logger) *Recorder {
	return &Recorder{Audits: audits, Accounts: accounts, Logger: logger}
}

// Record appends one row. If rec.AccountID is nil and resolveAddr carries
// an email or CPF, the subject is resolved best-effort; resolution failure
// leaves the record with a nil subject rather than failing the write.
func (r *Recorder) Record(ctx context.Context, rec entity.AuditRecord, resolveAddr string) {
	if rec.AccountID == nil && resolveAddr != "" {
		if id, ok := r.resolve(ctx, resolveAddr); ok {
			rec.AccountID = &id
		}
	}
	if err := r.Audits.Append(ctx, &rec); err != nil {
		if r.Logger != nil {
			r.Logger.WithError(err).WithField("kind", rec.Kind).Warn("audit append failed")
		}
		return
	}
	r.index(ctx, &rec)
}

func (r *Recorder) resolve(ctx context.Context, addr string) (int64, bool) {
	var (
		a   *entity.Account
		err error
	)
	if strings.Contains(addr, "@") {
		a, err = r.Accounts.FindByEmail(ctx, addr)
	} else {
		a, err = r.Accounts.FindByCPF(ctx, addr)
	}
	if err != nil || a == nil {
		return 0, false
	}
	return a.ID, true
}

// index mirrors the record into Elasticsearch when configured, best-effort.
func (r *Recorder) index(ctx context.Context, rec *entity.AuditRecord) {
	if r.ES == nil || r.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"kind":       rec.Kind,
		"detail":     rec.Detail,
		"origin_ip":  rec.OriginIP,
		"user_agent": rec.UserAgent,
		"created_at": rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if rec.AccountID != nil {
		doc["account_id"] = *rec.AccountID
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: r.ESIndex, DocumentID: strconv.FormatInt(rec.ID, 10), Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, r.ES)
	if err != nil {
		if r.Logger != nil {
			r.Logger.WithError(err).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && r.Logger != nil {
		r.Logger.WithField("status", res.Status()).Warn("es index response error")
	}
}
