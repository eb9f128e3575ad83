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

// RecoveryService issues, validates and redeems one-time recovery codes
// keyed by email.
//
// Concurrency model: Issue does not serialize with anything; two
// concurrent issues for the same email race on Put and the last writer
// wins, silently invalidating the earlier code. Validate and Redeem are
// serialized per email so two requests cannot both pass the checks before
// one consumes the challenge.
type RecoveryService struct {
	Accounts repo.AccountRepository
	Store    ChallengeStore
	Hasher   *helpers.Hasher
	Audit    *Recorder
	Pub      Notifier
	Logger   *logrus.Logger
	TTL      time.Duration

	locks *keyedMutex
	now   func() time.Time
}

func NewRecoveryService(accounts repo.AccountRepository, store ChallengeStore, hasher *helpers.Hasher, audit *Recorder, pub Notifier, logger *logrus.Logger, ttl time.Duration) *RecoveryService {
	return &RecoveryService{
		Accounts: accounts,
		Store:    store,
		Hasher:   hasher,
		Audit:    audit,
		Pub:      pub,
		Logger:   logger,
		TTL:      ttl,
		locks:    newKeyedMutex(),
		now:      time.Now,
	}
}

// Issue generates a fresh challenge for email and enqueues its delivery.
// It returns the account's status: recovery only proceeds for approved
// accounts, otherwise the status comes back with ErrAccountNotActive so
// the caller can tell the user why. The code itself is never returned;
// it travels by email only.
func (s *RecoveryService) Issue(ctx context.Context, email string, meta RequestMeta) (entity.Status, error) {
	a, err := s.Accounts.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if a == nil {
		s.audit(ctx, nil, entity.AuditRecoveryCodeDenied, "unknown email", meta, email)
		return "", ErrEmailNotFound
	}
	if a.Status != entity.StatusApproved {
		s.audit(ctx, &a.ID, entity.AuditRecoveryCodeDenied, "account "+a.Status.String(), meta, "")
		return a.Status, ErrAccountNotActive
	}
	code, err := helpers.GenRecoveryCode()
	if err != nil {
		return a.Status, err
	}
	ch := Challenge{Code: code, ExpiresAt: s.now().Add(s.TTL)}
	if err := s.Store.Put(ctx, email, ch); err != nil {
		return a.Status, err
	}
	if s.Pub != nil {
		job := mailer.EmailJob{To: email, Template: mailer.TemplateRecoveryCode, Data: map[string]any{
			"Name":      a.Name,
			"Code":      code,
			"ExpiresIn": s.TTL.String(),
		}}
		if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("failed to enqueue recovery code email")
		}
	}
	s.audit(ctx, &a.ID, entity.AuditRecoveryCodeSent, "recovery code issued", meta, "")
	return a.Status, nil
}

// Validate checks a submitted code against the live challenge for email.
// A successful validation does not consume the challenge; the code stays
// redeemable until Redeem or expiry.
func (s *RecoveryService) Validate(ctx context.Context, email, code string, meta RequestMeta) error {
	s.locks.lock(email)
	defer s.locks.unlock(email)

	if err := s.check(ctx, email, code); err != nil {
		return err
	}
	s.audit(ctx, nil, entity.AuditRecoveryValidated, "recovery code validated", meta, email)
	return nil
}

// Redeem runs the same checks as Validate, then consumes the challenge and
// replaces the account's secret. The challenge is deleted before the
// secret update so a partial failure can never leave a stale code
// redeemable a second time.
func (s *RecoveryService) Redeem(ctx context.Context, email, code, newPassword string, meta RequestMeta) error {
	s.locks.lock(email)
	defer s.locks.unlock(email)

	if err := s.check(ctx, email, code); err != nil {
		return err
	}
	hash, err := s.Hasher.Hash(ctx, newPassword)
	if err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, email); err != nil {
		return err
	}
	n, err := s.Accounts.UpdateSecretByEmail(ctx, email, hash)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAccountNotFound
	}
	s.audit(ctx, nil, entity.AuditRecoveryRedeemed, "password reset", meta, email)
	return nil
}

// check enforces the shared challenge rules. An expired entry is discarded
// the moment it is observed.
func (s *RecoveryService) check(ctx context.Context, email, code string) error {
	ch, ok, err := s.Store.Get(ctx, email)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoChallenge
	}
	if s.now().After(ch.ExpiresAt) {
		_ = s.Store.Delete(ctx, email)
		return ErrChallengeExpired
	}
	if ch.Code != code {
		return ErrChallengeMismatch
	}
	return nil
}

func (s *RecoveryService) audit(ctx context.Context, accountID *int64, kind, detail string, meta RequestMeta, resolveAddr string) {
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
