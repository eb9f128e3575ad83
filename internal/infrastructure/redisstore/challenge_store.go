package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/contalivre/cadastro-api/internal/application"
	"github.com/contalivre/cadastro-api/pkg/helpers"
)

func challengeKey(email string) string {
	return "recovery:challenge:" + email
}

// ChallengeStore is a Redis-backed alternative to the in-memory store for
// deployments with more than one process. Keys carry a TTL matching the
// challenge expiry so Redis reclaims abandoned entries on its own; the
// expiry instant inside the value stays authoritative for validation.
type ChallengeStore struct {
	rdb *redis.Client
}

func NewChallengeStore(rdb *redis.Client) *ChallengeStore {
	return &ChallengeStore{rdb: rdb}
}

func (s *ChallengeStore) Put(ctx context.Context, email string, ch application.Challenge) error {
	ttl := time.Until(ch.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	return helpers.RedisSetJSON(ctx, s.rdb, challengeKey(email), ch, ttl)
}

func (s *ChallengeStore) Get(ctx context.Context, email string) (application.Challenge, bool, error) {
	var ch application.Challenge
	ok, err := helpers.RedisGetJSON(ctx, s.rdb, challengeKey(email), &ch)
	return ch, ok, err
}

func (s *ChallengeStore) Delete(ctx context.Context, email string) error {
	return helpers.RedisDel(ctx, s.rdb, challengeKey(email))
}

var _ application.ChallengeStore = (*ChallengeStore)(nil)
