package application

import (
	"context"
	"sync"
	"time"
)

// Challenge is a one-time recovery code bound to an email address with an
// absolute expiry instant.
type Challenge struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ChallengeStore keeps at most one live challenge per email. Put on an
// existing email supersedes the previous challenge unconditionally: the
// last writer wins, silently invalidating any code already delivered.
// That race is documented behavior, not something the store prevents.
type ChallengeStore interface {
	Put(ctx context.Context, email string, ch Challenge) error
	Get(ctx context.Context, email string) (Challenge, bool, error)
	Delete(ctx context.Context, email string) error
}

// MemoryChallengeStore is the default process-local store. Entries live
// only as long as the process; that ephemerality is deliberate.
type MemoryChallengeStore struct {
	mu sync.Mutex
	m  map[string]Challenge
}

func NewMemoryChallengeStore() *MemoryChallengeStore {
	return &MemoryChallengeStore{m: make(map[string]Challenge)}
}

func (s *MemoryChallengeStore) Put(_ context.Context, email string, ch Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[email] = ch
	return nil
}

func (s *MemoryChallengeStore) Get(_ context.Context, email string) (Challenge, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.m[email]
	return ch, ok, nil
}

func (s *MemoryChallengeStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, email)
	return nil
}

var _ ChallengeStore = (*MemoryChallengeStore)(nil)

// keyedMutex serializes critical sections per key. Entries are reference
// counted and removed once the last holder unlocks, so the map does not
// grow with every email ever seen.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

func (k *keyedMutex) lock(key string) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()
	l.mu.Lock()
}

func (k *keyedMutex) unlock(key string) {
	k.mu.Lock()
	l := k.locks[key]
	l.refs--
	if l.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()
	l.mu.Unlock()
}
