// api/dao/credential_memory.go
package dao

import (
	"context"
	"sync"
	"time"

	"github.com/casewise/themis/api/model"
)

// MemoryCredentialStore keeps credentials in process memory behind a mutex.
// It serves single-instance deployments and tests. The state is not durable
// and not shared across replicas; a multi-instance deployment must use the
// Redis store instead.
type MemoryCredentialStore struct {
	mu          sync.Mutex
	credentials map[string]*model.EphemeralCredential
}

func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{
		credentials: make(map[string]*model.EphemeralCredential),
	}
}

func (s *MemoryCredentialStore) Put(ctx context.Context, credential model.EphemeralCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(time.Now())

	stored := credential
	s.credentials[credential.Token] = &stored
	return nil
}

// sweepLocked drops entries whose expiry has passed. Consume only removes
// the exact token it touches, so without this a long-lived process would
// accumulate never-validated tokens forever.
func (s *MemoryCredentialStore) sweepLocked(now time.Time) {
	for token, credential := range s.credentials {
		if !credential.ExpiresAt.After(now) {
			delete(s.credentials, token)
		}
	}
}

func (s *MemoryCredentialStore) Consume(ctx context.Context, token string, now time.Time) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	credential, exists := s.credentials[token]
	if !exists {
		return "", false, nil
	}
	if !credential.ExpiresAt.After(now) {
		// Expired entries stay invalid forever; drop them on touch.
		delete(s.credentials, token)
		return "", false, nil
	}
	if credential.UsedAt != nil {
		return "", false, nil
	}

	usedAt := now
	credential.UsedAt = &usedAt
	return credential.CaseID, true, nil
}
