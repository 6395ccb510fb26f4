// api/service/credential_service_test.go
package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	tmock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/casewise/themis/api/dao"
	themis_errors "github.com/casewise/themis/api/errors"
	logger "github.com/casewise/themis/api/logging"
	"github.com/casewise/themis/api/service"
	"github.com/casewise/themis/api/test/mock"
	"github.com/casewise/themis/api/util"
)

func newCredentialService(t *testing.T, vault *mock.MockVaultService, ttl time.Duration) (service.ICredentialService, *dao.MemoryCredentialStore) {
	t.Helper()
	store := dao.NewMemoryCredentialStore()
	svc := service.NewCredentialService(store, vault, util.NewValidationUtil(), util.NewEventBus(), ttl)
	return svc, store
}

func TestCredentialService(t *testing.T) {
	logger.InitLogger(t.TempDir())
	defer logger.Sync()

	ctx := context.Background()

	t.Run("IssueAndValidate_RoundTrip", func(t *testing.T) {
		vault := new(mock.MockVaultService)
		vault.On("VerifyAccess", tmock.Anything, "subject-1", "case-1").Return(true, nil)
		svc, _ := newCredentialService(t, vault, time.Minute)

		credential, err := svc.IssueCredential(ctx, "subject-1", "case-1")
		require.NoError(t, err)
		assert.NotEmpty(t, credential.Token)
		assert.Equal(t, "case-1", credential.CaseID)
		assert.True(t, credential.ExpiresAt.After(credential.IssuedAt))

		caseID, ok, err := svc.ValidateCredential(ctx, credential.Token)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "case-1", caseID)
	})

	t.Run("SecondValidationFails", func(t *testing.T) {
		vault := new(mock.MockVaultService)
		vault.On("VerifyAccess", tmock.Anything, "subject-1", "case-1").Return(true, nil)
		svc, _ := newCredentialService(t, vault, time.Minute)

		credential, err := svc.IssueCredential(ctx, "subject-1", "case-1")
		require.NoError(t, err)

		_, ok, err := svc.ValidateCredential(ctx, credential.Token)
		require.NoError(t, err)
		require.True(t, ok)

		_, ok, err = svc.ValidateCredential(ctx, credential.Token)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("UnknownTokenFails", func(t *testing.T) {
		vault := new(mock.MockVaultService)
		svc, _ := newCredentialService(t, vault, time.Minute)

		_, ok, err := svc.ValidateCredential(ctx, "no-such-token")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("UnassignedSubject_GetsNotFound", func(t *testing.T) {
		vault := new(mock.MockVaultService)
		vault.On("VerifyAccess", tmock.Anything, "subject-2", "case-1").Return(false, nil)
		svc, _ := newCredentialService(t, vault, time.Minute)

		_, err := svc.IssueCredential(ctx, "subject-2", "case-1")
		assert.ErrorIs(t, err, themis_errors.ErrNotFound)
	})

	t.Run("EmptyInputs_Rejected", func(t *testing.T) {
		vault := new(mock.MockVaultService)
		svc, _ := newCredentialService(t, vault, time.Minute)

		_, err := svc.IssueCredential(ctx, "", "case-1")
		assert.ErrorIs(t, err, themis_errors.ErrInvalidCredentialRequest)

		_, err = svc.IssueCredential(ctx, "subject-1", "")
		assert.ErrorIs(t, err, themis_errors.ErrInvalidCredentialRequest)
	})

	t.Run("TokensAreUnique", func(t *testing.T) {
		vault := new(mock.MockVaultService)
		vault.On("VerifyAccess", tmock.Anything, "subject-1", "case-1").Return(true, nil)
		svc, _ := newCredentialService(t, vault, time.Minute)

		seen := make(map[string]bool)
		for i := 0; i < 20; i++ {
			credential, err := svc.IssueCredential(ctx, "subject-1", "case-1")
			require.NoError(t, err)
			assert.False(t, seen[credential.Token])
			seen[credential.Token] = true
		}
	})

	t.Run("ConcurrentValidation_OneWinner", func(t *testing.T) {
		vault := new(mock.MockVaultService)
		vault.On("VerifyAccess", tmock.Anything, "subject-1", "case-1").Return(true, nil)
		svc, _ := newCredentialService(t, vault, time.Minute)

		credential, err := svc.IssueCredential(ctx, "subject-1", "case-1")
		require.NoError(t, err)

		const attempts = 16
		var wg sync.WaitGroup
		var mu sync.Mutex
		winners := 0

		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, ok, err := svc.ValidateCredential(ctx, credential.Token)
				assert.NoError(t, err)
				if ok {
					mu.Lock()
					winners++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, winners)
	})
}
