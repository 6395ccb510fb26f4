// api/dao/credential_store.go
package dao

import (
	"context"
	"time"

	"github.com/casewise/themis/api/model"
)

// CredentialStore persists ephemeral credentials and enforces their single
// consumption. The store is an explicit, injected dependency with a
// per-process lifecycle: construct one instance at startup (or one per test)
// and never share it implicitly.
type CredentialStore interface {
	Put(ctx context.Context, credential model.EphemeralCredential) error

	// Consume atomically checks "unused and unexpired" and stamps the
	// credential used in the same step, so concurrent calls for one token
	// cannot both succeed. It reports the bound case id on the single
	// success. Unknown, expired, and already-consumed tokens are all
	// reported the same way (ok == false); callers must not be able to
	// tell the reasons apart.
	Consume(ctx context.Context, token string, now time.Time) (caseID string, ok bool, err error)
}
