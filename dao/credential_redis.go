// api/dao/credential_redis.go
package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/casewise/themis/api/model"
)

// consumeScript checks and stamps usedAt in one server-side step. Running it
// as a script is what makes Consume a single conditional update: two
// concurrent validations of the same token serialize on the Redis side and
// only the first sees an empty usedAt.
var consumeScript = redis.NewScript(`
local used = redis.call("HGET", KEYS[1], "usedAt")
if not used then
    return false
end
if used ~= "" then
    return false
end
redis.call("HSET", KEYS[1], "usedAt", ARGV[1])
return redis.call("HGET", KEYS[1], "caseId")
`)

// RedisCredentialStore is the production credential store. Expiry is
// delegated to Redis key TTLs: an expired credential disappears, which is
// indistinguishable from one that never existed.
type RedisCredentialStore struct {
	client *redis.Client
}

func NewRedisCredentialStore(client *redis.Client) *RedisCredentialStore {
	return &RedisCredentialStore{client: client}
}

func credentialKey(token string) string {
	return fmt.Sprintf("credential:%s", token)
}

func (s *RedisCredentialStore) Put(ctx context.Context, credential model.EphemeralCredential) error {
	key := credentialKey(credential.Token)
	ttl := time.Until(credential.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("credential already expired")
	}

	pipe := s.client.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"caseId":    credential.CaseID,
		"issuedTo":  credential.IssuedTo,
		"issuedAt":  credential.IssuedAt.Format(time.RFC3339),
		"expiresAt": credential.ExpiresAt.Format(time.RFC3339),
		"usedAt":    "",
	})
	pipe.Expire(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

func (s *RedisCredentialStore) Consume(ctx context.Context, token string, now time.Time) (string, bool, error) {
	result, err := consumeScript.Run(ctx, s.client, []string{credentialKey(token)}, now.Format(time.RFC3339)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to consume credential: %w", err)
	}

	caseID, ok := result.(string)
	if !ok {
		return "", false, nil
	}
	return caseID, true, nil
}
