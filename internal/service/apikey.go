package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrAPIKeyInvalid = errors.New("invalid API key")

const (
	tenantCurrentKeyPrefix = "tenants:apikey:current:"
	tenantHashKeyPrefix    = "tenants:apikey:hash:"

	// rotationGrace keeps the previous key of a tenant valid after a
	// rotation so in-flight clients are not cut off mid-deploy.
	rotationGrace = 24 * time.Hour
)

// APIKeyService identifies the calling tenant application by its API key.
// Keys are provisioned from the environment and stored hashed in Redis.
type APIKeyService struct {
	rdb *redis.Client
	log *zap.SugaredLogger
}

func NewAPIKeyService(rdb *redis.Client, log *zap.SugaredLogger) *APIKeyService {
	return &APIKeyService{rdb: rdb, log: log}
}

// SyncTenantKeys reads TENANT_API_KEYS ("tenant=key,tenant=key") and syncs
// the hashed keys into Redis. A replaced key stays resolvable for the
// rotation grace window.
func (s *APIKeyService) SyncTenantKeys(ctx context.Context) error {
	raw := os.Getenv("TENANT_API_KEYS")
	if raw == "" {
		return fmt.Errorf("TENANT_API_KEYS is not set")
	}

	for _, pair := range strings.Split(raw, ",") {
		tenant, key, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || tenant == "" || key == "" {
			return fmt.Errorf("malformed TENANT_API_KEYS entry %q", pair)
		}
		if err := s.syncTenantKey(ctx, tenant, hashAPIKey(key)); err != nil {
			return err
		}
	}

	return nil
}

// ResolveTenant returns the tenant id owning the presented key.
func (s *APIKeyService) ResolveTenant(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrAPIKeyInvalid
	}

	tenant, err := s.rdb.Get(ctx, tenantHashKeyPrefix+hashAPIKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrAPIKeyInvalid
	}
	if err != nil {
		return "", fmt.Errorf("resolve tenant by API key: %w", err)
	}

	return tenant, nil
}

func (s *APIKeyService) syncTenantKey(ctx context.Context, tenant, hash string) error {
	currentKey := tenantCurrentKeyPrefix + tenant

	current, err := s.rdb.Get(ctx, currentKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("get current API key for tenant %s: %w", tenant, err)
	}
	if current == hash {
		return nil
	}

	pipe := s.rdb.TxPipeline()
	if current != "" {
		pipe.Set(ctx, tenantHashKeyPrefix+current, tenant, rotationGrace)
	}
	pipe.Set(ctx, currentKey, hash, 0)
	pipe.Set(ctx, tenantHashKeyPrefix+hash, tenant, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("sync API key for tenant %s: %w", tenant, err)
	}

	if current == "" {
		s.log.Infow("Tenant API key initialized", "tenant", tenant)
	} else {
		s.log.Infow("Tenant API key rotated", "tenant", tenant)
	}

	return nil
}

func hashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
