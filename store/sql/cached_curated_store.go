package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/fmatten/fhir-mdr/core"
)

const payloadCacheKeyPrefix = "fhir-mdr::raw_payload::v1"

// CachedCuratedStore decorates a curated reader with a payload cache. Raw
// payloads are content addressed, so an entry keyed by hash never serves the
// wrong canonical content; it may lag the latest verbatim occurrence of the
// same hash until the entry expires. List and lookup reads always hit the
// base store.
type CachedCuratedStore struct {
	base  core.CuratedReader
	cache repositorycache.CacheService
}

func NewCachedCuratedStore(
	base core.CuratedReader,
	cacheService repositorycache.CacheService,
) (*CachedCuratedStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base curated reader is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: payload cache service is required")
	}
	return &CachedCuratedStore{base: base, cache: cacheService}, nil
}

// PayloadCacheKey returns the deterministic cache key contract for payload
// reads: fhir-mdr::raw_payload::v1::<sha256> with the hash trimmed and
// lowercased before escaping.
func PayloadCacheKey(sha string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(sha))
	if normalized == "" {
		return "", fmt.Errorf("sqlstore: payload hash is required")
	}
	return payloadCacheKeyPrefix + "::" + url.PathEscape(normalized), nil
}

func (s *CachedCuratedStore) LatestPayloadBySHA(ctx context.Context, sha string) (string, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return "", fmt.Errorf("sqlstore: cached curated store is not configured")
	}
	cacheKey, err := PayloadCacheKey(sha)
	if err != nil {
		return "", err
	}
	return repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (string, error) {
		return s.base.LatestPayloadBySHA(ctx, sha)
	})
}

func (s *CachedCuratedStore) ListCurated(ctx context.Context, filter core.CuratedFilter) ([]core.CuratedResource, error) {
	return s.base.ListCurated(ctx, filter)
}

func (s *CachedCuratedStore) GetCuratedByIdent(ctx context.Context, ident string) (core.CuratedResource, error) {
	return s.base.GetCuratedByIdent(ctx, ident)
}

func (s *CachedCuratedStore) ListVariants(ctx context.Context, curatedID string, limit int) ([]core.CuratedVariant, error) {
	return s.base.ListVariants(ctx, curatedID, limit)
}

func (s *CachedCuratedStore) ListArtifactConflicts(ctx context.Context) ([]core.ArtifactConflict, error) {
	return s.base.ListArtifactConflicts(ctx)
}

func (s *CachedCuratedStore) ListRuns(ctx context.Context, limit int) ([]core.IngestRun, error) {
	return s.base.ListRuns(ctx, limit)
}

var _ core.CuratedReader = (*CachedCuratedStore)(nil)
