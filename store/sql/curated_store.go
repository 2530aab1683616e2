package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/fmatten/fhir-mdr/core"
)

const defaultListLimit = 500

// CuratedStore is the read side over curated data: the filtered list view,
// detail lookups, variant history, payload retrieval and the conflict
// triage view. Reads may run concurrently with a single active writer.
type CuratedStore struct {
	db   *bun.DB
	repo repository.Repository[*curatedResourceRecord]
}

func NewCuratedStore(db *bun.DB) (*CuratedStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*curatedResourceRecord](db, curatedHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid curated repository wiring: %w", err)
		}
	}
	return &CuratedStore{db: db, repo: repo}, nil
}

// ListCurated runs the single filtered query of the curated list view:
// exact type match ("All"/"*"/empty disables the filter), case-insensitive
// substring search over the display identifier, optional conflicts-only
// restriction, newest-first, capped at the filter limit.
func (s *CuratedStore) ListCurated(ctx context.Context, filter core.CuratedFilter) ([]core.CuratedResource, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: curated store is not configured")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	records, _, err := s.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			if rt := strings.TrimSpace(filter.ResourceType); rt != "" && !strings.EqualFold(rt, "all") && rt != "*" {
				q = q.Where("?TableAlias.resource_type = ?", rt)
			}
			if text := strings.TrimSpace(filter.SearchText); text != "" {
				pattern := "%" + strings.ToLower(text) + "%"
				q = q.Where(
					"(lower(IFNULL(?TableAlias.canonical_url, '')) LIKE ? OR lower(IFNULL(?TableAlias.logical_id, '')) LIKE ?)",
					pattern, pattern,
				)
			}
			if filter.ConflictsOnly {
				q = q.Where("?TableAlias.has_conflict = 1")
			}
			return q.Limit(limit)
		}),
		repository.OrderBy("last_seen_ts DESC"),
	)
	if err != nil {
		return nil, err
	}

	curated := make([]core.CuratedResource, 0, len(records))
	for _, record := range records {
		curated = append(curated, record.toDomain())
	}
	return curated, nil
}

func (s *CuratedStore) GetCuratedByIdent(ctx context.Context, ident string) (core.CuratedResource, error) {
	if s == nil || s.db == nil {
		return core.CuratedResource{}, fmt.Errorf("sqlstore: curated store is not configured")
	}
	record := new(curatedResourceRecord)
	err := s.db.NewSelect().
		Model(record).
		Where("IFNULL(canonical_url, logical_id) = ?", strings.TrimSpace(ident)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.CuratedResource{}, core.ErrCuratedNotFound
		}
		return core.CuratedResource{}, err
	}
	return record.toDomain(), nil
}

func (s *CuratedStore) ListVariants(ctx context.Context, curatedID string, limit int) ([]core.CuratedVariant, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: curated store is not configured")
	}
	if limit <= 0 {
		limit = 50
	}
	var records []curatedVariantRecord
	err := s.db.NewSelect().
		Model(&records).
		Where("curated_id = ?", curatedID).
		Order("occurrences DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	variants := make([]core.CuratedVariant, 0, len(records))
	for i := range records {
		variants = append(variants, records[i].toDomain())
	}
	return variants, nil
}

// LatestPayloadBySHA returns the payload of the most recently seen raw
// occurrence with the given content hash.
func (s *CuratedStore) LatestPayloadBySHA(ctx context.Context, sha string) (string, error) {
	if s == nil || s.db == nil {
		return "", fmt.Errorf("sqlstore: curated store is not configured")
	}
	var payload string
	err := s.db.NewSelect().
		Model((*rawResourceRecord)(nil)).
		Column("resource_payload").
		Where("resource_sha256 = ?", sha).
		Order("first_seen_ts DESC").
		Limit(1).
		Scan(ctx, &payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", core.ErrPayloadNotFound
		}
		return "", err
	}
	return payload, nil
}

func (s *CuratedStore) ListArtifactConflicts(ctx context.Context) ([]core.ArtifactConflict, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: curated store is not configured")
	}
	var rows []struct {
		ResourceType    string  `bun:"resource_type"`
		CanonicalURL    string  `bun:"canonical_url"`
		ArtifactVersion *string `bun:"artifact_version"`
		VariantCount    int     `bun:"variant_count"`
	}
	err := s.db.NewSelect().
		Table("v_fhir_artifact_conflicts").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	conflicts := make([]core.ArtifactConflict, 0, len(rows))
	for _, row := range rows {
		conflicts = append(conflicts, core.ArtifactConflict{
			ResourceType:    row.ResourceType,
			CanonicalURL:    row.CanonicalURL,
			ArtifactVersion: deref(row.ArtifactVersion),
			VariantCount:    row.VariantCount,
		})
	}
	return conflicts, nil
}

func (s *CuratedStore) ListRuns(ctx context.Context, limit int) ([]core.IngestRun, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: curated store is not configured")
	}
	if limit <= 0 {
		limit = 50
	}
	var records []ingestRunRecord
	err := s.db.NewSelect().
		Model(&records).
		Order("started_ts DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	runs := make([]core.IngestRun, 0, len(records))
	for i := range records {
		runs = append(runs, records[i].toDomain())
	}
	return runs, nil
}
