package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/fmatten/fhir-mdr/core"
)

// IngestStore is the write side of the curation schema. BeginRun commits on
// its own so a failed run leaves an unfinished audit row behind; everything
// else happens inside one transaction per run through InTx.
type IngestStore struct {
	db *bun.DB
}

func NewIngestStore(db *bun.DB) (*IngestStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	return &IngestStore{db: db}, nil
}

func (s *IngestStore) BeginRun(ctx context.Context, run core.IngestRun) (string, error) {
	if s == nil || s.db == nil {
		return "", fmt.Errorf("sqlstore: ingest store is not configured")
	}
	record := &ingestRunRecord{
		ID:           uuid.NewString(),
		SourceName:   run.SourceName,
		SourceKind:   string(run.SourceKind),
		FHIRMajor:    run.FHIRMajor,
		PartitionKey: nullable(run.PartitionKey),
		StartedAt:    run.StartedAt,
	}
	if record.StartedAt.IsZero() {
		record.StartedAt = time.Now().UTC()
	}
	if record.FHIRMajor == "" {
		record.FHIRMajor = core.FHIRMajorR4
	}
	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return "", err
	}
	return record.ID, nil
}

func (s *IngestStore) InTx(ctx context.Context, fn func(ctx context.Context, w core.RunWriter) error) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: ingest store is not configured")
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &runWriter{tx: tx})
	})
}

// runWriter issues every write of one run against a single transaction.
type runWriter struct {
	tx bun.Tx
}

func (w *runWriter) InsertBundle(ctx context.Context, bundle core.RawBundle) (string, error) {
	record := &rawBundleRecord{
		ID:         uuid.NewString(),
		RunID:      bundle.RunID,
		BundleType: bundle.BundleType,
		SHA256:     bundle.SHA256,
		Payload:    bundle.Payload,
	}
	if _, err := w.tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return "", err
	}
	return record.ID, nil
}

func (w *runWriter) InsertRaw(ctx context.Context, raw core.RawResource) (string, error) {
	record := &rawResourceRecord{
		ID:              uuid.NewString(),
		RunID:           raw.RunID,
		BundleID:        nullable(raw.BundleID),
		FullURL:         nullable(raw.FullURL),
		ResourceType:    raw.ResourceType,
		LogicalID:       nullable(raw.LogicalID),
		CanonicalURL:    nullable(raw.CanonicalURL),
		ArtifactVersion: nullable(raw.ArtifactVersion),
		MetaVersionID:   nullable(raw.MetaVersionID),
		MetaLastUpdated: nullable(raw.MetaLastUpdated),
		SHA256:          raw.SHA256,
		Payload:         raw.Payload,
		FirstSeenAt:     raw.FirstSeenAt,
	}
	if record.FirstSeenAt.IsZero() {
		record.FirstSeenAt = time.Now().UTC()
	}
	if _, err := w.tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return "", err
	}
	return record.ID, nil
}

func (w *runWriter) FindCurated(ctx context.Context, key core.IdentityKey) (*core.CuratedRef, error) {
	record := new(curatedResourceRecord)
	query := w.tx.NewSelect().Model(record)
	switch key.Kind {
	case core.IdentityCanonical:
		query = query.
			Where("resource_type = ?", key.ResourceType).
			Where("canonical_url = ?", key.CanonicalURL).
			Where("IFNULL(artifact_version, '') = ?", key.ArtifactVersion).
			Where("IFNULL(partition_key, '') = ?", key.PartitionKey)
	default:
		query = query.
			Where("resource_type = ?", key.ResourceType).
			Where("canonical_url IS NULL").
			Where("IFNULL(logical_id, '') = ?", key.LogicalID).
			Where("IFNULL(partition_key, '') = ?", key.PartitionKey)
	}
	if err := query.Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &core.CuratedRef{ID: record.ID, CurrentSHA256: record.CurrentSHA256}, nil
}

func (w *runWriter) CreateCurated(ctx context.Context, curated core.CuratedResource) (string, error) {
	record := &curatedResourceRecord{
		ID:              uuid.NewString(),
		ResourceType:    curated.ResourceType,
		LogicalID:       nullable(curated.LogicalID),
		CanonicalURL:    nullable(curated.CanonicalURL),
		ArtifactVersion: nullable(curated.ArtifactVersion),
		PartitionKey:    nullable(curated.PartitionKey),
		CurrentSHA256:   curated.CurrentSHA256,
		HasConflict:     false,
		LastSeenAt:      curated.LastSeenAt,
	}
	if record.LastSeenAt.IsZero() {
		record.LastSeenAt = time.Now().UTC()
	}
	if _, err := w.tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return "", err
	}
	return record.ID, nil
}

func (w *runWriter) AdvanceCurated(ctx context.Context, curatedID string, sha string, conflict bool, seenAt time.Time) error {
	query := w.tx.NewUpdate().
		Model((*curatedResourceRecord)(nil)).
		Set("current_sha256 = ?", sha).
		Set("last_seen_ts = ?", seenAt).
		Where("curated_id = ?", curatedID)
	if conflict {
		query = query.Set("has_conflict = ?", true)
	}
	_, err := query.Exec(ctx)
	return err
}

func (w *runWriter) UpsertVariant(ctx context.Context, curatedID string, sha string, runID string) error {
	existing := new(curatedVariantRecord)
	err := w.tx.NewSelect().
		Model(existing).
		Where("curated_id = ?", curatedID).
		Where("resource_sha256 = ?", sha).
		Limit(1).
		Scan(ctx)
	switch {
	case err == nil:
		_, err = w.tx.NewUpdate().
			Model((*curatedVariantRecord)(nil)).
			Set("occurrences = occurrences + 1").
			Set("last_seen_run_id = ?", runID).
			Where("curated_id = ?", curatedID).
			Where("resource_sha256 = ?", sha).
			Exec(ctx)
		return err
	case errors.Is(err, sql.ErrNoRows):
		record := &curatedVariantRecord{
			CuratedID:      curatedID,
			SHA256:         sha,
			Occurrences:    1,
			FirstSeenRunID: runID,
			LastSeenRunID:  runID,
		}
		_, err = w.tx.NewInsert().Model(record).Exec(ctx)
		return err
	default:
		return err
	}
}

func (w *runWriter) MapRawToCurated(ctx context.Context, rawID string, curatedID string) error {
	record := &rawToCuratedRecord{RawID: rawID, CuratedID: curatedID}
	_, err := w.tx.NewInsert().
		Model(record).
		On("CONFLICT (raw_id) DO UPDATE").
		Set("curated_id = EXCLUDED.curated_id").
		Exec(ctx)
	return err
}

func (w *runWriter) InsertReferenceEdges(ctx context.Context, edges []core.ReferenceEdge) error {
	if len(edges) == 0 {
		return nil
	}
	records := make([]referenceEdgeRecord, 0, len(edges))
	for _, edge := range edges {
		records = append(records, referenceEdgeRecord{
			ID:          uuid.NewString(),
			RunID:       edge.RunID,
			FromRawID:   edge.FromRawID,
			FromPath:    edge.FromPath,
			ToReference: edge.ToReference,
		})
	}
	_, err := w.tx.NewInsert().Model(&records).Exec(ctx)
	return err
}

func (w *runWriter) FinishRun(ctx context.Context, runID string, finishedAt time.Time) error {
	_, err := w.tx.NewUpdate().
		Model((*ingestRunRecord)(nil)).
		Set("finished_ts = ?", finishedAt).
		Where("run_id = ?", runID).
		Exec(ctx)
	return err
}
