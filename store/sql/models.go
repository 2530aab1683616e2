package sqlstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/fmatten/fhir-mdr/core"
)

type ingestRunRecord struct {
	bun.BaseModel `bun:"table:fhir_ingest_run,alias:fir"`

	ID           string     `bun:"run_id,pk"`
	SourceName   string     `bun:"source_name,notnull"`
	SourceKind   string     `bun:"source_kind,notnull"`
	FHIRMajor    string     `bun:"fhir_major,notnull"`
	PartitionKey *string    `bun:"partition_key"`
	StartedAt    time.Time  `bun:"started_ts,notnull"`
	FinishedAt   *time.Time `bun:"finished_ts,nullzero"`
}

func (r *ingestRunRecord) toDomain() core.IngestRun {
	return core.IngestRun{
		ID:           r.ID,
		SourceName:   r.SourceName,
		SourceKind:   core.SourceKind(r.SourceKind),
		FHIRMajor:    r.FHIRMajor,
		PartitionKey: deref(r.PartitionKey),
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
	}
}

type rawBundleRecord struct {
	bun.BaseModel `bun:"table:fhir_raw_bundle,alias:frb"`

	ID         string `bun:"bundle_id,pk"`
	RunID      string `bun:"run_id,notnull"`
	BundleType string `bun:"bundle_type"`
	SHA256     string `bun:"bundle_sha256,notnull"`
	Payload    string `bun:"bundle_payload,notnull"`
}

type rawResourceRecord struct {
	bun.BaseModel `bun:"table:fhir_raw_resource,alias:frr"`

	ID              string    `bun:"raw_id,pk"`
	RunID           string    `bun:"run_id,notnull"`
	BundleID        *string   `bun:"bundle_id"`
	FullURL         *string   `bun:"full_url"`
	ResourceType    string    `bun:"resource_type,notnull"`
	LogicalID       *string   `bun:"logical_id"`
	CanonicalURL    *string   `bun:"canonical_url"`
	ArtifactVersion *string   `bun:"artifact_version"`
	MetaVersionID   *string   `bun:"meta_version_id"`
	MetaLastUpdated *string   `bun:"meta_last_updated"`
	SHA256          string    `bun:"resource_sha256,notnull"`
	Payload         string    `bun:"resource_payload,notnull"`
	FirstSeenAt     time.Time `bun:"first_seen_ts,notnull"`
}

type curatedResourceRecord struct {
	bun.BaseModel `bun:"table:fhir_curated_resource,alias:fcr"`

	ID              string    `bun:"curated_id,pk"`
	ResourceType    string    `bun:"resource_type,notnull"`
	LogicalID       *string   `bun:"logical_id"`
	CanonicalURL    *string   `bun:"canonical_url"`
	ArtifactVersion *string   `bun:"artifact_version"`
	PartitionKey    *string   `bun:"partition_key"`
	CurrentSHA256   string    `bun:"current_sha256,notnull"`
	HasConflict     bool      `bun:"has_conflict,notnull"`
	LastSeenAt      time.Time `bun:"last_seen_ts,notnull"`
}

func (r *curatedResourceRecord) toDomain() core.CuratedResource {
	return core.CuratedResource{
		ID:              r.ID,
		ResourceType:    r.ResourceType,
		LogicalID:       deref(r.LogicalID),
		CanonicalURL:    deref(r.CanonicalURL),
		ArtifactVersion: deref(r.ArtifactVersion),
		PartitionKey:    deref(r.PartitionKey),
		CurrentSHA256:   r.CurrentSHA256,
		HasConflict:     r.HasConflict,
		LastSeenAt:      r.LastSeenAt,
	}
}

type curatedVariantRecord struct {
	bun.BaseModel `bun:"table:fhir_curated_variant,alias:fcv"`

	CuratedID      string `bun:"curated_id,pk"`
	SHA256         string `bun:"resource_sha256,pk"`
	Occurrences    int    `bun:"occurrences,notnull"`
	FirstSeenRunID string `bun:"first_seen_run_id,notnull"`
	LastSeenRunID  string `bun:"last_seen_run_id,notnull"`
}

func (r *curatedVariantRecord) toDomain() core.CuratedVariant {
	return core.CuratedVariant{
		CuratedID:      r.CuratedID,
		SHA256:         r.SHA256,
		Occurrences:    r.Occurrences,
		FirstSeenRunID: r.FirstSeenRunID,
		LastSeenRunID:  r.LastSeenRunID,
	}
}

type rawToCuratedRecord struct {
	bun.BaseModel `bun:"table:fhir_raw_to_curated,alias:frc"`

	RawID     string `bun:"raw_id,pk"`
	CuratedID string `bun:"curated_id,notnull"`
}

type referenceEdgeRecord struct {
	bun.BaseModel `bun:"table:fhir_reference_edge,alias:fre"`

	ID          string `bun:"edge_id,pk"`
	RunID       string `bun:"run_id,notnull"`
	FromRawID   string `bun:"from_raw_id,notnull"`
	FromPath    string `bun:"from_path,notnull"`
	ToReference string `bun:"to_reference,notnull"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
