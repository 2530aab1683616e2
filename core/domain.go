package core

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrCuratedNotFound = errors.New("core: curated resource not found")
	ErrPayloadNotFound = errors.New("core: raw payload not found")
	ErrInvalidSource   = errors.New("core: invalid source input")
)

type SourceKind string

const (
	SourceKindBundle  SourceKind = "bundle"
	SourceKindPackage SourceKind = "package"
)

// FHIRMajorR4 tags every run; the ingestion pipeline is versioned per FHIR
// major release even though only R4 inputs are handled today.
const FHIRMajorR4 = "R4"

// RunMeta carries the caller-supplied parameters for one ingestion run.
type RunMeta struct {
	SourceName        string
	PartitionKey      string
	ExtractReferences bool
}

// IngestRun is the audit row for one ingestion attempt. A failed run keeps
// its started timestamp and a nil FinishedAt.
type IngestRun struct {
	ID           string
	SourceName   string
	SourceKind   SourceKind
	FHIRMajor    string
	PartitionKey string
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// RawBundle stores an ingested bundle's original serialized form, JSON or
// XML. Immutable once written.
type RawBundle struct {
	ID         string
	RunID      string
	BundleType string
	SHA256     string
	Payload    string
}

// RawResource is one ingested resource occurrence. Append-only: every
// occurrence across every run is stored, byte-identical repeats included.
type RawResource struct {
	ID              string
	RunID           string
	BundleID        string
	FullURL         string
	ResourceType    string
	LogicalID       string
	CanonicalURL    string
	ArtifactVersion string
	MetaVersionID   string
	MetaLastUpdated string
	SHA256          string
	Payload         string
	FirstSeenAt     time.Time
}

// CuratedResource is the single current-state record per identity. The hash
// pointer and last-seen timestamp always advance to the newest occurrence;
// HasConflict is sticky and never cleared automatically.
type CuratedResource struct {
	ID              string
	ResourceType    string
	LogicalID       string
	CanonicalURL    string
	ArtifactVersion string
	PartitionKey    string
	CurrentSHA256   string
	HasConflict     bool
	LastSeenAt      time.Time
}

// DisplayIdent is the identifier shown for a curated resource: the canonical
// URL when present, else the logical id.
func (c CuratedResource) DisplayIdent() string {
	if strings.TrimSpace(c.CanonicalURL) != "" {
		return c.CanonicalURL
	}
	return c.LogicalID
}

// CuratedVariant is one distinct content hash ever observed under an
// identity, with its occurrence count and first/last run.
type CuratedVariant struct {
	CuratedID      string
	SHA256         string
	Occurrences    int
	FirstSeenRunID string
	LastSeenRunID  string
}

// ReferenceEdge is one extracted FHIR reference string occurrence.
type ReferenceEdge struct {
	RunID       string
	FromRawID   string
	FromPath    string
	ToReference string
}

// ArtifactConflict is one row of the conflict triage view: a canonical
// artifact identity with more than one distinct variant hash.
type ArtifactConflict struct {
	ResourceType    string
	CanonicalURL    string
	ArtifactVersion string
	VariantCount    int
}

// IngestResult reports the outcome of one ingestion run. Expected domain
// failures are carried here rather than returned as errors.
type IngestResult struct {
	OK       bool
	Message  string
	RunID    string
	RawCount int
}

// ExportResult reports the outcome of one export call.
type ExportResult struct {
	OK      bool
	Message string
	Count   int
	OutPath string
}

// CuratedFilter selects curated resources for list views. ResourceType
// matches exactly; "All", "*" and empty mean no type filter. SearchText is a
// case-insensitive substring match against the display identifier.
type CuratedFilter struct {
	ResourceType  string
	SearchText    string
	ConflictsOnly bool
	Limit         int
}

// ResourceFields are the identity-bearing fields extracted from a resource
// payload before hashing and curation.
type ResourceFields struct {
	ResourceType    string
	LogicalID       string
	CanonicalURL    string
	ArtifactVersion string
	MetaVersionID   string
	MetaLastUpdated string
}

// ExtractFields reads the identity fields from a decoded JSON resource.
// Non-string values are treated as absent.
func ExtractFields(resource map[string]any) ResourceFields {
	fields := ResourceFields{
		ResourceType:    stringField(resource, "resourceType"),
		LogicalID:       stringField(resource, "id"),
		CanonicalURL:    stringField(resource, "url"),
		ArtifactVersion: stringField(resource, "version"),
	}
	if meta, ok := resource["meta"].(map[string]any); ok {
		fields.MetaVersionID = stringField(meta, "versionId")
		fields.MetaLastUpdated = stringField(meta, "lastUpdated")
	}
	return fields
}

func stringField(obj map[string]any, key string) string {
	if value, ok := obj[key].(string); ok {
		return value
	}
	return ""
}
