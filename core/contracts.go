package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// Logger is the structured logging contract used across the module.
type Logger = glog.Logger

// LoggerProvider resolves named loggers per component.
type LoggerProvider = glog.LoggerProvider

// CuratedRef is the lookup result for an existing curated identity.
type CuratedRef struct {
	ID            string
	CurrentSHA256 string
}

// RunWriter is the transactional write surface available to the ingestion
// engine inside a single run. Every write issued through one RunWriter
// commits or rolls back together.
type RunWriter interface {
	InsertBundle(ctx context.Context, bundle RawBundle) (string, error)
	InsertRaw(ctx context.Context, raw RawResource) (string, error)

	// FindCurated returns nil when no curated row exists for the identity.
	FindCurated(ctx context.Context, key IdentityKey) (*CuratedRef, error)
	CreateCurated(ctx context.Context, curated CuratedResource) (string, error)

	// AdvanceCurated moves the current hash pointer and last-seen timestamp
	// to the newest occurrence. When conflict is true the sticky
	// has_conflict flag is set; it is never cleared.
	AdvanceCurated(ctx context.Context, curatedID string, sha string, conflict bool, seenAt time.Time) error

	// UpsertVariant increments the occurrence count for a known
	// (identity, hash) pair or inserts a new variant row with count 1.
	UpsertVariant(ctx context.Context, curatedID string, sha string, runID string) error

	MapRawToCurated(ctx context.Context, rawID string, curatedID string) error
	InsertReferenceEdges(ctx context.Context, edges []ReferenceEdge) error
	FinishRun(ctx context.Context, runID string, finishedAt time.Time) error
}

// IngestStore is the persistence contract the ingestion engine drives. The
// run row written by BeginRun stays behind as an audit trace even when the
// transactional body rolls back.
type IngestStore interface {
	BeginRun(ctx context.Context, run IngestRun) (string, error)
	InTx(ctx context.Context, fn func(ctx context.Context, w RunWriter) error) error
}

// CuratedReader is the read surface over curated data, consumed by the
// query handlers and the export assemblers. Readers may run concurrently
// with each other and with a single active writer.
type CuratedReader interface {
	ListCurated(ctx context.Context, filter CuratedFilter) ([]CuratedResource, error)

	// GetCuratedByIdent looks up a curated resource by its display
	// identifier (canonical URL, else logical id). Returns
	// ErrCuratedNotFound when absent.
	GetCuratedByIdent(ctx context.Context, ident string) (CuratedResource, error)

	ListVariants(ctx context.Context, curatedID string, limit int) ([]CuratedVariant, error)

	// LatestPayloadBySHA returns the most recently seen raw payload with
	// the given content hash, or ErrPayloadNotFound.
	LatestPayloadBySHA(ctx context.Context, sha string) (string, error)

	ListArtifactConflicts(ctx context.Context) ([]ArtifactConflict, error)
	ListRuns(ctx context.Context, limit int) ([]IngestRun, error)
}
