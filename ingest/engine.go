// Package ingest drives one ingestion run: it consumes a source stream,
// hashes and identity-resolves every resource occurrence, and writes the
// raw, curated, variant and reference-edge records under one transaction.
package ingest

import (
	"context"
	"fmt"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/fmatten/fhir-mdr/core"
	"github.com/fmatten/fhir-mdr/source"
)

type Engine struct {
	store  core.IngestStore
	logger glog.Logger
}

type Option func(*Engine)

func WithLogger(logger glog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func New(store core.IngestStore, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("ingest: store is required")
	}
	engine := &Engine{
		store:  store,
		logger: glog.Ensure(nil),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(engine)
	}
	return engine, nil
}

// Run ingests one source stream. The run row is written first and survives
// a failed attempt as an audit trace; all data writes for the run commit or
// roll back together. Expected domain failures come back in the result, not
// as a panic or error value.
func (e *Engine) Run(ctx context.Context, stream *source.Stream, meta core.RunMeta) core.IngestResult {
	if stream == nil || stream.Kind == "" {
		return core.IngestResult{OK: false, Message: "no source stream"}
	}
	sourceName := meta.SourceName
	if sourceName == "" {
		sourceName = string(stream.Kind)
	}

	runID, err := e.store.BeginRun(ctx, core.IngestRun{
		SourceName:   sourceName,
		SourceKind:   stream.Kind,
		FHIRMajor:    core.FHIRMajorR4,
		PartitionKey: meta.PartitionKey,
		StartedAt:    time.Now().UTC(),
	})
	if err != nil {
		return core.IngestResult{OK: false, Message: fmt.Sprintf("import failed: %v", err)}
	}

	rawCount := 0
	err = e.store.InTx(ctx, func(ctx context.Context, w core.RunWriter) error {
		bundleID := ""
		if stream.Bundle != nil {
			id, err := w.InsertBundle(ctx, core.RawBundle{
				RunID:      runID,
				BundleType: stream.Bundle.Type,
				SHA256:     stream.Bundle.SHA256,
				Payload:    stream.Bundle.Payload,
			})
			if err != nil {
				return err
			}
			bundleID = id
		}

		for _, item := range stream.Items {
			if err := e.ingestItem(ctx, w, runID, bundleID, item, meta); err != nil {
				return err
			}
			rawCount++
		}

		return w.FinishRun(ctx, runID, time.Now().UTC())
	})
	if err != nil {
		e.logger.Error("ingest run failed", "run_id", runID, "source", sourceName, "error", err)
		return core.IngestResult{OK: false, Message: fmt.Sprintf("import failed: %v", err), RunID: runID}
	}

	e.logger.Info("ingest run finished", "run_id", runID, "source", sourceName, "resources", rawCount)
	return core.IngestResult{
		OK:       true,
		Message:  fmt.Sprintf("imported %d resources (run %s)", rawCount, runID),
		RunID:    runID,
		RawCount: rawCount,
	}
}

func (e *Engine) ingestItem(
	ctx context.Context,
	w core.RunWriter,
	runID string,
	bundleID string,
	item source.Item,
	meta core.RunMeta,
) error {
	now := time.Now().UTC()
	rawID, err := w.InsertRaw(ctx, core.RawResource{
		RunID:           runID,
		BundleID:        bundleID,
		FullURL:         item.FullURL,
		ResourceType:    item.Fields.ResourceType,
		LogicalID:       item.Fields.LogicalID,
		CanonicalURL:    item.Fields.CanonicalURL,
		ArtifactVersion: item.Fields.ArtifactVersion,
		MetaVersionID:   item.Fields.MetaVersionID,
		MetaLastUpdated: item.Fields.MetaLastUpdated,
		SHA256:          item.SHA256,
		Payload:         item.Payload,
		FirstSeenAt:     now,
	})
	if err != nil {
		return err
	}

	key := core.ResolveIdentity(item.Fields, meta.PartitionKey)
	existing, err := w.FindCurated(ctx, key)
	if err != nil {
		return err
	}

	var curatedID string
	if existing != nil {
		curatedID = existing.ID
		if err := w.UpsertVariant(ctx, curatedID, item.SHA256, runID); err != nil {
			return err
		}
		// Curation always reflects ingestion order: the pointer advances to
		// this occurrence whether or not the content changed.
		conflict := existing.CurrentSHA256 != item.SHA256
		if err := w.AdvanceCurated(ctx, curatedID, item.SHA256, conflict, now); err != nil {
			return err
		}
	} else {
		curatedID, err = w.CreateCurated(ctx, core.CuratedResource{
			ResourceType:    item.Fields.ResourceType,
			LogicalID:       item.Fields.LogicalID,
			CanonicalURL:    item.Fields.CanonicalURL,
			ArtifactVersion: item.Fields.ArtifactVersion,
			PartitionKey:    meta.PartitionKey,
			CurrentSHA256:   item.SHA256,
			LastSeenAt:      now,
		})
		if err != nil {
			return err
		}
		if err := w.UpsertVariant(ctx, curatedID, item.SHA256, runID); err != nil {
			return err
		}
	}

	if err := w.MapRawToCurated(ctx, rawID, curatedID); err != nil {
		return err
	}

	if meta.ExtractReferences && item.JSON != nil {
		refs := CollectReferences(item.JSON)
		if len(refs) > 0 {
			edges := make([]core.ReferenceEdge, 0, len(refs))
			for _, ref := range refs {
				edges = append(edges, core.ReferenceEdge{
					RunID:       runID,
					FromRawID:   rawID,
					FromPath:    ref.Path,
					ToReference: ref.Target,
				})
			}
			if err := w.InsertReferenceEdges(ctx, edges); err != nil {
				return err
			}
		}
	}
	return nil
}
