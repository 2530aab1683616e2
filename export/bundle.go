// Package export assembles curated resources into FHIR Bundle documents,
// serialized as JSON or XML.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/fmatten/fhir-mdr/core"
)

// DefaultExportLimit caps how many curated resources a latest-first export
// collects when the caller does not say otherwise.
const DefaultExportLimit = 500

type jsonEntry struct {
	Resource json.RawMessage `json:"resource"`
}

type jsonBundle struct {
	ResourceType string      `json:"resourceType"`
	Type         string      `json:"type"`
	Entry        []jsonEntry `json:"entry"`
}

// Assembler builds export bundles from the curated read surface.
type Assembler struct {
	reader     core.CuratedReader
	serializer *Serializer
	logger     glog.Logger
}

type Option func(*Assembler)

func WithLogger(logger glog.Logger) Option {
	return func(a *Assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithFieldOrder replaces the built-in strict XML field order table.
func WithFieldOrder(orders FieldOrderTable) Option {
	return func(a *Assembler) {
		if orders != nil {
			a.serializer = NewSerializer(orders)
		}
	}
}

func NewAssembler(reader core.CuratedReader, opts ...Option) (*Assembler, error) {
	if reader == nil {
		return nil, fmt.Errorf("export: curated reader is required")
	}
	assembler := &Assembler{
		reader:     reader,
		serializer: NewSerializer(nil),
		logger:     glog.Ensure(nil),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(assembler)
	}
	return assembler, nil
}

// latestPayloads collects the current payload of the most recently seen
// curated resources, newest first. Identities whose payload cannot be
// resolved or parsed are skipped.
func (a *Assembler) latestPayloads(ctx context.Context, limit int) ([]json.RawMessage, error) {
	if limit <= 0 {
		limit = DefaultExportLimit
	}
	curated, err := a.reader.ListCurated(ctx, core.CuratedFilter{Limit: limit})
	if err != nil {
		return nil, err
	}

	payloads := make([]json.RawMessage, 0, len(curated))
	for _, res := range curated {
		payload, ok := a.resolvePayload(ctx, res.CurrentSHA256)
		if !ok {
			a.logger.Debug("skipping curated resource without usable payload", "ident", res.DisplayIdent())
			continue
		}
		payloads = append(payloads, payload)
	}
	return payloads, nil
}

// selectedPayloads resolves each identifier to its current payload. Unknown
// identifiers and unresolvable payloads are skipped silently so a stale
// selection still exports the rest.
func (a *Assembler) selectedPayloads(ctx context.Context, idents []string) ([]json.RawMessage, error) {
	payloads := make([]json.RawMessage, 0, len(idents))
	for _, ident := range idents {
		res, err := a.reader.GetCuratedByIdent(ctx, ident)
		if err != nil {
			if goerrors.Is(err, core.ErrCuratedNotFound) {
				continue
			}
			return nil, err
		}
		payload, ok := a.resolvePayload(ctx, res.CurrentSHA256)
		if !ok {
			a.logger.Debug("skipping curated resource without usable payload", "ident", res.DisplayIdent())
			continue
		}
		payloads = append(payloads, payload)
	}
	return payloads, nil
}

func (a *Assembler) resolvePayload(ctx context.Context, sha string) (json.RawMessage, bool) {
	if sha == "" {
		return nil, false
	}
	payload, err := a.reader.LatestPayloadBySHA(ctx, sha)
	if err != nil {
		return nil, false
	}
	decoded, err := core.DecodeJSONObject([]byte(payload))
	if err != nil {
		return nil, false
	}
	if _, ok := decoded["resourceType"].(string); !ok {
		return nil, false
	}
	return json.RawMessage(payload), true
}

// ExportCuratedJSON writes the latest curated resources as an indented FHIR
// collection Bundle.
func (a *Assembler) ExportCuratedJSON(ctx context.Context, limit int, outPath string) core.ExportResult {
	payloads, err := a.latestPayloads(ctx, limit)
	if err != nil {
		return a.failure(outPath, err)
	}
	return a.writeJSONBundle(payloads, outPath)
}

// ExportSelectedJSON writes the chosen curated resources as an indented FHIR
// collection Bundle.
func (a *Assembler) ExportSelectedJSON(ctx context.Context, idents []string, outPath string) core.ExportResult {
	payloads, err := a.selectedPayloads(ctx, idents)
	if err != nil {
		return a.failure(outPath, err)
	}
	return a.writeJSONBundle(payloads, outPath)
}

// ExportCuratedXML writes the latest curated resources as a FHIR Bundle XML
// document in the given mode.
func (a *Assembler) ExportCuratedXML(ctx context.Context, limit int, outPath string, mode Mode) core.ExportResult {
	payloads, err := a.latestPayloads(ctx, limit)
	if err != nil {
		return a.failure(outPath, err)
	}
	return a.writeXMLBundle(payloads, outPath, mode)
}

// ExportSelectedXML writes the chosen curated resources as a FHIR Bundle XML
// document in the given mode.
func (a *Assembler) ExportSelectedXML(ctx context.Context, idents []string, outPath string, mode Mode) core.ExportResult {
	payloads, err := a.selectedPayloads(ctx, idents)
	if err != nil {
		return a.failure(outPath, err)
	}
	return a.writeXMLBundle(payloads, outPath, mode)
}

func (a *Assembler) writeJSONBundle(payloads []json.RawMessage, outPath string) core.ExportResult {
	entries := make([]jsonEntry, 0, len(payloads))
	for _, payload := range payloads {
		entries = append(entries, jsonEntry{Resource: payload})
	}
	bundle := jsonBundle{ResourceType: "Bundle", Type: "collection", Entry: entries}

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return a.failure(outPath, err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return a.failure(outPath, err)
	}

	a.logger.Info("exported curated bundle", "format", "json", "path", outPath, "resources", len(entries))
	return core.ExportResult{
		OK:      true,
		Message: fmt.Sprintf("exported %d resources to %s", len(entries), outPath),
		Count:   len(entries),
		OutPath: outPath,
	}
}

func (a *Assembler) writeXMLBundle(payloads []json.RawMessage, outPath string, mode Mode) core.ExportResult {
	bundle := &object{members: []member{
		{key: "resourceType", value: "Bundle"},
		{key: "type", value: "collection"},
	}}
	entries := make([]any, 0, len(payloads))
	for _, payload := range payloads {
		entry, err := decodeOrderedObject(payload)
		if err != nil {
			continue
		}
		entries = append(entries, &object{members: []member{{key: "resource", value: entry}}})
	}
	bundle.members = append(bundle.members, member{key: "entry", value: entries})

	root, err := a.serializer.ResourceElement(bundle, mode)
	if err != nil {
		return a.failure(outPath, err)
	}
	if err := os.WriteFile(outPath, []byte(Render(root)), 0o644); err != nil {
		return a.failure(outPath, err)
	}

	a.logger.Info("exported curated bundle",
		"format", "xml", "mode", string(mode), "path", outPath, "resources", len(entries))
	return core.ExportResult{
		OK:      true,
		Message: fmt.Sprintf("exported %d resources to %s (mode=%s)", len(entries), outPath, mode),
		Count:   len(entries),
		OutPath: outPath,
	}
}

func (a *Assembler) failure(outPath string, err error) core.ExportResult {
	a.logger.Error("export failed", "path", outPath, "error", err)
	return core.ExportResult{OK: false, Message: err.Error(), OutPath: outPath}
}
