package source

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fmatten/fhir-mdr/core"
)

type bundleEnvelope struct {
	ResourceType string            `json:"resourceType"`
	Type         string            `json:"type"`
	Entry        []json.RawMessage `json:"entry"`
}

type entryEnvelope struct {
	FullURL  string          `json:"fullUrl"`
	Resource json.RawMessage `json:"resource"`
}

// ReadBundleJSON parses a FHIR Bundle from JSON text. Non-object entries,
// entries without a resource, and resources that are not objects carrying a
// resourceType are skipped. The stream keeps the verbatim input as the bundle payload while
// the bundle hash is computed over the canonical re-serialization.
func ReadBundleJSON(data []byte) (*Stream, error) {
	bundle, err := core.DecodeJSONObject(data)
	if err != nil {
		return nil, fmt.Errorf("%w: not a FHIR Bundle JSON object", core.ErrInvalidSource)
	}
	if rt, _ := bundle["resourceType"].(string); rt != "Bundle" {
		return nil, fmt.Errorf("%w: not a FHIR Bundle JSON object", core.ErrInvalidSource)
	}

	bundleSHA, err := core.HashResource(bundle)
	if err != nil {
		return nil, err
	}
	bundleType, _ := bundle["type"].(string)

	var envelope bundleEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidSource, err)
	}

	items, err := bundleItems(envelope)
	if err != nil {
		return nil, err
	}

	return &Stream{
		Kind: core.SourceKindBundle,
		Bundle: &BundleInfo{
			Type:    bundleType,
			SHA256:  bundleSHA,
			Payload: string(data),
		},
		Items: items,
	}, nil
}

// bundleItems turns bundle entries into stream items. Shared with the
// package reader for bundles nested inside package files. Entries that are
// not JSON objects are skipped rather than failing the whole bundle.
func bundleItems(envelope bundleEnvelope) ([]Item, error) {
	items := make([]Item, 0, len(envelope.Entry))
	for _, raw := range envelope.Entry {
		var entry entryEnvelope
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		if len(entry.Resource) == 0 {
			continue
		}
		resource, err := core.DecodeJSONObject(entry.Resource)
		if err != nil {
			continue
		}
		fields := core.ExtractFields(resource)
		if fields.ResourceType == "" {
			continue
		}
		sha, err := core.HashResource(resource)
		if err != nil {
			return nil, err
		}
		items = append(items, Item{
			FullURL: entry.FullURL,
			Payload: strings.TrimSpace(string(entry.Resource)),
			JSON:    resource,
			Fields:  fields,
			SHA256:  sha,
		})
	}
	return items, nil
}
