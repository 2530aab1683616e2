// Package source normalizes the three supported input shapes (JSON Bundle,
// XML Bundle, and NPM-style FHIR package) into a uniform stream of resource
// occurrences for the ingestion engine.
package source

import (
	"github.com/fmatten/fhir-mdr/core"
)

// Item is one resource occurrence read from a source. JSON-sourced items
// carry both the verbatim payload text and the decoded value; XML-sourced
// items carry only the re-serialized XML text (JSON is nil).
type Item struct {
	FullURL string
	Payload string
	JSON    map[string]any
	Fields  core.ResourceFields
	SHA256  string
}

// BundleInfo is the bundle-level metadata captured for whole-bundle sources.
// Nested bundles inside packages do not produce a BundleInfo.
type BundleInfo struct {
	Type    string
	SHA256  string
	Payload string
}

// Stream is the normalized output of a reader.
type Stream struct {
	Kind   core.SourceKind
	Bundle *BundleInfo
	Items  []Item
}
