package ingest

import (
	"fmt"
	"sort"
)

// Reference is one FHIR reference string occurrence: the dotted/indexed path
// of the object holding the "reference" field, and the reference target.
type Reference struct {
	Path   string
	Target string
}

// CollectReferences walks a decoded JSON resource and returns every object
// field literally named "reference" whose value is a string. The recorded
// path points at the containing object, so {"subject":{"reference":"Patient/p1"}}
// yields path "subject". Only JSON input supports extraction; XML payloads
// never reach this walker.
func CollectReferences(value any) []Reference {
	var refs []Reference
	walkReferences(value, "", &refs)
	return refs
}

func walkReferences(value any, basePath string, refs *[]Reference) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			child := v[key]
			if key == "reference" {
				if target, ok := child.(string); ok {
					*refs = append(*refs, Reference{Path: basePath, Target: target})
					continue
				}
			}
			walkReferences(child, joinPath(basePath, key), refs)
		}
	case []any:
		for i, item := range v {
			walkReferences(item, fmt.Sprintf("%s[%d]", basePath, i), refs)
		}
	}
}

func joinPath(base string, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}
