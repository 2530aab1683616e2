package sqlstore

import "github.com/fmatten/fhir-mdr/core"

var (
	_ core.IngestStore   = (*IngestStore)(nil)
	_ core.RunWriter     = (*runWriter)(nil)
	_ core.CuratedReader = (*CuratedStore)(nil)
)
