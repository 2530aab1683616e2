package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/fmatten/fhir-mdr/core"
)

var (
	_ gocmd.Querier[ListCuratedMessage, []core.CuratedResource]            = (*ListCuratedQuery)(nil)
	_ gocmd.Querier[GetCuratedMessage, core.CuratedResource]               = (*GetCuratedQuery)(nil)
	_ gocmd.Querier[ListVariantsMessage, []core.CuratedVariant]            = (*ListVariantsQuery)(nil)
	_ gocmd.Querier[ListRunsMessage, []core.IngestRun]                     = (*ListRunsQuery)(nil)
	_ gocmd.Querier[ListArtifactConflictsMessage, []core.ArtifactConflict] = (*ListArtifactConflictsQuery)(nil)
)
