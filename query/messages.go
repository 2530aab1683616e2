package query

import (
	"fmt"
	"strings"

	"github.com/fmatten/fhir-mdr/core"
)

const (
	TypeListCurated           = "fhirmdr.query.curated.list"
	TypeGetCurated            = "fhirmdr.query.curated.get"
	TypeListVariants          = "fhirmdr.query.variants.list"
	TypeListRuns              = "fhirmdr.query.runs.list"
	TypeListArtifactConflicts = "fhirmdr.query.conflicts.list"
)

type ListCuratedMessage struct {
	Filter core.CuratedFilter
}

func (ListCuratedMessage) Type() string { return TypeListCurated }

func (m ListCuratedMessage) Validate() error {
	if m.Filter.Limit < 0 {
		return fmt.Errorf("query: limit must be >= 0")
	}
	return nil
}

type GetCuratedMessage struct {
	Ident string
}

func (GetCuratedMessage) Type() string { return TypeGetCurated }

func (m GetCuratedMessage) Validate() error {
	if strings.TrimSpace(m.Ident) == "" {
		return fmt.Errorf("query: curated identifier is required")
	}
	return nil
}

type ListVariantsMessage struct {
	CuratedID string
	Limit     int
}

func (ListVariantsMessage) Type() string { return TypeListVariants }

func (m ListVariantsMessage) Validate() error {
	if strings.TrimSpace(m.CuratedID) == "" {
		return fmt.Errorf("query: curated id is required")
	}
	if m.Limit < 0 {
		return fmt.Errorf("query: limit must be >= 0")
	}
	return nil
}

type ListRunsMessage struct {
	Limit int
}

func (ListRunsMessage) Type() string { return TypeListRuns }

func (m ListRunsMessage) Validate() error {
	if m.Limit < 0 {
		return fmt.Errorf("query: limit must be >= 0")
	}
	return nil
}

type ListArtifactConflictsMessage struct{}

func (ListArtifactConflictsMessage) Type() string { return TypeListArtifactConflicts }

func (ListArtifactConflictsMessage) Validate() error { return nil }
