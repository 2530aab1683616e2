package query

import (
	"context"

	"github.com/fmatten/fhir-mdr/core"
)

type ListCuratedQuery struct {
	reader core.CuratedReader
}

func NewListCuratedQuery(reader core.CuratedReader) *ListCuratedQuery {
	return &ListCuratedQuery{reader: reader}
}

func (q *ListCuratedQuery) Query(ctx context.Context, msg ListCuratedMessage) ([]core.CuratedResource, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: curated reader is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, queryInvalidInputError(err.Error())
	}
	curated, err := q.reader.ListCurated(ctx, msg.Filter)
	if err != nil {
		return nil, core.MapError(err)
	}
	return curated, nil
}

type GetCuratedQuery struct {
	reader core.CuratedReader
}

func NewGetCuratedQuery(reader core.CuratedReader) *GetCuratedQuery {
	return &GetCuratedQuery{reader: reader}
}

func (q *GetCuratedQuery) Query(ctx context.Context, msg GetCuratedMessage) (core.CuratedResource, error) {
	if q == nil || q.reader == nil {
		return core.CuratedResource{}, queryDependencyError("query: curated reader is required")
	}
	if err := msg.Validate(); err != nil {
		return core.CuratedResource{}, queryInvalidInputError(err.Error())
	}
	curated, err := q.reader.GetCuratedByIdent(ctx, msg.Ident)
	if err != nil {
		return core.CuratedResource{}, core.MapError(err)
	}
	return curated, nil
}

type ListVariantsQuery struct {
	reader core.CuratedReader
}

func NewListVariantsQuery(reader core.CuratedReader) *ListVariantsQuery {
	return &ListVariantsQuery{reader: reader}
}

func (q *ListVariantsQuery) Query(ctx context.Context, msg ListVariantsMessage) ([]core.CuratedVariant, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: curated reader is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, queryInvalidInputError(err.Error())
	}
	variants, err := q.reader.ListVariants(ctx, msg.CuratedID, msg.Limit)
	if err != nil {
		return nil, core.MapError(err)
	}
	return variants, nil
}

type ListRunsQuery struct {
	reader core.CuratedReader
}

func NewListRunsQuery(reader core.CuratedReader) *ListRunsQuery {
	return &ListRunsQuery{reader: reader}
}

func (q *ListRunsQuery) Query(ctx context.Context, msg ListRunsMessage) ([]core.IngestRun, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: curated reader is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, queryInvalidInputError(err.Error())
	}
	runs, err := q.reader.ListRuns(ctx, msg.Limit)
	if err != nil {
		return nil, core.MapError(err)
	}
	return runs, nil
}

type ListArtifactConflictsQuery struct {
	reader core.CuratedReader
}

func NewListArtifactConflictsQuery(reader core.CuratedReader) *ListArtifactConflictsQuery {
	return &ListArtifactConflictsQuery{reader: reader}
}

func (q *ListArtifactConflictsQuery) Query(
	ctx context.Context,
	msg ListArtifactConflictsMessage,
) ([]core.ArtifactConflict, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: curated reader is required")
	}
	conflicts, err := q.reader.ListArtifactConflicts(ctx)
	if err != nil {
		return nil, core.MapError(err)
	}
	return conflicts, nil
}
