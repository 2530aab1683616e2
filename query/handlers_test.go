package query

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fmatten/fhir-mdr/core"
)

func TestListCuratedQuery_QueryDelegates(t *testing.T) {
	expected := []core.CuratedResource{
		{ID: "cur_1", ResourceType: "ValueSet", CanonicalURL: "http://example.org/ValueSet/vs1"},
	}
	called := false
	reader := stubCuratedReader{
		listCuratedFn: func(_ context.Context, filter core.CuratedFilter) ([]core.CuratedResource, error) {
			called = true
			if filter.ResourceType != "ValueSet" || !filter.ConflictsOnly {
				t.Fatalf("unexpected curated filter: %#v", filter)
			}
			return expected, nil
		},
	}

	qry := NewListCuratedQuery(reader)
	result, err := qry.Query(context.Background(), ListCuratedMessage{
		Filter: core.CuratedFilter{ResourceType: "ValueSet", ConflictsOnly: true},
	})
	if err != nil {
		t.Fatalf("query curated list: %v", err)
	}
	if !called {
		t.Fatalf("expected curated reader invocation")
	}
	if len(result) != 1 || result[0].ID != "cur_1" {
		t.Fatalf("unexpected curated list result: %#v", result)
	}
}

func TestGetCuratedQuery_QueryDelegates(t *testing.T) {
	called := false
	reader := stubCuratedReader{
		getFn: func(_ context.Context, ident string) (core.CuratedResource, error) {
			called = true
			if ident != "http://example.org/ValueSet/vs1" {
				t.Fatalf("unexpected ident %q", ident)
			}
			return core.CuratedResource{ID: "cur_1", CanonicalURL: ident}, nil
		},
	}

	result, err := NewGetCuratedQuery(reader).Query(context.Background(), GetCuratedMessage{
		Ident: "http://example.org/ValueSet/vs1",
	})
	if err != nil {
		t.Fatalf("query curated get: %v", err)
	}
	if !called || result.ID != "cur_1" {
		t.Fatalf("expected curated get delegation, got %#v", result)
	}
}

func TestListVariantsQuery_QueryDelegates(t *testing.T) {
	called := false
	reader := stubCuratedReader{
		variantsFn: func(_ context.Context, curatedID string, limit int) ([]core.CuratedVariant, error) {
			called = true
			if curatedID != "cur_1" || limit != 10 {
				t.Fatalf("unexpected variants request: %q %d", curatedID, limit)
			}
			return []core.CuratedVariant{{CuratedID: curatedID, SHA256: "abc", Occurrences: 2}}, nil
		},
	}

	result, err := NewListVariantsQuery(reader).Query(context.Background(), ListVariantsMessage{
		CuratedID: "cur_1",
		Limit:     10,
	})
	if err != nil {
		t.Fatalf("query variants: %v", err)
	}
	if !called || len(result) != 1 || result[0].Occurrences != 2 {
		t.Fatalf("unexpected variants result: %#v", result)
	}
}

func TestListRunsQuery_QueryDelegates(t *testing.T) {
	started := time.Now()
	called := false
	reader := stubCuratedReader{
		runsFn: func(_ context.Context, limit int) ([]core.IngestRun, error) {
			called = true
			if limit != 5 {
				t.Fatalf("unexpected runs limit %d", limit)
			}
			return []core.IngestRun{{ID: "run_1", SourceKind: core.SourceKindBundle, StartedAt: started}}, nil
		},
	}

	result, err := NewListRunsQuery(reader).Query(context.Background(), ListRunsMessage{Limit: 5})
	if err != nil {
		t.Fatalf("query runs: %v", err)
	}
	if !called || len(result) != 1 || result[0].ID != "run_1" {
		t.Fatalf("unexpected runs result: %#v", result)
	}
}

func TestListArtifactConflictsQuery_QueryDelegates(t *testing.T) {
	called := false
	reader := stubCuratedReader{
		conflictsFn: func(_ context.Context) ([]core.ArtifactConflict, error) {
			called = true
			return []core.ArtifactConflict{{
				ResourceType: "CodeSystem",
				CanonicalURL: "http://example.org/CodeSystem/cs1",
				VariantCount: 2,
			}}, nil
		},
	}

	result, err := NewListArtifactConflictsQuery(reader).Query(context.Background(), ListArtifactConflictsMessage{})
	if err != nil {
		t.Fatalf("query conflicts: %v", err)
	}
	if !called || len(result) != 1 || result[0].VariantCount != 2 {
		t.Fatalf("unexpected conflicts result: %#v", result)
	}
}

func TestQueriesRequireReader(t *testing.T) {
	if _, err := NewListCuratedQuery(nil).Query(context.Background(), ListCuratedMessage{}); err == nil {
		t.Fatalf("expected dependency error for list curated")
	}
	if _, err := NewGetCuratedQuery(nil).Query(context.Background(), GetCuratedMessage{Ident: "x"}); err == nil {
		t.Fatalf("expected dependency error for get curated")
	}
	if _, err := NewListArtifactConflictsQuery(nil).Query(context.Background(), ListArtifactConflictsMessage{}); err == nil {
		t.Fatalf("expected dependency error for conflicts")
	}
}

func TestQueryMessageValidation(t *testing.T) {
	tests := []struct {
		name    string
		msg     interface{ Validate() error }
		wantErr bool
	}{
		{
			name:    "list curated valid",
			msg:     ListCuratedMessage{Filter: core.CuratedFilter{ResourceType: "Patient", Limit: 100}},
			wantErr: false,
		},
		{
			name:    "list curated negative limit",
			msg:     ListCuratedMessage{Filter: core.CuratedFilter{Limit: -1}},
			wantErr: true,
		},
		{
			name:    "get curated valid",
			msg:     GetCuratedMessage{Ident: "http://example.org/ValueSet/vs1"},
			wantErr: false,
		},
		{
			name:    "get curated missing ident",
			msg:     GetCuratedMessage{},
			wantErr: true,
		},
		{
			name:    "list variants valid",
			msg:     ListVariantsMessage{CuratedID: "cur_1", Limit: 10},
			wantErr: false,
		},
		{
			name:    "list variants missing id",
			msg:     ListVariantsMessage{Limit: 10},
			wantErr: true,
		},
		{
			name:    "list runs negative limit",
			msg:     ListRunsMessage{Limit: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

type stubCuratedReader struct {
	listCuratedFn func(ctx context.Context, filter core.CuratedFilter) ([]core.CuratedResource, error)
	getFn         func(ctx context.Context, ident string) (core.CuratedResource, error)
	variantsFn    func(ctx context.Context, curatedID string, limit int) ([]core.CuratedVariant, error)
	payloadFn     func(ctx context.Context, sha string) (string, error)
	conflictsFn   func(ctx context.Context) ([]core.ArtifactConflict, error)
	runsFn        func(ctx context.Context, limit int) ([]core.IngestRun, error)
}

func (s stubCuratedReader) ListCurated(ctx context.Context, filter core.CuratedFilter) ([]core.CuratedResource, error) {
	if s.listCuratedFn == nil {
		return nil, fmt.Errorf("list curated not configured")
	}
	return s.listCuratedFn(ctx, filter)
}

func (s stubCuratedReader) GetCuratedByIdent(ctx context.Context, ident string) (core.CuratedResource, error) {
	if s.getFn == nil {
		return core.CuratedResource{}, fmt.Errorf("get curated not configured")
	}
	return s.getFn(ctx, ident)
}

func (s stubCuratedReader) ListVariants(ctx context.Context, curatedID string, limit int) ([]core.CuratedVariant, error) {
	if s.variantsFn == nil {
		return nil, fmt.Errorf("list variants not configured")
	}
	return s.variantsFn(ctx, curatedID, limit)
}

func (s stubCuratedReader) LatestPayloadBySHA(ctx context.Context, sha string) (string, error) {
	if s.payloadFn == nil {
		return "", fmt.Errorf("latest payload not configured")
	}
	return s.payloadFn(ctx, sha)
}

func (s stubCuratedReader) ListArtifactConflicts(ctx context.Context) ([]core.ArtifactConflict, error) {
	if s.conflictsFn == nil {
		return nil, fmt.Errorf("list conflicts not configured")
	}
	return s.conflictsFn(ctx)
}

func (s stubCuratedReader) ListRuns(ctx context.Context, limit int) ([]core.IngestRun, error) {
	if s.runsFn == nil {
		return nil, fmt.Errorf("list runs not configured")
	}
	return s.runsFn(ctx, limit)
}

var _ core.CuratedReader = stubCuratedReader{}
