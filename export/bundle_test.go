package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fmatten/fhir-mdr/core"
)

type fakeReader struct {
	curated  []core.CuratedResource
	byIdent  map[string]core.CuratedResource
	payloads map[string]string
}

func (f *fakeReader) ListCurated(_ context.Context, filter core.CuratedFilter) ([]core.CuratedResource, error) {
	limit := filter.Limit
	if limit <= 0 || limit > len(f.curated) {
		limit = len(f.curated)
	}
	return f.curated[:limit], nil
}

func (f *fakeReader) GetCuratedByIdent(_ context.Context, ident string) (core.CuratedResource, error) {
	res, ok := f.byIdent[ident]
	if !ok {
		return core.CuratedResource{}, core.ErrCuratedNotFound
	}
	return res, nil
}

func (f *fakeReader) ListVariants(context.Context, string, int) ([]core.CuratedVariant, error) {
	return nil, nil
}

func (f *fakeReader) LatestPayloadBySHA(_ context.Context, sha string) (string, error) {
	payload, ok := f.payloads[sha]
	if !ok {
		return "", core.ErrPayloadNotFound
	}
	return payload, nil
}

func (f *fakeReader) ListArtifactConflicts(context.Context) ([]core.ArtifactConflict, error) {
	return nil, nil
}

func (f *fakeReader) ListRuns(context.Context, int) ([]core.IngestRun, error) {
	return nil, nil
}

func newTestReader() *fakeReader {
	patient := `{"resourceType": "Patient", "id": "p1", "gender": "female"}`
	observation := `{"resourceType": "Observation", "id": "o1", "status": "final"}`
	return &fakeReader{
		curated: []core.CuratedResource{
			{ID: "cur_1", ResourceType: "Patient", LogicalID: "p1", CurrentSHA256: "sha-patient"},
			{ID: "cur_2", ResourceType: "Observation", LogicalID: "o1", CurrentSHA256: "sha-observation"},
			{ID: "cur_3", ResourceType: "Patient", LogicalID: "gone", CurrentSHA256: "sha-missing"},
		},
		byIdent: map[string]core.CuratedResource{
			"p1": {ID: "cur_1", LogicalID: "p1", CurrentSHA256: "sha-patient"},
			"o1": {ID: "cur_2", LogicalID: "o1", CurrentSHA256: "sha-observation"},
		},
		payloads: map[string]string{
			"sha-patient":     patient,
			"sha-observation": observation,
		},
	}
}

func TestExportCuratedJSON_WritesCollectionBundle(t *testing.T) {
	assembler, err := NewAssembler(newTestReader())
	if err != nil {
		t.Fatalf("new assembler: %v", err)
	}

	outPath := filepath.Join(t.TempDir(), "curated.json")
	result := assembler.ExportCuratedJSON(context.Background(), 0, outPath)
	if !result.OK {
		t.Fatalf("export failed: %s", result.Message)
	}
	if result.Count != 2 {
		t.Fatalf("expected 2 exported resources, got %d", result.Count)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var bundle struct {
		ResourceType string `json:"resourceType"`
		Type         string `json:"type"`
		Entry        []struct {
			Resource map[string]any `json:"resource"`
		} `json:"entry"`
	}
	if err := json.Unmarshal(data, &bundle); err != nil {
		t.Fatalf("parse export: %v", err)
	}
	if bundle.ResourceType != "Bundle" || bundle.Type != "collection" {
		t.Fatalf("unexpected bundle envelope: %q %q", bundle.ResourceType, bundle.Type)
	}
	if len(bundle.Entry) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(bundle.Entry))
	}
	if bundle.Entry[0].Resource["id"] != "p1" || bundle.Entry[1].Resource["id"] != "o1" {
		t.Fatalf("unexpected entry order: %#v", bundle.Entry)
	}
}

func TestExportCuratedJSON_KeepsPayloadKeyOrder(t *testing.T) {
	assembler, err := NewAssembler(newTestReader())
	if err != nil {
		t.Fatalf("new assembler: %v", err)
	}

	outPath := filepath.Join(t.TempDir(), "curated.json")
	result := assembler.ExportCuratedJSON(context.Background(), 0, outPath)
	if !result.OK {
		t.Fatalf("export failed: %s", result.Message)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	text := string(data)
	rtAt := strings.Index(text, `"resourceType": "Patient"`)
	idAt := strings.Index(text, `"id": "p1"`)
	genderAt := strings.Index(text, `"gender": "female"`)
	if !(rtAt >= 0 && rtAt < idAt && idAt < genderAt) {
		t.Fatalf("expected payload key order to survive, got:\n%s", text)
	}
}

func TestExportSelectedJSON_SkipsUnknownIdents(t *testing.T) {
	assembler, err := NewAssembler(newTestReader())
	if err != nil {
		t.Fatalf("new assembler: %v", err)
	}

	outPath := filepath.Join(t.TempDir(), "selected.json")
	result := assembler.ExportSelectedJSON(context.Background(), []string{"p1", "nope", "o1"}, outPath)
	if !result.OK {
		t.Fatalf("export failed: %s", result.Message)
	}
	if result.Count != 2 {
		t.Fatalf("expected 2 exported resources, got %d", result.Count)
	}
}

func TestExportCuratedXML_BestEffort(t *testing.T) {
	assembler, err := NewAssembler(newTestReader())
	if err != nil {
		t.Fatalf("new assembler: %v", err)
	}

	outPath := filepath.Join(t.TempDir(), "curated.xml")
	result := assembler.ExportCuratedXML(context.Background(), 0, outPath, ModeBestEffort)
	if !result.OK {
		t.Fatalf("export failed: %s", result.Message)
	}
	if !strings.Contains(result.Message, "(mode=best-effort)") {
		t.Fatalf("expected mode in message, got %q", result.Message)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	doc := string(data)
	if !strings.Contains(doc, `<Bundle xmlns="http://hl7.org/fhir">`) {
		t.Fatalf("expected namespaced Bundle root, got:\n%s", doc)
	}
	if !strings.Contains(doc, `<Patient>`) || !strings.Contains(doc, `<Observation>`) {
		t.Fatalf("expected nested entry resources, got:\n%s", doc)
	}
}

func TestExportCuratedXML_StrictRejectsUnknownFields(t *testing.T) {
	reader := newTestReader()
	reader.curated = []core.CuratedResource{
		{ID: "cur_1", ResourceType: "Patient", LogicalID: "p1", CurrentSHA256: "sha-odd"},
	}
	reader.payloads["sha-odd"] = `{"resourceType": "Patient", "id": "p1", "favouriteColor": "blue"}`

	assembler, err := NewAssembler(reader)
	if err != nil {
		t.Fatalf("new assembler: %v", err)
	}

	outPath := filepath.Join(t.TempDir(), "curated.xml")
	result := assembler.ExportCuratedXML(context.Background(), 0, outPath, ModeStrict)
	if result.OK {
		t.Fatalf("expected strict export failure")
	}
	if !strings.Contains(result.Message, "unknown fields for Patient") {
		t.Fatalf("expected unknown field message, got %q", result.Message)
	}
	if _, err := os.Stat(outPath); !os.IsNotExist(err) {
		t.Fatalf("expected no output file on failure")
	}

	strictish := assembler.ExportCuratedXML(context.Background(), 0, outPath, ModeStrictish)
	if !strictish.OK {
		t.Fatalf("expected strictish fallback to succeed: %s", strictish.Message)
	}
}

func TestExportCuratedXML_InvalidMode(t *testing.T) {
	assembler, err := NewAssembler(newTestReader())
	if err != nil {
		t.Fatalf("new assembler: %v", err)
	}

	outPath := filepath.Join(t.TempDir(), "curated.xml")
	result := assembler.ExportCuratedXML(context.Background(), 0, outPath, Mode("lenient"))
	if result.OK {
		t.Fatalf("expected invalid mode failure")
	}
	if !strings.Contains(result.Message, "invalid mode") {
		t.Fatalf("unexpected message %q", result.Message)
	}
}

func TestNewAssemblerRequiresReader(t *testing.T) {
	if _, err := NewAssembler(nil); err == nil {
		t.Fatalf("expected reader requirement error")
	}
}

type errorReader struct {
	fakeReader
}

func (errorReader) ListCurated(context.Context, core.CuratedFilter) ([]core.CuratedResource, error) {
	return nil, fmt.Errorf("database is locked")
}

func TestExportCuratedJSON_ReaderFailure(t *testing.T) {
	assembler, err := NewAssembler(&errorReader{})
	if err != nil {
		t.Fatalf("new assembler: %v", err)
	}

	result := assembler.ExportCuratedJSON(context.Background(), 0, filepath.Join(t.TempDir(), "out.json"))
	if result.OK {
		t.Fatalf("expected failure result")
	}
	if !strings.Contains(result.Message, "database is locked") {
		t.Fatalf("expected reader error in message, got %q", result.Message)
	}
}
