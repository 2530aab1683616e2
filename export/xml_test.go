package export

import (
	"strings"
	"testing"
)

func mustDecode(t *testing.T, data string) *object {
	t.Helper()
	obj, err := decodeOrderedObject([]byte(data))
	if err != nil {
		t.Fatalf("decode resource: %v", err)
	}
	return obj
}

func TestResourceElement_BestEffortPreservesPayloadOrder(t *testing.T) {
	resource := mustDecode(t, `{
		"resourceType": "Patient",
		"gender": "female",
		"id": "p1",
		"active": true
	}`)

	root, err := NewSerializer(nil).ResourceElement(resource, ModeBestEffort)
	if err != nil {
		t.Fatalf("best-effort serialize: %v", err)
	}

	doc := Render(root)
	genderAt := strings.Index(doc, `<gender value="female"/>`)
	idAt := strings.Index(doc, `<id value="p1"/>`)
	activeAt := strings.Index(doc, `<active value="true"/>`)
	if genderAt < 0 || idAt < 0 || activeAt < 0 {
		t.Fatalf("missing primitive elements in document:\n%s", doc)
	}
	if !(genderAt < idAt && idAt < activeAt) {
		t.Fatalf("expected payload member order, got:\n%s", doc)
	}
}

func TestResourceElement_StrictReordersKnownFields(t *testing.T) {
	resource := mustDecode(t, `{
		"resourceType": "Patient",
		"gender": "female",
		"id": "p1",
		"active": true
	}`)

	root, err := NewSerializer(nil).ResourceElement(resource, ModeStrict)
	if err != nil {
		t.Fatalf("strict serialize: %v", err)
	}

	doc := Render(root)
	idAt := strings.Index(doc, `<id value="p1"/>`)
	activeAt := strings.Index(doc, `<active value="true"/>`)
	genderAt := strings.Index(doc, `<gender value="female"/>`)
	if !(idAt >= 0 && idAt < activeAt && activeAt < genderAt) {
		t.Fatalf("expected strict field order id < active < gender, got:\n%s", doc)
	}
}

func TestResourceElement_StrictRejectsUnknownFields(t *testing.T) {
	resource := mustDecode(t, `{"resourceType": "Patient", "id": "p1", "favouriteColor": "blue"}`)

	_, err := NewSerializer(nil).ResourceElement(resource, ModeStrict)
	if err == nil {
		t.Fatalf("expected unknown field rejection")
	}
	if !strings.Contains(err.Error(), "unknown fields for Patient") ||
		!strings.Contains(err.Error(), "favouriteColor") {
		t.Fatalf("expected error to name the unknown field, got %v", err)
	}
}

func TestResourceElement_StrictRejectsUnsupportedType(t *testing.T) {
	resource := mustDecode(t, `{"resourceType": "Basic", "id": "b1"}`)

	_, err := NewSerializer(nil).ResourceElement(resource, ModeStrict)
	if err == nil {
		t.Fatalf("expected unsupported type rejection")
	}
	if !strings.Contains(err.Error(), "unsupported resource type") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestResourceElement_StrictishFallsBackGenerically(t *testing.T) {
	unsupported := mustDecode(t, `{"resourceType": "Basic", "id": "b1"}`)
	root, err := NewSerializer(nil).ResourceElement(unsupported, ModeStrictish)
	if err != nil {
		t.Fatalf("strictish unsupported type: %v", err)
	}
	if doc := Render(root); !strings.Contains(doc, `<Basic xmlns="http://hl7.org/fhir">`) {
		t.Fatalf("expected generic Basic rendition, got:\n%s", doc)
	}

	unknown := mustDecode(t, `{"resourceType": "Patient", "id": "p1", "favouriteColor": "blue"}`)
	root, err = NewSerializer(nil).ResourceElement(unknown, ModeStrictish)
	if err != nil {
		t.Fatalf("strictish unknown field: %v", err)
	}
	if doc := Render(root); !strings.Contains(doc, `<favouriteColor value="blue"/>`) {
		t.Fatalf("expected generic fallback to keep unknown field, got:\n%s", doc)
	}
}

func TestResourceElement_BundleEntriesNestResources(t *testing.T) {
	bundle := mustDecode(t, `{
		"resourceType": "Bundle",
		"type": "collection",
		"entry": [
			{
				"fullUrl": "urn:uuid:1",
				"resource": {"resourceType": "Patient", "id": "p1"}
			}
		]
	}`)

	root, err := NewSerializer(nil).ResourceElement(bundle, ModeStrict)
	if err != nil {
		t.Fatalf("strict bundle serialize: %v", err)
	}

	doc := Render(root)
	if !strings.Contains(doc, `<entry><fullUrl value="urn:uuid:1"/><resource><Patient><id value="p1"/></Patient></resource></entry>`) {
		t.Fatalf("unexpected bundle entry rendition:\n%s", doc)
	}
}

func TestResourceElement_MissingResourceType(t *testing.T) {
	resource := mustDecode(t, `{"id": "p1"}`)
	if _, err := NewSerializer(nil).ResourceElement(resource, ModeBestEffort); err == nil {
		t.Fatalf("expected missing resourceType error")
	}
}

func TestRender_EscapesAttributeValues(t *testing.T) {
	resource := mustDecode(t, `{"resourceType": "Patient", "id": "a<b&\"c"}`)
	root, err := NewSerializer(nil).ResourceElement(resource, ModeBestEffort)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	doc := Render(root)
	if strings.Contains(doc, `a<b`) {
		t.Fatalf("expected escaped attribute value, got:\n%s", doc)
	}
	if !strings.Contains(doc, "a&lt;b&amp;") {
		t.Fatalf("expected entity-escaped value, got:\n%s", doc)
	}
}

func TestRender_NumbersKeepSourceRepresentation(t *testing.T) {
	resource := mustDecode(t, `{"resourceType": "Observation", "valueQuantity": {"value": 1.50}}`)
	root, err := NewSerializer(nil).ResourceElement(resource, ModeBestEffort)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if doc := Render(root); !strings.Contains(doc, `<value value="1.50"/>`) {
		t.Fatalf("expected 1.50 to survive serialization, got:\n%s", doc)
	}
}

func TestFieldOrderTableHas(t *testing.T) {
	orders := DefaultFieldOrder()
	if !orders.Has("Patient") {
		t.Fatalf("expected Patient in default field order table")
	}
	if orders.Has("Basic") {
		t.Fatalf("did not expect Basic in default field order table")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ModeBestEffort},
		{in: "best-effort", want: ModeBestEffort},
		{in: "strict", want: ModeStrict},
		{in: "strictish", want: ModeStrictish},
		{in: "lenient", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err == nil && got != tt.want {
			t.Fatalf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
