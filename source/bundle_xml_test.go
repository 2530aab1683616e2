package source

import (
	"strings"
	"testing"

	"github.com/fmatten/fhir-mdr/core"
)

const sampleXMLBundle = `<Bundle xmlns="http://hl7.org/fhir">
  <type value="collection"/>
  <entry>
    <fullUrl value="urn:uuid:p1"/>
    <resource>
      <Patient>
        <id value="p1"/>
        <meta>
          <versionId value="2"/>
          <lastUpdated value="2024-01-01T00:00:00Z"/>
        </meta>
        <active value="true"/>
      </Patient>
    </resource>
  </entry>
  <entry>
    <resource>
      <ValueSet>
        <id value="vs1"/>
        <url value="http://example.org/fhir/ValueSet/v"/>
        <version value="1.0.0"/>
      </ValueSet>
    </resource>
  </entry>
  <entry>
    <fullUrl value="urn:uuid:no-resource"/>
  </entry>
</Bundle>`

func TestReadBundleXML(t *testing.T) {
	stream, err := ReadBundleXML(sampleXMLBundle)
	if err != nil {
		t.Fatalf("read xml bundle: %v", err)
	}
	if stream.Bundle == nil || stream.Bundle.Type != "collection" {
		t.Fatalf("bundle type not extracted: %+v", stream.Bundle)
	}
	if stream.Bundle.SHA256 != core.HashXML(sampleXMLBundle) {
		t.Fatalf("bundle hash must cover the trimmed literal text")
	}

	if len(stream.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(stream.Items))
	}

	patient := stream.Items[0]
	if patient.FullURL != "urn:uuid:p1" {
		t.Fatalf("fullUrl not extracted: %q", patient.FullURL)
	}
	if patient.Fields.ResourceType != "Patient" || patient.Fields.LogicalID != "p1" {
		t.Fatalf("fields not extracted: %+v", patient.Fields)
	}
	if patient.Fields.MetaVersionID != "2" || patient.Fields.MetaLastUpdated != "2024-01-01T00:00:00Z" {
		t.Fatalf("meta fields not extracted: %+v", patient.Fields)
	}
	if patient.JSON != nil {
		t.Fatalf("XML-sourced items must not carry a JSON value")
	}
	if !strings.HasPrefix(patient.Payload, `<Patient xmlns="http://hl7.org/fhir">`) {
		t.Fatalf("payload must be a namespaced XML fragment, got %q", patient.Payload)
	}
	if !strings.Contains(patient.Payload, `<id value="p1">`) && !strings.Contains(patient.Payload, `<id value="p1"/>`) {
		t.Fatalf("payload must keep primitive value attributes, got %q", patient.Payload)
	}
	if patient.SHA256 != core.HashXML(patient.Payload) {
		t.Fatalf("item hash must cover the re-serialized payload")
	}

	valueset := stream.Items[1]
	if valueset.Fields.CanonicalURL != "http://example.org/fhir/ValueSet/v" || valueset.Fields.ArtifactVersion != "1.0.0" {
		t.Fatalf("canonical fields not extracted: %+v", valueset.Fields)
	}
}

func TestReadBundleXMLRejectsBadInput(t *testing.T) {
	if _, err := ReadBundleXML("   "); err == nil {
		t.Fatalf("expected error for empty input")
	}
	if _, err := ReadBundleXML("<not-closed"); err == nil {
		t.Fatalf("expected error for malformed XML")
	}
	if _, err := ReadBundleXML(`<Patient xmlns="http://hl7.org/fhir"><id value="p1"/></Patient>`); err == nil {
		t.Fatalf("expected error for non-Bundle root")
	}
}
