package source

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/fmatten/fhir-mdr/core"
)

// FHIRNamespace is the XML namespace all FHIR elements live in.
const FHIRNamespace = "http://hl7.org/fhir"

// xmlElement is a generic element-tree node. FHIR XML carries primitive
// values in attributes, so text content is not modeled.
type xmlElement struct {
	XMLName  xml.Name
	Attrs    []xml.Attr   `xml:",any,attr"`
	Children []xmlElement `xml:",any"`
}

// ReadBundleXML parses a FHIR Bundle from XML text. Only entry elements that
// are direct children of the Bundle root are read; a Bundle nested inside an
// entry resource is kept verbatim as that resource's payload. Each entry's
// single child resource element is re-serialized back to an XML string and
// stored as the raw payload, since there is no JSON object to store.
// Reference extraction is not available for XML-sourced items.
func ReadBundleXML(text string) (*Stream, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty XML input", core.ErrInvalidSource)
	}

	var root xmlElement
	if err := xml.Unmarshal([]byte(text), &root); err != nil {
		return nil, fmt.Errorf("%w: unreadable XML: %v", core.ErrInvalidSource, err)
	}
	if root.XMLName.Local != "Bundle" {
		return nil, fmt.Errorf("%w: root element is %q, expected Bundle", core.ErrInvalidSource, root.XMLName.Local)
	}

	bundleType := "collection"
	if bt := attrValue(findChild(&root, "type")); bt != "" {
		bundleType = bt
	}

	var items []Item
	for i := range root.Children {
		entry := &root.Children[i]
		if entry.XMLName.Local != "entry" || entry.XMLName.Space != FHIRNamespace {
			continue
		}
		fullURL := attrValue(findChild(entry, "fullUrl"))
		container := findChild(entry, "resource")
		if container == nil || len(container.Children) == 0 {
			continue
		}
		resource := &container.Children[0]
		if resource.XMLName.Local == "" {
			continue
		}

		payload, err := marshalElement(resource)
		if err != nil {
			return nil, fmt.Errorf("%w: re-serialize %s: %v", core.ErrInvalidSource, resource.XMLName.Local, err)
		}
		items = append(items, Item{
			FullURL: fullURL,
			Payload: payload,
			Fields:  extractXMLFields(resource),
			SHA256:  core.HashXML(payload),
		})
	}

	return &Stream{
		Kind: core.SourceKindBundle,
		Bundle: &BundleInfo{
			Type:    bundleType,
			SHA256:  core.HashXML(text),
			Payload: text,
		},
		Items: items,
	}, nil
}

// extractXMLFields reads the identity fields from a FHIR XML resource
// element. FHIR XML primitives are always encoded as <field value="..."/>.
func extractXMLFields(resource *xmlElement) core.ResourceFields {
	fields := core.ResourceFields{
		ResourceType:    resource.XMLName.Local,
		LogicalID:       attrValue(findChild(resource, "id")),
		CanonicalURL:    attrValue(findChild(resource, "url")),
		ArtifactVersion: attrValue(findChild(resource, "version")),
	}
	if meta := findChild(resource, "meta"); meta != nil {
		fields.MetaVersionID = attrValue(findChild(meta, "versionId"))
		fields.MetaLastUpdated = attrValue(findChild(meta, "lastUpdated"))
	}
	return fields
}

// findChild returns the first child whose local name matches, tolerating any
// namespace prefix.
func findChild(el *xmlElement, name string) *xmlElement {
	if el == nil {
		return nil
	}
	for i := range el.Children {
		if el.Children[i].XMLName.Local == name {
			return &el.Children[i]
		}
	}
	return nil
}

func attrValue(el *xmlElement) string {
	if el == nil {
		return ""
	}
	for _, attr := range el.Attrs {
		if attr.Name.Local == "value" {
			return attr.Value
		}
	}
	return ""
}

// marshalElement renders an element subtree back to XML text, declaring the
// element's namespace once on the top element.
func marshalElement(el *xmlElement) (string, error) {
	var sb strings.Builder
	enc := xml.NewEncoder(&sb)
	if err := encodeElement(enc, el, true); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func encodeElement(enc *xml.Encoder, el *xmlElement, top bool) error {
	start := xml.StartElement{Name: xml.Name{Local: el.XMLName.Local}}
	if top && el.XMLName.Space != "" {
		start.Attr = append(start.Attr, xml.Attr{
			Name:  xml.Name{Local: "xmlns"},
			Value: el.XMLName.Space,
		})
	}
	for _, attr := range el.Attrs {
		// Namespace declarations are re-emitted on the top element only.
		if attr.Name.Local == "xmlns" || attr.Name.Space == "xmlns" {
			continue
		}
		start.Attr = append(start.Attr, xml.Attr{
			Name:  xml.Name{Local: attr.Name.Local},
			Value: attr.Value,
		})
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for i := range el.Children {
		if err := encodeElement(enc, &el.Children[i], false); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}
