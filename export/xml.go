package export

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
)

// FHIRNamespace is the XML namespace every rendered element belongs to.
const FHIRNamespace = "http://hl7.org/fhir"

// Mode selects how the XML serializer treats resource types and fields it
// does not know.
type Mode string

const (
	// ModeBestEffort serializes any resource generically, element order
	// following the stored payload.
	ModeBestEffort Mode = "best-effort"
	// ModeStrict renders only resource types with a known field order and
	// rejects unknown fields.
	ModeStrict Mode = "strict"
	// ModeStrictish renders strictly where possible and falls back to the
	// generic serializer for unsupported types or unknown fields.
	ModeStrictish Mode = "strictish"
)

// ParseMode normalizes a textual mode, defaulting empty input to best-effort.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.TrimSpace(value)) {
	case "":
		return ModeBestEffort, nil
	case ModeBestEffort:
		return ModeBestEffort, nil
	case ModeStrict:
		return ModeStrict, nil
	case ModeStrictish:
		return ModeStrictish, nil
	}
	return "", fmt.Errorf("export: invalid mode %q", value)
}

// xmlNode is one element of the rendition tree. FHIR XML primitives carry
// their value in a "value" attribute rather than as text content.
type xmlNode struct {
	name     string
	value    string
	hasValue bool
	children []*xmlNode
}

func (n *xmlNode) child(name string) *xmlNode {
	c := &xmlNode{name: name}
	n.children = append(n.children, c)
	return c
}

func (n *xmlNode) primitive(name string, value any) {
	c := n.child(name)
	c.value = formatPrimitive(value)
	c.hasValue = true
}

// Serializer converts decoded FHIR resources into XML element trees.
type Serializer struct {
	orders FieldOrderTable
}

// NewSerializer builds a serializer over the given field order table, falling
// back to the built-in R4 orders when nil.
func NewSerializer(orders FieldOrderTable) *Serializer {
	if orders == nil {
		orders = DefaultFieldOrder()
	}
	return &Serializer{orders: orders}
}

// ResourceElement converts one resource into an element tree according to
// the mode.
func (s *Serializer) ResourceElement(resource *object, mode Mode) (*xmlNode, error) {
	rt := resourceType(resource)
	if rt == "" {
		return nil, fmt.Errorf("export: missing resourceType")
	}

	switch mode {
	case ModeBestEffort, ModeStrict, ModeStrictish:
	default:
		return nil, fmt.Errorf("export: invalid mode %q", mode)
	}

	if mode == ModeStrict || mode == ModeStrictish {
		if !s.orders.Has(rt) {
			if mode == ModeStrictish {
				return genericElement(resource, rt), nil
			}
			return nil, fmt.Errorf("export: unsupported resource type %q in strict xml", rt)
		}
		order := s.orders[rt]

		if unknown := unknownFields(resource, order); len(unknown) > 0 {
			if mode == ModeStrictish {
				return genericElement(resource, rt), nil
			}
			return nil, fmt.Errorf("export: unknown fields for %s: %s", rt, strings.Join(unknown, ", "))
		}

		root := &xmlNode{name: rt}
		for _, key := range order {
			value, present := resource.get(key)
			if !present {
				continue
			}
			if key == "entry" && rt == "Bundle" {
				if err := s.bundleEntries(root, value, mode); err != nil {
					return nil, err
				}
				continue
			}
			serializeGeneric(root, key, value)
		}
		return root, nil
	}

	return genericElement(resource, rt), nil
}

// bundleEntries renders Bundle.entry with its fullUrl/resource subset order,
// recursing into each entry resource with the same mode.
func (s *Serializer) bundleEntries(root *xmlNode, value any, mode Mode) error {
	entries, ok := value.([]any)
	if !ok {
		return nil
	}
	for _, raw := range entries {
		entry, ok := raw.(*object)
		if !ok {
			continue
		}
		entryEl := root.child("entry")
		if fullURL, present := entry.get("fullUrl"); present {
			entryEl.primitive("fullUrl", fullURL)
		}
		if res, present := entry.get("resource"); present {
			inner, ok := res.(*object)
			if !ok {
				continue
			}
			wrapper := entryEl.child("resource")
			child, err := s.ResourceElement(inner, mode)
			if err != nil {
				return err
			}
			wrapper.children = append(wrapper.children, child)
		}
	}
	return nil
}

func genericElement(resource *object, rt string) *xmlNode {
	root := &xmlNode{name: rt}
	for _, m := range resource.members {
		if m.key == "resourceType" {
			continue
		}
		serializeGeneric(root, m.key, m.value)
	}
	return root
}

// serializeGeneric maps primitives to value attributes, objects to nested
// elements and lists to repeated elements.
func serializeGeneric(parent *xmlNode, key string, value any) {
	switch v := value.(type) {
	case nil:
		return
	case []any:
		for _, item := range v {
			serializeGeneric(parent, key, item)
		}
	case *object:
		el := parent.child(key)
		for _, m := range v.members {
			if m.key == "resourceType" {
				continue
			}
			serializeGeneric(el, m.key, m.value)
		}
	default:
		parent.primitive(key, v)
	}
}

func resourceType(resource *object) string {
	value, ok := resource.get("resourceType")
	if !ok {
		return ""
	}
	rt, ok := value.(string)
	if !ok {
		return ""
	}
	return rt
}

func unknownFields(resource *object, order []string) []string {
	allowed := make(map[string]struct{}, len(order))
	for _, key := range order {
		allowed[key] = struct{}{}
	}
	var unknown []string
	for _, key := range resource.keys() {
		if key == "resourceType" {
			continue
		}
		if _, ok := allowed[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}

func formatPrimitive(value any) string {
	switch v := value.(type) {
	case bool:
		if v {
			return "true"
		}
		return "false"
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Render serializes an element tree as a standalone XML document in the FHIR
// namespace.
func Render(root *xmlNode) string {
	var b strings.Builder
	b.WriteString(xml.Header)
	writeNode(&b, root, true)
	return b.String()
}

func writeNode(b *strings.Builder, n *xmlNode, isRoot bool) {
	b.WriteString("<")
	b.WriteString(n.name)
	if isRoot {
		b.WriteString(` xmlns="`)
		b.WriteString(FHIRNamespace)
		b.WriteString(`"`)
	}
	if n.hasValue {
		b.WriteString(` value="`)
		escapeXML(b, n.value)
		b.WriteString(`"`)
	}
	if len(n.children) == 0 {
		b.WriteString("/>")
		return
	}
	b.WriteString(">")
	for _, c := range n.children {
		writeNode(b, c, false)
	}
	b.WriteString("</")
	b.WriteString(n.name)
	b.WriteString(">")
}

func escapeXML(b *strings.Builder, s string) {
	// EscapeText covers attribute context too, quotes included.
	_ = xml.EscapeText(b, []byte(s))
}
