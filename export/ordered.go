package export

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// object is a JSON object with its member order preserved. The generic XML
// serializer walks members in this order so the rendition mirrors the stored
// payload instead of Go's randomized map iteration.
type object struct {
	members []member
}

type member struct {
	key   string
	value any
}

func (o *object) get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	for _, m := range o.members {
		if m.key == key {
			return m.value, true
		}
	}
	return nil, false
}

func (o *object) keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, 0, len(o.members))
	for _, m := range o.members {
		out = append(out, m.key)
	}
	return out
}

// decodeOrdered parses a JSON document preserving object member order.
// Objects decode to *object, arrays to []any, numbers to json.Number.
func decodeOrdered(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	value, err := decodeOrderedValue(dec)
	if err != nil {
		return nil, err
	}
	return value, nil
}

// decodeOrderedObject parses a JSON document that must be an object.
func decodeOrderedObject(data []byte) (*object, error) {
	value, err := decodeOrdered(data)
	if err != nil {
		return nil, err
	}
	obj, ok := value.(*object)
	if !ok {
		return nil, fmt.Errorf("export: payload is not a JSON object")
	}
	return obj, nil
}

func decodeOrderedValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeOrderedToken(dec, tok)
}

func decodeOrderedToken(dec *json.Decoder, tok json.Token) (any, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := &object{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("export: object key is not a string: %v", keyTok)
				}
				value, err := decodeOrderedValue(dec)
				if err != nil {
					return nil, err
				}
				obj.members = append(obj.members, member{key: key, value: value})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			var items []any
			for dec.More() {
				value, err := decodeOrderedValue(dec)
				if err != nil {
					return nil, err
				}
				items = append(items, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return items, nil
		}
		return nil, fmt.Errorf("export: unexpected delimiter %v", t)
	default:
		return t, nil
	}
}
