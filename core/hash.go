package core

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// HashResource computes the content hash of a decoded JSON resource: SHA-256
// over the UTF-8 bytes of its canonical serialization. Two values hash equal
// iff their key/value structure is identical regardless of field order and
// original whitespace.
func HashResource(value any) (string, error) {
	canonical, err := CanonicalJSON(value)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// HashXML hashes the whitespace-trimmed literal XML text. No XML
// canonicalization is performed: two XML resources differing only in
// non-significant whitespace, attribute order, or namespace prefix hash
// differently. This asymmetry with the JSON path is accepted, not a defect.
func HashXML(text string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return hex.EncodeToString(sum[:])
}

// CanonicalJSON re-serializes a decoded JSON value into canonical form: keys
// sorted lexicographically at every nesting level, no extraneous whitespace,
// unicode preserved unescaped. Numbers decoded as json.Number keep their
// source representation.
func CanonicalJSON(value any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, value); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, value any) error {
	switch v := value.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if v {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case string:
		writeJSONString(buf, v)
	case json.Number:
		buf.WriteString(string(v))
	case float64:
		buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	case int:
		buf.WriteString(strconv.Itoa(v))
	case int64:
		buf.WriteString(strconv.FormatInt(v, 10))
	case []any:
		buf.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, key := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONString(buf, key)
			buf.WriteByte(':')
			if err := writeCanonical(buf, v[key]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("core: unsupported JSON value type %T", value)
	}
	return nil
}

// writeJSONString encodes s as a JSON string without HTML escaping, so
// unicode and characters like < and & survive verbatim.
func writeJSONString(buf *bytes.Buffer, s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	// Encode on a string cannot fail.
	_ = enc.Encode(s)
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
}

// DecodeJSONObject decodes data into a generic JSON object, preserving
// number representations via json.Number.
func DecodeJSONObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("core: expected JSON object, got %T", value)
	}
	return obj, nil
}
