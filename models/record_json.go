package models

import (
	"bytes"
	"encoding/json"
	"sort"
)

// recordKeys is the order modelled fields are written in.
var recordKeys = []string{"id", "name", "score", "category", "playTime", "recordDate", "comment", "imagePath", "imageUrl"}

// UnmarshalJSON decodes a stored record leniently. Numeric strings are read as
// numbers; any value that does not fit its field, and every unknown key, is
// kept in Extra.
func (g *GameRecord) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}

	*g = GameRecord{}
	for key, raw := range fields {
		var ok bool
		switch key {
		case "id":
			ok = decodeString(raw, &g.ID)
		case "name":
			ok = decodeString(raw, &g.Name)
		case "category":
			ok = decodeString(raw, &g.Category)
		case "recordDate":
			ok = decodeString(raw, &g.RecordDate)
		case "comment":
			ok = decodeString(raw, &g.Comment)
		case "score":
			var n Number
			if ok = !isNull(raw) && json.Unmarshal(raw, &n) == nil; ok {
				g.Score = n.Float()
			}
		case "playTime":
			ok = decodeOptionalNumber(raw, &g.PlayTime)
		case "imagePath":
			ok = decodeOptionalString(raw, &g.ImagePath)
		case "imageUrl":
			// Derived from imagePath.
			ok = true
		}
		if !ok {
			if g.Extra == nil {
				g.Extra = make(map[string]json.RawMessage)
			}
			g.Extra[key] = raw
		}
	}
	return nil
}

// MarshalJSON writes the modelled fields in a fixed order followed by the
// extra keys sorted by name. HTML and non-ASCII characters are not escaped.
func (g GameRecord) MarshalJSON() ([]byte, error) {
	values := map[string]any{
		"id":         g.ID,
		"name":       g.Name,
		"score":      g.Score,
		"category":   g.Category,
		"playTime":   g.PlayTime,
		"recordDate": g.RecordDate,
		"comment":    g.Comment,
		"imagePath":  g.ImagePath,
		"imageUrl":   g.ImageURL,
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	writeField := func(key string, value []byte) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, err := marshalLiteral(key)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(value)
		return nil
	}

	for _, key := range recordKeys {
		raw, stored := g.Extra[key]
		if !stored || key == "imageUrl" {
			v, err := marshalLiteral(values[key])
			if err != nil {
				return nil, err
			}
			raw = v
		}
		if err := writeField(key, raw); err != nil {
			return nil, err
		}
	}

	extra := make([]string, 0, len(g.Extra))
	for key := range g.Extra {
		if _, modelled := values[key]; !modelled {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		if err := writeField(key, g.Extra[key]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalLiteral(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// decodeString keeps null out of the typed field so it is written back as null.
func decodeString(raw json.RawMessage, dst *string) bool {
	if isNull(raw) {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func decodeOptionalString(raw json.RawMessage, dst **string) bool {
	if isNull(raw) {
		*dst = nil
		return true
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return false
	}
	*dst = &s
	return true
}

func decodeOptionalNumber(raw json.RawMessage, dst **float64) bool {
	if isNull(raw) {
		*dst = nil
		return true
	}
	var n Number
	if json.Unmarshal(raw, &n) != nil {
		return false
	}
	f := n.Float()
	*dst = &f
	return true
}
