package gs1

import (
	"bytes"
	"encoding/json"
)

// MarshalJSON emits linkTypes in the recorded key order (defaultLink,
// defaultLinkMulti, then first-seen order — invariant I5 in spec.md §8)
// rather than Go's unordered map iteration.
func (l Linkset) MarshalJSON() ([]byte, error) {
	order := l.LinkTypeOrder()

	var buf bytes.Buffer
	buf.WriteByte('{')
	wroteField := false

	if l.ItemDescription != "" {
		buf.WriteString(`"itemDescription":`)
		b, err := json.Marshal(l.ItemDescription)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
		wroteField = true
	}

	if wroteField {
		buf.WriteByte(',')
	}
	buf.WriteString(`"linkTypes":{`)
	for i, key := range order {
		entries, ok := l.LinkTypes[key]
		if !ok {
			continue
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(entries)
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// UnmarshalJSON restores linkTypeOrder from the wire order of the
// "linkTypes" object, since encoding/json does not expose key order for
// map[string]... targets directly.
func (l *Linkset) UnmarshalJSON(data []byte) error {
	var raw struct {
		ItemDescription string                    `json:"itemDescription"`
		LinkTypes       map[string][]LinksetEntry `json:"linkTypes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	l.ItemDescription = raw.ItemDescription
	l.LinkTypes = raw.LinkTypes

	order, err := jsonObjectKeyOrder(data, "linkTypes")
	if err != nil {
		return err
	}
	l.linkTypeOrder = order
	return nil
}

// jsonObjectKeyOrder decodes the named nested object field using a
// streaming token decoder to recover its key order, since
// encoding/json.Unmarshal into a map discards it.
func jsonObjectKeyOrder(data []byte, field string) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if _, ok := tok.(json.Delim); !ok {
		return nil, nil
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)

		if key != field {
			if err := skipJSONValue(dec); err != nil {
				return nil, err
			}
			continue
		}

		inner, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if _, ok := inner.(json.Delim); !ok {
			return nil, nil
		}

		var order []string
		for dec.More() {
			innerKeyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			innerKey, _ := innerKeyTok.(string)
			order = append(order, innerKey)
			if err := skipJSONValue(dec); err != nil {
				return nil, err
			}
		}
		return order, nil
	}
	return nil, nil
}

// skipJSONValue consumes and discards the next complete JSON value from dec.
func skipJSONValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil
	}
	if delim == '{' || delim == '[' {
		depth := 1
		for depth > 0 {
			t, err := dec.Token()
			if err != nil {
				return err
			}
			if d, ok := t.(json.Delim); ok {
				switch d {
				case '{', '[':
					depth++
				case '}', ']':
					depth--
				}
			}
		}
	}
	return nil
}
