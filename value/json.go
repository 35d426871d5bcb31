package value

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// FromJSON converts a decoded JSON value (as produced by
// json.Unmarshal(data, &any)) into a Value. Numbers decoded through
// json.Number preserve integer-vs-float distinction; plain float64 (the
// default decode target) always becomes KindFloat unless it has no
// fractional part and fits an int64, in which case it becomes KindInt,
// leaving float/int inference to the caller's decode mode and reserving
// KindDecimal for explicit parses.
//
// The map[string]any case below cannot recover an insertion order that
// was already lost by the caller's own json.Unmarshal(data, &any) call
// (Go's map type has no order); callers that need Object's ordering
// guarantee preserved across a JSON round trip must decode through
// Value.UnmarshalJSON instead, which never passes through a bare map.
func FromJSON(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Null, nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case json.Number:
		return numberFromJSON(v)
	case float64:
		if v == float64(int64(v)) {
			return Int(int64(v)), nil
		}
		return Float(v), nil
	case int:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case []any:
		items := make([]Value, len(v))
		for i, item := range v {
			converted, err := FromJSON(item)
			if err != nil {
				return Value{}, err
			}
			items[i] = converted
		}
		return Array(items), nil
	case map[string]any:
		obj := NewObject()
		for key, item := range v {
			converted, err := FromJSON(item)
			if err != nil {
				return Value{}, err
			}
			obj.Set(key, converted)
		}
		return ObjectValue(obj), nil
	default:
		return Value{}, fmt.Errorf("unsupported JSON type %T", raw)
	}
}

func numberFromJSON(n json.Number) (Value, error) {
	if i, err := n.Int64(); err == nil {
		return Int(i), nil
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return Value{}, fmt.Errorf("invalid number literal %q: %w", n.String(), err)
	}
	return Decimal(d), nil
}

// ToJSON converts v into a plain Go value suitable for encoding/json.Marshal.
// Object keys land in a plain Go map here, so a round trip through
// json.Marshal(v.ToJSON()) does not preserve Object's insertion order —
// this is fine for parser.Serialize, whose own contract only promises
// re-parsing to an equal Expression, never byte- or order-faithful
// output. Value's own MarshalJSON/UnmarshalJSON below do not use ToJSON
// or FromJSON for exactly that reason.
func (v Value) ToJSON() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.boolean
	case KindInt:
		return v.integer
	case KindFloat:
		return v.float
	case KindDecimal:
		f, _ := v.decimal.Float64()
		return f
	case KindString:
		return v.str
	case KindArray:
		out := make([]any, len(v.array))
		for i, item := range v.array {
			out[i] = item.ToJSON()
		}
		return out
	case KindObject:
		out := make(map[string]any)
		if v.object != nil {
			for pair := v.object.Oldest(); pair != nil; pair = pair.Next() {
				out[pair.Key] = pair.Value.ToJSON()
			}
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler, writing Object's pairs in
// insertion order directly rather than composing them through a plain
// Go map (which encoding/json would re-sort lexicographically).
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encodeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encodeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
		return nil
	case KindBool:
		return marshalInto(buf, v.boolean)
	case KindInt:
		return marshalInto(buf, v.integer)
	case KindFloat:
		return marshalInto(buf, v.float)
	case KindDecimal:
		f, _ := v.decimal.Float64()
		return marshalInto(buf, f)
	case KindString:
		return marshalInto(buf, v.str)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.array {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encodeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case KindObject:
		buf.WriteByte('{')
		first := true
		if v.object != nil {
			for pair := v.object.Oldest(); pair != nil; pair = pair.Next() {
				if !first {
					buf.WriteByte(',')
				}
				first = false
				if err := marshalInto(buf, pair.Key); err != nil {
					return err
				}
				buf.WriteByte(':')
				if err := pair.Value.encodeJSON(buf); err != nil {
					return err
				}
			}
		}
		buf.WriteByte('}')
		return nil
	default:
		buf.WriteString("null")
		return nil
	}
}

func marshalInto(buf *bytes.Buffer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler. It walks the token stream
// directly instead of decoding through json.Unmarshal(data, &any) first,
// so a JSON object's key order survives into Object rather than being
// destroyed by Go's unordered map type before FromJSON ever sees it.
// Numbers decode through json.Number to preserve integer precision.
func (v *Value) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	decoded, err := decodeValue(decoder)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

func decodeValue(decoder *json.Decoder) (Value, error) {
	tok, err := decoder.Token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(decoder)
		case '[':
			return decodeArray(decoder)
		default:
			return Value{}, fmt.Errorf("unexpected JSON delimiter %q", t)
		}
	case nil:
		return Null, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return numberFromJSON(t)
	default:
		return Value{}, fmt.Errorf("unsupported JSON token %T", tok)
	}
}

func decodeObject(decoder *json.Decoder) (Value, error) {
	obj := NewObject()
	for decoder.More() {
		keyTok, err := decoder.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return Value{}, fmt.Errorf("expected a string object key, got %v", keyTok)
		}
		val, err := decodeValue(decoder)
		if err != nil {
			return Value{}, err
		}
		obj.Set(key, val)
	}
	if _, err := decoder.Token(); err != nil { // consume closing '}'
		return Value{}, err
	}
	return ObjectValue(obj), nil
}

func decodeArray(decoder *json.Decoder) (Value, error) {
	var items []Value
	for decoder.More() {
		val, err := decodeValue(decoder)
		if err != nil {
			return Value{}, err
		}
		items = append(items, val)
	}
	if _, err := decoder.Token(); err != nil { // consume closing ']'
		return Value{}, err
	}
	return Array(items), nil
}
