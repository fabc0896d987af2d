package jsontree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Kind identifies the JSON type of a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return "unknown"
}

// ErrInvalidInput is returned when input cannot be represented as a JSON value.
var ErrInvalidInput = errors.New("invalid JSON input")

// Value is an immutable node in a JSON document tree. Object values remember
// the key order of the document they were decoded from.
type Value struct {
	kind Kind
	b    bool
	num  json.Number
	str  string
	arr  []Value
	keys []string
	obj  map[string]Value
}

// Kind returns the JSON type of the value.
func (v Value) Kind() Kind { return v.kind }

// Bool returns the boolean payload. Only meaningful for Bool values.
func (v Value) Bool() bool { return v.b }

// Number returns the numeric payload as it appeared in the document.
func (v Value) Number() json.Number { return v.num }

// Float returns the numeric payload as a float64, or 0 if it does not parse.
func (v Value) Float() float64 {
	f, err := v.num.Float64()
	if err != nil {
		return 0
	}
	return f
}

// Str returns the string payload. Only meaningful for String values.
func (v Value) Str() string { return v.str }

// Len returns the element count for arrays and the key count for objects.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.arr)
	case Object:
		return len(v.keys)
	}
	return 0
}

// Index returns the i-th array element.
func (v Value) Index(i int) Value { return v.arr[i] }

// Keys returns the object keys in document order.
func (v Value) Keys() []string {
	out := make([]string, len(v.keys))
	copy(out, v.keys)
	return out
}

// Field returns the value stored under key, if present.
func (v Value) Field(key string) (Value, bool) {
	val, ok := v.obj[key]
	return val, ok
}

// Equal reports whether two values are structurally equal. Numbers are
// compared by numeric value, so 1 and 1.0 are equal.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Null:
		return true
	case Bool:
		return a.b == b.b
	case Number:
		if a.num == b.num {
			return true
		}
		af, aerr := a.num.Float64()
		bf, berr := b.num.Float64()
		return aerr == nil && berr == nil && af == bf
	case String:
		return a.str == b.str
	case Array:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(a.keys) != len(b.keys) {
			return false
		}
		for _, key := range a.keys {
			bv, ok := b.obj[key]
			if !ok || !Equal(a.obj[key], bv) {
				return false
			}
		}
		return true
	}
	return false
}

// Decode parses a JSON document, preserving object key order.
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if dec.More() {
		return Value{}, fmt.Errorf("%w: trailing data after document", ErrInvalidInput)
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
		return Value{}, fmt.Errorf("unexpected delimiter %q", t.String())
	case nil:
		return Value{kind: Null}, nil
	case bool:
		return Value{kind: Bool, b: t}, nil
	case json.Number:
		return Value{kind: Number, num: t}, nil
	case string:
		return Value{kind: String, str: t}, nil
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}

func decodeObject(dec *json.Decoder) (Value, error) {
	v := Value{kind: Object, obj: map[string]Value{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("object key is not a string: %v", tok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return Value{}, err
		}
		if _, dup := v.obj[key]; !dup {
			v.keys = append(v.keys, key)
		}
		v.obj[key] = val
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return v, nil
}

func decodeArray(dec *json.Decoder) (Value, error) {
	v := Value{kind: Array}
	for dec.More() {
		el, err := decodeValue(dec)
		if err != nil {
			return Value{}, err
		}
		v.arr = append(v.arr, el)
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return v, nil
}

// FromAny converts an already-parsed Go value (the encoding/json family of
// types) into a Value. Map keys are sorted, since Go maps carry no document
// order. Unsupported types return ErrInvalidInput.
func FromAny(in interface{}) (Value, error) {
	switch t := in.(type) {
	case nil:
		return Value{kind: Null}, nil
	case bool:
		return Value{kind: Bool, b: t}, nil
	case string:
		return Value{kind: String, str: t}, nil
	case json.Number:
		return Value{kind: Number, num: t}, nil
	case float64:
		return Value{kind: Number, num: json.Number(formatFloat(t))}, nil
	case int:
		return Value{kind: Number, num: json.Number(fmt.Sprintf("%d", t))}, nil
	case int64:
		return Value{kind: Number, num: json.Number(fmt.Sprintf("%d", t))}, nil
	case []interface{}:
		v := Value{kind: Array}
		for _, el := range t {
			ev, err := FromAny(el)
			if err != nil {
				return Value{}, err
			}
			v.arr = append(v.arr, ev)
		}
		return v, nil
	case map[string]interface{}:
		v := Value{kind: Object, obj: map[string]Value{}}
		keys := make([]string, 0, len(t))
		for key := range t {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fv, err := FromAny(t[key])
			if err != nil {
				return Value{}, err
			}
			v.keys = append(v.keys, key)
			v.obj[key] = fv
		}
		return v, nil
	case Value:
		return t, nil
	}
	return Value{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidInput, in)
}

func formatFloat(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}

// MarshalJSON serializes the value back to JSON, keeping object key order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Number:
		if v.num == "" {
			buf.WriteString("0")
		} else {
			buf.WriteString(string(v.num))
		}
	case String:
		b, err := json.Marshal(v.str)
		if err != nil {
			return err
		}
		buf.Write(b)
	case Array:
		buf.WriteByte('[')
		for i, el := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := el.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, key := range v.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(key)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := v.obj[key].encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// UnmarshalJSON decodes a value in place, so serialized reports round-trip.
func (v *Value) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// String returns the compact JSON representation.
func (v Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%s>", v.kind)
	}
	return string(b)
}

// MustParse decodes a JSON document or panics. Intended for tests and
// literals.
func MustParse(doc string) Value {
	v, err := Decode([]byte(doc))
	if err != nil {
		panic(err)
	}
	return v
}
