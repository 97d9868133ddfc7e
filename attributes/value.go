package attributes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Kind is the JSON shape held by a Value
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Member is one key of a map Value
type Member struct {
	Key   string
	Value Value
}

// Value is an attribute value: any JSON document, carried opaquely. Numbers
// keep their literal text and map keys keep their order, so a value
// re-encodes to the same document modulo whitespace. The zero Value is null.
type Value struct {
	kind    Kind
	boolean bool
	number  json.Number
	str     string
	list    []Value
	members []Member
}

// Null, Bool, Number, String, List and Map construct values of each kind
func Null() Value { return Value{} }

func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Number keeps n as literal text. Text that is not a JSON number is rejected
// when the value is marshalled.
func Number(n json.Number) Value { return Value{kind: KindNumber, number: n} }

func String(s string) Value { return Value{kind: KindString, str: s} }

func List(items ...Value) Value { return Value{kind: KindList, list: items} }

func Map(members ...Member) Value { return Value{kind: KindMap, members: members} }

func (v Value) Kind() Kind { return v.kind }

// Items are the elements of a list value
func (v Value) Items() []Value { return v.list }

// Members are the keys of a map value, in document order
func (v Value) Members() []Member { return v.members }

func (v Value) AsString() string { return v.str }

func (v Value) AsBool() bool { return v.boolean }

func (v Value) AsNumber() json.Number { return v.number }

// Get returns the member named key of a map value
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// ParseValue decodes a single JSON document
func ParseValue(data []byte) (Value, error) {
	var v Value
	err := v.UnmarshalJSON(data)
	return v, err
}

// MustParseValue is ParseValue for literals known to be valid
func MustParseValue(data string) Value {
	v, err := ParseValue([]byte(data))
	if err != nil {
		panic(err)
	}
	return v
}

func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.boolean {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		if !isNumberLiteral(v.number) {
			return fmt.Errorf("attribute value: %q is not a JSON number", string(v.number))
		}
		buf.WriteString(v.number.String())
	case KindString:
		return writeJSONString(buf, v.str)
	case KindList:
		buf.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMap:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("attribute value: unknown kind %v", v.kind)
	}
	return nil
}

func isNumberLiteral(n json.Number) bool {
	if n == "" || (n[0] != '-' && (n[0] < '0' || n[0] > '9')) {
		return false
	}
	return json.Valid([]byte(n))
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	parsed, err := decodeValue(dec)
	if err != nil {
		return fmt.Errorf("attribute value: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("attribute value: trailing data after JSON document")
	}
	*v = parsed
	return nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t), nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '[':
			items := []Value{}
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return List(items...), nil
		case '{':
			members := []Member{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("unexpected object key %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				members = append(members, Member{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Map(members...), nil
		}
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}
