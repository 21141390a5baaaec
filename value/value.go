package value

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Member is one key/value pair of an Object.
type Member struct {
	Key   string
	Value Value
}

type array struct {
	elems []Value
}

type object struct {
	members []Member
	idx     map[string]int
}

// Value is a dynamically-typed JSON value. The zero Value is null.
type Value struct {
	s    string
	a    *array
	o    *object
	i    int64
	f    float64
	kind Kind
	b    bool
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating-point value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// NewArray returns an array value holding the given elements.
func NewArray(elems ...Value) Value {
	return Value{kind: KindArray, a: &array{elems: elems}}
}

// NewObject returns an empty object value.
func NewObject() Value {
	return Value{kind: KindObject, o: &object{idx: make(map[string]int)}}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsInt returns the integer payload.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// AsFloat returns the float payload.
func (v Value) AsFloat() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.f, true
}

// Number returns the numeric payload of an Int or Float value as float64.
// Handlers use it when the script side may send either representation.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// AsString returns the string payload.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// Len returns the element count of an array or member count of an object,
// and 0 for every other kind.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.a.elems)
	case KindObject:
		return len(v.o.members)
	default:
		return 0
	}
}

// At returns the i-th element of an array value.
func (v Value) At(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.a.elems) {
		return Value{}, false
	}
	return v.a.elems[i], true
}

// Append adds an element to an array value. It is a no-op for other kinds.
func (v Value) Append(elem Value) {
	if v.kind == KindArray {
		v.a.elems = append(v.a.elems, elem)
	}
}

// Elems returns the backing element slice of an array value.
// The slice is owned by the array; callers must not retain it past
// the array's lifetime.
func (v Value) Elems() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.a.elems
}

// ObjectSet sets key to val on an object value. Setting an existing key
// replaces the value in place, so the key keeps its original position.
func (v Value) ObjectSet(key string, val Value) {
	if v.kind != KindObject {
		return
	}
	if i, ok := v.o.idx[key]; ok {
		v.o.members[i].Value = val
		return
	}
	v.o.idx[key] = len(v.o.members)
	v.o.members = append(v.o.members, Member{Key: key, Value: val})
}

// ObjectGet returns the value stored under key on an object value.
func (v Value) ObjectGet(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	i, ok := v.o.idx[key]
	if !ok {
		return Value{}, false
	}
	return v.o.members[i].Value, true
}

// ObjectHas reports whether key is present on an object value.
func (v Value) ObjectHas(key string) bool {
	if v.kind != KindObject {
		return false
	}
	_, ok := v.o.idx[key]
	return ok
}

// Members returns the object's members in insertion order.
// The slice is owned by the object; callers must not retain it.
func (v Value) Members() []Member {
	if v.kind != KindObject {
		return nil
	}
	return v.o.members
}

// Keys returns the object's keys in insertion order.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, len(v.o.members))
	for i, m := range v.o.members {
		keys[i] = m.Key
	}
	return keys
}

// Equal reports deep equality. Int and Float never compare equal, even
// when numerically identical, because they serialize differently.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindString:
		return v.s == other.s
	case KindArray:
		if len(v.a.elems) != len(other.a.elems) {
			return false
		}
		for i, e := range v.a.elems {
			if !e.Equal(other.a.elems[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.o.members) != len(other.o.members) {
			return false
		}
		for i, m := range v.o.members {
			om := other.o.members[i]
			if m.Key != om.Key || !m.Value.Equal(om.Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Clone returns a deep copy whose storage is independent of v. Use it to
// retain arena-parsed values past the producing scope.
func (v Value) Clone() Value {
	switch v.kind {
	case KindString:
		// Force a fresh string allocation so the copy does not alias
		// arena-backed bytes.
		b := make([]byte, len(v.s))
		copy(b, v.s)
		return Value{kind: KindString, s: string(b)}
	case KindArray:
		elems := make([]Value, len(v.a.elems))
		for i, e := range v.a.elems {
			elems[i] = e.Clone()
		}
		return Value{kind: KindArray, a: &array{elems: elems}}
	case KindObject:
		o := &object{
			members: make([]Member, len(v.o.members)),
			idx:     make(map[string]int, len(v.o.members)),
		}
		for i, m := range v.o.members {
			key := string(append([]byte(nil), m.Key...))
			o.members[i] = Member{Key: key, Value: m.Value.Clone()}
			o.idx[key] = i
		}
		return Value{kind: KindObject, o: o}
	default:
		return v
	}
}

// String returns a JSON rendering for debugging. Non-finite floats, which
// Encode rejects, render as null.
func (v Value) String() string {
	data, err := Encode(v)
	if err != nil {
		return "<unencodable " + v.kind.String() + ">"
	}
	return string(data)
}
