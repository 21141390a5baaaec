// Package value provides the dynamically-typed Value model and its JSON codec.
//
// Value is the universal payload type crossing the bridge: every request
// parameter, handler result, and pushed event is a Value. It is a closed
// tagged union over the seven JSON shapes:
//
//	Kind            Go payload
//	──────────────────────────────
//	KindNull        -
//	KindBool        bool
//	KindInt         int64
//	KindFloat       float64
//	KindString      string
//	KindArray       []Value
//	KindObject      []Member (insertion-ordered)
//
// Objects preserve insertion order, so serialization is stable and
// Parse(Encode(v)) reproduces v byte-for-byte modulo float formatting.
//
// # Numbers
//
// Integers that fit int64 without fractional or exponent notation parse as
// KindInt; everything else parses as KindFloat. NaN and infinities have no
// JSON representation and fail to encode.
//
// # Ownership
//
// Array and Object elements are exclusively owned by their container; a
// Value is always a finite tree. Values produced by ParseIn borrow string
// storage from an arena scope and must be Cloned before the scope closes
// if retained.
package value
