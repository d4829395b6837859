package types

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// ValueKind tags a Value with its storage class. Every column value read
// from the engine maps to exactly one kind; Integer and Real never overlap.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindInteger
	KindReal
	KindText
	KindBlob
)

// String returns the SQL type name for the kind.
func (k ValueKind) String() string {
	switch k {
	case KindInteger:
		return "INTEGER"
	case KindReal:
		return "REAL"
	case KindText:
		return "TEXT"
	case KindBlob:
		return "BLOB"
	default:
		return "NULL"
	}
}

// Value is the canonical tagged value shared by every component:
// Null, Integer (64-bit signed), Real (64-bit float), Text, or Blob.
// The zero Value is Null.
type Value struct {
	kind ValueKind
	i    int64
	f    float64
	s    string
	b    []byte
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Integer returns an Integer Value.
func Integer(i int64) Value { return Value{kind: KindInteger, i: i} }

// Real returns a Real Value.
func Real(f float64) Value { return Value{kind: KindReal, f: f} }

// Text returns a Text Value.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Blob returns a Blob Value. The byte slice is not copied.
func Blob(b []byte) Value { return Value{kind: KindBlob, b: b} }

// Bool returns an Integer Value holding 0 or 1.
func Bool(v bool) Value {
	if v {
		return Integer(1)
	}
	return Integer(0)
}

// Bind converts a host value to a Value for parameter binding.
// Booleans bind as Integer 0/1, byte slices as Blob. Unsigned integers
// beyond the signed 64-bit range fail with ErrTypeMismatch rather than
// silently truncating.
func Bind(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case int:
		return Integer(int64(x)), nil
	case int8:
		return Integer(int64(x)), nil
	case int16:
		return Integer(int64(x)), nil
	case int32:
		return Integer(int64(x)), nil
	case int64:
		return Integer(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return Null(), fmt.Errorf("%w: uint value %d overflows 64-bit signed integer", ErrTypeMismatch, x)
		}
		return Integer(int64(x)), nil
	case uint8:
		return Integer(int64(x)), nil
	case uint16:
		return Integer(int64(x)), nil
	case uint32:
		return Integer(int64(x)), nil
	case uint64:
		if x > math.MaxInt64 {
			return Null(), fmt.Errorf("%w: uint64 value %d overflows 64-bit signed integer", ErrTypeMismatch, x)
		}
		return Integer(int64(x)), nil
	case float32:
		return Real(float64(x)), nil
	case float64:
		return Real(x), nil
	case string:
		return Text(x), nil
	case []byte:
		return Blob(x), nil
	case time.Time:
		return Text(x.Format(time.RFC3339Nano)), nil
	default:
		return Null(), fmt.Errorf("%w: cannot bind %T", ErrTypeMismatch, v)
	}
}

// Kind returns the value's storage class.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the value is Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Int64 returns the integer content; zero for non-Integer values.
func (v Value) Int64() int64 { return v.i }

// Float64 returns the real content. Integer values convert; other kinds
// return zero.
func (v Value) Float64() float64 {
	if v.kind == KindInteger {
		return float64(v.i)
	}
	return v.f
}

// Text returns the text content; empty for non-Text values.
func (v Value) Text() string { return v.s }

// Blob returns the blob content; nil for non-Blob values.
func (v Value) Blob() []byte { return v.b }

// Raw returns the engine-level representation: nil, int64, float64,
// string, or []byte.
func (v Value) Raw() any {
	switch v.kind {
	case KindInteger:
		return v.i
	case KindReal:
		return v.f
	case KindText:
		return v.s
	case KindBlob:
		return v.b
	default:
		return nil
	}
}

// String renders the value for display.
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindReal:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindText:
		return v.s
	case KindBlob:
		return fmt.Sprintf("blob(%d bytes)", len(v.b))
	default:
		return "NULL"
	}
}

// Row is an ordered sequence of (column name, Value) pairs. Column order
// matches the statement's declared output order. Names are not required
// to be unique; duplicates from joins are preserved positionally.
type Row struct {
	cols []string
	vals []Value
}

// NewRow builds a Row from parallel column-name and value slices.
func NewRow(cols []string, vals []Value) Row {
	return Row{cols: cols, vals: vals}
}

// Len returns the number of columns.
func (r Row) Len() int { return len(r.vals) }

// Columns returns the column names in declared order.
func (r Row) Columns() []string { return r.cols }

// Values returns the values in declared order.
func (r Row) Values() []Value { return r.vals }

// Index returns the value at position i.
func (r Row) Index(i int) Value { return r.vals[i] }

// Get returns the value of the first column with the given name.
func (r Row) Get(name string) (Value, bool) {
	for i, c := range r.cols {
		if c == name {
			return r.vals[i], true
		}
	}
	return Null(), false
}
