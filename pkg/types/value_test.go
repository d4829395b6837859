package types

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_Constructors(t *testing.T) {
	assert.Equal(t, KindNull, Null().Kind())
	assert.True(t, Null().IsNull())

	v := Integer(42)
	assert.Equal(t, KindInteger, v.Kind())
	assert.Equal(t, int64(42), v.Int64())

	v = Real(3.5)
	assert.Equal(t, KindReal, v.Kind())
	assert.Equal(t, 3.5, v.Float64())

	v = Text("hello")
	assert.Equal(t, KindText, v.Kind())
	assert.Equal(t, "hello", v.Text())

	v = Blob([]byte{1, 2, 3})
	assert.Equal(t, KindBlob, v.Kind())
	assert.Equal(t, []byte{1, 2, 3}, v.Blob())

	assert.Equal(t, int64(1), Bool(true).Int64())
	assert.Equal(t, int64(0), Bool(false).Int64())
}

func TestValue_ZeroIsNull(t *testing.T) {
	var v Value
	assert.True(t, v.IsNull())
	assert.Nil(t, v.Raw())
}

func TestValue_IntegerToFloat(t *testing.T) {
	assert.Equal(t, 7.0, Integer(7).Float64())
}

func TestBind(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	tests := []struct {
		name  string
		input any
		want  Value
	}{
		{"nil", nil, Null()},
		{"value passthrough", Text("x"), Text("x")},
		{"bool true", true, Integer(1)},
		{"int", 42, Integer(42)},
		{"int8", int8(-3), Integer(-3)},
		{"uint32", uint32(9), Integer(9)},
		{"float32", float32(1.5), Real(1.5)},
		{"float64", 2.25, Real(2.25)},
		{"string", "s", Text("s")},
		{"bytes", []byte{0xde}, Blob([]byte{0xde})},
		{"time", ts, Text("2026-03-14T09:26:53Z")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Bind(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBind_Errors(t *testing.T) {
	_, err := Bind(uint64(math.MaxUint64))
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = Bind(struct{}{})
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = Bind(map[string]int{"a": 1})
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestValue_Raw(t *testing.T) {
	assert.Equal(t, int64(1), Integer(1).Raw())
	assert.Equal(t, 1.5, Real(1.5).Raw())
	assert.Equal(t, "x", Text("x").Raw())
	assert.Equal(t, []byte{9}, Blob([]byte{9}).Raw())
	assert.Nil(t, Null().Raw())
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "NULL", Null().String())
	assert.Equal(t, "-7", Integer(-7).String())
	assert.Equal(t, "1.5", Real(1.5).String())
	assert.Equal(t, "abc", Text("abc").String())
	assert.Equal(t, "blob(2 bytes)", Blob([]byte{1, 2}).String())
}

func TestRow_DuplicateNames(t *testing.T) {
	row := NewRow(
		[]string{"id", "name", "id"},
		[]Value{Integer(1), Text("a"), Integer(2)},
	)

	assert.Equal(t, 3, row.Len())
	assert.Equal(t, []string{"id", "name", "id"}, row.Columns())

	// Get returns the first match; positional access reaches the second.
	v, ok := row.Get("id")
	require.True(t, ok)
	assert.Equal(t, int64(1), v.Int64())
	assert.Equal(t, int64(2), row.Index(2).Int64())

	_, ok = row.Get("missing")
	assert.False(t, ok)
}

func TestParams(t *testing.T) {
	p := List(1, "two", nil)
	assert.False(t, p.IsNamed())
	assert.Equal(t, 3, p.Len())
	assert.Equal(t, []any{1, "two", nil}, p.Positional())

	n := Named(map[string]any{"a": 1, "b": 2})
	assert.True(t, n.IsNamed())
	assert.Equal(t, 2, n.Len())

	assert.False(t, NoParams.IsNamed())
	assert.Equal(t, 0, NoParams.Len())
}
