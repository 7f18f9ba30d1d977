package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	// Compile-time check: only these types implement Value.
	var values = []Value{
		Null{},
		Bool(true),
		Int(1),
		String("x"),
		Raw("NOW()"),
		List{Int(1)},
	}
	assert.Len(t, values, 6)
}

func TestDecodeValue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Value
	}{
		{"null", `null`, Null{}},
		{"true", `true`, Bool(true)},
		{"false", `false`, Bool(false)},
		{"string", `"o'brien"`, String("o'brien")},
		{"raw", `{"raw": "CURRENT_DATE"}`, Raw("CURRENT_DATE")},
		{"list", `[1, "a", null]`, List{Int(1), String("a"), Null{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeValue([]byte(tt.in))
			require.NoError(t, err)
			if want, ok := tt.want.(List); ok {
				gotList, ok := got.(List)
				require.True(t, ok)
				require.Len(t, gotList, len(want))
				assertNumberOr(t, want[0], gotList[0])
				assert.Equal(t, want[1], gotList[1])
				assert.Equal(t, want[2], gotList[2])
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func assertNumberOr(t *testing.T, want, got Value) {
	t.Helper()
	wn, ok := want.(Number)
	if !ok {
		assert.Equal(t, want, got)
		return
	}
	gn, ok := got.(Number)
	require.True(t, ok, "want Number, got %T", got)
	assert.True(t, wn.Decimal.Equal(gn.Decimal), "want %s, got %s", wn, gn)
}

func TestDecodeValue_NumbersAreExact(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`42`, "42"},
		{`-7`, "-7"},
		{`19.99`, "19.99"},
		{`0.1`, "0.1"},
		{`1e3`, "1000"},
		{`123456789012345678901234567890`, "123456789012345678901234567890"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := DecodeValue([]byte(tt.in))
			require.NoError(t, err)
			n, ok := got.(Number)
			require.True(t, ok)
			assert.Equal(t, tt.want, n.String())
		})
	}
}

func TestDecodeValue_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ``},
		{"nested list", `[[1]]`},
		{"object without raw", `{"expr": "x"}`},
		{"object with extra keys", `{"raw": "x", "other": 1}`},
		{"raw not a string", `{"raw": 1}`},
		{"garbage", `nope`},
		{"nan", `nan`},
		{"null prefix", `nullx`},
		{"huge exponent", `1e100000000`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeValue([]byte(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestParseNumber(t *testing.T) {
	n, err := ParseNumber("3.14")
	require.NoError(t, err)
	assert.Equal(t, "3.14", n.String())

	_, err = ParseNumber("three")
	assert.Error(t, err)
}

func TestParseNumber_ExponentRange(t *testing.T) {
	n, err := ParseNumber("1e3")
	require.NoError(t, err)
	assert.Equal(t, "1000", n.String())

	n, err = ParseNumber("1e1000")
	require.NoError(t, err)
	assert.Len(t, n.String(), 1001)

	for _, in := range []string{"1e1001", "1e100000000", "1e-1001", "-2.5E+5000"} {
		_, err := ParseNumber(in)
		require.Error(t, err, in)
		assert.Contains(t, err.Error(), "exponent out of range")
	}
}

func TestListHelpers(t *testing.T) {
	assert.Equal(t, List{String("a"), String("b")}, Strings("a", "b"))

	ints := Ints(1, 2)
	require.Len(t, ints, 2)
	assert.Equal(t, "2", ints[1].(Number).String())
}
