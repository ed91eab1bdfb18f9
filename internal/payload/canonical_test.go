package payload

import (
	"math"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    Value
		expected string
	}{
		{"null", Null{}, "null"},
		{"bool true", Bool(true), "true"},
		{"bool false", Bool(false), "false"},
		{"int", Int(42), "42"},
		{"negative int", Int(-100), "-100"},
		{"max int64", Int(9223372036854775807), "9223372036854775807"},
		{"min int64", Int(-9223372036854775808), "-9223372036854775808"},
		{"string", String("hello"), `"hello"`},
		{"empty string", String(""), `""`},
		{"float fraction", Float(1.5), "1.5"},
		{"float whole", Float(3), "3"},
		{"float negative", Float(-0.25), "-0.25"},
		{"empty array", Array{}, "[]"},
		{"empty object", Object{}, "{}"},
		{"array of ints", Array{Int(1), Int(2), Int(3)}, "[1,2,3]"},
		{"simple object", Object{"a": Int(1)}, `{"a":1}`},
		{"nested", Object{"a": Array{Null{}, Bool(false)}}, `{"a":[null,false]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := Object{
		"zebra": Int(1),
		"alpha": Int(2),
		"beta":  Int(3),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":3,"zebra":1}`, string(result))
}

func TestMarshalCanonicalDeterministic(t *testing.T) {
	obj := Object{
		"msg":   String("hello"),
		"count": Int(3),
		"tags":  Array{String("a"), String("b")},
	}

	first, err := MarshalCanonical(obj)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := MarshalCanonical(obj)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestMarshalCanonicalNoHTMLEscaping(t *testing.T) {
	result, err := MarshalCanonical(String("<a> & </a>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a> & </a>"`, string(result))
}

func TestMarshalCanonicalControlChars(t *testing.T) {
	result, err := MarshalCanonical(String("line1\nline2\x01"))
	require.NoError(t, err)
	assert.Equal(t, "\"line1\\nline2\\u0001\"", string(result))
}

func TestMarshalCanonicalNFCNormalization(t *testing.T) {
	// e + combining acute normalizes to the precomposed form.
	decomposed := String("é")
	precomposed := String("é")

	a, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(precomposed)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestMarshalCanonicalNonFinite(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := MarshalCanonical(Float(f))
		require.Error(t, err)

		var serr *SerializationError
		assert.ErrorAs(t, err, &serr)
	}
}

func TestMarshalCanonicalUntypedNil(t *testing.T) {
	_, err := MarshalCanonical(Object{"a": nil})
	require.Error(t, err)

	var serr *SerializationError
	assert.ErrorAs(t, err, &serr)
}

func TestMarshalCanonicalGolden(t *testing.T) {
	obj := Object{
		"lang":   String("ja"),
		"tokens": Array{String("こんにちは"), String("世界")},
		"len":    Int(2),
		"nested": Object{
			"ok":    Bool(true),
			"ratio": Float(0.5),
			"none":  Null{},
		},
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "canonical_payload", result)
}
