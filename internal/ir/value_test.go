package ir

import (
	"encoding/json"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	var _ Value = NullValue{}
	var _ Value = StringValue("test")
	var _ Value = IntValue(42)
	var _ Value = BoolValue(true)
	var _ Value = ArrayValue{StringValue("a"), IntValue(1)}
	var _ Value = ObjectValue{"key": StringValue("value")}
}

func TestObjectValueSortedKeys(t *testing.T) {
	obj := ObjectValue{
		"zebra":  StringValue("z"),
		"apple":  StringValue("a"),
		"banana": StringValue("b"),
	}
	assert.Equal(t, []string{"apple", "banana", "zebra"}, obj.SortedKeys())
}

func TestObjectValueSortedKeysRFC8785Order(t *testing.T) {
	obj := ObjectValue{
		"a":  IntValue(1),
		"A":  IntValue(2),
		"aa": IntValue(3),
		"aA": IntValue(4),
		"Aa": IntValue(5),
		"AA": IntValue(6),
	}
	// 'A' = 65, 'a' = 97: "A" < "AA" < "Aa" < "a" < "aA" < "aa"
	expected := []string{"A", "AA", "Aa", "a", "aA", "aa"}
	assert.Equal(t, expected, obj.SortedKeys())
}

func TestObjectValueEmpty(t *testing.T) {
	obj := ObjectValue{}
	assert.Empty(t, obj.SortedKeys())
}

func TestArrayValueNested(t *testing.T) {
	arr := ArrayValue{
		StringValue("outer"),
		ArrayValue{
			IntValue(1),
			IntValue(2),
			ObjectValue{"nested": BoolValue(true)},
		},
	}
	assert.Len(t, arr, 2)
	inner, ok := arr[1].(ArrayValue)
	assert.True(t, ok)
	assert.Len(t, inner, 3)
}

func TestObjectValueNested(t *testing.T) {
	obj := ObjectValue{
		"level1": ObjectValue{
			"level2": ObjectValue{
				"value": IntValue(42),
			},
		},
	}
	level1 := obj["level1"].(ObjectValue)
	level2 := level1["level2"].(ObjectValue)
	value := level2["value"].(IntValue)
	assert.Equal(t, IntValue(42), value)
}

func TestCompareKeysRFC8785(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"a", "b", -1},
		{"b", "a", 1},
		{"a", "a", 0},
		{"aa", "a", 1},
		{"a", "aa", -1},
		{"A", "a", -32}, // 65 - 97
		{"", "", 0},
		{"", "a", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			result := compareKeysRFC8785(tt.a, tt.b)
			switch {
			case tt.expected < 0:
				assert.Less(t, result, 0)
			case tt.expected > 0:
				assert.Greater(t, result, 0)
			default:
				assert.Equal(t, 0, result)
			}
		})
	}
}

func TestNullValueMarshaling(t *testing.T) {
	data, err := json.Marshal(NullValue{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestSortedKeysUTF16Order(t *testing.T) {
	// U+E000 ("") - UTF-16: [0xE000]
	// U+10000 ("𐀀") - UTF-16 surrogate pair: [0xD800, 0xDC00]
	// RFC 8785 UTF-16 order: surrogate high (0xD800) < BMP high (0xE000)
	obj := ObjectValue{
		"": IntValue(1),
		"𐀀":      IntValue(2),
	}
	expectedRFC8785Order := []string{"𐀀", ""}
	keys := obj.SortedKeys()
	assert.Equal(t, expectedRFC8785Order, keys, "RFC 8785 UTF-16 ordering must be used")

	for i := 0; i < 10; i++ {
		assert.Equal(t, keys, obj.SortedKeys(), "ordering must be deterministic")
	}

	wrongOrderKeys := []string{"", "𐀀"}
	sort.Strings(wrongOrderKeys)
	expectedUTF8Order := []string{"", "𐀀"}
	assert.Equal(t, expectedUTF8Order, wrongOrderKeys, "UTF-8 sort produces different order")
	assert.NotEqual(t, expectedRFC8785Order, wrongOrderKeys, "UTF-8 and UTF-16 orders must differ here")
}

func TestObjectValueMarshalKeyOrder(t *testing.T) {
	obj := ObjectValue{
		"zebra": StringValue("z"),
		"apple": StringValue("a"),
		"mango": StringValue("m"),
	}
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"apple":"a","mango":"m","zebra":"z"}`, string(data))
}

func TestEmptyValuesMarshaling(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		expected string
	}{
		{"empty string", StringValue(""), `""`},
		{"empty array", ArrayValue{}, `[]`},
		{"empty object", ObjectValue{}, `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(data))
		})
	}
}

func TestDeepNestingRoundTrip(t *testing.T) {
	deep := ObjectValue{
		"level1": ObjectValue{
			"level2": ObjectValue{
				"level3": ArrayValue{
					ObjectValue{"level4": IntValue(42)},
				},
			},
		},
	}
	data, err := json.Marshal(deep)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"level4":42`)
}
