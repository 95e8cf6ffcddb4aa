package corpus

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexInt(t *testing.T) {
	var v struct {
		A flexInt `json:"a"`
		B flexInt `json:"b"`
		C flexInt `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 7, "b": "12", "c": null}`), &v))
	assert.Equal(t, flexInt(7), v.A)
	assert.Equal(t, flexInt(12), v.B)
	assert.Equal(t, flexInt(0), v.C)

	assert.Error(t, json.Unmarshal([]byte(`{"a": "seven"}`), &v))
}

func TestFlexString(t *testing.T) {
	var v struct {
		Key flexString `json:"Key"`
		ID  flexString `json:"ID"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"Key": 42, "ID": "2:255:1"}`), &v))
	assert.Equal(t, flexString("42"), v.Key)
	assert.Equal(t, flexString("2:255:1"), v.ID)
}

func TestDecodeIndexed(t *testing.T) {
	obj, err := decodeIndexed[string]([]byte(`{"1": "a", "2": "b"}`))
	require.NoError(t, err)
	assert.Equal(t, map[int]string{1: "a", 2: "b"}, obj)

	arr, err := decodeIndexed[string]([]byte(`[null, "a", "b"]`))
	require.NoError(t, err)
	assert.Equal(t, map[int]string{1: "a", 2: "b"}, arr)

	_, err = decodeIndexed[string]([]byte(`{"x": "a"}`))
	assert.Error(t, err)

	_, err = decodeIndexed[string]([]byte(`"scalar"`))
	assert.Error(t, err)
}

func TestDecodeSegments_OrdersByOrdinal(t *testing.T) {
	data := []byte(`{
		"1:1:1:10": {"word": "c", "pos": "N"},
		"1:1:1:2":  {"word": "b", "pos": "V"},
		"1:1:1:1":  {"word": "a", "pos": "P"}
	}`)
	segs, err := decodeSegments(data)
	require.NoError(t, err)
	require.Len(t, segs, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{segs[0].Surface, segs[1].Surface, segs[2].Surface})
}

func TestParseRefs(t *testing.T) {
	ref, err := ParseRef(" 2:255 ")
	require.NoError(t, err)
	assert.Equal(t, Ref{Chapter: 2, Verse: 255}, ref)

	w, err := ParseWordRef("002:255:001")
	require.NoError(t, err)
	assert.Equal(t, "2:255:1", w.String())

	for _, bad := range []string{"", "2", "2:x", "0:1", "1:2:3:4"} {
		_, err := ParseRef(bad)
		assert.Error(t, err, bad)
	}
	assert.Equal(t, -1, Ref{1, 7}.Compare(Ref{2, 1}))
	assert.Equal(t, 1, Ref{2, 2}.Compare(Ref{2, 1}))
	assert.Equal(t, 0, Ref{3, 3}.Compare(Ref{3, 3}))
}
