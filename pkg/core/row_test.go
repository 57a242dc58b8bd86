package core

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRows_PreservesKeyOrder(t *testing.T) {
	rows, err := DecodeRows([]byte(`[
		{"zeta": "1", "alpha": "2", "mid": "3"},
		{"zeta": "4", "alpha": "5", "mid": "6"}
	]`))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, rows[0].Keys())
	assert.Equal(t, "5", rows[1].Cell("alpha"))
}

func TestDecodeRows_ValueKinds(t *testing.T) {
	rows, err := DecodeRows([]byte(`[{"s":"x","n":12.50,"t":true,"z":null,"o":{"a":1},"l":[1,2]}]`))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	tests := []struct {
		key      string
		expected string
	}{
		{"s", "x"},
		{"n", "12.50"},
		{"t", ""},
		{"z", ""},
		{"o", `{"a":1}`},
		{"l", `[1,2]`},
		{"missing", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.expected, rows[0].Cell(tt.key))
		})
	}
}

func TestDecodeRows_Empty(t *testing.T) {
	rows, err := DecodeRows([]byte(`[]`))
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestDecodeRows_TrailingWhitespace(t *testing.T) {
	rows, err := DecodeRows([]byte("[{\"a\":\"1\"}]\n\t \r\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1", rows[0].Cell("a"))
}

func TestDecodeRows_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `<html>oops</html>`},
		{"empty body", ``},
		{"object instead of array", `{"error":"Invalid dataset type"}`},
		{"array of scalars", `[1, 2, 3]`},
		{"mixed array", `[{"a":"1"}, "b"]`},
		{"null", `null`},
		{"trailing garbage", `[{"a":1}] garbage`},
		{"extra bracket", `[{"a":1}]]`},
		{"second array", `[{"a":1}] []`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRows([]byte(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedRows)
		})
	}
}

func TestRow_DuplicateKeyKeepsFirstPosition(t *testing.T) {
	var row Row
	require.NoError(t, json.Unmarshal([]byte(`{"a":"1","b":"2","a":"3"}`), &row))

	assert.Equal(t, []string{"a", "b"}, row.Keys())
	assert.Equal(t, "3", row.Cell("a"))
}

func TestRow_MarshalJSON(t *testing.T) {
	row := NewRow("name", "Acme", "phone", "+123", "category", "Bakery")

	b, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Acme","phone":"+123","category":"Bakery"}`, string(b))
}

func TestEncodeRows(t *testing.T) {
	rows := []Row{
		NewRow("b", "1", "a", "2"),
		NewRow("b", "3", "a", "4"),
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeRows(&buf, rows))
	assert.Equal(t, `[{"b":"1","a":"2"},{"b":"3","a":"4"}]`, buf.String())

	decoded, err := DecodeRows(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, rows[1].Keys(), decoded[1].Keys())
}

func TestRow_CloneIsIndependent(t *testing.T) {
	orig := NewRow("a", "1")
	clone := orig.Clone()
	clone.Set("b", "2")
	clone.Set("a", "changed")

	assert.Equal(t, []string{"a"}, orig.Keys())
	assert.Equal(t, "1", orig.Cell("a"))
}

func TestKnownDatasets(t *testing.T) {
	ids := make([]DatasetID, 0)
	for _, opt := range KnownDatasets() {
		ids = append(ids, opt.ID)
		assert.NotEmpty(t, opt.Label)
	}

	assert.Equal(t, []DatasetID{DatasetGoogle, DatasetWebsite, DatasetWebsiteAddress, DatasetFacebook, DatasetMerged}, ids)
	assert.True(t, DatasetMerged.IsKnown())
	assert.False(t, DatasetID("combined").IsKnown())
}
