package httpapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawFields(t *testing.T, body string) map[string]json.RawMessage {
	t.Helper()

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(body), &fields))
	return fields
}

func TestParseCreate_Valid(t *testing.T) {
	restaurant, errs := parseCreate(rawFields(t,
		`{"name":"Pizza Place","image":"http://x/img.png","menu":["a",{"b":1}],"rating":4,"extra":true}`))

	require.Empty(t, errs)
	assert.Equal(t, "Pizza Place", restaurant.Name)
	assert.Equal(t, "http://x/img.png", restaurant.Image)
	assert.Equal(t, []any{"a", map[string]any{"b": 1.0}}, restaurant.Menu)
	assert.Equal(t, 4.0, restaurant.Rating)
	assert.Empty(t, restaurant.ID)
}

func TestParseCreate_EmptyMenuIsNotNil(t *testing.T) {
	restaurant, errs := parseCreate(rawFields(t, `{"name":"a","image":"b","menu":[],"rating":0}`))

	require.Empty(t, errs)
	assert.NotNil(t, restaurant.Menu)
	assert.Empty(t, restaurant.Menu)
}

func TestParsePatch_OnlySuppliedFields(t *testing.T) {
	patch, errs := parsePatch(rawFields(t, `{"image":"new.png","menu":[]}`))

	require.Empty(t, errs)
	assert.Nil(t, patch.Name)
	assert.Nil(t, patch.Rating)
	require.NotNil(t, patch.Image)
	assert.Equal(t, "new.png", *patch.Image)
	assert.NotNil(t, patch.Menu)
	assert.Equal(t, map[string]any{"image": "new.png", "menu": []any{}}, patch.Fields())
}

func TestParsePatch_Empty(t *testing.T) {
	_, errs := parsePatch(map[string]json.RawMessage{})

	require.Len(t, errs, 1)
	assert.Equal(t, msgEmptyUpdate, errs[0].Msg)
	assert.Empty(t, errs[0].Path)
}

func TestRating(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{raw: `0`, want: 0, ok: true},
		{raw: `5`, want: 5, ok: true},
		{raw: ` 3.5 `, want: 3.5, ok: true},
		{raw: `5.0001`, want: 5.0001, ok: false},
		{raw: `"3"`, ok: false},
		{raw: `null`, ok: false},
		{raw: `true`, ok: false},
		{raw: ``, ok: false},
	}

	for _, tt := range tests {
		got, ok := rating(json.RawMessage(tt.raw))
		assert.Equal(t, tt.ok, ok, "raw %q", tt.raw)
		if tt.ok {
			assert.Equal(t, tt.want, got, "raw %q", tt.raw)
		}
	}
}
