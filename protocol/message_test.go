package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageUnmarshal(t *testing.T) {
	line := `{"type":"createSurface","surfaceId":"s1","catalogId":"cat","sendDataModel":true,"theme":{"mode":"dark"}}`

	var msg Message
	require.NoError(t, json.Unmarshal([]byte(line), &msg))

	assert.Equal(t, TypeCreateSurface, msg.Type)
	assert.Equal(t, "s1", msg.SurfaceID)
	assert.Equal(t, "cat", msg.CatalogID)
	require.NotNil(t, msg.SendDataModel)
	assert.True(t, *msg.SendDataModel)
	assert.JSONEq(t, `{"mode":"dark"}`, string(msg.Theme))
}

func TestComponentUpdateCapturesOpenBag(t *testing.T) {
	line := `{"id":"title","component":"Text","text":"Hello","weight":2,"children":["a","b"]}`

	var c ComponentUpdate
	require.NoError(t, json.Unmarshal([]byte(line), &c))

	assert.Equal(t, "title", c.ID)
	assert.Equal(t, "Text", c.Component)
	assert.Equal(t, "Hello", c.Properties["text"])
	assert.Equal(t, float64(2), c.Properties["weight"])
	assert.Equal(t, []any{"a", "b"}, c.Properties["children"])
	assert.Equal(t, "Text", c.Properties["component"])
	assert.NotContains(t, c.Properties, "id")
}

func TestComponentUpdateRoundTrip(t *testing.T) {
	c := ComponentUpdate{
		ID:        "root",
		Component: "Column",
		Properties: map[string]any{
			"children": []any{"title"},
		},
	}

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var back ComponentUpdate
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, c.ID, back.ID)
	assert.Equal(t, c.Component, back.Component)
	assert.Equal(t, c.Properties["children"], back.Properties["children"])
}

func TestNewUserAction(t *testing.T) {
	a := NewUserAction("submit", "s1", "btn-1", map[string]any{"value": 42})

	assert.Equal(t, "submit", a.Name)
	assert.Equal(t, "s1", a.SurfaceID)
	assert.Equal(t, "btn-1", a.SourceComponentID)
	assert.Equal(t, 42, a.Context["value"])

	ts, err := time.Parse(time.RFC3339Nano, a.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), ts, time.Minute)

	// Context is never nil even when none was supplied
	b := NewUserAction("tap", "s1", "btn-2", nil)
	assert.NotNil(t, b.Context)
}

func TestClientMessageOmitsEmptyFields(t *testing.T) {
	msg := ClientMessage{
		Version: Version,
		Action:  NewUserAction("submit", "s1", "btn-1", nil),
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "dataModel")
	assert.NotContains(t, string(data), `"error"`)
	assert.Contains(t, string(data), `"version":"v0.9"`)
}

func TestClientMessageWithDataModel(t *testing.T) {
	msg := ClientMessage{
		Version:   Version,
		Action:    NewUserAction("submit", "s1", "btn-1", nil),
		DataModel: map[string]any{"name": "Alice"},
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"dataModel":{"name":"Alice"}`)
}

func TestDefaultCapabilities(t *testing.T) {
	caps := DefaultCapabilities()

	data, err := json.Marshal(caps)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"v0.9"`)
	assert.Contains(t, string(data), "standard_catalog.json")
}
