package binding

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, doc string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(doc), &v))
	return v
}

func TestResolve(t *testing.T) {
	doc := mustParse(t, `{
		"user": {"name": "Alice", "tags": ["a", "b", "c"]},
		"a/b": 1,
		"m~n": 2,
		"count": 3
	}`)

	tests := []struct {
		name   string
		path   string
		want   any
		wantOK bool
	}{
		{"empty path returns root", "", doc, true},
		{"root slash returns root", "/", doc, true},
		{"nested object", "/user/name", "Alice", true},
		{"array index", "/user/tags/1", "b", true},
		{"array index out of range", "/user/tags/3", nil, false},
		{"array negative index", "/user/tags/-1", nil, false},
		{"array non-numeric index", "/user/tags/x", nil, false},
		{"missing key", "/user/missing", nil, false},
		{"escaped slash", "/a~1b", float64(1), true},
		{"escaped tilde", "/m~0n", float64(2), true},
		{"scalar with remaining segments", "/count/more", nil, false},
		{"relative treated as scope walk", "user/name", "Alice", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(doc, tt.path)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestResolveRelative(t *testing.T) {
	scope := mustParse(t, `{"name": "Bob", "address": {"city": "Oslo"}}`)

	got, ok := ResolveRelative(scope, "address/city")
	require.True(t, ok)
	assert.Equal(t, "Oslo", got)

	// Leading slash convention is ignored for relative resolution
	got, ok = ResolveRelative(scope, "/name")
	require.True(t, ok)
	assert.Equal(t, "Bob", got)

	_, ok = ResolveRelative(scope, "missing")
	assert.False(t, ok)
}

func TestResolveIdempotent(t *testing.T) {
	doc := mustParse(t, `{"items": [{"n": 1}, {"n": 2}]}`)

	first, ok1 := Resolve(doc, "/items/1/n")
	second, ok2 := Resolve(doc, "/items/1/n")
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, first, second)
}

func TestSetValueAtPath(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		path  string
		value any
		want  string
	}{
		{
			name:  "overwrite existing key",
			doc:   `{"a":1,"b":2}`,
			path:  "/a",
			value: float64(99),
			want:  `{"a":99,"b":2}`,
		},
		{
			name:  "create missing key",
			doc:   `{"a":1}`,
			path:  "/b",
			value: "new",
			want:  `{"a":1,"b":"new"}`,
		},
		{
			name:  "create intermediate objects",
			doc:   `{}`,
			path:  "/user/profile/name",
			value: "Alice",
			want:  `{"user":{"profile":{"name":"Alice"}}}`,
		},
		{
			name:  "substitute object for scalar on path",
			doc:   `{"a":1}`,
			path:  "/a/b",
			value: float64(2),
			want:  `{"a":{"b":2}}`,
		},
		{
			name:  "substitute object for array on path",
			doc:   `{"a":[1,2]}`,
			path:  "/a/b",
			value: float64(2),
			want:  `{"a":{"b":2}}`,
		},
		{
			name:  "escaped segment",
			doc:   `{}`,
			path:  "/a~1b",
			value: float64(1),
			want:  `{"a/b":1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, tt.doc)
			got := SetValueAtPath(doc, tt.path, tt.value)

			text, err := json.Marshal(got)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(text))
		})
	}
}

func TestSetValueAtPathRootReplacement(t *testing.T) {
	doc := mustParse(t, `{"a":1,"b":2}`)

	for _, path := range []string{"", "/"} {
		got := SetValueAtPath(doc, path, mustParse(t, `{"c":3}`))
		text, err := json.Marshal(got)
		require.NoError(t, err)
		assert.JSONEq(t, `{"c":3}`, string(text))
	}
}

func TestSetValueAtPathNilRoot(t *testing.T) {
	got := SetValueAtPath(nil, "/user/name", "Alice")

	text, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"user":{"name":"Alice"}}`, string(text))
}

func TestSetValueAtPathDoesNotMutateInput(t *testing.T) {
	doc := mustParse(t, `{"a":{"b":1},"c":2}`)
	before, err := json.Marshal(doc)
	require.NoError(t, err)

	_ = SetValueAtPath(doc, "/a/b", float64(99))

	after, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestSetValueAtPathIdempotent(t *testing.T) {
	doc := mustParse(t, `{"a":1}`)

	once := SetValueAtPath(doc, "/b/c", "v")
	twice := SetValueAtPath(once, "/b/c", "v")

	onceText, err := json.Marshal(once)
	require.NoError(t, err)
	twiceText, err := json.Marshal(twice)
	require.NoError(t, err)
	assert.JSONEq(t, string(onceText), string(twiceText))
}

func TestResolveRoundTrip(t *testing.T) {
	doc := mustParse(t, `{"a":{"b":1}}`)

	paths := []string{"/a/b", "/a/new", "/x/y/z"}
	for _, p := range paths {
		updated := SetValueAtPath(doc, p, "marker")
		got, ok := Resolve(updated, p)
		require.True(t, ok, "path %s", p)
		assert.Equal(t, "marker", got, "path %s", p)
	}
}
