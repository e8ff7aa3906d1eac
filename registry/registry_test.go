package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/surfacestream/errors"
)

func TestComponentRegistryCaseInsensitive(t *testing.T) {
	reg := NewComponentRegistry[string]()
	require.NoError(t, reg.Register("TextField", "renders a text field"))

	tests := []struct {
		name string
		tag  string
	}{
		{name: "exact casing", tag: "TextField"},
		{name: "lower casing", tag: "textfield"},
		{name: "upper casing", tag: "TEXTFIELD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := reg.Resolve(tt.tag)
			require.True(t, ok)
			assert.Equal(t, "renders a text field", got)
		})
	}

	_, ok := reg.Resolve("Slider")
	assert.False(t, ok)
}

func TestComponentRegistryOverride(t *testing.T) {
	reg := NewComponentRegistry[int]()
	require.NoError(t, reg.Register("Button", 1))
	require.NoError(t, reg.Register("button", 2))

	got, ok := reg.Resolve("Button")
	require.True(t, ok)
	assert.Equal(t, 2, got)

	// One logical entry despite two registrations.
	assert.Len(t, reg.Types(), 1)
}

func TestRegisterStandardCatalog(t *testing.T) {
	reg := NewComponentRegistry[string]()
	require.NoError(t, reg.RegisterStandardCatalog(func(typeTag string) string {
		return "render " + typeTag
	}))

	assert.Len(t, reg.Types(), len(StandardComponentTypes))

	got, ok := reg.Resolve("textfield")
	require.True(t, ok)
	assert.Equal(t, "render TextField", got)

	// Host overrides survive pre-population order.
	require.NoError(t, reg.Register("Button", "custom button"))
	got, ok = reg.Resolve("Button")
	require.True(t, ok)
	assert.Equal(t, "custom button", got)

	assert.Error(t, reg.RegisterStandardCatalog(nil))
}

func TestComponentRegistryRejectsEmptyTag(t *testing.T) {
	reg := NewComponentRegistry[string]()
	err := reg.Register("", "nope")
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestActionRegistryExecute(t *testing.T) {
	reg := NewActionRegistry()

	var gotSurface string
	var gotContext map[string]any
	require.NoError(t, reg.Register("openDrawer", func(surfaceID string, ctx map[string]any) error {
		gotSurface = surfaceID
		gotContext = ctx
		return nil
	}))

	assert.True(t, reg.IsRegistered("openDrawer"))
	assert.True(t, reg.IsRegistered("opendrawer"))
	assert.False(t, reg.IsRegistered("closeDrawer"))

	err := reg.Execute("OPENDRAWER", "surf-1", map[string]any{"side": "left"})
	require.NoError(t, err)
	assert.Equal(t, "surf-1", gotSurface)
	assert.Equal(t, "left", gotContext["side"])
}

func TestActionRegistryUnknownAction(t *testing.T) {
	reg := NewActionRegistry()
	err := reg.Execute("missing", "surf-1", nil)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestActionRegistryValidation(t *testing.T) {
	reg := NewActionRegistry()
	assert.Error(t, reg.Register("", func(string, map[string]any) error { return nil }))
	assert.Error(t, reg.Register("noHandler", nil))
}
