package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedCatalogs(t *testing.T) {
	b, err := Load("en-US")
	require.NoError(t, err)
	assert.Equal(t, []string{"en-US", "fr-FR"}, b.Locales())

	assert.Equal(t, "Page 3", b.Translate("en-US", "global.page", map[string]any{"num": 3}))
	assert.Equal(t, "Page 2/5", b.Translate("fr-FR", "global.page", map[string]any{"num": "2/5"}))
	assert.Contains(t, b.Translate("fr-FR", "call.inactivity", nil), "inactivité")
	assert.Equal(t, "Monday", b.Translate("en-US", "weekday.1", nil))
}

func TestFallbacks(t *testing.T) {
	fsys := fstest.MapFS{
		"l/en-US.yaml": {Data: []byte("a:\n  b: \"hi {{who}}\"\nonly: en\n")},
		"l/fr-FR.yaml": {Data: []byte("a:\n  b: \"salut {{who}}\"\n")},
	}
	b, err := LoadFS(fsys, "l", "en-US")
	require.NoError(t, err)

	assert.Equal(t, "salut bob", b.Translate("fr-FR", "a.b", map[string]any{"who": "bob"}))
	assert.Equal(t, "salut bob", b.Translate("fr-CA", "a.b", map[string]any{"who": "bob"}), "mismo idioma")
	assert.Equal(t, "en", b.Translate("fr-FR", "only", nil), "cae al locale por defecto")
	assert.Equal(t, "hi {{who}}", b.Translate("de-DE", "a.b", nil), "sin args deja el placeholder")
	assert.Equal(t, "missing.key", b.Translate("en-US", "missing.key", nil))
}

func TestLoadRequiresFallbackCatalog(t *testing.T) {
	fsys := fstest.MapFS{"l/fr-FR.yaml": {Data: []byte("a: b\n")}}
	_, err := LoadFS(fsys, "l", "en-US")
	assert.Error(t, err)
}
