package toml_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/kai"
	"github.com/fwojciec/kai/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLocale(t *testing.T) {
	t.Parallel()

	t.Run("known keys", func(t *testing.T) {
		t.Parallel()
		l, err := toml.DecodeLocale(`
NEW_MESSAGE_NOTIFICATION = "Nouveau message"
LOADING = "Chargement..."
`)
		require.NoError(t, err)
		assert.Equal(t, "Nouveau message", l["NEW_MESSAGE_NOTIFICATION"])

		merged := kai.DefaultI18n().Merge(l)
		assert.Equal(t, "Chargement...", merged.Loading)
	})

	t.Run("unknown key", func(t *testing.T) {
		t.Parallel()
		_, err := toml.DecodeLocale(`GREETING = "Bonjour"`)
		assert.ErrorIs(t, err, kai.ErrValidation)
	})
}

func TestLoadLocales(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "eu"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fr.toml"), []byte(`LOADING = "Chargement..."`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "eu", "de.toml"), []byte(`LOADING = "Laden..."`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("not a locale"), 0o644))

	locales, err := toml.LoadLocales(dir)
	require.NoError(t, err)
	assert.Len(t, locales, 2)
	assert.Equal(t, "Chargement...", locales["fr"]["LOADING"])
	assert.Equal(t, "Laden...", locales["de"]["LOADING"])
}

func TestLoadLocales_Invalid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "xx.toml"), []byte(`NOPE = "x"`), 0o644))

	_, err := toml.LoadLocales(dir)
	assert.ErrorIs(t, err, kai.ErrValidation)
}

func TestMatchLocale(t *testing.T) {
	t.Parallel()

	assert.True(t, toml.MatchLocale("fr.toml"))
	assert.True(t, toml.MatchLocale("eu/de.toml"))
	assert.False(t, toml.MatchLocale("fr.toml.swp"))
	assert.Equal(t, "de", toml.LocaleName("eu/de.toml"))
}
