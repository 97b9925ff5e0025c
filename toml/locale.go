package toml

import (
	"fmt"
	iofs "io/fs"
	"os"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fwojciec/kai"
)

// LocalePattern matches locale files below a locale directory.
const LocalePattern = "**/*.toml"

// Locale is a partial string table keyed like kai.I18n's table keys.
//
//	NEW_MESSAGE_NOTIFICATION = "Nouveau message"
//	FOOTER_PLACEHOLDER = "Écrire un message"
type Locale map[string]string

// DecodeLocale parses a locale document. Unknown keys are an error.
func DecodeLocale(data string) (Locale, error) {
	var l Locale
	if _, err := toml.Decode(data, &l); err != nil {
		return nil, fmt.Errorf("decode locale: %w", err)
	}
	if err := kai.ValidateI18nKeys(l); err != nil {
		return nil, err
	}
	return l, nil
}

// LoadLocale reads one locale file.
func LoadLocale(fsys iofs.FS, name string) (Locale, error) {
	data, err := iofs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read locale: %w", err)
	}
	l, err := DecodeLocale(string(data))
	if err != nil {
		return nil, fmt.Errorf("locale %s: %w", name, err)
	}
	return l, nil
}

// LocaleName returns the locale a file defines: its base name without
// extension.
func LocaleName(file string) string {
	return strings.TrimSuffix(path.Base(file), path.Ext(file))
}

// LoadLocales reads every locale file under dir. Files that fail to parse
// abort the load.
func LoadLocales(dir string) (map[string]Locale, error) {
	fsys := os.DirFS(dir)
	locales := make(map[string]Locale)
	err := doublestar.GlobWalk(fsys, LocalePattern, func(p string, d iofs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		l, err := LoadLocale(fsys, p)
		if err != nil {
			return err
		}
		locales[LocaleName(p)] = l
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load locales from %s: %w", dir, err)
	}
	return locales, nil
}

// MatchLocale reports whether file, relative to the locale directory, is a
// locale file.
func MatchLocale(file string) bool {
	ok, err := doublestar.Match(LocalePattern, file)
	return err == nil && ok
}
