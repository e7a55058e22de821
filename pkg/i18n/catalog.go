package i18n

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog is an in-memory Translator loaded from per-locale YAML files. It is
// safe for concurrent readers once loaded.
type Catalog struct {
	messages map[string]map[string]string
}

// NewCatalog builds a catalog from already flattened messages keyed by locale.
func NewCatalog(messages map[string]map[string]string) *Catalog {
	c := &Catalog{messages: make(map[string]map[string]string, len(messages))}
	for locale, entries := range messages {
		normalised := NormalizeLocale(locale)
		if c.messages[normalised] == nil {
			c.messages[normalised] = make(map[string]string, len(entries))
		}
		for key, value := range entries {
			c.messages[normalised][key] = value
		}
	}
	return c
}

// LoadFS reads every `<locale>.yaml` / `<locale>.yml` file in fsys. Nested
// mappings are flattened into dotted keys ("errors.required").
func LoadFS(fsys fs.FS) (*Catalog, error) {
	catalog := &Catalog{messages: make(map[string]map[string]string)}
	if fsys == nil {
		return catalog, nil
	}

	err := fs.WalkDir(fsys, ".", func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		ext := strings.ToLower(path.Ext(p))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("i18n: read %s: %w", p, err)
		}
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("i18n: parse %s: %w", p, err)
		}

		locale := NormalizeLocale(strings.TrimSuffix(path.Base(p), path.Ext(p)))
		if catalog.messages[locale] == nil {
			catalog.messages[locale] = make(map[string]string)
		}
		flatten("", raw, catalog.messages[locale])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

// Translate implements Translator.
func (c *Catalog) Translate(locale, key string, args ...any) (string, error) {
	if c == nil {
		return "", ErrMissingTranslator
	}
	entries := c.messages[NormalizeLocale(locale)]
	value, ok := entries[key]
	if !ok {
		return "", fmt.Errorf("i18n: key %q missing for locale %q", key, locale)
	}
	if len(args) > 0 && strings.Contains(value, "%") {
		return fmt.Sprintf(value, args...), nil
	}
	return value, nil
}

// Keys lists the keys known for locale, sorted.
func (c *Catalog) Keys(locale string) []string {
	if c == nil {
		return nil
	}
	entries := c.messages[NormalizeLocale(locale)]
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func flatten(prefix string, raw map[string]any, dest map[string]string) {
	for key, value := range raw {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch typed := value.(type) {
		case map[string]any:
			flatten(full, typed, dest)
		case nil:
			continue
		default:
			dest[full] = fmt.Sprint(typed)
		}
	}
}
