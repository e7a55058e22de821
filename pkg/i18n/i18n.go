// Package i18n resolves locale-keyed copy. Form definitions carry Text values
// (inline copy per locale, optionally backed by a translation key); a
// Localizer bound to one request locale turns them into strings, consulting an
// injected Translator first and falling back to inline copy.
package i18n

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// LocaleEnglish is the default locale.
	LocaleEnglish = "en"
	// LocaleWelsh is the secondary supported locale.
	LocaleWelsh = "cy"
)

// ErrMissingTranslator is passed to MissingTranslationHandler when no
// translator is configured.
var ErrMissingTranslator = errors.New("i18n: translator not configured")

// Translator resolves a translation key for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslatorFunc adapts a function into a Translator.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

// Translate delegates to the underlying function.
func (fn TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return fn(locale, key, args...)
}

// MissingTranslationHandler returns the string to use when a key could not be
// translated. args carries the original arguments; err explains the miss.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

func missingTranslationDefault(_ string, key string, args []any, _ error) string {
	for _, arg := range args {
		if values, ok := arg.(map[string]any); ok {
			if fallback, ok := values["default"].(string); ok && strings.TrimSpace(fallback) != "" {
				return fallback
			}
		}
	}
	return key
}

// Text is a piece of copy keyed by locale. Key, when set, is looked up through
// the Translator before the inline Values are used.
type Text struct {
	Key    string
	Values map[string]string
}

// Copy builds English-only inline copy.
func Copy(en string) Text {
	return Text{Values: map[string]string{LocaleEnglish: en}}
}

// Bilingual builds inline copy for English and Welsh.
func Bilingual(en, cy string) Text {
	return Text{Values: map[string]string{LocaleEnglish: en, LocaleWelsh: cy}}
}

// Key builds a Text that is resolved only through the Translator.
func Key(key string) Text {
	return Text{Key: strings.TrimSpace(key)}
}

// IsZero reports whether the Text carries neither a key nor any copy.
func (t Text) IsZero() bool {
	if strings.TrimSpace(t.Key) != "" {
		return false
	}
	for _, value := range t.Values {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

// In returns the inline copy for locale without consulting a translator.
func (t Text) In(locale string) string {
	if value := strings.TrimSpace(t.Values[locale]); value != "" {
		return value
	}
	return strings.TrimSpace(t.Values[LocaleEnglish])
}

// UnmarshalYAML accepts either a plain string (English copy) or a mapping of
// locale to copy with an optional "key" entry.
func (t *Text) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var value string
		if err := node.Decode(&value); err != nil {
			return err
		}
		*t = Copy(value)
		return nil
	case yaml.MappingNode:
		var raw map[string]string
		if err := node.Decode(&raw); err != nil {
			return fmt.Errorf("i18n: decode text: %w", err)
		}
		out := Text{Values: make(map[string]string, len(raw))}
		for locale, value := range raw {
			if locale == "key" {
				out.Key = strings.TrimSpace(value)
				continue
			}
			out.Values[NormalizeLocale(locale)] = value
		}
		*t = out
		return nil
	default:
		return fmt.Errorf("i18n: text must be a string or a locale mapping (line %d)", node.Line)
	}
}

// NormalizeLocale lower-cases locale and strips any region suffix ("en-GB" →
// "en"). Unknown or empty locales resolve to English.
func NormalizeLocale(locale string) string {
	trimmed := strings.ToLower(strings.TrimSpace(locale))
	if idx := strings.IndexAny(trimmed, "-_"); idx > 0 {
		trimmed = trimmed[:idx]
	}
	switch trimmed {
	case LocaleEnglish, LocaleWelsh:
		return trimmed
	default:
		return LocaleEnglish
	}
}

// SupportedLocales lists the locales copy can be authored in.
func SupportedLocales() []string {
	out := []string{LocaleEnglish, LocaleWelsh}
	sort.Strings(out)
	return out
}
