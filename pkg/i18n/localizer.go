package i18n

import (
	"fmt"
	"strings"
)

// Option customises a Localizer.
type Option func(*Localizer)

// WithTranslator injects the copy provider consulted for keyed Text.
func WithTranslator(t Translator) Option {
	return func(l *Localizer) {
		l.translator = t
	}
}

// WithOnMissing overrides how missing translations are reported.
func WithOnMissing(handler MissingTranslationHandler) Option {
	return func(l *Localizer) {
		if handler != nil {
			l.onMissing = handler
		}
	}
}

// Localizer resolves Text for a single locale. The zero value resolves inline
// English copy.
type Localizer struct {
	locale     string
	translator Translator
	onMissing  MissingTranslationHandler
}

// New returns a Localizer for locale.
func New(locale string, options ...Option) Localizer {
	l := Localizer{
		locale:    NormalizeLocale(locale),
		onMissing: missingTranslationDefault,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&l)
	}
	return l
}

// Locale returns the normalised locale.
func (l Localizer) Locale() string {
	if l.locale == "" {
		return LocaleEnglish
	}
	return l.locale
}

// Text resolves t. Keyed text goes through the translator first; inline copy
// for the locale (then English) is the fallback. args are applied with
// fmt.Sprintf semantics to inline copy containing verbs.
func (l Localizer) Text(t Text, args ...any) string {
	fallback := t.In(l.Locale())
	if len(args) > 0 && strings.Contains(fallback, "%") {
		fallback = fmt.Sprintf(fallback, args...)
	}
	if strings.TrimSpace(t.Key) == "" {
		return fallback
	}
	return l.translate(t.Key, fallback, args...)
}

// Key resolves a translation key directly, returning fallback when missing.
func (l Localizer) Key(key, fallback string, args ...any) string {
	return l.translate(key, fallback, args...)
}

func (l Localizer) translate(key, fallback string, args ...any) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}
	onMissing := l.onMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}

	if l.translator == nil {
		return onMissing(l.Locale(), key, []any{map[string]any{"default": fallback}}, ErrMissingTranslator)
	}

	result, err := l.translator.Translate(l.Locale(), key, args...)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}
	return onMissing(l.Locale(), key, []any{map[string]any{"default": fallback}}, err)
}
