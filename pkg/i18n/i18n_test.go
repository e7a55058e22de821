package i18n_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/pkg/i18n"
)

func TestLocalizerInlineCopyFallsBackToEnglish(t *testing.T) {
	t.Parallel()

	text := i18n.Copy("Project name")
	if got := i18n.New("cy").Text(text); got != "Project name" {
		t.Fatalf("expected english fallback, got %q", got)
	}

	bilingual := i18n.Bilingual("Project name", "Enw'r prosiect")
	if got := i18n.New("cy-GB").Text(bilingual); got != "Enw'r prosiect" {
		t.Fatalf("expected welsh copy, got %q", got)
	}
}

func TestLocalizerKeyedTextUsesTranslator(t *testing.T) {
	t.Parallel()

	translator := i18n.TranslatorFunc(func(locale, key string, _ ...any) (string, error) {
		if key == "fields.projectName" && locale == "en" {
			return "Name of your project", nil
		}
		return "", errors.New("missing")
	})

	loc := i18n.New("en", i18n.WithTranslator(translator))
	text := i18n.Text{Key: "fields.projectName", Values: map[string]string{"en": "Project name"}}
	if got := loc.Text(text); got != "Name of your project" {
		t.Fatalf("expected translated copy, got %q", got)
	}

	missing := i18n.Text{Key: "fields.unknown", Values: map[string]string{"en": "Fallback"}}
	if got := loc.Text(missing); got != "Fallback" {
		t.Fatalf("expected inline fallback, got %q", got)
	}

	if got := loc.Key("fields.none", ""); got != "fields.none" {
		t.Fatalf("expected key when nothing else is known, got %q", got)
	}
}

func TestCatalogLoadFSFlattensKeys(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"copy/en.yaml":   {Data: []byte("errors:\n  generic: There is a problem with %s\nsummary: Summary\n")},
		"copy/cy.yml":    {Data: []byte("summary: Crynodeb\n")},
		"copy/notes.txt": {Data: []byte("ignored")},
	}

	catalog, err := i18n.LoadFS(fsys)
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}

	if diff := cmp.Diff([]string{"errors.generic", "summary"}, catalog.Keys("en")); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	got, err := catalog.Translate("en", "errors.generic", "your name")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "There is a problem with your name" {
		t.Fatalf("unexpected translation %q", got)
	}
	if got, _ := catalog.Translate("cy", "summary"); got != "Crynodeb" {
		t.Fatalf("unexpected welsh translation %q", got)
	}
	if _, err := catalog.Translate("cy", "errors.generic"); err == nil {
		t.Fatalf("expected error for missing welsh key")
	}
}

func TestTextUnmarshalYAML(t *testing.T) {
	t.Parallel()

	var doc struct {
		Plain i18n.Text `yaml:"plain"`
		Multi i18n.Text `yaml:"multi"`
	}
	src := "plain: Hello\nmulti:\n  key: greeting\n  en: Hello\n  cy: Helo\n"
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if diff := cmp.Diff(i18n.Copy("Hello"), doc.Plain); diff != "" {
		t.Fatalf("plain mismatch (-want +got):\n%s", diff)
	}
	want := i18n.Text{Key: "greeting", Values: map[string]string{"en": "Hello", "cy": "Helo"}}
	if diff := cmp.Diff(want, doc.Multi); diff != "" {
		t.Fatalf("multi mismatch (-want +got):\n%s", diff)
	}
}
