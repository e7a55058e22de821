package validation_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/field"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/rules"
	"github.com/goliatone/go-formflow/pkg/validation"
)

var catalogMessages = map[string][]field.Message{
	"address": {
		{Type: rules.TypeBase, Text: i18n.Copy("Enter a full UK address")},
		{Type: rules.TypeStringRegex, Key: "postcode", Text: i18n.Copy("Enter a real postcode")},
	},
	"email": {
		{Type: rules.TypeBase, Text: i18n.Copy("Enter an email address")},
		{Type: rules.TypeStringEmail, Text: i18n.Bilingual("Email address must be in the correct format", "Rhaid i'r cyfeiriad e-bost fod yn y fformat cywir")},
		{Type: rules.TypeStringEmail, Text: i18n.Copy("For example, name@example.com")},
	},
	"description": {
		{Type: rules.TypeBase, Text: i18n.Copy("Tell us about your project")},
		{Type: rules.TypeMaxWords, Text: i18n.Copy("Answer must be no more than {limit} words")},
	},
}

func catalog(featured ...string) validation.Catalog {
	return validation.CatalogFunc(func(name string) []field.Message { return catalogMessages[name] }, featured...)
}

func messagesOf(result validation.Result) []string {
	out := make([]string, 0, len(result.Messages))
	for _, m := range result.Messages {
		out = append(out, m.Param+": "+m.Msg)
	}
	return out
}

func TestKeyedMessageWinsOverBase(t *testing.T) {
	t.Parallel()

	composite := rules.Compose(rules.Key("address", rules.Address().Required()))
	data := answers.Set{"address": map[string]any{"line1": "1 Street", "townCity": "Leeds", "postcode": "???"}}

	result := validation.Validate(composite, data, catalog(), i18n.New("en"))
	if result.IsValid {
		t.Fatalf("expected invalid result")
	}
	if diff := cmp.Diff([]string{"address: Enter a real postcode"}, messagesOf(result)); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestBaseMessageWhenNoTypeMatches(t *testing.T) {
	t.Parallel()

	composite := rules.Compose(rules.Key("address", rules.Address().Required()))
	result := validation.Validate(composite, answers.Set{}, catalog(), i18n.New("en"))
	if diff := cmp.Diff([]string{"address: Enter a full UK address"}, messagesOf(result)); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestWinningTierEmitsEveryMatch(t *testing.T) {
	t.Parallel()

	composite := rules.Compose(rules.Key("email", rules.Email().Required()))
	result := validation.Validate(composite, answers.Set{"email": "nope"}, catalog(), i18n.New("cy"))
	want := []string{
		"email: Rhaid i'r cyfeiriad e-bost fod yn y fformat cywir",
		"email: For example, name@example.com",
	}
	if diff := cmp.Diff(want, messagesOf(result)); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestOnlyFirstFailurePerField(t *testing.T) {
	t.Parallel()

	schema := rules.String().WordCount(0, 2).Max(5).Required()
	composite := rules.Compose(rules.Key("description", schema))
	result := validation.Validate(composite, answers.Set{"description": "far too many words here"}, catalog(), i18n.New("en"))

	var raw *validation.Error
	if !errors.As(result.Error, &raw) || len(raw.Failures) != 2 {
		t.Fatalf("expected both raw failures to be kept, got %v", result.Error)
	}
	if diff := cmp.Diff([]string{"description: Answer must be no more than 2 words"}, messagesOf(result)); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmatchedFailureFallsBack(t *testing.T) {
	t.Parallel()

	composite := rules.Compose(rules.Key("phone", rules.Phone().Required()))
	result := validation.Validate(composite, answers.Set{"phone": "12"}, catalog(), i18n.New("en"))
	if diff := cmp.Diff([]string{"phone: There is a problem with this answer"}, messagesOf(result)); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestFeaturedMessagesSkipBase(t *testing.T) {
	t.Parallel()

	composite := rules.Compose(
		rules.Key("email", rules.Email().Required()),
		rules.Key("address", rules.Address().Required()),
	)
	cat := catalog("email", "address")

	invalidFormat := validation.Validate(composite, answers.Set{"email": "nope"}, cat, i18n.New("en"))
	got := make([]string, 0, len(invalidFormat.FeaturedMessages))
	for _, m := range invalidFormat.FeaturedMessages {
		got = append(got, m.Param+":"+m.Type)
	}
	if diff := cmp.Diff([]string{"email:string.email", "email:string.email"}, got); diff != "" {
		t.Fatalf("featured mismatch (-want +got):\n%s", diff)
	}

	missing := validation.Validate(composite, answers.Set{}, cat, i18n.New("en"))
	if len(missing.FeaturedMessages) != 0 {
		t.Fatalf("base messages must not be featured: %+v", missing.FeaturedMessages)
	}
}

func TestValidResultAndForFields(t *testing.T) {
	t.Parallel()

	emailOnly := rules.Compose(rules.Key("email", rules.Email().Required()))
	valid := validation.Validate(emailOnly, answers.Set{"email": "a@b.co", "extra": "dropped"}, catalog(), i18n.New("en"))
	if !valid.IsValid || valid.Error != nil || len(valid.Messages) != 0 {
		t.Fatalf("expected valid result, got %+v", valid)
	}
	if diff := cmp.Diff(answers.Set{"email": "a@b.co"}, valid.Value); diff != "" {
		t.Fatalf("unknown keys should be stripped (-want +got):\n%s", diff)
	}

	composite := rules.Compose(
		rules.Key("email", rules.Email().Required()),
		rules.Key("address", rules.Address().Required()),
	)
	result := validation.Validate(composite, answers.Set{"email": "nope"}, catalog(), i18n.New("en"))
	scoped := validation.ForFields(result.Messages, []string{"address"})
	if len(scoped) != 1 || scoped[0].Msg != "Enter a full UK address" {
		t.Fatalf("expected only the address message, got %+v", scoped)
	}
	if got := validation.ByField(result.Messages); len(got["email"]) != 2 {
		t.Fatalf("expected two email messages, got %v", got)
	}
}
