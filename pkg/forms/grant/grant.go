// Package grant is the reference catalog: a small-grants application with
// project, beneficiary, organisation, contact and bank detail sections,
// conditional questions keyed on the organisation type and the project
// country, and an optional bank account check.
package grant

import (
	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/preflight"
	"github.com/goliatone/go-formflow/pkg/rules"
)

// ID identifies the form in a registry.
const ID = "awards-for-all"

// BankCheckName names the bank account preflight check.
const BankCheckName = "bank-account"

const preflightFailure = "bankAccount.invalid"

// Option configures the catalog.
type Option func(*config)

type config struct {
	bankChecker preflight.Checker
}

// WithBankChecker verifies bank details with checker before the bank step is
// saved. Without a checker the step has no preflight.
func WithBankChecker(checker preflight.Checker) Option {
	return func(c *config) { c.bankChecker = checker }
}

// New builds and validates the grant form.
func New(opts ...Option) (*form.Form, error) {
	return form.New(Definition(opts...))
}

// Definition returns the static definition, useful for linting or exporting
// without indexing it.
func Definition(opts ...Option) form.Definition {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	fields := projectFields()
	fields = append(fields, beneficiaryFields()...)
	fields = append(fields, organisationFields()...)
	fields = append(fields, seniorContactFields()...)
	fields = append(fields, mainContactFields()...)
	fields = append(fields, bankFields()...)

	return form.Definition{
		ID:    ID,
		Title: i18n.Bilingual("National Lottery Awards for All", "Arian i Bawb y Loteri Genedlaethol"),
		Sections: []form.Section{
			projectSection(),
			beneficiariesSection(),
			organisationSection(),
			seniorContactSection(),
			mainContactSection(),
			bankSection(cfg.bankChecker),
		},
		Fields:         fields,
		TermsFields:    termsFields(),
		FeaturedFields: []string{"projectDateRange", "projectTotalCosts", "mainContactEmail"},
		ForSubmission:  withBudgetTotal,
	}
}

func single(title i18n.Text, names ...string) form.Step {
	return form.Step{Title: title, Fieldsets: []form.Fieldset{{Legend: title, Fields: names}}}
}

func projectSection() form.Section {
	return form.Section{
		Slug:       "your-project",
		Title:      i18n.Bilingual("Your project", "Eich prosiect"),
		ShortTitle: i18n.Bilingual("Project", "Prosiect"),
		Steps: []form.Step{
			single(i18n.Bilingual("Project details", "Manylion y prosiect"), "projectName", "projectDateRange"),
			single(i18n.Bilingual("Project country", "Gwlad y prosiect"), "projectCountry"),
			single(i18n.Bilingual("Project location", "Lleoliad y prosiect"), "projectLocation", "projectPostcode"),
			single(i18n.Bilingual("Your idea", "Eich syniad"), "yourIdeaProject", "yourIdeaCommunity"),
			single(i18n.Bilingual("Project costs", "Costau'r prosiect"), "projectBudget"),
			single(i18n.Bilingual("Total cost", "Cyfanswm cost"), "projectTotalCosts"),
		},
	}
}

func beneficiariesSection() form.Section {
	return form.Section{
		Slug:  "beneficiaries",
		Title: i18n.Bilingual("Who will benefit from your project?", "Pwy fydd yn elwa o'ch prosiect?"),
		Introduction: i18n.Bilingual(
			"We want to hear more about the people who will benefit from your project.",
			"Rydym eisiau clywed mwy am y bobl a fydd yn elwa o'ch prosiect.",
		),
		Steps: []form.Step{
			single(i18n.Bilingual("Specific groups of people", "Grwpiau penodol o bobl"), "beneficiariesGroupsCheck"),
			single(i18n.Bilingual("Specific groups", "Grwpiau penodol"), "beneficiariesGroups"),
			single(i18n.Bilingual("Age", "Oedran"), "beneficiariesGroupsAge"),
			single(i18n.Bilingual("Welsh language", "Iaith Gymraeg"), "beneficiariesWelshLanguage"),
			single(i18n.Bilingual("Community", "Cymuned"), "beneficiariesNorthernIrelandCommunity"),
		},
	}
}

func organisationSection() form.Section {
	return form.Section{
		Slug:       "organisation",
		Title:      i18n.Bilingual("Your organisation", "Eich sefydliad"),
		ShortTitle: i18n.Bilingual("Organisation", "Sefydliad"),
		Steps: []form.Step{
			single(i18n.Bilingual("Organisation details", "Manylion y sefydliad"), "organisationLegalName", "organisationTradingName", "organisationAddress"),
			single(i18n.Bilingual("Organisation type", "Math o sefydliad"), "organisationType"),
			single(i18n.Bilingual("Registration numbers", "Rhifau cofrestru"), "companyNumber", "charityNumber", "educationNumber"),
			single(i18n.Bilingual("Organisation finances", "Cyllid y sefydliad"), "accountingYearDate", "totalIncomeYear"),
		},
	}
}

func contactStep(prefix string, title i18n.Text, extra ...string) form.Step {
	names := append([]string{prefix + "Name"}, extra...)
	names = append(names,
		prefix+"DateOfBirth",
		prefix+"Address",
		prefix+"AddressHistory",
		prefix+"Email",
		prefix+"Phone",
	)
	return single(title, names...)
}

func seniorContactSection() form.Section {
	return form.Section{
		Slug:  "senior-contact",
		Title: i18n.Bilingual("Senior contact", "Uwch gyswllt"),
		Steps: []form.Step{
			contactStep("seniorContact", i18n.Bilingual("Senior contact", "Uwch gyswllt"), "seniorContactRole"),
		},
	}
}

func mainContactSection() form.Section {
	return form.Section{
		Slug:  "main-contact",
		Title: i18n.Bilingual("Main contact", "Prif gyswllt"),
		Steps: []form.Step{
			contactStep("mainContact", i18n.Bilingual("Main contact", "Prif gyswllt")),
		},
	}
}

func bankSection(checker preflight.Checker) form.Section {
	details := single(i18n.Bilingual("Bank account", "Cyfrif banc"), "bankAccountName", "bankSortCode", "bankAccountNumber", "buildingSocietyNumber")
	if checker != nil {
		details.PreFlight = &preflight.Check{
			Name:        BankCheckName,
			Checker:     checker,
			Fields:      []string{"bankSortCode", "bankAccountNumber"},
			FailureType: preflightFailure,
		}
	}

	statement := single(i18n.Bilingual("Bank statement", "Cyfriflen banc"), "bankStatement")
	statement.Multipart = true

	return form.Section{
		Slug:  "bank-details",
		Title: i18n.Bilingual("Bank details", "Manylion banc"),
		Steps: []form.Step{details, statement},
	}
}

// withBudgetTotal adds the total of the budget rows so the downstream system
// does not need to re-add them.
func withBudgetTotal(data answers.Set) map[string]any {
	out := map[string]any(data.Clone())
	if budget, ok := data.Get("projectBudget"); ok {
		out["projectBudgetTotal"] = rules.BudgetTotal(budget)
	}
	return out
}
