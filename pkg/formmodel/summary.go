package formmodel

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/field"
	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/navigation"
	"github.com/goliatone/go-formflow/pkg/progress"
	"github.com/goliatone/go-formflow/pkg/rules"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// SummaryItem is one answered (or missing) question on the review screen.
type SummaryItem struct {
	Name     string
	Label    string
	Value    string
	Messages []string
	Link     navigation.PageLink
}

// SummaryStep groups the items of one required step.
type SummaryStep struct {
	Title string
	Link  navigation.PageLink
	Items []SummaryItem
}

// SummarySection is the review projection of a section.
type SummarySection struct {
	Slug     string
	Title    string
	Progress progress.SectionProgress
	Steps    []SummaryStep
}

// Summary projects the active shape and current answers onto the review
// screen. Sections without active fields are left out.
func (m *Model) Summary() []SummarySection {
	byField := validation.ByField(m.result.Messages)
	out := make([]SummarySection, 0, len(m.shape.Sections))
	for si, section := range m.shape.Sections {
		if len(section.FieldNames()) == 0 {
			continue
		}
		summary := SummarySection{
			Slug:     section.Slug,
			Title:    m.loc.Text(section.Title),
			Progress: progress.ForSection(section, m.result, m.loc),
		}
		for sti, step := range section.Steps {
			if !step.IsRequired {
				continue
			}
			var link navigation.PageLink
			if dest, err := m.nav.At(navigation.Position{Section: si, Step: sti}); err == nil {
				link = dest.Link
			}
			entry := SummaryStep{Title: m.loc.Text(step.Title), Link: link}
			for _, fieldset := range step.Fieldsets {
				for _, active := range fieldset.Fields {
					value, _ := m.result.Value.Get(active.Name)
					entry.Items = append(entry.Items, SummaryItem{
						Name:     active.Name,
						Label:    m.loc.Text(active.Label),
						Value:    m.FormatValue(active, value),
						Messages: byField[active.Name],
						Link:     link,
					})
				}
			}
			summary.Steps = append(summary.Steps, entry)
		}
		out = append(out, summary)
	}
	return out
}

// FormatValue renders a sanitised value for people to read.
func (m *Model) FormatValue(active form.ActiveField, value any) string {
	if answers.IsBlank(value) {
		return ""
	}
	switch active.Type {
	case field.TypeRadio, field.TypeSelect:
		return optionLabel(m.loc, active.Options, fmt.Sprint(value))
	case field.TypeCheckbox:
		list, _ := value.([]any)
		labels := make([]string, 0, len(list))
		for _, entry := range list {
			labels = append(labels, optionLabel(m.loc, active.Options, fmt.Sprint(entry)))
		}
		return strings.Join(labels, ", ")
	case field.TypeCurrency:
		amount, _ := rules.ToFloat(value)
		return formatCurrency(amount)
	case field.TypeNumber:
		number, _ := rules.ToFloat(value)
		return humanize.Commaf(number)
	case field.TypeDate:
		return formatDate(m.loc.Locale(), value, true, true)
	case field.TypeDayMonth:
		return formatDate(m.loc.Locale(), withYear(value, 2000), true, false)
	case field.TypeMonthYear:
		return formatDate(m.loc.Locale(), withDay(value), false, true)
	case field.TypeDateRange:
		parts, _ := value.(map[string]any)
		start := formatDate(m.loc.Locale(), parts["startDate"], true, true)
		end := formatDate(m.loc.Locale(), parts["endDate"], true, true)
		return start + " " + m.loc.Key("summary.dateRange.to", "to") + " " + end
	case field.TypeBudget:
		list, _ := value.([]any)
		rows := make([]string, 0, len(list)+1)
		for _, row := range list {
			entry, _ := row.(map[string]any)
			cost, _ := rules.ToFloat(entry["cost"])
			rows = append(rows, fmt.Sprintf("%v: %s", entry["item"], formatCurrency(cost)))
		}
		rows = append(rows, m.loc.Key("summary.budget.total", "Total")+": "+formatCurrency(rules.BudgetTotal(value)))
		return strings.Join(rows, "\n")
	case field.TypeAddress:
		return formatAddress(value)
	case field.TypeAddressHistory:
		history, _ := value.(map[string]any)
		if previous := formatAddress(history["previousAddress"]); previous != "" {
			return previous
		}
		return fmt.Sprint(history["currentAddressMeetsMinimum"])
	case field.TypeFullName:
		name, _ := value.(map[string]any)
		return strings.TrimSpace(fmt.Sprintf("%v %v", name["firstName"], name["lastName"]))
	case field.TypeFile:
		meta, _ := value.(map[string]any)
		size, _ := rules.ToFloat(meta["size"])
		return fmt.Sprintf("%v (%s)", meta["filename"], humanize.Bytes(uint64(size)))
	default:
		return fmt.Sprint(value)
	}
}

func optionLabel(loc i18n.Localizer, options []field.Option, value string) string {
	for _, option := range options {
		if option.Value == value && !option.Label.IsZero() {
			return loc.Text(option.Label)
		}
	}
	return value
}

func formatCurrency(amount float64) string {
	if amount == float64(int64(amount)) {
		return "£" + humanize.Comma(int64(amount))
	}
	return "£" + humanize.FormatFloat("#,###.##", amount)
}

func formatAddress(value any) string {
	address, _ := value.(map[string]any)
	parts := make([]string, 0, 5)
	for _, key := range []string{"line1", "line2", "townCity", "county", "postcode"} {
		if text, ok := address[key].(string); ok && strings.TrimSpace(text) != "" {
			parts = append(parts, strings.TrimSpace(text))
		}
	}
	return strings.Join(parts, ", ")
}

var welshMonths = [...]string{
	"Ionawr", "Chwefror", "Mawrth", "Ebrill", "Mai", "Mehefin",
	"Gorffennaf", "Awst", "Medi", "Hydref", "Tachwedd", "Rhagfyr",
}

func formatDate(locale string, value any, withDayPart, withYearPart bool) string {
	date, ok := rules.ParseDate(value)
	if !ok {
		return ""
	}
	month := date.Month().String()
	if locale == i18n.LocaleWelsh {
		month = welshMonths[date.Month()-1]
	}
	parts := make([]string, 0, 3)
	if withDayPart {
		parts = append(parts, fmt.Sprint(date.Day()))
	}
	parts = append(parts, month)
	if withYearPart {
		parts = append(parts, fmt.Sprint(date.Year()))
	}
	return strings.Join(parts, " ")
}

func withYear(value any, year int) map[string]any {
	parts, _ := value.(map[string]any)
	return map[string]any{"day": parts["day"], "month": parts["month"], "year": year}
}

func withDay(value any) map[string]any {
	parts, _ := value.(map[string]any)
	return map[string]any{"day": 1, "month": parts["month"], "year": parts["year"]}
}
