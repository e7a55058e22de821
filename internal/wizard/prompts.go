package wizard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/field"
	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/rules"
)

// prompter asks for one field value at a time. A nil value means the user
// left the field blank.
type prompter struct {
	driver PromptDriver
	loc    i18n.Localizer
}

type part struct {
	key   string
	label string
}

var (
	dateParts      = []part{{"day", "Day"}, {"month", "Month"}, {"year", "Year"}}
	dayMonthParts  = []part{{"day", "Day"}, {"month", "Month"}}
	monthYearParts = []part{{"month", "Month"}, {"year", "Year"}}
	nameParts      = []part{{"firstName", "First name"}, {"lastName", "Last name"}}
	addressParts   = []part{
		{"line1", "Building and street"},
		{"line2", "Address line 2"},
		{"townCity", "Town or city"},
		{"county", "County"},
		{"postcode", "Postcode"},
	}
)

func (p prompter) ask(ctx context.Context, fd form.ActiveField, current any) (any, error) {
	label := p.loc.Text(fd.Label)
	help := p.loc.Text(fd.Explanation)

	switch fd.Type {
	case field.TypeTextarea:
		out, err := p.driver.TextArea(ctx, TextAreaConfig{Message: label, Help: help, Default: stringOf(current)})
		return blankToNil(out), err
	case field.TypeRadio, field.TypeSelect:
		return p.choose(ctx, label, help, fd.Options, current)
	case field.TypeCheckbox:
		return p.chooseMany(ctx, label, help, fd.Options, current)
	case field.TypeDate:
		return p.parts(ctx, label, dateParts, current)
	case field.TypeDayMonth:
		return p.parts(ctx, label, dayMonthParts, current)
	case field.TypeMonthYear:
		return p.parts(ctx, label, monthYearParts, current)
	case field.TypeDateRange:
		return p.dateRange(ctx, label, current)
	case field.TypeFullName:
		return p.parts(ctx, label, nameParts, current)
	case field.TypeAddress:
		return p.parts(ctx, label, addressParts, current)
	case field.TypeAddressHistory:
		return p.addressHistory(ctx, label, current)
	case field.TypeBudget:
		return p.budget(ctx, label, current)
	default:
		out, err := p.driver.Input(ctx, InputConfig{Message: label, Help: help, Default: stringOf(current)})
		return blankToNil(out), err
	}
}

func (p prompter) choose(ctx context.Context, label, help string, options []field.Option, current any) (any, error) {
	labels := make([]string, len(options))
	selected := -1
	for i, opt := range options {
		labels[i] = p.loc.Text(opt.Label)
		if opt.Value == stringOf(current) {
			selected = i
		}
	}
	idx, err := p.driver.Select(ctx, SelectConfig{Message: label, Help: help, Options: labels, DefaultIndex: selected})
	if err != nil || idx < 0 || idx >= len(options) {
		return nil, err
	}
	return options[idx].Value, nil
}

func (p prompter) chooseMany(ctx context.Context, label, help string, options []field.Option, current any) (any, error) {
	chosen := map[string]bool{}
	if list, ok := current.([]any); ok {
		for _, v := range list {
			chosen[stringOf(v)] = true
		}
	}
	labels := make([]string, len(options))
	var defaults []int
	for i, opt := range options {
		labels[i] = p.loc.Text(opt.Label)
		if chosen[opt.Value] {
			defaults = append(defaults, i)
		}
	}
	indices, err := p.driver.MultiSelect(ctx, SelectConfig{Message: label, Help: help, Options: labels, Defaults: defaults})
	if err != nil || len(indices) == 0 {
		return nil, err
	}
	out := make([]any, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(options) {
			out = append(out, options[idx].Value)
		}
	}
	return out, nil
}

func (p prompter) parts(ctx context.Context, label string, parts []part, current any) (any, error) {
	existing, _ := current.(map[string]any)
	out := make(map[string]any, len(parts))
	for _, pt := range parts {
		value, err := p.driver.Input(ctx, InputConfig{
			Message: fmt.Sprintf("%s: %s", label, pt.label),
			Default: stringOf(existing[pt.key]),
		})
		if err != nil {
			return nil, err
		}
		if v := blankToNil(value); v != nil {
			out[pt.key] = v
		}
	}
	if answers.IsBlank(out) {
		return nil, nil
	}
	return out, nil
}

func (p prompter) dateRange(ctx context.Context, label string, current any) (any, error) {
	existing, _ := current.(map[string]any)
	start, err := p.parts(ctx, label+" (start)", dateParts, existing["startDate"])
	if err != nil {
		return nil, err
	}
	end, err := p.parts(ctx, label+" (end)", dateParts, existing["endDate"])
	if err != nil {
		return nil, err
	}
	if start == nil && end == nil {
		return nil, nil
	}
	return map[string]any{"startDate": start, "endDate": end}, nil
}

func (p prompter) addressHistory(ctx context.Context, label string, current any) (any, error) {
	existing, _ := current.(map[string]any)
	long, err := p.driver.Confirm(ctx, ConfirmConfig{
		Message: label,
		Default: existing["currentAddressMeetsMinimum"] != "no",
	})
	if err != nil {
		return nil, err
	}
	if long {
		return map[string]any{"currentAddressMeetsMinimum": "yes"}, nil
	}
	previous, err := p.parts(ctx, p.loc.Key("wizard.previousAddress", "Previous address"), addressParts, existing["previousAddress"])
	if err != nil {
		return nil, err
	}
	return map[string]any{"currentAddressMeetsMinimum": "no", "previousAddress": previous}, nil
}

// budget collects rows until an empty item name.
func (p prompter) budget(ctx context.Context, label string, current any) (any, error) {
	if err := p.driver.Info(ctx, label); err != nil {
		return nil, err
	}
	if total := rules.BudgetTotal(current); total > 0 {
		keep, err := p.driver.Confirm(ctx, ConfirmConfig{
			Message: p.loc.Key("wizard.keepBudget", "Keep the current budget?"),
			Default: true,
		})
		if err != nil || keep {
			return current, err
		}
	}

	var rows []any
	for row := 1; ; row++ {
		item, err := p.driver.Input(ctx, InputConfig{Message: fmt.Sprintf("Item %d (leave blank to finish)", row)})
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(item) == "" {
			break
		}
		cost, err := p.driver.Input(ctx, InputConfig{Message: fmt.Sprintf("Cost of %s", item)})
		if err != nil {
			return nil, err
		}
		rows = append(rows, map[string]any{"item": item, "cost": strings.TrimSpace(cost)})
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows, nil
}

func stringOf(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func blankToNil(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
