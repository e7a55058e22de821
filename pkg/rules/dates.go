package rules

import (
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formflow/pkg/answers"
)

// Now is the clock used by relative date rules.
var Now = time.Now

// DateParts accepts {day, month, year} and requires a real calendar date.
func DateParts() Schema {
	return Object(
		Key("day", Number().Integer().Required()),
		Key("month", Number().Integer().Required()),
		Key("year", Number().Integer().Required()),
	).describe(func(d *Description) { d.Format = "date" }).Check(func(value any, _ answers.Set) *Failure {
		if _, ok := ParseDate(value); !ok {
			return Fail(TypeDateInvalid, nil)
		}
		return nil
	})
}

// MinAge requires a date of birth at least years before today.
func (s Schema) MinAge(years int) Schema {
	return s.Check(func(value any, _ answers.Set) *Failure {
		date, ok := ParseDate(value)
		if !ok {
			return nil
		}
		if date.After(truncateDay(Now()).AddDate(-years, 0, 0)) {
			return Fail(TypeDateMinAge, map[string]any{"minAge": years})
		}
		return nil
	})
}

// PastOnly rejects dates after today.
func (s Schema) PastOnly() Schema {
	return s.Check(func(value any, _ answers.Set) *Failure {
		date, ok := ParseDate(value)
		if ok && date.After(truncateDay(Now())) {
			return Fail(TypeDatePast, nil)
		}
		return nil
	})
}

// FutureOnly requires dates at least minDays after today.
func (s Schema) FutureOnly(minDays int) Schema {
	return s.Check(func(value any, _ answers.Set) *Failure {
		date, ok := ParseDate(value)
		if ok && date.Before(truncateDay(Now()).AddDate(0, 0, minDays)) {
			return Fail(TypeDateFuture, map[string]any{"minDays": minDays})
		}
		return nil
	})
}

// DateRange accepts {startDate, endDate}, each a set of date parts, with the
// end on or after the start. minLeadDays bounds how soon the range may start
// and maxSpanMonths how long it may last; zero disables either bound.
func DateRange(minLeadDays, maxSpanMonths int) Schema {
	return Object(
		Key("startDate", dateObject().Required()),
		Key("endDate", dateObject().Required()),
	).describe(func(d *Description) { d.Format = "date-range" }).Check(func(value any, _ answers.Set) *Failure {
		span, _ := value.(map[string]any)
		start, okStart := ParseDate(span["startDate"])
		end, okEnd := ParseDate(span["endDate"])
		if !okStart || !okEnd {
			return Fail(TypeDateRangeInvalid, nil)
		}
		if minLeadDays > 0 && start.Before(truncateDay(Now()).AddDate(0, 0, minLeadDays)) {
			return Fail(TypeDateRangeMinDate, map[string]any{"minDays": minLeadDays})
		}
		if end.Before(start) {
			return Fail(TypeDateRangeOrder, nil)
		}
		if maxSpanMonths > 0 && end.After(start.AddDate(0, maxSpanMonths, 0)) {
			return Fail(TypeDateRangeSpan, map[string]any{"maxMonths": maxSpanMonths})
		}
		return nil
	})
}

func dateObject() Schema {
	return Object(
		Key("day", Number().Integer().Required()),
		Key("month", Number().Integer().Required()),
		Key("year", Number().Integer().Required()),
	)
}

// DayMonth accepts {day, month} for recurring dates such as a financial year
// end. 29 February is accepted.
func DayMonth() Schema {
	return Object(
		Key("day", Number().Integer().Required()),
		Key("month", Number().Integer().Required()),
	).describe(func(d *Description) { d.Format = "day-month" }).Check(func(value any, _ answers.Set) *Failure {
		parts, _ := value.(map[string]any)
		day, _ := ToFloat(parts["day"])
		month, _ := ToFloat(parts["month"])
		if !validDate(2000, int(month), int(day)) {
			return Fail(TypeDayMonthInvalid, nil)
		}
		return nil
	})
}

// MonthYear accepts {month, year}.
func MonthYear() Schema {
	return Object(
		Key("month", Number().Integer().Required()),
		Key("year", Number().Integer().Required()),
	).describe(func(d *Description) { d.Format = "month-year" }).Check(func(value any, _ answers.Set) *Failure {
		parts, _ := value.(map[string]any)
		month, _ := ToFloat(parts["month"])
		year, _ := ToFloat(parts["year"])
		if !validDate(int(year), int(month), 1) || year < 1000 {
			return Fail(TypeMonthYearInvalid, nil)
		}
		return nil
	})
}

// PastMonth rejects month-year values after the current month.
func (s Schema) PastMonth() Schema {
	return s.Check(func(value any, _ answers.Set) *Failure {
		parts, _ := value.(map[string]any)
		month, _ := ToFloat(parts["month"])
		year, _ := ToFloat(parts["year"])
		now := Now()
		if int(year) > now.Year() || (int(year) == now.Year() && int(month) > int(now.Month())) {
			return Fail(TypeMonthYearPast, nil)
		}
		return nil
	})
}

// ParseDate turns {day, month, year} parts (strings or numbers) into a date.
// ok is false for missing parts or impossible dates such as 31 April.
func ParseDate(value any) (time.Time, bool) {
	parts, okMap := value.(map[string]any)
	if !okMap {
		return time.Time{}, false
	}
	day, okDay := partInt(parts["day"])
	month, okMonth := partInt(parts["month"])
	year, okYear := partInt(parts["year"])
	if !okDay || !okMonth || !okYear || year < 1000 {
		return time.Time{}, false
	}
	if !validDate(year, month, day) {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// FormatISO renders date parts as YYYY-MM-DD, or "" when invalid.
func FormatISO(value any) string {
	date, ok := ParseDate(value)
	if !ok {
		return ""
	}
	return date.Format(time.DateOnly)
}

func partInt(value any) (int, bool) {
	switch typed := value.(type) {
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(typed))
		return parsed, err == nil
	default:
		number, ok := ToFloat(typed)
		if !ok || number != float64(int(number)) {
			return 0, false
		}
		return int(number), true
	}
}

func validDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	candidate := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return candidate.Year() == year && int(candidate.Month()) == month && candidate.Day() == day
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
