package utils

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	clockLayout = "3:04:05 PM"
	dateLayout  = "1/2/2006"
)

// WithUnit renders a measurement in its shortest form followed by unit,
// e.g. WithUnit(21.5, "°C") == "21.5°C"
func WithUnit(value float64, unit string) string {
	return strconv.FormatFloat(value, 'f', -1, 64) + unit
}

// GroupDigits formats a number with English thousands separators
func GroupDigits(value float64) string {
	// Printers are not safe for concurrent use
	p := message.NewPrinter(language.English)
	return p.Sprint(number.Decimal(value))
}

// TitleCase normalizes a label to capitalized form ("AFRICA" -> "Africa")
func TitleCase(s string) string {
	return cases.Title(language.English).String(strings.TrimSpace(s))
}

// JoinByKey joins map values in key order, so the output is stable
func JoinByKey(values map[string]string, sep string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if v := values[k]; v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, sep)
}

// ClockTime renders unix seconds as a wall-clock time in loc
func ClockTime(unix int64, loc *time.Location) string {
	return time.Unix(unix, 0).In(loc).Format(clockLayout)
}

// CalendarDate renders unix seconds as a month/day/year date in loc
func CalendarDate(unix int64, loc *time.Location) string {
	return time.Unix(unix, 0).In(loc).Format(dateLayout)
}

// MultiplyFixed returns a*rate rounded half away from zero to places decimals
func MultiplyFixed(a decimal.Decimal, rate float64, places int32) string {
	return a.Mul(decimal.NewFromFloat(rate)).StringFixed(places)
}
