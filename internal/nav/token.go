// Package nav encodes report-navigation intents as compact stateless tokens.
//
// Tokens travel as callback data through the chat transport and must survive
// an asynchronous round trip with no server-side session: correctness depends
// only on encode/decode fidelity. The wire form stays a bare delimited string
// for transport compatibility; everything behind Parse works with the typed
// Token instead.
package nav

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Verb names a navigation intent.
type Verb string

const (
	// VerbSelectReportPeriod opens the year picker. No fields.
	VerbSelectReportPeriod Verb = "select_report_period"
	// VerbSelectReportYear opens the month picker for a year. Fields: year.
	VerbSelectReportYear Verb = "select_report_year"
	// VerbSelectMonth requests a month of the chat's last selected year.
	// Fields: month.
	VerbSelectMonth Verb = "select_month"
	// VerbReportMonth requests a fully specified monthly report.
	// Fields: year, month.
	VerbReportMonth Verb = "report_month"
	// VerbDetailedReport requests the per-category drill-down keyboard.
	// Fields: year, month.
	VerbDetailedReport Verb = "detailed_report"
	// VerbBackToReport returns from a drill-down to the summary report.
	// Fields: year, month.
	VerbBackToReport Verb = "back_to_report"
	// VerbCategoryDetails requests one category's transactions.
	// Fields: year, month, categoryID.
	VerbCategoryDetails Verb = "category_details"
	// VerbNoAction is a true no-op, reserved for separator elements.
	VerbNoAction Verb = "no_action"
)

// ErrUnrecognizedToken marks tokens with an unknown verb or malformed
// fields. Callers log and ignore them; they are never fatal.
var ErrUnrecognizedToken = errors.New("unrecognized navigation token")

// Token is the decoded form of a navigation intent.
type Token struct {
	Verb       Verb
	Year       int
	Month      int
	CategoryID int64
}

// fieldCounts gives the exact number of integer fields each verb carries,
// in the fixed order year, month, categoryID (prefix per verb).
var fieldCounts = map[Verb]int{
	VerbSelectReportPeriod: 0,
	VerbSelectReportYear:   1,
	VerbSelectMonth:        1,
	VerbReportMonth:        2,
	VerbDetailedReport:     2,
	VerbBackToReport:       2,
	VerbCategoryDetails:    3,
	VerbNoAction:           0,
}

// verbsByLength holds the known verbs longest-first so that prefix matching
// is unambiguous (verbs themselves contain the field delimiter).
var verbsByLength = []Verb{
	VerbSelectReportPeriod,
	VerbSelectReportYear,
	VerbCategoryDetails,
	VerbDetailedReport,
	VerbBackToReport,
	VerbReportMonth,
	VerbSelectMonth,
	VerbNoAction,
}

// SelectReportPeriod returns the year-picker token.
func SelectReportPeriod() Token { return Token{Verb: VerbSelectReportPeriod} }

// SelectReportYear returns the month-picker token for a year.
func SelectReportYear(year int) Token {
	return Token{Verb: VerbSelectReportYear, Year: year}
}

// SelectMonth returns the month token resolved against the chat's last
// selected year.
func SelectMonth(month int) Token { return Token{Verb: VerbSelectMonth, Month: month} }

// ReportMonth returns the fully specified monthly report token.
func ReportMonth(year, month int) Token {
	return Token{Verb: VerbReportMonth, Year: year, Month: month}
}

// DetailedReport returns the drill-down keyboard token.
func DetailedReport(year, month int) Token {
	return Token{Verb: VerbDetailedReport, Year: year, Month: month}
}

// BackToReport returns the back-navigation token.
func BackToReport(year, month int) Token {
	return Token{Verb: VerbBackToReport, Year: year, Month: month}
}

// CategoryDetails returns the category drill-down token.
func CategoryDetails(year, month int, categoryID int64) Token {
	return Token{Verb: VerbCategoryDetails, Year: year, Month: month, CategoryID: categoryID}
}

// NoAction returns the no-op token.
func NoAction() Token { return Token{Verb: VerbNoAction} }

// String encodes the token as callback data. Encoding is deterministic and
// round-trips through Parse.
func (t Token) String() string {
	switch fieldCounts[t.Verb] {
	case 1:
		if t.Verb == VerbSelectMonth {
			return fmt.Sprintf("%s_%d", t.Verb, t.Month)
		}
		return fmt.Sprintf("%s_%d", t.Verb, t.Year)
	case 2:
		return fmt.Sprintf("%s_%d_%d", t.Verb, t.Year, t.Month)
	case 3:
		return fmt.Sprintf("%s_%d_%d_%d", t.Verb, t.Year, t.Month, t.CategoryID)
	default:
		return string(t.Verb)
	}
}

// Parse decodes callback data into a Token. Unknown verbs, wrong field
// counts, non-numeric fields and out-of-range months all fail with
// ErrUnrecognizedToken.
func Parse(data string) (Token, error) {
	for _, verb := range verbsByLength {
		rest, ok := splitVerb(data, string(verb))
		if !ok {
			continue
		}
		fields, err := parseFields(rest, fieldCounts[verb])
		if err != nil {
			return Token{}, fmt.Errorf("%q: %w", data, ErrUnrecognizedToken)
		}
		return assemble(verb, fields)
	}
	return Token{}, fmt.Errorf("%q: %w", data, ErrUnrecognizedToken)
}

func splitVerb(data, verb string) (rest string, ok bool) {
	if data == verb {
		return "", true
	}
	if strings.HasPrefix(data, verb+"_") {
		return data[len(verb)+1:], true
	}
	return "", false
}

func parseFields(rest string, want int) ([]int64, error) {
	if want == 0 {
		if rest != "" {
			return nil, errors.New("unexpected fields")
		}
		return nil, nil
	}
	parts := strings.Split(rest, "_")
	if rest == "" || len(parts) != want {
		return nil, errors.New("wrong field count")
	}
	fields := make([]int64, want)
	for i, p := range parts {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, err
		}
		fields[i] = v
	}
	return fields, nil
}

func assemble(verb Verb, fields []int64) (Token, error) {
	t := Token{Verb: verb}
	switch verb {
	case VerbSelectReportYear:
		t.Year = int(fields[0])
	case VerbSelectMonth:
		t.Month = int(fields[0])
	case VerbReportMonth, VerbDetailedReport, VerbBackToReport:
		t.Year = int(fields[0])
		t.Month = int(fields[1])
	case VerbCategoryDetails:
		t.Year = int(fields[0])
		t.Month = int(fields[1])
		t.CategoryID = fields[2]
	}
	switch verb {
	case VerbSelectMonth, VerbReportMonth, VerbDetailedReport, VerbBackToReport, VerbCategoryDetails:
		if t.Month < 1 || t.Month > 12 {
			return Token{}, fmt.Errorf("month %d: %w", t.Month, ErrUnrecognizedToken)
		}
	}
	return t, nil
}
