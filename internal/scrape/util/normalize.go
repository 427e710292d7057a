package util

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// DateLayout is the canonical deadline format.
const DateLayout = "2006-01-02"

const monthPattern = `(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sept?(?:ember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`

var (
	isoDateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	budgetRe  = regexp.MustCompile(`\$(\d+k?)`)

	monthFirstRe = regexp.MustCompile(`(?i)\b` + monthPattern + `\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
	dayFirstRe   = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?` + monthPattern + `\.?,?\s+(\d{4})\b`)
	yearFirstRe  = regexp.MustCompile(`\b\d{4}/\d{1,2}/\d{1,2}\b`)
	dayMonthRe   = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)

	months = map[string]time.Month{
		"jan": time.January, "feb": time.February, "mar": time.March,
		"apr": time.April, "may": time.May, "jun": time.June,
		"jul": time.July, "aug": time.August, "sep": time.September,
		"oct": time.October, "nov": time.November, "dec": time.December,
	}

	deadlineLayouts = []string{
		DateLayout,
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	}
)

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// ExtractDeadline returns the first ISO date (YYYY-MM-DD) found in text,
// including one that opens a timestamp ("2026-03-15T17:00:00Z").
// Without one it falls back to natural-language dates ("March 15, 2026",
// "15th of March 2026", "2026/03/15", "15/03/2026"). Numeric day/month
// orderings that cannot be told apart are skipped. Returns "" when nothing
// parses.
func ExtractDeadline(text string) string {
	for _, idx := range isoDateRe.FindAllStringIndex(text, -1) {
		if !digitBounded(text, idx[0], idx[1]) {
			continue
		}
		d := text[idx[0]:idx[1]]
		if _, err := time.Parse(DateLayout, d); err == nil {
			return d
		}
	}
	for _, c := range fuzzyCandidates(text) {
		t, err := dateparse.ParseStrict(c.value)
		if err != nil {
			continue
		}
		return t.Format(DateLayout)
	}
	return ""
}

// ExtractBudget returns the first "$<digits>[k]" token, e.g. "$250k".
func ExtractBudget(text string) string {
	return budgetRe.FindString(text)
}

// NormalizeDeadline canonicalizes a deadline a structured source supplied
// directly. Anything that is not a known timestamp layout goes through
// ExtractDeadline.
func NormalizeDeadline(v string) string {
	v = CleanText(v)
	if v == "" {
		return ""
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(DateLayout)
		}
	}
	return ExtractDeadline(v)
}

type candidate struct {
	pos   int
	value string
}

func fuzzyCandidates(text string) []candidate {
	var out []candidate

	for _, idx := range monthFirstRe.FindAllStringSubmatchIndex(text, -1) {
		mon, day, year := text[idx[2]:idx[3]], text[idx[4]:idx[5]], text[idx[6]:idx[7]]
		if c, ok := monthDayYear(mon, day, year); ok {
			out = append(out, candidate{pos: idx[0], value: c})
		}
	}
	for _, idx := range dayFirstRe.FindAllStringSubmatchIndex(text, -1) {
		day, mon, year := text[idx[2]:idx[3]], text[idx[4]:idx[5]], text[idx[6]:idx[7]]
		if c, ok := monthDayYear(mon, day, year); ok {
			out = append(out, candidate{pos: idx[0], value: c})
		}
	}
	for _, idx := range yearFirstRe.FindAllStringIndex(text, -1) {
		out = append(out, candidate{pos: idx[0], value: text[idx[0]:idx[1]]})
	}
	for _, idx := range dayMonthRe.FindAllStringSubmatchIndex(text, -1) {
		a, b, year := text[idx[2]:idx[3]], text[idx[4]:idx[5]], text[idx[6]:idx[7]]
		if c, ok := numericDayMonth(a, b, year); ok {
			out = append(out, candidate{pos: idx[0], value: c})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].pos < out[j].pos })
	return out
}

// digitBounded reports whether text[start:end] has no digit directly on
// either side, so "12026-03-15" is not read as a date.
func digitBounded(text string, start, end int) bool {
	isDigit := func(c byte) bool { return c >= '0' && c <= '9' }
	if start > 0 && isDigit(text[start-1]) {
		return false
	}
	return end >= len(text) || !isDigit(text[end])
}

// numericDayMonth resolves "a/b/yyyy" when only one reading is possible:
// one side above 12 is the day, equal sides read the same either way.
func numericDayMonth(a, b, year string) (string, bool) {
	x, errA := strconv.Atoi(a)
	y, errB := strconv.Atoi(b)
	if errA != nil || errB != nil {
		return "", false
	}
	day, mon := 0, 0
	switch {
	case x == y:
		day, mon = x, y
	case x > 12 && y <= 12:
		day, mon = x, y
	case y > 12 && x <= 12:
		day, mon = y, x
	default:
		return "", false
	}
	if mon < 1 || mon > 12 {
		return "", false
	}
	return monthDayYear(time.Month(mon).String(), strconv.Itoa(day), year)
}

// monthDayYear rewrites a month-name date as "January 2, 2006".
func monthDayYear(mon, day, year string) (string, bool) {
	key := strings.ToLower(mon)
	if len(key) > 3 {
		key = key[:3]
	}
	m, ok := months[key]
	if !ok {
		return "", false
	}
	return m.String() + " " + day + ", " + year, true
}

// HTMLText flattens an HTML snippet (feed descriptions) to clean text.
func HTMLText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return CleanText(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return CleanText(s)
	}
	return CleanText(doc.Text())
}

// ContainsAny reports whether text contains any keyword, case-insensitively.
// An empty keyword list matches everything.
func ContainsAny(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	lt := strings.ToLower(text)
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if strings.Contains(lt, k) {
			return true
		}
	}
	return false
}
