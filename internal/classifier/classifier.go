// Package classifier decides the retrieval bias for a question from its
// surface form alone. It is a deterministic rule match over normalized
// tokens; it never fails, and unmatched input yields KindGeneral.
package classifier

import (
	"strings"
	"time"
	"unicode"
)

// Kind is the retrieval bias for a question.
type Kind string

const (
	// KindAggregate marks questions about a total or overall figure.
	KindAggregate Kind = "aggregate"
	// KindCategory marks questions naming a known spending category.
	KindCategory Kind = "category"
	// KindTemporal marks questions about a specific month or time range.
	KindTemporal Kind = "temporal"
	// KindGeneral means no strong signal; retrieval falls back to pure
	// similarity.
	KindGeneral Kind = "general"
)

// Classification is the tagged result of classifying a question. Category
// is set only for KindCategory; Month ("YYYY-MM" or "MM" when the year is
// unknown) only for KindTemporal.
type Classification struct {
	Kind     Kind
	Category string
	Month    string
}

// aggregateTokens match questions about the overall figure.
var aggregateTokens = map[string]struct{}{
	"total":      {},
	"overall":    {},
	"altogether": {},
	"sum":        {},
	"everything": {},
}

var aggregatePhrases = []string{
	"in total",
	"all time",
	"how much did i spend overall",
}

var monthNames = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

// timeNow is swapped in tests to pin relative phrases like "last month".
var timeNow = time.Now

// Classify inspects a question and the user's known category names (from
// stored chunk metadata) and returns the retrieval bias. Multiple matches
// resolve by priority aggregate > category > temporal > general: aggregate
// questions need the single overall chunk, not a noisy similarity mix.
func Classify(question string, categories []string) Classification {
	normalized := normalize(question)
	tokens := strings.Fields(normalized)

	if matchesAggregate(normalized, tokens) {
		return Classification{Kind: KindAggregate}
	}

	if cat := matchCategory(normalized, categories); cat != "" {
		return Classification{Kind: KindCategory, Category: cat}
	}

	if month := matchMonth(normalized, tokens); month != "" {
		return Classification{Kind: KindTemporal, Month: month}
	}

	return Classification{Kind: KindGeneral}
}

// normalize lower-cases and strips punctuation so keyword matching sees a
// clean token stream.
func normalize(q string) string {
	var b strings.Builder
	b.Grow(len(q))
	for _, r := range strings.ToLower(q) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func matchesAggregate(normalized string, tokens []string) bool {
	for _, t := range tokens {
		if _, ok := aggregateTokens[t]; ok {
			return true
		}
	}
	for _, p := range aggregatePhrases {
		if strings.Contains(normalized, p) {
			return true
		}
	}
	return false
}

func matchCategory(normalized string, categories []string) string {
	padded := " " + normalized + " "
	for _, cat := range categories {
		needle := " " + normalize(cat) + " "
		if needle != "  " && strings.Contains(padded, needle) {
			return cat
		}
	}
	return ""
}

func matchMonth(normalized string, tokens []string) string {
	padded := " " + normalized + " "
	if strings.Contains(padded, " last month ") {
		// Step back from the first of the month; AddDate on day 31 would
		// normalize into the current month.
		now := timeNow().UTC()
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return first.AddDate(0, -1, 0).Format("2006-01")
	}
	if strings.Contains(padded, " this month ") {
		return timeNow().UTC().Format("2006-01")
	}

	for i, t := range tokens {
		m, ok := monthNames[t]
		if !ok {
			continue
		}
		// "january 2026" pins the year; a bare month name matches any year.
		if i+1 < len(tokens) {
			if y, err := time.Parse("2006", tokens[i+1]); err == nil {
				return time.Date(y.Year(), m, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
			}
		}
		// Bare "may" is usually the modal verb ("may I see..."); without a
		// year it only reads as a month after a preposition ("in may").
		if t == "may" && (i == 0 || !monthCues[tokens[i-1]]) {
			continue
		}
		return monthNumber(m)
	}
	return ""
}

// monthCues are words that mark the following token as a month name.
var monthCues = map[string]bool{
	"in": true, "during": true, "for": true, "of": true,
	"last": true, "this": true, "since": true, "until": true,
}

func monthNumber(m time.Month) string {
	return time.Date(2000, m, 1, 0, 0, 0, 0, time.UTC).Format("01")
}
