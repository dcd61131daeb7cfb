package classifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func pinNow(t *testing.T, year int, month time.Month, day int) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time {
		return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	}
	t.Cleanup(func() { timeNow = orig })
}

func TestClassify(t *testing.T) {
	categories := []string{"Food", "Transport", "Rent"}

	tests := []struct {
		name     string
		question string
		want     Classification
	}{
		{
			name:     "aggregate keyword",
			question: "How much did I spend in total?",
			want:     Classification{Kind: KindAggregate},
		},
		{
			name:     "aggregate overall",
			question: "what is my overall spending",
			want:     Classification{Kind: KindAggregate},
		},
		{
			name:     "category match",
			question: "How much went to food last week?",
			want:     Classification{Kind: KindCategory, Category: "Food"},
		},
		{
			name:     "category is case insensitive",
			question: "TRANSPORT costs?",
			want:     Classification{Kind: KindCategory, Category: "Transport"},
		},
		{
			name:     "month with year",
			question: "spending in january 2026",
			want:     Classification{Kind: KindTemporal, Month: "2026-01"},
		},
		{
			name:     "bare month name",
			question: "what about march",
			want:     Classification{Kind: KindTemporal, Month: "03"},
		},
		{
			name:     "no signal",
			question: "what should I cut back on?",
			want:     Classification{Kind: KindGeneral},
		},
		{
			name:     "empty question",
			question: "",
			want:     Classification{Kind: KindGeneral},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.question, categories)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_Priority(t *testing.T) {
	categories := []string{"Food"}

	// Aggregate beats category beats temporal when a question matches more
	// than one rule.
	got := Classify("total food spending in january 2026", categories)
	assert.Equal(t, KindAggregate, got.Kind)

	got = Classify("food spending in january 2026", categories)
	assert.Equal(t, KindCategory, got.Kind)
	assert.Equal(t, "Food", got.Category)
}

func TestClassify_RelativeMonths(t *testing.T) {
	pinNow(t, 2026, time.March, 15)

	got := Classify("how much did I spend last month", nil)
	assert.Equal(t, Classification{Kind: KindTemporal, Month: "2026-02"}, got)

	got = Classify("spending this month so far", nil)
	assert.Equal(t, Classification{Kind: KindTemporal, Month: "2026-03"}, got)
}

func TestClassify_LastMonthAtMonthEnd(t *testing.T) {
	// Day 31 must still resolve to February, not normalize back into
	// March.
	pinNow(t, 2026, time.March, 31)

	got := Classify("how much did I spend last month", nil)
	assert.Equal(t, Classification{Kind: KindTemporal, Month: "2026-02"}, got)

	pinNow(t, 2026, time.January, 31)
	got = Classify("what about last month", nil)
	assert.Equal(t, Classification{Kind: KindTemporal, Month: "2025-12"}, got)
}

func TestClassify_MayNeedsMonthContext(t *testing.T) {
	tests := []struct {
		question string
		want     Classification
	}{
		{"may I see my spending?", Classification{Kind: KindGeneral}},
		{"spending in may", Classification{Kind: KindTemporal, Month: "05"}},
		{"may 2026 expenses", Classification{Kind: KindTemporal, Month: "2026-05"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.question, nil), "question: %s", tt.question)
	}
}

func TestClassify_NoSubstringCategoryMatch(t *testing.T) {
	// "food" inside "seafood" must not match the Food category.
	got := Classify("how much for seafood platters", []string{"Food"})
	assert.Equal(t, KindGeneral, got.Kind)
}

func TestClassify_IgnoresEmptyCategoryNames(t *testing.T) {
	got := Classify("anything at all", []string{""})
	assert.Equal(t, KindGeneral, got.Kind)
}
