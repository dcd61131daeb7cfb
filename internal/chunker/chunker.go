// Package chunker derives the bounded set of summary chunks that back
// retrieval: one overall summary, one per category, one per month, and an
// itemized list of the most recent transactions.
package chunker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/expense-assistant/backend/internal/models"
)

// DefaultRecentWindow is how many of the newest transactions the recent
// chunk itemizes when no window is configured.
const DefaultRecentWindow = 5

var hundred = decimal.NewFromInt(100)

// Synthesize builds the chunk set for a transaction sequence. The input
// must already be sorted by date ascending (the normalizer guarantees
// this). Output order and text are deterministic: the same transactions
// always yield byte-identical chunks.
//
// Totals accumulate in exact decimal arithmetic; rounding to two places
// happens only when rendering chunk text.
func Synthesize(txs []models.Transaction, recentWindow int) ([]models.Chunk, error) {
	if len(txs) == 0 {
		return nil, models.ErrEmptyDataset
	}
	if recentWindow <= 0 {
		recentWindow = DefaultRecentWindow
	}

	chunks := make([]models.Chunk, 0, 8)
	chunks = append(chunks, overallChunk(txs))
	chunks = append(chunks, categoryChunks(txs)...)
	chunks = append(chunks, monthChunks(txs)...)
	chunks = append(chunks, recentChunk(txs, recentWindow))
	return chunks, nil
}

func total(txs []models.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range txs {
		sum = sum.Add(tx.Price)
	}
	return sum
}

func overallChunk(txs []models.Transaction) models.Chunk {
	sum := total(txs)
	count := int64(len(txs))
	avg := sum.Div(decimal.NewFromInt(count))
	first := txs[0].DateKey()
	last := txs[len(txs)-1].DateKey()

	text := fmt.Sprintf(
		"Overall spending summary\nTotal expenses: $%s\nNumber of transactions: %d\nDate range: %s to %s\nAverage transaction: $%s",
		sum.StringFixed(2), count, first, last, avg.StringFixed(2),
	)

	return models.Chunk{
		ID:   "overall",
		Text: text,
		Kind: models.ChunkKindOverall,
		Metadata: map[string]string{
			"total": sum.StringFixed(2),
			"count": fmt.Sprintf("%d", count),
			"from":  first,
			"to":    last,
		},
	}
}

func categoryChunks(txs []models.Transaction) []models.Chunk {
	grand := total(txs)

	sums := make(map[string]decimal.Decimal)
	counts := make(map[string]int64)
	for _, tx := range txs {
		sums[tx.Category] = sums[tx.Category].Add(tx.Price)
		counts[tx.Category]++
	}

	names := make([]string, 0, len(sums))
	for name := range sums {
		names = append(names, name)
	}
	sort.Strings(names)

	chunks := make([]models.Chunk, 0, len(names))
	for _, name := range names {
		sum := sums[name]
		count := counts[name]
		avg := sum.Div(decimal.NewFromInt(count))
		// A grand total of zero is valid (all prices may be 0); the share
		// of nothing is rendered as 0.0%.
		share := decimal.Zero
		if !grand.IsZero() {
			share = sum.Mul(hundred).Div(grand)
		}

		text := fmt.Sprintf(
			"Category: %s\nTotal spent: $%s\nAverage transaction: $%s\nNumber of transactions: %d\nShare of total spending: %s%%",
			name, sum.StringFixed(2), avg.StringFixed(2), count, share.StringFixed(1),
		)

		chunks = append(chunks, models.Chunk{
			ID:   "category:" + strings.ToLower(name),
			Text: text,
			Kind: models.ChunkKindCategory,
			Metadata: map[string]string{
				"category": name,
				"total":    sum.StringFixed(2),
				"count":    fmt.Sprintf("%d", count),
			},
		})
	}
	return chunks
}

func monthChunks(txs []models.Transaction) []models.Chunk {
	sums := make(map[string]decimal.Decimal)
	counts := make(map[string]int64)
	for _, tx := range txs {
		key := tx.MonthKey()
		sums[key] = sums[key].Add(tx.Price)
		counts[key]++
	}

	months := make([]string, 0, len(sums))
	for m := range sums {
		months = append(months, m)
	}
	sort.Strings(months)

	chunks := make([]models.Chunk, 0, len(months))
	for _, m := range months {
		text := fmt.Sprintf(
			"Month: %s\nTotal expenses: $%s\nNumber of transactions: %d",
			m, sums[m].StringFixed(2), counts[m],
		)
		chunks = append(chunks, models.Chunk{
			ID:   "month:" + m,
			Text: text,
			Kind: models.ChunkKindMonth,
			Metadata: map[string]string{
				"month": m,
				"total": sums[m].StringFixed(2),
				"count": fmt.Sprintf("%d", counts[m]),
			},
		})
	}
	return chunks
}

func recentChunk(txs []models.Transaction, window int) models.Chunk {
	if window > len(txs) {
		window = len(txs)
	}

	var b strings.Builder
	b.WriteString("Most recent transactions:")
	// Input is date-ascending, so walk backwards for newest first.
	for i := len(txs) - 1; i >= len(txs)-window; i-- {
		tx := txs[i]
		fmt.Fprintf(&b, "\n- %s: %s ($%s, %s)", tx.DateKey(), tx.Name, tx.Price.StringFixed(2), tx.Category)
	}

	return models.Chunk{
		ID:   "recent",
		Text: b.String(),
		Kind: models.ChunkKindRecent,
		Metadata: map[string]string{
			"count": fmt.Sprintf("%d", window),
		},
	}
}
