// Package normalizer validates and coerces raw tabular expense uploads
// into the canonical transaction list used by the chunk synthesizer.
package normalizer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/expense-assistant/backend/internal/models"
)

// RequiredColumns are the header fields every upload must carry.
var RequiredColumns = []string{"name", "price", "category", "date"}

// Date layouts accepted for the date column. ISO first since that is what
// exports typically produce.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"2006-01-02 15:04:05",
}

// Result is the output of a normalization pass: the ordered transaction
// list plus any per-row warnings for dropped rows.
type Result struct {
	Transactions []models.Transaction
	Warnings     []models.RowWarning
}

// Normalize parses a CSV payload into transactions sorted by date
// ascending. It fails with *models.SchemaError when a required column is
// absent from the header and with models.ErrEmptyDataset when no row
// survives parsing. Individual bad rows are dropped and reported as
// warnings, not failures.
func Normalize(payload []byte) (*Result, error) {
	r := csv.NewReader(bytes.NewReader(payload))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1 // row-level validation handles short rows

	header, err := r.Read()
	if err == io.EOF {
		return nil, models.ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	line := 1 // header was line 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			res.Warnings = append(res.Warnings, models.RowWarning{
				Line:   line,
				Reason: fmt.Sprintf("malformed CSV row: %v", err),
			})
			continue
		}

		tx, reason := parseRow(record, cols)
		if reason != "" {
			res.Warnings = append(res.Warnings, models.RowWarning{
				Line:    line,
				Content: strings.Join(record, ","),
				Reason:  reason,
			})
			continue
		}
		res.Transactions = append(res.Transactions, tx)
	}

	if len(res.Transactions) == 0 {
		return nil, models.ErrEmptyDataset
	}

	// Stable sort keeps input order within a date so downstream chunking
	// is deterministic.
	sort.SliceStable(res.Transactions, func(i, j int) bool {
		return res.Transactions[i].Date.Before(res.Transactions[j].Date)
	})

	return res, nil
}

// mapHeader resolves column positions and reports every missing required
// column at once.
func mapHeader(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &models.SchemaError{Missing: missing}
	}
	return cols, nil
}

func parseRow(record []string, cols map[string]int) (models.Transaction, string) {
	field := func(name string) (string, bool) {
		idx := cols[name]
		if idx >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[idx]), true
	}

	name, ok := field("name")
	if !ok || name == "" {
		return models.Transaction{}, "missing name"
	}

	priceStr, ok := field("price")
	if !ok || priceStr == "" {
		return models.Transaction{}, "missing price"
	}
	price, err := parsePrice(priceStr)
	if err != nil {
		return models.Transaction{}, fmt.Sprintf("invalid price %q", priceStr)
	}
	if price.IsNegative() {
		return models.Transaction{}, fmt.Sprintf("negative price %q", priceStr)
	}

	category, ok := field("category")
	if !ok || category == "" {
		return models.Transaction{}, "missing category"
	}

	dateStr, ok := field("date")
	if !ok || dateStr == "" {
		return models.Transaction{}, "missing date"
	}
	date, err := parseDate(dateStr)
	if err != nil {
		return models.Transaction{}, fmt.Sprintf("unparsable date %q", dateStr)
	}

	return models.Transaction{
		Name:     name,
		Price:    price,
		Category: category,
		Date:     date,
	}, ""
}

// parsePrice accepts plain decimal amounts, optionally with a leading
// currency symbol or thousands-separator commas ("$1,234.56").
func parsePrice(raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimLeft(raw, "$€£ ")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	return decimal.NewFromString(cleaned)
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			// Truncate to calendar date
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("no layout matched %q", raw)
}
