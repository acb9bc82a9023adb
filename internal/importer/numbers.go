package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/model"
)

// ParseAmount parses a euro amount in either Italian locale formatting
// ("1.234.567,89") or plain machine formatting ("1234567.89"). Currency
// symbols and surrounding whitespace are tolerated; an empty cell is
// zero.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimSuffix(s, "€")
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return decimal.Zero, nil
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}

	// Italian format: dots as thousands separators, comma as decimal
	// mark. A comma anywhere settles it.
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else if dots := strings.Count(s, "."); dots > 1 {
		// Multiple dots without a comma: thousands separators only.
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable amount %q: %w", raw, err)
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

// parseFlag reads the S/N (sì/no) convention of the source sheets,
// tolerating the usual boolean spellings.
func parseFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s", "si", "sì", "y", "yes", "true", "1", "x":
		return true
	}
	return false
}

// normalizeHeader canonicalizes a column header: trimmed, lowered,
// spaces collapsed to underscores.
func normalizeHeader(h string) string {
	h = strings.TrimSpace(strings.ToLower(h))
	return strings.ReplaceAll(h, " ", "_")
}

// headerIndex maps normalized column names to their positions.
func headerIndex(row []string) map[string]int {
	idx := make(map[string]int, len(row))
	for i, h := range row {
		if key := normalizeHeader(h); key != "" {
			idx[key] = i
		}
	}
	return idx
}

// cell returns the named column of a row, or "" when the row is short.
func cell(row []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseDate normalizes a due date cell to ISO form. Both ISO and the
// Italian day-first layout appear in exported workbooks.
func parseDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"2006-01-02", "02/01/2006", "2/1/2006", "01-02-06"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", &model.DataIntegrityError{Field: "data", Reason: fmt.Sprintf("unparseable date %q", raw)}
}
