package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/Hacka25/athenian-trading/internal/domain"
	"github.com/shopspring/decimal"
)

// textTimestampLayouts are the formatted timestamps accepted when a trade's
// date cell comes back as text instead of a serial number.
var textTimestampLayouts = []string{
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	time.RFC3339,
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrMalformedRow, fmt.Sprintf(format, args...))
}

// cellString returns the cell as trimmed text. Numbers are rendered
// without a trailing ".0".
func cellString(row Row, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	switch v := row[i].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return decimal.NewFromFloat(v).String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// cellInt parses an integral quantity from a string or numeric cell.
func cellInt(row Row, i int) (int64, error) {
	if i >= len(row) {
		return 0, malformed("column %d missing", i+1)
	}

	var d decimal.Decimal
	switch v := row[i].(type) {
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		parsed, err := decimal.NewFromString(s)
		if err != nil {
			return 0, malformed("column %d: %q is not a number", i+1, v)
		}
		d = parsed
	case float64:
		d = decimal.NewFromFloat(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	default:
		return 0, malformed("column %d: unexpected cell type %T", i+1, v)
	}

	if !d.IsInteger() {
		return 0, malformed("column %d: %s is not a whole number", i+1, d)
	}
	return d.IntPart(), nil
}

// cellTime decodes a serial date-time or formatted timestamp. Unparseable
// timestamps decode to the zero time; they never invalidate a row.
func cellTime(row Row, i int, loc *time.Location) time.Time {
	if i >= len(row) {
		return time.Time{}
	}
	switch v := row[i].(type) {
	case float64:
		return domain.FromSerialDateTime(v, loc)
	case string:
		s := strings.TrimSpace(v)
		if d, err := decimal.NewFromString(s); err == nil {
			f, _ := d.Float64()
			return domain.FromSerialDateTime(f, loc)
		}
		for _, layout := range textTimestampLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}
