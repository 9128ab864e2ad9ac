package google

import (
	"fmt"
	"strings"

	"homefin/internal/sheets"
)

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// findRow returns the 1-based row number whose first cell equals key, or 0.
// Row 1 is the header and is never matched.
func findRow(values [][]interface{}, key string) int {
	key = strings.TrimSpace(key)
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if len(row) > 0 && row[0] == key {
			return i + 1
		}
	}
	return 0
}

// columnName converts a 1-based column index to A1 letters.
func columnName(n int) string {
	if n < 1 {
		n = 1
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// quoteTab quotes a tab name for A1 notation when it holds spaces or quotes.
func quoteTab(name string) string {
	if strings.ContainsAny(name, " '!") {
		return "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	return name
}

// rowRange is the A1 range covering cols cells of row n.
func rowRange(tab string, n, cols int) string {
	return fmt.Sprintf("%s!A%d:%s%d", quoteTab(tab), n, columnName(cols), n)
}

func headerCells(h []string) []any {
	out := make([]any, len(h))
	for i, v := range h {
		out[i] = v
	}
	return out
}

// rowCells renders the key as text and amounts as numbers.
func rowCells(r sheets.Row) []any {
	out := make([]any, 0, len(r.Values)+1)
	out = append(out, "'"+r.Key)
	for _, v := range r.Values {
		out = append(out, v.Float())
	}
	return out
}
