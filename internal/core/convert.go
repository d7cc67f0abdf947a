package core

// convert.go normalizes raw cell text coming out of CSV and spreadsheet
// decoders before it is keyed or validated.

import (
	"bytes"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// sanitizeText strips a leading UTF-8 BOM and replaces invalid UTF-8
// sequences with U+FFFD.
func sanitizeText(data []byte) []byte {
	data = bytes.TrimPrefix(data, utf8BOM)
	return bytes.ToValidUTF8(data, []byte("\uFFFD"))
}

// CleanCell removes common export artifacts from a cell value:
// - Trims whitespace
// - Unwraps the Excel text-formula form ="value"
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 3 && strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		s = strings.TrimSpace(s[2 : len(s)-1])
	}
	return s
}

// headerColumns returns the column name for each header position.
// Names are cleaned and lower-cased. Blank cells and repeats of an earlier
// name map to "" so the first occurrence of a column wins.
func headerColumns(header []string) []string {
	cols := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		cols[i] = key
	}
	return cols
}

// isBlankRow reports whether every cell of row is empty after cleaning.
func isBlankRow(row []string) bool {
	for _, cell := range row {
		if CleanCell(cell) != "" {
			return false
		}
	}
	return true
}
