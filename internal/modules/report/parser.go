package report

import (
	"regexp"
	"strconv"
	"strings"
)

// lineRe matches "<name> = <number>" with , or . as decimal separator.
var lineRe = regexp.MustCompile(`^(.+?)\s*=\s*([0-9]+(?:[.,][0-9]+)?)$`)

// ParseText turns free text into items, one entry per "name = qty" line.
// Lines that do not match the grammar are skipped; their count is returned
// so callers can surface a warning instead of silently losing lines.
func ParseText(text string) (items []Item, skipped int) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := lineRe.FindStringSubmatch(line)
		if m == nil {
			skipped++
			continue
		}
		name := CleanName(m[1])
		qty, ok := parseQty(m[2])
		if name == "" || !ok {
			skipped++
			continue
		}
		items = append(items, Item{RawName: name, Qty: qty})
	}
	return items, skipped
}

// CleanName trims and collapses interior whitespace.
func CleanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// parseQty normalizes the decimal separator ("1,5" -> 1.5) and parses.
func parseQty(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	s = strings.ReplaceAll(s, " ", "")
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
