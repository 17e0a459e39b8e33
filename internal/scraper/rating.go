package scraper

import (
	"regexp"
	"strconv"
	"strings"
)

var digitGroup = regexp.MustCompile(`\d[\d,]*`)

// ParseRating reads battle-log rating text. "1,634 MR" yields a rating
// score, "85,000 LP" yields rating points, anything else yields neither.
func ParseRating(text string) (score, points *int) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, "MR"):
		score = parseDigits(text)
	case strings.Contains(upper, "LP"):
		points = parseDigits(text)
	}
	return score, points
}

// parseDigits returns the first digit group with thousands separators removed.
func parseDigits(text string) *int {
	group := digitGroup.FindString(text)
	if group == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.ReplaceAll(group, ",", ""))
	if err != nil {
		return nil
	}
	return &n
}
