package scraper

import (
	"strings"

	"buckler-tracker/internal/constants"

	"github.com/PuerkitoBio/goquery"
)

// IsPlaceholderID reports whether id is one of the "no id yet" markers.
func IsPlaceholderID(id string) bool {
	id = strings.TrimSpace(id)
	for _, p := range constants.PlaceholderIDs {
		if id == p {
			return true
		}
	}
	return false
}

// FindCanonicalID scans profile links for a numeric path segment long enough
// to be a canonical id. The first link that yields one wins.
func FindCanonicalID(doc *goquery.Document) string {
	var found string
	doc.Find("a[href*='/profile/']").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if id := canonicalIDFromPath(href); id != "" {
			found = id
			return false
		}
		return true
	})
	return found
}

func canonicalIDFromPath(href string) string {
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	parts := strings.Split(href, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if len(parts[i]) >= constants.MinCanonicalIDLength && isDigits(parts[i]) {
			return parts[i]
		}
	}
	return ""
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
